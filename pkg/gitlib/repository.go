// Package gitlib wraps the version-control side of a benchmark sweep:
// repository validation through libgit2, commit enumeration, and checkout
// through the git command-line tool.
package gitlib

import (
	"errors"
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// ErrRepository indicates an invalid checkout, a failed commit query, or a
// failed checkout of a specific commit.
var ErrRepository = errors.New("repository")

// CommitID is an opaque commit handle (a hash). Commits are ordered only by
// the enumeration that produced them, never by comparing ids.
type CommitID string

// String returns the id text.
func (c CommitID) String() string { return string(c) }

// Short returns the first seven characters of the id.
func (c CommitID) Short() string {
	const shortLen = 7

	if len(c) <= shortLen {
		return string(c)
	}

	return string(c[:shortLen])
}

// Repository wraps a libgit2 repository that has a working tree.
type Repository struct {
	repo *git2go.Repository
	path string
}

// OpenRepository opens the non-bare repository at path.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", ErrRepository, path, err)
	}

	if repo.IsBare() {
		repo.Free()

		return nil, fmt.Errorf("%w: %s is a bare repository", ErrRepository, path)
	}

	return &Repository{repo: repo, path: path}, nil
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Head returns the commit HEAD points to.
func (r *Repository) Head() (CommitID, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: get HEAD: %w", ErrRepository, err)
	}
	defer ref.Free()

	return CommitID(ref.Target().String()), nil
}

// HeadName returns the branch HEAD is on, or the commit hash when HEAD is
// detached. The result can be handed to Checkout to restore the tree.
func (r *Repository) HeadName() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return "", fmt.Errorf("%w: get HEAD: %w", ErrRepository, err)
	}
	defer ref.Free()

	if ref.IsBranch() {
		return ref.Shorthand(), nil
	}

	return ref.Target().String(), nil
}

// Native returns the underlying libgit2 repository for advanced operations.
func (r *Repository) Native() *git2go.Repository {
	return r.repo
}
