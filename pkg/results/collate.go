package results

import (
	"slices"

	"github.com/Sumatoshi-tech/benchsweep/pkg/report"
)

// CommitColumn is the first header cell of a collated table.
const CommitColumn = "commit"

// Names returns the distinct benchmark names across all records, sorted
// ascending.
func Names(records []CommitRecord) []string {
	seen := make(map[string]struct{})

	var names []string

	for _, rec := range records {
		for _, name := range rec.Results.Names() {
			if _, ok := seen[name]; ok {
				continue
			}

			seen[name] = struct{}{}
			names = append(names, name)
		}
	}

	slices.Sort(names)

	return names
}

// Collate merges per-commit results into one table. The header is "commit"
// followed by the sorted benchmark names. Each record with results yields one
// row in input order, with [Placeholder] for benchmarks it lacks; records
// without results produce no row.
func Collate(records []CommitRecord) report.Table {
	names := Names(records)

	header := make(report.Row, 0, len(names)+1)
	header = append(header, CommitColumn)
	header = append(header, names...)

	table := report.Table{header}

	for _, rec := range records {
		if rec.Results.Empty() {
			continue
		}

		row := make(report.Row, 0, len(names)+1)
		row = append(row, rec.Commit.String())

		for _, name := range names {
			row = append(row, rec.Results.GetOrDefault(name, Placeholder))
		}

		table = append(table, row)
	}

	return table
}
