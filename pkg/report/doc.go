// Package report normalizes benchmark-tool CSV output into a fixed, totaled
// table and serializes tables back to text.
//
// A [Table] is an ordered list of rows whose first row is the header. The
// transform keeps only the recognized columns (see [RecognizedColumns]),
// appends a totals row, and renders the result as comma-joined text.
package report
