// Package strtab implements the per-script string table (spec §4.3,
// component C3): an append-only list of literal strings, each
// assigned a stable ordinal, emitted as labelled data after the
// script body. Grounded in the teacher's codegen.go stringPool /
// dataCache pair (content -> label, to dedupe-free append-only
// collection), simplified since evscript never deduplicates string
// literals (each STR reference gets its own ordinal, per spec §8
// invariant 2).
package strtab

// Table is a script's append-only string table.
type Table struct {
	entries []string
}

// New returns an empty string table.
func New() *Table { return &Table{} }

// Push records s and returns its ordinal.
func (t *Table) Push(s string) int {
	t.entries = append(t.entries, s)
	return len(t.entries) - 1
}

// Len returns the number of entries pushed so far.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns the table contents in ordinal order.
func (t *Table) Entries() []string { return t.entries }
