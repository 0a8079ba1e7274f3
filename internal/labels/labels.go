// Package labels implements the control-flow label generator and
// table (spec §4.2, component C2). Grounded in the teacher's
// codegen.go newLabel/newDataLabel/newStringLabel counters,
// generalised into one append-only table shared by generated and
// user-declared names so a single Lookup answers "is this a label".
package labels

import "fmt"

// Table records every label name known to the current script
// compilation: both compiler-generated control-flow labels and
// user-declared ones recorded by the driver's pre-walk pass.
type Table struct {
	names map[string]struct{}
	n     int
}

// New returns an empty label table.
func New() *Table {
	return &Table{names: make(map[string]struct{})}
}

// Generate issues a fresh local label name "__{purpose}_{n}", where n
// is the table's cardinality at the moment of the call, and records
// it immediately so the next Generate call sees a larger n.
func (t *Table) Generate(purpose string) string {
	name := fmt.Sprintf("__%s_%d", purpose, t.n)
	t.Record(name)
	return name
}

// Record registers a label name (used by the driver to pre-walk
// user-declared top-level labels before lowering, so forward
// references render correctly).
func (t *Table) Record(name string) {
	t.names[name] = struct{}{}
	t.n++
}

// IsLabel reports whether name has been recorded as a label.
func (t *Table) IsLabel(name string) bool {
	_, ok := t.names[name]
	return ok
}

// Len returns the table's current cardinality.
func (t *Table) Len() int { return t.n }
