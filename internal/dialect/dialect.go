// Package dialect holds the read-only textual template table the
// emitter renders against (spec §6.3): swappable per target
// assembler, consumed but never mutated by the core.
package dialect

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
)

// Dialect is a bundle of Printf-ish templates, each using literal
// "{}" holes rather than Go verbs, since the table is meant to be
// data a caller can load from outside the program (a config file, a
// different target assembler) rather than Go format strings baked
// into source.
type Dialect struct {
	Byte       string // no holes: the mnemonic; the emitter appends the byte expression after a space
	Str        string // one hole: the literal string body
	Number     string // one hole: the literal value
	Label      string // one hole: the label name
	LocalLabel string // one hole: the local label name
	Section    string // two holes: script name, section type
	Comment    string // one hole: the comment body
	MacroOpen  string // one hole: the callee name
	MacroEnd   string // no holes
}

// holeCounts records the number of "{}" substitutions each template
// is contractually expected to take, so a malformed dialect line can
// be caught at load time instead of failing deep inside emission.
// Per spec §9 ("a mismatched dialect line should warn, not fatal"),
// Validate reports problems rather than returning an error.
var holeCounts = map[string]int{
	"byte": 0, "str": 1, "number": 1, "label": 1, "local_label": 1,
	"section": 2, "comment": 1, "macro_open": 1, "macro_end": 0,
}

// Default is the built-in retro-assembler dialect from spec §6.3.
func Default() *Dialect {
	return &Dialect{
		Byte:       "db",
		Str:        "db \"{}\", 0",
		Number:     "{}",
		Label:      "{}::",
		LocalLabel: ".{}",
		Section:    "SECTION \"{} evscript section\", {}",
		Comment:    "; {}",
		MacroOpen:  "{} ",
		MacroEnd:   "",
	}
}

// fields pairs each template with its name for iteration in
// Validate, keeping the warning messages stable regardless of
// struct field order.
func (d *Dialect) fields() []lo.Tuple2[string, string] {
	return []lo.Tuple2[string, string]{
		{A: "byte", B: d.Byte},
		{A: "str", B: d.Str},
		{A: "number", B: d.Number},
		{A: "label", B: d.Label},
		{A: "local_label", B: d.LocalLabel},
		{A: "section", B: d.Section},
		{A: "comment", B: d.Comment},
		{A: "macro_open", B: d.MacroOpen},
		{A: "macro_end", B: d.MacroEnd},
	}
}

// Validate checks every template's hole count against its contract
// and returns one warning string per mismatch. It never fails: a
// dialect with a malformed template is still usable, it will just
// render a line that is missing or has extra interpolated text.
func (d *Dialect) Validate() []string {
	var warnings []string
	for _, f := range lo.Filter(d.fields(), func(f lo.Tuple2[string, string], _ int) bool {
		return strings.Count(f.B, "{}") != holeCounts[f.A]
	}) {
		warnings = append(warnings, fmt.Sprintf(
			"dialect template %q expects %d hole(s), found %d in %q",
			f.A, holeCounts[f.A], strings.Count(f.B, "{}"), f.B))
	}
	return warnings
}

// Render substitutes each "{}" in template, left to right, with the
// corresponding argument.
func Render(template string, args ...string) string {
	var sb strings.Builder
	rest := template
	for _, a := range args {
		i := strings.Index(rest, "{}")
		if i < 0 {
			break
		}
		sb.WriteString(rest[:i])
		sb.WriteString(a)
		rest = rest[i+2:]
	}
	sb.WriteString(rest)
	return sb.String()
}
