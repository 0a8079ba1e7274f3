package lower

import (
	"strconv"

	"github.com/eievui5/evscript/internal/ast"
	"github.com/eievui5/evscript/internal/dialect"
	"github.com/eievui5/evscript/internal/diag"
)

// renderArg renders a single argument to its textual form (spec
// §4.4, component C4), given the lowerer's current pool and label
// tables.
func (lw *Lowerer) renderArg(a ast.Argument) (string, error) {
	switch a.Kind {
	case ast.ArgVar:
		if _, ok := lw.pool.Get(a.Name); ok {
			return strconv.Itoa(lw.pool.Lookup(a.Name)), nil
		}
		name := a.Name
		if lw.lbls.IsLabel(name) {
			return dialect.Render(lw.Dialect.LocalLabel, name), nil
		}
		return name, nil
	case ast.ArgNum:
		return dialect.Render(lw.Dialect.Number, strconv.FormatUint(a.Num, 10)), nil
	case ast.ArgCon:
		return a.Name, nil
	case ast.ArgStr:
		ord := lw.strs.Push(a.Str)
		ref := stringTableLabel(ord)
		return dialect.Render(lw.Dialect.LocalLabel, ref), nil
	case ast.ArgRef:
		return "", diag.Fatalf("positional argument ARG(%d) is only valid inside a macro-alias definition, not at a call site", a.Index)
	default:
		return "", diag.Fatalf("unknown argument kind %d", a.Kind)
	}
}

// stringTableLabel formats the label a string-table entry is emitted
// under (spec §3: "string_table{ordinal}").
func stringTableLabel(ordinal int) string {
	return "string_table" + strconv.Itoa(ordinal)
}
