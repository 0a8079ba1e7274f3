package lower

import (
	"strconv"

	"github.com/eievui5/evscript/internal/ast"
	"github.com/eievui5/evscript/internal/dialect"
)

// Compile runs the script driver (spec §4.8 "Script prologue/
// epilogue" and §4.9, component C9): header, a pre-walk that seeds
// the label table with every top-level user label so forward
// references render correctly, the statement walk itself, the
// trailing terminator, and the string table. name is the script's
// entry-point identifier (the driver's caller — typically the CLI —
// derives this from the input file, since spec.md's Script record
// does not itself carry one).
func (lw *Lowerer) Compile(name string, script *ast.Script) error {
	if lw.Env.Section != "" && lw.Env.Section != "none" {
		lw.emit(dialect.Render(lw.Dialect.Section, name, lw.Env.Section))
	}
	lw.emit(dialect.Render(lw.Dialect.Label, name))

	lw.seedLabels(script.Statements)

	if err := lw.lowerBlock(script.Statements); err != nil {
		return err
	}

	if lw.Env.Terminator >= 0 {
		lw.emitLE(strconv.FormatInt(lw.Env.Terminator, 10), 1)
	}

	lw.emitStringTable()
	return nil
}

// seedLabels records every top-level LABEL statement's identifier
// before lowering begins. Per spec §9 ("Forward labels"), nested
// statements inside control-flow bodies are not pre-walked: a label
// inside a loop body is recorded lazily when its own lowering runs.
func (lw *Lowerer) seedLabels(stmts []ast.Statement) {
	for _, s := range stmts {
		if s.Kind == ast.Label {
			lw.lbls.Record(s.Identifier)
		}
	}
}

// emitStringTable emits, after the script body, a local label and
// string directive for each entry pushed into the string table
// during lowering (spec §4.3/§6.4).
func (lw *Lowerer) emitStringTable() {
	for i, entry := range lw.strs.Entries() {
		lw.label(stringTableLabel(i))
		lw.emit("\t" + dialect.Render(lw.Dialect.Str, entry))
	}
}
