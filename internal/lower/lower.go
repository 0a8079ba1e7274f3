// Package lower is the statement lowerer: the core of evscript
// (spec §2, components C4-C9). It turns a parsed ast.Script into a
// stream of textual assembler directives, composing the pool
// allocator, label table, string table, and dialect templates.
//
// Grounded in the teacher's pkg/compiler/codegen.go: a CodeGen struct
// holding a symbol table and an output builder, with one method per
// statement kind emitting dialect-shaped text via small `line`/
// `comment` helpers. evscript's Lowerer plays the same role against
// a pool/label/string table triple instead of a single symbol table,
// since evscript's environment is parameterised rather than fixed to
// one CPU's mnemonics.
package lower

import (
	"fmt"
	"io"

	"github.com/eievui5/evscript/internal/ast"
	"github.com/eievui5/evscript/internal/dialect"
	"github.com/eievui5/evscript/internal/diag"
	"github.com/eievui5/evscript/internal/env"
	"github.com/eievui5/evscript/internal/labels"
	"github.com/eievui5/evscript/internal/pool"
	"github.com/eievui5/evscript/internal/strtab"
)

// loopExit is the label pair BREAK/CONTINUE resolve against for one
// enclosing loop construct. Grounded directly in codegen.go's
// LoopLabel/loopStack (Start/End/Post), renamed to this package's
// vocabulary (spec §6.2's lowerings don't have a "Start" a break can
// target, only End and a continue target).
type loopExit struct {
	Continue string
	End      string
}

// Lowerer holds everything one script compilation needs: its own
// fresh pool, string table, and label table (spec §3: "Each script
// compilation uses its own fresh pool, string table, and label
// table"), plus the environment and dialect it renders against.
type Lowerer struct {
	Env     *env.Environment
	Dialect *dialect.Dialect
	Report  *diag.Reporter

	pool  *pool.Pool
	lbls  *labels.Table
	strs  *strtab.Table
	out   io.Writer
	loops []loopExit
}

// New constructs a Lowerer with a fresh pool/label/string table for
// one script compilation.
func New(e *env.Environment, d *dialect.Dialect, out io.Writer, report *diag.Reporter) *Lowerer {
	return &Lowerer{
		Env:     e,
		Dialect: d,
		Report:  report,
		pool:    pool.New(e.Pool),
		lbls:    labels.New(),
		strs:    strtab.New(),
		out:     out,
	}
}

func (lw *Lowerer) emit(line string) {
	fmt.Fprintln(lw.out, line)
}

func (lw *Lowerer) comment(text string) {
	lw.emit(dialect.Render(lw.Dialect.Comment, text))
}

func (lw *Lowerer) pushLoop(cont, end string) { lw.loops = append(lw.loops, loopExit{Continue: cont, End: end}) }
func (lw *Lowerer) popLoop()                  { lw.loops = lw.loops[:len(lw.loops)-1] }

func (lw *Lowerer) currentLoop() (loopExit, error) {
	if len(lw.loops) == 0 {
		return loopExit{}, diag.Fatalf("break/continue statement outside of loop")
	}
	return lw.loops[len(lw.loops)-1], nil
}
