package lower

import (
	"fmt"

	"github.com/eievui5/evscript/internal/ast"
	"github.com/eievui5/evscript/internal/diag"
	"github.com/eievui5/evscript/internal/pool"
	"github.com/eievui5/evscript/internal/types"
)

// autoCast emits a width-cast primitive when source's width differs
// from destSize (spec §4.7, component C7). If the widths already
// agree, source's own name is reused and no code is emitted. The
// returned name is an operand the caller should autoFree once the
// operation using it has been emitted.
func (lw *Lowerer) autoCast(destSize int, source pool.Cell) (string, error) {
	if source.Size == destSize {
		return source.Name, nil
	}
	temp, err := lw.pool.Alloc(destSize, true, "")
	if err != nil {
		return "", err
	}
	castName := fmt.Sprintf("cast_%dto%d", types.Bits(source.Size), types.Bits(destSize))
	def, ok := lw.Env.Lookup(castName)
	if !ok {
		return "", diag.Fatalf("please `use std;` or provide an implementation of %s", castName)
	}
	if err := lw.emitDefinition(castName, def, []ast.Argument{ast.Var(temp), ast.Var(source.Name)}); err != nil {
		return "", err
	}
	return temp, nil
}
