package lower

import "github.com/eievui5/evscript/internal/ast"

// conditionalAdapter turns an arbitrary statement used as a loop or
// branch condition into one with a usable destination operand (spec
// §4.6, component C6). Arithmetic/comparison statements materialise
// an internal temporary sized to fit their widest operand; anything
// else is accepted with a warning, since the core has no way to know
// what memory, if any, that statement's evaluation leaves a truth
// value in.
func (lw *Lowerer) conditionalAdapter(cond *ast.Statement) error {
	if cond.Dest != "" {
		return nil
	}

	if cond.Kind != ast.Operation {
		lw.Report.Warn("statement of kind %d used as a condition is not an arithmetic/comparison op; the branch will read an undefined value", cond.Kind)
		if cond.Identifier != "" {
			cond.Dest = cond.Identifier
			return nil
		}
		name, err := lw.pool.Alloc(1, true, "")
		if err != nil {
			return err
		}
		cond.Dest = name
		return nil
	}

	lhsSize := 0
	if c, ok := lw.pool.Get(cond.LHS); ok {
		lhsSize = c.Size
	}
	rhsSize := 0
	if cond.RHS.Kind == ast.ArgVar {
		if c, ok := lw.pool.Get(cond.RHS.Name); ok {
			rhsSize = c.Size
		}
	}
	size := lhsSize
	if rhsSize > size {
		size = rhsSize
	}
	if size == 0 {
		size = 1
	}
	name, err := lw.pool.Alloc(size, true, "")
	if err != nil {
		return err
	}
	cond.Dest = name
	return nil
}
