package lower

import (
	"github.com/eievui5/evscript/internal/ast"
	"github.com/eievui5/evscript/internal/dialect"
	"github.com/eievui5/evscript/internal/diag"
	"github.com/eievui5/evscript/internal/types"
)

// invoke looks up name in the environment and hands it to the
// definition emitter, with the "please use std" hint spec §4.8
// mandates for lowerings that reference a primitive internally.
func (lw *Lowerer) invoke(name string, args ...ast.Argument) error {
	def, ok := lw.Env.Lookup(name)
	if !ok {
		return diag.Fatalf("please `use std;` or provide an implementation of %s", name)
	}
	return lw.emitDefinition(name, def, args)
}

// label emits a local label definition, column-zero per spec §6.4.
func (lw *Lowerer) label(name string) {
	lw.emit(dialect.Render(lw.Dialect.LocalLabel, name))
}

// lowerStatement is the per-statement dispatch (spec §4.8/§4.9,
// component C8). Arithmetic/comparison kinds all route through
// lowerOperation; everything else has its own handler.
func (lw *Lowerer) lowerStatement(s *ast.Statement) error {
	switch s.Kind {
	case ast.Declare:
		_, err := lw.pool.Alloc(s.Size, false, s.Identifier)
		return err
	case ast.DeclareAssign:
		if _, err := lw.pool.Alloc(s.Size, false, s.Identifier); err != nil {
			return err
		}
		return lw.lowerAssign(s)
	case ast.DeclareCopy:
		if _, err := lw.pool.Alloc(s.Size, false, s.Identifier); err != nil {
			return err
		}
		return lw.lowerCopy(&ast.Statement{Kind: ast.Copy, LHS: s.Identifier, RHS: s.RHS})
	case ast.Assign:
		return lw.lowerAssign(s)
	case ast.Copy:
		return lw.lowerCopy(s)
	case ast.Call:
		def, ok := lw.Env.Lookup(s.Identifier)
		if !ok {
			return diag.Fatalf("call to undefined primitive %q", s.Identifier)
		}
		return lw.emitDefinition(s.Identifier, def, s.Args)
	case ast.Drop:
		return lw.pool.Free(s.Identifier)
	case ast.Label:
		if !lw.lbls.IsLabel(s.Identifier) {
			lw.lbls.Record(s.Identifier)
		}
		lw.label(s.Identifier)
		return nil
	case ast.Goto:
		return lw.invoke("goto", ast.Var(s.Identifier))
	case ast.If:
		return lw.lowerIf(s)
	case ast.While:
		return lw.lowerWhile(s)
	case ast.Do:
		return lw.lowerDo(s)
	case ast.For:
		return lw.lowerFor(s)
	case ast.Repeat:
		return lw.lowerRepeat(s)
	case ast.Loop:
		return lw.lowerLoop(s)
	case ast.Operation:
		return lw.lowerOperation(s)
	case ast.CallAsm:
		if len(s.Args) != 1 || s.Args[0].Kind != ast.ArgStr {
			return diag.Fatalf("callasm statement must carry its verbatim text")
		}
		lw.emit(s.Args[0].Str)
		return nil
	case ast.Purge:
		lw.pool.PurgeInternal()
		return nil
	case ast.Break:
		loop, err := lw.currentLoop()
		if err != nil {
			return err
		}
		return lw.invoke("goto", ast.Var(loop.End))
	case ast.Continue:
		loop, err := lw.currentLoop()
		if err != nil {
			return err
		}
		return lw.invoke("goto", ast.Var(loop.Continue))
	case ast.Noop:
		return nil
	default:
		return diag.Fatalf("statement kind %d has no lowering", s.Kind)
	}
}

func (lw *Lowerer) lowerBlock(stmts []ast.Statement) error {
	for i := range stmts {
		if err := lw.lowerStatement(&stmts[i]); err != nil {
			return err
		}
	}
	return nil
}

func (lw *Lowerer) lowerAssign(s *ast.Statement) error {
	cell, err := lw.pool.RequiredGet(s.Identifier)
	if err != nil {
		return err
	}
	return lw.invoke("copy"+types.WidthSuffix(cell.Size)+"_const", ast.Var(s.Identifier), ast.Num(s.Value))
}

func (lw *Lowerer) lowerCopy(s *ast.Statement) error {
	if s.RHS.Kind != ast.ArgVar {
		return diag.Fatalf("copy statement's source must be a variable name")
	}
	lhsCell, lhsOK := lw.pool.Get(s.LHS)
	rhsCell, rhsOK := lw.pool.Get(s.RHS.Name)
	switch {
	case lhsOK && rhsOK:
		return lw.invoke("copy"+types.WidthSuffix(lhsCell.Size), ast.Var(s.LHS), ast.Var(s.RHS.Name))
	case lhsOK && !rhsOK:
		return lw.invoke("load"+types.WidthSuffix(lhsCell.Size)+"_const", ast.Var(s.LHS), ast.Var(s.RHS.Name))
	case !lhsOK && rhsOK:
		return lw.invoke("store"+types.WidthSuffix(rhsCell.Size)+"_const", ast.Var(s.LHS), ast.Var(s.RHS.Name))
	default:
		return diag.Fatalf("cannot copy between two global vars: %q and %q", s.LHS, s.RHS.Name)
	}
}

func (lw *Lowerer) lowerIf(s *ast.Statement) error {
	end := lw.lbls.Generate("endif")
	cond := &s.Conditions[0]
	if err := lw.conditionalAdapter(cond); err != nil {
		return err
	}
	if err := lw.lowerStatement(cond); err != nil {
		return err
	}
	if err := lw.invoke("goto_conditional_not", ast.Var(cond.Dest), ast.Var(end)); err != nil {
		return err
	}
	if err := lw.lowerBlock(s.Statements); err != nil {
		return err
	}
	if len(s.ElseStatements) == 0 {
		lw.label(end)
	} else {
		elseLabel := lw.lbls.Generate("endelse")
		if err := lw.invoke("goto", ast.Var(elseLabel)); err != nil {
			return err
		}
		lw.label(end)
		if err := lw.lowerBlock(s.ElseStatements); err != nil {
			return err
		}
		lw.label(elseLabel)
	}
	lw.pool.AutoFree(cond.Dest)
	return nil
}

func (lw *Lowerer) lowerWhile(s *ast.Statement) error {
	begin := lw.lbls.Generate("beginwhile")
	end := lw.lbls.Generate("endwhile")
	condLabel := lw.lbls.Generate("whilecondition")

	if err := lw.invoke("goto", ast.Var(condLabel)); err != nil {
		return err
	}
	lw.label(begin)
	lw.pushLoop(condLabel, end)
	err := lw.lowerBlock(s.Statements)
	lw.popLoop()
	if err != nil {
		return err
	}
	lw.label(condLabel)
	cond := &s.Conditions[0]
	if err := lw.conditionalAdapter(cond); err != nil {
		return err
	}
	if err := lw.lowerStatement(cond); err != nil {
		return err
	}
	if err := lw.invoke("goto_conditional", ast.Var(cond.Dest), ast.Var(begin)); err != nil {
		return err
	}
	lw.label(end)
	lw.pool.AutoFree(cond.Dest)
	return nil
}

func (lw *Lowerer) lowerDo(s *ast.Statement) error {
	begin := lw.lbls.Generate("begindo")
	end := lw.lbls.Generate("enddo")
	condLabel := lw.lbls.Generate("docondition")

	lw.label(begin)
	lw.pushLoop(condLabel, end)
	err := lw.lowerBlock(s.Statements)
	lw.popLoop()
	if err != nil {
		return err
	}
	lw.label(condLabel)
	cond := &s.Conditions[0]
	if err := lw.conditionalAdapter(cond); err != nil {
		return err
	}
	if err := lw.lowerStatement(cond); err != nil {
		return err
	}
	if err := lw.invoke("goto_conditional", ast.Var(cond.Dest), ast.Var(begin)); err != nil {
		return err
	}
	lw.label(end)
	lw.pool.AutoFree(cond.Dest)
	return nil
}

func (lw *Lowerer) lowerFor(s *ast.Statement) error {
	if err := lw.lowerStatement(&s.Conditions[0]); err != nil {
		return err
	}
	begin := lw.lbls.Generate("beginfor")
	end := lw.lbls.Generate("endfor")
	post := lw.lbls.Generate("forpost")

	lw.label(begin)
	test := &s.Conditions[1]
	if err := lw.conditionalAdapter(test); err != nil {
		return err
	}
	if err := lw.lowerStatement(test); err != nil {
		return err
	}
	if err := lw.invoke("goto_conditional_not", ast.Var(test.Dest), ast.Var(end)); err != nil {
		return err
	}

	lw.pushLoop(post, end)
	err := lw.lowerBlock(s.Statements)
	lw.popLoop()
	if err != nil {
		return err
	}

	lw.label(post)
	if err := lw.lowerStatement(&s.Conditions[2]); err != nil {
		return err
	}
	if err := lw.invoke("goto", ast.Var(begin)); err != nil {
		return err
	}
	lw.label(end)
	lw.pool.AutoFree(test.Dest)
	return nil
}

func (lw *Lowerer) lowerRepeat(s *ast.Statement) error {
	if s.Value == 0 {
		return nil
	}
	width := 2
	switch {
	case s.Value < 256:
		width = 1
	case s.Value < 65536:
		width = 2
	default:
		return diag.Fatalf("repeat limited to 65536 iterations")
	}
	counter, err := lw.pool.Alloc(width, true, "")
	if err != nil {
		return err
	}
	if err := lw.invoke("copy"+types.WidthSuffix(width)+"_const", ast.Var(counter), ast.Num(s.Value)); err != nil {
		return err
	}

	begin := lw.lbls.Generate("beginrepeat")
	end := lw.lbls.Generate("endrepeat")
	cond := lw.lbls.Generate("repeatcondition")

	lw.label(begin)
	lw.pushLoop(cond, end)
	err = lw.lowerBlock(s.Statements)
	lw.popLoop()
	if err != nil {
		return err
	}
	lw.label(cond)
	if err := lw.invoke("sub"+types.WidthSuffix(width)+"_const", ast.Var(counter), ast.Num(1), ast.Var(counter)); err != nil {
		return err
	}
	if err := lw.invoke("goto_conditional", ast.Var(counter), ast.Var(begin)); err != nil {
		return err
	}
	lw.label(end)
	return lw.pool.Free(counter)
}

func (lw *Lowerer) lowerLoop(s *ast.Statement) error {
	begin := lw.lbls.Generate("beginloop")
	end := lw.lbls.Generate("endloop")

	lw.label(begin)
	lw.pushLoop(begin, end)
	err := lw.lowerBlock(s.Statements)
	lw.popLoop()
	if err != nil {
		return err
	}
	if err := lw.invoke("goto", ast.Var(begin)); err != nil {
		return err
	}
	lw.label(end)
	return nil
}

func (lw *Lowerer) lowerOperation(s *ast.Statement) error {
	destName := s.Identifier
	if destName == "" {
		destName = s.Dest
	}
	if destName == "" {
		return nil
	}
	dest, err := lw.pool.RequiredGet(destName)
	if err != nil {
		return err
	}
	lhsCell, err := lw.pool.RequiredGet(s.LHS)
	if err != nil {
		return err
	}
	lhsName, err := lw.autoCast(dest.Size, lhsCell)
	if err != nil {
		return err
	}

	var rhsArg ast.Argument
	isConst := s.IsConst
	var rhsTemp string
	if s.IsConst {
		rhsArg = s.RHS
	} else if s.RHS.Kind == ast.ArgVar {
		if rhsCell, ok := lw.pool.Get(s.RHS.Name); ok {
			rhsTemp, err = lw.autoCast(dest.Size, rhsCell)
			if err != nil {
				return err
			}
			rhsArg = ast.Var(rhsTemp)
		} else {
			isConst = true
			rhsArg = ast.Con(s.RHS.Name)
		}
	} else {
		isConst = true
		rhsArg = s.RHS
	}

	name := s.Op.BaseName() + types.WidthSuffix(dest.Size)
	if isConst {
		name += "_const"
	}
	if err := lw.invoke(name, ast.Var(lhsName), rhsArg, ast.Var(destName)); err != nil {
		return err
	}
	lw.pool.AutoFree(lhsName)
	if rhsTemp != "" {
		lw.pool.AutoFree(rhsTemp)
	}
	return nil
}
