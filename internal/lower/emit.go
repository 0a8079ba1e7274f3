package lower

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/eievui5/evscript/internal/ast"
	"github.com/eievui5/evscript/internal/dialect"
	"github.com/eievui5/evscript/internal/diag"
	"github.com/eievui5/evscript/internal/env"
)

// emitByteLine writes one tab-indented byte directive whose body is
// the already-rendered expression text. Byte carries no "{}" hole
// (spec §6.3's default is the bare mnemonic "db"): the directive and
// its operand are joined with a space, not substituted through Render.
func (lw *Lowerer) emitByteLine(expr string) {
	lw.emit("\t" + lw.Dialect.Byte + " " + expr)
}

// emitLE spreads expr, little-endian, across size single-byte
// directives: `(expr >> (8*k)) & 255` for k in [0, size). This is
// what makes width-3 operands representable with no special-cased
// "word" directive (spec §6.4).
func (lw *Lowerer) emitLE(expr string, size int) {
	for k := 0; k < size; k++ {
		lw.emitByteLine(fmt.Sprintf("(%s >> %d) & 255", expr, 8*k))
	}
}

// emitBytecode emits a primitive's leading opcode byte. Per spec §9's
// open question, the standard lowerings assume env.BytecodeSize == 1
// and always emit it as a single byte via print_value(1, ...); this
// implementation takes that as a hard precondition rather than
// extending every emission site to a declared width the sources never
// honour anyway.
func (lw *Lowerer) emitBytecode(value uint64) {
	lw.emitLE(strconv.FormatUint(value, 10), 1)
}

// emitOperand renders a and spreads it across size bytes.
func (lw *Lowerer) emitOperand(a ast.Argument, size int) error {
	text, err := lw.renderArg(a)
	if err != nil {
		return err
	}
	lw.emitLE(text, size)
	return nil
}

// emitDefinition emits a single primitive invocation (spec §4.5,
// component C5), dispatching on the definition's tag. callee is the
// name used purely for diagnostics.
func (lw *Lowerer) emitDefinition(callee string, def env.Definition, args []ast.Argument) error {
	switch def.Kind {
	case env.KindDef:
		return lw.emitDef(callee, def, args)
	case env.KindMac:
		return lw.emitMac(callee, def, args)
	case env.KindAlias:
		return lw.emitAlias(def, args)
	default:
		return diag.Fatalf("primitive %q has unknown definition kind", callee)
	}
}

func (lw *Lowerer) emitDef(callee string, def env.Definition, args []ast.Argument) error {
	if len(args) < len(def.Parameters) {
		return diag.Fatalf("not enough arguments to %s: expected %d, got %d", callee, len(def.Parameters), len(args))
	}
	if len(args) > len(def.Parameters) {
		lw.Report.Warn("excess arguments to %s: expected %d, got %d", callee, len(def.Parameters), len(args))
	}
	lw.comment(callee)
	lw.emitBytecode(def.Bytecode)
	for i, p := range def.Parameters {
		if err := lw.emitOperand(args[i], p.Size); err != nil {
			return err
		}
	}
	return nil
}

func (lw *Lowerer) emitMac(callee string, def env.Definition, callerArgs []ast.Argument) error {
	aliased, ok := lw.Env.Lookup(def.Alias)
	if !ok {
		return diag.Fatalf("macro-alias %q: please `use std;` or provide an implementation of %s", callee, def.Alias)
	}
	if aliased.Kind != env.KindDef {
		return diag.Fatalf("macro-alias %q: aliased primitive %s must be a plain bytecode definition", callee, def.Alias)
	}
	lw.comment(callee)
	lw.emitBytecode(aliased.Bytecode)
	for i, p := range aliased.Parameters {
		tmpl := def.Arguments[i]
		switch {
		case tmpl.Kind == ast.ArgStr:
			// Inline MAC-template literal, not a string-table entry: no
			// width suffix, no trailing null terminator (spec §4.5).
			lw.emitByteLine(strconv.Quote(tmpl.Str))
		case tmpl.Kind == ast.ArgRef:
			if tmpl.Index < 1 || tmpl.Index > len(callerArgs) {
				return diag.Fatalf("macro-alias %q: ARG(%d) out of range (%d caller argument(s))", callee, tmpl.Index, len(callerArgs))
			}
			if err := lw.emitOperand(callerArgs[tmpl.Index-1], p.Size); err != nil {
				return err
			}
		default:
			if err := lw.emitOperand(tmpl, p.Size); err != nil {
				return err
			}
		}
	}
	return nil
}

func (lw *Lowerer) emitAlias(def env.Definition, args []ast.Argument) error {
	var rendered []string
	i := 0
	for ; i < len(def.Parameters); i++ {
		if def.Parameters[i].Kind == env.ParamVarargs {
			break
		}
		if i >= len(args) {
			break
		}
		text, err := lw.renderArg(args[i])
		if err != nil {
			return err
		}
		rendered = append(rendered, text)
	}
	for ; i < len(args); i++ {
		a := args[i]
		if a.Kind == ast.ArgStr {
			rendered = append(rendered, strconv.Quote(a.Str))
			continue
		}
		text, err := lw.renderArg(a)
		if err != nil {
			return err
		}
		rendered = append(rendered, text)
	}
	open := dialect.Render(lw.Dialect.MacroOpen, def.Target)
	lw.emit("\t" + open + strings.Join(rendered, ", ") + lw.Dialect.MacroEnd)
	return nil
}
