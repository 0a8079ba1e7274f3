package env

// Std builds the preloaded "std" environment (spec §6.2): the
// primitive set every core lowering may reference. Bytecodes are
// assigned 0-based in declaration order, mirroring the teacher's
// cpu.go opcode block but generated rather than hand-enumerated,
// since std's primitive count is driven by the width/op cross
// product rather than a fixed instruction set.
func Std() *Environment {
	b := &stdBuilder{defines: make(map[string]Definition)}

	b.def0("return")
	b.def0("yield")

	b.def("goto", arg(2, ParamCon))
	b.def("goto_far", arg(3, ParamCon))
	b.def("goto_conditional", arg(1, ParamArg), arg(2, ParamCon))
	b.def("goto_conditional_far", arg(1, ParamArg), arg(3, ParamCon))
	b.def("goto_conditional_not", arg(1, ParamArg), arg(2, ParamCon))
	b.def("callasm", arg(2, ParamCon))
	b.def("callasm_far", arg(3, ParamCon))

	ops := []string{"add", "sub", "mul", "div", "equ", "not", "lt", "lte", "gt", "gte", "band", "bor", "and", "or"}
	for w := 1; w <= 4; w++ {
		suf := widthSuffix(w)
		for _, op := range ops {
			b.def(op+suf, arg(w, ParamArg), arg(w, ParamArg), arg(w, ParamArg))
			b.def(op+suf+"_const", arg(w, ParamArg), arg(w, ParamCon), arg(w, ParamArg))
		}
	}

	for w := 1; w <= 4; w++ {
		suf := widthSuffix(w)
		b.def("copy"+suf, arg(w, ParamArg), arg(w, ParamArg))
		b.def("load"+suf, arg(w, ParamArg), arg(w, ParamArg))
		b.def("store"+suf, arg(w, ParamArg), arg(w, ParamArg))
		b.def("copy"+suf+"_const", arg(w, ParamArg), arg(w, ParamCon))
		b.def("load"+suf+"_const", arg(w, ParamArg), arg(w, ParamCon))
		b.def("store"+suf+"_const", arg(w, ParamCon), arg(w, ParamArg))
	}

	// Width casts for every ordered pair of distinct widths actually
	// used by the core (size coercion, C7, never needs same-width or
	// width-0 casts).
	for _, a := range []int{1, 2, 3, 4} {
		for _, c := range []int{1, 2, 3, 4} {
			if a == c {
				continue
			}
			name := "cast_" + bits(a) + "to" + bits(c)
			b.def(name, arg(c, ParamArg), arg(a, ParamArg))
		}
	}

	return &Environment{
		Name:          "std",
		Defines:       b.defines,
		Section:       "none",
		Terminator:    -1,
		Pool:          256,
		BytecodeCount: int(b.next),
		BytecodeSize:  1,
	}
}

type stdBuilder struct {
	defines map[string]Definition
	next    uint64
}

func (b *stdBuilder) def0(name string) { b.def(name) }

func (b *stdBuilder) def(name string, params ...Parameter) {
	b.defines[name] = Definition{Kind: KindDef, Bytecode: b.next, Parameters: params}
	b.next++
}

func arg(size int, kind ParamKind) Parameter { return Parameter{Kind: kind, Size: size} }

func widthSuffix(size int) string {
	switch size {
	case 1:
		return ""
	case 2:
		return "16"
	case 3:
		return "24"
	case 4:
		return "32"
	}
	return ""
}

func bits(size int) string {
	switch size {
	case 1:
		return "8"
	case 2:
		return "16"
	case 3:
		return "24"
	case 4:
		return "32"
	}
	return "0"
}
