package lower

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/eievui5/evscript/internal/ast"
	"github.com/eievui5/evscript/internal/dialect"
	"github.com/eievui5/evscript/internal/diag"
	"github.com/eievui5/evscript/internal/env"
)

func compile(t *testing.T, e *env.Environment, script *ast.Script) string {
	t.Helper()
	var buf bytes.Buffer
	report := diag.NewReporter(&buf)
	lw := New(e, dialect.Default(), &buf, report)
	if err := lw.Compile("main", script); err != nil {
		t.Fatalf("compile: %v", err)
	}
	return buf.String()
}

// assertOrdered checks that each fragment in order appears in out,
// each one strictly after the previous.
func assertOrdered(t *testing.T, out string, fragments ...string) {
	t.Helper()
	pos := 0
	for _, f := range fragments {
		i := strings.Index(out[pos:], f)
		if i < 0 {
			t.Fatalf("expected to find %q after position %d; full output:\n%s", f, pos, out)
		}
		pos += i + len(f)
	}
}

// TestS1DeclareAssign mirrors spec scenario S1.
func TestS1DeclareAssign(t *testing.T) {
	e := env.Std()
	script := &ast.Script{Statements: []ast.Statement{
		{Kind: ast.DeclareAssign, Identifier: "x", Size: 1, Value: 5},
	}}
	out := compile(t, e, script)

	copyConst, _ := e.Lookup("copy_const")
	assertOrdered(t, out,
		fmt.Sprintf("db (%d >> 0) & 255", copyConst.Bytecode),
		"db (0 >> 0) & 255",
		"db (5 >> 0) & 255",
	)
}

// TestS2SixteenBitAdd mirrors spec scenario S2.
func TestS2SixteenBitAdd(t *testing.T) {
	e := env.Std()
	script := &ast.Script{Statements: []ast.Statement{
		{Kind: ast.DeclareAssign, Identifier: "a", Size: 2, Value: 1},
		{Kind: ast.DeclareAssign, Identifier: "b", Size: 2, Value: 2},
		{Kind: ast.DeclareAssign, Identifier: "c", Size: 2, Value: 3},
		{Kind: ast.Operation, Identifier: "c", LHS: "a", RHS: ast.Var("b"), Op: ast.OpAdd},
	}}
	out := compile(t, e, script)

	if got := strings.Count(out, "copy16_const"); got != 3 {
		t.Errorf("expected 3 copy16_const comments, got %d", got)
	}
	if !strings.Contains(out, "; add16") {
		t.Errorf("expected an add16 emission, got:\n%s", out)
	}
	// a=index 0 (2 bytes), b=index 2, c=index 4; first-fit in declaration order.
	assertOrdered(t, out, "db (0 >> 0) & 255", "db (2 >> 0) & 255", "db (4 >> 0) & 255")
}

// TestS3IfElse mirrors spec scenario S3.
func TestS3IfElse(t *testing.T) {
	e := env.Std()
	script := &ast.Script{Statements: []ast.Statement{
		{Kind: ast.DeclareAssign, Identifier: "x", Size: 1, Value: 0},
		{
			Kind: ast.If,
			Conditions: []ast.Statement{
				{Kind: ast.Operation, LHS: "x", RHS: ast.Num(1), Op: ast.OpEq, IsConst: true},
			},
			Statements:     []ast.Statement{{Kind: ast.Assign, Identifier: "x", Value: 2}},
			ElseStatements: []ast.Statement{{Kind: ast.Assign, Identifier: "x", Value: 3}},
		},
	}}
	out := compile(t, e, script)

	if !strings.Contains(out, "; equ_const") {
		t.Errorf("expected an equ_const emission, got:\n%s", out)
	}
	if !strings.Contains(out, "; goto_conditional_not") {
		t.Errorf("expected a goto_conditional_not emission, got:\n%s", out)
	}
	if !strings.Contains(out, ".__endif_0") {
		t.Errorf("expected label .__endif_0, got:\n%s", out)
	}
	if !strings.Contains(out, ".__endelse_1") {
		t.Errorf("expected label .__endelse_1, got:\n%s", out)
	}
	assertOrdered(t, out, "; equ_const", "; goto_conditional_not", ".__endif_0", "; goto", ".__endelse_1")
}

// TestS4While mirrors spec scenario S4.
func TestS4While(t *testing.T) {
	e := env.Std()
	script := &ast.Script{Statements: []ast.Statement{
		{Kind: ast.DeclareAssign, Identifier: "i", Size: 1, Value: 0},
		{
			Kind: ast.While,
			Conditions: []ast.Statement{
				{Kind: ast.Operation, LHS: "i", RHS: ast.Num(10), Op: ast.OpLt, IsConst: true},
			},
			Statements: []ast.Statement{
				{Kind: ast.Operation, Identifier: "i", LHS: "i", RHS: ast.Num(1), Op: ast.OpAdd, IsConst: true},
			},
		},
	}}
	out := compile(t, e, script)

	assertOrdered(t, out,
		"; goto\n", ".__whilecondition_2",
	)
	if !strings.Contains(out, ".__beginwhile_0") {
		t.Errorf("expected label .__beginwhile_0, got:\n%s", out)
	}
	if !strings.Contains(out, ".__endwhile_1") {
		t.Errorf("expected label .__endwhile_1, got:\n%s", out)
	}
	if !strings.Contains(out, "; lt_const") {
		t.Errorf("expected an lt_const emission, got:\n%s", out)
	}
	if !strings.Contains(out, "; goto_conditional\n") {
		t.Errorf("expected a goto_conditional emission, got:\n%s", out)
	}
}

// TestS5Repeat mirrors spec scenario S5.
func TestS5Repeat(t *testing.T) {
	e := env.Std()
	call, _ := e.Lookup("yield")
	_ = call
	script := &ast.Script{Statements: []ast.Statement{
		{
			Kind:       ast.Repeat,
			Value:      1000,
			Statements: []ast.Statement{{Kind: ast.Call, Identifier: "yield"}},
		},
	}}
	out := compile(t, e, script)

	if !strings.Contains(out, "; copy16_const") {
		t.Errorf("expected a 16-bit counter copy16_const, got:\n%s", out)
	}
	if !strings.Contains(out, "db (1000 >> 0) & 255") {
		t.Errorf("expected the counter's initial value 1000 to be emitted, got:\n%s", out)
	}
	if !strings.Contains(out, "; sub16_const") {
		t.Errorf("expected a sub16_const decrement, got:\n%s", out)
	}
	if !strings.Contains(out, "; goto_conditional\n") {
		t.Errorf("expected a goto_conditional loop-back, got:\n%s", out)
	}
}

// TestS6StringArgument mirrors spec scenario S6.
func TestS6StringArgument(t *testing.T) {
	e := env.Std()
	e.Defines["print"] = env.Definition{
		Kind:       env.KindDef,
		Bytecode:   uint64(len(e.Defines)),
		Parameters: []env.Parameter{{Kind: env.ParamArg, Size: 2}},
	}
	script := &ast.Script{Statements: []ast.Statement{
		{Kind: ast.Call, Identifier: "print", Args: []ast.Argument{ast.Str("hi")}},
		{Kind: ast.Call, Identifier: "print", Args: []ast.Argument{ast.Str("bye")}},
	}}
	out := compile(t, e, script)

	if !strings.Contains(out, ".string_table0") {
		t.Errorf("expected a reference to .string_table0, got:\n%s", out)
	}
	if !strings.Contains(out, ".string_table1") {
		t.Errorf("expected a reference to .string_table1, got:\n%s", out)
	}
	assertOrdered(t, out,
		".string_table0", "db \"hi\", 0",
		".string_table1", "db \"bye\", 0",
	)
}

// TestKindMac exercises C5's macro-alias shape directly: a custom
// environment entry that aliases a plain bytecode primitive and
// splices its own STR/ARG(i) template arguments in, rather than
// passing the caller's arguments straight through.
func TestKindMac(t *testing.T) {
	e := env.Std()
	e.Defines["shout"] = env.Definition{
		Kind: env.KindDef,
		Bytecode: uint64(len(e.Defines)),
		Parameters: []env.Parameter{{Kind: env.ParamCon, Size: 2}, {Kind: env.ParamArg, Size: 1}},
	}
	e.Defines["greet"] = env.Definition{
		Kind:  env.KindMac,
		Alias: "shout",
		Arguments: []ast.Argument{
			ast.Str("hello"),
			ast.Ref(1),
		},
	}
	script := &ast.Script{Statements: []ast.Statement{
		{Kind: ast.Call, Identifier: "greet", Args: []ast.Argument{ast.Num(9)}},
	}}
	out := compile(t, e, script)

	if !strings.Contains(out, "; greet") {
		t.Errorf("expected a greet comment, got:\n%s", out)
	}
	// The STR template renders as an inline byte-string with no width
	// suffix and no trailing null terminator: plain `db "hello"`, not
	// the string-table's `db "hello", 0`.
	if !strings.Contains(out, `db "hello"`) {
		t.Errorf("expected an inline db \"hello\" byte-string, got:\n%s", out)
	}
	if strings.Contains(out, `db "hello", 0`) {
		t.Errorf("STR template argument must not carry a string-table null terminator, got:\n%s", out)
	}
	shout, _ := e.Lookup("shout")
	if !strings.Contains(out, fmt.Sprintf("(%d >> 0) & 255", shout.Bytecode)) {
		t.Errorf("expected greet to emit shout's bytecode %d, got:\n%s", shout.Bytecode, out)
	}
	// ARG(1) splices the caller's sole argument, the literal 9, in
	// place of the template's own CON/NUM value.
	if !strings.Contains(out, "(9 >> 0) & 255") {
		t.Errorf("expected ARG(1) to splice the caller's argument (the literal 9), got:\n%s", out)
	}
}

// TestKindAlias exercises C5's assembler-macro-call shape: a fixed
// leading parameter followed by a VARARGS tail, with a string literal
// among the trailing caller arguments.
func TestKindAlias(t *testing.T) {
	e := env.Std()
	e.Defines["log_line"] = env.Definition{
		Kind:   env.KindAlias,
		Target: "LOG",
		Parameters: []env.Parameter{
			{Kind: env.ParamArg, Size: 1},
			{Kind: env.ParamVarargs},
		},
	}
	script := &ast.Script{Statements: []ast.Statement{
		{Kind: ast.DeclareAssign, Identifier: "level", Size: 1, Value: 1},
		{Kind: ast.Call, Identifier: "log_line", Args: []ast.Argument{
			ast.Var("level"), ast.Str("boot"), ast.Num(2),
		}},
	}}
	out := compile(t, e, script)

	if !strings.Contains(out, "LOG ") {
		t.Errorf("expected the assembler-macro-call mnemonic LOG, got:\n%s", out)
	}
	if !strings.Contains(out, `"boot"`) {
		t.Errorf("expected the varargs string literal to be quoted, got:\n%s", out)
	}
	assertOrdered(t, out, "LOG ", ", ", `"boot"`, ", ", "2")
}

func TestPoolTemporariesAreReleasedAcrossControlFlow(t *testing.T) {
	e := env.Std()
	script := &ast.Script{Statements: []ast.Statement{
		{Kind: ast.DeclareAssign, Identifier: "x", Size: 1, Value: 0},
		{
			Kind: ast.If,
			Conditions: []ast.Statement{
				{Kind: ast.Operation, LHS: "x", RHS: ast.Num(1), Op: ast.OpEq, IsConst: true},
			},
			Statements: []ast.Statement{{Kind: ast.Assign, Identifier: "x", Value: 2}},
		},
		// A second if reuses the pool slot freed by the first's auto_free,
		// proving the conditional's internal temporary didn't leak.
		{
			Kind: ast.If,
			Conditions: []ast.Statement{
				{Kind: ast.Operation, LHS: "x", RHS: ast.Num(2), Op: ast.OpEq, IsConst: true},
			},
			Statements: []ast.Statement{{Kind: ast.Assign, Identifier: "x", Value: 3}},
		},
	}}
	var buf bytes.Buffer
	report := diag.NewReporter(&buf)
	lw := New(e, dialect.Default(), &buf, report)
	if err := lw.Compile("main", script); err != nil {
		t.Fatalf("compile: %v", err)
	}
	// Both conditionals materialise a 1-byte internal temporary; if the
	// first leaked, the second would have landed at a different index.
	// x occupies index 0, so the first conditional's temporary is at index 1.
	if _, ok := lw.pool.Get("__evstemp1"); ok {
		t.Errorf("expected the first conditional's temporary to be freed, not left live at script end")
	}
	if got := strings.Count(buf.String(), "; equ_const"); got != 2 {
		t.Errorf("expected two equ_const emissions (one per if), got %d:\n%s", got, buf.String())
	}
}
