// Package ast holds the statement-tree shapes the front end (package
// lang) produces and the lowerer (package lower) consumes. These are
// plain data with no mutating methods. A lowering that needs to treat
// a node differently (see the operator-demotion rule in
// Lowerer.lowerOperation) computes the difference locally instead of
// editing the node the parser returned; the one field the lowerer
// does write onto the tree is Statement.Dest, set by the conditional
// adapter on condition statements.
package ast

// ArgKind discriminates the Argument tagged union.
type ArgKind int

const (
	ArgVar ArgKind = iota // VAR(name): a variable, resolved against the pool at lowering time
	ArgNum                // NUM(n): unsigned integer literal
	ArgCon                // CON(s): opaque constant/symbol, passed through verbatim
	ArgStr                // STR(s): string literal, deferred into the string table
	ArgRef                // ARG(i): 1-indexed positional reference, legal only inside macro-alias definitions
)

// Argument is a value supplied at a call site.
type Argument struct {
	Kind  ArgKind
	Name  string // ArgVar, ArgCon
	Num   uint64 // ArgNum
	Str   string // ArgStr
	Index int    // ArgRef, 1-indexed
}

func Var(name string) Argument { return Argument{Kind: ArgVar, Name: name} }
func Num(n uint64) Argument    { return Argument{Kind: ArgNum, Num: n} }
func Con(s string) Argument    { return Argument{Kind: ArgCon, Name: s} }
func Str(s string) Argument    { return Argument{Kind: ArgStr, Str: s} }
func Ref(i int) Argument       { return Argument{Kind: ArgRef, Index: i} }

// Kind discriminates the Statement record.
type Kind int

const (
	Declare Kind = iota
	DeclareAssign
	DeclareCopy
	Assign
	Copy
	Call
	Drop
	Label
	Goto
	If
	While
	Do
	For
	Repeat
	Loop
	Operation
	Noop
	Break
	Continue
	CallAsm
	Purge
)

// Op names one of the sixteen arithmetic/comparison/logical operator
// slots an Operation statement can carry. Two pairs (Eq/LogEq and
// Ne/LogNe) share a primitive base name ("equ"/"not") by design: see
// spec §4.8's base[] table.
type Op int

const (
	OpEq Op = iota
	OpNe
	OpLt
	OpLte
	OpGt
	OpGte
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpBAnd
	OpBOr
	OpLogEq
	OpLogNe
	OpAnd
	OpOr
)

// base is the primitive-name table from spec §4.8, indexed by Op.
var base = [...]string{
	OpEq: "equ", OpNe: "not", OpLt: "lt", OpLte: "lte", OpGt: "gt", OpGte: "gte",
	OpAdd: "add", OpSub: "sub", OpMul: "mul", OpDiv: "div", OpBAnd: "band", OpBOr: "bor",
	OpLogEq: "equ", OpLogNe: "not", OpAnd: "and", OpOr: "or",
}

// BaseName returns the primitive name stem for an operator, before
// the width suffix and optional "_const" are appended.
func (o Op) BaseName() string { return base[o] }

// Statement is one node of a script's statement tree. Only the
// fields relevant to Kind are populated; the rest are zero.
type Statement struct {
	Kind Kind

	Identifier string // destination / label name / callee name, per Kind
	LHS        string // COPY.LHS, OPERATION.LHS (operand name read from the pool)
	RHS        Argument // COPY.RHS, OPERATION.RHS (operand; may demote var->const at lowering)
	Args       []Argument // CALL.Args, CALLASM verbatim text carried in Args[0] as ArgStr
	Value      uint64     // ASSIGN.Value, REPEAT.Value (iteration count)
	Size       int        // DECLARE*.Size: declaration width in bytes, 1..4

	Op       Op   // Operation.Op
	IsConst  bool // Operation: true if parsed as the const-form (NUM rhs) rather than var-form

	Statements     []Statement // loop/if body
	ElseStatements []Statement // IF.ElseStatements
	Conditions     []Statement // 1 entry for if/while/do, 3 for for (prologue, test, epilogue)

	Dest string // set by the conditional adapter (C6) after materialising a temporary; not produced by the parser
}

// Script is the top-level unit handed to the lowerer: which
// environment it compiles against, and its ordered statements.
type Script struct {
	Env        string
	Statements []Statement
}
