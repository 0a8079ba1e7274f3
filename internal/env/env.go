// Package env models the evscript "environment": a named bundle of
// primitive definitions, a pool size, a section name, and a
// terminator byte, against which a script is lowered. Grounded in
// the teacher's symtable.StructDef registration shape: a name-keyed
// map populated once at load time and only ever read during codegen.
package env

import "github.com/eievui5/evscript/internal/ast"

// ParamKind discriminates a primitive's parameter slot.
type ParamKind int

const (
	// ParamArg: caller supplies a variable operand of the slot's width.
	ParamArg ParamKind = iota
	// ParamCon: caller supplies a constant of the slot's width.
	ParamCon
	// ParamVarargs: appears only in ALIAS parameter lists; everything
	// from this slot on is emitted verbatim, comma-separated.
	ParamVarargs
)

// Parameter is one parameter slot of a primitive.
type Parameter struct {
	Kind ParamKind
	Size int // 1..4; meaningless for ParamVarargs
}

// DefKind discriminates the three shapes a Definition can take.
type DefKind int

const (
	KindDef DefKind = iota
	KindMac
	KindAlias
)

// Definition binds a name to a way of emitting a primitive
// invocation. Exactly one of the three shapes is populated,
// according to Kind; this mirrors the teacher's single Symbol struct
// carrying a Scope discriminator rather than three separate types,
// since the emitter switches on the tag and no virtual dispatch is
// needed (see spec §9, "Environment polymorphism").
type Definition struct {
	Kind DefKind

	// KindDef
	Bytecode   uint64
	Parameters []Parameter

	// KindMac: emits the Alias primitive's bytecode, using Arguments
	// as a template into which the caller's ARG(i) references splice.
	Alias     string
	Arguments []ast.Argument

	// KindAlias: emits an assembler-macro call to Target.
	Target string
	// Parameters is also used by KindAlias, describing Target's slots.
}

// Environment is the "ISA" a script compiles against.
type Environment struct {
	Name          string
	Defines       map[string]Definition
	Section       string
	Terminator    int64 // negative disables the trailing terminator byte
	Pool          int   // byte count of the script-local memory pool
	BytecodeCount int
	BytecodeSize  int // spec §9 open question: standard lowerings assume this is 1
}

// Lookup resolves a primitive name against the environment.
func (e *Environment) Lookup(name string) (Definition, bool) {
	d, ok := e.Defines[name]
	return d, ok
}

// Registry maps import names ("std" and any user-declared
// environments) to the Environment they resolve to.
type Registry struct {
	envs map[string]*Environment
}

// NewRegistry returns a Registry preloaded with the standard
// environment under the name "std".
func NewRegistry() *Registry {
	r := &Registry{envs: make(map[string]*Environment)}
	r.envs["std"] = Std()
	return r
}

// Register adds or replaces a named environment.
func (r *Registry) Register(e *Environment) { r.envs[e.Name] = e }

// Resolve looks up an environment by import name.
func (r *Registry) Resolve(name string) (*Environment, bool) {
	e, ok := r.envs[name]
	return e, ok
}
