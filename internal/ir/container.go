package ir

import "github.com/hassan/olivine/internal/types"

// Function holds a return type, a Ref name, an ordered parameter list (each
// a Var term), and an ordered instruction body. An empty body means this is
// a declaration; a non-empty body means a definition.
type Function struct {
	Ret      *types.Type
	Name     Ref
	Params   []*Term
	Body     []*Instruction
	Variadic bool
}

// NewFunction builds a function container. Pass a nil/empty body for a
// declaration.
func NewFunction(ret *types.Type, name Ref, params []*Term, body []*Instruction) *Function {
	return &Function{
		Ret:    ret,
		Name:   name,
		Params: append([]*Term(nil), params...),
		Body:   append([]*Instruction(nil), body...),
	}
}

// IsDeclaration reports whether f has no body.
func (f *Function) IsDeclaration() bool { return len(f.Body) == 0 }

// Type reports f's Fn-kinded signature type.
func (f *Function) Type() *types.Type {
	paramTypes := make([]*types.Type, len(f.Params))
	for i, p := range f.Params {
		paramTypes[i] = p.Type()
	}
	return types.FnType(f.Ret, paramTypes)
}

// Clone returns a shallow structural copy with a fresh backing Body/Params
// slice, so that transforms can rebuild a function without aliasing the
// original's storage.
func (f *Function) Clone() *Function {
	fn := NewFunction(f.Ret, f.Name, f.Params, f.Body)
	fn.Variadic = f.Variadic
	return fn
}

// Global holds a declared type, a Ref name, and an optional initializer
// term whose type must equal the declared type.
type Global struct {
	Typ      *types.Type
	Name     Ref
	Init     *Term // nil if uninitialized
	Constant bool
}

// NewGlobal builds a global container.
func NewGlobal(typ *types.Type, name Ref, init *Term) *Global {
	return &Global{Typ: typ, Name: name, Init: init}
}

// Module is the top-level container: target strings, comdat names, globals,
// declarations, definitions, and the set of external Refs.
type Module struct {
	TargetTriple string
	DataLayout   string
	Comdats      map[string]bool
	Globals      []*Global
	Declarations []*Function
	Definitions  []*Function
	Externals    map[string]bool // keyed by Ref.key()
}

// NewModule builds an empty module.
func NewModule() *Module {
	return &Module{
		Comdats:   map[string]bool{},
		Externals: map[string]bool{},
	}
}

// IsExternal reports whether ref is listed in the module's externals set.
func (m *Module) IsExternal(ref Ref) bool { return m.Externals[ref.key()] }

// MarkExternal records ref as external.
func (m *Module) MarkExternal(ref Ref) { m.Externals[ref.key()] = true }

// SortedComdats returns the comdat names in deterministic (lexical) order.
func (m *Module) SortedComdats() []string {
	out := make([]string, 0, len(m.Comdats))
	for name := range m.Comdats {
		out = append(out, name)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j] < out[j-1]; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// SortedExternals returns the external Refs in deterministic order (§3.1).
func (m *Module) SortedExternals() []Ref {
	refs := make([]Ref, 0, len(m.Externals))
	seen := map[string]Ref{}
	for _, g := range m.Globals {
		if m.IsExternal(g.Name) {
			seen[g.Name.key()] = g.Name
		}
	}
	for _, fn := range append(append([]*Function{}, m.Declarations...), m.Definitions...) {
		if m.IsExternal(fn.Name) {
			seen[fn.Name.key()] = fn.Name
		}
	}
	for k := range m.Externals {
		if r, ok := seen[k]; ok {
			refs = append(refs, r)
		}
	}
	return SortRefs(refs)
}
