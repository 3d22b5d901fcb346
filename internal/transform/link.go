package transform

import (
	"github.com/hassan/olivine/internal/diag"
	"github.com/hassan/olivine/internal/ir"
)

// LinkContext holds the combined target metadata shared by a set of linked
// modules.
type LinkContext struct {
	TargetTriple string
	DataLayout   string
}

// LinkTargetInfo scans mods: if any two non-empty data-layouts disagree (or
// triples), it fails; otherwise the first non-empty value of each is
// recorded.
func LinkTargetInfo(mods []*ir.Module) (*LinkContext, error) {
	ctx := &LinkContext{}
	for _, m := range mods {
		if m.DataLayout != "" {
			if ctx.DataLayout == "" {
				ctx.DataLayout = m.DataLayout
			} else if ctx.DataLayout != m.DataLayout {
				return nil, diag.New(diag.Link, "conflicting data layouts: %q vs %q", ctx.DataLayout, m.DataLayout)
			}
		}
		if m.TargetTriple != "" {
			if ctx.TargetTriple == "" {
				ctx.TargetTriple = m.TargetTriple
			} else if ctx.TargetTriple != m.TargetTriple {
				return nil, diag.New(diag.Link, "conflicting target triples: %q vs %q", ctx.TargetTriple, m.TargetTriple)
			}
		}
	}
	return ctx, nil
}

// renameInternals renames every Ref of m not listed in its externals set to
// a fresh numeric index drawn from next, so internal symbols never collide
// across the linked set.
func renameInternals(m *ir.Module, next *uint64) *ir.Module {
	refs := RefMap{}
	assign := func(r ir.Ref) {
		if m.IsExternal(r) {
			return
		}
		fresh := ir.RefIndex(*next)
		*next++
		refs.Put(r, fresh)
	}
	for _, g := range m.Globals {
		assign(g.Name)
	}
	for _, fn := range m.Declarations {
		assign(fn.Name)
	}
	for _, fn := range m.Definitions {
		assign(fn.Name)
	}
	return Rename(m, refs)
}

func sameSignature(a, b *ir.Function) bool {
	if a.Ret != b.Ret || a.Variadic != b.Variadic || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i].Type() != b.Params[i].Type() {
			return false
		}
	}
	return true
}

// Link merges mods into a single module: internal symbols are renamed to
// fresh, globally unique numeric indices; external globals/declarations
// with matching Refs are coalesced if their types/signatures agree (a
// LinkError otherwise); a declaration whose Ref is also defined is dropped
// in favour of the definition; duplicate external definitions are always a
// LinkError.
func Link(mods []*ir.Module) (*ir.Module, error) {
	ctx, err := LinkTargetInfo(mods)
	if err != nil {
		return nil, err
	}
	out := ir.NewModule()
	out.TargetTriple = ctx.TargetTriple
	out.DataLayout = ctx.DataLayout

	globalByKey := map[string]int{}
	declByKey := map[string]int{}
	defByKey := map[string]bool{}

	// Internal Refs are renamed starting from a high base so fresh indices
	// cannot collide with small externally-visible numeric Refs.
	var next uint64 = 1 << 32
	for _, m := range mods {
		renamed := renameInternals(m, &next)
		for name := range renamed.Comdats {
			out.Comdats[name] = true
		}
		for _, g := range renamed.Globals {
			key := refKey(g.Name)
			if idx, ok := globalByKey[key]; ok {
				existing := out.Globals[idx]
				if existing.Typ != g.Typ {
					return nil, diag.New(diag.Link, "global %s redeclared with conflicting type %s (was %s)", g.Name, g.Typ, existing.Typ)
				}
				if existing.Init == nil && g.Init != nil {
					out.Globals[idx] = g
				}
				continue
			}
			globalByKey[key] = len(out.Globals)
			out.Globals = append(out.Globals, g)
			if renamed.IsExternal(g.Name) {
				out.MarkExternal(g.Name)
			}
		}
		for _, fn := range renamed.Declarations {
			key := refKey(fn.Name)
			if idx, ok := declByKey[key]; ok {
				if !sameSignature(out.Declarations[idx], fn) {
					return nil, diag.New(diag.Link, "function %s redeclared with conflicting signature", fn.Name)
				}
				continue
			}
			declByKey[key] = len(out.Declarations)
			out.Declarations = append(out.Declarations, fn)
			if renamed.IsExternal(fn.Name) {
				out.MarkExternal(fn.Name)
			}
		}
		for _, fn := range renamed.Definitions {
			key := refKey(fn.Name)
			if defByKey[key] {
				return nil, diag.New(diag.Link, "function %s is defined more than once", fn.Name)
			}
			defByKey[key] = true
			out.Definitions = append(out.Definitions, fn)
			if renamed.IsExternal(fn.Name) {
				out.MarkExternal(fn.Name)
			}
		}
	}
	decls := make([]*ir.Function, 0, len(out.Declarations))
	for _, fn := range out.Declarations {
		if !defByKey[refKey(fn.Name)] {
			decls = append(decls, fn)
		}
	}
	out.Declarations = decls
	return out, nil
}
