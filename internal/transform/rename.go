package transform

import (
	"github.com/hassan/olivine/internal/ir"
	"github.com/hassan/olivine/internal/types"
)

// RefMap maps an old top-level Ref to a new one, keyed by the old Ref's
// canonical string form.
type RefMap map[string]ir.Ref

func refKey(r ir.Ref) string { return r.String() + "|" + boolKey(r.IsName()) }

func boolKey(b bool) string {
	if b {
		return "n"
	}
	return "i"
}

// Put records that old should be renamed to new.
func (m RefMap) Put(old, new ir.Ref) { m[refKey(old)] = new }

// Lookup returns the renamed Ref for old, if any.
func (m RefMap) Lookup(old ir.Ref) (ir.Ref, bool) {
	r, ok := m[refKey(old)]
	return r, ok
}

// Rename renames every top-level Ref in m that appears as a key in refs
// (globals, declarations, definitions), then replaces every GlobalRef term
// pointing at a renamed entity so references follow the rename. Function
// and global types are preserved.
func Rename(m *ir.Module, refs RefMap) *ir.Module {
	termMap := TermMap{}
	out := ir.NewModule()
	out.TargetTriple = m.TargetTriple
	out.DataLayout = m.DataLayout
	for name := range m.Comdats {
		out.Comdats[name] = true
	}

	renameRef := func(old ir.Ref) ir.Ref {
		if nr, ok := refs.Lookup(old); ok {
			return nr
		}
		return old
	}

	for _, g := range m.Globals {
		newName := renameRef(g.Name)
		if !newName.Equal(g.Name) {
			// A global is always referenced as a Ptr value (never at its own
			// declared storage type), so the substitution key must use Ptr
			// to match real usage sites built by the parser.
			termMap.Put(ir.GlobalRefTerm(g.Name, types.PtrType()), ir.GlobalRefTerm(newName, types.PtrType()))
			if m.IsExternal(g.Name) {
				out.MarkExternal(newName)
			}
		} else if m.IsExternal(g.Name) {
			out.MarkExternal(g.Name)
		}
		ng := ir.NewGlobal(g.Typ, newName, g.Init)
		ng.Constant = g.Constant
		out.Globals = append(out.Globals, ng)
	}
	for _, fn := range m.Declarations {
		newName := renameRef(fn.Name)
		if !newName.Equal(fn.Name) {
			termMap.Put(ir.GlobalRefTerm(fn.Name, fn.Type()), ir.GlobalRefTerm(newName, fn.Type()))
			termMap.Put(ir.GlobalRefTerm(fn.Name, types.PtrType()), ir.GlobalRefTerm(newName, types.PtrType()))
			if m.IsExternal(fn.Name) {
				out.MarkExternal(newName)
			}
		} else if m.IsExternal(fn.Name) {
			out.MarkExternal(fn.Name)
		}
		nfn := fn.Clone()
		nfn.Name = newName
		out.Declarations = append(out.Declarations, nfn)
	}
	for _, fn := range m.Definitions {
		newName := renameRef(fn.Name)
		if !newName.Equal(fn.Name) {
			termMap.Put(ir.GlobalRefTerm(fn.Name, fn.Type()), ir.GlobalRefTerm(newName, fn.Type()))
			termMap.Put(ir.GlobalRefTerm(fn.Name, types.PtrType()), ir.GlobalRefTerm(newName, types.PtrType()))
			if m.IsExternal(fn.Name) {
				out.MarkExternal(newName)
			}
		} else if m.IsExternal(fn.Name) {
			out.MarkExternal(fn.Name)
		}
		nfn := fn.Clone()
		nfn.Name = newName
		out.Definitions = append(out.Definitions, nfn)
	}

	for i, g := range out.Globals {
		out.Globals[i] = ReplaceGlobal(g, termMap)
	}
	for i, fn := range out.Declarations {
		out.Declarations[i] = ReplaceFunction(fn, termMap)
	}
	for i, fn := range out.Definitions {
		out.Definitions[i] = ReplaceFunction(fn, termMap)
	}
	return out
}
