package transform

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hassan/olivine/internal/ir"
	"github.com/hassan/olivine/internal/types"
)

func TestRenameLeavesUnlistedRefsUntouched(t *testing.T) {
	m := ir.NewModule()
	g := ir.NewGlobal(types.IntType(32), ir.RefName("x"), nil)
	m.Globals = append(m.Globals, g)
	m.MarkExternal(g.Name)

	out := Rename(m, RefMap{})
	require.Equal(t, "x", out.Globals[0].Name.Name())
	require.True(t, out.IsExternal(out.Globals[0].Name))
}

func TestRenamePropagatesThroughGlobalRefUsers(t *testing.T) {
	m := ir.NewModule()
	target := ir.NewGlobal(types.IntType(32), ir.RefName("target"), nil)
	m.Globals = append(m.Globals, target)

	ref := ir.GlobalRefTerm(ir.RefName("target"), types.PtrType())
	user := ir.NewGlobal(types.PtrType(), ir.RefName("user"), ref)
	m.Globals = append(m.Globals, user)

	refs := RefMap{}
	refs.Put(ir.RefName("target"), ir.RefIndex(7))

	out := Rename(m, refs)
	require.Equal(t, uint64(7), out.Globals[0].Name.Index())

	usedRef, hasRef := out.Globals[1].Init.Ref()
	require.True(t, hasRef)
	require.Equal(t, uint64(7), usedRef.Index())
}

func TestRenamePreservesExternalFlagAcrossRename(t *testing.T) {
	m := ir.NewModule()
	fn := ir.NewFunction(types.VoidType(), ir.RefName("f"), nil, nil)
	m.Declarations = append(m.Declarations, fn)
	m.MarkExternal(fn.Name)

	refs := RefMap{}
	refs.Put(ir.RefName("f"), ir.RefIndex(42))

	out := Rename(m, refs)
	require.True(t, out.IsExternal(out.Declarations[0].Name))
}
