package java

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkki-i/wie/internal/wipij"
)

func TestRegisterClassIdempotent(t *testing.T) {
	mem, alloc, err := testHeap()
	require.NoError(t, err)

	bodies := &fakeBodies{}
	class, err := NewClassFromProto(mem, alloc, "Foo", baseProto(), nil, nil, bodies.register)
	require.NoError(t, err)

	require.NoError(t, RegisterClass(mem, class))
	require.NoError(t, RegisterClass(mem, class))

	peb, err := readPeb(mem)
	require.NoError(t, err)

	ptrs, err := readPtrList(mem, peb.JavaClassesBase)
	require.NoError(t, err)
	require.Equal(t, []uint32{class.Ptr}, ptrs, "a class pointer appears at most once")
}

func TestFindLoadedClass(t *testing.T) {
	mem, alloc, err := testHeap()
	require.NoError(t, err)

	bodies := &fakeBodies{}
	class, err := NewClassFromProto(mem, alloc, "Foo", baseProto(), nil, nil, bodies.register)
	require.NoError(t, err)
	require.NoError(t, RegisterClass(mem, class))

	found, err := FindLoadedClass(mem, "Foo")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, class.Ptr, found.Ptr)

	// Lookup is stable.
	again, err := FindLoadedClass(mem, "Foo")
	require.NoError(t, err)
	require.Equal(t, found.Ptr, again.Ptr)

	missing, err := FindLoadedClass(mem, "Bar")
	require.NoError(t, err)
	require.Nil(t, missing)
}

func TestVtableIndexAppendOnMiss(t *testing.T) {
	mem, alloc, err := testHeap()
	require.NoError(t, err)

	bodies := &fakeBodies{}
	first, err := NewClassFromProto(mem, alloc, "First", baseProto(), nil, nil, bodies.register)
	require.NoError(t, err)
	second, err := NewClassFromProto(mem, alloc, "Second", wipij.JavaClassProto{
		Methods: []wipij.JavaMethodProto{{Name: "<init>", Signature: "()V", Body: noBody}},
	}, nil, nil, bodies.register)
	require.NoError(t, err)

	idx1, err := VtableIndex(mem, first)
	require.NoError(t, err)
	require.Equal(t, uint32(0), idx1)

	idx2, err := VtableIndex(mem, second)
	require.NoError(t, err)
	require.Equal(t, uint32(1), idx2)

	// Idempotent: asking again does not append.
	again, err := VtableIndex(mem, first)
	require.NoError(t, err)
	require.Equal(t, idx1, again)

	peb, err := readPeb(mem)
	require.NoError(t, err)
	vtables, err := readPtrList(mem, peb.VtablesBase)
	require.NoError(t, err)
	require.Len(t, vtables, 2)
}
