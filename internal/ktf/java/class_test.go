package java

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jkki-i/wie/internal/core"
	"github.com/jkki-i/wie/internal/wipij"
)

func baseProto() wipij.JavaClassProto {
	return wipij.JavaClassProto{
		Methods: []wipij.JavaMethodProto{
			{Name: "<init>", Signature: "()V", Body: noBody},
			{Name: "baseOnly", Signature: "()I", Body: noBody},
		},
		Fields: []wipij.JavaFieldProto{
			{Name: "a", Signature: "I"},
		},
	}
}

func derivedProto() wipij.JavaClassProto {
	return wipij.JavaClassProto{
		ParentClass: "Base",
		Methods: []wipij.JavaMethodProto{
			{Name: "<init>", Signature: "()V", Body: noBody},
			{Name: "derivedOnly", Signature: "()I", Body: noBody},
			{Name: "another", Signature: "(II)V", Body: noBody},
		},
		Fields: []wipij.JavaFieldProto{
			{Name: "b", Signature: "I"},
			{Name: "wide", Signature: "J"},
			{Name: "c", Signature: "Ljava/lang/String;"},
		},
	}
}

func loadHierarchy(t *testing.T) (*sparseMemory, *core.Allocator, *JavaClass, *JavaClass) {
	t.Helper()

	mem, alloc, err := testHeap()
	require.NoError(t, err)

	bodies := &fakeBodies{}
	base, err := NewClassFromProto(mem, alloc, "Base", baseProto(), nil, nil, bodies.register)
	require.NoError(t, err)
	derived, err := NewClassFromProto(mem, alloc, "Derived", derivedProto(), base, nil, bodies.register)
	require.NoError(t, err)

	require.NoError(t, RegisterClass(mem, base))
	require.NoError(t, RegisterClass(mem, derived))
	_, err = VtableIndex(mem, base)
	require.NoError(t, err)
	_, err = VtableIndex(mem, derived)
	require.NoError(t, err)

	return mem, alloc, base, derived
}

func TestClassRecordInvariants(t *testing.T) {
	mem, _, base, derived := loadHierarchy(t)

	for _, class := range []*JavaClass{base, derived} {
		desc, err := class.descriptor()
		require.NoError(t, err)

		ptrs, err := class.MethodPtrs()
		require.NoError(t, err)
		require.Equal(t, int(desc.MethodCount), len(ptrs), "method_count must match the methods array")

		// Terminating zero word.
		term, err := core.ReadU32(mem, desc.PtrMethods+uint32(len(ptrs))*4)
		require.NoError(t, err)
		require.Zero(t, term)

		for _, ptr := range ptrs {
			method := MethodFromPtr(mem, ptr)
			owner, err := method.Class()
			require.NoError(t, err)
			require.Equal(t, class.Ptr, owner.Ptr, "method class_ptr must point back to the class")
		}
	}
}

func TestClassNames(t *testing.T) {
	_, _, base, derived := loadHierarchy(t)

	baseName, err := base.Name()
	require.NoError(t, err)
	require.Equal(t, "Base", baseName)

	derivedName, err := derived.Name()
	require.NoError(t, err)
	require.Equal(t, "Derived", derivedName)

	parent, err := derived.Parent()
	require.NoError(t, err)
	require.Equal(t, base.Ptr, parent.Ptr)
}

func TestVtableOrdering(t *testing.T) {
	mem, _, base, derived := loadHierarchy(t)

	baseMethods, err := base.MethodPtrs()
	require.NoError(t, err)
	derivedMethods, err := derived.MethodPtrs()
	require.NoError(t, err)

	raw, err := derived.readRaw()
	require.NoError(t, err)

	vtable, err := readPtrList(mem, raw.PtrVtable)
	require.NoError(t, err)

	// Root methods first, in order, then the derived class's own.
	require.Equal(t, append(baseMethods, derivedMethods...), vtable)
	require.Equal(t, len(vtable), int(raw.VtableCount))
}

func TestMethodLookup(t *testing.T) {
	_, _, base, derived := loadHierarchy(t)

	method, err := derived.Method(FullName{Name: "derivedOnly", Signature: "()I"})
	require.NoError(t, err)
	require.NotNil(t, method)

	idx, err := method.VtableIndex()
	require.NoError(t, err)
	require.Equal(t, uint16(1), idx, "vtable_index is the position in the class's own table")

	// Lookup ignores the tag byte.
	tagged, err := derived.Method(FullName{Tag: 72, Name: "derivedOnly", Signature: "()I"})
	require.NoError(t, err)
	require.Equal(t, method.Ptr, tagged.Ptr)

	// Signature participates in identity.
	missing, err := derived.Method(FullName{Name: "derivedOnly", Signature: "()V"})
	require.NoError(t, err)
	require.Nil(t, missing)

	// Inherited methods are not found through the subclass: only the class's
	// own table is scanned. This mirrors the original client.
	inherited, err := derived.Method(FullName{Name: "baseOnly", Signature: "()I"})
	require.NoError(t, err)
	require.Nil(t, inherited)

	fromBase, err := base.Method(FullName{Name: "baseOnly", Signature: "()I"})
	require.NoError(t, err)
	require.NotNil(t, fromBase)
}

func TestFieldOffsets(t *testing.T) {
	_, _, base, derived := loadHierarchy(t)

	a, err := base.Field("a")
	require.NoError(t, err)
	require.NotNil(t, a)
	aOffset, err := a.Offset()
	require.NoError(t, err)
	require.Equal(t, uint32(0), aOffset)

	// Derived fields start after the parent's block.
	b, err := derived.Field("b")
	require.NoError(t, err)
	bOffset, err := b.Offset()
	require.NoError(t, err)
	require.Equal(t, uint32(4), bOffset)

	// A long occupies two words; the next field skips over it.
	c, err := derived.Field("c")
	require.NoError(t, err)
	cOffset, err := c.Offset()
	require.NoError(t, err)
	require.Equal(t, uint32(16), cOffset)

	baseSize, err := base.FieldSize()
	require.NoError(t, err)
	require.Equal(t, uint32(4), baseSize)

	derivedSize, err := derived.FieldSize()
	require.NoError(t, err)
	require.Equal(t, uint32(20), derivedSize)
}

func TestFieldLookupWalksHierarchy(t *testing.T) {
	_, _, _, derived := loadHierarchy(t)

	field, err := derived.FieldLookup("a")
	require.NoError(t, err)
	require.NotNil(t, field)

	owner, err := field.Class()
	require.NoError(t, err)
	name, err := owner.Name()
	require.NoError(t, err)
	require.Equal(t, "Base", name)
}

func TestElementSize(t *testing.T) {
	mem, alloc, err := testHeap()
	require.NoError(t, err)

	bodies := &fakeBodies{}
	cases := map[string]uint32{
		"[B":                  1,
		"[Z":                  1,
		"[C":                  2,
		"[S":                  2,
		"[I":                  4,
		"[Ljava/lang/String;": 4,
		"[[I":                 4,
		"[J":                  8,
		"[D":                  8,
	}
	for name, want := range cases {
		class, err := NewClassFromProto(mem, alloc, name, wipij.ArrayProto(), nil, nil, bodies.register)
		require.NoError(t, err)

		got, err := class.ElementSize()
		require.NoError(t, err)
		require.Equal(t, want, got, "element size of %s", name)
	}
}
