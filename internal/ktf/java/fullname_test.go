package java

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFullNameDecode(t *testing.T) {
	mem := newSparseMemory()

	blob := []byte{0x00, '(', 'I', ')', 'V', '+', '<', 'i', 'n', 'i', 't', '>', 0x00}
	require.NoError(t, mem.WriteBytes(0x1000, blob))

	name, err := ReadFullName(mem, 0x1000)
	require.NoError(t, err)
	require.Equal(t, uint8(0), name.Tag)
	require.Equal(t, "(I)V", name.Signature)
	require.Equal(t, "<init>", name.Name)

	require.Equal(t, blob, name.Bytes())
}

func TestFullNameTagRoundTrip(t *testing.T) {
	mem := newSparseMemory()

	original := FullName{Tag: 72, Name: "<init>", Signature: "()V"}
	require.NoError(t, mem.WriteBytes(0x2000, original.Bytes()))

	decoded, err := ReadFullName(mem, 0x2000)
	require.NoError(t, err)
	require.Equal(t, original, decoded)
	require.Equal(t, original.Bytes(), decoded.Bytes())
}

func TestFullNameEqualityIgnoresTag(t *testing.T) {
	a := FullName{Tag: 0, Name: "getX", Signature: "()I"}
	b := FullName{Tag: 72, Name: "getX", Signature: "()I"}
	c := FullName{Tag: 0, Name: "getX", Signature: "()V"}

	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
}

func TestFullNameMalformed(t *testing.T) {
	mem := newSparseMemory()

	// No '+' separator.
	require.NoError(t, mem.WriteBytes(0x3000, []byte{0x00, 'a', 'b', 'c', 0x00}))

	_, err := ReadFullName(mem, 0x3000)
	require.Error(t, err)
}
