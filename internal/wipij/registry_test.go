package wipij

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterAndResolve(t *testing.T) {
	Register("registry/test/Thing", func() JavaClassProto {
		return JavaClassProto{
			ParentClass: "java/lang/Object",
			Methods: []JavaMethodProto{
				{Name: "<init>", Signature: "()V", Body: func(ctx JavaContext, args []uint32) (uint32, error) {
					return 0, nil
				}},
			},
		}
	})

	proto, ok := ClassProto("registry/test/Thing")
	require.True(t, ok)
	require.Equal(t, "java/lang/Object", proto.ParentClass)
	require.Len(t, proto.Methods, 1)

	_, ok = ClassProto("registry/test/Missing")
	require.False(t, ok)

	require.Contains(t, ClassNames(), "registry/test/Thing")
}

func TestArrayProtoEmpty(t *testing.T) {
	proto := ArrayProto()
	require.Empty(t, proto.Methods)
	require.Empty(t, proto.Fields)
	require.Empty(t, proto.ParentClass)
}
