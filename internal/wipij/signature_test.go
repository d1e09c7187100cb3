package wipij

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSignatureParams(t *testing.T) {
	cases := []struct {
		sig  string
		want []string
	}{
		{"()V", nil},
		{"(I)V", []string{"I"}},
		{"(II)V", []string{"I", "I"}},
		{"(Ljava/lang/String;)I", []string{"Ljava/lang/String;"}},
		{"([BI)V", []string{"[B", "I"}},
		{"([[Ljava/lang/String;J)V", []string{"[[Ljava/lang/String;", "J"}},
	}

	for _, tc := range cases {
		got, err := SignatureParams(tc.sig)
		require.NoError(t, err, tc.sig)
		require.Equal(t, tc.want, got, tc.sig)
	}
}

func TestSignatureParamsMalformed(t *testing.T) {
	for _, sig := range []string{"", "I", "(I", "(Q)V", "(L)V", "(Lfoo)V"} {
		_, err := SignatureParams(sig)
		require.Error(t, err, sig)
	}
}

func TestFieldWidth(t *testing.T) {
	require.Equal(t, uint32(4), FieldWidth("I"))
	require.Equal(t, uint32(4), FieldWidth("Ljava/lang/String;"))
	require.Equal(t, uint32(4), FieldWidth("[J"))
	require.Equal(t, uint32(8), FieldWidth("J"))
	require.Equal(t, uint32(8), FieldWidth("D"))
}
