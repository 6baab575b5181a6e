package classfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeModifiedUTF8(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want []byte
	}{
		{name: "ascii", in: "javax/ejb", want: []byte("javax/ejb")},
		{name: "nul", in: "a\x00b", want: []byte{'a', 0xC0, 0x80, 'b'}},
		{name: "two byte", in: "é", want: []byte{0xC3, 0xA9}},
		{name: "three byte", in: "€", want: []byte{0xE2, 0x82, 0xAC}},
		{name: "supplementary", in: "\U0001F600", want: []byte{0xED, 0xA0, 0xBD, 0xED, 0xB8, 0x80}},
		{name: "empty", in: "", want: []byte{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := EncodeModifiedUTF8(tt.in)
			assert.Equal(t, tt.want, got)

			back, err := DecodeModifiedUTF8(got)
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestDecodeModifiedUTF8_Invalid(t *testing.T) {
	t.Parallel()

	for _, in := range [][]byte{
		{0x00},
		{0xC3},
		{0xE2, 0x82},
		{0xF0, 0x9F, 0x98, 0x80},
		{0x80},
	} {
		_, err := DecodeModifiedUTF8(in)
		assert.Error(t, err, "% x", in)
	}
}
