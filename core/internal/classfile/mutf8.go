package classfile

import (
	"errors"
	"unicode/utf16"
	"unicode/utf8"
)

var errInvalidModifiedUTF8 = errors.New("classfile: invalid modified utf-8")

// EncodeModifiedUTF8 encodes s the way class files store CONSTANT_Utf8
// bytes: NUL takes two bytes and supplementary characters are written as
// two three-byte surrogates.
func EncodeModifiedUTF8(s string) []byte {
	out := make([]byte, 0, len(s))
	for _, r := range s {
		switch {
		case r == 0:
			out = append(out, 0xC0, 0x80)
		case r < 0x80:
			out = append(out, byte(r))
		case r < 0x800:
			out = append(out, 0xC0|byte(r>>6), 0x80|byte(r&0x3F))
		case r < 0x10000:
			out = appendThreeByte(out, r)
		default:
			hi, lo := utf16.EncodeRune(r)
			out = appendThreeByte(out, hi)
			out = appendThreeByte(out, lo)
		}
	}
	return out
}

func appendThreeByte(out []byte, r rune) []byte {
	return append(out, 0xE0|byte(r>>12), 0x80|byte((r>>6)&0x3F), 0x80|byte(r&0x3F))
}

// DecodeModifiedUTF8 decodes CONSTANT_Utf8 bytes into a Go string.
func DecodeModifiedUTF8(b []byte) (string, error) {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); {
		c := b[i]
		switch {
		case c < 0x80:
			if c == 0 {
				return "", errInvalidModifiedUTF8
			}
			out = append(out, c)
			i++
		case c&0xE0 == 0xC0:
			if i+1 >= len(b) || b[i+1]&0xC0 != 0x80 {
				return "", errInvalidModifiedUTF8
			}
			r := rune(c&0x1F)<<6 | rune(b[i+1]&0x3F)
			out = utf8.AppendRune(out, r)
			i += 2
		case c&0xF0 == 0xE0:
			r, ok := threeByte(b, i)
			if !ok {
				return "", errInvalidModifiedUTF8
			}
			i += 3
			if utf16.IsSurrogate(r) {
				if lo, ok := threeByte(b, i); ok && utf16.IsSurrogate(lo) {
					r = utf16.DecodeRune(r, lo)
					i += 3
				}
			}
			out = utf8.AppendRune(out, r)
		default:
			return "", errInvalidModifiedUTF8
		}
	}
	return string(out), nil
}

func threeByte(b []byte, i int) (rune, bool) {
	if i+2 >= len(b) || b[i]&0xF0 != 0xE0 || b[i+1]&0xC0 != 0x80 || b[i+2]&0xC0 != 0x80 {
		return 0, false
	}
	return rune(b[i]&0x0F)<<12 | rune(b[i+1]&0x3F)<<6 | rune(b[i+2]&0x3F), true
}
