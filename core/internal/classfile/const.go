package classfile

import (
	"errors"
	"math"
)

// Magic is the class file magic number.
const Magic = 0xCAFEBABE

// PoolContentOffset is the offset of the first constant pool entry.
// It follows magic (4), minor_version (2), major_version (2) and
// constant_pool_count (2).
const PoolContentOffset = 10

// MaxClassSize is the largest class file that can be addressed.
const MaxClassSize = math.MaxInt32

// maxUtf8Length is the largest value of a CONSTANT_Utf8 length field.
const maxUtf8Length = math.MaxUint16

// Constant pool tags.
const (
	TagUtf8               = 1
	TagInteger            = 3
	TagFloat              = 4
	TagLong               = 5
	TagDouble             = 6
	TagClass              = 7
	TagString             = 8
	TagFieldref           = 9
	TagMethodref          = 10
	TagInterfaceMethodref = 11
	TagNameAndType        = 12
	TagMethodHandle       = 15
	TagMethodType         = 16
	TagDynamic            = 17
	TagInvokeDynamic      = 18
	TagModule             = 19
	TagPackage            = 20
)

var (
	// ErrMalformed is returned when the constant pool does not match its declared layout.
	ErrMalformed = errors.New("classfile: malformed class")

	// ErrSizeOverflow is returned when patching would exceed a format size limit.
	ErrSizeOverflow = errors.New("classfile: size overflow")
)

// entryWidth returns the encoded width of a fixed-size entry (tag excluded)
// and the number of pool slots it occupies. ok is false for unknown tags.
// Utf8 entries are variable length and are handled by the caller.
func entryWidth(tag byte) (width, slots int, ok bool) {
	switch tag {
	case TagClass, TagString, TagMethodType, TagModule, TagPackage:
		return 2, 1, true
	case TagMethodHandle:
		return 3, 1, true
	case TagInteger, TagFloat, TagFieldref, TagMethodref, TagInterfaceMethodref,
		TagNameAndType, TagDynamic, TagInvokeDynamic:
		return 4, 1, true
	case TagLong, TagDouble:
		return 8, 2, true
	default:
		return 0, 0, false
	}
}
