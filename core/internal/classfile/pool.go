package classfile

import (
	"encoding/binary"
	"fmt"
)

// Pool indexes the constant pool of a class file.
//
// Offsets is indexed by pool slot (1-based) and holds the offset of each
// entry's tag byte. Slot zero and the second slot of Long and Double
// entries hold zero. End is the offset of the first byte after the pool
// (the access_flags field).
type Pool struct {
	Offsets []int
	End     int
}

// BuildPool walks the constant pool of class once and records where every
// entry starts.
//
// It returns ErrMalformed if the header is truncated, the magic number is
// wrong, a tag is unknown, or the declared entry count runs past the end of
// the buffer.
func BuildPool(class []byte) (*Pool, error) {
	if len(class) < PoolContentOffset {
		return nil, fmt.Errorf("%w: header truncated at %d bytes", ErrMalformed, len(class))
	}
	if magic := binary.BigEndian.Uint32(class); magic != Magic {
		return nil, fmt.Errorf("%w: bad magic %#x", ErrMalformed, magic)
	}

	count := int(binary.BigEndian.Uint16(class[8:]))
	if count == 0 {
		return nil, fmt.Errorf("%w: constant pool count is zero", ErrMalformed)
	}

	offsets := make([]int, count)
	pos := PoolContentOffset
	for i := 1; i < count; i++ {
		if pos >= len(class) {
			return nil, fmt.Errorf("%w: entry %d of %d starts past end of class", ErrMalformed, i, count-1)
		}
		offsets[i] = pos
		tag := class[pos]
		pos++

		if tag == TagUtf8 {
			if pos+2 > len(class) {
				return nil, fmt.Errorf("%w: utf8 entry %d truncated", ErrMalformed, i)
			}
			pos += 2 + int(binary.BigEndian.Uint16(class[pos:]))
			if pos > len(class) {
				return nil, fmt.Errorf("%w: utf8 entry %d truncated", ErrMalformed, i)
			}
			continue
		}

		width, slots, ok := entryWidth(tag)
		if !ok {
			return nil, fmt.Errorf("%w: unknown tag %d at entry %d", ErrMalformed, tag, i)
		}
		pos += width
		if pos > len(class) {
			return nil, fmt.Errorf("%w: entry %d truncated", ErrMalformed, i)
		}
		if slots == 2 {
			// The slot after a Long or Double is unusable.
			i++
			if i >= count {
				return nil, fmt.Errorf("%w: wide entry %d overruns pool count", ErrMalformed, i-1)
			}
		}
	}

	return &Pool{Offsets: offsets, End: pos}, nil
}

// Utf8Count returns the number of CONSTANT_Utf8 entries in the pool.
func (p *Pool) Utf8Count(class []byte) int {
	n := 0
	for _, off := range p.Offsets {
		if off != 0 && class[off] == TagUtf8 {
			n++
		}
	}
	return n
}
