package classfile

import (
	"encoding/binary"
	"fmt"
)

// Scan visits every Utf8 entry of the pool and collects patches in slot order.
//
// It returns the patches, the total size change, and ErrSizeOverflow if the
// patched class would exceed maxSize bytes or a patched entry would not fit
// its 16-bit length field.
func Scan(class []byte, pool *Pool, t *Table, maxSize int) ([]Patch, int, error) {
	var (
		patches []Patch
		delta   int
	)
	for slot := 1; slot < len(pool.Offsets); slot++ {
		pos := pool.Offsets[slot]
		if pos == 0 || class[pos] != TagUtf8 {
			continue
		}
		length := int(binary.BigEndian.Uint16(class[pos+1:]))
		start := pos + 3
		p := Locate(class, start, start+length, t, slot)
		if p == nil {
			continue
		}
		if length+p.Delta > maxUtf8Length {
			return nil, 0, fmt.Errorf("%w: utf8 entry %d would grow to %d bytes", ErrSizeOverflow, slot, length+p.Delta)
		}
		if patches == nil {
			patches = make([]Patch, 0, pool.Utf8Count(class))
		}
		patches = append(patches, *p)
		delta += p.Delta
	}

	if delta > 0 && maxSize-delta < len(class) {
		return nil, 0, fmt.Errorf("%w: patched class would exceed %d bytes", ErrSizeOverflow, maxSize)
	}
	return patches, delta, nil
}
