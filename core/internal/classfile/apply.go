package classfile

import (
	"encoding/binary"
	"fmt"
)

// Apply re-emits class with patches applied into a new buffer of size bytes.
//
// Patches must be in ascending slot order as returned by Scan. Everything
// outside the patched Utf8 entries is copied verbatim. The input is never
// modified.
func Apply(class []byte, size int, pool *Pool, patches []Patch, t *Table) []byte {
	out := make([]byte, size)

	// magic, versions and constant_pool_count
	copy(out, class[:PoolContentOffset])
	src, dst := PoolContentOffset, PoolContentOffset

	for _, p := range patches {
		bytesStart := pool.Offsets[p.Slot] + 3

		// copy up to the start of this entry's bytes section
		n := copy(out[dst:], class[src:bytesStart])
		src += n
		dst += n

		length := int(binary.BigEndian.Uint16(class[src-2:]))
		binary.BigEndian.PutUint16(out[dst-2:], uint16(length+p.Delta)) //nolint:gosec // bounded by Scan

		for _, m := range p.Matches {
			n = copy(out[dst:], class[src:bytesStart+m.Offset])
			src += n
			dst += n

			dst += copy(out[dst:], t.to[m.Mapping])
			src += len(t.from[m.Mapping])
		}

		n = copy(out[dst:], class[src:bytesStart+length])
		src += n
		dst += n
	}

	dst += copy(out[dst:], class[src:])
	if dst != size {
		panic(fmt.Sprintf("classfile: wrote %d bytes, expected %d", dst, size))
	}
	return out
}
