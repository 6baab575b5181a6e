package classfile

import "encoding/binary"

// Result is the outcome of a successful Rewrite.
type Result struct {
	// Class is the patched class file.
	Class []byte
	// Pool indexes the original class.
	Pool *Pool
	// Patches lists the patched Utf8 entries in slot order.
	Patches []Patch
}

// Rewrite patches every Utf8 entry of class that contains a mapping source.
//
// It returns nil when nothing matched, in which case the caller keeps the
// original bytes. maxSize bounds the size of the patched class; pass
// MaxClassSize outside of tests.
func Rewrite(class []byte, t *Table, maxSize int) (*Result, error) {
	pool, err := BuildPool(class)
	if err != nil {
		return nil, err
	}
	patches, delta, err := Scan(class, pool, t, maxSize)
	if err != nil {
		return nil, err
	}
	if len(patches) == 0 {
		return nil, nil
	}
	return &Result{
		Class:   Apply(class, len(class)+delta, pool, patches, t),
		Pool:    pool,
		Patches: patches,
	}, nil
}

// Utf8 returns the bytes section of the Utf8 entry at slot, or nil if the
// slot does not hold a Utf8 entry.
func (p *Pool) Utf8(class []byte, slot int) []byte {
	if slot <= 0 || slot >= len(p.Offsets) {
		return nil
	}
	pos := p.Offsets[slot]
	if pos == 0 || class[pos] != TagUtf8 {
		return nil
	}
	length := int(binary.BigEndian.Uint16(class[pos+1:]))
	return class[pos+3 : pos+3+length]
}

// ThisClass returns the internal name of the class declared by class
// (for example "javax/servlet/Servlet").
func (p *Pool) ThisClass(class []byte) (string, bool) {
	// access_flags (2) precedes this_class (2)
	if p.End+4 > len(class) {
		return "", false
	}
	slot := int(binary.BigEndian.Uint16(class[p.End+2:]))
	if slot <= 0 || slot >= len(p.Offsets) {
		return "", false
	}
	pos := p.Offsets[slot]
	if pos == 0 || class[pos] != TagClass {
		return "", false
	}
	name, err := DecodeModifiedUTF8(p.Utf8(class, int(binary.BigEndian.Uint16(class[pos+1:]))))
	if err != nil || name == "" {
		return "", false
	}
	return name, true
}

// Splice returns a copy of data with the given matches replaced.
// Matches must be ordered and non-overlapping, as produced by Locate.
func Splice(data []byte, p *Patch, t *Table) []byte {
	out := make([]byte, 0, len(data)+p.Delta)
	src := 0
	for _, m := range p.Matches {
		out = append(out, data[src:m.Offset]...)
		out = append(out, t.to[m.Mapping]...)
		src = m.Offset + len(t.from[m.Mapping])
	}
	return append(out, data[src:]...)
}
