package classfile

import "encoding/binary"

// classBuilder assembles minimal class files for tests.
type classBuilder struct {
	pool  []byte
	count int
}

func newClassBuilder() *classBuilder {
	return &classBuilder{count: 1}
}

func (b *classBuilder) utf8(s string) int {
	return b.rawUtf8(EncodeModifiedUTF8(s))
}

func (b *classBuilder) rawUtf8(data []byte) int {
	b.pool = append(b.pool, TagUtf8)
	b.pool = binary.BigEndian.AppendUint16(b.pool, uint16(len(data))) //nolint:gosec // test input
	b.pool = append(b.pool, data...)
	return b.next(1)
}

func (b *classBuilder) class(nameSlot int) int {
	b.pool = append(b.pool, TagClass)
	b.pool = binary.BigEndian.AppendUint16(b.pool, uint16(nameSlot)) //nolint:gosec // test input
	return b.next(1)
}

func (b *classBuilder) integer(v uint32) int {
	b.pool = append(b.pool, TagInteger)
	b.pool = binary.BigEndian.AppendUint32(b.pool, v)
	return b.next(1)
}

func (b *classBuilder) long(v uint64) int {
	b.pool = append(b.pool, TagLong)
	b.pool = binary.BigEndian.AppendUint64(b.pool, v)
	return b.next(2)
}

func (b *classBuilder) methodHandle(kind byte, ref int) int {
	b.pool = append(b.pool, TagMethodHandle, kind)
	b.pool = binary.BigEndian.AppendUint16(b.pool, uint16(ref)) //nolint:gosec // test input
	return b.next(1)
}

func (b *classBuilder) next(slots int) int {
	slot := b.count
	b.count += slots
	return slot
}

// build returns the class file with the given this_class slot and a fixed
// tail (flags, super, empty interfaces/fields/methods/attributes).
func (b *classBuilder) build(thisClass int) []byte {
	out := binary.BigEndian.AppendUint32(nil, Magic)
	out = append(out, 0, 0, 0, 61)
	out = binary.BigEndian.AppendUint16(out, uint16(b.count)) //nolint:gosec // test input
	out = append(out, b.pool...)
	out = append(out, 0x00, 0x21)
	out = binary.BigEndian.AppendUint16(out, uint16(thisClass)) //nolint:gosec // test input
	out = append(out, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
	return out
}

func mustTable(pairs ...string) *Table {
	var from, to [][]byte
	for i := 0; i+1 < len(pairs); i += 2 {
		from = append(from, EncodeModifiedUTF8(pairs[i]))
		to = append(to, EncodeModifiedUTF8(pairs[i+1]))
	}
	t, err := NewTable(from, to)
	if err != nil {
		panic(err)
	}
	return t
}
