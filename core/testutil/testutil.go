// Package testutil builds class files and archives for tests.
package testutil

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/meigma/nsmigrate/core/internal/classfile"
)

// ClassBuilder assembles minimal, structurally valid class files.
type ClassBuilder struct {
	pool  []byte
	count int
}

// NewClassBuilder returns a builder with an empty constant pool.
func NewClassBuilder() *ClassBuilder {
	return &ClassBuilder{count: 1}
}

// Utf8 appends a CONSTANT_Utf8 entry and returns its slot.
func (b *ClassBuilder) Utf8(s string) int {
	data := classfile.EncodeModifiedUTF8(s)
	b.pool = append(b.pool, classfile.TagUtf8)
	b.pool = binary.BigEndian.AppendUint16(b.pool, uint16(len(data))) //nolint:gosec // test input
	b.pool = append(b.pool, data...)
	return b.next(1)
}

// Class appends a CONSTANT_Class entry naming the given Utf8 slot.
func (b *ClassBuilder) Class(nameSlot int) int {
	return b.ref(classfile.TagClass, nameSlot)
}

// String appends a CONSTANT_String entry naming the given Utf8 slot.
func (b *ClassBuilder) String(utf8Slot int) int {
	return b.ref(classfile.TagString, utf8Slot)
}

// Long appends a CONSTANT_Long entry, which occupies two slots.
func (b *ClassBuilder) Long(v uint64) int {
	b.pool = append(b.pool, classfile.TagLong)
	b.pool = binary.BigEndian.AppendUint64(b.pool, v)
	return b.next(2)
}

// Double appends a CONSTANT_Double entry, which occupies two slots.
func (b *ClassBuilder) Double(bits uint64) int {
	b.pool = append(b.pool, classfile.TagDouble)
	b.pool = binary.BigEndian.AppendUint64(b.pool, bits)
	return b.next(2)
}

func (b *ClassBuilder) ref(tag byte, slot int) int {
	b.pool = append(b.pool, tag)
	b.pool = binary.BigEndian.AppendUint16(b.pool, uint16(slot)) //nolint:gosec // test input
	return b.next(1)
}

func (b *ClassBuilder) next(slots int) int {
	slot := b.count
	b.count += slots
	return slot
}

// Build returns the class file declaring thisClass (a CONSTANT_Class slot).
func (b *ClassBuilder) Build(thisClass int) []byte {
	out := binary.BigEndian.AppendUint32(nil, classfile.Magic)
	out = append(out, 0, 0, 0, 61)
	out = binary.BigEndian.AppendUint16(out, uint16(b.count)) //nolint:gosec // test input
	out = append(out, b.pool...)
	out = append(out, 0x00, 0x21)
	out = binary.BigEndian.AppendUint16(out, uint16(thisClass)) //nolint:gosec // test input
	return append(out, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
}

// SimpleClass builds a class named name whose pool also holds the given
// extra Utf8 constants.
func SimpleClass(name string, constants ...string) []byte {
	b := NewClassBuilder()
	cls := b.Class(b.Utf8(name))
	for _, c := range constants {
		b.String(b.Utf8(c))
	}
	return b.Build(cls)
}

// Utf8Constants returns every Utf8 constant of class in slot order.
func Utf8Constants(t testing.TB, class []byte) []string {
	t.Helper()
	pool, err := classfile.BuildPool(class)
	if err != nil {
		t.Fatalf("parse class: %v", err)
	}
	var out []string
	for slot := range pool.Offsets {
		data := pool.Utf8(class, slot)
		if data == nil {
			continue
		}
		s, err := classfile.DecodeModifiedUTF8(data)
		if err != nil {
			t.Fatalf("decode slot %d: %v", slot, err)
		}
		out = append(out, s)
	}
	return out
}

// ArchiveEntry is one member of a test archive.
type ArchiveEntry struct {
	Name string
	Data []byte
}

// BuildArchive returns a zip archive holding entries in order.
// Names ending in "/" become directory entries.
func BuildArchive(t testing.TB, entries ...ArchiveEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	modified := time.Date(2020, 1, 2, 3, 4, 6, 0, time.UTC)
	for _, e := range entries {
		w, err := zw.CreateHeader(&zip.FileHeader{Name: e.Name, Method: zip.Deflate, Modified: modified})
		if err != nil {
			t.Fatalf("create %s: %v", e.Name, err)
		}
		if _, err := w.Write(e.Data); err != nil {
			t.Fatalf("write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}
	return buf.Bytes()
}

// ReadArchive returns the entries of a zip archive in order.
func ReadArchive(t testing.TB, data []byte) []ArchiveEntry {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	out := make([]ArchiveEntry, 0, len(zr.File))
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		content, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		out = append(out, ArchiveEntry{Name: f.Name, Data: content})
	}
	return out
}
