package classfile

import "errors"

// Table holds the from/to byte sequences searched for inside Utf8 entries.
//
// Mappings are indexed from one; index zero is reserved. A Table is
// immutable after construction and safe for concurrent use.
type Table struct {
	from    [][]byte
	to      [][]byte
	minimum int
}

// NewTable builds a Table from parallel from/to slices.
// Table order is match priority: when two mappings match at the same
// position, the one added first wins.
func NewTable(from, to [][]byte) (*Table, error) {
	if len(from) != len(to) {
		return nil, errors.New("classfile: mapping sides differ in length")
	}
	t := &Table{
		from: make([][]byte, 1, len(from)+1),
		to:   make([][]byte, 1, len(to)+1),
	}
	for i := range from {
		if len(from[i]) == 0 {
			return nil, errors.New("classfile: empty mapping source")
		}
		t.from = append(t.from, from[i])
		t.to = append(t.to, to[i])
		if t.minimum == 0 || len(from[i]) < t.minimum {
			t.minimum = len(from[i])
		}
	}
	return t, nil
}

// Len returns the number of mappings.
func (t *Table) Len() int {
	return len(t.from) - 1
}

// Minimum returns the length of the shortest source sequence, or zero for
// an empty table.
func (t *Table) Minimum() int {
	return t.minimum
}

// From returns the source bytes of mapping i. The slice must not be modified.
func (t *Table) From(i int) []byte {
	return t.from[i]
}

// To returns the replacement bytes of mapping i. The slice must not be modified.
func (t *Table) To(i int) []byte {
	return t.to[i]
}

// delta returns the length change caused by applying mapping i once.
func (t *Table) delta(i int) int {
	return len(t.to[i]) - len(t.from[i])
}
