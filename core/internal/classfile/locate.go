package classfile

import "bytes"

// Match marks one occurrence of a mapping source inside a Utf8 entry.
type Match struct {
	// Mapping is the table index of the matched mapping (never zero).
	Mapping int
	// Offset is where the match starts, relative to the entry's bytes section.
	Offset int
}

// Patch describes every rewrite applied to a single Utf8 entry.
//
// Matches are ordered by Offset and never overlap.
type Patch struct {
	// Slot is the constant pool index of the entry.
	Slot int
	// Delta is the entry's length change after all matches are replaced.
	Delta int
	// Matches lists the replacements in ascending offset order.
	Matches []Match
}

// Locate scans data[offset:limit] for non-overlapping occurrences of the
// table's sources and returns the resulting patch, or nil if nothing matched.
//
// At each position the lowest table index that matches wins. After a match
// the scan resumes at the first byte after the consumed source.
func Locate(data []byte, offset, limit int, t *Table, slot int) *Patch {
	if t.minimum == 0 {
		return nil
	}

	var p *Patch
	for i := offset; i <= limit-t.minimum; {
		mapping := t.matchAt(data[i:limit])
		if mapping == 0 {
			i++
			continue
		}
		if p == nil {
			p = &Patch{Slot: slot}
		}
		p.Matches = append(p.Matches, Match{Mapping: mapping, Offset: i - offset})
		p.Delta += t.delta(mapping)
		i += len(t.from[mapping])
	}
	return p
}

// matchAt returns the first mapping whose source is a prefix of span, or 0.
func (t *Table) matchAt(span []byte) int {
	for j := 1; j < len(t.from); j++ {
		if bytes.HasPrefix(span, t.from[j]) {
			return j
		}
	}
	return 0
}
