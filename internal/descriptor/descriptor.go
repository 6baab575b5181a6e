// Package descriptor rewrites module descriptors (module.xml) in place.
//
// Only attribute values are edited: the declaration, comments, whitespace,
// and attribute order of the original document are preserved byte for byte.
package descriptor

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"slices"
)

// ErrMalformed is returned when a descriptor is not well-formed XML.
var ErrMalformed = errors.New("descriptor: malformed document")

// Root element names of descriptors that are rewritten.
const (
	ElementModule      = "module"
	ElementModuleAlias = "module-alias"
)

const (
	elementDependencies = "dependencies"
	attrName            = "name"
	attrTargetName      = "target-name"
)

// Lookup maps a dependency module name to its replacement.
type Lookup func(name string) (string, bool)

// Result describes a rewritten descriptor.
type Result struct {
	// Data is the rewritten document. It aliases the input when nothing
	// changed.
	Data []byte

	// Root is the local name of the document element.
	Root string

	// OriginalName and Name are the module name before and after rewriting.
	OriginalName string
	Name         string

	// Dependencies maps each rewritten dependency name to its replacement.
	Dependencies map[string]string

	// Changed reports whether Data differs from the input.
	Changed bool
}

// Supported reports whether the descriptor's root element is rewritten.
func (r *Result) Supported() bool {
	return r.Root == ElementModule || r.Root == ElementModuleAlias
}

// edit replaces data[start:end] with value.
type edit struct {
	start, end int
	value      string
}

// Rewrite sets the module name to name (unless empty) and replaces every
// dependency name for which lookup reports a replacement.
//
// Dependencies are the module elements inside the first dependencies
// element. For module-alias documents the target-name attribute is mapped
// through lookup as well. Documents with any other root element are
// returned unchanged with Supported false.
func Rewrite(data []byte, name string, lookup Lookup) (*Result, error) {
	res := &Result{Data: data, Dependencies: make(map[string]string)}

	dec := xml.NewDecoder(bytes.NewReader(data))
	var (
		edits     []edit
		depth     int
		depsDepth = -1
		depsSeen  bool
	)
	for {
		start := int(dec.InputOffset())
		tok, err := dec.RawToken()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		end := int(dec.InputOffset())

		switch el := tok.(type) {
		case xml.StartElement:
			tag := data[start:end]
			switch {
			case depth == 0:
				res.Root = el.Name.Local
				if !res.Supported() {
					return res, nil
				}
				res.OriginalName, _ = attr(el, attrName)
				res.Name = res.OriginalName
				if name != "" && name != res.OriginalName {
					e, err := attrEdit(tag, start, attrName, name)
					if err != nil {
						return nil, err
					}
					edits = append(edits, e)
					res.Name = name
				}
				if res.Root == ElementModuleAlias {
					if e, ok, err := mapAttr(tag, start, el, attrTargetName, lookup, res.Dependencies); err != nil {
						return nil, err
					} else if ok {
						edits = append(edits, e)
					}
				}
			case el.Name.Local == elementDependencies && !depsSeen:
				depsSeen = true
				depsDepth = depth
			case depsDepth >= 0 && el.Name.Local == ElementModule:
				if e, ok, err := mapAttr(tag, start, el, attrName, lookup, res.Dependencies); err != nil {
					return nil, err
				} else if ok {
					edits = append(edits, e)
				}
			}
			// Empty elements are followed by a synthesized EndElement.
			depth++
		case xml.EndElement:
			depth--
			if depth == depsDepth {
				depsDepth = -1
			}
		}
	}

	if res.Root == "" {
		return nil, fmt.Errorf("%w: no root element", ErrMalformed)
	}
	if depth != 0 {
		return nil, fmt.Errorf("%w: unexpected end of document", ErrMalformed)
	}
	if len(edits) == 0 {
		return res, nil
	}
	slices.SortFunc(edits, func(a, b edit) int { return a.start - b.start })
	res.Data = splice(data, edits)
	res.Changed = true
	return res, nil
}

// mapAttr maps the value of key through lookup and records the change.
func mapAttr(tag []byte, offset int, el xml.StartElement, key string, lookup Lookup, seen map[string]string) (edit, bool, error) {
	if lookup == nil {
		return edit{}, false, nil
	}
	old, ok := attr(el, key)
	if !ok {
		return edit{}, false, nil
	}
	replacement, ok := lookup(old)
	if !ok || replacement == old {
		return edit{}, false, nil
	}
	e, err := attrEdit(tag, offset, key, replacement)
	if err != nil {
		return edit{}, false, err
	}
	seen[old] = replacement
	return e, true, nil
}

func attr(el xml.StartElement, key string) (string, bool) {
	for _, a := range el.Attr {
		if a.Name.Space == "" && a.Name.Local == key {
			return a.Value, true
		}
	}
	return "", false
}

// attrEdit locates the raw value of key inside tag. If the attribute is
// missing it is inserted after the element name.
func attrEdit(tag []byte, offset int, key, value string) (edit, error) {
	escaped := escape(value)
	if start, end, ok := findAttr(tag, key); ok {
		return edit{start: offset + start, end: offset + end, value: escaped}, nil
	}
	i := 1
	for i < len(tag) && !isSpace(tag[i]) && tag[i] != '/' && tag[i] != '>' {
		i++
	}
	if i >= len(tag) {
		return edit{}, fmt.Errorf("%w: unterminated start tag", ErrMalformed)
	}
	return edit{start: offset + i, end: offset + i, value: " " + key + `="` + escaped + `"`}, nil
}

// findAttr returns the bounds of the quoted value of key within a raw start
// tag, excluding the quotes.
func findAttr(tag []byte, key string) (start, end int, ok bool) {
	i := 1
	for i < len(tag) && !isSpace(tag[i]) && tag[i] != '/' && tag[i] != '>' {
		i++
	}
	for i < len(tag) {
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		nameStart := i
		for i < len(tag) && !isSpace(tag[i]) && tag[i] != '=' && tag[i] != '/' && tag[i] != '>' {
			i++
		}
		if i == nameStart {
			return 0, 0, false
		}
		attrName := string(tag[nameStart:i])
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || tag[i] != '=' {
			return 0, 0, false
		}
		i++
		for i < len(tag) && isSpace(tag[i]) {
			i++
		}
		if i >= len(tag) || (tag[i] != '"' && tag[i] != '\'') {
			return 0, 0, false
		}
		quote := tag[i]
		i++
		valStart := i
		for i < len(tag) && tag[i] != quote {
			i++
		}
		if i >= len(tag) {
			return 0, 0, false
		}
		if attrName == key {
			return valStart, i, true
		}
		i++
	}
	return 0, 0, false
}

func splice(data []byte, edits []edit) []byte {
	size := len(data)
	for _, e := range edits {
		size += len(e.value) - (e.end - e.start)
	}
	out := make([]byte, 0, size)
	prev := 0
	for _, e := range edits {
		out = append(out, data[prev:e.start]...)
		out = append(out, e.value...)
		prev = e.end
	}
	return append(out, data[prev:]...)
}

func escape(s string) string {
	var buf bytes.Buffer
	// EscapeText never fails when writing to a bytes.Buffer.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}
