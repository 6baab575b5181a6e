package nsmigrate

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/meigma/nsmigrate/core/internal/classfile"
)

// Transformer rewrites resources according to a mapping.
//
// The lookup tables are built once by New; a Transformer holds no mutable
// state and may be shared by any number of goroutines.
type Transformer struct {
	rules  [2]Mapping
	class  *classfile.Table
	text   [2]*classfile.Table
	logger *slog.Logger

	maxClassSize int
}

// New builds a Transformer from a mapping in path-separator form.
// The dot form is derived from it.
func New(m Mapping, opts ...Option) (*Transformer, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	t := &Transformer{maxClassSize: classfile.MaxClassSize}
	for _, opt := range opts {
		opt(t)
	}

	t.rules[FormPath] = m
	t.rules[FormDot] = m.Dotted()

	// Class constants mix both spellings: internal names use '/', while
	// annotation values and string literals use '.'. Path rules come first.
	var classFrom, classTo [][]byte
	for _, f := range []Form{FormPath, FormDot} {
		var textFrom, textTo [][]byte
		for _, r := range t.rules[f] {
			classFrom = append(classFrom, classfile.EncodeModifiedUTF8(r.From))
			classTo = append(classTo, classfile.EncodeModifiedUTF8(r.To))
			textFrom = append(textFrom, []byte(r.From))
			textTo = append(textTo, []byte(r.To))
		}
		table, err := classfile.NewTable(textFrom, textTo)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
		}
		t.text[f] = table
	}

	table, err := classfile.NewTable(classFrom, classTo)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMapping, err)
	}
	t.class = table

	return t, nil
}

// Mapping returns the rules for the given form in priority order.
// The returned slice must not be modified.
func (t *Transformer) Mapping(f Form) Mapping {
	return t.rules[f]
}

// log returns the logger, falling back to a discard logger if nil.
func (t *Transformer) log() *slog.Logger {
	if t.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return t.logger
}

// Transform rewrites a single resource.
//
// It returns the rewritten resource and true, or the zero Resource and
// false when nothing changed; callers then keep the original name and
// bytes. An error means the resource could not be rewritten and no partial
// output exists.
func (t *Transformer) Transform(r Resource) (Resource, bool, error) {
	switch {
	case strings.HasSuffix(r.Name, ClassSuffix):
		data, ok, err := t.TransformClass(r.Data)
		if err != nil {
			return Resource{}, false, fmt.Errorf("transform %s: %w", r.Name, err)
		}
		if !ok {
			return Resource{}, false, nil
		}
		return Resource{Name: t.Rename(r.Name, FormPath), Data: data}, true, nil

	case strings.HasSuffix(r.Name, MarkupSuffix):
		// Markup wins over the services prefix.
		name := t.Rename(r.Name, FormPath)
		data, changed := t.ReplaceText(r.Data, FormDot)
		if !changed && name == r.Name {
			return Resource{}, false, nil
		}
		return Resource{Name: name, Data: data}, true, nil

	case strings.HasPrefix(r.Name, ServicesPrefix):
		// The file name is the fully qualified interface name.
		service := strings.TrimPrefix(r.Name, ServicesPrefix)
		renamed := t.Rename(service, FormDot)
		if renamed == service {
			return Resource{}, false, nil
		}
		t.log().Debug("renamed service registration", "from", r.Name, "to", ServicesPrefix+renamed)
		return Resource{Name: ServicesPrefix + renamed, Data: r.Data}, true, nil

	default:
		name := t.Rename(r.Name, FormPath)
		if name == r.Name {
			return Resource{}, false, nil
		}
		return Resource{Name: name, Data: r.Data}, true, nil
	}
}

// TransformClass patches the constant pool of a class file.
//
// It returns the new class and true, or nil and false when no constant
// contains a mapped name. The input slice is never modified.
func (t *Transformer) TransformClass(class []byte) ([]byte, bool, error) {
	res, err := classfile.Rewrite(class, t.class, t.maxClassSize)
	if err != nil {
		return nil, false, err
	}
	if res == nil {
		return nil, false, nil
	}
	if t.log().Enabled(context.Background(), slog.LevelDebug) {
		t.logPatches(class, res)
	}
	return res.Class, true, nil
}

// logPatches reports every rewritten constant of a patched class.
func (t *Transformer) logPatches(class []byte, res *classfile.Result) {
	logger := t.log()
	name, ok := res.Pool.ThisClass(class)
	if !ok {
		name = "<unknown>"
	}
	logger = logger.With("class", name)
	logger.Debug("patching class", "constants", len(res.Patches), "size_delta", len(res.Class)-len(class))
	for i := range res.Patches {
		p := &res.Patches[i]
		old := res.Pool.Utf8(class, p.Slot)
		oldValue, err := classfile.DecodeModifiedUTF8(old)
		if err != nil {
			oldValue = fmt.Sprintf("%q", old)
		}
		patched := classfile.Splice(old, p, t.class)
		newValue, err := classfile.DecodeModifiedUTF8(patched)
		if err != nil {
			newValue = fmt.Sprintf("%q", patched)
		}
		logger.Debug("patched constant", "slot", p.Slot, "old", oldValue, "new", newValue)
	}
}

// Rename applies the first rule of the given form whose source occurs in
// name. Only one substitution is made. The name is returned unchanged if
// no rule matches.
func (t *Transformer) Rename(name string, f Form) string {
	for _, r := range t.rules[f] {
		if i := strings.Index(name, r.From); i >= 0 {
			return name[:i] + r.To + name[i+len(r.From):]
		}
	}
	return name
}

// ReplaceText replaces every non-overlapping occurrence of the given
// form's sources in data, scanning left to right with table order breaking
// ties. It returns data itself and false when nothing matched.
func (t *Transformer) ReplaceText(data []byte, f Form) ([]byte, bool) {
	table := t.text[f]
	p := classfile.Locate(data, 0, len(data), table, 0)
	if p == nil {
		return data, false
	}
	return classfile.Splice(data, p, table), true
}
