package nsmigrate

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/magiconair/properties"

	nscore "github.com/meigma/nsmigrate/core"
)

//go:embed defaults/packages.mapping
var defaultPackages []byte

//go:embed defaults/modules.mapping
var defaultModules []byte

// DefaultMapping returns the built-in package mapping (javax -> jakarta).
func DefaultMapping() nscore.Mapping {
	return mustParse("packages.mapping", defaultPackages)
}

// DefaultModuleMapping returns the built-in module repository mapping.
func DefaultModuleMapping() nscore.Mapping {
	return mustParse("modules.mapping", defaultModules)
}

func mustParse(name string, data []byte) nscore.Mapping {
	m, err := ParseMapping(data)
	if err != nil {
		panic(fmt.Sprintf("nsmigrate: built-in %s: %v", name, err))
	}
	return m
}

// LoadMapping reads a mapping file in properties syntax: one from=to rule
// per line, '#' or '!' comments. Rule order follows the file.
//
// A missing, unreadable or invalid file yields ErrConfiguration.
func LoadMapping(path string) (nscore.Mapping, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read mapping: %w", ErrConfiguration, err)
	}
	m, err := ParseMapping(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// LoadMappingOrDefault loads path, or returns def when path is empty.
func LoadMappingOrDefault(path string, def func() nscore.Mapping) (nscore.Mapping, error) {
	if path == "" {
		return def(), nil
	}
	return LoadMapping(path)
}

// ParseMapping parses mapping rules in properties syntax.
func ParseMapping(data []byte) (nscore.Mapping, error) {
	l := &properties.Loader{Encoding: properties.UTF8, DisableExpansion: true}
	p, err := l.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("%w: parse mapping: %w", ErrConfiguration, err)
	}

	keys := p.Keys()
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: mapping has no rules", ErrConfiguration)
	}
	m := make(nscore.Mapping, 0, len(keys))
	for _, k := range keys {
		v, _ := p.Get(k)
		m = append(m, nscore.Rule{
			From: strings.TrimSpace(k),
			To:   strings.TrimSpace(v),
		})
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}
	return m, nil
}
