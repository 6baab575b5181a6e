package nsmigrate

import (
	"errors"

	nscore "github.com/meigma/nsmigrate/core"
	"github.com/meigma/nsmigrate/internal/descriptor"
	"github.com/meigma/nsmigrate/internal/modtree"
)

// Errors re-exported from core.
var (
	// ErrMalformedClass is returned when a class file's constant pool is
	// inconsistent with its declared count or contains an unknown tag.
	ErrMalformedClass = nscore.ErrMalformedClass

	// ErrSizeOverflow is returned when a patched class would exceed the
	// limits of the class file format.
	ErrSizeOverflow = nscore.ErrSizeOverflow

	// ErrInvalidMapping is returned when a mapping contains an unusable rule.
	ErrInvalidMapping = nscore.ErrInvalidMapping

	// ErrConfiguration is returned when a mapping source is missing,
	// unreadable or invalid.
	ErrConfiguration = nscore.ErrConfiguration
)

// ErrMalformedDescriptor is returned when a module descriptor is not
// well-formed XML.
var ErrMalformedDescriptor = descriptor.ErrMalformed

// Errors specific to archive and module tree rewriting.
var (
	// ErrDuplicateEntry is returned when two archive entries or module
	// files would be written to the same name after renaming.
	ErrDuplicateEntry = errors.New("nsmigrate: duplicate entry after rename")

	// ErrNotDirectory is returned when a module repository path exists but
	// is not a directory.
	ErrNotDirectory = errors.New("nsmigrate: not a directory")

	// ErrUnsupportedFile is returned when a module repository holds an
	// entry that cannot be carried over, such as a socket or device.
	ErrUnsupportedFile = modtree.ErrUnsupportedFile

	// ErrLinkCycle is returned when directory links in a module repository
	// form a cycle.
	ErrLinkCycle = modtree.ErrLinkCycle
)
