package nsmigrate

import (
	"errors"

	"github.com/meigma/nsmigrate/core/internal/classfile"
)

// Sentinel errors re-exported from internal/classfile.
var (
	// ErrMalformedClass is returned when a class file's constant pool is
	// inconsistent with its declared count or contains an unknown tag.
	ErrMalformedClass = classfile.ErrMalformed

	// ErrSizeOverflow is returned when a patched class would exceed the
	// limits of the class file format.
	ErrSizeOverflow = classfile.ErrSizeOverflow
)

// Sentinel errors specific to the nsmigrate package.
var (
	// ErrInvalidMapping is returned when a mapping contains an unusable rule.
	ErrInvalidMapping = errors.New("nsmigrate: invalid mapping")

	// ErrConfiguration is returned when a mapping source is missing,
	// unreadable or invalid.
	ErrConfiguration = errors.New("nsmigrate: configuration error")
)
