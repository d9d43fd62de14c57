// Package codec encodes collections into self-describing blobs.
//
// Blobs are written as a versioned envelope:
//
//	{"version": 1, "kind": "notes", "data": [...]}
//
// Decoding also accepts the legacy unversioned shape, where the blob is the bare payload
// (an array for collections, an object for settings).
package codec

import (
	"errors"
	"fmt"
	"strings"
)

// CurrentVersion is the envelope version written by this package.
const CurrentVersion = 1

// ErrUnsupportedVersion is returned when a blob was written by a newer version.
var ErrUnsupportedVersion = errors.New("unsupported blob version")

// Serializer defines how to read and write one blob format.
type Serializer interface {
	// Name returns the format name ("json", "yaml").
	Name() string
	// Ext returns the file extension used by file-backed preferences.
	Ext() string
	// Encode wraps v in an envelope of the given kind.
	Encode(kind string, v any) ([]byte, error)
	// Decode reads an envelope or a legacy payload into v.
	// It returns the envelope version, 0 for legacy blobs.
	Decode(data []byte, v any) (int, error)
}

// DefaultSerializers returns the standard set of serializers keyed by name.
func DefaultSerializers() map[string]Serializer {
	return map[string]Serializer{
		"json": NewJSONSerializer(),
		"yaml": NewYAMLSerializer(),
	}
}

// Lookup returns the serializer registered under name (case-insensitive).
func Lookup(name string) (Serializer, error) {
	if name == "" {
		name = "json"
	}
	s, ok := DefaultSerializers()[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown format: %s", name)
	}
	return s, nil
}

func checkVersion(v int) error {
	if v > CurrentVersion {
		return fmt.Errorf("%w: %d (max %d)", ErrUnsupportedVersion, v, CurrentVersion)
	}
	if v < 1 {
		return fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	return nil
}
