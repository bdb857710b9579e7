// Package codec centralizes the encoding used by corpus export blobs.
//
// Codec selection is a compatibility boundary: a blob written with one
// codec must be opened with the same codec, so export manifests record
// the codec name.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
//
// This is used by self-describing export formats that store the codec
// name in their manifest.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	case "zstd+json":
		return Zstd{Inner: JSON{}}, true
	case "lz4+json":
		return LZ4{Inner: JSON{}}, true
	default:
		return nil, false
	}
}

// Default is the codec used when none is configured.
var Default Codec = Zstd{Inner: JSON{}}

// MustMarshal is a helper for internal tests.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
