package codec

import (
	"github.com/klauspost/compress/zstd"
)

var (
	zstdEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	zstdDecoder, _ = zstd.NewReader(nil, zstd.WithDecoderConcurrency(0))
)

// Zstd wraps another codec with zstandard compression. Query corpora
// compress well (repeated field names and shared vocabulary), so this
// is the default for export blobs.
type Zstd struct {
	Inner Codec
}

func (c Zstd) inner() Codec {
	if c.Inner == nil {
		return JSON{}
	}
	return c.Inner
}

// Marshal encodes with the inner codec and compresses the result.
func (c Zstd) Marshal(v any) ([]byte, error) {
	b, err := c.inner().Marshal(v)
	if err != nil {
		return nil, err
	}
	return zstdEncoder.EncodeAll(b, make([]byte, 0, len(b)/2)), nil
}

// Unmarshal decompresses the data and decodes with the inner codec.
func (c Zstd) Unmarshal(data []byte, v any) error {
	b, err := zstdDecoder.DecodeAll(data, nil)
	if err != nil {
		return err
	}
	return c.inner().Unmarshal(b, v)
}

// Name returns the unique name of the codec (e.g. "zstd+json").
func (c Zstd) Name() string { return "zstd+" + c.inner().Name() }
