package codec

import (
	"encoding/binary"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// LZ4 wraps another codec with lz4 block compression. Cheaper than
// Zstd at a worse ratio; the uncompressed length is stored in an
// 8-byte little-endian prefix.
type LZ4 struct {
	Inner Codec
}

func (c LZ4) inner() Codec {
	if c.Inner == nil {
		return JSON{}
	}
	return c.Inner
}

// Marshal encodes with the inner codec and compresses the result.
func (c LZ4) Marshal(v any) ([]byte, error) {
	b, err := c.inner().Marshal(v)
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 8+lz4.CompressBlockBound(len(b)))
	binary.LittleEndian.PutUint64(buf[:8], uint64(len(b)))
	n, err := lz4.CompressBlock(b, buf[8:], nil)
	if err != nil {
		return nil, err
	}
	if n == 0 || n >= len(b) {
		// Incompressible input is stored raw; the length prefix
		// matching the payload length marks it as such.
		buf = append(buf[:8], b...)
		return buf, nil
	}
	return buf[:8+n], nil
}

// Unmarshal decompresses the data and decodes with the inner codec.
func (c LZ4) Unmarshal(data []byte, v any) error {
	if len(data) < 8 {
		return fmt.Errorf("lz4 block too short: %d bytes", len(data))
	}
	size := binary.LittleEndian.Uint64(data[:8])
	raw := make([]byte, size)
	if uint64(len(data)-8) == size {
		copy(raw, data[8:])
	} else {
		n, err := lz4.UncompressBlock(data[8:], raw)
		if err != nil {
			return err
		}
		raw = raw[:n]
	}
	return c.inner().Unmarshal(raw, v)
}

// Name returns the unique name of the codec (e.g. "lz4+json").
func (c LZ4) Name() string { return "lz4+" + c.inner().Name() }
