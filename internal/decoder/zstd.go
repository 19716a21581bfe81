package decoder

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/junsooki/renderlink/internal/pixel"
)

// ZstdDecoder decompresses frames produced by the zstd encoder.
type ZstdDecoder struct {
	dec *zstd.Decoder
}

func NewZstdDecoder() (*ZstdDecoder, error) {
	dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, fmt.Errorf("decoder: zstd: %w", err)
	}
	return &ZstdDecoder{dec: dec}, nil
}

func (d *ZstdDecoder) Decode(data []byte, width, height int, format pixel.Format, dst []byte) error {
	if err := checkDst(width, height, format, dst); err != nil {
		return err
	}
	out, err := d.dec.DecodeAll(data, dst[:0])
	if err != nil {
		return fmt.Errorf("decoder: zstd: %w", err)
	}
	if len(out) != len(dst) {
		return fmt.Errorf("decoder: zstd frame is %d bytes, want %d", len(out), len(dst))
	}
	if len(out) > 0 && &out[0] != &dst[0] {
		copy(dst, out)
	}
	return nil
}

func (d *ZstdDecoder) Close() error {
	d.dec.Close()
	return nil
}
