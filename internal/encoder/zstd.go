package encoder

import (
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/junsooki/renderlink/internal/pixel"
)

// ZstdEncoder compresses frames losslessly. It accepts every pixel format.
type ZstdEncoder struct {
	level zstd.EncoderLevel
	enc   *zstd.Encoder
}

func NewZstdEncoder(quality int) (*ZstdEncoder, error) {
	e := &ZstdEncoder{level: levelForQuality(quality)}
	if err := e.open(); err != nil {
		return nil, err
	}
	return e, nil
}

// SetQuality maps quality onto a compression level. Higher is smaller and slower.
func (e *ZstdEncoder) SetQuality(quality int) {
	level := levelForQuality(quality)
	if level == e.level {
		return
	}
	e.level = level
	e.close()
}

func (e *ZstdEncoder) Encode(width, height int, format pixel.Format, raw []byte) ([]byte, error) {
	if err := checkFrame(width, height, format, raw); err != nil {
		return nil, err
	}
	if e.enc == nil {
		if err := e.open(); err != nil {
			return nil, err
		}
	}
	return e.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func (e *ZstdEncoder) Close() error {
	e.close()
	return nil
}

func (e *ZstdEncoder) open() error {
	enc, err := zstd.NewWriter(nil,
		zstd.WithEncoderLevel(e.level),
		zstd.WithEncoderConcurrency(1),
	)
	if err != nil {
		return fmt.Errorf("encoder: zstd: %w", err)
	}
	e.enc = enc
	return nil
}

func (e *ZstdEncoder) close() {
	if e.enc != nil {
		_ = e.enc.Close()
		e.enc = nil
	}
}

func levelForQuality(quality int) zstd.EncoderLevel {
	switch q := clampQuality(quality); {
	case q <= 25:
		return zstd.SpeedFastest
	case q <= 60:
		return zstd.SpeedDefault
	case q <= 90:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedBestCompression
	}
}
