// Package codec wraps one encoder and one decoder behind a lazily
// initialized adapter, the way a session uses a hardware codec: created on
// first use, then reused for every frame.
package codec

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/junsooki/renderlink/internal/decoder"
	"github.com/junsooki/renderlink/internal/encoder"
	"github.com/junsooki/renderlink/internal/pixel"
)

const (
	EnvQuality     = "RENDERLINK_CODEC_QUALITY"
	DefaultQuality = 75
)

var (
	ErrCodecInit   = errors.New("codec: initialization failed")
	ErrUnknownKind = errors.New("codec: unknown codec")
)

// Kind names a codec implementation.
type Kind string

const (
	JPEG Kind = "jpeg"
	Zstd Kind = "zstd"
	I420 Kind = "i420"
)

func ParseKind(name string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(name))); k {
	case JPEG, Zstd, I420:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, name)
	}
}

// Lossless reports whether decoding reproduces the encoded frame exactly.
func (k Kind) Lossless() bool {
	return k == Zstd
}

// Supports reports whether the codec can carry frames in format f.
func (k Kind) Supports(f pixel.Format) bool {
	return k == Zstd || f == pixel.U8
}

// Adapter creates its encoder and decoder on first use. A failed creation is
// reported for that call only; the next call tries again.
type Adapter struct {
	kind Kind
	log  zerolog.Logger

	newEncoder func(name string, quality int) (encoder.Encoder, error)
	newDecoder func(name string) (decoder.Decoder, error)

	mu         sync.Mutex
	enc        encoder.Encoder
	dec        decoder.Decoder
	quality    int
	qualitySet bool
}

func New(kind Kind, log zerolog.Logger) *Adapter {
	return &Adapter{
		kind:       kind,
		log:        log,
		newEncoder: encoder.New,
		newDecoder: decoder.New,
	}
}

func (a *Adapter) Kind() Kind {
	return a.kind
}

// Quality returns the encoder quality. Until SetQuality is called it is read
// once from RENDERLINK_CODEC_QUALITY, defaulting to 75.
func (a *Adapter) Quality() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.qualityLocked()
}

func (a *Adapter) SetQuality(quality int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.quality = quality
	a.qualitySet = true
	if a.enc != nil {
		a.enc.SetQuality(quality)
	}
}

// Encode compresses one frame.
func (a *Adapter) Encode(width, height int, format pixel.Format, raw []byte) ([]byte, error) {
	if !a.kind.Supports(format) {
		return nil, fmt.Errorf("%w: %s cannot carry %s", pixel.ErrUnsupportedFormat, a.kind, format)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.enc == nil {
		enc, err := a.newEncoder(string(a.kind), a.qualityLocked())
		if err != nil {
			a.log.Error().Err(err).Str("codec", string(a.kind)).Msg("encoder init failed")
			return nil, fmt.Errorf("%w: %s encoder: %v", ErrCodecInit, a.kind, err)
		}
		a.enc = enc
		a.log.Debug().Str("codec", string(a.kind)).Int("quality", a.quality).Msg("encoder ready")
	}
	return a.enc.Encode(width, height, format, raw)
}

// Decode decompresses data into dst.
func (a *Adapter) Decode(data []byte, width, height int, format pixel.Format, dst []byte) error {
	if !a.kind.Supports(format) {
		return fmt.Errorf("%w: %s cannot carry %s", pixel.ErrUnsupportedFormat, a.kind, format)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.dec == nil {
		dec, err := a.newDecoder(string(a.kind))
		if err != nil {
			a.log.Error().Err(err).Str("codec", string(a.kind)).Msg("decoder init failed")
			return fmt.Errorf("%w: %s decoder: %v", ErrCodecInit, a.kind, err)
		}
		a.dec = dec
		a.log.Debug().Str("codec", string(a.kind)).Msg("decoder ready")
	}
	return a.dec.Decode(data, width, height, format, dst)
}

// Close releases the encoder and decoder. The adapter can be used again
// afterwards and recreates them on demand.
func (a *Adapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	var errs []error
	for _, c := range []any{a.enc, a.dec} {
		if closer, ok := c.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	a.enc, a.dec = nil, nil
	return errors.Join(errs...)
}

func (a *Adapter) qualityLocked() int {
	if !a.qualitySet {
		a.quality = qualityFromEnv()
		a.qualitySet = true
	}
	return a.quality
}

func qualityFromEnv() int {
	raw := strings.TrimSpace(os.Getenv(EnvQuality))
	if raw == "" {
		return DefaultQuality
	}
	q, err := strconv.Atoi(raw)
	if err != nil || q < 1 || q > 100 {
		return DefaultQuality
	}
	return q
}
