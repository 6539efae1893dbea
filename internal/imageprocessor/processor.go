package imageprocessor

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var ErrUnsupported = errors.New("imageprocessor: unsupported image")

// Info - то, что удалось узнать о снимке по заголовку.
type Info struct {
	Width  int
	Height int
	Format string
}

// Probe reads only the image header. HEIC and other formats without a registered
// decoder return ErrUnsupported.
func Probe(r io.Reader) (Info, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		if errors.Is(err, image.ErrFormat) {
			return Info{}, ErrUnsupported
		}
		return Info{}, fmt.Errorf("failed to decode image header: %w", err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return Info{}, ErrUnsupported
	}
	return Info{Width: cfg.Width, Height: cfg.Height, Format: format}, nil
}

// ProbeSeeker probes r and rewinds it so the caller can still stream the whole file.
func ProbeSeeker(r io.ReadSeeker) (Info, error) {
	info, probeErr := Probe(r)
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return Info{}, fmt.Errorf("failed to rewind image: %w", err)
	}
	return info, probeErr
}
