package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultQuality is used when no valid quality is configured.
const DefaultQuality = 75

// ErrDecode reports a payload no registered decoder accepts.
var ErrDecode = errors.New("image decode failed")

// Result is a normalized artifact payload.
type Result struct {
	Data []byte
	// SourceFormat is the decoder name: jpeg, png, gif, bmp, tiff or webp.
	SourceFormat string
	// Converted is false when the payload was already JPEG and kept byte for byte.
	Converted bool
	Width     int
	Height    int
}

// Codec converts arbitrary image payloads into JPEG bytes.
type Codec struct {
	Quality int
}

// NewCodec returns a codec encoding at quality, or DefaultQuality when out of range.
func NewCodec(quality int) *Codec {
	if quality < 1 || quality > 100 {
		quality = DefaultQuality
	}
	return &Codec{Quality: quality}
}

// Normalize decodes data and returns JPEG bytes. JPEG input is passed
// through unchanged; any other format is flattened to three channels and
// re-encoded.
func (c *Codec) Normalize(data []byte) (Result, error) {
	if len(data) == 0 {
		return Result{}, fmt.Errorf("%w: empty payload", ErrDecode)
	}
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	bounds := img.Bounds()
	result := Result{SourceFormat: format, Width: bounds.Dx(), Height: bounds.Dy()}
	if format == "jpeg" {
		result.Data = append([]byte(nil), data...)
		return result, nil
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, ToRGB(img), &jpeg.Options{Quality: c.quality()}); err != nil {
		return Result{}, fmt.Errorf("encode jpeg: %w", err)
	}
	result.Data = buf.Bytes()
	result.Converted = true
	return result, nil
}

func (c *Codec) quality() int {
	if c == nil || c.Quality < 1 || c.Quality > 100 {
		return DefaultQuality
	}
	return c.Quality
}

// ToRGB expands palettes and discards alpha, keeping the stored color of
// each pixel rather than compositing it onto a background.
func ToRGB(img image.Image) *image.NRGBA {
	bounds := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(out, out.Bounds(), img, bounds.Min, draw.Src)
	for i := 3; i < len(out.Pix); i += 4 {
		out.Pix[i] = 0xff
	}
	return out
}
