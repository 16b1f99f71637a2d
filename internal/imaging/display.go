package imaging

import (
	"fmt"
	"image"
	"os"

	"golang.org/x/image/draw"
)

// LoadForDisplay decodes the image at path and scales it to exactly
// width x height, the fixed review canvas.
func LoadForDisplay(path string, width, height int) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, path, err)
	}
	return Resize(img, width, height), nil
}

// Resize scales img to width x height without preserving aspect ratio.
func Resize(img image.Image, width, height int) image.Image {
	if width <= 0 || height <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), draw.Src, nil)
	return dst
}
