package analysis

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrUndecodableImage indicates the input bytes are not a supported image
// format.
var ErrUndecodableImage = errors.New("image data could not be decoded")

// PixelBuffer holds decoded pixel data in a flat RGBA layout, four bytes per
// pixel in row-major order.
type PixelBuffer struct {
	Width  int
	Height int
	Pix    []uint8
}

// Decode parses image bytes into a pixel buffer. Supported formats are PNG,
// JPEG, GIF, BMP, TIFF and WebP.
func Decode(data []byte) (*PixelBuffer, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("%w: empty bounds", ErrUndecodableImage)
	}

	buf := &PixelBuffer{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, width*height*4),
	}

	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			buf.Pix[i] = uint8(r >> 8)
			buf.Pix[i+1] = uint8(g >> 8)
			buf.Pix[i+2] = uint8(b >> 8)
			buf.Pix[i+3] = uint8(a >> 8)
			i += 4
		}
	}

	return buf, nil
}

// At returns the RGB components of the pixel at (x, y). The alpha channel is
// ignored by all analysis passes.
func (p *PixelBuffer) At(x, y int) (r, g, b uint8) {
	i := (y*p.Width + x) * 4
	return p.Pix[i], p.Pix[i+1], p.Pix[i+2]
}
