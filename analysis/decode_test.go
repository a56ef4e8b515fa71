package analysis

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// encodePNG renders an image to PNG bytes for decode tests.
func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("Failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

// solidImage builds a width x height image filled with one color.
func solidImage(width, height int, c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// checkerboard alternates black and white pixels.
func checkerboard(width, height int) *image.RGBA {
	black := color.RGBA{A: 255}
	white := color.RGBA{R: 255, G: 255, B: 255, A: 255}
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if (x+y)%2 == 0 {
				img.SetRGBA(x, y, black)
			} else {
				img.SetRGBA(x, y, white)
			}
		}
	}
	return img
}

func TestDecode(t *testing.T) {
	data := encodePNG(t, solidImage(4, 3, color.RGBA{R: 10, G: 20, B: 30, A: 255}))

	buf, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if buf.Width != 4 || buf.Height != 3 {
		t.Fatalf("Decode() dimensions = %dx%d, want 4x3", buf.Width, buf.Height)
	}
	if len(buf.Pix) != 4*3*4 {
		t.Fatalf("len(Pix) = %d, want %d", len(buf.Pix), 4*3*4)
	}

	r, g, b := buf.At(2, 1)
	if r != 10 || g != 20 || b != 30 {
		t.Errorf("At(2,1) = (%d,%d,%d), want (10,20,30)", r, g, b)
	}
}

func TestDecodeInvalidData(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		[]byte("definitely not an image"),
		{0x89, 0x50, 0x4e}, // truncated PNG signature
	}
	for _, data := range inputs {
		if _, err := Decode(data); !errors.Is(err, ErrUndecodableImage) {
			t.Errorf("Decode(%q) error = %v, want ErrUndecodableImage", data, err)
		}
	}
}
