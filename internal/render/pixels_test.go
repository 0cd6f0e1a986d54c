package render

import (
	"bytes"
	"image/color"
	"image/png"
	"testing"
)

var testPalette = []color.RGBA{
	{R: 0, G: 0, B: 0, A: 255},
	{R: 255, G: 255, B: 255, A: 255},
	{R: 128, G: 128, B: 128, A: 255},
}

func TestFillPalette(t *testing.T) {
	cells := []uint8{0, 1, 2, 9}
	buf := make([]byte, 4*len(cells))
	FillPalette(buf, cells, testPalette)
	want := []byte{
		0, 0, 0, 255,
		255, 255, 255, 255,
		128, 128, 128, 255,
		128, 128, 128, 255,
	}
	if !bytes.Equal(buf, want) {
		t.Fatalf("pixels = %v, want %v", buf, want)
	}
}

func TestFillPaletteEmptyClears(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	FillPalette(buf, []uint8{0, 1}, nil)
	for i, b := range buf {
		if b != 0 {
			t.Fatalf("byte %d = %d, want 0", i, b)
		}
	}
}

func TestHighlight(t *testing.T) {
	buf := []byte{
		0, 0, 0, 255,
		0, 0, 0, 255,
		100, 100, 100, 255,
	}
	Highlight(buf, []int{0, 4, 2}, 4)
	// Age 0 blends halfway to white, the window edge is untouched.
	if buf[0] != 127 || buf[3] != 255 {
		t.Fatalf("fresh pixel = %v", buf[0:4])
	}
	if buf[4] != 0 {
		t.Fatalf("aged pixel changed: %v", buf[4:8])
	}
	// Age 2 of 4: 100 + 155*2/8.
	if buf[8] != 138 {
		t.Fatalf("mid pixel = %d, want 138", buf[8])
	}

	before := append([]byte(nil), buf...)
	Highlight(buf, []int{0, 0, 0}, 0)
	if !bytes.Equal(before, buf) {
		t.Fatal("zero window should not change pixels")
	}
}

func TestWritePNGScales(t *testing.T) {
	var out bytes.Buffer
	if err := WritePNG(&out, []uint8{0, 1, 2, 1}, 2, 2, testPalette, 3); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&out)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 6 || b.Dy() != 6 {
		t.Fatalf("bounds = %v", b)
	}
	r, g, b, _ := img.At(5, 0).RGBA()
	if r>>8 != 255 || g>>8 != 255 || b>>8 != 255 {
		t.Fatalf("top-right pixel = %d,%d,%d", r>>8, g>>8, b>>8)
	}
	r, _, _, _ = img.At(0, 5).RGBA()
	if r>>8 != 128 {
		t.Fatalf("bottom-left red = %d, want 128", r>>8)
	}
}
