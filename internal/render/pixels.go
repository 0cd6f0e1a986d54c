package render

import (
	"image"
	"image/color"
	"image/png"
	"io"
)

// FillPalette converts category bytes into RGBA pixels in buf using palette.
// Categories past the end of the palette take its last color. When the
// palette is empty the buffer is cleared to transparent black.
func FillPalette(buf []byte, cells []uint8, palette []color.RGBA) {
	if len(palette) == 0 {
		clear(buf[:4*len(cells)])
		return
	}

	last := len(palette) - 1
	for i, c := range cells {
		idx := int(c)
		if idx > last {
			idx = last
		}
		base := i * 4
		col := palette[idx]
		buf[base+0] = col.R
		buf[base+1] = col.G
		buf[base+2] = col.B
		buf[base+3] = col.A
	}
}

// Highlight brightens pixels whose cell age is below window, so freshly
// rewritten cells stand out and fade back to their palette color.
func Highlight(buf []byte, ages []int, window int) {
	if window <= 0 {
		return
	}
	for i, age := range ages {
		if age < 0 || age >= window {
			continue
		}
		// Half-strength blend toward white at age 0.
		num := window - age
		den := 2 * window
		base := i * 4
		for k := 0; k < 3; k++ {
			v := int(buf[base+k])
			buf[base+k] = uint8(v + (255-v)*num/den)
		}
	}
}

// Image renders w*h cells as an RGBA image, one pixel per cell scaled by
// scale.
func Image(cells []uint8, w, h int, palette []color.RGBA, scale int) *image.RGBA {
	if scale <= 0 {
		scale = 1
	}
	buf := make([]byte, 4*w*h)
	FillPalette(buf, cells, palette)
	img := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	for y := 0; y < h*scale; y++ {
		row := (y / scale) * w
		for x := 0; x < w*scale; x++ {
			src := 4 * (row + x/scale)
			dst := img.PixOffset(x, y)
			copy(img.Pix[dst:dst+4], buf[src:src+4])
		}
	}
	return img
}

// WritePNG encodes cells as a PNG image.
func WritePNG(w io.Writer, cells []uint8, width, height int, palette []color.RGBA, scale int) error {
	return png.Encode(w, Image(cells, width, height, palette, scale))
}
