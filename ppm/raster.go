package ppm

import (
	"fmt"
	"image"
	"image/color"

	"github.com/anthonynsimon/bild/parallel"
	xxhash "github.com/cespare/xxhash/v2"
)

// Raster is a row-major RGB pixel buffer, three bytes per pixel with no
// padding between rows. It is the interchange shape between the PPM codec and
// every other image format.
type Raster struct {
	Width  uint32
	Height uint32
	Pix    []byte
}

// NewRaster wraps pix as a width x height raster. len(pix) must be exactly
// width*height*3.
func NewRaster(width, height uint32, pix []byte) (*Raster, error) {
	h := Header{Width: width, Height: height}
	size, err := h.RasterSize()
	if err != nil {
		return nil, err
	}
	if len(pix) != size {
		return nil, FormatError(fmt.Sprintf("pixel count mismatch: have %d values, want %d", len(pix), size))
	}
	return &Raster{Width: width, Height: height, Pix: pix}, nil
}

// RasterFromImage converts img to RGB. Alpha is discarded without
// premultiplication, the same way an 8-bit RGB conversion of an NRGBA image
// behaves. Rows are converted in parallel. An image with no pixels cannot be
// written as PPM and is rejected.
func RasterFromImage(img image.Image) (*Raster, error) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, FormatError(fmt.Sprintf("empty image (%dx%d)", w, h))
	}
	pix := make([]byte, w*h*3)

	parallel.Line(h, func(start, end int) {
		for y := start; y < end; y++ {
			row := pix[y*w*3 : (y+1)*w*3]
			for x := 0; x < w; x++ {
				c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
				row[x*3] = c.R
				row[x*3+1] = c.G
				row[x*3+2] = c.B
			}
		}
	})

	return &Raster{Width: uint32(w), Height: uint32(h), Pix: pix}, nil
}

// Image returns an opaque RGBA copy of r.
func (r *Raster) Image() *image.RGBA {
	w, h := int(r.Width), int(r.Height)
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i, j := 0, 0; i+2 < len(r.Pix) && j+3 < len(img.Pix); i, j = i+3, j+4 {
		img.Pix[j] = r.Pix[i]
		img.Pix[j+1] = r.Pix[i+1]
		img.Pix[j+2] = r.Pix[i+2]
		img.Pix[j+3] = 0xff
	}
	return img
}

// Sum64 returns the xxhash64 digest of the pixel bytes.
func (r *Raster) Sum64() uint64 {
	return xxhash.Sum64(r.Pix)
}
