package ppm

import (
	"bufio"
	"image"
	"image/color"
	"io"
)

func init() {
	image.RegisterFormat("ppm", magicASCII, Decode, DecodeConfig)
	image.RegisterFormat("ppm", magicBinary, Decode, DecodeConfig)
}

// Decode reads a P3 or P6 image from r and returns it as an *image.RGBA.
func Decode(r io.Reader) (image.Image, error) {
	ras, err := DecodeRaster(r)
	if err != nil {
		return nil, err
	}
	return ras.Image(), nil
}

// DecodeConfig returns the color model and dimensions of a PPM image without
// decoding the pixel body.
func DecodeConfig(r io.Reader) (image.Config, error) {
	h, err := ReadHeader(bufio.NewReader(r))
	if err != nil {
		return image.Config{}, err
	}
	if h.Variant == VariantUnknown {
		return image.Config{}, FormatError("unsupported PPM format")
	}
	return image.Config{
		ColorModel: color.RGBAModel,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}

// Options are the encoding parameters.
type Options struct {
	// Binary selects P6 output; otherwise P3 is written.
	Binary bool
}

// Encode writes the image m to w in PPM format. A nil *Options writes P6.
func Encode(w io.Writer, m image.Image, o *Options) error {
	binary := true
	if o != nil {
		binary = o.Binary
	}
	ras, err := RasterFromImage(m)
	if err != nil {
		return err
	}
	return EncodeRaster(w, ras, binary)
}
