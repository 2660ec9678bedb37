package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/voxelsplace/ppmconv/ppm"
)

// PPMInfo summarises a decoded PPM file.
type PPMInfo struct {
	Variant       ppm.Variant
	Width         uint32
	Height        uint32
	MaxColorValue uint32
	RasterBytes   int
	Sum64         uint64
}

func (i PPMInfo) String() string {
	return fmt.Sprintf("format: %s\nsize: %dx%d\nmax color value: %d\nraster: %d bytes\nxxhash: %016x\n",
		i.Variant, i.Width, i.Height, i.MaxColorValue, i.RasterBytes, i.Sum64)
}

// ReadPPMInfo decodes a complete PPM image from r and reports its header and
// the checksum of its pixels.
func ReadPPMInfo(r io.Reader) (PPMInfo, error) {
	br := bufio.NewReader(r)
	h, err := ppm.ReadHeader(br)
	if err != nil {
		return PPMInfo{}, err
	}
	pix, err := ppm.DecodeBody(h, br)
	if err != nil {
		return PPMInfo{}, err
	}
	ras, err := ppm.NewRaster(h.Width, h.Height, pix)
	if err != nil {
		return PPMInfo{}, err
	}
	return PPMInfo{
		Variant:       h.Variant,
		Width:         h.Width,
		Height:        h.Height,
		MaxColorValue: h.MaxColorValue,
		RasterBytes:   len(ras.Pix),
		Sum64:         ras.Sum64(),
	}, nil
}

// RunInfo prints the header fields and pixel checksum of the PPM file at
// path (optionally ".gz" or ".zst" compressed) to w.
func RunInfo(path string, w io.Writer) error {
	f, comp, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if f != FormatPPM {
		return fmt.Errorf("%s: not a .ppm file", path)
	}
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	r, err := ppm.NewReader(file, comp)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	defer r.Close()

	info, err := ReadPPMInfo(r)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	_, err = io.WriteString(w, info.String())
	return err
}
