package ppm

import (
	"bufio"
	"io"
	"strconv"
)

// WriteHeader writes the three header lines: the magic token ("P6" if binary
// is set, "P3" otherwise), "width height" and the max color value.
func WriteHeader(w io.Writer, width, height, maxColorValue uint32, binary bool) error {
	buf := make([]byte, 0, 32)
	buf = append(buf, VariantFor(binary).String()...)
	buf = append(buf, '\n')
	buf = strconv.AppendUint(buf, uint64(width), 10)
	buf = append(buf, ' ')
	buf = strconv.AppendUint(buf, uint64(height), 10)
	buf = append(buf, '\n')
	buf = strconv.AppendUint(buf, uint64(maxColorValue), 10)
	buf = append(buf, '\n')
	if _, err := w.Write(buf); err != nil {
		return &IOError{Op: "write header", Err: err}
	}
	return nil
}

// WriteBody writes the pixel body. In binary mode pix is copied verbatim; in
// ASCII mode every pixel becomes one "r g b" line.
func WriteBody(w io.Writer, pix []byte, binary bool) error {
	if binary {
		if _, err := w.Write(pix); err != nil {
			return &IOError{Op: "write pixel data", Err: err}
		}
		return nil
	}
	if len(pix)%3 != 0 {
		return FormatError("truncated pixel")
	}

	bw := bufio.NewWriter(w)
	line := make([]byte, 0, 12)
	for i := 0; i < len(pix); i += 3 {
		line = strconv.AppendUint(line[:0], uint64(pix[i]), 10)
		line = append(line, ' ')
		line = strconv.AppendUint(line, uint64(pix[i+1]), 10)
		line = append(line, ' ')
		line = strconv.AppendUint(line, uint64(pix[i+2]), 10)
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return &IOError{Op: "write pixel data", Err: err}
		}
	}
	if err := bw.Flush(); err != nil {
		return &IOError{Op: "write pixel data", Err: err}
	}
	return nil
}

// EncodeRaster writes r as a complete PPM image with a max color value of 255.
func EncodeRaster(w io.Writer, r *Raster, binary bool) error {
	if err := WriteHeader(w, r.Width, r.Height, DefaultMaxColorValue, binary); err != nil {
		return err
	}
	return WriteBody(w, r.Pix, binary)
}
