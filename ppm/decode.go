package ppm

import (
	"bufio"
	"bytes"
	"io"
	"strconv"
	"strings"
)

// DecodeBody reads the pixel body that follows h on r. It must be called on
// the same reader ReadHeader consumed, with nothing read in between.
//
// ASCII bodies are accumulated token by token and are not checked against
// width*height*3; DecodeRaster applies that check. Binary bodies are read to
// exactly width*height*3 bytes and anything after them is left unread.
func DecodeBody(h Header, r *bufio.Reader) ([]byte, error) {
	switch h.Variant {
	case VariantASCII:
		return decodeASCII(h, r)
	case VariantBinary:
		return decodeBinary(h, r)
	default:
		return nil, FormatError("unsupported PPM format")
	}
}

func decodeASCII(h Header, r *bufio.Reader) ([]byte, error) {
	var pix []byte
	if size, err := h.RasterSize(); err == nil && size <= 1<<24 {
		pix = make([]byte, 0, size)
	}
	for {
		line, err := readLine(r)
		if err == io.EOF {
			return pix, nil
		}
		if err != nil {
			return nil, &IOError{Op: "read pixel data", Err: unwrapIO(err)}
		}
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "#") {
			continue
		}
		for _, tok := range strings.Fields(line) {
			v, err := strconv.ParseUint(tok, 10, 8)
			if err != nil {
				return nil, FormatError("invalid pixel value")
			}
			pix = append(pix, byte(v))
		}
	}
}

func decodeBinary(h Header, r *bufio.Reader) ([]byte, error) {
	size, err := h.RasterSize()
	if err != nil {
		return nil, err
	}
	// grow with the data actually read so a lying header cannot force a
	// huge allocation
	buf := bytes.NewBuffer(make([]byte, 0, min(size, 1<<20)))
	n, err := io.CopyN(buf, r, int64(size))
	if n < int64(size) {
		if err == nil || err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, &IOError{Op: "read pixel data", Err: err}
	}
	return buf.Bytes(), nil
}

func unwrapIO(err error) error {
	if e, ok := err.(*IOError); ok {
		return e.Err
	}
	return err
}

// DecodeRaster reads a complete P3 or P6 image from r. Unlike DecodeBody it
// rejects an ASCII body whose value count differs from width*height*3.
func DecodeRaster(r io.Reader) (*Raster, error) {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	pix, err := DecodeBody(h, br)
	if err != nil {
		return nil, err
	}
	return NewRaster(h.Width, h.Height, pix)
}
