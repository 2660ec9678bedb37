package ppm

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"
)

// Variant is the PPM sub-format selected by the magic token.
type Variant uint8

const (
	VariantUnknown Variant = iota
	VariantASCII           // "P3"
	VariantBinary          // "P6"
)

const (
	magicASCII  = "P3"
	magicBinary = "P6"
)

// DefaultMaxColorValue is written by every encoder in this package.
const DefaultMaxColorValue = 255

// ParseVariant maps a magic token to its variant. Any token other than
// "P3" or "P6" yields VariantUnknown and a FormatError.
func ParseVariant(token string) (Variant, error) {
	switch token {
	case magicASCII:
		return VariantASCII, nil
	case magicBinary:
		return VariantBinary, nil
	}
	return VariantUnknown, FormatError("unsupported magic number " + strconv.Quote(token))
}

// VariantFor returns VariantBinary if binary is set, VariantASCII otherwise.
func VariantFor(binary bool) Variant {
	if binary {
		return VariantBinary
	}
	return VariantASCII
}

func (v Variant) String() string {
	switch v {
	case VariantASCII:
		return magicASCII
	case VariantBinary:
		return magicBinary
	}
	return "unknown"
}

// Header holds the fields of a PPM header. Magic is the first line as read;
// Variant is derived from it and is VariantUnknown for foreign tokens, which
// are only rejected once the body is decoded.
type Header struct {
	Magic         string
	Variant       Variant
	Width         uint32
	Height        uint32
	MaxColorValue uint32
}

// RasterSize returns width*height*3, the byte length of the decoded raster.
func (h Header) RasterSize() (int, error) {
	n := uint64(h.Width) * uint64(h.Height)
	if n > math.MaxInt/3 {
		return 0, FormatError("image too large")
	}
	return int(n * 3), nil
}

// readLine returns the next line without its line ending. The last line of a
// stream does not need a terminating newline. io.EOF is returned only when
// nothing is left to read.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err == io.EOF {
		if line == "" {
			return "", io.EOF
		}
		err = nil
	}
	if err != nil {
		return "", &IOError{Op: "read header", Err: err}
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return line, nil
}

// readField returns the next line that is neither blank nor a comment,
// trimmed of surrounding whitespace.
func readField(r *bufio.Reader) (string, error) {
	for {
		line, err := readLine(r)
		if err != nil {
			return "", err
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		return line, nil
	}
}

func parseDimension(s, name string) (uint32, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil || v == 0 {
		return 0, FormatError("invalid " + name)
	}
	return uint32(v), nil
}

// ReadHeader parses the magic token, the dimensions line and the max color
// value line. It stops right after the max color value line, leaving r
// positioned at the first byte of the pixel body.
func ReadHeader(r *bufio.Reader) (Header, error) {
	var h Header

	magic, err := readLine(r)
	if err == io.EOF {
		return h, FormatError("missing magic number")
	}
	if err != nil {
		return h, err
	}
	h.Magic = magic
	h.Variant, _ = ParseVariant(magic)

	dims, err := readField(r)
	if err == io.EOF {
		return h, FormatError("missing width")
	}
	if err != nil {
		return h, err
	}
	fields := strings.Fields(dims)
	if h.Width, err = parseDimension(fields[0], "width"); err != nil {
		return h, err
	}
	if len(fields) < 2 {
		return h, FormatError("missing height")
	}
	if h.Height, err = parseDimension(fields[1], "height"); err != nil {
		return h, err
	}
	if len(fields) > 2 {
		return h, FormatError("unexpected data after height")
	}

	maxval, err := readField(r)
	if err == io.EOF {
		return h, FormatError("missing max color value")
	}
	if err != nil {
		return h, err
	}
	v, err := strconv.ParseUint(maxval, 10, 32)
	if err != nil {
		return h, FormatError("invalid max color value")
	}
	h.MaxColorValue = uint32(v)

	return h, nil
}
