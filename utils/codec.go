package utils

import (
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	"golang.org/x/image/webp"

	"github.com/voxelsplace/ppmconv/ppm"
)

// Format identifies an image file format by its canonical extension.
type Format string

const (
	FormatPPM  Format = "ppm"
	FormatPNG  Format = "png"
	FormatJPEG Format = "jpeg"
	FormatGIF  Format = "gif"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatWebP Format = "webp"
	FormatGLB  Format = "glb"
)

// ErrInvalidPPMFormat is returned when a PPM output is requested without a
// valid P3/P6 format token.
var ErrInvalidPPMFormat = errors.New("invalid format for PPM, use P3 for ASCII or P6 for binary")

// ErrSameFile is returned when a conversion would overwrite its own input.
var ErrSameFile = errors.New("input and output are the same file")

// UnsupportedConversionError reports that there is no codec path between two
// formats.
type UnsupportedConversionError struct {
	From, To string
}

func (e *UnsupportedConversionError) Error() string {
	return fmt.Sprintf("unsupported conversion: %s -> %s", e.From, e.To)
}

var extFormats = map[string]Format{
	"ppm":  FormatPPM,
	"png":  FormatPNG,
	"jpg":  FormatJPEG,
	"jpeg": FormatJPEG,
	"gif":  FormatGIF,
	"bmp":  FormatBMP,
	"tif":  FormatTIFF,
	"tiff": FormatTIFF,
	"webp": FormatWebP,
	"glb":  FormatGLB,
}

// ParseFormat maps an extension (with or without the leading dot) to a
// Format.
func ParseFormat(ext string) (Format, bool) {
	f, ok := extFormats[strings.ToLower(strings.TrimPrefix(ext, "."))]
	return f, ok
}

// FormatFromPath returns the image format and the outer compression of path.
// Compression is only recognised around PPM files (".ppm.gz", ".ppm.zst").
func FormatFromPath(path string) (Format, ppm.Compression, error) {
	comp := ppm.CompressionFromPath(path)
	base := path
	if comp != ppm.CompressionNone {
		base = path[:len(path)-len(comp.Ext())]
	}
	ext := filepath.Ext(base)
	f, ok := ParseFormat(ext)
	if !ok {
		if comp != ppm.CompressionNone {
			ext = filepath.Ext(path)
		}
		return "", comp, fmt.Errorf("unknown image extension %q (%s)", ext, path)
	}
	if comp != ppm.CompressionNone && f != FormatPPM {
		return "", comp, fmt.Errorf("compression is only supported for .ppm files (%s)", path)
	}
	return f, comp, nil
}

// CanDecode reports whether f can be read.
func (f Format) CanDecode() bool {
	switch f {
	case FormatPPM, FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatTIFF, FormatWebP:
		return true
	}
	return false
}

// CanEncode reports whether f can be written.
func (f Format) CanEncode() bool {
	switch f {
	case FormatPPM, FormatPNG, FormatJPEG, FormatGIF, FormatBMP, FormatTIFF, FormatGLB:
		return true
	}
	return false
}

// Ext returns the file extension for f, including the leading dot.
func (f Format) Ext() string {
	if f == FormatJPEG {
		return ".jpg"
	}
	return "." + string(f)
}

// CheckConversion returns an *UnsupportedConversionError unless from can be
// decoded, to can be encoded and at least one side is PPM.
func CheckConversion(from, to Format) error {
	if !from.CanDecode() || !to.CanEncode() || (from != FormatPPM && to != FormatPPM) {
		return &UnsupportedConversionError{From: string(from), To: string(to)}
	}
	return nil
}

// DecodeImage reads an image of format f from r and converts it to an RGB
// raster.
func DecodeImage(r io.Reader, f Format) (*ppm.Raster, error) {
	var (
		img image.Image
		err error
	)
	switch f {
	case FormatPPM:
		return ppm.DecodeRaster(r)
	case FormatPNG:
		img, err = png.Decode(r)
	case FormatJPEG:
		img, err = jpeg.Decode(r)
	case FormatGIF:
		img, err = gif.Decode(r)
	case FormatBMP:
		img, err = bmp.Decode(r)
	case FormatTIFF:
		img, err = tiff.Decode(r)
	case FormatWebP:
		img, err = webp.Decode(r)
	default:
		return nil, fmt.Errorf("no decoder for %s", f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", f, err)
	}
	return ppm.RasterFromImage(img)
}

// EncodeOptions carries per-format encoder settings.
type EncodeOptions struct {
	// PPMVariant selects P3 or P6 and is required for PPM output.
	PPMVariant ppm.Variant
	// JPEGQuality ranges from 1 to 100; 0 means jpeg.DefaultQuality.
	JPEGQuality int
}

// EncodeImage writes ras to w in format f.
func EncodeImage(w io.Writer, ras *ppm.Raster, f Format, opts EncodeOptions) error {
	var err error
	switch f {
	case FormatPPM:
		if opts.PPMVariant == ppm.VariantUnknown {
			return ErrInvalidPPMFormat
		}
		return ppm.EncodeRaster(w, ras, opts.PPMVariant == ppm.VariantBinary)
	case FormatPNG:
		err = png.Encode(w, ras.Image())
	case FormatJPEG:
		q := opts.JPEGQuality
		if q <= 0 {
			q = jpeg.DefaultQuality
		}
		err = jpeg.Encode(w, ras.Image(), &jpeg.Options{Quality: q})
	case FormatGIF:
		err = gif.Encode(w, ras.Image(), nil)
	case FormatBMP:
		err = bmp.Encode(w, ras.Image())
	case FormatTIFF:
		err = tiff.Encode(w, ras.Image(), &tiff.Options{Compression: tiff.Deflate})
	case FormatGLB:
		err = EncodeGLB(w, ras)
	default:
		return fmt.Errorf("no encoder for %s", f)
	}
	if err != nil {
		return fmt.Errorf("encode %s: %w", f, err)
	}
	return nil
}
