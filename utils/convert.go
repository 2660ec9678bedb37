package utils

import (
	"bytes"
	"fmt"
	"image"
	"io"
	"os"

	"github.com/anthonynsimon/bild/effect"
	"github.com/nfnt/resize"

	"github.com/voxelsplace/ppmconv/ppm"
)

// ConvertOptions configures a single conversion.
type ConvertOptions struct {
	// Format is "P3" or "P6" and must be set when the output is PPM.
	Format string
	// MaxDimension, when non-zero, shrinks the image to fit inside a
	// MaxDimension x MaxDimension square, keeping the aspect ratio.
	MaxDimension int
	// Grayscale desaturates the image. The output is still RGB.
	Grayscale bool
	// JPEGQuality is passed to the JPEG encoder.
	JPEGQuality int
	// Out receives the status line. Nil means os.Stdout.
	Out io.Writer
}

func (o ConvertOptions) encodeOptions(to Format) (EncodeOptions, error) {
	eo := EncodeOptions{JPEGQuality: o.JPEGQuality}
	if to == FormatPPM {
		v, err := ppm.ParseVariant(o.Format)
		if err != nil {
			return eo, fmt.Errorf("%w (got %q)", ErrInvalidPPMFormat, o.Format)
		}
		eo.PPMVariant = v
	}
	return eo, nil
}

func (o ConvertOptions) out() io.Writer {
	if o.Out == nil {
		return os.Stdout
	}
	return o.Out
}

// transform applies the optional thumbnail and grayscale steps.
func transform(ras *ppm.Raster, o ConvertOptions) (*ppm.Raster, error) {
	if o.MaxDimension <= 0 && !o.Grayscale {
		return ras, nil
	}
	var out image.Image = ras.Image()
	if o.MaxDimension > 0 && (int(ras.Width) > o.MaxDimension || int(ras.Height) > o.MaxDimension) {
		out = resize.Thumbnail(uint(o.MaxDimension), uint(o.MaxDimension), out, resize.Lanczos3)
	}
	if o.Grayscale {
		out = effect.Grayscale(out)
	}
	return ppm.RasterFromImage(out)
}

// convertStream decodes from r, transforms and encodes to w. The returned
// raster is the one that was encoded.
func convertStream(r io.Reader, w io.Writer, from, to Format, o ConvertOptions) (*ppm.Raster, error) {
	if err := CheckConversion(from, to); err != nil {
		return nil, err
	}
	eo, err := o.encodeOptions(to)
	if err != nil {
		return nil, err
	}
	ras, err := DecodeImage(r, from)
	if err != nil {
		return nil, err
	}
	if ras, err = transform(ras, o); err != nil {
		return nil, err
	}
	if err := EncodeImage(w, ras, to, eo); err != nil {
		return nil, err
	}
	return ras, nil
}

// ConvertBytes converts an in-memory image between two formats.
func ConvertBytes(data []byte, from, to Format, o ConvertOptions) ([]byte, error) {
	var out bytes.Buffer
	if _, err := convertStream(bytes.NewReader(data), &out, from, to, o); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// checkDistinct fails when output names the already opened input file.
// Creating the output would truncate the input before it is read.
func checkDistinct(in *os.File, output string) error {
	outInfo, err := os.Stat(output)
	if err != nil {
		return nil
	}
	inInfo, err := in.Stat()
	if err != nil {
		return err
	}
	if os.SameFile(inInfo, outInfo) {
		return fmt.Errorf("%s: %w", output, ErrSameFile)
	}
	return nil
}

// RunConvert converts the image file input into output. Formats are taken
// from the file extensions; ".ppm.gz" and ".ppm.zst" are read and written
// through the matching compressor. The conversion pair and the PPM format
// token are validated before any file is touched. A failed conversion may
// leave a partial output file behind.
func RunConvert(input, output string, o ConvertOptions) error {
	from, inComp, err := FormatFromPath(input)
	if err != nil {
		return err
	}
	to, outComp, err := FormatFromPath(output)
	if err != nil {
		return err
	}
	if err := CheckConversion(from, to); err != nil {
		return err
	}
	if _, err := o.encodeOptions(to); err != nil {
		return err
	}

	in, err := os.Open(input)
	if err != nil {
		return err
	}
	defer in.Close()
	if err := checkDistinct(in, output); err != nil {
		return err
	}
	r, err := ppm.NewReader(in, inComp)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	defer r.Close()

	f, err := os.Create(output)
	if err != nil {
		return err
	}
	defer f.Close()
	w, err := ppm.NewWriter(f, outComp)
	if err != nil {
		return err
	}
	defer w.Close()

	ras, err := convertStream(r, w, from, to, o)
	if err != nil {
		return fmt.Errorf("%s: %w", input, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("%s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%s: %w", output, err)
	}

	fmt.Fprintf(o.out(), "%s -> %s (%dx%d, xxhash %016x)\n", input, output, ras.Width, ras.Height, ras.Sum64())
	return nil
}
