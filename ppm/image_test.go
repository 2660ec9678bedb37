package ppm

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestImageDecodeRegistered(t *testing.T) {
	img, format, err := image.Decode(strings.NewReader("P3\n2 1\n255\n255 0 0\n0 255 0\n"))
	if err != nil {
		t.Fatal(err)
	}
	if format != "ppm" {
		t.Errorf("format = %q, want ppm", format)
	}
	if got := img.At(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("At(0,0) = %v", got)
	}
	if got := img.At(1, 0); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("At(1,0) = %v", got)
	}
}

func TestDecodeConfig(t *testing.T) {
	cfg, format, err := image.DecodeConfig(strings.NewReader("P6\n# c\n320 200\n255\n"))
	if err != nil {
		t.Fatal(err)
	}
	if format != "ppm" || cfg.Width != 320 || cfg.Height != 200 {
		t.Errorf("got %q %dx%d, want ppm 320x200", format, cfg.Width, cfg.Height)
	}
	if _, err := DecodeConfig(strings.NewReader("P9\n1 1\n255\n")); err == nil {
		t.Error("DecodeConfig accepted P9")
	}
}

func TestEncodeImage(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 10, 12, 11))
	src.SetNRGBA(10, 10, color.NRGBA{1, 2, 3, 255})
	src.SetNRGBA(11, 10, color.NRGBA{200, 100, 50, 0})

	var buf bytes.Buffer
	if err := Encode(&buf, src, &Options{Binary: false}); err != nil {
		t.Fatal(err)
	}
	want := "P3\n2 1\n255\n1 2 3\n200 100 50\n"
	if buf.String() != want {
		t.Errorf("got %q, want %q", buf.String(), want)
	}

	buf.Reset()
	if err := Encode(&buf, src, nil); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "P6\n") {
		t.Errorf("nil options should write P6, got %q", buf.String())
	}
}

func TestImageDecodeOversizedHeader(t *testing.T) {
	_, _, err := image.Decode(bytes.NewReader([]byte("P6\n60000 60000\n255\n\x01\x02\x03")))
	var ioErr *IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("got %v, want *IOError", err)
	}
}

func TestEncodeEmptyImage(t *testing.T) {
	for _, r := range []image.Rectangle{image.Rect(0, 0, 0, 4), image.Rect(0, 0, 4, 0)} {
		var buf bytes.Buffer
		err := Encode(&buf, image.NewRGBA(r), nil)
		var fe FormatError
		if !errors.As(err, &fe) {
			t.Errorf("%v: got %v, want FormatError", r, err)
		}
		if buf.Len() != 0 {
			t.Errorf("%v: wrote %q", r, buf.String())
		}
	}
}

func TestRasterImageRoundtrip(t *testing.T) {
	want := randomRaster(t, 37, 23, 7)
	got, err := RasterFromImage(want.Image())
	if err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(want, got); d != "" {
		t.Errorf("raster -> image -> raster mismatch (-want +got):\n%s", d)
	}
}

func TestNewRasterLength(t *testing.T) {
	if _, err := NewRaster(2, 2, make([]byte, 11)); err == nil {
		t.Error("NewRaster accepted 11 bytes for 2x2")
	}
	if _, err := NewRaster(2, 2, make([]byte, 12)); err != nil {
		t.Error(err)
	}
}

func TestSum64(t *testing.T) {
	a := randomRaster(t, 4, 4, 1)
	b := &Raster{Width: 4, Height: 4, Pix: append([]byte(nil), a.Pix...)}
	if a.Sum64() != b.Sum64() {
		t.Error("equal rasters hash differently")
	}
	b.Pix[0] ^= 0xff
	if a.Sum64() == b.Sum64() {
		t.Error("different rasters hash equally")
	}
}
