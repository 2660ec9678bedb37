package utils

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	pnm "github.com/jbuchbinder/gopnm"

	"github.com/voxelsplace/ppmconv/ppm"
)

func makeRaster(w, h uint32) *ppm.Raster {
	pix := make([]byte, int(w*h*3))
	for i := range pix {
		pix[i] = byte(i*7 + i/3)
	}
	return &ppm.Raster{Width: w, Height: h, Pix: pix}
}

func writePPM(t *testing.T, path string, ras *ppm.Raster, binary bool) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	w, err := ppm.NewWriter(f, ppm.CompressionFromPath(path))
	if err != nil {
		t.Fatal(err)
	}
	if err := ppm.EncodeRaster(w, ras, binary); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
}

func readPPM(t *testing.T, path string) *ppm.Raster {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	r, err := ppm.NewReader(f, ppm.CompressionFromPath(path))
	if err != nil {
		t.Fatal(err)
	}
	defer r.Close()
	ras, err := ppm.DecodeRaster(r)
	if err != nil {
		t.Fatal(err)
	}
	return ras
}

func TestFormatFromPath(t *testing.T) {
	cases := []struct {
		path string
		f    Format
		c    ppm.Compression
	}{
		{"a.ppm", FormatPPM, ppm.CompressionNone},
		{"dir.d/A.PNG", FormatPNG, ppm.CompressionNone},
		{"a.jpg", FormatJPEG, ppm.CompressionNone},
		{"a.jpeg", FormatJPEG, ppm.CompressionNone},
		{"a.tif", FormatTIFF, ppm.CompressionNone},
		{"a.ppm.gz", FormatPPM, ppm.CompressionGzip},
		{"a.ppm.zst", FormatPPM, ppm.CompressionZstd},
		{"scene.glb", FormatGLB, ppm.CompressionNone},
	}
	for _, c := range cases {
		f, comp, err := FormatFromPath(c.path)
		if err != nil {
			t.Errorf("%s: %v", c.path, err)
			continue
		}
		if f != c.f || comp != c.c {
			t.Errorf("%s: got %s/%d, want %s/%d", c.path, f, comp, c.f, c.c)
		}
	}
	for _, bad := range []string{"a.txt", "noext", "a.png.gz", "a.gz"} {
		if _, _, err := FormatFromPath(bad); err == nil {
			t.Errorf("%s: expected an error", bad)
		}
	}
}

func TestCheckConversion(t *testing.T) {
	ok := [][2]Format{
		{FormatPPM, FormatPNG}, {FormatPNG, FormatPPM},
		{FormatPPM, FormatJPEG}, {FormatJPEG, FormatPPM},
		{FormatPPM, FormatPPM}, {FormatWebP, FormatPPM},
		{FormatPPM, FormatGLB}, {FormatPPM, FormatBMP},
	}
	for _, p := range ok {
		if err := CheckConversion(p[0], p[1]); err != nil {
			t.Errorf("%s -> %s: %v", p[0], p[1], err)
		}
	}
	bad := [][2]Format{
		{FormatPNG, FormatJPEG}, {FormatJPEG, FormatPNG},
		{FormatPPM, FormatWebP}, {FormatGLB, FormatPPM},
	}
	for _, p := range bad {
		var uc *UnsupportedConversionError
		if err := CheckConversion(p[0], p[1]); !errors.As(err, &uc) {
			t.Errorf("%s -> %s: got %v, want UnsupportedConversionError", p[0], p[1], err)
		}
	}
}

func TestConvertBytesLossless(t *testing.T) {
	want := makeRaster(9, 5)
	var src bytes.Buffer
	if err := ppm.EncodeRaster(&src, want, true); err != nil {
		t.Fatal(err)
	}
	for _, f := range []Format{FormatPNG, FormatBMP, FormatTIFF} {
		encoded, err := ConvertBytes(src.Bytes(), FormatPPM, f, ConvertOptions{})
		if err != nil {
			t.Fatalf("ppm -> %s: %v", f, err)
		}
		back, err := ConvertBytes(encoded, f, FormatPPM, ConvertOptions{Format: "P3"})
		if err != nil {
			t.Fatalf("%s -> ppm: %v", f, err)
		}
		if !strings.HasPrefix(string(back), "P3\n9 5\n255\n") {
			t.Errorf("%s -> ppm: unexpected header in %.24q", f, back)
		}
		got, err := ppm.DecodeRaster(bytes.NewReader(back))
		if err != nil {
			t.Fatal(err)
		}
		if d := cmp.Diff(want, got); d != "" {
			t.Errorf("ppm -> %s -> ppm mismatch (-want +got):\n%s", f, d)
		}
	}
}

func TestConvertBytesJPEG(t *testing.T) {
	var src bytes.Buffer
	if err := ppm.EncodeRaster(&src, makeRaster(16, 8), false); err != nil {
		t.Fatal(err)
	}
	jpg, err := ConvertBytes(src.Bytes(), FormatPPM, FormatJPEG, ConvertOptions{JPEGQuality: 95})
	if err != nil {
		t.Fatal(err)
	}
	back, err := ConvertBytes(jpg, FormatJPEG, FormatPPM, ConvertOptions{Format: "P6"})
	if err != nil {
		t.Fatal(err)
	}
	got, err := ppm.DecodeRaster(bytes.NewReader(back))
	if err != nil {
		t.Fatal(err)
	}
	if got.Width != 16 || got.Height != 8 {
		t.Errorf("got %dx%d, want 16x8", got.Width, got.Height)
	}
}

func TestConvertRequiresPPMFormat(t *testing.T) {
	var png bytes.Buffer
	if err := EncodeImage(&png, makeRaster(2, 2), FormatPNG, EncodeOptions{}); err != nil {
		t.Fatal(err)
	}
	for _, token := range []string{"", "P5", "p6", "ascii"} {
		_, err := ConvertBytes(png.Bytes(), FormatPNG, FormatPPM, ConvertOptions{Format: token})
		if !errors.Is(err, ErrInvalidPPMFormat) {
			t.Errorf("format %q: got %v, want ErrInvalidPPMFormat", token, err)
		}
	}
	// the token is irrelevant when the output is not PPM
	var src bytes.Buffer
	if err := ppm.EncodeRaster(&src, makeRaster(2, 2), true); err != nil {
		t.Fatal(err)
	}
	if _, err := ConvertBytes(src.Bytes(), FormatPPM, FormatPNG, ConvertOptions{Format: "bogus"}); err != nil {
		t.Error(err)
	}
}

func TestTransform(t *testing.T) {
	ras := makeRaster(32, 16)
	small, err := transform(ras, ConvertOptions{MaxDimension: 8})
	if err != nil {
		t.Fatal(err)
	}
	if small.Width != 8 || small.Height != 4 {
		t.Errorf("thumbnail is %dx%d, want 8x4", small.Width, small.Height)
	}
	same, err := transform(ras, ConvertOptions{MaxDimension: 64})
	if err != nil {
		t.Fatal(err)
	}
	if same.Width != 32 || same.Height != 16 {
		t.Errorf("image grew or shrank to %dx%d", same.Width, same.Height)
	}
	gray, err := transform(ras, ConvertOptions{Grayscale: true})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < len(gray.Pix); i += 3 {
		if gray.Pix[i] != gray.Pix[i+1] || gray.Pix[i] != gray.Pix[i+2] {
			t.Fatalf("pixel %d is not gray: %v", i/3, gray.Pix[i:i+3])
		}
	}
}

func TestRunConvertFiles(t *testing.T) {
	dir := t.TempDir()
	want := makeRaster(12, 7)
	src := filepath.Join(dir, "in.ppm.gz")
	writePPM(t, src, want, true)

	var status bytes.Buffer
	png := filepath.Join(dir, "mid.png")
	if err := RunConvert(src, png, ConvertOptions{Out: &status}); err != nil {
		t.Fatal(err)
	}
	dst := filepath.Join(dir, "out.ppm.zst")
	if err := RunConvert(png, dst, ConvertOptions{Format: "P3", Out: &status}); err != nil {
		t.Fatal(err)
	}
	if d := cmp.Diff(want, readPPM(t, dst)); d != "" {
		t.Errorf("file roundtrip mismatch (-want +got):\n%s", d)
	}
	lines := strings.Split(strings.TrimSpace(status.String()), "\n")
	if len(lines) != 2 || !strings.Contains(lines[0], "(12x7, xxhash ") {
		t.Errorf("unexpected status output %q", status.String())
	}
}

func TestRunConvertRejectsBeforeWriting(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	if err := os.WriteFile(src, []byte("not used"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := filepath.Join(dir, "out.jpg")
	var uc *UnsupportedConversionError
	if err := RunConvert(src, out, ConvertOptions{Out: &bytes.Buffer{}}); !errors.As(err, &uc) {
		t.Fatalf("png -> jpg: got %v, want UnsupportedConversionError", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output file was created for an unsupported conversion")
	}

	out = filepath.Join(dir, "out.ppm")
	if err := RunConvert(src, out, ConvertOptions{Format: "P9", Out: &bytes.Buffer{}}); !errors.Is(err, ErrInvalidPPMFormat) {
		t.Fatalf("png -> ppm P9: got %v, want ErrInvalidPPMFormat", err)
	}
	if _, err := os.Stat(out); !os.IsNotExist(err) {
		t.Errorf("output file was created for an invalid format token")
	}
}

func TestRunConvertCorruptInput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.ppm")
	if err := os.WriteFile(src, []byte("P6\n2 2\n255\n0123456789"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := RunConvert(src, filepath.Join(dir, "out.png"), ConvertOptions{Out: &bytes.Buffer{}})
	var ioErr *ppm.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("got %v, want *ppm.IOError", err)
	}
}

func TestRunConvertCorruptInputCompressedOutput(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.png")
	if err := os.WriteFile(src, []byte("not a png"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := RunConvert(src, filepath.Join(dir, "out.ppm.zst"), ConvertOptions{Format: "P6", Out: &bytes.Buffer{}})
	if err == nil || !strings.Contains(err.Error(), "decode png") {
		t.Fatalf("got %v, want a png decode error", err)
	}
}

func TestRunConvertSameFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.ppm")
	want := makeRaster(3, 2)
	writePPM(t, src, want, false)

	for _, out := range []string{src, filepath.Join(dir, ".", "in.ppm")} {
		err := RunConvert(src, out, ConvertOptions{Format: "P6", Out: &bytes.Buffer{}})
		if !errors.Is(err, ErrSameFile) {
			t.Errorf("%s: got %v, want ErrSameFile", out, err)
		}
	}
	if d := cmp.Diff(want, readPPM(t, src)); d != "" {
		t.Errorf("input changed (-want +got):\n%s", d)
	}
}

// gopnm is an independent netpbm implementation; it must read what the
// encoder writes.
func TestOutputReadableByGopnm(t *testing.T) {
	ras := makeRaster(5, 3)
	for _, binary := range []bool{true, false} {
		var buf bytes.Buffer
		if err := ppm.EncodeRaster(&buf, ras, binary); err != nil {
			t.Fatal(err)
		}
		img, err := pnm.Decode(&buf)
		if err != nil {
			t.Fatalf("binary=%v: gopnm: %v", binary, err)
		}
		if got := img.Bounds(); got != image.Rect(0, 0, 5, 3) {
			t.Fatalf("binary=%v: bounds %v", binary, got)
		}
		for y := 0; y < 3; y++ {
			for x := 0; x < 5; x++ {
				i := (y*5 + x) * 3
				want := color.RGBA{ras.Pix[i], ras.Pix[i+1], ras.Pix[i+2], 0xff}
				got := color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
				if got != want {
					t.Fatalf("binary=%v: pixel (%d,%d) = %v, want %v", binary, x, y, got, want)
				}
			}
		}
	}
}
