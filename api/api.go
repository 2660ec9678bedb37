package api

import (
	"bytes"
	"fmt"

	"github.com/voxelsplace/ppmconv/ppm"
	"github.com/voxelsplace/ppmconv/utils"
)

func parseFormat(ext string) (utils.Format, error) {
	f, ok := utils.ParseFormat(ext)
	if !ok {
		return "", fmt.Errorf("unknown image format %q", ext)
	}
	return f, nil
}

// PPMToImage converts a P3/P6 file held in memory into the format named by
// target (an extension such as "png", "jpg" or "glb").
func PPMToImage(ppmBytes []byte, target string) ([]byte, error) {
	to, err := parseFormat(target)
	if err != nil {
		return nil, err
	}
	return utils.ConvertBytes(ppmBytes, utils.FormatPPM, to, utils.ConvertOptions{})
}

// ImageToPPM converts an image of the format named by source into PPM.
// format must be "P3" or "P6".
func ImageToPPM(data []byte, source, format string) ([]byte, error) {
	from, err := parseFormat(source)
	if err != nil {
		return nil, err
	}
	return utils.ConvertBytes(data, from, utils.FormatPPM, utils.ConvertOptions{Format: format})
}

// PPMInfo decodes a PPM file held in memory and describes it.
func PPMInfo(ppmBytes []byte) (utils.PPMInfo, error) {
	return utils.ReadPPMInfo(bytes.NewReader(ppmBytes))
}

// RasterToPPM encodes a bare RGB raster (width*height*3 bytes) as PPM.
func RasterToPPM(width, height uint32, pix []byte, binary bool) ([]byte, error) {
	ras, err := ppm.NewRaster(width, height, pix)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := ppm.EncodeRaster(&out, ras, binary); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
