package utils

import (
	"bytes"
	"image/png"
	"io"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/voxelsplace/ppmconv/ppm"
)

// EncodeGLB writes ras as a binary glTF scene holding a single quad textured
// with the raster. The longest side of the quad is one unit long and it lies
// in the XY plane, facing +Z.
func EncodeGLB(w io.Writer, ras *ppm.Raster) error {
	var tex bytes.Buffer
	if err := png.Encode(&tex, ras.Image()); err != nil {
		return err
	}

	sx, sy := float32(1), float32(1)
	if ras.Width > ras.Height {
		sy = float32(ras.Height) / float32(ras.Width)
	} else {
		sx = float32(ras.Width) / float32(ras.Height)
	}
	positions := [][3]float32{
		{-sx / 2, -sy / 2, 0},
		{sx / 2, -sy / 2, 0},
		{sx / 2, sy / 2, 0},
		{-sx / 2, sy / 2, 0},
	}
	// glTF texture coordinates start at the top-left corner of the image
	uvs := [][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}
	indices := []uint32{0, 1, 2, 0, 2, 3}

	doc := gltf.NewDocument()
	doc.Asset.Generator = "PPM -> GLB"

	imgIdx, err := modeler.WriteImage(doc, "raster", "image/png", &tex)
	if err != nil {
		return err
	}
	doc.Textures = []*gltf.Texture{{Source: gltf.Index(imgIdx)}}

	pbr := &gltf.PBRMetallicRoughness{
		BaseColorFactor:  &[4]float64{1, 1, 1, 1},
		BaseColorTexture: &gltf.TextureInfo{Index: 0},
		MetallicFactor:   gltf.Float(0),
		RoughnessFactor:  gltf.Float(1),
	}
	doc.Materials = []*gltf.Material{{
		Name:                 "Raster",
		PBRMetallicRoughness: pbr,
		AlphaMode:            gltf.AlphaOpaque,
		DoubleSided:          true,
	}}

	prim := &gltf.Primitive{
		Attributes: map[string]int{
			gltf.POSITION:   modeler.WritePosition(doc, positions),
			gltf.TEXCOORD_0: modeler.WriteTextureCoord(doc, uvs),
		},
		Indices:    gltf.Index(modeler.WriteIndices(doc, indices)),
		Material:   gltf.Index(0),
	}
	doc.Meshes = []*gltf.Mesh{{Name: "RasterQuad", Primitives: []*gltf.Primitive{prim}}}
	doc.Nodes = []*gltf.Node{{Name: "Raster", Mesh: gltf.Index(0)}}
	doc.Scenes[0].Nodes = append(doc.Scenes[0].Nodes, 0)

	enc := gltf.NewEncoder(w)
	enc.AsBinary = true
	return enc.Encode(doc)
}
