package main

import (
	"image"
	"image/color"
	"image/png"
	"os"

	"voxelterrain/internal/game"
	"voxelterrain/internal/physics"
	"voxelterrain/internal/world"

	"golang.org/x/image/draw"
)

var previewColors = map[world.VoxelType]color.RGBA{
	world.VoxelGrass: {0x5d, 0x9b, 0x3a, 0xff},
	world.VoxelDirt:  {0x86, 0x60, 0x43, 0xff},
	world.VoxelStone: {0x80, 0x80, 0x80, 0xff},
}

func writePreview(path string, w *game.WorldGrid, scale int) error {
	g, c := w.GridSize(), w.ChunkSize()
	img := renderPreview(w, g.X*c.X, g.Y*c.Y, g.Z*c.Z, scale)
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// renderPreview draws the top solid voxel of every column, shaded by height,
// one pixel per column before scaling. Columns with nothing loaded stay black.
func renderPreview(blocks physics.BlockAccessor, sizeX, sizeY, sizeZ, scale int) *image.RGBA {
	small := image.NewRGBA(image.Rect(0, 0, sizeX, sizeZ))
	for x := 0; x < sizeX; x++ {
		for z := 0; z < sizeZ; z++ {
			top, ok := physics.FindGroundLevel(x, z, sizeY-1, blocks)
			if !ok {
				small.SetRGBA(x, z, color.RGBA{A: 0xff})
				continue
			}
			v, _ := blocks.BlockAt(x, top-1, z)
			small.SetRGBA(x, z, shade(previewColors[v.Type], top, sizeY))
		}
	}
	scale = max(scale, 1)
	if scale == 1 {
		return small
	}
	out := image.NewRGBA(image.Rect(0, 0, sizeX*scale, sizeZ*scale))
	draw.NearestNeighbor.Scale(out, out.Bounds(), small, small.Bounds(), draw.Src, nil)
	return out
}

// shade darkens low columns: the top of the world keeps full brightness and
// the floor drops to 40%.
func shade(c color.RGBA, height, maxHeight int) color.RGBA {
	f := 0.4 + 0.6*float64(height)/float64(max(maxHeight, 1))
	f = min(f, 1)
	return color.RGBA{
		R: uint8(float64(c.R) * f),
		G: uint8(float64(c.G) * f),
		B: uint8(float64(c.B) * f),
		A: 0xff,
	}
}
