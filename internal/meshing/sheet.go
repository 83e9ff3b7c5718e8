package meshing

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

const sheetPattern = 4

var (
	dirtColor  = color.RGBA{0x86, 0x60, 0x43, 0xff}
	dirtDark   = color.RGBA{0x6c, 0x4b, 0x33, 0xff}
	stoneColor = color.RGBA{0x80, 0x80, 0x80, 0xff}
	stoneDark  = color.RGBA{0x68, 0x68, 0x68, 0xff}
	grassColor = color.RGBA{0x5d, 0x9b, 0x3a, 0xff}
	grassDark  = color.RGBA{0x4a, 0x80, 0x2c, 0xff}
)

// TileSheet renders the 2x2 tile sheet DefaultTiles points into, each tile
// tilePx pixels square. Image rows grow with v, so it can be uploaded as-is
// and sampled with the UVs the mesher emits.
func TileSheet(tilePx int) *image.RGBA {
	tilePx = max(tilePx, sheetPattern)
	small := image.NewRGBA(image.Rect(0, 0, 2*sheetPattern, 2*sheetPattern))
	for ty := 0; ty < 2; ty++ {
		for tx := 0; tx < 2; tx++ {
			paintTile(small, tx, ty)
		}
	}
	sheet := image.NewRGBA(image.Rect(0, 0, 2*tilePx, 2*tilePx))
	draw.NearestNeighbor.Scale(sheet, sheet.Bounds(), small, small.Bounds(), draw.Src, nil)
	return sheet
}

func paintTile(img *image.RGBA, tx, ty int) {
	ox, oy := tx*sheetPattern, ty*sheetPattern
	for y := 0; y < sheetPattern; y++ {
		for x := 0; x < sheetPattern; x++ {
			checker := (x+y)%2 == 0
			var c color.RGBA
			switch {
			case tx == 0 && ty == 0: // dirt
				c = pick(checker, dirtColor, dirtDark)
			case tx == 0 && ty == 1: // stone
				c = pick(x%3 == y%2, stoneColor, stoneDark)
			case tx == 1 && ty == 1: // grass top
				c = pick(checker, grassColor, grassDark)
			default: // grass side: a green strip along the face's top edge
				if y == sheetPattern-1 {
					c = grassColor
				} else {
					c = pick(checker, dirtColor, dirtDark)
				}
			}
			img.SetRGBA(ox+x, oy+y, c)
		}
	}
}

func pick(first bool, a, b color.RGBA) color.RGBA {
	if first {
		return a
	}
	return b
}
