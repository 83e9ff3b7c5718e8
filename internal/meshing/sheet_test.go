package meshing

import (
	"testing"

	"voxelterrain/internal/world"
)

func TestTileSheetMatchesUVs(t *testing.T) {
	const px = 16
	sheet := TileSheet(px)
	if b := sheet.Bounds(); b.Dx() != 2*px || b.Dy() != 2*px {
		t.Fatalf("sheet size %v", b)
	}

	tiles := DefaultTiles()
	stone := tiles.Lookup(world.VoxelStone).For(world.FaceTop)
	uv := quadUV(stone)
	// centre of the stone tile in pixel space
	cx := int((uv[0].X() + TileFraction/2) * 2 * px)
	cy := int((uv[2].Y() + TileFraction/2) * 2 * px)
	if got := sheet.RGBAAt(cx, cy); got != stoneColor && got != stoneDark {
		t.Fatalf("stone tile centre is %v", got)
	}

	// grass sides carry the green strip at the high-v edge of the tile
	side := tiles.Lookup(world.VoxelGrass).For(world.FaceLeft)
	top := int((side.Y()+1)*TileFraction*2*px) - 1
	if got := sheet.RGBAAt(int(side.X()*TileFraction*2*px), top); got != grassColor {
		t.Fatalf("grass side top edge is %v", got)
	}
}

func TestTileSheetMinimumSize(t *testing.T) {
	if b := TileSheet(1).Bounds(); b.Dx() != 2*sheetPattern {
		t.Fatalf("tiny sheet width %d", b.Dx())
	}
}
