package meshing

import (
	"voxelterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// TileFraction is the share of the sheet one tile covers along each axis (2x2 sheet).
const TileFraction = float32(0.5)

// TileUV holds the tile-sheet coordinate used for each face of a voxel type.
type TileUV [6]mgl32.Vec2

// UniformTile uses the same tile on every face.
func UniformTile(tile mgl32.Vec2) TileUV {
	return TileUV{tile, tile, tile, tile, tile, tile}
}

// SidedTile uses separate tiles for the top, the bottom and the four sides.
func SidedTile(top, bottom, side mgl32.Vec2) TileUV {
	var t TileUV
	t[world.FaceTop] = top
	t[world.FaceBottom] = bottom
	for _, f := range []world.Face{world.FaceLeft, world.FaceRight, world.FaceFront, world.FaceBack} {
		t[f] = side
	}
	return t
}

// For returns the tile for a face
func (t TileUV) For(f world.Face) mgl32.Vec2 {
	return t[f]
}

// TileMap maps voxel types to their tiles. Types without an entry use Fallback.
type TileMap struct {
	Tiles    map[world.VoxelType]TileUV
	Fallback TileUV
}

// DefaultTiles is the 2x2 sheet layout: dirt at (0,0), stone at (0,1),
// grass top at (1,1) and grass side at (1,0).
func DefaultTiles() TileMap {
	stone := UniformTile(mgl32.Vec2{0, 1})
	return TileMap{
		Tiles: map[world.VoxelType]TileUV{
			world.VoxelStone: stone,
			world.VoxelDirt:  UniformTile(mgl32.Vec2{0, 0}),
			world.VoxelGrass: SidedTile(mgl32.Vec2{1, 1}, mgl32.Vec2{0, 0}, mgl32.Vec2{1, 0}),
		},
		Fallback: stone,
	}
}

// Lookup returns the tiles for a voxel type
func (m TileMap) Lookup(t world.VoxelType) TileUV {
	if uv, ok := m.Tiles[t]; ok {
		return uv
	}
	return m.Fallback
}

// quadUV returns the four sheet-space UVs for a tile, ordered to match the
// quad corners: top-left, top-right, bottom-right, bottom-left.
func quadUV(tile mgl32.Vec2) [4]mgl32.Vec2 {
	u := TileFraction * tile.X()
	v := TileFraction * tile.Y()
	return [4]mgl32.Vec2{
		{u, v + TileFraction},
		{u + TileFraction, v + TileFraction},
		{u + TileFraction, v},
		{u, v},
	}
}
