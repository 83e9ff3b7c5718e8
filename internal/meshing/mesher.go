package meshing

import (
	"voxelterrain/internal/profiling"
	"voxelterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// quadIndices is the fixed per-quad winding, relative to the quad's first vertex.
var quadIndices = [6]uint32{0, 1, 3, 1, 2, 3}

// Geometry is a flat triangle mesh. Vertices and UV are index-aligned and
// Triangles always holds whole quads (6 indices each).
type Geometry struct {
	Vertices  []mgl32.Vec3
	Triangles []uint32
	UV        []mgl32.Vec2
}

// Faces returns the number of quads in the geometry
func (g *Geometry) Faces() int {
	return len(g.Triangles) / len(quadIndices)
}

// Empty reports whether there is nothing to draw
func (g *Geometry) Empty() bool {
	return g == nil || len(g.Triangles) == 0
}

// Mesher builds geometry from voxel grids. It is stateless apart from its
// tile map and may be shared between goroutines.
type Mesher struct {
	tiles TileMap
}

// NewMesher returns a mesher using the given tile map
func NewMesher(tiles TileMap) *Mesher {
	return &Mesher{tiles: tiles}
}

// Build emits one quad for every face of a non-empty voxel whose neighbour is
// absent or not solid. Coordinates are chunk-local.
func (m *Mesher) Build(grid *world.VoxelGrid) *Geometry {
	defer profiling.Track("meshing.Build")()
	geom := &Geometry{
		Vertices:  make([]mgl32.Vec3, 0, 1024),
		Triangles: make([]uint32, 0, 1536),
		UV:        make([]mgl32.Vec2, 0, 1024),
	}

	grid.Each(func(x, y, z int, v world.Voxel) {
		if v.Type == world.VoxelEmpty {
			return
		}
		tiles := m.tiles.Lookup(v.Type)
		for _, f := range world.Faces {
			dx, dy, dz := f.Normal()
			if grid.IsSolid(x+dx, y+dy, z+dz) {
				continue
			}
			geom.emitQuad(faceCorners(f, float32(x), float32(y), float32(z)), tiles.For(f))
		}
	})
	return geom
}

func (g *Geometry) emitQuad(corners [4]mgl32.Vec3, tile mgl32.Vec2) {
	offset := uint32(len(g.Vertices))
	g.Vertices = append(g.Vertices, corners[:]...)
	for _, i := range quadIndices {
		g.Triangles = append(g.Triangles, offset+i)
	}
	uv := quadUV(tile)
	g.UV = append(g.UV, uv[:]...)
}

// faceCorners returns the quad for a face of the unit cube at (x,y,z), wound
// so the {0,1,3},{1,2,3} triangles face outward.
func faceCorners(f world.Face, x, y, z float32) [4]mgl32.Vec3 {
	switch f {
	case world.FaceTop:
		return [4]mgl32.Vec3{{x, y + 1, z + 1}, {x + 1, y + 1, z + 1}, {x + 1, y + 1, z}, {x, y + 1, z}}
	case world.FaceBottom:
		return [4]mgl32.Vec3{{x, y, z}, {x + 1, y, z}, {x + 1, y, z + 1}, {x, y, z + 1}}
	case world.FaceLeft:
		return [4]mgl32.Vec3{{x, y + 1, z + 1}, {x, y + 1, z}, {x, y, z}, {x, y, z + 1}}
	case world.FaceRight:
		return [4]mgl32.Vec3{{x + 1, y + 1, z}, {x + 1, y + 1, z + 1}, {x + 1, y, z + 1}, {x + 1, y, z}}
	case world.FaceFront:
		return [4]mgl32.Vec3{{x, y + 1, z}, {x + 1, y + 1, z}, {x + 1, y, z}, {x, y, z}}
	default: // back
		return [4]mgl32.Vec3{{x + 1, y + 1, z + 1}, {x, y + 1, z + 1}, {x, y, z + 1}, {x + 1, y, z + 1}}
	}
}
