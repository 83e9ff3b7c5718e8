package physics

import (
	"math"

	"voxelterrain/internal/meshing"
	"voxelterrain/internal/profiling"
	"voxelterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Shape is the collision representation of one chunk, in chunk-local space.
type Shape struct {
	Vertices  []mgl32.Vec3
	Triangles []uint32
}

// TriangleCount returns the number of triangles in the shape
func (s *Shape) TriangleCount() int {
	if s == nil {
		return 0
	}
	return len(s.Triangles) / 3
}

// Deriver produces a collision shape from render geometry.
type Deriver interface {
	Derive(geom *meshing.Geometry) *Shape
}

// PassThrough builds the collision shape straight from the render mesh with
// no simplification. The vertex and index slices are shared, not copied;
// geometry is never mutated after meshing.
type PassThrough struct{}

// Derive implements Deriver
func (PassThrough) Derive(geom *meshing.Geometry) *Shape {
	defer profiling.Track("physics.Derive")()
	if geom == nil {
		return &Shape{}
	}
	return &Shape{Vertices: geom.Vertices, Triangles: geom.Triangles}
}

// BlockAccessor answers voxel queries in world block coordinates. Cells that
// are not loaded report ok == false.
type BlockAccessor interface {
	BlockAt(x, y, z int) (world.Voxel, bool)
}

// AABB is an axis-aligned box in world space.
type AABB struct {
	Min, Max mgl32.Vec3
}

// Collides reports whether the box overlaps any solid voxel. Voxel (x,y,z)
// spans [x,x+1) on each axis.
func Collides(box AABB, blocks BlockAccessor) bool {
	minX, maxX := floorInt(box.Min.X()), ceilInt(box.Max.X())
	minY, maxY := floorInt(box.Min.Y()), ceilInt(box.Max.Y())
	minZ, maxZ := floorInt(box.Min.Z()), ceilInt(box.Max.Z())

	for x := minX; x < maxX; x++ {
		for y := minY; y < maxY; y++ {
			for z := minZ; z < maxZ; z++ {
				if v, ok := blocks.BlockAt(x, y, z); ok && v.Solid {
					return true
				}
			}
		}
	}
	return false
}

// FindGroundLevel returns the top surface Y of the highest solid voxel in the
// column at or below fromY, and false if there is none down to y=0.
func FindGroundLevel(x, z, fromY int, blocks BlockAccessor) (int, bool) {
	for y := fromY; y >= 0; y-- {
		if v, ok := blocks.BlockAt(x, y, z); ok && v.Solid {
			return y + 1, true
		}
	}
	return 0, false
}

func floorInt(f float32) int {
	return int(math.Floor(float64(f)))
}

func ceilInt(f float32) int {
	return int(math.Ceil(float64(f)))
}
