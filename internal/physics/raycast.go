package physics

import (
	"voxelterrain/internal/profiling"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	MinReachDistance = 0.1
	MaxReachDistance = 5.0

	raycastStep = float32(0.02)
)

// RaycastResult stores the result of a raycast operation
type RaycastResult struct {
	HitPosition      [3]int
	AdjacentPosition [3]int
	Distance         float32
	Hit              bool
}

// Raycast marches from start along direction and returns the first solid
// voxel between minDist and maxDist. Direction need not be normalized.
func Raycast(start, direction mgl32.Vec3, minDist, maxDist float32, blocks BlockAccessor) RaycastResult {
	defer profiling.Track("physics.Raycast")()
	if direction.Len() == 0 {
		return RaycastResult{}
	}
	direction = direction.Normalize()
	steps := int(maxDist / raycastStep)

	last := [3]int{floorInt(start.X()), floorInt(start.Y()), floorInt(start.Z())}
	for i := 0; i <= steps; i++ {
		dist := float32(i) * raycastStep
		if dist < minDist {
			continue
		}
		pos := start.Add(direction.Mul(dist))
		cell := [3]int{floorInt(pos.X()), floorInt(pos.Y()), floorInt(pos.Z())}
		if v, ok := blocks.BlockAt(cell[0], cell[1], cell[2]); ok && v.Solid {
			return RaycastResult{
				HitPosition:      cell,
				AdjacentPosition: last,
				Distance:         dist,
				Hit:              true,
			}
		}
		last = cell
	}
	return RaycastResult{}
}
