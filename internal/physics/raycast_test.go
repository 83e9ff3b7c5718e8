package physics

import (
	"fmt"
	"testing"

	"voxelterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// blockSet is a sparse BlockAccessor for tests
type blockSet map[[3]int]bool

func (s blockSet) BlockAt(x, y, z int) (world.Voxel, bool) {
	if !s[[3]int{x, y, z}] {
		return world.Voxel{}, false
	}
	return world.Voxel{X: x, Y: y, Z: z, Type: world.VoxelStone, Solid: true, Visible: true}, true
}

func TestRaycast(t *testing.T) {
	blocks := blockSet{
		{0, 0, 0}: true,
		{1, 0, 0}: true,
		{0, 1, 0}: true,
		{0, 0, 1}: true,
	}

	tests := []struct {
		name           string
		start          mgl32.Vec3
		direction      mgl32.Vec3
		maxDist        float32
		expectHit      bool
		expectHitPos   [3]int
		expectPlacePos [3]int
	}{
		{
			name:           "look down onto stacked block",
			start:          mgl32.Vec3{0, 2, 0},
			direction:      mgl32.Vec3{0, -1, 0},
			maxDist:        3.0,
			expectHit:      true,
			expectHitPos:   [3]int{0, 1, 0},
			expectPlacePos: [3]int{0, 2, 0},
		},
		{
			name:           "look at side of block",
			start:          mgl32.Vec3{-1, 0.5, 0},
			direction:      mgl32.Vec3{1, 0, 0},
			maxDist:        2.0,
			expectHit:      true,
			expectHitPos:   [3]int{0, 0, 0},
			expectPlacePos: [3]int{-1, 0, 0},
		},
		{
			name:      "look into empty space",
			start:     mgl32.Vec3{5, 5, 5},
			direction: mgl32.Vec3{1, 0, 0},
			maxDist:   2.0,
		},
		{
			name:      "target beyond reach",
			start:     mgl32.Vec3{-5, 0.5, 0.5},
			direction: mgl32.Vec3{1, 0, 0},
			maxDist:   3.0,
		},
		{
			name:      "zero direction",
			start:     mgl32.Vec3{0, 2, 0},
			direction: mgl32.Vec3{},
			maxDist:   3.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Raycast(tt.start, tt.direction, MinReachDistance, tt.maxDist, blocks)
			if result.Hit != tt.expectHit {
				t.Fatalf("hit = %v, want %v", result.Hit, tt.expectHit)
			}
			if !tt.expectHit {
				return
			}
			if result.HitPosition != tt.expectHitPos {
				t.Errorf("hit position = %v, want %v", result.HitPosition, tt.expectHitPos)
			}
			if result.AdjacentPosition != tt.expectPlacePos {
				t.Errorf("adjacent position = %v, want %v", result.AdjacentPosition, tt.expectPlacePos)
			}
			if result.Distance < MinReachDistance || result.Distance > tt.maxDist {
				t.Errorf("distance %f outside [%f, %f]", result.Distance, MinReachDistance, tt.maxDist)
			}
		})
	}
}

func BenchmarkRaycast(b *testing.B) {
	wall := blockSet{}
	for x := 0; x < 16; x++ {
		for y := 0; y < 16; y++ {
			wall[[3]int{x, y, 5}] = true
		}
	}
	start := mgl32.Vec3{0, 8, 0}
	dir := mgl32.Vec3{0, 0, 1}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Raycast(start, dir, 0.1, 10.0, wall)
	}
}

func ExampleRaycast() {
	blocks := blockSet{{0, 0, 0}: true}
	r := Raycast(mgl32.Vec3{0.5, 3, 0.5}, mgl32.Vec3{0, -1, 0}, MinReachDistance, MaxReachDistance, blocks)
	fmt.Println(r.Hit, r.HitPosition, r.AdjacentPosition)
	// Output: true [0 0 0] [0 1 0]
}
