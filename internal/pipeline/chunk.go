package pipeline

import (
	"context"
	"fmt"
	"sync"

	"voxelterrain/internal/meshing"
	"voxelterrain/internal/physics"
	"voxelterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// Chunk owns one chunk's voxels, render geometry and collision shape.
// Everything is published together when the chunk's pipeline reaches Done;
// until then the chunk reads as empty.
type Chunk struct {
	Coord world.ChunkCoord
	Size  world.ChunkSize
	Name  string

	mu        sync.RWMutex
	grid      *world.VoxelGrid
	geometry  *meshing.Geometry
	collision *physics.Shape
	ready     bool
	released  bool
}

// NewChunk creates an unpopulated chunk
func NewChunk(coord world.ChunkCoord, size world.ChunkSize) *Chunk {
	return &Chunk{
		Coord: coord,
		Size:  size,
		Name:  fmt.Sprintf("Chunk (%d, %d, %d)", coord.X, coord.Y, coord.Z),
	}
}

// Placement returns the chunk's local-to-world transform.
func (c *Chunk) Placement() mgl32.Mat4 {
	x, y, z := c.Size.Origin(c.Coord)
	return mgl32.Translate3D(float32(x), float32(y), float32(z))
}

// Ready reports whether the chunk finished its pipeline and has not been released.
func (c *Chunk) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.ready
}

// GetBlock returns the voxel at local coordinates. It reports false for
// out-of-range coordinates and for chunks that are not ready.
func (c *Chunk) GetBlock(x, y, z int) (world.Voxel, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ready || c.grid == nil {
		return world.Voxel{}, false
	}
	return c.grid.Get(x, y, z)
}

// Grid returns the voxel grid, or nil before the chunk is ready
func (c *Chunk) Grid() *world.VoxelGrid {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ready {
		return nil
	}
	return c.grid
}

// Geometry returns the render mesh, or nil before the chunk is ready
func (c *Chunk) Geometry() *meshing.Geometry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ready {
		return nil
	}
	return c.geometry
}

// Collision returns the collision shape, or nil before the chunk is ready
func (c *Chunk) Collision() *physics.Shape {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.ready {
		return nil
	}
	return c.collision
}

// publish reports false when the chunk was released or its build cancelled first.
func (c *Chunk) publish(ctx context.Context, grid *world.VoxelGrid, geom *meshing.Geometry, shape *physics.Shape) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.released || ctx.Err() != nil {
		return false
	}
	c.grid = grid
	c.geometry = geom
	c.collision = shape
	c.ready = true
	return true
}

// Release drops the chunk's data. A released chunk is never ready again.
func (c *Chunk) Release() {
	c.mu.Lock()
	c.grid = nil
	c.geometry = nil
	c.collision = nil
	c.ready = false
	c.released = true
	c.mu.Unlock()
}
