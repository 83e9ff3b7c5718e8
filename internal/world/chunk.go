package world

import (
	"errors"
	"fmt"
)

const (
	// MaxChunkAxis bounds each chunk axis so a single chunk mesh stays within
	// 32-bit index range with room to spare.
	MaxChunkAxis = 32
	// DefaultChunkAxis matches the classic 16^3 chunk.
	DefaultChunkAxis = 16
)

// ErrInvalidSize is returned for chunk or grid dimensions outside the allowed range
var ErrInvalidSize = errors.New("invalid size")

// ChunkCoord addresses a chunk in chunk-grid units, not blocks.
type ChunkCoord struct {
	X, Y, Z int
}

func (c ChunkCoord) String() string {
	return fmt.Sprintf("(%d, %d, %d)", c.X, c.Y, c.Z)
}

// ChunkSize holds the voxel dimensions of a chunk.
type ChunkSize struct {
	X, Y, Z int
}

// DefaultChunkSize returns a 16x16x16 chunk size
func DefaultChunkSize() ChunkSize {
	return ChunkSize{X: DefaultChunkAxis, Y: DefaultChunkAxis, Z: DefaultChunkAxis}
}

// Validate checks every axis is in [1, MaxChunkAxis]
func (s ChunkSize) Validate() error {
	for _, v := range [3]int{s.X, s.Y, s.Z} {
		if v < 1 || v > MaxChunkAxis {
			return fmt.Errorf("chunk size %dx%dx%d: %w (each axis must be 1..%d)", s.X, s.Y, s.Z, ErrInvalidSize, MaxChunkAxis)
		}
	}
	return nil
}

// Volume returns the number of voxels in a chunk
func (s ChunkSize) Volume() int {
	return s.X * s.Y * s.Z
}

// Origin returns the world block coordinate of local (0,0,0) for the chunk.
func (s ChunkSize) Origin(c ChunkCoord) (x, y, z int) {
	return c.X * s.X, c.Y * s.Y, c.Z * s.Z
}

// VoxelGrid is a dense x-major 3D array of voxels.
type VoxelGrid struct {
	size   ChunkSize
	voxels []Voxel
}

// NewVoxelGrid allocates an all-empty grid. Dimensions are not validated here;
// non-positive axes produce an empty grid.
func NewVoxelGrid(size ChunkSize) *VoxelGrid {
	n := size.Volume()
	if size.X <= 0 || size.Y <= 0 || size.Z <= 0 {
		n = 0
	}
	return &VoxelGrid{size: size, voxels: make([]Voxel, n)}
}

// Size returns the grid dimensions
func (g *VoxelGrid) Size() ChunkSize {
	return g.size
}

// InBounds reports whether local coordinates address a cell of the grid.
func (g *VoxelGrid) InBounds(x, y, z int) bool {
	return x >= 0 && x < g.size.X && y >= 0 && y < g.size.Y && z >= 0 && z < g.size.Z && len(g.voxels) > 0
}

func (g *VoxelGrid) index(x, y, z int) int {
	return x*g.size.Y*g.size.Z + y*g.size.Z + z
}

// Get returns the voxel at local coordinates, or false when they fall outside the grid.
func (g *VoxelGrid) Get(x, y, z int) (Voxel, bool) {
	if !g.InBounds(x, y, z) {
		return Voxel{}, false
	}
	return g.voxels[g.index(x, y, z)], true
}

// Set stores a voxel at local coordinates. Out-of-range writes are ignored.
func (g *VoxelGrid) Set(x, y, z int, v Voxel) {
	if !g.InBounds(x, y, z) {
		return
	}
	g.voxels[g.index(x, y, z)] = v
}

// at returns a pointer for in-place edits during synthesis
func (g *VoxelGrid) at(x, y, z int) *Voxel {
	return &g.voxels[g.index(x, y, z)]
}

// IsSolid reports whether a cell exists and is solid. Absent cells are never solid.
func (g *VoxelGrid) IsSolid(x, y, z int) bool {
	v, ok := g.Get(x, y, z)
	return ok && v.Solid
}

// Count returns how many voxels of each type the grid holds
func (g *VoxelGrid) Count() map[VoxelType]int {
	out := make(map[VoxelType]int, 4)
	for i := range g.voxels {
		out[g.voxels[i].Type]++
	}
	return out
}

// Each calls fn for every cell in x-major, then y, then z order.
func (g *VoxelGrid) Each(fn func(x, y, z int, v Voxel)) {
	for x := 0; x < g.size.X; x++ {
		for y := 0; y < g.size.Y; y++ {
			for z := 0; z < g.size.Z; z++ {
				fn(x, y, z, g.voxels[g.index(x, y, z)])
			}
		}
	}
}

// AppendBytes appends a canonical byte encoding (type plus flags per cell) to dst.
// Two grids with equal encodings hold identical voxel data.
func (g *VoxelGrid) AppendBytes(dst []byte) []byte {
	for i := range g.voxels {
		v := g.voxels[i]
		var flags byte
		if v.Solid {
			flags |= 1
		}
		if v.Visible {
			flags |= 2
		}
		dst = append(dst, byte(v.Type), flags)
	}
	return dst
}
