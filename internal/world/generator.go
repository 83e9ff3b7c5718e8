package world

import (
	"voxelterrain/internal/config"
	"voxelterrain/internal/profiling"
)

// Noise parameters for the strata. Each is (y offset, smoothness, scale, power).
const (
	stoneBaseY, stoneBaseSmooth, stoneBaseScale, stoneBasePow = 0, 175.0, 2.75, 4.0
	stoneHillY, stoneHillSmooth, stoneHillScale, stoneHillPow = 300, 40.0, 4.0, 1.2
	dirtY, dirtSmooth, dirtScale                              = 100, 50.0, 2.0

	caveSmooth, caveScale             = 24.0, 16.0
	patchSmooth, patchScale, patchPow = 24.0, 11.0, 1.2

	// Samples above this threshold carve caves or scatter dirt patches.
	featureThreshold = 10
)

// Synthesizer turns chunk coordinates into typed voxels. It holds no mutable
// state, so one value may serve any number of goroutines.
type Synthesizer struct {
	SeaLevel    int
	Caves       bool
	DirtPatches bool
}

// NewSynthesizer returns a synthesizer configured from the process-wide
// generation settings.
func NewSynthesizer() Synthesizer {
	return Synthesizer{
		SeaLevel:    config.GetSeaLevel(),
		Caves:       config.GetCaves(),
		DirtPatches: config.GetDirtPatches(),
	}
}

// Strata returns the stone and dirt layer heights for a world column.
func (s Synthesizer) Strata(noise *NoiseField, worldX, worldZ int) (stoneLayer, dirtLayer int) {
	x, z := float64(worldX), float64(worldZ)
	stoneLayer = noise.SamplePow(x, stoneBaseY, z, stoneBaseSmooth, stoneBaseScale, stoneBasePow) +
		noise.SamplePow(x, stoneHillY, z, stoneHillSmooth, stoneHillScale, stoneHillPow) +
		s.SeaLevel
	dirtLayer = noise.Sample(x, dirtY, z, dirtSmooth, dirtScale) + 1
	return stoneLayer, dirtLayer
}

// SurfaceHeight returns the world Y of the highest solid-by-strata cell of a
// column, ignoring caves.
func (s Synthesizer) SurfaceHeight(noise *NoiseField, worldX, worldZ int) int {
	stone, dirt := s.Strata(noise, worldX, worldZ)
	if dirt > 0 {
		return stone + dirt
	}
	return stone
}

// Synthesize builds the voxel grid for one chunk. The result depends only on
// the noise field, chunk coordinate, size and the synthesizer settings.
func (s Synthesizer) Synthesize(noise *NoiseField, coord ChunkCoord, size ChunkSize) *VoxelGrid {
	defer profiling.Track("world.Synthesize")()
	grid := NewVoxelGrid(size)
	baseX, baseY, baseZ := size.Origin(coord)

	for lx := 0; lx < size.X; lx++ {
		worldX := baseX + lx
		for lz := 0; lz < size.Z; lz++ {
			worldZ := baseZ + lz
			stoneLayer, dirtLayer := s.Strata(noise, worldX, worldZ)
			for ly := 0; ly < size.Y; ly++ {
				worldY := baseY + ly
				*grid.at(lx, ly, lz) = s.voxelAt(noise, worldX, worldY, worldZ, stoneLayer, dirtLayer)
			}
		}
	}
	return grid
}

func (s Synthesizer) voxelAt(noise *NoiseField, worldX, worldY, worldZ, stoneLayer, dirtLayer int) Voxel {
	switch {
	case worldY == 0:
		// world floor is always solid
		return newVoxel(worldX, worldY, worldZ, VoxelStone)
	case worldY <= stoneLayer:
		v := newVoxel(worldX, worldY, worldZ, VoxelStone)
		x, y, z := float64(worldX), float64(worldY), float64(worldZ)
		if s.Caves && worldY <= s.SeaLevel && noise.Sample(x, y*2, z, caveSmooth, caveScale) > featureThreshold {
			v.carve()
		} else if s.DirtPatches && noise.SamplePow(x, float64(worldY+worldY/2), z, patchSmooth, patchScale, patchPow) > featureThreshold {
			v.Type = VoxelDirt
		}
		return v
	case worldY <= dirtLayer+stoneLayer:
		if worldY+1 > dirtLayer+stoneLayer {
			return newVoxel(worldX, worldY, worldZ, VoxelGrass)
		}
		return newVoxel(worldX, worldY, worldZ, VoxelDirt)
	default:
		return newVoxel(worldX, worldY, worldZ, VoxelEmpty)
	}
}
