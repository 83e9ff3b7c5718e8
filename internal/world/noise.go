package world

import (
	"fmt"
	"math"
	"strings"

	"voxelterrain/internal/config"

	"github.com/aquilax/go-perlin"
	"github.com/ojrac/opensimplex-go"
)

// NoiseBackend selects the gradient noise implementation behind a NoiseField.
type NoiseBackend string

const (
	BackendPerlin  NoiseBackend = "perlin"
	BackendSimplex NoiseBackend = "simplex"
)

// ParseBackend accepts "perlin" or "simplex" (case-insensitive); empty means perlin.
func ParseBackend(s string) (NoiseBackend, error) {
	switch NoiseBackend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendPerlin:
		return BackendPerlin, nil
	case BackendSimplex:
		return BackendSimplex, nil
	}
	return "", fmt.Errorf("unknown noise backend %q", s)
}

type noiseSource interface {
	Noise3D(x, y, z float64) float64
}

// Single-octave gradient noise; alpha and beta only matter for n > 1.
const (
	perlinAlpha   = 2
	perlinBeta    = 2
	perlinOctaves = 1
	// latticeShift keeps lookups in the positive range where go-perlin's
	// truncating lattice index is continuous. It is a multiple of the
	// permutation period, so the pattern itself is unchanged.
	latticeShift = 65536
)

type perlinSource struct {
	p *perlin.Perlin
}

func (s perlinSource) Noise3D(x, y, z float64) float64 {
	return s.p.Noise3D(x+latticeShift, y+latticeShift, z+latticeShift)
}

type simplexSource struct {
	n opensimplex.Noise
}

func (s simplexSource) Noise3D(x, y, z float64) float64 {
	return s.n.Eval3(x, y, z)
}

// NoiseField is a seeded 3D scalar field. It is immutable once built and safe
// for concurrent use; reseeding means building a new field.
type NoiseField struct {
	seed    int
	backend NoiseBackend
	src     noiseSource
}

// NewNoiseField builds a field for a seed (clamped) and backend. Unknown
// backends fall back to perlin.
func NewNoiseField(seed int, backend NoiseBackend) *NoiseField {
	seed = config.ClampSeed(seed)
	f := &NoiseField{seed: seed, backend: backend}
	switch backend {
	case BackendSimplex:
		f.src = simplexSource{n: opensimplex.New(int64(seed))}
	default:
		f.backend = BackendPerlin
		f.src = perlinSource{p: perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, int64(seed))}
	}
	return f
}

// Seed returns the field's seed
func (f *NoiseField) Seed() int {
	return f.seed
}

// Backend returns the noise implementation in use
func (f *NoiseField) Backend() NoiseBackend {
	return f.backend
}

// Raw returns the unscaled noise at seed + (x, y, z).
func (f *NoiseField) Raw(x, y, z float64) float64 {
	s := float64(f.seed)
	return f.src.Noise3D(s+x, s+y, s+z)
}

// Sample is SamplePow with power 1.
func (f *NoiseField) Sample(x, y, z, smoothness, scale float64) int {
	return f.SamplePow(x, y, z, smoothness, scale, 1)
}

// SamplePow computes round(pow(noise(seed + p/smoothness) * scale, power)).
func (f *NoiseField) SamplePow(x, y, z, smoothness, scale, power float64) int {
	v := f.Raw(x/smoothness, y/smoothness, z/smoothness) * scale
	return int(math.Round(warp(v, power)))
}

// warp raises v to power. For negative v with a fractional power math.Pow
// yields NaN, so the odd extension -|v|^power is used instead.
func warp(v, power float64) float64 {
	if power == 1 {
		return v
	}
	r := math.Pow(v, power)
	if math.IsNaN(r) {
		return -math.Pow(-v, power)
	}
	return r
}
