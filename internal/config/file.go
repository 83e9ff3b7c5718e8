package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Seeds are offsets added to noise sample coordinates, so they are kept small
// enough that seed + x/smoothness never loses float precision.
const (
	MinSeed = -50000
	MaxSeed = 50000

	maxChunkAxis = 32
)

// Dims is a three-axis size.
type Dims struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	Z int `yaml:"z"`
}

func (d Dims) String() string {
	return fmt.Sprintf("%d,%d,%d", d.X, d.Y, d.Z)
}

// File is the on-disk world configuration.
type File struct {
	ChunkSize   Dims   `yaml:"chunk_size"`
	Grid        Dims   `yaml:"grid"`
	Seed        int    `yaml:"seed"`
	SeaLevel    int    `yaml:"sea_level"`
	Caves       bool   `yaml:"caves"`
	DirtPatches bool   `yaml:"dirt_patches"`
	Noise       string `yaml:"noise"`
	Workers     int    `yaml:"workers"`
}

// Defaults returns the built-in configuration: a single 16^3 chunk with a random seed.
func Defaults() File {
	return File{
		ChunkSize:   Dims{X: 16, Y: 16, Z: 16},
		Grid:        Dims{X: 1, Y: 1, Z: 1},
		Seed:        0,
		SeaLevel:    DefaultSeaLevel,
		Caves:       true,
		DirtPatches: true,
		Noise:       "perlin",
		Workers:     0,
	}
}

// Load reads a YAML config. An empty path yields the defaults.
func Load(path string) (File, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Normalize clamps values that are corrected rather than rejected.
func (f *File) Normalize() {
	f.Seed = ClampSeed(f.Seed)
	if f.SeaLevel < 0 {
		f.SeaLevel = 0
	}
	f.Noise = strings.ToLower(strings.TrimSpace(f.Noise))
	if f.Noise == "" {
		f.Noise = "perlin"
	}
	if f.Workers < 0 {
		f.Workers = 0
	}
}

// Validate rejects sizes outside the supported range.
func (f File) Validate() error {
	for _, v := range []int{f.ChunkSize.X, f.ChunkSize.Y, f.ChunkSize.Z} {
		if v < 1 || v > maxChunkAxis {
			return fmt.Errorf("chunk_size %s: each axis must be 1..%d", f.ChunkSize, maxChunkAxis)
		}
	}
	for _, v := range []int{f.Grid.X, f.Grid.Y, f.Grid.Z} {
		if v < 1 {
			return fmt.Errorf("grid %s: each axis must be at least 1", f.Grid)
		}
	}
	switch f.Noise {
	case "perlin", "simplex":
	default:
		return fmt.Errorf("noise %q: want perlin or simplex", f.Noise)
	}
	return nil
}

// Apply pushes the generation settings into the process-wide settings.
func (f File) Apply() {
	SetSeaLevel(f.SeaLevel)
	SetCaves(f.Caves)
	SetDirtPatches(f.DirtPatches)
	SetNoiseBackend(f.Noise)
	SetWorkers(f.Workers)
}

// Merge applies file-loaded values into cfg, but only for fields that were
// NOT explicitly set via CLI flags.
func Merge(cfg *File, fromFile File, explicitFlags map[string]bool) {
	if !explicitFlags["chunk"] {
		cfg.ChunkSize = fromFile.ChunkSize
	}
	if !explicitFlags["grid"] {
		cfg.Grid = fromFile.Grid
	}
	if !explicitFlags["seed"] {
		cfg.Seed = fromFile.Seed
	}
	if !explicitFlags["sea-level"] {
		cfg.SeaLevel = fromFile.SeaLevel
	}
	if !explicitFlags["caves"] {
		cfg.Caves = fromFile.Caves
	}
	if !explicitFlags["dirt-patches"] {
		cfg.DirtPatches = fromFile.DirtPatches
	}
	if !explicitFlags["noise"] {
		cfg.Noise = fromFile.Noise
	}
	if !explicitFlags["workers"] {
		cfg.Workers = fromFile.Workers
	}
}

// ClampSeed constrains a seed to [MinSeed, MaxSeed]
func ClampSeed(seed int) int {
	return min(max(seed, MinSeed), MaxSeed)
}

// ParseSeed interprets user-entered seed text. Integers are clamped into
// range; anything unparsable (including "" and a lone "-") means 0, which
// asks for a random seed.
func ParseSeed(s string) int {
	s = strings.TrimSpace(s)
	if s == "" || s == "-" {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		if errors.Is(err, strconv.ErrRange) {
			if strings.HasPrefix(s, "-") {
				return MinSeed
			}
			return MaxSeed
		}
		return 0
	}
	if n < MinSeed {
		return MinSeed
	}
	if n > MaxSeed {
		return MaxSeed
	}
	return int(n)
}

// ParseDims parses "x,y,z" or a single "n" meaning n,n,n.
func ParseDims(s string) (Dims, error) {
	parts := strings.Split(s, ",")
	if len(parts) == 1 {
		n, err := strconv.Atoi(strings.TrimSpace(parts[0]))
		if err != nil {
			return Dims{}, fmt.Errorf("dims %q: %w", s, err)
		}
		return Dims{X: n, Y: n, Z: n}, nil
	}
	if len(parts) != 3 {
		return Dims{}, fmt.Errorf("dims %q: want x,y,z", s)
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Dims{}, fmt.Errorf("dims %q: %w", s, err)
		}
		v[i] = n
	}
	return Dims{X: v[0], Y: v[1], Z: v[2]}, nil
}
