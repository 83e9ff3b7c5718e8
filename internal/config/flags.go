package config

import (
	"flag"
	"fmt"
)

// RegisterFlags binds the world settings to fs, writing into cfg, and returns
// the -config path flag.
func RegisterFlags(fs *flag.FlagSet, cfg *File) *string {
	path := fs.String("config", "", "YAML world config; explicit flags override it")
	fs.Func("chunk", "chunk size as x,y,z or n (each axis 1..32)", dimsFlag(&cfg.ChunkSize))
	fs.Func("grid", "chunks per axis as x,y,z or n", dimsFlag(&cfg.Grid))
	fs.Func("seed", "world seed in [-50000, 50000]; 0 picks a random seed per build", func(s string) error {
		cfg.Seed = ParseSeed(s)
		return nil
	})
	fs.IntVar(&cfg.SeaLevel, "sea-level", cfg.SeaLevel, "world height below which caves may carve stone")
	fs.BoolVar(&cfg.Caves, "caves", cfg.Caves, "carve caves below sea level")
	fs.BoolVar(&cfg.DirtPatches, "dirt-patches", cfg.DirtPatches, "scatter dirt through stone")
	fs.StringVar(&cfg.Noise, "noise", cfg.Noise, "noise backend: perlin or simplex")
	fs.IntVar(&cfg.Workers, "workers", cfg.Workers, "background workers (0 = NumCPU-1)")
	return path
}

func dimsFlag(dst *Dims) func(string) error {
	return func(s string) error {
		d, err := ParseDims(s)
		if err != nil {
			return err
		}
		*dst = d
		return nil
	}
}

// ExplicitFlags returns the names of flags set on the command line
func ExplicitFlags(fs *flag.FlagSet) map[string]bool {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set
}

// Resolve layers a config file under the flags already parsed into cfg, then
// normalizes and validates the result.
func Resolve(cfg *File, path string, explicit map[string]bool) error {
	if path != "" {
		fromFile, err := Load(path)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		Merge(cfg, fromFile, explicit)
	}
	cfg.Normalize()
	return cfg.Validate()
}
