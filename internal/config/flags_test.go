package config

import (
	"flag"
	"io"
	"testing"
)

func TestFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, "grid: {x: 5, y: 1, z: 5}\nseed: 321\nnoise: simplex\n")

	cfg := Defaults()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	RegisterFlags(fs, &cfg)
	if err := fs.Parse([]string{"-seed", "70000", "-chunk", "8", "-caves=false"}); err != nil {
		t.Fatal(err)
	}
	if err := Resolve(&cfg, path, ExplicitFlags(fs)); err != nil {
		t.Fatal(err)
	}

	if cfg.Seed != MaxSeed {
		t.Errorf("seed = %d, want flag value clamped to %d", cfg.Seed, MaxSeed)
	}
	if cfg.ChunkSize != (Dims{8, 8, 8}) || cfg.Caves {
		t.Errorf("flags lost: chunk=%s caves=%v", cfg.ChunkSize, cfg.Caves)
	}
	if cfg.Grid != (Dims{5, 1, 5}) || cfg.Noise != "simplex" {
		t.Errorf("file values lost: grid=%s noise=%s", cfg.Grid, cfg.Noise)
	}
}

func TestFlagsRejectBadDims(t *testing.T) {
	cfg := Defaults()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	RegisterFlags(fs, &cfg)
	if err := fs.Parse([]string{"-grid", "2,x,2"}); err == nil {
		t.Fatal("bad -grid accepted")
	}
}

func TestResolveValidates(t *testing.T) {
	cfg := Defaults()
	cfg.ChunkSize = Dims{40, 16, 16}
	if err := Resolve(&cfg, "", nil); err == nil {
		t.Fatal("oversized chunk accepted")
	}
}
