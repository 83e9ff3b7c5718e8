package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "world.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadEmptyPathGivesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg != Defaults() {
		t.Fatalf("got %+v, want defaults", cfg)
	}
}

func TestLoadPartialFile(t *testing.T) {
	path := writeConfig(t, `
grid: {x: 4, y: 2, z: 4}
seed: 90000
noise: Simplex
caves: false
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Grid != (Dims{X: 4, Y: 2, Z: 4}) {
		t.Errorf("grid = %s", cfg.Grid)
	}
	if cfg.Seed != MaxSeed {
		t.Errorf("seed = %d, want clamped %d", cfg.Seed, MaxSeed)
	}
	if cfg.Noise != "simplex" {
		t.Errorf("noise = %q", cfg.Noise)
	}
	if cfg.Caves || !cfg.DirtPatches {
		t.Errorf("caves=%v dirt_patches=%v", cfg.Caves, cfg.DirtPatches)
	}
	if cfg.ChunkSize != (Dims{X: 16, Y: 16, Z: 16}) || cfg.SeaLevel != DefaultSeaLevel {
		t.Errorf("unset keys lost their defaults: %+v", cfg)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	bodies := []string{
		"chunk_size: {x: 64, y: 16, z: 16}\n",
		"grid: {x: 0, y: 1, z: 1}\n",
		"noise: value\n",
		"seed: [1, 2]\n",
	}
	for _, body := range bodies {
		if _, err := Load(writeConfig(t, body)); err == nil {
			t.Errorf("Load(%q) succeeded", body)
		}
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("missing file loaded")
	}
}

func TestMergeRespectsExplicitFlags(t *testing.T) {
	cfg := Defaults()
	cfg.Seed = 5
	cfg.Grid = Dims{X: 3, Y: 3, Z: 3}

	fromFile := Defaults()
	fromFile.Seed = 77
	fromFile.Grid = Dims{X: 8, Y: 1, Z: 8}
	fromFile.Workers = 4

	Merge(&cfg, fromFile, map[string]bool{"seed": true})
	if cfg.Seed != 5 {
		t.Errorf("explicit seed overwritten: %d", cfg.Seed)
	}
	if cfg.Grid != fromFile.Grid || cfg.Workers != 4 {
		t.Errorf("file values not merged: %+v", cfg)
	}
}

func TestApply(t *testing.T) {
	t.Cleanup(func() { Defaults().Apply() })
	cfg := Defaults()
	cfg.SeaLevel = 24
	cfg.Caves = false
	cfg.Noise = "simplex"
	cfg.Workers = 3
	cfg.Apply()
	if GetSeaLevel() != 24 || GetCaves() || GetNoiseBackend() != "simplex" || GetWorkers() != 3 {
		t.Fatalf("settings not applied: sea=%d caves=%v noise=%s workers=%d",
			GetSeaLevel(), GetCaves(), GetNoiseBackend(), GetWorkers())
	}
}

func TestClampSeed(t *testing.T) {
	tests := []struct{ in, want int }{
		{0, 0},
		{123, 123},
		{50000, 50000},
		{50001, 50000},
		{-50001, -50000},
		{math.MaxInt32, 50000},
	}
	for _, tt := range tests {
		if got := ClampSeed(tt.in); got != tt.want {
			t.Errorf("ClampSeed(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseSeed(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"-", 0},
		{"abc", 0},
		{"12x", 0},
		{"42", 42},
		{" -17 ", -17},
		{"60000", MaxSeed},
		{"-60000", MinSeed},
		{"99999999999999999999999", MaxSeed},
		{"-99999999999999999999999", MinSeed},
	}
	for _, tt := range tests {
		if got := ParseSeed(tt.in); got != tt.want {
			t.Errorf("ParseSeed(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseDims(t *testing.T) {
	tests := []struct {
		in      string
		want    Dims
		wantErr bool
	}{
		{"16", Dims{16, 16, 16}, false},
		{"4, 2,4", Dims{4, 2, 4}, false},
		{"1,2", Dims{}, true},
		{"a,b,c", Dims{}, true},
		{"", Dims{}, true},
	}
	for _, tt := range tests {
		got, err := ParseDims(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseDims(%q) = %v, %v", tt.in, got, err)
		}
	}
}

func TestSetWorkersClamps(t *testing.T) {
	t.Cleanup(func() { SetWorkers(0) })
	SetWorkers(1000)
	if GetWorkers() != 256 {
		t.Errorf("workers = %d, want 256", GetWorkers())
	}
	SetWorkers(-1)
	if GetWorkers() < 1 {
		t.Errorf("default workers = %d", GetWorkers())
	}
}
