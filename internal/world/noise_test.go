package world

import (
	"math"
	"math/rand"
	"testing"

	"voxelterrain/internal/config"
)

func TestNoiseFieldDeterministic(t *testing.T) {
	for _, backend := range []NoiseBackend{BackendPerlin, BackendSimplex} {
		first := NewNoiseField(42, backend).Raw(1.5, 2.7, 3.3)
		for i := 0; i < 50; i++ {
			if v := NewNoiseField(42, backend).Raw(1.5, 2.7, 3.3); v != first {
				t.Fatalf("%s: Raw not deterministic: %f != %f", backend, v, first)
			}
		}
	}
}

func TestNoiseFieldContinuity(t *testing.T) {
	rng := rand.New(rand.NewSource(12345))
	for _, backend := range []NoiseBackend{BackendPerlin, BackendSimplex} {
		f := NewNoiseField(-777, backend)
		for i := 0; i < 200; i++ {
			x := rng.Float64()*200 - 100
			y := rng.Float64()*200 - 100
			z := rng.Float64()*200 - 100
			v1 := f.Raw(x, y, z)
			v2 := f.Raw(x+0.01, y, z)
			if diff := math.Abs(v1 - v2); diff >= 0.1 {
				t.Fatalf("%s: Raw not continuous at (%f,%f,%f): diff=%f", backend, x, y, z, diff)
			}
		}
	}
}

func TestNoiseFieldRange(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for _, backend := range []NoiseBackend{BackendPerlin, BackendSimplex} {
		f := NewNoiseField(3, backend)
		for i := 0; i < 1000; i++ {
			v := f.Raw(rng.Float64()*1000, rng.Float64()*1000, rng.Float64()*1000)
			if v < -1.5 || v > 1.5 || math.IsNaN(v) {
				t.Fatalf("%s: Raw out of range: %f", backend, v)
			}
		}
	}
}

func TestNoiseFieldClampsSeed(t *testing.T) {
	if got := NewNoiseField(60000, BackendPerlin).Seed(); got != config.MaxSeed {
		t.Errorf("seed 60000 -> %d, want %d", got, config.MaxSeed)
	}
	if got := NewNoiseField(-60000, BackendPerlin).Seed(); got != config.MinSeed {
		t.Errorf("seed -60000 -> %d, want %d", got, config.MinSeed)
	}
	if got := NewNoiseField(5, "bogus").Backend(); got != BackendPerlin {
		t.Errorf("unknown backend resolved to %q", got)
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		in      string
		want    NoiseBackend
		wantErr bool
	}{
		{"", BackendPerlin, false},
		{"perlin", BackendPerlin, false},
		{" Simplex ", BackendSimplex, false},
		{"value", "", true},
	}
	for _, tt := range tests {
		got, err := ParseBackend(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseBackend(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestWarp(t *testing.T) {
	tests := []struct{ v, p, want float64 }{
		{2, 1, 2},
		{-2, 1, -2},
		{2, 4, 16},
		{-2, 4, 16},
		{-2, 1.2, -math.Pow(2, 1.2)},
		{0, 1.2, 0},
	}
	for _, tt := range tests {
		if got := warp(tt.v, tt.p); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("warp(%v, %v) = %v, want %v", tt.v, tt.p, got, tt.want)
		}
	}
}

func TestSampleRounds(t *testing.T) {
	f := NewNoiseField(11, BackendSimplex)
	raw := f.Raw(10.0/50, 100.0/50, 20.0/50) * 2
	if got, want := f.Sample(10, 100, 20, 50, 2), int(math.Round(raw)); got != want {
		t.Fatalf("Sample = %d, want %d", got, want)
	}
}
