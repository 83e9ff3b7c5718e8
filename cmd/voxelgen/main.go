package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"sort"

	"voxelterrain/internal/config"
	"voxelterrain/internal/game"
	"voxelterrain/internal/pipeline"
	"voxelterrain/internal/profiling"
	"voxelterrain/internal/world"

	"github.com/xlab/closer"
)

func main() {
	cfg := config.Defaults()
	fs := flag.CommandLine
	configPath := config.RegisterFlags(fs, &cfg)
	verbose := fs.Bool("v", false, "log every chunk")
	previewPath := fs.String("png", "", "write a top-down preview PNG to this path")
	previewScale := fs.Int("png-scale", 4, "preview pixels per voxel column")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := config.Resolve(&cfg, *configPath, config.ExplicitFlags(fs)); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	opts, err := game.OptionsFrom(cfg)
	if err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	opts.Logger = log

	w, err := game.New(opts)
	if err != nil {
		log.Error("create world", "error", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	finished := make(chan struct{})
	// SIGINT/SIGTERM cancel the build, then wait for run to report the
	// finished chunks and write the preview before the process exits
	closer.Bind(func() {
		cancel()
		<-finished
		w.Close()
	})

	closer.Checked(func() error {
		defer close(finished)
		return run(ctx, w, log, *previewPath, *previewScale)
	}, true)
	closer.Close()
}

func run(ctx context.Context, w *game.WorldGrid, log *slog.Logger, previewPath string, previewScale int) error {
	g, c := w.GridSize(), w.ChunkSize()
	log.Info("building world",
		"grid", fmt.Sprintf("%dx%dx%d", g.X, g.Y, g.Z),
		"chunk", fmt.Sprintf("%dx%dx%d", c.X, c.Y, c.Z),
		"workers", config.GetWorkers())

	err := w.Run(ctx)
	if err != nil && !errors.Is(err, pipeline.ErrCancelled) && !errors.Is(err, context.Canceled) {
		return err
	}
	logStats(log, w.Stats())
	if spawn, ok := w.SpawnPoint(); ok {
		log.Info("spawn point", "x", spawn.X(), "y", spawn.Y(), "z", spawn.Z())
	}
	if err != nil {
		log.Warn("build cancelled", "ready", len(w.ReadyChunks()), "chunks", g.Volume())
	}

	if previewPath != "" {
		if err := writePreview(previewPath, w, previewScale); err != nil {
			return fmt.Errorf("write preview: %w", err)
		}
		log.Info("preview written", "path", previewPath)
	}
	return nil
}

func logStats(log *slog.Logger, s game.BuildStats) {
	types := make([]world.VoxelType, 0, len(s.Voxels))
	for t := range s.Voxels {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	attrs := []any{
		"seed", s.Seed,
		"chunks", s.Chunks,
		"faces", s.Faces,
		"triangles", s.Triangles,
		"duration", s.Duration,
	}
	for _, t := range types {
		attrs = append(attrs, t.String(), s.Voxels[t])
	}
	log.Info("world stats", attrs...)
	log.Debug("stage timings", "top", profiling.TopN(5))
}
