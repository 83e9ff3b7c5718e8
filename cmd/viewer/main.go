package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"

	"voxelterrain/internal/config"
	"voxelterrain/internal/game"

	"github.com/go-gl/glfw/v3.3/glfw"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	cfg := config.Defaults()
	fs := flag.CommandLine
	configPath := config.RegisterFlags(fs, &cfg)
	fpsLimit := fs.Int("fps", config.GetFPSLimit(), "frame cap (0 = uncapped)")
	fov := fs.Float64("fov", float64(config.GetFOV()), "vertical field of view in degrees")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if err := config.Resolve(&cfg, *configPath, config.ExplicitFlags(fs)); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(2)
	}
	config.SetFPSLimit(*fpsLimit)
	config.SetFOV(float32(*fov))

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
	defer w.Close()

	if err := glfw.Init(); err != nil {
		log.Error("init glfw", "error", err)
		os.Exit(1)
	}
	defer glfw.Terminate()

	window, err := setupWindow()
	if err != nil {
		log.Error("create window", "error", err)
		os.Exit(1)
	}

	loop, err := NewViewLoop(window, w, log)
	if err != nil {
		log.Error("init renderer", "error", err)
		os.Exit(1)
	}
	defer loop.Close()

	if err := w.Start(); err != nil {
		log.Error("start build", "error", err)
		os.Exit(1)
	}
	loop.Run()
}
