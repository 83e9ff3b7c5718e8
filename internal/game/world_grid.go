package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"voxelterrain/internal/config"
	"voxelterrain/internal/meshing"
	"voxelterrain/internal/physics"
	"voxelterrain/internal/pipeline"
	"voxelterrain/internal/profiling"
	"voxelterrain/internal/world"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrBuildInFlight is returned when an operation needs the world to be idle.
var ErrBuildInFlight = errors.New("world: build in flight")

// Options configures a WorldGrid. Grid is the number of chunks along each
// axis. A nil Synthesizer means world.NewSynthesizer().
type Options struct {
	ChunkSize   world.ChunkSize
	Grid        world.ChunkSize
	Seed        int
	Backend     world.NoiseBackend
	Synthesizer *world.Synthesizer
	Tiles       meshing.TileMap
	Deriver     physics.Deriver
	Workers     int
	Logger      *slog.Logger
}

// DefaultOptions returns options built from the process-wide settings: one
// 16^3 chunk and a random seed.
func DefaultOptions() Options {
	backend, err := world.ParseBackend(config.GetNoiseBackend())
	if err != nil {
		backend = world.BackendPerlin
	}
	synth := world.NewSynthesizer()
	return Options{
		ChunkSize:   world.DefaultChunkSize(),
		Grid:        world.ChunkSize{X: 1, Y: 1, Z: 1},
		Backend:     backend,
		Synthesizer: &synth,
		Tiles:       meshing.DefaultTiles(),
		Deriver:     physics.PassThrough{},
		Workers:     config.GetWorkers(),
	}
}

// OptionsFrom applies a resolved config file to the process-wide settings and
// returns matching options.
func OptionsFrom(cfg config.File) (Options, error) {
	backend, err := world.ParseBackend(cfg.Noise)
	if err != nil {
		return Options{}, err
	}
	cfg.Apply()
	opts := DefaultOptions()
	opts.ChunkSize = world.ChunkSize{X: cfg.ChunkSize.X, Y: cfg.ChunkSize.Y, Z: cfg.ChunkSize.Z}
	opts.Grid = world.ChunkSize{X: cfg.Grid.X, Y: cfg.Grid.Y, Z: cfg.Grid.Z}
	opts.Seed = cfg.Seed
	opts.Backend = backend
	return opts, nil
}

// Progress describes the build in flight.
type Progress struct {
	Started  int
	Finished int
	Total    int
	// Fraction is Started/Total, updated as each chunk's pipeline starts.
	Fraction float64
	Building bool
}

// Percent is the display percentage: 0..99 while building, 100 when done.
func (p Progress) Percent() int {
	if !p.Building {
		if p.Total > 0 && p.Finished == p.Total {
			return 100
		}
		return 0
	}
	pct := int(p.Fraction*100 + 0.5)
	return min(max(pct, 0), 99)
}

// BuildStats summarizes a finished build.
type BuildStats struct {
	Seed      int
	Chunks    int
	Voxels    map[world.VoxelType]int
	Faces     int
	Triangles int
	Duration  time.Duration
}

type buildRun struct {
	id     uint64
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// WorldGrid owns a fixed 3D array of chunks and the active noise seed, and
// builds the chunks one at a time in x, y, z scan order. At most one build is
// in flight. The goroutine that calls Pump, Run or Await is the consuming
// goroutine: collision stages and publication happen there.
type WorldGrid struct {
	opts   Options
	log    *slog.Logger
	pool   *pipeline.WorkerPool
	main   *pipeline.MainQueue
	mesher *meshing.Mesher
	rng    *rand.Rand

	completions chan *pipeline.Chunk

	mu        sync.Mutex
	requested int
	noise     *world.NoiseField
	chunks    []*pipeline.Chunk
	build     *buildRun
	builds    uint64
	progress  Progress
	stats     BuildStats
}

// New validates opts and creates an idle world.
func New(opts Options) (*WorldGrid, error) {
	if err := opts.ChunkSize.Validate(); err != nil {
		return nil, err
	}
	if opts.Grid.X < 1 || opts.Grid.Y < 1 || opts.Grid.Z < 1 {
		return nil, fmt.Errorf("grid %dx%dx%d: %w", opts.Grid.X, opts.Grid.Y, opts.Grid.Z, world.ErrInvalidSize)
	}
	if opts.Synthesizer == nil {
		synth := world.NewSynthesizer()
		opts.Synthesizer = &synth
	}
	if opts.Tiles.Tiles == nil {
		opts.Tiles = meshing.DefaultTiles()
	}
	if opts.Deriver == nil {
		opts.Deriver = physics.PassThrough{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	total := opts.Grid.Volume()
	return &WorldGrid{
		opts:        opts,
		log:         logger,
		pool:        pipeline.NewWorkerPool(opts.Workers),
		main:        pipeline.NewMainQueue(64),
		mesher:      meshing.NewMesher(opts.Tiles),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		completions: make(chan *pipeline.Chunk, max(total, 64)),
		requested:   config.ClampSeed(opts.Seed),
	}, nil
}

// ChunkSize returns the voxel size of each chunk
func (w *WorldGrid) ChunkSize() world.ChunkSize {
	return w.opts.ChunkSize
}

// GridSize returns the number of chunks along each axis
func (w *WorldGrid) GridSize() world.ChunkSize {
	return w.opts.Grid
}

// SetSeed records the seed the next build starts from. 0 means a fresh
// random seed for every build.
func (w *WorldGrid) SetSeed(seed int) {
	w.mu.Lock()
	w.requested = config.ClampSeed(seed)
	w.mu.Unlock()
}

// ActiveSeed returns the seed of the current noise field, or 0 before the first build.
func (w *WorldGrid) ActiveSeed() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.noise == nil {
		return 0
	}
	return w.noise.Seed()
}

// Reseed applies a seed immediately and returns the active seed. 0 picks a
// time-derived random seed in [MinSeed, MaxSeed]; any other value is clamped
// and only applied if it differs from the active seed. The seed may only
// change between builds.
func (w *WorldGrid) Reseed(seed int) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.building() {
		return w.activeSeedLocked(), ErrBuildInFlight
	}
	w.reseedLocked(seed)
	return w.noise.Seed(), nil
}

func (w *WorldGrid) activeSeedLocked() int {
	if w.noise == nil {
		return 0
	}
	return w.noise.Seed()
}

func (w *WorldGrid) reseedLocked(seed int) {
	if seed == 0 {
		seed = w.rng.Intn(config.MaxSeed-config.MinSeed+1) + config.MinSeed
		w.noise = world.NewNoiseField(seed, w.opts.Backend)
		return
	}
	seed = config.ClampSeed(seed)
	if w.noise != nil && w.noise.Seed() == seed {
		return
	}
	w.noise = world.NewNoiseField(seed, w.opts.Backend)
}

func (w *WorldGrid) building() bool {
	if w.build == nil {
		return false
	}
	select {
	case <-w.build.done:
		return false
	default:
		return true
	}
}

// Building reports whether a build is in flight
func (w *WorldGrid) Building() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.building()
}

// Start seeds the noise field, allocates the chunk array and launches a
// build. It fails with ErrBuildInFlight if one is already running.
func (w *WorldGrid) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.building() {
		return ErrBuildInFlight
	}

	w.reseedLocked(w.requested)
	for _, c := range w.chunks {
		c.Release()
	}
	w.chunks = w.allocateChunks()
	w.builds++
	ctx, cancel := context.WithCancel(context.Background())
	b := &buildRun{id: w.builds, ctx: ctx, cancel: cancel, done: make(chan struct{})}
	w.build = b
	w.progress = Progress{Total: len(w.chunks), Building: true}
	w.stats = BuildStats{Seed: w.noise.Seed(), Voxels: make(map[world.VoxelType]int)}

	stages := pipeline.Stages{
		Noise:       w.noise,
		Synthesizer: *w.opts.Synthesizer,
		Mesher:      w.mesher,
		Deriver:     w.opts.Deriver,
	}
	go w.run(b, stages, w.chunks)
	return nil
}

func (w *WorldGrid) allocateChunks() []*pipeline.Chunk {
	g := w.opts.Grid
	chunks := make([]*pipeline.Chunk, 0, g.Volume())
	for x := 0; x < g.X; x++ {
		for y := 0; y < g.Y; y++ {
			for z := 0; z < g.Z; z++ {
				chunks = append(chunks, pipeline.NewChunk(world.ChunkCoord{X: x, Y: y, Z: z}, w.opts.ChunkSize))
			}
		}
	}
	return chunks
}

func (w *WorldGrid) run(b *buildRun, stages pipeline.Stages, chunks []*pipeline.Chunk) {
	defer close(b.done)
	defer b.cancel()
	profiling.Reset()
	start := time.Now()
	total := len(chunks)
	w.log.Info("world build started", "build", b.id, "seed", stages.Noise.Seed(), "noise", stages.Noise.Backend(), "chunks", total)

	for i, c := range chunks {
		if b.ctx.Err() != nil {
			b.err = pipeline.ErrCancelled
			break
		}
		p := pipeline.NewChunkPipeline(c, stages, w.pool, w.main)
		p.Start(b.ctx)
		w.mu.Lock()
		w.progress.Started = i + 1
		w.progress.Fraction = float64(i+1) / float64(total)
		w.mu.Unlock()

		if err := p.Wait(); err != nil {
			b.err = err
			break
		}
		w.finishChunk(c)
	}

	w.mu.Lock()
	w.progress.Building = false
	w.stats.Duration = time.Since(start)
	stats := w.stats
	w.mu.Unlock()

	switch {
	case errors.Is(b.err, pipeline.ErrCancelled):
		w.log.Info("world build cancelled", "build", b.id, "completed", stats.Chunks, "chunks", total)
	case b.err != nil:
		w.log.Error("world build failed", "build", b.id, "err", b.err)
	default:
		w.log.Info("world build finished", "build", b.id, "seed", stats.Seed, "chunks", total,
			"faces", stats.Faces, "duration", stats.Duration, "top", profiling.TopN(4))
	}
}

// finishChunk records stats and notifies listeners. It runs after the
// chunk's collision stage, which already published the data.
func (w *WorldGrid) finishChunk(c *pipeline.Chunk) {
	grid, geom := c.Grid(), c.Geometry()
	w.mu.Lock()
	w.progress.Finished++
	w.stats.Chunks++
	if grid != nil {
		for t, n := range grid.Count() {
			w.stats.Voxels[t] += n
		}
	}
	if geom != nil {
		w.stats.Faces += geom.Faces()
		w.stats.Triangles += len(geom.Triangles) / 3
	}
	w.mu.Unlock()

	select {
	case w.completions <- c:
	default:
		w.log.Debug("completion dropped, listener behind", "chunk", c.Name)
	}
	w.log.Debug("chunk ready", "chunk", c.Name)
}

// Cancel aborts the build in flight, if any, and waits for it to stop.
// Chunks completed before the call stay readable.
func (w *WorldGrid) Cancel() {
	w.mu.Lock()
	b := w.build
	w.mu.Unlock()
	if b == nil {
		return
	}
	b.cancel()
	<-b.done
}

// Regenerate cancels any build in flight, releases every chunk, reseeds from
// the requested seed and starts a new build.
func (w *WorldGrid) Regenerate() error {
	w.Cancel()
	w.release()
	return w.Start()
}

func (w *WorldGrid) release() {
	w.mu.Lock()
	chunks := w.chunks
	w.chunks = nil
	w.progress = Progress{}
	w.mu.Unlock()
	for _, c := range chunks {
		c.Release()
	}
	// stale notifications refer to released chunks
	for {
		select {
		case <-w.completions:
		default:
			return
		}
	}
}

// Pump runs queued consuming-goroutine work (collision stages) and returns
// how many jobs ran. Hosts call it once per frame.
func (w *WorldGrid) Pump() int {
	return w.main.Drain()
}

// Await pumps consuming-goroutine work until the current build ends and
// returns its error. A cancelled build returns pipeline.ErrCancelled. If ctx
// ends first the build is cancelled.
func (w *WorldGrid) Await(ctx context.Context) error {
	w.mu.Lock()
	b := w.build
	w.mu.Unlock()
	if b == nil {
		return nil
	}
	w.main.RunUntil(ctx, b.done)
	if ctx.Err() != nil {
		w.Cancel()
		return ctx.Err()
	}
	return b.err
}

// Run starts a build and pumps it to completion on the calling goroutine.
func (w *WorldGrid) Run(ctx context.Context) error {
	if err := w.Start(); err != nil {
		return err
	}
	return w.Await(ctx)
}

// Completions delivers each chunk as it becomes ready. Chunks from a
// cancelled build may still arrive; check Ready before reading.
func (w *WorldGrid) Completions() <-chan *pipeline.Chunk {
	return w.completions
}

// Progress returns the progress of the current or last build
func (w *WorldGrid) Progress() Progress {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.progress
}

// Stats returns statistics for the current or last build
func (w *WorldGrid) Stats() BuildStats {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.stats
	s.Voxels = make(map[world.VoxelType]int, len(w.stats.Voxels))
	for k, v := range w.stats.Voxels {
		s.Voxels[k] = v
	}
	return s
}

func (w *WorldGrid) index(c world.ChunkCoord) (int, bool) {
	g := w.opts.Grid
	if c.X < 0 || c.X >= g.X || c.Y < 0 || c.Y >= g.Y || c.Z < 0 || c.Z >= g.Z {
		return 0, false
	}
	return c.X*g.Y*g.Z + c.Y*g.Z + c.Z, true
}

// Chunk returns the chunk at a chunk coordinate, or nil outside the grid or
// before the first build.
func (w *WorldGrid) Chunk(c world.ChunkCoord) *pipeline.Chunk {
	i, ok := w.index(c)
	if !ok {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if i >= len(w.chunks) {
		return nil
	}
	return w.chunks[i]
}

// Chunks returns every chunk of the current build in scan order
func (w *WorldGrid) Chunks() []*pipeline.Chunk {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*pipeline.Chunk, len(w.chunks))
	copy(out, w.chunks)
	return out
}

// ReadyChunks returns the chunks whose pipelines are done
func (w *WorldGrid) ReadyChunks() []*pipeline.Chunk {
	var out []*pipeline.Chunk
	for _, c := range w.Chunks() {
		if c.Ready() {
			out = append(out, c)
		}
	}
	return out
}

// Placement returns the world transform of a chunk: a translation by coord*chunkSize.
func (w *WorldGrid) Placement(c world.ChunkCoord) mgl32.Mat4 {
	x, y, z := w.opts.ChunkSize.Origin(c)
	return mgl32.Translate3D(float32(x), float32(y), float32(z))
}

// BlockAt returns the voxel at world block coordinates. It reports false
// outside the grid and for chunks that are not ready.
func (w *WorldGrid) BlockAt(x, y, z int) (world.Voxel, bool) {
	s := w.opts.ChunkSize
	coord := world.ChunkCoord{X: floorDiv(x, s.X), Y: floorDiv(y, s.Y), Z: floorDiv(z, s.Z)}
	c := w.Chunk(coord)
	if c == nil {
		return world.Voxel{}, false
	}
	return c.GetBlock(mod(x, s.X), mod(y, s.Y), mod(z, s.Z))
}

// Player-sized box used to probe for a free standing spot.
const (
	spawnHalfWidth = 0.3
	spawnHeight    = 1.8
)

// SpawnPoint returns the feet position of a free player-sized box standing on
// the highest ground of a column, trying the middle column of the grid first and then every other
// column in scan order. It reports false when no column has room.
func (w *WorldGrid) SpawnPoint() (mgl32.Vec3, bool) {
	g, s := w.opts.Grid, w.opts.ChunkSize
	sizeX, top, sizeZ := g.X*s.X, g.Y*s.Y-1, g.Z*s.Z

	if p, ok := w.standOn(sizeX/2, sizeZ/2, top); ok {
		return p, true
	}
	for x := 0; x < sizeX; x++ {
		for z := 0; z < sizeZ; z++ {
			if p, ok := w.standOn(x, z, top); ok {
				return p, true
			}
		}
	}
	return mgl32.Vec3{}, false
}

func (w *WorldGrid) standOn(x, z, top int) (mgl32.Vec3, bool) {
	ground, ok := physics.FindGroundLevel(x, z, top, w)
	if !ok || float32(ground)+spawnHeight > float32(top+1) {
		return mgl32.Vec3{}, false
	}
	feet := mgl32.Vec3{float32(x) + 0.5, float32(ground), float32(z) + 0.5}
	box := physics.AABB{
		Min: feet.Sub(mgl32.Vec3{spawnHalfWidth, 0, spawnHalfWidth}),
		Max: feet.Add(mgl32.Vec3{spawnHalfWidth, spawnHeight, spawnHalfWidth}),
	}
	if physics.Collides(box, w) {
		return mgl32.Vec3{}, false
	}
	return feet, true
}

// Close cancels any build in flight and stops the worker pool.
func (w *WorldGrid) Close() {
	w.Cancel()
	w.pool.Shutdown()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func mod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}
