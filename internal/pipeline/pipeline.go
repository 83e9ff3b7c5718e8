package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"voxelterrain/internal/meshing"
	"voxelterrain/internal/physics"
	"voxelterrain/internal/profiling"
	"voxelterrain/internal/world"
)

// State is a chunk pipeline's position in its stage sequence.
type State int32

const (
	StateIdle State = iota
	StateSynthesizingTerrain
	StateBuildingMesh
	StateBuildingCollision
	StateDone
	StateCancelled
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSynthesizingTerrain:
		return "synthesizing-terrain"
	case StateBuildingMesh:
		return "building-mesh"
	case StateBuildingCollision:
		return "building-collision"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("state(%d)", int32(s))
}

// Terminal reports whether no further transitions can happen
func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled || s == StateFailed
}

// Stages bundles the collaborators a chunk pipeline runs. All of them are
// read-only during a build and shared between pipelines.
type Stages struct {
	Noise       *world.NoiseField
	Synthesizer world.Synthesizer
	Mesher      *meshing.Mesher
	Deriver     physics.Deriver
}

// ChunkPipeline drives one chunk through terrain synthesis, meshing and
// collision derivation. Synthesis and meshing run on the worker pool; the
// collision stage is posted to the main queue so it runs on the goroutine
// that drains it.
type ChunkPipeline struct {
	chunk  *Chunk
	stages Stages
	pool   *WorkerPool
	main   *MainQueue

	state atomic.Int32

	mu        sync.RWMutex
	terrain   *Task[*world.VoxelGrid]
	mesh      *Task[*meshing.Geometry]
	collision *Task[*physics.Shape]

	done     chan struct{} // closed only when the chunk reaches StateDone
	finished chan struct{} // closed on any terminal state
	err      error
	started  atomic.Bool
}

// NewChunkPipeline prepares a pipeline for chunk. Nothing runs until Start.
func NewChunkPipeline(chunk *Chunk, stages Stages, pool *WorkerPool, main *MainQueue) *ChunkPipeline {
	if stages.Deriver == nil {
		stages.Deriver = physics.PassThrough{}
	}
	return &ChunkPipeline{
		chunk:    chunk,
		stages:   stages,
		pool:     pool,
		main:     main,
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}
}

// Chunk returns the chunk this pipeline populates
func (p *ChunkPipeline) Chunk() *Chunk {
	return p.chunk
}

// State returns the current state
func (p *ChunkPipeline) State() State {
	return State(p.state.Load())
}

// Done is the completion signal. It is closed when the chunk's geometry and
// collision are ready to read and never closed for cancelled or failed runs.
func (p *ChunkPipeline) Done() <-chan struct{} {
	return p.done
}

// Start launches the pipeline. Calling it more than once has no effect.
func (p *ChunkPipeline) Start(ctx context.Context) {
	if !p.started.CompareAndSwap(false, true) {
		return
	}
	go func() {
		err := p.run(ctx)
		p.err = err
		close(p.finished)
	}()
}

// Wait blocks until the pipeline reaches a terminal state and returns nil
// for Done, ErrCancelled for a cancelled run, or the failing stage's error.
func (p *ChunkPipeline) Wait() error {
	<-p.finished
	return p.err
}

// Run is Start followed by Wait.
func (p *ChunkPipeline) Run(ctx context.Context) error {
	p.Start(ctx)
	return p.Wait()
}

// TerrainResult returns the synthesized grid once that stage completed, else nil.
func (p *ChunkPipeline) TerrainResult() *world.VoxelGrid {
	p.mu.RLock()
	t := p.terrain
	p.mu.RUnlock()
	if t == nil {
		return nil
	}
	return t.Result()
}

// MeshResult returns the built geometry once that stage completed, else nil.
func (p *ChunkPipeline) MeshResult() *meshing.Geometry {
	p.mu.RLock()
	t := p.mesh
	p.mu.RUnlock()
	if t == nil {
		return nil
	}
	return t.Result()
}

// CollisionResult returns the collision shape once that stage completed, else nil.
func (p *ChunkPipeline) CollisionResult() *physics.Shape {
	p.mu.RLock()
	t := p.collision
	p.mu.RUnlock()
	if t == nil {
		return nil
	}
	return t.Result()
}

func (p *ChunkPipeline) run(ctx context.Context) error {
	defer profiling.Track("pipeline.Chunk")()
	coord, size := p.chunk.Coord, p.chunk.Size

	if err := p.enter(ctx, StateSynthesizingTerrain); err != nil {
		return err
	}
	terrain := Submit(ctx, p.pool, func() (*world.VoxelGrid, error) {
		return p.stages.Synthesizer.Synthesize(p.stages.Noise, coord, size), nil
	})
	p.setTask(func() { p.terrain = terrain })
	grid, err := terrain.Wait(ctx)
	if err != nil {
		return p.fail(err)
	}

	if err := p.enter(ctx, StateBuildingMesh); err != nil {
		return err
	}
	mesh := Submit(ctx, p.pool, func() (*meshing.Geometry, error) {
		return p.stages.Mesher.Build(grid), nil
	})
	p.setTask(func() { p.mesh = mesh })
	geom, err := mesh.Wait(ctx)
	if err != nil {
		return p.fail(err)
	}

	if err := p.enter(ctx, StateBuildingCollision); err != nil {
		return err
	}
	collision := NewTask[*physics.Shape]()
	p.setTask(func() { p.collision = collision })
	// claim is won either by the job (it runs) or by a cancelled waiter (it never will)
	var claim atomic.Int32
	err = p.main.Post(ctx, func() {
		if !claim.CompareAndSwap(claimPending, claimRunning) || ctx.Err() != nil {
			collision.Complete(nil, ErrCancelled)
			return
		}
		defer func() {
			if r := recover(); r != nil {
				collision.Complete(nil, fmt.Errorf("%w: %v", ErrStagePanic, r))
			}
		}()
		shape := p.stages.Deriver.Derive(geom)
		if !p.chunk.publish(ctx, grid, geom, shape) {
			collision.Complete(nil, ErrCancelled)
			return
		}
		p.state.Store(int32(StateDone))
		close(p.done)
		collision.Complete(shape, nil)
	})
	if err != nil {
		return p.fail(err)
	}

	select {
	case <-collision.Done():
	case <-ctx.Done():
		if claim.CompareAndSwap(claimPending, claimAbandoned) {
			return p.fail(ErrCancelled)
		}
		// the job is already running on the consuming goroutine; its outcome stands
		<-collision.Done()
	}
	if err := collision.Err(); err != nil {
		return p.fail(err)
	}
	return nil
}

const (
	claimPending int32 = iota
	claimRunning
	claimAbandoned
)

// enter moves to the next stage, checking for cancellation at the boundary.
func (p *ChunkPipeline) enter(ctx context.Context, next State) error {
	if ctx.Err() != nil {
		p.state.Store(int32(StateCancelled))
		return ErrCancelled
	}
	p.state.Store(int32(next))
	return nil
}

func (p *ChunkPipeline) fail(err error) error {
	stage := p.State()
	if errors.Is(err, ErrCancelled) {
		p.state.Store(int32(StateCancelled))
		return ErrCancelled
	}
	p.state.Store(int32(StateFailed))
	return fmt.Errorf("%s: %s: %w", p.chunk.Name, stage, err)
}

func (p *ChunkPipeline) setTask(fn func()) {
	p.mu.Lock()
	fn()
	p.mu.Unlock()
}
