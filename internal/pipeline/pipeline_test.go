package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"voxelterrain/internal/meshing"
	"voxelterrain/internal/physics"
	"voxelterrain/internal/world"
)

func testStages(seed int) Stages {
	return Stages{
		Noise:       world.NewNoiseField(seed, world.BackendPerlin),
		Synthesizer: world.Synthesizer{SeaLevel: 16, Caves: true, DirtPatches: true},
		Mesher:      meshing.NewMesher(meshing.DefaultTiles()),
	}
}

// pump drains the main queue until the pipeline reaches a terminal state.
func pump(t *testing.T, p *ChunkPipeline, q *MainQueue) error {
	t.Helper()
	finished := make(chan error, 1)
	go func() { finished <- p.Wait() }()
	deadline := time.After(10 * time.Second)
	for {
		select {
		case err := <-finished:
			q.Drain()
			return err
		case <-deadline:
			t.Fatalf("pipeline stuck in %s", p.State())
			return nil
		default:
			q.Drain()
			time.Sleep(time.Millisecond)
		}
	}
}

func TestPipelineRunsToDone(t *testing.T) {
	pool := NewWorkerPool(2)
	defer pool.Shutdown()
	q := NewMainQueue(4)
	chunk := NewChunk(world.ChunkCoord{X: 1, Y: 0, Z: 2}, world.DefaultChunkSize())
	p := NewChunkPipeline(chunk, testStages(99), pool, q)

	if p.State() != StateIdle {
		t.Fatalf("new pipeline in %s", p.State())
	}
	if chunk.Ready() || p.TerrainResult() != nil || p.MeshResult() != nil {
		t.Fatal("results visible before start")
	}
	p.Start(context.Background())
	if err := pump(t, p, q); err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}

	if p.State() != StateDone {
		t.Fatalf("state = %s, want done", p.State())
	}
	select {
	case <-p.Done():
	default:
		t.Fatal("Done not closed")
	}
	if !chunk.Ready() || chunk.Grid() == nil || chunk.Geometry() == nil || chunk.Collision() == nil {
		t.Fatal("chunk not published")
	}
	if p.TerrainResult() != chunk.Grid() || p.MeshResult() != chunk.Geometry() || p.CollisionResult() != chunk.Collision() {
		t.Fatal("stage results differ from published chunk data")
	}
	if chunk.Collision().TriangleCount()*3 != len(chunk.Geometry().Triangles) {
		t.Fatal("collision does not mirror geometry")
	}
	if chunk.Name != "Chunk (1, 0, 2)" {
		t.Fatalf("name = %q", chunk.Name)
	}
	if v, ok := chunk.GetBlock(0, 0, 0); !ok || v.Type != world.VoxelStone {
		t.Fatalf("floor voxel = %+v, %v", v, ok)
	}
}

func TestPipelineCancelledBeforeStart(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Shutdown()
	q := NewMainQueue(4)
	chunk := NewChunk(world.ChunkCoord{}, world.DefaultChunkSize())
	p := NewChunkPipeline(chunk, testStages(1), pool, q)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Run(ctx); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Run = %v, want ErrCancelled", err)
	}
	if p.State() != StateCancelled {
		t.Fatalf("state = %s", p.State())
	}
	select {
	case <-p.Done():
		t.Fatal("Done closed for a cancelled run")
	default:
	}
	if chunk.Ready() {
		t.Fatal("cancelled chunk reads as ready")
	}
}

func TestPipelineCancelledAtCollision(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Shutdown()
	q := NewMainQueue(4)
	chunk := NewChunk(world.ChunkCoord{}, world.DefaultChunkSize())
	p := NewChunkPipeline(chunk, testStages(2), pool, q)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	// nobody drains the queue, so the run parks on the collision stage
	deadline := time.Now().Add(10 * time.Second)
	for q.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatalf("collision stage never posted; state %s", p.State())
		}
		time.Sleep(time.Millisecond)
	}
	if p.State() != StateBuildingCollision {
		t.Fatalf("state = %s", p.State())
	}
	if p.TerrainResult() == nil || p.MeshResult() == nil {
		t.Fatal("earlier stage results should be readable")
	}
	cancel()
	if err := p.Wait(); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Wait = %v", err)
	}
	// the stale job runs later and must not publish
	q.Drain()
	if chunk.Ready() || p.State() != StateCancelled {
		t.Fatalf("stale collision job published; ready=%v state=%s", chunk.Ready(), p.State())
	}
}

func TestPipelineReleasedChunkNotPublished(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Shutdown()
	q := NewMainQueue(4)
	chunk := NewChunk(world.ChunkCoord{}, world.ChunkSize{X: 4, Y: 4, Z: 4})
	p := NewChunkPipeline(chunk, testStages(3), pool, q)

	p.Start(context.Background())
	for q.Len() == 0 {
		time.Sleep(time.Millisecond)
	}
	chunk.Release()
	q.Drain()
	if err := p.Wait(); !errors.Is(err, ErrCancelled) {
		t.Fatalf("Wait = %v", err)
	}
	if chunk.Ready() {
		t.Fatal("released chunk became ready")
	}
}

// gateDeriver blocks in Derive until release is closed.
type gateDeriver struct {
	entered chan struct{}
	release chan struct{}
}

func newGateDeriver() *gateDeriver {
	return &gateDeriver{entered: make(chan struct{}), release: make(chan struct{})}
}

func (d *gateDeriver) Derive(geom *meshing.Geometry) *physics.Shape {
	close(d.entered)
	<-d.release
	return physics.PassThrough{}.Derive(geom)
}

func TestPipelineCancelledDuringCollisionJob(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Shutdown()
	q := NewMainQueue(4)
	stages := testStages(5)
	gate := newGateDeriver()
	stages.Deriver = gate
	chunk := NewChunk(world.ChunkCoord{}, world.ChunkSize{X: 4, Y: 4, Z: 4})
	p := NewChunkPipeline(chunk, stages, pool, q)

	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)
	go q.RunUntil(context.Background(), p.finished)

	select {
	case <-gate.entered:
	case <-time.After(10 * time.Second):
		t.Fatalf("collision job never ran; state %s", p.State())
	}
	cancel()

	waited := make(chan error, 1)
	go func() { waited <- p.Wait() }()
	select {
	case err := <-waited:
		t.Fatalf("Wait returned %v while the collision job was still running", err)
	case <-time.After(50 * time.Millisecond):
	}

	close(gate.release)
	if err := <-waited; !errors.Is(err, ErrCancelled) {
		t.Fatalf("Wait = %v, want ErrCancelled", err)
	}
	if chunk.Ready() || p.State() != StateCancelled {
		t.Fatalf("cancelled job published; ready=%v state=%s", chunk.Ready(), p.State())
	}
}

type panicDeriver struct{}

func (panicDeriver) Derive(*meshing.Geometry) *physics.Shape { panic("no collision") }

func TestPipelineFailedStage(t *testing.T) {
	pool := NewWorkerPool(1)
	defer pool.Shutdown()
	q := NewMainQueue(4)
	stages := testStages(4)
	stages.Deriver = panicDeriver{}
	chunk := NewChunk(world.ChunkCoord{}, world.ChunkSize{X: 2, Y: 2, Z: 2})
	p := NewChunkPipeline(chunk, stages, pool, q)

	p.Start(context.Background())
	err := pump(t, p, q)
	if !errors.Is(err, ErrStagePanic) {
		t.Fatalf("err = %v, want ErrStagePanic", err)
	}
	if p.State() != StateFailed || chunk.Ready() {
		t.Fatalf("state = %s, ready = %v", p.State(), chunk.Ready())
	}
}

func TestStateTerminal(t *testing.T) {
	for _, s := range []State{StateDone, StateCancelled, StateFailed} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []State{StateIdle, StateSynthesizingTerrain, StateBuildingMesh, StateBuildingCollision} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}
