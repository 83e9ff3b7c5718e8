package main

import (
	"fmt"
	"log/slog"
	"time"

	"voxelterrain/internal/config"
	"voxelterrain/internal/game"
	"voxelterrain/internal/graphics"
	"voxelterrain/internal/input"
	"voxelterrain/internal/physics"
	"voxelterrain/internal/profiling"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	orbitSpeed    = 90.0 // degrees per second for key orbit
	dragSpeed     = 0.3  // degrees per pixel
	zoomPerSecond = 1.8
)

// ViewLoop owns the window and runs on the locked main thread. It is the
// consuming goroutine for the world: collision stages and GPU uploads happen
// here, one frame at a time.
type ViewLoop struct {
	window   *glfw.Window
	world    *game.WorldGrid
	renderer *graphics.Renderer
	camera   *graphics.Camera
	input    *input.InputManager
	log      *slog.Logger
	limiter  frameLimiter

	dragging     bool
	lastX, lastY float64
	title        string
	lastTime     time.Time
	wasBuilding  bool
}

func NewViewLoop(window *glfw.Window, w *game.WorldGrid, log *slog.Logger) (*ViewLoop, error) {
	r, err := graphics.NewRenderer()
	if err != nil {
		return nil, err
	}
	width, height := window.GetFramebufferSize()
	gl.Viewport(0, 0, int32(width), int32(height))

	cam := graphics.NewCamera(width, height, config.GetFOV())
	g, c := w.GridSize(), w.ChunkSize()
	cam.Frame(mgl32.Vec3{float32(g.X * c.X), float32(g.Y * c.Y), float32(g.Z * c.Z)})

	l := &ViewLoop{
		window:   window,
		world:    w,
		renderer: r,
		camera:   cam,
		input:    input.NewInputManager(),
		log:      log,
		lastTime: time.Now(),
	}
	l.setupCallbacks()
	return l, nil
}

func (l *ViewLoop) setupCallbacks() {
	l.input.Attach(l.window)

	l.window.SetCursorPosCallback(func(w *glfw.Window, xpos, ypos float64) {
		if l.dragging {
			l.camera.Orbit(float32(xpos-l.lastX)*dragSpeed, float32(ypos-l.lastY)*dragSpeed)
		}
		l.lastX, l.lastY = xpos, ypos
	})

	l.window.SetScrollCallback(func(w *glfw.Window, xoff, yoff float64) {
		l.camera.Zoom(float32(1 - 0.1*yoff))
	})

	l.window.SetFramebufferSizeCallback(func(w *glfw.Window, fbWidth, fbHeight int) {
		gl.Viewport(0, 0, int32(fbWidth), int32(fbHeight))
		if fbHeight > 0 {
			l.camera.AspectRatio = float32(fbWidth) / float32(fbHeight)
		}
	})
}

// Run loops until the window is closed
func (l *ViewLoop) Run() {
	for !l.window.ShouldClose() {
		l.tick()
	}
}

func (l *ViewLoop) tick() {
	now := time.Now()
	dt := float32(now.Sub(l.lastTime).Seconds())
	l.lastTime = now

	glfw.PollEvents()
	l.handleInput(dt)

	l.world.Pump()
	l.uploadCompleted()

	l.renderer.Render(l.camera)
	l.updateTitle()
	l.window.SwapBuffers()
	l.input.PostUpdate()

	building := l.world.Building()
	if l.wasBuilding && !building {
		l.log.Info("build settled", "meshes", l.renderer.Len(), "top", profiling.TopN(3))
	}
	l.wasBuilding = building
	l.limiter.wait(!building && !l.dragging)
}

func (l *ViewLoop) handleInput(dt float32) {
	im := l.input
	if im.JustPressed(input.ActionQuit) {
		l.window.SetShouldClose(true)
		return
	}
	if im.JustPressed(input.ActionRegenerate) {
		l.regenerate(false)
	}
	if im.JustPressed(input.ActionNewSeed) {
		l.regenerate(true)
	}
	if im.JustPressed(input.ActionCancel) {
		l.world.Cancel()
	}

	l.dragging = im.IsActive(input.ActionDrag)

	var yaw, pitch float32
	if im.IsActive(input.ActionOrbitLeft) {
		yaw -= orbitSpeed * dt
	}
	if im.IsActive(input.ActionOrbitRight) {
		yaw += orbitSpeed * dt
	}
	if im.IsActive(input.ActionOrbitUp) {
		pitch += orbitSpeed * dt
	}
	if im.IsActive(input.ActionOrbitDown) {
		pitch -= orbitSpeed * dt
	}
	if yaw != 0 || pitch != 0 {
		l.camera.Orbit(yaw, pitch)
	}
	if im.IsActive(input.ActionZoomIn) {
		l.camera.Zoom(1 / (1 + zoomPerSecond*dt))
	}
	if im.IsActive(input.ActionZoomOut) {
		l.camera.Zoom(1 + zoomPerSecond*dt)
	}
}

// regenerate drops every uploaded mesh and rebuilds. With fresh set, the
// next build picks a new random seed; otherwise it keeps the configured one.
func (l *ViewLoop) regenerate(fresh bool) {
	if fresh {
		l.world.SetSeed(0)
	}
	l.renderer.Clear()
	if err := l.world.Regenerate(); err != nil {
		l.log.Error("regenerate", "error", err)
	}
}

// uploadCompleted moves finished chunks to the GPU. Notifications can
// outlive a regenerate, so chunks that are no longer ready are skipped.
func (l *ViewLoop) uploadCompleted() {
	for {
		select {
		case c := <-l.world.Completions():
			if !c.Ready() {
				continue
			}
			l.renderer.Upload(c.Coord, c.Geometry(), c.Placement())
		default:
			return
		}
	}
}

func (l *ViewLoop) updateTitle() {
	p := l.world.Progress()
	var status string
	switch {
	case p.Building:
		status = fmt.Sprintf("building %d%%", p.Percent())
	case p.Total > 0:
		status = fmt.Sprintf("%d/%d chunks", p.Finished, p.Total)
	default:
		status = "idle"
	}
	title := fmt.Sprintf("voxelterrain | seed %d | %s | %s | R regenerate, N new seed, C cancel",
		l.world.ActiveSeed(), status, l.lookingAt())
	if title != l.title {
		l.window.SetTitle(title)
		l.title = title
	}
}

// lookingAt names the first voxel on the line from the camera to its orbit target.
func (l *ViewLoop) lookingAt() string {
	eye := l.camera.Position()
	hit := physics.Raycast(eye, l.camera.Target.Sub(eye), physics.MinReachDistance, l.camera.Distance*2, l.world)
	if !hit.Hit {
		return "sky"
	}
	p := hit.HitPosition
	v, _ := l.world.BlockAt(p[0], p[1], p[2])
	return fmt.Sprintf("%s at %d,%d,%d", v.Type, p[0], p[1], p[2])
}

// Close releases GPU resources
func (l *ViewLoop) Close() {
	l.renderer.Delete()
}
