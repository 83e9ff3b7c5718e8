package graphics

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits a target point; the viewer points it at the centre of the grid.
type Camera struct {
	AspectRatio float32
	FOV         float32
	NearPlane   float32
	FarPlane    float32

	Target   mgl32.Vec3
	Distance float32
	Yaw      float32 // degrees around +Y
	Pitch    float32 // degrees above the horizon
}

func NewCamera(width, height int, fov float32) *Camera {
	return &Camera{
		AspectRatio: float32(width) / float32(max(height, 1)),
		FOV:         fov,
		NearPlane:   0.1,
		FarPlane:    1000.0,
		Distance:    48,
		Yaw:         45,
		Pitch:       35,
	}
}

// Frame points the camera at the centre of a box and backs off far enough to see it.
func (c *Camera) Frame(size mgl32.Vec3) {
	c.Target = size.Mul(0.5)
	c.Distance = max(size.Len()*1.1, 8)
	c.FarPlane = max(c.Distance*4, 1000)
}

// Orbit rotates the camera; pitch stays short of straight up or down.
func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw = float32(math.Mod(float64(c.Yaw+dYaw), 360))
	c.Pitch = min(max(c.Pitch+dPitch, -89), 89)
}

// Zoom scales the orbit distance by factor
func (c *Camera) Zoom(factor float32) {
	c.Distance = min(max(c.Distance*factor, 2), c.FarPlane/2)
}

// Position returns the eye position in world space
func (c *Camera) Position() mgl32.Vec3 {
	yaw := mgl32.DegToRad(c.Yaw)
	pitch := mgl32.DegToRad(c.Pitch)
	offset := mgl32.Vec3{
		float32(math.Cos(float64(pitch)) * math.Cos(float64(yaw))),
		float32(math.Sin(float64(pitch))),
		float32(math.Cos(float64(pitch)) * math.Sin(float64(yaw))),
	}
	return c.Target.Add(offset.Mul(c.Distance))
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.AspectRatio, c.NearPlane, c.FarPlane)
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}
