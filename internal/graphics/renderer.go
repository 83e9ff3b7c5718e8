package graphics

import (
	"voxelterrain/internal/meshing"
	"voxelterrain/internal/world"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	WinWidth  = 900
	WinHeight = 600

	tileSheetPx = 16
	// position (3) + uv (2)
	floatsPerVertex = 5
)

const chunkVertexShader = `#version 410 core
layout(location = 0) in vec3 aPos;
layout(location = 1) in vec2 aUV;
uniform mat4 proj;
uniform mat4 view;
uniform mat4 model;
out vec2 vUV;
out vec3 vWorld;
void main() {
	vec4 world = model * vec4(aPos, 1.0);
	vWorld = world.xyz;
	vUV = aUV;
	gl_Position = proj * view * world;
}`

const chunkFragmentShader = `#version 410 core
in vec2 vUV;
in vec3 vWorld;
uniform sampler2D tiles;
uniform vec3 lightDir;
out vec4 fragColor;
void main() {
	vec3 n = normalize(cross(dFdx(vWorld), dFdy(vWorld)));
	float shade = 0.55 + 0.45 * max(dot(n, normalize(-lightDir)), 0.0);
	fragColor = vec4(texture(tiles, vUV).rgb * shade, 1.0);
}`

// ChunkMesh is one chunk's geometry on the GPU.
type ChunkMesh struct {
	vao, vbo, ebo uint32
	count         int32
	model         mgl32.Mat4
}

// NewChunkMesh uploads geometry. Vertices and UVs are interleaved into one buffer.
func NewChunkMesh(geom *meshing.Geometry, model mgl32.Mat4) *ChunkMesh {
	data := make([]float32, 0, len(geom.Vertices)*floatsPerVertex)
	for i, v := range geom.Vertices {
		uv := geom.UV[i]
		data = append(data, v.X(), v.Y(), v.Z(), uv.X(), uv.Y())
	}

	m := &ChunkMesh{count: int32(len(geom.Triangles)), model: model}
	gl.GenVertexArrays(1, &m.vao)
	gl.BindVertexArray(m.vao)

	gl.GenBuffers(1, &m.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, m.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), gl.STATIC_DRAW)

	gl.GenBuffers(1, &m.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, m.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(geom.Triangles)*4, gl.Ptr(geom.Triangles), gl.STATIC_DRAW)

	stride := int32(floatsPerVertex * 4)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))

	gl.BindVertexArray(0)
	return m
}

// Delete frees the GPU buffers
func (m *ChunkMesh) Delete() {
	gl.DeleteBuffers(1, &m.vbo)
	gl.DeleteBuffers(1, &m.ebo)
	gl.DeleteVertexArrays(1, &m.vao)
}

// Renderer draws every uploaded chunk with the shared tile sheet.
// All methods must run on the goroutine owning the GL context.
type Renderer struct {
	shader   *Shader
	texture  uint32
	meshes   map[world.ChunkCoord]*ChunkMesh
	lightDir mgl32.Vec3
}

func NewRenderer() (*Renderer, error) {
	shader, err := NewShader(chunkVertexShader, chunkFragmentShader)
	if err != nil {
		return nil, err
	}
	gl.Enable(gl.DEPTH_TEST)
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(gl.BACK)
	gl.FrontFace(gl.CCW)

	return &Renderer{
		shader:   shader,
		texture:  UploadTexture(meshing.TileSheet(tileSheetPx)),
		meshes:   make(map[world.ChunkCoord]*ChunkMesh),
		lightDir: mgl32.Vec3{-0.4, -1, -0.3},
	}, nil
}

// Upload replaces the mesh for a chunk coordinate. Empty geometry just removes it.
func (r *Renderer) Upload(coord world.ChunkCoord, geom *meshing.Geometry, model mgl32.Mat4) {
	r.Remove(coord)
	if geom.Empty() {
		return
	}
	r.meshes[coord] = NewChunkMesh(geom, model)
}

// Remove drops one chunk's mesh
func (r *Renderer) Remove(coord world.ChunkCoord) {
	if m, ok := r.meshes[coord]; ok {
		m.Delete()
		delete(r.meshes, coord)
	}
}

// Clear drops every mesh
func (r *Renderer) Clear() {
	for coord := range r.meshes {
		r.Remove(coord)
	}
}

// Len returns the number of uploaded chunk meshes
func (r *Renderer) Len() int {
	return len(r.meshes)
}

// Render draws all chunk meshes from the camera's point of view
func (r *Renderer) Render(cam *Camera) {
	gl.ClearColor(0.53, 0.72, 0.92, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.shader.Use()
	r.shader.SetMatrix4("proj", cam.GetProjectionMatrix())
	r.shader.SetMatrix4("view", cam.GetViewMatrix())
	r.shader.SetVector3("lightDir", r.lightDir)
	r.shader.SetInt("tiles", 0)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.texture)

	for _, m := range r.meshes {
		r.shader.SetMatrix4("model", m.model)
		gl.BindVertexArray(m.vao)
		gl.DrawElements(gl.TRIANGLES, m.count, gl.UNSIGNED_INT, gl.PtrOffset(0))
	}
	gl.BindVertexArray(0)
}

// Delete frees everything the renderer owns
func (r *Renderer) Delete() {
	r.Clear()
	gl.DeleteTextures(1, &r.texture)
	r.shader.Delete()
}
