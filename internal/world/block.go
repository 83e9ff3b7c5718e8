package world

// VoxelType is stored as a single byte; the ordering carries no meaning.
type VoxelType byte

const (
	VoxelEmpty VoxelType = iota
	VoxelGrass
	VoxelDirt
	VoxelStone
)

// String returns a readable name for the voxel type
func (t VoxelType) String() string {
	switch t {
	case VoxelEmpty:
		return "empty"
	case VoxelGrass:
		return "grass"
	case VoxelDirt:
		return "dirt"
	case VoxelStone:
		return "stone"
	default:
		return "unknown"
	}
}

// Voxel is a single typed cell of a chunk. X, Y and Z are world block coordinates.
type Voxel struct {
	X, Y, Z int
	Type    VoxelType
	// Solid voxels take part in collision and occlude neighbouring faces.
	Solid bool
	// Visible is tracked separately from Solid so a voxel can be structurally
	// solid but left out of rendering.
	Visible bool
}

func newVoxel(x, y, z int, t VoxelType) Voxel {
	filled := t != VoxelEmpty
	return Voxel{X: x, Y: y, Z: z, Type: t, Solid: filled, Visible: filled}
}

// carve turns the voxel into empty space in place
func (v *Voxel) carve() {
	v.Type = VoxelEmpty
	v.Solid = false
	v.Visible = false
}

// Face identifies one of the six faces of a voxel
type Face int

const (
	FaceTop Face = iota
	FaceBottom
	FaceLeft
	FaceRight
	FaceFront
	FaceBack
)

// Faces lists all faces in emission order.
var Faces = [6]Face{FaceTop, FaceBottom, FaceLeft, FaceRight, FaceFront, FaceBack}

// Normal returns the unit offset towards the neighbour sharing the face.
func (f Face) Normal() (dx, dy, dz int) {
	switch f {
	case FaceTop:
		return 0, 1, 0
	case FaceBottom:
		return 0, -1, 0
	case FaceLeft:
		return -1, 0, 0
	case FaceRight:
		return 1, 0, 0
	case FaceFront:
		return 0, 0, -1
	case FaceBack:
		return 0, 0, 1
	}
	return 0, 0, 0
}

func (f Face) String() string {
	switch f {
	case FaceTop:
		return "top"
	case FaceBottom:
		return "bottom"
	case FaceLeft:
		return "left"
	case FaceRight:
		return "right"
	case FaceFront:
		return "front"
	case FaceBack:
		return "back"
	}
	return "unknown"
}
