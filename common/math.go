package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// The types below mirror native layouts exactly and convert to mgl32 for
// anything beyond storage.

type Vector2f struct {
	X, Y float32
}

type Vector3f struct {
	X, Y, Z float32
}

func (v Vector3f) Mgl() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

func Vector3fFromMgl(v mgl32.Vec3) Vector3f {
	return Vector3f{X: v[0], Y: v[1], Z: v[2]}
}

type Quaternionf struct {
	X, Y, Z, W float32
}

func (q Quaternionf) Mgl() mgl32.Quat {
	return mgl32.Quat{W: q.W, V: mgl32.Vec3{q.X, q.Y, q.Z}}
}

func QuaternionfFromMgl(q mgl32.Quat) Quaternionf {
	return Quaternionf{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}

type Posef struct {
	Orientation Quaternionf
	Position    Vector3f
}

// IdentityPose is the pose with no rotation at the origin. The zero Posef is
// not a valid pose because its quaternion has zero length.
func IdentityPose() Posef {
	return Posef{Orientation: Quaternionf{W: 1}}
}

// Matrix returns the pose as a transform from pose space to base space.
func (p Posef) Matrix() mgl32.Mat4 {
	return mgl32.Translate3D(p.Position.X, p.Position.Y, p.Position.Z).
		Mul4(p.Orientation.Mgl().Normalize().Mat4())
}

// ViewMatrix returns the inverse of Matrix, suitable as a camera view matrix.
func (p Posef) ViewMatrix() mgl32.Mat4 {
	return p.Matrix().Inv()
}

// Fovf holds the four half-angles of a view frustum in radians. Left and Down
// are normally negative.
type Fovf struct {
	AngleLeft  float32
	AngleRight float32
	AngleUp    float32
	AngleDown  float32
}

// Projection builds an asymmetric perspective projection for the view.
func (f Fovf) Projection(near, far float32) mgl32.Mat4 {
	left := near * float32(math.Tan(float64(f.AngleLeft)))
	right := near * float32(math.Tan(float64(f.AngleRight)))
	down := near * float32(math.Tan(float64(f.AngleDown)))
	up := near * float32(math.Tan(float64(f.AngleUp)))
	return mgl32.Frustum(left, right, down, up, near, far)
}

type Offset2Di struct {
	X, Y int32
}

type Extent2Di struct {
	Width, Height int32
}

type Extent2Df struct {
	Width, Height float32
}

type Rect2Di struct {
	Offset Offset2Di
	Extent Extent2Di
}
