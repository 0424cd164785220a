// Package frame provides the rigid transform between a surface's local
// coordinate system and the global system frame.
package frame

import (
	"github.com/opticore/opticore/pkg/core"
	"github.com/opticore/opticore/pkg/ray"
)

// Frame is a rigid transform: a rotation (XYZ Euler angles, radians) followed
// by a translation (mm), both expressed in global coordinates. Each surface
// owns exactly one Frame.
type Frame struct {
	X, Y, Z    float64 // translation
	RX, RY, RZ float64 // rotation angles

	rot core.Mat3 // local -> global
	inv core.Mat3 // global -> local
}

// New creates a frame at (x,y,z) with the given rotation angles.
func New(x, y, z, rx, ry, rz float64) *Frame {
	f := &Frame{X: x, Y: y, Z: z, RX: rx, RY: ry, RZ: rz}
	f.rebuild()
	return f
}

// Axial creates an unrotated frame on the optical axis at z.
func Axial(z float64) *Frame {
	return New(0, 0, z, 0, 0, 0)
}

func (f *Frame) rebuild() {
	f.rot = core.RotationXYZ(f.RX, f.RY, f.RZ)
	f.inv = f.rot.Transpose()
}

// Translation returns the frame origin in global coordinates.
func (f *Frame) Translation() core.Vec3 {
	return core.Vec3{X: f.X, Y: f.Y, Z: f.Z}
}

// PointToLocal maps a global point into the local frame.
func (f *Frame) PointToLocal(p core.Vec3) core.Vec3 {
	return f.inv.Apply(p.Subtract(f.Translation()))
}

// PointToGlobal maps a local point into the global frame.
func (f *Frame) PointToGlobal(p core.Vec3) core.Vec3 {
	return f.rot.Apply(p).Add(f.Translation())
}

// DirToLocal maps a global direction into the local frame.
func (f *Frame) DirToLocal(d core.Vec3) core.Vec3 {
	return f.inv.Apply(d)
}

// DirToGlobal maps a local direction into the global frame.
func (f *Frame) DirToGlobal(d core.Vec3) core.Vec3 {
	return f.rot.Apply(d)
}

// BatchToLocal rewrites every ray's position and direction in the local
// frame. Dead rays are transformed too so their parked state stays
// consistent with the rest of the batch.
func (f *Frame) BatchToLocal(b *ray.Batch) {
	for i := 0; i < b.Len(); i++ {
		b.SetPosition(i, f.PointToLocal(b.Position(i)))
		b.SetDirection(i, f.DirToLocal(b.Direction(i)))
	}
}

// BatchToGlobal rewrites every ray's position and direction back in the
// global frame.
func (f *Frame) BatchToGlobal(b *ray.Batch) {
	for i := 0; i < b.Len(); i++ {
		b.SetPosition(i, f.PointToGlobal(b.Position(i)))
		b.SetDirection(i, f.DirToGlobal(b.Direction(i)))
	}
}

// Displace runs fn with the frame temporarily shifted by offset (global
// coordinates) and restores the original position on every exit path,
// including when fn returns an error or panics. Used by through-focus
// analyses that sweep a single surface along the axis.
func (f *Frame) Displace(offset core.Vec3, fn func() error) error {
	ox, oy, oz := f.X, f.Y, f.Z
	f.X += offset.X
	f.Y += offset.Y
	f.Z += offset.Z
	defer func() {
		f.X, f.Y, f.Z = ox, oy, oz
	}()
	return fn()
}
