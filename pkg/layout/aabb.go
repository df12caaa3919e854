package layout

import (
	"math"

	"github.com/mvollan/stirlingforge/pkg/design"
)

// AABB is an axis-aligned bounding box in global coordinates.
type AABB struct {
	Min design.Vec3
	Max design.Vec3
}

// WorldAABB computes the global axis-aligned bounds of a component under a
// placement. The local box is rotated by the placement's axis-angle
// orientation and re-bounded: for each world axis the extent is the
// absolute-value row sum of the rotation matrix against the local
// half-extents, which is exact for the quarter-turn orientations the
// scatter engine emits.
func WorldAABB(spec design.ComponentSpec, p design.Placement) AABB {
	hx := spec.Bounds.Length / 2
	hy := spec.Bounds.Width / 2
	hz := spec.Bounds.Height / 2

	r := rotationMatrix(p.Orientation)
	ex := math.Abs(r[0][0])*hx + math.Abs(r[0][1])*hy + math.Abs(r[0][2])*hz
	ey := math.Abs(r[1][0])*hx + math.Abs(r[1][1])*hy + math.Abs(r[1][2])*hz
	ez := math.Abs(r[2][0])*hx + math.Abs(r[2][1])*hy + math.Abs(r[2][2])*hz

	return AABB{
		Min: design.Vec3{X: p.Position.X - ex, Y: p.Position.Y - ey, Z: p.Position.Z - ez},
		Max: design.Vec3{X: p.Position.X + ex, Y: p.Position.Y + ey, Z: p.Position.Z + ez},
	}
}

// Overlaps reports whether two boxes have intersecting interiors.
// Boxes that merely touch on a face, edge or corner do not overlap.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X < b.Max.X && b.Min.X < a.Max.X &&
		a.Min.Y < b.Max.Y && b.Min.Y < a.Max.Y &&
		a.Min.Z < b.Max.Z && b.Min.Z < a.Max.Z
}

// rotationMatrix builds the rotation matrix for an axis-angle orientation
// (angle in degrees) using the Rodrigues formula. A zero axis yields the
// identity.
func rotationMatrix(o design.Orientation) [3][3]float64 {
	norm := math.Sqrt(o.Axis.X*o.Axis.X + o.Axis.Y*o.Axis.Y + o.Axis.Z*o.Axis.Z)
	if norm == 0 || o.Angle == 0 {
		return [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	}
	x, y, z := o.Axis.X/norm, o.Axis.Y/norm, o.Axis.Z/norm

	rad := o.Angle * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	t := 1 - c

	return [3][3]float64{
		{t*x*x + c, t*x*y - s*z, t*x*z + s*y},
		{t*x*y + s*z, t*y*y + c, t*y*z - s*x},
		{t*x*z - s*y, t*y*z + s*x, t*z*z + c},
	}
}
