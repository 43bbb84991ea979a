package physics

import rl "github.com/gen2brain/raylib-go/raylib"

type AABB struct {
	Min rl.Vector3
	Max rl.Vector3
}

// NewAABBFromCenter creates an AABB from a center point and full size dimensions.
func NewAABBFromCenter(center, size rl.Vector3) AABB {
	half := rl.Vector3{X: size.X / 2, Y: size.Y / 2, Z: size.Z / 2}
	return AABB{
		Min: rl.Vector3Subtract(center, half),
		Max: rl.Vector3Add(center, half),
	}
}

func (a AABB) Intersects(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Expand grows the AABB by the given margin on every side.
func (a AABB) Expand(margin float32) AABB {
	m := rl.Vector3{X: margin, Y: margin, Z: margin}
	return AABB{
		Min: rl.Vector3Subtract(a.Min, m),
		Max: rl.Vector3Add(a.Max, m),
	}
}

// Sweep extends the AABB to cover a translation by delta.
func (a AABB) Sweep(delta rl.Vector3) AABB {
	out := a
	if delta.X < 0 {
		out.Min.X += delta.X
	} else {
		out.Max.X += delta.X
	}
	if delta.Y < 0 {
		out.Min.Y += delta.Y
	} else {
		out.Max.Y += delta.Y
	}
	if delta.Z < 0 {
		out.Min.Z += delta.Z
	} else {
		out.Max.Z += delta.Z
	}
	return out
}
