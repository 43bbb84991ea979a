package physics

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"physics3d/internal/engine"
)

// Layer bits. Queries match a collider when mask & collider.Layer != 0.
const (
	LayerStatic uint32 = 1 << iota
	LayerMover
	LayerTrigger
	LayerAll uint32 = ^uint32(0)
)

// TriggerPolicy controls whether a query reports trigger colliders.
type TriggerPolicy int

const (
	IgnoreTriggers TriggerPolicy = iota
	CollideTriggers
)

// Collider wraps a primitive shape placed relative to an owning entity.
type Collider struct {
	Entity    *engine.Entity
	Shape     Shape
	Offset    rl.Vector3
	Layer     uint32
	IsTrigger bool
	Enabled   bool
}

// NewCollider validates the shape up front. An unsupported primitive or an
// invalid capsule axis is a hard configuration error, never a silent
// degradation.
func NewCollider(entity *engine.Entity, shape Shape, layer uint32) (*Collider, error) {
	switch shape.(type) {
	case Box, Sphere, Capsule:
		if err := shape.validate(); err != nil {
			return nil, fmt.Errorf("collider on %q: %w", entityName(entity), err)
		}
	default:
		return nil, fmt.Errorf("collider on %q: unsupported shape %T", entityName(entity), shape)
	}
	return &Collider{
		Entity:  entity,
		Shape:   shape,
		Layer:   layer,
		Enabled: true,
	}, nil
}

func entityName(e *engine.Entity) string {
	if e == nil {
		return "<detached>"
	}
	return e.Name
}

// Center returns the collider's world-space center.
func (c *Collider) Center() rl.Vector3 {
	return c.centerAt(rl.Vector3{})
}

func (c *Collider) centerAt(displacement rl.Vector3) rl.Vector3 {
	pos := displacement
	var rot rl.Quaternion
	scale := rl.Vector3{X: 1, Y: 1, Z: 1}
	if c.Entity != nil {
		pos = rl.Vector3Add(pos, c.Entity.Transform.Position)
		rot = c.Entity.Transform.Rotation
		scale = c.Entity.Transform.Scale
	} else {
		rot = rl.QuaternionIdentity()
	}
	local := rl.Vector3{
		X: c.Offset.X * scale.X,
		Y: c.Offset.Y * scale.Y,
		Z: c.Offset.Z * scale.Z,
	}
	return rl.Vector3Add(pos, rl.Vector3RotateByQuaternion(local, rot))
}

func (c *Collider) rotation() rl.Quaternion {
	if c.Entity == nil {
		return rl.QuaternionIdentity()
	}
	return c.Entity.Transform.Rotation
}

func (c *Collider) scale() rl.Vector3 {
	if c.Entity == nil {
		return rl.Vector3{X: 1, Y: 1, Z: 1}
	}
	return c.Entity.Transform.Scale
}

// BoundingRadius returns a sphere radius that fully contains the shape, used
// for broad-phase rejection.
func (c *Collider) BoundingRadius() float32 {
	scale := c.scale()
	maxScale := maxf(scale.X, maxf(scale.Y, scale.Z))
	switch s := c.Shape.(type) {
	case Box:
		return rl.Vector3Length(rl.Vector3{
			X: s.Size.X * scale.X,
			Y: s.Size.Y * scale.Y,
			Z: s.Size.Z * scale.Z,
		}) * 0.5
	case Sphere:
		return s.Radius * maxScale
	case Capsule:
		return s.Height * 0.5 * maxScale
	}
	return 0
}

// SurfacePoint returns the point where a ray from the collider's center
// along direction exits the shape. Used as the origin of surface probes.
func (c *Collider) SurfacePoint(direction rl.Vector3) rl.Vector3 {
	direction = rl.Vector3Normalize(direction)
	s := c.solidAt(rl.Vector3{})

	var t float32
	switch s.kind {
	case kindBox:
		t = float32(math.Inf(1))
		half := [3]float32{s.obb.HalfSize.X, s.obb.HalfSize.Y, s.obb.HalfSize.Z}
		for i := 0; i < 3; i++ {
			d := absf(rl.Vector3DotProduct(direction, s.obb.Axes[i]))
			if d > 1e-6 {
				if exit := half[i] / d; exit < t {
					t = exit
				}
			}
		}
	case kindSphere:
		t = s.radius
	default:
		halfSeg := rl.Vector3Length(rl.Vector3Subtract(s.segA, s.center))
		axis := rl.Vector3{Y: 1}
		if halfSeg > 1e-6 {
			axis = rl.Vector3Scale(rl.Vector3Subtract(s.segA, s.center), 1/halfSeg)
		}
		t = s.radius + halfSeg*absf(rl.Vector3DotProduct(direction, axis))
	}
	return rl.Vector3Add(s.center, rl.Vector3Scale(direction, t))
}

// solid is a collider's shape resolved to world space, possibly displaced.
// All narrow-phase geometry operates on solids so that swept tests can
// reuse the same code at any point along the cast.
type solid struct {
	kind   int // 0 box, 1 sphere, 2 capsule
	obb    OBB
	center rl.Vector3
	radius float32
	segA   rl.Vector3 // capsule inner segment
	segB   rl.Vector3
}

const (
	kindBox = iota
	kindSphere
	kindCapsule
)

func (c *Collider) solidAt(displacement rl.Vector3) solid {
	center := c.centerAt(displacement)
	rot := c.rotation()
	scale := c.scale()
	maxScale := maxf(scale.X, maxf(scale.Y, scale.Z))

	switch s := c.Shape.(type) {
	case Box:
		size := rl.Vector3{X: s.Size.X * scale.X, Y: s.Size.Y * scale.Y, Z: s.Size.Z * scale.Z}
		return solid{kind: kindBox, obb: NewOBB(center, size, rot), center: center}
	case Sphere:
		return solid{kind: kindSphere, center: center, radius: s.Radius * maxScale}
	case Capsule:
		radius := s.Radius * maxScale
		half := (s.Height*maxScale)/2 - radius
		if half < 0 {
			half = 0
		}
		axis := rl.Vector3RotateByQuaternion(s.Axis.vector(), rot)
		offset := rl.Vector3Scale(axis, half)
		return solid{
			kind:   kindCapsule,
			center: center,
			radius: radius,
			segA:   rl.Vector3Add(center, offset),
			segB:   rl.Vector3Subtract(center, offset),
		}
	}
	return solid{kind: kindSphere, center: center}
}

func maxf(a, b float32) float32 {
	if a > b {
		return a
	}
	return b
}
