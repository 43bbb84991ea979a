package physics

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Shape is a primitive collider shape. Only Box, Sphere and Capsule are
// supported; anything else is a configuration error caught at collider
// creation.
type Shape interface {
	validate() error
}

// Box is an oriented box, Size is the full extent along each local axis.
type Box struct {
	Size rl.Vector3
}

// Sphere is a uniform sphere.
type Sphere struct {
	Radius float32
}

// CapsuleAxis selects the local axis a capsule's segment runs along.
type CapsuleAxis int

const (
	CapsuleAxisX CapsuleAxis = iota
	CapsuleAxisY
	CapsuleAxisZ
)

// Capsule is a sphere-swept segment. Height is the full tip-to-tip height,
// so the inner segment has length Height - 2*Radius.
type Capsule struct {
	Radius float32
	Height float32
	Axis   CapsuleAxis
}

func (b Box) validate() error {
	if b.Size.X <= 0 || b.Size.Y <= 0 || b.Size.Z <= 0 {
		return fmt.Errorf("box size must be positive on every axis, got %v", b.Size)
	}
	return nil
}

func (s Sphere) validate() error {
	if s.Radius <= 0 {
		return fmt.Errorf("sphere radius must be positive, got %g", s.Radius)
	}
	return nil
}

func (c Capsule) validate() error {
	if c.Radius <= 0 {
		return fmt.Errorf("capsule radius must be positive, got %g", c.Radius)
	}
	if c.Height < 2*c.Radius {
		return fmt.Errorf("capsule height %g smaller than sphere caps (radius %g)", c.Height, c.Radius)
	}
	if c.Axis < CapsuleAxisX || c.Axis > CapsuleAxisZ {
		return fmt.Errorf("invalid capsule axis %d", c.Axis)
	}
	return nil
}

func (a CapsuleAxis) vector() rl.Vector3 {
	switch a {
	case CapsuleAxisX:
		return rl.Vector3{X: 1}
	case CapsuleAxisZ:
		return rl.Vector3{Z: 1}
	default:
		return rl.Vector3{Y: 1}
	}
}
