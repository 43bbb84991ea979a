package mover

import (
	"physics3d/internal/physics"
)

// CollisionPolicy selects how a mover's resolution behaves at its hook
// points. Policies are stateless strategy values shared across movers.
type CollisionPolicy interface {
	Name() string

	// DefaultIterations is the recursion budget movers of this policy get
	// unless configured otherwise.
	DefaultIterations() int

	// ComputeVelocity may reshape the composed frame velocity before
	// resolution (ground-plane projection for creatures).
	ComputeVelocity(m *Mover, fv *FrameVelocity)

	// OnComputeCollision runs after the impacts of a recursion step, for
	// the primary hit (step climbing for creatures).
	OnComputeCollision(m *Mover, res *CollisionResult, primary CollisionHit)

	// OnCollisionBreak runs once when resolution terminates (ground
	// snapping for creatures).
	OnCollisionBreak(m *Mover, res *CollisionResult)
}

// SimplePolicy is the standard resolver behavior: no step climbing, no
// snapping, no velocity reshaping.
type SimplePolicy struct{}

func (SimplePolicy) Name() string           { return "simple" }
func (SimplePolicy) DefaultIterations() int { return 3 }

func (SimplePolicy) ComputeVelocity(*Mover, *FrameVelocity) {}

func (SimplePolicy) OnComputeCollision(*Mover, *CollisionResult, CollisionHit) {}

func (SimplePolicy) OnCollisionBreak(*Mover, *CollisionResult) {}

// Controller capability hooks. An external controller registers for the
// capabilities it implements; each hook returning true fully overrides the
// core default, false lets the default proceed.

type UpdateController interface {
	OnUpdate(m *Mover, deltaTime float32) bool
}

type ComputationController interface {
	OnComputeVelocity(m *Mover, deltaTime float32) (FrameVelocity, bool)
}

type CollisionController interface {
	OnResolveCollisions(m *Mover, fv FrameVelocity) bool
}

type ColliderMaskController interface {
	OnCollisionMask(m *Mover) (uint32, bool)
}

type VelocityController interface {
	OnApplyGravity(m *Mover, deltaTime float32) bool
}

type TriggerController interface {
	OnTrigger(m *Mover, trigger *physics.Collider, enter bool) bool
}

// controllerTable is the capability registration map, populated once at
// mover setup instead of type-casting at every call site.
type controllerTable struct {
	update      UpdateController
	computation ComputationController
	collision   CollisionController
	mask        ColliderMaskController
	velocity    VelocityController
	trigger     TriggerController
}

// SetController registers every capability the controller implements.
// Passing nil clears all hooks.
func (m *Mover) SetController(controller any) {
	m.controllers = controllerTable{}
	if controller == nil {
		return
	}
	if c, ok := controller.(UpdateController); ok {
		m.controllers.update = c
	}
	if c, ok := controller.(ComputationController); ok {
		m.controllers.computation = c
	}
	if c, ok := controller.(CollisionController); ok {
		m.controllers.collision = c
	}
	if c, ok := controller.(ColliderMaskController); ok {
		m.controllers.mask = c
	}
	if c, ok := controller.(VelocityController); ok {
		m.controllers.velocity = c
	}
	if c, ok := controller.(TriggerController); ok {
		m.controllers.trigger = c
	}
}
