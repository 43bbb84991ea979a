package mover

import (
	"log"

	rl "github.com/gen2brain/raylib-go/raylib"

	"physics3d/internal/engine"
	"physics3d/internal/physics"
)

// HitObserver is implemented by sibling components that want to know when
// another mover ran into this entity during its resolution.
type HitObserver interface {
	OnHitByMover(by *Mover, hit physics.RaycastHit)
}

// Mover is a kinematic body component: it composes a frame velocity from
// its velocity model, resolves it against the world with cast-and-slide,
// and settles grounding, pushing and trigger state every step.
type Mover struct {
	engine.BaseComponent

	// Speed scales sustained and one-frame movement intent.
	Speed float32

	// Weight is what other movers read when deciding how hard this body
	// resists being pushed.
	Weight float32

	// PushRangeMin and PushRangeMax span the weights this mover can push.
	// Targets at or below the minimum are pushed at full strength, targets
	// at or above the maximum not at all; a zero-width range pushes nothing.
	PushRangeMin float32
	PushRangeMax float32

	// PushCurve shapes the push coefficient across the range. Linear when
	// nil.
	PushCurve EaseFunc

	// IsRock makes the body immovable by pushes and extraction while it
	// still pushes others at full strength.
	IsRock bool

	UseGravity       bool
	DynamicGravity   bool
	EqualizeVelocity bool
	SlideOnSurfaces  bool

	FreezeAxes FreezeAxes

	// MaxIterations is the resolution recursion budget, at least 1.
	MaxIterations int

	// CollisionMask selects which layers solid casts collide with.
	CollisionMask uint32

	// TriggerMask selects which layers the trigger collider observes.
	TriggerMask uint32

	Velocity Velocity

	Grounded     bool
	GroundNormal rl.Vector3
	GravitySense rl.Vector3

	OnGroundedChanged engine.EventWithArg[bool]

	world    *physics.World
	settings *Settings
	policy   CollisionPolicy

	controllers controllerTable

	queries []QueryCollider
	trigger *physics.Collider
	ctx     *ResolutionContext

	observers       []TriggerObserver
	activeTriggers  map[*physics.Collider]bool
	currentTriggers map[*physics.Collider]bool

	velocityCoef float32
	coefStack    []float32

	prevFlatMovement rl.Vector3
	prevFlatForce    rl.Vector3
	hadFlatPair      bool

	pendingExtraction bool
}

// New creates a mover resolving against world. A nil settings uses the
// defaults, a nil policy the simple one.
func New(world *physics.World, settings *Settings, policy CollisionPolicy) *Mover {
	if settings == nil {
		settings = DefaultSettings()
	}
	if policy == nil {
		policy = SimplePolicy{}
	}
	return &Mover{
		Speed:           1,
		Weight:          1,
		UseGravity:      true,
		SlideOnSurfaces: true,
		GravitySense:    rl.Vector3{Y: -1},
		GroundNormal:    rl.Vector3{Y: 1},
		MaxIterations:   policy.DefaultIterations(),
		CollisionMask:   physics.LayerAll,
		TriggerMask:     physics.LayerAll,
		world:           world,
		settings:        settings,
		policy:          policy,
		ctx:             newResolutionContext(),
		activeTriggers:  make(map[*physics.Collider]bool),
		currentTriggers: make(map[*physics.Collider]bool),
		velocityCoef:    1,
	}
}

func (m *Mover) World() *physics.World   { return m.world }
func (m *Mover) Settings() *Settings     { return m.settings }
func (m *Mover) Policy() CollisionPolicy { return m.policy }

// AddCollider attaches a solid primitive to the mover. The first collider
// added is the main one: ground probes and extraction run against it. The
// mover must already be attached to its entity.
func (m *Mover) AddCollider(shape physics.Shape, offset rl.Vector3) (*physics.Collider, error) {
	c, err := physics.NewCollider(m.GetEntity(), shape, physics.LayerMover)
	if err != nil {
		return nil, err
	}
	c.Offset = offset
	m.world.Add(c)
	m.queries = append(m.queries, NewQueryCollider(m.world, c, m.settings))
	return c, nil
}

// SetTriggerCollider attaches the single trigger probe. It never collides
// solidly; it only feeds the enter/exit diff.
func (m *Mover) SetTriggerCollider(shape physics.Shape, offset rl.Vector3) (*physics.Collider, error) {
	c, err := physics.NewCollider(m.GetEntity(), shape, physics.LayerMover)
	if err != nil {
		return nil, err
	}
	c.IsTrigger = true
	c.Offset = offset
	if m.trigger != nil {
		m.world.Remove(m.trigger)
	}
	m.world.Add(c)
	m.trigger = c
	return c, nil
}

func (m *Mover) MainCollider() *physics.Collider {
	if len(m.queries) == 0 {
		return nil
	}
	return m.queries[0].Collider
}

func (m *Mover) TriggerCollider() *physics.Collider { return m.trigger }

func (m *Mover) ownColliders(buf []*physics.Collider) []*physics.Collider {
	for _, q := range m.queries {
		buf = append(buf, q.Collider)
	}
	if m.trigger != nil {
		buf = append(buf, m.trigger)
	}
	return buf
}

func (m *Mover) collisionMask() uint32 {
	if m.controllers.mask != nil {
		if mask, ok := m.controllers.mask.OnCollisionMask(m); ok {
			return mask
		}
	}
	return m.CollisionMask
}

func (m *Mover) Position() rl.Vector3 {
	if e := m.GetEntity(); e != nil {
		return e.Transform.Position
	}
	return rl.Vector3{}
}

func (m *Mover) setPosition(p rl.Vector3) {
	if e := m.GetEntity(); e != nil {
		e.Transform.Position = p
		m.world.MarkDirty()
	}
}

func (m *Mover) translate(delta rl.Vector3) {
	if e := m.GetEntity(); e != nil {
		e.Transform.Position = rl.Vector3Add(e.Transform.Position, delta)
		m.world.MarkDirty()
	}
}

func (m *Mover) entityRotation() rl.Quaternion {
	if e := m.GetEntity(); e != nil {
		return e.Transform.Rotation
	}
	return rl.QuaternionIdentity()
}

// SetRotation replaces the entity's orientation. The velocity composer reads
// the rotation once per step, so a rotation applied mid-step takes effect on
// the following step.
func (m *Mover) SetRotation(rotation rl.Quaternion) {
	if e := m.GetEntity(); e != nil {
		e.Transform.Rotation = rotation
	}
}

// Rotate applies an additional rotation on top of the current orientation.
func (m *Mover) Rotate(delta rl.Quaternion) {
	if e := m.GetEntity(); e != nil {
		e.Transform.Rotation = rl.QuaternionMultiply(delta, e.Transform.Rotation)
	}
}

func (m *Mover) Enabled() bool {
	e := m.GetEntity()
	return e != nil && e.Active()
}

func (m *Mover) name() string {
	if e := m.GetEntity(); e != nil {
		return e.Name
	}
	return "<detached>"
}

// notifyHitBy informs sibling components that another mover ran into this
// entity.
func (m *Mover) notifyHitBy(by *Mover, hit physics.RaycastHit) {
	e := m.GetEntity()
	if e == nil {
		return
	}
	for _, c := range e.Components() {
		if h, ok := c.(HitObserver); ok {
			h.OnHitByMover(by, hit)
		}
	}
}

// AddVelocityCoef pushes a multiplicative slowdown factor onto the stack.
// Non-positive factors are rejected: a zero would be unrecoverable through
// the multiplication.
func (m *Mover) AddVelocityCoef(coef float32) {
	if coef <= 0 {
		log.Printf("Mover: %s ignoring velocity coefficient %.3f", m.name(), coef)
		return
	}
	m.coefStack = append(m.coefStack, coef)
	m.velocityCoef *= coef
}

// RemoveVelocityCoef pops a previously added factor. Removing a factor
// that was never added is logged and ignored.
func (m *Mover) RemoveVelocityCoef(coef float32) {
	for i := len(m.coefStack) - 1; i >= 0; i-- {
		if m.coefStack[i] == coef {
			m.coefStack = append(m.coefStack[:i], m.coefStack[i+1:]...)
			m.velocityCoef = 1
			for _, c := range m.coefStack {
				m.velocityCoef *= c
			}
			return
		}
	}
	log.Printf("Mover: %s removing unregistered velocity coefficient %.3f", m.name(), coef)
}

func (m *Mover) VelocityCoef() float32 { return m.velocityCoef }

// Update runs one simulation step: gravity, velocity composition,
// collision resolution and trigger refresh, in that order. Each hook can
// be fully overridden by a registered controller capability.
func (m *Mover) Update(deltaTime float32) {
	if deltaTime <= 0 || !m.Enabled() || len(m.queries) == 0 {
		return
	}

	if m.controllers.update != nil && m.controllers.update.OnUpdate(m, deltaTime) {
		return
	}

	if m.pendingExtraction {
		m.pendingExtraction = false
		m.ExtractFromColliders()
	}

	m.applyGravity(deltaTime)

	var fv FrameVelocity
	composed := false
	if m.controllers.computation != nil {
		if override, ok := m.controllers.computation.OnComputeVelocity(m, deltaTime); ok {
			fv = override
			composed = true
		}
	}
	if !composed {
		fv = m.computeFrameVelocity(deltaTime)
	}

	m.policy.ComputeVelocity(m, &fv)

	if !(m.controllers.collision != nil && m.controllers.collision.OnResolveCollisions(m, fv)) {
		m.resolveCollisions(fv)
	}

	m.refreshTriggers()
}

// applyGravity accumulates fall speed along the gravity sense while
// airborne, capped at the terminal speed.
func (m *Mover) applyGravity(deltaTime float32) {
	if !m.UseGravity || m.Grounded {
		return
	}
	if m.controllers.velocity != nil && m.controllers.velocity.OnApplyGravity(m, deltaTime) {
		return
	}

	fall := rl.Vector3DotProduct(m.Velocity.Force, m.GravitySense)
	if fall >= m.settings.MaxGravitySpeed {
		return
	}
	step := m.settings.Gravity * deltaTime
	if fall+step > m.settings.MaxGravitySpeed {
		step = m.settings.MaxGravitySpeed - fall
	}
	m.Velocity.Force = rl.Vector3Add(m.Velocity.Force, rl.Vector3Scale(m.GravitySense, step))
}

// Resolve runs the resolution pipeline directly with an externally
// composed frame velocity, bypassing composition and gravity. Intended
// for controllers and tests.
func (m *Mover) Resolve(fv FrameVelocity) *CollisionResult {
	return m.resolveCollisions(fv)
}

func (m *Mover) OnEnable() {
	for _, q := range m.queries {
		q.Collider.Enabled = true
	}
	if m.trigger != nil {
		m.trigger.Enabled = true
	}
	m.world.MarkDirty()
}

func (m *Mover) OnDisable() {
	m.ExitAllTriggers()
	for _, q := range m.queries {
		q.Collider.Enabled = false
	}
	if m.trigger != nil {
		m.trigger.Enabled = false
	}
	m.Velocity.Clear()
	m.world.MarkDirty()
}

// Destroy detaches the mover from the world: exits all triggers, removes
// its colliders and releases the resolution buffers. The mover must not
// be updated afterwards.
func (m *Mover) Destroy() {
	m.ExitAllTriggers()
	for _, q := range m.queries {
		m.world.Remove(q.Collider)
	}
	if m.trigger != nil {
		m.world.Remove(m.trigger)
		m.trigger = nil
	}
	m.queries = nil
	m.observers = nil
	m.OnGroundedChanged.RemoveAllListeners()
	m.ctx.release()
}

func engineGetMover(e *engine.Entity) *Mover {
	return engine.GetComponent[*Mover](e)
}
