package engine

import (
	"sync/atomic"

	rl "github.com/gen2brain/raylib-go/raylib"
)

// Transform holds the world-space placement of an entity.
type Transform struct {
	Position rl.Vector3
	Rotation rl.Quaternion
	Scale    rl.Vector3
}

// Up returns the transform's local up axis in world space.
func (t *Transform) Up() rl.Vector3 {
	return rl.Vector3RotateByQuaternion(rl.Vector3{Y: 1}, t.Rotation)
}

// Forward returns the transform's local forward axis in world space.
func (t *Transform) Forward() rl.Vector3 {
	return rl.Vector3RotateByQuaternion(rl.Vector3{Z: 1}, t.Rotation)
}

var nextUID uint64

// Entity is a named object in the simulation. Components attached to it
// receive Start/Update calls and activation notifications.
type Entity struct {
	Name       string
	UID        uint64
	Tags       []string
	Transform  Transform
	components []Component
	active     bool
	started    bool
}

func NewEntity(name string) *Entity {
	return &Entity{
		Name:   name,
		UID:    atomic.AddUint64(&nextUID, 1),
		active: true,
		Transform: Transform{
			Rotation: rl.QuaternionIdentity(),
			Scale:    rl.Vector3{X: 1, Y: 1, Z: 1},
		},
		components: make([]Component, 0),
	}
}

func (e *Entity) AddComponent(c Component) {
	c.SetEntity(e)
	e.components = append(e.components, c)
}

// GetComponent returns the first component of the requested type, or the
// zero value if the entity has none.
func GetComponent[T Component](e *Entity) T {
	var zero T
	for _, c := range e.components {
		if typed, ok := c.(T); ok {
			return typed
		}
	}
	return zero
}

func (e *Entity) Components() []Component {
	return e.components
}

func (e *Entity) Active() bool {
	return e.active
}

// SetActive toggles the entity and notifies Activatable components. The
// notification fires only on actual state transitions.
func (e *Entity) SetActive(active bool) {
	if e.active == active {
		return
	}
	e.active = active
	for _, c := range e.components {
		if a, ok := c.(Activatable); ok {
			if active {
				a.OnEnable()
			} else {
				a.OnDisable()
			}
		}
	}
}

func (e *Entity) Start() {
	if e.started {
		return
	}
	for _, c := range e.components {
		c.Start()
	}
	e.started = true
}

func (e *Entity) Update(deltaTime float32) {
	if !e.active {
		return
	}
	for _, c := range e.components {
		c.Update(deltaTime)
	}
}

func (e *Entity) HasTag(tag string) bool {
	for _, t := range e.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
