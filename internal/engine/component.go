package engine

type Component interface {
	Start()
	Update(deltaTime float32)
	SetEntity(e *Entity)
	GetEntity() *Entity
}

// Activatable is implemented by components that need to react to their
// entity being enabled or disabled (releasing buffers, exiting triggers).
type Activatable interface {
	OnEnable()
	OnDisable()
}

// BaseComponent provides default implementations for Component.
type BaseComponent struct {
	entity *Entity
}

func (b *BaseComponent) Start() {}

func (b *BaseComponent) Update(deltaTime float32) {}

func (b *BaseComponent) SetEntity(e *Entity) {
	b.entity = e
}

func (b *BaseComponent) GetEntity() *Entity {
	return b.entity
}
