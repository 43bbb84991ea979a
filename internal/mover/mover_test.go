package mover

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"physics3d/internal/engine"
	"physics3d/internal/physics"
)

func newTestMover(t *testing.T, w *physics.World, policy CollisionPolicy, pos rl.Vector3) *Mover {
	t.Helper()
	e := engine.NewEntity("TestMover")
	e.Transform.Position = pos
	m := New(w, nil, policy)
	e.AddComponent(m)
	if _, err := m.AddCollider(physics.Box{Size: rl.Vector3{X: 1, Y: 1, Z: 1}}, rl.Vector3{}); err != nil {
		t.Fatalf("AddCollider: %v", err)
	}
	return m
}

func addStatic(t *testing.T, w *physics.World, name string, pos, size rl.Vector3) *physics.Collider {
	t.Helper()
	e := engine.NewEntity(name)
	e.Transform.Position = pos
	c, err := physics.NewCollider(e, physics.Box{Size: size}, physics.LayerStatic)
	if err != nil {
		t.Fatalf("NewCollider(%s): %v", name, err)
	}
	w.Add(c)
	return c
}

// addFloor places a large static slab whose top surface sits at y=0.
func addFloor(t *testing.T, w *physics.World) *physics.Collider {
	t.Helper()
	return addStatic(t, w, "Floor", rl.Vector3{Y: -0.5}, rl.Vector3{X: 40, Y: 1, Z: 40})
}

func near(a, b, tolerance float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

func TestUpdateMovesFreely(t *testing.T) {
	w := physics.NewWorld()
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false

	m.Velocity.Movement = rl.Vector3{X: 1}
	m.Update(0.1)

	if !near(m.Position().X, 0.1, 0.001) {
		t.Errorf("Expected x=0.1 after one step at speed 1, got %f", m.Position().X)
	}
}

func TestSpeedScalesMovement(t *testing.T) {
	w := physics.NewWorld()
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false
	m.Speed = 3

	m.Velocity.Movement = rl.Vector3{X: 1}
	m.Update(0.1)

	if !near(m.Position().X, 0.3, 0.001) {
		t.Errorf("Expected x=0.3 with speed 3, got %f", m.Position().X)
	}
}

func TestGravityAccumulates(t *testing.T) {
	w := physics.NewWorld()
	m := newTestMover(t, w, nil, rl.Vector3{Y: 50})

	m.Update(0.1)

	// One step of gravity: force 2 down, displacement 0.2.
	if !near(m.Velocity.Force.Y, -2, 0.001) {
		t.Errorf("Expected fall speed 2 after one step, got %f", m.Velocity.Force.Y)
	}
	if !near(m.Position().Y, 49.8, 0.001) {
		t.Errorf("Expected y=49.8, got %f", m.Position().Y)
	}
}

func TestGravityTerminalSpeed(t *testing.T) {
	w := physics.NewWorld()
	m := newTestMover(t, w, nil, rl.Vector3{Y: 10000})

	for i := 0; i < 100; i++ {
		m.Update(0.1)
	}

	if m.Velocity.Force.Y < -m.settings.MaxGravitySpeed-0.001 {
		t.Errorf("Fall speed %f exceeds the terminal speed %f",
			-m.Velocity.Force.Y, m.settings.MaxGravitySpeed)
	}
}

func TestFallLandsOnFloor(t *testing.T) {
	w := physics.NewWorld()
	addFloor(t, w)
	m := newTestMover(t, w, nil, rl.Vector3{Y: 2})

	transitions := 0
	m.OnGroundedChanged.AddListener(func(grounded bool) {
		if grounded {
			transitions++
		}
	})

	for i := 0; i < 30; i++ {
		m.Update(0.1)
	}

	if !m.Grounded {
		t.Fatal("Mover should be grounded after falling onto the floor")
	}
	if transitions != 1 {
		t.Errorf("Expected exactly one grounded transition, got %d", transitions)
	}
	// Resting height: half extent plus roughly one contact offset.
	if !near(m.Position().Y, 0.51, 0.05) {
		t.Errorf("Expected resting height around 0.51, got %f", m.Position().Y)
	}
}

func TestWallBlocksMovement(t *testing.T) {
	w := physics.NewWorld()
	addStatic(t, w, "Wall", rl.Vector3{X: 2, Y: 5}, rl.Vector3{X: 1, Y: 4, Z: 10})
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false

	m.Velocity.Movement = rl.Vector3{X: 2}
	m.Update(1)

	// Wall face at x=1.5, mover half extent 0.5: stops just short of 1.0.
	x := m.Position().X
	if x < 0.9 || x > 1.01 {
		t.Errorf("Expected the wall to stop the mover near x=0.99, got %f", x)
	}
}

func TestSlideAlongWall(t *testing.T) {
	w := physics.NewWorld()
	addStatic(t, w, "Wall", rl.Vector3{X: 2, Y: 5}, rl.Vector3{X: 1, Y: 4, Z: 10})
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false

	m.Velocity.Movement = rl.Vector3{X: 2, Z: 2}
	m.Update(1)

	pos := m.Position()
	if pos.X > 1.01 {
		t.Errorf("Mover penetrated the wall, x=%f", pos.X)
	}
	if pos.Z < 1.7 {
		t.Errorf("Expected the tangential component to survive the slide, z=%f", pos.Z)
	}
}

func TestNoSlideConsumesVelocity(t *testing.T) {
	w := physics.NewWorld()
	addStatic(t, w, "Wall", rl.Vector3{X: 2, Y: 5}, rl.Vector3{X: 1, Y: 4, Z: 10})
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false
	m.SlideOnSurfaces = false

	m.Velocity.Movement = rl.Vector3{X: 2, Z: 2}
	m.Update(1)

	// Travel up to the contact is fine; tangential travel past it is not.
	if m.Position().Z > 1.2 {
		t.Errorf("Without sliding the diagonal should stop at the wall, z=%f", m.Position().Z)
	}
}

func TestFreezeAxes(t *testing.T) {
	w := physics.NewWorld()
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false
	m.FreezeAxes = FreezeAxes{Z: true}

	m.Velocity.Movement = rl.Vector3{X: 1, Z: 1}
	m.Update(1)

	pos := m.Position()
	if pos.Z != 0 {
		t.Errorf("Frozen Z axis must not move, got z=%f", pos.Z)
	}
	if !near(pos.X, 1, 0.001) {
		t.Errorf("Free X axis should move normally, got x=%f", pos.X)
	}
}

func TestVelocityCoefStack(t *testing.T) {
	w := physics.NewWorld()
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false

	m.AddVelocityCoef(0.5)
	m.AddVelocityCoef(0.5)
	if !near(m.VelocityCoef(), 0.25, 0.0001) {
		t.Errorf("Expected stacked coefficient 0.25, got %f", m.VelocityCoef())
	}

	m.Velocity.Movement = rl.Vector3{X: 1}
	m.Update(1)
	if !near(m.Position().X, 0.25, 0.001) {
		t.Errorf("Expected slowed displacement 0.25, got %f", m.Position().X)
	}

	m.RemoveVelocityCoef(0.5)
	if !near(m.VelocityCoef(), 0.5, 0.0001) {
		t.Errorf("Expected coefficient 0.5 after removal, got %f", m.VelocityCoef())
	}

	m.AddVelocityCoef(0)
	if !near(m.VelocityCoef(), 0.5, 0.0001) {
		t.Error("Zero coefficient must be rejected")
	}
	m.RemoveVelocityCoef(0.7) // never added, must be a logged no-op
	if !near(m.VelocityCoef(), 0.5, 0.0001) {
		t.Errorf("Removing an unregistered coefficient must not change the stack, got %f", m.VelocityCoef())
	}
}

func TestDisabledMoverDoesNotMove(t *testing.T) {
	w := physics.NewWorld()
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false
	m.Velocity.Movement = rl.Vector3{X: 1}

	m.GetEntity().SetActive(false)
	m.Update(1)

	if m.Position().X != 0 {
		t.Errorf("Disabled mover moved to x=%f", m.Position().X)
	}
	if !almostZeroVec(m.Velocity.Movement) {
		t.Error("Disabling should clear the velocity model")
	}
}

func TestDestroyRemovesColliders(t *testing.T) {
	w := physics.NewWorld()
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})

	if w.ColliderCount() != 1 {
		t.Fatalf("Expected one collider in the world, got %d", w.ColliderCount())
	}
	m.Destroy()
	if w.ColliderCount() != 0 {
		t.Errorf("Expected no colliders after Destroy, got %d", w.ColliderCount())
	}
}

type fixedVelocityController struct {
	fv FrameVelocity
}

func (c fixedVelocityController) OnComputeVelocity(m *Mover, deltaTime float32) (FrameVelocity, bool) {
	return c.fv, true
}

func TestComputationControllerOverride(t *testing.T) {
	w := physics.NewWorld()
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false
	m.SetController(fixedVelocityController{fv: FrameVelocity{
		Movement: rl.Vector3{X: 0.5},
		Rotation: rl.QuaternionIdentity(),
	}})

	m.Velocity.Movement = rl.Vector3{X: 100} // must be ignored
	m.Update(0.1)

	if !near(m.Position().X, 0.5, 0.001) {
		t.Errorf("Controller velocity should replace the composed one, got x=%f", m.Position().X)
	}
}

type maskController struct {
	mask uint32
}

func (c maskController) OnCollisionMask(m *Mover) (uint32, bool) { return c.mask, true }

func TestMaskControllerOverride(t *testing.T) {
	w := physics.NewWorld()
	addStatic(t, w, "Wall", rl.Vector3{X: 2, Y: 5}, rl.Vector3{X: 1, Y: 4, Z: 10})
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false
	m.SetController(maskController{mask: physics.LayerMover})

	m.Velocity.Movement = rl.Vector3{X: 3}
	m.Update(1)

	if !near(m.Position().X, 3, 0.001) {
		t.Errorf("Masked-out wall should not block, got x=%f", m.Position().X)
	}
}
