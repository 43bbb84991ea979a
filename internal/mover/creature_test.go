package mover

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"physics3d/internal/physics"
)

func newCreature(t *testing.T, w *physics.World, pos rl.Vector3) *Mover {
	t.Helper()
	m := newTestMover(t, w, CreaturePolicy{}, pos)
	return m
}

func TestCreatureClimbsLowStep(t *testing.T) {
	w := physics.NewWorld()
	addFloor(t, w)
	// Step top at 0.2, below the 0.25 climb height.
	addStatic(t, w, "Step", rl.Vector3{X: 1.5, Y: 0.1}, rl.Vector3{X: 1, Y: 0.2, Z: 4})

	m := newCreature(t, w, rl.Vector3{Y: 0.51})
	m.Grounded = true

	startY := m.Position().Y
	m.Velocity.Movement = rl.Vector3{X: 2}
	m.Update(1)

	if m.Position().Y <= startY+0.1 {
		t.Errorf("Expected the creature to climb the step, y went %f -> %f", startY, m.Position().Y)
	}
	if !m.Grounded {
		t.Error("A successful climb must keep the creature grounded")
	}
}

func TestCreatureDoesNotClimbTallObstacle(t *testing.T) {
	w := physics.NewWorld()
	addFloor(t, w)
	// Front face at x=1.0, far taller than the climb height.
	addStatic(t, w, "Wall", rl.Vector3{X: 1.5, Y: 1}, rl.Vector3{X: 1, Y: 2, Z: 4})

	m := newCreature(t, w, rl.Vector3{Y: 0.51})
	m.Grounded = true

	m.Velocity.Movement = rl.Vector3{X: 2}
	m.Update(1)

	if m.Position().X > 0.51 {
		t.Errorf("Tall obstacle must block the creature, x=%f", m.Position().X)
	}
	if m.Position().Y > 0.76 {
		t.Errorf("Blocked climb must revert the exploratory probe, y=%f", m.Position().Y)
	}
}

func TestClimbProbeIsAlwaysReverted(t *testing.T) {
	w := physics.NewWorld()
	addFloor(t, w)
	addStatic(t, w, "Wall", rl.Vector3{X: 1.5, Y: 1}, rl.Vector3{X: 1, Y: 2, Z: 4})

	m := newCreature(t, w, rl.Vector3{Y: 0.51})
	m.Grounded = true
	res := &m.ctx.result
	res.reset(FrameVelocity{})
	res.OriginalVelocity = rl.Vector3{X: 1}

	before := m.Position()
	CreaturePolicy{}.OnComputeCollision(m, res, CollisionHit{
		RaycastHit: physics.RaycastHit{Normal: rl.Vector3{X: -1}},
	})

	if m.Position() != before {
		t.Errorf("Climb probe must never commit a displacement, %v -> %v", before, m.Position())
	}
}

func TestCreatureSnapsDownOntoGround(t *testing.T) {
	w := physics.NewWorld()
	addFloor(t, w)

	// Hovering within snap height, walking flat.
	m := newCreature(t, w, rl.Vector3{Y: 0.65})
	m.Grounded = true
	m.UseGravity = false

	m.Velocity.Movement = rl.Vector3{X: 1}
	m.Update(0.1)

	if m.Position().Y > 0.53 {
		t.Errorf("Expected the creature snapped down near the floor, y=%f", m.Position().Y)
	}
	if !m.Grounded {
		t.Error("Snapping down must keep the grounded state")
	}
}

func TestCreatureDoesNotSnapWhileJumping(t *testing.T) {
	w := physics.NewWorld()
	addFloor(t, w)

	m := newCreature(t, w, rl.Vector3{Y: 0.65})
	m.Grounded = true
	m.UseGravity = false

	m.Velocity.Force = rl.Vector3{Y: 3}
	m.Update(0.1)

	if m.Position().Y < 0.65 {
		t.Errorf("Upward motion must never be pulled back down, y=%f", m.Position().Y)
	}
}

func TestCreatureFollowsSlope(t *testing.T) {
	m := New(physics.NewWorld(), nil, CreaturePolicy{})
	m.Grounded = true
	m.GroundNormal = rl.Vector3Normalize(rl.Vector3{X: -0.3, Y: 1})

	fv := FrameVelocity{
		Movement: rl.Vector3{X: 1},
		Rotation: rl.QuaternionIdentity(),
	}
	CreaturePolicy{}.ComputeVelocity(m, &fv)

	if fv.Movement.Y <= 0 {
		t.Errorf("Walking uphill should gain height, got %v", fv.Movement)
	}
	if !near(rl.Vector3Length(fv.Movement), 1, 0.001) {
		t.Errorf("Slope projection must preserve the flat magnitude, got %f", rl.Vector3Length(fv.Movement))
	}
}
