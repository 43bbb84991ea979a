package mover

import (
	"math"
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"physics3d/internal/engine"
	"physics3d/internal/physics"
)

func slopeNormal(degrees float64) rl.Vector3 {
	rad := degrees * math.Pi / 180
	return rl.Vector3{X: float32(math.Sin(rad)), Y: float32(math.Cos(rad))}
}

func TestGroundAngleBoundary(t *testing.T) {
	m := New(physics.NewWorld(), nil, nil)

	if !m.isGroundSurface(slopeNormal(0)) {
		t.Error("A flat surface must qualify as ground")
	}
	if !m.isGroundSurface(slopeNormal(29)) {
		t.Error("A surface just under the max ground angle must qualify")
	}
	if m.isGroundSurface(slopeNormal(31)) {
		t.Error("A surface past the max ground angle must not qualify")
	}
	if m.isGroundSurface(slopeNormal(90)) {
		t.Error("A wall must never qualify as ground")
	}
}

func TestNonGroundTag(t *testing.T) {
	e := engine.NewEntity("Platform")
	e.Tags = []string{TagNonGround}
	c, err := physics.NewCollider(e, physics.Box{Size: rl.Vector3{X: 1, Y: 1, Z: 1}}, physics.LayerStatic)
	if err != nil {
		t.Fatalf("NewCollider: %v", err)
	}

	if !isNonGroundCollider(c) {
		t.Error("Tagged entity should be non-ground")
	}
	if isNonGroundCollider(nil) {
		t.Error("A nil collider is not non-ground")
	}
}

func TestGroundProbeFallback(t *testing.T) {
	w := physics.NewWorld()
	addFloor(t, w)
	// Resting just above the floor without any impact this step.
	m := newTestMover(t, w, nil, rl.Vector3{Y: 0.55})

	m.Update(0.001)

	if !m.Grounded {
		t.Error("Supplementary probe should ground a mover hovering within probe range")
	}
}

func TestNoGroundBeyondProbeRange(t *testing.T) {
	w := physics.NewWorld()
	addFloor(t, w)
	m := newTestMover(t, w, nil, rl.Vector3{Y: 2})
	m.UseGravity = false

	m.Update(0.001)

	if m.Grounded {
		t.Error("A mover well above the floor must not be grounded")
	}
}

func TestNonGroundSurfaceDoesNotGround(t *testing.T) {
	w := physics.NewWorld()
	floor := addFloor(t, w)
	floor.Entity.Tags = []string{TagNonGround}
	m := newTestMover(t, w, nil, rl.Vector3{Y: 2})

	for i := 0; i < 30; i++ {
		m.Update(0.1)
	}

	if m.Grounded {
		t.Error("A non-ground surface must never set the grounded state")
	}
}

func TestLandingDampsHorizontalForce(t *testing.T) {
	m := New(physics.NewWorld(), nil, nil)
	m.Velocity.Force = rl.Vector3{X: 4, Y: -6}

	m.setGroundState(true, rl.Vector3{Y: 1})

	if !near(m.Velocity.Force.X, 2, 0.0001) {
		t.Errorf("Expected the horizontal force halved on landing, got %f", m.Velocity.Force.X)
	}
	if !near(m.Velocity.Force.Y, -6, 0.0001) {
		t.Errorf("Landing damp must keep the vertical force, got %f", m.Velocity.Force.Y)
	}
}

func TestLandingConsumesFallForce(t *testing.T) {
	w := physics.NewWorld()
	addFloor(t, w)
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})

	for i := 0; i < 120; i++ {
		m.Update(1.0 / 60)
	}

	if !m.Grounded {
		t.Fatal("The mover should have landed")
	}
	// The fall speed accumulated on the way down must be consumed by the
	// landing impact, not left in the force while gravity is suspended.
	if !near(m.Velocity.Force.Y, 0, 0.01) {
		t.Errorf("Expected the fall force consumed on landing, got Force.Y=%f", m.Velocity.Force.Y)
	}

	// Off the ledge again, gravity restarts from rest rather than from the
	// old fall speed.
	m.Grounded = false
	m.Update(1.0 / 60)
	if m.Velocity.Force.Y < -1 {
		t.Errorf("Expected gravity to re-accumulate from rest, got Force.Y=%f", m.Velocity.Force.Y)
	}
}

func TestGroundedChangeFiresOnTransitionsOnly(t *testing.T) {
	m := New(physics.NewWorld(), nil, nil)

	events := 0
	m.OnGroundedChanged.AddListener(func(bool) { events++ })

	up := rl.Vector3{Y: 1}
	m.setGroundState(true, up)
	m.setGroundState(true, up)
	m.setGroundState(false, up)
	m.setGroundState(false, up)

	if events != 2 {
		t.Errorf("Expected two transitions, got %d", events)
	}
}

func TestDynamicGravityFollowsGroundNormal(t *testing.T) {
	m := New(physics.NewWorld(), nil, nil)
	m.DynamicGravity = true

	normal := rl.Vector3Normalize(rl.Vector3{X: 0.2, Y: 1})
	m.updateGravitySense(true, normal)

	want := rl.Vector3Scale(normal, -1)
	if !near(m.GravitySense.X, want.X, 0.0001) || !near(m.GravitySense.Y, want.Y, 0.0001) {
		t.Errorf("Expected gravity sense %v, got %v", want, m.GravitySense)
	}
}
