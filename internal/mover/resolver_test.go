package mover

import (
	"testing"

	rl "github.com/gen2brain/raylib-go/raylib"

	"physics3d/internal/engine"
	"physics3d/internal/physics"
)

func TestSortAndDedupKeepsCloserHit(t *testing.T) {
	e := engine.NewEntity("Obstacle")
	shared, err := physics.NewCollider(e, physics.Box{Size: rl.Vector3{X: 1, Y: 1, Z: 1}}, physics.LayerStatic)
	if err != nil {
		t.Fatalf("NewCollider: %v", err)
	}
	other, err := physics.NewCollider(e, physics.Box{Size: rl.Vector3{X: 1, Y: 1, Z: 1}}, physics.LayerStatic)
	if err != nil {
		t.Fatalf("NewCollider: %v", err)
	}

	hits := []CollisionHit{
		{RaycastHit: physics.RaycastHit{Collider: shared, Distance: 2.0}},
		{RaycastHit: physics.RaycastHit{Collider: other, Distance: 1.5}},
		{RaycastHit: physics.RaycastHit{Collider: shared, Distance: 0.5}},
	}

	out := sortAndDedupHits(hits)

	if len(out) != 2 {
		t.Fatalf("Expected the duplicate collapsed, got %d hits", len(out))
	}
	if out[0].Collider != shared || out[0].Distance != 0.5 {
		t.Errorf("Expected the closer duplicate first, got %+v", out[0])
	}
	if out[1].Collider != other {
		t.Errorf("Expected the other collider second, got %+v", out[1])
	}
}

func TestCastNeverExceedsRequestedDistance(t *testing.T) {
	w := physics.NewWorld()
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})

	for _, distance := range []float32{0.001, 0.01, 0.5, 3} {
		count, hits := m.castAll(rl.Vector3{X: 1}, distance)
		if count != 0 {
			t.Fatalf("Empty world should produce no hits, got %d", count)
		}
		_ = hits
		free := m.freeDistance(distance)
		if free < 0 {
			t.Errorf("Free distance for request %f is negative: %f", distance, free)
		}
		if free > distance {
			t.Errorf("Free distance %f exceeds request %f", free, distance)
		}
	}
}

func TestPaddedCastClampsToRequest(t *testing.T) {
	w := physics.NewWorld()
	// Wall face 1.015 beyond the mover surface: past the requested travel
	// of 1.0 but inside the cast's contact-offset expansion band.
	addStatic(t, w, "Wall", rl.Vector3{X: 2.015, Y: 5}, rl.Vector3{X: 1, Y: 4, Z: 10})
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false
	m.MaxIterations = 1

	m.Velocity.Movement = rl.Vector3{X: 1}
	m.Update(1)

	limit := 1 - m.settings.ContactOffset
	if m.Position().X > limit+0.0001 {
		t.Errorf("Travel exceeded the requested distance, got x=%f", m.Position().X)
	}
	if m.Position().X < 0.9 {
		t.Errorf("Expected travel close to the request, got x=%f", m.Position().X)
	}
}

func TestCastAllReportsConsistentBand(t *testing.T) {
	w := physics.NewWorld()
	// Two walls at the same distance form one consistent set.
	addStatic(t, w, "Left", rl.Vector3{X: 2, Y: 5, Z: -1}, rl.Vector3{X: 1, Y: 4, Z: 1.5})
	addStatic(t, w, "Right", rl.Vector3{X: 2, Y: 5, Z: 1}, rl.Vector3{X: 1, Y: 4, Z: 1.5})
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})

	count, hits := m.castAll(rl.Vector3{X: 1}, 3)
	if len(hits) != 2 {
		t.Fatalf("Expected hits on both walls, got %d", len(hits))
	}
	if count != 2 {
		t.Errorf("Equidistant hits should land in one consistent set, got %d", count)
	}
}

func TestResolveZeroVelocityIsIdempotent(t *testing.T) {
	w := physics.NewWorld()
	addFloor(t, w)
	m := newTestMover(t, w, nil, rl.Vector3{Y: 0.51})
	m.UseGravity = false

	before := m.Position()
	res := m.Resolve(FrameVelocity{Rotation: rl.QuaternionIdentity()})

	if m.Position() != before {
		t.Errorf("Zero velocity moved the mover: %v -> %v", before, m.Position())
	}
	if !almostZeroVec(res.AppliedVelocity) {
		t.Errorf("Expected zero applied velocity, got %v", res.AppliedVelocity)
	}
}

func TestAppliedVelocityMatchesPositionDelta(t *testing.T) {
	w := physics.NewWorld()
	addStatic(t, w, "Wall", rl.Vector3{X: 2, Y: 5}, rl.Vector3{X: 1, Y: 4, Z: 10})
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false

	start := m.Position()
	m.Velocity.Movement = rl.Vector3{X: 5}
	res := m.resolveCollisions(m.computeFrameVelocity(1))

	delta := rl.Vector3Subtract(m.Position(), start)
	if !near(res.AppliedVelocity.X, delta.X, 0.0001) {
		t.Errorf("Applied velocity %v does not match position delta %v", res.AppliedVelocity, delta)
	}
	if len(res.Hits) == 0 {
		t.Error("The wall impact should be recorded in the result")
	}
}

func TestInstantDisplacementRespectsObstacles(t *testing.T) {
	w := physics.NewWorld()
	addStatic(t, w, "Wall", rl.Vector3{X: 2, Y: 5}, rl.Vector3{X: 1, Y: 4, Z: 10})
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false

	m.Velocity.Instant = rl.Vector3{X: 5}
	m.Update(1)

	if m.Position().X > 1.01 {
		t.Errorf("Instant displacement must still stop at walls, got x=%f", m.Position().X)
	}
}

func TestIterationBudgetTerminates(t *testing.T) {
	w := physics.NewWorld()
	// A tight corner: two angled walls the mover keeps sliding between.
	addStatic(t, w, "WallX", rl.Vector3{X: 2, Y: 5}, rl.Vector3{X: 1, Y: 4, Z: 10})
	addStatic(t, w, "WallZ", rl.Vector3{Z: 2, Y: 5}, rl.Vector3{X: 10, Y: 4, Z: 1})
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false
	m.MaxIterations = 2

	m.Velocity.Movement = rl.Vector3{X: 5, Z: 5}
	m.Update(1) // must return, budget bounds the recursion

	pos := m.Position()
	if pos.X > 1.01 || pos.Z > 1.01 {
		t.Errorf("Corner must contain the mover, got %v", pos)
	}
}

func TestPushScenarioTwoMovers(t *testing.T) {
	w := physics.NewWorld()
	a := newSphereMover(t, w, "A", rl.Vector3{})
	b := newSphereMover(t, w, "B", rl.Vector3{X: 1.4})
	a.UseGravity = false
	b.UseGravity = false
	a.Weight = 10
	a.PushRangeMin = 0
	a.PushRangeMax = 20
	b.Weight = 5 // coefficient 0.75 for A pushing B

	a.Velocity.Movement = rl.Vector3{X: 1}
	a.Update(1)

	// A travels 0.39 to contact; of the remaining 0.61, the 0.75
	// coefficient lets it advance about 0.46 while B is displaced by the
	// same coefficient of the remaining push velocity.
	if !near(b.Position().X, 1.4+0.61*0.75, 0.03) {
		t.Errorf("Expected B displaced by coef*remaining, got x=%f", b.Position().X)
	}
	wantA := float32(0.39 + 0.61*0.75)
	if !near(a.Position().X, wantA, 0.05) {
		t.Errorf("Expected A's travel reduced proportionally to %f, got %f", wantA, a.Position().X)
	}
}

func TestRockBlocksPusher(t *testing.T) {
	w := physics.NewWorld()
	a := newSphereMover(t, w, "A", rl.Vector3{})
	b := newSphereMover(t, w, "B", rl.Vector3{X: 1.4})
	a.UseGravity = false
	b.UseGravity = false
	a.PushRangeMin = 0
	a.PushRangeMax = 20
	b.IsRock = true

	a.Velocity.Movement = rl.Vector3{X: 1}
	a.Update(1)

	if b.Position().X != 1.4 {
		t.Errorf("A rock must not be pushed, got x=%f", b.Position().X)
	}
	if a.Position().X > 0.41 {
		t.Errorf("The pusher must stop at the rock, got x=%f", a.Position().X)
	}
}

type hitRecorder struct {
	engine.BaseComponent
	hits []physics.RaycastHit
}

func (h *hitRecorder) OnHitByMover(by *Mover, hit physics.RaycastHit) {
	h.hits = append(h.hits, hit)
}

func TestHitNotificationReachesComponents(t *testing.T) {
	w := physics.NewWorld()
	a := newSphereMover(t, w, "A", rl.Vector3{})
	b := newSphereMover(t, w, "B", rl.Vector3{X: 1.4})
	a.UseGravity = false
	b.UseGravity = false
	a.PushRangeMin = 0
	a.PushRangeMax = 20
	recorder := &hitRecorder{}
	b.GetEntity().AddComponent(recorder)

	a.Velocity.Movement = rl.Vector3{X: 1}
	a.Update(1)

	if len(recorder.hits) == 0 {
		t.Error("The hit mover's components should be notified")
	}
}

func TestStuckMoverDoesNotTunnel(t *testing.T) {
	w := physics.NewWorld()
	// Start already overlapping the wall.
	addStatic(t, w, "Wall", rl.Vector3{X: 0.6, Y: 5}, rl.Vector3{X: 1, Y: 4, Z: 10})
	m := newTestMover(t, w, nil, rl.Vector3{Y: 5})
	m.UseGravity = false

	m.Velocity.Movement = rl.Vector3{X: 5}
	m.Update(1)

	if m.Position().X > 0.001 {
		t.Errorf("A stuck mover must not advance through the obstacle, got x=%f", m.Position().X)
	}
}
