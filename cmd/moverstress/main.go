// Stress test for the mover resolution pipeline: measures full-step cost
// across scene sizes.
package main

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"physics3d/internal/engine"
	"physics3d/internal/mover"
	"physics3d/internal/physics"
)

const (
	tickDelta  = float32(1.0 / 60.0)
	warmupTick = 10
	timedTicks = 120
)

func main() {
	counts := []struct {
		movers  int
		statics int
	}{
		{10, 50},
		{50, 200},
		{100, 500},
		{250, 1000},
		{500, 2000},
	}

	for _, c := range counts {
		runScene(c.movers, c.statics)
	}
}

func runScene(moverCount, staticCount int) {
	rng := rand.New(rand.NewSource(42)) // Consistent results

	world := physics.NewWorld()
	settings := mover.DefaultSettings()

	// Static field scales with count to keep density roughly constant.
	extent := float32(30) + float32(staticCount)/50

	floor := engine.NewEntity("Floor")
	floor.Transform.Position = rl.Vector3{Y: -0.5}
	floorCollider, err := physics.NewCollider(floor, physics.Box{
		Size: rl.Vector3{X: extent * 2, Y: 1, Z: extent * 2},
	}, physics.LayerStatic)
	if err != nil {
		panic(err)
	}
	world.Add(floorCollider)

	for i := 0; i < staticCount; i++ {
		e := engine.NewEntity(fmt.Sprintf("Obstacle%d", i))
		e.Transform.Position = rl.Vector3{
			X: rng.Float32()*extent*2 - extent,
			Y: 0.5 + rng.Float32()*2,
			Z: rng.Float32()*extent*2 - extent,
		}
		c, err := physics.NewCollider(e, physics.Box{
			Size: rl.Vector3{
				X: 0.5 + rng.Float32(),
				Y: 0.5 + rng.Float32()*2,
				Z: 0.5 + rng.Float32(),
			},
		}, physics.LayerStatic)
		if err != nil {
			panic(err)
		}
		world.Add(c)
	}

	movers := make([]*mover.Mover, 0, moverCount)
	for i := 0; i < moverCount; i++ {
		e := engine.NewEntity(fmt.Sprintf("Mover%d", i))
		e.Transform.Position = rl.Vector3{
			X: rng.Float32()*extent*2 - extent,
			Y: 2 + rng.Float32()*3,
			Z: rng.Float32()*extent*2 - extent,
		}

		var policy mover.CollisionPolicy = mover.SimplePolicy{}
		if i%2 == 0 {
			policy = mover.CreaturePolicy{}
		}
		m := mover.New(world, settings, policy)
		e.AddComponent(m)
		if _, err := m.AddCollider(physics.Capsule{
			Radius: 0.4,
			Height: 1.8,
			Axis:   physics.CapsuleAxisY,
		}, rl.Vector3{}); err != nil {
			panic(err)
		}
		m.Weight = 1 + rng.Float32()*9
		m.PushRangeMin = 0
		m.PushRangeMax = 20
		movers = append(movers, m)
	}

	wander := func(tick int) {
		for i, m := range movers {
			angle := float64(tick)/30 + float64(i)
			m.Velocity.Movement = rl.Vector3{
				X: float32(2 * math.Cos(angle)),
				Z: float32(2 * math.Sin(angle)),
			}
			m.Update(tickDelta)
		}
	}

	for tick := 0; tick < warmupTick; tick++ {
		wander(tick)
	}

	start := time.Now()
	for tick := 0; tick < timedTicks; tick++ {
		wander(tick)
	}
	total := time.Since(start)

	perTick := total / timedTicks
	perMover := perTick / time.Duration(moverCount)
	fmt.Printf("%4d movers / %5d statics: %9v per tick | %8v per mover | %d colliders\n",
		moverCount, staticCount, perTick.Round(time.Microsecond),
		perMover.Round(time.Nanosecond), world.ColliderCount())
}
