package mover

import (
	"sort"

	rl "github.com/gen2brain/raylib-go/raylib"

	"physics3d/internal/physics"
)

// CollisionHit is one geometric contact found while resolving a step.
type CollisionHit struct {
	physics.RaycastHit

	// Source is the collider on the moving body the cast originated from,
	// relevant when a mover owns several colliders.
	Source *physics.Collider

	// Mover is the body the hit collider belongs to, nil for plain
	// obstacles.
	Mover *Mover
}

// CollisionResult aggregates one resolution pass. It is owned by the
// resolution call; reusing an instance across movers is safe only under
// strictly sequential, single-threaded resolution.
type CollisionResult struct {
	// Hits are the contacts computed during the step, in impact order.
	Hits []CollisionHit

	// OriginalVelocity is the dynamic velocity before any resolution.
	OriginalVelocity rl.Vector3

	// DynamicVelocity is what remains of it.
	DynamicVelocity rl.Vector3

	// AppliedVelocity is the net position delta across the whole step.
	AppliedVelocity rl.Vector3

	// Grounded is set when resolution itself settled the grounded state
	// (step climbing); the ground classifier fills it in otherwise.
	Grounded bool
}

func (r *CollisionResult) reset(fv FrameVelocity) {
	r.Hits = r.Hits[:0]
	r.OriginalVelocity = fv.Dynamic()
	r.DynamicVelocity = r.OriginalVelocity
	r.AppliedVelocity = rl.Vector3{}
	r.Grounded = false
}

// ResolutionContext holds the scratch buffers for one mover's resolution.
// It must never be shared across concurrently resolving movers; each mover
// owns one and the step is atomic.
type ResolutionContext struct {
	result     CollisionResult
	castBuf    []physics.RaycastHit
	hitBuf     []CollisionHit
	ignoreBuf  []*physics.Collider
	overlapBuf []*physics.Collider
}

func newResolutionContext() *ResolutionContext {
	return &ResolutionContext{
		castBuf:   make([]physics.RaycastHit, 0, 16),
		hitBuf:    make([]CollisionHit, 0, 16),
		ignoreBuf: make([]*physics.Collider, 0, 8),
	}
}

func (c *ResolutionContext) release() {
	c.result.Hits = nil
	c.castBuf = nil
	c.hitBuf = nil
	c.ignoreBuf = nil
	c.overlapBuf = nil
}

// sortAndDedupHits orders hits by ascending distance and, when the same
// collider was reached through several source colliders, keeps only the
// closer record. Distance is the tie-break and dedup key.
func sortAndDedupHits(hits []CollisionHit) []CollisionHit {
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })

	seen := make(map[*physics.Collider]bool, len(hits))
	out := hits[:0]
	for _, h := range hits {
		if h.Collider != nil && seen[h.Collider] {
			continue
		}
		if h.Collider != nil {
			seen[h.Collider] = true
		}
		out = append(out, h)
	}
	return out
}
