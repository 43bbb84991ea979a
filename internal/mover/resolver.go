package mover

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"physics3d/internal/physics"
)

// castAll merges CastAll results from every solid collider the mover owns,
// producing one distance-sorted, deduplicated hit list. Returns the number
// of hits in the consistent band of the primary and the full set.
func (m *Mover) castAll(direction rl.Vector3, maxDistance float32) (int, []CollisionHit) {
	ctx := m.ctx
	ctx.hitBuf = ctx.hitBuf[:0]

	mask := m.collisionMask()
	ignore := m.ownColliders(ctx.ignoreBuf[:0])

	for _, q := range m.queries {
		ctx.castBuf = ctx.castBuf[:0]
		count, _, hits := q.CastAll(direction, maxDistance, mask, physics.IgnoreTriggers, ignore, ctx.castBuf)
		ctx.castBuf = hits
		for i := 0; i < count && i < len(hits); i++ {
			ctx.hitBuf = append(ctx.hitBuf, CollisionHit{
				RaycastHit: hits[i],
				Source:     q.Collider,
				Mover:      moverOf(hits[i].Collider),
			})
		}
	}

	ctx.hitBuf = sortAndDedupHits(ctx.hitBuf)
	if len(ctx.hitBuf) == 0 {
		return 0, ctx.hitBuf
	}

	primary := ctx.hitBuf[0].Distance
	consistent := 1
	for i := 1; i < len(ctx.hitBuf); i++ {
		if ctx.hitBuf[i].Distance <= primary+m.settings.ConsistentHitRange {
			consistent++
		} else {
			break
		}
	}
	return consistent, ctx.hitBuf
}

// freeDistance is what a cast reports when nothing was hit: the requested
// distance minus one contact offset, never negative.
func (m *Mover) freeDistance(requested float32) float32 {
	free := requested - m.settings.ContactOffset
	if free < 0 {
		return 0
	}
	return free
}

// resolveCollisions runs the full cast-and-slide pass for one composed
// frame velocity and mutates the mover's transform.
func (m *Mover) resolveCollisions(fv FrameVelocity) *CollisionResult {
	res := &m.ctx.result
	res.reset(fv)
	startPosition := m.Position()

	// Instant displacement is handled once, outside the recursion:
	// teleport-like motion does not participate in iterative sliding.
	if !almostZeroVec(fv.Instant) {
		distance := rl.Vector3Length(fv.Instant)
		direction := rl.Vector3Scale(fv.Instant, 1/distance)

		count, hits := m.castAll(direction, distance)
		if count > 0 {
			m.translate(rl.Vector3Scale(direction, hits[0].Distance))
			m.computeImpacts(res, hits[:count])
		} else {
			m.translate(fv.Instant)
		}
	}

	budget := m.MaxIterations
	if budget < 1 {
		budget = 1
	}
	m.resolveRecursive(res, budget)

	m.policy.OnCollisionBreak(m, res)

	res.AppliedVelocity = rl.Vector3Subtract(m.Position(), startPosition)
	m.Velocity.resetFrame()
	m.classifyGround(res)
	return res
}

// resolveRecursive is the cast-and-slide loop. Terminal on: zero remaining
// dynamic velocity, zero hits, exhausted budget, or a zero-distance hit
// (stuck).
func (m *Mover) resolveRecursive(res *CollisionResult, budget int) {
	if almostZeroVec(res.DynamicVelocity) {
		return
	}

	distance := rl.Vector3Length(res.DynamicVelocity)
	direction := rl.Vector3Scale(res.DynamicVelocity, 1/distance)

	count, hits := m.castAll(direction, distance)
	if count == 0 {
		m.translate(res.DynamicVelocity)
		res.DynamicVelocity = rl.Vector3{}
		return
	}

	primary := hits[0]
	if primary.Distance <= 0 {
		// Interpenetrating: compute impacts without moving.
		m.computeImpacts(res, hits[:count])
		return
	}

	travelled := primary.Distance
	m.translate(rl.Vector3Scale(direction, travelled))
	res.DynamicVelocity = rl.Vector3Subtract(res.DynamicVelocity, rl.Vector3Scale(direction, travelled))

	m.computeImpacts(res, hits[:count])

	if budget-1 == 0 {
		return
	}

	m.policy.OnComputeCollision(m, res, primary)

	if almostZeroVec(res.DynamicVelocity) {
		return
	}
	m.resolveRecursive(res, budget-1)
}

// computeImpacts processes one consistent hit set. Two passes by design:
// the first determines how far this body may still travel (multiplicative
// push-resistance chain, collapsing to zero on any hard obstacle), the
// second displaces the movers it grazed using each one's individual
// coefficient.
func (m *Mover) computeImpacts(res *CollisionResult, hits []CollisionHit) {
	pushVelocity := res.DynamicVelocity

	coef := float32(1)
	for i := range hits {
		hit := &hits[i]
		if hit.Mover != nil {
			hit.Mover.notifyHitBy(m, hit.RaycastHit)
			coef *= m.PushVelocityCoef(hit.Mover)
		} else {
			// A hard obstacle in the set: no travel through it at all.
			coef = 0
		}
	}

	for i := range hits {
		hit := &hits[i]
		if hit.Mover != nil && hit.Mover.Enabled() {
			m.PushObject(hit.Mover, pushVelocity)
		}
	}

	for i := range hits {
		res.DynamicVelocity = m.projectImpact(res.DynamicVelocity, hits[i].Normal, coef)
		m.Velocity.Force = projectForce(m.Velocity.Force, hits[i].Normal, coef)
	}
	res.DynamicVelocity = m.FreezeAxes.mask(res.DynamicVelocity)

	res.Hits = append(res.Hits, hits...)
}

// projectImpact reshapes the remaining velocity against one surface. The
// component driving into the surface survives only to the extent the chain
// coefficient lets the body travel through pushable hits; the tangential
// component survives when surface sliding is enabled.
func (m *Mover) projectImpact(velocity, normal rl.Vector3, coef float32) rl.Vector3 {
	if almostZeroVec(velocity) {
		return velocity
	}
	into := rl.Vector3DotProduct(velocity, normal)
	if into >= 0 {
		return velocity
	}
	normalPart := rl.Vector3Scale(normal, into)
	tangential := rl.Vector3Subtract(velocity, normalPart)
	if !m.SlideOnSurfaces {
		tangential = rl.Vector3{}
	}
	return rl.Vector3Add(tangential, rl.Vector3Scale(normalPart, coef))
}

// projectForce removes the persistent force component driving into a hit
// surface, attenuated by the same chain coefficient as the travel. The
// tangential component always survives. Gravity is suspended while grounded,
// so the landing impact is the only place the accumulated fall speed gets
// consumed.
func projectForce(force, normal rl.Vector3, coef float32) rl.Vector3 {
	if almostZeroVec(force) {
		return force
	}
	into := rl.Vector3DotProduct(force, normal)
	if into >= 0 {
		return force
	}
	normalPart := rl.Vector3Scale(normal, into)
	tangential := rl.Vector3Subtract(force, normalPart)
	return rl.Vector3Add(tangential, rl.Vector3Scale(normalPart, coef))
}

func moverOf(c *physics.Collider) *Mover {
	if c == nil || c.Entity == nil {
		return nil
	}
	return engineGetMover(c.Entity)
}
