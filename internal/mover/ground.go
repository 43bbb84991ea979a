package mover

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"physics3d/internal/physics"
)

// TagNonGround marks an entity whose surfaces never qualify as ground,
// regardless of their angle.
const TagNonGround = "non-ground"

// isGroundSurface reports whether a surface normal lies within the maximum
// ground angle of up (the inverse of the gravity sense).
func (m *Mover) isGroundSurface(normal rl.Vector3) bool {
	up := rl.Vector3Scale(m.GravitySense, -1)
	return angleBetweenDeg(normal, up) <= m.settings.MaxGroundAngle
}

func isNonGroundCollider(c *physics.Collider) bool {
	return c != nil && c.Entity != nil && c.Entity.HasTag(TagNonGround)
}

// classifyGround settles the grounded state after a resolution pass.
func (m *Mover) classifyGround(res *CollisionResult) {
	grounded := res.Grounded
	normal := m.GroundNormal

	// Scan the hit buffer in reverse: the most recent impact is the most
	// trustworthy description of what the mover currently rests on.
	if !grounded && m.UseGravity {
		for i := len(res.Hits) - 1; i >= 0; i-- {
			hit := res.Hits[i]
			if isNonGroundCollider(hit.Collider) {
				continue
			}
			if m.isGroundSurface(hit.Normal) {
				grounded = true
				normal = hit.Normal
				break
			}
		}
	}

	// Supplementary probes, for the frames where the mover rests on ground
	// without generating an impact.
	if !grounded && m.UseGravity {
		if hit, ok := m.groundProbe(); ok {
			grounded = true
			normal = hit.Normal
		}
	}

	m.setGroundState(grounded, normal)

	if m.DynamicGravity {
		m.updateGravitySense(grounded, normal)
	}
}

// groundProbe fires the two fallback queries: a short ray from the
// collider's underside along the inverse ground normal, then a short shape
// cast along the gravity sense.
func (m *Mover) groundProbe() (physics.RaycastHit, bool) {
	if len(m.queries) == 0 {
		return physics.RaycastHit{}, false
	}
	main := m.queries[0]
	distance := m.settings.GroundDetectionDistance
	mask := m.collisionMask()
	ignore := m.ownColliders(m.ctx.ignoreBuf[:0])

	down := rl.Vector3Scale(m.GroundNormal, -1)
	if hit, ok := main.Raycast(down, distance, mask, physics.IgnoreTriggers, ignore); ok {
		if !isNonGroundCollider(hit.Collider) && m.isGroundSurface(hit.Normal) {
			return hit, true
		}
	}

	m.ctx.castBuf = m.ctx.castBuf[:0]
	count, primary, hits := main.CastAll(m.GravitySense, distance, mask, physics.IgnoreTriggers, ignore, m.ctx.castBuf)
	m.ctx.castBuf = hits
	if count > 0 {
		if !isNonGroundCollider(primary.Collider) && m.isGroundSurface(primary.Normal) {
			return primary, true
		}
	}
	return physics.RaycastHit{}, false
}

// setGroundState records the transition. Landing with force still applied
// damps the horizontal force component, simulating landing friction.
func (m *Mover) setGroundState(grounded bool, normal rl.Vector3) {
	if grounded && !m.Grounded && !almostZeroVec(m.Velocity.Force) {
		damped := rl.Vector3Scale(flat(m.Velocity.Force), m.settings.LandingForceMultiplier)
		m.Velocity.Force = rl.Vector3{X: damped.X, Y: m.Velocity.Force.Y, Z: damped.Z}
	}

	changed := grounded != m.Grounded
	m.Grounded = grounded
	if grounded {
		m.GroundNormal = normal
	}
	if changed {
		m.OnGroundedChanged.Invoke(grounded)
	}
}

// updateGravitySense re-derives the gravity sense in dynamic-gravity mode:
// movers always fall toward the last detected surface. While airborne, a
// probe along the current sense keeps it stable until the mover truly
// leaves the surface's influence.
func (m *Mover) updateGravitySense(grounded bool, normal rl.Vector3) {
	if grounded {
		m.GravitySense = rl.Vector3Scale(rl.Vector3Normalize(normal), -1)
		return
	}
	if len(m.queries) == 0 {
		return
	}
	main := m.queries[0]
	ignore := m.ownColliders(m.ctx.ignoreBuf[:0])

	m.ctx.castBuf = m.ctx.castBuf[:0]
	count, primary, hits := main.CastAll(m.GravitySense, m.settings.DynamicGravityDetectionDistance,
		m.collisionMask(), physics.IgnoreTriggers, ignore, m.ctx.castBuf)
	m.ctx.castBuf = hits
	if count > 0 && !isNonGroundCollider(primary.Collider) && m.isGroundSurface(primary.Normal) {
		m.GravitySense = rl.Vector3Scale(rl.Vector3Normalize(primary.Normal), -1)
	}
}
