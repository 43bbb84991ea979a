package mover

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// CreaturePolicy extends the standard resolver with walking behaviors:
// flat movement follows the ground plane, low obstacles are climbed as
// steps and losing contact over a small ledge snaps the mover back down.
type CreaturePolicy struct{}

func (CreaturePolicy) Name() string           { return "creature" }
func (CreaturePolicy) DefaultIterations() int { return 5 }

// ComputeVelocity projects the flat movement component onto the ground
// plane while grounded, so walking up or down a slope follows the surface
// instead of driving into it or launching off it. Force and the vertical
// movement component are left untouched.
func (CreaturePolicy) ComputeVelocity(m *Mover, fv *FrameVelocity) {
	if !m.Grounded || almostZeroVec(fv.Movement) {
		return
	}

	up := rl.Vector3RotateByQuaternion(rl.Vector3{Y: 1}, fv.Rotation)
	vertical := rl.Vector3Scale(up, rl.Vector3DotProduct(fv.Movement, up))
	flatPart := rl.Vector3Subtract(fv.Movement, vertical)
	if almostZeroVec(flatPart) {
		return
	}

	magnitude := rl.Vector3Length(flatPart)
	projected := projectOnPlane(flatPart, m.GroundNormal)
	if almostZeroVec(projected) {
		return
	}
	projected = rl.Vector3Scale(rl.Vector3Normalize(projected), magnitude)

	fv.Movement = rl.Vector3Add(vertical, projected)
}

// OnComputeCollision attempts to climb the primary obstacle as a step.
// The mover is displaced exploratorily along the obstacle's uphill
// direction, a validation cast checks the path past the edge is clear, and
// the exploratory displacement is always reverted; on success the climb is
// re-applied through the remaining dynamic velocity so it passes through
// normal resolution.
func (CreaturePolicy) OnComputeCollision(m *Mover, res *CollisionResult, primary CollisionHit) {
	// Walkable surfaces are slopes, not steps.
	if m.isGroundSurface(primary.Normal) {
		return
	}

	up := rl.Vector3Scale(m.GravitySense, -1)
	climbDir := projectOnPlane(up, primary.Normal)
	if almostZeroVec(climbDir) {
		return
	}
	climbDir = rl.Vector3Normalize(climbDir)

	count, hits := m.castAll(climbDir, m.settings.ClimbHeight)
	free := m.freeDistance(m.settings.ClimbHeight)
	if count > 0 {
		free = hits[0].Distance
	}
	if free <= 0 {
		return
	}

	start := m.Position()
	m.translate(rl.Vector3Scale(climbDir, free))

	forward := rl.Vector3Scale(primary.Normal, -1)
	blockedCount, _ := m.castAll(forward, m.settings.ClimbValidationDistance)

	m.setPosition(start)

	if blockedCount > 0 {
		return
	}

	climb := rl.Vector3Scale(climbDir, free)
	climb = clampMagnitude(climb, rl.Vector3Length(res.OriginalVelocity))
	res.DynamicVelocity = rl.Vector3Add(res.DynamicVelocity, climb)
	res.Grounded = true
}

// OnCollisionBreak snaps a walking mover back onto ground it just walked
// off, up to the snap height. Upward motion disables the snap so jumps are
// never pulled back down.
func (CreaturePolicy) OnCollisionBreak(m *Mover, res *CollisionResult) {
	if !m.Grounded {
		return
	}
	if rl.Vector3DotProduct(res.OriginalVelocity, m.GravitySense) < 0 {
		return
	}

	count, hits := m.castAll(m.GravitySense, m.settings.SnapHeight)
	if count == 0 || hits[0].Distance <= 0 {
		return
	}
	if isNonGroundCollider(hits[0].Collider) || !m.isGroundSurface(hits[0].Normal) {
		return
	}

	m.translate(rl.Vector3Scale(m.GravitySense, hits[0].Distance))
	m.computeImpacts(res, hits[:count])
	res.Grounded = true
}
