package mover

import (
	rl "github.com/gen2brain/raylib-go/raylib"
)

// FrameVelocity is the step-scoped resolved displacement: movement, force
// and instant contributions for this step, plus the rotation snapshot they
// were decomposed against. It never survives past one step.
type FrameVelocity struct {
	Movement rl.Vector3
	Force    rl.Vector3
	Instant  rl.Vector3

	Rotation  rl.Quaternion
	DeltaTime float32
}

// Dynamic is the portion of the frame displacement subject to iterative
// collision sliding.
func (fv FrameVelocity) Dynamic() rl.Vector3 {
	return rl.Vector3Add(fv.Movement, fv.Force)
}

// FreezeAxes masks world-space displacement per axis.
type FreezeAxes struct {
	X, Y, Z bool
}

func (f FreezeAxes) mask(v rl.Vector3) rl.Vector3 {
	if f.X {
		v.X = 0
	}
	if f.Y {
		v.Y = 0
	}
	if f.Z {
		v.Z = 0
	}
	return v
}

// computeFrameVelocity turns the velocity model into this step's
// displacement and prepares Force for the next step.
func (m *Mover) computeFrameVelocity(deltaTime float32) FrameVelocity {
	vel := &m.Velocity
	rotation := m.entityRotation()
	inverse := rl.QuaternionInvert(rotation)

	// Timed entries contribute into Instant before anything else.
	vel.advanceOverTime(deltaTime)

	// Decompose into mover-local space against the rotation snapshot.
	localMovement := rl.Vector3RotateByQuaternion(vel.Movement, inverse)
	localForce := rl.Vector3RotateByQuaternion(vel.Force, inverse)

	// Fold one-frame movement intent in as an equivalent continuous rate so
	// it obeys the same math as sustained movement.
	if !almostZeroVec(vel.InstantMovement) && !almostZero(deltaTime*m.Speed) {
		rate := rl.Vector3Scale(vel.InstantMovement, 1/(deltaTime*m.Speed))
		localMovement = rl.Vector3Add(localMovement, rate)
	}

	// Opposing vertical intents cancel symmetrically, preventing a jump
	// force from being doubled against a downward movement intent.
	if !almostZero(localMovement.Y) && !almostZero(localForce.Y) &&
		(localMovement.Y > 0) != (localForce.Y > 0) {
		mv, fv := localMovement.Y, localForce.Y
		localMovement.Y = towardZero(mv, absf(fv))
		localForce.Y = towardZero(fv, absf(mv))
	}

	// Blend flat components toward mutual perpendicularity instead of
	// simply adding them, so combined horizontal movement and force never
	// exceed either magnitude.
	flatMovement := rl.Vector3Scale(flat(localMovement), m.Speed)
	flatForce := flat(localForce)

	hadPair := !almostZeroVec(flatMovement) && !almostZeroVec(flatForce)
	if hadPair {
		movementMag := rl.Vector3Length(flatMovement)
		forceMag := rl.Vector3Length(flatForce)

		perpMovement := projectOnPlane(flatMovement, rl.Vector3Scale(flatForce, 1/forceMag))
		perpForce := projectOnPlane(flatForce, rl.Vector3Scale(flatMovement, 1/movementMag))

		flatMovement = moveTowards(flatMovement, perpMovement, deltaTime*forceMag)
		flatForce = moveTowards(flatForce, perpForce, deltaTime*movementMag)
	}

	// One-shot absorption at the flat-movement zero crossing: stopping an
	// opposing movement resumes the pre-existing force trajectory instead
	// of snapping.
	if m.EqualizeVelocity && almostZeroVec(flatMovement) && m.hadFlatPair {
		flatForce = rl.Vector3Add(m.prevFlatForce, m.prevFlatMovement)
	}

	m.prevFlatMovement = flatMovement
	m.prevFlatForce = flatForce
	m.hadFlatPair = hadPair

	coef := m.velocityCoef
	movementLocal := rl.Vector3{X: flatMovement.X, Y: localMovement.Y * m.Speed, Z: flatMovement.Z}
	forceLocal := rl.Vector3{X: flatForce.X, Y: localForce.Y, Z: flatForce.Z}

	frame := FrameVelocity{
		Movement:  rl.Vector3Scale(rl.Vector3RotateByQuaternion(movementLocal, rotation), deltaTime*coef),
		Force:     rl.Vector3Scale(rl.Vector3RotateByQuaternion(forceLocal, rotation), deltaTime*coef),
		Instant:   vel.Instant,
		Rotation:  rotation,
		DeltaTime: deltaTime,
	}

	// Decelerate the flat force for the next step only; this step's
	// displacement keeps the full value.
	deceleration := m.settings.AirDeceleration
	if m.Grounded {
		deceleration = m.settings.GroundDeceleration
	}
	nextFlatForce := moveTowards(flatForce, rl.Vector3{}, deceleration*deltaTime)
	nextLocal := rl.Vector3{X: nextFlatForce.X, Y: localForce.Y, Z: nextFlatForce.Z}
	vel.Force = rl.Vector3RotateByQuaternion(nextLocal, rotation)

	frame.Movement = m.FreezeAxes.mask(frame.Movement)
	frame.Force = m.FreezeAxes.mask(frame.Force)
	frame.Instant = m.FreezeAxes.mask(frame.Instant)

	return frame
}
