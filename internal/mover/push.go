package mover

import (
	"github.com/gen2brain/raylib-go/easings"
	rl "github.com/gen2brain/raylib-go/raylib"

	"physics3d/internal/physics"
)

// PushVelocityCoef is how much of this mover's velocity survives when it
// runs into other. The other mover's weight is mapped into this mover's
// push range, inverted so heavy targets absorb more, and shaped by the
// push curve. Rocks absorb everything; a zero-width push range pushes
// nothing.
func (m *Mover) PushVelocityCoef(other *Mover) float32 {
	if other == nil || other.IsRock {
		return 0
	}
	width := m.PushRangeMax - m.PushRangeMin
	if almostZero(width) {
		return 0
	}
	t := clampf((other.Weight-m.PushRangeMin)/width, 0, 1)

	curve := m.PushCurve
	if curve == nil {
		curve = easings.LinearNone
	}
	return clampf(curve(1-t, 0, 1, 1), 0, 1)
}

// PushObject displaces other by velocity scaled with this mover's push
// coefficient for it, honoring the target's frozen axes. Returns the
// displacement actually applied.
func (m *Mover) PushObject(other *Mover, velocity rl.Vector3) rl.Vector3 {
	coef := m.PushVelocityCoef(other)
	if coef <= 0 {
		return rl.Vector3{}
	}
	applied := other.FreezeAxes.mask(rl.Vector3Scale(velocity, coef))
	if almostZeroVec(applied) {
		return rl.Vector3{}
	}
	other.translate(applied)
	other.pendingExtraction = true
	return applied
}

// ExtractFromColliders resolves residual interpenetration around the main
// collider. For each overlapping body the minimum translation vector is
// split between this mover and the other party: pushable movers absorb
// part of it through the push pipeline, rocks absorb none, and a rock
// never moves itself.
func (m *Mover) ExtractFromColliders() {
	if len(m.queries) == 0 {
		return
	}
	main := m.queries[0]
	ignore := m.ownColliders(m.ctx.ignoreBuf[:0])

	m.ctx.overlapBuf = main.Overlap(m.collisionMask(), physics.IgnoreTriggers, ignore, m.ctx.overlapBuf[:0])

	var offset rl.Vector3
	for _, other := range m.ctx.overlapBuf {
		dir, depth, ok := m.world.Penetration(main.Collider, other)
		if !ok {
			continue
		}
		// Displacement that moves this mover fully out of the overlap.
		out := rl.Vector3Scale(dir, depth)

		otherMover := moverOf(other)
		if m.IsRock {
			// Rocks never move; a pushable counterpart takes the full vector.
			if otherMover != nil && !otherMover.IsRock && otherMover.Enabled() {
				otherMover.translate(rl.Vector3Scale(out, -1))
			}
			continue
		}

		if otherMover != nil && otherMover.Enabled() {
			applied := m.PushObject(otherMover, rl.Vector3Scale(out, -1))
			// Whatever the other absorbed reduces what we travel ourselves.
			out = rl.Vector3Add(out, applied)
		}
		offset = rl.Vector3Add(offset, out)
	}

	if !almostZeroVec(offset) {
		m.translate(m.FreezeAxes.mask(offset))
	}
}
