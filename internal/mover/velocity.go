package mover

import (
	"github.com/gen2brain/raylib-go/easings"
	rl "github.com/gen2brain/raylib-go/raylib"
)

// EaseFunc is an easing curve in the raylib easings signature: current time,
// start value, change in value, duration.
type EaseFunc func(t, b, c, d float32) float32

// VelocityOverTime is a timed displacement contribution: the target
// displacement is consumed incrementally over the duration, shaped by the
// easing curve, and the entry is removed on completion.
type VelocityOverTime struct {
	Target   rl.Vector3
	Duration float32
	Ease     EaseFunc

	elapsed float32
	last    rl.Vector3 // cumulative displacement already handed out
}

// advance moves the entry's timer forward and returns the incremental
// displacement for this step, plus whether the entry completed.
func (v *VelocityOverTime) advance(deltaTime float32) (rl.Vector3, bool) {
	v.elapsed += deltaTime

	t := v.elapsed
	if t > v.Duration {
		t = v.Duration
	}

	ease := v.Ease
	if ease == nil {
		ease = easings.LinearNone
	}

	var ratio float32 = 1
	if v.Duration > 0 {
		ratio = ease(t, 0, 1, v.Duration)
	}

	cumulative := rl.Vector3Scale(v.Target, ratio)
	delta := rl.Vector3Subtract(cumulative, v.last)
	v.last = cumulative

	return delta, v.elapsed >= v.Duration
}

// Velocity is the per-mover velocity state. Movement and InstantMovement are
// reset at the start of every step before being recomputed; Force persists
// across steps and is only touched by gravity, impact projection and
// deceleration.
type Velocity struct {
	Movement        rl.Vector3 // sustained, world space, units/second
	Force           rl.Vector3 // external, world space, units/second
	Instant         rl.Vector3 // one-frame world-space displacement
	InstantMovement rl.Vector3 // one-frame local movement intent

	overTime []*VelocityOverTime
}

// AddOverTime schedules a timed displacement. A nil ease defaults to linear.
func (v *Velocity) AddOverTime(target rl.Vector3, duration float32, ease EaseFunc) *VelocityOverTime {
	entry := &VelocityOverTime{Target: target, Duration: duration, Ease: ease}
	v.overTime = append(v.overTime, entry)
	return entry
}

// OverTimeCount returns the number of active timed entries.
func (v *Velocity) OverTimeCount() int {
	return len(v.overTime)
}

// advanceOverTime folds every active entry's incremental displacement into
// Instant and drops completed entries, preserving order. A positive vertical
// contribution cancels an opposing negative Force.Y so that timed upward
// impulses are not eaten by accumulated gravity.
func (v *Velocity) advanceOverTime(deltaTime float32) {
	if len(v.overTime) == 0 {
		return
	}

	remaining := v.overTime[:0]
	for _, entry := range v.overTime {
		delta, done := entry.advance(deltaTime)
		v.Instant = rl.Vector3Add(v.Instant, delta)

		if delta.Y > velocityEpsilon && v.Force.Y < 0 {
			v.Force.Y = 0
		}
		if !done {
			remaining = append(remaining, entry)
		}
	}
	v.overTime = remaining
}

// resetFrame clears the step-scoped fields after resolution. Force survives.
func (v *Velocity) resetFrame() {
	v.Movement = rl.Vector3{}
	v.InstantMovement = rl.Vector3{}
	v.Instant = rl.Vector3{}
}

// Clear wipes all velocity state, including persistent force and timed
// entries. Used when a mover is disabled.
func (v *Velocity) Clear() {
	v.resetFrame()
	v.Force = rl.Vector3{}
	v.overTime = nil
}
