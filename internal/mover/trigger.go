package mover

import (
	"physics3d/internal/physics"
)

// TriggerObserver receives enter/exit notifications for the mover's
// trigger collider. Each overlapping trigger produces exactly one enter
// and, later, exactly one exit.
type TriggerObserver interface {
	OnEnterTrigger(m *Mover, trigger *physics.Collider)
	OnExitTrigger(m *Mover, trigger *physics.Collider)
}

func (m *Mover) AddTriggerObserver(o TriggerObserver) {
	if o == nil {
		return
	}
	m.observers = append(m.observers, o)
}

func (m *Mover) RemoveTriggerObserver(o TriggerObserver) {
	for i, existing := range m.observers {
		if existing == o {
			m.observers = append(m.observers[:i], m.observers[i+1:]...)
			return
		}
	}
}

// refreshTriggers diffs the overlap set of the trigger collider against
// the active set: new colliders fire an enter, vanished ones an exit. The
// two maps are swapped each step so no allocation happens after warmup.
func (m *Mover) refreshTriggers() {
	if m.trigger == nil || !m.trigger.Enabled {
		return
	}

	ignore := m.ownColliders(m.ctx.ignoreBuf[:0])
	m.ctx.overlapBuf = m.world.Overlap(m.trigger, m.TriggerMask, physics.CollideTriggers, ignore, m.ctx.overlapBuf[:0])

	for _, c := range m.ctx.overlapBuf {
		if !c.IsTrigger {
			continue
		}
		m.currentTriggers[c] = true
		if !m.activeTriggers[c] {
			m.notifyTrigger(c, true)
		}
	}

	for c := range m.activeTriggers {
		if !m.currentTriggers[c] {
			m.notifyTrigger(c, false)
		}
	}

	m.activeTriggers, m.currentTriggers = m.currentTriggers, m.activeTriggers
	clear(m.currentTriggers)
}

// ExitAllTriggers fires an exit for every active trigger. Called when the
// mover is disabled or destroyed so no trigger is left entered forever.
func (m *Mover) ExitAllTriggers() {
	for c := range m.activeTriggers {
		m.notifyTrigger(c, false)
	}
	clear(m.activeTriggers)
	clear(m.currentTriggers)
}

func (m *Mover) notifyTrigger(c *physics.Collider, enter bool) {
	if m.controllers.trigger != nil && m.controllers.trigger.OnTrigger(m, c, enter) {
		return
	}
	for _, o := range m.observers {
		if enter {
			o.OnEnterTrigger(m, c)
		} else {
			o.OnExitTrigger(m, c)
		}
	}
}
