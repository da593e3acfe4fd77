// Package anim plays montages on a unit, tick by tick, and dispatches their
// timed notifies. There is no pose evaluation: only timing matters.
package anim

import (
	"log/slog"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/event"
)

// MontageInstance is one playback of a montage.
// The delegates fire at most once each; the argument is the interrupted flag.
type MontageInstance struct {
	ID       uint64
	Montage  *data.Montage
	Rate     float64
	Position float64

	OnBlendingOut event.Delegate[bool]
	OnEnded       event.Delegate[bool]

	blendingOut   bool
	interrupted   bool
	ended         bool
	blendOutTimer float64
}

// IsBlendingOut returns true once blend-out has started.
func (m *MontageInstance) IsBlendingOut() bool {
	return m.blendingOut
}

// IsInterrupted returns true if the playback was stopped before its natural end.
func (m *MontageInstance) IsInterrupted() bool {
	return m.interrupted
}

// IsEnded returns true after OnEnded has been dispatched.
func (m *MontageInstance) IsEnded() bool {
	return m.ended
}

// UnbindDelegates clears OnBlendingOut and OnEnded.
func (m *MontageInstance) UnbindDelegates() {
	m.OnBlendingOut.Unbind()
	m.OnEnded.Unbind()
}

// NotifyHandler receives notifies crossed during playback.
type NotifyHandler func(inst *MontageInstance, n data.Notify)

// Instance is the montage player of one unit.
// Not safe for concurrent use, driven by the world tick.
type Instance struct {
	active   *MontageInstance
	nextID   uint64
	onNotify NotifyHandler
}

// NewInstance creates an idle player.
func NewInstance() *Instance {
	return &Instance{}
}

// SetNotifyHandler installs the notify callback.
func (a *Instance) SetNotifyHandler(fn NotifyHandler) {
	a.onNotify = fn
}

// Active returns the montage instance currently playing, or nil.
func (a *Instance) Active() *MontageInstance {
	return a.active
}

// IsPlaying returns true if m is the montage currently playing.
func (a *Instance) IsPlaying(m *data.Montage) bool {
	return m != nil && a.active != nil && a.active.Montage == m
}

// Play starts m at rate from section (empty = montage start) and returns the
// play length in seconds, or 0 if the montage could not be played.
// A montage already playing is interrupted first.
func (a *Instance) Play(m *data.Montage, rate float64, section string) float64 {
	if m == nil || rate <= 0 || m.Length <= 0 {
		return 0
	}

	if prev := a.active; prev != nil {
		a.interrupt(prev, 0)
		a.finish(prev)
	}

	a.nextID++
	inst := &MontageInstance{
		ID:      a.nextID,
		Montage: m,
		Rate:    rate,
	}
	if section != "" {
		inst.Position = m.SectionStart(section)
	}
	a.active = inst

	slog.Debug("montage started", "montage", m.Name, "rate", rate, "section", section)
	return (m.Length - inst.Position) / rate
}

// Stop interrupts the active montage, blending out over blendOut seconds.
func (a *Instance) Stop(blendOut float64) {
	inst := a.active
	if inst == nil || inst.ended {
		return
	}
	a.interrupt(inst, blendOut)
	if inst.blendOutTimer <= 0 {
		a.finish(inst)
	}
}

// Tick advances the active montage by dt seconds.
func (a *Instance) Tick(dt float64) {
	inst := a.active
	if inst == nil || dt <= 0 {
		return
	}

	if inst.interrupted {
		inst.blendOutTimer -= dt
		if inst.blendOutTimer <= 0 {
			a.finish(inst)
		}
		return
	}

	from := inst.Position
	inst.Position = min(inst.Position+dt*inst.Rate, inst.Montage.Length)

	for _, n := range inst.Montage.NotifiesBetween(from, inst.Position) {
		if a.onNotify != nil {
			a.onNotify(inst, n)
		}
		// a notify handler may have stopped or replaced the montage
		if a.active != inst || inst.interrupted {
			return
		}
	}

	if !inst.blendingOut && inst.Montage.Length-inst.Position <= inst.Montage.BlendOutTime {
		inst.blendingOut = true
		inst.OnBlendingOut.Execute(false)
		if a.active != inst {
			return
		}
	}

	if inst.Position >= inst.Montage.Length {
		a.finish(inst)
	}
}

func (a *Instance) interrupt(inst *MontageInstance, blendOut float64) {
	if inst.interrupted || inst.ended {
		return
	}
	inst.interrupted = true
	inst.blendOutTimer = blendOut
	if !inst.blendingOut {
		inst.blendingOut = true
		inst.OnBlendingOut.Execute(true)
	}
}

func (a *Instance) finish(inst *MontageInstance) {
	if inst.ended {
		return
	}
	inst.ended = true
	if a.active == inst {
		a.active = nil
	}
	inst.OnEnded.Execute(inst.interrupted)
}
