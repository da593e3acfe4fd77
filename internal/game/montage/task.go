// Package montage plays an ability montage and waits for its gameplay events.
package montage

import (
	"log/slog"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/event"
	"github.com/udisondev/gamekit/internal/game/abilitysystem"
	"github.com/udisondev/gamekit/internal/game/anim"
	"github.com/udisondev/gamekit/internal/game/tag"
	"github.com/udisondev/gamekit/internal/model"
)

// Params configures one PlayMontageAndWaitForEvent task.
type Params struct {
	Montage *data.Montage
	// EventTag filters forwarded gameplay events, empty matches everything.
	// Abilities pass tag.EventAbility so that projectile hits reported to the
	// caster never reach a montage waiting for its cast point.
	EventTag   tag.Tag
	TargetData model.TargetDataHandle
	Rate       float64
	Section    string
	// RootMotionScale is applied to the avatar while the montage plays.
	RootMotionScale     float64
	StopWhenAbilityEnds bool
}

// Task plays a montage in the ability-system montage slot and reports how the
// playback finished. Every signal carries the event data, empty for the
// playback notifications.
type Task struct {
	asc     *abilitysystem.Component
	ability abilitysystem.Ability
	exec    model.ExecutionContext
	params  Params

	inst     *anim.MontageInstance
	listener abilitysystem.ListenerHandle
	cancelH  event.Handle
	active   bool

	Completed     event.Signal[abilitysystem.EventData]
	BlendOut      event.Signal[abilitysystem.EventData]
	Interrupted   event.Signal[abilitysystem.EventData]
	Cancelled     event.Signal[abilitysystem.EventData]
	EventReceived event.Signal[abilitysystem.EventData]
}

// PlayMontageAndWaitForEvent creates a task owned by ability. Call Activate to start it.
func PlayMontageAndWaitForEvent(asc *abilitysystem.Component, ability abilitysystem.Ability, exec model.ExecutionContext, p Params) *Task {
	if p.Rate <= 0 {
		p.Rate = 1
	}
	if p.RootMotionScale <= 0 {
		p.RootMotionScale = 1
	}
	return &Task{asc: asc, ability: ability, exec: exec, params: p}
}

// Montage returns the montage this task plays.
func (t *Task) Montage() *data.Montage {
	return t.params.Montage
}

// Rate returns the play rate.
func (t *Task) Rate() float64 {
	return t.params.Rate
}

// IsActive returns true until the task ends.
func (t *Task) IsActive() bool {
	return t.active
}

// Activate subscribes to gameplay events and starts the montage. When the
// montage cannot be played Cancelled is broadcast.
func (t *Task) Activate() {
	if t.ability == nil {
		return
	}
	if t.asc == nil {
		slog.Warn("montage task without ability system component", "ability", t.ability.Name())
		return
	}
	t.active = true

	t.listener = t.asc.AddGameplayEventListener(t.params.EventTag, t.onGameplayEvent)

	// does not fire the callbacks of the previous montage
	t.asc.CurrentMontageStop()

	played := t.asc.PlayMontage(t.ability, t.params.Montage, t.params.Rate, t.params.Section) > 0
	if !played {
		slog.Warn("failed to play montage",
			"ability", t.ability.Name(),
			"montage", montageName(t.params.Montage))
		t.Cancelled.Emit(abilitysystem.EventData{})
	}

	// a listener may have ended the task
	if !t.active {
		return
	}

	t.cancelH = t.ability.OnCancelled().Subscribe(func(struct{}) { t.onAbilityCancelled() })

	if played {
		t.inst = t.asc.ActiveMontageInstance()
		t.inst.OnBlendingOut.Bind(t.onBlendingOut)
		t.inst.OnEnded.Bind(t.onEnded)
	}

	if avatar := t.asc.Avatar(); avatar != nil && t.exec.CanScaleRootMotion() {
		avatar.SetRootMotionScale(t.params.RootMotionScale)
	}
}

// ExternalCancel stops the montage, broadcasts Cancelled and ends the task.
func (t *Task) ExternalCancel() {
	t.onAbilityCancelled()
	t.EndTask()
}

// EndTask ends the task without stopping the montage.
func (t *Task) EndTask() {
	t.destroy(false)
}

// AbilityEnded ends the task because its ability ended. The montage is stopped
// when StopWhenAbilityEnds is set.
func (t *Task) AbilityEnded() {
	t.destroy(true)
}

func (t *Task) destroy(abilityEnded bool) {
	if !t.active {
		return
	}
	t.active = false

	t.ability.OnCancelled().Unsubscribe(t.cancelH)
	if abilityEnded && t.params.StopWhenAbilityEnds {
		t.stopPlayingMontage()
	}
	t.asc.RemoveGameplayEventListener(t.listener)
}

func (t *Task) onBlendingOut(interrupted bool) {
	if t.ownsMontage() {
		t.asc.ClearAnimatingAbility(t.ability)
		if avatar := t.asc.Avatar(); avatar != nil && t.exec.CanScaleRootMotion() {
			avatar.SetRootMotionScale(1)
		}
	}

	if !t.active {
		return
	}
	if interrupted {
		t.Interrupted.Emit(abilitysystem.EventData{})
		return
	}
	t.BlendOut.Emit(abilitysystem.EventData{})
}

func (t *Task) onEnded(interrupted bool) {
	if !interrupted && t.active {
		t.Completed.Emit(abilitysystem.EventData{})
	}
	t.EndTask()
}

func (t *Task) onAbilityCancelled() {
	if !t.stopPlayingMontage() {
		return
	}
	if t.active {
		t.Cancelled.Emit(abilitysystem.EventData{})
	}
}

// onGameplayEvent forwards events only while this task's ability owns the
// montage slot. An evicted task keeps its listener until it ends.
func (t *Task) onGameplayEvent(ev abilitysystem.EventData) {
	if !t.active || !t.ownsMontage() {
		return
	}
	ev.TargetData = t.params.TargetData
	t.EventReceived.Emit(ev)
}

// stopPlayingMontage stops the montage if this task's ability still owns it.
func (t *Task) stopPlayingMontage() bool {
	if !t.ownsMontage() {
		return false
	}
	// CurrentMontageStop unbinds the instance delegates first
	t.asc.CurrentMontageStop()
	return true
}

func (t *Task) ownsMontage() bool {
	return t.asc.AnimatingAbility() == t.ability && t.asc.CurrentMontage() == t.params.Montage
}

// ResolvePlayRate returns the rate at which montage must play so that its
// earliest cast-point notify fires after row.CastTime seconds. Later cast points
// are ignored. Returns 1 without a montage, marker or positive cast time.
func ResolvePlayRate(row *data.AbilityStatic, m *data.Montage) float64 {
	if row == nil || m == nil || row.CastTime <= 0 {
		return 1
	}
	first := -1.0
	for _, n := range m.Notifies {
		if n.Kind != data.NotifyCastPoint {
			continue
		}
		if first < 0 || n.TriggerTime < first {
			first = n.TriggerTime
		}
	}
	if first <= 0 {
		return 1
	}
	return first / row.CastTime
}

func montageName(m *data.Montage) string {
	if m == nil {
		return ""
	}
	return m.Name
}
