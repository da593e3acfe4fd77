package ability

import (
	"log/slog"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/game/abilitysystem"
	"github.com/udisondev/gamekit/internal/game/montage"
	"github.com/udisondev/gamekit/internal/game/tag"
	"github.com/udisondev/gamekit/internal/model"
)

func (a *Ability) onTargetingCancelled(model.TargetDataHandle) {
	a.TargetingResult.Emit(true)
	a.targetTask = nil
	a.Cancel()
}

// onTargetAcquired plays the cast montage. The cast-point event of the
// montage commits the ability.
func (a *Ability) onTargetAcquired(target model.TargetDataHandle) {
	if a.targetTask != nil {
		a.TargetingResult.Emit(false)
		a.targetTask.EndTask()
		a.targetTask = nil
	}
	if !a.active {
		return
	}

	row := a.Static()
	if row == nil {
		a.Cancel()
		return
	}

	if a.exec.HasAuthority() && !inRange(a.asc.Avatar(), row, target) {
		slog.Warn("target data rejected",
			"ability", a.row,
			"error", ErrRangeViolation)
		a.Cancel()
		return
	}

	if a.Immediate || row.Animation == data.AnimationHidden {
		a.onAnimationEvent(abilitysystem.EventData{
			Tag:        tag.EventCastPoint,
			Instigator: a.asc.Avatar(),
			TargetData: target,
		})
		return
	}

	if a.animTask != nil {
		a.animTask.EndTask()
		a.animTask = nil
	}

	var m *data.Montage
	if a.deps.Animations != nil {
		m = a.deps.Animations.AbilityMontage(row.Animation)
	}
	if m == nil {
		slog.Warn("no montage for ability animation",
			"ability", a.row,
			"animation", row.Animation.String(),
			"error", ErrInvalidMontage)
	}

	rate := 1.0
	if a.DynamicCastPoint {
		rate = montage.ResolvePlayRate(row, m)
	}

	// narrower than match-all: Event.Projectile.Hit is handled by the
	// projectile effect container, not by the cast
	task := montage.PlayMontageAndWaitForEvent(a.asc, a, a.exec, montage.Params{
		Montage:    m,
		EventTag:   tag.EventAbility,
		TargetData: target,
		Rate:       rate,
		Section:    a.StartSection,
	})
	task.BlendOut.Subscribe(a.onAnimationBlendOut)
	task.Interrupted.Subscribe(a.onAnimationAbort)
	task.Cancelled.Subscribe(a.onAnimationAbort)
	task.EventReceived.Subscribe(a.onAnimationEvent)
	a.animTask = task

	task.Activate()
}

func (a *Ability) onAnimationBlendOut(abilitysystem.EventData) {
	a.EndAbility()
}

func (a *Ability) onAnimationAbort(abilitysystem.EventData) {
	a.Cancel()
}

// onAnimationEvent commits the ability on the cast point. Only the authority
// commits, applies effects and spawns projectiles.
func (a *Ability) onAnimationEvent(ev abilitysystem.EventData) {
	if !a.active {
		return
	}
	if !a.exec.HasAuthority() {
		slog.Debug("cast point ignored without authority",
			"ability", a.row,
			"error", ErrAuthorityViolation)
		return
	}

	if !a.CommitAbility() {
		a.Cancel()
		return
	}

	level := a.Level()
	a.ApplyEffectContainer(ev.Tag, ev, level)
	a.spawnProjectile(ev, level)
	a.EndAbility()
}

// inRange checks that target points selected by targeting lie inside the
// cast range of row. Target data without a hit is accepted.
func inRange(avatar *model.Actor, row *data.AbilityStatic, target model.TargetDataHandle) bool {
	if avatar == nil || row.CastMaxRange <= 0 {
		return true
	}
	for _, td := range target.Data {
		if td.Hit == nil {
			continue
		}
		d2 := avatar.Location().DistanceSquared(td.Hit.EndPoint())
		if d2 < row.CastMinRange*row.CastMinRange || d2 > row.CastMaxRange*row.CastMaxRange {
			return false
		}
	}
	return true
}
