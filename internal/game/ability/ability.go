// Package ability implements data-driven abilities: behavior dispatch,
// targeting, cast-point synchronized montages, cost and cooldown commit,
// effect containers and projectile spawning.
package ability

import (
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/event"
	"github.com/udisondev/gamekit/internal/game/abilitysystem"
	"github.com/udisondev/gamekit/internal/game/cooldown"
	"github.com/udisondev/gamekit/internal/game/curve"
	"github.com/udisondev/gamekit/internal/game/effect"
	"github.com/udisondev/gamekit/internal/game/montage"
	"github.com/udisondev/gamekit/internal/game/tag"
	"github.com/udisondev/gamekit/internal/game/targeting"
	"github.com/udisondev/gamekit/internal/model"
)

// AnimationProvider picks the montage a unit plays for an animation category.
type AnimationProvider interface {
	AbilityMontage(kind data.AbilityAnimation) *data.Montage
}

// Deps are the collaborators shared by the abilities of a world.
type Deps struct {
	Abilities   *data.Table[data.AbilityStatic]
	Curves      *curve.Table
	Animations  AnimationProvider
	Projectiles ProjectileSpawner
	// Ledger persists cooldown expiry, optional.
	Ledger *cooldown.Ledger
	Tracer trace.Tracer
}

// Ability is one data-driven ability instance granted to a unit.
//
// Not safe for concurrent use: driven by the world tick and input callbacks.
type Ability struct {
	row  string
	asc  *abilitysystem.Component
	deps Deps

	// Immediate abilities skip the montage and commit on target acquisition.
	Immediate bool
	// DynamicCastPoint scales the montage so its cast point lands on CastTime.
	DynamicCastPoint bool
	StartSection     string
	Policy           model.NetExecutionPolicy
	BlockedTags      tag.Container

	static         *data.AbilityStatic
	unsubscribe    func()
	cooldownEffect *effect.Def
	costEffect     *effect.Def
	containers     map[tag.Tag]EffectContainer

	active    bool
	canceling bool
	toggledOn bool
	info      abilitysystem.ActivationInfo
	exec      model.ExecutionContext

	targetTask *targeting.WaitTargetData
	animTask   *montage.Task

	cancelled event.Signal[struct{}]

	// TargetingStart fires when a point-target ability starts targeting.
	TargetingStart event.Signal[struct{}]
	// TargetingResult fires when targeting ends, with true when cancelled.
	TargetingResult event.Signal[bool]
}

// New creates the ability configured by the row named row.
func New(row string, asc *abilitysystem.Component, deps Deps) *Ability {
	if deps.Curves == nil {
		// cost and cooldown rows stay private to this instance
		slog.Warn("ability without shared curve table", "ability", row)
		deps.Curves = curve.NewTable()
	}
	if deps.Tracer == nil {
		deps.Tracer = otel.Tracer("gamekit/ability")
	}
	return &Ability{
		row:              row,
		asc:              asc,
		deps:             deps,
		DynamicCastPoint: true,
		Policy:           model.PolicyLocalPredicted,
		BlockedTags:      tag.NewContainer(tag.StateDead, tag.DebuffStun),
	}
}

// Name implements abilitysystem.Ability.
func (a *Ability) Name() string {
	return a.row
}

// ASC returns the owning ability-system component.
func (a *Ability) ASC() *abilitysystem.Component {
	return a.asc
}

// Static returns the configuration row, loading and caching it on first use.
// Returns nil when the row does not exist.
func (a *Ability) Static() *data.AbilityStatic {
	if a.static != nil {
		return a.static
	}
	if a.deps.Abilities == nil || a.row == "" {
		return nil
	}

	if a.unsubscribe == nil {
		a.unsubscribe = a.deps.Abilities.OnChanged(a.onTableChanged)
	}

	row, ok := a.deps.Abilities.FindRow(a.row)
	if !ok {
		return nil
	}
	a.static = row
	a.loadFromStatic(row)
	return row
}

func (a *Ability) onTableChanged() {
	a.static = nil
	a.cooldownEffect = nil
	a.costEffect = nil
	a.containers = nil

	if a.Static() == nil {
		slog.Warn("ability row removed from table", "ability", a.row)
	}
}

func (a *Ability) loadFromStatic(row *data.AbilityStatic) {
	slog.Debug("loading ability from table", "ability", row.Name)
	a.cooldownEffect = a.newCooldownEffect(row)
	a.costEffect = a.newCostEffect(row)
	a.containers = a.buildContainers(row)
}

// Release stops listening for table changes.
func (a *Ability) Release() {
	if a.unsubscribe != nil {
		a.unsubscribe()
		a.unsubscribe = nil
	}
}

// Spec returns the spec this ability is granted with, nil when not granted.
func (a *Ability) Spec() *abilitysystem.Spec {
	return a.asc.FindSpecByAbility(a)
}

// Level returns the granted level, 0 when not learned.
func (a *Ability) Level() int {
	if spec := a.Spec(); spec != nil {
		return spec.Level
	}
	return 0
}

// LevelUp raises the level by one up to the row maximum.
func (a *Ability) LevelUp() bool {
	spec := a.Spec()
	if spec == nil {
		return false
	}
	maxLevel := 1
	if row := a.Static(); row != nil {
		maxLevel = row.MaxLevel()
	}
	return a.asc.LevelUpAbility(spec.Handle, maxLevel)
}

// IsActive implements abilitysystem.Ability.
func (a *Ability) IsActive() bool {
	return a.active
}

// IsToggledOn returns true while a toggle ability is switched on.
func (a *Ability) IsToggledOn() bool {
	return a.toggledOn
}

// OnCancelled implements abilitysystem.Ability.
func (a *Ability) OnCancelled() *event.Signal[struct{}] {
	return &a.cancelled
}

// CanActivate implements abilitysystem.Ability.
func (a *Ability) CanActivate(spec *abilitysystem.Spec) (bool, tag.Tag) {
	if spec == nil || spec.Level <= 0 {
		return false, tag.ActivateFailNotLearn
	}
	if a.asc.HasAnyMatchingTag(a.BlockedTags) {
		return false, tag.ActivateFailBlocked
	}
	// switching a toggle off is always allowed
	if a.toggledOn {
		return true, ""
	}
	if a.IsOnCooldown() {
		return false, tag.ActivateFailCooldown
	}
	if !a.CanAffordCost() {
		return false, tag.ActivateFailCost
	}
	return true, ""
}

// Activate implements abilitysystem.Ability. Activating an active ability
// restarts it: running tasks end before the new dispatch.
func (a *Ability) Activate(info abilitysystem.ActivationInfo) {
	a.endTasks()
	a.active = true
	a.info = info
	a.exec = a.asc.ExecutionContext(a.Policy)

	row := a.Static()
	if row == nil {
		slog.Warn("ability activation without configuration",
			"ability", a.row,
			"error", ErrMissingConfiguration)
		a.EndAbility()
		return
	}

	a.dispatch(row)
}

// EndAbility ends the running activation.
func (a *Ability) EndAbility() {
	a.end(false)
}

// Cancel implements abilitysystem.Ability.
func (a *Ability) Cancel() {
	if !a.active || a.canceling {
		return
	}
	a.canceling = true
	defer func() { a.canceling = false }()

	a.cancelled.Emit(struct{}{})
	a.end(true)
}

func (a *Ability) end(cancelled bool) {
	if !a.active {
		return
	}
	a.active = false

	if a.targetTask != nil {
		a.targetTask.EndTask()
		a.targetTask = nil
	}
	if a.animTask != nil {
		a.animTask.AbilityEnded()
		a.animTask = nil
	}

	a.asc.ConsumeReplicatedEvents(a.info.Handle, a.info.PredictionKey)
	a.asc.NotifyAbilityEnded(a.info.Handle, cancelled)
}

// endTasks ends running tasks without ending the activation.
func (a *Ability) endTasks() {
	if a.targetTask != nil {
		a.targetTask.EndTask()
		a.targetTask = nil
	}
	if a.animTask != nil {
		a.animTask.EndTask()
		a.animTask = nil
	}
}

// TargetTask returns the running targeting task, or nil.
func (a *Ability) TargetTask() *targeting.WaitTargetData {
	return a.targetTask
}

// AnimTask returns the running montage task, or nil.
func (a *Ability) AnimTask() *montage.Task {
	return a.animTask
}

// ExecutionContext returns the context of the current activation.
func (a *Ability) ExecutionContext() model.ExecutionContext {
	return a.exec
}
