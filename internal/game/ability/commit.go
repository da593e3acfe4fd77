package ability

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/udisondev/gamekit/internal/data"
	gkattr "github.com/udisondev/gamekit/internal/game/attribute"
	"github.com/udisondev/gamekit/internal/game/curve"
	"github.com/udisondev/gamekit/internal/game/effect"
	"github.com/udisondev/gamekit/internal/game/tag"
	"github.com/udisondev/gamekit/internal/model"
)

// CooldownRow returns the curve row and tag name of the cooldown of ability name.
func CooldownRow(name string) string {
	return "Cooldown." + name
}

// CostRow returns the curve row name of the cost of ability name.
func CostRow(name string) string {
	return "Cost." + name
}

func (a *Ability) newCooldownEffect(row *data.AbilityStatic) *effect.Def {
	if len(row.Cooldown) == 0 {
		return nil
	}
	name := CooldownRow(row.Name)
	durations := curve.GenerateFromArray(a.deps.Curves, name, row.Cooldown, true, false)
	return effect.NewCooldown(name, durations)
}

func (a *Ability) newCostEffect(row *data.AbilityStatic) *effect.Def {
	if len(row.Cost.Value) == 0 || row.Cost.Attribute == "" {
		return nil
	}
	attr, err := gkattr.Parse(row.Cost.Attribute)
	if err != nil {
		slog.Warn("invalid cost attribute", "ability", row.Name, "error", err)
		return nil
	}
	name := CostRow(row.Name)
	cost := curve.GenerateFromArray(a.deps.Curves, name, row.Cost.Value, true, true)
	return effect.NewCost(name, attr, cost)
}

// CooldownEffect returns the generated cooldown effect, nil without cooldown.
func (a *Ability) CooldownEffect() *effect.Def {
	a.Static()
	return a.cooldownEffect
}

// CostEffect returns the generated cost effect, nil without cost.
func (a *Ability) CostEffect() *effect.Def {
	a.Static()
	return a.costEffect
}

// CooldownTags returns the tags granted while the ability cools down.
func (a *Ability) CooldownTags() tag.Container {
	if def := a.CooldownEffect(); def != nil {
		return def.GrantedTags
	}
	return tag.Container{}
}

// CostAttribute returns the attribute paid by the ability.
func (a *Ability) CostAttribute() (gkattr.Attribute, bool) {
	def := a.CostEffect()
	if def == nil || len(def.Modifiers) == 0 {
		return "", false
	}
	return def.Modifiers[0].Attribute, true
}

// IsOnCooldown returns true while a cooldown tag of the ability is granted.
func (a *Ability) IsOnCooldown() bool {
	tags := a.CooldownTags()
	return !tags.IsEmpty() && a.asc.HasAnyMatchingTag(tags)
}

// CooldownTimeRemaining returns the remaining and total cooldown in seconds.
func (a *Ability) CooldownTimeRemaining() (remaining, duration float64) {
	tags := a.CooldownTags()
	if tags.IsEmpty() {
		return 0, 0
	}
	return a.asc.Effects().TimeRemaining(tags)
}

// CanAffordCost returns true when paying the cost keeps the attribute at or above zero.
func (a *Ability) CanAffordCost() bool {
	def := a.CostEffect()
	if def == nil {
		return true
	}
	return a.asc.Effects().CanApply(effect.NewSpec(def, a.Level()))
}

// CommitAbility checks and pays cooldown and cost. Returns false when either
// check fails, nothing is applied in that case.
func (a *Ability) CommitAbility() bool {
	_, span := a.deps.Tracer.Start(context.Background(), "ability.commit",
		trace.WithAttributes(attribute.String("ability", a.row)))
	defer span.End()

	if a.IsOnCooldown() {
		span.SetAttributes(attribute.String("failed", string(tag.ActivateFailCooldown)))
		return false
	}
	if !a.CanAffordCost() {
		span.SetAttributes(attribute.String("failed", string(tag.ActivateFailCost)))
		return false
	}

	level := a.Level()
	a.applyCooldown(level)
	a.applyToOwner(a.costEffect, level)
	span.SetAttributes(attribute.Int("level", level))
	return true
}

func (a *Ability) applyCooldown(level int) {
	if a.cooldownEffect == nil {
		return
	}
	if !a.applyToOwner(a.cooldownEffect, level) {
		return
	}
	id := a.asc.PersistentID()
	if a.deps.Ledger == nil || id == uuid.Nil {
		return
	}
	d := effect.NewSpec(a.cooldownEffect, level).Duration()
	a.deps.Ledger.Record(id, a.row, time.Duration(d*float64(time.Second)))
}

// RestoreCooldown starts the cooldown with remaining time left, as recorded
// before the unit left the world. Only the authority restores and nothing is
// written to the ledger.
func (a *Ability) RestoreCooldown(remaining time.Duration) bool {
	def := a.CooldownEffect()
	if def == nil || remaining <= 0 {
		return false
	}
	avatar := a.asc.Avatar()
	if avatar != nil && avatar.Role() != model.RoleAuthority {
		return false
	}
	spec := effect.NewSpec(def, a.Level())
	spec.Instigator = avatar
	spec.Remaining = remaining.Seconds()
	return a.asc.ApplyEffectToSelf(spec).IsValid()
}

// applyToOwner applies def to the owning unit when this peer may: the
// authority always, a predicting client with a valid prediction key.
func (a *Ability) applyToOwner(def *effect.Def, level int) bool {
	if def == nil || !a.exec.CanApplyOwnerEffects(a.info.PredictionKey) {
		return false
	}
	spec := effect.NewSpec(def, level)
	spec.Instigator = a.asc.Avatar()
	a.asc.ApplyEffectToSelf(spec)
	return true
}
