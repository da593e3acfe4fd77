// Package widget binds ability state to a UI presenter.
package widget

import (
	"github.com/udisondev/gamekit/internal/event"
	"github.com/udisondev/gamekit/internal/game/ability"
	"github.com/udisondev/gamekit/internal/game/abilitysystem"
	"github.com/udisondev/gamekit/internal/game/attribute"
	"github.com/udisondev/gamekit/internal/game/effect"
)

//go:generate mockgen -destination=mocks/mock_presenter.go -package=mocks github.com/udisondev/gamekit/internal/game/widget Presenter

// Presenter renders ability state changes.
type Presenter interface {
	InsufficientResources(insufficient bool)
	CooldownBegin(remaining, duration float64)
	CooldownEnd(remaining, duration float64)
	TargetingStart()
	TargetingEnd(cancelled bool)
	LevelUp(level int)
}

// AbilityWidget forwards the events of one ability to a Presenter.
type AbilityWidget struct {
	presenter Presenter
	ability   *ability.Ability
	asc       *abilitysystem.Component

	attrHandle    event.Handle
	addedHandle   event.Handle
	removedHandle event.Handle
	targetStart   event.Handle
	targetResult  event.Handle
	levelHandle   event.Handle
}

// New creates an unbound widget.
func New(p Presenter) *AbilityWidget {
	return &AbilityWidget{presenter: p}
}

// Ability returns the bound ability, nil before SetupListeners.
func (w *AbilityWidget) Ability() *ability.Ability {
	return w.ability
}

// SetupListeners binds the widget to a. A widget already bound to another
// ability is released first. A nil ability is ignored.
func (w *AbilityWidget) SetupListeners(a *ability.Ability) {
	if a == nil {
		return
	}
	w.Destruct()

	w.ability = a
	w.asc = a.ASC()

	w.attrHandle = w.asc.Attributes().OnChanged(w.onAttributeChanged)
	w.addedHandle = w.asc.Effects().OnAdded(w.onEffectAdded)
	w.removedHandle = w.asc.Effects().OnRemoved(w.onEffectRemoved)

	w.targetStart = a.TargetingStart.Subscribe(func(struct{}) {
		w.presenter.TargetingStart()
	})
	w.targetResult = a.TargetingResult.Subscribe(w.presenter.TargetingEnd)
	w.levelHandle = w.asc.AbilityLevelChanged.Subscribe(w.onLevelChanged)
}

// Destruct removes every listener installed by SetupListeners.
func (w *AbilityWidget) Destruct() {
	if w.ability == nil {
		return
	}
	w.asc.Attributes().RemoveOnChanged(w.attrHandle)
	w.asc.Effects().RemoveOnAdded(w.addedHandle)
	w.asc.Effects().RemoveOnRemoved(w.removedHandle)
	w.ability.TargetingStart.Unsubscribe(w.targetStart)
	w.ability.TargetingResult.Unsubscribe(w.targetResult)
	w.asc.AbilityLevelChanged.Unsubscribe(w.levelHandle)

	w.ability = nil
	w.asc = nil
}

func (w *AbilityWidget) onAttributeChanged(ch attribute.Change) {
	attr, ok := w.ability.CostAttribute()
	if !ok || attr != ch.Attribute {
		return
	}
	w.presenter.InsufficientResources(!w.ability.CanAffordCost())
}

func (w *AbilityWidget) isCooldown(ae *effect.Active) bool {
	tags := w.ability.CooldownTags()
	return !tags.IsEmpty() && ae.Spec.Def.GrantedTags.HasAny(tags)
}

func (w *AbilityWidget) onEffectAdded(ae *effect.Active) {
	if !w.isCooldown(ae) {
		return
	}
	w.presenter.CooldownBegin(ae.Remaining, ae.Duration)
}

func (w *AbilityWidget) onEffectRemoved(ae *effect.Active) {
	if !w.isCooldown(ae) {
		return
	}
	w.presenter.CooldownEnd(0, ae.Duration)
}

func (w *AbilityWidget) onLevelChanged(spec *abilitysystem.Spec) {
	if spec.Ability != w.ability {
		return
	}
	w.presenter.LevelUp(spec.Level)
}
