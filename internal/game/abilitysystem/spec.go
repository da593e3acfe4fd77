package abilitysystem

import (
	"log/slog"

	"github.com/udisondev/gamekit/internal/event"
	"github.com/udisondev/gamekit/internal/game/tag"
	"github.com/udisondev/gamekit/internal/model"
)

// SpecHandle identifies a granted ability on one component.
type SpecHandle uint32

// IsValid returns true for handles issued by GiveAbility.
func (h SpecHandle) IsValid() bool {
	return h != 0
}

// ActivationInfo describes one activation of an ability.
type ActivationInfo struct {
	Handle        SpecHandle
	PredictionKey model.PredictionKey
}

// Ability is a granted ability instance.
type Ability interface {
	Name() string
	// CanActivate reports whether spec may activate now. When it may not,
	// the returned tag names the reason.
	CanActivate(spec *Spec) (bool, tag.Tag)
	Activate(info ActivationInfo)
	Cancel()
	IsActive() bool
	// OnCancelled fires when the running activation is cancelled.
	OnCancelled() *event.Signal[struct{}]
}

// Spec is an ability granted to a unit at some level.
// Level 0 means the ability is known but not learned yet.
type Spec struct {
	Handle  SpecHandle
	Level   int
	InputID int32
	Ability Ability
}

// EndedEvent is emitted when an activation ends.
type EndedEvent struct {
	Spec      *Spec
	Cancelled bool
}

// FailureEvent is emitted when TryActivateAbility is refused.
type FailureEvent struct {
	Spec   *Spec
	Reason tag.Tag
}

// GiveAbility grants ability at level bound to inputID and returns its handle.
func (c *Component) GiveAbility(ability Ability, level int, inputID int32) SpecHandle {
	c.nextHandle++
	spec := &Spec{
		Handle:  c.nextHandle,
		Level:   level,
		InputID: inputID,
		Ability: ability,
	}
	c.specs = append(c.specs, spec)
	return spec.Handle
}

// ClearAbility removes a granted ability, cancelling it when active.
func (c *Component) ClearAbility(h SpecHandle) bool {
	for i, spec := range c.specs {
		if spec.Handle != h {
			continue
		}
		if spec.Ability.IsActive() {
			spec.Ability.Cancel()
		}
		c.specs = append(c.specs[:i], c.specs[i+1:]...)
		return true
	}
	return false
}

// FindSpec returns the spec with handle h, or nil.
func (c *Component) FindSpec(h SpecHandle) *Spec {
	for _, spec := range c.specs {
		if spec.Handle == h {
			return spec
		}
	}
	return nil
}

// FindSpecByAbility returns the spec granted for ability, or nil.
func (c *Component) FindSpecByAbility(ability Ability) *Spec {
	for _, spec := range c.specs {
		if spec.Ability == ability {
			return spec
		}
	}
	return nil
}

// FindSpecByInput returns the first spec bound to inputID, or nil.
func (c *Component) FindSpecByInput(inputID int32) *Spec {
	for _, spec := range c.specs {
		if spec.InputID == inputID {
			return spec
		}
	}
	return nil
}

// Specs returns the granted specs in grant order.
func (c *Component) Specs() []*Spec {
	out := make([]*Spec, len(c.specs))
	copy(out, c.specs)
	return out
}

// SetAbilityLevel changes the level of a granted ability.
func (c *Component) SetAbilityLevel(h SpecHandle, level int) bool {
	spec := c.FindSpec(h)
	if spec == nil || level < 0 {
		return false
	}
	if spec.Level == level {
		return true
	}
	spec.Level = level
	c.AbilityLevelChanged.Emit(spec)
	return true
}

// LevelUpAbility raises the level of a granted ability by one, up to maxLevel.
func (c *Component) LevelUpAbility(h SpecHandle, maxLevel int) bool {
	spec := c.FindSpec(h)
	if spec == nil || spec.Level >= maxLevel {
		return false
	}
	return c.SetAbilityLevel(h, spec.Level+1)
}

// TryActivateAbility activates the ability with a fresh prediction key.
func (c *Component) TryActivateAbility(h SpecHandle) bool {
	return c.TryActivateAbilityWithKey(h, c.NewPredictionKey())
}

// TryActivateAbilityWithKey activates the ability with a key received from
// the predicting client.
func (c *Component) TryActivateAbilityWithKey(h SpecHandle, key model.PredictionKey) bool {
	spec := c.FindSpec(h)
	if spec == nil {
		slog.Debug("activation of unknown spec", "handle", h)
		return false
	}

	if ok, reason := spec.Ability.CanActivate(spec); !ok {
		slog.Debug("ability activation refused",
			"ability", spec.Ability.Name(),
			"reason", reason)
		c.ActivationFailed.Emit(FailureEvent{Spec: spec, Reason: reason})
		return false
	}

	c.AbilityActivated.Emit(spec)
	spec.Ability.Activate(ActivationInfo{Handle: h, PredictionKey: key})
	return true
}

// AbilityInputPressed activates the ability bound to inputID.
func (c *Component) AbilityInputPressed(inputID int32) bool {
	spec := c.FindSpecByInput(inputID)
	if spec == nil {
		return false
	}
	return c.TryActivateAbility(spec.Handle)
}

// NotifyAbilityEnded is called by abilities when an activation ends.
func (c *Component) NotifyAbilityEnded(h SpecHandle, cancelled bool) {
	spec := c.FindSpec(h)
	if spec == nil {
		return
	}
	c.AbilityEnded.Emit(EndedEvent{Spec: spec, Cancelled: cancelled})
}

// CancelAllAbilities cancels every active ability.
func (c *Component) CancelAllAbilities() {
	for _, spec := range c.Specs() {
		if spec.Ability.IsActive() {
			spec.Ability.Cancel()
		}
	}
}
