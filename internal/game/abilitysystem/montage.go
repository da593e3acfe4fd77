package abilitysystem

import (
	"log/slog"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/game/anim"
)

// PlayMontage plays m for ability and makes ability the owner of the montage
// slot. The previous owner is evicted without being notified.
// Returns the play length, 0 when the montage could not be played.
func (c *Component) PlayMontage(ability Ability, m *data.Montage, rate float64, section string) float64 {
	if c.anim == nil {
		slog.Warn("play montage without animation instance", "ability", abilityName(ability))
		return 0
	}

	if m == nil {
		return 0
	}
	if prev := c.ActiveMontageInstance(); prev != nil {
		prev.UnbindDelegates()
	}

	d := c.anim.Play(m, rate, section)
	if d <= 0 {
		return 0
	}
	c.animating = ability
	c.montage = m
	c.montageInst = c.anim.Active()
	return d
}

// CurrentMontageStop stops the slot montage without firing its callbacks.
func (c *Component) CurrentMontageStop() {
	inst := c.ActiveMontageInstance()
	if inst == nil {
		return
	}
	inst.UnbindDelegates()
	c.anim.Stop(inst.Montage.BlendOutTime)
	c.animating = nil
	c.montage = nil
	c.montageInst = nil
}

// AnimatingAbility returns the ability owning the montage slot, or nil.
func (c *Component) AnimatingAbility() Ability {
	if c.ActiveMontageInstance() == nil {
		return nil
	}
	return c.animating
}

// CurrentMontage returns the montage playing in the slot, or nil.
func (c *Component) CurrentMontage() *data.Montage {
	if c.ActiveMontageInstance() == nil {
		return nil
	}
	return c.montage
}

// ActiveMontageInstance returns the slot montage playback while it runs.
func (c *Component) ActiveMontageInstance() *anim.MontageInstance {
	if c.montageInst == nil || c.montageInst.IsEnded() {
		return nil
	}
	return c.montageInst
}

// ClearAnimatingAbility releases the slot if ability owns it.
func (c *Component) ClearAnimatingAbility(ability Ability) {
	if c.animating == ability {
		c.animating = nil
	}
}

func abilityName(a Ability) string {
	if a == nil {
		return ""
	}
	return a.Name()
}
