package effect

import (
	"log/slog"

	"github.com/google/uuid"

	"github.com/udisondev/gamekit/internal/event"
	"github.com/udisondev/gamekit/internal/game/attribute"
	"github.com/udisondev/gamekit/internal/game/tag"
)

// Active is an applied effect with duration or infinite policy.
type Active struct {
	Handle    ActiveHandle
	Spec      *Spec
	Duration  float64 // 0 for infinite effects
	Remaining float64

	periodElapsed float64
	// deltas applied by non-periodic modifiers, reverted on removal
	applied []appliedDelta
}

type appliedDelta struct {
	attr  attribute.Attribute
	delta float64
}

// Container tracks active effects of one unit and applies their modifiers
// to its attribute set.
// Not safe for concurrent use, driven by the world tick.
type Container struct {
	attrs     *attribute.Set
	active    []*Active
	tagCounts map[tag.Tag]int

	added    event.Signal[*Active]
	removed  event.Signal[*Active]
	executed event.Signal[*Spec]
}

// NewContainer creates a container modifying attrs.
func NewContainer(attrs *attribute.Set) *Container {
	return &Container{
		attrs:     attrs,
		active:    make([]*Active, 0, 8),
		tagCounts: make(map[tag.Tag]int),
	}
}

// Attributes returns the attribute set the container modifies.
func (c *Container) Attributes() *attribute.Set {
	return c.attrs
}

// Apply applies spec. Instant effects modify attributes immediately and return
// an invalid handle. HasDuration effects with a non-positive duration are dropped.
func (c *Container) Apply(spec *Spec) ActiveHandle {
	if spec == nil || spec.Def == nil {
		return ActiveHandle{}
	}

	if spec.Def.Policy == Instant {
		c.execute(spec)
		return ActiveHandle{}
	}

	ae := &Active{
		Handle: ActiveHandle(uuid.New()),
		Spec:   spec,
	}
	if spec.Def.Policy == HasDuration {
		ae.Duration = spec.Duration()
		if ae.Duration <= 0 {
			slog.Debug("dropping effect with zero duration", "effect", spec.Def.Name)
			return ActiveHandle{}
		}
		ae.Remaining = ae.Duration
		if spec.Remaining > 0 && spec.Remaining < ae.Duration {
			ae.Remaining = spec.Remaining
		}
	}

	if !spec.Def.IsPeriodic() {
		for i, mod := range spec.Def.Modifiers {
			before := c.attrs.Get(mod.Attribute)
			c.modify(mod, spec.Magnitude(i))
			ae.applied = append(ae.applied, appliedDelta{
				attr:  mod.Attribute,
				delta: c.attrs.Get(mod.Attribute) - before,
			})
		}
	}

	c.active = append(c.active, ae)
	for _, t := range spec.Def.GrantedTags.Tags() {
		c.tagCounts[t]++
	}
	c.added.Emit(ae)
	return ae.Handle
}

// CanApply returns true if the instant additive modifiers of spec would not
// drive any attribute below zero.
func (c *Container) CanApply(spec *Spec) bool {
	if spec == nil || spec.Def == nil {
		return true
	}
	for i, mod := range spec.Def.Modifiers {
		if mod.Op != ModAdd {
			continue
		}
		if c.attrs.Get(mod.Attribute)+spec.Magnitude(i) < 0 {
			return false
		}
	}
	return true
}

// Remove removes the active effect with handle h.
func (c *Container) Remove(h ActiveHandle) bool {
	for i, ae := range c.active {
		if ae.Handle != h {
			continue
		}
		c.active = append(c.active[:i], c.active[i+1:]...)
		c.finish(ae)
		return true
	}
	return false
}

// RemoveWithTag removes every effect granting a tag matching t.
// Returns the number of removed effects.
func (c *Container) RemoveWithTag(t tag.Tag) int {
	var gone []*Active
	n := 0
	for _, ae := range c.active {
		if ae.Spec.Def.GrantedTags.HasTag(t) {
			gone = append(gone, ae)
			continue
		}
		c.active[n] = ae
		n++
	}
	c.active = c.active[:n]
	for _, ae := range gone {
		c.finish(ae)
	}
	return len(gone)
}

// Tick advances timers by dt seconds, executes periodic effects and removes
// expired ones.
func (c *Container) Tick(dt float64) {
	if len(c.active) == 0 {
		return
	}

	var expired []*Active
	n := 0
	for _, ae := range c.active {
		if ae.Spec.Def.IsPeriodic() {
			ae.periodElapsed += dt
			for ae.periodElapsed >= ae.Spec.Def.Period {
				ae.periodElapsed -= ae.Spec.Def.Period
				c.execute(ae.Spec)
			}
		}
		if ae.Spec.Def.Policy == HasDuration {
			ae.Remaining -= dt
			if ae.Remaining <= 0 {
				ae.Remaining = 0
				expired = append(expired, ae)
				continue
			}
		}
		c.active[n] = ae
		n++
	}
	c.active = c.active[:n]

	for _, ae := range expired {
		c.finish(ae)
	}
}

// HasTag returns true if any active effect grants a tag matching t.
func (c *Container) HasTag(t tag.Tag) bool {
	for own, count := range c.tagCounts {
		if count > 0 && own.Matches(t) {
			return true
		}
	}
	return false
}

// TagCount returns how many active effects grant exactly t.
func (c *Container) TagCount(t tag.Tag) int {
	return c.tagCounts[t]
}

// Tags returns the tags granted by active effects.
func (c *Container) Tags() tag.Container {
	var out tag.Container
	for t, count := range c.tagCounts {
		if count > 0 {
			out.Add(t)
		}
	}
	return out
}

// TimeRemaining returns the longest remaining time, and its total duration,
// among duration effects granting any tag of query.
func (c *Container) TimeRemaining(query tag.Container) (remaining, duration float64) {
	for _, ae := range c.active {
		if ae.Spec.Def.Policy != HasDuration {
			continue
		}
		if !ae.Spec.Def.GrantedTags.HasAny(query) {
			continue
		}
		if ae.Remaining > remaining {
			remaining, duration = ae.Remaining, ae.Duration
		}
	}
	return remaining, duration
}

// Active returns a copy of the active effects.
func (c *Container) Active() []*Active {
	out := make([]*Active, len(c.active))
	copy(out, c.active)
	return out
}

// Len returns the number of active effects.
func (c *Container) Len() int {
	return len(c.active)
}

// OnAdded subscribes fn to effect additions.
func (c *Container) OnAdded(fn func(*Active)) event.Handle {
	return c.added.Subscribe(fn)
}

// RemoveOnAdded removes a subscription made with OnAdded.
func (c *Container) RemoveOnAdded(h event.Handle) {
	c.added.Unsubscribe(h)
}

// OnRemoved subscribes fn to effect removal and expiry.
func (c *Container) OnRemoved(fn func(*Active)) event.Handle {
	return c.removed.Subscribe(fn)
}

// RemoveOnRemoved removes a subscription made with OnRemoved.
func (c *Container) RemoveOnRemoved(h event.Handle) {
	c.removed.Unsubscribe(h)
}

// OnExecuted subscribes fn to instant and periodic executions.
func (c *Container) OnExecuted(fn func(*Spec)) event.Handle {
	return c.executed.Subscribe(fn)
}

// RemoveOnExecuted removes a subscription made with OnExecuted.
func (c *Container) RemoveOnExecuted(h event.Handle) {
	c.executed.Unsubscribe(h)
}

func (c *Container) execute(spec *Spec) {
	for i, mod := range spec.Def.Modifiers {
		c.modify(mod, spec.Magnitude(i))
	}
	c.executed.Emit(spec)
}

func (c *Container) modify(mod Modifier, magnitude float64) {
	switch mod.Op {
	case ModAdd:
		c.attrs.Add(mod.Attribute, magnitude)
	case ModMultiply:
		c.attrs.Set(mod.Attribute, c.attrs.Get(mod.Attribute)*magnitude)
	}
}

// finish reverts temporary modifiers, releases tags and notifies listeners.
// ae must already be detached from c.active.
func (c *Container) finish(ae *Active) {
	for _, d := range ae.applied {
		c.attrs.Add(d.attr, -d.delta)
	}
	ae.applied = nil
	for _, t := range ae.Spec.Def.GrantedTags.Tags() {
		if c.tagCounts[t]--; c.tagCounts[t] <= 0 {
			delete(c.tagCounts, t)
		}
	}
	c.removed.Emit(ae)
}
