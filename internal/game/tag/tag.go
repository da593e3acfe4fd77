// Package tag implements hierarchical gameplay tags ("Cooldown.Fireball").
package tag

import (
	"sort"
	"strings"
)

// Tag is a dot-separated hierarchical name. The empty Tag is invalid.
type Tag string

// Well-known tags.
const (
	StateDead            Tag = "State.Dead"
	DebuffStun           Tag = "Debuff.Stun"
	ActivateFailNotLearn Tag = "Activation.Fail.NotYetLearned"
	ActivateFailBlocked  Tag = "Activation.Fail.BlockedByTags"
	ActivateFailCooldown Tag = "Activation.Fail.OnCooldown"
	ActivateFailCost     Tag = "Activation.Fail.Cost"
	EventAbility         Tag = "Event.Ability"
	EventCastPoint       Tag = "Event.Ability.CastPoint"
	EventProjectileHit   Tag = "Event.Projectile.Hit"
)

// IsValid returns true for non-empty tags.
func (t Tag) IsValid() bool {
	return t != ""
}

// Matches returns true if t equals parent or is a child of it
// ("Cooldown.Fireball" matches "Cooldown").
func (t Tag) Matches(parent Tag) bool {
	if t == parent {
		return true
	}
	if parent == "" {
		return false
	}
	return strings.HasPrefix(string(t), string(parent)+".")
}

// Container is a set of tags.
type Container struct {
	tags map[Tag]struct{}
}

// NewContainer builds a container from tags, ignoring invalid ones.
func NewContainer(tags ...Tag) Container {
	var c Container
	for _, t := range tags {
		c.Add(t)
	}
	return c
}

// Add inserts t.
func (c *Container) Add(t Tag) {
	if !t.IsValid() {
		return
	}
	if c.tags == nil {
		c.tags = make(map[Tag]struct{})
	}
	c.tags[t] = struct{}{}
}

// Remove deletes t.
func (c *Container) Remove(t Tag) {
	delete(c.tags, t)
}

// Len returns the number of explicit tags.
func (c Container) Len() int {
	return len(c.tags)
}

// IsEmpty returns true when the container has no tags.
func (c Container) IsEmpty() bool {
	return len(c.tags) == 0
}

// HasTag returns true if any explicit tag matches t hierarchically.
func (c Container) HasTag(t Tag) bool {
	for own := range c.tags {
		if own.Matches(t) {
			return true
		}
	}
	return false
}

// HasTagExact returns true if t is stored as-is.
func (c Container) HasTagExact(t Tag) bool {
	_, ok := c.tags[t]
	return ok
}

// HasAny returns true if any tag of other is matched by c.
func (c Container) HasAny(other Container) bool {
	for t := range other.tags {
		if c.HasTag(t) {
			return true
		}
	}
	return false
}

// Tags returns the tags in sorted order.
func (c Container) Tags() []Tag {
	out := make([]Tag, 0, len(c.tags))
	for t := range c.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy.
func (c Container) Clone() Container {
	var out Container
	for t := range c.tags {
		out.Add(t)
	}
	return out
}
