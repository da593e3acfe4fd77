// Package attribute holds the numeric attributes of a unit (health, mana).
package attribute

import (
	"fmt"

	"github.com/udisondev/gamekit/internal/event"
)

// Attribute names a numeric attribute.
type Attribute string

const (
	Health    Attribute = "Health"
	MaxHealth Attribute = "MaxHealth"
	Mana      Attribute = "Mana"
	MaxMana   Attribute = "MaxMana"
)

// maxOf maps a clamped attribute to its maximum.
var maxOf = map[Attribute]Attribute{
	Health: MaxHealth,
	Mana:   MaxMana,
}

// Parse converts a table string into an Attribute.
func Parse(s string) (Attribute, error) {
	switch a := Attribute(s); a {
	case Health, MaxHealth, Mana, MaxMana:
		return a, nil
	}
	return "", fmt.Errorf("unknown attribute %q", s)
}

// Change is emitted after an attribute value changes.
type Change struct {
	Attribute Attribute
	Old       float64
	New       float64
}

// Set stores attribute values. Health and Mana are clamped to [0, Max].
// Not safe for concurrent use.
type Set struct {
	values  map[Attribute]float64
	changed event.Signal[Change]
}

// NewSet creates a set with every attribute at zero.
func NewSet() *Set {
	return &Set{values: map[Attribute]float64{
		Health: 0, MaxHealth: 0, Mana: 0, MaxMana: 0,
	}}
}

// Has returns true if a is part of the set.
func (s *Set) Has(a Attribute) bool {
	_, ok := s.values[a]
	return ok
}

// Get returns the current value of a, 0 for unknown attributes.
func (s *Set) Get(a Attribute) float64 {
	return s.values[a]
}

// Set assigns v to a, clamping current values against their maximum.
// Lowering a maximum clamps the current value as well.
func (s *Set) Set(a Attribute, v float64) {
	if !s.Has(a) {
		return
	}
	if m, ok := maxOf[a]; ok {
		v = min(max(v, 0), s.values[m])
	}
	if v < 0 {
		v = 0
	}
	s.assign(a, v)

	for cur, m := range maxOf {
		if m == a && s.values[cur] > v {
			s.assign(cur, v)
		}
	}
}

// Add changes a by delta and returns the new value.
func (s *Set) Add(a Attribute, delta float64) float64 {
	s.Set(a, s.Get(a)+delta)
	return s.Get(a)
}

// InitMax sets both the maximum and the current value, used on unit load.
func (s *Set) InitMax(current, maximum Attribute, v float64) {
	s.Set(maximum, v)
	s.Set(current, v)
}

func (s *Set) assign(a Attribute, v float64) {
	old := s.values[a]
	if old == v {
		return
	}
	s.values[a] = v
	s.changed.Emit(Change{Attribute: a, Old: old, New: v})
}

// OnChanged subscribes fn to every attribute change.
func (s *Set) OnChanged(fn func(Change)) event.Handle {
	return s.changed.Subscribe(fn)
}

// RemoveOnChanged removes a subscription made with OnChanged.
func (s *Set) RemoveOnChanged(h event.Handle) {
	s.changed.Unsubscribe(h)
}
