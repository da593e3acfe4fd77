// Package effect implements gameplay effects: definitions, level-bound specs
// and the per-unit container of active effects.
package effect

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/game/attribute"
	"github.com/udisondev/gamekit/internal/game/curve"
	"github.com/udisondev/gamekit/internal/game/tag"
	"github.com/udisondev/gamekit/internal/model"
)

// DurationPolicy defines how long an effect stays active.
type DurationPolicy int8

const (
	Instant     DurationPolicy = iota // Modifies base values once
	HasDuration                       // Active for Duration seconds
	Infinite                          // Active until removed
)

func (p DurationPolicy) String() string {
	switch p {
	case Instant:
		return "Instant"
	case HasDuration:
		return "HasDuration"
	case Infinite:
		return "Infinite"
	}
	return fmt.Sprintf("DurationPolicy(%d)", int8(p))
}

// ModOp defines how a modifier is applied.
type ModOp int8

const (
	ModAdd      ModOp = iota // Adds magnitude
	ModMultiply              // Multiplies by magnitude
)

// Modifier changes one attribute by a level-scaled magnitude.
type Modifier struct {
	Attribute attribute.Attribute
	Op        ModOp
	Magnitude curve.ScalableFloat
}

// Def is an effect definition shared by all specs made from it.
type Def struct {
	Name        string
	Policy      DurationPolicy
	Duration    curve.ScalableFloat // seconds, HasDuration only
	Period      float64             // seconds, 0 = not periodic
	Modifiers   []Modifier
	GrantedTags tag.Container
}

// IsPeriodic returns true when the modifiers execute every Period.
func (d *Def) IsPeriodic() bool {
	return d.Policy != Instant && d.Period > 0
}

// Spec is a Def bound to a level and a context.
type Spec struct {
	Def        *Def
	Level      int
	Instigator *model.Actor
	TargetData model.TargetDataHandle
	// Remaining, when positive, starts a HasDuration effect part way through.
	// The effect keeps its full duration and expires after Remaining seconds.
	Remaining float64
}

// NewSpec creates a spec. Levels below 1 evaluate curves at level 1.
func NewSpec(def *Def, level int) *Spec {
	return &Spec{Def: def, Level: level}
}

func (s *Spec) level() int {
	return max(s.Level, 1)
}

// Duration returns the duration in seconds for HasDuration effects, 0 otherwise.
func (s *Spec) Duration() float64 {
	if s.Def.Policy != HasDuration {
		return 0
	}
	return s.Def.Duration.AtLevel(s.level())
}

// Magnitude returns the level-scaled magnitude of modifier i.
func (s *Spec) Magnitude(i int) float64 {
	return s.Def.Modifiers[i].Magnitude.AtLevel(s.level())
}

// NewCooldown builds the cooldown effect of an ability.
// The effect grants the tag named after row ("Cooldown.Fireball").
func NewCooldown(row string, durations curve.ScalableFloat) *Def {
	return &Def{
		Name:        row,
		Policy:      HasDuration,
		Duration:    durations,
		GrantedTags: tag.NewContainer(tag.Tag(row)),
	}
}

// NewCost builds the instant cost effect of an ability. cost is expected
// to be negative so the modifier subtracts from attr.
func NewCost(row string, attr attribute.Attribute, cost curve.ScalableFloat) *Def {
	return &Def{
		Name:   row,
		Policy: Instant,
		Modifiers: []Modifier{{
			Attribute: attr,
			Op:        ModAdd,
			Magnitude: cost,
		}},
	}
}

// RegenTag returns the tag granted by the passive regen effect of attr.
func RegenTag(attr attribute.Attribute) tag.Tag {
	return tag.Tag("Regen." + string(attr))
}

// NewPassiveRegen builds an infinite effect adding value*period to attr every
// period seconds. Returns nil when value is not positive.
func NewPassiveRegen(attr attribute.Attribute, value, period float64) *Def {
	if value <= 0 || period <= 0 {
		return nil
	}
	return &Def{
		Name:   string(RegenTag(attr)),
		Policy: Infinite,
		Period: period,
		Modifiers: []Modifier{{
			Attribute: attr,
			Op:        ModAdd,
			Magnitude: curve.Constant(value * period),
		}},
		GrantedTags: tag.NewContainer(RegenTag(attr)),
	}
}

// FromData builds a Def from a data table effect row. Per-level magnitudes
// are registered in table as "<owner>.<name>".
func FromData(def data.EffectDef, owner string, table *curve.Table) (*Def, error) {
	out := &Def{Name: def.Name, Period: def.Period}

	switch {
	case def.Duration > 0:
		out.Policy = HasDuration
		out.Duration = curve.Constant(def.Duration)
	case def.Period > 0:
		out.Policy = Infinite
	default:
		out.Policy = Instant
	}

	if def.Attribute != "" {
		attr, err := attribute.Parse(def.Attribute)
		if err != nil {
			return nil, fmt.Errorf("effect %s: %w", def.Name, err)
		}
		row := owner + "." + def.Name
		out.Modifiers = append(out.Modifiers, Modifier{
			Attribute: attr,
			Op:        ModAdd,
			Magnitude: curve.GenerateFromArray(table, row, def.Magnitude, true, false),
		})
	}

	for _, t := range def.GrantTags {
		out.GrantedTags.Add(tag.Tag(t))
	}

	return out, nil
}

// ActiveHandle identifies an applied non-instant effect.
type ActiveHandle uuid.UUID

// IsValid returns true for handles issued by a container.
func (h ActiveHandle) IsValid() bool {
	return uuid.UUID(h) != uuid.Nil
}

func (h ActiveHandle) String() string {
	return uuid.UUID(h).String()
}
