package effect

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/game/attribute"
	"github.com/udisondev/gamekit/internal/game/curve"
	"github.com/udisondev/gamekit/internal/game/tag"
)

func newUnitAttrs() *attribute.Set {
	attrs := attribute.NewSet()
	attrs.InitMax(attribute.Health, attribute.MaxHealth, 500)
	attrs.InitMax(attribute.Mana, attribute.MaxMana, 300)
	return attrs
}

func TestContainer_CostIsInstant(t *testing.T) {
	attrs := newUnitAttrs()
	c := NewContainer(attrs)

	table := curve.NewTable()
	cost := NewCost("Cost.Fireball", attribute.Mana,
		curve.GenerateFromArray(table, "Cost.Fireball", []float64{90, 100, 110}, true, true))

	executed := 0
	c.OnExecuted(func(*Spec) { executed++ })

	spec := NewSpec(cost, 2)
	assert.True(t, c.CanApply(spec))
	h := c.Apply(spec)

	assert.False(t, h.IsValid())
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 1, executed)
	assert.InDelta(t, 200.0, attrs.Get(attribute.Mana), 1e-9)

	assert.True(t, c.CanApply(spec))
	c.Apply(spec)
	assert.InDelta(t, 100.0, attrs.Get(attribute.Mana), 1e-9)
	assert.True(t, c.CanApply(spec))
	c.Apply(spec)
	assert.False(t, c.CanApply(spec))
}

func TestContainer_Cooldown(t *testing.T) {
	c := NewContainer(newUnitAttrs())
	table := curve.NewTable()
	cd := NewCooldown("Cooldown.Fireball",
		curve.GenerateFromArray(table, "Cooldown.Fireball", []float64{10, 9, 8}, true, false))

	var added, removed []*Active
	c.OnAdded(func(a *Active) { added = append(added, a) })
	c.OnRemoved(func(a *Active) { removed = append(removed, a) })

	h := c.Apply(NewSpec(cd, 3))
	require.True(t, h.IsValid())
	require.Len(t, added, 1)
	assert.True(t, c.HasTag("Cooldown"))
	assert.True(t, c.HasTag("Cooldown.Fireball"))

	query := tag.NewContainer("Cooldown.Fireball")
	remaining, duration := c.TimeRemaining(query)
	assert.InDelta(t, 8.0, remaining, 1e-9)
	assert.InDelta(t, 8.0, duration, 1e-9)

	c.Tick(5)
	remaining, _ = c.TimeRemaining(query)
	assert.InDelta(t, 3.0, remaining, 1e-9)
	assert.Empty(t, removed)

	c.Tick(3.5)
	require.Len(t, removed, 1)
	assert.Equal(t, h, removed[0].Handle)
	assert.False(t, c.HasTag("Cooldown.Fireball"))
	assert.Equal(t, 0, c.Len())

	remaining, duration = c.TimeRemaining(query)
	assert.Zero(t, remaining)
	assert.Zero(t, duration)
}

func TestContainer_ResumedCooldown(t *testing.T) {
	c := NewContainer(newUnitAttrs())
	cd := NewCooldown("Cooldown.Heal", curve.Constant(12))
	query := tag.NewContainer("Cooldown.Heal")

	spec := NewSpec(cd, 1)
	spec.Remaining = 4
	require.True(t, c.Apply(spec).IsValid())
	remaining, duration := c.TimeRemaining(query)
	assert.InDelta(t, 4.0, remaining, 1e-9)
	assert.InDelta(t, 12.0, duration, 1e-9)

	c.Tick(4)
	assert.False(t, c.HasTag("Cooldown.Heal"))

	// longer than the duration is clamped
	spec = NewSpec(cd, 1)
	spec.Remaining = 30
	c.Apply(spec)
	remaining, _ = c.TimeRemaining(query)
	assert.InDelta(t, 12.0, remaining, 1e-9)
}

func TestContainer_ZeroDurationDropped(t *testing.T) {
	c := NewContainer(newUnitAttrs())
	h := c.Apply(NewSpec(NewCooldown("Cooldown.X", curve.Constant(0)), 1))
	assert.False(t, h.IsValid())
	assert.Equal(t, 0, c.Len())
}

func TestContainer_PassiveRegen(t *testing.T) {
	attrs := newUnitAttrs()
	attrs.Set(attribute.Mana, 100)
	c := NewContainer(attrs)

	assert.Nil(t, NewPassiveRegen(attribute.Mana, 0, 1))

	regen := NewPassiveRegen(attribute.Mana, 2, 0.5)
	require.NotNil(t, regen)
	assert.True(t, regen.GrantedTags.HasTagExact("Regen.Mana"))

	h := c.Apply(NewSpec(regen, 1))
	require.True(t, h.IsValid())
	assert.InDelta(t, 100.0, attrs.Get(attribute.Mana), 1e-9)

	c.Tick(0.25)
	assert.InDelta(t, 100.0, attrs.Get(attribute.Mana), 1e-9)
	c.Tick(0.25)
	assert.InDelta(t, 101.0, attrs.Get(attribute.Mana), 1e-9)
	c.Tick(1.0)
	assert.InDelta(t, 103.0, attrs.Get(attribute.Mana), 1e-9)

	// infinite effects never expire
	c.Tick(1000)
	assert.Equal(t, 1, c.Len())
	assert.InDelta(t, 300.0, attrs.Get(attribute.Mana), 1e-9)

	assert.True(t, c.Remove(h))
	assert.False(t, c.Remove(h))
}

func TestContainer_DurationModifierReverted(t *testing.T) {
	attrs := newUnitAttrs()
	c := NewContainer(attrs)

	buff := &Def{
		Name:     "Fortify",
		Policy:   HasDuration,
		Duration: curve.Constant(2),
		Modifiers: []Modifier{
			{Attribute: attribute.MaxHealth, Op: ModMultiply, Magnitude: curve.Constant(1.5)},
		},
		GrantedTags: tag.NewContainer("Buff.Fortify"),
	}
	c.Apply(NewSpec(buff, 1))
	assert.InDelta(t, 750.0, attrs.Get(attribute.MaxHealth), 1e-9)

	c.Tick(2)
	assert.InDelta(t, 500.0, attrs.Get(attribute.MaxHealth), 1e-9)
}

func TestContainer_RemoveWithTag(t *testing.T) {
	c := NewContainer(newUnitAttrs())
	stun := &Def{Name: "Stun", Policy: Infinite, GrantedTags: tag.NewContainer(tag.DebuffStun)}
	c.Apply(NewSpec(stun, 1))
	c.Apply(NewSpec(stun, 1))
	assert.Equal(t, 2, c.TagCount(tag.DebuffStun))

	assert.Equal(t, 2, c.RemoveWithTag("Debuff"))
	assert.False(t, c.HasTag(tag.DebuffStun))
	assert.True(t, c.Tags().IsEmpty())
}

func TestFromData(t *testing.T) {
	table := curve.NewTable()

	dmg, err := FromData(data.EffectDef{
		Name:      "FireballDamage",
		Attribute: "Health",
		Magnitude: []float64{-75, -150},
	}, "Fireball", table)
	require.NoError(t, err)
	assert.Equal(t, Instant, dmg.Policy)
	assert.InDelta(t, -150.0, NewSpec(dmg, 2).Magnitude(0), 1e-9)
	_, ok := table.FindCurve("Fireball.FireballDamage")
	assert.True(t, ok)

	slow, err := FromData(data.EffectDef{
		Name:      "Slow",
		Duration:  2,
		GrantTags: []string{"Debuff.Slow"},
	}, "FrostBolt", table)
	require.NoError(t, err)
	assert.Equal(t, HasDuration, slow.Policy)
	assert.Empty(t, slow.Modifiers)
	assert.InDelta(t, 2.0, NewSpec(slow, 1).Duration(), 1e-9)

	_, err = FromData(data.EffectDef{Name: "Bad", Attribute: "Armor"}, "X", table)
	assert.Error(t, err)
}
