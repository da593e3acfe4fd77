package attribute

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSet_Clamp(t *testing.T) {
	s := NewSet()
	s.InitMax(Health, MaxHealth, 100)
	assert.InDelta(t, 100.0, s.Get(Health), 1e-9)

	assert.InDelta(t, 100.0, s.Add(Health, 50), 1e-9)
	assert.InDelta(t, 0.0, s.Add(Health, -500), 1e-9)

	s.Set(Health, 80)
	s.Set(MaxHealth, 60)
	assert.InDelta(t, 60.0, s.Get(Health), 1e-9)
}

func TestSet_OnChanged(t *testing.T) {
	s := NewSet()
	var changes []Change
	h := s.OnChanged(func(c Change) { changes = append(changes, c) })

	s.InitMax(Mana, MaxMana, 50)
	s.Add(Mana, 0)
	require.Len(t, changes, 2)
	assert.Equal(t, Change{Attribute: MaxMana, Old: 0, New: 50}, changes[0])
	assert.Equal(t, Change{Attribute: Mana, Old: 0, New: 50}, changes[1])

	s.RemoveOnChanged(h)
	s.Add(Mana, -10)
	assert.Len(t, changes, 2)
}

func TestSet_UnknownAttribute(t *testing.T) {
	s := NewSet()
	s.Set("Armor", 5)
	assert.False(t, s.Has("Armor"))
	assert.InDelta(t, 0.0, s.Get("Armor"), 1e-9)
}

func TestParse(t *testing.T) {
	a, err := Parse("Mana")
	require.NoError(t, err)
	assert.Equal(t, Mana, a)

	_, err = Parse("Armor")
	assert.Error(t, err)
}
