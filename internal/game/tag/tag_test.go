package tag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTag_Matches(t *testing.T) {
	tests := []struct {
		tag    Tag
		parent Tag
		want   bool
	}{
		{"Cooldown.Fireball", "Cooldown", true},
		{"Cooldown.Fireball", "Cooldown.Fireball", true},
		{"Cooldowns.Fireball", "Cooldown", false},
		{"Cooldown", "Cooldown.Fireball", false},
		{"Cooldown", "", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.tag)+"/"+string(tt.parent), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.tag.Matches(tt.parent))
		})
	}
}

func TestContainer(t *testing.T) {
	c := NewContainer("State.Dead", "", "Debuff.Stun")
	assert.Equal(t, 2, c.Len())
	assert.True(t, c.HasTag("State"))
	assert.True(t, c.HasTagExact(StateDead))
	assert.False(t, c.HasTagExact("State"))
	assert.Equal(t, []Tag{DebuffStun, StateDead}, c.Tags())

	other := NewContainer("Debuff")
	assert.True(t, c.HasAny(other))

	clone := c.Clone()
	c.Remove(StateDead)
	assert.True(t, clone.HasTagExact(StateDead))
	assert.False(t, c.HasTagExact(StateDead))
}

func TestContainer_ZeroValue(t *testing.T) {
	var c Container
	assert.True(t, c.IsEmpty())
	assert.False(t, c.HasTag(StateDead))
	c.Add(StateDead)
	assert.True(t, c.HasTag(StateDead))
}
