package input

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForSlot(t *testing.T) {
	tests := []struct {
		slot int
		want AbilityInputID
	}{
		{-1, None},
		{0, Skill1},
		{5, Skill6},
		{6, Item1},
		{13, Item8},
		{14, None},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ForSlot(tt.slot), "slot %d", tt.slot)
	}
}

func TestAbilityInputID_String(t *testing.T) {
	assert.Equal(t, "Skill3", Skill3.String())
	assert.Equal(t, "Cancel", Cancel.String())
	assert.Equal(t, "AbilityInputID(99)", AbilityInputID(99).String())
}

func TestIsAbility(t *testing.T) {
	assert.False(t, None.IsAbility())
	assert.True(t, Skill1.IsAbility())
	assert.True(t, Item8.IsAbility())
	assert.False(t, Confirm.IsAbility())
}

func TestParse(t *testing.T) {
	id, err := Parse("Item4")
	require.NoError(t, err)
	assert.Equal(t, Item4, id)

	_, err = Parse("Jump")
	assert.Error(t, err)
}
