package data

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaultTables(t *testing.T) {
	tables, err := LoadDefaultTables()
	require.NoError(t, err)

	fireball, ok := tables.Abilities.FindRow("Fireball")
	require.True(t, ok)
	assert.Equal(t, BehaviorPointTarget, fireball.Behavior)
	assert.Equal(t, AnimationCast, fireball.Animation)
	assert.Equal(t, []float64{10, 9, 8, 7}, fireball.Cooldown)
	assert.Equal(t, "Mana", fireball.Cost.Attribute)
	assert.Equal(t, ProjectileDirectional, fireball.Projectile.Behavior)
	assert.Equal(t, 4, fireball.MaxLevel())

	frost, ok := tables.Abilities.FindRow("FrostBolt")
	require.True(t, ok)
	assert.Equal(t, ProjectileTargeted, frost.Projectile.Behavior)

	mage, ok := tables.Units.FindRow("Mage")
	require.True(t, ok)
	assert.InDelta(t, 560.0, mage.Health, 1e-9)
	for _, name := range mage.Abilities {
		_, ok := tables.Abilities.FindRow(name)
		assert.True(t, ok, "ability %s", name)
	}

	cast, ok := tables.Montages.FindRow("Cast_A")
	require.True(t, ok)
	require.Len(t, cast.Notifies, 1)
	assert.Equal(t, NotifyCastPoint, cast.Notifies[0].Kind)

	set, ok := tables.AnimationSets.FindRow("Humanoid")
	require.True(t, ok)
	assert.Equal(t, AnimationArray{"Attack_A"}, set.Get(AnimationAttack))
	assert.Equal(t, AnimationArray{"Cast_A"}, set.Get(AnimationHidden))
}

func TestParseTables_Errors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"unknown behavior", "abilities:\n  - name: X\n    behavior: Flying\n"},
		{"duplicate row", "abilities:\n  - name: X\n    behavior: Passive\n  - name: X\n    behavior: Hidden\n"},
		{"empty name", "units:\n  - health: 5\n"},
		{"bad yaml", "abilities: [\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTables([]byte(tt.raw))
			assert.Error(t, err)
		})
	}
}

func TestTable_ReplaceNotifies(t *testing.T) {
	table, err := NewTable("units", []UnitStatic{{Name: "A", Health: 1}})
	require.NoError(t, err)

	calls := 0
	unsubscribe := table.OnChanged(func() { calls++ })

	require.NoError(t, table.Replace([]UnitStatic{{Name: "A", Health: 2}, {Name: "B"}}))
	assert.Equal(t, 1, calls)
	row, ok := table.FindRow("A")
	require.True(t, ok)
	assert.InDelta(t, 2.0, row.Health, 1e-9)
	assert.Len(t, table.Rows(), 2)

	// failed replace keeps rows and does not notify
	assert.Error(t, table.Replace([]UnitStatic{{Name: "C"}, {Name: "C"}}))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 2, table.Len())

	unsubscribe()
	require.NoError(t, table.Replace(nil))
	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, table.Len())
}

func TestTables_Reload(t *testing.T) {
	tables, err := LoadDefaultTables()
	require.NoError(t, err)

	abilityChanges := 0
	tables.Abilities.OnChanged(func() { abilityChanges++ })

	path := filepath.Join(t.TempDir(), "tables.yaml")
	require.NoError(t, os.WriteFile(path, []byte("abilities:\n  - name: Blink\n    behavior: PointTarget\n"), 0o600))

	require.NoError(t, tables.Reload(path))
	assert.Equal(t, 1, abilityChanges)
	_, ok := tables.Abilities.FindRow("Fireball")
	assert.False(t, ok)
	_, ok = tables.Abilities.FindRow("Blink")
	assert.True(t, ok)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("units:\n  - name: U\n  - name: U\n"), 0o600))
	assert.Error(t, tables.Reload(bad))
	assert.Equal(t, 1, abilityChanges)
	_, ok = tables.Abilities.FindRow("Blink")
	assert.True(t, ok)
}

func TestAnimationArray_Sample(t *testing.T) {
	assert.Equal(t, "", AnimationArray(nil).Sample())

	arr := AnimationArray{"A", "B"}
	for range 20 {
		assert.Contains(t, []string{"A", "B"}, arr.Sample())
	}
}

func TestMontage_NotifiesBetween(t *testing.T) {
	m := Montage{
		Name:   "M",
		Length: 1,
		Notifies: []Notify{
			{Name: "a", TriggerTime: 0.2},
			{Name: "b", TriggerTime: 0.5},
		},
		Sections: []Section{{Name: "Loop", Start: 0.4}},
	}
	got := m.NotifiesBetween(0.2, 0.5)
	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].Name)
	assert.InDelta(t, 0.4, m.SectionStart("Loop"), 1e-9)
	assert.InDelta(t, 0.0, m.SectionStart("Missing"), 1e-9)
}
