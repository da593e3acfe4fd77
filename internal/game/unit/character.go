// Package unit implements data-driven characters owning an ability-system
// component.
package unit

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/game/ability"
	"github.com/udisondev/gamekit/internal/game/abilitysystem"
	"github.com/udisondev/gamekit/internal/game/anim"
	"github.com/udisondev/gamekit/internal/game/attribute"
	"github.com/udisondev/gamekit/internal/game/effect"
	"github.com/udisondev/gamekit/internal/game/input"
	"github.com/udisondev/gamekit/internal/model"
	"github.com/udisondev/gamekit/internal/world"
)

// TeamID separates player and AI controlled units.
type TeamID uint8

const (
	TeamPlayer TeamID = 0
	TeamAI     TeamID = 1
)

// regenPeriod is the tick period of passive regeneration, in seconds.
const regenPeriod = 0.1

// Slot is one granted ability.
type Slot struct {
	Ability *ability.Ability
	Handle  abilitysystem.SpecHandle
	Input   input.AbilityInputID
}

// SlotState is the persisted state of one slot.
type SlotState struct {
	Slot    int
	Ability string
	Level   int
}

// Character is a unit configured by a UnitStatic row.
//
// Not safe for concurrent use: driven by the world tick.
type Character struct {
	row    string
	actor  *model.Actor
	asc    *abilitysystem.Component
	tables *data.Tables
	deps   ability.Deps

	static      *data.UnitStatic
	unsubscribe func()
	initialized bool

	level            int
	playerControlled bool
	slots            []Slot
	regen            []effect.ActiveHandle
}

// New creates the character configured by the unit row named row at loc.
// deps.Animations is replaced by the character itself.
func New(row string, loc model.Vector, tables *data.Tables, deps ability.Deps) *Character {
	actor := model.NewActor(row, model.ObjectPawn, loc)
	actor.SetRadius(40)

	c := &Character{
		row:    row,
		actor:  actor,
		tables: tables,
		level:  1,
	}
	c.asc = abilitysystem.New(actor, anim.NewInstance())
	if deps.Abilities == nil && tables != nil {
		deps.Abilities = tables.Abilities
	}
	deps.Animations = c
	c.deps = deps
	actor.Data = c
	return c
}

// Actor returns the world actor.
func (c *Character) Actor() *model.Actor {
	return c.actor
}

// Row returns the name of the unit row.
func (c *Character) Row() string {
	return c.row
}

// SetSaveID sets the id the unit is saved under. Recorded cooldowns are keyed
// by it so they survive the unit leaving the world.
func (c *Character) SetSaveID(id uuid.UUID) {
	c.asc.SetPersistentID(id)
}

// SaveID returns the id set by SetSaveID, the actor id otherwise.
func (c *Character) SaveID() uuid.UUID {
	return c.asc.PersistentID()
}

// AbilitySystem implements abilitysystem.Owner.
func (c *Character) AbilitySystem() *abilitysystem.Component {
	return c.asc
}

// Attributes returns the attribute set.
func (c *Character) Attributes() *attribute.Set {
	return c.asc.Attributes()
}

// Static returns the unit row, looking it up and loading the character on
// first use. Returns nil when the row does not exist.
func (c *Character) Static() *data.UnitStatic {
	if c.static != nil {
		return c.static
	}
	if c.tables == nil || c.tables.Units == nil {
		slog.Warn("unit not configured to use a data table", "unit", c.row)
		return nil
	}

	row, ok := c.tables.Units.FindRow(c.row)
	if ok {
		c.static = row
		c.load(row)
	} else {
		slog.Warn("unit static not found", "unit", c.row)
	}

	if c.unsubscribe == nil {
		c.unsubscribe = c.tables.Units.OnChanged(c.onTableChanged)
	}
	return c.static
}

func (c *Character) onTableChanged() {
	c.static = nil
	c.Static()
}

// load initializes attributes, passive regen and abilities from row. Runs
// once, on the authority only.
func (c *Character) load(row *data.UnitStatic) {
	c.actor.SetFaction(row.Faction)

	if c.actor.Role() != model.RoleAuthority {
		slog.Debug("skipping unit load without authority", "unit", c.row)
		return
	}
	if c.initialized {
		return
	}

	attrs := c.asc.Attributes()
	attrs.InitMax(attribute.Health, attribute.MaxHealth, row.Health)
	attrs.InitMax(attribute.Mana, attribute.MaxMana, row.Mana)

	c.addPassiveEffect(effect.NewPassiveRegen(attribute.Mana, row.ManaRegen, regenPeriod))
	c.addPassiveEffect(effect.NewPassiveRegen(attribute.Health, row.HealthRegen, regenPeriod))

	for _, name := range row.Abilities {
		c.GrantAbility(name, 0)
	}

	c.initialized = true
	slog.Info("unit loaded",
		"unit", c.row,
		"health", row.Health,
		"mana", row.Mana,
		"abilities", len(row.Abilities))
}

func (c *Character) addPassiveEffect(def *effect.Def) {
	if def == nil {
		return
	}
	spec := effect.NewSpec(def, 1)
	spec.Instigator = c.actor
	if h := c.asc.ApplyEffectToSelf(spec); h.IsValid() {
		c.regen = append(c.regen, h)
	}
}

// IsInitialized returns true once the unit row was applied.
func (c *Character) IsInitialized() bool {
	return c.initialized
}

// GrantAbility gives the ability row name at level in the next free slot
// and binds it to the slot input.
func (c *Character) GrantAbility(name string, level int) *ability.Ability {
	slot := len(c.slots)
	id := input.ForSlot(slot)

	a := ability.New(name, c.asc, c.deps)
	h := c.asc.GiveAbility(a, level, int32(id))
	c.slots = append(c.slots, Slot{Ability: a, Handle: h, Input: id})

	slog.Debug("ability granted",
		"unit", c.row,
		"ability", name,
		"slot", slot,
		"input", id.String())
	return a
}

// AbilityCount returns the number of granted abilities.
func (c *Character) AbilityCount() int {
	return len(c.slots)
}

// AbilityInstance returns the ability in slot, nil when empty.
func (c *Character) AbilityInstance(slot int) *ability.Ability {
	if slot < 0 || slot >= len(c.slots) {
		return nil
	}
	return c.slots[slot].Ability
}

// AbilityHandle returns the spec handle of slot, the zero handle when empty.
func (c *Character) AbilityHandle(slot int) abilitysystem.SpecHandle {
	if slot < 0 || slot >= len(c.slots) {
		return 0
	}
	return c.slots[slot].Handle
}

// ActivateAbility tries to activate the ability in slot.
func (c *Character) ActivateAbility(slot int) bool {
	h := c.AbilityHandle(slot)
	if !h.IsValid() {
		return false
	}
	return c.asc.TryActivateAbility(h)
}

// PressInput activates the ability bound to id, or forwards confirm/cancel.
func (c *Character) PressInput(id input.AbilityInputID) bool {
	switch id {
	case input.Confirm:
		c.asc.LocalInputConfirm()
		return true
	case input.Cancel:
		c.asc.LocalInputCancel()
		return true
	case input.None:
		return false
	}
	return c.asc.AbilityInputPressed(int32(id))
}

// SlotStates returns the slot layout with ability levels.
func (c *Character) SlotStates() []SlotState {
	out := make([]SlotState, 0, len(c.slots))
	for i, s := range c.slots {
		out = append(out, SlotState{Slot: i, Ability: s.Ability.Name(), Level: s.Ability.Level()})
	}
	return out
}

// RestoreSlots applies saved levels to matching slots. States whose ability
// differs from the granted one are skipped.
func (c *Character) RestoreSlots(states []SlotState) error {
	var skipped int
	for _, st := range states {
		a := c.AbilityInstance(st.Slot)
		if a == nil || a.Name() != st.Ability {
			skipped++
			continue
		}
		c.asc.SetAbilityLevel(c.slots[st.Slot].Handle, st.Level)
	}
	if skipped > 0 {
		return fmt.Errorf("restoring slots of %s: %d of %d states do not match", c.row, skipped, len(states))
	}
	return nil
}

// RestoreCooldowns restarts the cooldowns left by a previous session, keyed
// by ability name. Returns the number of cooldowns restored.
func (c *Character) RestoreCooldowns(remaining map[string]time.Duration) int {
	var n int
	for _, s := range c.slots {
		left, ok := remaining[s.Ability.Name()]
		if !ok {
			continue
		}
		if s.Ability.RestoreCooldown(left) {
			n++
		}
	}
	if n > 0 {
		slog.Debug("cooldowns restored", "unit", c.row, "count", n)
	}
	return n
}

// Level returns the character level.
func (c *Character) Level() int {
	return c.level
}

// SetLevel changes the level. Returns false when unchanged or not positive.
func (c *Character) SetLevel(level int) bool {
	if level == c.level || level <= 0 {
		return false
	}
	c.level = level
	return true
}

// SetPlayerControlled marks the character as possessed by a local player.
func (c *Character) SetPlayerControlled(v bool) {
	c.playerControlled = v
	c.asc.SetLocallyControlled(v)
}

// Team returns TeamPlayer for player controlled units and TeamAI otherwise.
func (c *Character) Team() TeamID {
	if c.playerControlled {
		return TeamPlayer
	}
	return TeamAI
}

// AbilityMontage implements ability.AnimationProvider: a random montage of
// kind from the unit animation set.
func (c *Character) AbilityMontage(kind data.AbilityAnimation) *data.Montage {
	row := c.Static()
	if row == nil || c.tables == nil {
		return nil
	}
	set, ok := c.tables.AnimationSets.FindRow(row.AnimationSet)
	if !ok {
		slog.Warn("animation set not found", "unit", c.row, "set", row.AnimationSet)
		return nil
	}
	name := set.Get(kind).Sample()
	if name == "" {
		return nil
	}
	m, ok := c.tables.Montages.FindRow(name)
	if !ok {
		slog.Warn("montage not found", "unit", c.row, "montage", name)
		return nil
	}
	return m
}

// Tick implements world.Ticker.
func (c *Character) Tick(dt float64) {
	c.asc.Tick(dt)
}

// EnterWorld spawns the character into w, ticks it and installs the world
// target actors.
func (c *Character) EnterWorld(w *world.World) error {
	c.Static()
	c.asc.SetTargetActorFactory(w.TargetActorFactory())
	if err := w.Spawn(c.actor); err != nil {
		return fmt.Errorf("spawning unit %s: %w", c.row, err)
	}
	w.AddTicker(c.actor, c)
	return nil
}

// Destroy cancels running abilities, releases table subscriptions and marks
// the actor for removal.
func (c *Character) Destroy() {
	c.asc.CancelAllAbilities()
	c.asc.DestroyTargetActors()
	for _, s := range c.slots {
		s.Ability.Release()
	}
	if c.unsubscribe != nil {
		c.unsubscribe()
		c.unsubscribe = nil
	}
	c.actor.Destroy()
}
