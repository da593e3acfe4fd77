package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/db"
	"github.com/udisondev/gamekit/internal/game/ability"
	"github.com/udisondev/gamekit/internal/game/attribute"
	"github.com/udisondev/gamekit/internal/game/cooldown"
	"github.com/udisondev/gamekit/internal/game/fog"
	"github.com/udisondev/gamekit/internal/game/input"
	"github.com/udisondev/gamekit/internal/game/selection"
	"github.com/udisondev/gamekit/internal/game/unit"
	"github.com/udisondev/gamekit/internal/model"
	"github.com/udisondev/gamekit/internal/world"
)

const driveInterval = 1500 * time.Millisecond

// heroSaveID keys the hero in the save database across restarts.
var heroSaveID = uuid.NewSHA1(uuid.NameSpaceOID, []byte("gamekit/hero"))

// session is a scripted skirmish between a player hero and a creep.
type session struct {
	world       *world.World
	volume      *fog.Volume
	persistence *db.UnitPersistenceService

	hero, creep *unit.Character
	creepSight  *fog.Component
	selection   *selection.BoxSelection
	step        int
}

func newSession(
	ctx context.Context,
	w *world.World,
	volume *fog.Volume,
	tables *data.Tables,
	deps ability.Deps,
	persistence *db.UnitPersistenceService,
	ledger *cooldown.Ledger,
) (*session, error) {
	s := &session{world: w, volume: volume, persistence: persistence}

	s.hero = unit.New("Mage", model.NewVector(0, 0, 0), tables, deps)
	s.hero.SetPlayerControlled(true)
	s.hero.SetSaveID(heroSaveID)
	s.creep = unit.New("Creep", model.NewVector(600, 0, 0), tables, deps)

	for _, c := range []*unit.Character{s.hero, s.creep} {
		if err := c.EnterWorld(w); err != nil {
			return nil, err
		}
	}

	if err := s.restoreHero(ctx, ledger); err != nil {
		return nil, err
	}

	s.selection = selection.NewBoxSelection()
	s.selection.Ignore = []*model.Actor{s.hero.Actor()}

	s.creepSight = &fog.Component{Actor: s.creep.Actor(), Faction: s.creep.Actor().Faction(), SightRadius: 800}
	volume.Register(&fog.Component{Actor: s.hero.Actor(), Faction: s.hero.Actor().Faction(), SightRadius: 1200, Obstructed: true})
	volume.Register(s.creepSight)
	return s, nil
}

func (s *session) restoreHero(ctx context.Context, ledger *cooldown.Ledger) error {
	restored := false
	if s.persistence != nil {
		ok, err := s.persistence.LoadUnit(ctx, s.hero.SaveID(), s.hero)
		if err != nil {
			return fmt.Errorf("loading hero: %w", err)
		}
		restored = ok
	}
	if !restored {
		if err := s.hero.RestoreSlots([]unit.SlotState{
			{Slot: 0, Ability: "Fireball", Level: 1},
			{Slot: 2, Ability: "Heal", Level: 1},
		}); err != nil {
			slog.Warn("hero starts with a partial kit", "error", err)
		}
	}

	cooldowns := 0
	remaining, err := ledger.Remaining(ctx, s.hero.SaveID())
	if err != nil {
		slog.Warn("cooldown ledger unavailable", "error", err)
	} else {
		cooldowns = s.hero.RestoreCooldowns(remaining)
	}
	slog.Info("hero ready",
		"restored", restored,
		"level", s.hero.Level(),
		"cooldowns", cooldowns)
	return nil
}

// drive posts one scripted input to the world every driveInterval.
func (s *session) drive(ctx context.Context) {
	ticker := time.NewTicker(driveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.world.Post(s.next)
		}
	}
}

// next runs on the world tick goroutine.
func (s *session) next() {
	defer func() { s.step++ }()

	if s.creep.Actor().IsPendingKill() {
		return
	}
	target := s.creep.Actor().Location()

	switch s.step % 4 {
	case 0:
		s.world.SetCursor(target)
		s.hero.PressInput(input.ForSlot(0))
	case 1:
		s.hero.PressInput(input.Confirm)
		s.world.ClearCursor()
	case 2:
		s.hero.PressInput(input.ForSlot(2))
	case 3:
		attrs := s.creep.Attributes()
		slog.Info("skirmish",
			"hero_mana", s.hero.Attributes().Get(attribute.Mana),
			"creep_health", attrs.Get(attribute.Health),
			"creep_visible", s.volume.IsVisible(s.hero.Actor().Faction(), target),
			"selected", s.selectAround(target))
		if attrs.Get(attribute.Health) <= 0 {
			slog.Info("creep defeated")
			s.volume.Unregister(s.creepSight)
			s.creep.Destroy()
		}
	}
}

// selectAround drags a selection box over target and returns how many units
// it caught.
func (s *session) selectAround(target model.Vector) int {
	defer s.world.ClearCursor()

	s.world.SetCursor(target.Add(model.NewVector(-150, -150, 0)))
	if !s.selection.Start(s.world) {
		return 0
	}
	s.world.SetCursor(target.Add(model.NewVector(150, 150, 0)))
	s.selection.Update(s.world)
	selected := s.selection.Fetch(s.world)
	s.selection.End()
	return len(selected)
}

// close saves the hero and releases both units. Call after the world stopped.
func (s *session) close(ctx context.Context) {
	if s.persistence != nil {
		if err := s.persistence.SaveUnit(ctx, s.hero.SaveID(), s.hero); err != nil {
			slog.Error("saving hero", "error", err)
		}
	}
	s.hero.Destroy()
	if !s.creep.Actor().IsPendingKill() {
		s.creep.Destroy()
	}
}
