package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/gamekit/internal/game/unit"
)

// ErrUnitMismatch is returned when a saved unit was created from another row.
var ErrUnitMismatch = errors.New("saved unit row mismatch")

// UnitPersistenceService saves and restores unit progress atomically.
type UnitPersistenceService struct {
	pool      *pgxpool.Pool
	units     *UnitRepository
	abilities *AbilityRepository
}

// NewUnitPersistenceService creates a service over pool.
func NewUnitPersistenceService(pool *pgxpool.Pool) *UnitPersistenceService {
	return &UnitPersistenceService{
		pool:      pool,
		units:     NewUnitRepository(pool),
		abilities: NewAbilityRepository(pool),
	}
}

// Abilities returns the ability repository.
func (s *UnitPersistenceService) Abilities() *AbilityRepository {
	return s.abilities
}

// SaveUnit stores the level and slots of c under id in a single transaction.
func (s *UnitPersistenceService) SaveUnit(ctx context.Context, id uuid.UUID, c *unit.Character) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction for unit %s: %w", id, err)
	}
	defer func() {
		if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
			slog.Error("rollback failed", "unit", id, "error", err)
		}
	}()

	if err := s.units.UpsertTx(ctx, tx, UnitRow{ID: id, Row: c.Row(), Level: c.Level()}); err != nil {
		return err
	}

	states := c.SlotStates()
	if err := s.abilities.SaveTx(ctx, tx, id, states); err != nil {
		return fmt.Errorf("saving abilities for unit %s: %w", id, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction for unit %s: %w", id, err)
	}

	slog.Info("unit saved",
		"id", id,
		"unit", c.Row(),
		"level", c.Level(),
		"abilities", len(states))
	return nil
}

// LoadUnit restores the level and ability levels saved under id into c.
// Returns false when nothing was saved.
func (s *UnitPersistenceService) LoadUnit(ctx context.Context, id uuid.UUID, c *unit.Character) (bool, error) {
	u, err := s.units.Load(ctx, id)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, nil
	}
	if u.Row != c.Row() {
		return false, fmt.Errorf("unit %s saved as %s, loading %s: %w", id, u.Row, c.Row(), ErrUnitMismatch)
	}

	states, err := s.abilities.LoadByUnitID(ctx, id)
	if err != nil {
		return false, err
	}

	c.SetLevel(u.Level)
	if err := c.RestoreSlots(states); err != nil {
		slog.Warn("restored unit with stale slots", "id", id, "error", err)
	}
	return true, nil
}
