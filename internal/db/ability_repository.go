package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/udisondev/gamekit/internal/game/unit"
)

// AbilityRepository stores the slotted abilities of units.
type AbilityRepository struct {
	pool *pgxpool.Pool
}

// NewAbilityRepository creates an AbilityRepository.
func NewAbilityRepository(pool *pgxpool.Pool) *AbilityRepository {
	return &AbilityRepository{pool: pool}
}

// LoadByUnitID returns the slots of a unit ordered by slot.
func (r *AbilityRepository) LoadByUnitID(ctx context.Context, unitID uuid.UUID) ([]unit.SlotState, error) {
	query := `
		SELECT slot, ability, level
		FROM unit_abilities
		WHERE unit_id = $1
		ORDER BY slot
	`

	rows, err := r.pool.Query(ctx, query, unitID.String())
	if err != nil {
		return nil, fmt.Errorf("querying abilities for unit %s: %w", unitID, err)
	}
	defer rows.Close()

	states := make([]unit.SlotState, 0, 8)
	for rows.Next() {
		var st unit.SlotState
		if err := rows.Scan(&st.Slot, &st.Ability, &st.Level); err != nil {
			return nil, fmt.Errorf("scanning ability row: %w", err)
		}
		states = append(states, st)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating ability rows: %w", err)
	}

	return states, nil
}

// SaveTx replaces the slots of a unit inside tx.
func (r *AbilityRepository) SaveTx(ctx context.Context, tx pgx.Tx, unitID uuid.UUID, states []unit.SlotState) error {
	if _, err := tx.Exec(ctx, `DELETE FROM unit_abilities WHERE unit_id = $1`, unitID.String()); err != nil {
		return fmt.Errorf("deleting existing abilities: %w", err)
	}

	for _, st := range states {
		if _, err := tx.Exec(ctx,
			`INSERT INTO unit_abilities (unit_id, slot, ability, level) VALUES ($1, $2, $3, $4)`,
			unitID.String(), st.Slot, st.Ability, st.Level,
		); err != nil {
			return fmt.Errorf("inserting ability %s in slot %d: %w", st.Ability, st.Slot, err)
		}
	}
	return nil
}

// SetLevel updates the level of one slot.
func (r *AbilityRepository) SetLevel(ctx context.Context, unitID uuid.UUID, slot, level int) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE unit_abilities SET level = $3 WHERE unit_id = $1 AND slot = $2`,
		unitID.String(), slot, level,
	)
	if err != nil {
		return fmt.Errorf("updating slot %d of unit %s: %w", slot, unitID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("slot %d of unit %s: %w", slot, unitID, pgx.ErrNoRows)
	}
	return nil
}
