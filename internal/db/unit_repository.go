package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UnitRow is the persisted header of a unit.
type UnitRow struct {
	ID        uuid.UUID
	Row       string
	Level     int
	UpdatedAt time.Time
}

// UnitRepository stores unit headers.
type UnitRepository struct {
	pool *pgxpool.Pool
}

// NewUnitRepository creates a UnitRepository.
func NewUnitRepository(pool *pgxpool.Pool) *UnitRepository {
	return &UnitRepository{pool: pool}
}

// Load returns the unit with id. Returns nil, nil if it does not exist.
func (r *UnitRepository) Load(ctx context.Context, id uuid.UUID) (*UnitRow, error) {
	u := UnitRow{ID: id}
	err := r.pool.QueryRow(ctx,
		`SELECT row_name, level, updated_at FROM units WHERE id = $1`, id.String(),
	).Scan(&u.Row, &u.Level, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("querying unit %s: %w", id, err)
	}
	return &u, nil
}

// UpsertTx inserts or updates the unit inside tx.
func (r *UnitRepository) UpsertTx(ctx context.Context, tx pgx.Tx, u UnitRow) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO units (id, row_name, level, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (id)
		DO UPDATE SET row_name = $2, level = $3, updated_at = NOW()`,
		u.ID.String(), u.Row, u.Level,
	)
	if err != nil {
		return fmt.Errorf("upserting unit %s: %w", u.ID, err)
	}
	return nil
}

// Delete removes the unit and its abilities.
func (r *UnitRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM units WHERE id = $1`, id.String()); err != nil {
		return fmt.Errorf("deleting unit %s: %w", id, err)
	}
	return nil
}
