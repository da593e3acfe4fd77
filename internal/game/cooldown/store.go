// Package cooldown keeps a durable ledger of ability cooldown expiry so a
// unit that leaves and re-enters the world keeps its cooldowns.
package cooldown

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

//go:generate mockgen -destination=mocks/mock_clock.go -package=mocks github.com/udisondev/gamekit/internal/game/cooldown Clock

// Clock abstracts time for the ledger.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// ErrNotFound is returned by Store.Get when no cooldown is recorded.
var ErrNotFound = errors.New("cooldown not found")

// Store persists cooldown expiry per unit and ability.
type Store interface {
	Set(ctx context.Context, unitID uuid.UUID, ability string, until time.Time) error
	Get(ctx context.Context, unitID uuid.UUID, ability string) (time.Time, error)
	All(ctx context.Context, unitID uuid.UUID) (map[string]time.Time, error)
	Clear(ctx context.Context, unitID uuid.UUID, ability string) error
}

type memoryKey struct {
	unit    uuid.UUID
	ability string
}

// MemoryStore keeps cooldowns in process memory.
//
// Thread-safe.
type MemoryStore struct {
	cooldowns sync.Map // memoryKey -> time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Set implements Store.
func (m *MemoryStore) Set(_ context.Context, unitID uuid.UUID, ability string, until time.Time) error {
	m.cooldowns.Store(memoryKey{unitID, ability}, until)
	return nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, unitID uuid.UUID, ability string) (time.Time, error) {
	v, ok := m.cooldowns.Load(memoryKey{unitID, ability})
	if !ok {
		return time.Time{}, fmt.Errorf("unit %s ability %s: %w", unitID, ability, ErrNotFound)
	}
	return v.(time.Time), nil
}

// All implements Store.
func (m *MemoryStore) All(_ context.Context, unitID uuid.UUID) (map[string]time.Time, error) {
	out := make(map[string]time.Time)
	m.cooldowns.Range(func(k, v any) bool {
		key := k.(memoryKey)
		if key.unit == unitID {
			out[key.ability] = v.(time.Time)
		}
		return true
	})
	return out, nil
}

// Clear implements Store.
func (m *MemoryStore) Clear(_ context.Context, unitID uuid.UUID, ability string) error {
	m.cooldowns.Delete(memoryKey{unitID, ability})
	return nil
}
