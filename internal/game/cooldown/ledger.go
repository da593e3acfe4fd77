package cooldown

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const defaultQueueSize = 256

type record struct {
	unit    uuid.UUID
	ability string
	until   time.Time
}

// Ledger records cooldowns started on the tick goroutine and writes them to
// a Store from its own goroutine (Run).
type Ledger struct {
	store Store
	clock Clock
	queue chan record
}

// NewLedger creates a ledger writing to store.
func NewLedger(store Store, clock Clock) *Ledger {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Ledger{
		store: store,
		clock: clock,
		queue: make(chan record, defaultQueueSize),
	}
}

// Record queues a cooldown of duration d for the unit's ability.
// Never blocks: the record is dropped with a warning when the queue is full.
func (l *Ledger) Record(unitID uuid.UUID, ability string, d time.Duration) {
	if d <= 0 {
		return
	}
	rec := record{unit: unitID, ability: ability, until: l.clock.Now().Add(d)}
	select {
	case l.queue <- rec:
	default:
		slog.Warn("cooldown ledger queue full, dropping record",
			"unit", unitID,
			"ability", ability)
	}
}

// Run writes queued records until ctx is cancelled, then drains the queue.
func (l *Ledger) Run(ctx context.Context) error {
	for {
		select {
		case rec := <-l.queue:
			l.write(ctx, rec)
		case <-ctx.Done():
			l.drain()
			return nil
		}
	}
}

// Flush writes every queued record synchronously.
func (l *Ledger) Flush(ctx context.Context) {
	for {
		select {
		case rec := <-l.queue:
			l.write(ctx, rec)
		default:
			return
		}
	}
}

func (l *Ledger) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	l.Flush(ctx)
}

func (l *Ledger) write(ctx context.Context, rec record) {
	if err := l.store.Set(ctx, rec.unit, rec.ability, rec.until); err != nil {
		slog.Error("writing cooldown",
			"unit", rec.unit,
			"ability", rec.ability,
			"error", err)
	}
}

// Remaining returns the unexpired cooldowns of a unit. Expired entries are
// cleared from the store.
func (l *Ledger) Remaining(ctx context.Context, unitID uuid.UUID) (map[string]time.Duration, error) {
	all, err := l.store.All(ctx, unitID)
	if err != nil {
		return nil, fmt.Errorf("loading cooldowns of %s: %w", unitID, err)
	}

	now := l.clock.Now()
	out := make(map[string]time.Duration, len(all))
	for ability, until := range all {
		left := until.Sub(now)
		if left > 0 {
			out[ability] = left
			continue
		}
		if err := l.store.Clear(ctx, unitID, ability); err != nil {
			return nil, fmt.Errorf("clearing expired cooldown %s: %w", ability, err)
		}
	}
	return out, nil
}
