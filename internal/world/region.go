package world

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/udisondev/gamekit/internal/model"
)

// Region is a single world region (2048×2048 units) holding the actors
// located inside it.
type Region struct {
	rx, ry int32

	actors sync.Map // map[uuid.UUID]*model.Actor

	// Snapshot cache, rebuilt lazily after Add/Remove.
	snapshotCache atomic.Value // []*model.Actor
	snapshotDirty atomic.Bool

	version atomic.Uint64 // incremented on Add/Remove
}

// NewRegion creates a new region
func NewRegion(rx, ry int32) *Region {
	return &Region{
		rx: rx,
		ry: ry,
	}
}

// RX returns region X index
func (r *Region) RX() int32 {
	return r.rx
}

// RY returns region Y index
func (r *Region) RY() int32 {
	return r.ry
}

// Version returns current region version (incremented on Add/Remove).
func (r *Region) Version() uint64 {
	return r.version.Load()
}

// AddActor adds actor to the region.
func (r *Region) AddActor(a *model.Actor) {
	r.actors.Store(a.ID(), a)
	r.version.Add(1)
	r.snapshotDirty.Store(true)
}

// RemoveActor removes the actor with id from the region.
func (r *Region) RemoveActor(id uuid.UUID) {
	if _, ok := r.actors.LoadAndDelete(id); !ok {
		return
	}
	r.version.Add(1)
	r.snapshotDirty.Store(true)
}

// ForEachActor calls fn for every actor until fn returns false.
func (r *Region) ForEachActor(fn func(*model.Actor) bool) {
	r.actors.Range(func(_, value any) bool {
		return fn(value.(*model.Actor))
	})
}

// Snapshot returns the cached actor list.
// IMPORTANT: Returned slice is immutable — DO NOT modify.
func (r *Region) Snapshot() []*model.Actor {
	if !r.snapshotDirty.Load() {
		if cache := r.snapshotCache.Load(); cache != nil {
			return cache.([]*model.Actor)
		}
	}
	return r.rebuildSnapshot()
}

func (r *Region) rebuildSnapshot() []*model.Actor {
	actors := make([]*model.Actor, 0, 16)
	r.actors.Range(func(_, value any) bool {
		actors = append(actors, value.(*model.Actor))
		return true
	})

	r.snapshotCache.Store(actors)
	r.snapshotDirty.Store(false)
	return actors
}
