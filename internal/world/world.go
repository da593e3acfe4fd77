// Package world holds the actor registry and drives the gameplay tick.
package world

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/gamekit/internal/game/ability"
	"github.com/udisondev/gamekit/internal/game/abilitysystem"
	"github.com/udisondev/gamekit/internal/game/projectile"
	"github.com/udisondev/gamekit/internal/game/targeting"
	"github.com/udisondev/gamekit/internal/model"
)

// Target actor classes understood by TargetActorFactory.
const (
	ClassGroundTrace = "GroundTrace"
	ClassActorTrace  = "ActorTrace"
)

var (
	// ErrNotDeferred is returned by FinishSpawning for actors not passed to SpawnDeferred.
	ErrNotDeferred = errors.New("actor was not deferred")
	// ErrUnknownTargetActorClass is returned for unsupported target actor classes.
	ErrUnknownTargetActorClass = errors.New("unknown target actor class")
)

// Ticker is advanced once per world tick.
type Ticker interface {
	Tick(dt float64)
}

type tickerEntry struct {
	owner  uuid.UUID // uuid.Nil = owned by the world
	ticker Ticker
}

// World is the actor registry with a 2D region grid.
//
// Everything except Post runs on the tick goroutine.
type World struct {
	regions [][]*Region

	actors  map[uuid.UUID]*model.Actor
	located map[uuid.UUID]*Region
	pending map[uuid.UUID]*model.Actor

	tickers     []tickerEntry
	projectiles []*projectile.Projectile

	cursor    model.Vector
	cursorSet bool
	drawer    targeting.DebugDrawer

	mu     sync.Mutex
	posted []func()

	frame uint64
}

// New creates an empty world. drawer may be nil.
func New(drawer targeting.DebugDrawer) *World {
	w := &World{
		actors:  make(map[uuid.UUID]*model.Actor),
		located: make(map[uuid.UUID]*Region),
		pending: make(map[uuid.UUID]*model.Actor),
		drawer:  drawer,
	}
	w.regions = make([][]*Region, Regions)
	for rx := range Regions {
		w.regions[rx] = make([]*Region, Regions)
		for ry := range Regions {
			w.regions[rx][ry] = NewRegion(int32(rx), int32(ry))
		}
	}
	return w
}

// GetRegion returns the region at world location (x, y), nil when out of bounds.
func (w *World) GetRegion(x, y float64) *Region {
	rx, ry := CoordToRegionIndex(x, y)
	if !IsValidRegionIndex(rx, ry) {
		return nil
	}
	return w.regions[rx][ry]
}

// SpawnDeferred registers a without placing it: it is neither ticked nor
// returned by queries until FinishSpawning.
func (w *World) SpawnDeferred(a *model.Actor) {
	w.pending[a.ID()] = a
}

// FinishSpawning places a deferred actor into the world.
func (w *World) FinishSpawning(a *model.Actor) error {
	if _, ok := w.pending[a.ID()]; !ok {
		return fmt.Errorf("finish spawning %s: %w", a.Name(), ErrNotDeferred)
	}
	delete(w.pending, a.ID())

	loc := a.Location()
	region := w.GetRegion(loc.X, loc.Y)
	if region == nil {
		return fmt.Errorf("invalid coordinates for actor %s: (%.0f, %.0f)", a.Name(), loc.X, loc.Y)
	}

	w.actors[a.ID()] = a
	w.located[a.ID()] = region
	region.AddActor(a)
	return nil
}

// Spawn places a into the world immediately.
func (w *World) Spawn(a *model.Actor) error {
	w.SpawnDeferred(a)
	return w.FinishSpawning(a)
}

// Actor returns the spawned actor with id.
func (w *World) Actor(id uuid.UUID) (*model.Actor, bool) {
	a, ok := w.actors[id]
	return a, ok
}

// ActorCount returns the number of spawned actors.
func (w *World) ActorCount() int {
	return len(w.actors)
}

// Projectiles returns the projectiles in flight.
func (w *World) Projectiles() []*projectile.Projectile {
	return w.projectiles
}

// Frame returns the number of ticks run so far.
func (w *World) Frame() uint64 {
	return w.frame
}

// AddTicker ticks t every frame until owner leaves the world. A nil owner
// keeps t for the lifetime of the world.
func (w *World) AddTicker(owner *model.Actor, t Ticker) {
	id := uuid.Nil
	if owner != nil {
		id = owner.ID()
	}
	w.tickers = append(w.tickers, tickerEntry{owner: id, ticker: t})
}

// RemoveTicker stops ticking t.
func (w *World) RemoveTicker(t Ticker) {
	w.tickers = slices.DeleteFunc(w.tickers, func(e tickerEntry) bool {
		return e.ticker == t
	})
}

// Post queues fn to run at the start of the next tick. Safe for concurrent use.
func (w *World) Post(fn func()) {
	w.mu.Lock()
	w.posted = append(w.posted, fn)
	w.mu.Unlock()
}

// Tick advances the world by dt seconds: posted functions, tickers,
// projectiles, region bookkeeping, then removal of destroyed actors.
func (w *World) Tick(dt float64) {
	w.frame++
	w.runPosted()

	// tickers may add or remove tickers
	for _, e := range slices.Clone(w.tickers) {
		e.ticker.Tick(dt)
	}

	for _, p := range w.projectiles {
		p.Tick(dt)
	}
	w.projectiles = slices.DeleteFunc(w.projectiles, (*projectile.Projectile).IsDone)

	w.relocate()
	w.reap()
}

// Run ticks the world every interval until ctx is cancelled.
func (w *World) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("world loop started", "interval", interval)
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			slog.Info("world loop stopped", "frames", w.frame)
			return nil
		case now := <-ticker.C:
			w.Tick(now.Sub(last).Seconds())
			last = now
		}
	}
}

func (w *World) runPosted() {
	w.mu.Lock()
	posted := w.posted
	w.posted = nil
	w.mu.Unlock()

	for _, fn := range posted {
		fn()
	}
}

// relocate moves actors whose location crossed a region border.
func (w *World) relocate() {
	for id, a := range w.actors {
		loc := a.Location()
		region := w.GetRegion(loc.X, loc.Y)
		current := w.located[id]
		if region == current {
			continue
		}
		if current != nil {
			current.RemoveActor(id)
		}
		if region == nil {
			slog.Warn("actor left the world bounds", "actor", a.Name(), "x", loc.X, "y", loc.Y)
			a.Destroy()
			delete(w.located, id)
			continue
		}
		region.AddActor(a)
		w.located[id] = region
	}
}

// reap removes destroyed actors and the tickers they own.
func (w *World) reap() {
	for id, a := range w.actors {
		if !a.IsPendingKill() {
			continue
		}
		if region := w.located[id]; region != nil {
			region.RemoveActor(id)
		}
		delete(w.located, id)
		delete(w.actors, id)
		w.tickers = slices.DeleteFunc(w.tickers, func(e tickerEntry) bool {
			return e.owner == id
		})
	}
}

// ActorsInRadius returns live actors whose collision circle intersects the
// circle of radius around center, nearest first. Implements projectile.Overlapper.
func (w *World) ActorsInRadius(center model.Vector, radius float64) []*model.Actor {
	return w.nearest(center, radius, func(a *model.Actor, d2 float64) bool {
		r := radius + a.Radius()
		return d2 <= r*r
	})
}

// ActorsInBox returns live actors whose collision circle overlaps the
// axis-aligned box of half size extent around center, nearest first.
// The Z axis tests the actor location only.
func (w *World) ActorsInBox(center, extent model.Vector) []*model.Actor {
	return w.nearest(center, max(extent.X, extent.Y), func(a *model.Actor, _ float64) bool {
		loc := a.Location()
		if math.Abs(loc.Z-center.Z) > extent.Z {
			return false
		}
		dx := max(math.Abs(loc.X-center.X)-extent.X, 0)
		dy := max(math.Abs(loc.Y-center.Y)-extent.Y, 0)
		return dx*dx+dy*dy <= a.Radius()*a.Radius()
	})
}

// nearest collects live actors around center accepted by match, sorted by
// 2D distance. reach bounds the searched regions.
func (w *World) nearest(center model.Vector, reach float64, match func(a *model.Actor, d2 float64) bool) []*model.Actor {
	type found struct {
		actor *model.Actor
		d2    float64
	}
	var hits []found

	// actor radii are not known per region, search one extra region
	minRX, minRY, maxRX, maxRY := regionsCovering(center.X, center.Y, reach+RegionSize)
	for rx := minRX; rx <= maxRX; rx++ {
		for ry := minRY; ry <= maxRY; ry++ {
			for _, a := range w.regions[rx][ry].Snapshot() {
				if a.IsPendingKill() {
					continue
				}
				d2 := a.Location().Distance2DSquared(center)
				if match(a, d2) {
					hits = append(hits, found{actor: a, d2: d2})
				}
			}
		}
	}

	slices.SortFunc(hits, func(a, b found) int {
		switch {
		case a.d2 < b.d2:
			return -1
		case a.d2 > b.d2:
			return 1
		}
		return 0
	})
	out := make([]*model.Actor, len(hits))
	for i, h := range hits {
		out[i] = h.actor
	}
	return out
}

// SetCursor moves the simulated player cursor to loc on the ground.
func (w *World) SetCursor(loc model.Vector) {
	w.cursor = loc
	w.cursorSet = true
}

// ClearCursor moves the cursor off the playfield.
func (w *World) ClearCursor() {
	w.cursorSet = false
}

// cursorHeight is the start height of the cursor trace.
const cursorHeight = 2000

// HitUnderCursor traces down at the cursor. Actors of the requested object
// types are hit when the cursor lies within their radius; WorldStatic hits
// the ground at the cursor. Implements targeting.CursorTracer.
func (w *World) HitUnderCursor(types []model.ObjectType) (model.HitResult, bool) {
	if !w.cursorSet {
		return model.HitResult{}, false
	}

	hit := model.HitResult{
		TraceStart: w.cursor.Add(model.NewVector(0, 0, cursorHeight)),
		TraceEnd:   w.cursor,
	}

	for _, a := range w.ActorsInRadius(w.cursor, 0) {
		if a.ObjectType() == model.ObjectWorldStatic || !slices.Contains(types, a.ObjectType()) {
			continue
		}
		hit.Actor = a
		hit.ImpactPoint = a.Location()
		hit.BlockingHit = true
		return hit, true
	}

	if slices.Contains(types, model.ObjectWorldStatic) {
		hit.ImpactPoint = w.cursor
		hit.BlockingHit = true
		return hit, true
	}
	return hit, false
}

// SpawnProjectile implements ability.ProjectileSpawner.
func (w *World) SpawnProjectile(req ability.ProjectileRequest) error {
	p := projectile.New(req, w)
	w.SpawnDeferred(p.Actor())
	if err := w.FinishSpawning(p.Actor()); err != nil {
		return fmt.Errorf("failed to spawn projectile %s: %w", req.Static.Class, err)
	}
	w.projectiles = append(w.projectiles, p)

	slog.Debug("projectile spawned",
		"projectile", req.Static.Class,
		"ability", req.Ability,
		"behavior", p.Behavior())
	return nil
}

// TargetActorFactory returns the factory installed on ability-system
// components. Target actors are ticked until their owner leaves the world.
func (w *World) TargetActorFactory() abilitysystem.TargetActorFactory {
	return func(c *abilitysystem.Component, class string) (abilitysystem.TargetActor, error) {
		switch class {
		case ClassGroundTrace, ClassActorTrace:
		default:
			return nil, fmt.Errorf("%w: %s", ErrUnknownTargetActorClass, class)
		}
		ta := targeting.NewTraceActor(class, w, w.drawer)
		w.AddTicker(c.Avatar(), ta)
		return ta, nil
	}
}
