package world

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/game/ability"
	"github.com/udisondev/gamekit/internal/game/abilitysystem"
	"github.com/udisondev/gamekit/internal/game/attribute"
	"github.com/udisondev/gamekit/internal/game/targeting"
	"github.com/udisondev/gamekit/internal/model"
)

type countingTicker struct {
	ticks int
	dt    float64
}

func (c *countingTicker) Tick(dt float64) {
	c.ticks++
	c.dt += dt
}

func pawn(name string, loc model.Vector, radius float64) *model.Actor {
	a := model.NewActor(name, model.ObjectPawn, loc)
	a.SetRadius(radius)
	return a
}

func TestWorld_SpawnDeferred(t *testing.T) {
	w := New(nil)
	a := pawn("creep", model.NewVector(100, 100, 0), 40)

	w.SpawnDeferred(a)
	_, ok := w.Actor(a.ID())
	assert.False(t, ok, "deferred actors are not registered yet")
	assert.Empty(t, w.ActorsInRadius(model.NewVector(100, 100, 0), 10))

	require.NoError(t, w.FinishSpawning(a))
	got, ok := w.Actor(a.ID())
	require.True(t, ok)
	assert.Same(t, a, got)
	assert.Equal(t, 1, w.ActorCount())

	err := w.FinishSpawning(a)
	assert.True(t, errors.Is(err, ErrNotDeferred))
}

func TestWorld_SpawnOutOfBounds(t *testing.T) {
	w := New(nil)
	err := w.Spawn(pawn("lost", model.NewVector(HalfExtent+10, 0, 0), 10))
	require.Error(t, err)
	assert.Zero(t, w.ActorCount())
}

func TestWorld_TickOrderAndReap(t *testing.T) {
	w := New(nil)
	owner := pawn("owner", model.Vector{}, 40)
	require.NoError(t, w.Spawn(owner))

	owned := &countingTicker{}
	global := &countingTicker{}
	w.AddTicker(owner, owned)
	w.AddTicker(nil, global)

	var order []string
	w.Post(func() {
		order = append(order, "posted")
		assert.Zero(t, owned.ticks, "posted functions run before tickers")
	})

	w.Tick(0.1)
	w.Tick(0.1)
	assert.Equal(t, []string{"posted"}, order)
	assert.Equal(t, 2, owned.ticks)
	assert.InDelta(t, 0.2, owned.dt, 1e-9)
	assert.Equal(t, uint64(2), w.Frame())

	owner.Destroy()
	w.Tick(0.1)
	assert.Equal(t, 3, owned.ticks, "destroyed during this frame")
	_, ok := w.Actor(owner.ID())
	assert.False(t, ok)

	w.Tick(0.1)
	assert.Equal(t, 3, owned.ticks)
	assert.Equal(t, 4, global.ticks)

	w.RemoveTicker(global)
	w.Tick(0.1)
	assert.Equal(t, 4, global.ticks)
}

func TestWorld_PostConcurrent(t *testing.T) {
	w := New(nil)
	var mu sync.Mutex
	count := 0

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				w.Post(func() {
					mu.Lock()
					count++
					mu.Unlock()
				})
			}
		}()
	}
	wg.Wait()

	w.Tick(0.016)
	assert.Equal(t, 800, count)
}

func TestWorld_RelocateAcrossRegions(t *testing.T) {
	w := New(nil)
	a := pawn("runner", model.NewVector(10, 10, 0), 20)
	require.NoError(t, w.Spawn(a))

	far := model.NewVector(3*RegionSize+10, 10, 0)
	a.SetLocation(far)
	w.Tick(0.1)

	assert.Equal(t, []*model.Actor{a}, w.ActorsInRadius(far, 5))
	assert.Empty(t, w.ActorsInRadius(model.NewVector(10, 10, 0), 5))

	a.SetLocation(model.NewVector(-HalfExtent-100, 0, 0))
	w.Tick(0.1)
	assert.True(t, a.IsPendingKill())
	assert.Zero(t, w.ActorCount())
}

func TestWorld_ActorsInRadiusNearestFirst(t *testing.T) {
	w := New(nil)
	far := pawn("far", model.NewVector(300, 0, 0), 40)
	near := pawn("near", model.NewVector(100, 0, 0), 40)
	border := pawn("border", model.NewVector(RegionSize+50, 0, 0), 100)
	for _, a := range []*model.Actor{far, near, border} {
		require.NoError(t, w.Spawn(a))
	}

	got := w.ActorsInRadius(model.Vector{}, 270)
	assert.Equal(t, []*model.Actor{near, far}, got)

	got = w.ActorsInRadius(model.NewVector(RegionSize-40, 0, 0), 0)
	assert.Equal(t, []*model.Actor{border}, got, "found through the neighbour region")
}

func TestWorld_ActorsInBox(t *testing.T) {
	w := New(nil)
	inside := pawn("inside", model.NewVector(100, 100, 0), 40)
	edge := pawn("edge", model.NewVector(185, 0, 0), 40)
	outside := pawn("outside", model.NewVector(200, 0, 0), 40)
	above := pawn("above", model.NewVector(0, 0, 500), 40)
	for _, a := range []*model.Actor{inside, edge, outside, above} {
		require.NoError(t, w.Spawn(a))
	}

	got := w.ActorsInBox(model.Vector{}, model.NewVector(150, 150, 100))
	assert.Equal(t, []*model.Actor{inside, edge}, got)

	edge.Destroy()
	got = w.ActorsInBox(model.Vector{}, model.NewVector(150, 150, 100))
	assert.Equal(t, []*model.Actor{inside}, got)
}

func TestWorld_HitUnderCursor(t *testing.T) {
	w := New(nil)
	creep := pawn("creep", model.NewVector(500, 0, 0), 50)
	require.NoError(t, w.Spawn(creep))

	_, ok := w.HitUnderCursor([]model.ObjectType{model.ObjectPawn, model.ObjectWorldStatic})
	assert.False(t, ok, "no cursor")

	w.SetCursor(model.NewVector(520, 10, 0))
	hit, ok := w.HitUnderCursor([]model.ObjectType{model.ObjectPawn})
	require.True(t, ok)
	assert.Same(t, creep, hit.Actor)
	assert.Equal(t, creep.Location(), hit.EndPoint())

	hit, ok = w.HitUnderCursor([]model.ObjectType{model.ObjectWorldStatic})
	require.True(t, ok)
	assert.Nil(t, hit.Actor)
	assert.Equal(t, model.NewVector(520, 10, 0), hit.EndPoint())

	w.SetCursor(model.NewVector(900, 0, 0))
	_, ok = w.HitUnderCursor([]model.ObjectType{model.ObjectPawn})
	assert.False(t, ok)

	w.ClearCursor()
	_, ok = w.HitUnderCursor([]model.ObjectType{model.ObjectWorldStatic})
	assert.False(t, ok)
}

func TestWorld_TargetActorFactory(t *testing.T) {
	w := New(nil)
	avatar := pawn("mage", model.Vector{}, 40)
	require.NoError(t, w.Spawn(avatar))
	asc := abilitysystem.New(avatar, nil)
	asc.SetTargetActorFactory(w.TargetActorFactory())

	ta, err := asc.AbilityTargetActor(ClassGroundTrace)
	require.NoError(t, err)
	_, ok := ta.(*targeting.TraceActor)
	assert.True(t, ok)

	again, err := asc.AbilityTargetActor(ClassGroundTrace)
	require.NoError(t, err)
	assert.Same(t, ta, again)
	assert.Len(t, w.tickers, 1)

	_, err = asc.AbilityTargetActor("Cone")
	assert.True(t, errors.Is(err, ErrUnknownTargetActorClass))

	avatar.Destroy()
	w.Tick(0.1)
	assert.Empty(t, w.tickers)
}

func TestWorld_SpawnProjectileHitsEnemy(t *testing.T) {
	w := New(nil)

	caster := pawn("mage", model.Vector{}, 40)
	caster.SetFaction("Radiant")
	casterASC := abilitysystem.New(caster, nil)
	caster.Data = casterASC

	enemy := pawn("creep", model.NewVector(400, 0, 0), 40)
	enemy.SetFaction("Dire")
	enemyASC := abilitysystem.New(enemy, nil)
	enemy.Data = enemyASC
	enemyASC.Attributes().InitMax(attribute.Health, attribute.MaxHealth, 300)

	require.NoError(t, w.Spawn(caster))
	require.NoError(t, w.Spawn(enemy))

	var hits int
	err := w.SpawnProjectile(ability.ProjectileRequest{
		Ability:   "Fireball",
		Static:    data.ProjectileStatic{Class: "Fireball", Speed: 1000, Range: 1000},
		Source:    casterASC,
		Location:  model.NewVector(64, 0, 0),
		Direction: model.NewVector(1, 0, 0),
		Effects:   ability.EffectContainerSpec{Source: casterASC},
	})
	require.NoError(t, err)
	require.Len(t, w.Projectiles(), 1)
	w.Projectiles()[0].Hit.Subscribe(func(*model.Actor) { hits++ })
	assert.Equal(t, 3, w.ActorCount())

	for range 10 {
		w.Tick(0.05)
	}

	assert.Equal(t, 1, hits)
	assert.Empty(t, w.Projectiles())
	assert.Equal(t, 2, w.ActorCount(), "projectile actor reaped")
}

func TestWorld_Run(t *testing.T) {
	w := New(nil)
	ticker := &countingTicker{}
	w.AddTicker(nil, ticker)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx, 5*time.Millisecond) }()

	assert.Eventually(t, func() bool {
		ran := make(chan bool, 1)
		w.Post(func() { ran <- ticker.ticks >= 3 })
		select {
		case v := <-ran:
			return v
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}
