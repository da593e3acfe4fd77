package ability

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/game/abilitysystem"
	"github.com/udisondev/gamekit/internal/game/anim"
	"github.com/udisondev/gamekit/internal/game/attribute"
	"github.com/udisondev/gamekit/internal/game/cooldown"
	"github.com/udisondev/gamekit/internal/game/curve"
	"github.com/udisondev/gamekit/internal/game/tag"
	"github.com/udisondev/gamekit/internal/game/targeting"
	"github.com/udisondev/gamekit/internal/model"
)

type cursor struct {
	hit model.HitResult
	ok  bool
}

func (c *cursor) HitUnderCursor([]model.ObjectType) (model.HitResult, bool) {
	return c.hit, c.ok
}

func (c *cursor) aimAt(p model.Vector) {
	c.hit = model.HitResult{ImpactPoint: p, BlockingHit: true}
	c.ok = true
}

type animations map[data.AbilityAnimation]*data.Montage

func (m animations) AbilityMontage(kind data.AbilityAnimation) *data.Montage {
	return m[kind]
}

type spawner struct {
	requests []ProjectileRequest
}

func (s *spawner) SpawnProjectile(req ProjectileRequest) error {
	s.requests = append(s.requests, req)
	return nil
}

func castMontage() *data.Montage {
	return &data.Montage{
		Name:         "Cast_A",
		Length:       1,
		BlendOutTime: 0.25,
		Notifies:     []data.Notify{{Name: "CastPoint", Kind: data.NotifyCastPoint, TriggerTime: 0.6}},
	}
}

func healRow() data.AbilityStatic {
	return data.AbilityStatic{
		Name:      "Heal",
		Behavior:  data.BehaviorNoTarget,
		CastTime:  0.3,
		Cooldown:  []float64{5},
		Cost:      data.AbilityCost{Attribute: "Mana", Value: []float64{50}},
		Animation: data.AnimationCast,
		EffectContainers: []data.EffectContainerDef{{
			Tag:        string(tag.EventCastPoint),
			TargetType: data.EffectTargetSelf,
			Effects:    []data.EffectDef{{Name: "HealAmount", Attribute: "Health", Magnitude: []float64{100}}},
		}},
	}
}

func fireballRow() data.AbilityStatic {
	return data.AbilityStatic{
		Name:              "Fireball",
		Behavior:          data.BehaviorPointTarget,
		CastTime:          0.3,
		CastMaxRange:      900,
		TargetObjectTypes: []model.ObjectType{model.ObjectWorldStatic, model.ObjectPawn},
		Cooldown:          []float64{10, 9, 8},
		Cost:              data.AbilityCost{Attribute: "Mana", Value: []float64{90, 100, 110}},
		TargetActorClass:  "GroundTrace",
		Animation:         data.AnimationCast,
		Projectile:        data.ProjectileStatic{Class: "Fireball", Speed: 1200, Range: 1000},
		EffectContainers: []data.EffectContainerDef{{
			Tag:        string(tag.EventProjectileHit),
			TargetType: data.EffectTargetEventTargets,
			Effects:    []data.EffectDef{{Name: "FireballDamage", Attribute: "Health", Magnitude: []float64{-75, -150, -225}}},
		}},
	}
}

func toggleRow() data.AbilityStatic {
	return data.AbilityStatic{
		Name:      "Immolation",
		Behavior:  data.BehaviorToggle,
		Cooldown:  []float64{1},
		Cost:      data.AbilityCost{Attribute: "Mana", Value: []float64{10}},
		Animation: data.AnimationHidden,
	}
}

type fixture struct {
	asc      *abilitysystem.Component
	table    *data.Table[data.AbilityStatic]
	curves   *curve.Table
	cursor   *cursor
	spawner  *spawner
	recorder *tracetest.SpanRecorder
	ledger   *cooldown.Ledger
}

func newFixture(t *testing.T, rows ...data.AbilityStatic) *fixture {
	t.Helper()

	avatar := model.NewActor("mage", model.ObjectPawn, model.Vector{})
	asc := abilitysystem.New(avatar, anim.NewInstance())
	avatar.Data = asc
	asc.SetLocallyControlled(true)
	asc.Attributes().InitMax(attribute.Health, attribute.MaxHealth, 500)
	asc.Attributes().InitMax(attribute.Mana, attribute.MaxMana, 500)

	table, err := data.NewTable("abilities", rows)
	require.NoError(t, err)

	f := &fixture{
		asc:      asc,
		table:    table,
		curves:   curve.NewTable(),
		cursor:   &cursor{},
		spawner:  &spawner{},
		recorder: tracetest.NewSpanRecorder(),
		ledger:   cooldown.NewLedger(cooldown.NewMemoryStore(), nil),
	}
	asc.SetTargetActorFactory(func(_ *abilitysystem.Component, class string) (abilitysystem.TargetActor, error) {
		return targeting.NewTraceActor(class, f.cursor, nil), nil
	})
	return f
}

func (f *fixture) give(name string, level int) (*Ability, abilitysystem.SpecHandle) {
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(f.recorder))
	a := New(name, f.asc, Deps{
		Abilities:   f.table,
		Curves:      f.curves,
		Animations:  animations{data.AnimationCast: castMontage()},
		Projectiles: f.spawner,
		Ledger:      f.ledger,
		Tracer:      tp.Tracer("test"),
	})
	return a, f.asc.GiveAbility(a, level, 1)
}

func (f *fixture) dispatchSpans() []sdktrace.ReadOnlySpan {
	var out []sdktrace.ReadOnlySpan
	for _, s := range f.recorder.Ended() {
		if s.Name() == "ability.dispatch" {
			out = append(out, s)
		}
	}
	return out
}

func (f *fixture) mana() float64 {
	return f.asc.Attributes().Get(attribute.Mana)
}

func TestAbility_DispatchesExactlyOneStrategy(t *testing.T) {
	kinds := []data.AbilityBehavior{
		data.BehaviorHidden,
		data.BehaviorPassive,
		data.BehaviorNoTarget,
		data.BehaviorActorTarget,
		data.BehaviorPointTarget,
		data.BehaviorToggle,
	}
	for _, kind := range kinds {
		t.Run(kind.String(), func(t *testing.T) {
			b, ok := behaviorFor(kind)
			require.True(t, ok)
			assert.Equal(t, kind, b.kind())

			row := data.AbilityStatic{Name: "Probe", Behavior: kind, TargetActorClass: "GroundTrace", CastMaxRange: 900}
			f := newFixture(t, row)
			_, h := f.give("Probe", 1)
			require.True(t, f.asc.TryActivateAbility(h))

			spans := f.dispatchSpans()
			require.Len(t, spans, 1)
			var behaviorAttr string
			for _, kv := range spans[0].Attributes() {
				if kv.Key == "behavior" {
					behaviorAttr = kv.Value.AsString()
				}
			}
			assert.Equal(t, kind.String(), behaviorAttr)
		})
	}

	_, ok := behaviorFor(data.AbilityBehavior(42))
	assert.False(t, ok)
}

func TestAbility_MissingStaticEndsWithoutDispatch(t *testing.T) {
	f := newFixture(t, healRow())
	a, h := f.give("Unknown", 1)

	var ended []abilitysystem.EndedEvent
	f.asc.AbilityEnded.Subscribe(func(ev abilitysystem.EndedEvent) { ended = append(ended, ev) })

	require.True(t, f.asc.TryActivateAbility(h))
	assert.Nil(t, a.Static())
	assert.Empty(t, f.dispatchSpans())
	assert.False(t, a.IsActive())
	require.Len(t, ended, 1)
	assert.False(t, ended[0].Cancelled)
}

func TestAbility_NoTargetCommitsOnCastPoint(t *testing.T) {
	f := newFixture(t, healRow())
	a, h := f.give("Heal", 1)
	f.asc.Attributes().Set(attribute.Health, 100)

	require.True(t, f.asc.TryActivateAbility(h))
	require.NotNil(t, a.AnimTask())
	assert.Equal(t, 2.0, a.AnimTask().Rate(), "cast point at 0.6 played in 0.3s")
	assert.Equal(t, 500.0, f.mana(), "nothing paid before the cast point")

	f.asc.Tick(0.35)
	assert.Equal(t, 450.0, f.mana())
	assert.Equal(t, 200.0, f.asc.Attributes().Get(attribute.Health))
	assert.True(t, a.IsOnCooldown())
	assert.False(t, a.IsActive())

	remaining, duration := a.CooldownTimeRemaining()
	assert.Equal(t, 5.0, duration)
	assert.InDelta(t, 4.65, remaining, 1e-9, "effects tick after the montage")

	ok, reason := a.CanActivate(a.Spec())
	assert.False(t, ok)
	assert.Equal(t, tag.ActivateFailCooldown, reason)

	f.ledger.Flush(context.Background())
	left, err := f.ledger.Remaining(context.Background(), f.asc.Avatar().ID())
	require.NoError(t, err)
	assert.Contains(t, left, "Heal")
}

func TestAbility_PointTargetFlow(t *testing.T) {
	f := newFixture(t, fireballRow())
	a, h := f.give("Fireball", 2)

	started, results := 0, []bool{}
	a.TargetingStart.Subscribe(func(struct{}) { started++ })
	a.TargetingResult.Subscribe(func(cancelled bool) { results = append(results, cancelled) })

	f.cursor.aimAt(model.NewVector(500, 0, 0))
	require.True(t, f.asc.TryActivateAbility(h))
	assert.Equal(t, 1, started)
	require.NotNil(t, a.TargetTask())
	assert.Nil(t, a.AnimTask())

	f.asc.LocalInputConfirm()
	assert.Equal(t, []bool{false}, results)
	assert.Nil(t, a.TargetTask())
	require.NotNil(t, a.AnimTask())

	f.asc.Tick(0.35)
	require.Len(t, f.spawner.requests, 1)
	req := f.spawner.requests[0]
	assert.Equal(t, "Fireball", req.Static.Class)
	assert.Equal(t, 2, req.Level)
	assert.Equal(t, model.NewVector(64, 0, 0), req.Location)
	assert.InDelta(t, 1.0, req.Direction.X, 1e-9)
	assert.Nil(t, req.Target)
	require.Len(t, req.Effects.Specs, 1)
	assert.Equal(t, -150.0, req.Effects.Specs[0].Magnitude(0))

	assert.Equal(t, 400.0, f.mana(), "level 2 cost")
	remaining, _ := a.CooldownTimeRemaining()
	assert.InDelta(t, 8.65, remaining, 1e-9)
	assert.False(t, a.IsActive())
}

func TestAbility_TargetingCancelled(t *testing.T) {
	f := newFixture(t, fireballRow())
	a, h := f.give("Fireball", 1)

	var results []bool
	a.TargetingResult.Subscribe(func(cancelled bool) { results = append(results, cancelled) })
	var ended []abilitysystem.EndedEvent
	f.asc.AbilityEnded.Subscribe(func(ev abilitysystem.EndedEvent) { ended = append(ended, ev) })

	f.cursor.aimAt(model.NewVector(500, 0, 0))
	require.True(t, f.asc.TryActivateAbility(h))
	f.asc.LocalInputCancel()

	assert.Equal(t, []bool{true}, results)
	require.Len(t, ended, 1)
	assert.True(t, ended[0].Cancelled)
	assert.False(t, a.IsActive())
	assert.Equal(t, 500.0, f.mana())
	assert.Equal(t, 0, f.asc.LocalConfirmCallbacks())
}

func TestAbility_ConfirmOutOfRangeKeepsTargeting(t *testing.T) {
	f := newFixture(t, fireballRow())
	a, h := f.give("Fireball", 1)

	f.cursor.aimAt(model.NewVector(2000, 0, 0))
	require.True(t, f.asc.TryActivateAbility(h))
	f.asc.LocalInputConfirm()
	assert.NotNil(t, a.TargetTask())
	assert.Nil(t, a.AnimTask())

	f.cursor.aimAt(model.NewVector(900, 0, 0))
	a.TargetTask().Actor().Tick(0.016)
	f.asc.LocalInputConfirm()
	assert.Nil(t, a.TargetTask())
	assert.NotNil(t, a.AnimTask())
}

func TestAbility_NonAuthorityNeverCommits(t *testing.T) {
	f := newFixture(t, fireballRow(), healRow())
	f.asc.Avatar().SetRole(model.RoleAutonomousProxy)
	a, h := f.give("Heal", 1)

	require.True(t, f.asc.TryActivateAbility(h))
	f.asc.Tick(0.35)

	assert.Equal(t, 500.0, f.mana())
	assert.False(t, a.IsOnCooldown())
	assert.Empty(t, f.spawner.requests)
	assert.True(t, a.IsActive(), "waits for the montage to blend out")

	f.asc.Tick(0.1)
	assert.False(t, a.IsActive())
}

func TestAbility_SecondActivationEndsFirstAnimTask(t *testing.T) {
	f := newFixture(t, healRow())
	a, h := f.give("Heal", 1)

	require.True(t, f.asc.TryActivateAbility(h))
	first := a.AnimTask()
	require.NotNil(t, first)
	notified := 0
	first.Completed.Subscribe(func(abilitysystem.EventData) { notified++ })
	first.Interrupted.Subscribe(func(abilitysystem.EventData) { notified++ })
	first.Cancelled.Subscribe(func(abilitysystem.EventData) { notified++ })

	require.True(t, f.asc.TryActivateAbility(h))
	second := a.AnimTask()
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	assert.False(t, first.IsActive())
	assert.True(t, second.IsActive())

	f.asc.Tick(0.35)
	assert.Zero(t, notified)
	assert.Equal(t, 450.0, f.mana(), "committed once")
}

func TestAbility_SharedTargetActorServesOneAbility(t *testing.T) {
	first, second := fireballRow(), fireballRow()
	first.Name, second.Name = "FireballA", "FireballB"
	f := newFixture(t, first, second)
	a, ha := f.give("FireballA", 1)
	b, hb := f.give("FireballB", 1)

	var results []bool
	a.TargetingResult.Subscribe(func(cancelled bool) { results = append(results, cancelled) })

	f.cursor.aimAt(model.NewVector(500, 0, 0))
	require.True(t, f.asc.TryActivateAbility(ha))
	require.True(t, f.asc.TryActivateAbility(hb))
	assert.Nil(t, a.TargetTask())
	assert.Equal(t, []bool{true}, results, "the first run is cancelled")
	assert.False(t, a.IsActive())

	f.asc.LocalInputConfirm()
	assert.Nil(t, a.AnimTask())
	require.NotNil(t, b.AnimTask())

	f.asc.Tick(0.35)
	assert.Len(t, f.spawner.requests, 1)
	assert.Equal(t, 410.0, f.mana())
	assert.False(t, a.IsOnCooldown())
	assert.True(t, b.IsOnCooldown())
}

func TestAbility_EvictedMontageDoesNotCommit(t *testing.T) {
	bless := healRow()
	bless.Name = "Bless"
	f := newFixture(t, healRow(), bless)
	heal, hh := f.give("Heal", 1)
	blessing, hb := f.give("Bless", 1)
	f.asc.Attributes().Set(attribute.Health, 100)

	require.True(t, f.asc.TryActivateAbility(hh))
	f.asc.Tick(0.1)
	require.True(t, f.asc.TryActivateAbility(hb))
	f.asc.Tick(0.35)

	assert.Equal(t, 450.0, f.mana())
	assert.Equal(t, 200.0, f.asc.Attributes().Get(attribute.Health))
	assert.False(t, heal.IsOnCooldown())
	assert.True(t, blessing.IsOnCooldown())
}

func TestAbility_ProjectileHitDoesNotReachCast(t *testing.T) {
	f := newFixture(t, healRow())
	a, h := f.give("Heal", 1)
	f.asc.Attributes().Set(attribute.Health, 100)

	require.True(t, f.asc.TryActivateAbility(h))
	f.asc.HandleGameplayEvent(abilitysystem.EventData{Tag: tag.EventProjectileHit, Magnitude: 10})

	assert.Equal(t, 500.0, f.mana(), "hit events do not commit a cast in progress")
	assert.True(t, a.IsActive())

	f.asc.Tick(0.35)
	assert.Equal(t, 450.0, f.mana())
	assert.False(t, a.IsActive())
}

func TestAbility_InterruptedMontageCancels(t *testing.T) {
	f := newFixture(t, healRow())
	a, h := f.give("Heal", 1)

	var ended []abilitysystem.EndedEvent
	f.asc.AbilityEnded.Subscribe(func(ev abilitysystem.EndedEvent) { ended = append(ended, ev) })

	require.True(t, f.asc.TryActivateAbility(h))
	f.asc.Anim().Stop(0.1)

	assert.False(t, a.IsActive())
	require.Len(t, ended, 1)
	assert.True(t, ended[0].Cancelled)
	assert.Equal(t, 500.0, f.mana())
}

func TestAbility_CommitFailsWhenCostBecomesUnaffordable(t *testing.T) {
	f := newFixture(t, healRow())
	a, h := f.give("Heal", 1)

	require.True(t, f.asc.TryActivateAbility(h))
	f.asc.Attributes().Set(attribute.Mana, 10)
	f.asc.Tick(0.35)

	assert.False(t, a.IsActive())
	assert.False(t, a.IsOnCooldown())
	assert.Equal(t, 10.0, f.mana())
}

func TestAbility_CanActivateReasons(t *testing.T) {
	f := newFixture(t, healRow())
	a, h := f.give("Heal", 0)

	var reasons []tag.Tag
	f.asc.ActivationFailed.Subscribe(func(ev abilitysystem.FailureEvent) { reasons = append(reasons, ev.Reason) })

	assert.False(t, f.asc.TryActivateAbility(h))
	require.True(t, a.LevelUp())

	f.asc.AddLooseTag(tag.DebuffStun)
	assert.False(t, f.asc.TryActivateAbility(h))
	f.asc.RemoveLooseTag(tag.DebuffStun)

	f.asc.Attributes().Set(attribute.Mana, 20)
	assert.False(t, f.asc.TryActivateAbility(h))

	assert.Equal(t, []tag.Tag{tag.ActivateFailNotLearn, tag.ActivateFailBlocked, tag.ActivateFailCost}, reasons)
}

func TestAbility_LevelUpStopsAtMax(t *testing.T) {
	f := newFixture(t, fireballRow())
	a, _ := f.give("Fireball", 0)

	assert.True(t, a.LevelUp())
	assert.True(t, a.LevelUp())
	assert.True(t, a.LevelUp())
	assert.False(t, a.LevelUp())
	assert.Equal(t, 3, a.Level())
}

func TestAbility_Toggle(t *testing.T) {
	f := newFixture(t, toggleRow())
	a, h := f.give("Immolation", 1)

	require.True(t, f.asc.TryActivateAbility(h))
	assert.True(t, a.IsToggledOn())
	assert.False(t, a.IsActive())
	assert.Equal(t, 490.0, f.mana())
	assert.True(t, a.IsOnCooldown())

	// switching off ignores the cooldown and pays nothing
	require.True(t, f.asc.TryActivateAbility(h))
	assert.False(t, a.IsToggledOn())
	assert.Equal(t, 490.0, f.mana())
}

func TestAbility_TableChangeRegeneratesEffects(t *testing.T) {
	f := newFixture(t, fireballRow())
	a, _ := f.give("Fireball", 1)

	first := a.CooldownEffect()
	require.NotNil(t, first)
	assert.Equal(t, 10.0, first.Duration.AtLevel(1))

	changed := fireballRow()
	changed.Cooldown = []float64{20, 10}
	require.NoError(t, f.table.Replace([]data.AbilityStatic{changed}))

	second := a.CooldownEffect()
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
	assert.Equal(t, 20.0, second.Duration.AtLevel(1))
	assert.Equal(t, 10.0, second.Duration.AtLevel(2))

	var cooldownRows int
	for _, name := range f.curves.RowNames() {
		if name == CooldownRow("Fireball") {
			cooldownRows++
		}
	}
	assert.Equal(t, 1, cooldownRows)
}

func TestAbility_EffectContainerSelf(t *testing.T) {
	f := newFixture(t, healRow())
	a, _ := f.give("Heal", 1)
	f.asc.Attributes().Set(attribute.Health, 50)

	spec := a.MakeEffectContainerSpec(tag.EventCastPoint, abilitysystem.EventData{}, 1)
	require.True(t, spec.HasValidEffects())
	assert.Equal(t, []*model.Actor{f.asc.Avatar()}, spec.TargetData.Actors())

	spec.Apply()
	assert.Equal(t, 150.0, f.asc.Attributes().Get(attribute.Health))

	empty := a.MakeEffectContainerSpec("Event.Unknown", abilitysystem.EventData{}, 1)
	assert.False(t, empty.HasValidEffects())
}
