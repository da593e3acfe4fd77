package targeting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/game/abilitysystem"
	"github.com/udisondev/gamekit/internal/model"
)

type fakeTracer struct {
	hit   model.HitResult
	ok    bool
	calls int
	types []model.ObjectType
}

func (f *fakeTracer) HitUnderCursor(types []model.ObjectType) (model.HitResult, bool) {
	f.calls++
	f.types = types
	return f.hit, f.ok
}

func (f *fakeTracer) aimAt(p model.Vector) {
	f.hit = model.HitResult{ImpactPoint: p, TraceEnd: p.Add(model.NewVector(0, 0, -1000)), BlockingHit: true}
	f.ok = true
}

type fixture struct {
	asc    *abilitysystem.Component
	tracer *fakeTracer
	actor  *TraceActor
	events []Validity
	ready  []model.TargetDataHandle
	cancel []model.TargetDataHandle
}

func newFixture(t *testing.T, exec model.ExecutionContext) *fixture {
	t.Helper()
	avatar := model.NewActor("hero", model.ObjectPawn, model.Vector{})
	f := &fixture{
		asc:    abilitysystem.New(avatar, nil),
		tracer: &fakeTracer{},
	}
	f.asc.SetLocallyControlled(exec.LocallyControlled)
	f.actor = NewTraceActor("GroundTrace", f.tracer, nil)
	f.actor.SetParams(Params{MinRange: 100, MaxRange: 500, ObjectTypes: []model.ObjectType{model.ObjectWorldStatic}})
	f.actor.ValidityChanged.Subscribe(func(v Validity) { f.events = append(f.events, v) })
	f.actor.TargetDataReady.Subscribe(func(h model.TargetDataHandle) { f.ready = append(f.ready, h) })
	f.actor.Canceled.Subscribe(func(h model.TargetDataHandle) { f.cancel = append(f.cancel, h) })
	return f
}

func (f *fixture) start(exec model.ExecutionContext, key model.PredictionKey) {
	f.actor.StartTargeting(Activation{ASC: f.asc, Handle: 1, PredictionKey: key, Exec: exec})
}

var localClient = model.ExecutionContext{Role: model.RoleAutonomousProxy, LocallyControlled: true}
var remoteServer = model.ExecutionContext{Role: model.RoleAuthority}

func TestTraceActor_RangeIsInclusive(t *testing.T) {
	tests := []struct {
		name  string
		point model.Vector
		want  bool
	}{
		{"inside", model.NewVector(300, 0, 0), true},
		{"exactly min", model.NewVector(100, 0, 0), true},
		{"exactly max", model.NewVector(0, 500, 0), true},
		{"too close", model.NewVector(99.9, 0, 0), false},
		{"too far", model.NewVector(300, 400, 1), false},
		{"3d distance counts", model.NewVector(0, 0, 600), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, localClient)
			f.tracer.aimAt(tt.point)
			f.start(localClient, 1)
			f.actor.Tick(0.016)
			assert.Equal(t, tt.want, f.actor.IsTargetValid())
			assert.Equal(t, tt.want, f.actor.IsValid())
		})
	}
}

func TestTraceActor_StartBroadcastsInitialValidity(t *testing.T) {
	f := newFixture(t, localClient)
	f.tracer.aimAt(model.NewVector(1000, 0, 0))
	f.start(localClient, 1)

	require.Len(t, f.events, 1)
	assert.False(t, f.events[0].Valid)
	assert.Equal(t, []model.ObjectType{model.ObjectWorldStatic}, f.tracer.types)
}

func TestTraceActor_ValidityTransitions(t *testing.T) {
	f := newFixture(t, localClient)
	f.tracer.aimAt(model.NewVector(1000, 0, 0))
	f.start(localClient, 1)

	f.actor.Tick(0.016)
	assert.Len(t, f.events, 1, "no transition while staying invalid")

	f.tracer.aimAt(model.NewVector(200, 0, 0))
	f.actor.Tick(0.016)
	require.Len(t, f.events, 2)
	assert.True(t, f.events[1].Valid)
	assert.Equal(t, model.NewVector(200, 0, 0), f.actor.Location())

	f.actor.Tick(0.016)
	assert.Len(t, f.events, 2)

	f.tracer.ok = false
	f.actor.Tick(0.016)
	require.Len(t, f.events, 3)
	assert.False(t, f.events[2].Valid)
}

func TestTraceActor_ConfirmWhileInvalidRearms(t *testing.T) {
	f := newFixture(t, localClient)
	f.tracer.aimAt(model.NewVector(1000, 0, 0))
	f.start(localClient, 1)
	f.actor.Tick(0.016)

	f.asc.LocalInputConfirm()
	assert.Empty(t, f.ready)
	assert.True(t, f.actor.IsActive())
	assert.Equal(t, 1, f.asc.LocalConfirmCallbacks(), "confirm callback re-armed")

	f.tracer.aimAt(model.NewVector(250, 0, 0))
	f.actor.Tick(0.016)
	f.asc.LocalInputConfirm()

	require.Len(t, f.ready, 1)
	hit := f.ready[0].Get(0).Hit
	require.NotNil(t, hit)
	assert.Equal(t, model.NewVector(250, 0, 0), hit.EndPoint())
	assert.False(t, f.actor.IsActive())
	assert.Equal(t, 0, f.asc.LocalConfirmCallbacks())
	assert.Equal(t, 0, f.asc.LocalCancelCallbacks(), "bindings torn down")
}

func TestTraceActor_ConfirmAfterSourceMovesIntoRange(t *testing.T) {
	f := newFixture(t, localClient)
	f.tracer.aimAt(model.NewVector(800, 0, 0))
	f.start(localClient, 1)
	require.False(t, f.actor.IsValid())

	f.asc.Avatar().SetLocation(model.NewVector(500, 0, 0))
	f.asc.LocalInputConfirm()

	require.Len(t, f.ready, 1)
	hit := f.ready[0].Get(0).Hit
	require.NotNil(t, hit)
	assert.Equal(t, model.NewVector(800, 0, 0), hit.EndPoint())
	assert.True(t, f.events[len(f.events)-1].Valid)
}

func TestTraceActor_Cancel(t *testing.T) {
	f := newFixture(t, localClient)
	f.tracer.aimAt(model.NewVector(200, 0, 0))
	f.start(localClient, 1)

	f.asc.LocalInputCancel()
	require.Len(t, f.cancel, 1)
	assert.Equal(t, 0, f.cancel[0].Num())
	assert.Empty(t, f.ready)
	assert.Equal(t, 0, f.asc.LocalConfirmCallbacks())

	// inputs after stop are ignored
	f.asc.LocalInputConfirm()
	assert.Empty(t, f.ready)
}

func TestTraceActor_AuthorityUsesReplicatedEvents(t *testing.T) {
	f := newFixture(t, remoteServer)
	f.tracer.aimAt(model.NewVector(200, 0, 0))
	key := model.PredictionKey(5)
	f.start(remoteServer, key)

	assert.Equal(t, 0, f.asc.LocalConfirmCallbacks(), "authority does not bind local input")
	assert.Equal(t, 1, f.asc.ReplicatedEventDelegate(abilitysystem.GenericConfirm, 1, key).Len())

	// a confirm for another activation is ignored
	f.asc.InvokeReplicatedEvent(abilitysystem.GenericConfirm, 1, key+1)
	assert.Empty(t, f.ready)

	f.asc.InvokeReplicatedEvent(abilitysystem.GenericConfirm, 1, key)
	require.Len(t, f.ready, 1)
	assert.Equal(t, 0, f.asc.ReplicatedEventDelegate(abilitysystem.GenericConfirm, 1, key).Len())
	assert.Equal(t, 0, f.asc.ReplicatedEventDelegate(abilitysystem.GenericCancel, 1, key).Len())
}

func TestTraceActor_AuthorityFiresEarlyConfirm(t *testing.T) {
	f := newFixture(t, remoteServer)
	f.tracer.aimAt(model.NewVector(200, 0, 0))
	key := model.PredictionKey(9)

	f.asc.InvokeReplicatedEvent(abilitysystem.GenericConfirm, 1, key)
	f.start(remoteServer, key)

	require.Len(t, f.ready, 1)
	assert.False(t, f.actor.IsActive())
}

func TestTraceActor_SimulatedProxyDoesNothing(t *testing.T) {
	proxy := model.ExecutionContext{Role: model.RoleSimulatedProxy}
	f := newFixture(t, proxy)
	f.tracer.aimAt(model.NewVector(200, 0, 0))
	f.start(proxy, 1)
	f.actor.Tick(0.016)

	assert.Equal(t, 0, f.tracer.calls)
	assert.Equal(t, 0, f.asc.LocalConfirmCallbacks())
}

func TestTraceActor_RequireActor(t *testing.T) {
	f := newFixture(t, localClient)
	f.actor.InitializeFromStatic(&data.AbilityStatic{
		Behavior:          data.BehaviorActorTarget,
		CastMaxRange:      500,
		TargetObjectTypes: []model.ObjectType{model.ObjectPawn},
	})
	assert.True(t, f.actor.Params().RequireActor)

	f.tracer.aimAt(model.NewVector(200, 0, 0))
	f.start(localClient, 1)
	assert.False(t, f.actor.IsValid())

	enemy := model.NewActor("creep", model.ObjectPawn, model.NewVector(200, 0, 0))
	f.tracer.hit.Actor = enemy
	f.actor.Tick(0.016)
	assert.True(t, f.actor.IsValid())

	f.asc.LocalInputConfirm()
	require.Len(t, f.ready, 1)
	assert.Equal(t, []*model.Actor{enemy}, f.ready[0].Actors())
}

type recordingDrawer struct {
	lines, spheres, circles int
}

func (d *recordingDrawer) Line(model.Vector, model.Vector, bool) { d.lines++ }
func (d *recordingDrawer) Sphere(model.Vector, float64, bool)    { d.spheres++ }
func (d *recordingDrawer) Circle(model.Vector, float64)          { d.circles++ }

func TestTraceActor_DebugDraw(t *testing.T) {
	f := newFixture(t, localClient)
	drawer := &recordingDrawer{}
	f.actor.drawer = drawer
	f.tracer.aimAt(model.NewVector(200, 0, 0))
	f.start(localClient, 1)
	f.actor.Tick(0.016)
	assert.Equal(t, 1, drawer.lines)
	assert.Equal(t, 1, drawer.spheres)
	assert.Equal(t, 1, drawer.circles)
}

func TestWaitTargetData(t *testing.T) {
	f := newFixture(t, localClient)
	f.tracer.aimAt(model.NewVector(200, 0, 0))

	task := NewWaitTargetData(f.actor)
	var valid []model.TargetDataHandle
	task.ValidData.Subscribe(func(h model.TargetDataHandle) { valid = append(valid, h) })
	task.Activate(Activation{ASC: f.asc, Handle: 1, PredictionKey: 1, Exec: localClient})
	assert.True(t, task.IsActive())

	f.asc.LocalInputConfirm()
	require.Len(t, valid, 1)
	assert.False(t, task.IsActive())
	assert.Equal(t, 1, f.actor.TargetDataReady.Len(), "only the fixture listener remains")

	// ending an ended task is a no-op
	task.EndTask()
}

func TestWaitTargetData_EndTaskStopsActor(t *testing.T) {
	f := newFixture(t, localClient)
	f.tracer.aimAt(model.NewVector(200, 0, 0))

	task := NewWaitTargetData(f.actor)
	cancelled := 0
	task.Cancelled.Subscribe(func(model.TargetDataHandle) { cancelled++ })
	task.Activate(Activation{ASC: f.asc, Handle: 1, PredictionKey: 1, Exec: localClient})

	task.EndTask()
	assert.False(t, f.actor.IsActive())
	assert.Equal(t, 0, f.asc.LocalCancelCallbacks())
	assert.Equal(t, 0, cancelled)
}

func TestWaitTargetData_RestartCancelsPreviousOwner(t *testing.T) {
	f := newFixture(t, localClient)
	f.tracer.aimAt(model.NewVector(200, 0, 0))

	first := NewWaitTargetData(f.actor)
	second := NewWaitTargetData(f.actor)
	var firstValid, firstCancelled, secondValid int
	first.ValidData.Subscribe(func(model.TargetDataHandle) { firstValid++ })
	first.Cancelled.Subscribe(func(model.TargetDataHandle) { firstCancelled++ })
	second.ValidData.Subscribe(func(model.TargetDataHandle) { secondValid++ })

	first.Activate(Activation{ASC: f.asc, Handle: 1, PredictionKey: 1, Exec: localClient})
	second.Activate(Activation{ASC: f.asc, Handle: 2, PredictionKey: 2, Exec: localClient})

	assert.Equal(t, 1, firstCancelled)
	assert.False(t, first.IsActive())
	assert.True(t, second.IsActive())
	assert.Equal(t, 1, f.asc.LocalConfirmCallbacks())

	// ending the stale task leaves the current run alone
	first.EndTask()
	assert.True(t, f.actor.IsActive())

	f.asc.LocalInputConfirm()
	assert.Zero(t, firstValid)
	assert.Equal(t, 1, secondValid)
	assert.Equal(t, 1, f.actor.TargetDataReady.Len(), "only the fixture listener remains")
}

func TestWaitTargetData_IgnoresRunsItDoesNotOwn(t *testing.T) {
	f := newFixture(t, localClient)
	f.tracer.aimAt(model.NewVector(200, 0, 0))

	task := NewWaitTargetData(f.actor)
	valid := 0
	task.ValidData.Subscribe(func(model.TargetDataHandle) { valid++ })
	task.Activate(Activation{ASC: f.asc, Handle: 1, PredictionKey: 1, Exec: localClient})

	// restarted directly, bypassing the task
	f.start(localClient, 2)
	f.asc.LocalInputConfirm()

	require.Len(t, f.ready, 1)
	assert.Zero(t, valid)
	assert.True(t, task.IsActive())
}
