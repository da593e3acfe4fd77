// Package targeting runs cursor-trace target selection for abilities.
package targeting

import (
	"log/slog"

	"github.com/udisondev/gamekit/internal/data"
	"github.com/udisondev/gamekit/internal/event"
	"github.com/udisondev/gamekit/internal/game/abilitysystem"
	"github.com/udisondev/gamekit/internal/model"
)

// CursorTracer hit-tests under the player cursor.
type CursorTracer interface {
	HitUnderCursor(types []model.ObjectType) (model.HitResult, bool)
}

// Params configures a trace from an ability row.
type Params struct {
	MinRange     float64
	MaxRange     float64
	AreaOfEffect float64
	ObjectTypes  []model.ObjectType
	// RequireActor rejects hits that did not select an actor other than the source.
	RequireActor bool
}

// ParamsFromStatic reads the targeting parameters of an ability row.
func ParamsFromStatic(row *data.AbilityStatic) Params {
	return Params{
		MinRange:     row.CastMinRange,
		MaxRange:     row.CastMaxRange,
		AreaOfEffect: row.AreaOfEffect,
		ObjectTypes:  row.TargetObjectTypes,
		RequireActor: row.Behavior == data.BehaviorActorTarget,
	}
}

// Activation identifies the ability activation that owns a targeting run.
type Activation struct {
	ASC           *abilitysystem.Component
	Handle        abilitysystem.SpecHandle
	PredictionKey model.PredictionKey
	Exec          model.ExecutionContext
}

// Validity is emitted when the trace target becomes valid or invalid.
type Validity struct {
	Hit   model.HitResult
	Valid bool
}

// TraceActor follows the cursor, validates the range and produces target data
// on confirmation.
type TraceActor struct {
	class  string
	tracer CursorTracer
	drawer DebugDrawer
	params Params

	act      Activation
	run      uint64
	source   *model.Actor
	active   bool
	valid    bool
	endPoint model.Vector
	lastHit  model.HitResult
	lastGood model.HitResult

	inputBound      bool
	boundLocal      bool
	localConfirm    event.Handle
	localCancel     event.Handle
	replicatedOK    event.Handle
	replicatedAbort event.Handle

	ValidityChanged event.Signal[Validity]
	TargetDataReady event.Signal[model.TargetDataHandle]
	Canceled        event.Signal[model.TargetDataHandle]
}

// NewTraceActor creates a trace actor of class. drawer may be nil.
func NewTraceActor(class string, tracer CursorTracer, drawer DebugDrawer) *TraceActor {
	return &TraceActor{class: class, tracer: tracer, drawer: drawer}
}

// Class implements abilitysystem.TargetActor.
func (t *TraceActor) Class() string {
	return t.class
}

// Destroy implements abilitysystem.TargetActor.
func (t *TraceActor) Destroy() {
	t.StopTargeting()
	t.ValidityChanged.Clear()
	t.TargetDataReady.Clear()
	t.Canceled.Clear()
}

// InitializeFromStatic configures the trace from an ability row.
func (t *TraceActor) InitializeFromStatic(row *data.AbilityStatic) {
	t.params = ParamsFromStatic(row)
}

// SetParams configures the trace directly.
func (t *TraceActor) SetParams(p Params) {
	t.params = p
}

// Params returns the current configuration.
func (t *TraceActor) Params() Params {
	return t.params
}

// IsActive returns true between StartTargeting and StopTargeting.
func (t *TraceActor) IsActive() bool {
	return t.active
}

// IsValid returns the current validity.
func (t *TraceActor) IsValid() bool {
	return t.valid
}

// Location returns the current trace end point.
func (t *TraceActor) Location() model.Vector {
	return t.endPoint
}

// Run returns the number of runs started so far, which identifies the
// current run.
func (t *TraceActor) Run() uint64 {
	return t.run
}

// StartTargeting begins a run for act, binds confirm/cancel input and
// broadcasts the initial validity. A run already in progress is stopped
// without notification.
func (t *TraceActor) StartTargeting(act Activation) {
	if t.active {
		t.StopTargeting()
	}
	t.run++
	t.act = act
	t.source = act.ASC.Avatar()
	t.active = true
	t.valid = false
	t.lastHit = model.HitResult{}
	t.lastGood = model.HitResult{}

	if act.Exec.ShouldObserveTargeting() {
		t.trace()
		t.valid = t.IsTargetValid()
		if t.valid {
			t.lastGood = t.lastHit
		}
	}
	t.ValidityChanged.Emit(Validity{Hit: t.lastHit, Valid: t.valid})

	t.bindInputs()
}

// Tick traces under the cursor. Runs only on the controlling peer and the authority.
func (t *TraceActor) Tick(float64) {
	if !t.active || !t.act.Exec.ShouldObserveTargeting() {
		return
	}
	t.trace()
	valid := t.refreshValidity()
	if valid {
		t.lastGood = t.lastHit
	}
	t.debugDraw(valid)
}

// IsTargetValid checks MinRange² <= dist² <= MaxRange² from the source to the
// trace end point. Bounds are inclusive.
func (t *TraceActor) IsTargetValid() bool {
	if t.source == nil {
		return false
	}
	if t.params.RequireActor && (t.lastHit.Actor == nil || t.lastHit.Actor == t.source) {
		return false
	}
	d2 := t.source.Location().DistanceSquared(t.endPoint)
	return t.params.MaxRange*t.params.MaxRange >= d2 && d2 >= t.params.MinRange*t.params.MinRange
}

// ConfirmTargeting produces target data when the target is valid. Otherwise
// the local confirm callback is re-armed and nothing is produced.
func (t *TraceActor) ConfirmTargeting() {
	if !t.active {
		return
	}
	if !t.refreshValidity() {
		// confirm callbacks are cleared on every confirm input
		if t.boundLocal {
			t.localConfirm = t.act.ASC.AddLocalConfirmCallback(t.ConfirmTargeting)
		}
		return
	}
	// the source may have moved into range since the last tick
	t.lastGood = t.lastHit

	handle := model.NewTargetDataFromHit(t.lastGood)
	t.StopTargeting()
	t.TargetDataReady.Emit(handle)
}

// CancelTargeting ends the run with empty target data.
func (t *TraceActor) CancelTargeting() {
	if !t.active {
		return
	}
	t.StopTargeting()
	t.Canceled.Emit(model.TargetDataHandle{})
}

// StopTargeting ends the run and removes exactly the input bindings made by
// StartTargeting.
func (t *TraceActor) StopTargeting() {
	if !t.active {
		return
	}
	t.active = false
	t.unbindInputs()
}

func (t *TraceActor) trace() {
	hit, ok := t.tracer.HitUnderCursor(t.params.ObjectTypes)
	if !ok {
		hit = model.HitResult{}
	}
	t.lastHit = hit
	t.endPoint = hit.EndPoint()
}

// refreshValidity recomputes validity and broadcasts transitions.
func (t *TraceActor) refreshValidity() bool {
	valid := t.IsTargetValid()
	if valid != t.valid {
		t.valid = valid
		t.ValidityChanged.Emit(Validity{Hit: t.lastHit, Valid: valid})
	}
	return valid
}

func (t *TraceActor) bindInputs() {
	asc := t.act.ASC
	if t.act.Exec.LocallyControlled {
		t.localConfirm = asc.AddLocalConfirmCallback(t.ConfirmTargeting)
		t.localCancel = asc.AddLocalCancelCallback(t.CancelTargeting)
		t.boundLocal = true
		t.inputBound = true
		return
	}
	if !t.act.Exec.HasAuthority() {
		return
	}

	h, key := t.act.Handle, t.act.PredictionKey
	t.replicatedOK = asc.ReplicatedEventDelegate(abilitysystem.GenericConfirm, h, key).
		Subscribe(func(struct{}) { t.ConfirmTargeting() })
	t.replicatedAbort = asc.ReplicatedEventDelegate(abilitysystem.GenericCancel, h, key).
		Subscribe(func(struct{}) { t.CancelTargeting() })
	t.inputBound = true

	// the client may have confirmed before the server started targeting
	if asc.CallReplicatedEventDelegateIfSet(abilitysystem.GenericConfirm, h, key) {
		return
	}
	asc.CallReplicatedEventDelegateIfSet(abilitysystem.GenericCancel, h, key)
}

func (t *TraceActor) unbindInputs() {
	if !t.inputBound {
		return
	}
	asc := t.act.ASC
	if t.boundLocal {
		asc.RemoveLocalConfirmCallback(t.localConfirm)
		asc.RemoveLocalCancelCallback(t.localCancel)
	} else {
		h, key := t.act.Handle, t.act.PredictionKey
		asc.ReplicatedEventDelegate(abilitysystem.GenericConfirm, h, key).Unsubscribe(t.replicatedOK)
		asc.ReplicatedEventDelegate(abilitysystem.GenericCancel, h, key).Unsubscribe(t.replicatedAbort)
	}
	t.inputBound = false
	t.boundLocal = false
	slog.Debug("targeting input unbound", "class", t.class, "handle", t.act.Handle)
}

func (t *TraceActor) debugDraw(valid bool) {
	if t.drawer == nil || t.source == nil {
		return
	}
	from := t.source.Location()
	t.drawer.Line(from, t.endPoint, valid)
	t.drawer.Sphere(t.endPoint, 16, valid)
	t.drawer.Circle(from.Add(model.NewVector(0, 0, 1)), t.params.MaxRange)
}
