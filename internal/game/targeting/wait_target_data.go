package targeting

import (
	"github.com/udisondev/gamekit/internal/event"
	"github.com/udisondev/gamekit/internal/model"
)

// WaitTargetData runs a TraceActor for one activation and forwards its result.
// Target actors are shared per class, so results of runs started by another
// task are ignored.
type WaitTargetData struct {
	actor *TraceActor
	run   uint64

	readyH  event.Handle
	cancelH event.Handle
	active  bool

	ValidData event.Signal[model.TargetDataHandle]
	Cancelled event.Signal[model.TargetDataHandle]
}

// NewWaitTargetData creates a task for actor.
func NewWaitTargetData(actor *TraceActor) *WaitTargetData {
	return &WaitTargetData{actor: actor}
}

// Actor returns the wrapped targeting actor.
func (w *WaitTargetData) Actor() *TraceActor {
	return w.actor
}

// IsActive returns true until the task ends.
func (w *WaitTargetData) IsActive() bool {
	return w.active
}

// Activate starts targeting for act. A run of the actor still owned by
// another task is cancelled first, so that task reports Cancelled.
func (w *WaitTargetData) Activate(act Activation) {
	w.actor.CancelTargeting()

	w.active = true
	// StartTargeting may confirm before it returns
	w.run = w.actor.Run() + 1
	w.readyH = w.actor.TargetDataReady.Subscribe(w.onReady)
	w.cancelH = w.actor.Canceled.Subscribe(w.onCancelled)
	w.actor.StartTargeting(act)
}

// EndTask stops the actor and drops the subscriptions. No signal is emitted.
func (w *WaitTargetData) EndTask() {
	if !w.active {
		return
	}
	w.active = false
	w.actor.TargetDataReady.Unsubscribe(w.readyH)
	w.actor.Canceled.Unsubscribe(w.cancelH)
	if w.ownsRun() {
		w.actor.StopTargeting()
	}
}

func (w *WaitTargetData) ownsRun() bool {
	return w.actor.Run() == w.run
}

func (w *WaitTargetData) onReady(data model.TargetDataHandle) {
	if !w.active || !w.ownsRun() {
		return
	}
	w.EndTask()
	w.ValidData.Emit(data)
}

func (w *WaitTargetData) onCancelled(data model.TargetDataHandle) {
	if !w.active || !w.ownsRun() {
		return
	}
	w.EndTask()
	w.Cancelled.Emit(data)
}
