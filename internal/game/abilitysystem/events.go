package abilitysystem

import (
	"github.com/udisondev/gamekit/internal/event"
	"github.com/udisondev/gamekit/internal/game/tag"
	"github.com/udisondev/gamekit/internal/model"
)

// EventData is the payload of a gameplay event.
type EventData struct {
	Tag        tag.Tag
	Instigator *model.Actor
	Target     *model.Actor
	TargetData model.TargetDataHandle
	Magnitude  float64
}

type eventListener struct {
	id      uint64
	filter  tag.Tag
	fn      func(EventData)
	removed bool
}

// ListenerHandle identifies a gameplay event listener.
type ListenerHandle uint64

// AddGameplayEventListener calls fn for events whose tag matches filter.
// The empty filter matches every event.
func (c *Component) AddGameplayEventListener(filter tag.Tag, fn func(EventData)) ListenerHandle {
	c.nextListenerID++
	c.events = append(c.events, &eventListener{id: c.nextListenerID, filter: filter, fn: fn})
	return ListenerHandle(c.nextListenerID)
}

// RemoveGameplayEventListener removes a listener. Safe during dispatch.
func (c *Component) RemoveGameplayEventListener(h ListenerHandle) bool {
	for i, l := range c.events {
		if l.id != uint64(h) {
			continue
		}
		l.removed = true
		c.events = append(c.events[:i:i], c.events[i+1:]...)
		return true
	}
	return false
}

// HandleGameplayEvent dispatches ev to matching listeners and returns how
// many were called.
func (c *Component) HandleGameplayEvent(ev EventData) int {
	snapshot := make([]*eventListener, len(c.events))
	copy(snapshot, c.events)

	called := 0
	for _, l := range snapshot {
		if l.removed {
			continue
		}
		if l.filter.IsValid() && !ev.Tag.Matches(l.filter) {
			continue
		}
		l.fn(ev)
		called++
	}
	return called
}

// callbackList is the generic confirm/cancel callback list. It is cleared
// every time the input fires, so listeners that still care must re-add.
type callbackList struct {
	sig event.Signal[struct{}]
}

func (l *callbackList) fire() {
	l.sig.EmitAndClear(struct{}{})
}

// AddLocalConfirmCallback registers fn for the next local confirm input.
func (c *Component) AddLocalConfirmCallback(fn func()) event.Handle {
	return c.localConfirm.sig.Subscribe(func(struct{}) { fn() })
}

// RemoveLocalConfirmCallback removes a confirm callback.
func (c *Component) RemoveLocalConfirmCallback(h event.Handle) {
	c.localConfirm.sig.Unsubscribe(h)
}

// AddLocalCancelCallback registers fn for the next local cancel input.
func (c *Component) AddLocalCancelCallback(fn func()) event.Handle {
	return c.localCancel.sig.Subscribe(func(struct{}) { fn() })
}

// RemoveLocalCancelCallback removes a cancel callback.
func (c *Component) RemoveLocalCancelCallback(h event.Handle) {
	c.localCancel.sig.Unsubscribe(h)
}

// LocalInputConfirm fires and clears the confirm callbacks.
func (c *Component) LocalInputConfirm() {
	c.localConfirm.fire()
}

// LocalInputCancel fires and clears the cancel callbacks.
func (c *Component) LocalInputCancel() {
	c.localCancel.fire()
}

// LocalConfirmCallbacks returns the number of pending confirm callbacks.
func (c *Component) LocalConfirmCallbacks() int {
	return c.localConfirm.sig.Len()
}

// LocalCancelCallbacks returns the number of pending cancel callbacks.
func (c *Component) LocalCancelCallbacks() int {
	return c.localCancel.sig.Len()
}

// ReplicatedEvent is a generic input event sent from a client to the authority.
type ReplicatedEvent int8

const (
	GenericConfirm ReplicatedEvent = iota
	GenericCancel
)

type replicatedKey struct {
	event  ReplicatedEvent
	handle SpecHandle
	key    model.PredictionKey
}

type replicatedEntry struct {
	delegate  event.Signal[struct{}]
	triggered bool
}

func (c *Component) replicatedEntry(ev ReplicatedEvent, h SpecHandle, key model.PredictionKey) *replicatedEntry {
	k := replicatedKey{ev, h, key}
	e, ok := c.replicated[k]
	if !ok {
		e = &replicatedEntry{}
		c.replicated[k] = e
	}
	return e
}

// ReplicatedEventDelegate returns the delegate fired when ev arrives for
// (h, key).
func (c *Component) ReplicatedEventDelegate(ev ReplicatedEvent, h SpecHandle, key model.PredictionKey) *event.Signal[struct{}] {
	return &c.replicatedEntry(ev, h, key).delegate
}

// InvokeReplicatedEvent records that ev arrived for (h, key) and fires its delegate.
func (c *Component) InvokeReplicatedEvent(ev ReplicatedEvent, h SpecHandle, key model.PredictionKey) {
	e := c.replicatedEntry(ev, h, key)
	e.triggered = true
	e.delegate.Emit(struct{}{})
}

// CallReplicatedEventDelegateIfSet fires the delegate if ev already arrived
// for (h, key). Returns true when it did.
func (c *Component) CallReplicatedEventDelegateIfSet(ev ReplicatedEvent, h SpecHandle, key model.PredictionKey) bool {
	e, ok := c.replicated[replicatedKey{ev, h, key}]
	if !ok || !e.triggered {
		return false
	}
	e.delegate.Emit(struct{}{})
	return true
}

// ConsumeReplicatedEvents forgets every replicated event recorded for (h, key).
func (c *Component) ConsumeReplicatedEvents(h SpecHandle, key model.PredictionKey) {
	for k := range c.replicated {
		if k.handle == h && k.key == key {
			delete(c.replicated, k)
		}
	}
}
