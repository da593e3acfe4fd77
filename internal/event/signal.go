// Package event provides typed multicast signals with explicit unsubscribe.
//
// Signals are not safe for concurrent use: gameplay code runs on the world tick
// goroutine and every emit/subscribe happens there.
package event

// Handle identifies one subscription. The zero Handle is never issued.
type Handle uint64

// IsValid returns true for handles returned by Subscribe.
func (h Handle) IsValid() bool {
	return h != 0
}

type listener[T any] struct {
	handle  Handle
	fn      func(T)
	removed bool
}

// Signal is an ordered list of listeners for payloads of type T.
type Signal[T any] struct {
	next      Handle
	listeners []*listener[T]
}

// Subscribe appends fn and returns its handle.
func (s *Signal[T]) Subscribe(fn func(T)) Handle {
	s.next++
	s.listeners = append(s.listeners, &listener[T]{handle: s.next, fn: fn})
	return s.next
}

// Unsubscribe removes the listener. A listener removed while an Emit is in
// progress is not called afterwards. Returns false for unknown handles.
func (s *Signal[T]) Unsubscribe(h Handle) bool {
	for i, l := range s.listeners {
		if l.handle != h {
			continue
		}
		l.removed = true
		s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
		return true
	}
	return false
}

// Emit calls every listener subscribed at the time of the call, in order.
func (s *Signal[T]) Emit(v T) {
	if len(s.listeners) == 0 {
		return
	}
	snapshot := make([]*listener[T], len(s.listeners))
	copy(snapshot, s.listeners)
	for _, l := range snapshot {
		if l.removed {
			continue
		}
		l.fn(v)
	}
}

// EmitAndClear detaches every listener, then calls them in order.
// Listeners subscribed during the call stay for the next emit.
func (s *Signal[T]) EmitAndClear(v T) {
	snapshot := s.listeners
	s.listeners = nil
	for _, l := range snapshot {
		if l.removed {
			continue
		}
		l.removed = true
		l.fn(v)
	}
}

// Clear removes every listener.
func (s *Signal[T]) Clear() {
	for _, l := range s.listeners {
		l.removed = true
	}
	s.listeners = nil
}

// Len returns the number of live listeners.
func (s *Signal[T]) Len() int {
	return len(s.listeners)
}

// IsBound returns true if h is still subscribed.
func (s *Signal[T]) IsBound(h Handle) bool {
	for _, l := range s.listeners {
		if l.handle == h {
			return true
		}
	}
	return false
}

// Delegate is a single-cast callback slot, like a montage instance end delegate.
type Delegate[T any] struct {
	fn func(T)
}

// Bind replaces the bound callback.
func (d *Delegate[T]) Bind(fn func(T)) {
	d.fn = fn
}

// Unbind clears the callback.
func (d *Delegate[T]) Unbind() {
	d.fn = nil
}

// IsBound returns true if a callback is bound.
func (d *Delegate[T]) IsBound() bool {
	return d.fn != nil
}

// Execute calls the bound callback, if any. Returns true if something was called.
func (d *Delegate[T]) Execute(v T) bool {
	if d.fn == nil {
		return false
	}
	d.fn(v)
	return true
}
