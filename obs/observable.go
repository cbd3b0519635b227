// Package obs provides the change-notification substrate: observables,
// observers, and indirection handles. Notification is synchronous and
// recursive; the dependency graph must be acyclic by construction.
package obs

import "errors"

// ErrNullReference indicates a read through an empty handle or an unset value.
var ErrNullReference = errors.New("obs: null reference")

// Observer reacts to change notifications from the Observables it watches.
// Update marks the observer stale; recomputation happens on the next read.
type Observer interface {
	Update()
}

// Observable notifies a set of registered Observers when it changes.
type Observable interface {
	RegisterObserver(o Observer)
	UnregisterObserver(o Observer)
}

// Base is an embeddable Observable implementation.
// The zero value is ready to use.
type Base struct {
	observers map[Observer]struct{}
}

// RegisterObserver adds o to the notification set. Registering the same
// observer twice is a no-op.
func (b *Base) RegisterObserver(o Observer) {
	if b.observers == nil {
		b.observers = make(map[Observer]struct{})
	}
	b.observers[o] = struct{}{}
}

// UnregisterObserver removes o from the notification set.
func (b *Base) UnregisterObserver(o Observer) {
	delete(b.observers, o)
}

// NotifyAll synchronously fans out to every registered observer. Observers
// that are themselves observable typically re-notify their own observers,
// so a single mutation propagates through the whole dependency graph.
// An observer reachable through more than one path may be updated more
// than once per pass; delivery is at-least-once, not exactly-once.
func (b *Base) NotifyAll() {
	for o := range b.observers {
		o.Update()
	}
}

// RegisterWith subscribes o to every subject.
func RegisterWith(o Observer, subjects ...Observable) {
	for _, s := range subjects {
		s.RegisterObserver(o)
	}
}

// UnregisterWith detaches o from every subject.
func UnregisterWith(o Observer, subjects ...Observable) {
	for _, s := range subjects {
		s.UnregisterObserver(o)
	}
}

// Flag is an Observer that records whether a notification reached it.
// Raise it indirectly by mutating something upstream, inspect with IsUp,
// reset with Lower.
type Flag struct {
	up bool
}

func (f *Flag) Update() { f.up = true }

// IsUp reports whether a notification arrived since the last Lower.
func (f *Flag) IsUp() bool { return f.up }

// Lower resets the flag.
func (f *Flag) Lower() { f.up = false }
