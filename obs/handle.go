package obs

// link is the shared slot behind a Handle. It has its own observable
// identity, distinct from its target's: rebinding notifies the link's
// observers even when neither the old nor the new target emits anything.
// The link also observes its current target and forwards the target's own
// notifications, so observers of the handle see both kinds of change.
type link[T Observable] struct {
	Base
	target T
	set    bool
}

// Update forwards a target notification to the handle's observers.
func (l *link[T]) Update() { l.NotifyAll() }

func (l *link[T]) linkTo(target T, set bool) {
	if l.set {
		l.target.UnregisterObserver(l)
	}
	l.target = target
	l.set = set
	if set {
		target.RegisterObserver(l)
	}
	l.NotifyAll()
}

// Handle is an observing reference to a possibly-absent shared value.
// Constructing a handle on an absent target never fails; only a read
// through the empty handle does. Copies of a handle share the same slot.
//
// Build handles with NewHandle or EmptyHandle; the zero value has no slot
// and must not be used.
type Handle[T Observable] struct {
	link *link[T]
}

// NewHandle returns a handle fixed to target.
func NewHandle[T Observable](target T) Handle[T] {
	h := Handle[T]{link: &link[T]{}}
	h.link.linkTo(target, true)
	return h
}

// EmptyHandle returns a handle with no target.
func EmptyHandle[T Observable]() Handle[T] {
	return Handle[T]{link: &link[T]{}}
}

// IsEmpty reports whether the handle currently points at nothing.
func (h Handle[T]) IsEmpty() bool {
	return h.link == nil || !h.link.set
}

// CurrentLink dereferences the handle. It fails with ErrNullReference
// when the handle is empty.
func (h Handle[T]) CurrentLink() (T, error) {
	if h.IsEmpty() {
		var zero T
		return zero, ErrNullReference
	}
	return h.link.target, nil
}

// RegisterObserver subscribes o to the handle itself: o is notified on
// rebinds and, transitively, on notifications from the current target.
func (h Handle[T]) RegisterObserver(o Observer) { h.link.RegisterObserver(o) }

// UnregisterObserver detaches o from the handle.
func (h Handle[T]) UnregisterObserver(o Observer) { h.link.UnregisterObserver(o) }

// RelinkableHandle is a Handle whose target can be reassigned after
// construction. Relinking notifies the handle's observers regardless of
// the old or new target's state; it does not, by itself, trigger the new
// target's own notification chain.
type RelinkableHandle[T Observable] struct {
	Handle[T]
}

// NewRelinkableHandle returns a relinkable handle bound to target.
func NewRelinkableHandle[T Observable](target T) *RelinkableHandle[T] {
	return &RelinkableHandle[T]{Handle: NewHandle(target)}
}

// EmptyRelinkableHandle returns a relinkable handle with no target.
func EmptyRelinkableHandle[T Observable]() *RelinkableHandle[T] {
	return &RelinkableHandle[T]{Handle: EmptyHandle[T]()}
}

// LinkTo replaces the held target and notifies the handle's observers.
func (h *RelinkableHandle[T]) LinkTo(target T) {
	h.link.linkTo(target, true)
}

// Unlink empties the handle. Unlinking never fails; a subsequent read
// through the handle does.
func (h *RelinkableHandle[T]) Unlink() {
	var zero T
	h.link.linkTo(zero, false)
}
