// Package quote provides observable scalar market values.
package quote

import "github.com/meenmo/qflib/obs"

// Quote is an observable scalar market value.
type Quote interface {
	obs.Observable
	// Value returns the current value, or obs.ErrNullReference if no value
	// has been set yet.
	Value() (float64, error)
}

// SimpleQuote is a market value mutated externally (a feed, a test
// harness). Every value change notifies its observers.
type SimpleQuote struct {
	obs.Base
	value float64
	set   bool
}

// NewSimpleQuote returns a quote holding v.
func NewSimpleQuote(v float64) *SimpleQuote {
	return &SimpleQuote{value: v, set: true}
}

// NewEmptyQuote returns a quote with no value. Reading it fails until
// SetValue is called.
func NewEmptyQuote() *SimpleQuote {
	return &SimpleQuote{}
}

// Value returns the quoted value.
func (q *SimpleQuote) Value() (float64, error) {
	if !q.set {
		return 0, obs.ErrNullReference
	}
	return q.value, nil
}

// IsValid reports whether the quote holds a value.
func (q *SimpleQuote) IsValid() bool { return q.set }

// SetValue stores v and notifies observers when the value actually changed.
func (q *SimpleQuote) SetValue(v float64) {
	changed := !q.set || q.value != v
	q.value = v
	q.set = true
	if changed {
		q.NotifyAll()
	}
}
