package quote

import "github.com/meenmo/qflib/obs"

// DerivedQuote applies a transform to another quote reached through a
// handle. It re-notifies when the underlying quote changes or when the
// handle is relinked.
type DerivedQuote struct {
	obs.Base
	underlying obs.Handle[Quote]
	transform  func(float64) float64
}

// NewDerivedQuote returns a quote whose value is transform(underlying).
func NewDerivedQuote(underlying obs.Handle[Quote], transform func(float64) float64) *DerivedQuote {
	d := &DerivedQuote{underlying: underlying, transform: transform}
	d.underlying.RegisterObserver(d)
	return d
}

// Update propagates an underlying change to this quote's observers.
func (d *DerivedQuote) Update() { d.NotifyAll() }

// Value reads through the handle and applies the transform.
func (d *DerivedQuote) Value() (float64, error) {
	q, err := d.underlying.CurrentLink()
	if err != nil {
		return 0, err
	}
	v, err := q.Value()
	if err != nil {
		return 0, err
	}
	return d.transform(v), nil
}
