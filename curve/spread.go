package curve

import (
	"math"
	"time"

	"github.com/meenmo/qflib/obs"
	"github.com/meenmo/qflib/quote"
)

// ForwardSpreaded shifts an underlying curve's forward rates by an
// observable spread. The spread accrues continuously over [0, t], so
//
//	discount(t) = underlying.discount(t) * exp(-s*t).
//
// Day count and reference date are inherited from the underlying.
// Construction with an empty underlying handle succeeds; failure is
// deferred to the first read that needs it.
type ForwardSpreaded struct {
	obs.Base
	queries
	underlying obs.Handle[TermStructure]
	spread     obs.Handle[quote.Quote]
}

// NewForwardSpreaded builds a forward-spread decorator. It observes both
// the underlying handle and the spread quote.
func NewForwardSpreaded(underlying obs.Handle[TermStructure], spread obs.Handle[quote.Quote]) *ForwardSpreaded {
	f := &ForwardSpreaded{underlying: underlying, spread: spread}
	f.queries = queries{self: f}
	f.underlying.RegisterObserver(f)
	f.spread.RegisterObserver(f)
	return f
}

func (f *ForwardSpreaded) Update() { f.NotifyAll() }

func (f *ForwardSpreaded) ReferenceDate() (time.Time, error) {
	u, err := f.underlying.CurrentLink()
	if err != nil {
		return time.Time{}, err
	}
	return u.ReferenceDate()
}

func (f *ForwardSpreaded) DayCount() string {
	if u, err := f.underlying.CurrentLink(); err == nil {
		return u.DayCount()
	}
	return fallbackDayCount
}

func (f *ForwardSpreaded) DiscountTime(t float64) (float64, error) {
	u, err := f.underlying.CurrentLink()
	if err != nil {
		return 0, err
	}
	df, err := u.DiscountTime(t)
	if err != nil {
		return 0, err
	}
	s, err := spreadValue(f.spread)
	if err != nil {
		return 0, err
	}
	return df * math.Exp(-s*t), nil
}

// ZeroSpreaded shifts an underlying curve's zero rates by an observable
// spread on a continuous-compounding basis:
//
//	zero(t) = underlying.zero(t) + s, hence
//	discount(t) = underlying.discount(t) * exp(-s*t).
type ZeroSpreaded struct {
	obs.Base
	queries
	underlying obs.Handle[TermStructure]
	spread     obs.Handle[quote.Quote]
}

// NewZeroSpreaded builds a zero-spread decorator. It observes both the
// underlying handle and the spread quote.
func NewZeroSpreaded(underlying obs.Handle[TermStructure], spread obs.Handle[quote.Quote]) *ZeroSpreaded {
	z := &ZeroSpreaded{underlying: underlying, spread: spread}
	z.queries = queries{self: z}
	z.underlying.RegisterObserver(z)
	z.spread.RegisterObserver(z)
	return z
}

func (z *ZeroSpreaded) Update() { z.NotifyAll() }

func (z *ZeroSpreaded) ReferenceDate() (time.Time, error) {
	u, err := z.underlying.CurrentLink()
	if err != nil {
		return time.Time{}, err
	}
	return u.ReferenceDate()
}

func (z *ZeroSpreaded) DayCount() string {
	if u, err := z.underlying.CurrentLink(); err == nil {
		return u.DayCount()
	}
	return fallbackDayCount
}

func (z *ZeroSpreaded) DiscountTime(t float64) (float64, error) {
	u, err := z.underlying.CurrentLink()
	if err != nil {
		return 0, err
	}
	df, err := u.DiscountTime(t)
	if err != nil {
		return 0, err
	}
	s, err := spreadValue(z.spread)
	if err != nil {
		return 0, err
	}
	return df * math.Exp(-s*t), nil
}

func spreadValue(h obs.Handle[quote.Quote]) (float64, error) {
	q, err := h.CurrentLink()
	if err != nil {
		return 0, err
	}
	return q.Value()
}
