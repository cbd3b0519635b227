package curve

import (
	"math"

	"github.com/meenmo/qflib/calendar"
	"github.com/meenmo/qflib/obs"
	"github.com/meenmo/qflib/quote"
)

// FlatForward is a flat continuously-compounded curve whose level is read
// through a quote handle on every query. Its reference date tracks the
// evaluation-date context advanced by the settlement offset.
type FlatForward struct {
	*baseCurve
	queries
	rate obs.Handle[quote.Quote]
}

// NewFlatForward builds a flat curve from an observable rate.
func NewFlatForward(settlementDays int, cal calendar.CalendarID, rate obs.Handle[quote.Quote], dayCount string) *FlatForward {
	f := &FlatForward{
		baseCurve: newMovingBase(settlementDays, cal, dayCount),
		rate:      rate,
	}
	f.queries = queries{self: f}
	f.rate.RegisterObserver(f.baseCurve)
	return f
}

// NewFlatForwardRate builds a flat curve from a fixed rate level.
func NewFlatForwardRate(settlementDays int, cal calendar.CalendarID, rate float64, dayCount string) *FlatForward {
	return NewFlatForward(settlementDays, cal, obs.NewHandle[quote.Quote](quote.NewSimpleQuote(rate)), dayCount)
}

func (f *FlatForward) DiscountTime(t float64) (float64, error) {
	q, err := f.rate.CurrentLink()
	if err != nil {
		return 0, err
	}
	r, err := q.Value()
	if err != nil {
		return 0, err
	}
	return math.Exp(-r * t), nil
}
