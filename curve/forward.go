package curve

import (
	"errors"
	"math"
	"time"

	"github.com/meenmo/qflib/calendar"
	"github.com/meenmo/qflib/utils"
)

// ForwardCurve is an instantaneous-forward curve interpolated backward-flat
// between its node dates, with flat extrapolation past the last node. The
// reference date is the first node date and is fixed.
type ForwardCurve struct {
	*baseCurve
	queries
	times    []float64
	forwards []float64
}

// NewForwardCurve builds a curve from node dates and instantaneous forward
// rates. Dates must be strictly increasing and at least two.
func NewForwardCurve(dates []time.Time, forwards []float64, dayCount string, cal calendar.CalendarID) (*ForwardCurve, error) {
	if len(dates) < 2 {
		return nil, errors.New("curve: forward curve needs at least 2 nodes")
	}
	if len(dates) != len(forwards) {
		return nil, errors.New("curve: forward curve dates and rates differ in length")
	}
	f := &ForwardCurve{
		baseCurve: newFixedBase(dates[0], cal, dayCount),
		times:     make([]float64, len(dates)),
		forwards:  append([]float64(nil), forwards...),
	}
	for i, d := range dates {
		f.times[i] = utils.YearFraction(dates[0], d, dayCount)
		if i > 0 && f.times[i] <= f.times[i-1] {
			return nil, errors.New("curve: forward curve dates not strictly increasing")
		}
	}
	f.queries = queries{self: f}
	return f, nil
}

// DiscountTime integrates the piecewise-flat forwards over [0, t] in
// closed form.
func (f *ForwardCurve) DiscountTime(t float64) (float64, error) {
	if t < 0 {
		return 0, ErrDateBeforeReference
	}
	integral := 0.0
	for i := 1; i < len(f.times) && f.times[i-1] < t; i++ {
		hi := math.Min(t, f.times[i])
		integral += f.forwards[i] * (hi - f.times[i-1])
	}
	if last := f.times[len(f.times)-1]; t > last {
		integral += f.forwards[len(f.forwards)-1] * (t - last)
	}
	return math.Exp(-integral), nil
}
