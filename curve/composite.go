package curve

import (
	"math"
	"time"

	"github.com/meenmo/qflib/obs"
)

// CompositeZeroYield combines the zero yields of two curves through a
// binary function,
//
//	zero(d) = combine(first.zero(d), second.zero(d)),
//
// where each input is converted to a rate under the caller's requested
// day count, compounding and frequency before combination; nothing is
// inherited from either input curve. When the two inputs disagree on
// reference date, the later of the two is used, so both curves are
// defined over the composite's whole domain.
type CompositeZeroYield struct {
	obs.Base
	queries
	first   obs.Handle[TermStructure]
	second  obs.Handle[TermStructure]
	combine func(a, b float64) float64
}

// NewCompositeZeroYield builds a composite curve over two underlying
// handles. It observes both, so a relink or an upstream quote change
// propagates through.
func NewCompositeZeroYield(first, second obs.Handle[TermStructure], combine func(a, b float64) float64) *CompositeZeroYield {
	c := &CompositeZeroYield{first: first, second: second, combine: combine}
	c.queries = queries{self: c}
	c.first.RegisterObserver(c)
	c.second.RegisterObserver(c)
	return c
}

func (c *CompositeZeroYield) Update() { c.NotifyAll() }

func (c *CompositeZeroYield) ReferenceDate() (time.Time, error) {
	u1, err := c.first.CurrentLink()
	if err != nil {
		return time.Time{}, err
	}
	u2, err := c.second.CurrentLink()
	if err != nil {
		return time.Time{}, err
	}
	r1, err := u1.ReferenceDate()
	if err != nil {
		return time.Time{}, err
	}
	r2, err := u2.ReferenceDate()
	if err != nil {
		return time.Time{}, err
	}
	if r2.After(r1) {
		return r2, nil
	}
	return r1, nil
}

func (c *CompositeZeroYield) DayCount() string {
	if u, err := c.first.CurrentLink(); err == nil {
		return u.DayCount()
	}
	return fallbackDayCount
}

// DiscountTime combines the continuously-compounded zero yields at t and
// discounts with the result. t is measured on the composite's own axis.
func (c *CompositeZeroYield) DiscountTime(t float64) (float64, error) {
	if t == 0 {
		return 1.0, nil
	}
	z, err := c.zeroYieldTime(t)
	if err != nil {
		return 0, err
	}
	return math.Exp(-z * t), nil
}

// ZeroRate combines the two inputs' zero rates under the caller's
// conventions.
func (c *CompositeZeroYield) ZeroRate(d time.Time, dayCount string, comp Compounding, freq Frequency) (float64, error) {
	u1, err := c.first.CurrentLink()
	if err != nil {
		return 0, err
	}
	u2, err := c.second.CurrentLink()
	if err != nil {
		return 0, err
	}
	z1, err := u1.ZeroRate(d, dayCount, comp, freq)
	if err != nil {
		return 0, err
	}
	z2, err := u2.ZeroRate(d, dayCount, comp, freq)
	if err != nil {
		return 0, err
	}
	return c.combine(z1, z2), nil
}

// ForwardRate over a degenerate period returns the combined zero yield at
// that date, the instantaneous limit of the composite's spot curve. Proper
// periods derive from the composite discount factors generically.
func (c *CompositeZeroYield) ForwardRate(d1, d2 time.Time, dayCount string, comp Compounding, freq Frequency) (float64, error) {
	if d1.Equal(d2) {
		return c.ZeroRate(d1, dayCount, comp, freq)
	}
	return c.queries.ForwardRate(d1, d2, dayCount, comp, freq)
}

func (c *CompositeZeroYield) zeroYieldTime(t float64) (float64, error) {
	ref, err := c.ReferenceDate()
	if err != nil {
		return 0, err
	}
	d := dateAtTime(ref, t, c.DayCount())
	return c.ZeroRate(d, c.DayCount(), Continuous, NoFrequency)
}

// dateAtTime inverts the ACT-style year fraction to the nearest day.
func dateAtTime(ref time.Time, t float64, dayCount string) time.Time {
	daysPerYear := 365.0
	if dayCount == "ACT/360" {
		daysPerYear = 360.0
	}
	return ref.AddDate(0, 0, int(math.Round(t*daysPerYear)))
}
