package curve

import (
	"time"

	"github.com/meenmo/qflib/obs"
	"github.com/meenmo/qflib/utils"
)

// fallbackDayCount is reported by decorators whose underlying link is not
// set yet. Any read that actually needs the underlying still fails.
const fallbackDayCount = "ACT/365F"

// Implied rebases an underlying curve onto a new reference date R. The
// rebase is multiplicative,
//
//	discount(d) = underlying.discount(d) / underlying.discount(R),
//
// so absolute discount factors stay consistent with the underlying by
// construction. The reference date is fixed; it does not track the
// evaluation-date context.
type Implied struct {
	obs.Base
	queries
	underlying obs.Handle[TermStructure]
	refDate    time.Time
}

// NewImplied builds an implied curve on top of underlying. Construction
// with an empty handle succeeds; reads fail until it is linked.
func NewImplied(underlying obs.Handle[TermStructure], referenceDate time.Time) *Implied {
	i := &Implied{underlying: underlying, refDate: referenceDate}
	i.queries = queries{self: i}
	i.underlying.RegisterObserver(i)
	return i
}

// Update propagates underlying changes (relink or recalibration) downstream.
func (i *Implied) Update() { i.NotifyAll() }

func (i *Implied) ReferenceDate() (time.Time, error) { return i.refDate, nil }

func (i *Implied) DayCount() string {
	if u, err := i.underlying.CurrentLink(); err == nil {
		return u.DayCount()
	}
	return fallbackDayCount
}

func (i *Implied) DiscountTime(t float64) (float64, error) {
	u, err := i.underlying.CurrentLink()
	if err != nil {
		return 0, err
	}
	base, err := u.Discount(i.refDate)
	if err != nil {
		return 0, err
	}
	uref, err := u.ReferenceDate()
	if err != nil {
		return 0, err
	}
	// Shift the query onto the underlying's own time axis.
	offset := utils.YearFraction(uref, i.refDate, u.DayCount())
	df, err := u.DiscountTime(offset + t)
	if err != nil {
		return 0, err
	}
	return df / base, nil
}
