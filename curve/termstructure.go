// Package curve provides the term-structure abstraction and its composition
// algebra: a small closed set of curve variants behind one capability
// interface, with the zero/forward-rate math implemented once in terms of
// the discount factor.
//
// Every variant registers as an observer of the handles and quotes it
// consumes, so relinking an underlying or mutating a market quote marks
// the whole decorator stack stale; values are recomputed on the next read.
package curve

import (
	"errors"
	"time"

	"github.com/meenmo/qflib/calendar"
	"github.com/meenmo/qflib/obs"
	"github.com/meenmo/qflib/settings"
	"github.com/meenmo/qflib/utils"
)

// instFwdDt is the year-fraction step used for the instantaneous forward
// limit and for spot rates at the reference date.
const instFwdDt = 1.0e-4

// ErrDateBeforeReference indicates a query at a date earlier than the
// curve's reference date.
var ErrDateBeforeReference = errors.New("curve: date before reference date")

// TermStructure is the capability surface shared by every curve variant.
// The discount factor is the core primitive; all rate queries derive from
// it. The discount factor at the reference date is 1 by construction.
type TermStructure interface {
	obs.Observable

	// ReferenceDate returns the date the curve's time axis starts at. It
	// fails when the curve cannot resolve its underlying yet.
	ReferenceDate() (time.Time, error)

	// DayCount names the convention of the curve's own time axis.
	DayCount() string

	// DiscountTime returns the discount factor at t years from the
	// reference date, measured with the curve's own day count.
	DiscountTime(t float64) (float64, error)

	// Discount returns the discount factor at an absolute date.
	Discount(d time.Time) (float64, error)

	// ZeroRate returns the spot rate at d under the caller's day count,
	// compounding and frequency.
	ZeroRate(d time.Time, dayCount string, comp Compounding, freq Frequency) (float64, error)

	// ForwardRate returns the rate between d1 and d2 under the caller's
	// conventions. d1 == d2 yields the instantaneous forward, computed as
	// a continuous-compounding limit over a small time step.
	ForwardRate(d1, d2 time.Time, dayCount string, comp Compounding, freq Frequency) (float64, error)
}

// discounter is the primitive each variant supplies; queries derives the
// rest of the TermStructure surface from it.
type discounter interface {
	ReferenceDate() (time.Time, error)
	DayCount() string
	DiscountTime(t float64) (float64, error)
}

// queries implements the date-based and rate-based portion of the
// TermStructure contract generically, so the conversion math lives in one
// place instead of being duplicated per variant.
type queries struct {
	self discounter
}

func (q queries) Discount(d time.Time) (float64, error) {
	ref, err := q.self.ReferenceDate()
	if err != nil {
		return 0, err
	}
	t := utils.YearFraction(ref, d, q.self.DayCount())
	if t < 0 {
		return 0, ErrDateBeforeReference
	}
	return q.self.DiscountTime(t)
}

func (q queries) ZeroRate(d time.Time, dayCount string, comp Compounding, freq Frequency) (float64, error) {
	ref, err := q.self.ReferenceDate()
	if err != nil {
		return 0, err
	}
	t := utils.YearFraction(ref, d, dayCount)
	if t == 0 {
		// Spot at the reference date: continuous limit over a short step
		// on the curve's own axis.
		df, err := q.self.DiscountTime(instFwdDt)
		if err != nil {
			return 0, err
		}
		return impliedRate(1.0/df, instFwdDt, comp, freq)
	}
	df, err := q.Discount(d)
	if err != nil {
		return 0, err
	}
	return impliedRate(1.0/df, t, comp, freq)
}

func (q queries) ForwardRate(d1, d2 time.Time, dayCount string, comp Compounding, freq Frequency) (float64, error) {
	if d1.Equal(d2) {
		ref, err := q.self.ReferenceDate()
		if err != nil {
			return 0, err
		}
		t := utils.YearFraction(ref, d1, q.self.DayCount())
		if t < 0 {
			return 0, ErrDateBeforeReference
		}
		t1 := t - instFwdDt/2
		if t1 < 0 {
			t1 = 0
		}
		t2 := t1 + instFwdDt
		df1, err := q.self.DiscountTime(t1)
		if err != nil {
			return 0, err
		}
		df2, err := q.self.DiscountTime(t2)
		if err != nil {
			return 0, err
		}
		return impliedRate(df1/df2, t2-t1, comp, freq)
	}
	if d2.Before(d1) {
		return 0, errors.New("curve: forward period end precedes start")
	}
	df1, err := q.Discount(d1)
	if err != nil {
		return 0, err
	}
	df2, err := q.Discount(d2)
	if err != nil {
		return 0, err
	}
	t := utils.YearFraction(d1, d2, dayCount)
	return impliedRate(df1/df2, t, comp, freq)
}

// baseCurve resolves the reference date either from a fixed construction
// date or lazily from the evaluation-date context advanced by a settlement
// offset. In the moving case it subscribes to the context and drops the
// cached date, rather than recomputing eagerly, when the context changes.
type baseCurve struct {
	obs.Base
	cal            calendar.CalendarID
	dayCount       string
	settlementDays int

	fixed    bool
	refDate  time.Time
	refValid bool
}

// newFixedBase pins the reference date at construction.
func newFixedBase(referenceDate time.Time, cal calendar.CalendarID, dayCount string) *baseCurve {
	return &baseCurve{cal: cal, dayCount: dayCount, fixed: true, refDate: referenceDate, refValid: true}
}

// newMovingBase tracks the evaluation-date context with a settlement offset.
func newMovingBase(settlementDays int, cal calendar.CalendarID, dayCount string) *baseCurve {
	b := &baseCurve{cal: cal, dayCount: dayCount, settlementDays: settlementDays}
	settings.Instance().RegisterObserver(b)
	return b
}

func (b *baseCurve) ReferenceDate() (time.Time, error) {
	if !b.refValid {
		today := calendar.Adjust(b.cal, settings.Instance().EvaluationDate())
		b.refDate = calendar.AddBusinessDays(b.cal, today, b.settlementDays)
		b.refValid = true
	}
	return b.refDate, nil
}

func (b *baseCurve) DayCount() string { return b.dayCount }

func (b *baseCurve) Calendar() calendar.CalendarID { return b.cal }

// Update invalidates the cached reference date and propagates the
// notification downstream.
func (b *baseCurve) Update() {
	if !b.fixed {
		b.refValid = false
	}
	b.NotifyAll()
}
