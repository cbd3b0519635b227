package curve_test

import (
	"errors"
	"math"
	"testing"

	"github.com/meenmo/qflib/curve"
	"github.com/meenmo/qflib/obs"
	"github.com/meenmo/qflib/quote"
)

func TestForwardSpreadedConsistency(t *testing.T) {
	underlying, _ := testCurve(t)
	spread := quote.NewSimpleQuote(0.01)
	spreaded := curve.NewForwardSpreaded(
		obs.NewHandle[curve.TermStructure](underlying),
		obs.NewHandle[quote.Quote](spread),
	)

	ref, err := spreaded.ReferenceDate()
	if err != nil {
		t.Fatalf("reference date: %v", err)
	}
	testDate := ref.AddDate(5, 0, 0)
	dc := underlying.DayCount()

	forward, err := underlying.ForwardRate(testDate, testDate, dc, curve.Continuous, curve.NoFrequency)
	if err != nil {
		t.Fatalf("underlying forward: %v", err)
	}
	spreadedForward, err := spreaded.ForwardRate(testDate, testDate, dc, curve.Continuous, curve.NoFrequency)
	if err != nil {
		t.Fatalf("spreaded forward: %v", err)
	}

	if diff := math.Abs(spreadedForward - 0.01 - forward); diff > 1.0e-10 {
		t.Fatalf("forward spread inconsistent: underlying %.12f, spreaded %.12f, diff %.2e",
			forward, spreadedForward, diff)
	}
}

func TestZeroSpreadedConsistency(t *testing.T) {
	underlying, _ := testCurve(t)
	spread := quote.NewSimpleQuote(0.01)
	spreaded := curve.NewZeroSpreaded(
		obs.NewHandle[curve.TermStructure](underlying),
		obs.NewHandle[quote.Quote](spread),
	)

	ref, err := spreaded.ReferenceDate()
	if err != nil {
		t.Fatalf("reference date: %v", err)
	}
	testDate := ref.AddDate(5, 0, 0)
	dc := underlying.DayCount()

	zero, err := underlying.ZeroRate(testDate, dc, curve.Continuous, curve.NoFrequency)
	if err != nil {
		t.Fatalf("underlying zero: %v", err)
	}
	spreadedZero, err := spreaded.ZeroRate(testDate, dc, curve.Continuous, curve.NoFrequency)
	if err != nil {
		t.Fatalf("spreaded zero: %v", err)
	}

	if diff := math.Abs(spreadedZero - 0.01 - zero); diff > 1.0e-10 {
		t.Fatalf("zero spread inconsistent: underlying %.12f, spreaded %.12f, diff %.2e",
			zero, spreadedZero, diff)
	}
}

func TestSpreadedObservability(t *testing.T) {
	h := obs.EmptyRelinkableHandle[curve.TermStructure]()
	spread := quote.NewSimpleQuote(0.01)
	spreaded := curve.NewForwardSpreaded(h.Handle, obs.NewHandle[quote.Quote](spread))

	var flag obs.Flag
	spreaded.RegisterObserver(&flag)

	underlying, _ := testCurve(t)
	h.LinkTo(underlying)
	if !flag.IsUp() {
		t.Fatalf("relinking the underlying did not notify the spreaded curve's observers")
	}

	flag.Lower()
	spread.SetValue(0.005)
	if !flag.IsUp() {
		t.Fatalf("spread change did not notify the spreaded curve's observers")
	}

	flag.Lower()
	spread.SetValue(0.005)
	if flag.IsUp() {
		t.Fatalf("unchanged spread value must not notify")
	}
	spread.SetValue(0.015)
	if !flag.IsUp() {
		t.Fatalf("second spread change did not re-raise the flag")
	}
}

func TestCreateWithNullUnderlying(t *testing.T) {
	h := obs.EmptyRelinkableHandle[curve.TermStructure]()
	spread := quote.NewSimpleQuote(0.01)

	// Construction on an unset underlying must succeed; only reads fail.
	spreaded := curve.NewZeroSpreaded(h.Handle, obs.NewHandle[quote.Quote](spread))

	if _, err := spreaded.ReferenceDate(); !errors.Is(err, obs.ErrNullReference) {
		t.Fatalf("read through empty underlying: got %v, want ErrNullReference", err)
	}

	underlying, _ := testCurve(t)
	h.LinkTo(underlying)
	if _, err := spreaded.ReferenceDate(); err != nil {
		t.Fatalf("reference date after relink: %v", err)
	}
}

func TestLinkToNullUnderlying(t *testing.T) {
	underlying, _ := testCurve(t)
	h := obs.NewRelinkableHandle[curve.TermStructure](underlying)
	spread := quote.NewSimpleQuote(0.01)
	spreaded := curve.NewZeroSpreaded(h.Handle, obs.NewHandle[quote.Quote](spread))

	if _, err := spreaded.ReferenceDate(); err != nil {
		t.Fatalf("reference date: %v", err)
	}

	// Emptying the handle must not fail by itself.
	h.Unlink()

	if _, err := spreaded.ReferenceDate(); !errors.Is(err, obs.ErrNullReference) {
		t.Fatalf("read after unlink: got %v, want ErrNullReference", err)
	}
}
