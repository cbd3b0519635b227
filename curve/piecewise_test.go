package curve_test

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/meenmo/qflib/calendar"
	"github.com/meenmo/qflib/curve"
	"github.com/meenmo/qflib/obs"
	"github.com/meenmo/qflib/quote"
)

func TestPiecewiseDiscountInvariants(t *testing.T) {
	piecewise, _ := testCurve(t)
	ref, err := piecewise.ReferenceDate()
	if err != nil {
		t.Fatalf("reference date: %v", err)
	}

	df, err := piecewise.Discount(ref)
	if err != nil {
		t.Fatalf("discount at reference: %v", err)
	}
	if math.Abs(df-1.0) > 1.0e-15 {
		t.Fatalf("discount at reference date: got %.15f, want 1", df)
	}

	// Positive par rates mean strictly decaying discount factors.
	prev := 1.0
	for _, years := range []int{1, 2, 5, 10, 20, 30} {
		df, err := piecewise.Discount(ref.AddDate(years, 0, 0))
		if err != nil {
			t.Fatalf("discount at %dy: %v", years, err)
		}
		if df <= 0 || df >= prev {
			t.Fatalf("discount at %dy not strictly decreasing: got %.12f, previous %.12f", years, df, prev)
		}
		prev = df
	}
}

func TestPiecewiseZeroRatesNearParQuotes(t *testing.T) {
	piecewise, _ := testCurve(t)
	ref, err := piecewise.ReferenceDate()
	if err != nil {
		t.Fatalf("reference date: %v", err)
	}

	// Zero rates bootstrapped from an upward-sloping par curve sit near the
	// quoted par levels: above at the long end, never wildly off anywhere.
	for _, tc := range []struct {
		years int
		par   float64
	}{
		{1, 0.0454}, {5, 0.0499}, {10, 0.0547}, {20, 0.0589}, {30, 0.0596},
	} {
		z, err := piecewise.ZeroRate(ref.AddDate(tc.years, 0, 0), "ACT/365F", curve.Continuous, curve.NoFrequency)
		if err != nil {
			t.Fatalf("zero rate at %dy: %v", tc.years, err)
		}
		if math.Abs(z-tc.par) > 0.0075 {
			t.Fatalf("zero rate at %dy too far from par quote: zero %.6f, par %.6f", tc.years, z, tc.par)
		}
	}
}

func TestPiecewiseRebootstrapsOnQuoteChange(t *testing.T) {
	piecewise, quotes := testCurve(t)
	ref, err := piecewise.ReferenceDate()
	if err != nil {
		t.Fatalf("reference date: %v", err)
	}
	d := ref.AddDate(10, 0, 0)

	before, err := piecewise.Discount(d)
	if err != nil {
		t.Fatalf("discount: %v", err)
	}

	var flag obs.Flag
	piecewise.RegisterObserver(&flag)

	quotes["10Y"].SetValue(6.00)
	if !flag.IsUp() {
		t.Fatalf("quote change did not notify curve observers")
	}

	after, err := piecewise.Discount(d)
	if err != nil {
		t.Fatalf("discount after bump: %v", err)
	}
	if after >= before {
		t.Fatalf("higher par rate must lower the 10y discount factor: before %.12f, after %.12f", before, after)
	}
}

func TestPiecewiseUnsetQuoteFailsOnRead(t *testing.T) {
	quotes := map[string]*quote.SimpleQuote{
		"1Y": quote.NewSimpleQuote(4.54),
		"5Y": quote.NewEmptyQuote(),
	}
	settlement := time.Date(2023, time.November, 15, 0, 0, 0, 0, time.UTC)
	piecewise := curve.NewPiecewise(settlement, quotes, calendar.TARGET, 12)

	// Construction succeeds; the bootstrap runs, and fails, on first read.
	_, err := piecewise.Discount(settlement.AddDate(3, 0, 0))
	if !errors.Is(err, obs.ErrNullReference) {
		t.Fatalf("read with unset quote: got %v, want ErrNullReference", err)
	}

	quotes["5Y"].SetValue(4.99)
	if _, err := piecewise.Discount(settlement.AddDate(3, 0, 0)); err != nil {
		t.Fatalf("read after quote set: %v", err)
	}
}

func TestMalformedTenorFailsOnRead(t *testing.T) {
	quotes := map[string]*quote.SimpleQuote{
		"1Y":    quote.NewSimpleQuote(4.54),
		"5Y":    quote.NewSimpleQuote(4.99),
		"bogus": quote.NewSimpleQuote(5.10),
	}
	settlement := time.Date(2023, time.November, 15, 0, 0, 0, 0, time.UTC)
	piecewise := curve.NewPiecewise(settlement, quotes, calendar.TARGET, 12)

	// A quote keyed by an unparseable tenor must fail the bootstrap, not
	// slip in as a zero-tenor pillar.
	_, err := piecewise.Discount(settlement.AddDate(3, 0, 0))
	if !errors.Is(err, curve.ErrMalformedTenor) {
		t.Fatalf("read with malformed tenor: got %v, want ErrMalformedTenor", err)
	}
}

func TestTooFewQuotes(t *testing.T) {
	quotes := map[string]*quote.SimpleQuote{
		"1Y": quote.NewSimpleQuote(4.54),
	}
	settlement := time.Date(2023, time.November, 15, 0, 0, 0, 0, time.UTC)
	piecewise := curve.NewPiecewise(settlement, quotes, calendar.TARGET, 12)

	if _, err := piecewise.Discount(settlement.AddDate(1, 0, 0)); err == nil {
		t.Fatalf("bootstrap with a single quote must fail")
	}
}
