package curve_test

import (
	"math"
	"testing"
	"time"

	"github.com/meenmo/qflib/calendar"
	"github.com/meenmo/qflib/curve"
	"github.com/meenmo/qflib/obs"
)

func d(day int, month time.Month, year int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Two fixed instantaneous-forward snapshots used as composite inputs.
func compositeInputs(t *testing.T) (*curve.ForwardCurve, *curve.ForwardCurve) {
	t.Helper()

	dates1 := []time.Time{
		d(10, time.November, 2017), d(13, time.November, 2017), d(12, time.February, 2018),
		d(10, time.May, 2018), d(10, time.August, 2018), d(12, time.November, 2018),
		d(21, time.December, 2018), d(15, time.January, 2020), d(31, time.March, 2021),
		d(28, time.February, 2023), d(21, time.December, 2026), d(31, time.January, 2030),
		d(28, time.February, 2031), d(31, time.March, 2036), d(28, time.February, 2041),
		d(28, time.February, 2048), d(31, time.December, 2141),
	}
	forwards1 := []float64{
		0.0655823213132524, 0.0655823213132524, 0.0699455024156877,
		0.0799107139233497, 0.0813931951022577, 0.0841615820666691,
		0.0501297919004145, 0.0823483583439658, 0.0860720030924466,
		0.0922887604375688, 0.10588902278996, 0.117021968693922,
		0.109824660896137, 0.109231572878364, 0.119218123236241,
		0.128647300167664, 0.0506086995288751,
	}

	dates2 := []time.Time{
		d(10, time.November, 2017), d(13, time.November, 2017), d(11, time.December, 2017),
		d(12, time.February, 2018), d(10, time.May, 2018), d(31, time.January, 2022),
		d(7, time.December, 2023), d(31, time.January, 2025), d(31, time.March, 2028),
		d(7, time.December, 2033), d(1, time.February, 2038), d(2, time.April, 2046),
		d(2, time.January, 2051), d(31, time.December, 2141),
	}
	forwards2 := []float64{
		0.056656806197189, 0.056656806197189, 0.0419541633454473,
		0.0286681050019797, 0.0148840226959593, 0.0246680238374363,
		0.0255349067810599, 0.0298907184711927, 0.0263943927922053,
		0.0291924526539802, 0.0270049276163556, 0.028775807327614,
		0.0293567711641792, 0.010518655099659,
	}

	curve1, err := curve.NewForwardCurve(dates1, forwards1, "ACT/365F", calendar.NONE)
	if err != nil {
		t.Fatalf("first input curve: %v", err)
	}
	curve2, err := curve.NewForwardCurve(dates2, forwards2, "ACT/365F", calendar.NONE)
	if err != nil {
		t.Fatalf("second input curve: %v", err)
	}
	return curve1, curve2
}

func TestCompositeZeroYieldCombination(t *testing.T) {
	curve1, curve2 := compositeInputs(t)
	sub := func(a, b float64) float64 { return a - b }

	compound := curve.NewCompositeZeroYield(
		obs.NewHandle[curve.TermStructure](curve1),
		obs.NewHandle[curve.TermStructure](curve2),
		sub,
	)

	ref, err := compound.ReferenceDate()
	if err != nil {
		t.Fatalf("reference date: %v", err)
	}
	if want := d(10, time.November, 2017); !ref.Equal(want) {
		t.Fatalf("composite reference date: got %v, want %v", ref, want)
	}

	// Combined zero yields at the sample dates, fixed by the input
	// snapshots above.
	samples := []struct {
		date     time.Time
		expected float64
	}{
		{d(10, time.November, 2017), 0.0089255151152799},
		{d(15, time.December, 2017), 0.0278755322562788},
		{d(15, time.June, 2018), 0.0512001768603456},
		{d(15, time.September, 2029), 0.0729941474263546},
		{d(15, time.September, 2038), 0.0778333309498459},
		{d(15, time.March, 2046), 0.0828451659139005},
		{d(15, time.December, 2141), 0.0503573807521742},
	}

	for _, tc := range samples {
		actual, err := compound.ForwardRate(tc.date, tc.date, "ACT/365F", curve.Continuous, curve.NoFrequency)
		if err != nil {
			t.Fatalf("composite forward at %v: %v", tc.date, err)
		}
		if diff := math.Abs(actual - tc.expected); diff > 1.0e-10 {
			t.Fatalf("composite zero yield at %v: got %.10f, want %.10f, diff %.2e",
				tc.date, actual, tc.expected, diff)
		}

		z1, err := curve1.ZeroRate(tc.date, "ACT/365F", curve.Continuous, curve.NoFrequency)
		if err != nil {
			t.Fatalf("first zero rate at %v: %v", tc.date, err)
		}
		z2, err := curve2.ZeroRate(tc.date, "ACT/365F", curve.Continuous, curve.NoFrequency)
		if err != nil {
			t.Fatalf("second zero rate at %v: %v", tc.date, err)
		}
		if diff := math.Abs(sub(z1, z2) - tc.expected); diff > 1.0e-10 {
			t.Fatalf("input zero yields at %v drifted from the pinned combination: got %.10f, want %.10f",
				tc.date, sub(z1, z2), tc.expected)
		}
	}
}

func TestCompositeReferenceDateIsLaterOfInputs(t *testing.T) {
	curve1, _ := compositeInputs(t)
	later, err := curve.NewForwardCurve(
		[]time.Time{d(13, time.November, 2017), d(31, time.December, 2141)},
		[]float64{0.02, 0.02},
		"ACT/365F", calendar.NONE,
	)
	if err != nil {
		t.Fatalf("later curve: %v", err)
	}

	compound := curve.NewCompositeZeroYield(
		obs.NewHandle[curve.TermStructure](curve1),
		obs.NewHandle[curve.TermStructure](later),
		func(a, b float64) float64 { return a - b },
	)

	ref, err := compound.ReferenceDate()
	if err != nil {
		t.Fatalf("reference date: %v", err)
	}
	if want := d(13, time.November, 2017); !ref.Equal(want) {
		t.Fatalf("composite reference date: got %v, want the later input date %v", ref, want)
	}

	df, err := compound.Discount(ref)
	if err != nil {
		t.Fatalf("discount at reference: %v", err)
	}
	if math.Abs(df-1.0) > 1.0e-15 {
		t.Fatalf("discount at reference date: got %.15f, want 1", df)
	}
}

func TestCompositePropagatesRelink(t *testing.T) {
	curve1, curve2 := compositeInputs(t)
	h1 := obs.NewRelinkableHandle[curve.TermStructure](curve1)
	h2 := obs.NewHandle[curve.TermStructure](curve2)

	compound := curve.NewCompositeZeroYield(h1.Handle, h2,
		func(a, b float64) float64 { return a - b })

	var flag obs.Flag
	compound.RegisterObserver(&flag)
	flag.Lower()

	replacement, err := curve.NewForwardCurve(
		[]time.Time{d(10, time.November, 2017), d(31, time.December, 2141)},
		[]float64{0.05, 0.05},
		"ACT/365F", calendar.NONE,
	)
	if err != nil {
		t.Fatalf("replacement curve: %v", err)
	}
	h1.LinkTo(replacement)
	if !flag.IsUp() {
		t.Fatalf("relinking an input did not notify the composite's observers")
	}
}
