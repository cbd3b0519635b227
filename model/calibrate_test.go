package model

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

// rejectAll makes every vector infeasible.
type rejectAll struct{}

func (rejectAll) Test([]float64) bool { return false }

func syntheticHelpers(target *LinearYield, fitted *LinearYield) []CalibrationHelper {
	helpers := make([]CalibrationHelper, 0, 10)
	for years := 1; years <= 10; years++ {
		t := float64(years)
		helpers = append(helpers, NewDiscountBondHelper(t, target.DiscountBond(t), fitted))
	}
	return helpers
}

func TestCalibrateRecoversKnownParameters(t *testing.T) {
	target := NewLinearYield(0.04, 0.002)
	fitted := NewLinearYield(0.03, 0.0)

	term, err := fitted.Calibrate(
		syntheticHelpers(target, fitted),
		NelderMead{},
		EndCriteria{MaxIterations: 5000, FunctionEpsilon: 1e-14},
	)
	require.NoError(t, err)
	require.True(t, term.Converged, "termination: %+v", term)

	require.InDelta(t, 0.04, fitted.Level(), 1e-4)
	require.InDelta(t, 0.002, fitted.Slope(), 1e-4)
}

func TestCalibrateInfeasibleStart(t *testing.T) {
	target := NewLinearYield(0.04, 0.0)
	fitted := NewLinearYield(0.03, 0.0)

	_, err := fitted.Calibrate(
		syntheticHelpers(target, fitted),
		NelderMead{},
		EndCriteria{MaxIterations: 100, FunctionEpsilon: 1e-10},
		WithConstraint(rejectAll{}),
	)
	require.True(t, errors.Is(err, ErrInfeasibleStart))
}

func TestCalibrateWeightSizeMismatch(t *testing.T) {
	target := NewLinearYield(0.04, 0.0)
	fitted := NewLinearYield(0.03, 0.0)

	_, err := fitted.Calibrate(
		syntheticHelpers(target, fitted),
		NelderMead{},
		EndCriteria{MaxIterations: 100, FunctionEpsilon: 1e-10},
		WithWeights([]float64{1, 2}),
	)
	require.True(t, errors.Is(err, ErrSizeMismatch))
}

func TestCalibrateRespectsModelConstraint(t *testing.T) {
	// The target level sits outside the extra box, so the best feasible fit
	// stays inside it instead of escaping toward the target.
	target := NewLinearYield(0.04, 0.002)
	fitted := NewLinearYield(0.03, 0.0)

	_, err := fitted.Calibrate(
		syntheticHelpers(target, fitted),
		NelderMead{},
		EndCriteria{MaxIterations: 5000, FunctionEpsilon: 1e-14},
		WithConstraint(BoundaryConstraint{Low: 0.0, High: 0.035}),
	)
	require.NoError(t, err)

	require.GreaterOrEqual(t, fitted.Level(), 0.0)
	require.LessOrEqual(t, fitted.Level(), 0.035)
	require.GreaterOrEqual(t, fitted.Slope(), 0.0)
	require.LessOrEqual(t, fitted.Slope(), 0.035)
}

func TestLinearYieldDiscountBond(t *testing.T) {
	m := NewLinearYield(0.03, 0.001)
	for _, years := range []float64{0.5, 1, 5, 10} {
		want := math.Exp(-(0.03 + 0.001*years) * years)
		require.InDelta(t, want, m.DiscountBond(years), 1e-15)
	}
}
