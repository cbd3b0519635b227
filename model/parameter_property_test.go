package model

import (
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestParamsSetParamsRoundTripProperty(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("params(setParams(v)) == v for correctly sized v", prop.ForAll(
		func(values []float64) bool {
			m := NewCalibratedModel(
				NewParameter("a", 2, NoConstraint{}),
				NewParameter("b", 3, NoConstraint{}),
			)
			if err := m.SetParams(values); err != nil {
				return false
			}
			got := m.Params()
			for i := range values {
				if got[i] != values[i] {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(5, gen.Float64Range(-1e6, 1e6)),
	))

	properties.Property("setParams rejects any wrongly sized vector", prop.ForAll(
		func(n int) bool {
			if n == 5 {
				return true
			}
			m := NewCalibratedModel(
				NewParameter("a", 2, NoConstraint{}),
				NewParameter("b", 3, NoConstraint{}),
			)
			err := m.SetParams(make([]float64, n))
			return errors.Is(err, ErrSizeMismatch)
		},
		gen.IntRange(0, 32),
	))

	properties.TestingRun(t)
}
