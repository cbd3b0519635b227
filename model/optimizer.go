package model

import (
	"math"

	"gonum.org/v1/gonum/optimize"
)

// EndCriteria is the stopping policy handed to the optimizer: an iteration
// ceiling and the objective-improvement threshold treated as convergence.
type EndCriteria struct {
	MaxIterations   int
	FunctionEpsilon float64
}

// Termination reports how an optimizer run stopped. It is data for the
// caller to inspect, not an error: hitting the iteration limit is a valid,
// reportable outcome.
type Termination struct {
	Reason    string
	Converged bool
}

// OptimizationMethod is the black-box numeric contract the calibration
// engine drives. Implementations minimize the objective over the feasible
// region defined by the constraint, starting from initial, and stop per
// the end criteria.
type OptimizationMethod interface {
	Minimize(objective func([]float64) (float64, error), constraint Constraint, initial []float64, criteria EndCriteria) ([]float64, Termination, error)
}

// NelderMead adapts gonum's derivative-free downhill-simplex method to the
// OptimizationMethod contract. Candidates outside the feasible region, and
// candidates the objective cannot price, are penalized with +Inf so the
// simplex retreats from them.
type NelderMead struct{}

func (NelderMead) Minimize(objective func([]float64) (float64, error), constraint Constraint, initial []float64, criteria EndCriteria) ([]float64, Termination, error) {
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			if !constraint.Test(x) {
				return math.Inf(1)
			}
			v, err := objective(x)
			if err != nil {
				return math.Inf(1)
			}
			return v
		},
	}
	settings := &optimize.Settings{
		MajorIterations: criteria.MaxIterations,
		Converger: &optimize.FunctionConverge{
			Absolute:   criteria.FunctionEpsilon,
			Iterations: 50,
		},
	}

	start := append([]float64(nil), initial...)
	result, err := optimize.Minimize(problem, start, settings, &optimize.NelderMead{})
	if err != nil {
		return initial, Termination{Reason: "optimizer failure"}, err
	}
	term := Termination{
		Reason:    result.Status.String(),
		Converged: result.Status == optimize.FunctionConvergence || result.Status == optimize.Success,
	}
	return result.Location.X, term, nil
}
