// Package model provides the calibrated-model parameter framework and the
// calibration engine: named argument blocks mapped to one flat numeric
// vector, feasibility constraints over it, and an optimizer-driven fit of
// the vector to observed market instruments.
package model

import (
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/meenmo/qflib/obs"
)

// ErrInfeasibleStart indicates a calibration whose initial parameter vector
// is rejected by the combined constraint.
var ErrInfeasibleStart = errors.New("model: infeasible initial parameters")

var log = zerolog.Nop()

// SetLogger installs a logger for calibration progress. The package is
// silent by default.
func SetLogger(l zerolog.Logger) { log = l }

// CalibrationHelper couples a market instrument's quoted value to the
// model-implied value of the same instrument. During calibration the
// weighted squared differences of the two form the objective.
type CalibrationHelper interface {
	MarketValue() float64
	ModelValue() (float64, error)
}

// CalibratedModel maps an ordered list of argument blocks to a flat vector
// and fits it to a set of calibration helpers. It is both an Observable
// (consumers re-read after a parameter change) and, through embedding, a
// building block for concrete models.
type CalibratedModel struct {
	obs.Base
	arguments  []*Parameter
	constraint Constraint
	generate   func()
}

// NewCalibratedModel builds a model over the given argument blocks. The
// model's own constraint tests each block against its own slice.
func NewCalibratedModel(arguments ...*Parameter) *CalibratedModel {
	return &CalibratedModel{
		arguments:  arguments,
		constraint: privateConstraint{arguments: arguments},
	}
}

// SetGenerateArguments installs the hook Update calls before notifying
// observers. Models whose internal state derives from the raw parameters
// use it to refresh that state; the default is a no-op.
func (m *CalibratedModel) SetGenerateArguments(fn func()) { m.generate = fn }

// Constraint returns the model's own feasibility constraint.
func (m *CalibratedModel) Constraint() Constraint { return m.constraint }

// Arguments returns the model's argument blocks in order.
func (m *CalibratedModel) Arguments() []*Parameter { return m.arguments }

// size returns the total length of the flat parameter vector.
func (m *CalibratedModel) size() int {
	n := 0
	for _, a := range m.arguments {
		n += a.Size()
	}
	return n
}

// Params flattens the ordered argument blocks into one vector in the raw
// optimizer representation.
func (m *CalibratedModel) Params() []float64 {
	out := make([]float64, 0, m.size())
	for _, a := range m.arguments {
		out = append(out, a.ToRaw()...)
	}
	return out
}

// SetParams unflattens a raw vector into the argument blocks. It fails
// with ErrSizeMismatch when the length does not equal the total block
// size; otherwise the mapping is exact and lossless. On success dependent
// internal state is regenerated and observers are notified.
func (m *CalibratedModel) SetParams(params []float64) error {
	if len(params) != m.size() {
		return fmt.Errorf("%w: model expects %d parameters, got %d", ErrSizeMismatch, m.size(), len(params))
	}
	k := 0
	for _, a := range m.arguments {
		size := a.Size()
		if err := a.SetValues(a.FromRaw(params[k : k+size])); err != nil {
			return err
		}
		k += size
	}
	m.Update()
	return nil
}

// Update refreshes internally derived state through the generate hook and
// notifies observers, so consumers re-read before using the model again.
func (m *CalibratedModel) Update() {
	if m.generate != nil {
		m.generate()
	}
	m.NotifyAll()
}

// CalibrateOption adjusts a calibration run.
type CalibrateOption func(*calibrateOptions)

type calibrateOptions struct {
	extraConstraint Constraint
	weights         []float64
}

// WithConstraint adds an external feasibility constraint that must hold in
// addition to the model's own.
func WithConstraint(c Constraint) CalibrateOption {
	return func(o *calibrateOptions) { o.extraConstraint = c }
}

// WithWeights sets per-helper weights for the objective. The default is
// all ones.
func WithWeights(w []float64) CalibrateOption {
	return func(o *calibrateOptions) { o.weights = w }
}

// costBundle is the calibration objective: an explicit bundle of helpers,
// weights and a parameter setter, passed by reference into the optimizer
// instead of being captured through hidden shared state.
type costBundle struct {
	helpers   []CalibrationHelper
	weights   []float64
	setParams func([]float64) error
}

// value sets the candidate vector on the model and reprices every helper.
func (c *costBundle) value(params []float64) (float64, error) {
	if err := c.setParams(params); err != nil {
		return 0, err
	}
	sum := 0.0
	for i, h := range c.helpers {
		mv, err := h.ModelValue()
		if err != nil {
			return 0, err
		}
		diff := mv - h.MarketValue()
		sum += c.weights[i] * diff * diff
	}
	return sum, nil
}

// Calibrate fits the model's parameters to the helpers by minimizing the
// weighted sum of squared differences between model-implied and market
// values, subject to the model's constraint AND any extra constraint. On
// return the model's parameters are fixed to the optimizer's result.
//
// Non-convergence is not an error: the Termination reports how the search
// stopped and is left for the caller to interpret. Structural violations
// (weight or parameter size mismatches, an infeasible starting point) fail
// hard.
func (m *CalibratedModel) Calibrate(helpers []CalibrationHelper, method OptimizationMethod, criteria EndCriteria, opts ...CalibrateOption) (Termination, error) {
	o := calibrateOptions{extraConstraint: NoConstraint{}}
	for _, opt := range opts {
		opt(&o)
	}
	if o.weights == nil {
		o.weights = make([]float64, len(helpers))
		for i := range o.weights {
			o.weights[i] = 1.0
		}
	}
	if len(o.weights) != len(helpers) {
		return Termination{}, fmt.Errorf("%w: %d weights for %d helpers", ErrSizeMismatch, len(o.weights), len(helpers))
	}

	combined := NewCompositeConstraint(m.constraint, o.extraConstraint)
	initial := m.Params()
	if !combined.Test(initial) {
		return Termination{}, ErrInfeasibleStart
	}

	cost := &costBundle{helpers: helpers, weights: o.weights, setParams: m.SetParams}
	log.Debug().Int("helpers", len(helpers)).Int("parameters", len(initial)).Msg("calibration started")

	result, term, err := method.Minimize(cost.value, combined, initial, criteria)
	if err != nil {
		return term, fmt.Errorf("model: calibration: %w", err)
	}
	if err := m.SetParams(result); err != nil {
		return term, err
	}
	log.Debug().Str("reason", term.Reason).Bool("converged", term.Converged).Msg("calibration finished")
	return term, nil
}
