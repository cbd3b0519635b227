package model

import (
	"errors"
	"fmt"
)

// ErrSizeMismatch indicates a vector whose length does not match the
// expected argument-block size.
var ErrSizeMismatch = errors.New("model: parameter size mismatch")

// Transform maps between the optimizer's raw representation of a block and
// the model's internal one. Both directions must be exact inverses.
type Transform struct {
	Direct  func(raw []float64) []float64
	Inverse func(internal []float64) []float64
}

func identity(v []float64) []float64 { return v }

// Parameter is a named, possibly time-varying block of model arguments
// with its own feasibility test and an optional representation transform.
type Parameter struct {
	name       string
	values     []float64
	constraint Constraint
	transform  Transform
}

// NewParameter returns a zero-initialized block of the given size with an
// identity transform.
func NewParameter(name string, size int, constraint Constraint) *Parameter {
	return NewTransformedParameter(name, size, constraint, Transform{Direct: identity, Inverse: identity})
}

// NewTransformedParameter returns a block whose raw optimizer values are
// mapped through the supplied transform.
func NewTransformedParameter(name string, size int, constraint Constraint, transform Transform) *Parameter {
	if constraint == nil {
		constraint = NoConstraint{}
	}
	return &Parameter{
		name:       name,
		values:     make([]float64, size),
		constraint: constraint,
		transform:  transform,
	}
}

// Name returns the block's name.
func (p *Parameter) Name() string { return p.name }

// Size returns the number of components in the block.
func (p *Parameter) Size() int { return len(p.values) }

// Values returns a copy of the block's internal values.
func (p *Parameter) Values() []float64 {
	return append([]float64(nil), p.values...)
}

// SetValues replaces the block's internal values. It fails with
// ErrSizeMismatch when the length differs from the block size.
func (p *Parameter) SetValues(v []float64) error {
	if len(v) != len(p.values) {
		return fmt.Errorf("%w: block %q expects %d values, got %d", ErrSizeMismatch, p.name, len(p.values), len(v))
	}
	copy(p.values, v)
	return nil
}

// Constraint returns the block's own feasibility test.
func (p *Parameter) Constraint() Constraint { return p.constraint }

// Test checks a candidate slice for this block against the block's
// constraint, applying the raw-to-internal transform first.
func (p *Parameter) Test(raw []float64) (bool, error) {
	if len(raw) != len(p.values) {
		return false, fmt.Errorf("%w: block %q expects %d values, got %d", ErrSizeMismatch, p.name, len(p.values), len(raw))
	}
	return p.constraint.Test(p.transform.Direct(raw)), nil
}

// FromRaw converts a raw optimizer slice to the internal representation.
func (p *Parameter) FromRaw(raw []float64) []float64 { return p.transform.Direct(raw) }

// ToRaw converts the internal values to the raw optimizer representation.
func (p *Parameter) ToRaw() []float64 { return p.transform.Inverse(p.Values()) }
