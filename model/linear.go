package model

import "math"

// LinearYield is a small affine zero-yield model,
//
//	z(t) = level + slope*t,  DiscountBond(t) = exp(-z(t)*t),
//
// with the level and the slope as separate argument blocks. It is the
// simplest model the calibration engine can fit and serves as the
// reference implementation for wiring new models.
type LinearYield struct {
	*CalibratedModel
	level *Parameter
	slope *Parameter
}

// NewLinearYield builds the model at the given starting point. The level
// must stay strictly positive; the slope is boxed to +/- 5%.
func NewLinearYield(level, slope float64) *LinearYield {
	levelBlock := NewParameter("level", 1, PositiveConstraint{})
	slopeBlock := NewParameter("slope", 1, BoundaryConstraint{Low: -0.05, High: 0.05})
	// Sizes match by construction.
	_ = levelBlock.SetValues([]float64{level})
	_ = slopeBlock.SetValues([]float64{slope})
	return &LinearYield{
		CalibratedModel: NewCalibratedModel(levelBlock, slopeBlock),
		level:           levelBlock,
		slope:           slopeBlock,
	}
}

// Level returns the current yield level.
func (m *LinearYield) Level() float64 { return m.level.Values()[0] }

// Slope returns the current yield slope per year.
func (m *LinearYield) Slope() float64 { return m.slope.Values()[0] }

// DiscountBond prices a unit zero-coupon bond maturing at t years.
func (m *LinearYield) DiscountBond(t float64) float64 {
	z := m.Level() + m.Slope()*t
	return math.Exp(-z * t)
}

// discountBonder is what DiscountBondHelper needs from a model.
type discountBonder interface {
	DiscountBond(t float64) float64
}

// DiscountBondHelper couples an observed zero-coupon bond price to the
// model-implied price for the same maturity.
type DiscountBondHelper struct {
	maturity float64
	price    float64
	model    discountBonder
}

// NewDiscountBondHelper returns a helper for a bond of the given maturity
// (in years) quoted at price.
func NewDiscountBondHelper(maturity, price float64, model discountBonder) *DiscountBondHelper {
	return &DiscountBondHelper{maturity: maturity, price: price, model: model}
}

func (h *DiscountBondHelper) MarketValue() float64 { return h.price }

func (h *DiscountBondHelper) ModelValue() (float64, error) {
	return h.model.DiscountBond(h.maturity), nil
}
