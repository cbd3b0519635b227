package model

// Constraint is a feasibility predicate over a parameter vector.
// Constraints compose conjunctively.
type Constraint interface {
	Test(params []float64) bool
}

// NoConstraint accepts every vector.
type NoConstraint struct{}

func (NoConstraint) Test([]float64) bool { return true }

// PositiveConstraint requires every component to be strictly positive.
type PositiveConstraint struct{}

func (PositiveConstraint) Test(params []float64) bool {
	for _, v := range params {
		if v <= 0 {
			return false
		}
	}
	return true
}

// BoundaryConstraint requires every component to lie in [Low, High].
type BoundaryConstraint struct {
	Low  float64
	High float64
}

func (b BoundaryConstraint) Test(params []float64) bool {
	for _, v := range params {
		if v < b.Low || v > b.High {
			return false
		}
	}
	return true
}

// CompositeConstraint is the conjunction of two constraints.
type CompositeConstraint struct {
	first  Constraint
	second Constraint
}

// NewCompositeConstraint builds the AND of two constraints.
func NewCompositeConstraint(first, second Constraint) CompositeConstraint {
	return CompositeConstraint{first: first, second: second}
}

func (c CompositeConstraint) Test(params []float64) bool {
	return c.first.Test(params) && c.second.Test(params)
}

// privateConstraint tests each argument block against only its own slice
// of the full vector; blocks are independent at this level.
type privateConstraint struct {
	arguments []*Parameter
}

func (p privateConstraint) Test(params []float64) bool {
	k := 0
	for _, arg := range p.arguments {
		size := arg.Size()
		if k+size > len(params) {
			return false
		}
		ok, err := arg.Test(params[k : k+size])
		if err != nil || !ok {
			return false
		}
		k += size
	}
	return k == len(params)
}
