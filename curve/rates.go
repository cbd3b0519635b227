package curve

import (
	"errors"
	"fmt"
	"math"
)

// Compounding selects the convention used to turn discount factors into rates.
type Compounding int

const (
	// Simple means 1 + r*t.
	Simple Compounding = iota
	// Compounded means (1 + r/f)^(f*t).
	Compounded
	// Continuous means exp(r*t).
	Continuous
)

// Frequency is the number of compounding periods per year. It only matters
// under Compounded.
type Frequency int

const (
	NoFrequency Frequency = 0
	Annual      Frequency = 1
	Semiannual  Frequency = 2
	Quarterly   Frequency = 4
	Monthly     Frequency = 12
)

// ErrNonPositiveTime indicates a rate query over a zero or negative year
// fraction that the convention cannot invert.
var ErrNonPositiveTime = errors.New("curve: non-positive time in rate conversion")

// impliedRate inverts the compounding formula: given the compound factor
// accrued over t years it returns the rate that produces it.
func impliedRate(compound, t float64, comp Compounding, freq Frequency) (float64, error) {
	if t <= 0 {
		return 0, ErrNonPositiveTime
	}
	switch comp {
	case Simple:
		return (compound - 1.0) / t, nil
	case Compounded:
		if freq <= 0 {
			return 0, fmt.Errorf("curve: compounded rate needs a positive frequency, got %d", freq)
		}
		f := float64(freq)
		return (math.Pow(compound, 1.0/(f*t)) - 1.0) * f, nil
	case Continuous:
		return math.Log(compound) / t, nil
	default:
		return 0, fmt.Errorf("curve: unknown compounding %d", comp)
	}
}
