package curve

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrMalformedTenor indicates a tenor string the curve layer cannot parse.
var ErrMalformedTenor = errors.New("curve: malformed tenor")

// parseTenor splits a tenor string like "18M" or "10Y" into a positive
// count and an upper-case unit letter (D, W, M or Y).
func parseTenor(tenor string) (int, byte, error) {
	s := strings.ToUpper(strings.TrimSpace(tenor))
	if len(s) < 2 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTenor, tenor)
	}
	unit := s[len(s)-1]
	switch unit {
	case 'D', 'W', 'M', 'Y':
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTenor, tenor)
	}
	n, err := strconv.Atoi(s[:len(s)-1])
	if err != nil || n <= 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedTenor, tenor)
	}
	return n, unit, nil
}

// tenorToYears converts a tenor string to a year fraction. Day and week
// units use a 365-day year, matching the curve time axis.
func tenorToYears(tenor string) (float64, error) {
	n, unit, err := parseTenor(tenor)
	if err != nil {
		return 0, err
	}
	switch unit {
	case 'D':
		return float64(n) / 365.0, nil
	case 'W':
		return float64(n) * 7.0 / 365.0, nil
	case 'M':
		return float64(n) / 12.0, nil
	default: // 'Y'
		return float64(n), nil
	}
}
