// Package marketdata adapts external quote feeds to the observable quotes
// the curve layer consumes.
package marketdata

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/meenmo/qflib/quote"
)

// QuoteRow is one observed par rate for a tenor, as delivered by a feed.
// Rates are carried as decimals so feed values survive parsing exactly.
type QuoteRow struct {
	Tenor string          `json:"tenor"`
	Rate  decimal.Decimal `json:"rate"` // percent
}

// Feed supplies par-rate quotes keyed by tenor.
type Feed interface {
	RateFor(tenor string) (float64, bool)
	Tenors() []string
}

// MapFeed is a static map-backed Feed for development and testing.
type MapFeed struct {
	rates map[string]decimal.Decimal
}

// NewMapFeed builds a feed from quote rows. Later rows win on duplicate
// tenors.
func NewMapFeed(rows []QuoteRow) *MapFeed {
	m := &MapFeed{rates: make(map[string]decimal.Decimal, len(rows))}
	for _, r := range rows {
		m.rates[r.Tenor] = r.Rate
	}
	return m
}

func (m *MapFeed) RateFor(tenor string) (float64, bool) {
	d, ok := m.rates[tenor]
	if !ok {
		return 0, false
	}
	return d.InexactFloat64(), true
}

func (m *MapFeed) Tenors() []string {
	tenors := make([]string, 0, len(m.rates))
	for t := range m.rates {
		tenors = append(tenors, t)
	}
	sort.Strings(tenors)
	return tenors
}

// Quotes materializes a feed into observable simple quotes, one per tenor,
// ready to drive a bootstrapped curve.
func Quotes(f Feed) map[string]*quote.SimpleQuote {
	out := make(map[string]*quote.SimpleQuote)
	for _, tenor := range f.Tenors() {
		if v, ok := f.RateFor(tenor); ok {
			out[tenor] = quote.NewSimpleQuote(v)
		}
	}
	return out
}
