package curve

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/meenmo/qflib/calendar"
	"github.com/meenmo/qflib/config"
	"github.com/meenmo/qflib/quote"
	"github.com/meenmo/qflib/utils"
)

// curveDayCount is the time basis for curve construction. Following market
// convention, the curve time axis uses ACT/365F for interpolation and zero
// rate calculations regardless of currency; leg-specific day counts apply
// only to coupon accrual during bootstrap.
const curveDayCount = "ACT/365F"

// Piecewise is a par-quote bootstrapped discount curve with annual fixed
// coupons and log-linear interpolation between pillars. It observes its
// input quotes: a quote change marks the curve stale, and the bootstrap
// reruns lazily on the next read.
type Piecewise struct {
	*baseCurve
	queries
	quotes     map[string]*quote.SimpleQuote // tenor -> par rate in percent
	freqMonths int

	stale       bool
	pillarTimes []float64
	pillarDFs   []float64
}

// NewPiecewise builds a bootstrapped curve anchored at settlement from par
// quotes keyed by tenor string ("1Y", "18M", ...). Quotes are in percent.
// Construction never runs the bootstrap; the first read does.
func NewPiecewise(settlement time.Time, quotes map[string]*quote.SimpleQuote, cal calendar.CalendarID, freqMonths int) *Piecewise {
	p := &Piecewise{
		baseCurve:  newFixedBase(settlement, cal, curveDayCount),
		quotes:     quotes,
		freqMonths: freqMonths,
		stale:      true,
	}
	p.queries = queries{self: p}
	for _, q := range quotes {
		q.RegisterObserver(p)
	}
	return p
}

// Update marks the curve stale and propagates downstream.
func (p *Piecewise) Update() {
	p.stale = true
	p.baseCurve.Update()
}

func (p *Piecewise) DiscountTime(t float64) (float64, error) {
	if err := p.calculate(); err != nil {
		return 0, err
	}
	if t < 0 {
		return 0, ErrDateBeforeReference
	}
	if t == 0 {
		return 1.0, nil
	}
	return logLinear(p.pillarTimes, p.pillarDFs, t), nil
}

// calculate reruns the bootstrap when a quote changed since the last read.
func (p *Piecewise) calculate() error {
	if !p.stale && p.pillarDFs != nil {
		return nil
	}

	parsed := make(map[float64]float64, len(p.quotes)) // tenor years -> percent
	for tenor, q := range p.quotes {
		years, err := tenorToYears(tenor)
		if err != nil {
			return err
		}
		v, err := q.Value()
		if err != nil {
			return fmt.Errorf("curve: quote %q: %w", tenor, err)
		}
		parsed[years] = v
	}
	if len(parsed) < 2 {
		return fmt.Errorf("curve: bootstrap needs at least 2 quotes, got %d", len(parsed))
	}

	grid := p.generatePaymentDates(parsed)
	par := p.buildParCurve(grid, parsed)
	dfs, err := p.bootstrap(grid, par, parsed)
	if err != nil {
		return err
	}

	dates := make([]time.Time, 0, len(dfs))
	for d := range dfs {
		dates = append(dates, d)
	}
	utils.SortDates(dates)
	p.pillarTimes = make([]float64, len(dates))
	p.pillarDFs = make([]float64, len(dates))
	for i, d := range dates {
		p.pillarTimes[i] = utils.YearFraction(p.refDate, d, curveDayCount)
		p.pillarDFs[i] = dfs[d]
	}
	p.stale = false
	return nil
}

func (p *Piecewise) generatePaymentDates(parsed map[float64]float64) []time.Time {
	maxYears := 0.0
	for tenor := range parsed {
		if tenor > maxYears {
			maxYears = tenor
		}
	}
	numDates := (int(maxYears*12) + p.freqMonths) / p.freqMonths

	dates := make([]time.Time, 0, numDates+1)
	for i := 0; i <= numDates; i++ {
		t := utils.AddMonth(p.refDate, p.freqMonths*i)
		dates = append(dates, calendar.Adjust(p.cal, t))
	}
	return dates
}

func (p *Piecewise) gridTenor(i int) float64 {
	// Tenor from grid index avoids floating point accumulation errors.
	return float64(i*p.freqMonths) / 12.0
}

// buildParCurve fills par rates (as decimal fractions) on the whole grid,
// linearly interpolating between quoted tenors.
func (p *Piecewise) buildParCurve(grid []time.Time, parsed map[float64]float64) map[time.Time]float64 {
	quotedDates := []time.Time{}
	quotedRates := []float64{}
	for i, d := range grid {
		if rate, ok := parsed[p.gridTenor(i)]; ok {
			quotedDates = append(quotedDates, d)
			quotedRates = append(quotedRates, rate)
		}
	}

	par := make(map[time.Time]float64, len(grid))
	for i, d := range grid {
		if rate, ok := parsed[p.gridTenor(i)]; ok {
			par[d] = rate / 100.0
			continue
		}
		if len(quotedDates) < 2 {
			continue
		}
		j := sort.Search(len(quotedDates), func(k int) bool {
			return !quotedDates[k].Before(d)
		})
		if j <= 0 {
			j = 1
		}
		if j >= len(quotedDates) {
			j = len(quotedDates) - 1
		}
		d1, d2 := quotedDates[j-1], quotedDates[j]
		r1, r2 := quotedRates[j-1], quotedRates[j]
		par[d] = (r1 + (r2-r1)*utils.Days(d1, d)/utils.Days(d1, d2)) / 100.0
	}
	return par
}

// bootstrap solves discount factors at each quoted pillar sequentially and
// interpolates the rest of the grid log-linearly.
func (p *Piecewise) bootstrap(grid []time.Time, par map[time.Time]float64, parsed map[float64]float64) (map[time.Time]float64, error) {
	df := map[time.Time]float64{grid[0]: 1.0}

	quoted := []time.Time{grid[0]}
	for i, d := range grid[1:] {
		if _, ok := parsed[p.gridTenor(i+1)]; ok {
			quoted = append(quoted, d)
		}
	}
	if len(quoted) < 2 {
		return nil, fmt.Errorf("curve: no quoted pillars land on the %dM grid", p.freqMonths)
	}

	for i := 1; i < len(quoted); i++ {
		maturity := quoted[i]
		coupons := p.buildCoupons(maturity)
		solved, err := p.solveDiscountFactor(quoted[:i+1], df, coupons, par[maturity])
		if err != nil {
			return nil, err
		}
		df[maturity] = solved
	}

	// Fill the unquoted grid dates from the solved pillars.
	times := make([]float64, len(quoted))
	dfs := make([]float64, len(quoted))
	for i, d := range quoted {
		times[i] = utils.YearFraction(p.refDate, d, curveDayCount)
		dfs[i] = df[d]
	}
	for _, d := range grid {
		if _, ok := df[d]; ok {
			continue
		}
		t := utils.YearFraction(p.refDate, d, curveDayCount)
		df[d] = utils.RoundTo(logLinear(times, dfs, t), 12)
	}
	return df, nil
}

type fixedCoupon struct {
	paymentDate time.Time
	accrual     float64
}

// buildCoupons generates annual fixed-leg coupons from settlement to
// maturity, rolling backward from maturity to avoid date drift from
// repeated Modified Following adjustments.
func (p *Piecewise) buildCoupons(maturity time.Time) []fixedCoupon {
	accrualDC := "ACT/365F"
	payDelay := 0
	switch p.cal {
	case calendar.TARGET, calendar.USD:
		accrualDC = "ACT/360"
		payDelay = 2
	case calendar.JPN:
		payDelay = 2
	}

	unadjusted := []time.Time{}
	current := maturity
	for current.After(p.refDate) {
		unadjusted = append([]time.Time{current}, unadjusted...)
		current = utils.AddMonth(current, -12)
	}
	unadjusted = append([]time.Time{p.refDate}, unadjusted...)

	coupons := make([]fixedCoupon, 0, len(unadjusted)-1)
	for i := 0; i < len(unadjusted)-1; i++ {
		start := calendar.Adjust(p.cal, unadjusted[i])
		end := calendar.Adjust(p.cal, unadjusted[i+1])
		pay := calendar.AddBusinessDays(p.cal, end, payDelay)
		coupons = append(coupons, fixedCoupon{
			paymentDate: pay,
			accrual:     utils.YearFraction(start, end, accrualDC),
		})
	}
	return coupons
}

// solveDiscountFactor solves for the discount factor at maturity with
// Newton-Raphson: 1 = parRate * sum(accrual_i * D(pay_i)) + D(maturity),
// where coupons past the previous pillar are interpolated against the
// unknown.
func (p *Piecewise) solveDiscountFactor(quoted []time.Time, df map[time.Time]float64, coupons []fixedCoupon, parRate float64) (float64, error) {
	c := config.Get()
	maturity := quoted[len(quoted)-1]
	prevPillar := quoted[len(quoted)-2]
	dfPrev := df[prevPillar]

	guess := dfPrev
	for iter := 0; iter < c.MaxBootstrapIterations; iter++ {
		pvFixed := 0.0
		derivative := 0.0

		for _, cpn := range coupons {
			var d, dPrime float64
			if !cpn.paymentDate.After(prevPillar) {
				d = p.knownDF(cpn.paymentDate, quoted, df)
			} else {
				d, dPrime = p.unknownDF(cpn.paymentDate, prevPillar, dfPrev, maturity, guess)
			}
			pvFixed += d * cpn.accrual * parRate
			derivative += dPrime * cpn.accrual * parRate
		}

		fVal := pvFixed + guess - 1.0
		fPrime := derivative + 1.0

		if math.Abs(fVal) < c.ConvergenceTolerance {
			return guess, nil
		}
		if math.Abs(fPrime) < c.DerivativeThreshold {
			break
		}

		delta := fVal / fPrime
		if math.Abs(delta) > c.DampingFactor*guess {
			delta = math.Copysign(c.DampingFactor*guess, delta)
		}
		guess -= delta
		if guess < c.MinDiscountFactor {
			guess = c.MinDiscountFactor
		}
	}
	return guess, nil
}

// knownDF retrieves or interpolates a discount factor from already solved
// pillars.
func (p *Piecewise) knownDF(d time.Time, quoted []time.Time, df map[time.Time]float64) float64 {
	if v, ok := df[d]; ok {
		return v
	}
	d1, d2 := utils.AdjacentDates(d, quoted)
	t1 := utils.YearFraction(p.refDate, d1, curveDayCount)
	t2 := utils.YearFraction(p.refDate, d2, curveDayCount)
	t := utils.YearFraction(p.refDate, d, curveDayCount)
	if t2 == t1 {
		return df[d1]
	}
	fwd := math.Log(df[d1]/df[d2]) / (t2 - t1)
	return df[d1] * math.Exp(-fwd*(t-t1))
}

// unknownDF interpolates the DF at d when the endpoint DF(maturity) = x is
// still unknown. Returns DF(d) and d(DF(d))/dx.
func (p *Piecewise) unknownDF(d, start time.Time, dfStart float64, end time.Time, x float64) (float64, float64) {
	tStart := utils.YearFraction(p.refDate, start, curveDayCount)
	tEnd := utils.YearFraction(p.refDate, end, curveDayCount)
	t := utils.YearFraction(p.refDate, d, curveDayCount)
	if tEnd == tStart {
		return dfStart, 0
	}
	ratio := (t - tStart) / (tEnd - tStart)
	if x < config.Get().MinDiscountFactor {
		x = config.Get().MinDiscountFactor
	}
	dfT := math.Pow(dfStart, 1.0-ratio) * math.Pow(x, ratio)
	return dfT, ratio * dfT / x
}

// logLinear interpolates discount factors log-linearly in time, using the
// nearest boundary segment outside the pillar range.
func logLinear(times, dfs []float64, t float64) float64 {
	n := len(times)
	if n == 0 {
		return 1.0
	}
	if n == 1 {
		return dfs[0]
	}
	i := sort.SearchFloat64s(times, t)
	if i <= 0 {
		i = 1
	}
	if i >= n {
		i = n - 1
	}
	t1, t2 := times[i-1], times[i]
	if t2 == t1 {
		return dfs[i-1]
	}
	fwd := math.Log(dfs[i-1]/dfs[i]) / (t2 - t1)
	return dfs[i-1] * math.Exp(-fwd*(t-t1))
}
