package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/meenmo/qflib/calendar"
	"github.com/meenmo/qflib/config"
	"github.com/meenmo/qflib/curve"
	"github.com/meenmo/qflib/logging"
	"github.com/meenmo/qflib/marketdata"
	"github.com/meenmo/qflib/model"
	"github.com/meenmo/qflib/obs"
	"github.com/meenmo/qflib/quote"
)

type calibInput struct {
	SettlementDate string                `json:"settlement_date"`
	Calendar       string                `json:"calendar"`
	FreqMonths     int                   `json:"freq_months"`
	Quotes         []marketdata.QuoteRow `json:"quotes"`
	ZeroSpreadBP   float64               `json:"zero_spread_bp"`
	BondMaturities []float64             `json:"bond_maturities"`
}

type pillarOutput struct {
	Tenor    string  `json:"tenor"`
	Discount float64 `json:"discount"`
	ZeroPct  float64 `json:"zero_pct"`
}

type calibOutput struct {
	SettlementDate string         `json:"settlement_date"`
	Pillars        []pillarOutput `json:"pillars"`
	Level          float64        `json:"level"`
	Slope          float64        `json:"slope"`
	Termination    string         `json:"termination"`
	Converged      bool           `json:"converged"`
	Error          string         `json:"error,omitempty"`
}

func main() {
	inputPath := flag.String("input", "", "JSON input path (reads stdin if omitted)")
	configPath := flag.String("config", "", "optional solver config file")
	verbose := flag.Bool("v", false, "log calibration progress")
	flag.Parse()

	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			fail(err)
		}
		config.Set(cfg)
	}

	logCfg := logging.DefaultConfig()
	if *verbose {
		logCfg.Level = "debug"
	}
	model.SetLogger(logging.New(logCfg))

	var raw []byte
	var err error
	if *inputPath != "" {
		raw, err = os.ReadFile(*inputPath)
	} else {
		raw, err = io.ReadAll(os.Stdin)
	}
	if err != nil {
		fail(err)
	}

	var in calibInput
	if err := json.Unmarshal(raw, &in); err != nil {
		fail(err)
	}

	out, err := run(in)
	if err != nil {
		out.Error = err.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fail(err)
	}
	if out.Error != "" {
		os.Exit(1)
	}
}

func run(in calibInput) (calibOutput, error) {
	out := calibOutput{SettlementDate: in.SettlementDate}

	settlement, err := time.Parse("2006-01-02", in.SettlementDate)
	if err != nil {
		return out, fmt.Errorf("settlement_date: %w", err)
	}
	cal := calendar.CalendarID(in.Calendar)
	if cal == "" {
		cal = calendar.NONE
	}
	freq := in.FreqMonths
	if freq <= 0 {
		freq = 12
	}

	quotes := marketdata.Quotes(marketdata.NewMapFeed(in.Quotes))
	piecewise := curve.NewPiecewise(settlement, quotes, cal, freq)

	underlying := obs.NewRelinkableHandle[curve.TermStructure](piecewise)
	spread := quote.NewSimpleQuote(in.ZeroSpreadBP / 10000.0)
	spreaded := curve.NewZeroSpreaded(underlying.Handle, obs.NewHandle[quote.Quote](spread))

	for _, row := range in.Quotes {
		d, err := tenorDate(settlement, row.Tenor)
		if err != nil {
			return out, err
		}
		d = calendar.Adjust(cal, d)
		df, err := spreaded.Discount(d)
		if err != nil {
			return out, err
		}
		zero, err := spreaded.ZeroRate(d, spreaded.DayCount(), curve.Continuous, curve.NoFrequency)
		if err != nil {
			return out, err
		}
		out.Pillars = append(out.Pillars, pillarOutput{
			Tenor:    row.Tenor,
			Discount: df,
			ZeroPct:  zero * 100,
		})
	}

	maturities := in.BondMaturities
	if len(maturities) == 0 {
		maturities = []float64{1, 2, 3, 5, 7, 10}
	}
	yield := model.NewLinearYield(0.03, 0.0)
	helpers := make([]model.CalibrationHelper, 0, len(maturities))
	for _, t := range maturities {
		price, err := spreaded.DiscountTime(t)
		if err != nil {
			return out, err
		}
		helpers = append(helpers, model.NewDiscountBondHelper(t, price, yield))
	}

	cfg := config.Get()
	term, err := yield.Calibrate(helpers, model.NelderMead{}, model.EndCriteria{
		MaxIterations:   cfg.CalibrationIterations,
		FunctionEpsilon: cfg.CalibrationEpsilon,
	})
	if err != nil {
		return out, err
	}

	out.Level = yield.Level()
	out.Slope = yield.Slope()
	out.Termination = term.Reason
	out.Converged = term.Converged
	return out, nil
}

// tenorDate advances settlement by a tenor like "2W", "18M" or "10Y".
func tenorDate(settlement time.Time, tenor string) (time.Time, error) {
	var n int
	var unit byte
	if _, err := fmt.Sscanf(strings.ToUpper(strings.TrimSpace(tenor)), "%d%c", &n, &unit); err != nil || n <= 0 {
		return time.Time{}, fmt.Errorf("quote tenor %q: unsupported format", tenor)
	}
	switch unit {
	case 'D':
		return settlement.AddDate(0, 0, n), nil
	case 'W':
		return settlement.AddDate(0, 0, 7*n), nil
	case 'M':
		return settlement.AddDate(0, n, 0), nil
	case 'Y':
		return settlement.AddDate(n, 0, 0), nil
	}
	return time.Time{}, fmt.Errorf("quote tenor %q: unsupported format", tenor)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "curvecalib:", err)
	os.Exit(1)
}
