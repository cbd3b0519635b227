// Package config holds numeric tunables for bootstrap and calibration.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds solver and curve construction parameters.
type Config struct {
	// ConvergenceTolerance is the residual tolerance for Newton-Raphson
	// convergence during bootstrap.
	ConvergenceTolerance float64 `mapstructure:"convergence_tolerance"`

	// MaxBootstrapIterations is the maximum iterations for curve bootstrap.
	MaxBootstrapIterations int `mapstructure:"max_bootstrap_iterations"`

	// DampingFactor limits Newton step size to prevent overshooting.
	// Delta is clamped to DampingFactor * currentGuess.
	DampingFactor float64 `mapstructure:"damping_factor"`

	// MinDiscountFactor is the floor for discount factors to prevent
	// numerical instability (division by near-zero).
	MinDiscountFactor float64 `mapstructure:"min_discount_factor"`

	// DerivativeThreshold is the minimum derivative magnitude.
	// Below this, Newton iteration stops to avoid division by near-zero.
	DerivativeThreshold float64 `mapstructure:"derivative_threshold"`

	// CalibrationIterations bounds the optimizer during model calibration.
	CalibrationIterations int `mapstructure:"calibration_iterations"`

	// CalibrationEpsilon is the objective-improvement threshold the
	// optimizer's end criteria use.
	CalibrationEpsilon float64 `mapstructure:"calibration_epsilon"`
}

// DefaultConfig provides production-ready default values.
var DefaultConfig = Config{
	ConvergenceTolerance:   1e-12,
	MaxBootstrapIterations: 100,
	DampingFactor:          0.5,
	MinDiscountFactor:      1e-9,
	DerivativeThreshold:    1e-15,
	CalibrationIterations:  2000,
	CalibrationEpsilon:     1e-12,
}

// cfg is the active configuration. Defaults to DefaultConfig.
var cfg = DefaultConfig

// Set replaces the active configuration.
func Set(c Config) {
	cfg = c
}

// Get returns the active configuration.
func Get() Config {
	return cfg
}

// Load reads a configuration file (YAML, TOML or JSON, by extension) and
// returns it merged over the defaults. It does not install the result;
// call Set with the returned value to make it active.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetDefault("convergence_tolerance", DefaultConfig.ConvergenceTolerance)
	v.SetDefault("max_bootstrap_iterations", DefaultConfig.MaxBootstrapIterations)
	v.SetDefault("damping_factor", DefaultConfig.DampingFactor)
	v.SetDefault("min_discount_factor", DefaultConfig.MinDiscountFactor)
	v.SetDefault("derivative_threshold", DefaultConfig.DerivativeThreshold)
	v.SetDefault("calibration_iterations", DefaultConfig.CalibrationIterations)
	v.SetDefault("calibration_epsilon", DefaultConfig.CalibrationEpsilon)
	if err := v.ReadInConfig(); err != nil {
		return DefaultConfig, fmt.Errorf("config: read %s: %w", path, err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return DefaultConfig, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return c, nil
}
