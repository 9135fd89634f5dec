// Package config loads the extraction options from the environment, with
// optional .env file support for local runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds the caller-tunable extraction settings.
type Config struct {
	// VATOverrides maps single-letter codes to percentage rates,
	// e.g. VAT_OVERRIDES="A=8.5,B=10".
	VATOverrides map[string]float64
	// DefaultVATPercent applies to unknown codes. DEFAULT_VAT_PERCENT,
	// 20.0 when unset.
	DefaultVATPercent float64
	// MarginRate is the minimum margin fraction over purchase price.
	// MARGIN_RATE, 0 when unset; negative values clamp to zero.
	MarginRate float64
}

// Load reads the configuration from the environment. A .env file in the
// working directory is honored when present but never required.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		VATOverrides:      map[string]float64{},
		DefaultVATPercent: 20.0,
	}

	if v := os.Getenv("DEFAULT_VAT_PERCENT"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid DEFAULT_VAT_PERCENT %q: %w", v, err)
		}
		cfg.DefaultVATPercent = rate
	}

	if v := os.Getenv("MARGIN_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid MARGIN_RATE %q: %w", v, err)
		}
		if rate < 0 {
			rate = 0
		}
		cfg.MarginRate = rate
	}

	if v := os.Getenv("VAT_OVERRIDES"); v != "" {
		overrides, err := parseOverrides(v)
		if err != nil {
			return nil, err
		}
		cfg.VATOverrides = overrides
	}

	return cfg, nil
}

// parseOverrides parses "A=8.5,B=10" into a code-to-rate map.
func parseOverrides(v string) (map[string]float64, error) {
	out := map[string]float64{}
	for _, pair := range strings.Split(v, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		code, rateStr, found := strings.Cut(pair, "=")
		code = strings.ToUpper(strings.TrimSpace(code))
		if !found || len(code) != 1 {
			return nil, fmt.Errorf("invalid VAT_OVERRIDES entry %q", pair)
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(rateStr), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid VAT_OVERRIDES rate in %q: %w", pair, err)
		}
		out[code] = rate
	}
	return out, nil
}
