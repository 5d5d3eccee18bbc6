package economy

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Config holds the economic control parameters. Decimal fields unmarshal
// from their textual form in both YAML and environment variables.
type Config struct {
	// DefaultEmissionRate converts purchase amount to points earned when no
	// tier rate applies.
	DefaultEmissionRate decimal.Decimal `yaml:"default_emission_rate" env:"POINTLEDGER_DEFAULT_EMISSION_RATE"`

	// TierRates overrides the emission rate per business tier.
	TierRates map[string]decimal.Decimal `yaml:"tier_rates" env:"-"`

	// BurnRate is the fraction of every redemption destroyed at the burn
	// sentinel instead of credited to the business.
	BurnRate decimal.Decimal `yaml:"burn_rate" env:"POINTLEDGER_BURN_RATE"`

	// MinRedeemPoints is the smallest redemption the ledger accepts.
	MinRedeemPoints int64 `yaml:"min_redeem_points" env:"POINTLEDGER_MIN_REDEEM_POINTS"`

	// MaxTicketFraction caps a redemption's monetary value relative to the
	// ticket it is applied to.
	MaxTicketFraction decimal.Decimal `yaml:"max_ticket_fraction" env:"POINTLEDGER_MAX_TICKET_FRACTION"`

	// PointValue is the monetary value of one point.
	PointValue decimal.Decimal `yaml:"point_value" env:"POINTLEDGER_POINT_VALUE"`
}

// DefaultConfig returns the stock economic parameters.
func DefaultConfig() Config {
	return Config{
		DefaultEmissionRate: decimal.NewFromInt(1),
		BurnRate:            decimal.RequireFromString("0.005"),
		MinRedeemPoints:     20,
		MaxTicketFraction:   decimal.RequireFromString("0.30"),
		PointValue:          decimal.RequireFromString("0.01"),
	}
}

// Validate checks the configuration for values the calculator cannot work
// with.
func (c Config) Validate() error {
	if c.DefaultEmissionRate.IsNegative() {
		return fmt.Errorf("economy: default emission rate must be non-negative, got %s", c.DefaultEmissionRate)
	}
	for tier, r := range c.TierRates {
		if r.IsNegative() {
			return fmt.Errorf("economy: emission rate for tier %q must be non-negative, got %s", tier, r)
		}
	}
	if c.BurnRate.IsNegative() || c.BurnRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return fmt.Errorf("economy: burn rate must be in [0, 1), got %s", c.BurnRate)
	}
	if c.MinRedeemPoints < 0 {
		return fmt.Errorf("economy: min redeem points must be non-negative, got %d", c.MinRedeemPoints)
	}
	if c.MaxTicketFraction.IsNegative() || c.MaxTicketFraction.GreaterThan(decimal.NewFromInt(1)) {
		return fmt.Errorf("economy: max ticket fraction must be in [0, 1], got %s", c.MaxTicketFraction)
	}
	if !c.PointValue.IsPositive() {
		return fmt.Errorf("economy: point value must be positive, got %s", c.PointValue)
	}
	return nil
}

// LoadFile reads economic configuration from a YAML file, layered over the
// defaults.
func LoadFile(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("economy: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("economy: parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// FromEnv reads economic configuration from environment variables, layered
// over the defaults.
func FromEnv() (Config, error) {
	cfg := DefaultConfig()
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("economy: parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
