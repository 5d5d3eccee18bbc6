// Package economy implements the pure economic computations of the points
// ledger: emission on earns, burn on redemptions and redemption value
// checks. All arithmetic is exact decimal math; integer results are
// truncated toward zero, never rounded half-up. The package does no I/O.
package economy

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/perknet/pointledger/id"
)

// Economy errors.
var (
	// ErrBelowMinimumRedeem is returned when a redemption is smaller than
	// the configured minimum.
	ErrBelowMinimumRedeem = errors.New("economy: below minimum redeem points")

	// ErrTicketCeilingExceeded is returned when the redemption's monetary
	// value exceeds the configured fraction of the ticket total.
	ErrTicketCeilingExceeded = errors.New("economy: redemption exceeds ticket ceiling")
)

// RateProvider resolves the emission rate for a business. Rates can depend
// on tier or promotion state, so resolution is injected rather than
// hard-coded in the posting path.
type RateProvider interface {
	EmissionRate(ctx context.Context, businessID id.AccountID, tier string) (decimal.Decimal, error)
}

// FixedRateProvider returns the same emission rate for every business.
type FixedRateProvider struct {
	Rate decimal.Decimal
}

// EmissionRate implements RateProvider.
func (p FixedRateProvider) EmissionRate(context.Context, id.AccountID, string) (decimal.Decimal, error) {
	return p.Rate, nil
}

// TierRateProvider resolves emission rates from a per-tier table, falling
// back to a default rate for unknown tiers.
type TierRateProvider struct {
	Default decimal.Decimal
	Tiers   map[string]decimal.Decimal
}

// EmissionRate implements RateProvider.
func (p TierRateProvider) EmissionRate(_ context.Context, _ id.AccountID, tier string) (decimal.Decimal, error) {
	if r, ok := p.Tiers[tier]; ok {
		return r, nil
	}
	return p.Default, nil
}

var (
	_ RateProvider = FixedRateProvider{}
	_ RateProvider = TierRateProvider{}
)

// Calculator performs the ledger's economic computations against a fixed
// configuration. The zero value is not usable; construct with NewCalculator.
type Calculator struct {
	cfg Config
}

// NewCalculator returns a Calculator over the given configuration. The
// configuration is copied; later mutation of cfg does not affect the
// calculator.
func NewCalculator(cfg Config) *Calculator {
	return &Calculator{cfg: cfg}
}

// Config returns the configuration the calculator was built with.
func (c *Calculator) Config() Config {
	return c.cfg
}

// PointsEarned computes floor(purchaseAmount * emissionRate).
func (c *Calculator) PointsEarned(purchaseAmount, emissionRate decimal.Decimal) int64 {
	return purchaseAmount.Mul(emissionRate).Floor().IntPart()
}

// BurnAmount computes floor(points * burnRate), the slice of a redemption
// destroyed rather than credited to the business.
func (c *Calculator) BurnAmount(points int64) int64 {
	return decimal.NewFromInt(points).Mul(c.cfg.BurnRate).Floor().IntPart()
}

// BusinessCredit computes the net points a business receives for a
// redemption: points minus the burn.
func (c *Calculator) BusinessCredit(points int64) int64 {
	return points - c.BurnAmount(points)
}

// RedemptionValue converts points to their monetary value.
func (c *Calculator) RedemptionValue(points int64) decimal.Decimal {
	return decimal.NewFromInt(points).Mul(c.cfg.PointValue)
}

// CheckRedeem validates a redemption against the minimum-points floor and
// the ticket-value ceiling. Balance checks are the posting engine's job.
func (c *Calculator) CheckRedeem(points int64, ticketTotal decimal.Decimal) error {
	if points < c.cfg.MinRedeemPoints {
		return ErrBelowMinimumRedeem
	}
	ceiling := ticketTotal.Mul(c.cfg.MaxTicketFraction)
	if c.RedemptionValue(points).GreaterThan(ceiling) {
		return ErrTicketCeilingExceeded
	}
	return nil
}

// RateProvider builds the provider implied by the configuration: a tier
// table when tier rates are configured, otherwise a fixed default.
func (c *Calculator) RateProvider() RateProvider {
	if len(c.cfg.TierRates) > 0 {
		return TierRateProvider{Default: c.cfg.DefaultEmissionRate, Tiers: c.cfg.TierRates}
	}
	return FixedRateProvider{Rate: c.cfg.DefaultEmissionRate}
}
