package reservation

import (
	"time"

	"github.com/shopspring/decimal"
)

// Charge is the outcome of pricing one parked interval.
type Charge struct {
	Cost          decimal.Decimal
	DurationHours float64
}

type PriceCalculator interface {
	Charge(parkedAt, releasedAt time.Time, pricePerHour decimal.Decimal) Charge
}

// DefaultPriceCalculator bills fractional hours with a floor of MinimumUnit.
type DefaultPriceCalculator struct {
	MinimumUnit time.Duration
}

func NewDefaultPriceCalculator(minimumUnit time.Duration) *DefaultPriceCalculator {
	if minimumUnit <= 0 {
		minimumUnit = time.Hour
	}
	return &DefaultPriceCalculator{MinimumUnit: minimumUnit}
}

func (pc *DefaultPriceCalculator) Charge(parkedAt, releasedAt time.Time, pricePerHour decimal.Decimal) Charge {
	elapsed := releasedAt.Sub(parkedAt)
	if elapsed < pc.MinimumUnit {
		elapsed = pc.MinimumUnit
	}
	hours := elapsed.Hours()
	// Round is half away from zero, which is half-up for non-negative amounts.
	cost := decimal.NewFromFloat(hours).Mul(pricePerHour).Round(2)
	return Charge{Cost: cost, DurationHours: hours}
}
