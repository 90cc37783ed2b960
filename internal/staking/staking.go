package staking

import (
    "context"
    "math"

    "cryptotools/internal/provider"
)

// PriceLookup is the slice of the cache surface the calculator needs.
type PriceLookup interface {
    GetOrFetch(ctx context.Context, coinID string, currencies []string) (provider.Quote, error)
}

// Projection is the result of a staking computation. Amounts are
// denominated in the staked coin; Converted holds per-currency fiat values
// when pricing was available.
type Projection struct {
    Principal  float64 `json:"principal"`
    APYPercent float64 `json:"apy_percent"`
    Years      float64 `json:"years"`
    CoinID     string  `json:"coin_id"`

    FinalAmount float64 `json:"final_amount"`
    GainAmount  float64 `json:"gain_amount"`

    // Converted maps display currency to FinalAmount valued in it. Nil when
    // no conversion was requested or pricing was unavailable.
    Converted map[string]float64 `json:"converted,omitempty"`
    // ConversionUnavailable is set when conversion was requested but the
    // price lookup failed; the coin-denominated amounts are still valid.
    ConversionUnavailable bool `json:"conversion_unavailable,omitempty"`
}

// Calculator projects compounded staking value. It owns no state; price
// data is borrowed through the lookup per call.
type Calculator struct {
    Prices PriceLookup
}

// Project computes principal compounded annually at apyPercent over years,
// then values the result in each display currency. A pricing failure does
// not fail the projection: the arithmetic result is returned with
// ConversionUnavailable set.
func (c *Calculator) Project(ctx context.Context, principal, years, apyPercent float64, coinID string, displayCurrencies []string) (Projection, error) {
    if err := validate(principal, years, apyPercent); err != nil {
        return Projection{}, err
    }

    final := principal * math.Pow(1+apyPercent/100, years)
    p := Projection{
        Principal:   principal,
        APYPercent:  apyPercent,
        Years:       years,
        CoinID:      coinID,
        FinalAmount: final,
        GainAmount:  final - principal,
    }

    if len(displayCurrencies) == 0 || c.Prices == nil {
        return p, nil
    }

    quote, err := c.Prices.GetOrFetch(ctx, coinID, displayCurrencies)
    if err != nil {
        p.ConversionUnavailable = true
        return p, nil
    }
    converted := make(map[string]float64, len(quote.Prices))
    for cur, unit := range quote.Prices {
        converted[cur] = final * unit
    }
    p.Converted = converted
    return p, nil
}

func validate(principal, years, apyPercent float64) error {
    for _, v := range []float64{principal, years, apyPercent} {
        if math.IsNaN(v) || math.IsInf(v, 0) {
            return provider.Errorf(provider.KindInvalidInput, "inputs must be finite")
        }
    }
    if principal < 0 {
        return provider.Errorf(provider.KindInvalidInput, "principal cannot be negative")
    }
    if years < 0 {
        return provider.Errorf(provider.KindInvalidInput, "years cannot be negative")
    }
    if apyPercent < -100 {
        return provider.Errorf(provider.KindInvalidInput, "apy cannot be below -100%%")
    }
    return nil
}
