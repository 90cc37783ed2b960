package provider

import (
    "context"
    "time"
)

// Quote is the normalized shape returned by all providers.
// Prices maps lowercase currency codes to unit prices. Every value in a
// Quote comes from the same upstream call.
type Quote struct {
    CoinID    string             `json:"coin_id"`
    Prices    map[string]float64 `json:"prices"`
    FetchedAt time.Time          `json:"fetched_at"`
}

// Coin is one entry of a provider's coin catalog.
type Coin struct {
    ID     string `json:"id"`
    Symbol string `json:"symbol"`
    Name   string `json:"name"`
}

type Provider interface {
    Name() string
    // GetPrice returns a Quote for coinID covering the requested currencies.
    // Currencies unknown to the upstream are simply absent from the result.
    GetPrice(ctx context.Context, coinID string, currencies []string) (Quote, error)
    // ListCoins returns the full coin catalog in upstream order.
    ListCoins(ctx context.Context) ([]Coin, error)
}
