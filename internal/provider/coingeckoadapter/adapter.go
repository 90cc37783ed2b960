package coingeckoadapter

import (
    "context"
    "strings"
    "time"

    "cryptotools/internal/provider"
    "cryptotools/internal/provider/coingecko"
)

type Config struct {
    Name string // display name, default: CoinGecko
}

// Adapter exposes the CoinGecko client through the provider interface,
// normalizing inputs and classifying not-found responses.
type Adapter struct {
    cfg    Config
    client *coingecko.Client
}

func New(cfg Config, client *coingecko.Client) *Adapter {
    if cfg.Name == "" { cfg.Name = "CoinGecko" }
    return &Adapter{cfg: cfg, client: client}
}

func (a *Adapter) Name() string { return a.cfg.Name }

func (a *Adapter) GetPrice(ctx context.Context, coinID string, currencies []string) (provider.Quote, error) {
    coinID = strings.TrimSpace(coinID)
    if coinID == "" {
        return provider.Quote{}, provider.Errorf(provider.KindInvalidInput, "coin id cannot be empty")
    }
    normalized := normalizeCurrencies(currencies)
    if len(normalized) == 0 {
        return provider.Quote{}, provider.Errorf(provider.KindInvalidInput, "currencies cannot be empty")
    }

    body, err := a.client.SimplePrice(ctx, []string{coinID}, normalized)
    if err != nil {
        return provider.Quote{}, err
    }

    // CoinGecko answers 200 with the id missing when it is unknown. A
    // present id with no prices means every requested currency was
    // unrecognized; that is not a lookup failure.
    prices, ok := body[coinID]
    if !ok {
        return provider.Quote{}, provider.Errorf(provider.KindNotFound, "unknown coin id %q", coinID)
    }

    return provider.Quote{
        CoinID:    coinID,
        Prices:    prices,
        FetchedAt: time.Now().UTC(),
    }, nil
}

func (a *Adapter) ListCoins(ctx context.Context) ([]provider.Coin, error) {
    return a.client.CoinsList(ctx)
}

// normalizeCurrencies lower-cases, trims and de-duplicates preserving order.
func normalizeCurrencies(currencies []string) []string {
    out := make([]string, 0, len(currencies))
    seen := make(map[string]struct{}, len(currencies))
    for _, cur := range currencies {
        cur = strings.ToLower(strings.TrimSpace(cur))
        if cur == "" { continue }
        if _, dup := seen[cur]; dup { continue }
        seen[cur] = struct{}{}
        out = append(out, cur)
    }
    return out
}
