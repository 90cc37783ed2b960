package catalog

import (
    "context"
    "sort"
    "strings"
    "sync"
    "time"

    "golang.org/x/sync/singleflight"

    "cryptotools/internal/provider"
)

// Lister is the slice of the provider surface the catalog needs.
type Lister interface {
    ListCoins(ctx context.Context) ([]provider.Coin, error)
}

// Catalog serves fuzzy coin search over a locally cached snapshot of the
// provider's coin list. The snapshot refreshes on TTL expiry; concurrent
// refreshes are coalesced. Search itself never goes upstream while a
// snapshot is valid.
type Catalog struct {
    Source Lister
    TTL    time.Duration
    // MaxResults caps the ranked result list. Zero means no cap.
    MaxResults int

    mu      sync.RWMutex
    coins   []provider.Coin
    expires time.Time
    sf      singleflight.Group
}

// Search returns catalog entries matching query, best first. Matching is
// case-insensitive containment against symbol and name. Rank order: exact
// symbol, exact name, prefix, substring; ties keep catalog order. An empty
// or whitespace query returns an empty result without touching upstream.
func (c *Catalog) Search(ctx context.Context, query string) ([]provider.Coin, error) {
    q := strings.ToLower(strings.TrimSpace(query))
    if q == "" {
        return []provider.Coin{}, nil
    }

    coins, err := c.snapshot(ctx)
    if err != nil {
        return nil, err
    }

    type ranked struct {
        coin provider.Coin
        rank int
    }
    matches := make([]ranked, 0, 16)
    for _, coin := range coins {
        symbol := strings.ToLower(coin.Symbol)
        name := strings.ToLower(coin.Name)
        var rank int
        switch {
        case symbol == q:
            rank = 0
        case name == q:
            rank = 1
        case strings.HasPrefix(symbol, q) || strings.HasPrefix(name, q):
            rank = 2
        case strings.Contains(symbol, q) || strings.Contains(name, q):
            rank = 3
        default:
            continue
        }
        matches = append(matches, ranked{coin: coin, rank: rank})
    }

    // Stable sort keeps catalog order inside each rank class.
    sort.SliceStable(matches, func(i, j int) bool { return matches[i].rank < matches[j].rank })

    out := make([]provider.Coin, 0, len(matches))
    for _, m := range matches {
        out = append(out, m.coin)
        if c.MaxResults > 0 && len(out) >= c.MaxResults {
            break
        }
    }
    return out, nil
}

// snapshot returns the cached coin list, refreshing it when expired.
func (c *Catalog) snapshot(ctx context.Context) ([]provider.Coin, error) {
    c.mu.RLock()
    coins, expires := c.coins, c.expires
    c.mu.RUnlock()
    if coins != nil && time.Now().Before(expires) {
        return coins, nil
    }

    ch := c.sf.DoChan("coins", func() (any, error) {
        c.mu.RLock()
        coins, expires := c.coins, c.expires
        c.mu.RUnlock()
        if coins != nil && time.Now().Before(expires) {
            return coins, nil
        }

        fresh, err := c.Source.ListCoins(context.WithoutCancel(ctx))
        if err != nil {
            // Serve the previous snapshot if we have one; a stale catalog
            // beats failing every search while upstream is down.
            if coins != nil {
                return coins, nil
            }
            return nil, err
        }
        c.mu.Lock()
        c.coins = fresh
        c.expires = time.Now().Add(c.TTL)
        c.mu.Unlock()
        return fresh, nil
    })

    select {
    case <-ctx.Done():
        return nil, ctx.Err()
    case res := <-ch:
        if res.Err != nil {
            return nil, res.Err
        }
        return res.Val.([]provider.Coin), nil
    }
}
