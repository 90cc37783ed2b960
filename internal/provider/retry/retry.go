package retry

import (
    "context"
    "time"

    "cryptotools/internal/provider"
)

// Provider wraps another provider and retries transient failures with
// exponential backoff. It sits at the provider-call boundary, underneath
// the cache, so retries never hold a coalescing flight beyond the fetch
// timeout budget. InvalidInput and NotFound are surfaced immediately.
type Provider struct {
    P provider.Provider
    // MaxAttempts is the total number of calls, first try included.
    // Values below 1 behave as 1.
    MaxAttempts int
    // BaseDelay is the first backoff step; it doubles per attempt up to
    // MaxDelay. Defaults: 200ms base, 5s cap.
    BaseDelay time.Duration
    MaxDelay  time.Duration
}

const (
    defaultBaseDelay = 200 * time.Millisecond
    defaultMaxDelay  = 5 * time.Second
)

func (r *Provider) Name() string { return r.P.Name() }

func (r *Provider) GetPrice(ctx context.Context, coinID string, currencies []string) (provider.Quote, error) {
    var q provider.Quote
    err := r.do(ctx, func() error {
        var err error
        q, err = r.P.GetPrice(ctx, coinID, currencies)
        return err
    })
    return q, err
}

func (r *Provider) ListCoins(ctx context.Context) ([]provider.Coin, error) {
    var coins []provider.Coin
    err := r.do(ctx, func() error {
        var err error
        coins, err = r.P.ListCoins(ctx)
        return err
    })
    return coins, err
}

func (r *Provider) do(ctx context.Context, call func() error) error {
    attempts := r.MaxAttempts
    if attempts < 1 {
        attempts = 1
    }
    var err error
    for attempt := 0; attempt < attempts; attempt++ {
        if attempt > 0 {
            t := time.NewTimer(r.backoff(attempt - 1))
            select {
            case <-ctx.Done():
                t.Stop()
                return ctx.Err()
            case <-t.C:
            }
        }
        err = call()
        if err == nil || !provider.Retryable(err) {
            return err
        }
    }
    return err
}

// backoff returns base * 2^n capped at MaxDelay.
func (r *Provider) backoff(n int) time.Duration {
    base := r.BaseDelay
    if base <= 0 {
        base = defaultBaseDelay
    }
    max := r.MaxDelay
    if max <= 0 {
        max = defaultMaxDelay
    }
    if n > 30 {
        return max
    }
    d := base * time.Duration(1<<n)
    if d > max {
        return max
    }
    return d
}
