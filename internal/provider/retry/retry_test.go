package retry_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cryptotools/internal/provider"
	"cryptotools/internal/provider/retry"
)

// flakyProvider fails the first failures calls, then succeeds.
type flakyProvider struct {
	failures int
	err      error
	calls    int
}

func (p *flakyProvider) Name() string { return "flaky" }

func (p *flakyProvider) GetPrice(ctx context.Context, coinID string, currencies []string) (provider.Quote, error) {
	p.calls++
	if p.calls <= p.failures {
		return provider.Quote{}, p.err
	}
	return provider.Quote{CoinID: coinID, Prices: map[string]float64{"usd": 1}, FetchedAt: time.Now()}, nil
}

func (p *flakyProvider) ListCoins(ctx context.Context) ([]provider.Coin, error) {
	p.calls++
	if p.calls <= p.failures {
		return nil, p.err
	}
	return []provider.Coin{{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"}}, nil
}

func TestGetPrice_RetriesTransientFailures(t *testing.T) {
	t.Parallel()

	p := &flakyProvider{failures: 2, err: provider.Errorf(provider.KindUnavailable, "timeout")}
	r := &retry.Provider{P: p, MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	q, err := r.GetPrice(t.Context(), "bitcoin", []string{"usd"})
	require.NoError(t, err)
	require.Equal(t, 3, p.calls)
	require.Equal(t, 1.0, q.Prices["usd"])
}

func TestGetPrice_GivesUpAfterBudget(t *testing.T) {
	t.Parallel()

	p := &flakyProvider{failures: 10, err: provider.Errorf(provider.KindRateLimited, "429")}
	r := &retry.Provider{P: p, MaxAttempts: 3, BaseDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}

	_, err := r.GetPrice(t.Context(), "bitcoin", []string{"usd"})
	require.Error(t, err)
	require.True(t, provider.IsKind(err, provider.KindRateLimited), "the final error kind must surface")
	require.Equal(t, 3, p.calls)
}

func TestGetPrice_NoRetryOnNotFound(t *testing.T) {
	t.Parallel()

	p := &flakyProvider{failures: 10, err: provider.Errorf(provider.KindNotFound, "unknown coin")}
	r := &retry.Provider{P: p, MaxAttempts: 5, BaseDelay: time.Millisecond}

	_, err := r.GetPrice(t.Context(), "nope", []string{"usd"})
	require.True(t, provider.IsKind(err, provider.KindNotFound))
	require.Equal(t, 1, p.calls, "NotFound must never be retried")
}

func TestGetPrice_NoRetryOnInvalidInput(t *testing.T) {
	t.Parallel()

	p := &flakyProvider{failures: 10, err: provider.Errorf(provider.KindInvalidInput, "bad args")}
	r := &retry.Provider{P: p, MaxAttempts: 5, BaseDelay: time.Millisecond}

	_, err := r.GetPrice(t.Context(), "bitcoin", nil)
	require.True(t, provider.IsKind(err, provider.KindInvalidInput))
	require.Equal(t, 1, p.calls)
}

func TestGetPrice_ContextCancelStopsBackoff(t *testing.T) {
	t.Parallel()

	p := &flakyProvider{failures: 10, err: provider.Errorf(provider.KindUnavailable, "down")}
	r := &retry.Provider{P: p, MaxAttempts: 5, BaseDelay: time.Hour}

	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()

	_, err := r.GetPrice(ctx, "bitcoin", []string{"usd"})
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, 1, p.calls)
}

func TestListCoins_Retries(t *testing.T) {
	t.Parallel()

	p := &flakyProvider{failures: 1, err: provider.Errorf(provider.KindUnavailable, "down")}
	r := &retry.Provider{P: p, MaxAttempts: 2, BaseDelay: time.Millisecond}

	coins, err := r.ListCoins(t.Context())
	require.NoError(t, err)
	require.Len(t, coins, 1)
	require.Equal(t, 2, p.calls)
}
