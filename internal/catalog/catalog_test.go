package catalog_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cryptotools/internal/catalog"
	"cryptotools/internal/provider"
)

type listerFunc func(ctx context.Context) ([]provider.Coin, error)

func (f listerFunc) ListCoins(ctx context.Context) ([]provider.Coin, error) { return f(ctx) }

func fixedLister(coins []provider.Coin) listerFunc {
	return func(context.Context) ([]provider.Coin, error) { return coins, nil }
}

func testCoins() []provider.Coin {
	return []provider.Coin{
		{ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
		{ID: "cardano", Symbol: "ada", Name: "Cardano"},
		{ID: "adacash", Symbol: "adacash", Name: "ADACash"},
		{ID: "ethereum", Symbol: "eth", Name: "Ethereum"},
		{ID: "adadao", Symbol: "adao", Name: "ADADao"},
	}
}

func TestSearch_ExactSymbolFirst(t *testing.T) {
	t.Parallel()

	c := &catalog.Catalog{Source: fixedLister(testCoins()), TTL: time.Minute}

	// "ada" matches Cardano's symbol exactly and ADACash/ADADao only by
	// prefix; the exact symbol must rank first.
	got, err := c.Search(t.Context(), "ada")
	require.NoError(t, err)
	require.NotEmpty(t, got)
	require.Equal(t, "cardano", got[0].ID, "exact symbol match must rank first")
}

func TestSearch_RankOrder(t *testing.T) {
	t.Parallel()

	coins := []provider.Coin{
		{ID: "c1", Symbol: "xada", Name: "Wrapped ADA"},  // substring
		{ID: "c2", Symbol: "adax", Name: "ADAX Protocol"}, // prefix
		{ID: "c3", Symbol: "btc", Name: "ada"},            // exact name
		{ID: "c4", Symbol: "ada", Name: "Cardano"},        // exact symbol
	}
	c := &catalog.Catalog{Source: fixedLister(coins), TTL: time.Minute}

	got, err := c.Search(t.Context(), "ADA")
	require.NoError(t, err)
	require.Len(t, got, 4)
	require.Equal(t, "c4", got[0].ID)
	require.Equal(t, "c3", got[1].ID)
	require.Equal(t, "c2", got[2].ID)
	require.Equal(t, "c1", got[3].ID)
}

func TestSearch_TiesKeepCatalogOrder(t *testing.T) {
	t.Parallel()

	coins := []provider.Coin{
		{ID: "first", Symbol: "adax", Name: "First"},
		{ID: "second", Symbol: "aday", Name: "Second"},
	}
	c := &catalog.Catalog{Source: fixedLister(coins), TTL: time.Minute}

	got, err := c.Search(t.Context(), "ada")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "first", got[0].ID)
	require.Equal(t, "second", got[1].ID)
}

func TestSearch_EmptyQuery(t *testing.T) {
	t.Parallel()

	calls := 0
	c := &catalog.Catalog{
		Source: listerFunc(func(context.Context) ([]provider.Coin, error) {
			calls++
			return testCoins(), nil
		}),
		TTL: time.Minute,
	}

	got, err := c.Search(t.Context(), "   ")
	require.NoError(t, err)
	require.Empty(t, got)
	require.Zero(t, calls, "blank queries must not touch upstream")
}

func TestSearch_SnapshotReused(t *testing.T) {
	t.Parallel()

	calls := 0
	c := &catalog.Catalog{
		Source: listerFunc(func(context.Context) ([]provider.Coin, error) {
			calls++
			return testCoins(), nil
		}),
		TTL: time.Minute,
	}

	for i := 0; i < 5; i++ {
		_, err := c.Search(t.Context(), "btc")
		require.NoError(t, err)
	}
	require.Equal(t, 1, calls, "searches within TTL must share one snapshot")
}

func TestSearch_StaleSnapshotOnError(t *testing.T) {
	t.Parallel()

	calls := 0
	c := &catalog.Catalog{
		Source: listerFunc(func(context.Context) ([]provider.Coin, error) {
			calls++
			if calls > 1 {
				return nil, provider.Errorf(provider.KindUnavailable, "down")
			}
			return testCoins(), nil
		}),
		TTL: 30 * time.Millisecond,
	}

	_, err := c.Search(t.Context(), "btc")
	require.NoError(t, err)

	time.Sleep(50 * time.Millisecond)

	got, err := c.Search(t.Context(), "btc")
	require.NoError(t, err, "a stale snapshot beats failing the search")
	require.NotEmpty(t, got)
}

func TestSearch_MaxResults(t *testing.T) {
	t.Parallel()

	c := &catalog.Catalog{Source: fixedLister(testCoins()), TTL: time.Minute, MaxResults: 1}

	got, err := c.Search(t.Context(), "ada")
	require.NoError(t, err)
	require.Len(t, got, 1)
}
