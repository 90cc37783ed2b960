package provider_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"cryptotools/internal/provider"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	err := provider.Errorf(provider.KindNotFound, "unknown coin %q", "x")
	require.Equal(t, provider.KindNotFound, provider.KindOf(err))
	require.True(t, provider.IsKind(err, provider.KindNotFound))
	require.False(t, provider.IsKind(err, provider.KindRateLimited))

	// Wrapping with %w keeps the kind visible.
	wrapped := fmt.Errorf("lookup: %w", err)
	require.Equal(t, provider.KindNotFound, provider.KindOf(wrapped))

	// Unclassified errors count as unavailable.
	require.Equal(t, provider.KindUnavailable, provider.KindOf(errors.New("boom")))
}

func TestWrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := errors.New("connection refused")
	err := provider.Wrap(provider.KindUnavailable, cause, "performing request")
	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "performing request")
	require.Contains(t, err.Error(), "connection refused")
}

func TestRetryable(t *testing.T) {
	t.Parallel()

	require.True(t, provider.Retryable(provider.Errorf(provider.KindRateLimited, "429")))
	require.True(t, provider.Retryable(provider.Errorf(provider.KindUnavailable, "502")))
	require.False(t, provider.Retryable(provider.Errorf(provider.KindNotFound, "missing")))
	require.False(t, provider.Retryable(provider.Errorf(provider.KindInvalidInput, "bad")))
}
