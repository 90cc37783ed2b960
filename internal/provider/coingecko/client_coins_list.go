package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"

	"cryptotools/internal/provider"
)

// CoinsList retrieves the full coin catalog (id, symbol, name) in catalog
// order. The list is large (>10k entries); callers are expected to snapshot
// it rather than re-fetch per query.
func (c *Client) CoinsList(ctx context.Context, opts ...ClientOption) ([]provider.Coin, error) {
	var override = &Client{
		baseURL:    c.baseURL,
		httpClient: c.httpClient,
		header:     c.header.Clone(),
		query:      c.query,
	}
	for _, opt := range opts {
		opt(override)
	}

	query := maps.Clone(override.query)

	url := fmt.Sprintf("%s/coins/list?%s", override.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, provider.Wrap(provider.KindInvalidInput, err, "creating request")
	}
	req.Header = override.header

	res, err := override.httpClient.Do(req)
	if err != nil {
		return nil, provider.Wrap(provider.KindUnavailable, err, "performing request")
	}
	defer res.Body.Close()

	if err := classifyStatus(res.StatusCode); err != nil {
		return nil, err
	}

	var coins []provider.Coin
	dec := json.NewDecoder(res.Body)
	if err := dec.Decode(&coins); err != nil {
		return nil, provider.Wrap(provider.KindUnavailable, err, "decoding coins list")
	}
	return coins, nil
}
