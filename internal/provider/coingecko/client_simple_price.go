package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"net/http"
	"strings"

	"cryptotools/internal/provider"
)

// SimplePrice retrieves spot prices for the given coin ids in the given
// vs-currencies. The result maps coin id -> currency -> price. Coin ids
// unknown to CoinGecko are absent from the result; so are unknown currencies.
func (c *Client) SimplePrice(ctx context.Context, ids []string, currencies []string, opts ...ClientOption) (map[string]map[string]float64, error) {
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
	query.Add("ids", strings.Join(ids, ","))
	query.Add("vs_currencies", strings.Join(currencies, ","))

	url := fmt.Sprintf("%s/simple/price?%s", override.baseURL, query.Encode())
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

	var body map[string]map[string]float64
	dec := json.NewDecoder(res.Body)
	if err := dec.Decode(&body); err != nil {
		return nil, provider.Wrap(provider.KindUnavailable, err, "decoding price response")
	}
	return body, nil
}

// classifyStatus maps an HTTP status to a classified error, or nil for 2xx.
func classifyStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil

	case code == http.StatusNotFound:
		return provider.Errorf(provider.KindNotFound, "coin not found")

	case code == http.StatusTooManyRequests:
		return provider.Errorf(provider.KindRateLimited, "rate limited")

	case code == http.StatusBadRequest:
		return provider.Errorf(provider.KindInvalidInput, "bad request")

	default:
		return provider.Errorf(provider.KindUnavailable, "unexpected status code: %d", code)
	}
}
