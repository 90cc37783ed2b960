package cache

import (
    "container/list"
    "context"
    "sort"
    "strings"
    "sync"
    "time"

    "golang.org/x/sync/singleflight"

    "cryptotools/internal/provider"
)

// entry stores one cached quote with expiry. Entries live in the LRU list;
// the front of the list is the most recently used.
type entry struct {
    key       string
    expiresAt time.Time
    quote     provider.Quote
}

// Cache memoizes GetPrice results per (coin id, sorted currency set) for a
// TTL, bounded by an LRU capacity. Concurrent misses for the same key are
// coalesced into a single provider call; every waiter observes the same
// Quote. A provider failure never poisons a slot: either a stale entry
// within StaleTolerance is served, or the error propagates and nothing is
// written.
type Cache struct {
    P          provider.Provider
    TTL        time.Duration
    MaxEntries int
    // StaleTolerance extends how long an expired entry may still be served
    // when a refresh fails. Zero disables stale serving.
    StaleTolerance time.Duration
    // FetchTimeout bounds each provider call. The fetch is detached from
    // any single waiter's context so one caller abandoning the request does
    // not abort the flight other waiters depend on.
    FetchTimeout time.Duration

    mu      sync.Mutex
    entries map[string]*list.Element
    lru     *list.List
    sf      singleflight.Group
}

const defaultFetchTimeout = 10 * time.Second

// GetOrFetch returns a cached quote for the key when valid, otherwise
// fetches through the underlying provider.
func (c *Cache) GetOrFetch(ctx context.Context, coinID string, currencies []string) (provider.Quote, error) {
    coinID = strings.TrimSpace(coinID)
    if coinID == "" {
        return provider.Quote{}, provider.Errorf(provider.KindInvalidInput, "coin id cannot be empty")
    }
    normalized := normalizeCurrencies(currencies)
    if len(normalized) == 0 {
        return provider.Quote{}, provider.Errorf(provider.KindInvalidInput, "currencies cannot be empty")
    }
    key := coinID + "|" + strings.Join(normalized, ",")

    if q, ok := c.lookup(key, time.Now()); ok {
        return q, nil
    }

    ch := c.sf.DoChan(key, func() (any, error) {
        // Re-check under flight: another waiter may have refreshed the key
        // between our miss and this call.
        if q, ok := c.lookup(key, time.Now()); ok {
            return q, nil
        }

        timeout := c.FetchTimeout
        if timeout <= 0 {
            timeout = defaultFetchTimeout
        }
        fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
        defer cancel()

        q, err := c.P.GetPrice(fetchCtx, coinID, normalized)
        if err != nil {
            if stale, ok := c.lookupStale(key, time.Now()); ok {
                return stale, nil
            }
            return provider.Quote{}, err
        }
        c.store(key, q)
        return q, nil
    })

    select {
    case <-ctx.Done():
        return provider.Quote{}, ctx.Err()
    case res := <-ch:
        if res.Err != nil {
            return provider.Quote{}, res.Err
        }
        return res.Val.(provider.Quote), nil
    }
}

// lookup returns a valid entry and promotes it in the LRU order.
func (c *Cache) lookup(key string, now time.Time) (provider.Quote, bool) {
    c.mu.Lock()
    defer c.mu.Unlock()
    el, ok := c.entries[key]
    if !ok {
        return provider.Quote{}, false
    }
    e := el.Value.(*entry)
    if !now.Before(e.expiresAt) {
        return provider.Quote{}, false
    }
    c.lru.MoveToFront(el)
    return e.quote, true
}

// lookupStale returns an expired entry still within the stale tolerance.
func (c *Cache) lookupStale(key string, now time.Time) (provider.Quote, bool) {
    if c.StaleTolerance <= 0 {
        return provider.Quote{}, false
    }
    c.mu.Lock()
    defer c.mu.Unlock()
    el, ok := c.entries[key]
    if !ok {
        return provider.Quote{}, false
    }
    e := el.Value.(*entry)
    if now.After(e.expiresAt.Add(c.StaleTolerance)) {
        return provider.Quote{}, false
    }
    return e.quote, true
}

// store replaces the entry for key atomically and evicts the least
// recently used entries beyond MaxEntries.
func (c *Cache) store(key string, q provider.Quote) {
    c.mu.Lock()
    defer c.mu.Unlock()
    if c.entries == nil {
        c.entries = make(map[string]*list.Element)
        c.lru = list.New()
    }
    if el, ok := c.entries[key]; ok {
        e := el.Value.(*entry)
        e.quote = q
        e.expiresAt = time.Now().Add(c.TTL)
        c.lru.MoveToFront(el)
        return
    }
    el := c.lru.PushFront(&entry{key: key, quote: q, expiresAt: time.Now().Add(c.TTL)})
    c.entries[key] = el
    if c.MaxEntries > 0 {
        for len(c.entries) > c.MaxEntries {
            back := c.lru.Back()
            if back == nil {
                break
            }
            c.lru.Remove(back)
            delete(c.entries, back.Value.(*entry).key)
        }
    }
}

// normalizeCurrencies lower-cases, de-duplicates and sorts so equal sets
// always hit the same cache key.
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
    sort.Strings(out)
    return out
}
