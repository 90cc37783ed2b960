package main

import (
    "compress/gzip"
    "context"
    "encoding/json"
    "errors"
    "io"
    "log"
    "net/http"
    "os"
    "os/signal"
    "strings"
    "sync"
    "syscall"
    "time"

    "github.com/google/uuid"

    "cryptotools/internal/catalog"
    "cryptotools/internal/config"
    "cryptotools/internal/dataset"
    "cryptotools/internal/httpx"
    "cryptotools/internal/provider"
    "cryptotools/internal/provider/cache"
    "cryptotools/internal/provider/coingecko"
    "cryptotools/internal/provider/coingeckoadapter"
    "cryptotools/internal/provider/ratelimit"
    "cryptotools/internal/provider/retry"
    "cryptotools/internal/staking"
    "cryptotools/internal/tools"
)

func main() {
    cfgPath := os.Getenv("CONFIG_FILE")
    cfg, err := config.Load(cfgPath)
    if err != nil { log.Fatalf("config: %v", err) }
    port := cfg.Server.Port

    if cfg.CoinGecko.APIKey == "" {
        log.Println("warning: COINGECKO_API_KEY not set; using the anonymous public tier")
    }

    httpClient := httpx.New(time.Duration(cfg.Server.RequestTimeoutSec) * time.Second)

    gecko, err := coingecko.NewClient(
        cfg.CoinGecko.APIKey,
        coingecko.WithBaseURL(cfg.CoinGecko.BaseURL),
        coingecko.WithHTTPClient(httpClient),
    )
    if err != nil { log.Fatalf("coingecko client: %v", err) }

    var p provider.Provider = coingeckoadapter.New(coingeckoadapter.Config{Name: "CoinGecko"}, gecko)
    if cfg.CoinGecko.MaxRequestsPerMinute > 0 {
        rate := float64(cfg.CoinGecko.MaxRequestsPerMinute) / 60.0
        burst := cfg.CoinGecko.Burst
        if burst <= 0 { burst = 1 }
        p = &ratelimit.TokenBucketProvider{P: p, TB: ratelimit.NewTokenBucket(rate, burst)}
    }
    if cfg.CoinGecko.RetryMaxAttempts > 1 {
        p = &retry.Provider{P: p, MaxAttempts: cfg.CoinGecko.RetryMaxAttempts}
    }

    prices := &cache.Cache{
        P:              p,
        TTL:            time.Duration(cfg.CoinGecko.CacheTTLSeconds) * time.Second,
        MaxEntries:     cfg.CoinGecko.CacheMaxEntries,
        StaleTolerance: time.Duration(cfg.CoinGecko.StaleToleranceSeconds) * time.Second,
        FetchTimeout:   time.Duration(cfg.Server.RequestTimeoutSec) * time.Second,
    }
    coins := &catalog.Catalog{
        Source:     p,
        TTL:        time.Duration(cfg.CoinGecko.CatalogTTLSeconds) * time.Second,
        MaxResults: 25,
    }
    calculator := &staking.Calculator{Prices: prices}

    tables := make([]*dataset.Table, 0, 2)
    for _, spec := range []struct{ name, path string }{
        {"persona", cfg.Data.PersonasFile},
        {"product", cfg.Data.ProductsFile},
    } {
        if spec.path == "" { continue }
        table, err := dataset.Load(spec.name, spec.path, "id")
        if err != nil {
            log.Printf("warning: %s dataset disabled: %v", spec.name, err)
            continue
        }
        tables = append(tables, table)
    }

    registry, err := tools.NewDefaultRegistry(prices, calculator, coins, tables...)
    if err != nil { log.Fatalf("registry: %v", err) }

    srv := &http.Server{
        Addr:              ":" + port,
        Handler:           withJSONHeaders(withGzip(recoverPanic(withRequestID(limitBody(newMux(registry)))))),
        ReadHeaderTimeout: 5 * time.Second,
        ReadTimeout:       15 * time.Second,
        WriteTimeout:      20 * time.Second,
        IdleTimeout:       60 * time.Second,
    }

    go func() {
        log.Printf("server listening on :%s", port)
        if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
            log.Fatalf("server: %v", err)
        }
    }()

    // graceful shutdown
    ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
    defer stop()
    <-ctx.Done()
    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    _ = srv.Shutdown(shutdownCtx)
}

func newMux(registry *tools.Registry) *http.ServeMux {
    mux := http.NewServeMux()
    mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusOK)
        _, _ = w.Write([]byte("ok"))
    })
    mux.HandleFunc("GET /api/tools", func(w http.ResponseWriter, r *http.Request) {
        handleListTools(w, r, registry)
    })
    mux.HandleFunc("POST /api/tools/{name}", func(w http.ResponseWriter, r *http.Request) {
        handleExecuteTool(w, r, registry)
    })
    return mux
}

type toolsResponse struct {
    Tools []tools.Schema `json:"tools"`
}

func handleListTools(w http.ResponseWriter, _ *http.Request, registry *tools.Registry) {
    writeJSON(w, http.StatusOK, toolsResponse{Tools: registry.Schemas()})
}

type executeResponse struct {
    Result any `json:"result"`
}

type errorResponse struct {
    Error *provider.Error `json:"error"`
}

func handleExecuteTool(w http.ResponseWriter, r *http.Request, registry *tools.Registry) {
    name := r.PathValue("name")

    args := map[string]any{}
    if r.Body != nil && r.ContentLength != 0 {
        dec := json.NewDecoder(r.Body)
        if err := dec.Decode(&args); err != nil {
            writeError(w, provider.Errorf(provider.KindInvalidInput, "invalid JSON body"))
            return
        }
    }

    ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
    defer cancel()

    result, err := registry.Execute(ctx, name, args)
    if err != nil {
        writeError(w, err)
        return
    }
    writeJSON(w, http.StatusOK, executeResponse{Result: result})
}

// writeError maps error kinds to HTTP status and emits the structured
// {kind, message} envelope.
func writeError(w http.ResponseWriter, err error) {
    var pe *provider.Error
    if !errors.As(err, &pe) {
        pe = provider.Wrap(provider.KindUnavailable, err, "internal error")
    }
    status := http.StatusInternalServerError
    switch pe.Kind {
    case provider.KindInvalidInput:
        status = http.StatusBadRequest
    case provider.KindNotFound:
        status = http.StatusNotFound
    case provider.KindRateLimited:
        status = http.StatusTooManyRequests
    case provider.KindUnavailable:
        status = http.StatusBadGateway
    }
    writeJSON(w, status, errorResponse{Error: pe})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
    w.WriteHeader(status)
    enc := json.NewEncoder(w)
    enc.SetEscapeHTML(false)
    _ = enc.Encode(body)
}

func withJSONHeaders(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.Header().Set("Content-Type", "application/json; charset=utf-8")
        // Basic CORS for browser usage; adjust as needed.
        w.Header().Set("Access-Control-Allow-Origin", "*")
        w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
        w.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
        if r.Method == http.MethodOptions {
            w.WriteHeader(http.StatusNoContent)
            return
        }
        next.ServeHTTP(w, r)
    })
}

// withRequestID tags every request and response with an id for correlation.
func withRequestID(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        id := r.Header.Get("X-Request-Id")
        if id == "" {
            id = uuid.NewString()
        }
        w.Header().Set("X-Request-Id", id)
        next.ServeHTTP(w, r)
    })
}

// withGzip compresses response when client supports gzip.
func withGzip(next http.Handler) http.Handler {
    var gzPool = sync.Pool{New: func() any {
        // Prefer best speed to reduce CPU usage since payloads are JSON
        w, _ := gzip.NewWriterLevel(io.Discard, gzip.BestSpeed)
        return w
    }}
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if !strings.Contains(r.Header.Get("Accept-Encoding"), "gzip") {
            next.ServeHTTP(w, r)
            return
        }
        gz := gzPool.Get().(*gzip.Writer)
        gz.Reset(w)
        defer func() {
            _ = gz.Close()
            gz.Reset(io.Discard)
            gzPool.Put(gz)
        }()
        w.Header().Set("Content-Encoding", "gzip")
        w.Header().Add("Vary", "Accept-Encoding")
        gw := gzipResponseWriter{ResponseWriter: w, Writer: gz}
        next.ServeHTTP(gw, r)
    })
}

type gzipResponseWriter struct {
    http.ResponseWriter
    Writer io.Writer
}

func (g gzipResponseWriter) Write(b []byte) (int, error) {
    return g.Writer.Write(b)
}

// limitBody caps request body size to avoid memory abuse.
func limitBody(next http.Handler) http.Handler {
    const maxBody = 1 << 20 // 1MB
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if r.Method == http.MethodPost && r.Body != nil {
            r.Body = http.MaxBytesReader(w, r.Body, maxBody)
        }
        next.ServeHTTP(w, r)
    })
}

// recoverPanic protects handlers from panics.
func recoverPanic(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        defer func() {
            if rec := recover(); rec != nil {
                http.Error(w, "internal server error", http.StatusInternalServerError)
            }
        }()
        next.ServeHTTP(w, r)
    })
}
