package config

import (
    "encoding/json"
    "errors"
    "fmt"
    "os"

    "github.com/joho/godotenv"
)

type Server struct {
    Port              string `json:"port"`
    RequestTimeoutSec int    `json:"request_timeout_sec"`
}

type CoinGecko struct {
    APIKey                string `json:"api_key"`
    BaseURL               string `json:"base_url"`
    MaxRequestsPerMinute  int    `json:"max_requests_per_minute"`
    Burst                 int    `json:"burst"`
    RetryMaxAttempts      int    `json:"retry_max_attempts"`
    CacheTTLSeconds       int    `json:"cache_ttl_sec"`
    CacheMaxEntries       int    `json:"cache_max_entries"`
    StaleToleranceSeconds int    `json:"stale_tolerance_sec"`
    CatalogTTLSeconds     int    `json:"catalog_ttl_sec"`
}

type Data struct {
    PersonasFile string `json:"personas_file"`
    ProductsFile string `json:"products_file"`
}

type Config struct {
    Server    Server    `json:"server"`
    CoinGecko CoinGecko `json:"coingecko"`
    Data      Data      `json:"data"`
}

func Default() Config {
    return Config{
        Server: Server{Port: "8080", RequestTimeoutSec: 10},
        CoinGecko: CoinGecko{
            BaseURL:               "https://api.coingecko.com/api/v3",
            MaxRequestsPerMinute:  30,
            Burst:                 5,
            RetryMaxAttempts:      3,
            CacheTTLSeconds:       60,
            CacheMaxEntries:       1000,
            StaleToleranceSeconds: 0,
            CatalogTTLSeconds:     3600,
        },
        Data: Data{
            PersonasFile: "data/personas.json",
            ProductsFile: "data/products.json",
        },
    }
}

// Load reads JSON config from path. If path is empty or the file does not
// exist, it returns defaults. A .env file, if present, is loaded first;
// environment variables override select fields for secrecy.
func Load(path string) (Config, error) {
    _ = godotenv.Load()

    cfg := Default()
    if path == "" {
        if _, err := os.Stat("config.json"); err == nil {
            path = "config.json"
        }
    }
    if path != "" {
        b, err := os.ReadFile(path)
        if err != nil && !errors.Is(err, os.ErrNotExist) {
            return cfg, fmt.Errorf("read config: %w", err)
        }
        if err == nil {
            if err := json.Unmarshal(b, &cfg); err != nil {
                return cfg, fmt.Errorf("parse config: %w", err)
            }
        }
    }
    applyEnv(&cfg)
    return cfg, nil
}

func applyEnv(cfg *Config) {
    if v := os.Getenv("PORT"); v != "" { cfg.Server.Port = v }
    if v := os.Getenv("REQUEST_TIMEOUT_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.Server.RequestTimeoutSec = x }
    }
    if v := os.Getenv("COINGECKO_API_KEY"); v != "" { cfg.CoinGecko.APIKey = v }
    if v := os.Getenv("COINGECKO_BASE_URL"); v != "" { cfg.CoinGecko.BaseURL = v }
    if v := os.Getenv("COINGECKO_MAX_RPM"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.CoinGecko.MaxRequestsPerMinute = x }
    }
    if v := os.Getenv("COINGECKO_BURST"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.CoinGecko.Burst = x }
    }
    if v := os.Getenv("COINGECKO_RETRY_MAX_ATTEMPTS"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.CoinGecko.RetryMaxAttempts = x }
    }
    if v := os.Getenv("COINGECKO_CACHE_TTL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.CoinGecko.CacheTTLSeconds = x }
    }
    if v := os.Getenv("COINGECKO_CACHE_MAX_ENTRIES"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.CoinGecko.CacheMaxEntries = x }
    }
    if v := os.Getenv("COINGECKO_STALE_TOLERANCE_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x >= 0 { cfg.CoinGecko.StaleToleranceSeconds = x }
    }
    if v := os.Getenv("COINGECKO_CATALOG_TTL_SEC"); v != "" {
        var x int; fmt.Sscanf(v, "%d", &x); if x > 0 { cfg.CoinGecko.CatalogTTLSeconds = x }
    }
    if v := os.Getenv("PERSONAS_FILE"); v != "" { cfg.Data.PersonasFile = v }
    if v := os.Getenv("PRODUCTS_FILE"); v != "" { cfg.Data.ProductsFile = v }
}
