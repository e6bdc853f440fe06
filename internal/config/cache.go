package config

import (
    "strings"
    "time"
)

// CacheConfig controls the Redis cache in front of the tenant listing.
// Entries are per user and live for TTL.  Every property mutation drops the
// whole Prefix namespace.  Responses larger than MaxBodyBytes are served but
// not stored.
type CacheConfig struct {
    Enabled      bool
    Methods      map[string]bool
    TTL          time.Duration
    KeyStrategy  string // route, method_route, method_route_query or route_query
    Prefix       string
    MaxBodyBytes int
}

func LoadCacheConfig() CacheConfig {
    cfg := CacheConfig{
        Enabled:      envBool("CACHE_ENABLED", true),
        Methods:      parseMethods(getenv("CACHE_METHODS", "GET")),
        TTL:          envDur("CACHE_TTL", 30*time.Second),
        KeyStrategy:  strings.ToLower(getenv("CACHE_KEY_STRATEGY", "route_query")),
        Prefix:       getenv("CACHE_PREFIX", "rc:cache"),
        MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 1<<20),
    }
    // Listing filters live in the query string.
    if cfg.KeyStrategy == "route" {
        cfg.KeyStrategy = "route_query"
    }
    if cfg.TTL <= 0 {
        cfg.Enabled = false
    }
    return cfg
}

func parseMethods(s string) map[string]bool {
    m := map[string]bool{}
    for _, p := range splitList(strings.ToUpper(s)) {
        m[p] = true
    }
    return m
}
