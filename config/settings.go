package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var (
	locOnce sync.Once
	appLoc  *time.Location
)

// Location is the zone every period key and transaction date is derived in.
//
// Set via env (defaults to the server's local zone):
// - APP_TIMEZONE=Asia/Jakarta
func Location() *time.Location {
	locOnce.Do(func() {
		name := strings.TrimSpace(os.Getenv("APP_TIMEZONE"))
		if name == "" {
			appLoc = time.Local
			return
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			log.Printf("unknown APP_TIMEZONE %q, falling back to UTC: %v", name, err)
			loc = time.UTC
		}
		appLoc = loc
	})
	return appLoc
}

// SkipMigrations is set on deployments where the schema is managed out of band.
func SkipMigrations() bool {
	return boolFromEnv("SKIP_MIGRATIONS")
}

// RateLimit returns whether limiting is on and its budget: requests per window per client IP.
//
// Set via env:
// - RATE_LIMIT_ENABLED=true
// - RATE_LIMIT_MAX_REQUESTS (default 600)
// - RATE_LIMIT_WINDOW_SECONDS (default 60)
func RateLimit() (bool, int64, time.Duration) {
	limit := intFromEnv("RATE_LIMIT_MAX_REQUESTS", 600)
	if limit <= 0 {
		limit = 600
	}
	windowSec := intFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)
	if windowSec <= 0 {
		windowSec = 60
	}
	return boolFromEnv("RATE_LIMIT_ENABLED"), int64(limit), time.Duration(windowSec) * time.Second
}

// ExportBucket names the GCS bucket used by the period export tool. Empty means local file only.
func ExportBucket() string {
	return strings.TrimSpace(os.Getenv("EXPORT_BUCKET"))
}

func boolFromEnv(key string) bool {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

func intFromEnv(key string, def int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return v
}
