// Package config reads service configuration from the environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr     string
	LogLevel string

	// SnapshotSource is a local path or http(s) URL for the unified
	// facility snapshot.
	SnapshotSource string

	// ProvinceDir holds the pre-gzipped per-province files.
	ProvinceDir string

	// CityRegistryPath overrides the embedded city layer registry.
	CityRegistryPath string

	// LayerStore selects "memory" (default) or "redis".
	LayerStore        string
	RedisAddr         string
	LayerFetchTimeout time.Duration

	MemoSize int
	MemoTTL  time.Duration
}

func FromEnv() Config {
	return Config{
		Addr:     getenv("ADDR", ":8080"),
		LogLevel: getenv("LOG_LEVEL", "info"),

		SnapshotSource: getenv("PARKING_SNAPSHOT", "data/parking_nl.json"),
		ProvinceDir:    getenv("PROVINCE_DIR", "data/provinces"),

		CityRegistryPath: getenv("CITY_REGISTRY", ""),

		LayerStore:        strings.ToLower(getenv("LAYER_STORE", "memory")),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		LayerFetchTimeout: getduration("LAYER_FETCH_TIMEOUT", 30*time.Second),

		MemoSize: getint("FILTER_MEMO_SIZE", 256),
		MemoTTL:  getduration("FILTER_MEMO_TTL", 5*time.Minute),
	}
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
