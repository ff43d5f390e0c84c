package resource

import (
	"strconv"

	"github.com/gobuffalo/envy"
	log "github.com/sirupsen/logrus"
)

// Environment variables read by ConfigFromEnv.
const (
	EnvAssetRoot        = "DEPOT_ASSET_ROOT"
	EnvResourceLifetime = "DEPOT_RESOURCE_LIFETIME"
	EnvWorkers          = "DEPOT_WORKERS"
	EnvEventBuffer      = "DEPOT_EVENT_BUFFER"
)

// Config is used to configure a resource Manager.
type Config struct {
	// AssetRoot is the directory DirIO providers built from this
	// config read from.
	AssetRoot string

	// ResourceLifetime is how long, in seconds of Update time, an
	// unreferenced handle survives in the manager table before it
	// is dropped.
	ResourceLifetime float64

	// Workers is the number of goroutines running loads.
	Workers int

	// EventBuffer is the per-subscriber event channel capacity.
	EventBuffer int
}

// DefaultConfig returns the configuration used when nothing is set in
// the environment.
func DefaultConfig() Config {
	return Config{
		AssetRoot:        ".",
		ResourceLifetime: 60,
		Workers:          4,
		EventBuffer:      32,
	}
}

// ConfigFromEnv builds a Config from DEPOT_* environment variables,
// falling back to DefaultConfig values for anything unset or
// unparseable.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	cfg.AssetRoot = envy.Get(EnvAssetRoot, cfg.AssetRoot)
	cfg.ResourceLifetime = envFloat(EnvResourceLifetime, cfg.ResourceLifetime)
	cfg.Workers = envInt(EnvWorkers, cfg.Workers)
	cfg.EventBuffer = envInt(EnvEventBuffer, cfg.EventBuffer)
	return cfg
}

func envFloat(key string, fallback float64) float64 {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		log.Warnf("ignoring %s=%q: %v", key, raw, err)
		return fallback
	}
	return value
}

func envInt(key string, fallback int) int {
	raw := envy.Get(key, "")
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		log.Warnf("ignoring %s=%q: %v", key, raw, err)
		return fallback
	}
	return value
}
