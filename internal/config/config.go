// Package config loads typed runtime configuration via viper layered over
// a local .env file (github.com/joho/godotenv) and environment variables.
package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the collection engine's runtime tunables: API credentials,
// output and checkpoint locations, the run deadline, circuit-breaker
// settings, and extraction concurrency. Per-source budgets, rate limits and
// character limits are not part of it; they are fixed in the sourceadapter
// package's per-source Config values. Every field here is overridable via
// environment variable or .env so the daily automation can tune without a
// rebuild.
type Config struct {
	Sources    Sources    `mapstructure:"sources"`
	Run        Run        `mapstructure:"run"`
	Breaker    Breaker    `mapstructure:"breaker"`
	Extraction Extraction `mapstructure:"extraction"`
}

// Sources carries the API credentials for each upstream provider. An empty
// key normalizes to "unset" (spec.md §6) and degrades that adapter to an
// always-empty source.
type Sources struct {
	GoogleAPIKey   string `mapstructure:"google_api_key"`
	GoogleSearchID string `mapstructure:"google_search_id"`
	NewsdataAPIKey string `mapstructure:"newsdata_api_key"`
	GNewsAPIKey    string `mapstructure:"gnews_api_key"`
}

// Run carries the per-run operational knobs.
type Run struct {
	OutputRoot     string        `mapstructure:"output_root"`
	CheckpointPath string        `mapstructure:"checkpoint_path"`
	Deadline       time.Duration `mapstructure:"deadline"`
}

// Breaker carries the circuit breaker defaults (spec.md §4.3).
type Breaker struct {
	FailureThreshold int           `mapstructure:"failure_threshold"`
	ResetTimeout     time.Duration `mapstructure:"reset_timeout"`
}

// Extraction carries the article extractor's bounded-concurrency knob
// (spec.md §4.7).
type Extraction struct {
	MaxConcurrent int `mapstructure:"max_concurrent"`
}

// normalizeKey maps an env var's empty value to "unset", per spec.md §6.
func normalizeKey(v string) string {
	if strings.TrimSpace(v) == "" {
		return ""
	}
	return v
}

// Load reads .env (if present, ignored if absent), binds environment
// variables with HEATNEWS_ prefix and "_"-separated nesting, layers in the
// spec.md §6 defaults, and unmarshals into a typed Config.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetEnvPrefix("HEATNEWS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("sources.google_api_key", "")
	v.SetDefault("sources.google_search_id", "")
	v.SetDefault("sources.newsdata_api_key", "")
	v.SetDefault("sources.gnews_api_key", "")

	v.SetDefault("run.output_root", "output")
	v.SetDefault("run.checkpoint_path", "output/.checkpoint.json")
	v.SetDefault("run.deadline", 45*time.Minute)

	v.SetDefault("breaker.failure_threshold", 5)
	v.SetDefault("breaker.reset_timeout", 60*time.Second)

	v.SetDefault("extraction.max_concurrent", 10)

	// NEWSDATA_API_KEY / GNEWS_API_KEY are read both in their bare upstream
	// form (as spec.md §6 names them, for drop-in .env compatibility) and
	// under the HEATNEWS_ prefix.
	bindBareEnv(v, "sources.newsdata_api_key", "NEWSDATA_API_KEY")
	bindBareEnv(v, "sources.gnews_api_key", "GNEWS_API_KEY")
	bindBareEnv(v, "sources.google_api_key", "GOOGLE_API_KEY")
	bindBareEnv(v, "sources.google_search_id", "GOOGLE_SEARCH_ID")

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	cfg.Sources.NewsdataAPIKey = normalizeKey(cfg.Sources.NewsdataAPIKey)
	cfg.Sources.GNewsAPIKey = normalizeKey(cfg.Sources.GNewsAPIKey)
	cfg.Sources.GoogleAPIKey = normalizeKey(cfg.Sources.GoogleAPIKey)
	cfg.Sources.GoogleSearchID = normalizeKey(cfg.Sources.GoogleSearchID)

	return cfg, nil
}

func bindBareEnv(v *viper.Viper, key, envVar string) {
	_ = v.BindEnv(key, envVar)
}
