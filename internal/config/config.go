package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the profiler.
type Config struct {
	Logger     Logger     `mapstructure:"logger"`
	Database   Database   `mapstructure:"database"`
	Extraction Extraction `mapstructure:"extraction"`
	Classifier Classifier `mapstructure:"classifier"`
	Holdings   Holdings   `mapstructure:"holdings"`
	MarketData MarketData `mapstructure:"marketdata"`
	Metrics    Metrics    `mapstructure:"metrics"`
	Server     Server     `mapstructure:"server"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Database holds the configuration for the profile store.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Extraction holds the thresholds of the feature extraction run.
type Extraction struct {
	// MinTrades is the minimum number of valid trades a run needs before any
	// module is invoked.
	MinTrades int `mapstructure:"min_trades"`
	// MinSamples is the per-module minimum number of observations.
	MinSamples int `mapstructure:"min_samples"`
}

// Classifier points at the trained model artifact and the scorer preference table.
type Classifier struct {
	ModelPath        string `mapstructure:"model_path"`
	PreferencesPath  string `mapstructure:"preferences_path"`
	WatchPreferences bool   `mapstructure:"watch_preferences"`
}

// Holdings holds the knobs of the holdings profile scorer.
type Holdings struct {
	SpeculativeMarketCapFloor float64 `mapstructure:"speculative_market_cap_floor"`
}

// MarketData holds the configuration for the market data API and reference universe.
type MarketData struct {
	BaseURL        string  `mapstructure:"base_url"`
	ApiKey         string  `mapstructure:"apiKey"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	Concurrency    int     `mapstructure:"concurrency"`
	LookbackDays   int     `mapstructure:"lookback_days"`
	UniversePath   string  `mapstructure:"universe_path"`
}

// Metrics toggles prometheus instrumentation. When TextfilePath is set the
// registry is written there at exit in the node exporter textfile format.
type Metrics struct {
	Enabled      bool   `mapstructure:"enabled"`
	TextfilePath string `mapstructure:"textfile_path"`
}

// Server holds the configuration for the profile query server.
type Server struct {
	Port int `mapstructure:"port"`
}

// LoadConfig reads config.yml from path. Environment variables override file
// values, e.g. EXTRACTION_MIN_TRADES overrides extraction.min_trades.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		return config, fmt.Errorf("failed to read config: %w", err)
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("failed to decode config: %w", err)
	}
	err = config.Validate()
	return
}

// Default returns the configuration used when no file is present.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults only contain plain values; decoding cannot fail.
	_ = v.Unmarshal(&cfg)
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("database.dsn", "profiles.db")
	v.SetDefault("extraction.min_trades", 5)
	v.SetDefault("extraction.min_samples", 5)
	v.SetDefault("classifier.model_path", "models/gmm.json")
	v.SetDefault("classifier.preferences_path", "")
	v.SetDefault("classifier.watch_preferences", false)
	v.SetDefault("holdings.speculative_market_cap_floor", 2e9)
	v.SetDefault("marketdata.rate_limit", 5)       // requests per second
	v.SetDefault("marketdata.rate_limit_burst", 2) // burst size
	v.SetDefault("marketdata.timeout_seconds", 10)
	v.SetDefault("marketdata.concurrency", 4)
	v.SetDefault("marketdata.lookback_days", 90)
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.textfile_path", "")
	v.SetDefault("server.port", 8080)
}

// Validate rejects configurations the engine cannot run with.
func (c Config) Validate() error {
	if c.Extraction.MinTrades < 1 {
		return fmt.Errorf("extraction.min_trades must be at least 1, got %d", c.Extraction.MinTrades)
	}
	if c.Extraction.MinSamples < 1 {
		return fmt.Errorf("extraction.min_samples must be at least 1, got %d", c.Extraction.MinSamples)
	}
	if c.Holdings.SpeculativeMarketCapFloor < 0 {
		return fmt.Errorf("holdings.speculative_market_cap_floor must not be negative")
	}
	if c.MarketData.Concurrency < 1 {
		return fmt.Errorf("marketdata.concurrency must be at least 1, got %d", c.MarketData.Concurrency)
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	return nil
}
