package config

import (
	"os"
	"strconv"
)

// Environment variable names
const (
	EnvPort        = "MOCKREST_PORT"
	EnvHost        = "MOCKREST_HOST"
	EnvPrefix      = "MOCKREST_PREFIX"
	EnvConfig      = "MOCKREST_CONFIG"
	EnvFixturesDir = "MOCKREST_FIXTURES_DIR"
	EnvLogLevel    = "MOCKREST_LOG_LEVEL"
	EnvLogFormat   = "MOCKREST_LOG_FORMAT"
	EnvRateLimit   = "MOCKREST_RATE_LIMIT"
)

// LoadEnvConfig applies MOCKREST_* variables to cfg. Only variables that are
// set (and parse) change anything.
func LoadEnvConfig(cfg *ServerConfiguration) {
	if v := os.Getenv(EnvPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Port = port
			cfg.SetSource("port", SourceEnv)
		}
	}

	if v, ok := os.LookupEnv(EnvHost); ok && v != "" {
		cfg.Host = v
		cfg.SetSource("host", SourceEnv)
	}

	// an empty prefix is meaningful: serve at the root
	if v, ok := os.LookupEnv(EnvPrefix); ok {
		cfg.Prefix = v
		cfg.SetSource("prefix", SourceEnv)
	}

	if v := os.Getenv(EnvFixturesDir); v != "" {
		cfg.FixturesDir = v
		cfg.SetSource("fixturesDir", SourceEnv)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
		cfg.SetSource("log", SourceEnv)
	}

	if v := os.Getenv(EnvLogFormat); v != "" {
		cfg.Log.Format = v
		cfg.SetSource("log", SourceEnv)
	}

	// MOCKREST_RATE_LIMIT is requests per second; 0 disables limiting.
	if v := os.Getenv(EnvRateLimit); v != "" {
		if rps, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.ApplyRateLimit(rps)
			cfg.SetSource("rateLimit", SourceEnv)
		}
	}
}

// ApplyRateLimit enables limiting at rps requests per second, or disables
// it when rps <= 0.
func (c *ServerConfiguration) ApplyRateLimit(rps float64) {
	if rps <= 0 {
		if c.RateLimit != nil {
			c.RateLimit.Enabled = false
		}
		return
	}
	if c.RateLimit == nil {
		c.RateLimit = &RateLimitConfig{}
	}
	c.RateLimit.Enabled = true
	c.RateLimit.RequestsPerSecond = rps
}
