package config

// Source values recorded in ServerConfiguration.Sources.
const (
	SourceDefault = "default"
	SourceFile    = "file"
	SourceEnv     = "env"
	SourceFlag    = "flag"
)

// Defaults.
const (
	DefaultPort        = 3000
	DefaultHost        = "0.0.0.0"
	DefaultPrefix      = "/api"
	DefaultMaxBodySize = 1 << 20
	DefaultTimeout     = 30
	DefaultLogEntries  = 1000
)

// LogConfig configures the operational logger.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `json:"level,omitempty" yaml:"level,omitempty"`
	// Format is text or json.
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
	// File, when set, receives a JSON copy of every log line.
	File string `json:"file,omitempty" yaml:"file,omitempty"`
	// Requests enables one access-log line per request.
	Requests bool `json:"requests" yaml:"requests"`
}

// CORSConfig configures the headers added to every response.
type CORSConfig struct {
	Enabled      bool     `json:"enabled" yaml:"enabled"`
	AllowOrigins []string `json:"allowOrigins,omitempty" yaml:"allowOrigins,omitempty"`
	AllowMethods []string `json:"allowMethods,omitempty" yaml:"allowMethods,omitempty"`
	AllowHeaders []string `json:"allowHeaders,omitempty" yaml:"allowHeaders,omitempty"`
	// MaxAge is the preflight cache duration in seconds; 0 omits the header.
	MaxAge int `json:"maxAge,omitempty" yaml:"maxAge,omitempty"`
}

// RateLimitConfig configures per-client rate limiting. Disabled by default.
type RateLimitConfig struct {
	Enabled           bool     `json:"enabled" yaml:"enabled"`
	RequestsPerSecond float64  `json:"requestsPerSecond,omitempty" yaml:"requestsPerSecond,omitempty"`
	BurstSize         int      `json:"burstSize,omitempty" yaml:"burstSize,omitempty"`
	TrustedProxies    []string `json:"trustedProxies,omitempty" yaml:"trustedProxies,omitempty"`
}

// ServerConfiguration holds every runtime setting of the mock server.
type ServerConfiguration struct {
	Port int    `json:"port" yaml:"port"`
	Host string `json:"host" yaml:"host"`
	// Prefix is prepended to every resource route; "" serves them at the root.
	Prefix string `json:"prefix" yaml:"prefix"`
	// PrettyJSON indents response bodies with two spaces.
	PrettyJSON bool `json:"prettyJSON" yaml:"prettyJSON"`
	// MaxBodySize is the largest accepted request body in bytes.
	MaxBodySize int64 `json:"maxBodySize,omitempty" yaml:"maxBodySize,omitempty"`
	// ReadTimeout, WriteTimeout and ShutdownTimeout are in seconds.
	ReadTimeout     int `json:"readTimeout,omitempty" yaml:"readTimeout,omitempty"`
	WriteTimeout    int `json:"writeTimeout,omitempty" yaml:"writeTimeout,omitempty"`
	ShutdownTimeout int `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`
	// FixturesDir overrides embedded fixtures with <resource>.json files.
	FixturesDir string `json:"fixturesDir,omitempty" yaml:"fixturesDir,omitempty"`
	// Admin enables the /__admin endpoints.
	Admin bool `json:"admin" yaml:"admin"`
	// MaxLogEntries is how many requests /__admin/requests keeps; 0 turns
	// the request journal off.
	MaxLogEntries int `json:"maxLogEntries" yaml:"maxLogEntries"`

	Log       LogConfig        `json:"log" yaml:"log"`
	CORS      *CORSConfig      `json:"cors,omitempty" yaml:"cors,omitempty"`
	RateLimit *RateLimitConfig `json:"rateLimit,omitempty" yaml:"rateLimit,omitempty"`

	// ConfigFile is the file the configuration was loaded from, if any.
	ConfigFile string `json:"-" yaml:"-"`
	// Sources maps a top-level key to where its value came from.
	Sources map[string]string `json:"-" yaml:"-"`
}

// DefaultServerConfiguration returns the built-in defaults.
func DefaultServerConfiguration() *ServerConfiguration {
	return &ServerConfiguration{
		Port:            DefaultPort,
		Host:            DefaultHost,
		Prefix:          DefaultPrefix,
		PrettyJSON:      true,
		MaxBodySize:     DefaultMaxBodySize,
		ReadTimeout:     DefaultTimeout,
		WriteTimeout:    DefaultTimeout,
		ShutdownTimeout: 10,
		Admin:           true,
		MaxLogEntries:   DefaultLogEntries,
		Log: LogConfig{
			Level:    "info",
			Format:   "text",
			Requests: true,
		},
		CORS:    DefaultCORSConfig(),
		Sources: make(map[string]string),
	}
}

// DefaultCORSConfig allows any origin with the methods and headers the API
// accepts.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		Enabled:      true,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
	}
}

// Source reports where key's value came from.
func (c *ServerConfiguration) Source(key string) string {
	if s, ok := c.Sources[key]; ok {
		return s
	}
	return SourceDefault
}

// SetSource records where key's value came from.
func (c *ServerConfiguration) SetSource(key, source string) {
	if c.Sources == nil {
		c.Sources = make(map[string]string)
	}
	c.Sources[key] = source
}
