package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/getmockd/mockrest/pkg/logging"
)

// ValidationError describes one invalid configuration field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks ports, limits, the route prefix and the log settings.
// All problems are returned together.
func (c *ServerConfiguration) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)})
	}

	if c.Port < 0 || c.Port > 65535 {
		add("port", "must be between 0 and 65535, got %d", c.Port)
	}
	if c.Prefix != "" {
		if !strings.HasPrefix(c.Prefix, "/") {
			add("prefix", "must start with '/', got %q", c.Prefix)
		} else if c.Prefix != "/" && strings.HasSuffix(c.Prefix, "/") {
			add("prefix", "must not end with '/', got %q", c.Prefix)
		}
		if strings.ContainsAny(c.Prefix, "{}? ") {
			add("prefix", "must be a literal path, got %q", c.Prefix)
		}
	}
	if c.MaxBodySize < 0 {
		add("maxBodySize", "must not be negative")
	}
	if c.MaxLogEntries < 0 {
		add("maxLogEntries", "must not be negative")
	}
	if c.ReadTimeout < 0 || c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		add("timeouts", "must not be negative")
	}
	if _, err := logging.ParseLevelStrict(c.Log.Level); err != nil {
		add("log.level", "%v", err)
	}
	if _, err := logging.ParseFormatStrict(c.Log.Format); err != nil {
		add("log.format", "%v", err)
	}
	if rl := c.RateLimit; rl != nil && rl.Enabled {
		if rl.RequestsPerSecond <= 0 {
			add("rateLimit.requestsPerSecond", "must be positive when rate limiting is enabled")
		}
		if rl.BurstSize < 0 {
			add("rateLimit.burstSize", "must not be negative")
		}
	}

	return errors.Join(errs...)
}

// NormalizedPrefix returns the prefix with a leading slash and no trailing
// slash; "/" maps to "".
func (c *ServerConfiguration) NormalizedPrefix() string {
	p := strings.TrimRight(c.Prefix, "/")
	if p != "" && !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return p
}
