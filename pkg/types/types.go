package types

import (
	"fmt"
	"time"
)

// Driver names understood by the driver registry.
const (
	DriverPgx    = "pgx"
	DriverPq     = "pq"
	DriverMySQL  = "mysql"
	DriverSQLite = "sqlite"
	DriverDuckDB = "duckdb"
)

// Params holds the parameters used to open a database connection.
// When URL is set, the values parsed from it take precedence over the
// individual fields.
type Params struct {
	Driver          string
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	Path            string // database file for sqlite and duckdb
	Memory          bool   // in-memory database for sqlite and duckdb
	Charset         string
	SSLMode         string
	ApplicationName string
	Options         map[string]string // driver specific options
}

// IsFileBased reports whether the driver addresses a local file rather than a server.
func (p Params) IsFileBased() bool {
	return p.Driver == DriverSQLite || p.Driver == DriverDuckDB
}

// Address returns host:port, or the file path for file based drivers.
func (p Params) Address() string {
	if p.IsFileBased() {
		if p.Memory {
			return ":memory:"
		}
		return p.Path
	}
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

// Resolve merges the parameters parsed from URL into p.
func (p Params) Resolve() (Params, error) {
	if p.URL == "" {
		return p, nil
	}
	parsed, err := ParseURL(p.URL)
	if err != nil {
		return p, err
	}

	merged := p
	merged.URL = ""
	merged.Driver = parsed.Driver
	if parsed.Host != "" {
		merged.Host = parsed.Host
	}
	if parsed.Port != 0 {
		merged.Port = parsed.Port
	}
	if parsed.User != "" {
		merged.User = parsed.User
	}
	if parsed.Password != "" {
		merged.Password = parsed.Password
	}
	if parsed.DBName != "" {
		merged.DBName = parsed.DBName
	}
	if parsed.Path != "" {
		merged.Path = parsed.Path
	}
	if parsed.Memory {
		merged.Memory = true
		merged.Path = ""
	}
	if parsed.Charset != "" {
		merged.Charset = parsed.Charset
	}
	if parsed.SSLMode != "" {
		merged.SSLMode = parsed.SSLMode
	}
	if parsed.ApplicationName != "" {
		merged.ApplicationName = parsed.ApplicationName
	}
	if len(parsed.Options) > 0 {
		opts := make(map[string]string, len(p.Options)+len(parsed.Options))
		for k, v := range p.Options {
			opts[k] = v
		}
		for k, v := range parsed.Options {
			opts[k] = v
		}
		merged.Options = opts
	}
	return merged, nil
}

// Config holds runtime configuration combining flags, environment variables, and defaults
type Config struct {
	Params Params

	// Execution
	Timeout time.Duration // Per-command timeout

	// Output
	Format  string // Result format: json, table or csv
	Verbose bool   // Enable debug logging

	// Result cache
	ResultCacheDir string        // Directory of the file result cache; empty disables it
	ResultCacheTTL time.Duration // Lifetime of cached results
}

// ConfigError describes an invalid configuration value
type ConfigError struct {
	Field   string
	Value   any
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

var validFormats = map[string]bool{"json": true, "table": true, "csv": true}

// Validate checks the configuration for consistency. The connection URL,
// if any, is merged into Params first.
func (c *Config) Validate() error {
	params, err := c.Params.Resolve()
	if err != nil {
		return &ConfigError{Field: "connection", Value: c.Params.URL, Message: err.Error()}
	}
	c.Params = params

	switch c.Params.Driver {
	case "":
		return &ConfigError{Field: "driver", Message: "no driver configured; set --connection or DBAL_DRIVER"}
	case DriverSQLite, DriverDuckDB:
		if c.Params.Path == "" && !c.Params.Memory {
			return &ConfigError{Field: "path", Message: "file based drivers need a database path or :memory:"}
		}
	default:
		if c.Params.Host == "" {
			return &ConfigError{Field: "host", Message: "must not be empty"}
		}
		if c.Params.Port <= 0 || c.Params.Port > 65535 {
			return &ConfigError{Field: "port", Value: c.Params.Port, Message: "must be between 1 and 65535"}
		}
	}

	if c.Timeout <= 0 {
		return &ConfigError{Field: "timeout", Value: c.Timeout, Message: "must be positive"}
	}
	if !validFormats[c.Format] {
		return &ConfigError{Field: "format", Value: c.Format, Message: "must be one of json, table, csv"}
	}
	if c.ResultCacheTTL < 0 {
		return &ConfigError{Field: "result-cache-ttl", Value: c.ResultCacheTTL, Message: "must not be negative"}
	}
	return nil
}
