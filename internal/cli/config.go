package cli

import (
	"os"
	"strconv"
	"time"

	"github.com/cybertec-postgresql/dbal/pkg/types"
)

// Config is an alias for the shared Config type
type Config = types.Config

// ConfigError is an alias for the shared ConfigError type
type ConfigError = types.ConfigError

// DefaultConfig provides default configuration values
var DefaultConfig = Config{
	Params: types.Params{
		Host: "localhost",
	},
	Timeout:        30 * time.Second,
	Format:         "table",
	Verbose:        false,
	ResultCacheDir: "",
	ResultCacheTTL: 5 * time.Minute,
}

// defaultPorts are used when neither the URL nor the environment names a port
var defaultPorts = map[string]int{
	types.DriverPgx:   5432,
	types.DriverPq:    5432,
	types.DriverMySQL: 3306,
}

// LoadConfig builds a configuration from the defaults and environment.
//
// DBAL_URL and DBAL_DRIVER select the connection. The libpq variables
// (PGHOST, PGPORT, PGUSER, PGPASSWORD, PGDATABASE, PGSSLMODE, PGAPPNAME)
// and the MySQL client variables (MYSQL_HOST, MYSQL_TCP_PORT, MYSQL_USER,
// MYSQL_PWD, MYSQL_DATABASE) fill in the server parameters; either family
// also selects its driver when DBAL_DRIVER is unset.
func LoadConfig() *Config {
	cfg := DefaultConfig

	cfg.Params.URL = os.Getenv("DBAL_URL")
	cfg.Params.Driver = os.Getenv("DBAL_DRIVER")
	if dir := os.Getenv("DBAL_RESULT_CACHE_DIR"); dir != "" {
		cfg.ResultCacheDir = dir
	}

	pg := loadEnv(&cfg.Params, "PGHOST", "PGPORT", "PGUSER", "PGPASSWORD", "PGDATABASE")
	if v := os.Getenv("PGSSLMODE"); v != "" {
		cfg.Params.SSLMode = v
	}
	if v := os.Getenv("PGAPPNAME"); v != "" {
		cfg.Params.ApplicationName = v
	}
	if pg && cfg.Params.Driver == "" {
		cfg.Params.Driver = types.DriverPgx
	}

	// MySQL variables only apply when nothing else claimed the connection
	if cfg.Params.Driver == "" || cfg.Params.Driver == types.DriverMySQL {
		my := loadEnv(&cfg.Params, "MYSQL_HOST", "MYSQL_TCP_PORT", "MYSQL_USER", "MYSQL_PWD", "MYSQL_DATABASE")
		if my && cfg.Params.Driver == "" {
			cfg.Params.Driver = types.DriverMySQL
		}
	}

	return &cfg
}

// loadEnv reads one family of connection variables and reports whether any was set
func loadEnv(p *types.Params, host, port, user, password, database string) bool {
	found := false
	if v := os.Getenv(host); v != "" {
		p.Host = v
		found = true
	}
	if v := os.Getenv(port); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.Port = n
		}
		found = true
	}
	if v := os.Getenv(user); v != "" {
		p.User = v
		found = true
	}
	if v := os.Getenv(password); v != "" {
		p.Password = v
		found = true
	}
	if v := os.Getenv(database); v != "" {
		p.DBName = v
		found = true
	}
	return found
}

// ApplyFlagsToConfig applies command-line flag values to configuration.
// Empty and zero values keep what the environment provided.
func ApplyFlagsToConfig(c *Config, connection, driver string, timeout time.Duration,
	format, resultCacheDir string, resultCacheTTL time.Duration, verbose bool) {

	if connection != "" {
		c.Params.URL = connection
	}
	if driver != "" {
		c.Params.Driver = driver
	}
	if timeout != 0 {
		c.Timeout = timeout
	}
	if format != "" {
		c.Format = format
	}
	if resultCacheDir != "" {
		c.ResultCacheDir = resultCacheDir
	}
	if resultCacheTTL != 0 {
		c.ResultCacheTTL = resultCacheTTL
	}
	c.Verbose = verbose
}

// ApplyDefaults resolves the connection URL and fills in the default port of
// the selected driver. An unparsable URL is left for Validate to report.
func ApplyDefaults(c *Config) {
	if resolved, err := c.Params.Resolve(); err == nil {
		c.Params = resolved
	}
	if c.Params.Port == 0 {
		c.Params.Port = defaultPorts[c.Params.Driver]
	}
}
