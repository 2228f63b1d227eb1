package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cybertec-postgresql/dbal/internal/cache"
	"github.com/cybertec-postgresql/dbal/internal/dbal"
	"github.com/cybertec-postgresql/dbal/internal/logger"
	"github.com/cybertec-postgresql/dbal/internal/report"
	"github.com/cybertec-postgresql/dbal/internal/sqlparser"
)

// RunSQLOptions holds the run-sql specific flags
type RunSQLOptions struct {
	Params     []string // positional values, or name=value pairs for named placeholders
	Types      []string // type per positional value, or name=type pairs
	ForceFetch bool     // print rows even if the statement does not look like a query
	UseCache   bool     // serve the result through the result cache
}

// resultKeywords start statements that return rows
var resultKeywords = map[string]bool{
	"SELECT":   true,
	"WITH":     true,
	"VALUES":   true,
	"TABLE":    true,
	"SHOW":     true,
	"EXPLAIN":  true,
	"DESCRIBE": true,
	"DESC":     true,
	"PRAGMA":   true,
}

// connect opens the configured connection. Driver calls are logged in
// verbose mode and results are cached on disk when a cache directory is set.
func connect(ctx context.Context, config *Config) (*dbal.Connection, error) {
	var opts []dbal.Option
	if config.Verbose {
		opts = append(opts, dbal.WithLogger(logger.New(true, os.Stderr)))
	}
	if config.ResultCacheDir != "" {
		opts = append(opts, dbal.WithResultCache(cache.NewFileCache(config.ResultCacheDir)))
	}
	return dbal.Open(ctx, config.Params, opts...)
}

// RunSQL executes a single statement and writes its result to out
func RunSQL(ctx context.Context, config *Config, sql string, opts RunSQLOptions, out io.Writer) (int, error) {
	startTime := time.Now()

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	values, types, err := BuildParams(opts.Params, opts.Types)
	if err != nil {
		return 2, err
	}

	conn, err := connect(ctx, config)
	if err != nil {
		return 1, fmt.Errorf("database connection failed: %w", err)
	}
	defer conn.Close()

	PrintVerbose(config, "Connected to %s at %s", conn.DriverName(), conn.Params().Address())

	keyword := sqlparser.FirstKeyword(sql, conn.Platform().MySQLStringEscaping)
	if !opts.ForceFetch && !resultKeywords[keyword] {
		n, err := conn.ExecuteStatement(ctx, sql, values, types)
		if err != nil {
			return 1, err
		}
		fmt.Fprintf(out, "%d row(s) affected\n", n)
		PrintVerbose(config, "Time: %v", time.Since(startTime).Round(time.Millisecond))
		return 0, nil
	}

	var profile *cache.QueryCacheProfile
	if opts.UseCache {
		p := cache.NewQueryCacheProfile(config.ResultCacheTTL, "", nil)
		profile = &p
	}

	res, err := conn.ExecuteQuery(ctx, sql, values, types, profile)
	if err != nil {
		return 1, err
	}
	table, err := report.FromResult(res)
	if err != nil {
		return 1, fmt.Errorf("failed to read result: %w", err)
	}
	if err := report.FormatToWriter(table, report.FormatType(config.Format), out); err != nil {
		return 1, err
	}

	PrintVerbose(config, "Time: %v", time.Since(startTime).Round(time.Millisecond))
	return 0, nil
}

// PrintVerbose prints a message to stderr if verbose mode is enabled
func PrintVerbose(config *Config, format string, args ...any) {
	if config.Verbose {
		fmt.Fprintf(os.Stderr, format+"\n", args...)
	}
}
