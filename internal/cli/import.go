package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cybertec-postgresql/dbal/internal/dbal"
	"github.com/cybertec-postgresql/dbal/internal/discovery"
	"github.com/cybertec-postgresql/dbal/internal/driver"
	"github.com/cybertec-postgresql/dbal/internal/params"
	"github.com/cybertec-postgresql/dbal/internal/sqlparser"
)

// splitScript cuts a script into statements the way platform quotes text
func splitScript(content string, platform driver.Platform) []string {
	switch platform.Name {
	case "pgsql", "duckdb":
		return sqlparser.SplitDollarQuoted(content)
	}
	return sqlparser.SplitStatements(content, platform.MySQLStringEscaping)
}

// Import runs SQL scripts found under paths. Each file is split into
// statements and applied in its own transaction, so a failing statement
// leaves the file's earlier statements unapplied. With down set only the
// revert scripts run, last file first.
func Import(ctx context.Context, config *Config, paths []string, down bool, out io.Writer) (int, error) {
	startTime := time.Now()

	if len(paths) == 0 {
		paths = []string{"."}
	}
	fileType := discovery.FileTypeUp
	if down {
		fileType = discovery.FileTypeDown
	}

	scripts, err := discovery.DiscoverScripts(fileType, paths...)
	if err != nil {
		return 1, fmt.Errorf("script discovery failed: %w", err)
	}
	if len(scripts) == 0 {
		fmt.Fprintf(out, "No %s scripts found\n", fileType)
		return 0, nil
	}
	PrintVerbose(config, "Discovered %d %s script(s)", len(scripts), fileType)

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	conn, err := connect(ctx, config)
	if err != nil {
		return 1, fmt.Errorf("database connection failed: %w", err)
	}
	defer conn.Close()

	platform := conn.Platform()
	for _, script := range scripts {
		content, err := os.ReadFile(script.Path)
		if err != nil {
			return 1, fmt.Errorf("failed to read %s: %w", script.RelativePath, err)
		}
		statements := splitScript(string(content), platform)

		err = conn.Transactional(ctx, func(tx *dbal.Connection) error {
			for i, stmt := range statements {
				if _, err := tx.ExecuteStatement(ctx, stmt, params.Params{}, params.Types{}); err != nil {
					return fmt.Errorf("statement %d: %w", i+1, err)
				}
			}
			return nil
		})
		if err != nil {
			return 1, fmt.Errorf("%s: %w", script.RelativePath, err)
		}
		fmt.Fprintf(out, "Applied %s (%d statements)\n", script.RelativePath, len(statements))
	}

	PrintVerbose(config, "Time: %v", time.Since(startTime).Round(time.Millisecond))
	return 0, nil
}
