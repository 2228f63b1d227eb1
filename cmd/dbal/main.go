package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cybertec-postgresql/dbal/internal/cli"
	"github.com/cybertec-postgresql/dbal/internal/driver"
	urfavecli "github.com/urfave/cli/v3"
)

const version = "1.0.0"

// connectionFlags are shared by every command that talks to a database
func connectionFlags() []urfavecli.Flag {
	return []urfavecli.Flag{
		&urfavecli.StringFlag{
			Name:    "connection",
			Aliases: []string{"c"},
			Usage:   "Connection URL, e.g. postgres://user@host/db, mysql://host/db, sqlite:///path/app.db. Supports DBAL_URL, PG* and MYSQL_* environment variables.",
		},
		&urfavecli.StringFlag{
			Name:  "driver",
			Usage: "Driver name (pgx, pq, mysql, sqlite, duckdb); overrides the URL scheme default",
		},
		&urfavecli.DurationFlag{
			Name:  "timeout",
			Usage: "Overall command timeout",
		},
		&urfavecli.BoolFlag{
			Name:  "verbose",
			Usage: "Log every driver call to stderr",
		},
	}
}

func main() {
	app := &urfavecli.Command{
		Name:    "dbal",
		Usage:   "Database abstraction layer toolbox",
		Version: version,
		Commands: []*urfavecli.Command{
			{
				Name:      "run-sql",
				Usage:     "Execute a single SQL statement",
				ArgsUsage: "<sql | ->",
				Action:    runSQLCommand,
				Flags: append(connectionFlags(),
					&urfavecli.StringFlag{
						Name:  "format",
						Usage: "Output format (table, json, or csv)",
					},
					&urfavecli.BoolFlag{
						Name:  "force-fetch",
						Usage: "Print rows even if the statement is not recognised as a query",
					},
					&urfavecli.StringSliceFlag{
						Name:    "param",
						Aliases: []string{"p"},
						Usage:   "Parameter value, positional or name=value; array values are comma separated",
					},
					&urfavecli.StringSliceFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Parameter type (string, integer, boolean, null, binary, lob, ascii, integer[], string[], ascii[], binary[]), positional or name=type",
					},
					&urfavecli.BoolFlag{
						Name:  "cache",
						Usage: "Serve the result from the result cache",
					},
					&urfavecli.StringFlag{
						Name:  "result-cache-dir",
						Usage: "Directory of the file based result cache",
					},
					&urfavecli.DurationFlag{
						Name:  "result-cache-ttl",
						Usage: "Lifetime of cached results (0 keeps them forever)",
					},
				),
			},
			{
				Name:      "import",
				Usage:     "Apply SQL script files, one transaction per file",
				ArgsUsage: "[path...]",
				Action:    importCommand,
				Flags: append(connectionFlags(),
					&urfavecli.BoolFlag{
						Name:  "down",
						Usage: "Run the *.down.sql and *_down.sql scripts in reverse order",
					},
				),
			},
			{
				Name:      "parse",
				Usage:     "Show how a statement is tokenised and rewritten",
				ArgsUsage: "<sql | ->",
				Action:    parseCommand,
				Flags: []urfavecli.Flag{
					&urfavecli.BoolFlag{
						Name:  "mysql",
						Usage: "Treat backslashes in quoted text as escapes",
					},
					&urfavecli.StringFlag{
						Name:  "platform",
						Usage: "Rewrite placeholders for a platform (pgsql, mysql, sqlite, duckdb, sqlsrv, oci)",
					},
				},
			},
			{
				Name:   "drivers",
				Usage:  "List the available drivers",
				Action: driversCommand,
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig builds and validates the configuration from environment and flags
func loadConfig(cmd *urfavecli.Command) *cli.Config {
	config := cli.LoadConfig()

	cli.ApplyFlagsToConfig(config,
		cmd.String("connection"),
		cmd.String("driver"),
		cmd.Duration("timeout"),
		cmd.String("format"),
		cmd.String("result-cache-dir"),
		cmd.Duration("result-cache-ttl"),
		cmd.Bool("verbose"),
	)
	cli.ApplyDefaults(config)

	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	return config
}

// sqlArgument returns the first argument, reading stdin when it is "-"
func sqlArgument(cmd *urfavecli.Command) (string, error) {
	sql := cmd.Args().First()
	if sql == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		sql = string(data)
	}
	if strings.TrimSpace(sql) == "" {
		fmt.Fprintln(os.Stderr, "Error: no SQL given")
		os.Exit(2)
	}
	return sql, nil
}

// exit terminates with code when it signals failure
func exit(code int, err error) error {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	if code != 0 {
		os.Exit(code)
	}
	return nil
}

// runSQLCommand handles the 'dbal run-sql' command
func runSQLCommand(ctx context.Context, cmd *urfavecli.Command) error {
	sql, err := sqlArgument(cmd)
	if err != nil {
		return err
	}
	config := loadConfig(cmd)

	opts := cli.RunSQLOptions{
		Params:     cmd.StringSlice("param"),
		Types:      cmd.StringSlice("type"),
		ForceFetch: cmd.Bool("force-fetch"),
		UseCache:   cmd.Bool("cache"),
	}
	return exit(cli.RunSQL(ctx, config, sql, opts, os.Stdout))
}

// importCommand handles the 'dbal import' command
func importCommand(ctx context.Context, cmd *urfavecli.Command) error {
	config := loadConfig(cmd)
	return exit(cli.Import(ctx, config, cmd.Args().Slice(), cmd.Bool("down"), os.Stdout))
}

// parseCommand handles the 'dbal parse' command
func parseCommand(ctx context.Context, cmd *urfavecli.Command) error {
	sql, err := sqlArgument(cmd)
	if err != nil {
		return err
	}
	return cli.Parse(sql, cmd.Bool("mysql"), cmd.String("platform"), os.Stdout)
}

// driversCommand handles the 'dbal drivers' command
func driversCommand(ctx context.Context, cmd *urfavecli.Command) error {
	return cli.ListDrivers(driver.DefaultRegistry(), os.Stdout)
}
