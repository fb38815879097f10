package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"ArticlesHarmonizer/internal/app"
	"ArticlesHarmonizer/internal/config"
	"ArticlesHarmonizer/internal/logging"
)

const usage = `usage: harmonizer [flags] <command> [args]

commands:
  migrate              apply database migrations
  ingest-gfg [csv]     stage a GeeksforGeeks CSV export (default feeds.gfgCsv)
  ingest-medium        stage the configured Medium RSS feeds
  run                  validate, quarantine and integrate staged rows once
  serve                run the pipeline on the scheduler interval and serve the monitoring API
  stats                print dimension and quarantine statistics as JSON

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	if errors.Is(err, errUsage) {
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "harmonizer:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("harmonizer", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "path to the YAML config (overrides HARMONIZER_CONFIG)")
	migrateFirst := fs.Bool("migrate", false, "apply migrations before running the command")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return errUsage
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errUsage
	}
	command, cmdArgs := rest[0], rest[1:]
	if !knownCommand(command) {
		fmt.Fprintf(stderr, "unknown command %q\n\n", command)
		fs.Usage()
		return errUsage
	}

	if *configPath != "" {
		if err := os.Setenv("HARMONIZER_CONFIG", *configPath); err != nil {
			return err
		}
	}
	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	if *migrateFirst || command == "migrate" {
		if err := application.Migrate(); err != nil {
			return err
		}
	}

	switch command {
	case "migrate":
		return nil
	case "ingest-gfg":
		path := ""
		if len(cmdArgs) > 0 {
			path = cmdArgs[0]
		}
		n, err := application.IngestGFG(ctx, path)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "staged %d gfg rows\n", n)
		return nil
	case "ingest-medium":
		n, err := application.IngestMedium(ctx)
		fmt.Fprintf(stdout, "staged %d medium rows\n", n)
		return err
	case "run":
		results, err := application.Run(ctx)
		for _, r := range results {
			fmt.Fprintf(stdout, "%s: total=%d clean=%d quarantined=%d integrated=%d flagged=%d\n",
				r.Source, r.Total, r.Clean, r.Quarantined, r.Integrated, r.Flagged)
		}
		return err
	case "serve":
		return application.Serve(ctx)
	case "stats":
		dim, quarantine, err := application.Stats(ctx)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"dimension": dim, "quarantine": quarantine})
	}
	return nil
}

func knownCommand(name string) bool {
	switch name {
	case "migrate", "ingest-gfg", "ingest-medium", "run", "serve", "stats":
		return true
	}
	return false
}
