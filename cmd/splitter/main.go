// Package main provides the splitter command: it refreshes the per-set card
// files Magic Album reads from the Scryfall bulk data.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"setsplitter/internal/config"
	"setsplitter/internal/formatter"
	"setsplitter/internal/freshness"
	"setsplitter/internal/logger"
	"setsplitter/internal/scryfall"
	"setsplitter/internal/updater"
)

const defaultConfigPath = "configs/splitter.yaml"

func main() {
	os.Exit(run())
}

func run() int {
	configFile := flag.String("config", "", "Path to YAML configuration file (default: "+defaultConfigPath+" when present)")
	envFile := flag.String("env", ".env", "Path to a dotenv file with SPLITTER_* overrides")
	force := flag.Bool("force", false, "Download and rewrite set files even when the marker is current")
	showSummary := flag.Bool("summary", false, "Print a table of the written set files")
	writeConfig := flag.String("write-config", "", "Write the effective configuration to this YAML file and exit")

	flag.Parse()

	log := logger.NewLogger(config.DefaultLogLevel)

	if err := config.LoadDotEnv(*envFile); err != nil {
		log.Error("❌ Failed to load dotenv file", "error", err)

		return 1
	}

	cfg, err := loadConfig(*configFile)
	if err != nil {
		log.Error("❌ Failed to load config", "error", err)

		return 1
	}

	log.SetLevel(cfg.Logging.Level)
	log.Debug("configuration loaded", "config", cfg.String())

	if *writeConfig != "" {
		if err := cfg.SaveConfig(*writeConfig); err != nil {
			log.Error("❌ Failed to write config", "error", err)

			return 1
		}

		fmt.Printf("✅ Configuration written to %s\n", *writeConfig)

		return 0
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := updater.NewFromConfig(cfg, log, os.Stdout, *force).Run(ctx)
	if err != nil {
		log.Error("❌ Update failed", "error", err, "kind", errorKind(err))

		return 1
	}

	if *showSummary && result.Summary != nil {
		fmt.Println()
		fmt.Print(formatter.FormatSummary(result.Summary))
	}

	return 0
}

// loadConfig reads the explicit config file, else the default path when it
// exists, else built-in defaults. Environment overrides apply in all cases.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		if _, statErr := os.Stat(defaultConfigPath); statErr == nil {
			path = defaultConfigPath
		}
	}

	if path != "" {
		return config.LoadConfig(path)
	}

	cfg := config.Default()
	cfg.ApplyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, scryfall.ErrNetwork):
		return "network"
	case errors.Is(err, scryfall.ErrDecode):
		return "decode"
	case errors.Is(err, scryfall.ErrNoDefaultDataset), errors.Is(err, scryfall.ErrMultipleDatasets):
		return "catalog"
	case errors.Is(err, freshness.ErrFilesystem):
		return "filesystem"
	default:
		return "internal"
	}
}
