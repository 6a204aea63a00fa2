// ABOUTME: Maintenance utility that rebuilds deal projections from stored timelines
// ABOUTME: Backs up the database, then repairs stage columns and follow-up rows; supports dry runs

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/harperreed/dealdesk/config"
	"github.com/harperreed/dealdesk/db"
	"github.com/harperreed/dealdesk/logging"
)

func main() {
	dbPath := flag.String("db", "", "Path to database file (default: from config)")
	dryRun := flag.Bool("dry-run", false, "Show what would change without writing")
	backup := flag.Bool("backup", true, "Create backup before writing")
	flag.Parse()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	logger, err := logging.New(os.Stderr, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if err := reindex(logger, cfg.DatabasePath, *dryRun, *backup); err != nil {
		logger.Fatal("reindex failed", "err", err)
	}
}

func reindex(logger *log.Logger, dbPath string, dryRun, createBackup bool) error {
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return fmt.Errorf("database file does not exist: %s", dbPath)
	}

	if createBackup && !dryRun {
		backupPath := fmt.Sprintf("%s.backup.%s", dbPath, time.Now().Format("20060102-150405"))
		input, err := os.ReadFile(dbPath)
		if err != nil {
			return fmt.Errorf("failed to read database: %w", err)
		}
		if err := os.WriteFile(backupPath, input, 0600); err != nil {
			return fmt.Errorf("failed to create backup: %w", err)
		}
		logger.Info("backup created", "path", backupPath)
	}

	// OpenDatabase also creates any tables an older database is missing.
	database, err := db.OpenDatabase(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close() }()

	report, err := db.Reindex(context.Background(), database, dryRun)
	if err != nil {
		return err
	}

	prefix := ""
	if dryRun {
		prefix = "[DRY RUN] "
	}
	logger.Info(prefix+"reindex finished",
		"deals", report.Deals,
		"stages_fixed", len(report.StagesFixed),
		"follow_ups_fixed", report.FollowUpsFixed,
		"follow_ups_pruned", report.FollowUpsPruned,
	)
	for _, id := range report.StagesFixed {
		logger.Info(prefix+"stage out of date", "deal_id", id)
	}
	return nil
}
