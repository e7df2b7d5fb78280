package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"fact-registration/internal/config"
	"fact-registration/internal/database"
	"fact-registration/internal/logger"
	"fact-registration/internal/notify"
)

// deps the pieces every database-backed command needs
type deps struct {
	cfg      *config.Config
	log      *zap.Logger
	db       *sql.DB
	notifier notify.Notifier
}

func loadConfig(cmd *cobra.Command) *config.Config {
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		os.Setenv("CONFIG_FILE", path)
	}
	return config.Load()
}

// openDeps connects to PostgreSQL and builds the admin mail notifier. Operator
// runs always need the database, so there is no memory fallback here.
func openDeps(cmd *cobra.Command) (*deps, error) {
	cfg := loadConfig(cmd)
	log, err := logger.NewLogger(cfg.Log.Level, "console", "factctl")
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		return nil, err
	}
	return &deps{
		cfg:      cfg,
		log:      log,
		db:       db,
		notifier: notify.NewMulti(log, notify.NewSMTPNotifier(cfg.SMTP)),
	}, nil
}

func (d *deps) Close() {
	_ = d.log.Sync()
	_ = database.Close(d.db)
}
