package main

import (
	"fmt"
	"os"

	"github.com/Victorious-hub/Open-Graph/internal/config"
	"github.com/Victorious-hub/Open-Graph/internal/db"
	"github.com/Victorious-hub/Open-Graph/internal/logger"
)

// migrate creates or updates the schema and exits.
func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	l, err := logger.New(cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = l.Sync() }()

	gdb, err := db.Open(cfg)
	if err != nil {
		l.Fatalw("migration failed", "db_type", cfg.DBType, "error", err)
	}
	if sqlDB, err := gdb.DB(); err == nil {
		_ = sqlDB.Close()
	}

	l.Infow("schema is up to date", "db_type", cfg.DBType, "db_name", cfg.DBName)
}
