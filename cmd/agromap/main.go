// Command agromap serves the AgroMap API and manages its database.
//
//	agromap serve            # start the HTTP server
//	agromap migrate          # run pending migrations
//	agromap seed             # create the admin account and starter catalogue
//	agromap route:list       # print the route table
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/agromap/agromap/config"
	"github.com/agromap/agromap/pkg/database"
	"github.com/agromap/agromap/pkg/logger"

	// Import migrations so their init() funcs run and register themselves.
	_ "github.com/agromap/agromap/database/migrations"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var envFile string

var rootCmd = &cobra.Command{
	Use:           "agromap",
	Short:         "AgroMap: farmers' market directory API",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load (missing file is ignored)")

	// Server
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	// Database
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
}

// boot loads config and sets up logging. The returned cleanup flushes the
// Mongo log sink when one is configured.
func boot() (*config.Config, func(), error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {}
	if cfg.LogMongoURI == "" {
		logger.Setup(cfg.IsProduction())
		return cfg, cleanup, nil
	}

	sink, err := logger.NewMongoHandler(cfg.LogMongoURI, cfg.LogMongoDB, cfg.LogMongoCollection, slog.LevelInfo)
	if err != nil {
		logger.Setup(cfg.IsProduction())
		logger.Warn("mongo log sink unavailable, logging to stdout only", "error", err)
		return cfg, cleanup, nil
	}
	logger.Setup(cfg.IsProduction(), sink)
	return cfg, sink.Close, nil
}

// bootDB is boot plus an open database pool.
func bootDB() (*config.Config, *gorm.DB, func(), error) {
	cfg, cleanup, err := boot()
	if err != nil {
		return nil, nil, nil, err
	}
	db, err := database.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		cleanup()
		return nil, nil, nil, err
	}
	return cfg, db, func() {
		database.Close(db)
		cleanup()
	}, nil
}
