package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/agromap/agromap/database/seeders"
	"github.com/agromap/agromap/pkg/migration"
)

// agromap migrate
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run all pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, cleanup, err := bootDB()
		if err != nil {
			return err
		}
		defer cleanup()

		fmt.Println("Running migrations…")
		_, err = migration.New(db, os.Stdout).Run()
		return err
	},
}

// agromap migrate:rollback
var migrateRollbackCmd = &cobra.Command{
	Use:   "migrate:rollback",
	Short: "Rollback the last batch of migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, cleanup, err := bootDB()
		if err != nil {
			return err
		}
		defer cleanup()

		fmt.Println("Rolling back last batch…")
		_, err = migration.New(db, os.Stdout).Rollback()
		return err
	},
}

// agromap migrate:status
var migrateStatusCmd = &cobra.Command{
	Use:   "migrate:status",
	Short: "Show the status of each migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, db, cleanup, err := bootDB()
		if err != nil {
			return err
		}
		defer cleanup()

		return migration.New(db, os.Stdout).PrintStatus()
	},
}

// agromap seed
var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the admin account and the starter catalogue",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, cleanup, err := bootDB()
		if err != nil {
			return err
		}
		defer cleanup()

		fmt.Println("Running seeders…")
		return seeders.RunAll(cmd.Context(), db, cfg, os.Stdout)
	},
}
