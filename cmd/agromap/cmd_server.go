package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/agromap/agromap/internal/kernel"
	"github.com/agromap/agromap/internal/server"
	"github.com/agromap/agromap/pkg/cache"
	"github.com/agromap/agromap/pkg/logger"
	"github.com/agromap/agromap/pkg/migration"
	"github.com/agromap/agromap/pkg/schedule"
	"github.com/agromap/agromap/pkg/storage"
)

var migrateOnBoot bool

func init() {
	serveCmd.Flags().BoolVar(&migrateOnBoot, "migrate", false, "run pending migrations before serving")
}

// agromap serve: start the HTTP server.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, db, cleanup, err := bootDB()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if migrateOnBoot {
			if _, err := migration.New(db, os.Stdout).Run(); err != nil {
				return err
			}
		}

		var store cache.Store = cache.Noop{}
		if cfg.CacheEnabled {
			rdb, err := cache.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword)
			if err != nil {
				logger.Warn("redis unavailable, caching disabled", "addr", cfg.RedisAddr, "error", err)
			} else {
				defer rdb.Close()
				store = rdb
			}
		}

		disk, err := storage.New(ctx, cfg.Storage)
		if err != nil {
			return err
		}

		app, err := kernel.NewHTTP(ctx, kernel.Deps{Config: cfg, DB: db, Cache: store, Disk: disk})
		if err != nil {
			return err
		}
		defer app.Wait()

		jobs := schedule.New()
		app.Schedule(jobs, cfg.CacheWarmInterval)
		jobs.Start(ctx)
		defer jobs.Wait()

		return server.Start(ctx, cfg.Addr(), app.Handler())
	},
}

// agromap route:list: print all registered routes.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cleanup, err := boot()
		if err != nil {
			return err
		}
		defer cleanup()

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		app, err := kernel.NewHTTP(ctx, kernel.Deps{Config: cfg})
		if err != nil {
			return err
		}

		infos := app.Router().Routes()
		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}
