// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/catalogit"
	"github.com/poiesic/catalogit/core"
	"github.com/poiesic/catalogit/httpapi"
	"github.com/poiesic/catalogit/maintenance"
	"github.com/poiesic/catalogit/storage/badger"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "catalogit",
		Usage: "Embedded product catalog with category-indexed queries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the catalog HTTP API",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "addr",
						Aliases: []string{"a"},
						Usage:   "Listen address for the HTTP server",
						Value:   ":8080",
					},
					&cli.BoolFlag{
						Name:  "in-memory",
						Usage: "Use an in-memory database (data is lost on exit)",
					},
					&cli.DurationFlag{
						Name:  "shutdown-timeout",
						Usage: "Grace period for in-flight requests on shutdown",
						Value: 10 * time.Second,
					},
				},
			},
			{
				Name:   "get",
				Usage:  "Print a single product by id",
				Action: getCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.Uint64Flag{
						Name:     "id",
						Usage:    "Product id",
						Required: true,
					},
				},
			},
			{
				Name:   "categories",
				Usage:  "List all categories that currently have products",
				Action: categoriesCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
				},
			},
			{
				Name:   "verify",
				Usage:  "Check record/index consistency, optionally rebuilding the index",
				Action: verifyCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "repair",
						Usage: "Rebuild the category index when disagreements are found",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N records",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed operations",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	opts := []catalogit.Option{catalogit.WithLogger(slog.Default())}
	if c.Bool("in-memory") {
		opts = append(opts, catalogit.WithInMemory())
	}

	catalog, err := catalogit.NewCatalog(dbPath, opts...)
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer catalog.Close()

	app := httpapi.NewApp(catalog, slog.Default())
	server := &http.Server{
		Addr:    c.String("addr"),
		Handler: httpapi.NewRouter(app),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", server.Addr, "db", dbPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("shutdown-timeout"))
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return <-errCh
}

func getCommand(c *cli.Context) error {
	ctx := context.Background()

	catalog, err := catalogit.NewCatalog(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer catalog.Close()

	product, err := catalog.GetByID(ctx, core.ID(c.Uint64("id")))
	if err != nil {
		return err
	}

	fmt.Printf("id:        %d\n", product.Id)
	fmt.Printf("category:  %s\n", product.Category)
	fmt.Printf("name:      %s\n", product.Name)
	fmt.Printf("inserted:  %s\n", product.InsertedAt.Format(time.RFC3339))
	fmt.Printf("updated:   %s\n", product.UpdatedAt.Format(time.RFC3339))
	return nil
}

func categoriesCommand(c *cli.Context) error {
	ctx := context.Background()

	catalog, err := catalogit.NewCatalog(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer catalog.Close()

	categories, err := catalog.ListCategories(ctx)
	if err != nil {
		return err
	}
	for _, category := range categories {
		fmt.Println(category)
	}
	return nil
}

func verifyCommand(c *cli.Context) error {
	ctx := context.Background()

	dbPath := c.String("db")
	if dbPath == "" {
		return fmt.Errorf("database path is required")
	}

	backend, err := badger.OpenBackend(dbPath, false)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer backend.Close()

	repo, err := badger.NewProductRepository(backend)
	if err != nil {
		return fmt.Errorf("failed to create repository: %w", err)
	}
	defer repo.Close()

	config := &maintenance.Config{
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	verifier := maintenance.NewVerifier(repo, config, os.Stderr)

	report, err := verifier.Run(ctx)
	if err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	if report.Clean() {
		fmt.Fprintln(os.Stderr, "Index is consistent.")
		return nil
	}

	fmt.Fprintf(os.Stderr, "Found %d dangling, %d mismatched, %d unindexed\n",
		len(report.Dangling), len(report.Mismatched), len(report.Unindexed))

	if !c.Bool("repair") {
		return fmt.Errorf("index is inconsistent (rerun with --repair to rebuild)")
	}

	if _, err := verifier.Repair(ctx); err != nil {
		return fmt.Errorf("repair failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
