package main

import (
	"context"
	"fmt"

	"github.com/jgoulah/carmascraper/internal/api"
	"github.com/jgoulah/carmascraper/internal/scraper"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve collected data over a REST API",
	Long: `Starts an HTTP server exposing read-only consumption queries and a
manual re-scrape trigger. With auto-update enabled in config, a scrape of
the most recent month runs daily at the configured hour.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (default from config, fallback :5000)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if serveListen != "" {
		cfg.API.Listen = serveListen
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// Scheduled and triggered updates re-scrape only the most recent
	// month; each run gets a fresh session since the portal cursor
	// resets at login
	runner := api.NewRunner(func(ctx context.Context) error {
		session, err := scraper.NewSession(cfg.GetBaseURL(), cfg.Portal.Username, cfg.Portal.Password)
		if err != nil {
			return fmt.Errorf("creating portal session: %w", err)
		}

		collector := scraper.NewCollector(session, db, cfg)
		collector.MonthsBack = 1

		return collector.Run(ctx)
	})

	server := api.New(cfg, db, runner)
	return server.Run()
}
