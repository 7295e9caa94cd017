package main

import (
	"context"
	"fmt"
	"time"

	"github.com/jgoulah/carmascraper/internal/scraper"
	"github.com/spf13/cobra"
)

var (
	scrapeMonths      int
	scrapeNoStop      bool
	scrapePauseEvery  int
	scrapePauseLength int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Collect historical consumption data from the portal",
	Long: `Logs into the metering portal and walks backward through the monthly
consumption views, storing daily readings in the local SQLite database.
Re-running is safe: stored values are only replaced by differing non-zero
readings, and zero readings never overwrite real data.`,
	RunE: runScrape,
}

func init() {
	scrapeCmd.Flags().IntVar(&scrapeMonths, "months", 0, "Number of months to go back (default from config, fallback 12)")
	scrapeCmd.Flags().BoolVar(&scrapeNoStop, "no-stop", false, "Don't stop on consecutive empty months")
	scrapeCmd.Flags().IntVar(&scrapePauseEvery, "pause-interval", 0, "Pause every N months (default from config, fallback 6)")
	scrapeCmd.Flags().IntVar(&scrapePauseLength, "pause-duration", 0, "Pause duration in seconds (default from config, fallback 30)")
	rootCmd.AddCommand(scrapeCmd)
}

func runScrape(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Scrape started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Portal.Username == "" || cfg.Portal.Password == "" {
		return fmt.Errorf("no portal credentials configured. Add portal username/password to %s", getConfigPath())
	}

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	session, err := scraper.NewSession(cfg.GetBaseURL(), cfg.Portal.Username, cfg.Portal.Password)
	if err != nil {
		return fmt.Errorf("creating portal session: %w", err)
	}

	collector := scraper.NewCollector(session, db, cfg)

	// Flags override config
	if scrapeMonths > 0 {
		collector.MonthsBack = scrapeMonths
	}
	if scrapeNoStop {
		collector.StopOnEmpty = false
	}
	if scrapePauseEvery > 0 {
		collector.PauseInterval = scrapePauseEvery
	}
	if scrapePauseLength > 0 {
		collector.PauseDuration = time.Duration(scrapePauseLength) * time.Second
	}

	if err := collector.Run(context.Background()); err != nil {
		return fmt.Errorf("scraping: %w", err)
	}

	return nil
}
