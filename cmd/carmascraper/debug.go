package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jgoulah/carmascraper/internal/scraper"
	"github.com/spf13/cobra"
)

var debugOutput string

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Debug scraper by saving the graphing page HTML",
	Long: `Logs into the portal and saves the rendered graphing page to help debug
extraction issues when the chart markup changes.

Flags:
  --output     Save HTML to file instead of displaying`,
	RunE: runDebug,
}

func init() {
	debugCmd.Flags().StringVar(&debugOutput, "output", "", "Save HTML to this file")
	rootCmd.AddCommand(debugCmd)
}

func runDebug(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.Portal.Username == "" || cfg.Portal.Password == "" {
		return fmt.Errorf("portal credentials not set in config")
	}

	session, err := scraper.NewSession(cfg.GetBaseURL(), cfg.Portal.Username, cfg.Portal.Password)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	fmt.Printf("Logging in to %s...\n", cfg.GetBaseURL())
	ok, err := session.Login(ctx)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	if !ok {
		return fmt.Errorf("login rejected, check credentials")
	}

	html := session.CurrentPage()
	fmt.Printf("✓ Logged in, graphing page is %d bytes\n", len(html))

	if debugOutput != "" {
		if err := os.WriteFile(debugOutput, []byte(html), 0644); err != nil {
			return fmt.Errorf("writing HTML file: %w", err)
		}
		fmt.Printf("✓ HTML saved to %s\n", debugOutput)
		return nil
	}

	fmt.Println(html)
	return nil
}
