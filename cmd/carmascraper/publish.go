package main

import (
	"fmt"
	"time"

	"github.com/jgoulah/carmascraper/internal/publisher"
	"github.com/jgoulah/carmascraper/pkg/models"
	"github.com/spf13/cobra"
)

var (
	publishSince string
	publishUntil string
	publishAll   bool
	publishLimit int
)

var publishCmd = &cobra.Command{
	Use:   "publish",
	Short: "Publish consumption data to Home Assistant",
	Long:  `Reads stored daily consumption data from the database and publishes it to Home Assistant via MQTT and/or HTTP API.`,
	RunE:  runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishSince, "since", "", "Only publish data since this date (YYYY-MM-DD or relative like 7d)")
	publishCmd.Flags().StringVar(&publishUntil, "until", "", "Only publish data until this date (YYYY-MM-DD)")
	publishCmd.Flags().BoolVar(&publishAll, "all", false, "Force republish all records (ignore published flag)")
	publishCmd.Flags().IntVar(&publishLimit, "limit", 0, "Limit number of records to publish (0 = no limit)")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Publish started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if !cfg.MQTT.Enabled && !cfg.HomeAssistant.Enabled {
		return fmt.Errorf("neither MQTT nor Home Assistant publishing is enabled in config")
	}

	pub, err := publisher.New(cfg.MQTT, cfg.HomeAssistant)
	if err != nil {
		return fmt.Errorf("creating publisher: %w", err)
	}
	defer pub.Close()

	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	// Parse date filters if provided
	var sinceDate, untilDate *time.Time
	if publishSince != "" {
		since, err := parseDate(publishSince)
		if err != nil {
			return fmt.Errorf("parsing --since date: %w", err)
		}
		sinceDate = &since
	}
	if publishUntil != "" {
		until, err := parseDate(publishUntil)
		if err != nil {
			return fmt.Errorf("parsing --until date: %w", err)
		}
		untilDate = &until
	}

	// Get records based on --all flag
	var data []models.DailyConsumption
	if publishAll {
		data, err = db.ListDaily(nil, nil)
	} else {
		data, err = db.ListUnpublishedDaily()
	}
	if err != nil {
		return fmt.Errorf("listing daily data: %w", err)
	}

	if len(data) == 0 {
		if publishAll {
			fmt.Println("No data found")
		} else {
			fmt.Println("No unpublished data found")
		}
		return nil
	}

	// Filter by date range if specified
	filteredData := data
	if sinceDate != nil || untilDate != nil {
		filteredData = []models.DailyConsumption{}
		for _, record := range data {
			if sinceDate != nil && record.Date.Before(*sinceDate) {
				continue
			}
			if untilDate != nil && record.Date.After(*untilDate) {
				continue
			}
			filteredData = append(filteredData, record)
		}
	}

	if len(filteredData) == 0 {
		fmt.Println("No data in date range")
		return nil
	}

	// Apply limit if specified
	if publishLimit > 0 && len(filteredData) > publishLimit {
		filteredData = filteredData[:publishLimit]
		fmt.Printf("Limiting to %d records (--limit flag)\n", publishLimit)
	}

	// Publish each record
	fmt.Printf("Publishing %d records...\n", len(filteredData))
	published := 0
	for i, record := range filteredData {
		fmt.Printf("[%d/%d] Publishing %s (%.2f kWh)... ", i+1, len(filteredData), record.Date.Format("2006-01-02"), record.KWh)
		if err := pub.Publish(record); err != nil {
			fmt.Printf("FAILED: %v\n", err)
			continue
		}

		// Mark record as published in database
		if err := db.MarkPublished(record.ID); err != nil {
			fmt.Printf("✓ (warning: failed to mark as published: %v)\n", err)
		} else {
			fmt.Printf("✓\n")
		}
		published++
	}

	fmt.Printf("\nSuccessfully published %d/%d records\n", published, len(filteredData))
	return nil
}

// parseDate parses a date string in either YYYY-MM-DD format or relative format (e.g., "7d")
func parseDate(dateStr string) (time.Time, error) {
	// Try absolute date format first
	t, err := time.Parse("2006-01-02", dateStr)
	if err == nil {
		return t, nil
	}

	// Try relative format (e.g., "7d" for 7 days ago)
	if len(dateStr) > 1 && dateStr[len(dateStr)-1] == 'd' {
		daysStr := dateStr[:len(dateStr)-1]
		var days int
		if _, err := fmt.Sscanf(daysStr, "%d", &days); err == nil {
			return time.Now().AddDate(0, 0, -days), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid date format: %s (use YYYY-MM-DD or Nd for N days ago)", dateStr)
}
