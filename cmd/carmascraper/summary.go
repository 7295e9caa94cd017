package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	summaryExtremes bool
	summaryReading  bool
	summaryAll      bool
	summaryTopN     int
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show monthly consumption summaries",
	Long:  `Displays monthly consumption summaries and optionally extremes and the latest meter reading.`,
	RunE:  runSummary,
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryExtremes, "extremes", false, "Show highest/lowest consumption days")
	summaryCmd.Flags().BoolVar(&summaryReading, "reading", false, "Show latest meter reading")
	summaryCmd.Flags().BoolVar(&summaryAll, "all", false, "Show all reports")
	summaryCmd.Flags().IntVar(&summaryTopN, "top", 5, "How many extreme days to show")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if summaryAll || summaryReading {
		reading, err := db.LatestMeterReading()
		if err != nil {
			return fmt.Errorf("querying meter reading: %w", err)
		}
		if reading == nil {
			fmt.Println("No meter readings found")
		} else {
			fmt.Println("\nLatest Meter Reading:")
			fmt.Println("-----------------------------------")
			fmt.Printf("Date: %s\n", reading.Date.Format("2006-01-02"))
			fmt.Printf("Reading: %s %s\n", humanize.CommafWithDigits(reading.Value, 2), reading.Unit)
			if reading.Location != "" {
				fmt.Printf("Location: %s\n", reading.Location)
			}
		}
	}

	summaries, err := db.ListSummaries()
	if err != nil {
		return fmt.Errorf("listing summaries: %w", err)
	}

	if len(summaries) == 0 {
		fmt.Println("No summary data found")
	} else {
		fmt.Println("\nMonthly Summaries:")
		fmt.Println("--------------------------------------------------")
		fmt.Printf("%-15s %12s %10s %5s\n", "Month", "Total (kWh)", "Avg/Day", "Days")
		fmt.Println("--------------------------------------------------")

		var yearlyTotal float64
		for _, s := range summaries {
			fmt.Printf("%-9s %-4d %12.2f %10.2f %5d\n", s.Month, s.Year, s.Total, s.AverageDaily, s.DaysCount)
			yearlyTotal += s.Total
		}

		fmt.Println("--------------------------------------------------")
		fmt.Printf("%-15s %12s\n", "TOTAL", humanize.CommafWithDigits(yearlyTotal, 2))
	}

	if summaryAll || summaryExtremes {
		highest, err := db.HighestDays(summaryTopN)
		if err != nil {
			return fmt.Errorf("querying highest days: %w", err)
		}
		lowest, err := db.LowestDays(summaryTopN)
		if err != nil {
			return fmt.Errorf("querying lowest days: %w", err)
		}

		fmt.Printf("\nTop %d Highest Consumption Days:\n", summaryTopN)
		fmt.Println("-----------------------------------")
		for _, d := range highest {
			fmt.Printf("%s: %.2f kWh\n", d.Date.Format("2006-01-02"), d.KWh)
		}

		fmt.Printf("\nTop %d Lowest Consumption Days:\n", summaryTopN)
		fmt.Println("-----------------------------------")
		for _, d := range lowest {
			fmt.Printf("%s: %.2f kWh\n", d.Date.Format("2006-01-02"), d.KWh)
		}
	}

	return nil
}
