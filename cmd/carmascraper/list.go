package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	listStart string
	listEnd   string
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored daily consumption data",
	Long:  `Displays stored daily consumption records from the database.`,
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVar(&listStart, "start", "", "Start date (YYYY-MM-DD)")
	listCmd.Flags().StringVar(&listEnd, "end", "", "End date (YYYY-MM-DD)")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := openDB()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	var start, end *time.Time
	if listStart != "" {
		t, err := time.Parse("2006-01-02", listStart)
		if err != nil {
			return fmt.Errorf("parsing --start date: %w", err)
		}
		start = &t
	}
	if listEnd != "" {
		t, err := time.Parse("2006-01-02", listEnd)
		if err != nil {
			return fmt.Errorf("parsing --end date: %w", err)
		}
		end = &t
	}

	data, err := db.ListDaily(start, end)
	if err != nil {
		return fmt.Errorf("listing daily data: %w", err)
	}

	if len(data) == 0 {
		fmt.Println("No data found for the specified period")
		return nil
	}

	fmt.Printf("\nDaily Consumption (%d days):\n", len(data))
	fmt.Println("----------------------------------------")
	fmt.Printf("%-12s  %10s\n", "Date", "kWh")
	fmt.Println("----------------------------------------")

	var total float64
	for _, record := range data {
		fmt.Printf("%-12s  %10.2f\n", record.Date.Format("2006-01-02"), record.KWh)
		total += record.KWh
	}

	fmt.Println("----------------------------------------")
	fmt.Printf("Total: %.2f kWh\n", total)
	fmt.Printf("Average: %.2f kWh/day\n", total/float64(len(data)))

	return nil
}
