package models

import (
	"fmt"
	"time"
)

// MonthKey identifies one server-rendered consumption view
type MonthKey struct {
	Month string `json:"month"` // full month name, e.g. "March"
	Year  int    `json:"year"`
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%s %d", k.Month, k.Year)
}

// Reading holds everything extracted from one rendered month page.
// All fields are optional; a page with no recognizable chart data
// yields a Reading with empty Dates/Consumption.
type Reading struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Location string `json:"location"`
	Month    string `json:"month"`
	Year     int    `json:"year"`

	// Dates and Consumption are index-aligned after extraction
	Dates       []string  `json:"dates"`
	Consumption []float64 `json:"consumption"`

	// Cumulative meter reading from the page subtitle, if present.
	// ReadingDate is kept as the raw textual date and resolved when saved.
	MeterReading float64 `json:"meter_reading"`
	ReadingDate  string  `json:"reading_date"`

	TotalConsumption float64 `json:"total_consumption"`
	AverageDaily     float64 `json:"average_daily"`
	Unit             string  `json:"unit"`
}

// HasMeterReading reports whether the page carried a meter reading line
func (r *Reading) HasMeterReading() bool {
	return r.MeterReading > 0 && r.ReadingDate != ""
}

// DailyConsumption represents a single day's electricity usage
type DailyConsumption struct {
	ID        int       `json:"id"`
	Date      time.Time `json:"date"`
	KWh       float64   `json:"kwh"`
	Location  string    `json:"location"`
	Month     string    `json:"month"`
	Year      int       `json:"year"`
	Published bool      `json:"published"`
}

// MonthlySummary is the recomputed total for one month and location
type MonthlySummary struct {
	Month        string  `json:"month"`
	Year         int     `json:"year"`
	Total        float64 `json:"total_consumption"`
	AverageDaily float64 `json:"average_daily"`
	DaysCount    int     `json:"days_count"`
	Location     string  `json:"location"`
}

// MeterReading is a cumulative register value as of a given date
type MeterReading struct {
	Date     time.Time `json:"date"`
	Value    float64   `json:"value"`
	Unit     string    `json:"unit"`
	Location string    `json:"location"`
}

// ScrapeRecord tracks that a month was processed and how many
// day-entries the page contained at the time
type ScrapeRecord struct {
	Month        string    `json:"month"`
	Year         int       `json:"year"`
	Location     string    `json:"location"`
	RecordsCount int       `json:"records_count"`
	ScrapedAt    time.Time `json:"scraped_at"`
}
