package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jgoulah/carmascraper/pkg/models"
)

const dailyColumns = `id, consumption_date, consumption_kwh, location, month, year, published`

// monthOrder sorts textual month names in calendar order inside SQL
const monthOrder = `CASE month
	WHEN 'January' THEN 1
	WHEN 'February' THEN 2
	WHEN 'March' THEN 3
	WHEN 'April' THEN 4
	WHEN 'May' THEN 5
	WHEN 'June' THEN 6
	WHEN 'July' THEN 7
	WHEN 'August' THEN 8
	WHEN 'September' THEN 9
	WHEN 'October' THEN 10
	WHEN 'November' THEN 11
	WHEN 'December' THEN 12
END`

func scanDaily(scanner interface{ Scan(...any) error }) (models.DailyConsumption, error) {
	var d models.DailyConsumption
	var dateStr string
	var location, month sql.NullString
	var year sql.NullInt64
	var published int

	if err := scanner.Scan(&d.ID, &dateStr, &d.KWh, &location, &month, &year, &published); err != nil {
		return d, err
	}

	date, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return d, fmt.Errorf("parsing date: %w", err)
	}
	d.Date = date
	d.Location = location.String
	d.Month = month.String
	d.Year = int(year.Int64)
	d.Published = published != 0

	return d, nil
}

func (db *DB) queryDaily(query string, args ...any) ([]models.DailyConsumption, error) {
	rows, err := db.conn.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying daily consumption: %w", err)
	}
	defer rows.Close()

	var results []models.DailyConsumption
	for rows.Next() {
		d, err := scanDaily(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}
		results = append(results, d)
	}

	return results, rows.Err()
}

// GetDaily retrieves the record for a specific date, or nil when absent
func (db *DB) GetDaily(date time.Time) (*models.DailyConsumption, error) {
	row := db.conn.QueryRow(`
	SELECT `+dailyColumns+` FROM daily_consumption WHERE consumption_date = ?
	`, date.Format("2006-01-02"))

	d, err := scanDaily(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListDaily retrieves daily records, optionally bounded by start/end dates
func (db *DB) ListDaily(start, end *time.Time) ([]models.DailyConsumption, error) {
	query := `SELECT ` + dailyColumns + ` FROM daily_consumption WHERE 1=1`
	var args []any

	if start != nil {
		query += ` AND consumption_date >= ?`
		args = append(args, start.Format("2006-01-02"))
	}
	if end != nil {
		query += ` AND consumption_date <= ?`
		args = append(args, end.Format("2006-01-02"))
	}
	query += ` ORDER BY consumption_date`

	return db.queryDaily(query, args...)
}

// ListDailyForMonth retrieves the daily records for one month/year
func (db *DB) ListDailyForMonth(month string, year int) ([]models.DailyConsumption, error) {
	return db.queryDaily(`
	SELECT `+dailyColumns+` FROM daily_consumption
	WHERE month = ? AND year = ?
	ORDER BY consumption_date
	`, month, year)
}

// CountDaily returns the total number of daily records
func (db *DB) CountDaily() (int, error) {
	var count int
	if err := db.conn.QueryRow(`SELECT COUNT(*) FROM daily_consumption`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting daily records: %w", err)
	}
	return count, nil
}

// DateRange returns the first and last dates with data, empty when none
func (db *DB) DateRange() (string, string, error) {
	var first, last sql.NullString
	err := db.conn.QueryRow(`
	SELECT MIN(consumption_date), MAX(consumption_date) FROM daily_consumption
	`).Scan(&first, &last)
	if err != nil {
		return "", "", fmt.Errorf("querying date range: %w", err)
	}
	return first.String, last.String, nil
}

// MonthTotal sums consumption for the calendar month containing date
func (db *DB) MonthTotal(date time.Time) (float64, error) {
	var total sql.NullFloat64
	err := db.conn.QueryRow(`
	SELECT SUM(consumption_kwh) FROM daily_consumption
	WHERE strftime('%Y-%m', consumption_date) = ?
	`, date.Format("2006-01")).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("summing month total: %w", err)
	}
	return total.Float64, nil
}

// LatestMeterReading returns the most recent meter reading, or nil
func (db *DB) LatestMeterReading() (*models.MeterReading, error) {
	var dateStr string
	var reading models.MeterReading
	var location sql.NullString

	err := db.conn.QueryRow(`
	SELECT reading_date, meter_value, unit, location FROM meter_readings
	ORDER BY reading_date DESC LIMIT 1
	`).Scan(&dateStr, &reading.Value, &reading.Unit, &location)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying meter reading: %w", err)
	}

	reading.Date, err = time.Parse("2006-01-02", dateStr)
	if err != nil {
		return nil, fmt.Errorf("parsing reading date: %w", err)
	}
	reading.Location = location.String

	return &reading, nil
}

// GetSummary retrieves the stored summary for one month/year, or nil
func (db *DB) GetSummary(month string, year int) (*models.MonthlySummary, error) {
	var s models.MonthlySummary
	var location sql.NullString

	err := db.conn.QueryRow(`
	SELECT month, year, total_consumption, average_daily, days_count, location
	FROM consumption_summary
	WHERE month = ? AND year = ?
	`, month, year).Scan(&s.Month, &s.Year, &s.Total, &s.AverageDaily, &s.DaysCount, &location)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying monthly summary: %w", err)
	}
	s.Location = location.String

	return &s, nil
}

// ListSummaries retrieves all monthly summaries, most recent first
func (db *DB) ListSummaries() ([]models.MonthlySummary, error) {
	rows, err := db.conn.Query(`
	SELECT month, year, total_consumption, average_daily, days_count, location
	FROM consumption_summary
	ORDER BY year DESC, ` + monthOrder + ` DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying summaries: %w", err)
	}
	defer rows.Close()

	var results []models.MonthlySummary
	for rows.Next() {
		var s models.MonthlySummary
		var location sql.NullString
		if err := rows.Scan(&s.Month, &s.Year, &s.Total, &s.AverageDaily, &s.DaysCount, &location); err != nil {
			return nil, fmt.Errorf("scanning summary: %w", err)
		}
		s.Location = location.String
		results = append(results, s)
	}

	return results, rows.Err()
}

// CountHistory returns the number of scrape history entries for a month
func (db *DB) CountHistory(month string, year int, location string) (int, error) {
	var count int
	err := db.conn.QueryRow(`
	SELECT COUNT(*) FROM scraping_history WHERE month = ? AND year = ? AND location = ?
	`, month, year, location).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting scrape history: %w", err)
	}
	return count, nil
}

// Statistics aggregates store-wide usage figures
type Statistics struct {
	TotalDays    int
	TotalKWh     float64
	AverageDaily float64
	MaxDaily     float64
	MinDaily     float64
	FirstDate    string
	LastDate     string
	HighestDay   *models.DailyConsumption
	LowestDay    *models.DailyConsumption
}

// GetStatistics computes overall statistics across all daily records
func (db *DB) GetStatistics() (*Statistics, error) {
	var stats Statistics
	var total, avg, max, min sql.NullFloat64
	var first, last sql.NullString

	err := db.conn.QueryRow(`
	SELECT COUNT(*), SUM(consumption_kwh), AVG(consumption_kwh),
	       MAX(consumption_kwh), MIN(consumption_kwh),
	       MIN(consumption_date), MAX(consumption_date)
	FROM daily_consumption
	`).Scan(&stats.TotalDays, &total, &avg, &max, &min, &first, &last)
	if err != nil {
		return nil, fmt.Errorf("querying statistics: %w", err)
	}
	stats.TotalKWh = total.Float64
	stats.AverageDaily = avg.Float64
	stats.MaxDaily = max.Float64
	stats.MinDaily = min.Float64
	stats.FirstDate = first.String
	stats.LastDate = last.String

	if stats.TotalDays > 0 {
		highest, err := db.extremeDays("DESC", 1)
		if err != nil {
			return nil, err
		}
		lowest, err := db.extremeDays("ASC", 1)
		if err != nil {
			return nil, err
		}
		if len(highest) > 0 {
			stats.HighestDay = &highest[0]
		}
		if len(lowest) > 0 {
			stats.LowestDay = &lowest[0]
		}
	}

	return &stats, nil
}

func (db *DB) extremeDays(direction string, n int) ([]models.DailyConsumption, error) {
	return db.queryDaily(`
	SELECT `+dailyColumns+` FROM daily_consumption
	ORDER BY consumption_kwh `+direction+` LIMIT ?
	`, n)
}

// HighestDays returns the n highest-consumption days
func (db *DB) HighestDays(n int) ([]models.DailyConsumption, error) {
	return db.extremeDays("DESC", n)
}

// LowestDays returns the n lowest-consumption days
func (db *DB) LowestDays(n int) ([]models.DailyConsumption, error) {
	return db.extremeDays("ASC", n)
}

// ListUnpublishedDaily retrieves daily records not yet published to Home Assistant
func (db *DB) ListUnpublishedDaily() ([]models.DailyConsumption, error) {
	return db.queryDaily(`
	SELECT ` + dailyColumns + ` FROM daily_consumption
	WHERE published = 0
	ORDER BY consumption_date
	`)
}

// MarkPublished marks a daily record as published
func (db *DB) MarkPublished(id int) error {
	_, err := db.conn.Exec(`UPDATE daily_consumption SET published = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("marking record as published: %w", err)
	}
	return nil
}
