package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jgoulah/carmascraper/pkg/models"
)

// SaveResult reports what a SaveReading call changed
type SaveResult struct {
	Inserted int
	Updated  int
}

// SaveReading merges one extracted month into storage inside a single
// transaction. Daily values follow the non-regression policy: a zero
// never creates a record and never overwrites a stored positive value.
// Returns false when the reading carried no consumption data at all.
func (db *DB) SaveReading(reading *models.Reading) (bool, *SaveResult, error) {
	if len(reading.Consumption) == 0 {
		return false, nil, nil
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return false, nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := saveMeterReading(tx, reading); err != nil {
		return false, nil, err
	}

	result, err := saveDailyRecords(tx, reading)
	if err != nil {
		return false, nil, err
	}

	if err := saveSummary(tx, reading); err != nil {
		return false, nil, err
	}

	if err := saveHistory(tx, reading); err != nil {
		return false, nil, err
	}

	if err := tx.Commit(); err != nil {
		return false, nil, fmt.Errorf("committing reading: %w", err)
	}

	return true, result, nil
}

// saveMeterReading upserts the cumulative register value when both the
// value and a parseable long-form date are present. An unparseable date
// just skips the write.
func saveMeterReading(tx *sql.Tx, reading *models.Reading) error {
	if !reading.HasMeterReading() {
		return nil
	}

	readingDate, err := time.Parse(models.MeterDateFormat, reading.ReadingDate)
	if err != nil {
		return nil
	}

	unit := reading.Unit
	if unit == "" {
		unit = "kWh"
	}

	_, err = tx.Exec(`
	INSERT OR REPLACE INTO meter_readings (reading_date, meter_value, unit, location)
	VALUES (?, ?, ?, ?)
	`, readingDate.Format("2006-01-02"), reading.MeterReading, unit, reading.Location)
	if err != nil {
		return fmt.Errorf("saving meter reading: %w", err)
	}

	return nil
}

func saveDailyRecords(tx *sql.Tx, reading *models.Reading) (*SaveResult, error) {
	result := &SaveResult{}

	// Zip to the shorter length; the two lists are filtered independently
	// during extraction and can end up uneven
	n := len(reading.Dates)
	if len(reading.Consumption) < n {
		n = len(reading.Consumption)
	}

	for i := 0; i < n; i++ {
		date, err := models.ParseDayDate(reading.Dates[i], reading.Year)
		if err != nil {
			continue
		}
		dateStr := date.Format("2006-01-02")
		consumption := reading.Consumption[i]

		var existingID int
		var existingKWh float64
		err = tx.QueryRow(`
		SELECT id, consumption_kwh FROM daily_consumption
		WHERE consumption_date = ? AND location = ?
		`, dateStr, reading.Location).Scan(&existingID, &existingKWh)

		switch {
		case err == sql.ErrNoRows:
			// Only create a record for a non-zero value; a zero is
			// ambiguous between true zero usage and no data yet
			if consumption > 0 {
				_, err := tx.Exec(`
				INSERT INTO daily_consumption (consumption_date, consumption_kwh, location, month, year)
				VALUES (?, ?, ?, ?, ?)
				`, dateStr, consumption, reading.Location, reading.Month, reading.Year)
				if err != nil {
					return nil, fmt.Errorf("inserting daily record %s: %w", dateStr, err)
				}
				result.Inserted++
			}
		case err != nil:
			return nil, fmt.Errorf("checking daily record %s: %w", dateStr, err)
		default:
			// Never regress a stored positive value to zero
			if consumption > 0 && consumption != existingKWh {
				_, err := tx.Exec(`
				UPDATE daily_consumption
				SET consumption_kwh = ?, month = ?, year = ?, updated_at = CURRENT_TIMESTAMP
				WHERE id = ?
				`, consumption, reading.Month, reading.Year, existingID)
				if err != nil {
					return nil, fmt.Errorf("updating daily record %s: %w", dateStr, err)
				}
				result.Updated++
			}
		}
	}

	return result, nil
}

// saveSummary fully replaces the monthly rollup with the freshly
// computed totals, never merges incrementally
func saveSummary(tx *sql.Tx, reading *models.Reading) error {
	_, err := tx.Exec(`
	INSERT OR REPLACE INTO consumption_summary
	(month, year, total_consumption, average_daily, days_count, location, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, reading.Month, reading.Year, reading.TotalConsumption, reading.AverageDaily,
		len(reading.Consumption), reading.Location)
	if err != nil {
		return fmt.Errorf("saving monthly summary: %w", err)
	}
	return nil
}

func saveHistory(tx *sql.Tx, reading *models.Reading) error {
	_, err := tx.Exec(`
	INSERT OR REPLACE INTO scraping_history (month, year, location, records_count, scrape_date)
	VALUES (?, ?, ?, ?, CURRENT_TIMESTAMP)
	`, reading.Month, reading.Year, reading.Location, len(reading.Consumption))
	if err != nil {
		return fmt.Errorf("recording scrape history: %w", err)
	}
	return nil
}
