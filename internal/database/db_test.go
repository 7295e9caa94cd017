package database

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/jgoulah/carmascraper/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func marchReading() *models.Reading {
	return &models.Reading{
		Title:            "Daily Consumption During March 2024 for Main House",
		Location:         "Main House",
		Month:            "March",
		Year:             2024,
		Dates:            []string{"01/Mar", "02/Mar", "03/Mar"},
		Consumption:      []float64{12.5, 0, 9.75},
		MeterReading:     1523.40,
		ReadingDate:      "Monday, 04 March 2024",
		TotalConsumption: 22.25,
		AverageDaily:     22.25 / 3,
		Unit:             "kWh",
	}
}

func TestSaveReading(t *testing.T) {
	db := newTestDB(t)

	saved, result, err := db.SaveReading(marchReading())
	require.NoError(t, err)
	require.True(t, saved)

	// The zero for 02/Mar never becomes a record
	assert.Equal(t, 2, result.Inserted)
	assert.Equal(t, 0, result.Updated)

	count, err := db.CountDaily()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	record, err := db.GetDaily(time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 12.5, record.KWh)
	assert.Equal(t, "Main House", record.Location)
	assert.Equal(t, "March", record.Month)
	assert.Equal(t, 2024, record.Year)

	missing, err := db.GetDaily(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestSaveReadingEmpty(t *testing.T) {
	db := newTestDB(t)

	saved, result, err := db.SaveReading(&models.Reading{Month: "March", Year: 2024})
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Nil(t, result)

	count, err := db.CountDaily()
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

// A stored positive value survives a later zero extraction; a later
// positive extraction replaces it.
func TestSaveReadingNonRegression(t *testing.T) {
	db := newTestDB(t)

	first := marchReading()
	first.Dates = []string{"05/Mar"}
	first.Consumption = []float64{8.0}
	_, _, err := db.SaveReading(first)
	require.NoError(t, err)

	zeroed := marchReading()
	zeroed.Dates = []string{"05/Mar", "06/Mar"}
	zeroed.Consumption = []float64{0, 0}
	saved, result, err := db.SaveReading(zeroed)
	require.NoError(t, err)
	require.True(t, saved)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 0, result.Updated)

	record, err := db.GetDaily(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 8.0, record.KWh)

	corrected := marchReading()
	corrected.Dates = []string{"05/Mar"}
	corrected.Consumption = []float64{9.2}
	_, result, err = db.SaveReading(corrected)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Updated)

	record, err = db.GetDaily(time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 9.2, record.KWh)
}

func TestSaveReadingIdempotent(t *testing.T) {
	db := newTestDB(t)

	_, _, err := db.SaveReading(marchReading())
	require.NoError(t, err)

	saved, result, err := db.SaveReading(marchReading())
	require.NoError(t, err)
	require.True(t, saved)
	assert.Equal(t, 0, result.Inserted)
	assert.Equal(t, 0, result.Updated)

	count, err := db.CountDaily()
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	scrapes, err := db.CountHistory("March", 2024, "Main House")
	require.NoError(t, err)
	assert.Equal(t, 1, scrapes)
}

func TestSaveReadingUnparseableDates(t *testing.T) {
	db := newTestDB(t)

	reading := marchReading()
	reading.Dates = []string{"garbage", "02/Mar"}
	reading.Consumption = []float64{5.0, 6.0}

	_, result, err := db.SaveReading(reading)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Inserted)

	record, err := db.GetDaily(time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, 6.0, record.KWh)
}

func TestMeterReadings(t *testing.T) {
	db := newTestDB(t)

	none, err := db.LatestMeterReading()
	require.NoError(t, err)
	assert.Nil(t, none)

	_, _, err = db.SaveReading(marchReading())
	require.NoError(t, err)

	reading, err := db.LatestMeterReading()
	require.NoError(t, err)
	require.NotNil(t, reading)
	assert.Equal(t, 1523.40, reading.Value)
	assert.Equal(t, "kWh", reading.Unit)
	assert.Equal(t, "Main House", reading.Location)
	assert.Equal(t, "2024-03-04", reading.Date.Format("2006-01-02"))
}

// An unparseable subtitle date skips the meter write without failing the
// rest of the reading.
func TestMeterReadingBadDate(t *testing.T) {
	db := newTestDB(t)

	reading := marchReading()
	reading.ReadingDate = "sometime in March"

	saved, _, err := db.SaveReading(reading)
	require.NoError(t, err)
	require.True(t, saved)

	none, err := db.LatestMeterReading()
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestSummaries(t *testing.T) {
	db := newTestDB(t)

	_, _, err := db.SaveReading(marchReading())
	require.NoError(t, err)

	feb := marchReading()
	feb.Month = "February"
	feb.Dates = []string{"01/Feb"}
	feb.Consumption = []float64{10.0}
	feb.TotalConsumption = 10.0
	feb.AverageDaily = 10.0
	_, _, err = db.SaveReading(feb)
	require.NoError(t, err)

	summary, err := db.GetSummary("March", 2024)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 22.25, summary.Total)
	assert.Equal(t, 3, summary.DaysCount)

	missing, err := db.GetSummary("March", 2020)
	require.NoError(t, err)
	assert.Nil(t, missing)

	summaries, err := db.ListSummaries()
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "March", summaries[0].Month, "most recent month first")
	assert.Equal(t, "February", summaries[1].Month)
}

// The summary rollup is replaced wholesale by each save, never merged.
func TestSummaryReplaced(t *testing.T) {
	db := newTestDB(t)

	_, _, err := db.SaveReading(marchReading())
	require.NoError(t, err)

	fuller := marchReading()
	fuller.Dates = append(fuller.Dates, "04/Mar")
	fuller.Consumption = append(fuller.Consumption, 5.0)
	fuller.TotalConsumption = 27.25
	fuller.AverageDaily = 27.25 / 4
	_, _, err = db.SaveReading(fuller)
	require.NoError(t, err)

	summary, err := db.GetSummary("March", 2024)
	require.NoError(t, err)
	require.NotNil(t, summary)
	assert.Equal(t, 27.25, summary.Total)
	assert.Equal(t, 4, summary.DaysCount)
}

func TestListDaily(t *testing.T) {
	db := newTestDB(t)

	_, _, err := db.SaveReading(marchReading())
	require.NoError(t, err)

	all, err := db.ListDaily(nil, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.True(t, all[0].Date.Before(all[1].Date), "ordered by date")

	start := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	bounded, err := db.ListDaily(&start, nil)
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	assert.Equal(t, 9.75, bounded[0].KWh)

	month, err := db.ListDailyForMonth("March", 2024)
	require.NoError(t, err)
	assert.Len(t, month, 2)

	first, last, err := db.DateRange()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-01", first)
	assert.Equal(t, "2024-03-03", last)

	total, err := db.MonthTotal(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.InDelta(t, 22.25, total, 0.001)
}

func TestStatistics(t *testing.T) {
	db := newTestDB(t)

	empty, err := db.GetStatistics()
	require.NoError(t, err)
	assert.Equal(t, 0, empty.TotalDays)
	assert.Nil(t, empty.HighestDay)

	_, _, err = db.SaveReading(marchReading())
	require.NoError(t, err)

	stats, err := db.GetStatistics()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalDays)
	assert.InDelta(t, 22.25, stats.TotalKWh, 0.001)
	assert.Equal(t, 12.5, stats.MaxDaily)
	assert.Equal(t, 9.75, stats.MinDaily)
	require.NotNil(t, stats.HighestDay)
	assert.Equal(t, "2024-03-01", stats.HighestDay.Date.Format("2006-01-02"))
	require.NotNil(t, stats.LowestDay)
	assert.Equal(t, "2024-03-03", stats.LowestDay.Date.Format("2006-01-02"))

	high, err := db.HighestDays(1)
	require.NoError(t, err)
	require.Len(t, high, 1)
	assert.Equal(t, 12.5, high[0].KWh)
}

func TestPublishedTracking(t *testing.T) {
	db := newTestDB(t)

	_, _, err := db.SaveReading(marchReading())
	require.NoError(t, err)

	unpublished, err := db.ListUnpublishedDaily()
	require.NoError(t, err)
	require.Len(t, unpublished, 2)

	require.NoError(t, db.MarkPublished(unpublished[0].ID))

	remaining, err := db.ListUnpublishedDaily()
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, unpublished[1].ID, remaining[0].ID)

	all, err := db.ListDaily(nil, nil)
	require.NoError(t, err)
	assert.Len(t, all, 2, "published records still list normally")
}
