package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `<html><head><script type="text/javascript">
$(function () {
    $('#chart_container').highcharts({
        title: { text: 'Daily Consumption During March 2024 for Main House' },
        subtitle: { text: 'Reading as of Monday, 04 March 2024 is 1523.40 kWh' },
        xAxis: {
            categories: ['01/Mar', '02/Mar', '03/Mar']
        },
        series: [{
            name: 'Daily Consumption',
            data: [12.5, 0, 9.75]
        }]
    });
});
</script></head><body><div id="chart_container"></div></body></html>`

func TestExtractReading(t *testing.T) {
	reading := ExtractReading(samplePage)

	assert.Equal(t, "Daily Consumption During March 2024 for Main House", reading.Title)
	assert.Equal(t, "Main House", reading.Location)
	assert.Equal(t, "March", reading.Month)
	assert.Equal(t, 2024, reading.Year)
	assert.Equal(t, "kWh", reading.Unit)

	assert.Equal(t, "Reading as of Monday, 04 March 2024 is 1523.40 kWh", reading.Subtitle)
	assert.Equal(t, 1523.40, reading.MeterReading)
	assert.Equal(t, "Monday, 04 March 2024", reading.ReadingDate)
	assert.True(t, reading.HasMeterReading())

	assert.Equal(t, []string{"01/Mar", "02/Mar", "03/Mar"}, reading.Dates)
	assert.Equal(t, []float64{12.5, 0, 9.75}, reading.Consumption)
	assert.InDelta(t, 22.25, reading.TotalConsumption, 0.001)
	assert.InDelta(t, 22.25/3, reading.AverageDaily, 0.001)
}

func TestExtractReadingEmptyPage(t *testing.T) {
	reading := ExtractReading("<html><body>Object moved to here.</body></html>")

	assert.Empty(t, reading.Title)
	assert.Empty(t, reading.Location)
	assert.Empty(t, reading.Dates)
	assert.Empty(t, reading.Consumption)
	assert.Zero(t, reading.TotalConsumption)
	assert.False(t, reading.HasMeterReading())
	assert.Equal(t, "kWh", reading.Unit)
}

// Title without a meter subtitle still yields the month fields; the meter
// fields just stay zero.
func TestExtractReadingMissingSubtitle(t *testing.T) {
	page := `title: { text: 'Daily Consumption During January 2023 for Barn' },
		categories: ['01/Jan', '02/Jan'],
		series: [{ name: 'Daily Consumption', data: [3.2, 4.1] }]`

	reading := ExtractReading(page)

	assert.Equal(t, "Barn", reading.Location)
	assert.Equal(t, "January", reading.Month)
	assert.Equal(t, 2023, reading.Year)
	assert.False(t, reading.HasMeterReading())
	assert.Equal(t, []float64{3.2, 4.1}, reading.Consumption)
}

// Chart data points sometimes come as object literals carrying a y: field
// alongside bare numbers.
func TestExtractReadingObjectDataPoints(t *testing.T) {
	page := `title: { text: 'Daily Consumption During March 2024 for Main House' },
		categories: ['01/Mar', '02/Mar', '03/Mar'],
		series: [{ name: 'Daily Consumption', data: [12.5, { y: 18.2, color: '#FF0000' }, 9.0] }]`

	reading := ExtractReading(page)

	require.Len(t, reading.Consumption, 3)
	assert.Equal(t, []float64{12.5, 18.2, 9.0}, reading.Consumption)
	assert.InDelta(t, 39.7, reading.TotalConsumption, 0.001)
}

// Negative series values are junk and never become consumption records.
func TestExtractReadingRejectsNegativeValues(t *testing.T) {
	page := `title: { text: 'Daily Consumption During March 2024 for Main House' },
		categories: ['01/Mar', '02/Mar'],
		series: [{ name: 'Daily Consumption', data: [-1, 7.5] }]`

	reading := ExtractReading(page)

	require.Len(t, reading.Consumption, 1)
	assert.Equal(t, 7.5, reading.Consumption[0])
	for _, v := range reading.Consumption {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

// Dates and consumption leave extraction index-aligned: uneven lists are
// zipped to the shorter length, and a category token that is not a real
// date drops its paired value too.
func TestExtractReadingAlignsPairs(t *testing.T) {
	page := `title: { text: 'Daily Consumption During March 2024 for Main House' },
		categories: ['01/Mar', 'N/A', '03/Mar', '04/Mar'],
		series: [{ name: 'Daily Consumption', data: [1.0, 2.0, 3.0] }]`

	reading := ExtractReading(page)

	require.Equal(t, len(reading.Dates), len(reading.Consumption))
	assert.Equal(t, []string{"01/Mar", "03/Mar"}, reading.Dates)
	assert.Equal(t, []float64{1.0, 3.0}, reading.Consumption)
	assert.InDelta(t, 4.0, reading.TotalConsumption, 0.001)
	assert.InDelta(t, 2.0, reading.AverageDaily, 0.001)
}

func TestExtractMonthKey(t *testing.T) {
	key, ok := ExtractMonthKey(samplePage)
	require.True(t, ok)
	assert.Equal(t, "March", key.Month)
	assert.Equal(t, 2024, key.Year)
	assert.Equal(t, "March 2024", key.String())

	_, ok = ExtractMonthKey("<html><body>Server Error</body></html>")
	assert.False(t, ok)
}
