package scraper

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jgoulah/carmascraper/pkg/models"
)

// Patterns for the chart configuration script embedded in a month page.
// Every field is independently optional; a page that matches none of
// them yields an empty Reading.
var (
	chartTitleRegex = regexp.MustCompile(`text:\s*'([^']*Daily Consumption[^']*)'`)
	locationRegex   = regexp.MustCompile(`for\s+(.+?)$`)
	monthYearRegex  = regexp.MustCompile(`During\s+(\w+)\s+(\d{4})`)
	subtitleRegex   = regexp.MustCompile(`subtitle:\s*{\s*text:\s*'([^']*)'`)
	meterRegex      = regexp.MustCompile(`Reading as of (.+) is ([\d.]+)\s*kWh`)
	categoriesRegex = regexp.MustCompile(`(?s)categories:\s*\[(.*?)\]`)
	quotedRegex     = regexp.MustCompile(`'([^']*)'`)
	seriesRegex     = regexp.MustCompile(`(?s)name:\s*'Daily Consumption',\s*data:\s*\[(.*?)\]`)
	yValueRegex     = regexp.MustCompile(`y:\s*([\d.]+)`)
)

// ExtractReading parses one rendered month page into a structured
// reading. Missing patterns leave fields empty; this never fails.
func ExtractReading(html string) models.Reading {
	reading := models.Reading{Unit: "kWh"}

	if m := chartTitleRegex.FindStringSubmatch(html); m != nil {
		reading.Title = m[1]
		if lm := locationRegex.FindStringSubmatch(reading.Title); lm != nil {
			reading.Location = strings.TrimSpace(lm[1])
		}
		if my := monthYearRegex.FindStringSubmatch(reading.Title); my != nil {
			reading.Month = my[1]
			reading.Year, _ = strconv.Atoi(my[2])
		}
	}

	if m := subtitleRegex.FindStringSubmatch(html); m != nil {
		reading.Subtitle = m[1]
		if rm := meterRegex.FindStringSubmatch(reading.Subtitle); rm != nil {
			// Kept as the raw textual date; resolved when saved
			reading.ReadingDate = rm[1]
			reading.MeterReading, _ = strconv.ParseFloat(rm[2], 64)
		}
	}

	if m := categoriesRegex.FindStringSubmatch(html); m != nil {
		for _, q := range quotedRegex.FindAllStringSubmatch(m[1], -1) {
			if q[1] != "" && strings.Contains(q[1], "/") {
				reading.Dates = append(reading.Dates, q[1])
			}
		}
	}

	if m := seriesRegex.FindStringSubmatch(html); m != nil {
		reading.Consumption = parseSeriesValues(m[1])
	}

	alignPairs(&reading)

	if len(reading.Consumption) > 0 {
		var total float64
		for _, v := range reading.Consumption {
			total += v
		}
		reading.TotalConsumption = total
		reading.AverageDaily = total / float64(len(reading.Consumption))
	}

	return reading
}

// parseSeriesValues handles the chart data array: entries are either bare
// numbers or object fragments carrying a y: field. Splitting on commas
// tears objects apart, so leftover pieces like color attributes fail the
// float parse and are skipped.
func parseSeriesValues(s string) []float64 {
	var values []float64

	for _, item := range strings.Split(s, ",") {
		item = strings.TrimSpace(item)
		if strings.Contains(item, "{") {
			if m := yValueRegex.FindStringSubmatch(item); m != nil {
				if v, err := strconv.ParseFloat(m[1], 64); err == nil {
					values = append(values, v)
				}
			}
			continue
		}
		if v, err := strconv.ParseFloat(item, 64); err == nil && v >= 0 {
			values = append(values, v)
		}
	}

	return values
}

// alignPairs zips dates and consumption to the shorter length and drops
// pairs whose date token doesn't parse into a real date, so the two
// sequences leave extraction index-aligned
func alignPairs(r *models.Reading) {
	n := len(r.Dates)
	if len(r.Consumption) < n {
		n = len(r.Consumption)
	}

	dates := make([]string, 0, n)
	values := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if _, err := models.ParseDayDate(r.Dates[i], r.Year); err != nil {
			continue
		}
		dates = append(dates, r.Dates[i])
		values = append(values, r.Consumption[i])
	}

	r.Dates = dates
	r.Consumption = values
}
