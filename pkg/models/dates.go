package models

import (
	"fmt"
	"strings"
	"time"
)

// MeterDateFormat is the long-form date the portal prints in the
// "Reading as of ..." subtitle, e.g. "Monday, 04 March 2024"
const MeterDateFormat = "Monday, 02 January 2006"

// ParseDayDate parses a chart axis date token like "01/Mar", combining it
// with the year taken from the page title. Tokens that already carry a
// year ("01/Mar/2024") are handled as a fallback.
func ParseDayDate(token string, year int) (time.Time, error) {
	token = strings.TrimSpace(token)

	if t, err := time.Parse("02/Jan/2006", fmt.Sprintf("%s/%d", token, year)); err == nil {
		return t, nil
	}
	if t, err := time.Parse("02/Jan/2006", token); err == nil {
		return t, nil
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", token)
}
