package scraper

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/jgoulah/carmascraper/pkg/models"
)

// maxForwardSteps bounds post-login forward alignment
const maxForwardSteps = 12

// StepResult is the outcome of a backward navigation step
type StepResult int

const (
	// StepOK means the view advanced to a new month
	StepOK StepResult = iota
	// StepRetry means the server returned a transient error worth retrying
	StepRetry
	// StepFailed means the step failed and should not be retried
	StepFailed
)

func (r StepResult) String() string {
	switch r {
	case StepOK:
		return "ok"
	case StepRetry:
		return "retry"
	default:
		return "failed"
	}
}

var monthTitleRegex = regexp.MustCompile(`Daily Consumption During\s+(\w+)\s+(\d{4})`)

// ExtractMonthKey derives which month/year a rendered page is displaying
func ExtractMonthKey(html string) (models.MonthKey, bool) {
	m := monthTitleRegex.FindStringSubmatch(html)
	if m == nil {
		return models.MonthKey{}, false
	}
	year, err := strconv.Atoi(m[2])
	if err != nil {
		return models.MonthKey{}, false
	}
	return models.MonthKey{Month: m[1], Year: year}, true
}

// CurrentMonth returns the month displayed by the current view
func (s *Session) CurrentMonth() (models.MonthKey, bool) {
	return ExtractMonthKey(s.currentPage)
}

// forwardAlign steps forward until the view shows the real-world current
// month, the "next month" control disappears or is disabled, or the step
// bound is hit. Runs once, right after login; the landing view can lag
// behind when the last session ended on an older month.
func (s *Session) forwardAlign(ctx context.Context) {
	for attempts := 0; attempts < maxForwardSteps; attempts++ {
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(s.currentPage))
		if err != nil {
			return
		}

		btn := doc.Find("input[name=nextMonth_btn]")
		if btn.Length() == 0 {
			return
		}
		if _, disabled := btn.Attr("disabled"); disabled {
			fmt.Println("  ✓ Reached most recent month available")
			return
		}

		if key, ok := s.CurrentMonth(); ok {
			now := time.Now()
			if key.Year == now.Year() && key.Month == now.Month().String() {
				fmt.Printf("  ✓ Already at current month: %s\n", key)
				return
			}
		}

		fmt.Println("  → Navigating to current month...")
		res, err := s.postback(ctx, "nextMonth_btn", "Next Month")
		if err != nil || res.StatusCode() != http.StatusOK {
			fmt.Println("  ⚠ Could not navigate forward")
			return
		}
		s.currentPage = string(res.Body())
	}

	fmt.Printf("  ⚠ Stopped after %d forward steps\n", maxForwardSteps)
}

// StepBack navigates the view one month backward. The current view is
// replaced on any HTTP 200; a 200 whose body shows no recognizable month
// is reported as a failure so silent no-op responses don't loop forever.
// Transport errors are captured, not propagated.
func (s *Session) StepBack(ctx context.Context) StepResult {
	fmt.Println("  → Navigating to previous month...")

	res, err := s.postback(ctx, "prevMonth_btn", "Prev Month")
	if err != nil {
		fmt.Printf("  ✗ Navigation error: %v\n", err)
		return StepFailed
	}

	switch res.StatusCode() {
	case http.StatusOK:
		s.currentPage = string(res.Body())
		if _, ok := ExtractMonthKey(s.currentPage); !ok {
			fmt.Println("  ✗ Month didn't change")
			return StepFailed
		}
		return StepOK
	case http.StatusInternalServerError:
		fmt.Println("  ⚠ Server error (500) - will retry after delay")
		return StepRetry
	default:
		fmt.Printf("  ✗ Navigation failed with status %d\n", res.StatusCode())
		return StepFailed
	}
}
