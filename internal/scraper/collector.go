package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jgoulah/carmascraper/internal/config"
	"github.com/jgoulah/carmascraper/internal/database"
	"github.com/jgoulah/carmascraper/pkg/models"
)

// maxEmptyMonths is how many consecutive empty months stop a run
// when stop-on-empty is enabled
const maxEmptyMonths = 3

// Collector drives historical collection: one login, then backward month
// by month, reconciling every extracted page into the database. Requests
// are strictly sequential; the portal keeps a single month cursor per
// session and concurrent navigation would corrupt it.
type Collector struct {
	session *Session
	db      *database.DB

	MonthsBack    int
	StopOnEmpty   bool
	PauseInterval int
	PauseDuration time.Duration
	StepDelay     time.Duration
	RetryDelay    time.Duration

	processedMonths map[models.MonthKey]bool
	monthsCollected int
}

// NewCollector creates a collector with pacing taken from config
func NewCollector(session *Session, db *database.DB, cfg *config.Config) *Collector {
	return &Collector{
		session:         session,
		db:              db,
		MonthsBack:      cfg.GetMonthsBack(),
		StopOnEmpty:     cfg.GetStopOnEmpty(),
		PauseInterval:   cfg.GetPauseInterval(),
		PauseDuration:   cfg.GetPauseDuration(),
		StepDelay:       cfg.GetStepDelay(),
		RetryDelay:      cfg.GetRetryDelay(),
		processedMonths: make(map[models.MonthKey]bool),
	}
}

// MonthsCollected returns how many months the last run persisted
func (c *Collector) MonthsCollected() int {
	return c.monthsCollected
}

// Run collects up to MonthsBack months of history. Only an
// authentication failure or a dead navigation path ends the run early;
// failures local to one month are logged and skipped.
func (c *Collector) Run(ctx context.Context) error {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("STARTING HISTORICAL DATA COLLECTION")
	fmt.Println(strings.Repeat("=", 60) + "\n")

	ok, err := c.session.Login(ctx)
	if err != nil {
		return fmt.Errorf("logging in: %w", err)
	}
	if !ok {
		return ErrLoginFailed
	}

	emptyMonths := 0

	// The landing view after forward alignment is the first data point
	if key, ok := c.session.CurrentMonth(); ok {
		c.processMonth(key, &emptyMonths)
	}

loop:
	for monthNum := 1; monthNum < c.MonthsBack; monthNum++ {
		if c.StopOnEmpty && emptyMonths >= maxEmptyMonths {
			fmt.Printf("\nStopped after %d consecutive empty months\n", emptyMonths)
			break
		}

		c.pace(monthNum)

		result := c.session.StepBack(ctx)
		switch result {
		case StepRetry:
			if c.retryStepBack(ctx) != StepOK {
				// Skip past bad server state rather than aborting;
				// observed 500s are usually isolated to one postback
				fmt.Println("\nCould not navigate past server errors")
				continue
			}
		case StepFailed:
			fmt.Println("\nCould not navigate further back")
			break loop
		}

		key, ok := c.session.CurrentMonth()
		if !ok {
			fmt.Println("\nCould not determine current month")
			break
		}

		if c.processedMonths[key] {
			fmt.Printf("\n📅 %s - Already processed, skipping...\n", key)
			continue
		}

		c.processMonth(key, &emptyMonths)
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("HISTORICAL DATA COLLECTION COMPLETE")
	fmt.Println(strings.Repeat("=", 60))
	fmt.Printf("\n✓ Collected data for %d of %d requested months\n", c.monthsCollected, c.MonthsBack)

	c.printStoreSummary()

	return nil
}

// retryStepBack escalates a transient failure: wait and retry once, then
// wait twice as long and retry once more. At most two retries happen
// before the month is given up on.
func (c *Collector) retryStepBack(ctx context.Context) StepResult {
	fmt.Printf("  ⏳ Waiting %s before retrying due to server error...\n", c.RetryDelay)
	c.sleep(c.RetryDelay)

	if result := c.session.StepBack(ctx); result == StepOK {
		fmt.Println("  ✓ Retry successful, continuing...")
		return StepOK
	}

	fmt.Println("  ⚠ Retry failed, trying once more...")
	c.sleep(2 * c.RetryDelay)

	if result := c.session.StepBack(ctx); result == StepOK {
		fmt.Println("  ✓ Retry successful, continuing...")
		return StepOK
	}

	return StepFailed
}

// pace sleeps between navigation steps: a short delay normally, a longer
// configurable pause every PauseInterval months so the server can catch up
func (c *Collector) pace(monthNum int) {
	if c.PauseInterval > 0 && monthNum%c.PauseInterval == 0 {
		fmt.Printf("\n⏸ Pausing for %s after %d months to let the server catch up...\n",
			c.PauseDuration, monthNum)
		c.sleep(c.PauseDuration)
		return
	}
	c.sleep(c.StepDelay)
}

func (c *Collector) sleep(d time.Duration) {
	if d > 0 {
		time.Sleep(d)
	}
}

// processMonth extracts the current view and reconciles it into storage.
// Persistence failures are reported but don't end the run.
func (c *Collector) processMonth(key models.MonthKey, emptyMonths *int) {
	fmt.Printf("\n📅 Processing %s...\n", key)

	reading := ExtractReading(c.session.CurrentPage())
	if len(reading.Consumption) == 0 {
		fmt.Println("  No consumption data found")
		*emptyMonths++
		return
	}

	fmt.Printf("  Found %d days of data\n", len(reading.Consumption))
	fmt.Printf("  Total: %.2f kWh\n", reading.TotalConsumption)

	saved, result, err := c.db.SaveReading(&reading)
	if err != nil {
		fmt.Printf("    ✗ Database error: %v\n", err)
	} else if saved {
		fmt.Printf("    ✓ %d new, %d updated records\n", result.Inserted, result.Updated)
	}

	c.processedMonths[key] = true
	c.monthsCollected++
	*emptyMonths = 0
}

// printStoreSummary reports store-wide totals regardless of any partial
// failures encountered along the way
func (c *Collector) printStoreSummary() {
	count, err := c.db.CountDaily()
	if err != nil {
		fmt.Printf("  ⚠ Could not summarize database: %v\n", err)
		return
	}

	fmt.Println("\n📊 DATABASE SUMMARY")
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Total daily records: %s\n", humanize.Comma(int64(count)))

	first, last, err := c.db.DateRange()
	if err == nil && first != "" {
		fmt.Printf("Date range: %s to %s\n", first, last)
	}

	summaries, err := c.db.ListSummaries()
	if err != nil || len(summaries) == 0 {
		return
	}

	fmt.Printf("\nMonths collected (%d total):\n", len(summaries))
	var totalKWh float64
	for _, s := range summaries {
		fmt.Printf("  • %s %d: %.2f kWh\n", s.Month, s.Year, s.Total)
		totalKWh += s.Total
	}
	fmt.Printf("\nTotal consumption: %s kWh\n", humanize.CommafWithDigits(totalKWh, 2))
}
