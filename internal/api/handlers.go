package api

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
)

// handleStatus reports database health and scheduling state
func (s *Server) handleStatus(c *fiber.Ctx) error {
	count, err := s.db.CountDaily()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "error", "message": err.Error(),
		})
	}

	_, latest, err := s.db.DateRange()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"status": "error", "message": err.Error(),
		})
	}

	resp := fiber.Map{
		"status":      "ok",
		"records":     count,
		"latest_date": latest,
		"auto_update": s.cfg.API.AutoUpdate,
		"update_hour": s.cfg.GetUpdateHour(),
	}
	if s.scheduler != nil {
		resp["next_update"] = s.scheduler.NextUpdate().Format("2006-01-02 15:04:05")
	}

	return c.JSON(resp)
}

// handleCurrent returns today's and yesterday's consumption plus the
// running month total and latest meter reading
func (s *Server) handleCurrent(c *fiber.Ctx) error {
	today := time.Now()
	yesterday := today.AddDate(0, 0, -1)

	todayRecord, err := s.db.GetDaily(today)
	if err != nil {
		return serverError(c, err)
	}
	yesterdayRecord, err := s.db.GetDaily(yesterday)
	if err != nil {
		return serverError(c, err)
	}
	monthTotal, err := s.db.MonthTotal(today)
	if err != nil {
		return serverError(c, err)
	}
	meterReading, err := s.db.LatestMeterReading()
	if err != nil {
		return serverError(c, err)
	}

	resp := fiber.Map{
		"today_kwh":       nil,
		"yesterday_kwh":   nil,
		"month_total_kwh": monthTotal,
		"unit":            "kWh",
	}
	if todayRecord != nil {
		resp["today_kwh"] = todayRecord.KWh
	}
	if yesterdayRecord != nil {
		resp["yesterday_kwh"] = yesterdayRecord.KWh
	}
	if meterReading != nil {
		resp["meter_reading"] = meterReading.Value
		resp["meter_reading_date"] = meterReading.Date.Format("2006-01-02")
	}

	return c.JSON(resp)
}

// handleDaily returns consumption for a specific date
func (s *Server) handleDaily(c *fiber.Ctx) error {
	date, err := time.Parse("2006-01-02", c.Params("date"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "date must be YYYY-MM-DD",
		})
	}

	record, err := s.db.GetDaily(date)
	if err != nil {
		return serverError(c, err)
	}
	if record == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No data for this date",
		})
	}

	return c.JSON(fiber.Map{
		"date":            record.Date.Format("2006-01-02"),
		"consumption_kwh": record.KWh,
		"month":           record.Month,
		"year":            record.Year,
		"location":        record.Location,
	})
}

// handleMonthly returns the summary and daily detail for one month
func (s *Server) handleMonthly(c *fiber.Ctx) error {
	year, err := c.ParamsInt("year")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "year must be numeric",
		})
	}
	month := c.Params("month")

	summary, err := s.db.GetSummary(month, year)
	if err != nil {
		return serverError(c, err)
	}
	if summary == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "No data for this month",
		})
	}

	daily, err := s.db.ListDailyForMonth(month, year)
	if err != nil {
		return serverError(c, err)
	}

	days := make([]fiber.Map, 0, len(daily))
	for _, d := range daily {
		days = append(days, fiber.Map{
			"date": d.Date.Format("2006-01-02"),
			"kwh":  d.KWh,
		})
	}

	return c.JSON(fiber.Map{
		"year":              summary.Year,
		"month":             summary.Month,
		"total_kwh":         summary.Total,
		"average_daily_kwh": summary.AverageDaily,
		"days":              summary.DaysCount,
		"location":          summary.Location,
		"daily":             days,
	})
}

// handleRange returns consumption over an arbitrary date range
func (s *Server) handleRange(c *fiber.Ctx) error {
	startStr := c.Query("start")
	endStr := c.Query("end")
	if startStr == "" || endStr == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "start and end dates required",
		})
	}

	start, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "start must be YYYY-MM-DD",
		})
	}
	end, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "end must be YYYY-MM-DD",
		})
	}

	records, err := s.db.ListDaily(&start, &end)
	if err != nil {
		return serverError(c, err)
	}

	var total float64
	days := make([]fiber.Map, 0, len(records))
	for _, d := range records {
		total += d.KWh
		days = append(days, fiber.Map{
			"date": d.Date.Format("2006-01-02"),
			"kwh":  d.KWh,
		})
	}

	avg := 0.0
	if len(records) > 0 {
		avg = total / float64(len(records))
	}

	return c.JSON(fiber.Map{
		"start_date":        startStr,
		"end_date":          endStr,
		"total_kwh":         total,
		"average_daily_kwh": avg,
		"days":              len(records),
		"daily":             days,
	})
}

// handleStatistics returns overall store-wide statistics
func (s *Server) handleStatistics(c *fiber.Ctx) error {
	stats, err := s.db.GetStatistics()
	if err != nil {
		return serverError(c, err)
	}

	resp := fiber.Map{
		"total_days":            stats.TotalDays,
		"total_consumption_kwh": stats.TotalKWh,
		"average_daily_kwh":     stats.AverageDaily,
		"max_daily_kwh":         stats.MaxDaily,
		"min_daily_kwh":         stats.MinDaily,
		"date_range": fiber.Map{
			"first": stats.FirstDate,
			"last":  stats.LastDate,
		},
	}
	if stats.HighestDay != nil {
		resp["highest_day"] = fiber.Map{
			"date": stats.HighestDay.Date.Format("2006-01-02"),
			"kwh":  stats.HighestDay.KWh,
		}
	}
	if stats.LowestDay != nil {
		resp["lowest_day"] = fiber.Map{
			"date": stats.LowestDay.Date.Format("2006-01-02"),
			"kwh":  stats.LowestDay.KWh,
		}
	}

	return c.JSON(resp)
}

// handleUpdate triggers a scrape run in the background
func (s *Server) handleUpdate(c *fiber.Ctx) error {
	if s.runner.Busy() {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"status":  "busy",
			"message": "A scrape run is already in progress",
		})
	}

	go func() {
		if err := s.runner.TryRun(context.Background()); err != nil {
			log.Printf("Triggered scrape failed: %v", err)
		}
	}()

	return c.JSON(fiber.Map{
		"status":  "update started",
		"message": "Data update initiated in background",
	})
}

func serverError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}
