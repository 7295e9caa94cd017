package api

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/jgoulah/carmascraper/internal/config"
	"github.com/jgoulah/carmascraper/internal/database"
)

// Server exposes read-only consumption queries and a manual re-scrape
// trigger over HTTP. All writes still flow through the collector; the
// API only guarantees consistent reads of what the collector stored.
type Server struct {
	app       *fiber.App
	db        *database.DB
	cfg       *config.Config
	runner    *Runner
	scheduler *Scheduler
}

// New creates the API server. The scheduler is started only when
// auto-update is enabled in config.
func New(cfg *config.Config, db *database.DB, runner *Runner) *Server {
	app := fiber.New(fiber.Config{
		AppName: "carmascraper",
	})

	s := &Server{
		app:    app,
		db:     db,
		cfg:    cfg,
		runner: runner,
	}

	if cfg.API.AutoUpdate {
		s.scheduler = NewScheduler(cfg.GetUpdateHour(), runner)
	}

	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	api := s.app.Group("/api")

	api.Get("/status", s.handleStatus)
	api.Get("/current", s.handleCurrent)
	api.Get("/daily/:date", s.handleDaily)
	api.Get("/monthly/:year/:month", s.handleMonthly)
	api.Get("/range", s.handleRange)
	api.Get("/statistics", s.handleStatistics)
	api.Post("/update", s.handleUpdate)
}

// App exposes the fiber app for tests
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the scheduler (when configured) and listens for requests
func (s *Server) Run() error {
	if s.scheduler != nil {
		log.Printf("Starting auto-update (daily at %02d:00)", s.cfg.GetUpdateHour())
		s.scheduler.Start()
		defer s.scheduler.Stop()
	}

	log.Printf("Starting API server on %s", s.cfg.GetListen())
	return s.app.Listen(s.cfg.GetListen())
}
