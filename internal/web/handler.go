package web

import (
	"fmt"
	"strconv"
	"time"

	"github.com/actionsum/meetnotes/internal/config"
	"github.com/actionsum/meetnotes/internal/models"
	"github.com/actionsum/meetnotes/internal/monitor"
	"github.com/actionsum/meetnotes/internal/reporter"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	defaultHistoryHours = 24
	// maxHistoryHours keeps the window well inside time.Duration's range
	maxHistoryHours = 24 * 366
)

// Store is the read side of the dispatch history
type Store interface {
	reporter.Store
	GetDispatchesSince(since time.Time) ([]*models.DispatchEvent, error)
	GetSessionsSince(since time.Time) ([]*models.MeetingSession, error)
	GetLatestDispatch() (*models.DispatchEvent, error)
}

// StatusProvider exposes the state of the running monitor
type StatusProvider interface {
	Status() monitor.Status
}

type Handler struct {
	config   *config.Configuration
	store    Store
	reporter *reporter.Reporter
	monitor  StatusProvider
	logger   *zap.SugaredLogger
	now      func() time.Time
}

// NewHandler creates the API handlers. mon may be nil when no monitor runs
// in this process.
func NewHandler(cfg *config.Configuration, store Store, mon StatusProvider, logger *zap.SugaredLogger) *Handler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &Handler{
		config:   cfg,
		store:    store,
		reporter: reporter.New(store),
		monitor:  mon,
		logger:   logger,
		now:      time.Now,
	}
}

func (h *Handler) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	api.Get("/health", h.handleHealth)
	api.Get("/status", h.handleStatus)
	api.Get("/report/:period", h.handleReport)
	api.Get("/dispatches", h.handleDispatches)
	api.Get("/sessions", h.handleSessions)
}

func (h *Handler) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "healthy",
		"time":   h.now().Format(time.RFC3339),
	})
}

func (h *Handler) handleStatus(c *fiber.Ctx) error {
	status := fiber.Map{
		"meeting_apps":  h.config.MeetingApps,
		"poll_interval": h.config.Monitor.PollInterval.String(),
		"match_mode":    h.config.Monitor.MatchMode,
		"dispatch_mode": h.config.Monitor.DispatchMode,
		"deep_link":     h.config.Dispatch.DeepLink,
	}

	if h.monitor != nil {
		status["monitor"] = h.monitor.Status()
	}

	latest, err := h.store.GetLatestDispatch()
	if err != nil {
		h.logger.Warnf("Failed to fetch latest dispatch: %v", err)
	} else if latest != nil {
		status["latest_dispatch"] = latest
	}

	return c.JSON(status)
}

func (h *Handler) handleReport(c *fiber.Ctx) error {
	report, err := h.reporter.GenerateReport(c.Params("period"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(report)
}

func (h *Handler) handleDispatches(c *fiber.Ctx) error {
	since, err := h.since(c)
	if err != nil {
		return err
	}

	events, err := h.store.GetDispatchesSince(since)
	if err != nil {
		h.logger.Errorf("Failed to fetch dispatches: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch dispatches"})
	}
	if events == nil {
		events = []*models.DispatchEvent{}
	}

	return c.JSON(events)
}

func (h *Handler) handleSessions(c *fiber.Ctx) error {
	since, err := h.since(c)
	if err != nil {
		return err
	}

	sessions, err := h.store.GetSessionsSince(since)
	if err != nil {
		h.logger.Errorf("Failed to fetch sessions: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch sessions"})
	}
	if sessions == nil {
		sessions = []*models.MeetingSession{}
	}

	return c.JSON(sessions)
}

// since reads the hours query parameter
func (h *Handler) since(c *fiber.Ctx) (time.Time, error) {
	hours := defaultHistoryHours
	if raw := c.Query("hours"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return time.Time{}, fiber.NewError(fiber.StatusBadRequest, "hours must be a positive integer")
		}
		if n > maxHistoryHours {
			return time.Time{}, fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("hours must not exceed %d", maxHistoryHours))
		}
		hours = n
	}
	return h.now().Add(-time.Duration(hours) * time.Hour), nil
}
