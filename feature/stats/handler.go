package stats

import (
	"errors"
	"strings"
	"time"

	"ixp-tracker/core/logger"
	"ixp-tracker/core/utils"
	"ixp-tracker/feature/country"
	"ixp-tracker/feature/tracker/store"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for statistics.
type Handler struct {
	service *Service
	clock   clockwork.Clock
	logger  *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(service *Service, clock clockwork.Clock, logger *zap.Logger) *Handler {
	return &Handler{service: service, clock: clock, logger: logger}
}

// RegisterRoutes registers the stats routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	group := app.Group("/stats")
	group.Get("/exchanges", h.HandleExchanges)
	group.Get("/countries", h.HandleCountries)
	group.Get("/countries/:code", h.HandleCountry)
}

// month reads ?month=YYYY-MM, defaulting to the current month.
func (h *Handler) month(c *fiber.Ctx) (time.Time, error) {
	raw := c.Query("month")
	if raw == "" {
		return utils.StartOfMonth(h.clock.Now()), nil
	}
	return utils.ParseMonth(raw)
}

func badMonth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "month must be YYYY-MM"})
}

// queryFailed answers a failed query. The cause is logged, never returned.
func queryFailed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

// HandleExchanges returns the per-exchange snapshot of a month.
func (h *Handler) HandleExchanges(c *fiber.Ctx) error {
	month, err := h.month(c)
	if err != nil {
		return badMonth(c)
	}
	rows, err := h.service.Exchanges(c.Context(), month)
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Exchange stats query failed", zap.Error(err))
		return queryFailed(c)
	}
	return c.JSON(rows)
}

// HandleCountries returns the per-country snapshot of a month.
func (h *Handler) HandleCountries(c *fiber.Ctx) error {
	month, err := h.month(c)
	if err != nil {
		return badMonth(c)
	}
	rows, err := h.service.Countries(c.Context(), month)
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Country stats query failed", zap.Error(err))
		return queryFailed(c)
	}
	return c.JSON(rows)
}

// HandleCountry returns the snapshot of one country for a month.
func (h *Handler) HandleCountry(c *fiber.Ctx) error {
	code := strings.ToUpper(c.Params("code"))
	if !country.IsValid(code) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown country code"})
	}
	month, err := h.month(c)
	if err != nil {
		return badMonth(c)
	}
	row, err := h.service.Country(c.Context(), code, month)
	if errors.Is(err, store.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no stats for " + code + " in " + month.Format("2006-01")})
	}
	if err != nil {
		logger.WithRayID(h.logger, c).Error("Country stats query failed", zap.String("country", code), zap.Error(err))
		return queryFailed(c)
	}
	return c.JSON(row)
}
