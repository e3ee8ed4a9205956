package stats

import (
	"time"

	"ixp-tracker/feature/tracker/store"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Feature implements the loader.Feature interface.
type Feature struct {
	service *Service
	handler *Handler
}

// NewFeature creates the stats API feature.
func NewFeature(st *store.Store, cacheTTL time.Duration, clock clockwork.Clock, logger *zap.Logger) *Feature {
	svc := NewService(st, NewQueryCache(cacheTTL, clock), logger)
	return &Feature{service: svc, handler: NewHandler(svc, clock, logger)}
}

// Name returns the name of the feature.
func (f *Feature) Name() string {
	return "stats"
}

// IsEnabled checks if the feature is enabled.
func (f *Feature) IsEnabled() bool {
	return true
}

// Load registers the feature's routes.
func (f *Feature) Load(app fiber.Router) error {
	f.handler.RegisterRoutes(app)
	return nil
}
