package stats

import (
	"context"
	"time"

	"ixp-tracker/feature/tracker/models"
	"ixp-tracker/feature/tracker/store"

	"go.uber.org/zap"
)

// ExchangeStats is a per-exchange snapshot with the exchange identity.
type ExchangeStats struct {
	ExchangeID  int    `json:"exchange_id"`
	Name        string `json:"name"`
	CountryCode string `json:"country_code"`
	models.StatsPerExchange
}

// Service serves stored statistics through a query cache.
type Service struct {
	store  *store.Store
	cache  *QueryCache
	logger *zap.Logger
}

// NewService creates a stats read service.
func NewService(st *store.Store, cache *QueryCache, logger *zap.Logger) *Service {
	return &Service{store: st, cache: cache, logger: logger}
}

func monthKey(kind string, month time.Time) string {
	return kind + ":" + month.Format("2006-01")
}

// Exchanges returns every exchange snapshot of month.
func (s *Service) Exchanges(ctx context.Context, month time.Time) ([]ExchangeStats, error) {
	return cached(s.cache, monthKey("exchanges", month), func() ([]ExchangeStats, error) {
		rows, err := s.store.ExchangeStats(ctx, month)
		if err != nil {
			return nil, err
		}
		out := make([]ExchangeStats, 0, len(rows))
		for _, row := range rows {
			out = append(out, ExchangeStats{
				ExchangeID:       row.Exchange.PeeringDBID,
				Name:             row.Exchange.Name,
				CountryCode:      row.Exchange.CountryCode,
				StatsPerExchange: row,
			})
		}
		return out, nil
	})
}

// Countries returns every country snapshot of month.
func (s *Service) Countries(ctx context.Context, month time.Time) ([]models.StatsPerCountry, error) {
	return cached(s.cache, monthKey("countries", month), func() ([]models.StatsPerCountry, error) {
		return s.store.CountryStats(ctx, month)
	})
}

// Country returns one country snapshot of month, or store.ErrNotFound.
func (s *Service) Country(ctx context.Context, code string, month time.Time) (*models.StatsPerCountry, error) {
	return cached(s.cache, monthKey("country:"+code, month), func() (*models.StatsPerCountry, error) {
		return s.store.CountryStat(ctx, code, month)
	})
}
