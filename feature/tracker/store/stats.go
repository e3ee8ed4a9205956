package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ixp-tracker/feature/tracker/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UpsertExchangeStats replaces the (exchange, month) snapshot.
func (s *Store) UpsertExchangeStats(ctx context.Context, st *models.StatsPerExchange) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.StatsPerExchange
		err := tx.Where("exchange_id = ? AND stats_date = ?", st.ExchangeID, st.StatsDate).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			st.ID = 0
			return tx.Omit(clause.Associations).Create(st).Error
		case err != nil:
			return err
		}
		st.ID = existing.ID
		return tx.Omit(clause.Associations).Save(st).Error
	})
}

// UpsertCountryStats replaces the (country, month) snapshot.
func (s *Store) UpsertCountryStats(ctx context.Context, st *models.StatsPerCountry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.StatsPerCountry
		err := tx.Where("country_code = ? AND stats_date = ?", st.CountryCode, st.StatsDate).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			st.ID = 0
			return tx.Create(st).Error
		case err != nil:
			return err
		}
		st.ID = existing.ID
		return tx.Save(st).Error
	})
}

// ExchangeStats returns the snapshots of month with their exchange loaded.
func (s *Store) ExchangeStats(ctx context.Context, month time.Time) ([]models.StatsPerExchange, error) {
	var out []models.StatsPerExchange
	err := s.db.WithContext(ctx).Preload("Exchange").
		Where("stats_date = ?", month).
		Order("exchange_id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list exchange stats: %w", err)
	}
	return out, nil
}

// CountryStats returns every country snapshot of month.
func (s *Store) CountryStats(ctx context.Context, month time.Time) ([]models.StatsPerCountry, error) {
	var out []models.StatsPerCountry
	err := s.db.WithContext(ctx).Where("stats_date = ?", month).Order("country_code").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list country stats: %w", err)
	}
	return out, nil
}

// CountryStat returns the snapshot of one country for month.
func (s *Store) CountryStat(ctx context.Context, code string, month time.Time) (*models.StatsPerCountry, error) {
	var st models.StatsPerCountry
	err := s.db.WithContext(ctx).Where("country_code = ? AND stats_date = ?", code, month).First(&st).Error
	if err != nil {
		return nil, notFound(err, fmt.Sprintf("stats for %s", code))
	}
	return &st, nil
}
