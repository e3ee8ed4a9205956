package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ixp-tracker/core/database"
	"ixp-tracker/feature/tracker/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned when a keyed lookup matches no row.
var ErrNotFound = errors.New("record not found")

// Store persists tracker entities.
type Store struct {
	db *gorm.DB
}

// New wraps db.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying connection.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Migrate creates or upgrades every table.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}

// CheckSchema returns "table.column" for every model column missing from the database.
func (s *Store) CheckSchema(ctx context.Context) ([]string, error) {
	db := s.db.WithContext(ctx)
	var missing []string
	for _, model := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(model); err != nil {
			return nil, fmt.Errorf("failed to parse model %T: %w", model, err)
		}
		cols, err := database.MissingColumns(db, stmt.Schema.Table, stmt.Schema.DBNames)
		if err != nil {
			return nil, err
		}
		for _, col := range cols {
			missing = append(missing, stmt.Schema.Table+"."+col)
		}
	}
	return missing, nil
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return fmt.Errorf("failed to load %s: %w", what, err)
}

// UpsertExchange creates or overwrites the exchange keyed by its registry id.
func (s *Store) UpsertExchange(ctx context.Context, ex *models.Exchange) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Exchange
		err := tx.Where("peeringdb_id = ?", ex.PeeringDBID).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ex.ID = 0
			return tx.Omit(clause.Associations).Create(ex).Error
		case err != nil:
			return err
		}
		ex.ID = existing.ID
		return tx.Omit(clause.Associations).Save(ex).Error
	})
}

// UpsertNetwork creates or overwrites the network keyed by its registry id.
// A network re-registered under a new registry id takes over the row holding its AS number.
func (s *Store) UpsertNetwork(ctx context.Context, n *models.Network) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Network
		err := tx.Where("peeringdb_id = ?", n.PeeringDBID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			err = tx.Where("number = ?", n.Number).First(&existing).Error
		}
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			n.ID = 0
			return tx.Omit(clause.Associations).Create(n).Error
		case err != nil:
			return err
		}
		n.ID = existing.ID
		return tx.Omit(clause.Associations).Save(n).Error
	})
}

// ExchangeByPeeringDBID returns the exchange with the given registry id.
func (s *Store) ExchangeByPeeringDBID(ctx context.Context, id int) (*models.Exchange, error) {
	var ex models.Exchange
	if err := s.db.WithContext(ctx).Where("peeringdb_id = ?", id).First(&ex).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("exchange %d", id))
	}
	return &ex, nil
}

// NetworkByPeeringDBID returns the network with the given registry id.
func (s *Store) NetworkByPeeringDBID(ctx context.Context, id int) (*models.Network, error) {
	var n models.Network
	if err := s.db.WithContext(ctx).Where("peeringdb_id = ?", id).First(&n).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("network %d", id))
	}
	return &n, nil
}

// NetworkByNumber returns the network with the given AS number.
func (s *Store) NetworkByNumber(ctx context.Context, asn int) (*models.Network, error) {
	var n models.Network
	if err := s.db.WithContext(ctx).Where("number = ?", asn).First(&n).Error; err != nil {
		return nil, notFound(err, fmt.Sprintf("AS%d", asn))
	}
	return &n, nil
}

// LatestNetworkUpdate returns the highest stored network last_updated, or nil when there are no networks.
func (s *Store) LatestNetworkUpdate(ctx context.Context) (*time.Time, error) {
	var n models.Network
	err := s.db.WithContext(ctx).Order("last_updated DESC").Limit(1).Find(&n).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read network watermark: %w", err)
	}
	if n.ID == 0 {
		return nil, nil
	}
	latest := n.LastUpdated.UTC()
	return &latest, nil
}

// Exchanges returns every exchange created on or before t.
func (s *Store) Exchanges(ctx context.Context, createdBy time.Time) ([]models.Exchange, error) {
	var out []models.Exchange
	err := s.db.WithContext(ctx).Where("created <= ?", createdBy).Order("id").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list exchanges: %w", err)
	}
	return out, nil
}
