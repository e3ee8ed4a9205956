package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ixp-tracker/core/utils"
	"ixp-tracker/feature/country"
	"ixp-tracker/feature/tracker/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Attachment is the state of a membership observed in one feed record.
type Attachment struct {
	ExchangeID  uint
	NetworkID   uint
	Joined      time.Time
	LastUpdated time.Time
	Seen        time.Time
	Speed       int
	IsRSPeer    bool
}

// AttachResult reports what Attach changed.
type AttachResult struct {
	Membership models.Membership
	Period     models.MembershipPeriod
	Opened     bool
}

// Attach upserts the (exchange, network) membership and its open period in one transaction.
// Without an open period a new one starts at Joined, or at Seen when Joined is not
// after the end of the previous period. A period closed for deregistration is not
// reopened while the network's country is still unknown.
func (s *Store) Attach(ctx context.Context, a Attachment) (*AttachResult, error) {
	res := &AttachResult{}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := &res.Membership
		err := tx.Where("exchange_id = ? AND network_id = ?", a.ExchangeID, a.NetworkID).First(m).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		m.ExchangeID = a.ExchangeID
		m.NetworkID = a.NetworkID
		m.LastUpdated = a.LastUpdated
		m.LastActive = a.Seen
		if m.ID == 0 {
			err = tx.Omit(clause.Associations).Create(m).Error
		} else {
			err = tx.Omit(clause.Associations).Save(m).Error
		}
		if err != nil {
			return err
		}

		var periods []models.MembershipPeriod
		if err := tx.Where("membership_id = ?", m.ID).Order("start_date").Find(&periods).Error; err != nil {
			return err
		}
		m.Periods = periods

		if open := m.OpenPeriod(); open != nil {
			open.Speed = a.Speed
			open.IsRSPeer = a.IsRSPeer
			res.Period = *open
			return tx.Save(&res.Period).Error
		}

		start := a.Joined
		if n := len(periods); n > 0 && periods[n-1].EndDate != nil {
			last := periods[n-1]
			if last.EndReason == models.EndReasonDeregistration {
				var network models.Network
				if err := tx.Select("registration_country_code").First(&network, a.NetworkID).Error; err != nil {
					return err
				}
				// Still unregistered: the departure stands.
				if network.RegistrationCountryCode == country.Unknown {
					res.Period = last
					return nil
				}
			}
			if !start.After(*last.EndDate) {
				start = utils.Day(a.Seen)
			}
		}
		res.Period = models.MembershipPeriod{
			MembershipID: m.ID,
			StartDate:    start,
			Speed:        a.Speed,
			IsRSPeer:     a.IsRSPeer,
		}
		res.Opened = true
		return tx.Create(&res.Period).Error
	})
	if err != nil {
		return nil, fmt.Errorf("failed to attach network %d to exchange %d: %w", a.NetworkID, a.ExchangeID, err)
	}
	return res, nil
}

// ActiveMemberships returns memberships with an open period. Network is loaded
// and Periods holds only the open period.
func (s *Store) ActiveMemberships(ctx context.Context) ([]models.Membership, error) {
	db := s.db.WithContext(ctx)
	open := db.Model(&models.MembershipPeriod{}).Select("membership_id").Where("end_date IS NULL")

	var out []models.Membership
	err := db.Preload("Network").
		Preload("Periods", "end_date IS NULL").
		Where("id IN (?)", open).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active memberships: %w", err)
	}
	return out, nil
}

// ClosePeriod sets the end date and departure reason of an open period.
// Closing an already closed period is a no-op.
func (s *Store) ClosePeriod(ctx context.Context, periodID uint, end time.Time, reason string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.MembershipPeriod{}).
		Where("id = ? AND end_date IS NULL", periodID).
		Updates(map[string]any{"end_date": end, "end_reason": reason})
	if res.Error != nil {
		return false, fmt.Errorf("failed to close period %d: %w", periodID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

// Memberships returns every membership with Network and all Periods loaded.
func (s *Store) Memberships(ctx context.Context) ([]models.Membership, error) {
	var out []models.Membership
	err := s.db.WithContext(ctx).
		Preload("Network").
		Preload("Periods", func(db *gorm.DB) *gorm.DB { return db.Order("start_date") }).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships: %w", err)
	}
	return out, nil
}
