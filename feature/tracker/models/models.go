package models

import (
	"time"
)

// Exchange is an internet exchange point as published by the registry.
type Exchange struct {
	ID          uint       `gorm:"column:id;primaryKey"`
	PeeringDBID int        `gorm:"column:peeringdb_id;uniqueIndex:idx_exchanges_peeringdb_id"`
	Name        string     `gorm:"column:name;type:varchar(150)"`
	LongName    string     `gorm:"column:long_name;type:varchar(200)"`
	City        string     `gorm:"column:city;type:varchar(200)"`
	Website     string     `gorm:"column:website;type:varchar(500)"`
	Active      bool       `gorm:"column:active_status"`
	CountryCode string     `gorm:"column:country_code;type:varchar(2);index"`
	Created     time.Time  `gorm:"column:created"`
	LastUpdated time.Time  `gorm:"column:last_updated"`
	LastActive  *time.Time `gorm:"column:last_active"`
}

func (Exchange) TableName() string {
	return "exchanges"
}

// Network is an autonomous system.
type Network struct {
	ID                      uint      `gorm:"column:id;primaryKey"`
	PeeringDBID             int       `gorm:"column:peeringdb_id;uniqueIndex:idx_networks_peeringdb_id"`
	Number                  int       `gorm:"column:number;uniqueIndex:idx_networks_number"`
	Name                    string    `gorm:"column:name;type:varchar(500)"`
	NetworkType             string    `gorm:"column:network_type;type:varchar(32);default:not-disclosed"`
	RegistrationCountryCode string    `gorm:"column:registration_country_code;type:varchar(2);index"`
	RPKI                    RPKI      `gorm:"embedded;embeddedPrefix:rpki_"`
	Created                 time.Time `gorm:"column:created"`
	LastUpdated             time.Time `gorm:"column:last_updated;index"`
}

func (Network) TableName() string {
	return "networks"
}

// Membership links one network to one exchange. Attachment intervals live in Periods.
type Membership struct {
	ID          uint               `gorm:"column:id;primaryKey"`
	ExchangeID  uint               `gorm:"column:exchange_id;uniqueIndex:idx_memberships_pair"`
	NetworkID   uint               `gorm:"column:network_id;uniqueIndex:idx_memberships_pair"`
	Exchange    Exchange           `gorm:"foreignKey:ExchangeID"`
	Network     Network            `gorm:"foreignKey:NetworkID"`
	LastUpdated time.Time          `gorm:"column:last_updated"`
	LastActive  time.Time          `gorm:"column:last_active"`
	Periods     []MembershipPeriod `gorm:"foreignKey:MembershipID"`
}

func (Membership) TableName() string {
	return "memberships"
}

// OpenPeriod returns the period without an end date, if any.
func (m Membership) OpenPeriod() *MembershipPeriod {
	for i := range m.Periods {
		if m.Periods[i].EndDate == nil {
			return &m.Periods[i]
		}
	}
	return nil
}

// PeriodAt returns the period governing day: the latest period started on or
// before day. The period may have ended before day.
func (m Membership) PeriodAt(day time.Time) *MembershipPeriod {
	var found *MembershipPeriod
	for i := range m.Periods {
		p := &m.Periods[i]
		if p.StartDate.After(day) {
			continue
		}
		if found == nil || p.StartDate.After(found.StartDate) {
			found = p
		}
	}
	return found
}

// MembershipPeriod is one contiguous attachment. EndDate is nil while active.
type MembershipPeriod struct {
	ID           uint       `gorm:"column:id;primaryKey"`
	MembershipID uint       `gorm:"column:membership_id;index"`
	StartDate    time.Time  `gorm:"column:start_date"`
	EndDate      *time.Time `gorm:"column:end_date;index"`
	Speed        int        `gorm:"column:speed"`
	IsRSPeer     bool       `gorm:"column:is_rs_peer"`
	// EndReason names the departure rule that closed the period, empty while open.
	EndReason string `gorm:"column:end_reason;size:32;default:''"`
}

// Departure rules recorded in MembershipPeriod.EndReason.
const (
	EndReasonInactivity     = "inactivity"
	EndReasonDeregistration = "deregistration"
)

func (MembershipPeriod) TableName() string {
	return "membership_periods"
}

// ActiveAt reports whether the period started on or before day and had not ended before it.
func (p MembershipPeriod) ActiveAt(day time.Time) bool {
	if p.StartDate.After(day) {
		return false
	}
	return p.EndDate == nil || !p.EndDate.Before(day)
}

// StatsPerExchange is the monthly snapshot of one exchange.
type StatsPerExchange struct {
	ID                                  uint      `gorm:"column:id;primaryKey" json:"-"`
	ExchangeID                          uint      `gorm:"column:exchange_id;uniqueIndex:idx_stats_exchange_month" json:"-"`
	Exchange                            Exchange  `gorm:"foreignKey:ExchangeID" json:"-"`
	StatsDate                           time.Time `gorm:"column:stats_date;uniqueIndex:idx_stats_exchange_month" json:"stats_date"`
	Members                             int       `gorm:"column:members" json:"members"`
	Capacity                            float64   `gorm:"column:capacity" json:"capacity"`
	LocalASNsMembersRate                float64   `gorm:"column:local_asns_members_rate" json:"local_asns_members_rate"`
	LocalRoutedASNsMembersRate          float64   `gorm:"column:local_routed_asns_members_rate" json:"local_routed_asns_members_rate"`
	LocalRoutedASNsMembersCustomersRate float64   `gorm:"column:local_routed_asns_members_customers_rate" json:"local_routed_asns_members_customers_rate"`
	RSPeeringRate                       float64   `gorm:"column:rs_peering_rate" json:"rs_peering_rate"`
	MANRSMembersRate                    float64   `gorm:"column:manrs_members_rate" json:"manrs_members_rate"`
}

func (StatsPerExchange) TableName() string {
	return "stats_per_exchange"
}

// StatsPerCountry is the monthly snapshot of one ISO country.
type StatsPerCountry struct {
	ID                      uint      `gorm:"column:id;primaryKey" json:"-"`
	CountryCode             string    `gorm:"column:country_code;type:varchar(2);uniqueIndex:idx_stats_country_month" json:"country_code"`
	StatsDate               time.Time `gorm:"column:stats_date;uniqueIndex:idx_stats_country_month" json:"stats_date"`
	ExchangeCount           int       `gorm:"column:exchange_count" json:"exchange_count"`
	ASNCount                int       `gorm:"column:asn_count" json:"asn_count"`
	RoutedASNCount          int       `gorm:"column:routed_asn_count" json:"routed_asn_count"`
	MemberCount             int       `gorm:"column:member_count" json:"member_count"`
	ASNsIXPMemberRate       float64   `gorm:"column:asns_ixp_member_rate" json:"asns_ixp_member_rate"`
	RoutedASNsIXPMemberRate float64   `gorm:"column:routed_asns_ixp_member_rate" json:"routed_asns_ixp_member_rate"`
	TotalCapacity           float64   `gorm:"column:total_capacity" json:"total_capacity"`
}

func (StatsPerCountry) TableName() string {
	return "stats_per_country"
}

// All lists every model in migration order.
func All() []any {
	return []any{
		&Exchange{},
		&Network{},
		&Membership{},
		&MembershipPeriod{},
		&StatsPerExchange{},
		&StatsPerCountry{},
	}
}
