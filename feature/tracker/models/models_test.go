package models

import (
	"testing"
	"time"

	"ixp-tracker/feature/lookup"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestNetworkType(t *testing.T) {
	assert.Equal(t, NetworkTypeAccess, NetworkType("Cable/DSL/ISP"))
	assert.Equal(t, NetworkTypeTransit, NetworkType("NSP"))
	assert.Equal(t, NetworkTypeResearchEducation, NetworkType("Educational/Research"))
	assert.Equal(t, NetworkTypeNotDisclosed, NetworkType(""))
	assert.Equal(t, NetworkTypeOther, NetworkType("Route Server"))
}

func TestRPKIRoundTrip(t *testing.T) {
	s := lookup.RPKISummary{
		ByROA:     lookup.AddressFamilyCounts{V4: lookup.ROAStateCounts{Valid: 3, Invalid: 1}},
		ByAddress: lookup.AddressFamilyCounts{V6: lookup.ROAStateCounts{Unknown: 7}},
	}
	r := NewRPKI(s)
	assert.Equal(t, 3, r.ROAV4Valid)
	assert.Equal(t, 7, r.AddressV6Unknown)
	assert.Equal(t, s, r.Summary())
	assert.Equal(t, RPKI{}, NewRPKI(lookup.EmptyRPKISummary))
}

func TestMembershipPeriods(t *testing.T) {
	end := day(2023, 6, 30)
	m := Membership{Periods: []MembershipPeriod{
		{ID: 1, StartDate: day(2020, 1, 15), EndDate: &end, Speed: 1000},
		{ID: 2, StartDate: day(2024, 2, 1), Speed: 10000},
	}}

	assert.Equal(t, uint(2), m.OpenPeriod().ID)
	assert.Nil(t, m.PeriodAt(day(2019, 12, 1)))
	assert.Equal(t, uint(1), m.PeriodAt(day(2023, 6, 1)).ID)
	assert.Equal(t, uint(1), m.PeriodAt(day(2023, 9, 1)).ID)
	assert.Equal(t, uint(2), m.PeriodAt(day(2024, 3, 1)).ID)

	assert.True(t, m.Periods[0].ActiveAt(day(2023, 6, 1)))
	assert.True(t, m.Periods[0].ActiveAt(day(2023, 6, 30)))
	assert.False(t, m.Periods[0].ActiveAt(day(2023, 7, 1)))
	assert.False(t, m.Periods[1].ActiveAt(day(2024, 1, 1)))
	assert.True(t, m.Periods[1].ActiveAt(day(2030, 1, 1)))

	closed := Membership{Periods: []MembershipPeriod{{StartDate: day(2020, 1, 1), EndDate: &end}}}
	assert.Nil(t, closed.OpenPeriod())
}
