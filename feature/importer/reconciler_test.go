package importer

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"ixp-tracker/feature/lookup"
	"ixp-tracker/feature/registry"
	"ixp-tracker/feature/stats"
	"ixp-tracker/feature/tracker/models"
	"ixp-tracker/feature/tracker/store"
	"ixp-tracker/feature/tracker/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ymd(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// testGeo records the as-of times it is asked about.
type testGeo struct {
	lookup.Default
	countries map[int]string
	status    string
	failASN   int
	asOf      []time.Time
}

func (g *testGeo) CountryOf(ctx context.Context, asn int, asOf time.Time) (string, error) {
	g.asOf = append(g.asOf, asOf)
	if asn == g.failASN {
		return "", errors.New("lookup unavailable")
	}
	if c, ok := g.countries[asn]; ok {
		return c, nil
	}
	return "ZZ", nil
}

func (g *testGeo) StatusOf(ctx context.Context, asn int, asOf time.Time) (string, error) {
	if g.status == "" {
		return lookup.StatusAssigned, nil
	}
	return g.status, nil
}

type testRPKI struct{}

func (testRPKI) RPKISummaryOf(ctx context.Context, asn int, asOf time.Time) (lookup.RPKISummary, error) {
	return lookup.RPKISummary{ByROA: lookup.AddressFamilyCounts{V4: lookup.ROAStateCounts{Valid: asn % 10, Invalid: 1}}}, nil
}

func newReconciler(t *testing.T, geo *testGeo) (*Reconciler, *store.Store) {
	st := storetest.New(t)
	src := lookup.DefaultSources()
	src.Geo = geo
	src.RPKI = testRPKI{}
	return NewReconciler(st, src, zap.NewNop()), st
}

func records(t *testing.T, raw string) []registry.Record {
	var out []registry.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

const ixpData = `[
	{"id": 2, "name": "ZIX", "name_long": "Zurich Internet Exchange", "city": "Zurich", "website": "https://zix.example", "country": "CH", "created": "2019-08-24T14:15:22Z", "updated": "2023-10-01T00:00:00Z"},
	{"id": 3, "name": "Kosovo IX", "name_long": "", "city": "Pristina", "website": "", "country": "XK", "created": "2019-08-24T14:15:22Z", "updated": "2023-10-01T00:00:00Z"},
	{"id": 4, "name": "Broken", "country": "DE", "created": "yesterday", "updated": "2023-10-01T00:00:00Z"}
]`

const asnData = `[
	{"id": 5, "asn": 12345, "name": "Network Org", "info_type": "NSP", "created": "2019-01-01T00:00:00Z", "updated": "2024-05-01T10:00:00Z"},
	{"id": 6, "asn": "AS789", "name": "Dirty", "info_type": "", "created": "2019-01-01T00:00:00Z", "updated": "2024-05-01T10:00:00Z"},
	{"id": 7, "asn": 446, "name": "No date", "info_type": "Content", "created": "2019-01-01T00:00:00Z", "updated": "not a date"},
	{"id": 8, "asn": 5050, "name": "Geo fails", "info_type": "Content", "created": "2019-01-01T00:00:00Z", "updated": "2024-04-01T00:00:00Z"},
	{"id": 9, "asn": 54321, "name": "Unknown country", "info_type": "Enterprise", "created": "2019-01-01T00:00:00Z", "updated": "2023-02-11T08:30:00Z"}
]`

func TestReconcileExchanges(t *testing.T) {
	r, st := newReconciler(t, &testGeo{})
	ctx := context.Background()
	processing := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	require.NoError(t, r.ReconcileExchanges(ctx, processing, records(t, ixpData)))
	require.NoError(t, r.ReconcileExchanges(ctx, processing, records(t, ixpData)))

	var all []models.Exchange
	require.NoError(t, st.DB().Find(&all).Error)
	require.Len(t, all, 1, "unknown country and bad dates never create an exchange")

	ex := all[0]
	assert.Equal(t, 2, ex.PeeringDBID)
	assert.Equal(t, "Zurich Internet Exchange", ex.LongName)
	assert.Equal(t, "CH", ex.CountryCode)
	assert.True(t, ex.Active)
	require.NotNil(t, ex.LastActive)
	assert.True(t, processing.Equal(*ex.LastActive))

	_, err := st.ExchangeByPeeringDBID(ctx, 3)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReconcileNetworks(t *testing.T) {
	geo := &testGeo{countries: map[int]string{12345: "CH", 54321: "QQ"}, failASN: 5050}
	r, st := newReconciler(t, geo)
	ctx := context.Background()

	require.NoError(t, r.ReconcileNetworks(ctx, records(t, asnData)))

	var all []models.Network
	require.NoError(t, st.DB().Order("number").Find(&all).Error)
	require.Len(t, all, 2, "dirty numbers, bad dates and failed lookups are skipped")

	n, err := st.NetworkByNumber(ctx, 12345)
	require.NoError(t, err)
	assert.Equal(t, "CH", n.RegistrationCountryCode)
	assert.Equal(t, models.NetworkTypeTransit, n.NetworkType)
	assert.Equal(t, 5, n.RPKI.ROAV4Valid)
	assert.Equal(t, 1, n.RPKI.ROAV4Invalid)

	unknown, err := st.NetworkByNumber(ctx, 54321)
	require.NoError(t, err)
	assert.Equal(t, "ZZ", unknown.RegistrationCountryCode, "invalid lookup answers fall back to the unknown country")

	require.NotEmpty(t, geo.asOf)
	assert.True(t, geo.asOf[0].Equal(time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)), "country is resolved as of the record update time")
}

func TestReconcileNetworks_Idempotent(t *testing.T) {
	r, st := newReconciler(t, &testGeo{countries: map[int]string{12345: "CH"}})
	ctx := context.Background()

	require.NoError(t, r.ReconcileNetworks(ctx, records(t, asnData)))
	require.NoError(t, r.ReconcileNetworks(ctx, records(t, asnData)))

	var count int64
	require.NoError(t, st.DB().Model(&models.Network{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

const memberData = `[
	{"asn": 12345, "ix_id": 2, "net_id": 5, "created": "2019-08-24T14:15:22Z", "updated": "2019-08-24T14:15:22Z", "is_rs_peer": true, "speed": 10000},
	{"asn": 99999, "ix_id": 2, "created": "2019-08-24T14:15:22Z", "updated": "2019-08-24T14:15:22Z", "is_rs_peer": false, "speed": 1000},
	{"asn": 12345, "ix_id": 404, "created": "2019-08-24T14:15:22Z", "updated": "2019-08-24T14:15:22Z", "is_rs_peer": false, "speed": 1000}
]`

func seedParties(t *testing.T, st *store.Store, countryCode string) (*models.Exchange, *models.Network) {
	ctx := context.Background()
	ex := &models.Exchange{PeeringDBID: 2, Name: "Old name", CountryCode: "MM", Active: true, Created: day(2020, 10, 1), LastUpdated: day(2023, 10, 1)}
	require.NoError(t, st.UpsertExchange(ctx, ex))
	n := &models.Network{PeeringDBID: 5, Number: 12345, Name: "Network Org", NetworkType: models.NetworkTypeOther, RegistrationCountryCode: countryCode, Created: day(2019, 1, 1), LastUpdated: day(2024, 5, 1)}
	require.NoError(t, st.UpsertNetwork(ctx, n))
	return ex, n
}

func seedMembership(t *testing.T, st *store.Store, ex *models.Exchange, n *models.Network, lastActive time.Time) {
	_, err := st.Attach(context.Background(), store.Attachment{
		ExchangeID: ex.ID, NetworkID: n.ID, Joined: day(2019, 8, 24), LastUpdated: day(2019, 8, 24), Seen: lastActive, Speed: 500,
	})
	require.NoError(t, err)
}

func onlyMembership(t *testing.T, st *store.Store) models.Membership {
	all, err := st.Memberships(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	return all[0]
}

func TestReconcileMemberships_NoDataDoesNothing(t *testing.T) {
	r, st := newReconciler(t, &testGeo{})
	require.NoError(t, r.ReconcileMemberships(context.Background(), time.Now().UTC(), nil))

	all, err := st.Memberships(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestReconcileMemberships_Attach(t *testing.T) {
	r, st := newReconciler(t, &testGeo{})
	ctx := context.Background()
	seedParties(t, st, "CH")
	processing := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	require.NoError(t, r.ReconcileMemberships(ctx, processing, records(t, memberData)))
	require.NoError(t, r.ReconcileMemberships(ctx, processing, records(t, memberData)))

	m := onlyMembership(t, st)
	assert.True(t, processing.Equal(m.LastActive))
	require.Len(t, m.Periods, 1)
	p := m.Periods[0]
	assert.Equal(t, "2019-08-24", ymd(p.StartDate))
	assert.Nil(t, p.EndDate)
	assert.Equal(t, 10000, p.Speed)
	assert.True(t, p.IsRSPeer)
}

func TestReconcileMemberships_UpdatesExisting(t *testing.T) {
	r, st := newReconciler(t, &testGeo{})
	ctx := context.Background()
	ex, n := seedParties(t, st, "CH")
	processing := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	seedMembership(t, st, ex, n, day(2024, 6, 1))

	require.NoError(t, r.ReconcileMemberships(ctx, processing, records(t, memberData)[:1]))

	m := onlyMembership(t, st)
	require.Len(t, m.Periods, 1)
	assert.Equal(t, 10000, m.Periods[0].Speed)
	assert.True(t, m.Periods[0].IsRSPeer)
}

func TestReconcileMemberships_MissingParties(t *testing.T) {
	ctx := context.Background()
	processing := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)

	t.Run("no network", func(t *testing.T) {
		r, st := newReconciler(t, &testGeo{})
		require.NoError(t, st.UpsertExchange(ctx, &models.Exchange{PeeringDBID: 2, CountryCode: "MM", Created: day(2020, 10, 1)}))
		require.NoError(t, r.ReconcileMemberships(ctx, processing, records(t, memberData)))
		all, err := st.Memberships(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("no exchange", func(t *testing.T) {
		r, st := newReconciler(t, &testGeo{})
		require.NoError(t, st.UpsertNetwork(ctx, &models.Network{PeeringDBID: 5, Number: 12345, Created: day(2019, 1, 1), LastUpdated: day(2024, 5, 1)}))
		require.NoError(t, r.ReconcileMemberships(ctx, processing, records(t, memberData)))
		all, err := st.Memberships(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})
}

func TestInferDepartures_Inactivity(t *testing.T) {
	r, st := newReconciler(t, &testGeo{})
	ex, n := seedParties(t, st, "CH")
	processing := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	lastDayOfLastMonth := time.Date(2024, 5, 31, 18, 0, 0, 0, time.UTC)
	seedMembership(t, st, ex, n, lastDayOfLastMonth)

	require.NoError(t, r.ReconcileMemberships(context.Background(), processing, nil))

	m := onlyMembership(t, st)
	require.NotNil(t, m.Periods[0].EndDate)
	assert.Equal(t, "2024-05-31", ymd(*m.Periods[0].EndDate))
}

func TestInferDepartures_EndsOnLastDayOfLastSeenMonth(t *testing.T) {
	r, st := newReconciler(t, &testGeo{})
	ex, n := seedParties(t, st, "CH")
	seedMembership(t, st, ex, n, time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC))

	require.NoError(t, r.InferDepartures(context.Background(), day(2024, 6, 1)))

	m := onlyMembership(t, st)
	require.NotNil(t, m.Periods[0].EndDate)
	assert.Equal(t, "2024-02-29", ymd(*m.Periods[0].EndDate))
}

func TestInferDepartures_AssignedStaysOpen(t *testing.T) {
	r, st := newReconciler(t, &testGeo{status: lookup.StatusAssigned})
	ex, n := seedParties(t, st, "ZZ")
	processing := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	seedMembership(t, st, ex, n, processing)

	require.NoError(t, r.InferDepartures(context.Background(), processing))

	m := onlyMembership(t, st)
	assert.Nil(t, m.Periods[0].EndDate)
}

func TestInferDepartures_Deregistration(t *testing.T) {
	r, st := newReconciler(t, &testGeo{status: "available"})
	ex, n := seedParties(t, st, "ZZ")
	processing := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	seedMembership(t, st, ex, n, processing)

	require.NoError(t, r.InferDepartures(context.Background(), processing))

	m := onlyMembership(t, st)
	require.NotNil(t, m.Periods[0].EndDate)
	assert.Equal(t, "2024-05-31", ymd(*m.Periods[0].EndDate))
	assert.Equal(t, ReasonDeregistration, m.Periods[0].EndReason)
}

func TestDeregisteredMemberStaysDeparted(t *testing.T) {
	r, st := newReconciler(t, &testGeo{status: "available"})
	ctx := context.Background()
	seedParties(t, st, "ZZ")
	batch := records(t, memberData)[:1]

	for d := day(2024, 6, 15); !d.After(day(2024, 7, 1)); d = d.AddDate(0, 0, 1) {
		require.NoError(t, r.ReconcileMemberships(ctx, d.Add(9*time.Hour), batch))
	}

	m := onlyMembership(t, st)
	require.Len(t, m.Periods, 1, "rerunning the same batch does not reopen the membership")
	require.NotNil(t, m.Periods[0].EndDate)
	assert.Equal(t, "2024-05-31", ymd(*m.Periods[0].EndDate))
	assert.False(t, m.Periods[0].ActiveAt(day(2024, 7, 1)))

	_, err := stats.NewGenerator(st, lookup.DefaultSources(), zap.NewNop()).Generate(ctx, day(2024, 7, 1))
	require.NoError(t, err)
	rows, err := st.ExchangeStats(ctx, day(2024, 7, 1))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].Members)
}

func TestInferDepartures_InactivityWinsOverDeregistration(t *testing.T) {
	r, st := newReconciler(t, &testGeo{status: "reserved"})
	ex, n := seedParties(t, st, "ZZ")
	seedMembership(t, st, ex, n, time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC))

	require.NoError(t, r.InferDepartures(context.Background(), day(2024, 6, 15)))

	m := onlyMembership(t, st)
	require.NotNil(t, m.Periods[0].EndDate)
	assert.Equal(t, "2024-03-31", ymd(*m.Periods[0].EndDate))
	assert.Equal(t, ReasonInactivity, m.Periods[0].EndReason)
}

func TestInferDepartures_KnownCountryNotChecked(t *testing.T) {
	r, st := newReconciler(t, &testGeo{status: "available"})
	ex, n := seedParties(t, st, "CH")
	processing := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	seedMembership(t, st, ex, n, processing)

	require.NoError(t, r.InferDepartures(context.Background(), processing))

	assert.Nil(t, onlyMembership(t, st).Periods[0].EndDate)
}

func TestRejoinOpensNewPeriod(t *testing.T) {
	r, st := newReconciler(t, &testGeo{})
	ctx := context.Background()
	ex, n := seedParties(t, st, "CH")
	seedMembership(t, st, ex, n, day(2024, 2, 10))
	require.NoError(t, r.InferDepartures(ctx, day(2024, 6, 1)))

	processing := time.Date(2024, 9, 3, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.ReconcileMemberships(ctx, processing, records(t, memberData)[:1]))

	m := onlyMembership(t, st)
	require.Len(t, m.Periods, 2)
	assert.Equal(t, "2024-02-29", ymd(*m.Periods[0].EndDate))
	assert.Nil(t, m.Periods[1].EndDate)
	assert.Equal(t, "2024-09-03", ymd(m.Periods[1].StartDate))
	assert.Equal(t, 10000, m.Periods[1].Speed)
}
