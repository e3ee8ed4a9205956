package importer

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"ixp-tracker/feature/archive"
	"ixp-tracker/feature/registry"
	"ixp-tracker/feature/tracker/models"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeRegistry struct {
	mu       sync.Mutex
	bodies   map[string]string
	failures map[string]int
	queries  map[string][]string
}

func newFakeRegistry() *fakeRegistry {
	return &fakeRegistry{
		bodies: map[string]string{
			"ix":       `{"data": ` + ixpData + `}`,
			"net":      `{"data": ` + asnData + `}`,
			"netixlan": `{"data": ` + memberData + `}`,
		},
		failures: map[string]int{},
		queries:  map[string][]string{},
	}
}

func (f *fakeRegistry) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	endpoint := r.URL.Path[1:]
	f.queries[endpoint] = append(f.queries[endpoint], r.URL.RawQuery)
	if status := f.failures[endpoint]; status != 0 {
		w.WriteHeader(status)
		return
	}
	if r.URL.Query().Get("skip") != "" && r.URL.Query().Get("skip") != "0" {
		_, _ = w.Write([]byte(`{"data": []}`))
		return
	}
	_, _ = w.Write([]byte(f.bodies[endpoint]))
}

func newImporter(t *testing.T, fake *fakeRegistry, now time.Time) (*Importer, *Reconciler) {
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	client := registry.NewClient(registry.Config{BaseURL: srv.URL, APIKey: "key", TimeoutSeconds: 5}, zap.NewNop())

	r, st := newReconciler(t, &testGeo{countries: map[int]string{12345: "CH"}})
	return New(client, nil, st, r, clockwork.NewFakeClockAt(now), zap.NewNop()), r
}

func TestImport_EndToEnd(t *testing.T) {
	fake := newFakeRegistry()
	now := time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC)
	imp, _ := newImporter(t, fake, now)
	ctx := context.Background()

	require.NoError(t, imp.Import(ctx, Options{PageSize: 200}))

	m := onlyMembership(t, imp.store)
	assert.Equal(t, 12345, m.Network.Number)
	assert.True(t, now.Equal(m.LastActive))
	require.Len(t, m.Periods, 1)
	assert.Nil(t, m.Periods[0].EndDate)

	assert.Equal(t, []string{""}, fake.queries["ix"])
	assert.Equal(t, []string{"limit=200&skip=0", "limit=200&skip=200"}, fake.queries["net"])
	assert.Equal(t, []string{""}, fake.queries["netixlan"])
}

func TestImport_WatermarkMonotonicity(t *testing.T) {
	fake := newFakeRegistry()
	imp, _ := newImporter(t, fake, time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()

	require.NoError(t, imp.Import(ctx, Options{PageSize: 200}))
	fake.bodies["net"] = `{"data": []}`
	require.NoError(t, imp.Import(ctx, Options{PageSize: 200}))

	require.Len(t, fake.queries["net"], 3)
	assert.Equal(t, "limit=200&skip=0&updated__gte=2024-05-01", fake.queries["net"][2])

	require.NoError(t, imp.Import(ctx, Options{PageSize: 200, Reset: true}))
	assert.Equal(t, "limit=200&skip=0", fake.queries["net"][3])
}

func TestImport_FetchFailureStopsRun(t *testing.T) {
	fake := newFakeRegistry()
	fake.failures["net"] = http.StatusServiceUnavailable
	imp, _ := newImporter(t, fake, time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC))

	err := imp.Import(context.Background(), Options{PageSize: 200})
	assert.ErrorIs(t, err, registry.ErrFetch)

	_, err = imp.store.ExchangeByPeeringDBID(context.Background(), 2)
	assert.NoError(t, err, "exchanges applied before the failure are kept")
	assert.Empty(t, fake.queries["netixlan"])
}

func TestImport_MemberFetchFailureSkipsDepartures(t *testing.T) {
	fake := newFakeRegistry()
	imp, _ := newImporter(t, fake, time.Date(2024, 6, 15, 9, 0, 0, 0, time.UTC))
	ctx := context.Background()
	require.NoError(t, imp.Import(ctx, Options{PageSize: 200}))

	fake.failures["netixlan"] = http.StatusBadGateway
	imp.clock = clockwork.NewFakeClockAt(time.Date(2024, 9, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, imp.Import(ctx, Options{PageSize: 200}), registry.ErrFetch)

	assert.Nil(t, onlyMembership(t, imp.store).Periods[0].EndDate)
}

type fakeLocator struct {
	snap *archive.Snapshot
	err  error
	got  time.Time
}

func (f *fakeLocator) Locate(ctx context.Context, month time.Time) (*archive.Snapshot, error) {
	f.got = month
	return f.snap, f.err
}

func TestBackfill(t *testing.T) {
	raw := fmt.Sprintf(`{'ix': {'data': %s}, 'net': {'data': %s}, 'netixlan': {'data': [
		{'asn': 12345, 'ix_id': 2, 'net_id': 5, 'created': '2019-08-24T14:15:22Z', 'updated': '2019-08-24T14:15:22Z', 'is_rs_peer': False, 'speed': 20000, 'ipaddr4': None}]}}`,
		`[{'id': 2, 'name': 'ZIX', 'name_long': 'Zurich', 'city': 'Zurich', 'website': None, 'country': 'CH', 'created': '2019-08-24T14:15:22Z', 'updated': '2023-10-01T00:00:00Z'}]`,
		`[{'id': 5, 'asn': 12345, 'name': 'Network Org', 'info_type': 'NSP', 'created': '2019-01-01T00:00:00Z', 'updated': '2024-05-01T10:00:00Z'}]`)
	loc := &fakeLocator{snap: &archive.Snapshot{Day: day(2021, 3, 4), Raw: []byte(raw)}}

	r, st := newReconciler(t, &testGeo{countries: map[int]string{12345: "CH"}})
	imp := New(nil, loc, st, r, clockwork.NewFakeClock(), zap.NewNop())

	require.NoError(t, imp.Backfill(context.Background(), time.Date(2021, 3, 17, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, day(2021, 3, 1), loc.got)

	ex, err := st.ExchangeByPeeringDBID(context.Background(), 2)
	require.NoError(t, err)
	require.NotNil(t, ex.LastActive)
	assert.Equal(t, "2021-03-04", ymd(*ex.LastActive))

	m := onlyMembership(t, st)
	assert.Equal(t, "2021-03-04", ymd(m.LastActive))
	assert.Equal(t, 20000, m.Periods[0].Speed)
}

func TestBackfill_NotFoundIsGraceful(t *testing.T) {
	loc := &fakeLocator{err: fmt.Errorf("%w: 2010-01", archive.ErrNotFound)}
	r, st := newReconciler(t, &testGeo{})
	imp := New(nil, loc, st, r, clockwork.NewFakeClock(), zap.NewNop())

	assert.NoError(t, imp.Backfill(context.Background(), day(2010, 1, 1)))

	var count int64
	require.NoError(t, st.DB().Model(&models.Exchange{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestBackfill_WithoutLocator(t *testing.T) {
	r, st := newReconciler(t, &testGeo{})
	imp := New(nil, nil, st, r, clockwork.NewFakeClock(), zap.NewNop())
	assert.Error(t, imp.Backfill(context.Background(), day(2010, 1, 1)))
}
