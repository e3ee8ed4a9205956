package stats

import (
	"context"
	"fmt"
	"time"

	"ixp-tracker/core/metrics"
	"ixp-tracker/core/utils"
	"ixp-tracker/feature/country"
	"ixp-tracker/feature/lookup"
	"ixp-tracker/feature/tracker/models"
	"ixp-tracker/feature/tracker/store"

	"go.uber.org/zap"
)

// Summary reports what one Generate call wrote.
type Summary struct {
	Month     time.Time
	Exchanges int
	Countries int
}

// Generator computes monthly statistics per exchange and per country.
type Generator struct {
	store   *store.Store
	lookups lookup.Sources
	logger  *zap.Logger
}

// NewGenerator creates a generator.
func NewGenerator(st *store.Store, lookups lookup.Sources, logger *zap.Logger) *Generator {
	return &Generator{store: st, lookups: lookups, logger: logger}
}

type countryTotals struct {
	exchanges int
	members   map[int]struct{}
	capacity  int
}

type countrySets struct {
	all    []int
	routed []int
}

// Generate writes the snapshot of month, normalised to its first day.
// Rows of an earlier run for the same month are replaced.
func (g *Generator) Generate(ctx context.Context, month time.Time) (*Summary, error) {
	month = utils.StartOfMonth(month)
	summary := &Summary{Month: month}

	exchanges, err := g.store.Exchanges(ctx, month)
	if err != nil {
		return nil, err
	}
	memberships, err := g.store.Memberships(ctx)
	if err != nil {
		return nil, err
	}
	manrs, err := g.lookups.MANRS.ParticipantsOf(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load MANRS participants: %w", err)
	}
	manrsSet := toSet(manrs)

	byExchange := make(map[uint][]models.Membership)
	for _, m := range memberships {
		byExchange[m.ExchangeID] = append(byExchange[m.ExchangeID], m)
	}

	sets := make(map[string]*countrySets)
	setsOf := func(code string) (*countrySets, error) {
		if s, ok := sets[code]; ok {
			return s, nil
		}
		all, err := g.lookups.Geo.ASNsOfCountry(ctx, code, month)
		if err != nil {
			return nil, fmt.Errorf("failed to load ASNs of %s: %w", code, err)
		}
		routed, err := g.lookups.Geo.RoutedASNsOfCountry(ctx, code, month)
		if err != nil {
			return nil, fmt.Errorf("failed to load routed ASNs of %s: %w", code, err)
		}
		s := &countrySets{all: all, routed: routed}
		sets[code] = s
		return s, nil
	}

	totals := make(map[string]*countryTotals)
	for _, code := range country.Codes() {
		totals[code] = &countryTotals{members: make(map[int]struct{})}
	}

	for _, ex := range exchanges {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		g.logger.Debug("Calculating growth stats for IXP", zap.Uint("ixp", ex.ID))

		var memberASNs []int
		capacity, rsPeers, manrsMembers := 0, 0, 0
		for _, m := range byExchange[ex.ID] {
			p := m.PeriodAt(month)
			if p == nil || !p.ActiveAt(month) {
				continue
			}
			memberASNs = append(memberASNs, m.Network.Number)
			capacity += p.Speed
			if p.IsRSPeer {
				rsPeers++
			}
			if _, ok := manrsSet[m.Network.Number]; ok {
				manrsMembers++
			}
		}

		cs, err := setsOf(ex.CountryCode)
		if err != nil {
			return nil, err
		}
		customers, err := g.lookups.Customers.CustomerASNsOf(ctx, memberASNs, month)
		if err != nil {
			return nil, fmt.Errorf("failed to load customers of exchange %d: %w", ex.ID, err)
		}

		row := &models.StatsPerExchange{
			ExchangeID:                          ex.ID,
			StatsDate:                           month,
			Members:                             len(memberASNs),
			Capacity:                            float64(capacity) / 1000,
			LocalASNsMembersRate:                LocalRate(memberASNs, cs.all),
			LocalRoutedASNsMembersRate:          LocalRate(memberASNs, cs.routed),
			LocalRoutedASNsMembersCustomersRate: LocalRate(union(memberASNs, customers), cs.routed),
			RSPeeringRate:                       share(rsPeers, len(memberASNs)),
			MANRSMembersRate:                    share(manrsMembers, len(memberASNs)),
		}
		if err := g.store.UpsertExchangeStats(ctx, row); err != nil {
			return nil, fmt.Errorf("failed to save stats of exchange %d: %w", ex.ID, err)
		}
		metrics.StatsRows.WithLabelValues("exchange").Inc()
		summary.Exchanges++

		t, ok := totals[ex.CountryCode]
		if !ok {
			g.logger.Warn("Country not found", zap.String("country", ex.CountryCode), zap.Uint("ixp", ex.ID))
			continue
		}
		t.exchanges++
		// An AS at several exchanges of a country is one member but adds capacity at each.
		for _, asn := range memberASNs {
			t.members[asn] = struct{}{}
		}
		t.capacity += capacity
	}

	for _, code := range country.Codes() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cs, err := setsOf(code)
		if err != nil {
			return nil, err
		}
		t := totals[code]
		members := make([]int, 0, len(t.members))
		for asn := range t.members {
			members = append(members, asn)
		}
		row := &models.StatsPerCountry{
			CountryCode:             code,
			StatsDate:               month,
			ExchangeCount:           t.exchanges,
			ASNCount:                len(cs.all),
			RoutedASNCount:          len(cs.routed),
			MemberCount:             len(members),
			ASNsIXPMemberRate:       LocalRate(members, cs.all),
			RoutedASNsIXPMemberRate: LocalRate(members, cs.routed),
			TotalCapacity:           float64(t.capacity) / 1000,
		}
		if err := g.store.UpsertCountryStats(ctx, row); err != nil {
			return nil, fmt.Errorf("failed to save stats of %s: %w", code, err)
		}
		metrics.StatsRows.WithLabelValues("country").Inc()
		summary.Countries++
	}

	g.logger.Info("Generated stats",
		zap.Time("month", month),
		zap.Int("exchanges", summary.Exchanges),
		zap.Int("countries", summary.Countries))
	return summary, nil
}
