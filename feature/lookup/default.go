package lookup

import (
	"context"
	"time"

	"ixp-tracker/feature/country"
)

// Default satisfies every lookup without external data.
// Networks resolve to the unknown country, every allocation is assigned and
// every set is empty, so the pipeline runs with nothing configured.
type Default struct{}

func (Default) CountryOf(ctx context.Context, asn int, asOf time.Time) (string, error) {
	return country.Unknown, nil
}

func (Default) StatusOf(ctx context.Context, asn int, asOf time.Time) (string, error) {
	return StatusAssigned, nil
}

func (Default) ASNsOfCountry(ctx context.Context, code string, asOf time.Time) ([]int, error) {
	return []int{}, nil
}

func (Default) RoutedASNsOfCountry(ctx context.Context, code string, asOf time.Time) ([]int, error) {
	return []int{}, nil
}

func (Default) CustomerASNsOf(ctx context.Context, asns []int, asOf time.Time) ([]int, error) {
	return []int{}, nil
}

func (Default) RPKISummaryOf(ctx context.Context, asn int, asOf time.Time) (RPKISummary, error) {
	return EmptyRPKISummary, nil
}

func (Default) ParticipantsOf(ctx context.Context, asOf time.Time) ([]int, error) {
	return []int{}, nil
}

// DefaultSources returns Sources backed entirely by Default.
func DefaultSources() Sources {
	d := Default{}
	return Sources{Geo: d, Customers: d, RPKI: d, MANRS: d}
}
