package lookup

import (
	"context"
	"time"
)

// StatusAssigned is the only registration status treated as a live allocation.
const StatusAssigned = "assigned"

// GeoLookup resolves registration data of AS numbers as of a point in time.
type GeoLookup interface {
	// CountryOf returns the ISO 3166 alpha-2 registration country, or "ZZ" when unknown.
	CountryOf(ctx context.Context, asn int, asOf time.Time) (string, error)
	// StatusOf returns the registry status of the allocation, e.g. "assigned".
	StatusOf(ctx context.Context, asn int, asOf time.Time) (string, error)
	// ASNsOfCountry returns every AS number registered to the country.
	ASNsOfCountry(ctx context.Context, country string, asOf time.Time) ([]int, error)
	// RoutedASNsOfCountry returns the registered AS numbers that were seen in routing.
	RoutedASNsOfCountry(ctx context.Context, country string, asOf time.Time) ([]int, error)
}

// CustomerLookup resolves the customer cone of AS numbers.
type CustomerLookup interface {
	CustomerASNsOf(ctx context.Context, asns []int, asOf time.Time) ([]int, error)
}

// RPKILookup summarises route origin validation for an AS number.
type RPKILookup interface {
	RPKISummaryOf(ctx context.Context, asn int, asOf time.Time) (RPKISummary, error)
}

// MANRSLookup lists the AS numbers participating in MANRS.
type MANRSLookup interface {
	ParticipantsOf(ctx context.Context, asOf time.Time) ([]int, error)
}

// Sources bundles the lookups consumed by the importer and the stats generator.
// Each member can come from a different provider.
type Sources struct {
	Geo       GeoLookup
	Customers CustomerLookup
	RPKI      RPKILookup
	MANRS     MANRSLookup
}

// ROAStateCounts counts validation states.
type ROAStateCounts struct {
	Valid   int `yaml:"valid" json:"valid"`
	Invalid int `yaml:"invalid" json:"invalid"`
	Unknown int `yaml:"unknown" json:"unknown"`
}

// AddressFamilyCounts splits counts by IP version.
type AddressFamilyCounts struct {
	V4 ROAStateCounts `yaml:"v4" json:"v4"`
	V6 ROAStateCounts `yaml:"v6" json:"v6"`
}

// RPKISummary holds validation counts by ROA and by covered address space.
type RPKISummary struct {
	ByROA     AddressFamilyCounts `yaml:"by_roa" json:"by_roa"`
	ByAddress AddressFamilyCounts `yaml:"by_address" json:"by_address"`
}

// EmptyRPKISummary is the summary of an AS number without any RPKI data.
var EmptyRPKISummary = RPKISummary{}
