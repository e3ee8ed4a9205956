package lookup

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"ixp-tracker/feature/country"

	"gopkg.in/yaml.v3"
)

// StaticNetwork is the registration data of one AS number in a static file.
type StaticNetwork struct {
	Country string      `yaml:"country"`
	Status  string      `yaml:"status"`
	RPKI    RPKISummary `yaml:"rpki"`
}

// StaticCountry lists the AS numbers of one country in a static file.
type StaticCountry struct {
	ASNs   []int `yaml:"asns"`
	Routed []int `yaml:"routed"`
}

// StaticData is the document layout of a static lookup file.
type StaticData struct {
	Networks  map[int]StaticNetwork    `yaml:"networks"`
	Countries map[string]StaticCountry `yaml:"countries"`
	Customers map[int][]int            `yaml:"customers"`
	MANRS     []int                    `yaml:"manrs"`
}

// Static answers lookups from a fixed data set, ignoring the as-of time.
type Static struct {
	data StaticData
}

// NewStatic wraps an in-memory data set.
func NewStatic(data StaticData) *Static {
	return &Static{data: data}
}

// LoadStatic reads a YAML static lookup file.
func LoadStatic(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lookup file: %w", err)
	}
	var data StaticData
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("failed to parse lookup file %s: %w", path, err)
	}
	return NewStatic(data), nil
}

func (s *Static) CountryOf(ctx context.Context, asn int, asOf time.Time) (string, error) {
	if n, ok := s.data.Networks[asn]; ok && n.Country != "" {
		return n.Country, nil
	}
	return country.Unknown, nil
}

func (s *Static) StatusOf(ctx context.Context, asn int, asOf time.Time) (string, error) {
	if n, ok := s.data.Networks[asn]; ok && n.Status != "" {
		return n.Status, nil
	}
	return StatusAssigned, nil
}

func (s *Static) ASNsOfCountry(ctx context.Context, code string, asOf time.Time) ([]int, error) {
	return copyInts(s.data.Countries[code].ASNs), nil
}

func (s *Static) RoutedASNsOfCountry(ctx context.Context, code string, asOf time.Time) ([]int, error) {
	return copyInts(s.data.Countries[code].Routed), nil
}

func (s *Static) CustomerASNsOf(ctx context.Context, asns []int, asOf time.Time) ([]int, error) {
	seen := make(map[int]struct{})
	for _, asn := range asns {
		for _, customer := range s.data.Customers[asn] {
			seen[customer] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for asn := range seen {
		out = append(out, asn)
	}
	sort.Ints(out)
	return out, nil
}

func (s *Static) RPKISummaryOf(ctx context.Context, asn int, asOf time.Time) (RPKISummary, error) {
	return s.data.Networks[asn].RPKI, nil
}

func (s *Static) ParticipantsOf(ctx context.Context, asOf time.Time) ([]int, error) {
	return copyInts(s.data.MANRS), nil
}

// Sources returns Sources backed entirely by s.
func (s *Static) Sources() Sources {
	return Sources{Geo: s, Customers: s, RPKI: s, MANRS: s}
}

func copyInts(in []int) []int {
	out := make([]int, len(in))
	copy(out, in)
	return out
}
