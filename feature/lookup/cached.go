package lookup

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Cached memoises lookups in an LRU keyed by call, arguments and as-of day.
// The importer asks for the same country/status many times per run, and the
// stats generator asks for the same country sets once per exchange.
type Cached struct {
	inner   Sources
	entries *lru.Cache[string, any]
}

// NewCached wraps src with an LRU of the given size.
func NewCached(src Sources, size int) (*Cached, error) {
	entries, err := lru.New[string, any](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create lookup cache: %w", err)
	}
	return &Cached{inner: src, entries: entries}, nil
}

// Sources returns Sources whose calls go through the cache.
func (c *Cached) Sources() Sources {
	return Sources{Geo: c, Customers: c, RPKI: c, MANRS: c}
}

// Len returns the number of cached answers.
func (c *Cached) Len() int {
	return c.entries.Len()
}

func cacheKey(call string, asOf time.Time, args ...string) string {
	return call + "|" + asOf.UTC().Format("2006-01-02") + "|" + strings.Join(args, ",")
}

func load[T any](c *Cached, key string, fetch func() (T, error)) (T, error) {
	if v, ok := c.entries.Get(key); ok {
		return v.(T), nil
	}
	v, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}
	c.entries.Add(key, v)
	return v, nil
}

func (c *Cached) CountryOf(ctx context.Context, asn int, asOf time.Time) (string, error) {
	return load(c, cacheKey("country", asOf, strconv.Itoa(asn)), func() (string, error) {
		return c.inner.Geo.CountryOf(ctx, asn, asOf)
	})
}

func (c *Cached) StatusOf(ctx context.Context, asn int, asOf time.Time) (string, error) {
	return load(c, cacheKey("status", asOf, strconv.Itoa(asn)), func() (string, error) {
		return c.inner.Geo.StatusOf(ctx, asn, asOf)
	})
}

func (c *Cached) ASNsOfCountry(ctx context.Context, code string, asOf time.Time) ([]int, error) {
	asns, err := load(c, cacheKey("asns", asOf, code), func() ([]int, error) {
		return c.inner.Geo.ASNsOfCountry(ctx, code, asOf)
	})
	return copyInts(asns), err
}

func (c *Cached) RoutedASNsOfCountry(ctx context.Context, code string, asOf time.Time) ([]int, error) {
	asns, err := load(c, cacheKey("routed", asOf, code), func() ([]int, error) {
		return c.inner.Geo.RoutedASNsOfCountry(ctx, code, asOf)
	})
	return copyInts(asns), err
}

func (c *Cached) CustomerASNsOf(ctx context.Context, asns []int, asOf time.Time) ([]int, error) {
	sorted := copyInts(asns)
	sort.Ints(sorted)
	args := make([]string, len(sorted))
	for i, asn := range sorted {
		args[i] = strconv.Itoa(asn)
	}
	customers, err := load(c, cacheKey("customers", asOf, args...), func() ([]int, error) {
		return c.inner.Customers.CustomerASNsOf(ctx, asns, asOf)
	})
	return copyInts(customers), err
}

func (c *Cached) RPKISummaryOf(ctx context.Context, asn int, asOf time.Time) (RPKISummary, error) {
	return load(c, cacheKey("rpki", asOf, strconv.Itoa(asn)), func() (RPKISummary, error) {
		return c.inner.RPKI.RPKISummaryOf(ctx, asn, asOf)
	})
}

func (c *Cached) ParticipantsOf(ctx context.Context, asOf time.Time) ([]int, error) {
	asns, err := load(c, cacheKey("manrs", asOf), func() ([]int, error) {
		return c.inner.MANRS.ParticipantsOf(ctx, asOf)
	})
	return copyInts(asns), err
}
