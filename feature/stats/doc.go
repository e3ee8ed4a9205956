// Package stats computes and serves monthly IXP statistics.
//
// Generator.Generate takes a month (normalised to its first day) and writes:
//
//   - one StatsPerExchange row per exchange created by then: member count,
//     capacity (sum of speeds / 1000), local ASN membership rate, routed and
//     customer-cone variants, route server peering rate, MANRS rate;
//   - one StatsPerCountry row per ISO 3166 country, even without exchanges.
//     Members are the union over the country's exchanges while capacity is a
//     plain sum.
//
// A membership counts for a month when the period governing that month
// started on or before it and did not end before it.
//
// The read API (Feature) serves stored rows under /stats with a TTL cache.
package stats
