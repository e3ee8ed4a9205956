// Package lookup defines the external data the tracker consults about AS numbers.
//
// Four independent contracts are consumed:
//   - GeoLookup: registration country, allocation status and per-country AS sets.
//   - CustomerLookup: customer cone of a set of AS numbers.
//   - RPKILookup: route origin validation summary of an AS number.
//   - MANRSLookup: AS numbers participating in MANRS.
//
// Every call takes the as-of time of the data being processed, never "now".
//
// # Providers
//
//   - Default: no external data ("ZZ", "assigned", empty sets, empty RPKI summary).
//   - Static: fixed data read from a YAML file.
//
// Any provider can be wrapped with Cached. Load picks the provider from Config.
//
// # Usage
//
//	src, err := lookup.Load(cfg.Lookup)
//	code, err := src.Geo.CountryOf(ctx, 13335, updatedAt)
package lookup
