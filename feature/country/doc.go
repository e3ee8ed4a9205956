// Package country holds the ISO 3166-1 alpha-2 reference table.
//
// Exchanges are only stored for codes in this table, and the stats generator
// writes one country row per code so that "no presence" is an explicit zero.
package country
