// Package models defines the persisted tracker schema.
//
// Exchanges, networks and memberships are keyed by registry ids and never
// deleted. A Membership is a durable (exchange, network) identity; each join
// or rejoin adds a MembershipPeriod, and at most one period per membership
// has a nil EndDate. Monthly statistics are keyed by (entity, month).
package models
