// Package metrics defines the Prometheus metrics of the tracker.
//
// The tracker runs as a scheduled batch job rather than a long-lived server, so
// metrics are not scraped. Each command writes the default registry to a textfile
// (see WriteTextfile) that the node exporter textfile collector picks up.
package metrics
