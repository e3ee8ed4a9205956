package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Record outcomes used as the "result" label.
const (
	ResultImported = "imported"
	ResultSkipped  = "skipped"
)

var (
	RecordsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ixp_tracker_records_processed_total", Help: "Registry records processed by entity and result.",
	}, []string{"entity", "result"})

	PagesFetched = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ixp_tracker_registry_pages_fetched_total", Help: "Registry pages handed to a processor.",
	}, []string{"endpoint"})
	FetchFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ixp_tracker_registry_fetch_failures_total", Help: "Registry fetches aborted by transport or decode failures.",
	}, []string{"endpoint", "kind"})

	ArchiveProbes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ixp_tracker_archive_probes_total", Help: "Daily archive URLs probed during backfill.",
	}, []string{"result"})

	Departures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ixp_tracker_membership_departures_total", Help: "Membership periods closed by departure inference.",
	}, []string{"reason"})

	StatsRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ixp_tracker_stats_rows_written_total", Help: "Statistics rows upserted.",
	}, []string{"kind"})

	LastRunTimestamp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ixp_tracker_last_run_timestamp_seconds", Help: "Unix time of the last completed run per command.",
	}, []string{"command"})
)

// WriteTextfile writes every registered metric to path for the node exporter textfile collector.
func WriteTextfile(cfg Config) error {
	if cfg.Textfile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(cfg.Textfile, prometheus.DefaultGatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
