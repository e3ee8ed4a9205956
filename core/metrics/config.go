package metrics

// Config holds configuration for the batch metrics export.
type Config struct {
	// Textfile is where a run writes its metrics in Prometheus text format.
	// Empty disables the export.
	Textfile string `mapstructure:"textfile" default:""`
}
