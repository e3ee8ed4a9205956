package registry

import "time"

// Config holds registry API settings.
type Config struct {
	BaseURL        string `mapstructure:"base_url" default:"https://www.peeringdb.com/api"`
	APIKey         string `mapstructure:"api_key" default:""`
	PageSize       int    `mapstructure:"page_size" default:"200"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" default:"30"`
	// RetryMax is the number of retries per request. 0 keeps a failed page fatal for the run.
	RetryMax int `mapstructure:"retry_max" default:"0"`
}

// Timeout returns the per-request timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}
