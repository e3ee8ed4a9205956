package archive

import (
	"fmt"
	"strings"
	"time"
)

// Config holds historical dump settings.
type Config struct {
	// URLTemplate is expanded per probed day. {year} is four digits, {month} and {day} are zero padded.
	URLTemplate    string `mapstructure:"url_template" default:"https://publicdata.caida.org/datasets/peeringdb/{year}/{month}/peeringdb_2_dump_{year}_{month}_{day}.json"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" default:"60"`
	// MirrorPrefix is the object key prefix used when storage is enabled.
	MirrorPrefix string `mapstructure:"mirror_prefix" default:"peeringdb"`
}

// Timeout returns the per-probe timeout.
func (c Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// URL expands the template for day.
func (c Config) URL(day time.Time) string {
	day = day.UTC()
	return strings.NewReplacer(
		"{year}", fmt.Sprintf("%04d", day.Year()),
		"{month}", fmt.Sprintf("%02d", int(day.Month())),
		"{day}", fmt.Sprintf("%02d", day.Day()),
	).Replace(c.URLTemplate)
}
