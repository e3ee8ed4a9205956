package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"ixp-tracker/core/metrics"
	"ixp-tracker/core/utils"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// ErrNotFound means no day of the requested month has a dump.
var ErrNotFound = errors.New("archive snapshot not found")

// Snapshot is the raw dump of one day.
type Snapshot struct {
	Day time.Time
	Raw []byte
}

// Fetcher locates daily dumps in the public archive.
type Fetcher struct {
	cfg    Config
	http   *retryablehttp.Client
	mirror *Mirror
	logger *zap.Logger
}

// NewFetcher creates a fetcher. mirror may be nil.
func NewFetcher(cfg Config, mirror *Mirror, logger *zap.Logger) *Fetcher {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 0
	httpClient.HTTPClient.Timeout = cfg.Timeout()
	httpClient.Logger = nil
	httpClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Fetcher{cfg: cfg, http: httpClient, mirror: mirror, logger: logger}
}

// Locate returns the first available dump of month, probing day 1 onwards.
// It stops at the first HTTP 200 and returns ErrNotFound after the last day.
func (f *Fetcher) Locate(ctx context.Context, month time.Time) (*Snapshot, error) {
	start := utils.StartOfMonth(month)

	if f.mirror != nil {
		snap, err := f.mirror.Find(ctx, start)
		if err != nil {
			f.logger.Warn("Cannot read archive mirror", zap.Time("month", start), zap.Error(err))
		} else if snap != nil {
			metrics.ArchiveProbes.WithLabelValues("mirror").Inc()
			f.logger.Info("Using mirrored snapshot", zap.Time("day", snap.Day))
			return snap, nil
		}
	}

	for day := start; day.Month() == start.Month(); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, ok := f.probe(ctx, day)
		if !ok {
			metrics.ArchiveProbes.WithLabelValues("missing").Inc()
			continue
		}
		metrics.ArchiveProbes.WithLabelValues("found").Inc()
		snap := &Snapshot{Day: day, Raw: raw}
		if f.mirror != nil {
			if err := f.mirror.Store(ctx, snap); err != nil {
				f.logger.Warn("Cannot mirror snapshot", zap.Time("day", day), zap.Error(err))
			}
		}
		return snap, nil
	}

	f.logger.Warn("Cannot find backfill data", zap.Time("backfill_date", start))
	return nil, fmt.Errorf("%w: %s", ErrNotFound, start.Format("2006-01"))
}

func (f *Fetcher) probe(ctx context.Context, day time.Time) ([]byte, bool) {
	url := f.cfg.URL(day)
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.logger.Warn("Invalid archive url", zap.String("url", url), zap.Error(err))
		return nil, false
	}
	resp, err := f.http.Do(req)
	if err != nil {
		f.logger.Debug("Archive probe failed", zap.String("url", url), zap.Error(err))
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		f.logger.Debug("No archive for day", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil, false
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		f.logger.Warn("Cannot read archive body", zap.String("url", url), zap.Error(err))
		return nil, false
	}
	return raw, true
}
