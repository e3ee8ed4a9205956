package importer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ixp-tracker/core/utils"
	"ixp-tracker/feature/archive"
	"ixp-tracker/feature/registry"
	"ixp-tracker/feature/tracker/store"

	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
)

// Fetcher pages through a registry endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string, pageSize int, since *time.Time, process registry.Processor) error
}

// Locator finds the archived dump of a month.
type Locator interface {
	Locate(ctx context.Context, month time.Time) (*archive.Snapshot, error)
}

// Options controls a live import.
type Options struct {
	// Reset ignores the stored network watermark and requests every network.
	Reset bool
	// PageSize is the network page size; 0 fetches networks in one request.
	PageSize int
}

// Importer runs live syncs and backfills in dependency order: exchanges,
// networks, then memberships.
type Importer struct {
	fetcher    Fetcher
	locator    Locator
	store      *store.Store
	reconciler *Reconciler
	clock      clockwork.Clock
	logger     *zap.Logger
}

// New creates an importer. locator may be nil when backfill is not used.
func New(fetcher Fetcher, locator Locator, st *store.Store, reconciler *Reconciler, clock clockwork.Clock, logger *zap.Logger) *Importer {
	return &Importer{
		fetcher:    fetcher,
		locator:    locator,
		store:      st,
		reconciler: reconciler,
		clock:      clock,
		logger:     logger,
	}
}

// Import syncs from the live registry. A fetch failure stops the run with
// registry.ErrFetch; pages applied before the failure are kept.
func (i *Importer) Import(ctx context.Context, opts Options) error {
	processing := i.clock.Now().UTC()

	err := i.fetcher.Fetch(ctx, registry.EndpointIX, 0, nil, func(ctx context.Context, records []registry.Record) error {
		return i.reconciler.ReconcileExchanges(ctx, processing, records)
	})
	if err != nil {
		return fmt.Errorf("importing exchanges: %w", err)
	}
	i.logger.Debug("Imported IXPs")

	var since *time.Time
	if !opts.Reset {
		if since, err = i.store.LatestNetworkUpdate(ctx); err != nil {
			return err
		}
	}
	i.logger.Debug("Fetching ASN data", zap.Timep("updated_since", since), zap.Int("page_size", opts.PageSize))
	err = i.fetcher.Fetch(ctx, registry.EndpointNet, opts.PageSize, since, func(ctx context.Context, records []registry.Record) error {
		return i.reconciler.ReconcileNetworks(ctx, records)
	})
	if err != nil {
		return fmt.Errorf("importing networks: %w", err)
	}
	i.logger.Debug("Imported ASNs")

	err = i.fetcher.Fetch(ctx, registry.EndpointNetIXLan, 0, nil, func(ctx context.Context, records []registry.Record) error {
		return i.reconciler.AttachMemberships(ctx, processing, records)
	})
	if err != nil {
		return fmt.Errorf("importing members: %w", err)
	}
	if err := i.reconciler.InferDepartures(ctx, processing); err != nil {
		return fmt.Errorf("inferring departures: %w", err)
	}
	i.logger.Debug("Imported members")
	return nil
}

// Backfill replays the first archived dump of month. The dump day is the
// processing time and no watermark applies. A month without a dump is logged
// and skipped.
func (i *Importer) Backfill(ctx context.Context, month time.Time) error {
	if i.locator == nil {
		return errors.New("backfill needs an archive locator")
	}
	snap, err := i.locator.Locate(ctx, utils.StartOfMonth(month))
	if errors.Is(err, archive.ErrNotFound) {
		i.logger.Warn("Backfill skipped", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	dump, err := archive.Parse(snap.Raw)
	if err != nil {
		return fmt.Errorf("parsing dump of %s: %w", snap.Day.Format("2006-01-02"), err)
	}

	processing := snap.Day
	i.logger.Info("Backfilling",
		zap.Time("processing_date", processing),
		zap.Int("ixps", len(dump.IX)),
		zap.Int("asns", len(dump.Net)),
		zap.Int("members", len(dump.NetIXLan)))

	if err := i.reconciler.ReconcileExchanges(ctx, processing, dump.IX); err != nil {
		return err
	}
	if err := i.reconciler.ReconcileNetworks(ctx, dump.Net); err != nil {
		return err
	}
	return i.reconciler.ReconcileMemberships(ctx, processing, dump.NetIXLan)
}
