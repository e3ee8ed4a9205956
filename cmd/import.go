package cmd

import (
	"fmt"

	"ixp-tracker/core/storage"
	"ixp-tracker/core/utils"
	"ixp-tracker/feature/archive"
	"ixp-tracker/feature/importer"
	"ixp-tracker/feature/lookup"
	"ixp-tracker/feature/registry"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	resetImport    bool
	backfillMonth  string
	importPageSize int
)

// importCmd syncs the local mirror with the registry.
var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import exchanges, networks and memberships",
	Long: `Fetches exchanges, networks and memberships from the live registry and
reconciles them into the database, closing memberships that disappeared.

With --backfill YYYY-MM the first archived dump of that month is processed
instead of the live registry.`,
	RunE: runImport,
}

func init() {
	RootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&resetImport, "reset", false, "Ignore the network watermark and fetch every network")
	importCmd.Flags().StringVar(&backfillMonth, "backfill", "", "Process the archived dump of a month (YYYY-MM)")
	importCmd.Flags().IntVar(&importPageSize, "page-size", -1, "Network page size (0 fetches in one request, default from config)")
}

func runImport(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	cfg := rt.cfg

	lookups, err := lookup.Load(cfg.Lookup)
	if err != nil {
		return fmt.Errorf("failed to load lookups: %w", err)
	}

	// Archive mirror is optional; backfill probes the archive directly without it.
	var mirror *archive.Mirror
	if cfg.Storage.Enabled {
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return fmt.Errorf("failed to connect to storage: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return err
		}
		mirror = archive.NewMirror(client, cfg.Storage.Bucket, cfg.Archive.MirrorPrefix, rt.logger)
	}

	imp := importer.New(
		registry.NewClient(cfg.Registry, rt.logger),
		archive.NewFetcher(cfg.Archive, mirror, rt.logger),
		rt.store,
		importer.NewReconciler(rt.store, lookups, rt.logger),
		clockwork.NewRealClock(),
		rt.logger,
	)

	if backfillMonth != "" {
		month, err := utils.ParseMonth(backfillMonth)
		if err != nil {
			return fmt.Errorf("invalid --backfill value: %w", err)
		}
		rt.logger.Info("Starting backfill", zap.String("month", backfillMonth))
		if err := imp.Backfill(ctx, month); err != nil {
			return err
		}
		rt.finish("backfill")
		return nil
	}

	pageSize := importPageSize
	if pageSize < 0 {
		pageSize = cfg.Registry.PageSize
	}

	rt.logger.Info("Starting import", zap.Bool("reset", resetImport), zap.Int("page_size", pageSize))
	if err := imp.Import(ctx, importer.Options{Reset: resetImport, PageSize: pageSize}); err != nil {
		return err
	}
	rt.finish("import")
	return nil
}
