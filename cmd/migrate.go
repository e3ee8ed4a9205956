package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var checkOnly bool

// migrateCmd creates or updates the tracker tables.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Migrates every tracker table and then verifies that the database carries
all expected columns. Use --check to only report missing columns.`,
	RunE: runMigrate,
}

func init() {
	RootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().BoolVar(&checkOnly, "check", false, "Only report missing columns, do not migrate")
}

func runMigrate(cmd *cobra.Command, args []string) error {
	rt, err := bootstrap()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	if !checkOnly {
		if err := rt.store.Migrate(ctx); err != nil {
			return err
		}
		rt.logger.Info("Schema migrated")
	}

	missing, err := rt.store.CheckSchema(ctx)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		rt.logger.Error("Schema is missing columns", zap.Strings("columns", missing))
		return fmt.Errorf("schema check failed: %d missing columns", len(missing))
	}

	rt.logger.Info("Schema check passed")
	rt.finish("migrate")
	return nil
}
