package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ixp-tracker/core/loader"
	"ixp-tracker/core/logger"
	"ixp-tracker/core/middleware/auth"
	"ixp-tracker/core/middleware/rayid"
	"ixp-tracker/feature/stats"

	"github.com/gofiber/fiber/v2"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stats API server",
	Long:  `Starts the read-only HTTP API serving computed statistics.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Configuration, logger and database
		rt, err := bootstrap()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		logg := rt.logger
		defer logg.Sync()

		if !rt.cfg.Server.IsValidPort() {
			logg.Fatal("Invalid server port", zap.String("port", rt.cfg.Server.Port))
		}

		// 2. Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 3. Feature Loader
		mgr := loader.NewManager(logg)
		cacheTTL := time.Duration(rt.cfg.Server.CacheSeconds) * time.Second
		mgr.Register(stats.NewFeature(rt.store, cacheTTL, clockwork.NewRealClock(), logg))

		// RayID goes first so every later log line can carry it.
		app.Use(rayid.New())

		app.Use(func(c *fiber.Ctx) error {
			l := logger.WithRayID(logg, c)
			l.Info("Request started",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.String("ip", c.IP()),
			)
			err := c.Next()
			if err != nil {
				l.Error("Request error", zap.Error(err))
			}
			return err
		})

		app.Use(auth.New(auth.Config{ApiKey: rt.cfg.Server.ApiKey}))

		// 4. Load Features
		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 5. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", rt.cfg.Server.Port))
			if err := app.Listen(rt.cfg.Server.Address()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 6. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(serveCmd)
}
