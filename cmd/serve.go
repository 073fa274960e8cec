package cmd

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"catalog-sync/core/loader"
	"catalog-sync/core/logger"
	"catalog-sync/core/middleware/auth"
	"catalog-sync/core/middleware/rayid"
	"catalog-sync/core/server"
	"catalog-sync/feature/cache"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the identity cache over HTTP",
	Long:  `Starts the HTTP server exposing cache statistics, lookups, clearing and on-demand resolution.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration and Logger
		a, err := bootstrap()
		if err != nil {
			log.Fatalf("Failed to start: %v", err)
		}
		defer a.close()
		logg := a.log

		// 2. Initialize Cache and Backends
		resolver, err := a.openResolver(cmd.Context(), 0)
		if err != nil {
			logg.Fatal("Failed to open identity cache", zap.Error(err))
		}
		retailLookup, ecomLookup := lookups(a.retailBackend(), a.ecomBackend())

		// 3. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true,
		})

		// 4. Initialize Feature Loader
		mgr := loader.NewManager()
		mgr.Register(cache.NewFeature(resolver, retailLookup, ecomLookup, a.cfg.Server.ResolveLimit, logg))

		// Middleware Registration
		// 1. RayID (Must be first to trace everything)
		app.Use(rayid.New())

		// 2. Request logging with the RayID attached
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

		// 3. Auth (health and metrics stay public)
		app.Use(auth.New(auth.Config{ApiKey: a.cfg.Server.ApiKey, Public: server.PublicPaths}))
		if !a.cfg.Server.IsProtected() {
			logg.Warn("No API key configured, the cache API is open")
		}

		server.RegisterSystemRoutes(app, a.registry)

		// 5. Load Features
		loaded, err := mgr.LoadAll(app)
		if err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}
		logg.Info("Features loaded", zap.Strings("features", loaded))

		// 6. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", a.cfg.Server.Port))
			if err := app.Listen(a.cfg.Server.Addr()); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 7. Graceful Shutdown
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
