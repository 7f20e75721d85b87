package cmd

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"twmods/core/config"
	"twmods/core/database"
	"twmods/core/loader"
	"twmods/core/logger"
	"twmods/core/middleware/auth"
	"twmods/core/middleware/rayid"
	"twmods/core/storage"
	"twmods/feature/comparison"
	"twmods/feature/workshop"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// startCmd represents the start command
var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the comparison server",
	Long:  `Starts the HTTP server and initializes all enabled features.`,
	Run: func(cmd *cobra.Command, args []string) {
		// 1. Load Configuration
		cfg, err := config.LoadConfig(".")
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}

		// 2. Initialize Logger
		logg, err := logger.New(&cfg.Log)
		if err != nil {
			log.Fatalf("Failed to initialize logger: %v", err)
		}
		defer logg.Sync()
		zap.ReplaceGlobals(logg)

		// 3. Connect the cache database (required; the metadata cache is the
		// only durable state of the service)
		db, err := database.Connect(cfg.Database)
		if err != nil {
			logg.Fatal("Failed to connect to cache database", zap.Error(err))
		}

		cache, err := workshop.NewCache(db, logg)
		if err != nil {
			logg.Fatal("Failed to initialize workshop cache", zap.Error(err))
		}
		defer cache.Close()

		// 4. Workshop API client
		client := workshop.NewClient(cfg.Workshop, logg)

		// 5. Object storage (optional; stored-manifest comparison is disabled
		// without it)
		var store storage.Client
		if s, err := storage.NewClient(cfg.Storage); err != nil {
			logg.Warn("Optional storage connection failed, stored-manifest comparison disabled", zap.Error(err))
		} else {
			store = s
			if ok, err := s.BucketExists(context.Background(), cfg.Storage.Bucket); err != nil {
				logg.Warn("Storage bucket check failed", zap.Error(err))
			} else if !ok {
				logg.Warn("Storage bucket does not exist, stored-manifest operations will fail",
					zap.String("bucket", cfg.Storage.Bucket))
			}
		}

		// 6. Pagination sessions with background sweep
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		sessions := comparison.NewSessionStore()
		sessions.StartSweeper(ctx)

		service := comparison.NewService(cache, client, store, cfg.Storage.Bucket, sessions, logg, cfg.Server.MaxUploadBytes())

		// 7. Initialize Fiber App
		app := fiber.New(fiber.Config{
			DisableStartupMessage: true, // We will log our own startup message
			BodyLimit:             int(cfg.Server.MaxUploadBytes()) * 4,
		})

		// Middleware Registration
		// RayID must be first to trace everything
		app.Use(rayid.New())

		// Request logging with Zap + RayID
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

		// Auth (protect the API)
		app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

		// 8. Load Features
		mgr := loader.NewManager()
		mgr.Register(comparison.NewFeature(service, logg))

		if err := mgr.LoadAll(app); err != nil {
			logg.Fatal("Failed to load features", zap.Error(err))
		}

		// 9. Start Server
		go func() {
			logg.Info("Starting server", zap.String("port", cfg.Server.Port))
			if err := app.Listen(":" + cfg.Server.Port); err != nil {
				logg.Fatal("Server failed to start", zap.Error(err))
			}
		}()

		// 10. Graceful Shutdown
		c := make(chan os.Signal, 1)
		signal.Notify(c, os.Interrupt, syscall.SIGTERM)
		<-c
		logg.Info("Shutting down server...")
		_ = app.Shutdown()
	},
}

func init() {
	RootCmd.AddCommand(startCmd)
}
