package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go-portmap/internal/config"
	"go-portmap/internal/db"
	"go-portmap/internal/inventory"
	"go-portmap/internal/logger"
	"go-portmap/internal/metrics"
	"go-portmap/internal/seed"
	"go-portmap/internal/web"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	lg, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "portmap")
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer lg.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	kv, err := db.Open(ctx, cfg.Storage)
	if err != nil {
		cancel()
		lg.Fatal("failed to open storage", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}
	defer kv.Close()

	m := metrics.New(prometheus.DefaultRegisterer)
	writer := db.NewWriter(kv, cfg.Storage.Key, lg.Named("writer"), m)

	inv := inventory.Boot(ctx, kv, cfg.Storage.Key, inventory.Options{
		Sink:    writer,
		Metrics: m,
		Logger:  lg.Named("inventory"),
		Seed: seed.FromFile(cfg.SeedPath, func(err error) {
			lg.Warn("seed file unusable, using built-in seed", zap.String("path", cfg.SeedPath), zap.Error(err))
		}),
	})
	cancel()

	app := fiber.New(fiber.Config{
		Views:                 web.NewEngine(cfg.Web.TemplatesDir),
		DisableStartupMessage: true,
	})
	web.SetupRoutes(app, inv, lg.Named("web"), nil)

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		lg.Info("shutting down")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			lg.Warn("shutdown", zap.Error(err))
		}
	}()

	lg.Info("server running", zap.String("addr", "http://"+cfg.Addr()), zap.String("storage", cfg.Storage.Driver))
	if err := app.Listen(cfg.Addr()); err != nil {
		lg.Error("listen", zap.Error(err))
	}
	if err := writer.Close(); err != nil {
		lg.Error("final persist failed", zap.Error(err))
	}
}
