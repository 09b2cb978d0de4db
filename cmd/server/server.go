package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wedding-gallery/photo-api/internal/config"
	accessdomain "github.com/wedding-gallery/photo-api/internal/domain/accesstoken"
	photodomain "github.com/wedding-gallery/photo-api/internal/domain/photo"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/database"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/logger"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/observability"
	accessrepo "github.com/wedding-gallery/photo-api/internal/infrastructure/repository/accesstoken"
	photorepo "github.com/wedding-gallery/photo-api/internal/infrastructure/repository/photo"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/storage"
	"github.com/wedding-gallery/photo-api/internal/interfaces/httpserver"
)

// @title Wedding Photo API
// @version 1.0
// @description Guest photo sharing service with token-gated gallery access
// @BasePath /
type Application struct {
	httpServer *httpserver.HttpServer
	log        zerolog.Logger
}

func NewApplication(httpServer *httpserver.HttpServer, log zerolog.Logger) *Application {
	return &Application{
		httpServer: httpServer,
		log:        log,
	}
}

func (a *Application) Start(ctx context.Context) error {
	return a.httpServer.Run(ctx)
}

func main() {
	loadEnvFiles()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := observability.Setup(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize observability")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown telemetry")
		}
	}()

	if err := database.Migrate(cfg.DatabaseURL, log); err != nil {
		log.Fatal().Err(err).Msg("migrate database")
	}

	db, err := database.Connect(database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect database")
	}

	backend, err := storage.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("initialize storage backend")
	}

	photoService := photodomain.NewService(cfg, photorepo.NewRepository(db), backend, log)
	accessService := accessdomain.NewService(cfg, accessrepo.NewRepository(db), log)

	httpServer := httpserver.New(cfg, log, photoService, accessService)
	app := NewApplication(httpServer, log)

	if err := app.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("application stopped with error")
	}

	log.Info().Msg("application exited cleanly")
}

func loadEnvFiles() {
	paths := []string{".env", "../.env"}
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				fmt.Fprintf(os.Stderr, "warning: failed to load %s: %v\n", path, err)
			}
		}
	}
}
