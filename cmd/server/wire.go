//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/wedding-gallery/photo-api/internal/config"
	accessdomain "github.com/wedding-gallery/photo-api/internal/domain/accesstoken"
	photodomain "github.com/wedding-gallery/photo-api/internal/domain/photo"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/database"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/logger"
	accessrepo "github.com/wedding-gallery/photo-api/internal/infrastructure/repository/accesstoken"
	photorepo "github.com/wedding-gallery/photo-api/internal/infrastructure/repository/photo"
	"github.com/wedding-gallery/photo-api/internal/infrastructure/storage"
	"github.com/wedding-gallery/photo-api/internal/interfaces/httpserver"
)

var photoSet = wire.NewSet(
	photorepo.NewRepository,
	wire.Bind(new(photodomain.Repository), new(*photorepo.Repository)),
	storage.New,
	photodomain.NewService,
)

var accessSet = wire.NewSet(
	accessrepo.NewRepository,
	wire.Bind(new(accessdomain.Repository), new(*accessrepo.Repository)),
	accessdomain.NewService,
)

// BuildApplication assembles the photo API with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		newDatabaseConfig,
		newGormDB,
		photoSet,
		accessSet,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}

func newDatabaseConfig(cfg *config.Config) database.Config {
	return database.Config{
		DSN:             cfg.DatabaseURL,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		ConnMaxLifetime: cfg.DBConnLifetime,
		LogLevel:        gormlogger.Warn,
	}
}

func newGormDB(cfg database.Config, log zerolog.Logger) (*gorm.DB, error) {
	if err := database.Migrate(cfg.DSN, log); err != nil {
		return nil, err
	}
	return database.Connect(cfg)
}
