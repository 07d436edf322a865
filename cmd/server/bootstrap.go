package main

import (
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/promptvault/promptvault/internal/config"
	"github.com/promptvault/promptvault/internal/handlers"
	"github.com/promptvault/promptvault/internal/models"
	"github.com/promptvault/promptvault/internal/services"
	"github.com/promptvault/promptvault/internal/utils"
	"github.com/promptvault/promptvault/pkg/logger"
)

// app holds all initialized dependencies and handlers.
type app struct {
	db          *gorm.DB
	redisClient *redis.Client

	authHandler    *handlers.AuthHandler
	projectHandler *handlers.ProjectHandler
	promptHandler  *handlers.PromptHandler
	tagHandler     *handlers.TagHandler
	searchHandler  *handlers.SearchHandler
	userHandler    *handlers.UserHandler
}

// bootstrap initializes the database, token store and handlers.
func bootstrap(cfg *config.Config) *app {
	utils.SetJWTSecret(cfg.JWT.Secret)
	utils.SetRefreshSecret(cfg.JWT.RefreshSecret)

	db, err := models.InitDB(&cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(db); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	// Refresh tokens live in redis when enabled, otherwise in process memory.
	var store services.TokenStore
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = services.NewRedisTokenStore(redisClient)
		logger.Info().Str("addr", cfg.Redis.Addr).Msg("Using redis refresh-token store")
	} else {
		store = services.NewMemoryTokenStore()
		logger.Info().Msg("Redis disabled, using in-memory refresh-token store")
	}

	return &app{
		db:             db,
		redisClient:    redisClient,
		authHandler:    handlers.NewAuthHandler(db, store, cfg.JWT),
		projectHandler: handlers.NewProjectHandler(db),
		promptHandler:  handlers.NewPromptHandler(db),
		tagHandler:     handlers.NewTagHandler(db),
		searchHandler:  handlers.NewSearchHandler(db),
		userHandler:    handlers.NewUserHandler(db),
	}
}

// shutdown releases external connections.
func (a *app) shutdown() {
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close redis client")
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		sqlDB.Close()
	}
}
