package container

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/arkivo/depositor/common/config"
	"github.com/arkivo/depositor/common/db"
	"github.com/arkivo/depositor/common/inventory"
	"github.com/arkivo/depositor/common/logger"
	"github.com/arkivo/depositor/deposit"
	"github.com/arkivo/depositor/repoclient"
)

// Container holds all initialized components (singleton pattern)
type Container struct {
	Config *config.Config
	Logger *logger.Logger
	DB     *db.DB

	Store     inventory.Store
	Client    repoclient.Client
	Depositor *deposit.Depositor
}

// NewContainer initializes all components once, bottom-up
func NewContainer(ctx context.Context) (*Container, error) {
	cfg, err := config.Load("depositor")
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}

	log := logger.New(cfg.Service.LogLevel, cfg.Service.LogFormat)

	database, err := db.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("connect inventory database: %w", err)
	}

	store := inventory.NewPostgresStore(database)

	var client repoclient.Client = repoclient.NewHTTPClient(cfg.Repository, log)
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       0,
		})
		client = repoclient.NewCachedClient(client, redisClient, cfg.Redis.TTL, log)
		log.Info("existence cache enabled", "addr", cfg.RedisAddr(), "ttl", cfg.Redis.TTL)
	}

	depositor, err := deposit.New(store, client, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("create depositor: %w", err)
	}

	return &Container{
		Config:    cfg,
		Logger:    log,
		DB:        database,
		Store:     store,
		Client:    client,
		Depositor: depositor,
	}, nil
}

// Shutdown releases held resources
func (c *Container) Shutdown() {
	if c.DB != nil {
		c.DB.Close()
	}
}
