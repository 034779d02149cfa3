package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	activityHandler "livraria/internal/domains/activity/handler"
	activityRepo "livraria/internal/domains/activity/repository"
	activityService "livraria/internal/domains/activity/service"
	bookHandler "livraria/internal/domains/book/handler"
	bookRepo "livraria/internal/domains/book/repository"
	bookService "livraria/internal/domains/book/service"

	"livraria/internal/config"
	infraCache "livraria/internal/infrastructure/cache"
	"livraria/internal/infrastructure/database"
	"livraria/internal/shared/middleware"
	"livraria/pkg/cache"
)

// Container chứa TẤT CẢ dependencies của application
type Container struct {
	// Infrastructure
	Config *config.Config
	DB     *database.PostgresDB     // nil unless STORE_DRIVER=postgres
	Redis  *infraCache.RedisClient  // nil unless cache or activity log use redis
	Cache  cache.Cache              // nil when caching is disabled
	Limits *middleware.LimiterStore // nil when rate limiting is disabled

	// Repositories
	BookRepo     bookRepo.RepositoryInterface
	ActivityRepo activityRepo.RepositoryInterface

	// Services
	BookService     bookService.ServiceInterface
	ActivityService activityService.ServiceInterface

	// Handlers
	BookHandler     *bookHandler.Handler
	ActivityHandler *activityHandler.Handler
}

// NewContainer builds the dependency graph in order:
// infrastructure → repositories → services → handlers.
func NewContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	log.Info().Str("store", cfg.Store.Driver).Str("activity", cfg.Activity.Driver).Msg("Initializing DI Container...")

	c := &Container{Config: cfg}

	if err := c.initInfrastructure(ctx); err != nil {
		c.Cleanup()
		return nil, err
	}
	if err := c.initRepositories(ctx); err != nil {
		c.Cleanup()
		return nil, fmt.Errorf("failed to init repositories: %w", err)
	}
	c.initServices()
	c.initHandlers()

	log.Info().Msg("DI Container initialized successfully")
	return c, nil
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.Config

	if cfg.Store.Driver == config.StorePostgres {
		connectCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
		defer cancel()

		db := database.NewPostgresDB(cfg.Database)
		if err := db.Connect(connectCtx); err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		c.DB = db
	}

	if cfg.UsesRedis() {
		rc := infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
		if err := rc.Connect(ctx); err != nil {
			_ = rc.Close()
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		c.Redis = rc
	}

	if cfg.Cache.Enabled {
		c.Cache = infraCache.NewRedisCache(c.Redis.Client, cfg.App.Name+":")
	}

	if cfg.RateLimit.RPS > 0 {
		c.Limits = middleware.NewLimiterStore(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	}
	return nil
}

func (c *Container) initRepositories(ctx context.Context) error {
	switch c.Config.Store.Driver {
	case config.StorePostgres:
		repo := bookRepo.NewPostgresRepository(c.DB.Pool)
		if err := repo.Migrate(ctx); err != nil {
			return err
		}
		c.BookRepo = repo
	default:
		c.BookRepo = bookRepo.NewMemoryRepository()
	}

	switch c.Config.Activity.Driver {
	case config.ActivityRedis:
		c.ActivityRepo = activityRepo.NewRedisRepository(c.Redis.Client, c.Config.Activity.RedisKey)
	default:
		c.ActivityRepo = activityRepo.NewMemoryRepository()
	}
	return nil
}

func (c *Container) initServices() {
	activity := activityService.NewService(c.ActivityRepo)
	c.ActivityService = activity
	c.BookService = bookService.NewService(c.BookRepo, c.Cache, c.Config.Cache.TTL, activity)
}

func (c *Container) initHandlers() {
	c.BookHandler = bookHandler.NewHandler(c.BookService)
	c.ActivityHandler = activityHandler.NewHandler(c.ActivityService)
}

// HealthCheck pings every external dependency in use.
func (c *Container) HealthCheck(ctx context.Context) map[string]error {
	checks := map[string]error{}
	if c.DB != nil {
		checks["database"] = c.DB.HealthCheck(ctx)
	}
	if c.Redis != nil {
		checks["redis"] = c.Redis.HealthCheck(ctx)
	}
	return checks
}

// Cleanup dọn dẹp resources khi shutdown
func (c *Container) Cleanup() {
	if c.DB != nil {
		c.DB.Close()
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Redis")
		}
	}
	log.Info().Msg("Container cleanup completed")
}
