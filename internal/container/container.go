package container

import (
	"context"
	"fmt"
	"time"

	"obi-site/internal/config"
	"obi-site/internal/datepicker"
	"obi-site/internal/navigation"
	"obi-site/internal/repository"
	"obi-site/internal/service"
	"obi-site/pkg/database"
	"obi-site/pkg/logger"
	"obi-site/pkg/rabbitmq"
	"obi-site/pkg/redis"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *logger.Logger
	RedisClient *redis.Client
	Services    *service.Services
	Clock       datepicker.Clock
	Location    *time.Location
	Bootstrap   navigation.Bootstrap

	postgres  *database.PostgresDB
	sqlite    *database.SQLiteDB
	publisher *rabbitmq.Publisher
	enquiries *service.EnquiryService
}

// New creates a new dependency injection container. The record store must be
// reachable; Redis and the alert channels are optional and only logged when
// they fail.
func New(ctx context.Context, cfg *config.Config, logger *logger.Logger) (*Container, error) {
	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Clock:     time.Now,
		Location:  cfg.Location(),
		Bootstrap: navigation.NewBootstrap(),
	}

	repo, err := c.newEnquiryRepository(ctx)
	if err != nil {
		c.closeStores()
		return nil, err
	}
	logger.WithField("backend", repo.Backend()).Info("Record store initialized")

	// Initialize Redis client if Redis URL is configured
	var guard service.SubmissionGuard
	if cfg.RedisURL != "" {
		client, err := redis.NewClient(cfg.RedisURL, cfg.Environment, logger.Named("redis").Logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to initialize Redis client, using in-process submission guard")
		} else {
			c.RedisClient = client
			guard = service.NewRedisSubmissionGuard(client, cfg.SubmitLockTTL, logger)
			logger.Info("Redis client initialized successfully")
		}
	} else {
		logger.Info("Redis URL not configured, using in-process submission guard")
	}
	if guard == nil {
		guard = service.NewMemorySubmissionGuard()
	}

	tokens, err := service.NewFormTokenService(cfg.FormTokenSecret, cfg.FormTokenTTL)
	if err != nil {
		c.closeStores()
		return nil, err
	}

	c.enquiries = service.NewEnquiryService(repo, guard, logger, c.newListeners()...)
	c.Services = &service.Services{
		Enquiries:  c.enquiries,
		FormTokens: tokens,
	}

	return c, nil
}

func (c *Container) newEnquiryRepository(ctx context.Context) (repository.EnquiryRepository, error) {
	cfg := c.Config

	switch cfg.StoreBackend {
	case config.BackendPostgres:
		db, err := database.NewPostgresDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		c.postgres = db
		return repository.NewEnquiryRepository(db, cfg.EnquiryTable), nil

	case config.BackendSQLite:
		db, err := database.NewSQLiteDB(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite database: %w", err)
		}
		c.sqlite = db
		return repository.NewSQLiteEnquiryRepository(db, cfg.EnquiryTable)

	case config.BackendSupabase:
		client := service.NewSupabaseClient(cfg, c.Logger)
		return repository.NewSupabaseEnquiryRepository(client, cfg.EnquiryTable), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func (c *Container) newListeners() []service.EnquiryListener {
	cfg := c.Config
	var listeners []service.EnquiryListener

	if cfg.TelegramBotToken != "" {
		alerter, err := service.NewTelegramAlerter(cfg.TelegramBotToken, cfg.TelegramChatID)
		if err != nil {
			c.Logger.WithError(err).Warn("Failed to initialize Telegram alerts, continuing without them")
		} else {
			listeners = append(listeners, alerter)
			c.Logger.Info("Telegram alerts enabled")
		}
	}

	if cfg.AMQPURL != "" {
		publisher, err := rabbitmq.NewPublisher(cfg.AMQPURL, c.Logger)
		if err != nil {
			c.Logger.WithError(err).Warn("Failed to connect to message broker, continuing without events")
		} else {
			c.publisher = publisher
			listeners = append(listeners, service.NewBrokerAlerter(publisher))
			c.Logger.Info("Enquiry events enabled")
		}
	}

	return listeners
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetRedisClient returns the Redis client (may be nil if not configured)
func (c *Container) GetRedisClient() *redis.Client {
	return c.RedisClient
}

// HasRedis returns true if Redis client is available
func (c *Container) HasRedis() bool {
	return c.RedisClient != nil
}

// Today returns the current time in the site time zone
func (c *Container) Today() time.Time {
	return c.Clock().In(c.Location)
}

// Close waits for pending alerts and releases every connection
func (c *Container) Close(ctx context.Context) error {
	var errs []error

	if c.enquiries != nil {
		if err := c.enquiries.Wait(ctx); err != nil {
			errs = append(errs, fmt.Errorf("pending alerts: %w", err))
		}
	}
	if c.publisher != nil {
		c.publisher.Close()
	}
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis close: %w", err))
		}
	}
	if err := c.closeStores(); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return fmt.Errorf("close completed with %d errors: %v", len(errs), errs)
	}
	return nil
}

func (c *Container) closeStores() error {
	if c.postgres != nil {
		c.postgres.Close()
		c.postgres = nil
	}
	if c.sqlite != nil {
		err := c.sqlite.Close()
		c.sqlite = nil
		if err != nil {
			return fmt.Errorf("sqlite close: %w", err)
		}
	}
	return nil
}
