// Package app wires configuration, storage, services and HTTP handlers into a
// runnable Fiber application.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"bloglist/internal/config"
	"bloglist/internal/database"
	"bloglist/internal/handlers"
	"bloglist/internal/middleware"
	"bloglist/internal/repositories"
	"bloglist/internal/services"
	"bloglist/internal/workpool"
	"bloglist/pkg/rabbitmq"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"gorm.io/gorm"
)

// App is the assembled service.
type App struct {
	Fiber *fiber.App
	Auth  *services.AuthService
	Blogs *services.BlogService

	cfg    *config.Config
	logger *slog.Logger
	db     *gorm.DB         // nil for the memory driver
	mq     *rabbitmq.Client // nil when events are disabled
}

// Option customises New.
type Option func(*options)

type options struct {
	publisher  services.EventPublisher
	requestLog io.Writer
}

// WithPublisher replaces the RabbitMQ publisher, e.g. with a test double.
func WithPublisher(p services.EventPublisher) Option {
	return func(o *options) { o.publisher = p }
}

// WithRequestLog sets where the per-request access log is written.
func WithRequestLog(w io.Writer) Option {
	return func(o *options) { o.requestLog = w }
}

// New opens the configured store, migrates it, connects the event publisher
// when enabled and registers every route.
func New(cfg *config.Config, log *slog.Logger, opts ...Option) (*App, error) {
	o := options{requestLog: os.Stdout}
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{cfg: cfg, logger: log}

	userRepo, blogRepo, err := a.openStore()
	if err != nil {
		return nil, err
	}

	publisher := o.publisher
	if publisher == nil && cfg.EventsEnabled() {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL, Queue: cfg.EventsQueue}, log)
		if err != nil {
			// Events are best-effort; the API still serves without a broker.
			log.Warn("domain events disabled", "event", "rabbitmq_connect_failed", "error", err.Error())
		} else {
			a.mq = mq
			publisher = mq
		}
	}

	pool := workpool.New(cfg.HashWorkers)
	hasher := services.NewPasswordHasher(pool, cfg.BcryptCost)
	tokens := services.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	guard := services.NewGuard(tokens, userRepo, pool)

	a.Auth = services.NewAuthService(userRepo, hasher, tokens, publisher, log)
	a.Blogs = services.NewBlogService(blogRepo, publisher, log)

	a.Fiber = fiber.New(fiber.Config{
		AppName:      "bloglist",
		ErrorHandler: middleware.ErrorHandler(log),
	})
	a.Fiber.Use(recover.New())
	a.Fiber.Use(requestid.New())
	a.Fiber.Use(logger.New(logger.Config{Output: o.requestLog}))
	a.Fiber.Use(cors.New(cors.Config{AllowOrigins: cfg.CORSOrigins}))

	api := a.Fiber.Group("/api")
	handlers.NewBlogHandler(a.Blogs).RegisterRoutes(api, middleware.AuthRequired(guard))
	handlers.NewUserHandler(a.Auth).RegisterRoutes(api)
	handlers.NewAuthHandler(a.Auth).RegisterRoutes(api)

	a.Fiber.Get("/health", a.handleHealth)
	a.Fiber.Use(middleware.NotFound)

	return a, nil
}

func (a *App) openStore() (repositories.UserRepository, repositories.BlogRepository, error) {
	if a.cfg.DBDriver == "memory" {
		users, blogs := repositories.NewMemoryRepositories()
		a.logger.Info("using in-memory store")
		return users, blogs, nil
	}

	db, err := database.Open(a.cfg.DBDriver, a.cfg.DatabaseDSN, a.logger)
	if err != nil {
		return nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, nil, err
	}
	a.db = db
	a.logger.Info("database ready", "driver", a.cfg.DBDriver)

	return repositories.NewGORMUserRepository(db, a.logger), repositories.NewGORMBlogRepository(db, a.logger), nil
}

// Events returns the RabbitMQ client, or nil when events are disabled.
func (a *App) Events() *rabbitmq.Client { return a.mq }

// Ping checks that the store answers.
func (a *App) Ping(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	return database.Ping(ctx, a.db)
}

func (a *App) handleHealth(c *fiber.Ctx) error {
	code, status, store := fiber.StatusOK, "healthy", "ok"
	if err := a.Ping(c.UserContext()); err != nil {
		a.logger.Warn("health check failed", "event", "store_unreachable", "error", err.Error())
		code, status, store = fiber.StatusServiceUnavailable, "degraded", "unreachable"
	}
	events := "disabled"
	if a.mq != nil {
		events = "enabled"
	}
	return c.Status(code).JSON(fiber.Map{
		"status": status,
		"time":   time.Now().Format(time.RFC3339),
		"store":  store,
		"events": events,
	})
}

// Close releases the broker connection and the database.
func (a *App) Close() error {
	var errs []error
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rabbitmq: %w", err))
		}
	}
	if err := database.Close(a.db); err != nil {
		errs = append(errs, fmt.Errorf("close database: %w", err))
	}
	return errors.Join(errs...)
}
