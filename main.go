package main

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/Ananth-NQI/clinicbot-backend/database"
	"github.com/Ananth-NQI/clinicbot-backend/internal/config"
	"github.com/Ananth-NQI/clinicbot-backend/internal/handlers"
	"github.com/Ananth-NQI/clinicbot-backend/internal/logging"
	"github.com/Ananth-NQI/clinicbot-backend/internal/metrics"
	"github.com/Ananth-NQI/clinicbot-backend/internal/middleware"
	"github.com/Ananth-NQI/clinicbot-backend/internal/responder"
	"github.com/Ananth-NQI/clinicbot-backend/internal/routes"
	"github.com/Ananth-NQI/clinicbot-backend/internal/services"
	"github.com/Ananth-NQI/clinicbot-backend/internal/storage"
	"github.com/Ananth-NQI/clinicbot-backend/internal/transport"
)

func main() {
	fx.New(
		fx.WithLogger(func(logger *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: logger}
		}),
		fx.Provide(
			config.Load,
			logging.New,
			metrics.NewMetrics,
			newStore,
			newTransport,
			fx.Annotate(newResponder, fx.As(new(services.ResponseEngine))),
			fx.Annotate(newAuthenticator, fx.As(new(services.Authenticator))),
			services.NewTenantResolver,
			services.NewMessageStore,
			services.NewOutbound,
			services.NewEventHandlers,
			services.NewDispatcher,
			services.NewWebhookService,
			newWebhookHandler,
			newHealthHandler,
			newFiberApp,
		),
		fx.Invoke(seedTenants, startServer),
	).Run()
}

// newStore picks the storage backend and optionally fronts it with the
// Redis tenant cache
func newStore(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) (storage.Store, error) {
	var store storage.Store

	if cfg.Database.Driver == "memory" {
		logger.Warn("Using in-memory storage (not for production!)")
		store = storage.NewMemoryStore()
	} else {
		db, err := database.Connect(context.Background(), cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		if cfg.Database.AutoMigrate {
			if err := database.Migrate(db); err != nil {
				return nil, fmt.Errorf("failed to migrate database: %w", err)
			}
			logger.Info("Database migrations completed")
		}
		store = storage.NewDatabaseStore(db)
	}

	if cfg.Redis.Enabled {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		store = storage.NewCachedStore(store, redis.NewClient(opts), cfg.Redis.TenantTTL, logger.Named("tenant-cache"))
		logger.Info("Tenant cache enabled", zap.Duration("ttl", cfg.Redis.TenantTTL))
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return store.Close()
		},
	})

	return store, nil
}

func newTransport(cfg *config.Config, logger *zap.Logger) (transport.Transport, error) {
	return transport.New(cfg.Transport, logger)
}

func newResponder(cfg *config.Config) *responder.Responder {
	return responder.New(cfg.Responder)
}

func newAuthenticator(cfg *config.Config) *middleware.WebhookAuthenticator {
	return middleware.NewWebhookAuthenticator(cfg.Webhook)
}

func newWebhookHandler(svc *services.WebhookService, cfg *config.Config, logger *zap.Logger) *handlers.WebhookHandler {
	return handlers.NewWebhookHandler(svc, cfg.Webhook, logger)
}

func newHealthHandler(cfg *config.Config, store storage.Store, outbound *services.Outbound, logger *zap.Logger) *handlers.HealthHandler {
	return handlers.NewHealthHandler(cfg.App.Version, cfg.Database.Driver, outbound.Driver(), store, logger)
}

func newFiberApp(cfg *config.Config, m *metrics.Metrics, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               fmt.Sprintf("ClinicBot Backend v%s", cfg.App.Version),
		ReadTimeout:           cfg.API.ReadTimeout,
		WriteTimeout:          cfg.API.WriteTimeout,
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(middleware.RequestLogger(m, logger))
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.API.AllowOrigins,
		AllowHeaders: fmt.Sprintf("Origin, Content-Type, Accept, %s, %s", cfg.Webhook.SignatureHeader, cfg.Webhook.DigestHeader),
		AllowMethods: "GET, POST, OPTIONS",
	}))

	return app
}

func seedTenants(cfg *config.Config, store storage.Store, logger *zap.Logger) error {
	if len(cfg.Seed) == 0 {
		return nil
	}
	return storage.Seed(context.Background(), store, cfg.Seed, logger)
}

func startServer(
	lc fx.Lifecycle,
	app *fiber.App,
	cfg *config.Config,
	webhook *handlers.WebhookHandler,
	health *handlers.HealthHandler,
	m *metrics.Metrics,
	logger *zap.Logger,
) {
	routes.SetupRoutes(app, cfg, webhook, health, m)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			addr := ":" + cfg.API.Port
			go func() {
				if err := app.Listen(addr); err != nil {
					logger.Error("Server stopped", zap.Error(err))
				}
			}()
			logger.Info("ClinicBot server started", zap.String("addr", addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down server")
			defer logger.Sync()
			return app.ShutdownWithContext(ctx)
		},
	})
}
