package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/delivery"
	"storefront/internal/handlers"
	"storefront/internal/kvfile"
	"storefront/internal/logging"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"
	"storefront/internal/session"
	"storefront/pkg/kafka"
	"storefront/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLog, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer appLog.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, appLog); err != nil {
		appLog.Fatal("server stopped with error", zap.Error(err))
	}
}

// run serves until ctx is cancelled, then shuts down gracefully.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	srv, err := newServer(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer srv.close()

	listenErr := make(chan error, 1)
	go func() {
		log.Info("starting server", zap.String("addr", cfg.AppPort))
		listenErr <- srv.app.Listen(cfg.AppPort)
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server failed to start: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	if err := srv.app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("error during fiber shutdown", zap.Error(err))
	}
	log.Info("server gracefully stopped")
	return nil
}

// server is the assembled application and the resources it owns.
type server struct {
	app     *fiber.App
	db      *gorm.DB
	closers []func() error
	log     *zap.Logger
}

func (s *server) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			s.log.Warn("error releasing resource", zap.Error(err))
		}
	}
}

// newServer opens every backend named by cfg and mounts the HTTP routes.
// Background workers stop with ctx.
func newServer(ctx context.Context, cfg *config.Config, log *zap.Logger) (*server, error) {
	srv := &server{log: log}

	// --- Database ---
	db, err := database.Open(ctx, cfg.DatabaseDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return nil, err
	}
	srv.db = db
	srv.closers = append(srv.closers, func() error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	limits := repositories.PlacementLimits{
		Capacity:    cfg.OrderCapacity,
		Ceiling:     cfg.IDCeiling,
		MaxAttempts: cfg.IDMaxAttempts,
	}
	productRepo := repositories.NewGORMProductRepository(db, limits)
	orderRepo := repositories.NewGORMOrderRepository(db, limits)

	// --- Sessions ---
	store, err := openSessionStore(ctx, cfg, srv)
	if err != nil {
		srv.close()
		return nil, err
	}

	// --- Events ---
	publisher, err := openPublisher(ctx, cfg, srv)
	if err != nil {
		srv.close()
		return nil, err
	}

	// --- Services ---
	fees := delivery.NewFeeTable(cfg.DeliveryFeesFile, cfg.DeliveryDefaultCity)
	catalog := services.NewCatalogService(productRepo, log)
	orders := services.NewOrderService(orderRepo, fees, publisher, log)
	carts := services.NewCartService(store, productRepo, orders, log)
	admin := services.NewAdminService(kvfile.Open(cfg.AdminFile), cfg.JWTSecret, cfg.TokenTTL)
	content := services.NewContentService(kvfile.Open(cfg.ProfileFile), kvfile.Open(cfg.HelpFile))

	if cfg.SeedCatalog {
		n, err := catalog.SeedIfEmpty(ctx, seedProducts())
		if err != nil {
			srv.close()
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		if n > 0 {
			log.Info("seeded catalog", zap.Int("products", n))
		}
	}

	// --- Fiber App ---
	app := fiber.New(fiber.Config{AppName: "storefront"})
	app.Use(recover.New())
	app.Use(logger.New()) // Request logger

	handlers.Handlers{
		Products: handlers.NewProductHandler(catalog, log),
		Cart:     handlers.NewCartHandler(carts, log),
		Orders:   handlers.NewOrderHandler(orders, log),
		Admin:    handlers.NewAdminHandler(admin, log),
		Content:  handlers.NewContentHandler(content, log),
	}.Mount(app.Group("/api/v1"), middleware.Session(cfg.SessionTTL), middleware.AdminRequired(admin, log))

	app.Get("/health", srv.health(cfg))

	srv.app = app
	return srv, nil
}

func (s *server) health(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		status, health, dbState := fiber.StatusOK, "healthy", "up"
		sqlDB, err := s.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.UserContext())
		}
		if err != nil {
			s.log.Warn("health check failed", zap.Error(err))
			status, health, dbState = fiber.StatusServiceUnavailable, "degraded", "down"
		}
		return c.Status(status).JSON(fiber.Map{
			"status":   health,
			"time":     time.Now().Format(time.RFC3339),
			"database": dbState,
			"sessions": cfg.SessionBackend,
			"events":   cfg.EventsBackend,
		})
	}
}

func openSessionStore(ctx context.Context, cfg *config.Config, srv *server) (session.Store, error) {
	switch cfg.SessionBackend {
	case "redis":
		client, err := session.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		srv.closers = append(srv.closers, client.Close)
		srv.log.Info("using redis session store", zap.String("addr", cfg.RedisAddr))
		return session.NewRedisStore(client, cfg.SessionTTL), nil
	default:
		store := session.NewMemoryStore(cfg.SessionTTL)
		go sweepSessions(ctx, store, cfg.SessionTTL, srv.log)
		return store, nil
	}
}

// sweepSessions drops expired carts until ctx is done.
func sweepSessions(ctx context.Context, store *session.MemoryStore, ttl time.Duration, log *zap.Logger) {
	interval := ttl / 2
	if interval > time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := store.Sweep(); n > 0 {
				log.Debug("expired sessions removed", zap.Int("count", n), zap.Int("remaining", store.Len()))
			}
		}
	}
}

func openPublisher(ctx context.Context, cfg *config.Config, srv *server) (services.EventPublisher, error) {
	switch cfg.EventsBackend {
	case "rabbitmq":
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, srv.log)
		if err != nil {
			return nil, err
		}
		srv.closers = append(srv.closers, mqClient.Close)

		audit := services.AuditOrderEvent(srv.log)
		if err := mqClient.ConsumeOrderEvents(ctx, func(msg amqp.Delivery) error {
			return audit(msg.Body)
		}); err != nil {
			return nil, err
		}
		return mqClient, nil
	case "kafka":
		producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		srv.closers = append(srv.closers, producer.Close)
		srv.log.Info("publishing order events to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic))
		return producer, nil
	case "none", "":
		return nil, nil
	default:
		return nil, errors.New("unknown events backend " + cfg.EventsBackend)
	}
}

// seedProducts is the starter catalog stored into an empty database.
func seedProducts() []models.Product {
	return []models.Product{
		{Name: "Linen Shirt", Description: "Loose fit linen shirt", Price: 89900, Category: models.CategoryUpperBody,
			Colors: []string{"white", "navy"}, Sizes: []string{"S", "M", "L"}, AvailableUnits: 12},
		{Name: "Wide Leg Jeans", Description: "High rise denim", Price: 129900, Category: models.CategoryPants,
			Colors: []string{"blue"}, Sizes: []string{"26", "28", "30"}, AvailableUnits: 8},
		{Name: "Pleated Midi Skirt", Price: 99900, Category: models.CategorySkirts,
			Colors: []string{"black", "beige"}, Sizes: []string{"S", "M"}, AvailableUnits: 5},
		{Name: "Velvet Lipstick", Description: "Long lasting matte finish", Price: 45900, Category: models.CategoryMakeup,
			Colors: []string{"ruby", "nude"}, AvailableUnits: 30},
	}
}
