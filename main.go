package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"storefront/internal/cache"
	"storefront/internal/commerce"
	"storefront/internal/config"
	"storefront/internal/handlers"
	applog "storefront/internal/logger"
	"storefront/internal/metrics"
	"storefront/internal/middleware"
	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/sandbox"
	"storefront/internal/services"
	"storefront/pkg/rabbitmq"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load(".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := applog.New(cfg.AppEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	app, cleanup, err := NewApp(cfg, log)
	if err != nil {
		log.Fatal("Failed to create app", zap.Error(err))
	}
	defer cleanup()

	// --- Start HTTP Server ---
	log.Info("Starting server", zap.String("port", cfg.AppPort), zap.String("backend", cfg.CommerceBackend))

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(cfg.AppPort); err != nil {
			log.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	<-quit
	log.Info("Shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		log.Error("Error during Fiber shutdown", zap.Error(err))
	}
	log.Info("Server gracefully stopped")
}

// NewApp wires the storefront and returns the Fiber app together with a
// cleanup function releasing its connections.
func NewApp(cfg *config.Config, log *zap.Logger) (*fiber.App, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*fiber.App, func(), error) {
		cleanup()
		return nil, nil, err
	}

	// --- Commerce backend ---
	var (
		backend commerce.Backend
		sb      *sandbox.Backend
	)
	switch cfg.CommerceBackend {
	case config.BackendHTTP:
		backend = commerce.NewClient(commerce.ClientConfig{
			BaseURL:      cfg.CommerceAPIURL,
			ClientID:     cfg.CommerceClientID,
			ClientSecret: cfg.CommerceClientSecret,
			SiteID:       cfg.CommerceSiteID,
			Timeout:      cfg.CommerceTimeout,
		})
	default:
		var err error
		sb, err = newSandbox(cfg, log)
		if err != nil {
			return fail(err)
		}
		backend = sb
	}

	// --- Cache ---
	var tagCache cache.TagCache
	switch cfg.CacheDriver {
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx).Err()
		cancel()
		if err != nil {
			client.Close()
			return fail(fmt.Errorf("failed to connect to redis: %w", err))
		}
		closers = append(closers, func() { client.Close() })
		tagCache = cache.NewRedisCache(client, cfg.CacheTTL)
	default:
		tagCache = cache.NewMemoryCache(cfg.CacheTTL)
	}
	loader := cache.NewLoader(tagCache, log)

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)

	// --- Order events ---
	var publisher services.OrderEventPublisher
	if cfg.RabbitMQURL != "" {
		mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, log)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, func() { mq.Close() })
		publisher = mq
		startOrderConsumer(mq, sb, log)
	}

	// --- Services ---
	cartService := services.NewCartService(backend, loader, log)
	checkoutService := services.NewCheckoutService(backend, loader, publisher, checkoutMetrics, log)
	revalidationService := services.NewRevalidationService(cfg.RevalidationSecret, loader, checkoutMetrics, log)

	// --- Fiber App ---
	app := fiber.New(fiber.Config{AppName: "storefront"})
	app.Use(logger.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "healthy",
			"time":    time.Now().Format(time.RFC3339),
			"backend": cfg.CommerceBackend,
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
	handlers.NewRevalidateHandler(revalidationService, log).RegisterRoutes(app)

	// Shopper routes need a guest session.
	app.Use(middleware.GuestSession(backend, middleware.SessionConfig{
		GuestTokenTTL: cfg.GuestTokenTTL,
		Secure:        cfg.CookieSecure,
	}, log))
	handlers.NewCartHandler(cartService, log).RegisterRoutes(app)
	handlers.NewCheckoutHandler(checkoutService, cartService, log).RegisterRoutes(app)

	return app, cleanup, nil
}

// newSandbox builds the local commerce backend on the configured database
// and seeds its catalog.
func newSandbox(cfg *config.Config, log *zap.Logger) (*sandbox.Backend, error) {
	db, err := openDatabase(cfg)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.Product{}, &repositories.BasketRecord{}, &repositories.OrderRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	store := repositories.NewGORMStore(db)
	if err := sandbox.Seed(store.Repositories().Products, cfg.Currency, log); err != nil {
		return nil, err
	}

	secretHash := cfg.CommerceClientSecretHash
	if secretHash == "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.CommerceClientSecret), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash client secret: %w", err)
		}
		secretHash = string(hash)
	}
	auth := services.NewGuestAuthService(cfg.CommerceClientID, secretHash, cfg.JWTSecret, cfg.GuestTokenTTL, log)

	return sandbox.NewBackend(auth,
		store,
		sandbox.Options{
			ClientID:     cfg.CommerceClientID,
			ClientSecret: cfg.CommerceClientSecret,
			TaxRate:      cfg.TaxRate,
			Currency:     cfg.Currency,
		},
		log,
	), nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	}

	level := gormlogger.Warn
	if cfg.IsProduction() {
		level = gormlogger.Error
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(level)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// startOrderConsumer confirms placed orders as their events arrive. Against
// a remote backend the events are only logged.
func startOrderConsumer(mq *rabbitmq.Client, sb *sandbox.Backend, log *zap.Logger) {
	handler := func(event rabbitmq.OrderPlaced) error {
		log.Info("Received order placed event",
			zap.String("order_no", event.OrderNo),
			zap.String("total", event.Total),
			zap.Int("items", event.Items),
		)
		if sb == nil {
			return nil
		}
		err := sb.ConfirmOrder(event.OrderNo)
		if errors.Is(err, repositories.ErrNotFound) {
			log.Warn("Order of event not found", zap.String("order_no", event.OrderNo))
			return nil
		}
		return err
	}
	if err := mq.ConsumeOrderEvents(handler); err != nil {
		log.Error("Failed to start RabbitMQ consumer", zap.Error(err))
	}
}
