package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/immersive-venue-booking/internal/config"
	"github.com/iliyamo/immersive-venue-booking/internal/database"
	"github.com/iliyamo/immersive-venue-booking/internal/handler"
	"github.com/iliyamo/immersive-venue-booking/internal/logger"
	"github.com/iliyamo/immersive-venue-booking/internal/metrics"
	"github.com/iliyamo/immersive-venue-booking/internal/middleware"
	"github.com/iliyamo/immersive-venue-booking/internal/queue"
	"github.com/iliyamo/immersive-venue-booking/internal/repository"
	"github.com/iliyamo/immersive-venue-booking/internal/router"
	"github.com/iliyamo/immersive-venue-booking/internal/service"
	"github.com/iliyamo/immersive-venue-booking/internal/validate"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Config{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: "immersive-venue-booking",
	})
	slog.SetDefault(log.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatal("database connect failed", "error", err)
	}
	defer db.Close()
	if cfg.DBMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			log.Fatal("schema migration failed", "error", err)
		}
		log.Info("schema applied")
	}

	// Redis is optional: a nil client disables the cache and the rate limiter.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	if rdb == nil {
		log.Warn("redis unavailable; catalog cache and rate limiting disabled")
	} else {
		defer rdb.Close()
	}
	cacheCfg := config.LoadCacheConfig()

	publisher := queue.NewPublisher(cfg.RabbitURL)
	defer publisher.Close()
	metrics.Register()

	// ---- Repositories & services ----
	store := repository.NewMySQLStore(db)
	experiences := store.Experiences
	venues := repository.NewVenueRepo(db)
	products := repository.NewProductRepo(db)
	reservations := service.NewReservations(store, publisher, log.With("component", "reservations"))

	invalidate := func(ctx context.Context) error {
		if rdb == nil {
			return nil
		}
		_, err := middleware.InvalidateCache(ctx, rdb, cacheCfg.Prefix)
		return err
	}

	bookings := handler.NewBookingHandler(reservations, cfg.RequestTimeout)
	catalog := &handler.CatalogHandler{
		Experiences: experiences,
		Venues:      venues,
		Products:    products,
		Tiers:       repository.NewMembershipRepo(db),
		Timeout:     cfg.RequestTimeout,
	}
	cart := &handler.CartHandler{
		Items:       repository.NewCartRepo(db),
		Products:    products,
		Experiences: experiences,
		Timeout:     cfg.RequestTimeout,
	}
	admin := &handler.AdminHandler{
		Experiences: experiences,
		Venues:      venues,
		Products:    products,
		Invalidate:  invalidate,
		Timeout:     cfg.RequestTimeout,
	}
	auth := handler.NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db))

	// ---- HTTP ----
	e := echo.New()
	e.HideBanner = true
	e.Validator = &handler.EchoValidator{V: validate.New()}
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(echomw.CORS())
	e.Use(requestLogger(log))

	limit := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb, log)
	cache := middleware.NewRedisCache(cacheCfg, rdb, log)

	router.RegisterRoutes(e, &handler.HealthHandler{DB: db, Redis: rdb})
	router.RegisterAuth(e, auth, cfg.JWTSecret, limit)
	router.RegisterPublic(e, bookings, catalog, cfg.JWTSecret, cache, limit)
	router.RegisterCustomer(e, bookings, cart, cfg.JWTSecret, cfg.Env == "prod", limit)
	router.RegisterAdmin(e, admin, bookings, cfg.JWTSecret)

	if cfg.ConsumerEnabled {
		consumer := queue.NewConsumer(cfg.RabbitURL, cfg.LedgerDir, log.With("component", "ledger"))
		go func() {
			if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("ledger consumer stopped", "error", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	go func() {
		log.Info("listening", "addr", addr, "env", cfg.Env)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("http server failed", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
}

// requestLogger writes one structured line per request through slog.
func requestLogger(log *logger.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				log.Error("request", append(attrs, "error", v.Error)...)
				return nil
			}
			log.Info("request", attrs...)
			return nil
		},
	})
}
