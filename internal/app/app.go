package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	nethttp "net/http"

	"github.com/go-playground/validator/v10"
	redisClient "github.com/redis/go-redis/v9"
	"github.com/sm8ta/webike_rental_service/internal/adapter/handler/http"
	"github.com/sm8ta/webike_rental_service/internal/adapter/logger"
	"github.com/sm8ta/webike_rental_service/internal/adapter/memory"
	"github.com/sm8ta/webike_rental_service/internal/adapter/postgres"
	"github.com/sm8ta/webike_rental_service/internal/adapter/prometheus"
	"github.com/sm8ta/webike_rental_service/internal/adapter/razorpay"
	"github.com/sm8ta/webike_rental_service/internal/adapter/redis"
	"github.com/sm8ta/webike_rental_service/internal/adapter/upload"
	"github.com/sm8ta/webike_rental_service/internal/config"
	"github.com/sm8ta/webike_rental_service/internal/core/ports"
	"github.com/sm8ta/webike_rental_service/internal/core/services"
)

type App struct {
	Config       *config.Container
	Logger       ports.LoggerPort
	Repos        *Repositories
	RedisClient  *redisClient.Client
	RedisAdapter ports.CachePort
	HTTPRouter   *http.Router
}

// Repositories groups the storage ports of the selected driver.
type Repositories struct {
	Users    ports.UserRepository
	Bikes    ports.BikeRepository
	Bookings ports.BookingRepository
	DB       *sql.DB
}

func (r *Repositories) Close() error {
	if r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// OpenRepositories connects and migrates Postgres, or builds the in-memory store for DB_DRIVER=memory.
func OpenRepositories(ctx context.Context, cfg *config.DB) (*Repositories, error) {
	if cfg.Driver == config.DriverMemory {
		store := memory.NewStore()
		return &Repositories{Users: store, Bikes: store, Bookings: store}, nil
	}

	db, err := postgres.Open(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}
	if err := postgres.Migrate(db, cfg.MigrationsDir); err != nil {
		db.Close()
		return nil, err
	}

	return &Repositories{
		Users:    postgres.NewUserRepository(db),
		Bikes:    postgres.NewBikeRepository(db),
		Bookings: postgres.NewBookingRepository(db),
		DB:       db,
	}, nil
}

// OpenCache connects to Redis and checks the connection.
func OpenCache(ctx context.Context, cfg *config.Redis) (*redisClient.Client, error) {
	redisConn := redisClient.NewClient(&redisClient.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       0,
	})
	if _, err := redisConn.Ping(ctx).Result(); err != nil {
		redisConn.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return redisConn, nil
}

// NewLogger builds the application logger and reports insecure fallbacks.
func NewLogger(cfg *config.Container) ports.LoggerPort {
	loggerAdapter := logger.NewLoggerAdapter(cfg.App.Name, cfg.App.Env, cfg.Log.Level)
	for _, key := range cfg.InsecureDefaults {
		loggerAdapter.Warn("Using insecure default configuration", map[string]interface{}{
			"key": key,
		})
	}
	return loggerAdapter
}

func New(ctx context.Context, cfg *config.Container) (*App, error) {
	// Set logger
	loggerAdapter := NewLogger(cfg)
	loggerAdapter.Info("Starting the application", map[string]interface{}{
		"app":       cfg.App.Name,
		"env":       cfg.App.Env,
		"db_driver": cfg.DB.Driver,
	})

	// Set redis
	redisConn, err := OpenCache(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}
	cacheAdapter := redis.NewRedisAdapter(redisConn)

	// Connect DB and migrate
	repos, err := OpenRepositories(ctx, cfg.DB)
	if err != nil {
		redisConn.Close()
		return nil, err
	}

	closeAll := func() {
		repos.Close()
		redisConn.Close()
	}

	// Uploads
	images, err := upload.NewDiskStorage(cfg.Upload.Dir, cfg.Upload.MaxBytes)
	if err != nil {
		closeAll()
		return nil, err
	}

	// Payment gateway
	gateway, err := razorpay.NewGateway(cfg.Payment.BaseURL, cfg.Payment.KeyID, cfg.Payment.KeySecret, loggerAdapter)
	if err != nil {
		closeAll()
		return nil, err
	}

	// Validate
	validate := validator.New()

	// Observability
	metrics := prometheus.NewPrometheusAdapter()

	// Services
	tokenService := http.NewJWTTokenService(cfg.Token.Secret, cfg.Token.Duration, loggerAdapter)
	authService := services.NewAuthService(repos.Users, tokenService, loggerAdapter, validate)
	bikeService := services.NewBikeService(repos.Bikes, images, loggerAdapter, validate, cacheAdapter, cfg.Redis.CacheTTL)
	bookingService := services.NewBookingService(repos.Bookings, repos.Bikes, loggerAdapter, validate, cacheAdapter)
	paymentService := services.NewPaymentService(repos.Bookings, gateway, loggerAdapter, validate)

	// HTTP Handlers
	authHandler := http.NewAuthHandler(authService, loggerAdapter, metrics)
	bikeHandler := http.NewBikeHandler(bikeService, loggerAdapter, metrics)
	bookingHandler := http.NewBookingHandler(bookingService, loggerAdapter, metrics)
	paymentHandler := http.NewPaymentHandler(paymentService, loggerAdapter, metrics)

	// Init HTTP router
	router, err := http.NewRouter(
		cfg,
		tokenService,
		authHandler,
		bikeHandler,
		bookingHandler,
		paymentHandler,
	)
	if err != nil {
		closeAll()
		return nil, fmt.Errorf("failed to initialize router: %w", err)
	}

	return &App{
		Config:       cfg,
		Logger:       loggerAdapter,
		Repos:        repos,
		RedisClient:  redisConn,
		RedisAdapter: cacheAdapter,
		HTTPRouter:   router,
	}, nil
}

// Runs all services
func (a *App) Run() error {
	listenAddr := fmt.Sprintf("%s:%s", a.Config.HTTP.URL, a.Config.HTTP.Port)
	a.Logger.Info("Starting HTTP server", map[string]interface{}{
		"addr": listenAddr,
	})

	if err := a.HTTPRouter.Serve(listenAddr); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		a.Logger.Error("HTTP server error", map[string]interface{}{
			"error": err.Error(),
		})
		return err
	}
	return nil
}

// Stops all services
func (a *App) Stop(ctx context.Context) error {
	a.Logger.Info("Shutting down gracefully...", nil)

	if err := a.HTTPRouter.Shutdown(ctx); err != nil {
		a.Logger.Error("HTTP server shutdown error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Close database
	if err := a.Repos.Close(); err != nil {
		a.Logger.Error("Database close error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// Close Redis
	if err := a.RedisClient.Close(); err != nil {
		a.Logger.Error("Redis close error", map[string]interface{}{
			"error": err.Error(),
		})
	}

	a.Logger.Info("Application stopped successfully", nil)
	return nil
}
