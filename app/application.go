// Package app wires together configuration, storage, services and the HTTP
// server into a runnable application.
package app

import (
	"fmt"
	"log/slog"
	"time"

	"gorm.io/gorm"
	"tourmate.app/api"
	"tourmate.app/config"
	"tourmate.app/database"
	"tourmate.app/providers"
	"tourmate.app/providers/cache"
	"tourmate.app/repository"
	"tourmate.app/scheduler"
	"tourmate.app/service"
	"tourmate.app/storage"
)

// Application represents the main application with all its dependencies
type Application struct {
	config    *config.Config
	db        *gorm.DB
	server    *api.Server
	scheduler *scheduler.Scheduler
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	app := &Application{}

	if err := app.loadConfiguration(); err != nil {
		return nil, err
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, err
	}

	if err := app.initializeServices(); err != nil {
		return nil, err
	}

	return app, nil
}

func (app *Application) loadConfiguration() error {
	slog.Info("Loading configuration...")

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return fmt.Errorf("load application configuration: %w", err)
	}

	app.config = cfg
	slog.Info("Configuration loaded successfully")
	return nil
}

func (app *Application) initializeDatabase() error {
	slog.Info("Initializing database...")

	db, err := database.InitDB(app.config.Database)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		return fmt.Errorf("initialize database connection: %w", err)
	}

	if err := database.RunMigrations(db); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		return fmt.Errorf("run database migrations: %w", err)
	}

	app.db = db
	slog.Info("Database initialized successfully")
	return nil
}

func (app *Application) initializeServices() error {
	slog.Info("Initializing services...")

	authState, sessions, err := app.createStores()
	if err != nil {
		return fmt.Errorf("create state stores: %w", err)
	}

	tourProvider, err := app.createTourProvider()
	if err != nil {
		return fmt.Errorf("create tour provider: %w", err)
	}

	kakaoProvider := providers.NewKakaoProvider(&app.config.Kakao)

	pushProvider, err := app.createPushProvider()
	if err != nil {
		return fmt.Errorf("create push provider: %w", err)
	}

	// Repositories
	userRepo := repository.NewUserRepository(app.db)
	tokenRepo := repository.NewRefreshTokenRepository(app.db)
	tripRepo := repository.NewTripRepository(app.db)

	// Services
	authService := service.NewAuthService(userRepo, tokenRepo, kakaoProvider, authState, sessions, app.config.JWT)
	surveyService := service.NewSurveyService(sessions)
	tourService := service.NewTourService(tourProvider, kakaoProvider, surveyService, tripRepo)
	bookmarkService := service.NewBookmarkService(repository.NewBookmarkRepository(app.db))
	notificationService := service.NewNotificationService(
		repository.NewNotificationRepository(app.db),
		repository.NewDeviceTokenRepository(app.db),
		pushProvider,
	)
	tripService := service.NewTripService(tripRepo, authState, notificationService)

	if err := notificationService.EnsureChannels(); err != nil {
		return fmt.Errorf("register notification channels: %w", err)
	}

	app.server = api.NewServer(
		app.db,
		app.config,
		authService,
		surveyService,
		tourService,
		bookmarkService,
		tripService,
		notificationService,
	)
	app.scheduler = scheduler.NewScheduler(app.config, notificationService, tokenRepo)

	slog.Info("Services initialized successfully")
	return nil
}

// createStores picks the backing store for auth state and survey sessions.
// Redis keeps state across restarts; the in-memory fallback suits
// development and tests.
func (app *Application) createStores() (storage.AuthStateStore, storage.SessionStore, error) {
	if !app.config.Redis.Enabled {
		slog.Info("Redis disabled, using in-memory state stores")
		return storage.NewMemoryAuthStateStore(), storage.NewMemorySessionStore(), nil
	}

	store, err := storage.NewRedisStore(&storage.RedisStoreConfig{
		Addr:       app.config.Redis.Addr,
		Password:   app.config.Redis.Password,
		DB:         app.config.Redis.DB,
		SessionTTL: time.Duration(app.config.Redis.SessionTTL) * time.Minute,
	})
	if err != nil {
		return nil, nil, err
	}

	return store, store, nil
}

// createTourProvider builds the tour provider chain: base API client,
// optional file logging decorator, then the cache proxy.
func (app *Application) createTourProvider() (providers.TourProvider, error) {
	var provider providers.TourProvider = providers.NewTourAPIProvider(&app.config.TourAPI)

	if app.config.TourAPI.LogFile != "" {
		logger, err := providers.NewFileLogger(app.config.TourAPI.LogFile)
		if err != nil {
			return nil, err
		}
		provider = providers.NewTourLoggerDecorator(provider, logger, "tourapi")
	}

	tourCache, err := app.createTourCache()
	if err != nil {
		return nil, err
	}

	return providers.NewTourCacheProxy(provider, tourCache, app.config.TourAPI.CacheTTL()), nil
}

// createTourCache picks the cache backend and wraps it with prometheus
// instrumentation. Both backends go through the same generic interface so
// the tour_cache_* metrics report regardless of configuration.
func (app *Application) createTourCache() (providers.CacheInterface, error) {
	var backend cache.GenericCacheInterface
	cacheType := "memory"

	if app.config.Redis.Enabled {
		slog.Debug("Using redis tour cache", "addr", app.config.Redis.Addr)
		redisCache, err := cache.NewRedisCache(&cache.RedisCacheConfig{
			Addr:     app.config.Redis.Addr,
			Password: app.config.Redis.Password,
			DB:       app.config.Redis.DB,
		})
		if err != nil {
			return nil, err
		}
		backend = redisCache
		cacheType = "redis"
	} else {
		slog.Debug("Using in-memory tour cache")
		backend = cache.NewMemoryCache()
	}

	return cache.NewTourCache(providers.NewInstrumentedCache(backend, cacheType)), nil
}

// createPushProvider returns the FCM-backed provider, or a no-op one when no
// credentials are configured so the rest of the app works without Firebase.
func (app *Application) createPushProvider() (providers.PushProvider, error) {
	if app.config.Push.CredentialsFile == "" {
		slog.Warn("FCM credentials not configured, push delivery disabled")
		return providers.NewNoopPushProvider(), nil
	}
	return providers.NewFCMPushProvider(app.config.Push.CredentialsFile)
}

// Start starts the application
func (app *Application) Start() error {
	slog.Info("Starting application...")

	slog.Info("Starting scheduler...")
	app.scheduler.Start()

	slog.Info("Starting HTTP server", "port", app.config.Server.Port)
	return app.server.Start()
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	slog.Info("Shutting down application...")

	if app.scheduler != nil {
		app.scheduler.Stop()
	}

	if app.db != nil {
		if err := database.CloseDB(app.db); err != nil {
			slog.Warn("Error closing database", "error", err)
		}
	}

	slog.Info("Application shutdown complete")
	return nil
}

// Config returns the application configuration
func (app *Application) Config() *config.Config {
	return app.config
}
