package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/biyonik/project-management-tool/internal/audit"
	"github.com/biyonik/project-management-tool/internal/cache"
	"github.com/biyonik/project-management-tool/internal/config"
	"github.com/biyonik/project-management-tool/internal/database"
	"github.com/biyonik/project-management-tool/internal/event"
	"github.com/biyonik/project-management-tool/internal/i18n"
	"github.com/biyonik/project-management-tool/internal/logger"
	"github.com/biyonik/project-management-tool/internal/model"
	"github.com/biyonik/project-management-tool/internal/repository"
	"github.com/biyonik/project-management-tool/internal/router"
	"github.com/biyonik/project-management-tool/internal/service"
	"github.com/biyonik/project-management-tool/internal/store"
)

// App owns every long-lived resource and tears them down in order on
// shutdown.
type App struct {
	cfg    *config.Config
	log    *slog.Logger
	pool   *pgxpool.Pool
	redis  *cache.RedisCache
	trail  *audit.AsyncLogger
	bus    *event.Bus
	server *http.Server
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log := logger.New(cfg.AppEnv, logger.ParseLevel(cfg.LogLevel))

	pool, err := database.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := database.Migrate(ctx, pool, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	messages, err := i18n.NewMessageSource(cfg.DefaultLocale)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("load messages: %w", err)
	}

	// Redis outages must not take the service down, so a failed connection
	// degrades to an in-process cache.
	var cacheStore cache.Cache
	redisCache, err := cache.NewRedisCache(cfg.RedisURL, cfg.CacheKeyPrefix)
	if err != nil {
		log.Warn("redis unavailable, using in-memory cache", "error", err)
		cacheStore = cache.NewMemoryCache()
		redisCache = nil
	} else {
		cacheStore = redisCache
	}

	trail := audit.NewAsyncLogger(audit.NewPostgresLogger(pool), log, cfg.AuditBuffer)
	bus := event.NewBus(log)
	subscribeEventLogging(bus, log)

	devMode := cfg.Development()

	userStore := store.New(pool, store.UserDefinition())
	projectStore := store.New(pool, store.ProjectDefinition())
	taskStore := store.New(pool, store.TaskDefinition())

	users := repository.NewCached[model.User](userStore, cacheStore, log,
		func(u *model.User) string { return u.ID }, cfg.CacheListTTL)
	projects := repository.NewCached[model.Project](projectStore, cacheStore, log,
		func(p *model.Project) string { return p.ID }, cfg.CacheListTTL)
	tasks := repository.NewCached[model.Task](taskStore, cacheStore, log,
		func(t *model.Task) string { return t.ID }, cfg.CacheListTTL)

	userSvc := service.NewUserService(
		service.NewEntity[model.User](users, trail, messages, log,
			func(u *model.User) string { return u.ID }, devMode),
		users, bus)
	projectSvc := service.NewProjectService(
		service.NewEntity[model.Project](projects, trail, messages, log,
			func(p *model.Project) string { return p.ID }, devMode),
		bus)
	taskSvc := service.NewTaskService(
		service.NewEntity[model.Task](tasks, trail, messages, log,
			func(t *model.Task) string { return t.ID }, devMode),
		bus)
	authSvc := service.NewAuthService(users, messages, log, cfg.JWTSecret, cfg.JWTAccessTTL, devMode)

	mux := router.New(router.Deps{
		Log:              log,
		Messages:         messages,
		Auth:             authSvc,
		Users:            userSvc,
		Projects:         projectSvc,
		Tasks:            taskSvc,
		Trail:            audit.NewPostgresLogger(pool),
		CORSOrigins:      cfg.CORSOrigins,
		RequestTimeout:   cfg.RequestTimeout,
		RateLimitRPM:     cfg.RateLimitRPM,
		AuthRateLimitRPM: cfg.AuthRateLimitRPM,
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		cfg:    cfg,
		log:    log,
		pool:   pool,
		redis:  redisCache,
		trail:  trail,
		bus:    bus,
		server: server,
	}, nil
}

// Run serves until SIGINT or SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	errCh := make(chan error, 1)
	go func() {
		a.log.Info("server listening", "addr", a.server.Addr, "env", a.cfg.AppEnv)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-stop:
		a.log.Info("shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil {
		a.log.Error("server shutdown", "error", err)
	}

	a.bus.Wait()
	a.trail.Close()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			a.log.Error("redis close", "error", err)
		}
	}
	a.pool.Close()

	a.log.Info("shutdown complete")
	return nil
}

// subscribeEventLogging gives lifecycle events a default audience so the
// bus is observable even without domain subscribers.
func subscribeEventLogging(bus *event.Bus, log *slog.Logger) {
	for _, name := range []string{
		event.UserCreated, event.UserUpdated, event.UserDeleted, event.UserRestored,
		event.ProjectCreated, event.ProjectArchived, event.TaskCreated,
	} {
		bus.Subscribe(name, func(e event.Event) {
			log.Info("event", "name", e.Name, "actor", e.ActorID)
		})
	}
}
