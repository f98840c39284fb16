// Package main - точка входа сервера DriveLog.
//
// DriveLog - приложение датской автошколы: регистрация с построчной
// валидацией полей, упорядоченный учебный план, журнал вождения и
// бронирование занятий с проверкой допуска.
//
// Архитектура следует принципам Clean Architecture и DDD:
// - Domain: чистая бизнес-логика без внешних зависимостей
// - Application: оркестрация use cases (Commands/Queries)
// - Infrastructure: PostgreSQL, Redis, event bus, планировщик
// - Interface: HTTP endpoints
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drivelog-hub/drivelog/config"
	"github.com/drivelog-hub/drivelog/internal/application/command"
	"github.com/drivelog-hub/drivelog/internal/application/eventhandler"
	"github.com/drivelog-hub/drivelog/internal/application/query"
	"github.com/drivelog-hub/drivelog/internal/domain/booking"
	"github.com/drivelog-hub/drivelog/internal/domain/curriculum"
	"github.com/drivelog-hub/drivelog/internal/domain/shared"
	"github.com/drivelog-hub/drivelog/internal/infrastructure/messaging"
	"github.com/drivelog-hub/drivelog/internal/infrastructure/persistence/postgres"
	"github.com/drivelog-hub/drivelog/internal/infrastructure/persistence/redis"
	"github.com/drivelog-hub/drivelog/internal/infrastructure/scheduler"
	"github.com/drivelog-hub/drivelog/internal/infrastructure/scheduler/jobs"
	httpserver "github.com/drivelog-hub/drivelog/internal/interface/http"
	"github.com/drivelog-hub/drivelog/pkg/logger"
	"github.com/drivelog-hub/drivelog/pkg/retry"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. ЗАГРУЗКА КОНФИГУРАЦИИ
	// ─────────────────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. НАСТРОЙКА ЛОГИРОВАНИЯ
	// ─────────────────────────────────────────────────────────────────────────
	log := setupLogger(cfg)
	log.Info("starting DriveLog server",
		logger.String("env", string(cfg.App.Environment)),
		logger.Bool("debug", cfg.App.Debug),
		logger.String("version", cfg.App.Version),
		logger.String("timezone", cfg.App.Timezone),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. ПОДКЛЮЧЕНИЕ К БАЗЕ ДАННЫХ
	// ─────────────────────────────────────────────────────────────────────────
	// База может подниматься дольше приложения (docker compose),
	// поэтому подключение повторяется с экспоненциальной задержкой.
	log.Info("connecting to database...")
	var dbConn *postgres.Connection
	retrier := retry.New(
		retry.WithMaxAttempts(5),
		retry.WithRetryIf(func(error) bool { return true }),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			log.Warn("database not ready, retrying",
				logger.Int("attempt", attempt),
				logger.Duration("delay", delay),
				logger.Err(err),
			)
		}),
	)
	err = retrier.Do(ctx, func(ctx context.Context) error {
		dbConn, err = postgres.NewConnectionFromURL(ctx, cfg.Database.URL)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer func() {
		log.Info("closing database connection...")
		dbConn.Close()
	}()
	log.Info("database connection established")

	// ─────────────────────────────────────────────────────────────────────────
	// 4. ЗАПУСК МИГРАЦИЙ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("running database migrations...")
	migrator := postgres.NewMigrator(dbConn)
	if err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	status, err := migrator.Status(ctx)
	if err != nil {
		log.Warn("failed to get migration status", logger.Err(err))
	} else {
		applied := 0
		for _, m := range status {
			if m.IsApplied {
				applied++
			}
		}
		log.Info("migrations completed", logger.Int("applied", applied), logger.Int("total", len(status)))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 5. ИНИЦИАЛИЗАЦИЯ REDIS (опционально)
	// ─────────────────────────────────────────────────────────────────────────
	var redisCache *redis.Cache
	var counters booking.CounterCache

	if cfg.Redis.Enabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.PoolSize = cfg.Redis.PoolSize
		redisCfg.MinIdleConns = cfg.Redis.MinIdleConns
		redisCfg.DialTimeout = cfg.Redis.DialTimeout
		redisCfg.ReadTimeout = cfg.Redis.ReadTimeout
		redisCfg.WriteTimeout = cfg.Redis.WriteTimeout

		redisCache, err = redis.NewCache(redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
			redisCache = nil
		} else {
			defer redisCache.Close()
			counters = redis.NewBookingCounterCache(redisCache).WithTTL(cfg.Redis.BookingCounterTTL)
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. ИНИЦИАЛИЗАЦИЯ РЕПОЗИТОРИЕВ
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing repositories...")
	userRepo := postgres.NewUserRepository(dbConn)
	slotRepo := postgres.NewSlotRepository(dbConn)
	lessonRepo := postgres.NewLessonRepository(dbConn)
	bookingRepo := postgres.NewBookingRepository(dbConn)

	var curriculumRepo curriculum.Repository = postgres.NewCurriculumRepository(dbConn)
	if redisCache != nil {
		curriculumRepo = redis.NewCachedCurriculumRepository(curriculumRepo, redisCache, log)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 7. ЗАГРУЗКА УЧЕБНОГО ПЛАНА
	// Каталог неизменяем в течение сессии; движок допуска держит его в памяти.
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("loading curriculum catalog...")
	catalog, err := curriculumRepo.LoadCatalog(ctx)
	if err != nil {
		return fmt.Errorf("failed to load curriculum: %w", err)
	}
	engine := booking.NewEngine(catalog)
	log.Info("curriculum loaded", logger.Int("templates", catalog.Len()))

	// ─────────────────────────────────────────────────────────────────────────
	// 8. ИНИЦИАЛИЗАЦИЯ EVENT BUS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing event bus...", logger.String("mode", cfg.EventBus.Mode))

	localCfg := messaging.DefaultInMemoryConfig()
	localCfg.AsyncMode = cfg.EventBus.AsyncMode
	localCfg.WorkerPoolSize = cfg.EventBus.WorkerPoolSize
	localCfg.Logger = log

	var eventBus closableEventBus
	if cfg.EventBus.Mode == "redis" && redisCache != nil {
		redisBus, err := messaging.NewRedisEventBus(messaging.RedisConfig{
			Client:      redisCache.Client(),
			ChannelName: cfg.EventBus.ChannelName,
			InstanceID:  cfg.EventBus.InstanceID,
			LocalConfig: localCfg,
			Logger:      log,
		})
		if err != nil {
			return fmt.Errorf("failed to create redis event bus: %w", err)
		}
		eventBus = redisBus
	} else {
		eventBus = messaging.NewInMemoryEventBus(localCfg)
	}
	defer func() {
		log.Info("closing event bus...")
		_ = eventBus.Close()
	}()

	// ─────────────────────────────────────────────────────────────────────────
	// 9. ИНИЦИАЛИЗАЦИЯ APPLICATION LAYER (Commands, Queries)
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing application layer...")

	registerUserCmd := command.NewRegisterUserHandler(userRepo, eventBus, log)
	updateProfileCmd := command.NewUpdateProfileHandler(userRepo, eventBus, log)
	bookLessonCmd := command.NewBookLessonHandler(engine, slotRepo, lessonRepo, bookingRepo, counters, eventBus, log)
	cancelBookingCmd := command.NewCancelBookingHandler(bookingRepo, counters, eventBus, log)
	createSlotCmd := command.NewCreateSlotHandler(userRepo, slotRepo, log)

	checkEligibilityQuery := query.NewCheckEligibilityHandler(engine, slotRepo, lessonRepo, counters, log)
	driveLogQuery := query.NewGetDriveLogHandler(engine, userRepo, lessonRepo, log)

	// ─────────────────────────────────────────────────────────────────────────
	// 10. РЕГИСТРАЦИЯ EVENT HANDLERS
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("registering event handlers...")

	createdHandler := eventhandler.NewOnBookingCreatedHandler(bookingRepo, counters, log)
	if err := eventBus.Subscribe(createdHandler.EventType(), createdHandler.Handle); err != nil {
		return fmt.Errorf("failed to subscribe booking.created handler: %w", err)
	}

	deniedHandler := eventhandler.NewOnBookingDeniedHandler(log)
	if err := eventBus.Subscribe(deniedHandler.EventType(), deniedHandler.Handle); err != nil {
		return fmt.Errorf("failed to subscribe booking.denied handler: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 11. ПЛАНИРОВЩИК ФОНОВЫХ ЗАДАЧ
	// ─────────────────────────────────────────────────────────────────────────
	var sched *scheduler.Scheduler
	if cfg.Scheduler.Enabled && counters != nil {
		log.Info("initializing scheduler...")
		sched = scheduler.NewScheduler(scheduler.SchedulerConfig{
			Logger:   log,
			Timezone: cfg.App.Location,
		})

		refreshJob := jobs.NewRefreshBookingCountsJob(bookingRepo, slotRepo, counters, eventBus, log)
		if err := sched.Register(refreshJob, scheduler.NewIntervalSchedule(cfg.Scheduler.RefreshCountsInterval)); err != nil {
			return fmt.Errorf("failed to register refresh job: %w", err)
		}

		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("failed to start scheduler: %w", err)
		}
		defer func() {
			log.Info("stopping scheduler...")
			_ = sched.Stop()
		}()
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 12. СОЗДАНИЕ HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	log.Info("initializing HTTP server...")

	httpConfig := httpserver.DefaultConfig()
	httpConfig.Host = cfg.HTTP.Host
	httpConfig.Port = cfg.HTTP.Port
	httpConfig.ReadTimeout = cfg.HTTP.ReadTimeout
	httpConfig.WriteTimeout = cfg.HTTP.WriteTimeout
	httpConfig.IdleTimeout = cfg.HTTP.IdleTimeout
	httpConfig.EnableCORS = cfg.HTTP.EnableCORS
	httpConfig.AllowedOrigins = cfg.HTTP.AllowedOrigins
	httpConfig.RateLimitPerMinute = cfg.HTTP.RateLimitPerMinute

	healthCheckers := map[string]httpserver.HealthChecker{
		"postgres": dbConn.Ping,
	}
	if redisCache != nil {
		healthCheckers["redis"] = redisCache.Ping
	}

	httpDeps := httpserver.Dependencies{
		RegisterUser:     registerUserCmd,
		UpdateProfile:    updateProfileCmd,
		BookLesson:       bookLessonCmd,
		CancelBooking:    cancelBookingCmd,
		CreateSlot:       createSlotCmd,
		CheckEligibility: checkEligibilityQuery,
		GetDriveLog:      driveLogQuery,
		Slots:            slotRepo,
		Bookings:         bookingRepo,
		HealthCheckers:   healthCheckers,
		Logger:           log,
	}

	httpServer := httpserver.NewServer(httpConfig, httpDeps)

	// ─────────────────────────────────────────────────────────────────────────
	// 13. ЗАПУСК И GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	errCh := httpServer.StartAsync()

	log.Info("DriveLog server is running",
		logger.String("http_address", httpConfig.Address()),
		logger.Bool("redis", redisCache != nil),
		logger.Bool("scheduler", sched != nil),
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	select {
	case sig := <-sigCh:
		log.Info("received shutdown signal", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			log.Error("http server error", logger.Err(err))
			return err
		}
	}

	log.Info("starting graceful shutdown...", logger.Duration("timeout", cfg.App.ShutdownTimeout))

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("failed to stop HTTP server gracefully", logger.Err(err))
		return err
	}

	// Планировщик, event bus, Redis и база закрываются через defer.
	log.Info("shutdown completed successfully")
	return nil
}

// closableEventBus - шина событий, которую нужно закрывать при остановке.
type closableEventBus interface {
	shared.EventBus
	Close() error
}

// setupLogger настраивает структурированное логирование.
func setupLogger(cfg *config.Config) *logger.Logger {
	opts := logger.DefaultOptions()
	opts.Level = logger.ParseLevel(cfg.Observability.LogLevel)
	if cfg.App.Debug {
		opts.Level = logger.LevelDebug
	}
	return logger.New(opts)
}
