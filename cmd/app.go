package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Payphone-Digital/customer-service/config"
	"github.com/Payphone-Digital/customer-service/internal/client"
	"github.com/Payphone-Digital/customer-service/internal/handler"
	"github.com/Payphone-Digital/customer-service/internal/jobs"
	"github.com/Payphone-Digital/customer-service/internal/middleware"
	"github.com/Payphone-Digital/customer-service/internal/repository"
	"github.com/Payphone-Digital/customer-service/internal/router"
	"github.com/Payphone-Digital/customer-service/internal/service"
	"github.com/Payphone-Digital/customer-service/internal/ssosync"
	"github.com/Payphone-Digital/customer-service/pkg/cache"
	"github.com/Payphone-Digital/customer-service/pkg/circuit"
	"github.com/Payphone-Digital/customer-service/pkg/clock"
	"github.com/Payphone-Digital/customer-service/pkg/database"
	"github.com/Payphone-Digital/customer-service/pkg/health"
	"github.com/Payphone-Digital/customer-service/pkg/logger"
	"github.com/Payphone-Digital/customer-service/pkg/metrics"
	"github.com/Payphone-Digital/customer-service/pkg/pool"
	"github.com/Payphone-Digital/customer-service/pkg/redis"
	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const healthInterval = 30 * time.Second

// app holds every long-lived component built from config.
type app struct {
	engine  *gin.Engine
	monitor *health.Monitor
	runner  *ssosync.Runner
	worker  *jobs.Worker

	closers []func()
}

// Close releases resources in reverse construction order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.NewPostgresDB(database.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		Database:        cfg.Database.Name,
		SSLMode:         cfg.Database.SSLMode,
		Environment:     cfg.App.Environment,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	return db, nil
}

func migrate(db *gorm.DB, seed bool) error {
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	if err := database.CreateIndexes(db, logger.GetLogger()); err != nil {
		return fmt.Errorf("create indexes: %w", err)
	}
	if !seed {
		return nil
	}
	if err := database.Seed(db); err != nil {
		return fmt.Errorf("seed: %w", err)
	}
	return nil
}

func buildApp(cfg *config.Config) (*app, error) {
	log := logger.GetLogger()
	a := &app{}
	ok := false
	defer func() {
		if !ok {
			a.Close()
		}
	}()

	db, err := openDB(cfg)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, func() { _ = database.CloseDB(db) })

	if err := migrate(db, true); err != nil {
		return nil, err
	}

	var (
		store       cache.Store
		redisClient *redis.Client
	)
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(cfg)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { _ = redisClient.Close() })
		store = cache.NewRedis(redisClient)
	} else {
		mem := cache.NewMemory()
		a.closers = append(a.closers, mem.Close)
		store = mem
		log.Warn("Redis disabled, using in-process cache")
	}

	m := metrics.New()

	connPool := pool.NewConnectionPool(pool.DefaultPoolConfig(), log)
	a.closers = append(a.closers, connPool.CloseAllConnections)

	breakers := circuit.NewBreakerRegistry(circuit.Config{
		Threshold:        cfg.Upstream.BreakerThreshold,
		Timeout:          cfg.Upstream.BreakerTimeout,
		SuccessThreshold: 2,
		MaxHalfOpen:      1,
		IsFailure:        client.IsBreakerFailure,
		OnStateChange: func(name string, _, to circuit.State) {
			m.SetBreakerState(name, int(to))
		},
	}, log)

	upstream := func(name, baseURL string) *client.Upstream {
		return client.NewUpstream(client.Options{
			Service: name,
			BaseURL: baseURL,
			APIKey:  cfg.Upstream.APIKey,
			Timeout: cfg.Upstream.Timeout,
		}, connPool, breakers, m)
	}
	authClient := client.NewAuthClient(upstream(client.ServiceAuth, cfg.Upstream.AuthURL))
	adminClient := client.NewAdminClient(upstream(client.ServiceAdmin, cfg.Upstream.AdminURL), store, cfg.Upstream.CityCacheTTL)
	notificationClient := client.NewNotificationClient(upstream(client.ServiceNotification, cfg.Upstream.NotificationURL))

	var dispatcher jobs.Dispatcher
	if cfg.Queue.Enabled {
		if redisClient == nil {
			return nil, errors.New("queue requires redis to be enabled")
		}
		redisOpts := asynq.RedisClientOpt{
			Addr:     cfg.RedisAddress(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		}
		queue := jobs.NewQueueDispatcher(redisOpts)
		a.closers = append(a.closers, func() { _ = queue.Close() })
		dispatcher = queue

		a.worker, err = jobs.NewWorker(jobs.WorkerConfig{
			RedisOpts:   redisOpts,
			Concurrency: cfg.Queue.Concurrency,
			Handlers:    jobs.NewTaskHandlers(notificationClient),
		})
		if err != nil {
			return nil, err
		}
	} else {
		dispatcher = jobs.NewInlineDispatcher(notificationClient)
	}

	// Repositories
	customerRepo := repository.NewCustomerRepository(db)
	otpRepo := repository.NewOTPRepository(db)
	addressRepo := repository.NewAddressRepository(db)
	settingRepo := repository.NewSettingRepository(db)
	adminRepo := repository.NewAdminRepository(db)

	// Services
	jwtService := service.NewJWTService(service.JWTConfig{
		Secret:          cfg.JWT.Secret,
		AdminSecret:     cfg.JWT.AdminSecret,
		AccessDuration:  cfg.JWT.AccessDuration,
		RefreshDuration: cfg.JWT.RefreshDuration,
	}, clock.System)
	customerService := service.NewCustomerService(customerRepo, otpRepo, jwtService, dispatcher, clock.System)
	otpService := service.NewOTPService(otpRepo, customerRepo, store, dispatcher, clock.System, service.RandomCode)
	addressService := service.NewAddressService(addressRepo, adminClient)
	verificationService := service.NewVerificationService(customerRepo, authClient, clock.System)
	ssoService := service.NewSSOService(customerRepo, settingRepo, authClient, jwtService, clock.System)
	settingService := service.NewSettingService(settingRepo)
	userService := service.NewUserService(customerRepo)
	reportService := service.NewReportService(customerRepo, clock.System)
	adminService := service.NewAdminService(adminRepo, jwtService)

	a.runner = ssosync.NewRunner(settingRepo, customerRepo, ssoService,
		ssosync.WithClock(clock.System),
		ssosync.WithMetrics(m.Sync),
		ssosync.WithTickSpec(cfg.SSO.TickSpec),
	)
	ssoService.AttachRunner(a.runner)

	a.monitor = health.NewMonitor(healthInterval, log)
	a.monitor.Register("database", &health.PingChecker{Kind: "postgres", Ping: func(ctx context.Context) error {
		return database.Ping(ctx, db)
	}}, true)
	if redisClient != nil {
		a.monitor.Register("redis", &health.PingChecker{Kind: "redis", Ping: redisClient.Ping}, true)
	}
	a.monitor.Register("auth_service", &health.PingChecker{Kind: "http", Ping: authClient.Health}, false)
	a.monitor.Register("admin_service", &health.PingChecker{Kind: "http", Ping: adminClient.Health}, false)
	a.monitor.Register("notification_service", &health.PingChecker{Kind: "http", Ping: notificationClient.Health}, false)

	var redisStats handler.StatsSource
	if redisClient != nil {
		redisStats = redisClient
	}

	jwtMw := middleware.NewJWTMiddleware(jwtService, customerService, adminService)

	r := router.NewRouter(router.Handlers{
		Customer:     handler.NewCustomerHandler(customerService),
		OTP:          handler.NewOTPHandler(otpService),
		Address:      handler.NewAddressHandler(addressService),
		Verification: handler.NewVerificationHandler(verificationService),
		SSO:          handler.NewSSOHandler(ssoService),
		Setting:      handler.NewSettingHandler(settingService),
		User:         handler.NewUserHandler(userService),
		Report:       handler.NewReportHandler(reportService),
		Admin:        handler.NewAdminHandler(adminService),
		Health:       handler.NewHealthHandler(a.monitor, connPool, breakers, redisStats),
	}, jwtMw, m, cfg)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	a.engine = r.SetupRoutes()

	log.Info("Application wired",
		zap.Bool("redis", redisClient != nil),
		zap.Bool("queue", cfg.Queue.Enabled),
		zap.Bool("sso_sync", cfg.SSO.SyncEnabled),
	)
	ok = true
	return a, nil
}
