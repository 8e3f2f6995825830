package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/subguard/internal/alarm"
	"github.com/MrSnakeDoc/subguard/internal/config"
	"github.com/MrSnakeDoc/subguard/internal/httpserver"
	"github.com/MrSnakeDoc/subguard/internal/httpserver/deps"
	"github.com/MrSnakeDoc/subguard/internal/logger"
	"github.com/MrSnakeDoc/subguard/internal/metrics"
	"github.com/MrSnakeDoc/subguard/internal/notify"
	"github.com/MrSnakeDoc/subguard/internal/redis"
	"github.com/MrSnakeDoc/subguard/internal/rules"
	"github.com/MrSnakeDoc/subguard/internal/scheduler"
	"github.com/MrSnakeDoc/subguard/internal/store"
	memorystore "github.com/MrSnakeDoc/subguard/internal/store/memory"
	redisstore "github.com/MrSnakeDoc/subguard/internal/store/redis"
	"github.com/MrSnakeDoc/subguard/internal/tracker"
	"github.com/MrSnakeDoc/subguard/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	tracker     *tracker.Service
	reminder    *scheduler.Reminder
	gc          *scheduler.GarbageCollector
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Rules are compiled before anything else: a bad rules file is fatal.
	engine, err := rules.NewLoader(cfg.RulesFile).Engine()
	if err != nil {
		loggerClient.Errorf("Failed to load detection rules: %v", err)
		os.Exit(1)
	}
	if cfg.RulesFile != "" {
		loggerClient.Info("detection rules loaded", logger.String("file", cfg.RulesFile))
	}

	// Initialize Redis early - fail fast if unavailable
	var redisClient *goredis.Client
	if cfg.UsesRedis() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		redisClient, err = redis.Connect(context.Background(), redis.OptionsFromConfig(cfg), loggerClient)
		if err != nil {
			loggerClient.Errorf("Failed to connect to Redis: %v", err)
			os.Exit(1)
		}
		loggerClient.Info("Redis initialized successfully")
	}

	var st store.Store
	switch cfg.Store {
	case config.BackendRedis:
		st = redisstore.NewStore(redisClient)
	default:
		loggerClient.Warn("using in-memory commitment store, data is lost on restart")
		st = memorystore.New()
	}

	var timers alarm.Timers
	switch cfg.Timers {
	case config.BackendRedis:
		timers = alarm.NewRedis(redisClient, loggerClient, cfg.AlarmPollInterval)
	default:
		timers = alarm.NewMemory()
	}

	var notifier notify.Notifier = notify.NewLog(loggerClient)
	if cfg.WebhookURL != "" {
		notifier = notify.NewWebhook(cfg.WebhookURL, cfg.WebhookTimeout, loggerClient)
	}

	var m metrics.Provider
	if cfg.MetricsEnabled {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.New(true, reg)
	} else {
		m = metrics.New(false, nil)
	}

	// Create manual sweep trigger channel
	sweepTrigger := make(chan struct{}, 1)

	reminder := scheduler.NewReminder(st, timers, notifier, m, loggerClient, scheduler.ReminderOptions{
		Lead:          cfg.ReminderLead,
		SweepInterval: cfg.SweepInterval,
	}, sweepTrigger)

	trk := tracker.New(st, reminder, notifier, m, loggerClient, tracker.Options{
		UserID: cfg.DefaultUser,
		Lead:   cfg.ReminderLead,
	})

	gc := scheduler.NewGarbageCollector(st, m, loggerClient, cfg.GCInterval, cfg.GCRetention, nil)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		RateBurst:     cfg.RateBurst,
		RatePerMin:    cfg.RatePerMin,
		Engine:        engine,
		Tracker:       trk,
		Store:         st,
		StoreBackend:  cfg.Store,
		TimersBackend: cfg.Timers,
		ReminderLead:  cfg.ReminderLead,
		Metrics:       m,
		SweepTrigger:  sweepTrigger,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      server,
		redisClient: redisClient,
		tracker:     trk,
		reminder:    reminder,
		gc:          gc,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🛡️ Starting subguard %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Info(version.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.tracker.Welcome(ctx)

	// Start reminders (re-arms timers from the store, sweeps, then ticks)
	if err := a.reminder.Start(ctx); err != nil {
		return fmt.Errorf("failed to start reminder scheduler: %w", err)
	}
	a.logger.Info("reminder scheduler started",
		logger.Duration("lead", a.cfg.ReminderLead),
		logger.Duration("sweep_interval", a.cfg.SweepInterval),
		logger.String("timers", a.cfg.Timers))

	if err := a.gc.Start(ctx); err != nil {
		return fmt.Errorf("failed to start garbage collector: %w", err)
	}
	a.logger.Info("garbage collector started",
		logger.Duration("interval", a.cfg.GCInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.reminder.Stop()
	a.gc.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ subguard stopped cleanly")
	return nil
}
