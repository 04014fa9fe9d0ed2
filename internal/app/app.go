package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/timejump/internal/config"
	"github.com/MrSnakeDoc/timejump/internal/domain"
	"github.com/MrSnakeDoc/timejump/internal/httpserver"
	"github.com/MrSnakeDoc/timejump/internal/httpserver/deps"
	"github.com/MrSnakeDoc/timejump/internal/index"
	"github.com/MrSnakeDoc/timejump/internal/logger"
	"github.com/MrSnakeDoc/timejump/internal/metrics"
	"github.com/MrSnakeDoc/timejump/internal/scheduler"
	"github.com/MrSnakeDoc/timejump/internal/sources/google"
	redisstore "github.com/MrSnakeDoc/timejump/internal/store/redis"
	"github.com/MrSnakeDoc/timejump/internal/utils"
	"github.com/MrSnakeDoc/timejump/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	reloader    *scheduler.RangesReloader
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	clock, err := domain.LoadClock(cfg.TimeZone)
	if err != nil {
		return nil, err
	}

	// Candidate ranges are loaded by the reloader when the app starts
	candidates := index.NewRangeIndex()
	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewRangesReloader(
		cfg.RangesFile,
		candidates,
		loggerClient,
		cfg.RangesReloadInterval,
		reloadTrigger,
	)

	// Missing credentials are reported on each redirect request, not here,
	// so health endpoints stay reachable while the service is unconfigured.
	configErr := cfg.ValidateCredentials()
	if configErr != nil {
		loggerClient.Warn("google credentials incomplete, redirects will fail until configured",
			logger.Error(configErr))
	}

	upstream := &http.Client{Timeout: cfg.UpstreamTimeout}

	credentials := google.NewServiceAccount(google.ServiceAccountOptions{
		ClientEmail: cfg.ClientEmail,
		PrivateKey:  []byte(cfg.PrivateKey),
		TokenURL:    cfg.TokenURL,
		Scopes:      []string{cfg.Scope},
		HTTPClient:  upstream,
	})

	sheets := google.NewSheets(google.SheetsOptions{
		BaseURL:       cfg.SheetsBaseURL,
		SpreadsheetID: cfg.SpreadsheetID,
		HTTPClient:    upstream,
	})

	// Stats store is optional - fail fast only when it was asked for
	var redisClient *goredis.Client
	if cfg.RedisAddr != "" {
		redisClient, err = redisstore.Connect(context.Background(), redisstore.ConnectOptions{
			Addr:           cfg.RedisAddr,
			User:           cfg.RedisUser,
			Password:       cfg.RedisPassword,
			DB:             cfg.RedisDB,
			DialTimeout:    cfg.RedisDT,
			ReadTimeout:    cfg.RedisRT,
			WriteTimeout:   cfg.RedisWT,
			PoolSize:       cfg.RedisPoolSize,
			ConnectTimeout: cfg.RedisConnectTimeout,
			RetryInterval:  cfg.RedisRetryInterval,
			MaxWait:        cfg.RedisMaxWait,
			PingTimeout:    cfg.RedisPingTimeout,
			WarnThreshold:  cfg.RedisWarnThreshold,
		}, loggerClient)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to stats store: %w", err)
		}
	} else {
		loggerClient.Info("stats store not configured, redirect statistics disabled")
	}

	d := deps.Deps{
		Logger:    loggerClient,
		StartTime: time.Now(),
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: version.GoVersion,

		Clock:    clock,
		Resolver: domain.NewRedirectResolver(clock.Location()),

		Credentials:   credentials,
		Sheets:        sheets,
		Ranges:        candidates,
		ReloadTrigger: reloadTrigger,
		SpreadsheetID: cfg.SpreadsheetID,
		ClientEmail:   cfg.ClientEmail,
		PrivateKeySet: cfg.PrivateKey != "",
		ConfigErr:     configErr,

		Metrics: metrics.NewPrometheus(),
		Stats:   redisstore.NewStore(redisClient),

		AllowedHosts:    cfg.AllowedHosts,
		AllowedCIDRS:    cfg.AllowedCIDRS,
		TrustProxy:      cfg.TrustProxy,
		RateLimitBurst:  cfg.RateLimitBurst,
		RateLimitPerMin: cfg.RateLimitPerMin,
	}

	loggerClient.Info("rule evaluation configured",
		logger.String("timezone", clock.Location().String()),
		logger.String("ranges_file", cfg.RangesFile),
		logger.Bool("rate_limit", cfg.RateLimitBurst > 0))

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		reloader:    reloader,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting timejump %s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("timejump %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)
	defer func() { _ = a.logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load candidate ranges (fails on a broken ranges file) and start periodic refresh
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start ranges reloader: %w", err)
	}
	a.logger.Info("ranges reloader started",
		logger.Duration("interval", a.cfg.RangesReloadInterval))

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

	a.reloader.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		utils.Close(a.redisClient)
		a.logger.Info("✅ Stats store closed")
	}

	a.logger.Info("✅ timejump stopped cleanly")
	return nil
}
