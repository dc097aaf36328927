package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"FundLens/internal/analyzer"
	"FundLens/internal/catalog"
	"FundLens/internal/collector"
	"FundLens/internal/config"
	"FundLens/internal/logger"
	"FundLens/internal/notifier"
	"FundLens/internal/pdf/mupdf"
	"FundLens/internal/recorder"
	"FundLens/internal/scheduler"
	"FundLens/internal/server"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Log.Fatalf("load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logger.Log.Fatalf("config validation: %v", err)
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		logger.Log.Fatalf("init logger: %v", err)
	}
	logger.Log.Info("FundLens starting...")

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := openRecorder(cfg)
	defer rec.Close()

	httpClient := collector.NewHTTPClient(cfg.Proxy, cfg.HTTP.Timeout, cfg.HTTP.InsecureSkipVerify)

	// Init fund lister
	var lister collector.FundLister
	if cfg.COVIP.FixtureFile != "" {
		sl, err := collector.LoadStaticLister(cfg.COVIP.FixtureFile)
		if err != nil {
			logger.Log.Fatalf("load fund fixture: %v", err)
		}
		lister = sl
	} else {
		lister = collector.NewCOVIPFetcher(httpClient, cfg.COVIP.ListURL, cfg.HTTP.UserAgent)
	}
	logger.Log.Infof("fund source: %s", lister.Name())

	// Init catalog cache
	var cache catalog.Cache
	if cfg.Cache.RedisAddr != "" {
		rc, err := catalog.NewRedisCache(ctx, cfg.Cache.RedisAddr, cfg.Cache.RedisPassword, cfg.Cache.RedisDB, cfg.Cache.Key)
		if err != nil {
			logger.Log.Warnf("init redis cache failed, using memory: %v", err)
		} else {
			cache = rc
			defer rc.Close()
		}
	}
	cat := catalog.New(lister, cache, cfg.Cache.TTL, rec)

	// Init analyzer
	dl := analyzer.NewDownloader(httpClient, cfg.HTTP.UserAgent, cfg.Analyzer.MaxPDFBytes,
		cfg.Analyzer.DownloadRate, cfg.Analyzer.DownloadBurst)
	dl.AllowPrivate = cfg.Analyzer.AllowPrivate
	if err := os.MkdirAll(cfg.Analyzer.ChartsDir, 0o755); err != nil {
		logger.Log.Fatalf("create charts dir: %v", err)
	}
	az := analyzer.New(dl, mupdf.Open, cfg.Analyzer.ChartsDir, cfg.Analyzer.DPI, rec)

	// Init Telegram notifier
	var tn *notifier.TelegramNotifier
	var notify scheduler.Notifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		notify = tn
	}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, cat, notify, rec, cfg.Analyzer.ChartsDir, cfg.Analyzer.ChartRetention)
	if err := sched.RegisterAll(cfg.Schedule.CatalogRefreshCron, cfg.Schedule.ChartCleanupCron, cfg.Schedule.DigestCron); err != nil {
		logger.Log.Fatalf("register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		logger.Log.Info("telegram polling started")
	}

	// Optional: warm the fund list on start
	if os.Getenv("RUN_ON_START") == "true" {
		logger.Log.Info("RUN_ON_START enabled, refreshing fund list now")
		go sched.RunRefreshNow()
	}

	srv, err := server.New(server.Options{
		Catalog:   cat,
		Analyzer:  az,
		PDFs:      dl,
		ChartsDir: cfg.Analyzer.ChartsDir,
		AssetsDir: cfg.Server.AssetsDir,
	})
	if err != nil {
		logger.Log.Fatalf("init http server: %v", err)
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Run(ctx, cfg.Server.Addr) }()

	logger.Log.Info("FundLens is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		logger.Log.Info("shutdown signal received, stopping...")
		cancel()
		err = <-errCh
	case err = <-errCh:
		cancel()
	}
	if err != nil {
		logger.Log.Errorf("server: %v", err)
	}
	logger.Log.Info("FundLens stopped")
}

func openRecorder(cfg *config.Config) recorder.Recorder {
	var (
		rec recorder.Recorder
		err error
	)
	switch cfg.Database.Driver {
	case "sqlite":
		rec, err = recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
	case "postgres":
		rec, err = recorder.NewPostgresRecorder(cfg.Database.PostgresDSN)
	default:
		logger.Log.Info("history recording disabled")
		return recorder.NewNoopRecorder()
	}
	if err != nil {
		logger.Log.Warnf("init %s recorder failed, using noop: %v", cfg.Database.Driver, err)
		return recorder.NewNoopRecorder()
	}
	return rec
}
