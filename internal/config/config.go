package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultCOVIPListURL is the public page listing every fund's cost sheet.
const DefaultCOVIPListURL = "https://www.covip.it/per-gli-operatori/fondi-pensione/costi-e-rendimenti-dei-fondi-pensione/elenco-schede-costi"

// DefaultUserAgent is sent to COVIP and to the fund websites hosting the PDFs.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

// Config holds all application configuration.
type Config struct {
	Server struct {
		Addr      string `yaml:"addr"`
		AssetsDir string `yaml:"assets_dir"` // compiled wasm front-end
	} `yaml:"server"`
	COVIP struct {
		ListURL     string `yaml:"list_url"`
		FixtureFile string `yaml:"fixture_file"` // offline fund list, JSON
	} `yaml:"covip"`
	HTTP struct {
		Timeout            time.Duration `yaml:"timeout"`
		UserAgent          string        `yaml:"user_agent"`
		InsecureSkipVerify bool          `yaml:"insecure_skip_verify"`
	} `yaml:"http"`
	Analyzer struct {
		DPI            float64       `yaml:"dpi"`
		ChartsDir      string        `yaml:"charts_dir"`
		MaxPDFBytes    int64         `yaml:"max_pdf_bytes"`
		DownloadRate   float64       `yaml:"download_rate"` // downloads per second
		DownloadBurst  int           `yaml:"download_burst"`
		ChartRetention time.Duration `yaml:"chart_retention"`
		AllowPrivate   bool          `yaml:"allow_private_hosts"` // let PDF urls reach internal networks
	} `yaml:"analyzer"`
	Cache struct {
		TTL           time.Duration `yaml:"ttl"`
		RedisAddr     string        `yaml:"redis_addr"`
		RedisPassword string        `yaml:"redis_password"`
		RedisDB       int           `yaml:"redis_db"`
		Key           string        `yaml:"key"`
	} `yaml:"cache"`
	Database struct {
		Driver      string `yaml:"driver"` // sqlite, postgres or none
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"database"`
	Schedule struct {
		CatalogRefreshCron string `yaml:"catalog_refresh_cron"`
		ChartCleanupCron   string `yaml:"chart_cleanup_cron"`
		DigestCron         string `yaml:"digest_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Log struct {
		Level string `yaml:"level"`
		File  string `yaml:"file"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads .env, then the YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("FUNDLENS_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("FUNDLENS_ASSETS_DIR"); v != "" {
		cfg.Server.AssetsDir = v
	}
	if v := os.Getenv("COVIP_FIXTURE_FILE"); v != "" {
		cfg.COVIP.FixtureFile = v
	}
	if v := os.Getenv("CHARTS_DIR"); v != "" {
		cfg.Analyzer.ChartsDir = v
	}
	if v := os.Getenv("ALLOW_PRIVATE_HOSTS"); v != "" {
		cfg.Analyzer.AllowPrivate = v == "true"
	}
	if v := os.Getenv("CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Cache.TTL = d
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.RedisDB = n
		}
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Database.PostgresDSN = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Server.AssetsDir == "" {
		cfg.Server.AssetsDir = "web/dist"
	}
	if cfg.COVIP.ListURL == "" {
		cfg.COVIP.ListURL = DefaultCOVIPListURL
	}
	if cfg.HTTP.Timeout == 0 {
		cfg.HTTP.Timeout = 30 * time.Second
	}
	if cfg.HTTP.UserAgent == "" {
		cfg.HTTP.UserAgent = DefaultUserAgent
	}
	if cfg.Analyzer.DPI == 0 {
		cfg.Analyzer.DPI = 200
	}
	if cfg.Analyzer.ChartsDir == "" {
		cfg.Analyzer.ChartsDir = "data/charts"
	}
	if cfg.Analyzer.MaxPDFBytes == 0 {
		cfg.Analyzer.MaxPDFBytes = 32 << 20
	}
	if cfg.Analyzer.DownloadRate == 0 {
		cfg.Analyzer.DownloadRate = 2
	}
	if cfg.Analyzer.DownloadBurst == 0 {
		cfg.Analyzer.DownloadBurst = 4
	}
	if cfg.Analyzer.ChartRetention == 0 {
		cfg.Analyzer.ChartRetention = 7 * 24 * time.Hour
	}
	if cfg.Cache.Key == "" {
		cfg.Cache.Key = "fundlens:funds"
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/fundlens.db"
	}
	if cfg.Schedule.CatalogRefreshCron == "" {
		cfg.Schedule.CatalogRefreshCron = "0 0 6 * * *"
	}
	if cfg.Schedule.ChartCleanupCron == "" {
		cfg.Schedule.ChartCleanupCron = "0 30 3 * * *"
	}
	if cfg.Schedule.DigestCron == "" {
		cfg.Schedule.DigestCron = "0 0 9 * * *"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if c.Analyzer.DPI <= 0 {
		return fmt.Errorf("analyzer.dpi must be positive")
	}
	if c.Analyzer.MaxPDFBytes <= 0 {
		return fmt.Errorf("analyzer.max_pdf_bytes must be positive")
	}
	if c.Analyzer.DownloadRate <= 0 || c.Analyzer.DownloadBurst <= 0 {
		return fmt.Errorf("analyzer.download_rate and analyzer.download_burst must be positive")
	}
	if c.Cache.TTL < 0 {
		return fmt.Errorf("cache.ttl must not be negative")
	}
	switch c.Database.Driver {
	case "sqlite", "none":
	case "postgres":
		if c.Database.PostgresDSN == "" {
			return fmt.Errorf("database.postgres_dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	if c.Telegram.BotToken != "" && c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required when telegram.bot_token is set")
	}
	return nil
}

// TelegramEnabled reports whether the Telegram bot is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
