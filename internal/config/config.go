// Package config handles configuration loading for newspulse.
// It supports YAML config files with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment overrides, e.g. NEWSPULSE_API_PORT.
const EnvPrefix = "NEWSPULSE"

// Config represents the complete application configuration.
type Config struct {
	News      NewsConfig      `mapstructure:"news"      yaml:"news"      json:"news"`
	Companies CompaniesConfig `mapstructure:"companies" yaml:"companies" json:"companies"`
	Storage   StorageConfig   `mapstructure:"storage"   yaml:"storage"   json:"storage"`
	Cache     CacheConfig     `mapstructure:"cache"     yaml:"cache"     json:"cache"`
	Speech    SpeechConfig    `mapstructure:"speech"    yaml:"speech"    json:"speech"`
	Schedule  ScheduleConfig  `mapstructure:"schedule"  yaml:"schedule"  json:"schedule"`
	API       APIConfig       `mapstructure:"api"       yaml:"api"       json:"api"`
	Logging   LoggingConfig   `mapstructure:"logging"   yaml:"logging"   json:"logging"`
}

// NewsConfig controls article acquisition.
type NewsConfig struct {
	FeedURL           string  `mapstructure:"feed_url"           yaml:"feed_url"           json:"feed_url"` // must contain one %s for the escaped query
	MaxArticles       int     `mapstructure:"max_articles"       yaml:"max_articles"       json:"max_articles"`
	TimeoutSec        int     `mapstructure:"timeout_sec"        yaml:"timeout_sec"        json:"timeout_sec"`
	UserAgent         string  `mapstructure:"user_agent"         yaml:"user_agent"         json:"user_agent"`
	ConcurrentFetches int     `mapstructure:"concurrent_fetches" yaml:"concurrent_fetches" json:"concurrent_fetches"`
	RequestsPerSec    float64 `mapstructure:"requests_per_sec"   yaml:"requests_per_sec"   json:"requests_per_sec"`
	CacheTTLSec       int     `mapstructure:"cache_ttl_sec"      yaml:"cache_ttl_sec"      json:"cache_ttl_sec"`
}

// Timeout returns the per-request timeout.
func (n NewsConfig) Timeout() time.Duration {
	return time.Duration(n.TimeoutSec) * time.Second
}

// CompaniesConfig points at the company list.
type CompaniesConfig struct {
	File string `mapstructure:"file" yaml:"file" json:"file"`
}

// StorageConfig selects and configures the report store.
type StorageConfig struct {
	Driver      string `mapstructure:"driver"       yaml:"driver"       json:"driver"` // "file", "sqlite", "postgres"
	Dir         string `mapstructure:"dir"          yaml:"dir"          json:"dir"`
	SQLitePath  string `mapstructure:"sqlite_path"  yaml:"sqlite_path"  json:"sqlite_path"`
	PostgresDSN string `mapstructure:"postgres_dsn" yaml:"postgres_dsn" json:"-"`
}

// CacheConfig controls the optional Redis cache.
type CacheConfig struct {
	Enabled       bool   `mapstructure:"enabled"        yaml:"enabled"        json:"enabled"`
	RedisAddr     string `mapstructure:"redis_addr"     yaml:"redis_addr"     json:"redis_addr"`
	RedisPassword string `mapstructure:"redis_password" yaml:"redis_password" json:"-"`
	RedisDB       int    `mapstructure:"redis_db"       yaml:"redis_db"       json:"redis_db"`
	TTLSec        int    `mapstructure:"ttl_sec"        yaml:"ttl_sec"        json:"ttl_sec"`
}

// SpeechConfig controls translation and audio synthesis of the verdict.
type SpeechConfig struct {
	Language     string `mapstructure:"language"      yaml:"language"      json:"language"`
	TranslateURL string `mapstructure:"translate_url" yaml:"translate_url" json:"translate_url"`
	TTSURL       string `mapstructure:"tts_url"       yaml:"tts_url"       json:"tts_url"`
	TimeoutSec   int    `mapstructure:"timeout_sec"   yaml:"timeout_sec"   json:"timeout_sec"`
}

// ScheduleConfig controls periodic batch runs.
type ScheduleConfig struct {
	Cron     string `mapstructure:"cron"     yaml:"cron"     json:"cron"`
	Timezone string `mapstructure:"timezone" yaml:"timezone" json:"timezone"`
}

// APIConfig holds HTTP API server settings.
type APIConfig struct {
	Host        string   `mapstructure:"host"         yaml:"host"         json:"host"`
	Port        int      `mapstructure:"port"         yaml:"port"         json:"port"`
	CORSOrigins []string `mapstructure:"cors_origins" yaml:"cors_origins" json:"cors_origins"`
}

// Addr returns host:port.
func (a APIConfig) Addr() string {
	return fmt.Sprintf("%s:%d", a.Host, a.Port)
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"  json:"level"`  // "debug", "info", "warn", "error"
	Format string `mapstructure:"format" yaml:"format" json:"format"` // "text" or "json"
	File   string `mapstructure:"file"   yaml:"file"   json:"file"`
}

// Load reads the configuration from file and environment variables.
// Config file search order:
//  1. ./config/config.yaml (project root)
//  2. ~/.newspulse/config.yaml (home directory)
//  3. /etc/newspulse/config.yaml (system)
//
// A .env file in the working directory is loaded into the environment first.
// Environment variables override config file values.
// Format: NEWSPULSE_<SECTION>_<KEY>, e.g., NEWSPULSE_STORAGE_DRIVER
func Load() (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(filepath.Join(homeDir(), ".newspulse"))
	v.AddConfigPath("/etc/newspulse")

	// Read config file (not required to exist)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	return decode(v)
}

// LoadFromFile reads configuration from a specific file path.
func LoadFromFile(path string) (*Config, error) {
	loadDotEnv()

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", path, err)
	}

	return decode(v)
}

func newViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	overrideFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail late at runtime.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "file", "sqlite", "postgres":
	default:
		return fmt.Errorf("invalid storage.driver %q: want file, sqlite or postgres", c.Storage.Driver)
	}
	if c.Storage.Driver == "postgres" && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("storage.postgres_dsn is required for the postgres driver")
	}
	if strings.Count(c.News.FeedURL, "%s") != 1 {
		return fmt.Errorf("news.feed_url must contain exactly one %%s: %q", c.News.FeedURL)
	}
	if c.News.MaxArticles < 0 {
		return fmt.Errorf("news.max_articles must not be negative")
	}
	return nil
}

// setDefaults sets sensible defaults for all config values.
func setDefaults(v *viper.Viper) {
	// News defaults
	v.SetDefault("news.feed_url", "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en")
	v.SetDefault("news.max_articles", 10)
	v.SetDefault("news.timeout_sec", 10)
	v.SetDefault("news.user_agent", "Mozilla/5.0")
	v.SetDefault("news.concurrent_fetches", 4)
	v.SetDefault("news.requests_per_sec", 2.0)
	v.SetDefault("news.cache_ttl_sec", 600) // 10 minutes

	// Companies defaults
	v.SetDefault("companies.file", "data/company_list.csv")

	// Storage defaults
	v.SetDefault("storage.driver", "file")
	v.SetDefault("storage.dir", "data/output")
	v.SetDefault("storage.sqlite_path", "data/newspulse.db")
	v.SetDefault("storage.postgres_dsn", "")

	// Cache defaults
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_password", "")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.ttl_sec", 600)

	// Speech defaults
	v.SetDefault("speech.language", "hi")
	v.SetDefault("speech.translate_url", "https://translate.googleapis.com/translate_a/single")
	v.SetDefault("speech.tts_url", "https://translate.google.com/translate_tts")
	v.SetDefault("speech.timeout_sec", 15)

	// Schedule defaults
	v.SetDefault("schedule.cron", "0 */6 * * *")
	v.SetDefault("schedule.timezone", "UTC")

	// API defaults
	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.cors_origins", []string{"*"})

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
}

// overrideFromEnv explicitly reads sensitive keys from environment variables.
func overrideFromEnv(cfg *Config) {
	if dsn := os.Getenv("NEWSPULSE_STORAGE_POSTGRES_DSN"); dsn != "" {
		cfg.Storage.PostgresDSN = dsn
	}
	if pw := os.Getenv("NEWSPULSE_CACHE_REDIS_PASSWORD"); pw != "" {
		cfg.Cache.RedisPassword = pw
	}
}

// loadDotEnv loads ./.env when present. Existing variables win.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load()
	}
}

// homeDir returns the user's home directory.
func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}
