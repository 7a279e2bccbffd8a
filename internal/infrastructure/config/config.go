package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	AI          AIConfig        `mapstructure:"ai"`
	Gemini      ProviderConfig  `mapstructure:"gemini"`
	OpenRouter  ProviderConfig  `mapstructure:"openrouter"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Queue       QueueConfig     `mapstructure:"queue"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Recipe      RecipeConfig    `mapstructure:"recipe"`
	Metrics     MetricsConfig   `mapstructure:"metrics"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
	LogFile     string          `mapstructure:"log_file"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig 資料庫設定；Driver 為空表示不啟用資料庫
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	LogLevel        string        `mapstructure:"log_level"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
	Seed            bool          `mapstructure:"seed"`
}

// AIConfig AI 配置
type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ProviderConfig 文字生成供應商設定
type ProviderConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	Model       string        `mapstructure:"model"`
	BaseURL     string        `mapstructure:"base_url"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
	KeyPrefix       string        `mapstructure:"key_prefix"`
}

// QueueConfig 請求隊列設定
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
	Burst    int           `mapstructure:"burst"`
}

// RecipeConfig 食譜 API 設定
type RecipeConfig struct {
	FetchConcurrency int           `mapstructure:"fetch_concurrency"`
	MaxBodySize      int64         `mapstructure:"max_body_size"`
	RequestTimeout   time.Duration `mapstructure:"request_timeout"`
}

// MetricsConfig Prometheus 設定
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

const (
	ProviderGemini     = "gemini"
	ProviderOpenRouter = "openrouter"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// LoadConfig 載入設定；.env 與 config.yaml 皆為選用
func LoadConfig() (*Config, error) {
	// 加載 .env 文件，不存在時略過
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	// 設定環境變數前綴
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定環境變量
	bindings := map[string]string{
		"server.port":              "PORT",
		"database.driver":          "DATABASE_DRIVER",
		"database.dsn":             "DATABASE_URL",
		"ai.provider":              "AI_PROVIDER",
		"gemini.api_key":           "GEMINI_API_KEY",
		"gemini.model":             "GEMINI_MODEL",
		"openrouter.api_key":       "OPENROUTER_API_KEY",
		"openrouter.model":         "OPENROUTER_MODEL",
		"openrouter.max_tokens":    "MODEL_MAX_TOKENS",
		"cache.enabled":            "CACHE_ENABLED",
		"cache.backend":            "CACHE_BACKEND",
		"cache.redis_addr":         "REDIS_ADDR",
		"cache.redis_password":     "REDIS_PASSWORD",
		"rate_limit.enabled":       "RATE_LIMIT_ENABLED",
		"rate_limit.requests":      "RATE_LIMIT_REQUESTS",
		"rate_limit.window":        "RATE_LIMIT_WINDOW",
		"recipe.fetch_concurrency": "RECIPE_FETCH_CONCURRENCY",
		"dedup_window":             "DEDUP_WINDOW",
		"log_level":                "LOG_LEVEL",
		"log_file":                 "LOG_FILE",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	// 設定檔名稱和路徑
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration",
		"ai_provider:", v.GetString("ai.provider"),
		"gemini_api_key:", maskAPIKey(v.GetString("gemini.api_key")),
		"openrouter_api_key:", maskAPIKey(v.GetString("openrouter.api_key")),
		"database_driver:", v.GetString("database.driver"),
	)

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if key == "" {
		return "(empty)"
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "recipe-share")

	// 伺服器設定
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "5s")

	// 資料庫設定
	v.SetDefault("database.driver", "")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.log_level", "warn")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.seed", false)

	// AI 設定
	v.SetDefault("ai.provider", ProviderGemini)
	v.SetDefault("ai.timeout", "60s")

	v.SetDefault("gemini.model", "gemini-3-flash-preview")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.timeout", "60s")

	v.SetDefault("openrouter.model", "google/gemini-2.0-flash-001")
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.max_tokens", 2048)
	v.SetDefault("openrouter.temperature", 0.7)
	v.SetDefault("openrouter.timeout", "60s")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", CacheBackendMemory)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)
	v.SetDefault("cache.key_prefix", "recipe-share:ai:")

	// 隊列設定
	v.SetDefault("queue.workers", 5)
	v.SetDefault("queue.max_size", 100)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 30)
	v.SetDefault("rate_limit.window", "1m")
	v.SetDefault("rate_limit.burst", 5)

	// 食譜 API 設定
	v.SetDefault("recipe.fetch_concurrency", 8)
	v.SetDefault("recipe.max_body_size", 50*1024*1024) // 50MB
	v.SetDefault("recipe.request_timeout", "30s")

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_file", "")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	switch config.Database.Driver {
	case "", DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported database driver: %s", config.Database.Driver)
	}
	if config.Database.Driver != "" && config.Database.DSN == "" {
		return fmt.Errorf("database dsn is required when driver is %s", config.Database.Driver)
	}

	switch config.AI.Provider {
	case ProviderGemini, ProviderOpenRouter:
	default:
		return fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case CacheBackendMemory:
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case CacheBackendRedis:
			if config.Cache.RedisAddr == "" {
				return fmt.Errorf("redis address is required")
			}
		default:
			return fmt.Errorf("unsupported cache backend: %s", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	// 驗證隊列設定
	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit settings")
	}

	return nil
}

// ProviderSettings 取得目前選用供應商的設定
func (c *Config) ProviderSettings() ProviderConfig {
	if c.AI.Provider == ProviderOpenRouter {
		return c.OpenRouter
	}
	return c.Gemini
}
