package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/clipforge/clipforge/internal/logger"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Session  SessionConfig  `mapstructure:"session"`
	Metadata MetadataConfig `mapstructure:"metadata"`
	Caption  CaptionConfig  `mapstructure:"caption"`
	Site     SiteConfig     `mapstructure:"site"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	Mode string     `mapstructure:"mode"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins  []string `mapstructure:"allowed_origins"`
	AllowAllOrigins bool     `mapstructure:"allow_all_origins"`
}

// SessionConfig selects where visitor UI state lives.
type SessionConfig struct {
	Backend      string        `mapstructure:"backend"` // memory, redis
	TTL          time.Duration `mapstructure:"ttl"`
	CookieName   string        `mapstructure:"cookie_name"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	RedisURL     string        `mapstructure:"redis_url"`
	RedisPrefix  string        `mapstructure:"redis_prefix"`
}

// MetadataConfig configures the video metadata fetcher.
type MetadataConfig struct {
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
	AccessToken string        `mapstructure:"access_token"` // Meta Graph token for Instagram/Facebook oEmbed
	GraphAPIURL string        `mapstructure:"graph_api_url"`
	MaxPageSize int64         `mapstructure:"max_page_size"`
}

// CaptionConfig configures the OpenAI-compatible caption generator.
type CaptionConfig struct {
	Enabled     bool          `mapstructure:"enabled"`
	Model       string        `mapstructure:"model"`
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Temperature float32       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
}

// SiteConfig holds branding shown by the view layer.
type SiteConfig struct {
	Name         string `mapstructure:"name"`
	Tagline      string `mapstructure:"tagline"`
	ContactEmail string `mapstructure:"contact_email"`
	Year         int    `mapstructure:"year"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Environment string `mapstructure:"environment"` // local, dev, prod
	File        string `mapstructure:"file"`
	FileOnly    bool   `mapstructure:"file_only"`
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
	Compress    bool   `mapstructure:"compress"`
}

// LoggerConfig converts the section for logger.New.
func (c LogConfig) LoggerConfig(serviceName string) *logger.Config {
	return &logger.Config{
		Level:       c.Level,
		Format:      c.Format,
		ServiceName: serviceName,
		Environment: c.Environment,
		File:        c.File,
		FileOnly:    c.FileOnly,
		MaxSizeMB:   c.MaxSizeMB,
		MaxBackups:  c.MaxBackups,
		MaxAgeDays:  c.MaxAgeDays,
		Compress:    c.Compress,
	}
}

// Load reads configuration from configPath, or from ./configs/config.yaml
// and ./config.yaml when configPath is empty. Environment variables override
// file values.
func Load(configPath string) (*Config, error) {
	// Load .env file if exists
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Secrets and deployment knobs
	v.BindEnv("server.port", "PORT")
	v.BindEnv("session.backend", "SESSION_BACKEND")
	v.BindEnv("session.redis_url", "REDIS_URL")
	v.BindEnv("metadata.access_token", "META_ACCESS_TOKEN")
	v.BindEnv("caption.api_key", "CAPTION_API_KEY", "GEMINI_API_KEY")
	v.BindEnv("caption.base_url", "CAPTION_BASE_URL")
	v.BindEnv("caption.model", "CAPTION_MODEL")
	v.BindEnv("log.level", "LOG_LEVEL")
	v.BindEnv("log.format", "LOG_FORMAT")
	v.BindEnv("log.environment", "APP_ENV")
	v.BindEnv("log.file", "LOG_FILE")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.cors.allow_all_origins", true)
	v.SetDefault("server.cors.allowed_origins", []string{})

	v.SetDefault("session.backend", "memory")
	v.SetDefault("session.ttl", 2*time.Hour)
	v.SetDefault("session.cookie_name", "clipforge_session")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.redis_prefix", "clipforge:")

	v.SetDefault("metadata.timeout", 10*time.Second)
	v.SetDefault("metadata.user_agent", "Mozilla/5.0 (compatible; ClipForgeBot/1.0)")
	v.SetDefault("metadata.graph_api_url", "https://graph.facebook.com/v19.0")
	v.SetDefault("metadata.max_page_size", 512*1024)

	v.SetDefault("caption.enabled", true)
	v.SetDefault("caption.model", "gemini-2.5-flash")
	v.SetDefault("caption.base_url", "https://generativelanguage.googleapis.com/v1beta/openai")
	v.SetDefault("caption.timeout", 30*time.Second)
	v.SetDefault("caption.temperature", 0.9)
	v.SetDefault("caption.max_tokens", 400)

	v.SetDefault("site.name", "ClipForge")
	v.SetDefault("site.tagline", "The ultimate tool to save TikTok, Instagram, Facebook, and YouTube content.")
	v.SetDefault("site.contact_email", "support@clipforge.app")
	v.SetDefault("site.year", 2025)

	logDefaults := logger.DefaultConfig()
	v.SetDefault("log.level", logDefaults.Level)
	v.SetDefault("log.format", logDefaults.Format)
	v.SetDefault("log.environment", logDefaults.Environment)
	v.SetDefault("log.file", logDefaults.File)
	v.SetDefault("log.file_only", logDefaults.FileOnly)
	v.SetDefault("log.max_size_mb", logDefaults.MaxSizeMB)
	v.SetDefault("log.max_backups", logDefaults.MaxBackups)
	v.SetDefault("log.max_age_days", logDefaults.MaxAgeDays)
	v.SetDefault("log.compress", logDefaults.Compress)
}

// Validate checks cross-field constraints that defaults cannot express.
func (c *Config) Validate() error {
	switch c.Session.Backend {
	case "memory":
	case "redis":
		if c.Session.RedisURL == "" {
			return fmt.Errorf("session.redis_url is required for the redis session backend")
		}
	default:
		return fmt.Errorf("unknown session backend %q", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	return nil
}
