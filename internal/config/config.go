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

const (
	DefaultDSN         = "host=localhost user=postgres password=postgres dbname=inmobiliaria port=5432 sslmode=disable"
	DefaultCORSOrigins = "http://localhost:5173"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Map      MapConfig      `mapstructure:"map"`
	Notify   NotifyConfig   `mapstructure:"notify"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port        string `mapstructure:"port"`
	CORSOrigins string `mapstructure:"cors_origins"`
	BodyLimitMB int    `mapstructure:"body_limit_mb"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type AuthConfig struct {
	Provider      string        `mapstructure:"provider"` // local | oidc
	JWTSecret     string        `mapstructure:"jwt_secret"`
	TokenTTL      time.Duration `mapstructure:"token_ttl"`
	AllowedEmails []string      `mapstructure:"allowed_emails"`
	OIDC          OIDCConfig    `mapstructure:"oidc"`
}

type OIDCConfig struct {
	UserInfoURL string        `mapstructure:"userinfo_url"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type CatalogConfig struct {
	Source          string        `mapstructure:"source"` // static | store
	SeedStore       bool          `mapstructure:"seed_store"`
	TTL             time.Duration `mapstructure:"ttl"`
	MemcacheServers []string      `mapstructure:"memcache_servers"`
}

type MapConfig struct {
	SessionTTL    time.Duration `mapstructure:"session_ttl"`
	ClusterRadius int           `mapstructure:"cluster_radius"`
	MaxZoom       int           `mapstructure:"max_zoom"`
}

type NotifyConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	AWSRegion    string `mapstructure:"aws_region"`
	SESSender    string `mapstructure:"ses_sender"`
	SESRecipient string `mapstructure:"ses_recipient"`
	SNSPhone     string `mapstructure:"sns_phone"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load .env + configs/config.yaml + ortam değişkenleri. Hata durumunda çıkmaz, hata döner.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")
	if root := findProjectRoot(); root != "" {
		v.AddConfigPath(filepath.Join(root, "configs"))
	}

	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	applyDefaults(v)
	bindLegacyEnv(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config dosyası okunamadı: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config çözümlenemedi: %w", err)
	}

	normalize(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("geçersiz konfigürasyon: %w", err)
	}
	return &cfg, nil
}

func applyDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.cors_origins", DefaultCORSOrigins)
	v.SetDefault("server.body_limit_mb", 10)

	v.SetDefault("database.dsn", DefaultDSN)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("auth.provider", "local")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.allowed_emails", []string{
		"laura@lauraalba.com",
		"admin@lauraalba.com",
		"info@lauraalba.com",
	})
	v.SetDefault("auth.oidc.userinfo_url", "")
	v.SetDefault("auth.oidc.timeout", 5*time.Second)

	v.SetDefault("catalog.source", "static")
	v.SetDefault("catalog.seed_store", false)
	v.SetDefault("catalog.ttl", 5*time.Minute)
	v.SetDefault("catalog.memcache_servers", []string{})

	v.SetDefault("map.session_ttl", 30*time.Minute)
	v.SetDefault("map.cluster_radius", 50)
	v.SetDefault("map.max_zoom", 18)

	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.aws_region", "us-east-1")
	v.SetDefault("notify.ses_sender", "")
	v.SetDefault("notify.ses_recipient", "")
	v.SetDefault("notify.sns_phone", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Eski deploy'larda kullanılan ortam değişkeni isimleri
func bindLegacyEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", "SERVER_PORT", "HTTP_PORT")
	_ = v.BindEnv("server.cors_origins", "SERVER_CORS_ORIGINS", "CORS_ALLOWED_ORIGINS")
	_ = v.BindEnv("database.dsn", "DATABASE_DSN")
	_ = v.BindEnv("auth.jwt_secret", "AUTH_JWT_SECRET", "JWT_SECRET")
}

func normalize(cfg *Config) {
	cfg.Auth.Provider = strings.ToLower(strings.TrimSpace(cfg.Auth.Provider))
	cfg.Catalog.Source = strings.ToLower(strings.TrimSpace(cfg.Catalog.Source))

	emails := make([]string, 0, len(cfg.Auth.AllowedEmails))
	for _, e := range cfg.Auth.AllowedEmails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			emails = append(emails, e)
		}
	}
	cfg.Auth.AllowedEmails = emails

	servers := make([]string, 0, len(cfg.Catalog.MemcacheServers))
	for _, s := range cfg.Catalog.MemcacheServers {
		if s = strings.TrimSpace(s); s != "" {
			servers = append(servers, s)
		}
	}
	cfg.Catalog.MemcacheServers = servers
}

func validate(cfg *Config) error {
	switch cfg.Auth.Provider {
	case "local":
		if cfg.Auth.JWTSecret == "" {
			return errors.New("JWT_SECRET tanımlanmamış")
		}
		if len(cfg.Auth.JWTSecret) < 32 {
			return errors.New("JWT_SECRET en az 32 karakter olmalıdır")
		}
	case "oidc":
		if cfg.Auth.OIDC.UserInfoURL == "" {
			return errors.New("auth.oidc.userinfo_url zorunlu")
		}
	default:
		return fmt.Errorf("bilinmeyen auth.provider: %q", cfg.Auth.Provider)
	}

	switch cfg.Catalog.Source {
	case "static", "store":
	default:
		return fmt.Errorf("bilinmeyen catalog.source: %q", cfg.Catalog.Source)
	}

	if cfg.Auth.TokenTTL <= 0 {
		return errors.New("auth.token_ttl pozitif olmalı")
	}
	if cfg.Map.ClusterRadius <= 0 {
		return errors.New("map.cluster_radius pozitif olmalı")
	}
	if cfg.Notify.Enabled && cfg.Notify.SESRecipient == "" && cfg.Notify.SNSPhone == "" {
		return errors.New("notify.enabled için ses_recipient veya sns_phone gerekli")
	}
	return nil
}

// Warnings production için uyarılar (main loglar)
func (c *Config) Warnings() []string {
	var out []string
	if c.Database.DSN == DefaultDSN {
		out = append(out, "DATABASE_DSN varsayılan değer kullanılıyor, production için kendi Postgres bağlantı bilgini tanımla")
	}
	if c.Server.CORSOrigins == DefaultCORSOrigins {
		out = append(out, "CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor, production için kendi domain'ini tanımla")
	}
	return out
}

func loadEnvFile() {
	paths := []string{".env"}
	if root := findProjectRoot(); root != "" {
		paths = append(paths, filepath.Join(root, ".env"))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			if err := godotenv.Load(p); err == nil {
				return
			}
		}
	}
}

func findProjectRoot() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
