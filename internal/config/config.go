package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port                  int                    `json:"port" env:"PORT"`
	FrontendURL           string                 `json:"frontend_url" env:"FRONTEND_URL"`
	JWTSecret             string                 `json:"jwt_secret" env:"JWT_SECRET"`
	CORSOrigins           []string               `json:"cors_origins" env:"CORS_ORIGINS" envSeparator:","`
	ResetRateLimitSeconds int                    `json:"reset_rate_limit_seconds" env:"RESET_RATE_LIMIT_SECONDS"`
	Database              DatabaseConfig         `json:"database"`
	Password              PasswordConfig         `json:"password"`
	OAuth                 OAuthConfig            `json:"oauth"`
	Mail                  MailConfig             `json:"mail"`
	VerificationCode      VerificationCodeConfig `json:"verification_code"`
	LogConfig             logger.LogConfig       `json:"log_config"`
}

type DatabaseConfig struct {
	Driver   string `json:"driver" env:"DATABASE_DRIVER"`
	DSN      string `json:"dsn" env:"DATABASE_URL"`
	Path     string `json:"path" env:"DATABASE_PATH"`
	Host     string `json:"host" env:"DATABASE_HOST"`
	Port     int    `json:"port" env:"DATABASE_PORT"`
	User     string `json:"user" env:"DATABASE_USER"`
	Password string `json:"password" env:"DATABASE_PASSWORD"`
	DBName   string `json:"dbname" env:"DATABASE_NAME"`
	SSLMode  string `json:"sslmode" env:"DATABASE_SSLMODE"`
}

type PasswordConfig struct {
	BcryptCost int `json:"bcrypt_cost" env:"PASSWORD_BCRYPT_COST"`
}

type OAuthConfig struct {
	Google OAuthProviderConfig `json:"google"`
	// LinkVerifiedEmail lets a provider login attach itself to an existing
	// password account when the provider vouches for the email.
	LinkVerifiedEmail *bool `json:"link_verified_email" env:"OAUTH_LINK_VERIFIED_EMAIL"`
}

type OAuthProviderConfig struct {
	ClientID     string   `json:"client_id" env:"GOOGLE_CLIENT_ID"`
	ClientSecret string   `json:"client_secret" env:"GOOGLE_CLIENT_SECRET"`
	RedirectURL  string   `json:"redirect_url" env:"GOOGLE_CALLBACK_URL"`
	Scopes       []string `json:"scopes" env:"GOOGLE_SCOPES" envSeparator:","`
	AuthURL      string   `json:"auth_url" env:"GOOGLE_AUTH_URL"`
	TokenURL     string   `json:"token_url" env:"GOOGLE_TOKEN_URL"`
	UserInfoURL  string   `json:"userinfo_url" env:"GOOGLE_USERINFO_URL"`
}

func (c OAuthProviderConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

type MailConfig struct {
	Host     string `json:"host" env:"EMAIL_HOST"`
	Port     int    `json:"port" env:"EMAIL_PORT"`
	Username string `json:"username" env:"EMAIL_USER"`
	Password string `json:"password" env:"EMAIL_PASS"`
	From     string `json:"from" env:"EMAIL_FROM"`
}

type VerificationCodeConfig struct {
	Store       string `json:"store" env:"VERIFICATION_CODE_STORE"`
	TTLMinutes  int    `json:"ttl_minutes" env:"VERIFICATION_CODE_TTL_MINUTES"`
	CacheSize   int    `json:"cache_size" env:"VERIFICATION_CODE_CACHE_SIZE"`
	CleanupCron string `json:"cleanup_cron" env:"VERIFICATION_CODE_CLEANUP_CRON"`
}

// Load reads the optional JSON file at path, then applies a .env file from the
// working directory and the process environment on top of it.
func Load(path string) (*Config, error) {
	var cfg Config
	if path != "" {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()
		if err := json.NewDecoder(file).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
	}
	_ = godotenv.Load()
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) normalize() error {
	if cfg.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		cfg.Port = 5001
	}
	if cfg.FrontendURL == "" {
		cfg.FrontendURL = "http://localhost:5173"
	}
	cfg.FrontendURL = strings.TrimRight(cfg.FrontendURL, "/")
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{cfg.FrontendURL}
	}
	switch {
	case cfg.ResetRateLimitSeconds == 0:
		cfg.ResetRateLimitSeconds = 60
	case cfg.ResetRateLimitSeconds < 0:
		cfg.ResetRateLimitSeconds = 0
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	switch cfg.Database.Driver {
	case "sqlite":
		if cfg.Database.Path == "" {
			cfg.Database.Path = "portfolio.db"
		}
	case "postgres":
		if cfg.Database.DSN == "" && cfg.Database.Host == "" {
			return fmt.Errorf("database.dsn or database.host is required for postgres")
		}
		if cfg.Database.Port == 0 {
			cfg.Database.Port = 5432
		}
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres")
	}

	google := &cfg.OAuth.Google
	if len(google.Scopes) == 0 {
		google.Scopes = []string{"profile", "email"}
	}
	if google.RedirectURL == "" {
		google.RedirectURL = fmt.Sprintf("http://localhost:%d/api/auth/google/callback", cfg.Port)
	}
	if cfg.OAuth.LinkVerifiedEmail == nil {
		link := true
		cfg.OAuth.LinkVerifiedEmail = &link
	}

	if cfg.Mail.Host == "" {
		cfg.Mail.Host = "smtp.gmail.com"
	}
	if cfg.Mail.Port == 0 {
		cfg.Mail.Port = 587
	}

	code := &cfg.VerificationCode
	if code.Store == "" {
		code.Store = "memory"
	}
	if code.Store != "memory" && code.Store != "db" {
		return fmt.Errorf("verification_code.store must be memory or db")
	}
	if code.TTLMinutes <= 0 {
		code.TTLMinutes = 15
	}
	if code.CacheSize <= 0 {
		code.CacheSize = 10000
	}
	return nil
}
