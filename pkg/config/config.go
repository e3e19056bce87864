// Package config loads application settings from a .env file and environment variables.
// Environment variables always take precedence over .env file values.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	// devJWTSecret is only accepted when ENV=development.
	devJWTSecret = "supersecretjwtkey"
)

type Config struct {
	Port  string
	Env   string
	Debug bool

	DBDriver    string
	DatabaseURL string

	JWTSecret  string
	SessionTTL time.Duration
	BcryptCost int

	StaticDir      string
	UploadDir      string
	MaxUploadBytes int64

	// AdminUsername/AdminPassword seed an administrator at startup when the password is set.
	AdminUsername string
	AdminPassword string
}

// Load reads configuration from a .env file (if present) and then from
// environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("config: no .env file found, using environment variables only")
	}
	return FromViper(newViper())
}

// FromViper builds a Config from an already populated viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("DEBUG", false)
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("SESSION_TTL", "72h")
	v.SetDefault("BCRYPT_COST", 0)
	v.SetDefault("STATIC_DIR", "static")
	v.SetDefault("UPLOAD_DIR", "static/images")
	v.SetDefault("MAX_UPLOAD_BYTES", 10<<20)
	v.SetDefault("ADMIN_USERNAME", "admin")

	cfg := &Config{
		Port:           strings.TrimPrefix(v.GetString("PORT"), ":"),
		Env:            v.GetString("ENV"),
		Debug:          v.GetBool("DEBUG"),
		DBDriver:       strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseURL:    v.GetString("DATABASE_URL"),
		JWTSecret:      v.GetString("JWT_SECRET"),
		SessionTTL:     v.GetDuration("SESSION_TTL"),
		BcryptCost:     v.GetInt("BCRYPT_COST"),
		StaticDir:      v.GetString("STATIC_DIR"),
		UploadDir:      v.GetString("UPLOAD_DIR"),
		MaxUploadBytes: v.GetInt64("MAX_UPLOAD_BYTES"),
		AdminUsername:  strings.TrimSpace(v.GetString("ADMIN_USERNAME")),
		AdminPassword:  v.GetString("ADMIN_PASSWORD"),
	}

	if cfg.DatabaseURL == "" && cfg.DBDriver == DriverSQLite {
		cfg.DatabaseURL = "app.db"
	}
	if cfg.JWTSecret == "" && cfg.IsDevelopment() {
		log.Println("config: JWT_SECRET not set, using development secret")
		cfg.JWTSecret = devJWTSecret
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// IsDevelopment reports whether the app runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Addr returns the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

// JWTKey returns the session signing key as a byte slice.
func (c *Config) JWTKey() []byte {
	return []byte(c.JWTSecret)
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("config: unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL must be set for driver %s", c.DBDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET must be set")
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("config: SESSION_TTL must be positive")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()
	return v
}
