package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	Port           string        `toml:"port"`
	DBDriver       string        `toml:"db_driver"`
	DatabaseURL    string        `toml:"database_url"`
	JWTSecret      string        `toml:"jwt_secret"`
	TokenTTL       time.Duration `toml:"-"`
	UploadDir      string        `toml:"upload_dir"`
	AllowedOrigins []string      `toml:"allowed_origins"`
	LogLevel       string        `toml:"log_level"`
	LogFormat      string        `toml:"log_format"`

	// ReminderInterval is how often due-soon reminders are sent; zero disables them.
	ReminderInterval time.Duration `toml:"-"`
	ReminderWindow   time.Duration `toml:"-"`

	// TOML has no duration type, so durations are read as strings.
	TokenTTLRaw         string `toml:"token_ttl"`
	ReminderIntervalRaw string `toml:"reminder_interval"`
	ReminderWindowRaw   string `toml:"reminder_window"`
}

var (
	// Default allowed origins for development
	defaultOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}

	supportedDrivers = map[string]bool{"postgres": true, "mysql": true, "sqlite": true}
)

func DefaultConfig() *Config {
	origins := make([]string, len(defaultOrigins))
	copy(origins, defaultOrigins)

	return &Config{
		Port:           "3000",
		DBDriver:       "postgres",
		TokenTTL:       7 * 24 * time.Hour,
		UploadDir:      "uploads",
		AllowedOrigins: origins,
		LogLevel:       "info",
		LogFormat:      "text",

		ReminderInterval: 15 * time.Minute,
		ReminderWindow:   24 * time.Hour,
	}
}

// Load builds the configuration from defaults, an optional TOML file and the
// environment, in that order of precedence (environment wins).
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load .env: %w", err)
		}
		slog.Debug("No .env file found, using process environment")
	}

	cfg := DefaultConfig()

	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("decode config file %s: %w", path, err)
		}
		durations := []struct {
			key string
			raw string
			dst *time.Duration
		}{
			{"token_ttl", cfg.TokenTTLRaw, &cfg.TokenTTL},
			{"reminder_interval", cfg.ReminderIntervalRaw, &cfg.ReminderInterval},
			{"reminder_window", cfg.ReminderWindowRaw, &cfg.ReminderWindow},
		}
		for _, d := range durations {
			if err := parseDuration(d.key, d.raw, d.dst); err != nil {
				return nil, err
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.UploadDir = expandPath(cfg.UploadDir)

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if port := os.Getenv("PORT"); port != "" {
		c.Port = port
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.DBDriver = strings.ToLower(driver)
	}
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		c.DatabaseURL = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWTSecret = secret
	}
	if err := parseDuration("TOKEN_TTL", os.Getenv("TOKEN_TTL"), &c.TokenTTL); err != nil {
		return err
	}
	if err := parseDuration("REMINDER_INTERVAL", os.Getenv("REMINDER_INTERVAL"), &c.ReminderInterval); err != nil {
		return err
	}
	if err := parseDuration("REMINDER_WINDOW", os.Getenv("REMINDER_WINDOW"), &c.ReminderWindow); err != nil {
		return err
	}
	if dir := os.Getenv("UPLOAD_DIR"); dir != "" {
		c.UploadDir = dir
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.LogLevel = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		c.LogFormat = format
	}

	if clientURL := os.Getenv("CLIENT_URL"); clientURL != "" {
		c.AllowedOrigins = append(c.AllowedOrigins, clientURL)
	}

	if allowedOrigins := os.Getenv("ALLOWED_ORIGINS"); allowedOrigins != "" {
		for _, origin := range strings.Split(allowedOrigins, ",") {
			trimmed := strings.TrimSpace(origin)
			if trimmed != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, trimmed)
			}
		}
	}

	return nil
}

func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is not set")
	}
	if !supportedDrivers[c.DBDriver] {
		return fmt.Errorf("unsupported DB_DRIVER %q (want postgres, mysql or sqlite)", c.DBDriver)
	}
	if c.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set")
	}
	if c.TokenTTL <= 0 {
		return errors.New("token TTL must be positive")
	}
	if c.ReminderInterval < 0 || c.ReminderWindow < 0 {
		return errors.New("reminder durations must not be negative")
	}
	if len(c.AllowedOrigins) == 0 {
		return errors.New("at least one allowed origin is required")
	}
	return nil
}

// parseDuration leaves dst untouched when raw is empty.
func parseDuration(key, raw string, dst *time.Duration) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	*dst = d
	return nil
}

// SlogLevel converts LogLevel, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// NewLogger builds the process logger from LogLevel and LogFormat.
func (c *Config) NewLogger() *slog.Logger {
	opts := &slog.HandlerOptions{Level: c.SlogLevel()}
	if strings.EqualFold(c.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func expandPath(path string) string {
	if len(path) > 0 && path[0] == '~' {
		homeDir, _ := os.UserHomeDir()
		return filepath.Join(homeDir, path[1:])
	}
	return path
}
