package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the judge service.
type Config struct {
	AppName string
	AppEnv  string
	AppPort string

	// DatabaseURL selects postgres when set; an empty value falls back to
	// a local sqlite file so the service runs with zero infrastructure.
	DatabaseURL string
	SQLitePath  string
	RedisURL    string
	NATSURL     string

	// JWTSecret enables bearer authentication on the judge endpoints when
	// non-empty.
	JWTSecret string

	WorkRoot       string
	Workers        int
	ReportCacheTTL time.Duration

	AIProvider      string
	OpenAIAPIKey    string
	AnthropicAPIKey string
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AuthEnabled reports whether bearer authentication is configured.
func (c Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("JUDGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Judge API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("sqlite.path", "judge.db")
	v.SetDefault("workers", 4)
	v.SetDefault("report.cache_ttl", "15m")
	v.SetDefault("ai.provider", "openai")

	ttlString := v.GetString("report.cache_ttl")
	if ttlString == "" {
		ttlString = "15m"
	}

	ttl, err := time.ParseDuration(ttlString)
	if err != nil {
		return Config{}, fmt.Errorf("invalid report cache ttl: %w", err)
	}

	cfg := Config{
		AppName:         v.GetString("app.name"),
		AppEnv:          v.GetString("app.env"),
		AppPort:         v.GetString("app.port"),
		DatabaseURL:     v.GetString("database.url"),
		SQLitePath:      v.GetString("sqlite.path"),
		RedisURL:        v.GetString("redis.url"),
		NATSURL:         v.GetString("nats.url"),
		JWTSecret:       v.GetString("jwt.secret"),
		WorkRoot:        v.GetString("work.root"),
		Workers:         v.GetInt("workers"),
		ReportCacheTTL:  ttl,
		AIProvider:      strings.ToLower(v.GetString("ai.provider")),
		OpenAIAPIKey:    v.GetString("openai_api_key"),
		AnthropicAPIKey: v.GetString("anthropic_api_key"),
	}

	if cfg.Workers <= 0 {
		cfg.Workers = 4
	}

	return cfg, nil
}
