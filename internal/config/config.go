package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds runtime configuration values for the API service.
type Config struct {
	AppName                 string
	AppEnv                  string
	AppPort                 string
	DatabaseURL             string
	SQLitePath              string
	RedisURL                string
	NATSURL                 string
	NATSSubjectPrefix       string
	JWTSecret               string
	OpenAIAPIKey            string
	AIModel                 string
	AIBaseURL               string
	AITimeout               time.Duration
	AIJSONMode              bool
	PlanCacheTTL            time.Duration
	PlanMaxDays             int
	GenerationRatePerMinute int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// AIEnabled reports whether model credentials are configured.
func (c Config) AIEnabled() bool {
	return strings.TrimSpace(c.OpenAIAPIKey) != ""
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("GEMA")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "GEMA LearnPath API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("database.sqlite_path", "learnpath.db")
	v.SetDefault("nats.subject_prefix", "gema.learnpath")
	v.SetDefault("ai.model", "gpt-4o-mini")
	v.SetDefault("ai.timeout", "60s")
	v.SetDefault("ai.json_mode", true)
	v.SetDefault("plans.cache_ttl", "2m")
	v.SetDefault("plans.max_days", 30)
	v.SetDefault("rate_limit.generation_per_minute", 20)

	aiTimeout, err := parseDuration(v.GetString("ai.timeout"), 60*time.Second)
	if err != nil {
		return Config{}, fmt.Errorf("invalid ai timeout: %w", err)
	}

	cacheTTL, err := parseDuration(v.GetString("plans.cache_ttl"), 2*time.Minute)
	if err != nil {
		return Config{}, fmt.Errorf("invalid plan cache ttl: %w", err)
	}

	cfg := Config{
		AppName:                 v.GetString("app.name"),
		AppEnv:                  v.GetString("app.env"),
		AppPort:                 v.GetString("app.port"),
		DatabaseURL:             v.GetString("database.url"),
		SQLitePath:              v.GetString("database.sqlite_path"),
		RedisURL:                v.GetString("redis.url"),
		NATSURL:                 v.GetString("nats.url"),
		NATSSubjectPrefix:       v.GetString("nats.subject_prefix"),
		JWTSecret:               v.GetString("jwt.secret"),
		OpenAIAPIKey:            v.GetString("openai_api_key"),
		AIModel:                 v.GetString("ai.model"),
		AIBaseURL:               v.GetString("ai.base_url"),
		AITimeout:               aiTimeout,
		AIJSONMode:              v.GetBool("ai.json_mode"),
		PlanCacheTTL:            cacheTTL,
		PlanMaxDays:             v.GetInt("plans.max_days"),
		GenerationRatePerMinute: v.GetInt("rate_limit.generation_per_minute"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.PlanMaxDays <= 0 {
		cfg.PlanMaxDays = 30
	}

	if cfg.GenerationRatePerMinute <= 0 {
		cfg.GenerationRatePerMinute = 20
	}

	return cfg, nil
}

func parseDuration(value string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	return time.ParseDuration(value)
}
