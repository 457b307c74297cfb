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
	AppName           string
	AppEnv            string
	AppPort           string
	DatabaseURL       string
	RedisURL          string
	NATSURL           string
	JWTSecret         string
	TokenTTL          time.Duration
	AdminName         string
	JudgeBaseURL      string
	JudgeUsername     string
	JudgePassword     string
	JudgeTimeout      time.Duration
	JudgeDeadline     time.Duration
	JudgePollInterval time.Duration
	JudgeMaxAttempts  int
	JudgeLanguage     string
	StatusCacheTTL    time.Duration
	SubmitRateLimit   int
}

// HTTPAddress returns the address the HTTP server should listen on.
func (c Config) HTTPAddress() string {
	if strings.HasPrefix(c.AppPort, ":") {
		return c.AppPort
	}

	return fmt.Sprintf(":%s", c.AppPort)
}

// Load reads configuration values from environment variables and optional .env file.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("QUIZ")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "Quiz API")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.port", "8080")
	v.SetDefault("token.ttl", "24h")
	v.SetDefault("admin.name", "admin")
	v.SetDefault("judge.timeout", "10s")
	v.SetDefault("judge.deadline", "10m")
	v.SetDefault("judge.poll_interval", "2s")
	v.SetDefault("judge.max_attempts", 60)
	v.SetDefault("judge.language", "Python3")
	v.SetDefault("status.cache_ttl", "5m")
	v.SetDefault("submit.rate_limit", 30)

	tokenTTL, err := time.ParseDuration(v.GetString("token.ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid token ttl: %w", err)
	}

	judgeTimeout, err := time.ParseDuration(v.GetString("judge.timeout"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid judge timeout: %w", err)
	}

	judgeDeadline, err := time.ParseDuration(v.GetString("judge.deadline"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid judge deadline: %w", err)
	}

	pollInterval, err := time.ParseDuration(v.GetString("judge.poll_interval"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid judge poll interval: %w", err)
	}

	cacheTTL, err := time.ParseDuration(v.GetString("status.cache_ttl"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid status cache ttl: %w", err)
	}

	cfg := Config{
		AppName:           v.GetString("app.name"),
		AppEnv:            v.GetString("app.env"),
		AppPort:           v.GetString("app.port"),
		DatabaseURL:       v.GetString("database.url"),
		RedisURL:          v.GetString("redis.url"),
		NATSURL:           v.GetString("nats.url"),
		JWTSecret:         v.GetString("jwt.secret"),
		TokenTTL:          tokenTTL,
		AdminName:         v.GetString("admin.name"),
		JudgeBaseURL:      v.GetString("judge.base_url"),
		JudgeUsername:     v.GetString("judge.username"),
		JudgePassword:     v.GetString("judge.password"),
		JudgeTimeout:      judgeTimeout,
		JudgeDeadline:     judgeDeadline,
		JudgePollInterval: pollInterval,
		JudgeMaxAttempts:  v.GetInt("judge.max_attempts"),
		JudgeLanguage:     v.GetString("judge.language"),
		StatusCacheTTL:    cacheTTL,
		SubmitRateLimit:   v.GetInt("submit.rate_limit"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("jwt secret must be provided")
	}

	if cfg.JudgeMaxAttempts <= 0 {
		cfg.JudgeMaxAttempts = 60
	}

	if cfg.SubmitRateLimit <= 0 {
		cfg.SubmitRateLimit = 30
	}

	return cfg, nil
}
