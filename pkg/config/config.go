package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port string `mapstructure:"PORT"`
	Env  string `mapstructure:"ENV"`

	// Logging
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Database, empty disables the match archive
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis, empty disables the snapshot cache
	RedisURL string        `mapstructure:"REDIS_URL"`
	CacheTTL time.Duration `mapstructure:"CACHE_TTL"`

	// League
	LeagueName           string `mapstructure:"LEAGUE_NAME"`
	UserClub             string `mapstructure:"USER_CLUB"`
	SeasonSeed           int64  `mapstructure:"SEASON_SEED"`
	MonthlyCadenceRounds int    `mapstructure:"MONTHLY_CADENCE_ROUNDS"`

	// Projections
	ProjectionRuns    int `mapstructure:"PROJECTION_RUNS"`
	ProjectionWorkers int `mapstructure:"PROJECTION_WORKERS"`
	MaxProjectionRuns int `mapstructure:"MAX_PROJECTION_RUNS"`

	// Background jobs, a cron spec such as "@every 1m"
	AutoAdvanceSchedule string `mapstructure:"AUTO_ADVANCE_SCHEDULE"`

	// Rate limiting
	RateLimitRPS   float64 `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int     `mapstructure:"RATE_LIMIT_BURST"`

	CircuitBreakerThreshold int `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`
}

func LoadConfig() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")

	SetDefaults(v)

	// Read from environment
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// SetDefaults registers every key so AutomaticEnv can see it during Unmarshal
func SetDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("LEAGUE_NAME", "Premier League")
	v.SetDefault("USER_CLUB", "")
	v.SetDefault("SEASON_SEED", 0) // 0 picks a random seed per season
	v.SetDefault("MONTHLY_CADENCE_ROUNDS", 4)
	v.SetDefault("PROJECTION_RUNS", 200)
	v.SetDefault("PROJECTION_WORKERS", 4)
	v.SetDefault("MAX_PROJECTION_RUNS", 5000)
	v.SetDefault("AUTO_ADVANCE_SCHEDULE", "")
	v.SetDefault("RATE_LIMIT_RPS", 10)
	v.SetDefault("RATE_LIMIT_BURST", 20)
	v.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)
}

func (c *Config) Validate() error {
	if c.MonthlyCadenceRounds <= 0 {
		return fmt.Errorf("MONTHLY_CADENCE_ROUNDS must be positive, got %d", c.MonthlyCadenceRounds)
	}
	if c.ProjectionRuns <= 0 || c.MaxProjectionRuns < c.ProjectionRuns {
		return fmt.Errorf("PROJECTION_RUNS must be in [1, MAX_PROJECTION_RUNS], got %d", c.ProjectionRuns)
	}
	if c.RateLimitRPS <= 0 || c.RateLimitBurst <= 0 {
		return fmt.Errorf("rate limit must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
