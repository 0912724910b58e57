package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Booking engine policy.
	Timezone                  string `mapstructure:"TIMEZONE"`
	SlotGranularityMinutes    int    `mapstructure:"SLOT_GRANULARITY_MINUTES"`
	BookingStepMinutes        int    `mapstructure:"BOOKING_STEP_MINUTES"`
	BookingLeadMinutes        int    `mapstructure:"BOOKING_LEAD_MINUTES"`
	CancellationCutoffMinutes int    `mapstructure:"CANCELLATION_CUTOFF_MINUTES"`
	HoldTTLSeconds            int    `mapstructure:"HOLD_TTL_SECONDS"`
	HoldSweepSeconds          int    `mapstructure:"HOLD_SWEEP_SECONDS"`
	CompletionSweepMinutes    int    `mapstructure:"COMPLETION_SWEEP_MINUTES"`
	AvailabilityCacheSeconds  int    `mapstructure:"AVAILABILITY_CACHE_SECONDS"`
	LedgerTimeoutSeconds      int    `mapstructure:"LEDGER_TIMEOUT_SECONDS"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AutomaticEnv()

	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "courtside")

	viper.SetDefault("TIMEZONE", "UTC")
	viper.SetDefault("SLOT_GRANULARITY_MINUTES", 60)
	viper.SetDefault("BOOKING_STEP_MINUTES", 30)
	viper.SetDefault("BOOKING_LEAD_MINUTES", 0)
	viper.SetDefault("CANCELLATION_CUTOFF_MINUTES", 120)
	viper.SetDefault("HOLD_TTL_SECONDS", 10)
	viper.SetDefault("HOLD_SWEEP_SECONDS", 2)
	viper.SetDefault("COMPLETION_SWEEP_MINUTES", 5)
	viper.SetDefault("AVAILABILITY_CACHE_SECONDS", 5)
	viper.SetDefault("LEDGER_TIMEOUT_SECONDS", 5)

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}

// Location resolves TIMEZONE, falling back to UTC when it is unknown.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		log.Printf("Unknown TIMEZONE %q, using UTC", c.Timezone)
		return time.UTC
	}
	return loc
}

func (c Config) HoldTTL() time.Duration {
	return time.Duration(c.HoldTTLSeconds) * time.Second
}

func (c Config) HoldSweepInterval() time.Duration {
	return time.Duration(c.HoldSweepSeconds) * time.Second
}

func (c Config) CompletionSweepInterval() time.Duration {
	return time.Duration(c.CompletionSweepMinutes) * time.Minute
}

func (c Config) AvailabilityCacheTTL() time.Duration {
	return time.Duration(c.AvailabilityCacheSeconds) * time.Second
}

func (c Config) LedgerTimeout() time.Duration {
	return time.Duration(c.LedgerTimeoutSeconds) * time.Second
}

func (c Config) CancellationCutoff() time.Duration {
	return time.Duration(c.CancellationCutoffMinutes) * time.Minute
}

func (c Config) BookingLead() time.Duration {
	return time.Duration(c.BookingLeadMinutes) * time.Minute
}
