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
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	AdminToken        string `mapstructure:"ADMIN_TOKEN"`

	// Redis configuration.
	RedisAddr       string `mapstructure:"REDIS_ADDR"`
	RedisPassword   string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB    int    `mapstructure:"REDIS_CACHE_DB"`
	RedisAuthDB     int    `mapstructure:"REDIS_AUTH_DB"`
	RedisSOSQueueDB int    `mapstructure:"REDIS_SOS_QUEUE_DB"`

	// Cloudinary configuration (avatar storage).
	CloudinaryURL string `mapstructure:"CLOUDINARY_URL"`

	// SOS coordination tuning.
	SOSEscalationDelayMin int     `mapstructure:"SOS_ESCALATION_DELAY_MIN"`
	DefaultLatitude       float64 `mapstructure:"DEFAULT_LATITUDE"`
	DefaultLongitude      float64 `mapstructure:"DEFAULT_LONGITUDE"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("ADMIN_TOKEN", "")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_AUTH_DB", 1)
	viper.SetDefault("REDIS_SOS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("CLOUDINARY_URL", "")
	viper.SetDefault("SOS_ESCALATION_DELAY_MIN", 3)
	// Fallback coordinate for travelers whose device cannot be located.
	viper.SetDefault("DEFAULT_LATITUDE", 21.0285)
	viper.SetDefault("DEFAULT_LONGITUDE", 105.8542)

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

// SOSEscalationDelay returns how long an emergency may stay unassigned
// before available supporters are pinged again.
func SOSEscalationDelay() time.Duration {
	return time.Duration(AppConfig.SOSEscalationDelayMin) * time.Minute
}
