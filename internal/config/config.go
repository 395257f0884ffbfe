package config

import (
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/aeromarket/drone-service/internal/platform/logger"
)

// Config holds all configuration for the service.
type Config struct {
	ServiceName           string        `mapstructure:"SERVICE_NAME"`
	HTTPPort              string        `mapstructure:"HTTP_PORT"`
	MongoURI              string        `mapstructure:"MONGO_URI"`
	MongoDatabase         string        `mapstructure:"MONGO_DATABASE"`
	MongoConnectTimeout   time.Duration `mapstructure:"MONGO_CONNECT_TIMEOUT"`
	RedisAddress          string        `mapstructure:"REDIS_ADDRESS"`
	RedisPassword         string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB               int           `mapstructure:"REDIS_DB"`
	DroneCacheTTL         time.Duration `mapstructure:"DRONE_CACHE_TTL"`
	NATSURL               string        `mapstructure:"NATS_URL"`
	PrometheusMetricsPort string        `mapstructure:"PROMETHEUS_METRICS_PORT"`
	LogLevel              string        `mapstructure:"LOG_LEVEL"`
	LogFormat             string        `mapstructure:"LOG_FORMAT"`
}

// LoadConfig reads configuration from environment variables.
func LoadConfig(appLogger *logger.Logger) (*Config, error) {
	viper.SetDefault("SERVICE_NAME", "drone-service")
	viper.SetDefault("HTTP_PORT", "8080")
	viper.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	viper.SetDefault("MONGO_DATABASE", "drone_marketplace")
	viper.SetDefault("MONGO_CONNECT_TIMEOUT", "10s")
	viper.SetDefault("REDIS_ADDRESS", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("DRONE_CACHE_TTL", "5m")
	viper.SetDefault("NATS_URL", "nats://localhost:4222")
	viper.SetDefault("PROMETHEUS_METRICS_PORT", "9094")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "json")

	viper.AutomaticEnv()

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		appLogger.Error("Failed to unmarshal configuration", zap.Error(err))
		return nil, err
	}

	if cfg.MongoURI == "" {
		appLogger.Fatal("MONGO_URI is not set. This is required.")
	}
	if cfg.MongoDatabase == "" {
		appLogger.Fatal("MONGO_DATABASE is not set. This is required.")
	}

	appLogger.Debug("Configuration loaded",
		zap.String("service_name", cfg.ServiceName),
		zap.String("http_port", cfg.HTTPPort),
		zap.Bool("mongo_uri_present", cfg.MongoURI != ""),
		zap.String("mongo_database", cfg.MongoDatabase),
		zap.String("redis_address", cfg.RedisAddress),
		zap.String("nats_url", cfg.NATSURL),
		zap.String("prometheus_port", cfg.PrometheusMetricsPort),
	)

	return &cfg, nil
}
