package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Logger    LoggerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Redis     RedisConfig
	Kafka     KafkaConfig
	SMTP      SMTPConfig
	Telemetry TelemetryConfig
	Timeouts  TimeoutConfig
	Cache     CacheConfig
}

type ServerConfig struct {
	AppEnv   string `env:"APP_ENV" envDefault:"dev"`
	GRPCPort string `env:"GRPC_PORT" envDefault:":8090"`
}

type LoggerConfig struct {
	Level             string `env:"LOGGER_LEVEL" envDefault:"debug"`
	Encoding          string `env:"LOGGER_ENCODING" envDefault:"console"`
	DisableCaller     bool   `env:"LOGGER_DISABLE_CALLER" envDefault:"false"`
	DisableStacktrace bool   `env:"LOGGER_DISABLE_STACKTRACE" envDefault:"true"`
}

type DatabaseConfig struct {
	Driver          string        `env:"DB_DRIVER" envDefault:"pgx"` // pgx or sqlite
	Host            string        `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port            string        `env:"POSTGRES_PORT" envDefault:"5433"`
	User            string        `env:"POSTGRES_USER" envDefault:"omnipos"`
	Password        string        `env:"POSTGRES_PASSWORD" envDefault:"omnipos"`
	DBName          string        `env:"POSTGRES_DB" envDefault:"omnipos_assistant"`
	SSLMode         string        `env:"POSTGRES_SSLMODE" envDefault:"disable"`
	SQLitePath      string        `env:"SQLITE_PATH" envDefault:"assistant.db"`
	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"5"`
	ConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"1m"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

type JWTConfig struct {
	SecretKey string `env:"JWT_SECRET_KEY" envDefault:"your-secret-key-change-this-in-prod"`
	Enabled   bool   `env:"AUTH_ENABLED" envDefault:"false"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type KafkaConfig struct {
	Enabled       bool     `env:"KAFKA_ENABLED" envDefault:"false"`
	Brokers       []string `env:"KAFKA_BROKERS" envSeparator:"," envDefault:"localhost:9092"`
	OrdersTopic   string   `env:"KAFKA_TOPIC_ORDERS" envDefault:"orders.events"`
	CommandsTopic string   `env:"KAFKA_TOPIC_COMMANDS" envDefault:"assistant.commands"`
	GroupID       string   `env:"KAFKA_GROUP_ASSISTANT" envDefault:"assistant"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT" envDefault:"587"`
	Username string `env:"SMTP_USERNAME"`
	Password string `env:"SMTP_PASSWORD"`
	From     string `env:"SMTP_FROM" envDefault:"reports@omnipos.local"`
}

type TelemetryConfig struct {
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"omnipos-assistant-service"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

type TimeoutConfig struct {
	Command time.Duration `env:"COMMAND_TIMEOUT" envDefault:"30s"`
	Storage time.Duration `env:"STORAGE_TIMEOUT" envDefault:"5s"`
	Render  time.Duration `env:"RENDER_TIMEOUT" envDefault:"10s"`
	Mail    time.Duration `env:"MAIL_TIMEOUT" envDefault:"15s"`
}

type CacheConfig struct {
	Backend string        `env:"ANALYSIS_CACHE_BACKEND" envDefault:"memory"` // memory or redis
	TTL     time.Duration `env:"ANALYSIS_CACHE_TTL" envDefault:"1h"`
}

func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.AppEnv == "dev"
}

// LoadEnv reads an optional .env file and then the process environment.
func LoadEnv() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
