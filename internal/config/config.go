package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string          `mapstructure:"env"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Session   SessionConfig   `mapstructure:"session"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Upload    UploadConfig    `mapstructure:"upload"`
	Events    EventsConfig    `mapstructure:"events"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port                  string   `mapstructure:"port"`
	ReadTimeout           int      `mapstructure:"read_timeout_seconds"`
	WriteTimeout          int      `mapstructure:"write_timeout_seconds"`
	IdleTimeout           int      `mapstructure:"idle_timeout_seconds"`
	RequestTimeoutSeconds int      `mapstructure:"request_timeout_seconds"`
	CORSOrigins           []string `mapstructure:"cors_origins"`
	PublicDir             string   `mapstructure:"public_dir"`
}

type DatabaseConfig struct {
	Host                string `mapstructure:"host"`
	Port                string `mapstructure:"port"`
	User                string `mapstructure:"user"`
	Password            string `mapstructure:"password"`
	DBName              string `mapstructure:"name"`
	SSLMode             string `mapstructure:"ssl_mode"`
	MaxOpenConns        int    `mapstructure:"max_open_conns"`
	MaxIdleConns        int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime     int    `mapstructure:"conn_max_lifetime_seconds"`
	ConnMaxIdleTime     int    `mapstructure:"conn_max_idle_time_seconds"`
	QueryTimeoutSeconds int    `mapstructure:"query_timeout_seconds"`
}

// QueryTimeout is the upper bound applied to every store operation.
func (c DatabaseConfig) QueryTimeout() time.Duration {
	if c.QueryTimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(c.QueryTimeoutSeconds) * time.Second
}

type SessionConfig struct {
	Store      string `mapstructure:"store"`
	Secret     string `mapstructure:"secret"`
	TTLHours   int    `mapstructure:"ttl_hours"`
	CookieName string `mapstructure:"cookie_name"`
	Secure     bool   `mapstructure:"secure"`
}

func (c SessionConfig) TTL() time.Duration {
	if c.TTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.TTLHours) * time.Hour
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type UploadConfig struct {
	Dir          string `mapstructure:"dir"`
	PublicPrefix string `mapstructure:"public_prefix"`
	MaxBytes     int64  `mapstructure:"max_bytes"`
}

type EventsConfig struct {
	Driver string      `mapstructure:"driver"`
	NATS   NATSConfig  `mapstructure:"nats"`
	Kafka  KafkaConfig `mapstructure:"kafka"`
}

type NATSConfig struct {
	URL           string `mapstructure:"url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type TelemetryConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
}

type LogConfig struct {
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
}

func Load() (*Config, error) {
	// Get environment from ENV, default to "local"
	env := os.Getenv("ENV")
	if env == "" {
		env = "local"
	}

	v := viper.New()
	v.SetConfigName(fmt.Sprintf("config.%s", env))
	v.SetConfigType("yaml")
	v.AddConfigPath("/configs")   // container mount
	v.AddConfigPath("./configs")  // repo root
	v.AddConfigPath("../configs") // IDE from cmd/
	v.AddConfigPath("../../configs")

	setDefaults(v)

	// Config file is optional - continue with ENV variables
	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("No config file found (will use ENV variables): %v\n", err)
	}

	// Environment variables take precedence over the config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("session.secret", "SESSION_SECRET")
	v.BindEnv("redis.addr", "REDIS_ADDR")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("server.port", "PORT")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Env == "" {
		cfg.Env = env
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "3000")
	v.SetDefault("server.read_timeout_seconds", 15)
	v.SetDefault("server.write_timeout_seconds", 30)
	v.SetDefault("server.idle_timeout_seconds", 60)
	v.SetDefault("server.request_timeout_seconds", 30)
	v.SetDefault("server.public_dir", "public")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "ie_john_f_kennedy")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.query_timeout_seconds", 5)

	v.SetDefault("session.store", "memory")
	v.SetDefault("session.ttl_hours", 24)
	v.SetDefault("session.cookie_name", "sid")

	v.SetDefault("upload.dir", "public/uploads")
	v.SetDefault("upload.public_prefix", "/uploads")
	v.SetDefault("upload.max_bytes", 5*1024*1024)

	v.SetDefault("events.driver", "none")
	v.SetDefault("events.nats.subject_prefix", "academico")
	v.SetDefault("events.kafka.topic", "academico.events")

	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")

	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 28)
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	var errs []error

	if c.Session.Secret == "" {
		errs = append(errs, errors.New("session.secret is required"))
	}

	switch c.Session.Store {
	case "memory":
	case "redis":
		if c.Redis.Addr == "" {
			errs = append(errs, errors.New("redis.addr is required when session.store is redis"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown session.store %q", c.Session.Store))
	}

	switch c.Events.Driver {
	case "", "none":
	case "nats":
		if c.Events.NATS.URL == "" {
			errs = append(errs, errors.New("events.nats.url is required when events.driver is nats"))
		}
	case "kafka":
		if len(c.Events.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("events.kafka.brokers is required when events.driver is kafka"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown events.driver %q", c.Events.Driver))
	}

	if c.Upload.MaxBytes <= 0 {
		errs = append(errs, errors.New("upload.max_bytes must be positive"))
	}

	return errors.Join(errs...)
}
