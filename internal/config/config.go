package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	devJWTSecret = "portal-development-secret"
)

type Config struct {
	Env        string           `mapstructure:"env"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        LogConfig        `mapstructure:"log"`
	Auth       AuthConfig       `mapstructure:"auth"`
	Transcribe TranscribeConfig `mapstructure:"transcribe"`
	Kafka      KafkaConfig      `mapstructure:"kafka"`
	Reminder   ReminderConfig   `mapstructure:"reminder"`
}

type HTTPConfig struct {
	Port            string        `mapstructure:"port"`
	AllowOrigins    []string      `mapstructure:"allow_origins"`
	WebDir          string        `mapstructure:"web_dir"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type AuthConfig struct {
	TokenTTL time.Duration `mapstructure:"token_ttl"`
	Secret   string        `mapstructure:"-"`
}

type TranscribeConfig struct {
	URL     string        `mapstructure:"url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
	APIKey  string        `mapstructure:"-"`
}

type KafkaConfig struct {
	Host  string `mapstructure:"-"`
	Topic string `mapstructure:"topic"`
}

type ReminderConfig struct {
	Interval time.Duration `mapstructure:"interval"`
	Window   time.Duration `mapstructure:"window"`
}

// DatabaseConfig is only read by the audit writer.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"-"`
	DBname   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

type AuditConfig struct {
	Log           LogConfig      `mapstructure:"log"`
	Kafka         KafkaConfig    `mapstructure:"kafka"`
	Database      DatabaseConfig `mapstructure:"database"`
	SpoolDir      string         `mapstructure:"spool_dir"`
	FlushInterval time.Duration  `mapstructure:"flush_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", EnvDevelopment)
	v.SetDefault("http.port", ":8080")
	v.SetDefault("http.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("http.web_dir", "./web")
	v.SetDefault("http.shutdown_timeout", "10s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
	v.SetDefault("auth.token_ttl", "12h")
	v.SetDefault("transcribe.url", "https://api.openai.com/v1/audio/transcriptions")
	v.SetDefault("transcribe.model", "whisper-1")
	v.SetDefault("transcribe.timeout", "30s")
	v.SetDefault("kafka.topic", "portal-events")
	v.SetDefault("reminder.interval", "1m")
	v.SetDefault("reminder.window", "3h")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "portal")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("spool_dir", "./temp")
	v.SetDefault("flush_interval", "15s")
}

// LoadDotEnv loads a .env file into the process environment. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file, path = %s: %w", path, err)
	}
	return nil
}

func read(path string) (*viper.Viper, error) {
	v := viper.New()
	setDefaults(v)
	if path == "" {
		return v, nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file, path = %s, err = %s", path, err.Error())
	}
	return v, nil
}

// Init reads the portal config. An empty path yields the defaults.
func Init(path string) (*Config, error) {
	v, err := read(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cfg: %w", err)
	}

	cfg.Auth.Secret = os.Getenv("JWT_SECRET")
	if cfg.Auth.Secret == "" {
		if cfg.Env != EnvDevelopment {
			return nil, fmt.Errorf("failed to read JWT_SECRET env variable")
		}
		cfg.Auth.Secret = devJWTSecret
	}

	cfg.Transcribe.APIKey = os.Getenv("TRANSCRIBE_API_KEY")
	cfg.Kafka.Host = os.Getenv("KAFKA_HOST")

	return &cfg, nil
}

// InitAudit reads the audit writer config. Kafka and Postgres are both
// required there.
func InitAudit(path string) (*AuditConfig, error) {
	v, err := read(path)
	if err != nil {
		return nil, err
	}

	var cfg AuditConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal audit cfg: %w", err)
	}

	cfg.Kafka.Host = os.Getenv("KAFKA_HOST")
	if cfg.Kafka.Host == "" {
		return nil, fmt.Errorf("failed to read KAFKA_HOST env variable")
	}

	cfg.Database.Password = os.Getenv("POSTGRES_PASSWORD")
	if cfg.Database.Password == "" {
		return nil, fmt.Errorf("failed to read POSTGRES_PASSWORD env variable")
	}

	return &cfg, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

func (c DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBname, c.SSLMode)
}
