package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// The service runs in a container with the DB connection variables and queue URLs set
// as environment variables. Locally a .env file and an optional breaktime.yaml work too.

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	DBHost          string `mapstructure:"DB_HOST"`
	DBPort          string `mapstructure:"DB_PORT"`
	DBUser          string `mapstructure:"DB_USER"`
	DBPassword      string `mapstructure:"DB_PASSWORD"`
	DBAdminUser     string `mapstructure:"DB_ADMIN_USER"`
	DBAdminPassword string `mapstructure:"DB_ADMIN_PASSWORD"`
	DBName          string `mapstructure:"DB_NAME"`
	StoreDriver     string `mapstructure:"STORE_DRIVER"`
	SQLitePath      string `mapstructure:"SQLITE_PATH"`

	ServerPort string `mapstructure:"SERVER_PORT"`
	Timezone   string `mapstructure:"TIMEZONE"`
	AdminToken string `mapstructure:"ADMIN_TOKEN"`

	IsLocalDev     bool   `mapstructure:"LOCAL_DEV"`
	TracingEnabled bool   `mapstructure:"TRACING_ENABLED"`
	OTelEndpoint   string `mapstructure:"OTEL_ENDPOINT"`

	EventsEnabled     bool   `mapstructure:"EVENTS_ENABLED"`
	AWSRegion         string `mapstructure:"AWS_REGION"`
	AWSEndpoint       string `mapstructure:"AWS_ENDPOINT"`
	ExportSQSQueueURL string `mapstructure:"EXPORT_SQS_QUEUE_URL"`
	AlertSQSQueueURL  string `mapstructure:"ALERT_SQS_QUEUE_URL"`
	AlertSender       string `mapstructure:"ALERT_SENDER"`
	AlertRecipient    string `mapstructure:"ALERT_RECIPIENT"`
	SheetsWebhookURL  string `mapstructure:"SHEETS_WEBHOOK_URL"`
}

// LoadConfig reads configuration from .env, breaktime.yaml (or CONFIG_FILE) and
// environment variables, the latter taking precedence.
func LoadConfig() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()
	return Load(os.Getenv("CONFIG_FILE"))
}

// Load reads configuration with path as the config file. An empty path looks for an
// optional breaktime.yaml in the working directory.
func Load(path string) (config Config, err error) {
	v := viper.New()

	v.SetDefault("DB_HOST", "db")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "breaktime_app")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_ADMIN_USER", "")
	v.SetDefault("DB_ADMIN_PASSWORD", "")
	v.SetDefault("DB_NAME", "breaktime_db")
	v.SetDefault("STORE_DRIVER", DriverPostgres)
	v.SetDefault("SQLITE_PATH", "breaktime.db")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("TIMEZONE", "America/Punta_Arenas")
	v.SetDefault("ADMIN_TOKEN", "")
	v.SetDefault("LOCAL_DEV", false)
	v.SetDefault("TRACING_ENABLED", true)
	v.SetDefault("OTEL_ENDPOINT", "jaeger:4317")
	v.SetDefault("EVENTS_ENABLED", true)
	v.SetDefault("AWS_REGION", "us-east-1") // Default region for AWS services
	v.SetDefault("AWS_ENDPOINT", "http://localstack:4566")
	v.SetDefault("EXPORT_SQS_QUEUE_URL", "http://localstack:4566/000000000000/break-export-queue")
	v.SetDefault("ALERT_SQS_QUEUE_URL", "http://localstack:4566/000000000000/break-alert-queue")
	v.SetDefault("ALERT_SENDER", "alertas@breaktime.local")
	v.SetDefault("ALERT_RECIPIENT", "supervisor@breaktime.local")
	v.SetDefault("SHEETS_WEBHOOK_URL", "http://localhost:8081/")

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("breaktime")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return config, fmt.Errorf("read config file: %w", err)
		}
	}

	// Read in environment variables that match the keys.
	v.AutomaticEnv()

	if err = v.Unmarshal(&config); err != nil {
		return config, err
	}
	return config, config.Validate()
}

// Validate checks the settings that cannot be defaulted sensibly.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.StoreDriver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location loads the configured timezone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// HasAdminCredentials reports whether a separate elevated DB login is configured.
func (c Config) HasAdminCredentials() bool {
	return c.DBAdminUser != ""
}
