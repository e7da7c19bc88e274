// Package config loads configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/nsvirk/ssqapi/pkg/utils/zaplogger"
)

// Config represents the application configuration.
// Fields without a `default` tag are required.
type Config struct {
	APIName          string `env:"SSQ_API_APP_NAME" default:"SSQ Picker API"`
	APIVersion       string `env:"SSQ_API_APP_VERSION" default:"v1.0.0"`
	ServerPort       string `env:"SSQ_API_SERVER_PORT" default:"3007"`
	ServerLogLevel   string `env:"SSQ_API_SERVER_LOG_LEVEL" default:"info"`
	PostgresDsn      string `env:"SSQ_API_PG_DSN"`
	PostgresSchema   string `env:"SSQ_API_PG_SCHEMA" default:"ssq"`
	PostgresLogLevel string `env:"SSQ_API_PG_LOG_LEVEL" default:"warn"`
	RedisHost        string `env:"SSQ_API_REDIS_HOST" default:"localhost"`
	RedisPort        string `env:"SSQ_API_REDIS_PORT" default:"6379"`
	RedisPassword    string `env:"SSQ_API_REDIS_PASSWORD" default:""`
	SessionTTL       string `env:"SSQ_API_SESSION_TTL" default:"24h"`
	CrawlSchedule    string `env:"SSQ_API_CRAWL_SCHEDULE" default:"30 22 * * 0,2,4"`
	CrawlLimit       string `env:"SSQ_API_CRAWL_LIMIT" default:"30"`
}

var (
	SingleLine string = "--------------------------------------------------"
)

var (
	instance *Config
	once     sync.Once
	err      error
)

// Get returns the application configuration
func Get() (*Config, error) {
	once.Do(func() {
		zaplogger.Info(SingleLine)
		zaplogger.Info("Loading Configuration")
		instance, err = Load(os.Getenv)
	})
	return instance, err
}

// Load builds a Config from the given lookup function
func Load(getenv func(string) string) (*Config, error) {
	cfg := &Config{}
	if err := cfg.loadFromEnv(getenv); err != nil {
		return nil, err
	}
	if _, err := time.ParseDuration(cfg.SessionTTL); err != nil {
		return nil, fmt.Errorf("invalid SSQ_API_SESSION_TTL %q: %v", cfg.SessionTTL, err)
	}
	return cfg, nil
}

func (c *Config) loadFromEnv(getenv func(string) string) error {
	t := reflect.TypeOf(*c)
	v := reflect.ValueOf(c).Elem()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		envTag := field.Tag.Get("env")
		if envTag == "" {
			return fmt.Errorf("missing env tag for field %s", field.Name)
		}

		value := getenv(envTag)
		if value == "" {
			def, ok := field.Tag.Lookup("default")
			if !ok {
				return fmt.Errorf("env variable %s is required but not set", envTag)
			}
			value = strings.TrimSpace(def)
		}

		v.Field(i).SetString(value)
	}

	return nil
}

// SessionDuration returns the parsed session lifetime
func (c *Config) SessionDuration() time.Duration {
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil {
		return 24 * time.Hour
	}
	return d
}

// String returns the configuration as a string
func (c *Config) String() string {
	var sb strings.Builder
	sb.WriteString("\n--------------------------------------\n")
	sb.WriteString("Configuration:\n")
	sb.WriteString("--------------------------------------\n")

	t := reflect.TypeOf(*c)
	v := reflect.ValueOf(*c)

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		value := maskSensitiveField(field.Name, v.Field(i).String())
		sb.WriteString(fmt.Sprintf("  %s:  %s\n", field.Name, value))
	}

	sb.WriteString("--------------------------------------\n")

	return sb.String()
}

func maskSensitiveField(fieldName, value string) string {
	sensitiveFields := []string{"token", "dsn", "secret", "password", "url"}

	fieldNameLower := strings.ToLower(fieldName)
	for _, sensitive := range sensitiveFields {
		if strings.Contains(fieldNameLower, sensitive) {
			return maskValue(value)
		}
	}

	return value
}

func maskValue(value string) string {
	if len(value) <= 3 {
		return strings.Repeat("*", 7)
	}
	return value[:3] + strings.Repeat("*", 7)
}
