package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config top-level struct
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Postgres  PostgresConfig  `yaml:"postgres"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Session   SessionConfig   `yaml:"session"`
	Studio    StudioConfig    `yaml:"studio"`
}

type ServerConfig struct {
	Port     int    `yaml:"port"`
	LogLevel string `yaml:"log_level"`
}

type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

type RateLimitConfig struct {
	RPS   int `yaml:"rps"`
	Burst int `yaml:"burst"`
}

type SessionConfig struct {
	TTL string `yaml:"ttl"`
}

// Duration parses the configured TTL, defaulting to 12h.
func (s SessionConfig) Duration() (time.Duration, error) {
	if s.TTL == "" {
		return 12 * time.Hour, nil
	}
	return time.ParseDuration(s.TTL)
}

// StudioConfig is the static catalog surface of the shop: who works there,
// what they sell and how clients pay. Read once at startup, not editable
// at runtime.
type StudioConfig struct {
	AppID          string   `yaml:"app_id"`
	Timezone       string   `yaml:"timezone"`
	Artists        []string `yaml:"artists"`
	Services       []string `yaml:"services"`
	PaymentMethods []string `yaml:"payment_methods"`
	DefaultService string   `yaml:"default_service"`
	DefaultPayment string   `yaml:"default_payment"`
}

// Location resolves the studio timezone used for the server-wide day total.
func (s StudioConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(s.Timezone)
}

// Load reads yaml file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	// override DSN password from env if present
	if pw := os.Getenv("POSTGRES_PASSWORD"); pw != "" {
		cfg.Postgres.DSN = cfg.Postgres.DSN + " password=" + pw
	}
	if _, err := cfg.Session.Duration(); err != nil {
		return nil, fmt.Errorf("session: bad ttl: %w", err)
	}
	if err := cfg.Studio.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s StudioConfig) validate() error {
	if s.AppID == "" {
		return fmt.Errorf("studio: app_id is required")
	}
	if len(s.Artists) == 0 {
		return fmt.Errorf("studio: artist roster is empty")
	}
	if len(s.Services) == 0 || len(s.PaymentMethods) == 0 {
		return fmt.Errorf("studio: service and payment catalogs are required")
	}
	if s.DefaultService != "" && !contains(s.Services, s.DefaultService) {
		return fmt.Errorf("studio: default_service %q not in service catalog", s.DefaultService)
	}
	if s.DefaultPayment != "" && !contains(s.PaymentMethods, s.DefaultPayment) {
		return fmt.Errorf("studio: default_payment %q not in payment catalog", s.DefaultPayment)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, e := range list {
		if e == v {
			return true
		}
	}
	return false
}

// HasArtist reports whether name is on the configured roster.
func (s StudioConfig) HasArtist(name string) bool { return contains(s.Artists, name) }

// HasService reports whether name is in the service catalog.
func (s StudioConfig) HasService(name string) bool { return contains(s.Services, name) }

// HasPaymentMethod reports whether name is in the payment catalog.
func (s StudioConfig) HasPaymentMethod(name string) bool { return contains(s.PaymentMethods, name) }
