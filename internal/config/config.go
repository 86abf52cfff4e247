package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	TransportSMTP = "smtp"
	TransportLog  = "log"
)

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"-"`
}

type Config struct {
	DatabaseURI string `yaml:"-"`
	CronSecret  string `yaml:"-"`
	ListenAddr  string `yaml:"listen"`

	// Schedule is a five-field cron expression evaluated in Timezone.
	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone"`

	MailTransport string     `yaml:"mail_transport"`
	SMTP          SMTPConfig `yaml:"smtp"`
	MailFrom      string     `yaml:"mail_from"`
	AppURL        string     `yaml:"app_url"`

	MaxAttempts         int `yaml:"max_attempts"`
	DispatchConcurrency int `yaml:"dispatch_concurrency"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func Default() *Config {
	return &Config{
		ListenAddr:          ":8080",
		Schedule:            "0 8 * * *",
		Timezone:            "UTC",
		MailTransport:       TransportSMTP,
		SMTP:                SMTPConfig{Port: 587},
		MaxAttempts:         3,
		DispatchConcurrency: 1,
		LogLevel:            "info",
		LogFormat:           "text",
	}
}

// Load reads an optional .env, then the YAML file named by
// REMINDER_CONFIG_FILE if set, then the environment. Later sources win.
func Load() (*Config, error) {
	// .env file is optional in production
	_ = godotenv.Load()

	cfg := Default()
	if path := os.Getenv("REMINDER_CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.DatabaseURI = getEnvOrDefault("DATABASE_URI", c.DatabaseURI)
	c.CronSecret = getEnvOrDefault("CRON_SECRET", c.CronSecret)
	c.ListenAddr = getEnvOrDefault("LISTEN_ADDR", c.ListenAddr)
	c.Schedule = getEnvOrDefault("REMINDER_SCHEDULE", c.Schedule)
	c.Timezone = getEnvOrDefault("SCHEDULE_TIMEZONE", c.Timezone)
	c.MailTransport = strings.ToLower(getEnvOrDefault("MAIL_TRANSPORT", c.MailTransport))
	c.SMTP.Host = getEnvOrDefault("SMTP_HOST", c.SMTP.Host)
	c.SMTP.Username = getEnvOrDefault("SMTP_USERNAME", c.SMTP.Username)
	c.SMTP.Password = getEnvOrDefault("SMTP_PASSWORD", c.SMTP.Password)
	c.MailFrom = getEnvOrDefault("MAIL_FROM", c.MailFrom)
	c.AppURL = getEnvOrDefault("APP_URL", c.AppURL)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnvOrDefault("LOG_FORMAT", c.LogFormat)

	var err error
	if c.SMTP.Port, err = getIntOrDefault("SMTP_PORT", c.SMTP.Port); err != nil {
		return err
	}
	if c.MaxAttempts, err = getIntOrDefault("MAX_ATTEMPTS", c.MaxAttempts); err != nil {
		return err
	}
	if c.DispatchConcurrency, err = getIntOrDefault("DISPATCH_CONCURRENCY", c.DispatchConcurrency); err != nil {
		return err
	}
	return nil
}

// Validate checks the settings a run needs. Without a database the
// in-memory store is used, so DATABASE_URI is only required when useDB.
func (c *Config) Validate(useDB bool) error {
	var errs []error
	if useDB && c.DatabaseURI == "" {
		errs = append(errs, errors.New("DATABASE_URI is required"))
	}
	if c.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("MAX_ATTEMPTS must be at least 1, got %d", c.MaxAttempts))
	}
	if c.DispatchConcurrency < 1 {
		errs = append(errs, fmt.Errorf("DISPATCH_CONCURRENCY must be at least 1, got %d", c.DispatchConcurrency))
	}
	if _, err := c.Location(); err != nil {
		errs = append(errs, err)
	}
	switch c.MailTransport {
	case TransportLog:
	case TransportSMTP:
		if c.SMTP.Host == "" {
			errs = append(errs, errors.New("SMTP_HOST is required for the smtp transport"))
		}
		if c.MailFrom == "" {
			errs = append(errs, errors.New("MAIL_FROM is required for the smtp transport"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown MAIL_TRANSPORT %q", c.MailTransport))
	}
	return errors.Join(errs...)
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
