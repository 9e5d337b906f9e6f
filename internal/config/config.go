package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Prefix is prepended to every variable name, e.g. ZEN_PORT.
const Prefix = "ZEN"

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            int           `envconfig:"PORT" default:"8765"`
	Env             string        `envconfig:"APP_ENV" default:"development"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
	ReadTimeout     time.Duration `envconfig:"READ_TIMEOUT" default:"30s"`
	APIToken        string        `envconfig:"API_TOKEN"`

	// Storage roots, derived from the home directory when empty
	AppRoot  string `envconfig:"APP_ROOT"`
	DataRoot string `envconfig:"DATA_ROOT"`

	// Redis backs the ephemeral checklist store when set
	RedisURL    string `envconfig:"REDIS_URL"`
	RedisPrefix string `envconfig:"REDIS_PREFIX" default:"zenstudio:"`

	Calendar struct {
		Name     string `envconfig:"NAME" default:"ZenStudio - Content Calendar"`
		Timezone string `envconfig:"TIMEZONE" default:"Europe/Berlin"`
	} `envconfig:"CALENDAR"`

	// S3 compatible export sink
	S3 struct {
		Endpoint  string `envconfig:"ENDPOINT"`
		Bucket    string `envconfig:"BUCKET"`
		AccessKey string `envconfig:"ACCESS_KEY"`
		SecretKey string `envconfig:"SECRET_KEY"`
		Region    string `envconfig:"REGION" default:"auto"`
		Prefix    string `envconfig:"PREFIX" default:"exports"`
	} `envconfig:"S3"`

	// HTTP endpoint receiving exports when no bucket is configured
	Webhook struct {
		URL   string `envconfig:"URL"`
		Token string `envconfig:"TOKEN"`
	} `envconfig:"EXPORT_WEBHOOK"`

	// Logging
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogOutput string `envconfig:"LOG_OUTPUT" default:"stdout"`
	LogPretty bool   `envconfig:"LOG_PRETTY" default:"false"`
}

// Load reads an optional .env file and the environment, fills the derived
// roots and validates the result.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if err := envconfig.Process(Prefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment: %w", err)
	}
	if err := cfg.resolveRoots(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) resolveRoots() error {
	if c.AppRoot != "" && c.DataRoot != "" {
		return nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to resolve home directory: %w", err)
	}
	if c.AppRoot == "" {
		c.AppRoot = filepath.Join(home, "Documents", "ZenStudio")
	}
	if c.DataRoot == "" {
		c.DataRoot = filepath.Join(home, ".local", "share", "zenstudio")
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port %d out of range", c.Port)
	}
	if _, err := time.LoadLocation(c.Calendar.Timezone); err != nil {
		return fmt.Errorf("unknown calendar timezone %q: %w", c.Calendar.Timezone, err)
	}

	s3 := c.S3
	set := 0
	for _, v := range []string{s3.Bucket, s3.AccessKey, s3.SecretKey} {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return errors.New("s3 export sink needs bucket, access key and secret key together")
	}
	if s3.Endpoint != "" && set == 0 {
		return errors.New("s3 endpoint set without bucket and credentials")
	}
	if c.Webhook.Token != "" && c.Webhook.URL == "" {
		return errors.New("export webhook token set without url")
	}
	return nil
}

// UploadEnabled reports whether exports can be uploaded through the S3
// bucket or the webhook.
func (c *Config) UploadEnabled() bool {
	return c.S3.Bucket != "" || c.Webhook.URL != ""
}

// Addr is the listen address of the HTTP API.
func (c *Config) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", c.Port)
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
