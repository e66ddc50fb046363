package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Server   ServerConfig   `envconfig:"SERVER"`
	Dataset  DatasetConfig  `envconfig:"DATASET"`
	Logger   LoggerConfig   `envconfig:"LOG"`
	Security SecurityConfig `envconfig:"SECURITY"`
	Tracing  TracingConfig  `envconfig:"TRACING"`
}

// Leaf fields use split_words rather than an envconfig tag: envconfig falls
// back to a bare tag name (HOST, PORT, ...) when the prefixed key is unset.
type ServerConfig struct {
	Host            string        `split_words:"true" default:"localhost"`
	Port            int           `split_words:"true" default:"8084" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `split_words:"true" default:"10s" validate:"gt=0"`
	WriteTimeout    time.Duration `split_words:"true" default:"30s" validate:"gt=0"`
	IdleTimeout     time.Duration `split_words:"true" default:"60s" validate:"gt=0"`
	ShutdownTimeout time.Duration `split_words:"true" default:"30s" validate:"gt=0"`
}

type DatasetConfig struct {
	CSVFile     string        `split_words:"true" default:"dashboard/all_df.csv" validate:"required"`
	LoadTimeout time.Duration `split_words:"true" default:"60s" validate:"gt=0"`
	Workers     int           `split_words:"true" default:"8" validate:"min=1,max=256"`
}

type LoggerConfig struct {
	Level  string `split_words:"true" default:"info" validate:"oneof=debug info warn error"`
	Format string `split_words:"true" default:"json" validate:"oneof=json text"`
}

type SecurityConfig struct {
	RateLimitEnabled bool     `split_words:"true" default:"true"`
	RateLimitRPS     int      `split_words:"true" default:"100" validate:"gt=0"`
	RateLimitBurst   int      `split_words:"true" default:"20" validate:"gt=0"`
	AllowedOrigins   []string `split_words:"true" default:"http://localhost:8084"`
	TrustedProxies   []string `split_words:"true" default:"127.0.0.1"`
}

type TracingConfig struct {
	Exporter    string  `split_words:"true" default:"none" validate:"oneof=none stdout"`
	SampleRatio float64 `split_words:"true" default:"1.0" validate:"gte=0,lte=1"`
}

// Load reads an optional .env file, then the environment. Variables
// already set in the environment win over .env entries.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s must satisfy %s=%s, got %v", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
