package config

import (
	"log"
	"strings"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config of the demo server
type Config struct {
	RunAddr       string        `env:"SERVER_ADDRESS" envDefault:":8080" validate:"hostname_port"`
	DatabaseDSN   string        `env:"DATABASE_DSN" envDefault:"file:bunadmin.db?cache=shared" validate:"required"`
	RedisAddr     string        `env:"REDIS_ADDR"`
	LogLevel      string        `env:"LOG_LEVEL" envDefault:"info" validate:"loglevel"`
	LogFile       string        `env:"LOG_FILE"`
	SecretKey     string        `env:"ADMIN_SECRET_KEY" validate:"omitempty,min=16"`
	TokenTTL      time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"12h"`
	AdminTitle    string        `env:"ADMIN_TITLE" envDefault:"bunadmin"`
	TemplatesDir  string        `env:"ADMIN_TEMPLATES_DIR"`
	Debug         bool          `env:"ADMIN_DEBUG"`
	ShutdownGrace time.Duration `env:"SHUTDOWN_GRACE" envDefault:"5s"`
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	allowed := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	return allowed[strings.ToLower(fieldLevel.Field().String())]
}

func (c Config) validate() error {
	validate := validator.New()
	if err := validate.RegisterValidation("loglevel", validateLogLevel); err != nil {
		return err
	}
	return validate.Struct(c)
}

// InitOption customizes Load
type InitOption func(*initOptions)

type initOptions struct {
	envFiles   []string
	skipDotenv bool
}

// WithEnvFiles loads the given files instead of .env
func WithEnvFiles(files ...string) InitOption {
	return func(o *initOptions) {
		o.envFiles = files
	}
}

// WithoutDotenv skips .env files, only the process environment is read
func WithoutDotenv() InitOption {
	return func(o *initOptions) {
		o.skipDotenv = true
	}
}

// Load reads .env files, the environment and validates the result
func Load(opts ...InitOption) (Config, error) {
	options := &initOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if !options.skipDotenv {
		if err := godotenv.Load(options.envFiles...); err != nil {
			log.Printf("Unable to load .env file: %v", err)
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}

	return cfg, cfg.validate()
}
