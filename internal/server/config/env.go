package config

import (
	"errors"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// EnvConfig mirrors Config for environment variables. Values are read with
// cleanenv, after an optional .env file in the working directory has been
// loaded by godotenv. Variables that are unset leave Config untouched.
type EnvConfig struct {
	EndpointAddrHTTP             string        `env:"HTTP_ADDR"`
	DatabaseDSN                  string        `env:"DATABASE_DSN"`
	SecretKey                    string        `env:"SECRET_KEY"`
	AccessTokenValidityDuration  time.Duration `env:"ACCESS_TOKEN_TTL"`
	RefreshTokenValidityDuration time.Duration `env:"REFRESH_TOKEN_TTL"`
	S3RootUser                   string        `env:"S3_ROOT_USER"`
	S3RootPassword               string        `env:"S3_ROOT_PASSWORD"`
	S3Bucket                     string        `env:"S3_BUCKET"`
	S3Region                     string        `env:"S3_REGION"`
	S3BaseEndpoint               string        `env:"S3_BASE_ENDPOINT"`
	SMTPHost                     string        `env:"SMTP_HOST"`
	SMTPPort                     int           `env:"SMTP_PORT"`
	SMTPUser                     string        `env:"SMTP_USER"`
	SMTPPassword                 string        `env:"SMTP_PASSWORD"`
	SMTPTimeout                  time.Duration `env:"SMTP_TIMEOUT"`
	BaseURL                      string        `env:"BASE_URL"`
	LogBackend                   string        `env:"LOG_BACKEND"`
	LogLevel                     string        `env:"LOG_LEVEL"`
}

// loadDotEnv is a seam for tests; it loads ".env" without overriding
// variables that are already set.
var loadDotEnv = func() error {
	return godotenv.Load()
}

// parseEnv overlays environment variables onto config. A missing .env file is
// not an error; a malformed one, or a variable that cannot be parsed, panics
// in the same way the JSON overlay does.
func parseEnv(config *Config) {
	if err := loadDotEnv(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}

	c := &EnvConfig{}
	if err := cleanenv.ReadEnv(c); err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setDuration(&config.SMTPTimeout, c.SMTPTimeout)
	setString(&config.BaseURL, c.BaseURL)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogLevel, c.LogLevel)
}
