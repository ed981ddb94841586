package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/custdb/internal/flagx"
	"github.com/dmitrijs2005/custdb/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "1s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. Only the keys present in the file are copied into Config.
type JsonConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
	S3RootUser                   string         `json:"s3_root_user"`
	S3RootPassword               string         `json:"s3_root_password"`
	S3Bucket                     string         `json:"s3_bucket"`
	S3Region                     string         `json:"s3_region"`
	S3BaseEndpoint               string         `json:"s3_base_endpoint"`
	SMTPHost                     string         `json:"smtp_host"`
	SMTPPort                     int            `json:"smtp_port"`
	SMTPUser                     string         `json:"smtp_user"`
	SMTPPassword                 string         `json:"smtp_password"`
	SMTPTimeout                  timex.Duration `json:"smtp_timeout"`
	BaseURL                      string         `json:"base_url"`
	LogBackend                   string         `json:"log_backend"`
	LogLevel                     string         `json:"log_level"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path comes from the -c or -config command-line flags. If neither
// is set, no JSON file is loaded. If the file cannot be read or contains
// invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.ConfigPath(os.Args[1:])

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	setString(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setDuration(&config.AccessTokenValidityDuration, c.AccessTokenValidityDuration.Duration)
	setDuration(&config.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration.Duration)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Bucket, c.S3Bucket)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.SMTPHost, c.SMTPHost)
	setInt(&config.SMTPPort, c.SMTPPort)
	setString(&config.SMTPUser, c.SMTPUser)
	setString(&config.SMTPPassword, c.SMTPPassword)
	setDuration(&config.SMTPTimeout, c.SMTPTimeout.Duration)
	setString(&config.BaseURL, c.BaseURL)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogLevel, c.LogLevel)
}
