package config

import (
	"flag"
	"io"
	"os"
	"time"

	"github.com/dmitrijs2005/custdb/internal/flagx"
)

// parseFlags overlays Config fields given on the command line. Only the
// flags defined here are read from os.Args; anything else is left for other
// parsers. A malformed value panics.
//
//	-a            HTTP bind address (e.g. ":8000")
//	-d            PostgreSQL DSN
//	-s            JWT HMAC secret key
//	-t, -r        access / refresh token validity, minutes
//	-u, -p        S3 root user / password
//	-b, -g, -e    S3 bucket / region / base endpoint
//	-m            public base URL used in verification links
//	-l            log backend, slog or zap
//	-log-level    debug, info, warn or error
//	-smtp-host    SMTP relay host
//	-smtp-port    SMTP relay port
//	-smtp-timeout SMTP dial-and-send timeout (Go duration)
func parseFlags(config *Config) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrHTTP, "a", config.EndpointAddrHTTP, "address and port to run server")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access token validity (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh token validity (in minutes)")

	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 root user")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 root password")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 export bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.BaseURL, "m", config.BaseURL, "public base URL for verification links")
	fs.StringVar(&config.LogBackend, "l", config.LogBackend, "log backend (slog|zap)")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")
	fs.StringVar(&config.SMTPHost, "smtp-host", config.SMTPHost, "SMTP relay host")
	fs.IntVar(&config.SMTPPort, "smtp-port", config.SMTPPort, "SMTP relay port")
	fs.DurationVar(&config.SMTPTimeout, "smtp-timeout", config.SMTPTimeout, "SMTP timeout")

	if err := flagx.ParseOwn(fs, os.Args[1:]); err != nil {
		panic(err)
	}

	// -t and -r only override when given, so sub-minute values from the
	// earlier layers survive.
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "t":
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		case "r":
			config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
		}
	})
}
