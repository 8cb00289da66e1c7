package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config captures all process-wide settings. It is constructed once at
// startup and passed by reference; nothing mutates it afterwards.
type Config struct {
	Addr         string
	SharedSecret string
	Upstream     Upstream
}

// Upstream holds the outbound person-search endpoint settings, including
// the account credentials embedded in every SOAP request. Credentials are
// never logged.
type Upstream struct {
	URL        string
	SOAPAction string
	Username   string
	Password   string
	CertFile   string
	KeyFile    string
	Timeout    time.Duration
	MaxRetries int
}

const (
	defaultTimeout    = 20 * time.Second
	defaultMaxRetries = 2
)

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	addr := os.Getenv("TLO_GATEWAY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	timeout := defaultTimeout
	if v := os.Getenv("TLO_TIMEOUT_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			timeout = time.Duration(secs) * time.Second
		}
	}

	retries := defaultMaxRetries
	if v := os.Getenv("TLO_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			retries = n
		}
	}

	return Config{
		Addr:         addr,
		SharedSecret: os.Getenv("TLO_GATEWAY_SHARED_SECRET"),
		Upstream: Upstream{
			URL:        os.Getenv("TLO_URL"),
			SOAPAction: os.Getenv("TLO_SOAP_ACTION"),
			Username:   os.Getenv("TLO_USERNAME"),
			Password:   os.Getenv("TLO_PASSWORD"),
			CertFile:   os.Getenv("TLO_CLIENT_CERT"),
			KeyFile:    os.Getenv("TLO_CLIENT_KEY"),
			Timeout:    timeout,
			MaxRetries: retries,
		},
	}
}

// Validate reports the first missing required setting. Certificate
// readability is checked separately when the transport client loads the
// key pair; both are fatal at startup.
func (c Config) Validate() error {
	switch {
	case c.SharedSecret == "":
		return errors.New("TLO_GATEWAY_SHARED_SECRET is required")
	case c.Upstream.URL == "":
		return errors.New("TLO_URL is required")
	case c.Upstream.Username == "":
		return errors.New("TLO_USERNAME is required")
	case c.Upstream.Password == "":
		return errors.New("TLO_PASSWORD is required")
	case c.Upstream.CertFile == "":
		return errors.New("TLO_CLIENT_CERT is required")
	case c.Upstream.KeyFile == "":
		return errors.New("TLO_CLIENT_KEY is required")
	}
	return nil
}
