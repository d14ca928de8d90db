// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the service settings.
type Config struct {
	Addr        string
	AppEnv      string
	DatabaseURL string

	SessionTTL   time.Duration
	CookieSecure bool
	ForwardAuth  bool

	OIDC OIDC

	LogLevel string
	LogFile  string
}

// OIDC holds single sign-on settings. SSO is enabled when Issuer is set.
type OIDC struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// Enabled reports whether SSO is configured.
func (o OIDC) Enabled() bool { return o.Issuer != "" }

// Load reads an optional .env file from envFile (if non-empty) and then the
// process environment. Variables already set in the environment win.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	ttl, err := durationEnv("SESSION_TTL", 7*24*time.Hour)
	if err != nil {
		return Config{}, err
	}

	cfg := Config{
		Addr:         env("ADDR", ":8080"),
		AppEnv:       env("APP_ENV", "local"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		SessionTTL:   ttl,
		CookieSecure: boolEnv("COOKIE_SECURE", false),
		ForwardAuth:  boolEnv("FORWARD_AUTH", false),
		OIDC: OIDC{
			Issuer:       os.Getenv("OIDC_ISSUER"),
			ClientID:     os.Getenv("OIDC_CLIENT_ID"),
			ClientSecret: os.Getenv("OIDC_CLIENT_SECRET"),
			RedirectURL:  os.Getenv("OIDC_REDIRECT_URL"),
		},
		LogLevel: env("LOG_LEVEL", "info"),
		LogFile:  os.Getenv("LOG_FILE"),
	}

	if cfg.OIDC.Enabled() && (cfg.OIDC.ClientID == "" || cfg.OIDC.RedirectURL == "") {
		return Config{}, errors.New("OIDC_CLIENT_ID and OIDC_REDIRECT_URL are required when OIDC_ISSUER is set")
	}
	return cfg, nil
}

// Production reports whether the service runs in a production environment.
func (c Config) Production() bool {
	switch strings.ToLower(c.AppEnv) {
	case "production", "prod":
		return true
	}
	return false
}

func env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func boolEnv(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%s: invalid duration %q", key, v)
	}
	return d, nil
}
