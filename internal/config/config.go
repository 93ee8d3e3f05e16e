package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultRequestTimeout   = "15s"
	defaultSourceTimeout    = "10s"
	defaultReconnectBase    = "1s"
	defaultReconnectMax     = "32s"
	defaultReconnectRetries = "5"
	defaultListenAddr       = ":8090"
)

type Config struct {
	APIBase string // portal REST root, e.g. https://portal.example.com/api
	WSBase  string // portal push root, e.g. wss://portal.example.com/ws
	Token   string // session bearer token

	RequestTimeout   time.Duration // per REST round-trip
	SourceTimeout    time.Duration // per bootstrap source
	ReconnectBase    time.Duration
	ReconnectMax     time.Duration
	ReconnectRetries int
	ListenAddr       string // local status surface
}

func Load() (*Config, error) {
	cfg := &Config{
		APIBase:    strings.TrimSpace(os.Getenv("EDUBOARD_API_BASE")),
		WSBase:     strings.TrimSpace(os.Getenv("EDUBOARD_WS_BASE")),
		Token:      strings.TrimSpace(os.Getenv("EDUBOARD_TOKEN")),
		ListenAddr: strings.TrimSpace(getEnv("EDUBOARD_LISTEN_ADDR", defaultListenAddr)),
	}

	var err error
	cfg.RequestTimeout, err = parseDurationEnv("EDUBOARD_REQUEST_TIMEOUT", defaultRequestTimeout)
	if err != nil {
		return nil, err
	}
	cfg.SourceTimeout, err = parseDurationEnv("EDUBOARD_SOURCE_TIMEOUT", defaultSourceTimeout)
	if err != nil {
		return nil, err
	}
	cfg.ReconnectBase, err = parseDurationEnv("EDUBOARD_RECONNECT_BASE", defaultReconnectBase)
	if err != nil {
		return nil, err
	}
	cfg.ReconnectMax, err = parseDurationEnv("EDUBOARD_RECONNECT_MAX", defaultReconnectMax)
	if err != nil {
		return nil, err
	}
	cfg.ReconnectRetries, err = parseIntEnv("EDUBOARD_RECONNECT_RETRIES", defaultReconnectRetries)
	if err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateConfig(cfg *Config) error {
	if cfg.APIBase == "" {
		return fmt.Errorf("EDUBOARD_API_BASE must be set")
	}
	if cfg.WSBase == "" {
		return fmt.Errorf("EDUBOARD_WS_BASE must be set")
	}
	if cfg.Token == "" {
		return fmt.Errorf("EDUBOARD_TOKEN must be set")
	}
	if cfg.RequestTimeout <= 0 {
		return fmt.Errorf("EDUBOARD_REQUEST_TIMEOUT must be > 0")
	}
	if cfg.SourceTimeout <= 0 {
		return fmt.Errorf("EDUBOARD_SOURCE_TIMEOUT must be > 0")
	}
	if cfg.ReconnectBase <= 0 || cfg.ReconnectMax < cfg.ReconnectBase {
		return fmt.Errorf("reconnect delays must satisfy 0 < base <= max")
	}
	if cfg.ReconnectRetries <= 0 {
		return fmt.Errorf("EDUBOARD_RECONNECT_RETRIES must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseDurationEnv(key, fallback string) (time.Duration, error) {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q", key, raw)
	}
	return d, nil
}

func parseIntEnv(key, fallback string) (int, error) {
	raw := getEnv(key, fallback)
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q", key, raw)
	}
	return n, nil
}
