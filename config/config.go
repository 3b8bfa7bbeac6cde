package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the proxy settings. Limits of zero mean no limit.
type Config struct {
	Listen    string
	HeadLimit int
	BodyLimit int
	Blocklist string
	LogLevel  string
	Timeout   time.Duration
}

func Default() Config {
	return Config{
		Listen:    ":8080",
		HeadLimit: 8 << 10,
		BodyLimit: 10 << 20,
		Blocklist: "blocked",
		LogLevel:  "info",
		Timeout:   30 * time.Second,
	}
}

// Load reads the configuration from the environment, after loading the .env
// file, if any. Variables already set in the environment take precedence.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("error loading .env file: %w", err)
	}

	return FromEnv()
}

// FromEnv reads the configuration from the environment only.
func FromEnv() (cfg Config, err error) {
	cfg = Default()
	cfg.Listen = getenv("H1WIRE_LISTEN", cfg.Listen)
	cfg.Blocklist = getenv("H1WIRE_BLOCKLIST", cfg.Blocklist)
	cfg.LogLevel = getenv("H1WIRE_LOG_LEVEL", cfg.LogLevel)

	if cfg.HeadLimit, err = getenvSize("H1WIRE_HEAD_LIMIT", cfg.HeadLimit); err != nil {
		return Config{}, err
	}

	if cfg.BodyLimit, err = getenvSize("H1WIRE_BODY_LIMIT", cfg.BodyLimit); err != nil {
		return Config{}, err
	}

	if value, found := os.LookupEnv("H1WIRE_TIMEOUT"); found {
		if cfg.Timeout, err = time.ParseDuration(value); err != nil {
			return Config{}, fmt.Errorf("H1WIRE_TIMEOUT: %w", err)
		}
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if value, found := os.LookupEnv(key); found && value != "" {
		return value
	}

	return fallback
}

func getenvSize(key string, fallback int) (int, error) {
	value, found := os.LookupEnv(key)
	if !found || value == "" {
		return fallback, nil
	}

	size, err := strconv.ParseUint(value, 10, strconv.IntSize-1)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}

	return int(size), nil
}
