package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
)

const (
	envPort     = "PORT"
	envLogLevel = "LOG_LEVEL"

	DefaultPort = 8080
)

// Config is everything the process reads from the environment, once at
// startup.
type Config struct {
	Port     int
	LogLevel zerolog.Level
}

func Load() (Config, error) {
	cfg := Config{
		Port:     DefaultPort,
		LogLevel: zerolog.InfoLevel,
	}

	if v := os.Getenv(envPort); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 || p > 65535 {
			return Config{}, fmt.Errorf("invalid %s %q", envPort, v)
		}
		cfg.Port = p
	}

	if v := os.Getenv(envLogLevel); v != "" {
		lvl, err := zerolog.ParseLevel(v)
		if err != nil {
			return Config{}, fmt.Errorf("invalid %s %q: %w", envLogLevel, v, err)
		}
		cfg.LogLevel = lvl
	}

	return cfg, nil
}

// Addr is the listen address, all interfaces.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}
