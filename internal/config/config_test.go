package config

import (
	"testing"

	"github.com/rs/zerolog"
)

func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("LOG_LEVEL", "")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.Port != DefaultPort {
			t.Fatalf("port=%d, want %d", cfg.Port, DefaultPort)
		}
		if cfg.LogLevel != zerolog.InfoLevel {
			t.Fatalf("level=%v, want info", cfg.LogLevel)
		}
		if cfg.Addr() != ":8080" {
			t.Fatalf("addr=%q, want :8080", cfg.Addr())
		}
	})

	t.Run("port from env", func(t *testing.T) {
		t.Setenv("PORT", "9099")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.Port != 9099 {
			t.Fatalf("port=%d, want 9099", cfg.Port)
		}
	})

	t.Run("rejects junk port", func(t *testing.T) {
		for _, v := range []string{"abc", "-1", "0", "70000"} {
			t.Setenv("PORT", v)
			if _, err := Load(); err == nil {
				t.Fatalf("PORT=%q accepted", v)
			}
		}
	})

	t.Run("log level from env", func(t *testing.T) {
		t.Setenv("PORT", "")
		t.Setenv("LOG_LEVEL", "debug")
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.LogLevel != zerolog.DebugLevel {
			t.Fatalf("level=%v, want debug", cfg.LogLevel)
		}
	})

	t.Run("rejects junk log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "noisy")
		if _, err := Load(); err == nil {
			t.Fatalf("LOG_LEVEL=noisy accepted")
		}
	})
}
