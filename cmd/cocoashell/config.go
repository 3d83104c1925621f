package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment. Flags override the matching fields.
type Config struct {
	Prompt       string        `env:"COCOA_SHELL_PROMPT" envDefault:"> "`
	History      int           `env:"COCOA_SHELL_HISTORY" envDefault:"100"`
	LogLevel     string        `env:"COCOA_SHELL_LOG_LEVEL" envDefault:"warn"`
	OtelEndpoint string        `env:"COCOA_SHELL_OTEL_ENDPOINT"`
	QuotedTokens bool          `env:"COCOA_SHELL_QUOTED" envDefault:"true"`
	PlayerCache  time.Duration `env:"COCOA_SHELL_PLAYER_CACHE" envDefault:"0s"`
	Lang         string        `env:"LANG" envDefault:"en"`
}

func loadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.History < 1 {
		cfg.History = 1
	}

	return cfg, nil
}

// languageTag turns a POSIX locale such as de_DE.UTF-8 into a BCP 47 tag
func languageTag(posix string) string {
	tag, _, _ := strings.Cut(posix, ".")
	tag, _, _ = strings.Cut(tag, "@")
	if tag == "" || tag == "C" || tag == "POSIX" {
		return "en"
	}

	return strings.ReplaceAll(tag, "_", "-")
}
