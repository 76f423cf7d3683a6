package main

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// AppConfig is the process configuration, read from the environment.
type AppConfig struct {
	// RelayURL points at a relay store. Empty selects the in-process
	// memory store, which gives a single-player world.
	RelayURL string `env:"MAP_RELAY_URL"`

	PlayerName  string `env:"MAP_PLAYER_NAME" envDefault:"Anonymous"`
	PlayerHouse string `env:"MAP_PLAYER_HOUSE"`

	// NightOverride forces the hostile period regardless of wall clock.
	NightOverride bool `env:"MAP_NIGHT_OVERRIDE"`

	LogSinks    []string `env:"MAP_LOG_SINKS" envSeparator:"," envDefault:"console"`
	LogJSONPath string   `env:"MAP_LOG_JSON_PATH" envDefault:"events.jsonl"`

	// BotSeed seeds the demo bot's walk, zero draws from the clock.
	BotSeed int64 `env:"MAP_BOT_SEED"`
}

func loadConfig() (AppConfig, error) {
	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return AppConfig{}, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c AppConfig) house() House {
	for _, h := range houses {
		if string(h) == c.PlayerHouse {
			return h
		}
	}
	return HouseGryffindor
}
