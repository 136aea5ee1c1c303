package main

import (
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/planningpoker/go/internal/config"
)

func loadConfig() (*config.Config, config.Settings) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	config.SetupLogging(cfg.LogLevel)

	settings, err := config.LoadSettings(cfg.Settings)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.Settings).Msg("load settings")
	}
	log.Info().
		Int("cards", len(settings.Deck.Cards)).
		Int("avatars", len(settings.Avatars)).
		Int("meme_categories", len(settings.Memes)).
		Msg("settings loaded")
	return cfg, settings
}
