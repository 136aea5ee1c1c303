package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/scoring"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Settings is the game-facing configuration file.
type Settings struct {
	Deck     scoring.Deck        `yaml:"deck"`
	Defaults models.GameSettings `yaml:"defaults"`
	Avatars  []string            `yaml:"avatars"`
	Memes    scoring.MemeCatalog `yaml:"memes"`
}

// DefaultSettings is used when no settings file exists.
func DefaultSettings() Settings {
	return Settings{
		Deck:     scoring.DefaultDeck(),
		Defaults: models.DefaultGameSettings(),
		Avatars: []string{
			"https://randomuser.me/api/portraits/men/32.jpg",
			"https://randomuser.me/api/portraits/women/44.jpg",
			"https://randomuser.me/api/portraits/men/22.jpg",
			"https://randomuser.me/api/portraits/women/68.jpg",
			"https://randomuser.me/api/portraits/men/75.jpg",
			"https://randomuser.me/api/portraits/women/90.jpg",
			"https://randomuser.me/api/portraits/men/36.jpg",
			"https://randomuser.me/api/portraits/women/26.jpg",
		},
		Memes: scoring.MemeCatalog{},
	}
}

// LoadSettings decodes the YAML file at path over the defaults. A missing file is not an error.
func LoadSettings(path string) (Settings, error) {
	settings := DefaultSettings()
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Info().Str("path", path).Msg("settings file not found, using defaults")
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("failed to read settings file: %w", err)
	}

	if err := yaml.Unmarshal(data, &settings); err != nil {
		return settings, fmt.Errorf("failed to parse settings: %w", err)
	}
	if len(settings.Deck.Cards) == 0 {
		settings.Deck = scoring.DefaultDeck()
	}
	return settings, nil
}
