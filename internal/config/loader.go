package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/vovakirdan/tui-cardflip/internal/games/cardflip/engine"
)

//go:embed defaults/cardflip.yaml
var defaultCardFlipYAML []byte

// DefaultCardFlipConfig returns the hardcoded configuration.
// It matches defaults/cardflip.yaml.
func DefaultCardFlipConfig() CardFlipConfig {
	return CardFlipConfig{
		Timing: TimingConfig{
			MatchDelayMS:  300,
			ShakeDelayMS:  400,
			RevertDelayMS: 1200,
			TickUnitMS:    1000,
		},
		Board: BoardConfig{
			Columns:    5,
			CardWidth:  12,
			CardHeight: 4,
		},
		Deck: engine.DefaultSource(),
	}
}

// LoadCardFlip loads Card Flip configuration.
// Search order: customPath -> ~/.cardflip/configs/cardflip.yaml -> ./configs/cardflip.yaml -> embedded default
//
// Only a custom path reports errors; broken files found by search are skipped.
func LoadCardFlip(customPath string) (CardFlipConfig, error) {
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return CardFlipConfig{}, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		cfg, err := parse(data)
		if err != nil {
			return CardFlipConfig{}, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	for _, path := range []string{userConfigPath("cardflip.yaml"), filepath.Join("configs", "cardflip.yaml")} {
		if path == "" {
			continue
		}
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if cfg, err := parse(data); err == nil {
			return cfg, nil
		}
	}

	cfg, err := parse(defaultCardFlipYAML)
	if err != nil {
		return DefaultCardFlipConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// parse decodes YAML on top of the hardcoded defaults, so partial files
// only override what they mention.
func parse(data []byte) (CardFlipConfig, error) {
	cfg := DefaultCardFlipConfig()
	cfg.Deck = engine.Source{}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if len(cfg.Deck.Problems) == 0 && len(cfg.Deck.Images) == 0 {
		cfg.Deck = engine.DefaultSource()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".cardflip", "configs", filename)
}
