package internal

import (
	"fmt"

	"github.com/hbomb79/Reel/internal/api"
	"github.com/hbomb79/Reel/internal/download"
	"github.com/ilyakaznacheev/cleanenv"
)

// ReelConfig is the struct used to contain the various user config
// supplied by file, or manually inside the code.
type ReelConfig struct {
	Download     download.Config `yaml:"download"`
	Rest         api.RestConfig  `yaml:"api"`
	YtDlpBinPath string          `yaml:"ytdlp_location" env:"FORMAT_YTDLP_BINARY_PATH" env-default:"yt-dlp"`
}

// LoadFromFile loads a configuration file formatted in YAML in to a
// ReelConfig struct, with environment variables taking precedence over
// file values.
func (config *ReelConfig) LoadFromFile(configPath string) error {
	if err := cleanenv.ReadConfig(configPath, config); err != nil {
		return fmt.Errorf("failed to load configuration from %s: %w", configPath, err)
	}

	return nil
}

// LoadFromEnv populates the config from the environment alone, used
// when no config file is present on disk.
func (config *ReelConfig) LoadFromEnv() error {
	if err := cleanenv.ReadEnv(config); err != nil {
		return fmt.Errorf("failed to load configuration from environment: %w", err)
	}

	return nil
}
