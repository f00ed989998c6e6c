// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Storage    StorageConfig    `toml:"storage"`
	Reading    ReadingConfig    `toml:"reading"`
	Dictionary DictionaryConfig `toml:"dictionary"`
}

// StorageConfig selects where the vocabulary state is kept.
type StorageConfig struct {
	Backend *string `toml:"backend"`
	Path    *string `toml:"path"`
}

// ReadingConfig maps reading-related settings.
type ReadingConfig struct {
	WordsPerPage *int    `toml:"words-per-page"`
	Lang         *string `toml:"lang"`
	Highlight    *string `toml:"highlight"`
	Width        *int    `toml:"width"`
}

// DictionaryConfig maps definition lookup settings.
type DictionaryConfig struct {
	Endpoint *string `toml:"endpoint"`
	Timeout  *string `toml:"timeout"`
	Workers  *int    `toml:"workers"`
	File     *string `toml:"file"`
	Source   *string `toml:"source"`
	Offline  *bool   `toml:"offline"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return FileConfig{}, fmt.Errorf("unknown config key %q", undecoded[0].String())
	}
	return cfg, nil
}
