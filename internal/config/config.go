// Package config loads the process-wide bot configuration and message
// framing styles from JSON files, with environment overrides.
package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/spf13/viper"
)

// Config holds the global bot settings shared by all sessions unless a
// bootstrap request overrides them.
type Config struct {
	Prefix    string   `mapstructure:"prefix"`
	AdminIDs  []string `mapstructure:"adminUID"`
	CreatorID string   `mapstructure:"botCreatorUID"`
}

// Style holds the framing strings wrapped around user-visible messages.
type Style struct {
	Top    string `mapstructure:"top"`
	Bottom string `mapstructure:"bottom"`
}

// Default values match the shipped config.json / style.json.
func defaults(v *viper.Viper) {
	v.SetDefault("prefix", "!")
	v.SetDefault("adminUID", []string{})
	v.SetDefault("botCreatorUID", "")
}

func styleDefaults(v *viper.Viper) {
	v.SetDefault("top", "━━━━━━━━━━━━━━━━━━")
	v.SetDefault("bottom", "━━━━━━━━⊱⋆⊰━━━━━━━━")
}

// Load reads the bot configuration from path. A missing file yields the
// defaults; a malformed file is an error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	v.SetEnvPrefix("BOT")
	v.AutomaticEnv()
	defaults(v)

	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadStyle reads the presentation record from path, falling back to the
// built-in framing when the file is absent.
func LoadStyle(path string) (Style, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	styleDefaults(v)

	if err := v.ReadInConfig(); err != nil && !isNotExist(err) {
		return Style{}, fmt.Errorf("read style %s: %w", path, err)
	}

	var st Style
	if err := v.Unmarshal(&st); err != nil {
		return Style{}, fmt.Errorf("decode style %s: %w", path, err)
	}
	return st, nil
}

func isNotExist(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	var pathErr *fs.PathError
	return errors.As(err, &notFound) || (errors.As(err, &pathErr) && errors.Is(err, fs.ErrNotExist))
}
