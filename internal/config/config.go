// Package config loads command line configuration with viper.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/tordrt/docstore/internal/logger"
	"github.com/tordrt/docstore/internal/schema"
)

// EnvPrefix prefixes environment overrides, e.g. DOCSTORE_DATABASE or
// DOCSTORE_LOG_LEVEL.
const EnvPrefix = "DOCSTORE"

// Config is the command line configuration
type Config struct {
	Database string              `mapstructure:"database"`
	Log      logger.Config       `mapstructure:"log"`
	Tables   []schema.Definition `mapstructure:"tables"`
}

// Load reads the config file at path (yaml, json or toml) and applies
// environment overrides. An empty path looks for an optional docstore.* file
// in the working directory.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("database", "docstore.db")
	v.SetDefault("log.level", "WARN")
	v.SetDefault("log.format", "text")
	v.SetDefault("log.add_source", false)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("docstore")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Table returns the definition named name
func (c *Config) Table(name string) (schema.Definition, bool) {
	for _, def := range c.Tables {
		if def.TableName == name {
			return def, true
		}
	}
	return schema.Definition{}, false
}
