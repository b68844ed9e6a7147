// Package config loads the testdeck configuration: where the database
// lives and which API tokens the MCP server accepts.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	configDirName  = ".testdeck"
	configFileName = "config"
	configFileType = "yaml"
)

// ErrUnknownToken reports an MCP token with no entry in the token table.
var ErrUnknownToken = errors.New("unknown token")

// Config is the flat testdeck configuration.
type Config struct {
	// DBPath overrides the default database location when set.
	DBPath string `mapstructure:"db_path"`

	// Tokens is the static token table for the MCP server. Each token
	// resolves to one organization and user identity.
	Tokens []Token `mapstructure:"tokens"`
}

// Token maps one bearer token to a caller identity.
type Token struct {
	Token          string `mapstructure:"token"`
	OrganizationID int64  `mapstructure:"organization_id"`
	UserID         string `mapstructure:"user_id"`
	ClientID       string `mapstructure:"client_id"`
	ReadOnly       bool   `mapstructure:"read_only"`
}

// defaultConfigYAML is written on first run so the file's shape is
// discoverable without documentation.
const defaultConfigYAML = `# testdeck configuration

# Database location (optional; defaults to ~/.testdeck/testdeck.db)
# db_path:

# MCP token table. Each token resolves to one organization and user.
# tokens:
#   - token: local-dev
#     organization_id: 1
#     user_id: dev
#     client_id: local
#     read_only: false
`

// DefaultDir returns the per-user config directory, ~/.testdeck.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// Load reads config.yaml from dir, creating the directory and a commented
// default file on first run. A missing or empty file yields the zero
// config, which is valid.
func Load(dir string) (*Config, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := ensureDefaultFile(dir); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(dir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}

// ensureDefaultFile writes the commented default config.yaml if absent.
func ensureDefaultFile(dir string) error {
	path := filepath.Join(dir, configFileName+"."+configFileType)
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat config file: %w", err)
	}
	if err := os.WriteFile(path, []byte(defaultConfigYAML), 0o644); err != nil {
		return fmt.Errorf("failed to write default config: %w", err)
	}
	return nil
}

// ResolveToken looks a bearer token up in the token table.
func (c *Config) ResolveToken(token string) (*Token, error) {
	for i := range c.Tokens {
		if c.Tokens[i].Token == token {
			return &c.Tokens[i], nil
		}
	}
	return nil, ErrUnknownToken
}
