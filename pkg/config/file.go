package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/nodewee/ocr-skill/pkg/constants"
	"github.com/nodewee/ocr-skill/pkg/utils"
)

const ConfigFileName = "config.yaml"

// fileKeys maps config file keys to the fields they control
var fileKeys = map[string]func(c *Config) *string{
	"ollama_base_url":  func(c *Config) *string { return &c.OllamaBaseURL },
	"ollama_model":     func(c *Config) *string { return &c.OllamaModel },
	"pdftoppm_path":    func(c *Config) *string { return &c.PdftoppmPath },
	"tessdata_prefix":  func(c *Config) *string { return &c.TessdataPrefix },
	"model_source_url": func(c *Config) *string { return &c.ModelSourceURL },
	"language":         func(c *Config) *string { return &c.Language },
}

// GetConfigDir returns the user configuration directory (~/.ocr-skill)
func GetConfigDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", utils.WrapError(err, utils.ErrorTypeConfig, "failed to get user home directory")
	}
	return filepath.Join(homeDir, constants.AppDirName), nil
}

// GetConfigFilePath returns the full path to the configuration file
func GetConfigFilePath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, ConfigFileName), nil
}

// LoadConfigFile reads path on top of the defaults. A missing file yields the defaults.
func LoadConfigFile(path string) (*Config, error) {
	cfg := NewConfig()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, utils.WrapError(err, utils.ErrorTypeConfig, "failed to read config file")
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, utils.WrapError(errors.Wrapf(err, "parse %s", path), utils.ErrorTypeConfig, "failed to parse config file")
	}

	return cfg, nil
}

// SaveConfigFile writes the persisted fields of cfg to path
func SaveConfigFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), constants.DefaultDirPermission); err != nil {
		return utils.WrapError(err, utils.ErrorTypeConfig, "failed to create config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return utils.WrapError(err, utils.ErrorTypeConfig, "failed to marshal config")
	}

	if err := os.WriteFile(path, data, constants.DefaultFilePermission); err != nil {
		return utils.WrapError(err, utils.ErrorTypeConfig, "failed to write config file")
	}

	return nil
}

// GetConfigValue gets a config file value by key
func GetConfigValue(path, key string) (string, error) {
	field, ok := fileKeys[key]
	if !ok {
		return "", unknownKey(key)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		return "", err
	}
	return *field(cfg), nil
}

// SetConfigValue sets a config file value by key and saves the file
func SetConfigValue(path, key, value string) error {
	field, ok := fileKeys[key]
	if !ok {
		return unknownKey(key)
	}

	cfg, err := LoadConfigFile(path)
	if err != nil {
		return err
	}

	*field(cfg) = value
	if err := cfg.Validate(); err != nil {
		return err
	}

	return SaveConfigFile(path, cfg)
}

// ListConfigKeys returns all available configuration keys, sorted
func ListConfigKeys() []string {
	keys := make([]string, 0, len(fileKeys))
	for key := range fileKeys {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func unknownKey(key string) error {
	return utils.NewConfigError(fmt.Sprintf("unknown config key: %s", key), nil)
}
