package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/nodewee/ocr-skill/pkg/constants"
)

// Default values
const (
	DefaultLogLevel      = "info"
	DefaultEnableVerbose = false
	DefaultPdftoppmPath  = "pdftoppm"
)

// Environment variables read by LoadConfigWithEnvOverrides
const (
	EnvOllamaBaseURL           = "OLLAMA_BASE_URL"
	EnvOllamaModel             = "OLLAMA_OCR_MODEL"
	EnvDisableModelSourceCheck = "OCR_DISABLE_MODEL_SOURCE_CHECK"
	EnvPdftoppmPath            = "OCR_PDFTOPPM_PATH"
	EnvTessdataPrefix          = "TESSDATA_PREFIX"
	EnvTimeoutSeconds          = "OCR_TIMEOUT_SECONDS"
	EnvFastTimeoutSeconds      = "OCR_FAST_TIMEOUT_SECONDS"
	EnvLanguage                = "OCR_LANG"
	EnvLogLevel                = "OCR_LOG_LEVEL"
	EnvVerbose                 = "OCR_VERBOSE"
)

// Config holds application configuration. It is built once in cmd and
// passed down explicitly; nothing below cmd reads the environment.
type Config struct {
	// Persisted in the config file
	OllamaBaseURL  string `yaml:"ollama_base_url"`
	OllamaModel    string `yaml:"ollama_model"`
	PdftoppmPath   string `yaml:"pdftoppm_path"`
	TessdataPrefix string `yaml:"tessdata_prefix"`
	ModelSourceURL string `yaml:"model_source_url"`
	Language       string `yaml:"language"`

	// Runtime settings (not persisted to file)
	DisableModelSourceCheck bool          `yaml:"-"`
	RasterDPI               int           `yaml:"-"`
	MaxImageDimension       int           `yaml:"-"`
	JPEGQuality             int           `yaml:"-"`
	RequestTimeout          time.Duration `yaml:"-"`
	FastTimeout             time.Duration `yaml:"-"`
	TempDir                 string        `yaml:"-"`
	LogLevel                string        `yaml:"-"`
	EnableVerbose           bool          `yaml:"-"`
}

// NewConfig returns the compiled-in defaults
func NewConfig() *Config {
	return &Config{
		OllamaBaseURL:     constants.DefaultOllamaBaseURL,
		OllamaModel:       constants.DefaultOllamaModel,
		PdftoppmPath:      DefaultPdftoppmPath,
		ModelSourceURL:    constants.DefaultModelSourceURL,
		Language:          constants.DefaultLanguage,
		RasterDPI:         constants.DefaultRasterDPI,
		MaxImageDimension: constants.DefaultMaxImageDimension,
		JPEGQuality:       constants.DefaultJPEGQuality,
		RequestTimeout:    constants.DefaultRequestTimeout,
		FastTimeout:       constants.DefaultFastTimeout,
		LogLevel:          DefaultLogLevel,
		EnableVerbose:     DefaultEnableVerbose,
	}
}

// LoadConfigWithEnvOverrides loads the user config file and applies environment overrides
func LoadConfigWithEnvOverrides() (*Config, error) {
	path, err := GetConfigFilePath()
	if err != nil {
		return nil, err
	}
	return Load(path, os.Getenv)
}

// Load layers defaults, the file at path (if present) and variables from getenv
func Load(path string, getenv func(string) string) (*Config, error) {
	cfg, err := LoadConfigFile(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(getenv)
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables. Malformed numbers are ignored.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if value := getenv(EnvOllamaBaseURL); value != "" {
		c.OllamaBaseURL = value
	}
	if value := getenv(EnvOllamaModel); value != "" {
		c.OllamaModel = value
	}
	if value := getenv(EnvPdftoppmPath); value != "" {
		c.PdftoppmPath = value
	}
	if value := getenv(EnvTessdataPrefix); value != "" {
		c.TessdataPrefix = value
	}
	if value := getenv(EnvLanguage); value != "" {
		c.Language = value
	}
	if value := getenv(EnvDisableModelSourceCheck); value != "" {
		c.DisableModelSourceCheck = parseBool(value)
	}
	if value := getenv(EnvTimeoutSeconds); value != "" {
		if secs, err := strconv.Atoi(value); err == nil {
			c.RequestTimeout = time.Duration(secs) * time.Second
		}
	}
	if value := getenv(EnvFastTimeoutSeconds); value != "" {
		if secs, err := strconv.Atoi(value); err == nil {
			c.FastTimeout = time.Duration(secs) * time.Second
		}
	}
	if value := getenv(EnvLogLevel); value != "" {
		c.LogLevel = value
	}
	if value := getenv(EnvVerbose); value != "" {
		c.EnableVerbose = parseBool(value)
	}
}

func parseBool(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	default:
		return false
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	return NewConfigValidator().Validate(c)
}

// Clone creates a copy of the configuration
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Ollama: %s (%s), Language: %s, LogLevel: %s, Verbose: %v}",
		c.OllamaBaseURL, c.OllamaModel, c.Language, c.LogLevel, c.EnableVerbose)
}
