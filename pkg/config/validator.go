package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/nodewee/ocr-skill/pkg/logger"
	"github.com/nodewee/ocr-skill/pkg/utils"
)

// ConfigValidator checks a Config before a request starts
type ConfigValidator struct{}

// NewConfigValidator creates a config validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// Validate collects every problem and reports them together
func (v *ConfigValidator) Validate(c *Config) error {
	var errs []string

	if err := v.validateBaseURL(c.OllamaBaseURL); err != nil {
		errs = append(errs, err.Error())
	}
	if strings.TrimSpace(c.OllamaModel) == "" {
		errs = append(errs, "ollama model must not be empty")
	}
	if strings.TrimSpace(c.Language) == "" {
		errs = append(errs, "language must not be empty")
	}
	if err := v.validateNumericValues(c); err != nil {
		errs = append(errs, err.Error())
	}
	if !logger.IsValidLevel(c.LogLevel) {
		errs = append(errs, fmt.Sprintf("invalid log level: %s", c.LogLevel))
	}

	if len(errs) > 0 {
		return utils.NewConfigError("configuration validation failed",
			fmt.Errorf("validation errors: %s", strings.Join(errs, "; ")))
	}

	return nil
}

func (v *ConfigValidator) validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid ollama base url %q: %v", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("ollama base url must be http or https: %q", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("ollama base url has no host: %q", raw)
	}
	return nil
}

func (v *ConfigValidator) validateNumericValues(c *Config) error {
	switch {
	case c.MaxImageDimension < 1:
		return fmt.Errorf("max image dimension must be positive")
	case c.JPEGQuality < 1 || c.JPEGQuality > 100:
		return fmt.Errorf("jpeg quality must be between 1 and 100")
	case c.RasterDPI < 1:
		return fmt.Errorf("raster dpi must be positive")
	case c.RequestTimeout <= 0:
		return fmt.Errorf("request timeout must be positive")
	case c.FastTimeout <= 0:
		return fmt.Errorf("fast timeout must be positive")
	}
	return nil
}
