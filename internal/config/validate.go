package config

import (
	"errors"
	"fmt"
	"strings"

	"archconv/internal/archive"
)

// Validate ensures the configuration is usable. Missing tools are not an
// error here; commands that need one report it when they run.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateTimeouts(); err != nil {
		return err
	}
	if err := c.validateConversion(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		return errors.New("paths.temp_dir must be set")
	}
	return nil
}

func (c *Config) validateTimeouts() error {
	if c.Extraction.TimeoutSeconds <= 0 {
		return errors.New("extraction.timeout_seconds must be positive")
	}
	if c.Packing.TimeoutSeconds <= 0 {
		return errors.New("packing.timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateConversion() error {
	if archive.ParseType(c.Conversion.TargetFormat) == archive.Unknown {
		return fmt.Errorf("conversion.target_format %q is not one of rar, zip, 7z", c.Conversion.TargetFormat)
	}
	for _, option := range c.Conversion.Options {
		switch option {
		case conversionTestBefore, conversionTestAfter, conversionCompare:
		default:
			return fmt.Errorf("conversion.options: unknown option %q (want %s, %s, or %s)",
				option, conversionTestBefore, conversionTestAfter, conversionCompare)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must be >= 0")
	}
	return nil
}
