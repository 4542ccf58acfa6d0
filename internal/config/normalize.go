package config

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeTools(); err != nil {
		return err
	}
	c.normalizeExtraction()
	c.normalizeConversion()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.TempDir) == "" {
		c.Paths.TempDir = defaultTempDir()
	}
	if c.Paths.TempDir, err = expandPath(strings.TrimSpace(c.Paths.TempDir)); err != nil {
		return fmt.Errorf("paths.temp_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.HistoryDB, err = expandPath(strings.TrimSpace(c.Paths.HistoryDB)); err != nil {
		return fmt.Errorf("paths.history_db: %w", err)
	}
	return nil
}

func (c *Config) normalizeTools() error {
	t := &c.Tools
	fromEnv(&t.RarExtractor, envUnrar)
	fromEnv(&t.RarPacker, envRar)
	fromEnv(&t.ZipExtractor, envSevenZip)
	fromEnv(&t.ZipPacker, envSevenZip)
	fromEnv(&t.S7zExtractor, envSevenZip)
	fromEnv(&t.S7zPacker, envSevenZip)

	fallback(&t.ZipExtractor, t.S7zExtractor)
	fallback(&t.S7zExtractor, t.ZipExtractor)
	fallback(&t.ZipPacker, t.S7zPacker)
	fallback(&t.S7zPacker, t.ZipPacker)

	sevenZip := probe(defaultSevenZipBinaryName)
	fallback(&t.RarExtractor, probe(defaultUnrarBinaryName))
	fallback(&t.RarPacker, probe(defaultRarBinaryName))
	fallback(&t.ZipExtractor, sevenZip)
	fallback(&t.ZipPacker, sevenZip)
	fallback(&t.S7zExtractor, sevenZip)
	fallback(&t.S7zPacker, sevenZip)

	for _, field := range []*string{&t.RarExtractor, &t.RarPacker, &t.ZipExtractor, &t.ZipPacker, &t.S7zExtractor, &t.S7zPacker} {
		// Bare program names are resolved by exec at run time.
		if *field == "" || (!strings.ContainsRune(*field, os.PathSeparator) && !strings.HasPrefix(*field, "~")) {
			continue
		}
		expanded, err := expandPath(*field)
		if err != nil {
			return fmt.Errorf("tools: %w", err)
		}
		*field = expanded
	}
	return nil
}

func (c *Config) normalizeExtraction() {
	c.Extraction.LogFile = strings.TrimSpace(c.Extraction.LogFile)
	if c.Extraction.LogFile != "" {
		if expanded, err := expandPath(c.Extraction.LogFile); err == nil {
			c.Extraction.LogFile = expanded
		}
	}
}

func (c *Config) normalizeConversion() {
	c.Conversion.TargetFormat = strings.ToLower(strings.TrimSpace(c.Conversion.TargetFormat))
	if c.Conversion.TargetFormat == "" {
		c.Conversion.TargetFormat = defaultTargetFormat
	}
	seen := make(map[string]struct{}, len(c.Conversion.Options))
	options := make([]string, 0, len(c.Conversion.Options))
	for _, option := range c.Conversion.Options {
		option = strings.ToLower(strings.TrimSpace(option))
		if option == "" {
			continue
		}
		if _, dup := seen[option]; dup {
			continue
		}
		seen[option] = struct{}{}
		options = append(options, option)
	}
	c.Conversion.Options = options
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.Level == "warning" {
		c.Logging.Level = "warn"
	}
}

func fromEnv(field *string, key string) {
	*field = strings.TrimSpace(*field)
	if *field != "" {
		return
	}
	if value, ok := os.LookupEnv(key); ok {
		*field = strings.TrimSpace(value)
	}
}

func fallback(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

func probe(name string) string {
	path, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}
