package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigPath         = "~/.config/archconv/config.toml"
	defaultLogDir             = "~/.local/share/archconv/logs"
	defaultHistoryDB          = "~/.local/share/archconv/history.db"
	defaultExtractionTimeout  = 120
	defaultPackingTimeout     = 300
	defaultTargetFormat       = "zip"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultLogRetentionDays   = 30
	envSevenZip               = "ARCHCONV_7Z"
	envUnrar                  = "ARCHCONV_UNRAR"
	envRar                    = "ARCHCONV_RAR"
	conversionTestBefore      = "test_before"
	conversionTestAfter       = "test_after"
	conversionCompare         = "compare"
	defaultSevenZipBinaryName = "7z"
	defaultUnrarBinaryName    = "unrar"
	defaultRarBinaryName      = "rar"
)

// Default returns a Config populated with repository defaults. Tool paths
// stay empty here; normalization fills them from the environment and PATH.
func Default() Config {
	return Config{
		Paths: Paths{
			TempDir:   defaultTempDir(),
			LogDir:    defaultLogDir,
			HistoryDB: defaultHistoryDB,
		},
		Extraction: Extraction{
			TimeoutSeconds: defaultExtractionTimeout,
		},
		Packing: Packing{
			TimeoutSeconds: defaultPackingTimeout,
		},
		Conversion: Conversion{
			TargetFormat: defaultTargetFormat,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}

func defaultTempDir() string {
	return filepath.Join(os.TempDir(), "archconv")
}
