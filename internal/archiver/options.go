package archiver

import (
	"log/slog"
	"time"

	"archconv/internal/logging"
	"archconv/internal/process"
)

const (
	// DefaultExtractTimeout bounds extraction, listing, and test calls.
	DefaultExtractTimeout = 120 * time.Second
	// DefaultPackTimeout bounds packing, which is typically slower.
	DefaultPackTimeout = 300 * time.Second
)

type settings struct {
	timeout    time.Duration
	timeoutSet bool
	logFile    string
	appendLog  bool
	inherit    bool
	runner     process.Runner
	logger     *slog.Logger
}

// Option configures an Extractor or Packer.
type Option func(*settings)

// WithTimeout sets the wall-clock bound per invocation. Zero expires
// immediately; a negative value disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
		s.timeoutSet = true
	}
}

// WithLogFile pins extraction transcripts to path instead of
// <destination>/<archive name>.log.
func WithLogFile(path string) Option {
	return func(s *settings) {
		s.logFile = path
	}
}

// WithAppendLog keeps transcripts after successful extractions so they
// accumulate across invocations.
func WithAppendLog(enabled bool) Option {
	return func(s *settings) {
		s.appendLog = enabled
	}
}

// WithInheritIO attaches the tool to the host's stdio. No events fire and no
// transcript is written in this mode.
func WithInheritIO(enabled bool) Option {
	return func(s *settings) {
		s.inherit = enabled
	}
}

// WithRunner injects a custom runner (primarily for tests).
func WithRunner(r process.Runner) Option {
	return func(s *settings) {
		if r != nil {
			s.runner = r
		}
	}
}

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func newSettings(defaultTimeout time.Duration, opts []Option) settings {
	s := settings{timeout: defaultTimeout, logger: logging.NewNop()}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if !s.timeoutSet {
		s.timeout = defaultTimeout
	}
	if s.runner == nil {
		s.runner = process.NewExecRunner()
	}
	return s
}
