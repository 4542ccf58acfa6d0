package archiver

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"archconv/internal/logging"
	"archconv/internal/process"
	"archconv/internal/services"
	"archconv/internal/toolcmd"
)

const extractorComponent = "extractor"

// ExtractEngine is the extraction capability the pipeline depends on.
type ExtractEngine interface {
	ExtractTo(ctx context.Context, archive, destination string, listeners process.Listeners) error
	FileList(ctx context.Context, archive string, listeners process.Listeners) ([]string, error)
	Test(ctx context.Context, archive string, listeners process.Listeners) error
}

// Extractor drives an extraction utility.
type Extractor struct {
	builder toolcmd.ExtractBuilder
	cfg     settings
	logger  *slog.Logger
}

// NewExtractor constructs an extractor. It fails with ErrIllegalState when
// the builder's utility cannot be found.
func NewExtractor(builder toolcmd.ExtractBuilder, opts ...Option) (*Extractor, error) {
	if builder == nil {
		return nil, services.Wrap(services.ErrIllegalState, extractorComponent, "init", "command builder required", nil)
	}
	if err := checkUtility(extractorComponent, builder.UtilityPath()); err != nil {
		return nil, err
	}
	cfg := newSettings(DefaultExtractTimeout, opts)
	return &Extractor{
		builder: builder,
		cfg:     cfg,
		logger:  logging.NewComponentLogger(cfg.logger, extractorComponent),
	}, nil
}

// Timeout returns the configured per-invocation bound.
func (e *Extractor) Timeout() time.Duration { return e.cfg.timeout }

// UtilityPath returns the program the extractor runs.
func (e *Extractor) UtilityPath() string { return e.builder.UtilityPath() }

// ExtractTo extracts every entry of archive into destination, which must be
// an existing directory. Output is written to the transcript; the transcript
// is removed on success unless append mode is set and kept on failure.
func (e *Extractor) ExtractTo(ctx context.Context, archive, destination string, listeners process.Listeners) error {
	const op = "extract"
	if _, err := requireExists(extractorComponent, op, "archive", archive); err != nil {
		return err
	}
	if err := requireDir(extractorComponent, op, "destination", destination); err != nil {
		return err
	}

	logger := e.operationLogger(ctx, op, archive)
	transcript := e.transcript(ctx, archive, destination)
	defer transcript.Close()

	cmd := e.builder.ExtractCommand(archive, destination)
	spec := process.Spec{Timeout: e.cfg.timeout, Inherit: true}
	if !e.cfg.inherit {
		spec = process.NewBroadcaster(listeners, transcript, logger).Spec(e.cfg.timeout, nil)
	}
	logger.Debug("extraction started", logging.String("command", cmd.String()), logging.String("destination", destination))

	result, err := e.cfg.runner.Run(ctx, cmd, spec)
	if err != nil {
		return runFailure(extractorComponent, op, cmd.Program(), err)
	}
	if result.TimedOut {
		notice := fmt.Sprintf("extract timeout after %s in archive %s", e.cfg.timeout, archive)
		if err := transcript.Append(notice); err != nil {
			logging.WarnWithContext(logger, "timeout notice not written to transcript", "transcript_write_failed",
				logging.Path(transcript.Path()),
				logging.Error(err),
				logging.Hint("check permissions of the destination directory"),
			)
		}
		return services.Wrap(services.ErrTimeout, extractorComponent, op, notice+logHint(transcript.Path()), nil)
	}
	if result.ExitCode != 0 {
		return services.Wrap(services.ErrArchive, extractorComponent, op,
			fmt.Sprintf("extraction failed with exit code %d%s", result.ExitCode, logHint(transcript.Path())), nil)
	}

	if !e.cfg.appendLog {
		if err := transcript.Remove(); err != nil {
			logging.WarnWithContext(logger, "transcript removal failed", "transcript_cleanup_failed",
				logging.Path(transcript.Path()),
				logging.Error(err),
				logging.Impact("extraction transcript remains on disk"),
			)
		}
	}
	logger.Debug("extraction finished", logging.String("destination", destination))
	return nil
}

// FileList returns the entry names the utility reports for archive. Every
// stdout line drives the listeners; stderr is collected and becomes the
// error message on a nonzero exit. A tool that prints nothing for an archive
// it cannot enumerate yields an empty list, not an error.
func (e *Extractor) FileList(ctx context.Context, archive string, listeners process.Listeners) ([]string, error) {
	const op = "list"
	if _, err := requireExists(extractorComponent, op, "archive", archive); err != nil {
		return nil, err
	}

	logger := e.operationLogger(ctx, op, archive)
	broadcaster := process.NewBroadcaster(listeners, nil, logger)
	var (
		mu      sync.Mutex
		entries []string
		errs    []string
	)
	spec := process.Spec{
		Timeout: e.cfg.timeout,
		OnStdout: func(line string) {
			broadcaster.Line(line)
			if name, ok := e.builder.EntryName(line); ok {
				mu.Lock()
				entries = append(entries, name)
				mu.Unlock()
			}
		},
		OnStderr: func(line string) {
			mu.Lock()
			errs = append(errs, line)
			mu.Unlock()
		},
	}

	cmd := e.builder.ListCommand(archive)
	result, err := e.cfg.runner.Run(ctx, cmd, spec)
	if err != nil {
		return nil, runFailure(extractorComponent, op, cmd.Program(), err)
	}
	if result.TimedOut {
		return nil, services.Wrap(services.ErrTimeout, extractorComponent, op,
			fmt.Sprintf("list timeout after %s in archive %s", e.cfg.timeout, archive), nil)
	}
	if result.ExitCode != 0 {
		detail := strings.Join(errs, "\n")
		if e.cfg.logFile != "" {
			if err := process.NewTranscript(e.cfg.logFile).Append(detail); err != nil {
				logger.Debug("list errors not written to log file", logging.Error(err))
			}
		}
		if detail == "" {
			detail = fmt.Sprintf("exit code %d", result.ExitCode)
		}
		return nil, services.Wrap(services.ErrArchive, extractorComponent, op, detail, nil)
	}
	logger.Debug("listing finished", logging.Int("entries", len(entries)))
	return entries, nil
}

// Test verifies archive integrity. The bundled tool integrations have no
// test command, so this fails with ErrUnsupported for them.
func (e *Extractor) Test(ctx context.Context, archive string, listeners process.Listeners) error {
	const op = "test"
	if _, err := requireExists(extractorComponent, op, "archive", archive); err != nil {
		return err
	}
	cmd, err := e.builder.TestCommand(archive)
	if err != nil {
		return err
	}

	logger := e.operationLogger(ctx, op, archive)
	var (
		mu   sync.Mutex
		errs []string
	)
	spec := process.NewBroadcaster(listeners, nil, logger).Spec(e.cfg.timeout, func(line string) {
		mu.Lock()
		errs = append(errs, line)
		mu.Unlock()
	})
	result, err := e.cfg.runner.Run(ctx, cmd, spec)
	if err != nil {
		return runFailure(extractorComponent, op, cmd.Program(), err)
	}
	if result.TimedOut {
		return services.Wrap(services.ErrTimeout, extractorComponent, op,
			fmt.Sprintf("test timeout after %s in archive %s", e.cfg.timeout, archive), nil)
	}
	if result.ExitCode != 0 {
		detail := strings.Join(errs, "\n")
		if detail == "" {
			detail = fmt.Sprintf("integrity test failed with exit code %d", result.ExitCode)
		}
		return services.Wrap(services.ErrArchive, extractorComponent, op, detail, nil)
	}
	return nil
}

// transcript picks the log for one extraction: the configured log file, then
// a path pinned on ctx, then <destination>/<archive file name>.log.
func (e *Extractor) transcript(ctx context.Context, archive, destination string) *process.Transcript {
	if e.cfg.inherit {
		return nil
	}
	if e.cfg.logFile != "" {
		return process.NewTranscript(e.cfg.logFile)
	}
	if path, ok := services.TranscriptPathFromContext(ctx); ok {
		return process.NewTranscript(path)
	}
	return process.NewTranscript(filepath.Join(destination, filepath.Base(archive)+".log"))
}

func (e *Extractor) operationLogger(ctx context.Context, op, archive string) *slog.Logger {
	return operationLogger(ctx, e.logger, op, archive)
}
