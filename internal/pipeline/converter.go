package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"archconv/internal/archive"
	"archconv/internal/archiver"
	"archconv/internal/logging"
	"archconv/internal/process"
	"archconv/internal/services"
	"archconv/internal/staging"
)

const (
	component = "pipeline"

	// maxProgressCorrection covers packer banner and summary lines that are
	// not tied to a single entry.
	maxProgressCorrection = 10
)

// Listeners receive events for one run. Any field may be nil.
type Listeners struct {
	// Progress receives a count spanning extraction and packing output lines.
	Progress func(count int64)
	// Message receives each raw tool output line.
	Message func(line string)
	// Step receives a human-readable message when a step begins.
	Step func(message string)
}

// Run summarizes one finished conversion for a Recorder.
type Run struct {
	ID            string
	Source        string
	Destination   string
	TargetFormat  archive.Type
	State         State
	SourceEntries int
	StartedAt     time.Time
	FinishedAt    time.Time
}

// Recorder persists finished runs.
type Recorder interface {
	Record(ctx context.Context, run Run) error
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the base logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithRecorder journals every Convert outcome.
func WithRecorder(r Recorder) Option {
	return func(c *Converter) {
		c.recorder = r
	}
}

// WithClock overrides the time source (primarily for tests).
func WithClock(now func() time.Time) Option {
	return func(c *Converter) {
		if now != nil {
			c.now = now
		}
	}
}

// Converter runs the conversion pipeline for one source archive.
type Converter struct {
	cfg        Config
	provider   archiver.Provider
	extractor  archiver.ExtractEngine
	packer     archiver.PackEngine
	sourceType archive.Type
	destArch   string
	tempFolder string
	baseName   string

	logger   *slog.Logger
	recorder Recorder
	now      func() time.Time
	sampler  *logging.ProgressSampler

	runID       string
	state       State
	hasState    bool
	sourceCount int
	maxProgress int64
	progress    int64
	transcript  string
}

// New validates cfg and resolves the engines for the source and target
// formats. Configuration problems are joined into one ErrIllegalState error.
// An unrecognized source format is not rejected here; START reports it.
func New(cfg Config, provider archiver.Provider, opts ...Option) (*Converter, error) {
	errs := cfg.Validate()
	if provider == nil {
		errs = append(errs, &FieldError{Field: "Provider", Message: "utility provider is required"})
	}
	if len(errs) > 0 {
		return nil, services.Wrap(services.ErrIllegalState, component, "configure", "invalid conversion configuration", errors.Join(errs...))
	}

	c := &Converter{
		cfg:        cfg,
		provider:   provider,
		sourceType: archive.TypeOf(cfg.Source),
		baseName:   archive.BaseName(cfg.Source),
		logger:     logging.NewNop(),
		now:        time.Now,
		sampler:    logging.NewProgressSampler(10),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	c.logger = logging.NewComponentLogger(c.logger, component)
	c.destArch = filepath.Join(cfg.DestinationFolder, c.baseName+cfg.TargetFormat.Ext())
	c.tempFolder = filepath.Join(cfg.TempRoot, c.baseName)
	c.transcript = filepath.Join(cfg.TempRoot, filepath.Base(cfg.Source)+".log")

	if c.sourceType != archive.Unknown {
		extractor, ok := provider.Extractor(c.sourceType)
		if !ok {
			return nil, services.Wrap(services.ErrIllegalState, component, "configure",
				fmt.Sprintf("no extractor available for %s archives", c.sourceType), nil)
		}
		c.extractor = extractor
	}
	packer, ok := provider.Packer(cfg.TargetFormat)
	if !ok {
		return nil, services.Wrap(services.ErrIllegalState, component, "configure",
			fmt.Sprintf("no packer available for %s archives", cfg.TargetFormat), nil)
	}
	c.packer = packer
	return c, nil
}

// TranscriptPath returns where the extraction transcript goes unless a log
// file is configured. It sits beside the working folder so it is never packed.
func (c *Converter) TranscriptPath() string { return c.transcript }

// SourceArchive returns the archive being converted.
func (c *Converter) SourceArchive() string { return c.cfg.Source }

// DestinationArchive returns <destination folder>/<base name><target ext>.
func (c *Converter) DestinationArchive() string { return c.destArch }

// TempFolder returns the working folder extraction writes into.
func (c *Converter) TempFolder() string { return c.tempFolder }

// Options returns the requested optional steps.
func (c *Converter) Options() []Step { return append([]Step(nil), c.cfg.Options...) }

// MaxProgress returns the expected upper bound of the progress count,
// available once START has listed the source.
func (c *Converter) MaxProgress() int64 { return c.maxProgress }

// SourceEntries returns the entry count recorded at START.
func (c *Converter) SourceEntries() int { return c.sourceCount }

// RunID returns the correlation ID of the latest Convert call.
func (c *Converter) RunID() string { return c.runID }

// State returns the last recorded state. ok is false before any step ran.
func (c *Converter) State() (State, bool) { return c.state, c.hasState }

// Convert runs every step in order and returns the terminal state. Running
// it again after success fails at START because the destination exists.
func (c *Converter) Convert(ctx context.Context, listeners Listeners) State {
	c.runID = uuid.NewString()
	c.progress = 0
	c.maxProgress = 0
	c.sampler.Reset()
	started := c.now()
	ctx = services.WithRequestID(services.WithArchive(ctx, c.cfg.Source), c.runID)
	logger := logging.WithContext(ctx, c.logger)
	logger.Info("conversion started",
		logging.String("destination", c.destArch),
		logging.String("target_format", c.cfg.TargetFormat.String()),
		logging.Event("conversion_start"),
	)

	state := c.convert(ctx, listeners)
	c.finish(ctx, logger, started)
	return state
}

func (c *Converter) convert(ctx context.Context, listeners Listeners) State {
	lock, err := c.start(ctx, listeners)
	if err != nil {
		return c.fail(StepStart, err)
	}
	defer func() {
		if err := lock.Release(); err != nil {
			logging.WarnWithContext(c.logger, "run lock release failed", "lock_release_failed",
				logging.Path(lock.Path()),
				logging.Error(err),
				logging.Impact("later runs of this archive fail at START until the process exits"),
			)
		}
	}()

	if c.cfg.has(StepTestBefore) {
		if err := c.TestSource(ctx, listeners); err != nil {
			return c.state
		}
	}
	if err := c.Extract(ctx, listeners); err != nil {
		return c.state
	}
	if err := c.Pack(ctx, listeners); err != nil {
		return c.state
	}
	if c.cfg.has(StepTestAfter) {
		if err := c.TestTarget(ctx, listeners); err != nil {
			return c.state
		}
	}
	if c.cfg.has(StepCompare) {
		if err := c.Compare(ctx, listeners); err != nil {
			return c.state
		}
	}

	staging.Remove(c.tempFolder, logging.WithContext(ctx, c.logger))
	c.setState(StepAll, nil)
	return c.state
}

// start checks preconditions, counts the source entries, and takes the run
// lock. Nothing is created on disk before the entry count is known.
func (c *Converter) start(ctx context.Context, listeners Listeners) (*staging.Lock, error) {
	ctx = services.WithStep(ctx, StepStart.String())
	if err := c.assertFiles(); err != nil {
		return nil, err
	}

	entries, err := c.extractor.FileList(ctx, c.cfg.Source, process.Listeners{Message: listeners.Message})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, services.Wrap(services.ErrArchive, component, "start", "nothing to extract in "+absPath(c.cfg.Source), nil)
	}
	c.sourceCount = len(entries)
	c.maxProgress = int64(c.sourceCount) + maxProgressCorrection

	lock, err := staging.AcquireLock(c.cfg.TempRoot, c.baseName)
	if err != nil {
		if errors.Is(err, staging.ErrLocked) {
			return nil, services.Wrap(services.ErrIllegalState, component, "start", "another conversion is using "+c.tempFolder, err)
		}
		return nil, services.Wrap(services.ErrArchive, component, "start", "acquire run lock", err)
	}
	logging.WithContext(ctx, c.logger).Info("source listed",
		logging.Int("entries", c.sourceCount),
		logging.Int64("max_progress", c.maxProgress),
	)
	return lock, nil
}

// TestSource runs the integrity test on the source archive.
func (c *Converter) TestSource(ctx context.Context, listeners Listeners) error {
	ctx = services.WithStep(ctx, StepTestBefore.String())
	c.stepMessage(listeners, "Converting : Testing - "+filepath.Base(c.cfg.Source))
	if c.extractor == nil {
		return c.failErr(StepTestBefore, c.unsupportedFormat())
	}
	if err := c.extractor.Test(ctx, c.cfg.Source, process.Listeners{Message: listeners.Message}); err != nil {
		return c.failErr(StepTestBefore, err)
	}
	return nil
}

// Extract re-checks preconditions and extracts the source into TempFolder.
func (c *Converter) Extract(ctx context.Context, listeners Listeners) error {
	ctx = services.WithStep(ctx, StepExtracting.String())
	if err := c.assertFiles(); err != nil {
		return c.failErr(StepExtracting, err)
	}
	if err := staging.Prepare(c.tempFolder, logging.WithContext(ctx, c.logger)); err != nil {
		return c.failErr(StepExtracting, services.Wrap(services.ErrArchive, component, "extract", "create working folder "+c.tempFolder, err))
	}
	c.stepMessage(listeners, "Converting : Extracting - "+filepath.Base(c.cfg.Source))
	ctx = services.WithTranscriptPath(ctx, c.transcript)
	if err := c.extractor.ExtractTo(ctx, c.cfg.Source, c.tempFolder, c.translate(ctx, StepExtracting, listeners)); err != nil {
		return c.failErr(StepExtracting, err)
	}
	return nil
}

// Pack re-checks preconditions and packs TempFolder into the destination.
func (c *Converter) Pack(ctx context.Context, listeners Listeners) error {
	ctx = services.WithStep(ctx, StepPacking.String())
	if err := c.assertFiles(); err != nil {
		return c.failErr(StepPacking, err)
	}
	c.stepMessage(listeners, "Converting : Packing - "+filepath.Base(c.destArch))
	if err := c.packer.PackFolder(ctx, c.destArch, c.tempFolder, c.translate(ctx, StepPacking, listeners)); err != nil {
		return c.failErr(StepPacking, err)
	}
	return nil
}

// TestTarget runs the integrity test on the destination archive using the
// target format's extractor.
func (c *Converter) TestTarget(ctx context.Context, listeners Listeners) error {
	ctx = services.WithStep(ctx, StepTestAfter.String())
	c.stepMessage(listeners, "Converting : Testing - "+filepath.Base(c.destArch))
	extractor, ok := c.provider.Extractor(c.cfg.TargetFormat)
	if !ok {
		return c.failErr(StepTestAfter, services.Wrap(services.ErrUnsupported, component, "test",
			"no extractor available to test "+absPath(c.destArch), nil))
	}
	if err := extractor.Test(ctx, c.destArch, process.Listeners{Message: listeners.Message}); err != nil {
		return c.failErr(StepTestAfter, err)
	}
	return nil
}

// Compare lists the destination with the target format's extractor and
// fails when its entry count differs from the count recorded at START.
func (c *Converter) Compare(ctx context.Context, listeners Listeners) error {
	ctx = services.WithStep(ctx, StepCompare.String())
	c.stepMessage(listeners, fmt.Sprintf("Converting : Comparing - %s and %s", filepath.Base(c.cfg.Source), filepath.Base(c.destArch)))
	extractor, ok := c.provider.Extractor(c.cfg.TargetFormat)
	if !ok {
		return c.failErr(StepCompare, services.Wrap(services.ErrArchive, component, "compare",
			"extractor not found for "+absPath(c.destArch), nil))
	}
	entries, err := extractor.FileList(ctx, c.destArch, process.Listeners{Message: listeners.Message})
	if err != nil {
		return c.failErr(StepCompare, err)
	}
	if len(entries) != c.sourceCount {
		return c.failErr(StepCompare, services.Wrap(services.ErrArchive, component, "compare",
			fmt.Sprintf("source and target archives files count differ: <%d> in %s, <%d> in %s",
				c.sourceCount, absPath(c.cfg.Source), len(entries), absPath(c.destArch)), nil))
	}
	return nil
}

// assertFiles checks the conditions every mutating step depends on.
func (c *Converter) assertFiles() error {
	if _, err := os.Stat(c.cfg.Source); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return services.Wrap(services.ErrNotFound, component, "check", "source archive file not found: "+absPath(c.cfg.Source), nil)
		}
		return services.Wrap(services.ErrArchive, component, "check", "stat source archive", err)
	}
	if c.sourceType == archive.Unknown {
		return c.unsupportedFormat()
	}
	if c.sourceType == c.cfg.TargetFormat {
		return services.Wrap(services.ErrIllegalState, component, "check",
			fmt.Sprintf("same source and target format: %s to %s", c.cfg.Source, c.cfg.TargetFormat), nil)
	}
	if absPath(c.cfg.Source) == absPath(c.destArch) {
		return services.Wrap(services.ErrIllegalState, component, "check",
			fmt.Sprintf("source and target archives are the same: %s", absPath(c.destArch)), nil)
	}
	if _, err := os.Stat(c.destArch); err == nil {
		return services.Wrap(services.ErrInvalidArgument, component, "check", "target archive file already exists: "+absPath(c.destArch), nil)
	} else if !errors.Is(err, os.ErrNotExist) {
		return services.Wrap(services.ErrArchive, component, "check", "stat target archive", err)
	}
	return nil
}

func (c *Converter) unsupportedFormat() error {
	return services.Wrap(services.ErrInvalidArgument, component, "check", "unsupported archive format: "+c.cfg.Source, nil)
}

// translate maps an engine's per-call count onto the run-wide counter.
func (c *Converter) translate(ctx context.Context, step Step, listeners Listeners) process.Listeners {
	base := c.progress
	logger := logging.WithContext(ctx, c.logger)
	return process.Listeners{
		Progress: func(n int64) {
			c.progress = base + n
			if c.sampler.ShouldLog(c.progress, c.maxProgress, step.Label()) {
				logger.Info("conversion progress",
					logging.Int64("count", c.progress),
					logging.Int64("max", c.maxProgress),
					logging.Float64("percent", logging.Percent(c.progress, c.maxProgress)),
				)
			}
			if listeners.Progress != nil {
				listeners.Progress(c.progress)
			}
		},
		Message: listeners.Message,
	}
}

func (c *Converter) stepMessage(listeners Listeners, message string) {
	if listeners.Step != nil {
		listeners.Step(message)
	}
}

func (c *Converter) setState(step Step, err error) {
	c.state = State{Step: step, Err: err}
	c.hasState = true
}

func (c *Converter) fail(step Step, err error) State {
	c.setState(step, err)
	return c.state
}

func (c *Converter) failErr(step Step, err error) error {
	c.setState(step, err)
	return err
}

func (c *Converter) finish(ctx context.Context, logger *slog.Logger, started time.Time) {
	finished := c.now()
	if c.state.Success() {
		logger.Info("conversion finished",
			logging.String("destination", c.destArch),
			logging.Int("entries", c.sourceCount),
			logging.Duration("duration", finished.Sub(started)),
			logging.Event("conversion_complete"),
		)
	} else {
		logging.ErrorWithContext(logger, "conversion failed", "conversion_failed",
			logging.String(logging.FieldStep, c.state.Step.String()),
			logging.String("error_kind", services.Kind(c.state.Err)),
			logging.Error(c.state.Err),
			logging.Hint(hintFor(c.state)),
		)
	}
	if c.recorder == nil {
		return
	}
	run := Run{
		ID:            c.runID,
		Source:        absPath(c.cfg.Source),
		Destination:   absPath(c.destArch),
		TargetFormat:  c.cfg.TargetFormat,
		State:         c.state,
		SourceEntries: c.sourceCount,
		StartedAt:     started,
		FinishedAt:    finished,
	}
	if err := c.recorder.Record(ctx, run); err != nil {
		logging.WarnWithContext(logger, "conversion history not recorded", "history_write_failed",
			logging.Error(err),
			logging.Hint("check paths.history_db"),
			logging.Impact("run missing from archconv history"),
		)
	}
}

func hintFor(state State) string {
	switch {
	case errors.Is(state.Err, services.ErrTimeout):
		return "raise the timeout_seconds for this step or check the archive"
	case errors.Is(state.Err, services.ErrUnsupported):
		return "drop the test options; the configured tools have no integrity test"
	case errors.Is(state.Err, services.ErrNotFound):
		return "check the source path"
	case state.Step == StepCompare:
		return "inspect the destination archive; it was left in place"
	case state.Step == StepExtracting || state.Step == StepPacking:
		return "see the transcript and working folder left in temp_dir"
	default:
		return "check logs for details"
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
