package archiver

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"archconv/internal/logging"
	"archconv/internal/process"
	"archconv/internal/services"
	"archconv/internal/toolcmd"
)

const packerComponent = "packer"

// PackEngine is the packing capability the pipeline depends on.
type PackEngine interface {
	PackFolder(ctx context.Context, archive, sourceFolder string, listeners process.Listeners) error
}

// Packer drives a packing utility.
type Packer struct {
	builder toolcmd.PackBuilder
	cfg     settings
	logger  *slog.Logger
}

// NewPacker constructs a packer. It fails with ErrIllegalState when the
// builder's utility cannot be found.
func NewPacker(builder toolcmd.PackBuilder, opts ...Option) (*Packer, error) {
	if builder == nil {
		return nil, services.Wrap(services.ErrIllegalState, packerComponent, "init", "command builder required", nil)
	}
	if err := checkUtility(packerComponent, builder.UtilityPath()); err != nil {
		return nil, err
	}
	cfg := newSettings(DefaultPackTimeout, opts)
	return &Packer{
		builder: builder,
		cfg:     cfg,
		logger:  logging.NewComponentLogger(cfg.logger, packerComponent),
	}, nil
}

// Timeout returns the configured per-invocation bound.
func (p *Packer) Timeout() time.Duration { return p.cfg.timeout }

// UtilityPath returns the program the packer runs.
func (p *Packer) UtilityPath() string { return p.builder.UtilityPath() }

// PackFolder packs the contents of sourceFolder into archive. The archive
// must not be written inside sourceFolder, since the tool would then pick up
// the archive it is writing. Missing parent directories of archive are
// created. Path checks run before any subprocess starts.
func (p *Packer) PackFolder(ctx context.Context, archive, sourceFolder string, listeners process.Listeners) error {
	const op = "pack"
	if err := requireDir(packerComponent, op, "source folder", sourceFolder); err != nil {
		return err
	}
	if strings.TrimSpace(archive) == "" {
		return services.Wrap(services.ErrInvalidArgument, packerComponent, op, "archive path is empty", nil)
	}
	parent := filepath.Dir(absClean(archive))
	if within(parent, sourceFolder) {
		return services.Wrap(services.ErrInvalidArgument, packerComponent, op,
			fmt.Sprintf("target archive overlaps with the source folder: %s and %s", archive, sourceFolder), nil)
	}
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return services.Wrap(services.ErrArchive, packerComponent, op, "create target folder "+parent, err)
	}

	logger := operationLogger(ctx, p.logger, op, archive)
	cmd := p.builder.PackCommand(archive, sourceFolder)
	var (
		mu   sync.Mutex
		errs []string
	)
	spec := process.Spec{Timeout: p.cfg.timeout, Inherit: true}
	if !p.cfg.inherit {
		spec = process.NewBroadcaster(listeners, nil, logger).Spec(p.cfg.timeout, func(line string) {
			mu.Lock()
			errs = append(errs, line)
			mu.Unlock()
		})
	}
	logger.Debug("packing started", logging.String("command", cmd.String()), logging.String("source_folder", sourceFolder))

	result, err := p.cfg.runner.Run(ctx, cmd, spec)
	if err != nil {
		return runFailure(packerComponent, op, cmd.Program(), err)
	}
	if result.TimedOut {
		return services.Wrap(services.ErrTimeout, packerComponent, op,
			fmt.Sprintf("archiver timeout after %s in archive %s", p.cfg.timeout, archive), nil)
	}
	if result.ExitCode != 0 {
		detail := strings.Join(errs, "\n")
		if detail == "" {
			detail = fmt.Sprintf("exit code %d", result.ExitCode)
		}
		return services.Wrap(services.ErrArchive, packerComponent, op, "archiving errors: "+detail, nil)
	}
	logger.Debug("packing finished")
	return nil
}
