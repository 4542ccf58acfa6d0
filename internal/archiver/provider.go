package archiver

import (
	"log/slog"
	"path/filepath"
	"strings"

	"archconv/internal/archive"
	"archconv/internal/config"
	"archconv/internal/logging"
	"archconv/internal/toolcmd"
)

// Provider looks up engines by archive type. Unknown never yields an engine.
type Provider interface {
	Extractor(t archive.Type) (ExtractEngine, bool)
	Packer(t archive.Type) (PackEngine, bool)
}

// ToolProvider is a Provider backed by a fixed registry.
type ToolProvider struct {
	extractors map[archive.Type]ExtractEngine
	packers    map[archive.Type]PackEngine
}

// NewProvider returns an empty provider.
func NewProvider() *ToolProvider {
	return &ToolProvider{
		extractors: make(map[archive.Type]ExtractEngine),
		packers:    make(map[archive.Type]PackEngine),
	}
}

// NewToolProvider builds engines for every tool configured in cfg. Tools that
// cannot be found are skipped with a warning; lookups for their types return
// false. opts apply to every engine after the configured timeouts.
func NewToolProvider(cfg *config.Config, logger *slog.Logger, opts ...Option) *ToolProvider {
	p := NewProvider()
	if cfg == nil {
		return p
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	engineLogger := logger
	engineOpts := func(base ...Option) []Option {
		return append(append(base, WithLogger(engineLogger)), opts...)
	}
	logger = logging.NewComponentLogger(logger, "provider")

	extractOpts := engineOpts(
		WithTimeout(cfg.ExtractionTimeout()),
		WithAppendLog(cfg.Extraction.AppendLog),
		WithLogFile(cfg.Extraction.LogFile),
	)
	for _, t := range archive.Types() {
		path := extractorPath(cfg.Tools, t)
		if path == "" {
			continue
		}
		extractor, err := NewExtractor(extractBuilderFor(t, path), extractOpts...)
		if err != nil {
			logging.WarnWithContext(logger, "extractor unavailable", "tool_unavailable",
				logging.String("format", t.String()),
				logging.String("tool", path),
				logging.Error(err),
				logging.Hint("install the tool or fix the [tools] path"),
				logging.Impact("archives of this format cannot be read"),
			)
			continue
		}
		p.RegisterExtractor(t, extractor)
	}

	packOpts := engineOpts(WithTimeout(cfg.PackingTimeout()))
	for _, t := range archive.Types() {
		path := packerPath(cfg.Tools, t)
		if path == "" {
			continue
		}
		packer, err := NewPacker(packBuilderFor(t, path), packOpts...)
		if err != nil {
			logging.WarnWithContext(logger, "packer unavailable", "tool_unavailable",
				logging.String("format", t.String()),
				logging.String("tool", path),
				logging.Error(err),
				logging.Hint("install the tool or fix the [tools] path"),
				logging.Impact("archives of this format cannot be written"),
			)
			continue
		}
		p.RegisterPacker(t, packer)
	}
	return p
}

// RegisterExtractor sets the extractor for t. Unknown and nil are ignored.
func (p *ToolProvider) RegisterExtractor(t archive.Type, e ExtractEngine) {
	if t == archive.Unknown || e == nil {
		return
	}
	p.extractors[t] = e
}

// RegisterPacker sets the packer for t. Unknown and nil are ignored.
func (p *ToolProvider) RegisterPacker(t archive.Type, e PackEngine) {
	if t == archive.Unknown || e == nil {
		return
	}
	p.packers[t] = e
}

func (p *ToolProvider) Extractor(t archive.Type) (ExtractEngine, bool) {
	e, ok := p.extractors[t]
	return e, ok
}

func (p *ToolProvider) Packer(t archive.Type) (PackEngine, bool) {
	e, ok := p.packers[t]
	return e, ok
}

func extractorPath(tools config.Tools, t archive.Type) string {
	switch t {
	case archive.RAR:
		return tools.RarExtractor
	case archive.ZIP:
		return tools.ZipExtractor
	case archive.S7Z:
		return tools.S7zExtractor
	default:
		return ""
	}
}

func packerPath(tools config.Tools, t archive.Type) string {
	switch t {
	case archive.RAR:
		return tools.RarPacker
	case archive.ZIP:
		return tools.ZipPacker
	case archive.S7Z:
		return tools.S7zPacker
	default:
		return ""
	}
}

// 7z reads RAR too, so a 7z binary configured as rar_extractor gets the 7z
// command syntax.
func extractBuilderFor(t archive.Type, path string) toolcmd.ExtractBuilder {
	if t == archive.RAR && !isSevenZip(path) {
		return toolcmd.NewUnrar(path)
	}
	return toolcmd.NewSevenZip(path)
}

func packBuilderFor(t archive.Type, path string) toolcmd.PackBuilder {
	if t == archive.RAR {
		return toolcmd.NewRar(path)
	}
	return toolcmd.NewSevenZip(path)
}

func isSevenZip(path string) bool {
	return strings.HasPrefix(strings.ToLower(filepath.Base(path)), "7z")
}
