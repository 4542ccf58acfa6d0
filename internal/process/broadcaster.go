package process

import (
	"log/slog"
	"sync"
	"time"

	"archconv/internal/logging"
)

// Listeners receive per-line events for one operation. Either field may be
// nil, in which case that event is dropped. Callbacks run while the
// broadcaster holds its lock and must not block for long.
type Listeners struct {
	Progress func(count int64)
	Message  func(line string)
}

// Broadcaster turns tool output lines into progress and message events and
// appends each line to the operation's transcript. One broadcaster serves
// both output streams of a single invocation; its lock keeps counts strictly
// increasing and transcript lines whole.
type Broadcaster struct {
	mu         sync.Mutex
	listeners  Listeners
	count      int64
	transcript *Transcript
	logger     *slog.Logger
	writeErr   bool
}

// NewBroadcaster constructs a broadcaster with a zeroed counter. transcript
// may be nil to skip logging output to disk.
func NewBroadcaster(listeners Listeners, transcript *Transcript, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Broadcaster{listeners: listeners, transcript: transcript, logger: logger}
}

// Line records one output line.
func (b *Broadcaster) Line(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.count++
	if b.listeners.Progress != nil {
		b.listeners.Progress(b.count)
	}
	if b.listeners.Message != nil {
		b.listeners.Message(line)
	}
	b.logger.Debug("tool output", logging.String("line", line), logging.Int64("line_count", b.count))
	if b.transcript == nil {
		return
	}
	if err := b.transcript.Append(line); err != nil && !b.writeErr {
		b.writeErr = true
		logging.WarnWithContext(b.logger, "transcript write failed; later lines are not logged", "transcript_write_failed",
			logging.Path(b.transcript.Path()),
			logging.Error(err),
			logging.Hint("check permissions of the destination directory"),
			logging.Impact("tool transcript is incomplete"),
		)
	}
}

// Count returns the number of lines observed so far.
func (b *Broadcaster) Count() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Spec returns a run spec whose stdout and stderr both feed this broadcaster.
// extraStderr, when non-nil, additionally receives each stderr line.
func (b *Broadcaster) Spec(timeout time.Duration, extraStderr func(string)) Spec {
	return Spec{
		Timeout:  timeout,
		OnStdout: b.Line,
		OnStderr: func(line string) {
			b.Line(line)
			if extraStderr != nil {
				extraStderr(line)
			}
		},
	}
}
