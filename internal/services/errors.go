package services

import (
	"errors"
	"fmt"
	"strings"
)

// marker is a sentinel that may refine a broader sentinel, so errors.Is
// matches both the specific marker and its parent.
type marker struct {
	msg    string
	parent error
}

func (m *marker) Error() string { return m.msg }

func (m *marker) Unwrap() error { return m.parent }

var (
	ErrNotFound        = errors.New("not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrArchive         = errors.New("archive error")
	ErrUnsupported     = errors.New("unsupported operation")
	ErrIllegalState    = errors.New("illegal state")
	ErrInterrupted     = errors.New("interrupted")

	// ErrTimeout is a specialization of ErrArchive: errors.Is matches both.
	ErrTimeout error = &marker{msg: "timeout", parent: ErrArchive}
)

// Wrap builds an error message that includes component context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, component, operation, message string, err error) error {
	detail := buildDetail(component, operation, message)
	if marker == nil {
		marker = ErrArchive
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind maps an error to a stable classification string used in history
// records and CLI output.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInvalidArgument):
		return "invalid_argument"
	case errors.Is(err, ErrUnsupported):
		return "unsupported"
	case errors.Is(err, ErrIllegalState):
		return "illegal_state"
	case errors.Is(err, ErrInterrupted):
		return "interrupted"
	case errors.Is(err, ErrArchive):
		return "archive"
	default:
		return "unknown"
	}
}

func buildDetail(component, operation, message string) string {
	parts := make([]string, 0, 3)
	if component = strings.TrimSpace(component); component != "" {
		parts = append(parts, component)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "archive tool failure"
	}
	return strings.Join(parts, ": ")
}
