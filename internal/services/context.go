package services

import "context"

type contextKey string

const (
	archiveKey    contextKey = "archive"
	stepKey       contextKey = "step"
	requestIDKey  contextKey = "request_id"
	transcriptKey contextKey = "transcript"
)

// WithArchive annotates context with the archive path being processed.
func WithArchive(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, archiveKey, path)
}

// ArchiveFromContext returns the archive path if present.
func ArchiveFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(archiveKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStep annotates context with the conversion step name.
func WithStep(ctx context.Context, step string) context.Context {
	if step == "" {
		return ctx
	}
	return context.WithValue(ctx, stepKey, step)
}

// StepFromContext returns the step name if present.
func StepFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(stepKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTranscriptPath asks extraction calls made with ctx to write their
// transcript to path instead of the destination folder.
func WithTranscriptPath(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, transcriptKey, path)
}

// TranscriptPathFromContext returns the requested transcript path if present.
func TranscriptPathFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(transcriptKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
