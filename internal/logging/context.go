package logging

import (
	"context"
	"log/slog"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldBundle is the standardized structured logging key for bundle directory names.
	FieldBundle = "bundle"
	// FieldStage is the standardized structured logging key for pipeline phase names.
	FieldStage = "stage"
	// FieldArtifact is the standardized structured logging key for artifact paths.
	FieldArtifact = "artifact"
)

type contextKey string

const (
	bundleKey contextKey = "bundle"
	stageKey  contextKey = "stage"
)

// WithBundle annotates context with the bundle being processed.
func WithBundle(ctx context.Context, bundle string) context.Context {
	if bundle == "" {
		return ctx
	}
	return context.WithValue(ctx, bundleKey, bundle)
}

// BundleFromContext extracts the bundle name if present.
func BundleFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(bundleKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithStage annotates context with the pipeline phase name.
func WithStage(ctx context.Context, stage string) context.Context {
	if stage == "" {
		return ctx
	}
	return context.WithValue(ctx, stageKey, stage)
}

// StageFromContext returns the phase name if present.
func StageFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(stageKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 2)
	if bundle, ok := BundleFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldBundle, bundle))
	}
	if stage, ok := StageFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldStage, stage))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived
// from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
