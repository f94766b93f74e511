package runctx

import (
	"context"
	"errors"
)

// Key for run ID in context
type contextKey string

const runIDKey contextKey = "runID"

// ErrNoRunIDInContext is returned when no run ID is found in context
var ErrNoRunIDInContext = errors.New("no run ID found in context")

// WithRunID adds a pipeline run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runIDKey, runID)
}

// FromContext extracts the run ID from the context
func FromContext(ctx context.Context) (string, error) {
	runID, ok := ctx.Value(runIDKey).(string)
	if !ok || runID == "" {
		return "", ErrNoRunIDInContext
	}
	return runID, nil
}

// MustFromContext extracts the run ID from the context or panics
func MustFromContext(ctx context.Context) string {
	runID, err := FromContext(ctx)
	if err != nil {
		panic(err)
	}
	return runID
}
