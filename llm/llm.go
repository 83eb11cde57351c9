package llm

import (
	"context"
)

// Options carries the sampling parameters for a single generation call.
// Zero values mean "use the provider default".
type Options struct {
	Temperature   float64
	TopP          float64
	ContextWindow int // prompt window hint, honored where the backend supports it
	MaxTokens     int
}

// Generator produces one completion for a system/user prompt pair.
// Implementations must respect ctx cancellation and deadlines.
type Generator interface {
	// Generate returns the backend's completion text. Errors are translated
	// into *Error so callers can inspect the category.
	Generate(ctx context.Context, system, user string, opts Options) (string, error)

	// Ping reports whether the backend is reachable. Used by the startup
	// probe before the server begins accepting connections.
	Ping(ctx context.Context) error
}
