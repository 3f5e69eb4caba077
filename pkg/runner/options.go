package runner

import (
	"log/slog"

	"github.com/aretw0/dialoguetree/pkg/session"
)

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithSaveSlot merges the director's records into slot through manager when the dialogue ends.
func WithSaveSlot(manager *session.Manager, slot string) Option {
	return func(r *Runner) {
		r.Sessions = manager
		r.Slot = slot
	}
}
