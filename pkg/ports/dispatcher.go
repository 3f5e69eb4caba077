package ports

import (
	"context"

	"github.com/aretw0/dialoguetree/pkg/domain"
)

// EventDispatcher defines how side-effects are executed.
// The session emits requests, and the host implements this interface to handle them.
type EventDispatcher interface {
	Dispatch(ctx context.Context, dialogueID string, event domain.EventSpec) error
}
