package ports

import (
	"context"

	"github.com/aretw0/dialoguetree/pkg/domain"
)

// HistoryStore persists visitation history, one record set per save slot.
// A slot is typically one dialogue controller (one save game, one player).
type HistoryStore interface {
	// Save persists the histories for a given slot.
	Save(ctx context.Context, slotID string, histories domain.Histories) error

	// Load retrieves the histories for a given slot.
	// Returns domain.ErrHistoryNotFound if the slot does not exist.
	Load(ctx context.Context, slotID string) (domain.Histories, error)

	// Delete removes the histories for a given slot.
	Delete(ctx context.Context, slotID string) error

	// List returns all stored slot IDs.
	List(ctx context.Context) ([]string, error)
}
