package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/ports"
)

type excludeMiddleware struct {
	next     ports.HistoryStore
	patterns []*regexp.Regexp
}

// NewExcludeSpeakersMiddleware creates a middleware that drops the records of speakers whose
// IDs match any pattern, e.g. procedurally spawned NPCs that should not outlive a session.
// Dialogues left without speakers are dropped too. The in-memory records are not modified.
func NewExcludeSpeakersMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.HistoryStore) ports.HistoryStore {
		return &excludeMiddleware{next: next, patterns: patterns}
	}
}

func (m *excludeMiddleware) Save(ctx context.Context, slotID string, h domain.Histories) error {
	cloned := h.Clone()
	for dialogueID, dh := range cloned {
		for speakerID := range dh.Speakers {
			if m.excluded(speakerID) {
				delete(dh.Speakers, speakerID)
			}
		}
		if len(dh.Speakers) == 0 {
			delete(cloned, dialogueID)
		}
	}
	return m.next.Save(ctx, slotID, cloned)
}

func (m *excludeMiddleware) excluded(speakerID string) bool {
	for _, p := range m.patterns {
		if p.MatchString(speakerID) {
			return true
		}
	}
	return false
}

func (m *excludeMiddleware) Load(ctx context.Context, slotID string) (domain.Histories, error) {
	return m.next.Load(ctx, slotID)
}

func (m *excludeMiddleware) Delete(ctx context.Context, slotID string) error {
	return m.next.Delete(ctx, slotID)
}

func (m *excludeMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
