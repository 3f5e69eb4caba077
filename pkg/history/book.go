// Package history keeps the per-speaker visitation records consulted when a dialogue resumes.
//
// Records are keyed by dialogue ID and then by a stable speaker identity, never by role,
// so reassigning roles between sessions does not fragment history. Player speakers are
// filtered out by the caller before their IDs reach the Book.
package history

import (
	"sync"

	"github.com/aretw0/dialoguetree/pkg/domain"
)

// Book is an in-memory history store, safe for concurrent use. The zero value is an
// empty book ready to use.
type Book struct {
	mu      sync.RWMutex
	records domain.Histories
}

// New creates an empty book.
func New() *Book {
	return &Book{records: make(domain.Histories)}
}

// record returns the record of speakerID in dialogueID, creating it when create is set.
// Lookups never mutate, so they are safe under the read lock.
func (b *Book) record(dialogueID, speakerID string, create bool) *domain.SpeakerHistory {
	dh, ok := b.records[dialogueID]
	if !ok {
		if !create {
			return nil
		}
		if b.records == nil {
			b.records = make(domain.Histories)
		}
		dh = &domain.DialogueHistory{Speakers: make(map[string]*domain.SpeakerHistory)}
		b.records[dialogueID] = dh
	}
	sh, ok := dh.Speakers[speakerID]
	if !create {
		return sh
	}
	if dh.Speakers == nil {
		dh.Speakers = make(map[string]*domain.SpeakerHistory)
	}
	if !ok || sh == nil {
		sh = &domain.SpeakerHistory{}
		dh.Speakers[speakerID] = sh
	}
	if sh.Visited == nil {
		sh.Visited = make(domain.NodeSet)
	}
	return sh
}

// MarkVisited adds node to the visited set of every listed speaker.
func (b *Book) MarkVisited(dialogueID string, node domain.NodeID, speakerIDs []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range speakerIDs {
		b.record(dialogueID, id, true).Visited.Add(node)
	}
}

// MarkUnvisited removes node from the visited set of every listed speaker.
func (b *Book) MarkUnvisited(dialogueID string, node domain.NodeID, speakerIDs []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range speakerIDs {
		if sh := b.record(dialogueID, id, false); sh != nil {
			sh.Visited.Remove(node)
		}
	}
}

// WasVisited reports whether any listed speaker visited node.
func (b *Book) WasVisited(dialogueID string, node domain.NodeID, speakerIDs []string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, id := range speakerIDs {
		if sh := b.record(dialogueID, id, false); sh != nil && sh.Visited.Has(node) {
			return true
		}
	}
	return false
}

// ClearDialogue forgets the visits and resume point of the listed speakers in one dialogue.
func (b *Book) ClearDialogue(dialogueID string, speakerIDs []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	dh, ok := b.records[dialogueID]
	if !ok {
		return
	}
	for _, id := range speakerIDs {
		delete(dh.Speakers, id)
	}
	if len(dh.Speakers) == 0 {
		delete(b.records, dialogueID)
	}
}

// SetResumeNode records where the listed speakers should pick the dialogue up next time.
// An empty node clears the resume point.
func (b *Book) SetResumeNode(dialogueID string, node domain.NodeID, speakerIDs []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range speakerIDs {
		if node == "" {
			if sh := b.record(dialogueID, id, false); sh != nil {
				sh.ResumeNodeID = ""
			}
			continue
		}
		b.record(dialogueID, id, true).ResumeNodeID = node
	}
}

// ResumeNode returns the first non-empty resume point among the listed speakers, in order.
// A stored node for which exists reports false is skipped. It returns "" when nothing applies.
func (b *Book) ResumeNode(dialogueID string, speakerIDs []string, exists func(domain.NodeID) bool) domain.NodeID {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, id := range speakerIDs {
		sh := b.record(dialogueID, id, false)
		if sh == nil || sh.ResumeNodeID == "" {
			continue
		}
		if exists != nil && !exists(sh.ResumeNodeID) {
			continue
		}
		return sh.ResumeNodeID
	}
	return ""
}

// Export returns a deep copy of every record.
func (b *Book) Export() domain.Histories {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.records.Clone()
}

// Import replaces every record with a copy of h.
func (b *Book) Import(h domain.Histories) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if h == nil {
		b.records = make(domain.Histories)
		return
	}
	b.records = h.Clone()
}

// Clear forgets everything.
func (b *Book) Clear() {
	b.Import(nil)
}
