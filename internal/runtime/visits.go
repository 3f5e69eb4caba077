package runtime

import (
	"slices"

	"github.com/aretw0/dialoguetree/pkg/domain"
)

// historyIDs returns the identities of the bound non-player speakers.
func (s *Session) historyIDs() []string {
	var ids []string
	for _, role := range s.boundRoles() {
		sp := s.speakers[role]
		if sp.IsPlayer() {
			continue
		}
		if id := sp.SpeakerID(); id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (s *Session) markVisited(node domain.NodeID) {
	if s.history == nil {
		return
	}
	s.history.MarkVisited(s.dialogue.ID, node, s.historyIDs())
}

// WasVisited reports whether any bound non-player speaker has visited node.
// It is false while the session is idle.
func (s *Session) WasVisited(node domain.NodeID) bool {
	if !s.playing || s.history == nil || !s.dialogue.HasNode(node) {
		return false
	}
	return s.history.WasVisited(s.dialogue.ID, node, s.historyIDs())
}

// MarkVisited sets or clears the visited flag of node for the bound speakers.
func (s *Session) MarkVisited(node domain.NodeID, visited bool) {
	if !s.playing || s.history == nil || !s.dialogue.HasNode(node) {
		return
	}
	if visited {
		s.history.MarkVisited(s.dialogue.ID, node, s.historyIDs())
		return
	}
	s.history.MarkUnvisited(s.dialogue.ID, node, s.historyIDs())
}

// ClearVisits forgets every visit of the bound speakers to this dialogue.
func (s *Session) ClearVisits() {
	if !s.playing || s.history == nil {
		return
	}
	s.history.ClearDialogue(s.dialogue.ID, s.historyIDs())
}

// SetResumeNode makes node the starting point the next time this dialogue is resumed.
func (s *Session) SetResumeNode(node domain.NodeID) {
	if !s.playing || s.history == nil || !s.dialogue.HasNode(node) {
		return
	}
	s.history.SetResumeNode(s.dialogue.ID, node, s.historyIDs())
}
