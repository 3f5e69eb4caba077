package compiler

import (
	"fmt"
	"strings"

	"github.com/aretw0/dialoguetree/pkg/domain"
)

// CompileError lists every node that failed validation.
type CompileError struct {
	DialogueID  string
	Diagnostics []domain.Diagnostic
}

func (e *CompileError) Error() string {
	parts := make([]string, len(e.Diagnostics))
	for i, d := range e.Diagnostics {
		parts[i] = d.String()
	}
	return fmt.Sprintf("dialogue %q failed to compile: %s", e.DialogueID, strings.Join(parts, "; "))
}

// NodeIDs returns the offending node IDs in diagnostic order, without duplicates.
func (e *CompileError) NodeIDs() []domain.NodeID {
	seen := make(map[domain.NodeID]bool)
	var ids []domain.NodeID
	for _, d := range e.Diagnostics {
		if d.NodeID == "" || seen[d.NodeID] {
			continue
		}
		seen[d.NodeID] = true
		ids = append(ids, d.NodeID)
	}
	return ids
}
