package runtime

import "github.com/aretw0/dialoguetree/pkg/domain"

// jumpBack holds at most one pending return point. It is consumed on read.
type jumpBack struct {
	dialogueID string
	node       domain.NodeID
}

func (j *jumpBack) set(dialogueID string, node domain.NodeID) {
	j.dialogueID = dialogueID
	j.node = node
}

// take returns the pending node of dialogueID and clears it.
func (j *jumpBack) take(dialogueID string) (domain.NodeID, bool) {
	if j.node == "" || j.dialogueID != dialogueID {
		return "", false
	}
	node := j.node
	j.clear()
	return node, true
}

func (j *jumpBack) clear() {
	*j = jumpBack{}
}
