package domain

import (
	"encoding/json"
	"slices"
)

// NodeSet is a set of visited node IDs. It serializes as a sorted JSON array.
type NodeSet map[NodeID]bool

// Add inserts id.
func (s NodeSet) Add(id NodeID) {
	s[id] = true
}

// Remove deletes id.
func (s NodeSet) Remove(id NodeID) {
	delete(s, id)
}

// Has reports whether id is in the set.
func (s NodeSet) Has(id NodeID) bool {
	return s[id]
}

// Sorted returns the members in sorted order.
func (s NodeSet) Sorted() []NodeID {
	out := make([]NodeID, 0, len(s))
	for id, ok := range s {
		if ok {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}

func (s NodeSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

func (s *NodeSet) UnmarshalJSON(data []byte) error {
	var ids []NodeID
	if err := json.Unmarshal(data, &ids); err != nil {
		return err
	}
	set := make(NodeSet, len(ids))
	for _, id := range ids {
		set.Add(id)
	}
	*s = set
	return nil
}

// SpeakerHistory is the record kept for one speaker within one dialogue.
type SpeakerHistory struct {
	Visited      NodeSet `json:"visited" msgpack:"visited"`
	ResumeNodeID NodeID  `json:"resume_node_id,omitempty" msgpack:"resume_node_id,omitempty"`
}

// DialogueHistory holds the records of every speaker that took part in one dialogue.
type DialogueHistory struct {
	Speakers map[string]*SpeakerHistory `json:"speakers" msgpack:"speakers"`
}

// Histories is the persisted layout: dialogue ID -> speaker ID -> record.
type Histories map[string]*DialogueHistory

// Clone returns a deep copy.
func (h Histories) Clone() Histories {
	out := make(Histories, len(h))
	for dialogueID, dh := range h {
		if dh == nil {
			continue
		}
		copied := &DialogueHistory{Speakers: make(map[string]*SpeakerHistory, len(dh.Speakers))}
		for speakerID, sh := range dh.Speakers {
			if sh == nil {
				continue
			}
			visited := make(NodeSet, len(sh.Visited))
			for id, ok := range sh.Visited {
				if ok {
					visited[id] = true
				}
			}
			copied.Speakers[speakerID] = &SpeakerHistory{Visited: visited, ResumeNodeID: sh.ResumeNodeID}
		}
		out[dialogueID] = copied
	}
	return out
}
