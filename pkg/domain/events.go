package domain

import (
	"context"
	"time"
)

// EventType defines the category of a lifecycle event.
type EventType string

const (
	EventDialogueStarted EventType = "dialogue_started"
	EventDialogueEnded   EventType = "dialogue_ended"
	EventSpeechDisplayed EventType = "speech_displayed"
	EventNodeEnter       EventType = "node_enter"
	EventOptionSelected  EventType = "option_selected"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp  time.Time `json:"timestamp"`
	Type       EventType `json:"type"`
	DialogueID string    `json:"dialogue_id"`
}

// DialogueEvent is emitted when a session starts or ends.
type DialogueEvent struct {
	EventBase
	StartNode NodeID `json:"start_node,omitempty"`
}

// SpeechEvent is emitted after a speech has been handed to the controller.
type SpeechEvent struct {
	EventBase
	NodeID    NodeID        `json:"node_id"`
	Details   SpeechDetails `json:"details"`
	Variation int           `json:"variation"`
}

// NodeEvent is emitted each time traversal enters a node.
type NodeEvent struct {
	EventBase
	NodeID NodeID `json:"node_id"`
	Kind   Kind   `json:"kind"`
}

// OptionEvent is emitted when a choice is accepted.
type OptionEvent struct {
	EventBase
	NodeID NodeID `json:"node_id"`
	Index  int    `json:"index"`
	Target NodeID `json:"target"`
}

// LifecycleHooks defines callbacks for observability and game-side notifications.
// Any hook may be nil.
type LifecycleHooks struct {
	OnDialogueStarted func(context.Context, *DialogueEvent)
	OnDialogueEnded   func(context.Context, *DialogueEvent)
	OnSpeechDisplayed func(context.Context, *SpeechEvent)
	OnNodeEnter       func(context.Context, *NodeEvent)
	OnOptionSelected  func(context.Context, *OptionEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnDialogueStarted: chain(h.OnDialogueStarted, other.OnDialogueStarted),
		OnDialogueEnded:   chain(h.OnDialogueEnded, other.OnDialogueEnded),
		OnSpeechDisplayed: chain(h.OnSpeechDisplayed, other.OnSpeechDisplayed),
		OnNodeEnter:       chain(h.OnNodeEnter, other.OnNodeEnter),
		OnOptionSelected:  chain(h.OnOptionSelected, other.OnOptionSelected),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
