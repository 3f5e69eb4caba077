package runner

import (
	"context"

	"github.com/aretw0/dialoguetree/pkg/domain"
)

// FrameType categorizes what a Frame shows.
type FrameType string

const (
	FrameOpen           FrameType = "open"
	FrameSpeech         FrameType = "speech"
	FrameOptions        FrameType = "options"
	FrameGesture        FrameType = "gesture"
	FrameAudio          FrameType = "audio"
	FrameMissingSpeaker FrameType = "missing_speaker"
	FrameClose          FrameType = "close"
)

// Frame is one presentation step emitted by the Console.
type Frame struct {
	Type FrameType `json:"type"`

	// Speaker is the display name of the speaker (speech, gesture, audio).
	Speaker string `json:"speaker,omitempty"`
	Role    string `json:"role,omitempty"`
	Title   string `json:"title,omitempty"`
	Text    string `json:"text,omitempty"`
	CanSkip bool   `json:"can_skip,omitempty"`

	// Clip is the audio clip (audio) or gesture tag (gesture).
	Clip string `json:"clip,omitempty"`

	Options []OptionView `json:"options,omitempty"`
}

// OptionView is a menu entry as presented. Number is 1-based.
type OptionView struct {
	Number  int           `json:"number"`
	Label   string        `json:"label"`
	Node    domain.NodeID `json:"node"`
	Locked  bool          `json:"locked,omitempty"`
	Message string        `json:"message,omitempty"`
}

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
type IOHandler interface {
	// Output presents one frame.
	Output(ctx context.Context, frame Frame) error

	// Input reads a command from the user.
	Input(ctx context.Context) (string, error)

	// SystemOutput presents a meta-message to the user (e.g. errors, status updates).
	// This is distinct from dialogue content.
	SystemOutput(ctx context.Context, msg string) error
}

// optionViews numbers options and picks their label: the title, else the first variation.
func optionViews(options []domain.Option) []OptionView {
	views := make([]OptionView, len(options))
	for i, opt := range options {
		label := opt.Details.Title
		if label == "" && len(opt.Details.Variations) > 0 {
			label = opt.Details.Variations[0].Text
		}
		views[i] = OptionView{
			Number:  i + 1,
			Label:   label,
			Node:    opt.Node,
			Locked:  opt.Locked,
			Message: opt.Message,
		}
	}
	return views
}
