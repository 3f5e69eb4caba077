package ports

import "github.com/aretw0/dialoguetree/pkg/domain"

// Controller is the presentation surface driving a dialogue session.
// Input (option selection, skip) flows back into the session from the host's own input handling.
type Controller interface {
	// CanOpenDisplay reports whether the display may be opened right now.
	CanOpenDisplay() bool
	// OpenDisplay shows the dialogue UI. It is only called after CanOpenDisplay returned true.
	OpenDisplay()
	// CloseDisplay hides the dialogue UI.
	CloseDisplay()
	// DisplaySpeech shows one speech line. variation indexes details.Variations.
	DisplaySpeech(details domain.SpeechDetails, speaker Speaker, variation int)
	// DisplayOptions shows a choice menu. Locked options are shown but cannot be selected.
	DisplayOptions(options []domain.Option)
	// HandleMissingSpeaker is called for every declared role left unbound when a session opens.
	HandleMissingSpeaker(role string)
}

// Speaker is a participant bound to a role for the duration of a session.
type Speaker interface {
	// SpeakerID is a stable identity used to key visitation history.
	SpeakerID() string
	// DialogueName is the role name this speaker fills by default.
	DialogueName() string
	// IsPlayer reports whether the speaker is the player. Players keep no history.
	IsPlayer() bool

	OnDialogueStarted(dialogueID string)
	OnDialogueEnded(dialogueID string)

	// Stop interrupts any audio the speaker is playing.
	Stop()
	// PlayAudio plays the audio clip of a speech variation.
	PlayAudio(clip string)
	// SetGameplayTags replaces the transient tags applied while the speaker talks.
	// An empty set clears them.
	SetGameplayTags(tags []string)
}

// Gesturer is implemented by speakers that can play gestures.
type Gesturer interface {
	StartGesture(tag string)
	StopGesture()
}
