package runner

import (
	"context"
	"strings"
	"sync"

	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/ports"
)

// Console is a ports.Controller that forwards every display call to an IOHandler as a Frame.
// Controller calls cannot fail, so the first output error is kept and reported by Err.
type Console struct {
	handler IOHandler

	mu      sync.Mutex
	open    bool
	options []OptionView
	canSkip bool
	err     error
}

var _ ports.Controller = (*Console)(nil)

// NewConsole creates a console writing to handler.
func NewConsole(handler IOHandler) *Console {
	return &Console{handler: handler}
}

// Handler returns the handler frames are written to.
func (c *Console) Handler() IOHandler {
	return c.handler
}

func (c *Console) emit(frame Frame) {
	if err := c.handler.Output(context.Background(), frame); err != nil && c.err == nil {
		c.err = err
	}
}

// CanOpenDisplay reports true while no dialogue is shown.
func (c *Console) CanOpenDisplay() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.open
}

func (c *Console) OpenDisplay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = true
	c.options = nil
	c.emit(Frame{Type: FrameOpen})
}

func (c *Console) CloseDisplay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.open {
		return
	}
	c.open = false
	c.options = nil
	c.emit(Frame{Type: FrameClose})
}

func (c *Console) DisplaySpeech(details domain.SpeechDetails, speaker ports.Speaker, variation int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = nil
	c.canSkip = details.CanSkip

	frame := Frame{
		Type:    FrameSpeech,
		Role:    details.Role,
		Title:   details.Title,
		CanSkip: details.CanSkip,
	}
	if speaker != nil {
		frame.Speaker = speaker.DialogueName()
	}
	if variation >= 0 && variation < len(details.Variations) && !details.IgnoreContent {
		frame.Text = details.Variations[variation].Text
	}
	c.emit(frame)
}

func (c *Console) DisplayOptions(options []domain.Option) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.options = optionViews(options)
	c.emit(Frame{Type: FrameOptions, Options: c.options})
}

func (c *Console) HandleMissingSpeaker(role string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.emit(Frame{Type: FrameMissingSpeaker, Role: role})
}

// Options returns the menu currently shown, if any.
func (c *Console) Options() []OptionView {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.options
}

// CanSkip reports whether the last speech shown may be skipped.
func (c *Console) CanSkip() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSkip
}

// Err returns the first error the handler reported.
func (c *Console) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Cast creates one Actor per declared role of dlg. The Player role is played by the player.
func (c *Console) Cast(dlg *domain.Dialogue) []ports.Speaker {
	speakers := make([]ports.Speaker, 0, len(dlg.Roles))
	for _, role := range dlg.Roles {
		speakers = append(speakers, NewActor(c, strings.ToLower(role), role, role == domain.RolePlayer))
	}
	return speakers
}

// Actor is a speaker that reports gestures and audio to a Console.
type Actor struct {
	console *Console
	id      string
	name    string
	player  bool
	gesture string
	tags    []string
}

var (
	_ ports.Speaker  = (*Actor)(nil)
	_ ports.Gesturer = (*Actor)(nil)
)

// NewActor creates a speaker named name.
func NewActor(console *Console, id, name string, player bool) *Actor {
	return &Actor{console: console, id: id, name: name, player: player}
}

func (a *Actor) SpeakerID() string { return a.id }
func (a *Actor) DialogueName() string { return a.name }
func (a *Actor) IsPlayer() bool { return a.player }
func (a *Actor) OnDialogueStarted(string) {}
func (a *Actor) OnDialogueEnded(string) {}
func (a *Actor) Stop() {}

func (a *Actor) PlayAudio(clip string) {
	a.report(Frame{Type: FrameAudio, Speaker: a.name, Clip: clip})
}

// SetGameplayTags keeps the tags; Tags returns them.
func (a *Actor) SetGameplayTags(tags []string) {
	a.tags = append(a.tags[:0], tags...)
}

// Tags returns the gameplay tags currently applied.
func (a *Actor) Tags() []string { return a.tags }

func (a *Actor) StartGesture(tag string) {
	a.gesture = tag
	a.report(Frame{Type: FrameGesture, Speaker: a.name, Clip: tag})
}

func (a *Actor) StopGesture() { a.gesture = "" }

// Gesture returns the gesture being played, or "".
func (a *Actor) Gesture() string { return a.gesture }

func (a *Actor) report(frame Frame) {
	a.console.mu.Lock()
	defer a.console.mu.Unlock()
	a.console.emit(frame)
}
