package testutils

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/ports"
)

// CallLog records calls made on fakes in order, so tests can assert on ordering
// across the controller, the speakers and the lifecycle hooks.
type CallLog struct {
	mu    sync.Mutex
	calls []string
}

// Add appends a formatted entry.
func (l *CallLog) Add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

// Calls returns a copy of every entry.
func (l *CallLog) Calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.Clone(l.calls)
}

// Count returns how many entries equal call.
func (l *CallLog) Count(call string) int {
	n := 0
	for _, c := range l.Calls() {
		if c == call {
			n++
		}
	}
	return n
}

// Reset forgets every entry.
func (l *CallLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = nil
}

// Hooks returns lifecycle hooks that log into l.
func (l *CallLog) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogueStarted: func(_ context.Context, e *domain.DialogueEvent) { l.Add("hook.DialogueStarted:%s", e.StartNode) },
		OnDialogueEnded:   func(_ context.Context, e *domain.DialogueEvent) { l.Add("hook.DialogueEnded") },
		OnSpeechDisplayed: func(_ context.Context, e *domain.SpeechEvent) { l.Add("hook.SpeechDisplayed:%s", e.NodeID) },
		OnOptionSelected:  func(_ context.Context, e *domain.OptionEvent) { l.Add("hook.OptionSelected:%d", e.Index) },
	}
}

// Controller is a recording ports.Controller.
type Controller struct {
	Log *CallLog
	// Closed makes CanOpenDisplay report false.
	Closed bool

	Options [][]domain.Option
	Missing []string

	// OnOptions and OnSpeech let a test react to presentation calls (e.g. select right away).
	OnOptions func(options []domain.Option)
	OnSpeech  func(details domain.SpeechDetails, speaker ports.Speaker, variation int)
}

// NewController creates a controller logging into log.
func NewController(log *CallLog) *Controller {
	return &Controller{Log: log}
}

func (c *Controller) CanOpenDisplay() bool {
	c.Log.Add("controller.CanOpenDisplay")
	return !c.Closed
}

func (c *Controller) OpenDisplay() { c.Log.Add("controller.OpenDisplay") }
func (c *Controller) CloseDisplay() { c.Log.Add("controller.CloseDisplay") }

func (c *Controller) DisplaySpeech(details domain.SpeechDetails, speaker ports.Speaker, variation int) {
	text := ""
	if variation >= 0 && variation < len(details.Variations) {
		text = details.Variations[variation].Text
	}
	c.Log.Add("controller.DisplaySpeech:%s:%s", speaker.SpeakerID(), text)
	if c.OnSpeech != nil {
		c.OnSpeech(details, speaker, variation)
	}
}

func (c *Controller) DisplayOptions(options []domain.Option) {
	c.Log.Add("controller.DisplayOptions:%d", len(options))
	c.Options = append(c.Options, options)
	if c.OnOptions != nil {
		c.OnOptions(options)
	}
}

func (c *Controller) HandleMissingSpeaker(role string) {
	c.Log.Add("controller.HandleMissingSpeaker:%s", role)
	c.Missing = append(c.Missing, role)
}

// LastOptions returns the most recent menu, or nil.
func (c *Controller) LastOptions() []domain.Option {
	if len(c.Options) == 0 {
		return nil
	}
	return c.Options[len(c.Options)-1]
}

// Speaker is a recording ports.Speaker that also plays gestures.
type Speaker struct {
	ID     string
	Name   string
	Player bool
	Log    *CallLog

	Tags     []string
	Audio    []string
	Gestures []string
}

// NewSpeaker creates a non-player speaker whose dialogue name is name.
func NewSpeaker(log *CallLog, id, name string) *Speaker {
	return &Speaker{ID: id, Name: name, Log: log}
}

// NewPlayer creates a player speaker.
func NewPlayer(log *CallLog, id string) *Speaker {
	return &Speaker{ID: id, Name: domain.RolePlayer, Player: true, Log: log}
}

func (s *Speaker) SpeakerID() string { return s.ID }
func (s *Speaker) DialogueName() string { return s.Name }
func (s *Speaker) IsPlayer() bool { return s.Player }

func (s *Speaker) OnDialogueStarted(dialogueID string) {
	s.Log.Add("speaker(%s).OnDialogueStarted", s.ID)
}

func (s *Speaker) OnDialogueEnded(dialogueID string) {
	s.Log.Add("speaker(%s).OnDialogueEnded", s.ID)
}

func (s *Speaker) Stop() { s.Log.Add("speaker(%s).Stop", s.ID) }

func (s *Speaker) PlayAudio(clip string) {
	s.Log.Add("speaker(%s).PlayAudio:%s", s.ID, clip)
	s.Audio = append(s.Audio, clip)
}

func (s *Speaker) SetGameplayTags(tags []string) {
	s.Log.Add("speaker(%s).SetGameplayTags:%d", s.ID, len(tags))
	s.Tags = slices.Clone(tags)
}

func (s *Speaker) StartGesture(tag string) {
	s.Log.Add("speaker(%s).StartGesture:%s", s.ID, tag)
	s.Gestures = append(s.Gestures, tag)
}

func (s *Speaker) StopGesture() { s.Log.Add("speaker(%s).StopGesture", s.ID) }
