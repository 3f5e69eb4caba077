package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"time"

	"github.com/aretw0/dialoguetree/internal/logging"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/ports"
	"github.com/aretw0/dialoguetree/pkg/transition"
)

// DefaultStepLimit bounds how many nodes one call may enter without waiting for input.
const DefaultStepLimit = 10000

// History records visits. *history.Book implements it.
type History interface {
	MarkVisited(dialogueID string, node domain.NodeID, speakerIDs []string)
	MarkUnvisited(dialogueID string, node domain.NodeID, speakerIDs []string)
	WasVisited(dialogueID string, node domain.NodeID, speakerIDs []string) bool
	ClearDialogue(dialogueID string, speakerIDs []string)
	SetResumeNode(dialogueID string, node domain.NodeID, speakerIDs []string)
}

// Session plays one dialogue. It is not safe for concurrent use; all calls are expected
// from the goroutine handling game input.
type Session struct {
	dialogue   *domain.Dialogue
	history    History
	dispatcher ports.EventDispatcher
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	rand       *rand.Rand
	stepLimit  int
	now        func() time.Time

	controller ports.Controller
	speakers   map[string]ports.Speaker
	playing    bool

	active   *domain.Node
	strategy transition.Strategy
	gestures []ports.Gesturer
	jumpBack jumpBack

	// generation changes on every End; entered changes on every node entry.
	// Both let a running loop notice that a callback ended or moved the session.
	generation uint64
	entered    uint64
}

// Option configures a Session.
type Option func(*Session)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		s.logger = l
	}
}

// WithHistory sets where visits are recorded.
func WithHistory(h History) Option {
	return func(s *Session) {
		s.history = h
	}
}

// WithDispatcher sets the handler of node events.
func WithDispatcher(d ports.EventDispatcher) Option {
	return func(s *Session) {
		s.dispatcher = d
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = h
	}
}

// WithRand sets the source used for speech variations and gesture chances.
func WithRand(r *rand.Rand) Option {
	return func(s *Session) {
		s.rand = r
	}
}

// WithStepLimit bounds the nodes entered per call. Non-positive values keep the default.
func WithStepLimit(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.stepLimit = n
		}
	}
}

// New creates an idle session for d.
func New(d *domain.Dialogue, opts ...Option) *Session {
	s := &Session{
		dialogue:  d,
		logger:    logging.NewNop(),
		rand:      rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		stepLimit: DefaultStepLimit,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Dialogue returns the played dialogue.
func (s *Session) Dialogue() *domain.Dialogue { return s.dialogue }

// IsPlaying reports whether the session is open.
func (s *Session) IsPlaying() bool { return s.playing }

// ActiveNode returns the ID of the node the session sits on, or "".
func (s *Session) ActiveNode() domain.NodeID {
	if s.active == nil {
		return ""
	}
	return s.active.ID
}

// Speaker returns the speaker bound to role.
func (s *Session) Speaker(role string) (ports.Speaker, bool) {
	sp, ok := s.speakers[role]
	return sp, ok && sp != nil
}

// SetSpeaker binds sp to a declared role of the running session.
func (s *Session) SetSpeaker(role string, sp ports.Speaker) error {
	if !s.dialogue.HasRole(role) {
		return fmt.Errorf("role %q is not declared: %w", role, domain.ErrInvalidSpeaker)
	}
	if s.speakers == nil {
		s.speakers = make(map[string]ports.Speaker)
	}
	s.speakers[role] = sp
	return nil
}

// OpenAt binds the controller and speakers and enters nodeID. Precondition failures are
// logged and returned; the session is left untouched and no callback fires.
func (s *Session) OpenAt(ctx context.Context, nodeID domain.NodeID, controller ports.Controller, speakers map[string]ports.Speaker) error {
	if err := s.canOpen(nodeID, controller); err != nil {
		s.logger.Error("cannot play dialogue", "dialogue", s.dialogue.ID, "node_id", nodeID, "error", err)
		return err
	}

	s.controller = controller
	s.fillSpeakers(speakers)
	s.playing = true
	s.jumpBack.clear()
	s.logger.Debug("dialogue opened", "dialogue", s.dialogue.ID, "node_id", nodeID)

	s.run(ctx, nodeID)
	return nil
}

func (s *Session) canOpen(nodeID domain.NodeID, controller ports.Controller) error {
	if s.dialogue == nil {
		return domain.ErrNotCompiled
	}
	if err := s.dialogue.CanPlay(); err != nil {
		return err
	}
	if controller == nil {
		return domain.ErrNoController
	}
	if !s.dialogue.HasNode(nodeID) {
		return fmt.Errorf("start node %q: %w", nodeID, domain.ErrNodeNotFound)
	}
	if s.playing {
		return domain.ErrSessionActive
	}
	return nil
}

// fillSpeakers binds the supplied speakers to the declared roles and reports every
// declared role left empty to the controller.
func (s *Session) fillSpeakers(speakers map[string]ports.Speaker) {
	s.speakers = make(map[string]ports.Speaker, len(s.dialogue.Roles))
	for role, sp := range speakers {
		if sp == nil {
			continue
		}
		if !s.dialogue.HasRole(role) {
			s.logger.Debug("ignoring speaker for undeclared role", "dialogue", s.dialogue.ID, "role", role)
			continue
		}
		s.speakers[role] = sp
	}
	for _, role := range s.dialogue.Roles {
		if _, ok := s.speakers[role]; !ok {
			s.controller.HandleMissingSpeaker(role)
		}
	}
}

// boundRoles returns the roles with a speaker, in declaration order.
func (s *Session) boundRoles() []string {
	roles := make([]string, 0, len(s.speakers))
	for _, role := range s.dialogue.Roles {
		if sp, ok := s.speakers[role]; ok && sp != nil {
			roles = append(roles, role)
		}
	}
	return roles
}

// End closes the display, notifies the speakers and releases the controller.
// Calling End on an idle session does nothing.
func (s *Session) End(ctx context.Context) {
	if !s.playing {
		return
	}
	s.playing = false
	s.generation++
	s.active = nil
	s.strategy = nil
	s.gestures = nil

	s.controller.CloseDisplay()
	if s.hooks.OnDialogueEnded != nil {
		s.hooks.OnDialogueEnded(ctx, &domain.DialogueEvent{EventBase: s.event(domain.EventDialogueEnded)})
	}

	notified := make([]ports.Speaker, 0, len(s.speakers))
	for _, role := range s.boundRoles() {
		sp := s.speakers[role]
		if slices.Contains(notified, sp) {
			continue
		}
		notified = append(notified, sp)
		sp.OnDialogueEnded(s.dialogue.ID)
		sp.Stop()
		sp.SetGameplayTags(nil)
	}

	s.controller = nil
	s.speakers = nil
	s.jumpBack.clear()
	s.logger.Debug("dialogue ended", "dialogue", s.dialogue.ID)
}

func (s *Session) event(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: s.now(), Type: t, DialogueID: s.dialogue.ID}
}
