package dialoguetree

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"maps"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"github.com/aretw0/dialoguetree/internal/logging"
	"github.com/aretw0/dialoguetree/internal/runtime"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/history"
	"github.com/aretw0/dialoguetree/pkg/ports"
)

// Director is the game-side entry point. It owns the visitation records, picks where a
// dialogue starts, binds speakers to roles and forwards player input to the running session.
// A Director plays one dialogue at a time and is not safe for concurrent use.
type Director struct {
	controller ports.Controller
	book       *history.Book
	dispatcher ports.EventDispatcher
	hooks      domain.LifecycleHooks
	logger     *slog.Logger
	rand       *rand.Rand
	stepLimit  int

	session *runtime.Session
}

// Option configures a Director.
type Option func(*Director)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Director) {
		d.logger = logger
	}
}

// WithHooks registers lifecycle callbacks.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(d *Director) {
		d.hooks = hooks
	}
}

// WithHistory shares an existing record book instead of a fresh one.
func WithHistory(book *history.Book) Option {
	return func(d *Director) {
		d.book = book
	}
}

// WithDispatcher sets the handler of node events, usually a *registry.Registry.
func WithDispatcher(dispatcher ports.EventDispatcher) Option {
	return func(d *Director) {
		d.dispatcher = dispatcher
	}
}

// WithRand sets the random source for speech variations and gestures.
func WithRand(r *rand.Rand) Option {
	return func(d *Director) {
		d.rand = r
	}
}

// WithStepLimit bounds how many nodes one call may enter without waiting for input.
func WithStepLimit(n int) Option {
	return func(d *Director) {
		d.stepLimit = n
	}
}

// New creates a Director presenting through controller.
func New(controller ports.Controller, opts ...Option) *Director {
	d := &Director{
		controller: controller,
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.book == nil {
		d.book = history.New()
	}
	return d
}

// Start plays dlg with speakers bound by their dialogue names. Speakers sharing a name get
// a numeric suffix ("Guard", "Guard2"); dialogues using generic names bind them as
// "Speaker1".."SpeakerN" in the given order. With resume, the first stored resume node of
// any speaker is used instead of the root.
func (d *Director) Start(ctx context.Context, dlg *domain.Dialogue, speakers []ports.Speaker, resume bool) error {
	named, err := assignRoles(dlg, speakers, true)
	if err != nil {
		d.logger.Error("could not start dialogue", "dialogue", dialogueID(dlg), "error", err)
		return err
	}
	return d.StartWithNames(ctx, dlg, named, resume)
}

// StartWithNames plays dlg with speakers already keyed by role.
func (d *Director) StartWithNames(ctx context.Context, dlg *domain.Dialogue, speakers map[string]ports.Speaker, resume bool) error {
	if err := d.validate(dlg); err != nil {
		return err
	}
	root, _ := dlg.RootNode()
	start := root.ID
	if resume {
		if id := d.book.ResumeNode(dlg.ID, historyIDs(dlg, speakers), dlg.HasNode); id != "" {
			start = id
		}
	}
	return d.open(ctx, dlg, start, speakers)
}

// StartAt plays dlg from node. Speakers must have distinct dialogue names.
func (d *Director) StartAt(ctx context.Context, dlg *domain.Dialogue, node domain.NodeID, speakers []ports.Speaker) error {
	named, err := assignRoles(dlg, speakers, false)
	if err != nil {
		d.logger.Error("could not start dialogue", "dialogue", dialogueID(dlg), "node_id", node, "error", err)
		return err
	}
	return d.StartWithNamesAt(ctx, dlg, node, named)
}

// StartWithNamesAt plays dlg from node with speakers already keyed by role.
func (d *Director) StartWithNamesAt(ctx context.Context, dlg *domain.Dialogue, node domain.NodeID, speakers map[string]ports.Speaker) error {
	if err := d.validate(dlg); err != nil {
		return err
	}
	if !dlg.HasNode(node) {
		err := fmt.Errorf("start node %q: %w", node, domain.ErrNodeNotFound)
		d.logger.Error("could not start dialogue", "dialogue", dlg.ID, "node_id", node, "error", err)
		return err
	}
	return d.open(ctx, dlg, node, speakers)
}

func (d *Director) validate(dlg *domain.Dialogue) error {
	var err error
	switch {
	case dlg == nil:
		err = domain.ErrNotCompiled
	case d.controller == nil:
		err = domain.ErrNoController
	default:
		err = dlg.CanPlay()
	}
	if err == nil && !d.controller.CanOpenDisplay() {
		err = domain.ErrDisplayUnavailable
	}
	if err != nil {
		d.logger.Error("could not start dialogue", "dialogue", dialogueID(dlg), "error", err)
	}
	return err
}

// open ends any running dialogue, notifies the speakers, opens the display and enters start.
func (d *Director) open(ctx context.Context, dlg *domain.Dialogue, start domain.NodeID, speakers map[string]ports.Speaker) error {
	d.End(ctx)

	for _, sp := range orderedSpeakers(dlg, speakers) {
		sp.OnDialogueStarted(dlg.ID)
	}
	d.controller.OpenDisplay()
	if d.hooks.OnDialogueStarted != nil {
		d.hooks.OnDialogueStarted(ctx, &domain.DialogueEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventDialogueStarted, DialogueID: dlg.ID},
			StartNode: start,
		})
	}

	d.session = runtime.New(dlg, d.sessionOptions()...)
	d.logger.Info("dialogue started", "dialogue", dlg.ID, "node_id", start)
	return d.session.OpenAt(ctx, start, d.controller, speakers)
}

func (d *Director) sessionOptions() []runtime.Option {
	opts := []runtime.Option{
		runtime.WithLogger(d.logger),
		runtime.WithHistory(d.book),
		runtime.WithHooks(d.hooks),
		runtime.WithStepLimit(d.stepLimit),
	}
	if d.dispatcher != nil {
		opts = append(opts, runtime.WithDispatcher(d.dispatcher))
	}
	if d.rand != nil {
		opts = append(opts, runtime.WithRand(d.rand))
	}
	return opts
}

// current returns the playing session or nil.
func (d *Director) current() *runtime.Session {
	if d.session == nil || !d.session.IsPlaying() {
		return nil
	}
	return d.session
}

// IsPlaying reports whether a dialogue is running.
func (d *Director) IsPlaying() bool { return d.current() != nil }

// Current returns the running dialogue, or nil.
func (d *Director) Current() *domain.Dialogue {
	if s := d.current(); s != nil {
		return s.Dialogue()
	}
	return nil
}

// ActiveNode returns the node the running dialogue sits on, or "".
func (d *Director) ActiveNode() domain.NodeID {
	if s := d.current(); s != nil {
		return s.ActiveNode()
	}
	return ""
}

// SelectOption forwards a menu choice.
func (d *Director) SelectOption(ctx context.Context, index int) error {
	s := d.current()
	if s == nil {
		return domain.ErrSessionClosed
	}
	return s.SelectOption(ctx, index)
}

// Skip skips the active speech if it allows skipping.
func (d *Director) Skip(ctx context.Context) error {
	s := d.current()
	if s == nil {
		return domain.ErrSessionClosed
	}
	return s.Skip(ctx)
}

// Continue signals that presentation of the active speech finished.
func (d *Director) Continue(ctx context.Context) error {
	s := d.current()
	if s == nil {
		return domain.ErrSessionClosed
	}
	return s.Continue(ctx)
}

// CheckConditions re-evaluates what the active speech waits on.
func (d *Director) CheckConditions(ctx context.Context) error {
	s := d.current()
	if s == nil {
		return domain.ErrSessionClosed
	}
	return s.CheckConditions(ctx)
}

// End stops the running dialogue. It does nothing when idle.
func (d *Director) End(ctx context.Context) {
	if s := d.current(); s != nil {
		s.End(ctx)
	}
}

// SetSpeaker rebinds role in the running dialogue.
func (d *Director) SetSpeaker(role string, sp ports.Speaker) error {
	s := d.current()
	if s == nil {
		return domain.ErrSessionClosed
	}
	if sp == nil {
		return domain.ErrInvalidSpeaker
	}
	return s.SetSpeaker(role, sp)
}

// SpeakerInCurrent reports whether sp is bound to any role of the running dialogue.
func (d *Director) SpeakerInCurrent(sp ports.Speaker) bool {
	s := d.current()
	if s == nil || sp == nil {
		return false
	}
	for _, role := range s.Dialogue().Roles {
		if bound, ok := s.Speaker(role); ok && bound == sp {
			return true
		}
	}
	return false
}

// WasVisited reports whether a bound speaker has visited node in the running dialogue.
func (d *Director) WasVisited(node domain.NodeID) bool {
	if s := d.current(); s != nil {
		return s.WasVisited(node)
	}
	return false
}

// MarkVisited sets or clears the visited flag of node in the running dialogue.
func (d *Director) MarkVisited(node domain.NodeID, visited bool) {
	if s := d.current(); s != nil {
		s.MarkVisited(node, visited)
	}
}

// ClearVisits forgets the visits of the bound speakers to the running dialogue.
func (d *Director) ClearVisits() {
	if s := d.current(); s != nil {
		s.ClearVisits()
	}
}

// SetResumeNode records where the running dialogue resumes next time.
func (d *Director) SetResumeNode(node domain.NodeID) {
	if s := d.current(); s != nil {
		s.SetResumeNode(node)
	}
}

// Records returns a copy of every visitation record.
func (d *Director) Records() domain.Histories { return d.book.Export() }

// ImportRecords replaces the visitation records.
func (d *Director) ImportRecords(h domain.Histories) { d.book.Import(h) }

// ClearRecords forgets every visitation record.
func (d *Director) ClearRecords() { d.book.Clear() }

// Save writes the records to slot.
func (d *Director) Save(ctx context.Context, store ports.HistoryStore, slot string) error {
	if err := store.Save(ctx, slot, d.book.Export()); err != nil {
		return fmt.Errorf("failed to save dialogue records to %q: %w", slot, err)
	}
	return nil
}

// Load replaces the records with the contents of slot.
func (d *Director) Load(ctx context.Context, store ports.HistoryStore, slot string) error {
	h, err := store.Load(ctx, slot)
	if err != nil {
		return fmt.Errorf("failed to load dialogue records from %q: %w", slot, err)
	}
	d.book.Import(h)
	return nil
}

// assignRoles keys speakers by role. With suffix, repeated dialogue names are numbered;
// otherwise they are rejected.
func assignRoles(dlg *domain.Dialogue, speakers []ports.Speaker, suffix bool) (map[string]ports.Speaker, error) {
	if len(speakers) == 0 {
		return nil, domain.ErrNoSpeakers
	}
	generic := dlg != nil && dlg.GenericSpeakerNames
	named := make(map[string]ports.Speaker, len(speakers))
	for i, sp := range speakers {
		if sp == nil {
			return nil, fmt.Errorf("speaker %d is nil: %w", i, domain.ErrInvalidSpeaker)
		}
		name := sp.DialogueName()
		if name == "" {
			return nil, fmt.Errorf("speaker %q has no dialogue name: %w", sp.SpeakerID(), domain.ErrInvalidSpeaker)
		}
		switch {
		case generic && suffix:
			name = fmt.Sprintf("Speaker%d", i+1)
		case named[name] == nil:
		case !suffix:
			return nil, fmt.Errorf("dialogue name %q: %w", name, domain.ErrDuplicateSpeaker)
		default:
			same := 0
			for key := range named {
				if strings.Contains(key, name) {
					same++
				}
			}
			name = fmt.Sprintf("%s%d", name, same+1)
		}
		named[name] = sp
	}
	return named, nil
}

// orderedSpeakers returns each distinct speaker once, declared roles first.
func orderedSpeakers(dlg *domain.Dialogue, speakers map[string]ports.Speaker) []ports.Speaker {
	keys := slices.SortedFunc(maps.Keys(speakers), func(a, b string) int {
		ia, ib := slices.Index(dlg.Roles, a), slices.Index(dlg.Roles, b)
		if ia < 0 {
			ia = len(dlg.Roles)
		}
		if ib < 0 {
			ib = len(dlg.Roles)
		}
		return cmp.Or(cmp.Compare(ia, ib), cmp.Compare(a, b))
	})
	out := make([]ports.Speaker, 0, len(keys))
	for _, k := range keys {
		if sp := speakers[k]; sp != nil && !slices.Contains(out, sp) {
			out = append(out, sp)
		}
	}
	return out
}

// historyIDs returns the identities used to look up resume nodes.
func historyIDs(dlg *domain.Dialogue, speakers map[string]ports.Speaker) []string {
	var ids []string
	for _, sp := range orderedSpeakers(dlg, speakers) {
		if sp.IsPlayer() {
			continue
		}
		if id := sp.SpeakerID(); id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	return ids
}

func dialogueID(dlg *domain.Dialogue) string {
	if dlg == nil {
		return ""
	}
	return dlg.ID
}
