package runtime

import (
	"context"

	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/ports"
	"github.com/aretw0/dialoguetree/pkg/transition"
)

// host exposes a speech node of the session to its strategy.
type host struct {
	s    *Session
	node *domain.Node
}

func (h host) Node() *domain.Node { return h.node }

func (h host) Options() []domain.Option { return h.s.options(h.node) }

func (h host) DisplayOptions(options []domain.Option) {
	if h.s.controller == nil {
		h.s.logger.Error("cannot display options without a controller", "dialogue", h.s.dialogue.ID, "node_id", h.node.ID)
		return
	}
	h.s.controller.DisplayOptions(options)
}

func (s *Session) enterSpeech(ctx context.Context, node *domain.Node) transition.Result {
	s.fire(ctx, node, node.Events)
	if !s.playing {
		return transition.Wait()
	}

	details := node.Speech
	if details == nil {
		invariantViolation(s.logger, "speech node has no content", "dialogue", s.dialogue.ID, "node_id", node.ID)
		return transition.End()
	}
	speaker, ok := s.Speaker(details.Role)
	if !ok {
		s.logger.Error("terminating dialogue early: speaker not present",
			"dialogue", s.dialogue.ID, "node_id", node.ID, "role", details.Role, "error", domain.ErrMissingSpeaker)
		return transition.End()
	}

	if details.HasContent() {
		variation := 0
		if n := len(details.Variations); n > 1 {
			variation = s.rand.IntN(n)
		}
		s.controller.DisplaySpeech(*details, speaker, variation)
		if s.hooks.OnSpeechDisplayed != nil {
			s.hooks.OnSpeechDisplayed(ctx, &domain.SpeechEvent{
				EventBase: s.event(domain.EventSpeechDisplayed),
				NodeID:    node.ID,
				Details:   *details,
				Variation: variation,
			})
		}
		if !s.playing {
			return transition.Wait()
		}
		speaker.Stop()
		if clip := details.Variations[variation].Audio; clip != "" {
			speaker.PlayAudio(clip)
		}
		speaker.SetGameplayTags(details.GameplayTags)
	}

	strategy, err := transition.New(node.Transition)
	if err != nil {
		invariantViolation(s.logger, "speech node is missing its transition", "dialogue", s.dialogue.ID, "node_id", node.ID, "error", err)
		return transition.End()
	}

	s.startGestures(details, speaker)
	s.strategy = strategy
	return strategy.Start(host{s: s, node: node})
}

// startGestures rolls every gesture of the speech and starts the ones that hit.
func (s *Session) startGestures(details *domain.SpeechDetails, own ports.Speaker) {
	for _, g := range details.Gestures {
		if g.Tag == "" || s.rand.Float64() >= g.Chance {
			continue
		}
		target := own
		if g.Role != "" {
			sp, ok := s.Speaker(g.Role)
			if !ok {
				continue
			}
			target = sp
		}
		if gesturer, ok := target.(ports.Gesturer); ok {
			gesturer.StartGesture(g.Tag)
			s.gestures = append(s.gestures, gesturer)
		}
	}
}

func (s *Session) stopGestures() {
	for _, g := range s.gestures {
		g.StopGesture()
	}
	s.gestures = nil
}

// options builds the menu offered by node's children. Children that cannot be shown
// as an option (entries, jump-backs, dangling references) are left out.
func (s *Session) options(node *domain.Node) []domain.Option {
	out := make([]domain.Option, 0, len(node.Children))
	for _, id := range node.Children {
		if opt, ok := s.optionFor(id, 0); ok {
			out = append(out, opt)
		}
	}
	return out
}

const maxOptionDepth = 32

func (s *Session) optionFor(id domain.NodeID, depth int) (domain.Option, bool) {
	n, ok := s.dialogue.Node(id)
	if !ok || depth > maxOptionDepth {
		return domain.Option{}, false
	}
	switch n.Kind {
	case domain.KindSpeech:
		if n.Speech == nil {
			return domain.Option{}, false
		}
		return domain.Option{Details: *n.Speech, Node: id}, true
	case domain.KindOptionLock:
		opt, ok := s.optionFor(n.FirstChild(), depth+1)
		if !ok {
			return domain.Option{}, false
		}
		opt.Node = id
		switch {
		case n.Lock == nil:
			invariantViolation(s.logger, "option lock is not resolved", "dialogue", s.dialogue.ID, "node_id", id)
			opt.Locked = true
			if n.LockSpec != nil {
				opt.Message = n.LockSpec.Message
			}
		case !n.Lock.IsUnlocked():
			opt.Locked = true
			opt.Message = n.Lock.Message
		}
		return opt, true
	case domain.KindJump, domain.KindSetJumpBack:
		opt, ok := s.optionFor(n.Target, depth+1)
		if !ok {
			return domain.Option{}, false
		}
		opt.Node = id
		return opt, true
	case domain.KindEvent, domain.KindBranch:
		next := n.FirstChild()
		if n.Kind == domain.KindBranch {
			if n.Condition == nil {
				invariantViolation(s.logger, "branch has no resolved condition", "dialogue", s.dialogue.ID, "node_id", id)
				return domain.Option{}, false
			}
			if !n.Condition.IsMet() {
				next = n.Child(1)
			}
		}
		opt, ok := s.optionFor(next, depth+1)
		if !ok {
			return domain.Option{}, false
		}
		opt.Node = id
		return opt, true
	}
	return domain.Option{}, false
}

// SelectOption forwards a menu choice to the active speech. Invalid choices are ignored.
func (s *Session) SelectOption(ctx context.Context, index int) error {
	if !s.playing || s.strategy == nil {
		return domain.ErrSessionClosed
	}
	node := s.active
	r := s.strategy.SelectOption(host{s: s, node: node}, index)
	if r.Outcome == transition.OutcomeAdvance && s.hooks.OnOptionSelected != nil {
		s.hooks.OnOptionSelected(ctx, &domain.OptionEvent{
			EventBase: s.event(domain.EventOptionSelected),
			NodeID:    node.ID,
			Index:     index,
			Target:    r.Next,
		})
	}
	s.follow(ctx, r)
	return nil
}

// Skip skips the active speech when it allows it.
func (s *Session) Skip(ctx context.Context) error {
	if !s.playing || s.active == nil {
		return domain.ErrSessionClosed
	}
	node := s.active
	if node.Kind != domain.KindSpeech || s.strategy == nil || node.Speech == nil || !node.Speech.CanSkip {
		return nil
	}
	s.fire(ctx, node, node.SkipEvents)
	if !s.playing || s.active != node {
		return nil
	}
	r := s.strategy.Skip(host{s: s, node: node})
	s.stopGestures()
	s.follow(ctx, r)
	return nil
}

// Continue tells the active speech that presentation is done with it.
func (s *Session) Continue(ctx context.Context) error {
	if !s.playing || s.strategy == nil {
		return domain.ErrSessionClosed
	}
	s.follow(ctx, s.strategy.Continue(host{s: s, node: s.active}))
	return nil
}

// CheckConditions asks the active speech to re-evaluate what it waits on, such as option
// locks whose conditions changed because of game events.
func (s *Session) CheckConditions(ctx context.Context) error {
	if !s.playing || s.strategy == nil {
		return domain.ErrSessionClosed
	}
	s.follow(ctx, s.strategy.CheckConditions(host{s: s, node: s.active}))
	return nil
}
