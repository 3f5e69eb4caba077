package runtime

import (
	"context"
	"fmt"

	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/transition"
)

// run enters next and keeps following Advance results until a node waits or the dialogue ends.
func (s *Session) run(ctx context.Context, next domain.NodeID) {
	s.follow(ctx, transition.Advance(next))
}

// follow acts on a strategy or entry result.
func (s *Session) follow(ctx context.Context, r transition.Result) {
	gen := s.generation
	for steps := 0; ; steps++ {
		if !s.playing || s.generation != gen {
			return
		}
		switch r.Outcome {
		case transition.OutcomeWait:
			return
		case transition.OutcomeEnd:
			s.End(ctx)
			return
		}

		if r.Next == "" {
			s.End(ctx)
			return
		}
		if steps >= s.stepLimit {
			s.logger.Error("aborting dialogue", "dialogue", s.dialogue.ID, "node_id", r.Next,
				"error", fmt.Errorf("%w: %d nodes entered without waiting for input", domain.ErrStepLimit, steps))
			s.End(ctx)
			return
		}
		node, ok := s.dialogue.Node(r.Next)
		if !ok {
			s.logger.Error("aborting dialogue", "dialogue", s.dialogue.ID, "node_id", r.Next, "error", domain.ErrNodeNotFound)
			s.End(ctx)
			return
		}

		before := s.entered
		r = s.enter(ctx, node)
		if s.entered != before+1 {
			// A callback moved the session on by itself; that traversal owns the cursor now.
			return
		}
	}
}

// enter records the visit, moves the cursor and runs the kind-specific entry behaviour.
func (s *Session) enter(ctx context.Context, node *domain.Node) transition.Result {
	s.entered++
	s.markVisited(node.ID)
	s.active = node
	s.strategy = nil

	if s.hooks.OnNodeEnter != nil {
		s.hooks.OnNodeEnter(ctx, &domain.NodeEvent{EventBase: s.event(domain.EventNodeEnter), NodeID: node.ID, Kind: node.Kind})
	}
	if !s.playing {
		return transition.Wait()
	}

	switch node.Kind {
	case domain.KindSpeech:
		return s.enterSpeech(ctx, node)
	case domain.KindBranch:
		return s.enterBranch(node)
	case domain.KindEvent:
		s.fire(ctx, node, node.Events)
		return childOrEnd(node)
	case domain.KindJump:
		if node.Target == "" {
			return transition.End()
		}
		return transition.Advance(node.Target)
	case domain.KindSetJumpBack:
		s.jumpBack.set(s.dialogue.ID, node.Target)
		return childOrEnd(node)
	case domain.KindJumpBack:
		if target, ok := s.jumpBack.take(s.dialogue.ID); ok && s.dialogue.HasNode(target) {
			return transition.Advance(target)
		}
		return childOrEnd(node)
	case domain.KindEntry, domain.KindOptionLock, domain.KindReroute:
		return childOrEnd(node)
	}

	invariantViolation(s.logger, "node has an unknown kind", "dialogue", s.dialogue.ID, "node_id", node.ID, "kind", node.Kind)
	return transition.End()
}

func childOrEnd(n *domain.Node) transition.Result {
	if next := n.FirstChild(); next != "" {
		return transition.Advance(next)
	}
	return transition.End()
}

// enterBranch takes the first child when the condition holds and the second otherwise.
// A missing outcome or an unresolved condition ends the dialogue.
func (s *Session) enterBranch(node *domain.Node) transition.Result {
	if node.Condition == nil {
		invariantViolation(s.logger, "branch has no resolved condition", "dialogue", s.dialogue.ID, "node_id", node.ID)
		return transition.End()
	}
	idx := 1
	if node.Condition.IsMet() {
		idx = 0
	}
	if next := node.Child(idx); next != "" {
		return transition.Advance(next)
	}
	return transition.End()
}

// fire dispatches events in order. Failures are logged and do not stop traversal.
func (s *Session) fire(ctx context.Context, node *domain.Node, events []domain.EventSpec) {
	if len(events) == 0 {
		return
	}
	if s.dispatcher == nil {
		s.logger.Warn("no dispatcher for node events", "dialogue", s.dialogue.ID, "node_id", node.ID, "events", len(events))
		return
	}
	for _, ev := range events {
		if err := s.dispatcher.Dispatch(ctx, s.dialogue.ID, ev); err != nil {
			s.logger.Error("event failed", "dialogue", s.dialogue.ID, "node_id", node.ID, "event", ev.Name, "error", err)
		}
	}
}
