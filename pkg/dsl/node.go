package dsl

import (
	"github.com/aretw0/dialoguetree/pkg/condition"
	"github.com/aretw0/dialoguetree/pkg/domain"
)

// NodeBuilder provides a fluent API for configuring a node.
type NodeBuilder struct {
	node     EditNode
	gos      []domain.NodeID
	whenTrue domain.NodeID
	whenElse domain.NodeID
	builder  *Builder
}

// Entry marks the node as the traversal root.
func (n *NodeBuilder) Entry() *NodeBuilder {
	n.node.Kind = domain.KindEntry
	return n
}

// Speech marks the node as a speech spoken by role. It defaults to the auto transition.
// A non-empty text becomes the first variation.
func (n *NodeBuilder) Speech(role, text string) *NodeBuilder {
	n.node.Kind = domain.KindSpeech
	if n.node.Speech == nil {
		n.node.Speech = &domain.SpeechDetails{}
	}
	n.node.Speech.Role = role
	if n.node.Transition == "" {
		n.node.Transition = domain.TransitionAuto
	}
	if text != "" {
		n.Say(text, "")
	}
	return n
}

func (n *NodeBuilder) speech() *domain.SpeechDetails {
	if n.node.Speech == nil {
		n.node.Speech = &domain.SpeechDetails{}
	}
	return n.node.Speech
}

// Say adds a variation. One variation is picked at random each time the speech plays.
func (n *NodeBuilder) Say(text, audio string) *NodeBuilder {
	s := n.speech()
	s.Variations = append(s.Variations, domain.SpeechVariation{Text: text, Audio: audio})
	return n
}

// Title sets the short label shown when the speech is offered as an option.
func (n *NodeBuilder) Title(title string) *NodeBuilder {
	n.speech().Title = title
	return n
}

// Skippable lets the player skip the speech.
func (n *NodeBuilder) Skippable() *NodeBuilder {
	n.speech().CanSkip = true
	return n
}

// Silent keeps the speech from being displayed (useful for option-only nodes).
func (n *NodeBuilder) Silent() *NodeBuilder {
	n.speech().IgnoreContent = true
	return n
}

// MinPlayTime sets the advisory minimum play time in seconds.
func (n *NodeBuilder) MinPlayTime(seconds float64) *NodeBuilder {
	n.speech().MinimumPlayTime = seconds
	return n
}

// Tags sets the gameplay tags applied to the speaker while talking.
func (n *NodeBuilder) Tags(tags ...string) *NodeBuilder {
	n.speech().GameplayTags = append(n.speech().GameplayTags, tags...)
	return n
}

// Gesture asks the speaker of role (empty for the speech's own speaker) to gesture with chance in [0, 1].
func (n *NodeBuilder) Gesture(role, tag string, chance float64) *NodeBuilder {
	s := n.speech()
	s.Gestures = append(s.Gestures, domain.Gesture{Role: role, Tag: tag, Chance: chance})
	return n
}

// Requires attaches an attribute check to the speech.
func (n *NodeBuilder) Requires(attribute string, minimum int) *NodeBuilder {
	s := n.speech()
	s.Requirements = append(s.Requirements, domain.AttributeRequirement{Attribute: attribute, Minimum: minimum})
	return n
}

// Transition sets the transition kind of a speech.
func (n *NodeBuilder) Transition(kind domain.TransitionKind) *NodeBuilder {
	n.node.Transition = kind
	return n
}

// Auto is shorthand for Transition(domain.TransitionAuto).
func (n *NodeBuilder) Auto() *NodeBuilder { return n.Transition(domain.TransitionAuto) }

// Input is shorthand for Transition(domain.TransitionInput).
func (n *NodeBuilder) Input() *NodeBuilder { return n.Transition(domain.TransitionInput) }

// Gated is shorthand for Transition(domain.TransitionGated).
func (n *NodeBuilder) Gated() *NodeBuilder { return n.Transition(domain.TransitionGated) }

// Fire adds an event fired when the node is entered.
func (n *NodeBuilder) Fire(name string, args map[string]any) *NodeBuilder {
	n.node.Events = append(n.node.Events, domain.EventSpec{Name: name, Args: args})
	return n
}

// OnSkip adds an event fired when the speech is skipped.
func (n *NodeBuilder) OnSkip(name string, args map[string]any) *NodeBuilder {
	n.node.SkipEvents = append(n.node.SkipEvents, domain.EventSpec{Name: name, Args: args})
	return n
}

// Event marks the node as an event node firing name.
func (n *NodeBuilder) Event(name string, args map[string]any) *NodeBuilder {
	n.node.Kind = domain.KindEvent
	return n.Fire(name, args)
}

// Branch marks the node as a branch on cond. Use Then and Else to wire the outcomes.
func (n *NodeBuilder) Branch(cond condition.Spec) *NodeBuilder {
	n.node.Kind = domain.KindBranch
	n.node.Condition = &cond
	return n
}

// Then sets the child entered when the branch condition is met.
func (n *NodeBuilder) Then(target string) *NodeBuilder {
	n.whenTrue = domain.NodeID(target)
	return n
}

// Else sets the child entered when the branch condition is not met.
func (n *NodeBuilder) Else(target string) *NodeBuilder {
	n.whenElse = domain.NodeID(target)
	return n
}

// Jump marks the node as a jump to target.
func (n *NodeBuilder) Jump(target string) *NodeBuilder {
	n.node.Kind = domain.KindJump
	n.node.Target = domain.NodeID(target)
	return n
}

// SetJumpBack marks the node as recording target for a later jump-back.
func (n *NodeBuilder) SetJumpBack(target string) *NodeBuilder {
	n.node.Kind = domain.KindSetJumpBack
	n.node.Target = domain.NodeID(target)
	return n
}

// JumpBack marks the node as returning to the recorded jump-back target.
func (n *NodeBuilder) JumpBack() *NodeBuilder {
	n.node.Kind = domain.KindJumpBack
	return n
}

// OptionLock marks the node as gating the option behind its child.
func (n *NodeBuilder) OptionLock(mode condition.Mode, message string, conds ...condition.Spec) *NodeBuilder {
	n.node.Kind = domain.KindOptionLock
	n.node.Lock = &condition.LockSpec{Mode: string(mode), Message: message, Conditions: conds}
	return n
}

// Reroute marks the node as an editor passthrough.
func (n *NodeBuilder) Reroute() *NodeBuilder {
	n.node.Kind = domain.KindReroute
	return n
}

// Go adds target as the next child.
func (n *NodeBuilder) Go(target string) *NodeBuilder {
	n.gos = append(n.gos, domain.NodeID(target))
	return n
}

// Build returns the underlying node without its connections.
// This is primarily used by the Builder, but exposed for advanced usage.
func (n *NodeBuilder) Build() EditNode {
	return n.node
}

func (n *NodeBuilder) connections() []domain.NodeID {
	if n.node.Kind != domain.KindBranch {
		return n.gos
	}
	var out []domain.NodeID
	if n.whenTrue != "" {
		out = append(out, n.whenTrue)
	}
	if n.whenElse != "" {
		out = append(out, n.whenElse)
	}
	return out
}
