// Package compiler turns editable dsl graphs into validated, immutable domain dialogues.
package compiler

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/dialoguetree/internal/logging"
	"github.com/aretw0/dialoguetree/pkg/condition"
	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/dsl"
	"github.com/aretw0/dialoguetree/pkg/transition"
)

// Resolver turns serialized conditions into live ones. registry.Registry implements it.
type Resolver interface {
	Resolve(spec condition.Spec) (condition.Condition, error)
	ResolveLock(spec *condition.LockSpec) (*condition.Lock, error)
}

// Compiler validates graphs and produces dialogues.
type Compiler struct {
	logger   *slog.Logger
	resolver Resolver
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Compiler) {
		c.logger = l
	}
}

// WithResolver sets the resolver used for branch conditions and option locks.
// Without one, any graph using conditions fails to compile.
func WithResolver(r Resolver) Option {
	return func(c *Compiler) {
		c.resolver = r
	}
}

// New creates a compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Build compiles g into a new dialogue. The dialogue is returned even when compilation
// fails, in the Failed state and carrying its diagnostics.
func (c *Compiler) Build(g *dsl.Graph) (*domain.Dialogue, error) {
	d := domain.NewDialogue(g.ID)
	return d, c.Compile(g, d)
}

// Compile recompiles d from g in place. Prior nodes are discarded and roles are reset
// from the graph. A non-nil error is always a *CompileError.
func (c *Compiler) Compile(g *dsl.Graph, d *domain.Dialogue) error {
	d.Reset()
	if g.ID != "" {
		d.ID = g.ID
	}
	d.Roles = slices.Clone(g.Roles)
	d.GenericSpeakerNames = g.GenericSpeakerNames

	b := &build{c: c, graph: g, dialogue: d, index: make(map[domain.NodeID]*dsl.EditNode, len(g.Nodes))}
	b.indexNodes()
	if entry := b.findEntry(); entry != nil {
		b.traverse(entry)
		b.validate()
	}

	return b.finish()
}

// Relink validates a dialogue decoded from JSON and resolves its conditions and option
// locks again. Those are not serialized, so a decoded dialogue stays unplayable until
// it is relinked. A non-nil error is always a *CompileError.
func (c *Compiler) Relink(d *domain.Dialogue) error {
	b := &build{c: c, dialogue: d}
	if _, ok := d.RootNode(); ok {
		b.validate()
	} else {
		b.fail("", "graph has no entry node")
	}
	return b.finish()
}

// finish records the diagnostics on the dialogue and settles its status.
func (b *build) finish() error {
	d := b.dialogue
	d.Diagnostics = b.diags
	if len(b.diags) > 0 {
		d.Status = domain.StatusFailed
		b.c.logger.Warn("dialogue failed to compile", "dialogue", d.ID, "diagnostics", len(b.diags))
		return &CompileError{DialogueID: d.ID, Diagnostics: slices.Clone(b.diags)}
	}
	d.Status = domain.StatusCompiled
	b.c.logger.Debug("dialogue compiled", "dialogue", d.ID, "nodes", d.NumNodes())
	return nil
}

// build holds the state of one compilation.
type build struct {
	c        *Compiler
	graph    *dsl.Graph
	dialogue *domain.Dialogue
	index    map[domain.NodeID]*dsl.EditNode
	diags    []domain.Diagnostic
}

func (b *build) fail(id domain.NodeID, format string, args ...any) {
	b.diags = append(b.diags, domain.Diagnostic{NodeID: id, Reason: fmt.Sprintf(format, args...)})
}

func (b *build) indexNodes() {
	for _, n := range b.graph.Nodes {
		if n == nil {
			continue
		}
		if n.ID == "" {
			b.fail("", "a %s node has no ID", n.Kind)
			continue
		}
		if _, dup := b.index[n.ID]; dup {
			b.fail(n.ID, "duplicate node ID")
			continue
		}
		b.index[n.ID] = n
	}
}

func (b *build) findEntry() *dsl.EditNode {
	var entry *dsl.EditNode
	for _, n := range b.graph.Nodes {
		if n == nil || n.Kind != domain.KindEntry {
			continue
		}
		if entry != nil {
			b.fail(n.ID, "more than one entry node (first is %s)", entry.ID)
			continue
		}
		entry = n
	}
	if entry == nil {
		b.fail("", "graph has no entry node")
	}
	return entry
}

// splice follows reroute nodes from id to the first real node. It returns "" when the
// chain ends without one.
func (b *build) splice(from, id domain.NodeID) domain.NodeID {
	seen := make(map[domain.NodeID]bool)
	for id != "" {
		n, ok := b.index[id]
		if !ok {
			b.fail(from, "references missing node %q", id)
			return ""
		}
		if n.Kind != domain.KindReroute {
			return id
		}
		if seen[id] {
			b.fail(id, "reroute cycle")
			return ""
		}
		seen[id] = true
		if len(n.Children) > 1 {
			b.fail(id, "reroute has %d children, expected at most 1", len(n.Children))
		}
		if len(n.Children) == 0 {
			return ""
		}
		id = n.Children[0]
	}
	return ""
}

// traverse creates one compiled node per reachable editable node. Jump targets are
// followed for reachability but only resolved against the compiled set in validate.
func (b *build) traverse(entry *dsl.EditNode) {
	queue := []domain.NodeID{entry.ID}
	queued := map[domain.NodeID]bool{entry.ID: true}

	push := func(id domain.NodeID) {
		if id != "" && !queued[id] {
			queued[id] = true
			queue = append(queue, id)
		}
	}

	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		src := b.index[id]
		if src == nil {
			continue
		}

		node := compileNode(src)
		for _, child := range src.Children {
			real := b.splice(id, child)
			if real == "" {
				continue
			}
			if b.index[real].Kind == domain.KindEntry {
				b.fail(id, "entry node %s cannot be a child", real)
				continue
			}
			node.Children = append(node.Children, real)
			push(real)
		}
		if _, ok := b.index[src.Target]; ok && src.Kind.IsJump() {
			if real := b.splice(id, src.Target); real != "" {
				node.Target = real
				push(real)
			}
		}
		b.dialogue.AddNode(node)
	}

	if unreachable := len(b.index) - b.dialogue.NumNodes(); unreachable > 0 {
		b.c.logger.Debug("skipping unreachable nodes", "dialogue", b.dialogue.ID, "count", unreachable)
	}
}

func compileNode(src *dsl.EditNode) *domain.Node {
	n := &domain.Node{
		ID:            src.ID,
		Kind:          src.Kind,
		Transition:    src.Transition,
		Target:        src.Target,
		Events:        slices.Clone(src.Events),
		SkipEvents:    slices.Clone(src.SkipEvents),
		ConditionSpec: src.Condition,
		LockSpec:      src.Lock,
	}
	if src.Speech != nil {
		s := *src.Speech
		s.Variations = slices.Clone(s.Variations)
		s.GameplayTags = slices.Clone(s.GameplayTags)
		s.Gestures = slices.Clone(s.Gestures)
		s.Requirements = slices.Clone(s.Requirements)
		n.Speech = &s
	}
	return n
}

func (b *build) validate() {
	d := b.dialogue
	for _, id := range d.NodeIDs() {
		n := d.Nodes[id]
		switch n.Kind {
		case domain.KindSpeech:
			b.validateSpeech(n)
		case domain.KindBranch:
			b.validateBranch(n)
		case domain.KindOptionLock:
			b.validateLock(n)
		case domain.KindJump, domain.KindSetJumpBack:
			b.validateJump(n)
		case domain.KindEntry, domain.KindEvent, domain.KindJumpBack:
		default:
			b.fail(id, "unknown node kind %q", n.Kind)
			continue
		}

		if limit := domain.MaxChildren(n.Kind, transition.Limit(n.Transition)); limit >= 0 && len(n.Children) > limit {
			b.fail(id, "%s node has %d children, expected at most %d", n.Kind, len(n.Children), limit)
		}
		for i, ev := range append(slices.Clone(n.Events), n.SkipEvents...) {
			if ev.Name == "" {
				b.fail(id, "event %d has no name", i)
			}
		}
	}
}

func (b *build) validateSpeech(n *domain.Node) {
	if n.Speech == nil {
		b.fail(n.ID, "speech node has no content")
		return
	}
	if !transition.IsRegistered(n.Transition) {
		b.fail(n.ID, "transition %q is abstract or not registered", n.Transition)
	}
	if n.Speech.Role == "" {
		b.fail(n.ID, "speech has no speaker role")
	} else if !b.dialogue.HasRole(n.Speech.Role) {
		b.fail(n.ID, "speaker role %q is not declared", n.Speech.Role)
	}
	for _, g := range n.Speech.Gestures {
		if g.Role != "" && !b.dialogue.HasRole(g.Role) {
			b.fail(n.ID, "gesture role %q is not declared", g.Role)
		}
		if g.Chance < 0 || g.Chance > 1 {
			b.fail(n.ID, "gesture %q chance %g is outside [0, 1]", g.Tag, g.Chance)
		}
	}
}

func (b *build) validateJump(n *domain.Node) {
	switch {
	case n.Target == "":
		b.fail(n.ID, "jump target is not set")
	case n.Target == n.ID:
		b.fail(n.ID, "jump target is self-referential")
	case !b.dialogue.HasNode(n.Target):
		b.fail(n.ID, "jump target %q does not resolve", n.Target)
	}
}

func (b *build) validateBranch(n *domain.Node) {
	if len(n.Children) < 2 {
		b.fail(n.ID, "branch node has %d children, expected exactly 2", len(n.Children))
	}
	if n.ConditionSpec == nil {
		b.fail(n.ID, "branch has no condition")
		return
	}
	if b.c.resolver == nil {
		b.fail(n.ID, "no query resolver configured for condition on %q", n.ConditionSpec.Query)
		return
	}
	cond, err := b.c.resolver.Resolve(*n.ConditionSpec)
	if err != nil {
		b.fail(n.ID, "%v", err)
		return
	}
	if !cond.IsValidCondition() {
		b.fail(n.ID, "condition %s is not valid", cond)
		return
	}
	n.Condition = cond
}

func (b *build) validateLock(n *domain.Node) {
	if n.LockSpec == nil || len(n.LockSpec.Conditions) == 0 {
		n.Lock = &condition.Lock{Mode: condition.ModeAll}
		if n.LockSpec != nil {
			n.Lock.Message = n.LockSpec.Message
		}
		return
	}
	if b.c.resolver == nil {
		b.fail(n.ID, "no query resolver configured for option lock")
		return
	}
	lock, err := b.c.resolver.ResolveLock(n.LockSpec)
	if err != nil {
		b.fail(n.ID, "%v", err)
		return
	}
	if !lock.IsValid() {
		b.fail(n.ID, "option lock %s is not valid", lock)
		return
	}
	n.Lock = lock
}
