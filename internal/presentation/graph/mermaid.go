// Package graph renders compiled dialogues as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/dialoguetree/pkg/domain"
)

// labelLimit truncates speech text in node labels.
const labelLimit = 40

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []domain.NodeID
	CurrentNode  domain.NodeID
}

// GenerateMermaid produces a Mermaid flowchart of d, nodes in ID order.
// Shapes follow the node kind:
// - Entry: ((Circle))
// - Speech: [Rectangle], or [/Parallelogram/] when it waits for a choice
// - Branch: {Rhombus}
// - Event: [[Subroutine]]
// - Option lock: {{Hexagon}}
// - Jumps: ([Stadium])
// Jump targets are drawn dotted. Overlay styles (Visited/Current) are applied if provided.
func GenerateMermaid(d *domain.Dialogue, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, id := range d.NodeIDs() {
		node, _ := d.Node(id)
		safeID := sanitizeMermaidID(id)

		opener, closer := shape(node)
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, label(node), closer)

		for i, child := range node.Children {
			arrow := "-->"
			switch {
			case node.Kind == domain.KindBranch && i == 0:
				arrow = fmt.Sprintf("-- \"%s\" -->", escape(conditionLabel(node)))
			case node.Kind == domain.KindBranch:
				arrow = "-- \"else\" -->"
			case node.Kind == domain.KindOptionLock:
				arrow = fmt.Sprintf("-- \"%s\" -->", escape(lockLabel(node)))
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(child))
		}

		if node.Target != "" {
			arrow := "-.->"
			if node.Kind == domain.KindSetJumpBack {
				arrow = "-. \"return\" .->"
			}
			fmt.Fprintf(&sb, "    %s %s %s\n", safeID, arrow, sanitizeMermaidID(node.Target))
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			// History may name nodes removed since it was recorded.
			if !d.HasNode(id) {
				continue
			}
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" && d.HasNode(overlay.CurrentNode) {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func shape(node *domain.Node) (string, string) {
	switch node.Kind {
	case domain.KindEntry:
		return "((", "))"
	case domain.KindSpeech:
		if node.Transition == domain.TransitionInput {
			return "[/", "/]"
		}
	case domain.KindBranch:
		return "{", "}"
	case domain.KindEvent:
		return "[[", "]]"
	case domain.KindOptionLock:
		return "{{", "}}"
	case domain.KindJump, domain.KindJumpBack, domain.KindSetJumpBack:
		return "([", "])"
	}
	return "[", "]"
}

func label(node *domain.Node) string {
	id := escape(string(node.ID))
	switch node.Kind {
	case domain.KindSpeech:
		if node.Speech == nil {
			return id
		}
		text := node.Speech.Title
		if text == "" && len(node.Speech.Variations) > 0 {
			text = node.Speech.Variations[0].Text
		}
		if r := []rune(text); len(r) > labelLimit {
			text = string(r[:labelLimit]) + "…"
		}
		return fmt.Sprintf("%s <br/> %s: %s", id, escape(node.Speech.Role), escape(text))
	case domain.KindEvent:
		names := make([]string, 0, len(node.Events))
		for _, ev := range node.Events {
			names = append(names, ev.Name)
		}
		return fmt.Sprintf("%s <br/> ⚡ %s", id, escape(strings.Join(names, ", ")))
	case domain.KindJumpBack:
		return id + " <br/> ↩"
	}
	return id
}

func conditionLabel(node *domain.Node) string {
	if node.Condition != nil {
		return node.Condition.String()
	}
	if node.ConditionSpec != nil {
		return node.ConditionSpec.Query
	}
	return "then"
}

func lockLabel(node *domain.Node) string {
	if node.Lock != nil && len(node.Lock.Conditions) > 0 {
		return node.Lock.String()
	}
	if node.LockSpec != nil && node.LockSpec.Message != "" {
		return node.LockSpec.Message
	}
	return "unlocked"
}

// escape replaces double quotes, which would end a Mermaid label.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id domain.NodeID) string {
	s := strings.ReplaceAll(string(id), ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
