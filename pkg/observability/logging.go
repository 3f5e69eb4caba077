package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/dialoguetree/pkg/domain"
)

// LogHooks returns lifecycle hooks that write every event to logger.
// Node visits log at debug level, everything else at info.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogueStarted: func(ctx context.Context, e *domain.DialogueEvent) {
			logger.InfoContext(ctx, "dialogue_started", "dialogue_id", e.DialogueID, "start_node", e.StartNode)
		},
		OnDialogueEnded: func(ctx context.Context, e *domain.DialogueEvent) {
			logger.InfoContext(ctx, "dialogue_ended", "dialogue_id", e.DialogueID)
		},
		OnSpeechDisplayed: func(ctx context.Context, e *domain.SpeechEvent) {
			logger.InfoContext(ctx, "speech_displayed",
				"dialogue_id", e.DialogueID,
				"node_id", e.NodeID,
				"role", e.Details.Role,
				"variation", e.Variation,
			)
		},
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "node_enter", "dialogue_id", e.DialogueID, "node_id", e.NodeID, "kind", e.Kind)
		},
		OnOptionSelected: func(ctx context.Context, e *domain.OptionEvent) {
			logger.InfoContext(ctx, "option_selected",
				"dialogue_id", e.DialogueID,
				"node_id", e.NodeID,
				"index", e.Index,
				"target", e.Target,
			)
		},
	}
}
