package observability

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Namespace prefixes every metric name.
const Namespace = "dialoguetree"

// Metrics holds the collectors fed by Hooks.
type Metrics struct {
	DialoguesStarted *prometheus.CounterVec
	DialoguesEnded   *prometheus.CounterVec
	SpeechesShown    *prometheus.CounterVec
	NodeVisits       *prometheus.CounterVec
	OptionsSelected  *prometheus.CounterVec
	DialogueDuration *prometheus.HistogramVec

	mu     sync.Mutex
	starts map[string]time.Time
	now    func() time.Time
}

// NewMetrics creates the collectors and registers them with reg when it is not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		DialoguesStarted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "dialogues_started_total",
			Help:      "Total number of dialogues opened.",
		}, []string{"dialogue_id"}),
		DialoguesEnded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "dialogues_ended_total",
			Help:      "Total number of dialogues closed.",
		}, []string{"dialogue_id"}),
		SpeechesShown: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "speeches_displayed_total",
			Help:      "Total number of speeches handed to the controller.",
		}, []string{"dialogue_id", "role"}),
		NodeVisits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "node_visits_total",
			Help:      "Total number of node visits by kind.",
		}, []string{"dialogue_id", "kind"}),
		OptionsSelected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "options_selected_total",
			Help:      "Total number of accepted choices.",
		}, []string{"dialogue_id", "node_id", "index"}),
		DialogueDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "dialogue_duration_seconds",
			Help:      "Time between a dialogue opening and closing.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600},
		}, []string{"dialogue_id"}),
		starts: make(map[string]time.Time),
		now:    time.Now,
	}
	if reg != nil {
		reg.MustRegister(m.DialoguesStarted, m.DialoguesEnded, m.SpeechesShown,
			m.NodeVisits, m.OptionsSelected, m.DialogueDuration)
	}
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogueStarted: func(ctx context.Context, e *domain.DialogueEvent) {
			m.DialoguesStarted.WithLabelValues(e.DialogueID).Inc()
			m.mu.Lock()
			m.starts[e.DialogueID] = m.now()
			m.mu.Unlock()
		},
		OnDialogueEnded: func(ctx context.Context, e *domain.DialogueEvent) {
			m.DialoguesEnded.WithLabelValues(e.DialogueID).Inc()
			m.mu.Lock()
			start, ok := m.starts[e.DialogueID]
			delete(m.starts, e.DialogueID)
			m.mu.Unlock()
			if ok {
				m.DialogueDuration.WithLabelValues(e.DialogueID).Observe(m.now().Sub(start).Seconds())
			}
		},
		OnSpeechDisplayed: func(ctx context.Context, e *domain.SpeechEvent) {
			m.SpeechesShown.WithLabelValues(e.DialogueID, e.Details.Role).Inc()
		},
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			m.NodeVisits.WithLabelValues(e.DialogueID, string(e.Kind)).Inc()
		},
		OnOptionSelected: func(ctx context.Context, e *domain.OptionEvent) {
			m.OptionsSelected.WithLabelValues(e.DialogueID, string(e.NodeID), strconv.Itoa(e.Index)).Inc()
		},
	}
}
