package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"samplerank/internal/tournament"
)

// Recorder owns the collectors for one process.
type Recorder struct {
	registry *prometheus.Registry

	comparisons     *prometheus.CounterVec
	eliminations    *prometheus.CounterVec
	roundsAdvanced  *prometheus.CounterVec
	round           *prometheus.GaugeVec
	activeItems     *prometheus.GaugeVec
	roundProgress   *prometheus.GaugeVec
	commandDuration *prometheus.HistogramVec
}

// New creates a Recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Recorder{
		registry: reg,
		comparisons: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samplerank_comparisons_total",
				Help: "Pairwise decisions that awarded a win.",
			},
			[]string{"session"},
		),
		eliminations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samplerank_eliminations_total",
				Help: "Skip-both decisions that eliminated a pairing.",
			},
			[]string{"session"},
		),
		roundsAdvanced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "samplerank_rounds_advanced_total",
				Help: "Rounds closed and advanced.",
			},
			[]string{"session"},
		),
		round: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "samplerank_round",
				Help: "Current round of the session.",
			},
			[]string{"session"},
		),
		activeItems: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "samplerank_active_items",
				Help: "Items still in contention.",
			},
			[]string{"session"},
		),
		roundProgress: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "samplerank_round_progress_percent",
				Help: "Share of the current round's pairings already resolved.",
			},
			[]string{"session"},
		),
		commandDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "samplerank_command_duration_seconds",
				Help:    "Wall time of CLI commands.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"command"},
		),
	}
}

// Registry exposes the underlying registry for gathering.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// RecordComparison counts a decision that awarded a win.
func (r *Recorder) RecordComparison(session string) {
	r.comparisons.WithLabelValues(session).Inc()
}

// RecordElimination counts a skip-both decision.
func (r *Recorder) RecordElimination(session string) {
	r.eliminations.WithLabelValues(session).Inc()
}

// RecordAdvance counts a round advance.
func (r *Recorder) RecordAdvance(session string) {
	r.roundsAdvanced.WithLabelValues(session).Inc()
}

// ObserveState sets the per-session gauges from state.
func (r *Recorder) ObserveState(session string, state tournament.State) {
	p := state.Progress()
	r.round.WithLabelValues(session).Set(float64(p.Round))
	r.activeItems.WithLabelValues(session).Set(float64(p.ActiveItems))
	r.roundProgress.WithLabelValues(session).Set(p.Percent)
}

// ObserveCommand records how long a CLI command took.
func (r *Recorder) ObserveCommand(command string, d time.Duration) {
	r.commandDuration.WithLabelValues(command).Observe(d.Seconds())
}

// WriteTextfile writes every collector to path in the text exposition
// format. An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
