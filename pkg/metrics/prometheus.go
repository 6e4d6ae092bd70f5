package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// pushJob names the pushgateway job for batch runs.
const pushJob = "stadiums_hfa"

// Manager manages all Prometheus metrics for a batch run.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	customLabels     map[string]string
	registry         *prometheus.Registry

	// Engine
	gamesProcessed prometheus.Counter
	gamesSkipped   *prometheus.CounterVec
	observations   prometheus.Counter
	reversions     prometheus.Counter
	ratingShift    prometheus.Histogram
	teamsTracked   prometheus.Gauge

	// Aggregation
	teamRows   prometheus.Gauge
	leagueRows prometheus.Gauge

	// Run
	stageDuration *prometheus.HistogramVec
	lastRunUnix   prometheus.Gauge

	// Sinks
	sinkWrites *prometheus.CounterVec
	sinkErrors *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "stadiums",
		subsystem:        "hfa",
		histogramBuckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		customLabels:     make(map[string]string),
		registry:         prometheus.NewRegistry(),
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)
	labels := prometheus.Labels(m.customLabels)

	m.gamesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "games_processed_total",
		Help:        "Games projected and processed by the rating engine",
		ConstLabels: labels,
	})

	m.gamesSkipped = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "games_skipped_total",
		Help:        "Source rows dropped before rating, by reason",
		ConstLabels: labels,
	}, []string{"reason"})

	m.observations = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "observations_total",
		Help:        "HFA observations emitted from regular season home games",
		ConstLabels: labels,
	})

	m.reversions = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "reversions_total",
		Help:        "Season reversions applied to team ratings",
		ConstLabels: labels,
	})

	m.ratingShift = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "rating_shift_points",
		Help:        "Absolute rating points moved per game",
		Buckets:     []float64{1, 2, 5, 10, 15, 20, 30, 40, 60},
		ConstLabels: labels,
	})

	m.teamsTracked = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "teams_tracked",
		Help:        "Teams with rating state after the last run",
		ConstLabels: labels,
	})

	m.teamRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "team_rows",
		Help:        "Rows in the team-stadium rolling table",
		ConstLabels: labels,
	})

	m.leagueRows = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "league_rows",
		Help:        "Rows in the league rolling table",
		ConstLabels: labels,
	})

	m.stageDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "stage_duration_milliseconds",
		Help:        "Pipeline stage duration in milliseconds",
		Buckets:     m.histogramBuckets,
		ConstLabels: labels,
	}, []string{"stage"})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "last_run_unix",
		Help:        "Unix timestamp of the last completed run",
		ConstLabels: labels,
	})

	m.sinkWrites = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sink_writes_total",
		Help:        "Tables written, by sink and table",
		ConstLabels: labels,
	}, []string{"sink", "table"})

	m.sinkErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "sink_errors_total",
		Help:        "Failed sink writes, by sink",
		ConstLabels: labels,
	}, []string{"sink"})
}

// Registry returns the manager's registry.
func (m *Manager) Registry() *prometheus.Registry { return m.registry }

// RecordGamesProcessed adds n processed games.
func (m *Manager) RecordGamesProcessed(n int) { m.gamesProcessed.Add(float64(n)) }

// RecordGamesSkipped adds n skipped source rows for reason.
func (m *Manager) RecordGamesSkipped(reason string, n int) {
	m.gamesSkipped.WithLabelValues(reason).Add(float64(n))
}

// RecordObservations adds n emitted observations.
func (m *Manager) RecordObservations(n int) { m.observations.Add(float64(n)) }

// RecordReversions adds n season reversions.
func (m *Manager) RecordReversions(n int) { m.reversions.Add(float64(n)) }

// ObserveRatingShift records the absolute shift of one game.
func (m *Manager) ObserveRatingShift(points float64) {
	if points < 0 {
		points = -points
	}
	m.ratingShift.Observe(points)
}

// UpdateTeamsTracked sets the number of rated teams.
func (m *Manager) UpdateTeamsTracked(n int) { m.teamsTracked.Set(float64(n)) }

// UpdateTableRows sets the row counts of both rolling tables.
func (m *Manager) UpdateTableRows(team, league int) {
	m.teamRows.Set(float64(team))
	m.leagueRows.Set(float64(league))
}

// RecordStageDuration records how long a pipeline stage took.
func (m *Manager) RecordStageDuration(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(float64(d.Microseconds()) / 1000)
}

// MarkRunFinished stamps the completion time of a run.
func (m *Manager) MarkRunFinished(t time.Time) { m.lastRunUnix.Set(float64(t.Unix())) }

// RecordSinkWrite counts a table written by sink.
func (m *Manager) RecordSinkWrite(sink, table string) {
	m.sinkWrites.WithLabelValues(sink, table).Inc()
}

// RecordSinkError counts a failed write for sink.
func (m *Manager) RecordSinkError(sink string) { m.sinkErrors.WithLabelValues(sink).Inc() }

// WriteTextfile writes all metrics in text exposition format for the node
// exporter textfile collector.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrExportFailed, path, err)
	}
	return nil
}

// Push sends all metrics to a pushgateway, grouped by run id.
func (m *Manager) Push(ctx context.Context, url, runID string) error {
	err := push.New(url, pushJob).
		Gatherer(m.registry).
		Grouping("run_id", runID).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPushFailed, err)
	}
	return nil
}

// Default returns the process-wide manager.
func Default() *Manager { return globalManager }

// GetRegistry returns the process-wide registry.
func GetRegistry() *prometheus.Registry { return customRegistry }
