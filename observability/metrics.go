package observability

import (
	"fmt"

	dto "github.com/prometheus/client_model/go"

	"github.com/prometheus/client_golang/prometheus"
)

// File outcome labels for FilesTotal.
const (
	OutcomeModified  = "modified"
	OutcomeUnchanged = "unchanged"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// RunMetrics holds the counters for a single vcxstrip run.
// A dedicated registry keeps repeated runs in one process (tests) independent.
type RunMetrics struct {
	Registry *prometheus.Registry

	// FilesTotal counts processed arguments by outcome
	FilesTotal *prometheus.CounterVec

	// BlocksRemovedTotal counts removed configuration blocks by kind
	BlocksRemovedTotal *prometheus.CounterVec
}

// NewRunMetrics creates and registers the run counters.
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		Registry: prometheus.NewRegistry(),
		FilesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vcxstrip_files_total",
				Help: "Total number of project file arguments by outcome",
			},
			[]string{"outcome"},
		),
		BlocksRemovedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "vcxstrip_blocks_removed_total",
				Help: "Total number of configuration blocks removed by kind",
			},
			[]string{"kind"},
		),
	}
	m.Registry.MustRegister(m.FilesTotal, m.BlocksRemovedTotal)
	return m
}

// RecordFile increments the file counter for outcome.
func (m *RunMetrics) RecordFile(outcome string) {
	m.FilesTotal.WithLabelValues(outcome).Inc()
}

// RecordBlocks adds n removed blocks of the given kind.
func (m *RunMetrics) RecordBlocks(kind string, n int) {
	if n <= 0 {
		return
	}
	m.BlocksRemovedTotal.WithLabelValues(kind).Add(float64(n))
}

// WriteTextfile writes the run counters in Prometheus text format,
// suitable for the node_exporter textfile collector.
func (m *RunMetrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("failed to write metrics file: %w", err)
	}
	return nil
}

// GetCounterValue retrieves the current value of a counter metric with the given labels
// This is primarily intended for testing
func GetCounterValue(counter *prometheus.CounterVec, labels ...string) (float64, error) {
	metric, err := counter.GetMetricWithLabelValues(labels...)
	if err != nil {
		return 0, err
	}

	var pb dto.Metric
	if err := metric.Write(&pb); err != nil {
		return 0, err
	}

	if pb.Counter != nil {
		return pb.Counter.GetValue(), nil
	}

	return 0, nil
}
