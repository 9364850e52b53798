package prometheus

import (
	"time"

	ftypes "github.com/turtacn/fragvocab/pkg/types/fragment"
)

// RunMetrics holds the metrics of a vocabulary build.
type RunMetrics struct {
	MoleculesProcessed CounterVec
	ClustersTotal      CounterVec
	FragmentsCut       CounterVec
	VocabularySize     GaugeVec
	MoleculeDuration   HistogramVec
	SinkPublishTotal   CounterVec
	RunDuration        GaugeVec
}

const (
	StatusOK      = "ok"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// NewRunMetrics registers all metrics and returns RunMetrics struct.
func NewRunMetrics(collector MetricsCollector) *RunMetrics {
	if collector == nil {
		collector = NewNopCollector()
	}
	return &RunMetrics{
		MoleculesProcessed: collector.RegisterCounter("molecules_processed_total", "Corpus molecules processed", "status"),
		ClustersTotal:      collector.RegisterCounter("clusters_total", "Clusters found", "tag"),
		FragmentsCut:       collector.RegisterCounter("fragments_cut_total", "Fragment cut attempts", "status"),
		VocabularySize:     collector.RegisterGauge("vocabulary_size", "Distinct fragments per vocabulary", "variant"),
		MoleculeDuration:   collector.RegisterHistogram("molecule_duration_seconds", "Per-molecule decomposition time", nil),
		SinkPublishTotal:   collector.RegisterCounter("sink_publish_total", "Vocabulary sink publications", "sink", "status"),
		RunDuration:        collector.RegisterGauge("run_duration_seconds", "Wall time of the last build"),
	}
}

// MoleculeTimer starts timing one corpus molecule against
// molecule_duration_seconds.
func (m *RunMetrics) MoleculeTimer() *Timer {
	return NewTimer(m.MoleculeDuration.WithLabelValues())
}

func (m *RunMetrics) RecordMolecule(skipped bool) {
	if skipped {
		m.MoleculesProcessed.WithLabelValues(StatusSkipped).Inc()
		return
	}
	m.MoleculesProcessed.WithLabelValues(StatusOK).Inc()
}

func (m *RunMetrics) RecordCluster(tag ftypes.ClusterTag, cutOK bool) {
	m.ClustersTotal.WithLabelValues(string(tag)).Inc()
	if cutOK {
		m.FragmentsCut.WithLabelValues(StatusOK).Inc()
	} else {
		m.FragmentsCut.WithLabelValues(StatusFailed).Inc()
	}
}

func (m *RunMetrics) SetVocabularySize(variant ftypes.Variant, n int) {
	m.VocabularySize.WithLabelValues(string(variant)).Set(float64(n))
}

func (m *RunMetrics) RecordSink(sink string, err error) {
	status := StatusOK
	if err != nil {
		status = StatusFailed
	}
	m.SinkPublishTotal.WithLabelValues(sink, status).Inc()
}

func (m *RunMetrics) SetRunDuration(d time.Duration) {
	m.RunDuration.WithLabelValues().Set(d.Seconds())
}
