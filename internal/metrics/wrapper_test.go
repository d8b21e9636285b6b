package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewWrapper(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewWithRegistry(registry)
	wrapper := NewWrapper(metrics)

	if wrapper == nil {
		t.Fatal("NewWrapper returned nil")
	}
	if wrapper.m != metrics {
		t.Error("Wrapper does not contain correct metrics instance")
	}
}

func TestMetricsWrapper_Predictions(t *testing.T) {
	metrics := NewWithRegistry(prometheus.NewRegistry())
	wrapper := NewWrapper(metrics)

	wrapper.PredictionsInc("heart", true)
	wrapper.PredictionsInc("heart", true)
	wrapper.PredictionsInc("heart", false)

	if v := testutil.ToFloat64(metrics.PredictionsTotal.WithLabelValues("heart", "positive")); v != 2 {
		t.Errorf("Expected 2 positive predictions, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.PredictionsTotal.WithLabelValues("heart", "negative")); v != 1 {
		t.Errorf("Expected 1 negative prediction, got %f", v)
	}
}

func TestMetricsWrapper_Failures(t *testing.T) {
	metrics := NewWithRegistry(prometheus.NewRegistry())
	wrapper := NewWrapper(metrics)

	wrapper.FailuresInc("kidney", "malformed_input")
	wrapper.FailuresInc("kidney", "")

	if v := testutil.ToFloat64(metrics.PredictionFailures.WithLabelValues("kidney", "malformed_input")); v != 1 {
		t.Errorf("Expected 1 malformed failure, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.PredictionFailures.WithLabelValues("kidney", "unknown")); v != 1 {
		t.Errorf("Expected empty kind to be recorded as unknown, got %f", v)
	}
}

func TestMetricsWrapper_ArtifactLoads(t *testing.T) {
	metrics := NewWithRegistry(prometheus.NewRegistry())
	wrapper := NewWrapper(metrics)

	wrapper.ArtifactLoadObserve("diabetes", 0.002, true)
	wrapper.ArtifactLoadObserve("diabetes", 0.001, false)
	wrapper.LoadedDomainsSet(1)

	if v := testutil.ToFloat64(metrics.ArtifactLoads.WithLabelValues("diabetes", "ok")); v != 1 {
		t.Errorf("Expected 1 ok load, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.ArtifactLoads.WithLabelValues("diabetes", "error")); v != 1 {
		t.Errorf("Expected 1 failed load, got %f", v)
	}
	if v := testutil.ToFloat64(metrics.LoadedDomains); v != 1 {
		t.Errorf("Expected loaded domains gauge 1, got %f", v)
	}
	if n := testutil.CollectAndCount(metrics.ArtifactLoadDuration); n != 1 {
		t.Errorf("Expected load duration histogram to be collected, got %d", n)
	}
}

func TestMetricsWrapper_LatencyAndScores(t *testing.T) {
	metrics := NewWithRegistry(prometheus.NewRegistry())
	wrapper := NewWrapper(metrics)

	wrapper.LatencyObserve("parkinsons", 0.01)
	wrapper.ScoreObserve("parkinsons", 0.73)
	wrapper.RequestsInc("predict", 200)

	if n := testutil.CollectAndCount(metrics.PredictionLatency); n != 1 {
		t.Errorf("Expected one latency series, got %d", n)
	}
	if n := testutil.CollectAndCount(metrics.PositiveScores); n != 1 {
		t.Errorf("Expected one score series, got %d", n)
	}
	if v := testutil.ToFloat64(metrics.HTTPRequests.WithLabelValues("predict", "200")); v != 1 {
		t.Errorf("Expected 1 request, got %f", v)
	}
}

func TestNewWithRegistry_DuplicatePanics(t *testing.T) {
	registry := prometheus.NewRegistry()
	NewWithRegistry(registry)

	defer func() {
		if recover() == nil {
			t.Error("Expected duplicate registration to panic")
		}
	}()
	NewWithRegistry(registry)
}
