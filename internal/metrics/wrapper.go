package metrics

import "strconv"

// MetricsWrapper adapts Metrics to the narrow interfaces the ml and server
// packages declare, so neither imports Prometheus directly.
type MetricsWrapper struct {
	m *Metrics
}

func NewWrapper(m *Metrics) *MetricsWrapper {
	return &MetricsWrapper{m: m}
}

func (w *MetricsWrapper) PredictionsInc(domain string, positive bool) {
	class := "negative"
	if positive {
		class = "positive"
	}
	w.m.PredictionsTotal.WithLabelValues(domain, class).Inc()
}

func (w *MetricsWrapper) FailuresInc(domain, kind string) {
	if kind == "" {
		kind = "unknown"
	}
	w.m.PredictionFailures.WithLabelValues(domain, kind).Inc()
}

func (w *MetricsWrapper) LatencyObserve(domain string, seconds float64) {
	w.m.PredictionLatency.WithLabelValues(domain).Observe(seconds)
}

func (w *MetricsWrapper) ScoreObserve(domain string, p float64) {
	w.m.PositiveScores.WithLabelValues(domain).Observe(p)
}

func (w *MetricsWrapper) ArtifactLoadObserve(domain string, seconds float64, ok bool) {
	status := "ok"
	if !ok {
		status = "error"
	}
	w.m.ArtifactLoads.WithLabelValues(domain, status).Inc()
	w.m.ArtifactLoadDuration.Observe(seconds)
}

func (w *MetricsWrapper) LoadedDomainsSet(n int) {
	w.m.LoadedDomains.Set(float64(n))
}

func (w *MetricsWrapper) RequestsInc(route string, code int) {
	w.m.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
}
