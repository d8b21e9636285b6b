package ml

import "sync"

// MockMetrics implements MetricsInterface for testing
type MockMetrics struct {
	mu            sync.Mutex
	predictions   map[string]int
	positives     int
	failures      map[string]int
	latencyCount  int
	scores        []float64
	artifactLoads int
	loadFailures  int
	loadedDomains int
}

func (m *MockMetrics) PredictionsInc(domain string, positive bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.predictions == nil {
		m.predictions = make(map[string]int)
	}
	m.predictions[domain]++
	if positive {
		m.positives++
	}
}

func (m *MockMetrics) FailuresInc(domain, kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures == nil {
		m.failures = make(map[string]int)
	}
	m.failures[kind]++
}

func (m *MockMetrics) LatencyObserve(domain string, seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencyCount++
}

func (m *MockMetrics) ScoreObserve(domain string, p float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scores = append(m.scores, p)
}

func (m *MockMetrics) ArtifactLoadObserve(domain string, seconds float64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.artifactLoads++
	if !ok {
		m.loadFailures++
	}
}

func (m *MockMetrics) LoadedDomainsSet(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.loadedDomains = n
}

// Failures returns the failure count recorded for kind.
func (m *MockMetrics) Failures(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failures[kind]
}

// Predictions returns the success count recorded for domain.
func (m *MockMetrics) Predictions(domain string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.predictions[domain]
}
