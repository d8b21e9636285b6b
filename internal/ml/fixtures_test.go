package ml

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"testing"
	"time"

	"disease-predictor/internal/domain"
)

var testManifests = map[domain.ID][]string{
	domain.Diabetes: {"Age", "BMI", "Pregnancies", "Glucose", "Insulin", "BloodPressure", "DiabetesPedigreeFunction", "SkinThickness"},
	domain.Heart:    {"age", "sex", "cp", "trestbps", "chol", "fbs", "restecg", "thalach", "exang", "oldpeak", "slope", "ca", "thal"},
	domain.Parkinsons: {"MDVP:Fo(Hz)", "MDVP:Fhi(Hz)", "MDVP:Flo(Hz)", "MDVP:Jitter(%)", "MDVP:Shimmer",
		"RPDE", "DFA", "spread1", "spread2", "D2", "PPE"},
	domain.Kidney: {"age", "bp", "sg", "al", "su", "bgr", "bu", "sc", "sod", "pot", "hemo", "pcv", "wbcc", "rbcc"},
}

// memStore is an in-memory ports.ArtifactStore that counts reads.
type memStore struct {
	mu    sync.Mutex
	data  map[string][]byte
	opens map[string]int
	delay time.Duration
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte), opens: make(map[string]int)}
}

func (s *memStore) Open(name string) ([]byte, error) {
	s.mu.Lock()
	s.opens[name]++
	data, ok := s.data[name]
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, fs.ErrNotExist)
	}
	return data, nil
}

func (s *memStore) put(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = data
}

func (s *memStore) putJSON(t *testing.T, name string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal %s: %v", name, err)
	}
	s.put(name, data)
}

func (s *memStore) openCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.opens[name]
}

func (s *memStore) totalOpens() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.opens {
		n += c
	}
	return n
}

// putDomain stores an identity scaler and a logistic classifier whose
// weights alternate between +0.01 and -0.01.
func (s *memStore) putDomain(t *testing.T, id domain.ID) {
	t.Helper()
	features := testManifests[id]
	n := len(features)

	mean := make([]float64, n)
	scale := make([]float64, n)
	coef := make([]float64, n)
	for i := range features {
		scale[i] = 1
		coef[i] = 0.01
		if i%2 == 1 {
			coef[i] = -0.01
		}
	}

	s.putJSON(t, string(id)+"_features", features)
	s.putJSON(t, string(id)+"_scaler", map[string]any{"type": "standard", "mean": mean, "scale": scale})
	s.putJSON(t, string(id), map[string]any{"type": "logistic_regression", "coef": coef, "intercept": -0.1})
}

func fixtureStore(t *testing.T) *memStore {
	t.Helper()
	s := newMemStore()
	for id := range testManifests {
		s.putDomain(t, id)
	}
	return s
}

// spyClassifier records calls and returns a fixed decision.
type spyClassifier struct {
	mu    sync.Mutex
	calls int
	last  NormalizedVector
	class int
	probs Probabilities
	err   error
}

func (c *spyClassifier) Infer(_ context.Context, vec NormalizedVector) (int, Probabilities, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.last = append(NormalizedVector(nil), vec...)
	return c.class, c.probs, c.err
}

func (c *spyClassifier) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func identityScaler(n int) *Scaler {
	s := &Scaler{Kind: ScalerStandard, Offset: make([]float64, n), Scale: make([]float64, n)}
	for i := range s.Scale {
		s.Scale[i] = 1
	}
	return s
}

// specFor builds a DomainSpec directly, bypassing the store.
func specFor(id domain.ID, c Classifier) *DomainSpec {
	decl, _ := domain.Lookup(id)
	features := testManifests[id]
	return &DomainSpec{
		ID:            id,
		Name:          decl.Name,
		Features:      features,
		PositiveLabel: decl.PositiveLabel,
		NegativeLabel: decl.NegativeLabel,
		Scaler:        identityScaler(len(features)),
		Classifier:    c,
		LoadedAt:      time.Now(),
	}
}

var errBoom = errors.New("boom")
