package ml

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"disease-predictor/internal/domain"
)

func TestRegistry_Resolve(t *testing.T) {
	store := fixtureStore(t)
	metrics := &MockMetrics{}
	reg := NewRegistry(store, RegistryConfig{}, metrics)

	spec, err := reg.Resolve(domain.Heart)
	require.NoError(t, err)
	assert.Equal(t, domain.Heart, spec.ID)
	assert.Equal(t, "Heart Disease", spec.Name)
	assert.Equal(t, testManifests[domain.Heart], spec.Features)
	assert.Equal(t, "Heart Disease Detected", spec.PositiveLabel)
	assert.Equal(t, "No Heart Disease", spec.NegativeLabel)
	assert.Equal(t, 13, spec.Scaler.Len())
	assert.IsType(t, &LogisticClassifier{}, spec.Classifier)
	assert.True(t, reg.Loaded(domain.Heart))
	assert.False(t, reg.Loaded(domain.Kidney))

	again, err := reg.Resolve(domain.Heart)
	require.NoError(t, err)
	assert.Same(t, spec, again)

	for _, name := range []string{"heart", "heart_features", "heart_scaler"} {
		assert.Equal(t, 1, store.openCount(name), name)
	}
	assert.Equal(t, 1, metrics.artifactLoads)
	assert.Equal(t, 1, metrics.loadedDomains)
}

func TestRegistry_UnknownDomainTouchesNoStorage(t *testing.T) {
	store := fixtureStore(t)
	reg := NewRegistry(store, RegistryConfig{}, nil)

	for _, id := range []domain.ID{"Cancer", "", "HEART", "diabetes "} {
		_, err := reg.Resolve(id)
		require.Error(t, err, "%q", id)
		assert.True(t, domain.IsKind(err, domain.KindUnknownDomain), "%q", id)
	}
	assert.Zero(t, store.totalOpens())
}

func TestRegistry_ConcurrentFirstResolveLoadsOnce(t *testing.T) {
	store := fixtureStore(t)
	store.delay = 20 * time.Millisecond
	reg := NewRegistry(store, RegistryConfig{}, nil)

	const n = 32
	specs := make([]*DomainSpec, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			specs[i], errs[i] = reg.Resolve(domain.Diabetes)
		}(i)
	}
	close(start)
	wg.Wait()

	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, specs[0], specs[i])
	}
	for _, name := range []string{"diabetes", "diabetes_features", "diabetes_scaler"} {
		assert.Equal(t, 1, store.openCount(name), name)
	}
}

func TestRegistry_DomainsLoadIndependently(t *testing.T) {
	store := fixtureStore(t)
	reg := NewRegistry(store, RegistryConfig{}, nil)

	var wg sync.WaitGroup
	for _, decl := range domain.All() {
		wg.Add(1)
		go func(id domain.ID) {
			defer wg.Done()
			_, err := reg.Resolve(id)
			assert.NoError(t, err)
		}(decl.ID)
	}
	wg.Wait()

	for _, decl := range domain.All() {
		assert.True(t, reg.Loaded(decl.ID))
		assert.Equal(t, 1, store.openCount(string(decl.ID)))
	}
}

func TestRegistry_MissingArtifact(t *testing.T) {
	tests := []struct {
		missing string
		kind    domain.ArtifactKind
	}{
		{"kidney_features", domain.ArtifactFeatures},
		{"kidney_scaler", domain.ArtifactScaler},
		{"kidney", domain.ArtifactClassifier},
	}

	for _, tt := range tests {
		t.Run(tt.missing, func(t *testing.T) {
			store := fixtureStore(t)
			delete(store.data, tt.missing)
			metrics := &MockMetrics{}
			reg := NewRegistry(store, RegistryConfig{}, metrics)

			_, err := reg.Resolve(domain.Kidney)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, domain.KindArtifactNotFound))

			var de *domain.Error
			require.ErrorAs(t, err, &de)
			assert.Equal(t, tt.kind, de.Artifact)
			assert.Equal(t, domain.Kidney, de.Domain)
			assert.False(t, reg.Loaded(domain.Kidney))
			assert.Equal(t, 1, metrics.loadFailures)
		})
	}
}

func TestRegistry_FailureIsNotCached(t *testing.T) {
	store := fixtureStore(t)
	scaler := store.data["parkinsons_scaler"]
	delete(store.data, "parkinsons_scaler")
	reg := NewRegistry(store, RegistryConfig{}, nil)

	_, err := reg.Resolve(domain.Parkinsons)
	require.Error(t, err)

	store.put("parkinsons_scaler", scaler)

	spec, err := reg.Resolve(domain.Parkinsons)
	require.NoError(t, err)
	assert.Len(t, spec.Features, 11)
	assert.Equal(t, 2, store.openCount("parkinsons_scaler"))
}

func TestRegistry_CorruptArtifact(t *testing.T) {
	store := fixtureStore(t)
	store.put("heart", []byte(`{"type": "logistic_regression"`))
	reg := NewRegistry(store, RegistryConfig{}, nil)

	_, err := reg.Resolve(domain.Heart)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindArtifactNotFound))
	assert.Contains(t, err.Error(), "artifact=classifier")
}

func TestRegistry_ScalerMismatchLoads(t *testing.T) {
	store := fixtureStore(t)
	store.putJSON(t, "heart_scaler", map[string]any{"mean": make([]float64, 12), "scale": make([]float64, 12)})
	reg := NewRegistry(store, RegistryConfig{}, nil)

	spec, err := reg.Resolve(domain.Heart)
	require.NoError(t, err)
	assert.Equal(t, 12, spec.Scaler.Len())
	assert.Len(t, spec.Features, 13)
}

func TestRegistry_ExternalTimeoutDefault(t *testing.T) {
	store := fixtureStore(t)
	store.putJSON(t, "diabetes", map[string]any{"type": "external", "command": "python3"})
	reg := NewRegistry(store, RegistryConfig{ClassifierTimeout: 7 * time.Second}, nil)

	spec, err := reg.Resolve(domain.Diabetes)
	require.NoError(t, err)
	ext, ok := spec.Classifier.(*ExternalClassifier)
	require.True(t, ok)
	assert.Equal(t, 7*time.Second, ext.Timeout)
}

func TestRegistry_Preload(t *testing.T) {
	store := fixtureStore(t)
	reg := NewRegistry(store, RegistryConfig{}, nil)

	require.NoError(t, reg.Preload(domain.Diabetes, domain.Kidney))
	assert.True(t, reg.Loaded(domain.Diabetes))
	assert.True(t, reg.Loaded(domain.Kidney))
	assert.False(t, reg.Loaded(domain.Heart))

	err := reg.Preload(domain.Heart, "Cancer", domain.Parkinsons)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindUnknownDomain))
	assert.True(t, reg.Loaded(domain.Heart))
	assert.False(t, reg.Loaded(domain.Parkinsons))
}
