package ml

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"disease-predictor/internal/domain"
	"disease-predictor/internal/ports"
)

// RegistryConfig contains configuration for the registry
type RegistryConfig struct {
	// ClassifierTimeout is the default timeout for external classifiers.
	ClassifierTimeout time.Duration
}

// Registry resolves domain identifiers to their loaded DomainSpec. Each
// domain's artifacts are read at most once per process on success;
// concurrent first resolutions share a single load. A failed load is not
// cached, so the next Resolve tries again.
type Registry struct {
	store   ports.ArtifactStore
	config  RegistryConfig
	metrics MetricsInterface

	mu    sync.RWMutex
	specs map[domain.ID]*DomainSpec
	group singleflight.Group
}

// NewRegistry creates a registry reading artifacts from store. metrics may
// be nil.
func NewRegistry(store ports.ArtifactStore, config RegistryConfig, metrics MetricsInterface) *Registry {
	if config.ClassifierTimeout <= 0 {
		config.ClassifierTimeout = DefaultExternalTimeout
	}
	return &Registry{
		store:   store,
		config:  config,
		metrics: metrics,
		specs:   make(map[domain.ID]*DomainSpec),
	}
}

// Resolve returns the DomainSpec for id, loading its artifacts on first use.
func (r *Registry) Resolve(id domain.ID) (*DomainSpec, error) {
	decl, ok := domain.Lookup(id)
	if !ok {
		return nil, &domain.Error{Op: "resolve", Kind: domain.KindUnknownDomain, Domain: id}
	}

	if spec := r.cached(id); spec != nil {
		return spec, nil
	}

	v, err, _ := r.group.Do(string(id), func() (interface{}, error) {
		// A load may have finished between the cache check and Do.
		if spec := r.cached(id); spec != nil {
			return spec, nil
		}

		start := time.Now()
		spec, err := r.load(decl)
		if r.metrics != nil {
			r.metrics.ArtifactLoadObserve(string(id), time.Since(start).Seconds(), err == nil)
		}
		if err != nil {
			log.Error().Err(err).Str("domain", string(id)).Msg("failed to load domain artifacts")
			return nil, err
		}

		r.mu.Lock()
		r.specs[id] = spec
		n := len(r.specs)
		r.mu.Unlock()

		if r.metrics != nil {
			r.metrics.LoadedDomainsSet(n)
		}
		log.Info().
			Str("domain", string(id)).
			Int("features", len(spec.Features)).
			Dur("took", time.Since(start)).
			Msg("domain artifacts loaded")
		return spec, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*DomainSpec), nil
}

// Loaded reports whether id is already cached.
func (r *Registry) Loaded(id domain.ID) bool {
	return r.cached(id) != nil
}

// Preload resolves each id, stopping at the first failure.
func (r *Registry) Preload(ids ...domain.ID) error {
	for _, id := range ids {
		if _, err := r.Resolve(id); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) cached(id domain.ID) *DomainSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.specs[id]
}

func (r *Registry) load(decl domain.Declaration) (*DomainSpec, error) {
	features, err := r.loadArtifact(decl, domain.ArtifactFeatures, func(data []byte) (any, error) {
		return decodeManifest(data)
	})
	if err != nil {
		return nil, err
	}

	scaler, err := r.loadArtifact(decl, domain.ArtifactScaler, func(data []byte) (any, error) {
		return decodeScaler(data)
	})
	if err != nil {
		return nil, err
	}

	classifier, err := r.loadArtifact(decl, domain.ArtifactClassifier, func(data []byte) (any, error) {
		return decodeClassifier(data, r.config.ClassifierTimeout)
	})
	if err != nil {
		return nil, err
	}

	spec := &DomainSpec{
		ID:            decl.ID,
		Name:          decl.Name,
		Features:      features.([]string),
		PositiveLabel: decl.PositiveLabel,
		NegativeLabel: decl.NegativeLabel,
		Scaler:        scaler.(*Scaler),
		Classifier:    classifier.(Classifier),
		LoadedAt:      time.Now(),
	}

	if spec.Scaler.Len() != len(spec.Features) {
		log.Warn().
			Str("domain", string(decl.ID)).
			Int("features", len(spec.Features)).
			Int("scaler_params", spec.Scaler.Len()).
			Msg("scaler does not match feature manifest; predictions will fail")
	}
	return spec, nil
}

func (r *Registry) loadArtifact(decl domain.Declaration, kind domain.ArtifactKind, decode func([]byte) (any, error)) (any, error) {
	name := decl.ArtifactName(kind)

	data, err := r.store.Open(name)
	if err != nil {
		return nil, &domain.Error{Op: "load artifact", Kind: domain.KindArtifactNotFound, Domain: decl.ID, Artifact: kind, Err: err}
	}

	v, err := decode(data)
	if err != nil {
		return nil, &domain.Error{
			Op:       "load artifact",
			Kind:     domain.KindArtifactNotFound,
			Domain:   decl.ID,
			Artifact: kind,
			Err:      fmt.Errorf("%s: %w", name, err),
		}
	}
	return v, nil
}
