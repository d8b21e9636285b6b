// Package ml implements the prediction core: resolving a domain's artifacts,
// aligning raw inputs to the feature manifest, scaling, running the
// classifier and packaging the result.
//
// Artifacts are loaded once per process and shared read-only across
// concurrent predictions. Every failure is reported as a *domain.Error whose
// kind identifies the stage that failed.
package ml

import (
	"context"
	"time"

	"disease-predictor/internal/domain"
)

// FeatureVector holds raw feature values in manifest order.
type FeatureVector []float64

// NormalizedVector holds scaled feature values in manifest order.
type NormalizedVector []float64

// Probabilities is the (negative, positive) class probability pair.
type Probabilities [2]float64

// Negative returns the negative-class probability.
func (p Probabilities) Negative() float64 { return p[0] }

// Positive returns the positive-class probability.
func (p Probabilities) Positive() float64 { return p[1] }

// Classifier runs a trained binary classifier. The returned class is the
// backend's own decision and is never re-derived from the probabilities.
type Classifier interface {
	Infer(ctx context.Context, vec NormalizedVector) (int, Probabilities, error)
}

// DomainSpec is a domain's loaded artifacts. It is immutable once returned
// by the Registry and shared between goroutines; callers must not modify
// Features.
type DomainSpec struct {
	ID            domain.ID
	Name          string
	Features      []string
	PositiveLabel string
	NegativeLabel string
	Scaler        *Scaler
	Classifier    Classifier
	LoadedAt      time.Time
}

// FeatureNames returns a copy of the manifest order.
func (s *DomainSpec) FeatureNames() []string {
	out := make([]string, len(s.Features))
	copy(out, s.Features)
	return out
}

// MetricsInterface defines metrics methods needed by the prediction core
type MetricsInterface interface {
	PredictionsInc(domain string, positive bool)
	FailuresInc(domain, kind string)
	LatencyObserve(domain string, seconds float64)
	ScoreObserve(domain string, p float64)
	ArtifactLoadObserve(domain string, seconds float64, ok bool)
	LoadedDomainsSet(n int)
}
