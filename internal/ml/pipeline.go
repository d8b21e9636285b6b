package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog/log"

	"disease-predictor/internal/domain"
)

// Pipeline composes the registry, aligner, scaler, classifier and formatter
// into the single predict operation.
type Pipeline struct {
	registry *Registry
	metrics  MetricsInterface
}

// NewPipeline creates a pipeline over registry. metrics may be nil.
func NewPipeline(registry *Registry, metrics MetricsInterface) *Pipeline {
	return &Pipeline{registry: registry, metrics: metrics}
}

// Registry returns the underlying registry.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Predict runs raw through id's artifacts. Stages run strictly in order and
// the first failure is returned unchanged.
func (p *Pipeline) Predict(ctx context.Context, id domain.ID, raw domain.RawInput) (Result, error) {
	start := time.Now()

	res, err := p.predict(ctx, id, raw)

	if p.metrics != nil {
		p.metrics.LatencyObserve(string(id), time.Since(start).Seconds())
	}
	if err != nil {
		if p.metrics != nil {
			p.metrics.FailuresInc(string(id), string(domain.KindOf(err)))
		}
		log.Warn().Err(err).Str("domain", string(id)).Msg("prediction failed")
		return Result{}, err
	}

	if p.metrics != nil {
		p.metrics.PredictionsInc(string(id), res.Positive)
		p.metrics.ScoreObserve(string(id), res.ProbabilityPositive)
	}
	log.Debug().
		Str("domain", string(id)).
		Bool("positive", res.Positive).
		Float64("probability_positive", res.ProbabilityPositive).
		Dur("took", time.Since(start)).
		Msg("prediction successful")
	return res, nil
}

// PredictRecord validates a typed record before predicting.
func (p *Pipeline) PredictRecord(ctx context.Context, rec domain.Record) (Result, error) {
	if err := domain.Validate(rec); err != nil {
		if p.metrics != nil && rec != nil {
			p.metrics.FailuresInc(string(rec.Domain()), string(domain.KindMalformedInput))
		}
		return Result{}, err
	}
	return p.Predict(ctx, rec.Domain(), rec.Raw())
}

func (p *Pipeline) predict(ctx context.Context, id domain.ID, raw domain.RawInput) (Result, error) {
	spec, err := p.registry.Resolve(id)
	if err != nil {
		return Result{}, err
	}

	vec, err := Align(raw, spec)
	if err != nil {
		return Result{}, err
	}
	if missing := missingFields(raw, spec.Features); len(missing) > 0 {
		log.Debug().Str("domain", string(id)).Strs("fields", missing).Msg("absent features defaulted to 0")
	}

	norm, err := Normalize(vec, spec.Scaler)
	if err != nil {
		return Result{}, withDomain(err, id)
	}

	for i, v := range norm {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Result{}, &domain.Error{
				Op:     "infer",
				Kind:   domain.KindClassifierError,
				Domain: id,
				Field:  spec.Features[i],
				Err:    fmt.Errorf("scaled value is not finite: %v", v),
			}
		}
	}

	class, probs, err := spec.Classifier.Infer(ctx, norm)
	if err == nil {
		probs, err = checkProbabilities(probs[:])
	}
	if err != nil {
		return Result{}, &domain.Error{Op: "infer", Kind: domain.KindClassifierError, Domain: id, Err: err}
	}

	res := Format(class, probs, spec.PositiveLabel, spec.NegativeLabel)
	res.Domain = id
	return res, nil
}

func missingFields(raw domain.RawInput, features []string) []string {
	var missing []string
	for _, name := range features {
		if _, ok := raw[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func withDomain(err error, id domain.ID) error {
	var de *domain.Error
	if errors.As(err, &de) && de.Domain == "" {
		de.Domain = id
	}
	return err
}
