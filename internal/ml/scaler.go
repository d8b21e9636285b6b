package ml

import (
	"errors"
	"fmt"

	"disease-predictor/internal/domain"
)

// ScalerKind selects the affine form applied per feature.
type ScalerKind string

const (
	// ScalerStandard computes (x - offset) / scale, as a fitted StandardScaler.
	ScalerStandard ScalerKind = "standard"
	// ScalerMinMax computes x*scale + offset, as a fitted MinMaxScaler.
	ScalerMinMax ScalerKind = "minmax"
)

// Scaler holds per-feature affine parameters aligned to the manifest order.
type Scaler struct {
	Kind   ScalerKind
	Offset []float64
	Scale  []float64
}

// Len returns the number of features the scaler was fit on.
func (s *Scaler) Len() int {
	return len(s.Scale)
}

// Normalize applies s to vec position by position.
func Normalize(vec FeatureVector, s *Scaler) (NormalizedVector, error) {
	if s == nil {
		return nil, &domain.Error{Op: "normalize", Kind: domain.KindScalerDimensionMismatch, Err: errors.New("scaler is nil")}
	}
	if s.Len() != len(vec) || len(s.Offset) != len(s.Scale) {
		return nil, &domain.Error{
			Op:   "normalize",
			Kind: domain.KindScalerDimensionMismatch,
			Err:  fmt.Errorf("scaler has %d parameters, vector has %d features", s.Len(), len(vec)),
		}
	}

	out := make(NormalizedVector, len(vec))
	for i, x := range vec {
		switch s.Kind {
		case ScalerMinMax:
			out[i] = x*s.Scale[i] + s.Offset[i]
		default:
			scale := s.Scale[i]
			if scale == 0 {
				scale = 1 // constant feature at fit time
			}
			out[i] = (x - s.Offset[i]) / scale
		}
	}
	return out, nil
}
