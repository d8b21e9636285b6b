package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"disease-predictor/internal/domain"
)

// Align maps raw onto spec's feature order. Features missing from raw are
// set to 0; fields not in the manifest are ignored. A present value that
// cannot be read as a finite number fails with a malformed input error.
func Align(raw domain.RawInput, spec *DomainSpec) (FeatureVector, error) {
	vec := make(FeatureVector, len(spec.Features))
	for i, name := range spec.Features {
		v, ok := raw[name]
		if !ok {
			continue
		}
		f, err := coerce(v)
		if err != nil {
			return nil, &domain.Error{
				Op:     "align",
				Kind:   domain.KindMalformedInput,
				Domain: spec.ID,
				Field:  name,
				Err:    err,
			}
		}
		vec[i] = f
	}
	return vec, nil
}

func coerce(v any) (float64, error) {
	var (
		f   float64
		err error
	)

	switch x := v.(type) {
	case nil:
		return 0, errors.New("value is null")
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return 0, errors.New("value is empty")
		}
		f, err = cast.ToFloat64E(s)
	case json.Number:
		f, err = x.Float64()
	default:
		f, err = cast.ToFloat64E(v)
	}
	if err != nil {
		return 0, fmt.Errorf("not numeric: %v", v)
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not finite: %v", v)
	}
	return f, nil
}
