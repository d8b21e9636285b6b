package ml

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Artifacts are YAML documents; JSON artifacts decode through the same path
// since YAML is a superset of JSON.

type scalerArtifact struct {
	Type  string    `yaml:"type"`
	Mean  []float64 `yaml:"mean"`
	Scale []float64 `yaml:"scale"`
	Min   []float64 `yaml:"min"`
}

type classifierArtifact struct {
	Type string `yaml:"type"`

	// logistic_regression
	Coef      []float64 `yaml:"coef"`
	Intercept float64   `yaml:"intercept"`

	// random_forest
	Trees []treeArtifact `yaml:"trees"`

	// external
	Command string   `yaml:"command"`
	Args    []string `yaml:"args"`
	Timeout string   `yaml:"timeout"`
}

type treeArtifact struct {
	Feature       []int        `yaml:"feature"`
	Threshold     []float64    `yaml:"threshold"`
	ChildrenLeft  []int        `yaml:"children_left"`
	ChildrenRight []int        `yaml:"children_right"`
	Value         [][2]float64 `yaml:"value"`
}

const (
	classifierLogistic = "logistic_regression"
	classifierForest   = "random_forest"
	classifierExternal = "external"
)

func decodeManifest(data []byte) ([]string, error) {
	var features []string
	if err := yaml.Unmarshal(data, &features); err != nil {
		return nil, fmt.Errorf("decode feature manifest: %w", err)
	}
	if len(features) == 0 {
		return nil, errors.New("feature manifest is empty")
	}

	seen := make(map[string]struct{}, len(features))
	for i, f := range features {
		if f == "" {
			return nil, fmt.Errorf("feature %d has no name", i)
		}
		if _, dup := seen[f]; dup {
			return nil, fmt.Errorf("feature %q listed twice", f)
		}
		seen[f] = struct{}{}
	}
	return features, nil
}

func decodeScaler(data []byte) (*Scaler, error) {
	var a scalerArtifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode scaler: %w", err)
	}

	switch ScalerKind(a.Type) {
	case ScalerStandard, "":
		// with_mean=False or with_std=False leave one side unset
		n := max(len(a.Mean), len(a.Scale))
		if n == 0 {
			return nil, errors.New("standard scaler has no parameters")
		}
		offset := fill(a.Mean, n, 0)
		scale := fill(a.Scale, n, 1)
		if offset == nil || scale == nil {
			return nil, fmt.Errorf("standard scaler mean/scale lengths differ (%d vs %d)", len(a.Mean), len(a.Scale))
		}
		return &Scaler{Kind: ScalerStandard, Offset: offset, Scale: scale}, nil

	case ScalerMinMax:
		if len(a.Scale) == 0 || len(a.Min) != len(a.Scale) {
			return nil, fmt.Errorf("minmax scaler min/scale lengths differ (%d vs %d)", len(a.Min), len(a.Scale))
		}
		return &Scaler{Kind: ScalerMinMax, Offset: a.Min, Scale: a.Scale}, nil
	}
	return nil, fmt.Errorf("unsupported scaler type %q", a.Type)
}

// fill returns v, or n copies of def when v is empty. It returns nil when v
// is non-empty with a length other than n.
func fill(v []float64, n int, def float64) []float64 {
	if len(v) == n {
		return v
	}
	if len(v) != 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = def
	}
	return out
}

func decodeClassifier(data []byte, defaultTimeout time.Duration) (Classifier, error) {
	var a classifierArtifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode classifier: %w", err)
	}

	switch a.Type {
	case classifierLogistic:
		if len(a.Coef) == 0 {
			return nil, errors.New("logistic regression has no coefficients")
		}
		return &LogisticClassifier{Coef: a.Coef, Intercept: a.Intercept}, nil

	case classifierForest:
		if len(a.Trees) == 0 {
			return nil, errors.New("random forest has no trees")
		}
		trees := make([]Tree, len(a.Trees))
		for i, ta := range a.Trees {
			trees[i] = Tree{
				Feature:   ta.Feature,
				Threshold: ta.Threshold,
				Left:      ta.ChildrenLeft,
				Right:     ta.ChildrenRight,
				Value:     ta.Value,
			}
			if err := trees[i].check(); err != nil {
				return nil, fmt.Errorf("tree %d: %w", i, err)
			}
		}
		return &ForestClassifier{Trees: trees}, nil

	case classifierExternal:
		if a.Command == "" {
			return nil, errors.New("external classifier has no command")
		}
		timeout := defaultTimeout
		if a.Timeout != "" {
			d, err := time.ParseDuration(a.Timeout)
			if err != nil {
				return nil, fmt.Errorf("external classifier timeout: %w", err)
			}
			timeout = d
		}
		return &ExternalClassifier{Command: a.Command, Args: a.Args, Timeout: timeout}, nil
	}
	return nil, fmt.Errorf("unsupported classifier type %q", a.Type)
}
