package ml

import (
	"context"
	"fmt"
	"math"
)

// LogisticClassifier is a fitted binary logistic regression.
type LogisticClassifier struct {
	Coef      []float64
	Intercept float64
}

// Infer returns class 1 when the decision function is positive, matching
// LogisticRegression.predict.
func (c *LogisticClassifier) Infer(_ context.Context, vec NormalizedVector) (int, Probabilities, error) {
	if len(c.Coef) != len(vec) {
		return 0, Probabilities{}, fmt.Errorf("logistic regression expects %d features, got %d", len(c.Coef), len(vec))
	}

	z := c.Intercept
	for i, w := range c.Coef {
		z += w * vec[i]
	}
	if math.IsNaN(z) || math.IsInf(z, 0) {
		return 0, Probabilities{}, fmt.Errorf("decision function is not finite: %v", z)
	}

	p := sigmoid(z)
	class := 0
	if z > 0 {
		class = 1
	}
	return class, Probabilities{1 - p, p}, nil
}

// sigmoid converts a score to a probability
func sigmoid(x float64) float64 {
	return 1.0 / (1.0 + math.Exp(-x))
}
