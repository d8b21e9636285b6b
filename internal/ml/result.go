package ml

import "disease-predictor/internal/domain"

// Result is a display-ready prediction.
type Result struct {
	Domain              domain.ID `json:"domain"`
	Positive            bool      `json:"predicted_class"`
	ProbabilityNegative float64   `json:"probability_negative"`
	ProbabilityPositive float64   `json:"probability_positive"`
	PositiveLabel       string    `json:"positive_label"`
	NegativeLabel       string    `json:"negative_label"`
}

// Format packages a classifier decision. The class is passed through as-is.
func Format(class int, probs Probabilities, positiveLabel, negativeLabel string) Result {
	return Result{
		Positive:            class == 1,
		ProbabilityNegative: probs.Negative(),
		ProbabilityPositive: probs.Positive(),
		PositiveLabel:       positiveLabel,
		NegativeLabel:       negativeLabel,
	}
}

// Label returns the display label of the predicted class.
func (r Result) Label() string {
	if r.Positive {
		return r.PositiveLabel
	}
	return r.NegativeLabel
}

func (r Result) PositivePercent() float64 { return r.ProbabilityPositive * 100 }

func (r Result) NegativePercent() float64 { return r.ProbabilityNegative * 100 }
