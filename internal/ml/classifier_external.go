package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultExternalTimeout bounds one external inference call when neither the
// artifact nor the registry configures a timeout.
const DefaultExternalTimeout = 5 * time.Second

// ExternalClassifier runs inference in a separate process, typically a
// Python script holding a trained scikit-learn model. The request
// {"features": [...]} is written to stdin and the process must print
// {"prediction": 0|1, "probabilities": [p0, p1]} or {"error": "..."}.
type ExternalClassifier struct {
	Command string
	Args    []string
	Timeout time.Duration
}

type externalRequest struct {
	Features []float64 `json:"features"`
}

type externalResponse struct {
	Probabilities []float64 `json:"probabilities"`
	Prediction    int       `json:"prediction"`
	Error         string    `json:"error,omitempty"`
}

func (c *ExternalClassifier) Infer(ctx context.Context, vec NormalizedVector) (int, Probabilities, error) {
	// Validate feature values for NaN/Inf
	for i, f := range vec {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, Probabilities{}, fmt.Errorf("feature %d is not finite", i)
		}
	}

	reqJSON, err := json.Marshal(externalRequest{Features: vec})
	if err != nil {
		return 0, Probabilities{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultExternalTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Command, c.Args...)
	cmd.Stdin = bytes.NewReader(reqJSON)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		log.Error().
			Err(err).
			Str("command", c.Command).
			Strs("args", c.Args).
			Str("stderr", stderr.String()).
			Dur("timeout", timeout).
			Bool("context_cancelled", ctx.Err() != nil).
			Msg("external inference failed")

		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return 0, Probabilities{}, fmt.Errorf("inference timeout after %v: %w", timeout, ctx.Err())
		}
		// The script may have reported a structured error before exiting.
		var resp externalResponse
		if jerr := json.Unmarshal(stdout.Bytes(), &resp); jerr == nil && resp.Error != "" {
			return 0, Probabilities{}, fmt.Errorf("inference error: %s: %w", resp.Error, err)
		}
		return 0, Probabilities{}, fmt.Errorf("inference command failed: %w, stderr: %s", err, strings.TrimSpace(stderr.String()))
	}

	var resp externalResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return 0, Probabilities{}, fmt.Errorf("failed to parse response: %w, stdout: %s", err, stdout.String())
	}
	if resp.Error != "" {
		return 0, Probabilities{}, fmt.Errorf("inference error: %s", resp.Error)
	}

	probs, err := checkProbabilities(resp.Probabilities)
	if err != nil {
		return 0, Probabilities{}, err
	}
	if resp.Prediction != 0 && resp.Prediction != 1 {
		return 0, Probabilities{}, fmt.Errorf("prediction must be 0 or 1, got %d", resp.Prediction)
	}

	log.Debug().
		Floats64("probabilities", probs[:]).
		Int("prediction", resp.Prediction).
		Msg("external inference successful")

	return resp.Prediction, probs, nil
}

// checkProbabilities validates a two-class distribution and renormalises it
// when it drifts from 1 by more than 1e-6.
func checkProbabilities(p []float64) (Probabilities, error) {
	if len(p) != 2 {
		return Probabilities{}, fmt.Errorf("expected 2 probabilities, got %d", len(p))
	}
	for i, v := range p {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return Probabilities{}, fmt.Errorf("invalid probability %d: %f", i, v)
		}
	}

	sum := p[0] + p[1]
	if sum <= 0 {
		return Probabilities{}, errors.New("probabilities sum to zero")
	}
	if math.Abs(sum-1) > 1e-6 {
		return Probabilities{p[0] / sum, p[1] / sum}, nil
	}
	return Probabilities{p[0], p[1]}, nil
}
