package ml

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Tree is a binary decision tree in array form: node i splits on
// Feature[i] <= Threshold[i] into Left[i] / Right[i]; a node with
// Left[i] == -1 is a leaf whose class weights are Value[i].
type Tree struct {
	Feature   []int
	Threshold []float64
	Left      []int
	Right     []int
	Value     [][2]float64
}

// ForestClassifier averages the leaf class distributions of its trees, as
// RandomForestClassifier.predict_proba does.
type ForestClassifier struct {
	Trees []Tree
}

func (c *ForestClassifier) Infer(_ context.Context, vec NormalizedVector) (int, Probabilities, error) {
	if len(c.Trees) == 0 {
		return 0, Probabilities{}, errors.New("forest has no trees")
	}

	var sum Probabilities
	for t := range c.Trees {
		leaf, err := c.Trees[t].leaf(vec)
		if err != nil {
			return 0, Probabilities{}, fmt.Errorf("tree %d: %w", t, err)
		}
		sum[0] += leaf[0]
		sum[1] += leaf[1]
	}

	n := float64(len(c.Trees))
	probs := Probabilities{sum[0] / n, sum[1] / n}
	class := 0
	if probs[1] > probs[0] {
		class = 1
	}
	return class, probs, nil
}

// leaf walks the tree and returns the normalised class distribution of the
// leaf reached by vec.
func (t *Tree) leaf(vec NormalizedVector) (Probabilities, error) {
	node := 0
	for steps := 0; steps <= len(t.Left); steps++ {
		if t.Left[node] == -1 {
			v := t.Value[node]
			total := v[0] + v[1]
			if total <= 0 {
				return Probabilities{}, fmt.Errorf("leaf %d has no weight", node)
			}
			return Probabilities{v[0] / total, v[1] / total}, nil
		}

		f := t.Feature[node]
		if f < 0 || f >= len(vec) {
			return Probabilities{}, fmt.Errorf("node %d splits on feature %d of %d", node, f, len(vec))
		}
		if vec[f] <= t.Threshold[node] {
			node = t.Left[node]
		} else {
			node = t.Right[node]
		}
	}
	return Probabilities{}, errors.New("tree walk did not reach a leaf")
}

// check validates the array layout so Infer can index without bounds panics.
func (t *Tree) check() error {
	n := len(t.Left)
	if n == 0 {
		return errors.New("tree has no nodes")
	}
	if len(t.Right) != n || len(t.Feature) != n || len(t.Threshold) != n || len(t.Value) != n {
		return fmt.Errorf("tree arrays differ in length (left=%d right=%d feature=%d threshold=%d value=%d)",
			n, len(t.Right), len(t.Feature), len(t.Threshold), len(t.Value))
	}
	for i := 0; i < n; i++ {
		for _, w := range t.Value[i] {
			if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
				return fmt.Errorf("node %d has invalid class weight %v", i, w)
			}
		}
		if t.Left[i] == -1 {
			continue
		}
		if t.Left[i] <= 0 || t.Left[i] >= n || t.Right[i] <= 0 || t.Right[i] >= n {
			return fmt.Errorf("node %d has children out of range", i)
		}
	}
	return nil
}
