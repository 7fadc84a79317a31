// Package weighted samples values from a weighted distribution using a
// cumulative sum array and binary search.
package weighted

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

var (
	ErrEmpty          = errors.New("weighted: no weights given")
	ErrLengthMismatch = errors.New("weighted: weights and values differ in length")
	ErrNegativeWeight = errors.New("weighted: negative weight")
	ErrZeroWeights    = errors.New("weighted: all weights are zero")
)

// Chooser picks values in proportion to their weights.
type Chooser[T any] struct {
	values     []T
	cumulative []float64
}

// NewChooser builds a chooser over values. A zero weight means the value is
// never selected; all-zero weights are rejected.
func NewChooser[T any](weights []float64, values []T) (*Chooser[T], error) {
	if len(weights) == 0 {
		return nil, ErrEmpty
	}
	if len(weights) != len(values) {
		return nil, fmt.Errorf("%w: %d weights, %d values", ErrLengthMismatch, len(weights), len(values))
	}

	cumulative := make([]float64, len(weights))
	total := 0.0
	for i, w := range weights {
		if w < 0 {
			return nil, fmt.Errorf("%w at index %d: %v", ErrNegativeWeight, i, w)
		}
		total += w
		cumulative[i] = total
	}
	if total == 0 {
		return nil, ErrZeroWeights
	}

	return &Chooser[T]{
		values:     append([]T(nil), values...),
		cumulative: cumulative,
	}, nil
}

// Uniform builds a chooser giving every value the same weight.
func Uniform[T any](values []T) (*Chooser[T], error) {
	weights := make([]float64, len(values))
	for i := range weights {
		weights[i] = 1
	}
	return NewChooser(weights, values)
}

// Len returns the number of values.
func (c *Chooser[T]) Len() int {
	return len(c.values)
}

// Total returns the sum of all weights.
func (c *Chooser[T]) Total() float64 {
	return c.cumulative[len(c.cumulative)-1]
}

// Index maps a selection in [0, 1) to a bucket index. The target
// selection*Total falls in the first bucket whose cumulative bound is
// strictly greater, so a target exactly on a boundary belongs to the upper
// bucket. Selections outside [0, 1) are clamped.
func (c *Chooser[T]) Index(selection float64) int {
	if selection < 0 {
		selection = 0
	}
	target := selection * c.Total()
	i := sort.Search(len(c.cumulative), func(i int) bool {
		return c.cumulative[i] > target
	})
	if i < len(c.cumulative) {
		return i
	}
	// target >= Total: the last bucket with any weight.
	for i = len(c.cumulative) - 1; i > 0; i-- {
		if c.cumulative[i] > c.cumulative[i-1] {
			break
		}
	}
	return i
}

// Pick returns the value selected by a uniform draw in [0, 1).
func (c *Chooser[T]) Pick(selection float64) T {
	return c.values[c.Index(selection)]
}

// Choose draws a selection from rng and returns the chosen value.
func (c *Chooser[T]) Choose(rng *rand.Rand) T {
	return c.Pick(rng.Float64())
}

// ChooseWeighted is a one-shot NewChooser + Pick.
func ChooseWeighted[T any](weights []float64, values []T, selection float64) (T, error) {
	c, err := NewChooser(weights, values)
	if err != nil {
		var zero T
		return zero, err
	}
	return c.Pick(selection), nil
}
