package weighted

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

func TestChooseWeightedBoundaries(t *testing.T) {
	weights := []float64{1, 1, 1, 1}
	values := []string{"a", "b", "c", "d"}

	tests := []struct {
		selection float64
		want      string
	}{
		{0.0, "a"},
		{0.1, "a"},
		{0.25, "b"}, // exactly on a boundary: upper bucket
		{0.5, "c"},
		{0.74, "c"},
		{0.75, "d"},
		{math.Nextafter(1, 0), "d"},
		{1.0, "d"},  // clamped
		{-0.5, "a"}, // clamped
	}

	for _, tc := range tests {
		got, err := ChooseWeighted(weights, values, tc.selection)
		if err != nil {
			t.Fatalf("ChooseWeighted(%v) failed: %v", tc.selection, err)
		}
		if got != tc.want {
			t.Errorf("ChooseWeighted(%v) = %q, want %q", tc.selection, got, tc.want)
		}
	}
}

func TestSingleWeight(t *testing.T) {
	c, err := NewChooser([]float64{3}, []int{7})
	if err != nil {
		t.Fatalf("NewChooser failed: %v", err)
	}
	for _, s := range []float64{0, 0.3, 0.999} {
		if got := c.Pick(s); got != 7 {
			t.Errorf("Pick(%v) = %d, want 7", s, got)
		}
	}
}

func TestZeroWeightNeverSelected(t *testing.T) {
	weights := []float64{0, 2, 0, 0, 1, 0}
	values := []int{0, 1, 2, 3, 4, 5}
	c, err := NewChooser(weights, values)
	if err != nil {
		t.Fatalf("NewChooser failed: %v", err)
	}

	for i := 0; i <= 1000; i++ {
		s := float64(i) / 1000
		got := c.Pick(s)
		if weights[got] == 0 {
			t.Fatalf("Pick(%v) selected zero-weight index %d", s, got)
		}
	}
	// 2/3 of the mass belongs to index 1.
	if got := c.Pick(0.7); got != 4 {
		t.Errorf("Pick(0.7) = %d, want 4", got)
	}
	if got := c.Pick(0.66); got != 1 {
		t.Errorf("Pick(0.66) = %d, want 1", got)
	}
}

func TestNewChooserErrors(t *testing.T) {
	tests := []struct {
		name    string
		weights []float64
		values  []int
		want    error
	}{
		{"empty", nil, nil, ErrEmpty},
		{"mismatch", []float64{1, 2}, []int{1}, ErrLengthMismatch},
		{"negative", []float64{1, -1}, []int{1, 2}, ErrNegativeWeight},
		{"all zero", []float64{0, 0, 0}, []int{1, 2, 3}, ErrZeroWeights},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewChooser(tc.weights, tc.values)
			if !errors.Is(err, tc.want) {
				t.Errorf("error = %v, want %v", err, tc.want)
			}
		})
	}

	if _, err := ChooseWeighted([]float64{0}, []int{1}, 0.5); !errors.Is(err, ErrZeroWeights) {
		t.Errorf("ChooseWeighted with zero weights error = %v, want ErrZeroWeights", err)
	}
}

func TestChooseDistribution(t *testing.T) {
	c, err := NewChooser([]float64{1, 3}, []string{"rare", "common"})
	if err != nil {
		t.Fatalf("NewChooser failed: %v", err)
	}
	rng := rand.New(rand.NewSource(1))
	counts := map[string]int{}
	for i := 0; i < 8000; i++ {
		counts[c.Choose(rng)]++
	}
	ratio := float64(counts["common"]) / float64(counts["rare"])
	if ratio < 2.5 || ratio > 3.5 {
		t.Errorf("common/rare ratio = %.2f, want about 3", ratio)
	}
}

func TestUniform(t *testing.T) {
	c, err := Uniform([]int{2, 3})
	if err != nil {
		t.Fatalf("Uniform failed: %v", err)
	}
	if c.Len() != 2 || c.Total() != 2 {
		t.Errorf("Len = %d, Total = %v, want 2 and 2", c.Len(), c.Total())
	}
	if got := c.Pick(0.5); got != 3 {
		t.Errorf("Pick(0.5) = %d, want 3", got)
	}
	if _, err := Uniform([]int{}); !errors.Is(err, ErrEmpty) {
		t.Errorf("Uniform(empty) error = %v, want ErrEmpty", err)
	}
}
