package metrics

import (
	"math"
	"reflect"
	"testing"

	"github.com/localrivet/vocabprep/internal/errortypes"
)

func TestIgnoreClassAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		yTrue    [][]int
		yPred    [][]int
		ignore   int
		expected float64
	}{
		{
			name:     "padding ignored",
			yTrue:    [][]int{{1, 2, 0, 0}, {3, 3, 3, 0}},
			yPred:    [][]int{{1, 1, 5, 5}, {3, 3, 3, 3}},
			ignore:   0,
			expected: 4.0 / 5.0,
		},
		{
			name:     "all correct",
			yTrue:    [][]int{{1, 2}},
			yPred:    [][]int{{1, 2}},
			ignore:   0,
			expected: 1,
		},
		{
			name:     "only padding",
			yTrue:    [][]int{{0, 0}},
			yPred:    [][]int{{1, 1}},
			ignore:   0,
			expected: 0,
		},
		{
			name:     "custom ignore label",
			yTrue:    [][]int{{0, 9, 1}},
			yPred:    [][]int{{0, 0, 0}},
			ignore:   9,
			expected: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := IgnoreClassAccuracy(tt.yTrue, tt.yPred, tt.ignore)
			if err != nil {
				t.Fatalf("IgnoreClassAccuracy() error = %v", err)
			}
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("IgnoreClassAccuracy() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestWholeSentenceAccuracy(t *testing.T) {
	tests := []struct {
		name     string
		yTrue    [][]int
		yPred    [][]int
		expected float64
	}{
		{
			name:     "padding counts as match",
			yTrue:    [][]int{{1, 2, 0}, {3, 4, 0}},
			yPred:    [][]int{{1, 2, 7}, {3, 1, 0}},
			expected: 0.5,
		},
		{
			name:     "sentence without any match is not counted",
			yTrue:    [][]int{{1, 2}, {3, 4}},
			yPred:    [][]int{{1, 2}, {5, 5}},
			expected: 1,
		},
		{
			name:     "nothing matches",
			yTrue:    [][]int{{1}},
			yPred:    [][]int{{2}},
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WholeSentenceAccuracy(tt.yTrue, tt.yPred, 0)
			if err != nil {
				t.Fatalf("WholeSentenceAccuracy() error = %v", err)
			}
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("WholeSentenceAccuracy() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestShapeMismatch(t *testing.T) {
	_, err := IgnoreClassAccuracy([][]int{{1}}, [][]int{{1}, {2}}, 0)
	if !errortypes.IsValidationError(err) {
		t.Errorf("Expected validation error for batch length mismatch, got %v", err)
	}
	_, err = WholeSentenceAccuracy([][]int{{1, 2}}, [][]int{{1}}, 0)
	if !errortypes.IsValidationError(err) {
		t.Errorf("Expected validation error for sequence length mismatch, got %v", err)
	}
}

func TestArgmax(t *testing.T) {
	got := Argmax([][]float64{{0, 1, 0}, {0.2, 0.7, 0.1}, {0.5, 0.5}, {}})
	want := []int{1, 1, 0, -1}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Argmax() = %v, want %v", got, want)
	}

	batch := ArgmaxSequences([][][]float64{{{1, 0}, {0, 1}}})
	if !reflect.DeepEqual(batch, [][]int{{0, 1}}) {
		t.Errorf("ArgmaxSequences() = %v", batch)
	}
}

func TestPathSearchSuccess(t *testing.T) {
	greedy := func(scores [][]float64) []int { return Argmax(scores) }
	examples := []PathExample{
		{Scores: [][]float64{{1, 0}, {0, 1}}, Path: []int{0, 1}},
		{Scores: [][]float64{{1, 0}}, Path: []int{1}},
	}

	success, total := PathSearchSuccess(greedy, examples)
	if success != 1 || total != 2 {
		t.Errorf("PathSearchSuccess() = %d/%d, want 1/2", success, total)
	}
}
