// Package metrics scores sequence-labeling predictions.
//
// Labels are integer class IDs. Every function takes the true labels first
// and the predicted labels second; both must have the same shape.
package metrics

import (
	"fmt"

	"github.com/localrivet/vocabprep/internal/errortypes"
)

// IgnoreClassAccuracy returns the fraction of positions whose true label is
// not ignore and whose prediction matches it. Positions labeled ignore, such
// as padding, count neither as hits nor as attempts. The denominator is at
// least 1, so a batch made only of ignored positions scores 0.
func IgnoreClassAccuracy(yTrue, yPred [][]int, ignore int) (float64, error) {
	if err := checkShape(yTrue, yPred); err != nil {
		return 0, err
	}

	matches, counted := 0, 0
	for i, seq := range yTrue {
		for j, label := range seq {
			if label == ignore {
				continue
			}
			counted++
			if yPred[i][j] == label {
				matches++
			}
		}
	}
	return float64(matches) / float64(max(counted, 1)), nil
}

// WholeSentenceAccuracy scores whole sequences. A position matches when the
// prediction equals the true label or the true label is ignore. The result is
// the number of sequences in which every position matches, divided by the
// number of sequences in which at least one position matches. It is 0 when
// no sequence has a matching position.
func WholeSentenceAccuracy(yTrue, yPred [][]int, ignore int) (float64, error) {
	if err := checkShape(yTrue, yPred); err != nil {
		return 0, err
	}

	full, partial := 0, 0
	for i, seq := range yTrue {
		allMatch, anyMatch := true, false
		for j, label := range seq {
			if label == ignore || yPred[i][j] == label {
				anyMatch = true
			} else {
				allMatch = false
			}
		}
		if allMatch && anyMatch {
			full++
		}
		if anyMatch {
			partial++
		}
	}
	if partial == 0 {
		return 0, nil
	}
	return float64(full) / float64(partial), nil
}

// Argmax converts rows of class scores (one-hot or probabilities) to the
// index of the largest score in each row. Ties resolve to the lowest index;
// an empty row maps to -1.
func Argmax(rows [][]float64) []int {
	out := make([]int, len(rows))
	for i, row := range rows {
		best := -1
		for j, v := range row {
			if best < 0 || v > row[best] {
				best = j
			}
		}
		out[i] = best
	}
	return out
}

// ArgmaxSequences applies Argmax to every sequence of a batch.
func ArgmaxSequences(batch [][][]float64) [][]int {
	out := make([][]int, len(batch))
	for i, seq := range batch {
		out[i] = Argmax(seq)
	}
	return out
}

func checkShape(yTrue, yPred [][]int) error {
	if len(yTrue) != len(yPred) {
		return errortypes.ValidationError(
			fmt.Errorf("%d true sequences, %d predicted", len(yTrue), len(yPred)),
			"label batches differ in length")
	}
	for i := range yTrue {
		if len(yTrue[i]) != len(yPred[i]) {
			return errortypes.ValidationError(
				fmt.Errorf("sequence %d: %d true labels, %d predicted", i, len(yTrue[i]), len(yPred[i])),
				"label sequences differ in length").WithField("sequence", i)
		}
	}
	return nil
}
