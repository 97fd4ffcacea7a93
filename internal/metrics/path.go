package metrics

import "slices"

// PathExample pairs a score matrix with the path a decoder is expected to
// find through it.
type PathExample struct {
	Scores [][]float64
	Path   []int
}

// PathSearch finds a path through a score matrix, e.g. a Viterbi decoder.
type PathSearch func(scores [][]float64) []int

// PathSearchSuccess runs search on every example and returns how many
// produced exactly the expected path, along with the number of examples.
func PathSearchSuccess(search PathSearch, examples []PathExample) (int, int) {
	success := 0
	for _, ex := range examples {
		if slices.Equal(search(ex.Scores), ex.Path) {
			success++
		}
	}
	return success, len(examples)
}
