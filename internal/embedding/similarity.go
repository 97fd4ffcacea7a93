package embedding

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Neighbor is a token and its cosine similarity to a query vector.
type Neighbor struct {
	Token      string
	Similarity float64
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// The result is a value between -1 and 1, where 1 means the vectors point the
// same way, 0 means they are orthogonal, and -1 means they are opposite.
func CosineSimilarity(a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same dimension: %d != %d", len(a), len(b))
	}

	normA := floats.Norm(a, 2)
	normB := floats.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0, fmt.Errorf("one or both vectors have zero magnitude")
	}

	return floats.Dot(a, b) / (normA * normB), nil
}

// Nearest returns up to n rows most similar to the row of token, excluding
// token itself, highest similarity first. Zero rows are skipped.
func (t *Table) Nearest(token string, n int) ([]Neighbor, bool) {
	i, ok := t.index[token]
	if !ok {
		return nil, false
	}
	query := t.row(i)

	neighbors := make([]Neighbor, 0, len(t.tokens))
	for j, tok := range t.tokens {
		if j == i {
			continue
		}
		sim, err := CosineSimilarity(query, t.row(j))
		if err != nil {
			continue
		}
		neighbors = append(neighbors, Neighbor{Token: tok, Similarity: sim})
	}

	sort.SliceStable(neighbors, func(a, b int) bool {
		return neighbors[a].Similarity > neighbors[b].Similarity
	})
	if n < len(neighbors) {
		neighbors = neighbors[:n]
	}
	return neighbors, true
}
