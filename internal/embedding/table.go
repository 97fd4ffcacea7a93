// Package embedding loads pretrained word embeddings and aligns them to a
// vocabulary.
package embedding

import (
	"fmt"

	"github.com/localrivet/vocabprep/internal/errortypes"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Table maps tokens to fixed-length vectors. Rows keep insertion order.
type Table struct {
	dim    int
	tokens []string
	index  map[string]int
	data   []float64 // row-major, len(tokens)*dim

	// synthesized lists the tokens whose rows were generated by Align.
	synthesized []string
}

// NewTable returns an empty table of the given dimensionality.
func NewTable(dim int) *Table {
	return &Table{
		dim:   dim,
		index: make(map[string]int),
	}
}

// FromRows builds a table from parallel token and vector slices.
func FromRows(tokens []string, rows [][]float64) (*Table, error) {
	if len(tokens) != len(rows) {
		return nil, errortypes.ValidationError(
			fmt.Errorf("%d tokens, %d rows", len(tokens), len(rows)),
			"token and row counts differ")
	}
	dim := 0
	if len(rows) > 0 {
		dim = len(rows[0])
	}
	t := NewTable(dim)
	for i, tok := range tokens {
		if err := t.Add(tok, rows[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// FromColumns builds a table from a dim x len(tokens) matrix in which column j
// holds the vector of tokens[j].
func FromColumns(tokens []string, m mat.Matrix) (*Table, error) {
	r, c := m.Dims()
	if c != len(tokens) {
		return nil, errortypes.ValidationError(
			fmt.Errorf("%d tokens, %d columns", len(tokens), c),
			"token and column counts differ")
	}
	t := NewTable(r)
	col := make([]float64, r)
	for j, tok := range tokens {
		mat.Col(col, j, m)
		if err := t.Add(tok, col); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// Add appends a row for token. The vector is copied.
func (t *Table) Add(token string, vec []float64) error {
	if len(vec) != t.dim {
		return errortypes.ValidationError(
			fmt.Errorf("vector for %q has %d components, want %d", token, len(vec), t.dim),
			"embedding dimension mismatch")
	}
	if _, dup := t.index[token]; dup {
		return errortypes.ValidationError(fmt.Errorf("token %q", token), "duplicate embedding row")
	}
	t.index[token] = len(t.tokens)
	t.tokens = append(t.tokens, token)
	t.data = append(t.data, vec...)
	return nil
}

// Dim returns the vector length.
func (t *Table) Dim() int {
	return t.dim
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.tokens)
}

// Tokens returns the row tokens in order.
func (t *Table) Tokens() []string {
	return append([]string(nil), t.tokens...)
}

// Vector returns a copy of the vector of token, or false when the table has no
// row for it.
func (t *Table) Vector(token string) ([]float64, bool) {
	i, ok := t.index[token]
	if !ok {
		return nil, false
	}
	return append([]float64(nil), t.row(i)...), true
}

// Row returns a copy of the i-th row.
func (t *Table) Row(i int) []float64 {
	return append([]float64(nil), t.row(i)...)
}

func (t *Table) row(i int) []float64 {
	return t.data[i*t.dim : (i+1)*t.dim]
}

// Synthesized returns the tokens whose rows were generated rather than copied
// from the source table. It is empty for tables that were not produced by Align.
func (t *Table) Synthesized() []string {
	return append([]string(nil), t.synthesized...)
}

// SquaredNorm returns the sum of squared components of the i-th row.
func (t *Table) SquaredNorm(i int) float64 {
	r := t.row(i)
	return floats.Dot(r, r)
}

// AverageSquaredNorm returns the mean over all rows of each row's summed
// squared components. It is 0 for an empty table.
func (t *Table) AverageSquaredNorm() float64 {
	if len(t.tokens) == 0 {
		return 0
	}
	var sum float64
	for i := range t.tokens {
		sum += t.SquaredNorm(i)
	}
	return sum / float64(len(t.tokens))
}

// Matrix returns the table as a Len() x Dim() dense matrix, one row per token.
// It returns nil when the table has no rows or zero dimensionality.
func (t *Table) Matrix() *mat.Dense {
	if len(t.tokens) == 0 || t.dim == 0 {
		return nil
	}
	return mat.NewDense(len(t.tokens), t.dim, append([]float64(nil), t.data...))
}
