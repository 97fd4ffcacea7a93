package embedding

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/localrivet/vocabprep/internal/errortypes"
	"github.com/localrivet/vocabprep/internal/vocab"
	"gonum.org/v1/gonum/floats"
)

// Rand is the source of uniform draws in [0, 1) used to synthesize vectors.
// *rand.Rand from math/rand and math/rand/v2 both satisfy it.
type Rand interface {
	Float64() float64
}

// NewRand returns a generator seeded with seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Align restricts src to the tokens of v, in vocabulary order.
//
// With a nil vocabulary src is returned as is. Otherwise every vocabulary
// token gets exactly one row: a copy of its source vector when src has one,
// or a synthesized vector when it does not. A synthesized vector is a uniform
// draw v0 in [-0.5, 0.5)^dim scaled by 2*u*sqrt(avg/|v0|^2), with u uniform in
// [0, 1) and avg the mean squared norm of the source rows, so its expected
// norm matches the source population.
//
// A nil rng falls back to a time-seeded generator.
func Align(src *Table, v *vocab.Vocabulary, rng Rand) (*Table, error) {
	if v == nil {
		return src, nil
	}
	if src == nil || src.Len() == 0 {
		return nil, errortypes.ValidationError(nil, "cannot align an empty embedding source")
	}
	if rng == nil {
		rng = NewRand(uint64(time.Now().UnixNano()))
	}

	avg := src.AverageSquaredNorm()
	out := NewTable(src.Dim())
	for _, tok := range v.Tokens() {
		if i, ok := src.index[tok]; ok {
			if err := out.Add(tok, src.row(i)); err != nil {
				return nil, errortypes.InternalError(err, "failed to copy embedding row")
			}
			continue
		}
		if err := out.Add(tok, synthesize(src.Dim(), avg, rng)); err != nil {
			return nil, errortypes.InternalError(err, "failed to add synthesized row")
		}
		out.synthesized = append(out.synthesized, tok)
	}
	return out, nil
}

// synthesize draws the dim components first and the scale factor last.
func synthesize(dim int, avg float64, rng Rand) []float64 {
	vec := make([]float64, dim)
	for i := range vec {
		vec[i] = rng.Float64() - 0.5
	}
	own := floats.Dot(vec, vec)
	u := rng.Float64()
	if own == 0 {
		return vec
	}
	floats.Scale(2*u*math.Sqrt(avg/own), vec)
	return vec
}
