// Package vocab builds deterministic token vocabularies from tokenized corpora.
//
// A Vocabulary always starts with three reserved markers, in this order:
// Unknown, Start and End. Corpus tokens follow, sorted by descending
// frequency with ties kept in first-encounter order.
package vocab

import (
	"fmt"
	"sort"

	"github.com/localrivet/vocabprep/internal/errortypes"
)

// Reserved markers.
const (
	Unknown = "<UNK>"
	Start   = "<START>"
	End     = "<END>"
)

// IDs of the reserved markers.
const (
	UnknownID = iota
	StartID
	EndID
)

// NumReserved is the number of reserved markers at the front of every Vocabulary.
const NumReserved = 3

var reserved = [NumReserved]string{Unknown, Start, End}

// IsReserved reports whether token is one of the reserved markers.
func IsReserved(token string) bool {
	return token == Unknown || token == Start || token == End
}

// Document is an ordered sequence of tokens.
type Document []string

// Corpus is an ordered sequence of documents.
type Corpus []Document

// NumTokens returns the total number of token occurrences in the corpus.
func (c Corpus) NumTokens() int {
	n := 0
	for _, doc := range c {
		n += len(doc)
	}
	return n
}

// FrequencyTable maps tokens to their occurrence counts and remembers the
// order in which tokens were first seen. It is immutable once built.
type FrequencyTable struct {
	order  []string
	counts map[string]int
	total  int
}

// CountTokens counts every token occurrence across all documents of c.
func CountTokens(c Corpus) *FrequencyTable {
	ft := &FrequencyTable{counts: make(map[string]int)}
	for _, doc := range c {
		for _, tok := range doc {
			if _, seen := ft.counts[tok]; !seen {
				ft.order = append(ft.order, tok)
			}
			ft.counts[tok]++
			ft.total++
		}
	}
	return ft
}

// Count returns the number of occurrences of token.
func (ft *FrequencyTable) Count(token string) int {
	return ft.counts[token]
}

// Len returns the number of distinct tokens.
func (ft *FrequencyTable) Len() int {
	return len(ft.order)
}

// Total returns the number of token occurrences.
func (ft *FrequencyTable) Total() int {
	return ft.total
}

// Tokens returns the distinct tokens in first-encounter order.
func (ft *FrequencyTable) Tokens() []string {
	return append([]string(nil), ft.order...)
}

// Vocabulary is an ordered list of distinct tokens together with its reverse
// index. Both are built in one step and never mutated afterwards.
type Vocabulary struct {
	tokens []string
	index  map[string]int
}

// Build counts the tokens of c and builds a Vocabulary keeping only the tokens
// that occur at least minTokenCount times. A minTokenCount of 0 keeps every token.
func Build(c Corpus, minTokenCount int) (*Vocabulary, error) {
	return BuildFromCounts(CountTokens(c), minTokenCount)
}

// BuildFromCounts builds a Vocabulary from an existing frequency table.
func BuildFromCounts(ft *FrequencyTable, minTokenCount int) (*Vocabulary, error) {
	if minTokenCount < 0 {
		return nil, errortypes.ValidationError(nil, "minimum token count must not be negative").
			WithField("min_token_count", minTokenCount)
	}

	kept := make([]string, 0, len(ft.order))
	for _, tok := range ft.order {
		if ft.counts[tok] < minTokenCount || IsReserved(tok) {
			continue
		}
		kept = append(kept, tok)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return ft.counts[kept[i]] > ft.counts[kept[j]]
	})

	tokens := make([]string, 0, NumReserved+len(kept))
	tokens = append(tokens, reserved[:]...)
	tokens = append(tokens, kept...)
	return newVocabulary(tokens), nil
}

// FromTokens rebuilds a Vocabulary from an ordered token list, such as one read
// back from a vocabulary file. The list must start with the reserved markers
// and must not contain duplicates.
func FromTokens(tokens []string) (*Vocabulary, error) {
	if len(tokens) < NumReserved {
		return nil, errortypes.ValidationError(nil, "vocabulary is missing reserved markers").
			WithField("size", len(tokens))
	}
	for i, marker := range reserved {
		if tokens[i] != marker {
			return nil, errortypes.ValidationError(
				fmt.Errorf("expected %q at position %d, got %q", marker, i, tokens[i]),
				"vocabulary reserved markers out of order")
		}
	}

	seen := make(map[string]struct{}, len(tokens))
	for i, tok := range tokens {
		if _, dup := seen[tok]; dup {
			return nil, errortypes.ValidationError(
				fmt.Errorf("token %q repeated at position %d", tok, i),
				"vocabulary contains duplicate tokens")
		}
		seen[tok] = struct{}{}
	}

	return newVocabulary(append([]string(nil), tokens...)), nil
}

func newVocabulary(tokens []string) *Vocabulary {
	index := make(map[string]int, len(tokens))
	for id, tok := range tokens {
		index[tok] = id
	}
	return &Vocabulary{tokens: tokens, index: index}
}

// Len returns the number of entries, reserved markers included.
func (v *Vocabulary) Len() int {
	return len(v.tokens)
}

// Tokens returns a copy of the ordered token list.
func (v *Vocabulary) Tokens() []string {
	return append([]string(nil), v.tokens...)
}

// Index returns a copy of the token to ID mapping.
func (v *Vocabulary) Index() map[string]int {
	index := make(map[string]int, len(v.index))
	for tok, id := range v.index {
		index[tok] = id
	}
	return index
}

// ID returns the ID of token and whether it is part of the vocabulary.
func (v *Vocabulary) ID(token string) (int, bool) {
	id, ok := v.index[token]
	return id, ok
}

// Token returns the token with the given ID.
func (v *Vocabulary) Token(id int) (string, bool) {
	if id < 0 || id >= len(v.tokens) {
		return "", false
	}
	return v.tokens[id], true
}

// Encode maps a document to IDs. Tokens outside the vocabulary map to
// UnknownID. When wrap is set the result is framed by StartID and EndID.
func (v *Vocabulary) Encode(doc Document, wrap bool) []int {
	ids := make([]int, 0, len(doc)+2)
	if wrap {
		ids = append(ids, StartID)
	}
	for _, tok := range doc {
		id, ok := v.index[tok]
		if !ok {
			id = UnknownID
		}
		ids = append(ids, id)
	}
	if wrap {
		ids = append(ids, EndID)
	}
	return ids
}

// Decode maps IDs back to tokens. IDs outside the vocabulary decode to Unknown.
func (v *Vocabulary) Decode(ids []int) Document {
	doc := make(Document, len(ids))
	for i, id := range ids {
		tok, ok := v.Token(id)
		if !ok {
			tok = Unknown
		}
		doc[i] = tok
	}
	return doc
}
