// Package dataset reads the line-oriented text formats used for training data
// and writes model predictions back in the formats graders expect.
package dataset

import (
	"bufio"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/localrivet/vocabprep/internal/errortypes"
	"github.com/localrivet/vocabprep/internal/vocab"
)

// Format names a corpus layout understood by LoadCorpus.
type Format string

// Supported corpus formats.
const (
	FormatTokens    Format = "tokens"
	FormatHeadlines Format = "headlines"
	FormatChars     Format = "chars"
	FormatLabeled   Format = "labeled"
	FormatTagged    Format = "tagged"
)

// Labeled is a binary sentiment dataset.
type Labeled struct {
	Text   []string
	Target []int
}

// Tagged is a sequence-labeling dataset. Labels is empty for unlabeled data.
type Tagged struct {
	Sentences [][]string
	Labels    [][]string
}

// LoadTokenized reads one document per line, splitting on single spaces,
// dropping empty tokens and lowercasing the rest.
func LoadTokenized(r io.Reader) (vocab.Corpus, error) {
	var corpus vocab.Corpus
	err := eachLine(r, func(line string) error {
		doc := vocab.Document{}
		for _, tok := range strings.Split(strings.TrimSpace(line), " ") {
			if tok != "" {
				doc = append(doc, strings.ToLower(tok))
			}
		}
		corpus = append(corpus, doc)
		return nil
	})
	return corpus, err
}

// LoadHeadlines reads one headline per line, removes ASCII punctuation and
// splits on spaces. Empty tokens are dropped.
func LoadHeadlines(r io.Reader) (vocab.Corpus, error) {
	var corpus vocab.Corpus
	err := eachLine(r, func(line string) error {
		doc := vocab.Document{}
		for _, tok := range strings.Split(stripPunctuation(line), " ") {
			if tok != "" {
				doc = append(doc, tok)
			}
		}
		corpus = append(corpus, doc)
		return nil
	})
	return corpus, err
}

// LoadChars reads one document per line, each character becoming a token.
func LoadChars(r io.Reader) (vocab.Corpus, error) {
	var corpus vocab.Corpus
	err := eachLine(r, func(line string) error {
		doc := make(vocab.Document, 0, len(line))
		for _, ch := range line {
			doc = append(doc, string(ch))
		}
		corpus = append(corpus, doc)
		return nil
	})
	return corpus, err
}

// LoadLabeled reads "label\ttext" lines. The label "pos" maps to 1 and any
// other label to 0. Blank lines are skipped.
func LoadLabeled(r io.Reader) (*Labeled, error) {
	data := &Labeled{}
	lineNo := 0
	err := eachLine(r, func(line string) error {
		lineNo++
		if strings.TrimSpace(line) == "" {
			return nil
		}
		label, text, ok := strings.Cut(line, "\t")
		if !ok {
			return errortypes.FormatError(nil, "expected label and text separated by a tab").
				WithField("line", lineNo)
		}
		target := 0
		if label == "pos" {
			target = 1
		}
		data.Target = append(data.Target, target)
		data.Text = append(data.Text, strings.TrimRightFunc(text, unicode.IsSpace))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Corpus tokenizes the labeled texts the same way LoadTokenized does.
func (l *Labeled) Corpus() vocab.Corpus {
	corpus := make(vocab.Corpus, len(l.Text))
	for i, text := range l.Text {
		doc := vocab.Document{}
		for _, tok := range strings.Fields(text) {
			doc = append(doc, strings.ToLower(tok))
		}
		corpus[i] = doc
	}
	return corpus
}

// LoadTagged reads a token-per-line sequence-labeling file. The first line is
// a license line and is skipped. Each line holds a token, optionally followed
// by a tab and a label; only the first of "a|b" labels is kept. Blank lines
// end a sentence.
func LoadTagged(r io.Reader) (*Tagged, error) {
	data := &Tagged{}
	var sent, labs []string
	first := true

	flush := func() {
		if len(sent) > 0 {
			data.Sentences = append(data.Sentences, sent)
		}
		if len(labs) > 0 {
			data.Labels = append(data.Labels, labs)
		}
		sent, labs = nil, nil
	}

	err := eachLine(r, func(line string) error {
		if first {
			first = false
			return nil
		}
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if line == "" {
			flush()
			return nil
		}
		cols := strings.Split(line, "\t")
		sent = append(sent, cols[0])
		if len(cols) > 1 {
			label, _, _ := strings.Cut(cols[1], "|")
			labs = append(labs, label)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	flush()
	return data, nil
}

// Corpus returns the tagged sentences as a corpus.
func (t *Tagged) Corpus() vocab.Corpus {
	corpus := make(vocab.Corpus, len(t.Sentences))
	for i, sent := range t.Sentences {
		corpus[i] = append(vocab.Document(nil), sent...)
	}
	return corpus
}

// LoadCorpus reads r in the given format and returns its documents.
// Labels, when the format has them, are discarded.
func LoadCorpus(r io.Reader, format Format) (vocab.Corpus, error) {
	switch format {
	case FormatTokens, "":
		return LoadTokenized(r)
	case FormatHeadlines:
		return LoadHeadlines(r)
	case FormatChars:
		return LoadChars(r)
	case FormatLabeled:
		data, err := LoadLabeled(r)
		if err != nil {
			return nil, err
		}
		return data.Corpus(), nil
	case FormatTagged:
		data, err := LoadTagged(r)
		if err != nil {
			return nil, err
		}
		return data.Corpus(), nil
	default:
		return nil, errortypes.ValidationError(nil, "unknown corpus format").WithField("format", string(format))
	}
}

// LoadCorpusFile opens path and reads it with LoadCorpus.
func LoadCorpusFile(path string, format Format) (vocab.Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errortypes.IOError(err, "failed to open corpus file").WithField("path", path)
	}
	defer f.Close()
	return LoadCorpus(f, format)
}

// eachLine calls fn for every line of r without its line terminator.
func eachLine(r io.Reader, fn func(line string) error) error {
	br := bufio.NewReader(r)
	for {
		line, err := br.ReadString('\n')
		if len(line) > 0 {
			line = strings.TrimSuffix(strings.TrimSuffix(line, "\n"), "\r")
			if ferr := fn(line); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return errortypes.IOError(err, "failed to read input")
		}
	}
}

// asciiPunctuation matches the ASCII punctuation set removed from headlines.
const asciiPunctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

func stripPunctuation(s string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(asciiPunctuation, r) {
			return -1
		}
		return r
	}, s)
}
