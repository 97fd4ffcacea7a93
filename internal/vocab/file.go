package vocab

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/localrivet/vocabprep/internal/errortypes"
)

// WriteVocabulary writes one "token\tid" line per entry, in ID order.
func WriteVocabulary(w io.Writer, v *Vocabulary) error {
	bw := bufio.NewWriter(w)
	for id, tok := range v.tokens {
		if _, err := fmt.Fprintf(bw, "%s\t%d\n", tok, id); err != nil {
			return errortypes.IOError(err, "failed to write vocabulary")
		}
	}
	if err := bw.Flush(); err != nil {
		return errortypes.IOError(err, "failed to write vocabulary")
	}
	return nil
}

// WriteVocabularyFile writes v to path, replacing any existing file.
func WriteVocabularyFile(path string, v *Vocabulary) error {
	f, err := os.Create(path)
	if err != nil {
		return errortypes.IOError(err, "failed to create vocabulary file").WithField("path", path)
	}
	if err := WriteVocabulary(f, v); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errortypes.IOError(err, "failed to close vocabulary file").WithField("path", path)
	}
	return nil
}

// ReadIndex parses "token\tid" lines into a token to ID mapping. The ID
// follows the last tab, so tokens may themselves contain tabs. Blank lines
// are skipped.
func ReadIndex(r io.Reader) (map[string]int, error) {
	index := make(map[string]int)
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if line == "" {
			continue
		}
		i := strings.LastIndexByte(line, '\t')
		if i < 0 {
			return nil, errortypes.FormatError(fmt.Errorf("expected token and id, got %q", line),
				"malformed vocabulary line").WithField("line", lineNo)
		}
		id, err := strconv.Atoi(line[i+1:])
		if err != nil {
			return nil, errortypes.FormatError(err, "malformed vocabulary id").WithField("line", lineNo)
		}
		index[line[:i]] = id
	}
	if err := scanner.Err(); err != nil {
		return nil, errortypes.IOError(err, "failed to read vocabulary")
	}
	return index, nil
}

// ReadIndexFile reads a vocabulary file written by WriteVocabularyFile.
func ReadIndexFile(path string) (map[string]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errortypes.IOError(err, "failed to open vocabulary file").WithField("path", path)
	}
	defer f.Close()
	return ReadIndex(f)
}

// LoadFile reads a vocabulary file and rebuilds the Vocabulary it describes.
// IDs must form the contiguous range 0..n-1.
func LoadFile(path string) (*Vocabulary, error) {
	index, err := ReadIndexFile(path)
	if err != nil {
		return nil, err
	}
	return FromIndex(index)
}

// FromIndex rebuilds a Vocabulary from a token to ID mapping.
func FromIndex(index map[string]int) (*Vocabulary, error) {
	type entry struct {
		tok string
		id  int
	}
	entries := make([]entry, 0, len(index))
	for tok, id := range index {
		entries = append(entries, entry{tok, id})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	tokens := make([]string, len(entries))
	for i, e := range entries {
		if e.id != i {
			return nil, errortypes.ValidationError(fmt.Errorf("expected id %d, got %d for %q", i, e.id, e.tok),
				"vocabulary ids are not contiguous")
		}
		tokens[i] = e.tok
	}
	return FromTokens(tokens)
}
