package embedding

import (
	"encoding/csv"
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/localrivet/vocabprep/internal/errortypes"
	"gonum.org/v1/gonum/mat"
)

// LoadCSV reads a column-per-token embedding table: the header row holds the
// tokens and every following row holds one dimension. An empty (or "Unnamed")
// first header cell marks an index column, which is skipped.
func LoadCSV(r io.Reader) (*Table, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return NewTable(0), nil
	}

	header := records[0]
	start := 0
	if header[0] == "" || strings.HasPrefix(header[0], "Unnamed") {
		start = 1
	}
	tokens := header[start:]
	dim := len(records) - 1
	if len(tokens) == 0 {
		return NewTable(dim), nil
	}
	if dim == 0 {
		t := NewTable(0)
		for _, tok := range tokens {
			if err := t.Add(tok, nil); err != nil {
				return nil, err
			}
		}
		return t, nil
	}

	m := mat.NewDense(dim, len(tokens), nil)
	for i, rec := range records[1:] {
		for j, cell := range rec[start:] {
			val, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errortypes.FormatError(err, "invalid embedding value").
					WithField("line", i+2).
					WithField("token", tokens[j])
			}
			m.Set(i, j, val)
		}
	}
	return FromColumns(tokens, m)
}

// LoadCSVFile reads a column-per-token embedding table from path.
func LoadCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errortypes.IOError(err, "failed to open embedding file").WithField("path", path)
	}
	defer f.Close()
	return LoadCSV(f)
}

// WriteCSV writes t one row per token: the token followed by its components.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)
	record := make([]string, t.dim+1)
	for i, tok := range t.tokens {
		record[0] = tok
		for j, val := range t.row(i) {
			record[j+1] = strconv.FormatFloat(val, 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return errortypes.IOError(err, "failed to write embedding row").WithField("token", tok)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errortypes.IOError(err, "failed to write embedding table")
	}
	return nil
}

// WriteCSVFile writes t to path in the row-per-token format.
func WriteCSVFile(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errortypes.IOError(err, "failed to create embedding file").WithField("path", path)
	}
	if err := WriteCSV(f, t); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errortypes.IOError(err, "failed to close embedding file").WithField("path", path)
	}
	return nil
}

// ReadRowsCSV reads the row-per-token format produced by WriteCSV.
func ReadRowsCSV(r io.Reader) (*Table, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return NewTable(0), nil
	}

	t := NewTable(len(records[0]) - 1)
	for i, rec := range records {
		vec := make([]float64, len(rec)-1)
		for j, cell := range rec[1:] {
			val, err := strconv.ParseFloat(strings.TrimSpace(cell), 64)
			if err != nil {
				return nil, errortypes.FormatError(err, "invalid embedding value").
					WithField("line", i+1).
					WithField("token", rec[0])
			}
			vec[j] = val
		}
		if err := t.Add(rec[0], vec); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadRowsCSVFile reads a row-per-token embedding table from path.
func ReadRowsCSVFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errortypes.IOError(err, "failed to open embedding file").WithField("path", path)
	}
	defer f.Close()
	return ReadRowsCSV(f)
}

// readRecords reads every record. encoding/csv rejects rows whose width
// differs from the first one.
func readRecords(r io.Reader) ([][]string, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, errortypes.FormatError(err, "malformed embedding table").WithField("line", parseErr.Line)
		}
		return nil, errortypes.IOError(err, "failed to read embedding table")
	}
	return records, nil
}
