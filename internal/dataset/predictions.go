package dataset

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/localrivet/vocabprep/internal/errortypes"
)

// SaveBinaryPredictions writes one "index,label" line per prediction, where a
// prediction of 1 is written as "pos" and anything else as "neg".
func SaveBinaryPredictions(w io.Writer, preds []int) error {
	bw := bufio.NewWriter(w)
	for i, p := range preds {
		label := "neg"
		if p == 1 {
			label = "pos"
		}
		if _, err := fmt.Fprintf(bw, "%d,%s\n", i, label); err != nil {
			return errortypes.IOError(err, "failed to write prediction")
		}
	}
	if err := bw.Flush(); err != nil {
		return errortypes.IOError(err, "failed to write predictions")
	}
	return nil
}

// SaveSequencePredictions writes one label per line and a line holding a
// single space after each sentence.
func SaveSequencePredictions(w io.Writer, preds [][]string) error {
	bw := bufio.NewWriter(w)
	for _, labels := range preds {
		for _, l := range labels {
			if _, err := fmt.Fprintf(bw, "%s\n", l); err != nil {
				return errortypes.IOError(err, "failed to write prediction")
			}
		}
		if _, err := bw.WriteString(" \n"); err != nil {
			return errortypes.IOError(err, "failed to write prediction")
		}
	}
	if err := bw.Flush(); err != nil {
		return errortypes.IOError(err, "failed to write predictions")
	}
	return nil
}

// SaveBinaryPredictionsFile writes preds to path with SaveBinaryPredictions.
func SaveBinaryPredictionsFile(path string, preds []int) error {
	return writeFile(path, func(w io.Writer) error { return SaveBinaryPredictions(w, preds) })
}

// SaveSequencePredictionsFile writes preds to path with SaveSequencePredictions.
func SaveSequencePredictionsFile(path string, preds [][]string) error {
	return writeFile(path, func(w io.Writer) error { return SaveSequencePredictions(w, preds) })
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errortypes.IOError(err, "failed to create predictions file").WithField("path", path)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errortypes.IOError(err, "failed to close predictions file").WithField("path", path)
	}
	return nil
}
