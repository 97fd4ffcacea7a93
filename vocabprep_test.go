package vocabprep

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/localrivet/vocabprep/internal/embedding"
	"github.com/localrivet/vocabprep/internal/errortypes"
	"github.com/localrivet/vocabprep/internal/telemetry"
	"github.com/localrivet/vocabprep/internal/vocab"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTestFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestPipelineRun(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "train.tsv")
	embPath := filepath.Join(dir, "glove.csv")
	writeTestFile(t, corpusPath, "pos\tGood movie good\nneg\tBad movie\n")
	writeTestFile(t, embPath, ",good,movie,awful\n0,1,0,1\n1,0,1,1\n")

	cfg := DefaultConfig()
	cfg.Corpus.Path = corpusPath
	cfg.Corpus.Format = "labeled"
	cfg.Vocabulary.MinTokenCount = 2
	cfg.Vocabulary.OutputPath = filepath.Join(dir, "vocab.txt")
	cfg.Embedding.Path = embPath
	cfg.Embedding.OutputPath = filepath.Join(dir, "aligned.csv")

	p, err := NewPipeline(PipelineOptions{
		Config: cfg,
		Logger: quietLogger(),
		Rand:   rand.New(rand.NewPCG(1, 2)),
	})
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}

	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if _, err := uuid.Parse(result.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", result.RunID, err)
	}

	// good and movie occur twice, bad once.
	wantTokens := []string{vocab.Unknown, vocab.Start, vocab.End, "good", "movie"}
	if result.VocabularySize != len(wantTokens) {
		t.Errorf("VocabularySize = %d, want %d", result.VocabularySize, len(wantTokens))
	}
	if result.Fingerprint != Fingerprint(wantTokens) {
		t.Errorf("Fingerprint = %q, want %q", result.Fingerprint, Fingerprint(wantTokens))
	}
	if result.EmbeddingRows != 5 || result.Synthesized != 3 {
		t.Errorf("EmbeddingRows/Synthesized = %d/%d, want 5/3", result.EmbeddingRows, result.Synthesized)
	}

	v, err := vocab.LoadFile(cfg.Vocabulary.OutputPath)
	if err != nil {
		t.Fatalf("Failed to read vocabulary: %v", err)
	}
	if !reflect.DeepEqual(v.Tokens(), wantTokens) {
		t.Errorf("Vocabulary tokens = %v, want %v", v.Tokens(), wantTokens)
	}

	aligned, err := embedding.ReadRowsCSVFile(cfg.Embedding.OutputPath)
	if err != nil {
		t.Fatalf("Failed to read aligned embedding: %v", err)
	}
	if !reflect.DeepEqual(aligned.Tokens(), wantTokens) {
		t.Errorf("Aligned tokens = %v, want %v", aligned.Tokens(), wantTokens)
	}
	if vec, _ := aligned.Vector("movie"); !reflect.DeepEqual(vec, []float64{0, 1}) {
		t.Errorf("Vector(movie) = %v, want [0 1]", vec)
	}

	m := p.Metrics()
	if got := m.GetCounter(telemetry.MetricCorpusDocuments); got != 2 {
		t.Errorf("Documents counter = %d, want 2", got)
	}
	if got := m.GetGauge(telemetry.MetricCorpusDistinctTokens); got != 3 {
		t.Errorf("Distinct tokens gauge = %v, want 3", got)
	}
	if got := m.GetGauge(telemetry.MetricTokensFiltered); got != 1 {
		t.Errorf("Filtered tokens gauge = %v, want 1", got)
	}
	if got := m.GetCounter(telemetry.MetricEmbeddingSynthesized); got != 3 {
		t.Errorf("Synthesized counter = %d, want 3", got)
	}
}

func TestPipelineRunWithoutEmbedding(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "corpus.txt")
	writeTestFile(t, corpusPath, "a b\nb\n")

	cfg := DefaultConfig()
	cfg.Corpus.Path = corpusPath
	cfg.Vocabulary.OutputPath = ""

	p, err := NewPipeline(PipelineOptions{Config: cfg, Logger: quietLogger()})
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	result, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.VocabularySize != 5 || result.EmbeddingRows != 0 {
		t.Errorf("Unexpected result: %+v", result)
	}
}

func TestPipelineErrors(t *testing.T) {
	t.Run("missing corpus path", func(t *testing.T) {
		p, err := NewPipeline(PipelineOptions{Config: DefaultConfig(), Logger: quietLogger()})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := p.Run(context.Background()); !errortypes.IsConfigError(err) {
			t.Errorf("Expected config error, got %v", err)
		}
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Vocabulary.MinTokenCount = -1
		if _, err := NewPipeline(PipelineOptions{Config: cfg, Logger: quietLogger()}); !errortypes.IsConfigError(err) {
			t.Errorf("Expected config error, got %v", err)
		}
	})

	t.Run("cancelled context", func(t *testing.T) {
		dir := t.TempDir()
		corpusPath := filepath.Join(dir, "corpus.txt")
		writeTestFile(t, corpusPath, "a\n")

		cfg := DefaultConfig()
		cfg.Corpus.Path = corpusPath
		p, err := NewPipeline(PipelineOptions{Config: cfg, Logger: quietLogger()})
		if err != nil {
			t.Fatal(err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := p.Run(ctx); err != context.Canceled {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	})

	t.Run("missing embedding path", func(t *testing.T) {
		p, err := NewPipeline(PipelineOptions{Config: DefaultConfig(), Logger: quietLogger()})
		if err != nil {
			t.Fatal(err)
		}
		if _, err := p.AlignEmbedding(nil); !errortypes.IsConfigError(err) {
			t.Errorf("Expected config error, got %v", err)
		}
	})
}

func TestNewPipelineFromMissingConfigPath(t *testing.T) {
	p, err := NewPipeline(PipelineOptions{
		ConfigPath: filepath.Join(t.TempDir(), "absent.json"),
		Logger:     quietLogger(),
	})
	if err != nil {
		t.Fatalf("NewPipeline() error = %v", err)
	}
	if p.Config().Corpus.Format != "tokens" {
		t.Errorf("Expected default corpus format, got %q", p.Config().Corpus.Format)
	}
}

func TestNewServer(t *testing.T) {
	p, err := NewPipeline(PipelineOptions{Config: DefaultConfig(), Logger: quietLogger()})
	if err != nil {
		t.Fatal(err)
	}
	srv, err := p.NewServer()
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	if err := srv.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
}

func TestScoringHelpers(t *testing.T) {
	yTrue := [][]int{{1, 2, 0}, {2, 2, 0}}
	yPred := Argmax([][]float64{{0, 1, 0}, {0, 0, 1}, {1, 0, 0}})

	acc, err := IgnoreClassAccuracy(yTrue, [][]int{yPred, {1, 2, 1}}, 0)
	if err != nil {
		t.Fatalf("IgnoreClassAccuracy() error = %v", err)
	}
	if acc != 0.75 {
		t.Errorf("IgnoreClassAccuracy() = %v, want 0.75", acc)
	}

	batch := ArgmaxSequences([][][]float64{{{0, 1, 0}, {0, 0, 1}}, {{0, 0, 1}, {1, 0, 0}}})
	whole, err := WholeSentenceAccuracy([][]int{{1, 2}, {2, 2}}, batch, 0)
	if err != nil {
		t.Fatalf("WholeSentenceAccuracy() error = %v", err)
	}
	if whole != 0.5 {
		t.Errorf("WholeSentenceAccuracy() = %v, want 0.5", whole)
	}

	if _, err := IgnoreClassAccuracy(yTrue, [][]int{yPred}, 0); !errortypes.IsValidationError(err) {
		t.Errorf("Expected validation error for mismatched batches, got %v", err)
	}

	greedy := func(scores [][]float64) []int { return Argmax(scores) }
	examples := []PathExample{
		{Scores: [][]float64{{1, 0}, {0, 1}}, Path: []int{0, 1}},
		{Scores: [][]float64{{0, 1}}, Path: []int{0}},
	}
	if ok, total := PathSearchSuccess(greedy, examples); ok != 1 || total != 2 {
		t.Errorf("PathSearchSuccess() = %d/%d, want 1/2", ok, total)
	}
}

func TestSavePredictions(t *testing.T) {
	dir := t.TempDir()

	binPath := filepath.Join(dir, "pred.csv")
	if err := SaveBinaryPredictions(binPath, []int{1, 0}); err != nil {
		t.Fatalf("SaveBinaryPredictions() error = %v", err)
	}
	data, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "0,pos\n1,neg\n" {
		t.Errorf("Binary predictions = %q", data)
	}

	seqPath := filepath.Join(dir, "pred.txt")
	if err := SaveSequencePredictions(seqPath, [][]string{{"B", "O"}, {"O"}}); err != nil {
		t.Fatalf("SaveSequencePredictions() error = %v", err)
	}
	data, err = os.ReadFile(seqPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "B\nO\n \nO\n \n" {
		t.Errorf("Sequence predictions = %q", data)
	}

	if err := SaveBinaryPredictions(filepath.Join(dir, "missing", "pred.csv"), []int{1}); !errortypes.IsIOError(err) {
		t.Errorf("Expected IO error, got %v", err)
	}
}

func ExampleBuildVocabulary() {
	corpus := Corpus{{"a", "b", "a"}, {"c", "a"}}
	v, _ := BuildVocabulary(corpus, 0)
	fmt.Println(v.Tokens())
	// Output: [<UNK> <START> <END> a b c]
}

func ExampleAlignEmbedding() {
	src, _ := embedding.FromRows([]string{"a", "z"}, [][]float64{{1, 2}, {3, 4}})
	v, _ := BuildVocabulary(Corpus{{"a"}}, 0)

	aligned, _ := AlignEmbedding(src, v, rand.New(rand.NewPCG(1, 2)))
	vec, _ := aligned.Vector("a")
	fmt.Println(aligned.Len(), len(aligned.Synthesized()), vec)
	// Output: 4 3 [1 2]
}
