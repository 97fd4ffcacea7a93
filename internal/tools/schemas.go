// Package tools defines the request and response schemas of the vocabprep
// MCP tools.
package tools

const (
	// ToolBuildVocabulary is the name of the build_vocabulary MCP tool
	ToolBuildVocabulary = "build_vocabulary"

	// ToolAlignEmbedding is the name of the align_embedding MCP tool
	ToolAlignEmbedding = "align_embedding"

	// ToolEncodeText is the name of the encode_text MCP tool
	ToolEncodeText = "encode_text"

	// StatusSuccess and StatusError are the values of every response's Status
	StatusSuccess = "success"
	StatusError   = "error"

	// DefaultFormat is the corpus format used when a request names none
	DefaultFormat = "tokens"
)

// BuildVocabularyRequest defines the input schema for build_vocabulary tool
type BuildVocabularyRequest struct {
	// CorpusPath is the corpus file to read
	CorpusPath string `json:"corpus_path"`

	// Format selects the corpus loader; DefaultFormat when empty
	Format string `json:"format,omitempty"`

	// MinTokenCount drops tokens seen fewer times than this
	MinTokenCount int `json:"min_token_count,omitempty"`

	// OutputPath, if set, receives the token\tid listing
	OutputPath string `json:"output_path,omitempty"`
}

// BuildVocabularyResponse defines the output schema for build_vocabulary tool
type BuildVocabularyResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Size is the number of tokens including the reserved markers
	Size int `json:"size"`

	// Fingerprint identifies the ordered token list
	Fingerprint string `json:"fingerprint,omitempty"`

	// Code classifies the failure when Status is "error"
	Code string `json:"code,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// AlignEmbeddingRequest defines the input schema for align_embedding tool
type AlignEmbeddingRequest struct {
	// EmbeddingPath is the column-per-token pretrained embedding CSV
	EmbeddingPath string `json:"embedding_path"`

	// VocabPath is a token\tid listing written by build_vocabulary
	VocabPath string `json:"vocab_path"`

	// OutputPath receives the aligned row-per-token table
	OutputPath string `json:"output_path"`

	// Seed drives synthesized vectors; zero means time-based
	Seed uint64 `json:"seed,omitempty"`
}

// AlignEmbeddingResponse defines the output schema for align_embedding tool
type AlignEmbeddingResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// Rows is the number of rows in the aligned table
	Rows int `json:"rows"`

	// Synthesized is how many of those rows were generated
	Synthesized int `json:"synthesized"`

	// Code classifies the failure when Status is "error"
	Code string `json:"code,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}

// EncodeTextRequest defines the input schema for encode_text tool
type EncodeTextRequest struct {
	// VocabPath is a token\tid listing written by build_vocabulary
	VocabPath string `json:"vocab_path"`

	// Text is split on whitespace and lowercased before lookup
	Text string `json:"text"`

	// Wrap surrounds the IDs with the start and end markers
	Wrap bool `json:"wrap,omitempty"`
}

// EncodeTextResponse defines the output schema for encode_text tool
type EncodeTextResponse struct {
	// Status indicates the result of the operation ("success" or "error")
	Status string `json:"status"`

	// IDs are the token IDs, unknown tokens mapped to the unknown marker
	IDs []int `json:"ids"`

	// Code classifies the failure when Status is "error"
	Code string `json:"code,omitempty"`

	// Error contains an error message if Status is "error"
	Error string `json:"error,omitempty"`
}
