package config

const (
	// EmbeddingHugot runs the sentence-transformer model in process.
	EmbeddingHugot = "hugot"

	// EmbeddingGemini calls the Gemini embedding API.
	EmbeddingGemini = "gemini"

	// EmbeddingLexical uses the offline feature-hashing encoder.
	EmbeddingLexical = "lexical"
)

const (
	SummaryOllama = "ollama"
	SummaryGemini = "gemini"
	SummaryNone   = "none"
)

const (
	LogFormatJSON = "json"
	LogFormatText = "text"
)
