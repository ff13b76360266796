package types

import (
	"time"
)

// NoAnswer is printed in place of the model output when generation fails
const NoAnswer = "no answer"

type Document struct {
	ID        int64     // Assigned by the store on insert
	Text      string    // Document content
	Embedding []float32 // Not loaded by List
	CreatedAt time.Time // Set by the store, used for display ordering
}

type SearchResult struct {
	ID       int64
	Text     string
	Distance float64 // Smaller is more similar
}

type Answer struct {
	Question string
	Context  []SearchResult
	Text     string
	Found    bool
	Cause    error // Why retrieval failed, nil when it succeeded or found nothing
}

// EmbeddingRequest is the body of a POST to the Ollama embeddings endpoint
type EmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type EmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

type GenerateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type GenerateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}
