package model

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"vecrag/types"
)

const defaultEmbedTimeout = 30 * time.Second

// OllamaEmbedder calls the Ollama embeddings endpoint
type OllamaEmbedder struct {
	apiURL  string
	model   string
	timeout time.Duration
	client  *http.Client
}

// NewOllamaEmbedder takes the API base URL (".../api"), not the full endpoint.
func NewOllamaEmbedder(apiURL, model string, timeout time.Duration) *OllamaEmbedder {
	if timeout <= 0 {
		timeout = defaultEmbedTimeout
	}
	return &OllamaEmbedder{
		apiURL:  strings.TrimRight(apiURL, "/"),
		model:   model,
		timeout: timeout,
		client:  &http.Client{},
	}
}

func (e *OllamaEmbedder) Model() string {
	return e.model
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.EmbedWithModel(ctx, text, e.model)
}

// EmbedWithModel returns an error of kind types.ErrEmbedding on any failure.
// The vector length is whatever the model produces.
func (e *OllamaEmbedder) EmbedWithModel(ctx context.Context, text, model string) ([]float32, error) {
	embedding, err := e.embed(ctx, text, model)
	if err != nil {
		log.Printf("[EMBEDDER] Error Ollama embeddings: %v", err)
		return nil, types.NewError(types.ErrEmbedding, "embed", err)
	}
	return embedding, nil
}

func (e *OllamaEmbedder) embed(ctx context.Context, text, model string) ([]float32, error) {
	body, err := json.Marshal(types.EmbeddingRequest{
		Model:  model,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.apiURL+"/embeddings", bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama API error: status %d, body: %s", resp.StatusCode, string(respBody))
	}

	var ollamaResp types.EmbeddingResponse
	if err := json.Unmarshal(respBody, &ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if len(ollamaResp.Embedding) == 0 {
		return nil, errors.New("response has no embedding")
	}

	embedding := make([]float32, len(ollamaResp.Embedding))
	for i, v := range ollamaResp.Embedding {
		embedding[i] = float32(v)
	}
	return embedding, nil
}
