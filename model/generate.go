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

const defaultGenerateTimeout = 60 * time.Second

// TokenCounter reports the size of a prompt for logging.
type TokenCounter func(text string) (int, error)

type OllamaGenerator struct {
	apiURL      string
	model       string
	timeout     time.Duration
	client      *http.Client
	countTokens TokenCounter
}

type GeneratorOption func(*OllamaGenerator)

func WithTokenCounter(fn TokenCounter) GeneratorOption {
	return func(g *OllamaGenerator) { g.countTokens = fn }
}

func NewOllamaGenerator(apiURL, model string, timeout time.Duration, opts ...GeneratorOption) *OllamaGenerator {
	if timeout <= 0 {
		timeout = defaultGenerateTimeout
	}
	g := &OllamaGenerator{
		apiURL:  strings.TrimRight(apiURL, "/"),
		model:   model,
		timeout: timeout,
		client:  &http.Client{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *OllamaGenerator) Model() string {
	return g.model
}

func (g *OllamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	return g.GenerateWithModel(ctx, prompt, g.model)
}

// GenerateWithModel sends a non-streaming request and returns the response
// text. Failures come back as types.ErrGeneration; the caller decides
// whether to print a placeholder.
func (g *OllamaGenerator) GenerateWithModel(ctx context.Context, prompt, model string) (string, error) {
	start := time.Now()
	defer func() {
		log.Printf("[GENERATE] LLM answer took %v", time.Since(start))
	}()

	if g.countTokens != nil {
		if count, err := g.countTokens(prompt); err == nil {
			log.Printf("[GENERATE] Prompt size: %d tokens, %d symbols", count, len(prompt))
		}
	}

	out, err := g.generate(ctx, prompt, model)
	if err != nil {
		return "", types.NewError(types.ErrGeneration, "generate", err)
	}
	return out, nil
}

func (g *OllamaGenerator) generate(ctx context.Context, prompt, model string) (string, error) {
	reqBody, err := json.Marshal(types.GenerateRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.apiURL+"/generate", bytes.NewBuffer(reqBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama API error: status %d, body: %s", resp.StatusCode, string(body))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return "", errors.New("empty response body")
	}

	var genResp types.GenerateResponse
	if err := json.Unmarshal(body, &genResp); err == nil {
		return genResp.Response, nil
	}

	// Some servers ignore stream=false and send NDJSON anyway
	var sb strings.Builder
	decoder := json.NewDecoder(bytes.NewReader(body))
	for decoder.More() {
		var chunk types.GenerateResponse
		if err := decoder.Decode(&chunk); err != nil {
			return "", fmt.Errorf("failed to unmarshal response: %w", err)
		}
		sb.WriteString(chunk.Response)
	}
	return sb.String(), nil
}
