package model

import (
	"context"
)

// EmbedderInterface turns text into a vector
type EmbedderInterface interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

type GeneratorInterface interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Model() string
}

var (
	_ EmbedderInterface  = (*OllamaEmbedder)(nil)
	_ GeneratorInterface = (*OllamaGenerator)(nil)
)
