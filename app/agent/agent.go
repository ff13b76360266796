package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"vecrag/model"
	"vecrag/store"
	"vecrag/types"
)

// ContextSize is the number of documents retrieved for a question.
const ContextSize = 2

type Agent struct {
	store     store.DBStorer
	embedder  model.EmbedderInterface
	generator model.GeneratorInterface
}

func New(s store.DBStorer, embedder model.EmbedderInterface, generator model.GeneratorInterface) *Agent {
	return &Agent{
		store:     s,
		embedder:  embedder,
		generator: generator,
	}
}

// Ask retrieves the closest documents for question and asks the model to
// answer from them. When nothing can be retrieved Found is false, the
// error is nil, Cause holds the retrieval failure if any and the model is
// not called. A generation failure returns the retrieved context together
// with the error.
func (a *Agent) Ask(ctx context.Context, question string) (types.Answer, error) {
	answer := types.Answer{Question: question}

	docs, err := a.Retrieve(ctx, question)
	if err != nil {
		log.Printf("[AGENT] Context retrieval failed: %v", err)
		answer.Cause = err
		return answer, nil
	}
	if len(docs) == 0 {
		return answer, nil
	}
	answer.Context = docs
	answer.Found = true

	output, err := a.Complete(ctx, question, docs)
	if err != nil {
		return answer, err
	}
	answer.Text = output
	return answer, nil
}

// Retrieve returns the ContextSize documents closest to question.
func (a *Agent) Retrieve(ctx context.Context, question string) ([]types.SearchResult, error) {
	queryVec, err := a.embedder.Embed(ctx, question)
	if err != nil {
		return nil, err
	}
	return a.store.SearchSimilar(ctx, queryVec, ContextSize)
}

// Complete asks the model to answer question from docs.
func (a *Agent) Complete(ctx context.Context, question string, docs []types.SearchResult) (string, error) {
	return a.generator.Generate(ctx, BuildPrompt(question, docs))
}

func BuildPrompt(question string, docs []types.SearchResult) string {
	var sb strings.Builder
	sb.WriteString("Based on this information:\n")
	for i, doc := range docs {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, doc.Text))
	}
	sb.WriteString("\nQuestion: ")
	sb.WriteString(question)
	sb.WriteString("\nProvide a brief answer:")
	return sb.String()
}
