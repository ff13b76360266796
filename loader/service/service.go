package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"

	"github.com/google/uuid"

	"vecrag/app/agent"
	"vecrag/model"
	"vecrag/store"
	"vecrag/types"
)

const SearchLimit = 3

var SampleDocuments = []string{
	"PHP is a server-side scripting language designed for web development",
	"MariaDB is a fully open source database",
	"Vector databases enable semantic search using embeddings",
	"Ollama lets you run large language models locally",
	"TinyLlama is a small but efficient language model",
}

const (
	SampleQuery    = "What is a database system?"
	SampleQuestion = "Explain what MariaDB is"
)

type Service struct {
	logger    *slog.Logger
	out       io.Writer
	cfg       types.Config
	store     store.DBStorer
	embedder  model.EmbedderInterface
	generator model.GeneratorInterface
	agent     *agent.Agent
}

type Option func(*Service)

// WithOutput redirects the console transcript, os.Stdout by default.
func WithOutput(w io.Writer) Option {
	return func(s *Service) { s.out = w }
}

func New(cfg types.Config, storer store.DBStorer, embedder model.EmbedderInterface, generator model.GeneratorInterface, opts ...Option) *Service {
	s := &Service{
		logger:    slog.Default().With("run_id", uuid.NewString()),
		out:       os.Stdout,
		cfg:       cfg,
		store:     storer,
		embedder:  embedder,
		generator: generator,
		agent:     agent.New(storer, embedder, generator),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run executes the whole demo. Only connection and schema errors are
// returned; everything else is printed and skipped.
func (s *Service) Run(ctx context.Context, documents []string) error {
	s.logger.Info("demo started", "driver", s.cfg.StoreDriver, "documents", len(documents))

	if err := s.Setup(ctx); err != nil {
		return err
	}

	s.printf("=== ADDING DOCUMENTS ===\n\n")
	added := s.Seed(ctx, documents)
	s.logger.Info("documents seeded", "added", added, "skipped", len(documents)-added)

	if _, err := s.ListDocuments(ctx); err != nil {
		s.printf("✗ Listing failed: %v\n\n", err)
	}

	s.printf("=== NATIVE VECTOR SEARCH ===\n\n")
	results := s.Search(ctx, SampleQuery, SearchLimit)
	s.printf("Top %d results by distance:\n", SearchLimit)
	for i, r := range results {
		s.printf("%d. [Distance: %s] %s\n", i+1, formatDistance(r.Distance), r.Text)
	}
	s.printf("\n\n")

	s.printf("=== RAG: ANSWER WITH CONTEXT ===\n\n")
	answer := s.Ask(ctx, SampleQuestion)
	s.printf("\nAnswer: %s\n", answer)

	s.printf("\n✓ Script finished successfully\n")
	s.logger.Info("demo finished")
	return nil
}

// Setup prints the server version and creates the table. A schema error is
// fatal.
func (s *Service) Setup(ctx context.Context) error {
	s.printf("✓ Database connection established\n")
	if version, err := s.store.Version(ctx); err == nil {
		s.printf("✓ Server version: %s\n\n", version)
	} else {
		s.logger.Warn("failed to read server version", "error", err)
	}

	if err := s.store.Init(ctx); err != nil {
		s.printf("✗ Table creation failed: %v\nMake sure the database supports native VECTOR columns (MariaDB 11.8+ or pgvector)\n", err)
		return err
	}
	s.printf("✓ Table 'documents' with VECTOR column ready\n\n")
	return nil
}

// Seed adds documents in order and returns how many were stored.
func (s *Service) Seed(ctx context.Context, documents []string) int {
	added := 0
	for _, doc := range documents {
		if _, err := s.AddDocument(ctx, doc); err == nil {
			added++
		}
	}
	return added
}

func (s *Service) AddDocument(ctx context.Context, text string) (int64, error) {
	s.printf("Adding: %q\n", text)
	s.printf("  → Generating embedding...\n")

	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.printf("  ✗ Embedding failed: %v\n\n", err)
		return 0, err
	}

	// Mismatches are left for the store to reject.
	if len(embedding) != s.cfg.VectorDim {
		s.logger.Warn("embedding dimension differs from column",
			"got", len(embedding), "want", s.cfg.VectorDim, "model", s.embedder.Model())
	}

	id, err := s.store.Insert(ctx, text, embedding)
	if err != nil {
		s.printf("  ✗ SQL error: %v\n\n", err)
		return 0, err
	}

	s.printf("  ✓ Document added (ID: %d, Dim: %d)\n\n", id, len(embedding))
	return id, nil
}

func (s *Service) ListDocuments(ctx context.Context) ([]types.Document, error) {
	docs, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	s.printf("=== Documents in the database (%d) ===\n", len(docs))
	for _, doc := range docs {
		s.printf("ID %d: %s\n", doc.ID, doc.Text)
	}
	s.printf("\n")
	return docs, nil
}

// Search embeds query and returns the k nearest documents. Failures are
// printed and yield an empty result.
func (s *Service) Search(ctx context.Context, query string, k int) []types.SearchResult {
	s.printf("Searching for: %q\n", query)

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		s.printf("✗ Search embedding failed: %v\n", err)
		return nil
	}

	results, err := s.store.SearchSimilar(ctx, queryVec, k)
	if err != nil {
		s.printf("✗ Search error: %v\n", err)
		return nil
	}

	s.printf("✓ Found %d results\n\n", len(results))
	return results
}

// Ask runs the RAG flow and returns the text to display: the model output,
// types.NoAnswer when generation failed, or an empty string when no context
// was found. Retrieval goes through Search so its failures are printed.
func (s *Service) Ask(ctx context.Context, question string) string {
	s.printf("=== Question with RAG ===\n")
	s.printf("Question: %s\n\n", question)

	docs := s.Search(ctx, question, agent.ContextSize)
	if len(docs) == 0 {
		s.printf("No context found\n")
		return ""
	}
	for i, doc := range docs {
		s.logger.Debug("context document", "rank", i+1, "id", doc.ID, "distance", doc.Distance)
	}

	s.printf("Generating answer with %s...\n", s.generator.Model())
	answer, err := s.agent.Complete(ctx, question, docs)
	if err != nil {
		if errors.Is(err, types.ErrGeneration) {
			s.printf("✗ Generation failed: %v\n", err)
		} else {
			s.printf("✗ %v\n", err)
		}
		return types.NoAnswer
	}
	return answer
}

func (s *Service) printf(format string, args ...any) {
	fmt.Fprintf(s.out, format, args...)
}

// formatDistance rounds to 4 decimal places and drops trailing zeros.
func formatDistance(d float64) string {
	rounded := math.Round(d*10000) / 10000
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
