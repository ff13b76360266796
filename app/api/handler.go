package api

import (
	"log"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"vecrag/app/agent"
	"vecrag/model"
	"vecrag/store"
	"vecrag/types"
)

const defaultSearchLimit = 3

// RequestHandler serves the document operations. All handlers share one
// lock so the store connection has a single caller at a time.
type RequestHandler struct {
	mu       sync.Mutex
	store    store.DBStorer
	embedder model.EmbedderInterface
	agent    *agent.Agent
}

func NewRequestHandler(s store.DBStorer, embedder model.EmbedderInterface, generator model.GeneratorInterface) *RequestHandler {
	return &RequestHandler{
		store:    s,
		embedder: embedder,
		agent:    agent.New(s, embedder, generator),
	}
}

func (h *RequestHandler) HandleRequest(c *fiber.Ctx) error {
	var params types.QueryParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	answer, err := h.agent.Ask(c.UserContext(), params.Prompt)
	if err != nil {
		return err
	}

	sources := make([]types.Source, len(answer.Context))
	for i, doc := range answer.Context {
		sources[i] = types.Source{
			DocID:    doc.ID,
			Text:     doc.Text,
			Distance: doc.Distance,
		}
	}

	return c.JSON(&types.SearchResponse{
		Answer:    answer.Text,
		Sources:   sources,
		Found:     answer.Found,
		Timestamp: time.Now(),
	})
}

func (h *RequestHandler) HandleSearch(c *fiber.Ctx) error {
	var params types.SearchParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}
	if params.Limit == 0 {
		params.Limit = defaultSearchLimit
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	queryVec, err := h.embedder.Embed(c.UserContext(), params.Prompt)
	if err != nil {
		return err
	}
	results, err := h.store.SearchSimilar(c.UserContext(), queryVec, params.Limit)
	if err != nil {
		return err
	}

	sources := make([]types.Source, len(results))
	for i, r := range results {
		sources[i] = types.Source{DocID: r.ID, Text: r.Text, Distance: r.Distance}
	}
	return c.JSON(sources)
}

func (h *RequestHandler) HandleAddDocument(c *fiber.Ctx) error {
	var params types.DocumentParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	id, err := h.addDocument(c, params.Text)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(types.DocumentResponse{ID: id, Text: params.Text})
}

func (h *RequestHandler) HandleListDocuments(c *fiber.Ctx) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	docs, err := h.store.List(c.UserContext())
	if err != nil {
		return err
	}

	resp := make([]types.DocumentResponse, len(docs))
	for i, doc := range docs {
		resp[i] = types.DocumentResponse{ID: doc.ID, Text: doc.Text, CreatedAt: doc.CreatedAt}
	}
	return c.JSON(resp)
}

func (h *RequestHandler) addDocument(c *fiber.Ctx, text string) (int64, error) {
	embedding, err := h.embedder.Embed(c.UserContext(), text)
	if err != nil {
		return 0, err
	}
	id, err := h.store.Insert(c.UserContext(), text, embedding)
	if err != nil {
		return 0, err
	}
	log.Printf("[API] Document added (ID: %d, Dim: %d)", id, len(embedding))
	return id, nil
}
