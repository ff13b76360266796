package api

import (
	"github.com/gofiber/fiber/v2"

	"vecrag/types"
)

// ConfigHandler exposes the non-secret part of the running configuration.
type ConfigHandler struct {
	cfg types.Config
}

func NewConfigHandler(cfg types.Config) *ConfigHandler {
	return &ConfigHandler{
		cfg: cfg,
	}
}

func (h *ConfigHandler) HandleGetConfig(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"store_driver":    h.cfg.StoreDriver,
		"embedding_model": h.cfg.EmbeddingModel,
		"chat_model":      h.cfg.ChatModel,
		"vector_dim":      h.cfg.VectorDim,
	})
}
