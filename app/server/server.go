package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"vecrag/app/api"
	"vecrag/cache"
	"vecrag/model"
	"vecrag/store"
	"vecrag/types"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
}

type Server struct {
	cfg    types.Config
	logger *slog.Logger
	app    *fiber.App
	store  store.DBStorer
	cache  interface{ Close() error }
}

func NewServer(cfg types.Config) *Server {
	return &Server{
		cfg:    cfg,
		logger: slog.Default(),
	}
}

// NewApp registers the routes on a fresh fiber app.
func NewApp(requestHandler *api.RequestHandler, configHandler *api.ConfigHandler) *fiber.App {
	var (
		app          = fiber.New(config)
		checkHandler = api.NewCheckHandler()
		check        = app.Group("/check")
		apiv1        = app.Group("/api/v1")
	)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Get("/config", configHandler.HandleGetConfig)
	apiv1.Get("/documents", requestHandler.HandleListDocuments)
	apiv1.Post("/documents", requestHandler.HandleAddDocument)
	apiv1.Post("/documents/file", requestHandler.HandleFile)
	apiv1.Post("/search", requestHandler.HandleSearch)
	apiv1.Post("/request", requestHandler.HandleRequest)

	return app
}

func (s *Server) Stop() {
	if s.app != nil {
		if err := s.app.ShutdownWithTimeout(5 * time.Second); err != nil {
			s.logger.Error("error to shutdown server", "error", err.Error())
		}
	}
	if s.cache != nil {
		s.cache.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
	s.logger.Info("server stopped")
}

// Setup connects to the store, creates the table and builds the app.
// Errors from here are fatal.
func (s *Server) Setup(ctx context.Context) error {
	db, err := store.New(ctx, s.cfg)
	if err != nil {
		return err
	}
	if err := db.Init(ctx); err != nil {
		db.Close()
		return err
	}
	s.store = db

	var embedder model.EmbedderInterface = model.NewOllamaEmbedder(s.cfg.OllamaAPI, s.cfg.EmbeddingModel, s.cfg.EmbedTimeout)
	if s.cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, s.cfg.RedisURL)
		if err != nil {
			s.logger.Warn("embedding cache disabled", "error", err.Error())
		} else {
			s.cache = client
			embedder = cache.NewEmbeddingCache(client, embedder, 24*time.Hour)
		}
	}
	generator := model.NewOllamaGenerator(s.cfg.OllamaAPI, s.cfg.ChatModel, s.cfg.GenerateTimeout,
		model.WithTokenCounter(model.CountTokens))

	s.app = NewApp(
		api.NewRequestHandler(db, embedder, generator),
		api.NewConfigHandler(s.cfg),
	)
	return nil
}

// Run serves until Stop is called.
func (s *Server) Run() {
	s.logger.Info("server started", "addr", s.cfg.ServerAddr, "driver", s.cfg.StoreDriver)
	if err := s.app.Listen(s.cfg.ServerAddr); err != nil {
		s.logger.Error("error to start server", "error", err.Error())
		return
	}
}
