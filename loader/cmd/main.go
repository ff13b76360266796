package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"time"

	"github.com/joho/godotenv"

	"vecrag/cache"
	"vecrag/loader/seed"
	"vecrag/loader/service"
	"vecrag/model"
	"vecrag/store"
	"vecrag/types"
)

func init() {
	loadEnvVariables()
}

func main() {
	ctx := context.Background()

	cfg, err := types.LoadConfig()
	if err != nil {
		log.Fatal("error to load configuration: ", err)
	}

	documents := append([]string(nil), service.SampleDocuments...)
	if cfg.SeedFile != "" {
		extra, err := seed.LoadSeedFile(cfg.SeedFile)
		if err != nil {
			log.Fatal("error to load seed documents: ", err)
		}
		documents = append(documents, extra...)
	}

	db, err := store.New(ctx, cfg)
	if err != nil {
		log.Fatal("error to connect to database: ", err)
	}
	defer db.Close()

	var embedder model.EmbedderInterface = model.NewOllamaEmbedder(cfg.OllamaAPI, cfg.EmbeddingModel, cfg.EmbedTimeout)
	if cfg.RedisURL != "" {
		client, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			log.Printf("[CACHE] Embedding cache disabled: %v", err)
		} else {
			defer client.Close()
			embedder = cache.NewEmbeddingCache(client, embedder, 24*time.Hour)
		}
	}
	generator := model.NewOllamaGenerator(cfg.OllamaAPI, cfg.ChatModel, cfg.GenerateTimeout,
		model.WithTokenCounter(model.CountTokens))

	if err := service.New(cfg, db, embedder, generator).Run(ctx, documents); err != nil {
		db.Close()
		log.Fatal("error to run demo: ", err)
	}
}

// loadEnvVariables reads .env if present; defaults apply otherwise.
func loadEnvVariables() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("Error loading .env file: ", err)
	}
}
