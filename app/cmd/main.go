package main

import (
	"context"
	"errors"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"vecrag/app/server"
	"vecrag/types"
)

func init() {
	loadEnvVariables()
}

func main() {
	cfg, err := types.LoadConfig()
	if err != nil {
		log.Fatal("error to load configuration: ", err)
	}

	s := server.NewServer(cfg)
	if err := s.Setup(context.Background()); err != nil {
		log.Fatal("error to start server: ", err)
	}

	go s.Run()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	<-sigch
	log.Println("Received shutdown signal, shutting down server...")
	s.Stop()
}

func loadEnvVariables() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatal("Error loading .env file: ", err)
	}
}
