package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/amikos-tech/chroma-go/pkg/embeddings"
	gemini "github.com/amikos-tech/chroma-go/pkg/embeddings/gemini"
	openai "github.com/amikos-tech/chroma-go/pkg/embeddings/openai"
	"github.com/gamma-omg/graphrag-mcp/config"
	"github.com/gamma-omg/graphrag-mcp/docstore"
	"github.com/gamma-omg/graphrag-mcp/extract"
	"github.com/gamma-omg/graphrag-mcp/graph"
	"github.com/mark3labs/mcp-go/server"
)

func createEmbeddingFunction(cfg *config.Config) (embeddings.EmbeddingFunction, error) {
	if cfg.OpenAI != nil {
		ef, err := openai.NewOpenAIEmbeddingFunction(
			cfg.OpenAI.ApiKey,
			openai.WithModel(openai.EmbeddingModel(cfg.OpenAI.Model)))
		if err != nil {
			return nil, fmt.Errorf("failed to create OpenAI embedding function: %w", err)
		}

		return ef, nil
	}

	if cfg.Gemini != nil {
		ef, err := gemini.NewGeminiEmbeddingFunction(
			gemini.WithAPIKey(cfg.Gemini.ApiKey),
			gemini.WithDefaultModel(embeddings.EmbeddingModel(cfg.Gemini.Model)))
		if err != nil {
			return nil, fmt.Errorf("failed to create Gemini embedding function: %w", err)
		}

		return ef, nil
	}

	return nil, errors.New("invalid embeddings provider configuration")
}

func initDocStore(cfg *config.Config, reset bool) (*docstore.ChromaStore, error) {
	ef, err := createEmbeddingFunction(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to creat emedding function: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	store, err := docstore.NewChromaStore(ctx, docstore.ChromaStoreConfig{
		BaseURL:       cfg.ChromaAddr,
		EmbeddingFunc: ef,
		Results:       cfg.Results,
		RequestSize:   cfg.RequestSize,
		Reset:         reset,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Chroma doc store: %w", err)
	}

	return store, nil
}

func main() {
	reset := flag.Bool("reset", false, "Reinitialized the database from scratch if set")
	cfgPath := flag.String("config", "cfg/config.yaml", "Configuration file for the MCP server")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	logFile, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		log.Fatalf("failed to open log file: %s", err)
	}
	defer logFile.Close()

	logger := slog.New(slog.NewJSONHandler(logFile, nil))

	store, err := initDocStore(cfg, *reset)
	if err != nil {
		log.Fatal(err)
	}

	idx, err := graph.Open(cfg.IndexPath)
	if err != nil {
		log.Fatal(err)
	}
	defer idx.Close()

	if *reset {
		if err := idx.Reset(); err != nil {
			log.Fatal(err)
		}
	}

	reg := DocRegistry{
		log:              logger,
		root:             cfg.DocRoot,
		mergeEventsDelay: time.Duration(cfg.MergeEventsMs) * time.Millisecond,
		store:            store,
		graph:            idx,
		chunkifier: &DefaultChunkfier{
			chunkSize:    cfg.ChunkSize,
			chunkOverlap: cfg.ChunkOverlap,
		},
	}
	reg.RegisterReader(extract.NewExtractor(logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err = reg.Sync(ctx)
		if err != nil {
			log.Fatal(err)
		}

		err = reg.Watch(ctx)
		if err != nil {
			log.Fatal(err)
		}
	}()

	retriever := &Retriever{
		log:          logger,
		store:        store,
		graph:        idx,
		maxNeighbors: cfg.MaxNeighbors,
	}

	srv := NewRagServer(retriever, logger)
	sse := server.NewSSEServer(srv, server.WithBaseURL(fmt.Sprintf("http://%s", cfg.ServerAddr)))
	log.Println(sse.Start(cfg.ServerAddr))
}
