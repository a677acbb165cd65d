package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"pdfchat/internal/chunker"
	"pdfchat/internal/config"
	"pdfchat/internal/domain"
	"pdfchat/internal/embedding/openai"
	"pdfchat/internal/embedding/tfidf"
	"pdfchat/internal/llm/ollama"
	openaichat "pdfchat/internal/llm/openai"
	"pdfchat/internal/logging"
	"pdfchat/internal/memory"
	"pdfchat/internal/pdf"
	"pdfchat/internal/service"
	"pdfchat/internal/session"
	"pdfchat/internal/summarizer"
	"pdfchat/internal/transcript"
	"pdfchat/internal/tui"
	"pdfchat/internal/vectorstore"
	memstore "pdfchat/internal/vectorstore/memory"
	"pdfchat/internal/vectorstore/qdrant"
)

func main() {
	_ = godotenv.Load()

	var cfgPath string
	flag.StringVar(&cfgPath, "config", "", "Path to YAML config file (optional; uses ~/.config/pdfchat/config.yaml if not provided)")
	flag.Parse()

	var cfg *config.AppConfig
	var err error
	if cfgPath == "" {
		cfg, _, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(cfgPath)
	}
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := logging.Init(cfg.LogDir)
	if err != nil {
		log.Fatalf("failed to init logging: %v", err)
	}

	// Assemble components
	var emb domain.Embedder
	switch cfg.Embedder.Type {
	case "tfidf", "":
		emb = tfidf.NewEmbedder()
	case "openai":
		if cfg.Embedder.OpenAI == nil {
			log.Fatalf("openai embedder config missing")
		}
		client, err := openai.NewClient(openai.Config{
			BaseURL:   cfg.Embedder.OpenAI.BaseURL,
			APIKeyEnv: cfg.Embedder.OpenAI.APIKeyEnv,
			Model:     cfg.Embedder.OpenAI.Model,
			Timeout:   time.Duration(cfg.Embedder.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			log.Fatalf("openai embedder init failed: %v", err)
		}
		emb = client
	default:
		log.Fatalf("unknown embedder: %s", cfg.Embedder.Type)
	}

	var st vectorstore.Storage
	switch cfg.VectorStore.Type {
	case "memory", "":
		st = memstore.NewStorage()
	case "qdrant":
		if cfg.VectorStore.Qdrant == nil {
			log.Fatalf("qdrant config missing")
		}
		st = qdrant.NewStorage(qdrant.Config{
			URL:        cfg.VectorStore.Qdrant.URL,
			APIKey:     cfg.VectorStore.Qdrant.APIKey,
			Collection: cfg.VectorStore.Qdrant.Collection,
			Timeout:    time.Duration(cfg.VectorStore.Qdrant.TimeoutSecs) * time.Second,
		})
	default:
		log.Fatalf("unknown vector store: %s", cfg.VectorStore.Type)
	}

	var completer domain.Completer
	llmTimeout := time.Duration(cfg.LLM.TimeoutSecs) * time.Second
	switch cfg.LLM.Type {
	case "ollama", "":
		occfg := ollama.Config{Timeout: llmTimeout}
		if cfg.LLM.Ollama != nil {
			occfg.BaseURL = cfg.LLM.Ollama.BaseURL
			occfg.Model = cfg.LLM.Ollama.Model
		}
		completer = ollama.NewClient(occfg)
	case "openai":
		if cfg.LLM.OpenAI == nil {
			log.Fatalf("openai llm config missing")
		}
		client, err := openaichat.NewClient(openaichat.Config{
			BaseURL:   cfg.LLM.OpenAI.BaseURL,
			APIKeyEnv: cfg.LLM.OpenAI.APIKeyEnv,
			Model:     cfg.LLM.OpenAI.Model,
			Timeout:   llmTimeout,
		})
		if err != nil {
			log.Fatalf("openai llm init failed: %v", err)
		}
		completer = client
	default:
		log.Fatalf("unknown llm backend: %s", cfg.LLM.Type)
	}

	mem, err := memory.New(cfg.Memory.Path, logger)
	if err != nil {
		log.Fatalf("failed to init conversation memory: %v", err)
	}

	svc := service.New(service.Options{
		Loader:     pdf.NewLoader(),
		Chunker:    chunker.NewRecursiveSplitter(cfg.Chunker.ChunkSize, cfg.Chunker.Overlap, nil),
		Embedder:   emb,
		Store:      st,
		Completer:  completer,
		Summarizer: summarizer.NewFrequencySummarizer(),
		Memory:     mem,
		Backup:     transcript.NewBackup(cfg.Memory.BackupPath),
		Logger:     logger,
		RetrievalK: cfg.Retrieval.TopK,
		Timeout:    llmTimeout,
	})

	sess := session.New(svc, mem, logger)
	defer sess.Close()

	// A document given on the command line is ingested before the UI starts.
	if args := flag.Args(); len(args) > 0 {
		n, err := svc.ProcessDocument(context.Background(), args[0])
		if err != nil {
			log.Fatalf("failed to process %s: %v", args[0], err)
		}
		fmt.Printf("Indexed %s (%d fragments)\n", args[0], n)
	}

	if _, err := tea.NewProgram(tui.New(sess), tea.WithAltScreen()).Run(); err != nil {
		log.Fatal(err)
	}
}
