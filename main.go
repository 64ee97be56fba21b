package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"docrag/config"
	"docrag/controller"
	"docrag/embedding"
	"docrag/llm"
	"docrag/services"
	"docrag/vectorstore"

	"github.com/gin-gonic/gin"
	"google.golang.org/genai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("FATAL: Invalid configuration: %v", err)
	}

	if err := services.ActivateUnidocLicense(cfg.UnidocLicenseKey); err != nil {
		log.Printf("WARN: Failed to set Unidoc license key: %v. PDF processing will fail.", err)
	}

	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		log.Fatalf("FATAL: Failed to create upload directory %s: %v", cfg.UploadDir, err)
	}

	ctx := context.Background()

	// One genai client serves both the Gemini embedder and generator.
	var geminiClient *genai.Client
	if cfg.EmbeddingProvider == config.ProviderGemini || cfg.LLMProvider == config.ProviderGemini {
		geminiClient, err = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  cfg.GeminiAPIKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			log.Fatalf("FATAL: Failed to create Gemini client: %v. Make sure GEMINI_API_KEY is set.", err)
		}
		log.Println("Successfully connected to Google Gemini.")
	}

	embedder, err := buildEmbedder(cfg, geminiClient)
	if err != nil {
		log.Fatalf("FATAL: Failed to create embedding client: %v", err)
	}

	generator, err := buildGenerator(cfg, geminiClient)
	if err != nil {
		log.Fatalf("FATAL: Failed to create LLM client: %v", err)
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		log.Fatalf("FATAL: Failed to create vector store: %v", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("Warning: Failed to close vector store: %v", err)
		}
	}()

	processor, err := services.NewDocumentProcessor(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		log.Fatalf("FATAL: Invalid chunking configuration: %v", err)
	}

	ragService := services.NewRAGService(embedder, store, generator)
	ragController := controller.NewRAGController(ragService, processor, cfg.UploadDir)

	if cfg.WatchDir != "" {
		if err := os.MkdirAll(cfg.WatchDir, 0o755); err != nil {
			log.Fatalf("FATAL: Failed to create watch directory %s: %v", cfg.WatchDir, err)
		}
		watcher := services.NewWatcher(ragService, processor)
		go func() {
			if err := watcher.Watch(ctx, cfg.WatchDir); err != nil {
				log.Printf("WATCHER ERROR: %v", err)
			}
		}()
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(corsMiddleware())

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "Welcome to " + cfg.AppName,
			"version": "1.0.0",
			"health":  "/api/health",
			"endpoints": gin.H{
				"upload": "POST /api/upload",
				"query":  "POST /api/query",
				"stats":  "GET /api/stats",
			},
		})
	})

	api := router.Group("/api")
	{
		api.POST("/upload", ragController.UploadDocument)
		api.POST("/query", ragController.QueryDocuments)
		api.GET("/stats", ragController.GetStats)
		api.GET("/health", ragController.HealthCheck)
	}

	log.Printf("%s starting on http://localhost:%s", cfg.AppName, cfg.Port)
	log.Printf("Vector store: %s (collection '%s')", cfg.VectorStore, store.Name())
	log.Printf("Embeddings: %s (%s), LLM: %s (%s)", cfg.EmbeddingProvider, embedder.ModelName(), cfg.LLMProvider, generator.ModelName())

	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("FATAL: Failed to start server: %v", err)
	}
}

func buildEmbedder(cfg *config.Config, geminiClient *genai.Client) (embedding.Service, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderMistral:
		return embedding.NewMistralService(embedding.MistralConfig{
			APIKey:  cfg.MistralAPIKey,
			Model:   cfg.EmbeddingModel,
			BaseURL: cfg.MistralBaseURL,
		}), nil
	case config.ProviderGemini:
		return embedding.NewGeminiService(geminiClient, cfg.EmbeddingModel), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.EmbeddingProvider)
	}
}

func buildGenerator(cfg *config.Config, geminiClient *genai.Client) (llm.Generator, error) {
	switch cfg.LLMProvider {
	case config.ProviderMistral:
		return llm.NewMistralGenerator(cfg.MistralAPIKey, cfg.ModelName)
	case config.ProviderGemini:
		return llm.NewGeminiGenerator(geminiClient, cfg.ModelName), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}

func buildStore(ctx context.Context, cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.VectorStore {
	case config.StoreChroma:
		return vectorstore.NewChromaStore(ctx, cfg.ChromaURL, cfg.CollectionName)
	case config.StoreChromem:
		return vectorstore.NewChromemStore(cfg.PersistDir, cfg.CollectionName)
	case config.StoreMemory:
		return vectorstore.NewMemoryStore(cfg.CollectionName), nil
	default:
		return nil, fmt.Errorf("unknown vector store %q", cfg.VectorStore)
	}
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
