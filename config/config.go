package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Provider names accepted for embeddings and generation.
const (
	ProviderMistral = "mistral"
	ProviderGemini  = "gemini"
)

// Vector store backends.
const (
	StoreChroma  = "chroma"
	StoreChromem = "chromem"
	StoreMemory  = "memory"
)

// Config carries all runtime settings. Values come from the environment,
// with a .env file loaded first when one is present.
type Config struct {
	AppName string
	Port    string
	Debug   bool

	EmbeddingProvider string
	LLMProvider       string
	VectorStore       string

	MistralAPIKey  string
	MistralBaseURL string
	GeminiAPIKey   string
	ModelName      string
	EmbeddingModel string

	ChunkSize    int
	ChunkOverlap int

	CollectionName string
	ChromaURL      string
	PersistDir     string
	UploadDir      string
	WatchDir       string

	UnidocLicenseKey string
}

// Load reads configuration from the environment, applies defaults and
// validates provider selections.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables.")
	}

	cfg := &Config{
		AppName:           getEnv("APP_NAME", "Document RAG API"),
		Port:              getEnv("PORT", "8080"),
		Debug:             getEnvBool("DEBUG", false),
		EmbeddingProvider: getEnv("EMBEDDING_PROVIDER", ProviderMistral),
		LLMProvider:       getEnv("LLM_PROVIDER", ProviderMistral),
		VectorStore:       getEnv("VECTOR_STORE", StoreChromem),
		MistralAPIKey:     os.Getenv("MISTRAL_API_KEY"),
		MistralBaseURL:    getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		ModelName:         os.Getenv("MODEL_NAME"),
		EmbeddingModel:    os.Getenv("EMBEDDING_MODEL"),
		ChunkSize:         getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap:      getEnvInt("CHUNK_OVERLAP", 200),
		CollectionName:    getEnv("COLLECTION_NAME", "documents"),
		ChromaURL:         os.Getenv("CHROMA_URL"),
		PersistDir:        getEnv("PERSIST_DIR", "./data/chromem"),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
		WatchDir:          os.Getenv("WATCH_DIR"),
		UnidocLicenseKey:  os.Getenv("UNIDOC_LICENSE_KEY"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	// Model defaults depend on the selected provider.
	if cfg.EmbeddingModel == "" {
		if cfg.EmbeddingProvider == ProviderGemini {
			cfg.EmbeddingModel = "gemini-embedding-001"
		} else {
			cfg.EmbeddingModel = "mistral-embed"
		}
	}
	if cfg.ModelName == "" {
		if cfg.LLMProvider == ProviderGemini {
			cfg.ModelName = "gemini-2.5-flash"
		} else {
			cfg.ModelName = "mistral-small-latest"
		}
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.EmbeddingProvider {
	case ProviderMistral, ProviderGemini:
	default:
		return fmt.Errorf("unknown EMBEDDING_PROVIDER %q, expected %q or %q", c.EmbeddingProvider, ProviderMistral, ProviderGemini)
	}
	switch c.LLMProvider {
	case ProviderMistral, ProviderGemini:
	default:
		return fmt.Errorf("unknown LLM_PROVIDER %q, expected %q or %q", c.LLMProvider, ProviderMistral, ProviderGemini)
	}
	switch c.VectorStore {
	case StoreChroma, StoreChromem, StoreMemory:
	default:
		return fmt.Errorf("unknown VECTOR_STORE %q, expected %q, %q or %q", c.VectorStore, StoreChroma, StoreChromem, StoreMemory)
	}

	if (c.EmbeddingProvider == ProviderMistral || c.LLMProvider == ProviderMistral) && c.MistralAPIKey == "" {
		return fmt.Errorf("MISTRAL_API_KEY is required when a mistral provider is selected")
	}
	if (c.EmbeddingProvider == ProviderGemini || c.LLMProvider == ProviderGemini) && c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required when a gemini provider is selected")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Printf("CONFIG: Invalid value for %s: %q, using default %d", key, v, fallback)
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("CONFIG: Invalid value for %s: %q, using default %v", key, v, fallback)
		return fallback
	}
	return b
}
