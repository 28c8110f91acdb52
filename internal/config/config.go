package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"docqa/internal/ragerr"
)

// EmbeddingConfig selects the embedding provider and its model.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"`   // "gemini", "openai", "ollama", "huggingface", "hash"
	Model      string `yaml:"model"`      // provider model name
	APIKey     string `yaml:"apiKey"`     // overridable via EMBEDDING_API_KEY
	BaseURL    string `yaml:"baseURL"`    // optional, provider dependent
	Dimensions int    `yaml:"dimensions"` // pipeline-wide vector length
}

// LLMConfig selects the generative provider and its model.
type LLMConfig struct {
	Provider string `yaml:"provider"` // "gemini", "openai", "ollama"
	Model    string `yaml:"model"`    // provider model name
	APIKey   string `yaml:"apiKey"`   // overridable via LLM_API_KEY
	BaseURL  string `yaml:"baseURL"`  // optional, provider dependent
}

// MilvusConfig holds the vector store connection settings.
type MilvusConfig struct {
	Address string `yaml:"address"` // e.g. "localhost:19530"
}

// ChunkingConfig tunes the document splitter.
type ChunkingConfig struct {
	ChunkSize int `yaml:"chunkSize"`
	Overlap   int `yaml:"overlap"`
}

// RetrievalConfig tunes the query flow.
type RetrievalConfig struct {
	TopK int `yaml:"topK"`
}

// LanguageConfig tunes the language detector.
type LanguageConfig struct {
	Default   string   `yaml:"default"`
	Supported []string `yaml:"supported"`
}

// LogConfig tunes logging output.
type LogConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
}

// Config is the full application configuration.
type Config struct {
	Log       LogConfig       `yaml:"log"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
	Milvus    MilvusConfig    `yaml:"milvus"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Language  LanguageConfig  `yaml:"language"`
}

// Default returns the reference configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Embedding: EmbeddingConfig{
			Provider:   "gemini",
			Model:      "text-embedding-004",
			Dimensions: 768,
		},
		LLM: LLMConfig{
			Provider: "gemini",
			Model:    "gemini-1.5-flash",
		},
		Milvus:    MilvusConfig{Address: "localhost:19530"},
		Chunking:  ChunkingConfig{ChunkSize: 1000, Overlap: 200},
		Retrieval: RetrievalConfig{TopK: 3},
		Language:  LanguageConfig{Default: "en"},
	}
}

// Load reads a YAML configuration file over the defaults, applies
// environment overrides for secrets, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, ragerr.Wrap(err, ragerr.CodeConfiguration, "failed to read config file")
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, ragerr.Wrap(err, ragerr.CodeConfiguration, "failed to parse config file")
		}
	}

	if key := os.Getenv("EMBEDDING_API_KEY"); key != "" {
		cfg.Embedding.APIKey = key
	}
	if key := os.Getenv("LLM_API_KEY"); key != "" {
		cfg.LLM.APIKey = key
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate fails fast on configuration the pipeline cannot run with.
func (c *Config) Validate() error {
	if c.Chunking.ChunkSize <= 0 {
		return ragerr.Newf(ragerr.CodeConfiguration, "chunking.chunkSize must be positive, got %d", c.Chunking.ChunkSize)
	}
	if c.Chunking.Overlap < 0 || c.Chunking.Overlap >= c.Chunking.ChunkSize {
		return ragerr.Newf(ragerr.CodeConfiguration,
			"chunking.overlap must be in [0, chunkSize), got overlap=%d chunkSize=%d",
			c.Chunking.Overlap, c.Chunking.ChunkSize)
	}
	if c.Embedding.Dimensions <= 0 {
		return ragerr.Newf(ragerr.CodeConfiguration, "embedding.dimensions must be positive, got %d", c.Embedding.Dimensions)
	}
	if c.Retrieval.TopK <= 0 {
		return ragerr.Newf(ragerr.CodeConfiguration, "retrieval.topK must be positive, got %d", c.Retrieval.TopK)
	}
	if c.Embedding.Provider == "" {
		return ragerr.New(ragerr.CodeConfiguration, "embedding.provider must be set")
	}
	if c.LLM.Provider == "" {
		return ragerr.New(ragerr.CodeConfiguration, "llm.provider must be set")
	}
	return nil
}
