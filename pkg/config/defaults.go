package config

const (
	defaultStorageProvider = "sqlite"
	defaultAPIListen       = ":8080"

	defaultVectorProvider = "sqlite-vector"

	defaultEmbeddingProvider   = "ollama"
	defaultEmbeddingTarget     = "http://localhost:11434"
	defaultEmbeddingModel      = "nomic-embed-text"
	defaultEmbeddingDimensions = 768

	defaultMemoryRecentLimit = 20

	defaultCompletionProvider = "ollama"
	defaultCompletionTarget   = "http://localhost:11434"
	defaultCompletionModel    = "llama3.2"

	defaultEventsProvider = "nop"
	defaultEventsTopic    = "engram.events"
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Storage: StorageConfig{
			Provider: defaultStorageProvider,
		},
		API: APIConfig{
			Listen: defaultAPIListen,
		},
		VectorStore: VectorStoreConfig{
			Provider: defaultVectorProvider,
		},
		Embedding: EmbeddingConfig{
			Provider:   defaultEmbeddingProvider,
			Target:     defaultEmbeddingTarget,
			Model:      defaultEmbeddingModel,
			Dimensions: defaultEmbeddingDimensions,
		},
		Memory: MemoryConfig{
			Enabled:     true,
			RecentLimit: defaultMemoryRecentLimit,
		},
		Completion: CompletionConfig{
			Provider: defaultCompletionProvider,
			Target:   defaultCompletionTarget,
			Model:    defaultCompletionModel,
		},
		Events: EventsConfig{
			Provider: defaultEventsProvider,
			Topic:    defaultEventsTopic,
		},
	}
}
