// Package memoryutils constructs the hybrid recall engine from provider
// configuration.
package memoryutils

import (
	"go.uber.org/zap"

	embeddingutils "github.com/quietmindco/engram/pkg/embeddings/utils"
	"github.com/quietmindco/engram/pkg/logger"
	"github.com/quietmindco/engram/pkg/memory/hybrid"
	"github.com/quietmindco/engram/pkg/storage"
	vectorutils "github.com/quietmindco/engram/pkg/vector/utils"
)

type NewEngineOpts struct {
	// Store is the relational fact store. Owned by the caller.
	Store storage.Driver

	// Enabled gates the vector index. False builds an exact-match engine
	// without touching the vector or embedding providers.
	Enabled bool

	VectorProvider string
	VectorTarget   string

	EmbeddingProvider string
	EmbeddingTarget   string
	EmbeddingModel    string
	Dimensions        uint

	Logger *zap.Logger
}

// NewEngine builds the hybrid recall engine. When the vector index or the
// embedder cannot be constructed the engine starts in exact-match mode
// instead of failing; the degradation is logged and permanent for the
// process.
func NewEngine(o *NewEngineOpts) *hybrid.Engine {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}

	if !o.Enabled {
		return hybrid.NewEngine(o.Store, nil, nil, o.Logger)
	}

	vec, err := vectorutils.NewVectorDriver(&vectorutils.NewVectorDriverOpts{
		ProviderType: o.VectorProvider,
		Target:       o.VectorTarget,
		Dimensions:   o.Dimensions,
		Logger:       logger.Nop(),
	})
	if err != nil {
		o.Logger.Warn("vector index unavailable, recall degrades to exact matching",
			zap.String("provider", o.VectorProvider),
			zap.Error(err),
		)
		return hybrid.NewEngine(o.Store, nil, nil, o.Logger)
	}

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: o.EmbeddingProvider,
		TargetURL:    o.EmbeddingTarget,
		Model:        o.EmbeddingModel,
	})
	if err != nil {
		o.Logger.Warn("embedder unavailable, recall degrades to exact matching",
			zap.String("provider", o.EmbeddingProvider),
			zap.Error(err),
		)
		_ = vec.Close()
		return hybrid.NewEngine(o.Store, nil, nil, o.Logger)
	}

	o.Logger.Info("vector recall enabled",
		zap.String("vector_provider", o.VectorProvider),
		zap.String("embedding_provider", o.EmbeddingProvider),
		zap.String("embedding_model", o.EmbeddingModel),
	)

	return hybrid.NewEngine(o.Store, vec, embedder, o.Logger)
}
