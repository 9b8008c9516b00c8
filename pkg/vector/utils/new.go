// Package vectorutils constructs vector drivers from provider configuration.
package vectorutils

import (
	"fmt"
	"log/slog"

	"github.com/quietmindco/engram/pkg/vector"
	"github.com/quietmindco/engram/pkg/vector/chroma"
	"github.com/quietmindco/engram/pkg/vector/qdrant"
	"github.com/quietmindco/engram/pkg/vector/sqlitevec"
)

// Supported vector store provider types.
const (
	ProviderSQLiteVec = "sqlite-vector"
	ProviderChroma    = "chroma"
	ProviderQdrant    = "qdrant"
)

type NewVectorDriverOpts struct {
	ProviderType string

	// Target is provider-specific: a database file path for sqlite-vector,
	// a server URL for chroma, a host:port for qdrant.
	Target string

	Dimensions uint
	Logger     *slog.Logger
}

func NewVectorDriver(o *NewVectorDriverOpts) (vector.VectorDriver, error) {
	switch o.ProviderType {
	case ProviderSQLiteVec:
		return sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	case ProviderChroma:
		return chroma.NewDriver(chroma.Config{
			URL: o.Target,
		}, o.Logger)
	case ProviderQdrant:
		return qdrant.NewDriver(qdrant.Config{
			Target:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}
