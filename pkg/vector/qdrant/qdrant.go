// Package qdrant provides a Qdrant vector database driver implementation.
//
// Unlike the Chroma driver, which speaks REST, this driver uses Qdrant's
// gRPC API via the official Go client.
package qdrant

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	qdrantclient "github.com/qdrant/go-client/qdrant"

	"github.com/quietmindco/engram/pkg/vector"
)

const (
	// DefaultCollectionName is the default collection name for storing fact embeddings.
	DefaultCollectionName = "engram"

	// DefaultPort is Qdrant's gRPC port, used when the target omits one.
	DefaultPort = 6334

	connectTimeout = 10 * time.Second
)

const (
	payloadDocIDKey  = "doc_id"
	payloadEntityKey = "entity"
)

// pointNamespace seeds deterministic point UUIDs. Qdrant only accepts
// integer or UUID point ids, so document ids are mapped through UUIDv5;
// the original id travels in the payload.
var pointNamespace = uuid.MustParse("7b9cdd4e-5a6f-4f13-8c27-3d1f9a0f6e21")

// Driver implements vector.VectorDriver using Qdrant's gRPC API.
type Driver struct {
	client         *qdrantclient.Client
	collectionName string
	dimensions     uint
	logger         *slog.Logger
}

// Config holds configuration for the Qdrant driver.
type Config struct {
	// Target is the Qdrant gRPC address (e.g., "localhost:6334").
	// A bare host is accepted and gets DefaultPort.
	Target string

	// CollectionName is the name of the collection to use.
	// Defaults to DefaultCollectionName if empty.
	CollectionName string

	// Dimensions is the embedding dimensionality of the collection.
	Dimensions uint
}

// NewDriver creates a new Qdrant vector driver and ensures the collection
// exists with cosine distance.
func NewDriver(c Config, logger *slog.Logger) (*Driver, error) {
	if c.Target == "" {
		return nil, fmt.Errorf("qdrant target is required")
	}
	if c.Dimensions == 0 {
		return nil, fmt.Errorf("dimensions must be greater than zero")
	}

	collectionName := c.CollectionName
	if collectionName == "" {
		collectionName = DefaultCollectionName
	}

	host := c.Target
	port := DefaultPort
	if h, p, err := net.SplitHostPort(c.Target); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid qdrant port %q", p)
		}
		host, port = h, n
	}

	client, err := qdrantclient.NewClient(&qdrantclient.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("creating qdrant client: %w", err)
	}

	d := &Driver{
		client:         client,
		collectionName: collectionName,
		dimensions:     c.Dimensions,
		logger:         logger,
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := d.ensureCollection(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("connected to Qdrant",
		"target", c.Target,
		"collection", collectionName,
		"dimensions", c.Dimensions,
	)

	return d, nil
}

// ensureCollection creates the collection if it does not exist yet.
func (d *Driver) ensureCollection(ctx context.Context) error {
	exists, err := d.client.CollectionExists(ctx, d.collectionName)
	if err != nil {
		return fmt.Errorf("checking collection %q: %w", d.collectionName, err)
	}
	if exists {
		return nil
	}

	err = d.client.CreateCollection(ctx, &qdrantclient.CreateCollection{
		CollectionName: d.collectionName,
		VectorsConfig: qdrantclient.NewVectorsConfig(&qdrantclient.VectorParams{
			Size:     uint64(d.dimensions),
			Distance: qdrantclient.Distance_Cosine,
		}),
	})
	if err != nil {
		return fmt.Errorf("creating collection %q: %w", d.collectionName, err)
	}
	return nil
}

// pointID maps a document id onto a deterministic Qdrant point id.
func pointID(docID string) *qdrantclient.PointId {
	return qdrantclient.NewID(uuid.NewSHA1(pointNamespace, []byte(docID)).String())
}

// Add stores documents with their embeddings. Re-adding an existing
// document id overwrites the stored point.
func (d *Driver) Add(ctx context.Context, docs []vector.Document) error {
	if len(docs) == 0 {
		return nil
	}

	points := make([]*qdrantclient.PointStruct, len(docs))
	for i, doc := range docs {
		if len(doc.Embedding) != int(d.dimensions) {
			return fmt.Errorf("document %s: embedding has %d dimensions, collection expects %d", doc.ID, len(doc.Embedding), d.dimensions)
		}
		points[i] = &qdrantclient.PointStruct{
			Id:      pointID(doc.ID),
			Vectors: qdrantclient.NewVectors(doc.Embedding...),
			Payload: qdrantclient.NewValueMap(map[string]any{
				payloadDocIDKey:  doc.ID,
				payloadEntityKey: doc.Entity,
			}),
		}
	}

	_, err := d.client.Upsert(ctx, &qdrantclient.UpsertPoints{
		CollectionName: d.collectionName,
		Wait:           qdrantclient.PtrOf(true),
		Points:         points,
	})
	if err != nil {
		return fmt.Errorf("upserting points: %w", err)
	}

	d.logger.Debug("added documents to qdrant", "count", len(docs))

	return nil
}

// Query finds the topK most similar documents to the given embedding.
func (d *Driver) Query(ctx context.Context, embedding []float32, topK int) ([]vector.QueryResult, error) {
	if topK <= 0 {
		topK = 10
	}

	points, err := d.client.Query(ctx, &qdrantclient.QueryPoints{
		CollectionName: d.collectionName,
		Query:          qdrantclient.NewQuery(embedding...),
		Limit:          qdrantclient.PtrOf(uint64(topK)),
		WithPayload:    qdrantclient.NewWithPayload(true),
		WithVectors:    qdrantclient.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("querying points: %w", err)
	}

	var results []vector.QueryResult
	for _, p := range points {
		doc, ok := documentFromPayload(p.GetPayload(), p.GetVectors())
		if !ok {
			continue
		}
		results = append(results, vector.QueryResult{
			Document: doc,
			// Cosine similarity straight from Qdrant: higher is more similar.
			Score: p.GetScore(),
		})
	}

	d.logger.Debug("queried qdrant", "results", len(results))

	return results, nil
}

// Get retrieves documents by their IDs. Missing ids are skipped.
func (d *Driver) Get(ctx context.Context, ids []string) ([]vector.Document, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	pointIDs := make([]*qdrantclient.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = pointID(id)
	}

	points, err := d.client.Get(ctx, &qdrantclient.GetPoints{
		CollectionName: d.collectionName,
		Ids:            pointIDs,
		WithPayload:    qdrantclient.NewWithPayload(true),
		WithVectors:    qdrantclient.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting points: %w", err)
	}

	var docs []vector.Document
	for _, p := range points {
		doc, ok := documentFromPayload(p.GetPayload(), p.GetVectors())
		if !ok {
			continue
		}
		docs = append(docs, doc)
	}

	return docs, nil
}

// Delete removes documents by their IDs.
func (d *Driver) Delete(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	pointIDs := make([]*qdrantclient.PointId, len(ids))
	for i, id := range ids {
		pointIDs[i] = pointID(id)
	}

	_, err := d.client.Delete(ctx, &qdrantclient.DeletePoints{
		CollectionName: d.collectionName,
		Wait:           qdrantclient.PtrOf(true),
		Points:         qdrantclient.NewPointsSelector(pointIDs...),
	})
	if err != nil {
		return fmt.Errorf("deleting points: %w", err)
	}

	d.logger.Debug("deleted documents from qdrant", "count", len(ids))

	return nil
}

// Close shuts down the underlying gRPC connection.
func (d *Driver) Close() error {
	return d.client.Close()
}

// documentFromPayload rebuilds a Document from a stored point. Points
// written by other tools may lack the doc_id payload; those are dropped.
func documentFromPayload(payload map[string]*qdrantclient.Value, vectors *qdrantclient.VectorsOutput) (vector.Document, bool) {
	docID := payload[payloadDocIDKey].GetStringValue()
	if docID == "" {
		return vector.Document{}, false
	}

	doc := vector.Document{
		ID:     docID,
		Entity: payload[payloadEntityKey].GetStringValue(),
	}
	if v := vectors.GetVector(); v != nil {
		doc.Embedding = v.GetData()
	}
	return doc, true
}
