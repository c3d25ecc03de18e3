package rag

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/logger"
)

// Embedder turns query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// PointQuerier is the subset of the qdrant client used for search.
type PointQuerier interface {
	Query(ctx context.Context, request *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error)
}

// Retriever searches document chunks by vector similarity.
type Retriever struct {
	embedder   Embedder
	points     PointQuerier
	collection string
	threshold  float32
	topK       int
	log        *logger.Logger
}

// NewQdrantClient connects to qdrant over gRPC.
func NewQdrantClient(host string, port int, apiKey string) (*qdrant.Client, error) {
	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   host,
		Port:   port,
		APIKey: apiKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}
	return client, nil
}

// NewRetriever creates a retriever using threshold and topK as defaults for Retrieve.
func NewRetriever(embedder Embedder, points PointQuerier, collection string, threshold float32, topK int, log *logger.Logger) *Retriever {
	if log == nil {
		log = logger.Nop()
	}
	return &Retriever{
		embedder:   embedder,
		points:     points,
		collection: collection,
		threshold:  threshold,
		topK:       topK,
		log:        log.Component("rag_retriever"),
	}
}

// Retrieve searches with the configured threshold and result count.
func (r *Retriever) Retrieve(ctx context.Context, text string, _ domain.ConversationWindow) ([]domain.Record, error) {
	return r.Search(ctx, text, r.threshold, r.topK)
}

// Search returns up to topK chunks whose similarity is at least threshold, best first.
func (r *Retriever) Search(ctx context.Context, text string, threshold float32, topK int) ([]domain.Record, error) {
	vector, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	limit := uint64(topK)
	hits, err := r.points.Query(ctx, &qdrant.QueryPoints{
		CollectionName: r.collection,
		Query:          qdrant.NewQuery(vector...),
		Limit:          &limit,
		ScoreThreshold: &threshold,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query qdrant: %w", err)
	}

	records := make([]domain.Record, 0, len(hits))
	for _, hit := range hits {
		if rec := hitToRecord(hit); rec != nil {
			records = append(records, rec)
		}
	}

	r.log.Debug().
		Int("hits", len(hits)).
		Int("records", len(records)).
		Float32("threshold", threshold).
		Msg("vector search completed")
	return records, nil
}

// hitToRecord keeps hits that carry chunk text.
func hitToRecord(hit *qdrant.ScoredPoint) domain.Record {
	payload := hit.GetPayload()
	content := payload["content"].GetStringValue()
	if content == "" {
		return nil
	}

	rec := domain.Record{
		"content":    content,
		"similarity": hit.GetScore(),
	}
	if name := payload["file_name"].GetStringValue(); name != "" {
		rec["file_name"] = name
	}
	if id := payload["document_id"].GetStringValue(); id != "" {
		rec["document_id"] = id
	}
	return rec
}
