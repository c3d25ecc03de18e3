package rag

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chitikelaguna/Edify-Service-Chatbot-Agent/internal/domain"
)

func TestEmbeddingClient(t *testing.T) {
	var got embeddingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"embedding":[0.1,0.2,0.3],"index":0}]}`))
	}))
	defer server.Close()

	client := NewEmbeddingClient(server.URL+"/", "sk-test", "text-embedding-3-small", time.Second)
	vec, err := client.Embed(context.Background(), "leave policy")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, vec)
	assert.Equal(t, "text-embedding-3-small", got.Model)
	assert.Equal(t, []string{"leave policy"}, got.Input)
}

func TestEmbeddingClientStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewEmbeddingClient(server.URL, "", "m", time.Second).Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestEmbeddingURL(t *testing.T) {
	assert.Equal(t, "https://api.example.com/v1/embeddings", embeddingURL("https://api.example.com"))
	assert.Equal(t, "https://api.example.com/v1/embeddings", embeddingURL("https://api.example.com/v1"))
	assert.Equal(t, "https://x/custom/embeddings", embeddingURL("https://x/custom/embeddings"))
}

type fakeEmbedder struct {
	err error
}

func (f fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []float32{1, 0}, nil
}

type fakePoints struct {
	req  *qdrant.QueryPoints
	hits []*qdrant.ScoredPoint
	err  error
}

func (f *fakePoints) Query(ctx context.Context, req *qdrant.QueryPoints) ([]*qdrant.ScoredPoint, error) {
	f.req = req
	return f.hits, f.err
}

func TestRetrieverSearch(t *testing.T) {
	points := &fakePoints{hits: []*qdrant.ScoredPoint{
		{Score: 0.91, Payload: qdrant.NewValueMap(map[string]any{"content": "Leave accrues monthly.", "file_name": "hr.pdf::chunk_1"})},
		{Score: 0.73, Payload: qdrant.NewValueMap(map[string]any{"file_name": "empty.pdf::chunk_9"})},
	}}
	r := NewRetriever(fakeEmbedder{}, points, "rag_documents", 0.5, 3, nil)

	records, err := r.Retrieve(context.Background(), "leave policy", domain.ConversationWindow{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "Leave accrues monthly.", records[0]["content"])
	assert.Equal(t, "hr.pdf::chunk_1", records[0]["file_name"])

	require.NotNil(t, points.req)
	assert.Equal(t, "rag_documents", points.req.CollectionName)
	assert.Equal(t, uint64(3), *points.req.Limit)
	assert.Equal(t, float32(0.5), *points.req.ScoreThreshold)
}

func TestRetrieverErrors(t *testing.T) {
	r := NewRetriever(fakeEmbedder{err: errors.New("boom")}, &fakePoints{}, "c", 0.5, 3, nil)
	_, err := r.Search(context.Background(), "x", 0.5, 3)
	assert.ErrorContains(t, err, "embed")

	r = NewRetriever(fakeEmbedder{}, &fakePoints{err: errors.New("unavailable")}, "c", 0.5, 3, nil)
	_, err = r.Search(context.Background(), "x", 0.5, 3)
	assert.ErrorContains(t, err, "qdrant")
}
