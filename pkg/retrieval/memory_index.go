package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
)

// Embedder turns text into a vector. Implementations wrap whatever
// embedding service backs the index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// MemoryIndex is an in-memory nearest-neighbor index with brute-force
// cosine similarity search. It implements both NNService and DocStore:
// the same passage list backs search results and forced-document lookup.
// Reads are safe for unsynchronized concurrent use once indexing is done.
type MemoryIndex struct {
	mu         sync.RWMutex
	embedder   Embedder
	passages   []Passage
	embeddings [][]float32
	byID       map[string]int
}

// NewMemoryIndex creates an empty index over the given embedder.
func NewMemoryIndex(embedder Embedder) *MemoryIndex {
	return &MemoryIndex{
		embedder: embedder,
		byID:     make(map[string]int),
	}
}

// Index embeds and adds passages. Passages with duplicate IDs are rejected.
func (m *MemoryIndex) Index(ctx context.Context, passages []Passage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range passages {
		if _, exists := m.byID[p.ID]; exists {
			return fmt.Errorf("duplicate passage id: %s", p.ID)
		}
		emb, err := m.embedder.Embed(ctx, p.Text)
		if err != nil {
			return fmt.Errorf("failed to embed passage %s: %w", p.ID, err)
		}
		m.byID[p.ID] = len(m.passages)
		m.passages = append(m.passages, p)
		m.embeddings = append(m.embeddings, emb)
	}
	return nil
}

// Search performs brute-force cosine similarity search, clamping topK to
// the corpus size.
func (m *MemoryIndex) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	topK = safeTopK(topK, len(m.passages))
	if topK == 0 {
		return nil, nil
	}

	queryEmb, err := m.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	hits := make([]Hit, 0, len(m.passages))
	for i, p := range m.passages {
		hits = append(hits, Hit{
			Source: p.ID,
			Score:  cosineSimilarity(queryEmb, m.embeddings[i]),
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	return hits[:topK], nil
}

// ByPrefix returns the passages whose ID starts with prefix, in indexing
// order.
func (m *MemoryIndex) ByPrefix(prefix string) []Passage {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Passage
	for _, p := range m.passages {
		if len(p.ID) >= len(prefix) && p.ID[:len(prefix)] == prefix {
			out = append(out, p)
		}
	}
	return out
}

// Text returns the text of the passage with the given ID.
func (m *MemoryIndex) Text(id string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.byID[id]
	if !ok {
		return "", false
	}
	return m.passages[i].Text, true
}

// Count returns the number of indexed passages.
func (m *MemoryIndex) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.passages)
}

// cosineSimilarity computes the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	denom := math.Sqrt(normA) * math.Sqrt(normB)
	if denom == 0 {
		return 0
	}
	return dot / denom
}
