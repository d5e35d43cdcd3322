// Package retrieval assembles the procedure context for a classified
// message: a decorated nearest-neighbor query followed by deterministic
// forced-document injection, so the canonical procedure for a level and
// category is always present regardless of embedding quality.
package retrieval

import "context"

// Passage is one indexed document chunk. ID carries the source document
// path as a prefix ("data/docs/procedures_p0.md | ## title | chunk=0"),
// which is what the forcing step matches on.
type Passage struct {
	ID   string
	Text string
}

// Hit is one ranked nearest-neighbor result.
type Hit struct {
	Source string
	Score  float64
}

// RetrievedContext is the context attached to a message. Sources and
// Scores are parallel, ordered by final rank; Context is the concatenated
// passage text in the same order.
type RetrievedContext struct {
	Sources []string
	Scores  []float64
	Context string
}

// NNService is the opaque nearest-neighbor collaborator: given a query, it
// returns up to topK (source, score) pairs ranked by descending similarity,
// clamping topK to the corpus size.
type NNService interface {
	Search(ctx context.Context, query string, topK int) ([]Hit, error)
}

// DocStore is the opaque passage store the forcing step draws from.
type DocStore interface {
	// ByPrefix returns the passages whose ID starts with prefix, in
	// indexing order.
	ByPrefix(prefix string) []Passage
	// Text returns the text of the passage with the given ID.
	Text(id string) (string, bool)
	// Count returns the number of indexed passages.
	Count() int
}
