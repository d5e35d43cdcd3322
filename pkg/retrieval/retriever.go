package retrieval

import (
	"context"
	"strings"
	"time"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/classification"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/config"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
)

// Retriever builds the retrieval context for classified messages. It is
// read-only after construction and safe for concurrent use.
type Retriever struct {
	nn   NNService
	docs DocStore
	cfg  config.RetrievalConfig
}

// New creates a Retriever over a nearest-neighbor service and a document
// store.
func New(nn NNService, docs DocStore, cfg config.RetrievalConfig) *Retriever {
	return &Retriever{nn: nn, docs: docs, cfg: cfg}
}

// DecorateQuery prefixes the raw text with a level tag and, when the
// category is non-empty, a category tag. Embedding similarity alone is weak
// at separating urgency tiers from lexical content; the tags bias retrieval
// toward tier-appropriate procedure documents.
func DecorateQuery(text string, level classification.Level, category classification.Category) string {
	q := strings.TrimSpace(text)
	if q == "" {
		return q
	}

	parts := []string{levelTag(level)}
	if category != "" {
		parts = append(parts, "procedure "+string(category))
	}
	parts = append(parts, q)
	return strings.Join(parts, " ")
}

func levelTag(level classification.Level) string {
	switch level {
	case classification.P0:
		return "urgence critique P0"
	case classification.P1:
		return "urgence P1"
	case classification.P2:
		return "non urgent P2"
	default:
		return "administratif P3"
	}
}

// Retrieve runs the decorated nearest-neighbor search and applies the two
// forcing steps: the level's canonical procedure document first, then the
// category's (when a mapping exists), with a higher boost. Both forced
// documents end up in the final list, which never exceeds top-K: forcing
// appends while the list is below capacity and only replaces the
// weakest-ranked entry once it is full, never evicting the other forced
// document. A missing document or a failing search degrades to whatever is
// available and never aborts the message.
func (r *Retriever) Retrieve(ctx context.Context, text string, level classification.Level, category classification.Category) RetrievedContext {
	start := time.Now()
	defer func() {
		observability.RetrievalLatency.Observe(time.Since(start).Seconds())
	}()

	topK := safeTopK(r.cfg.TopK, r.docs.Count())
	if topK <= 0 {
		return RetrievedContext{}
	}

	query := DecorateQuery(text, level, category)

	var sources []string
	var scores []float64
	hits, err := r.nn.Search(ctx, query, topK)
	if err != nil {
		observability.Warnf("Nearest-neighbor search failed, degrading to forced documents only: %v", err)
	}
	for _, h := range hits {
		sources = append(sources, h.Source)
		scores = append(scores, h.Score)
	}

	levelPrefix := r.cfg.ForcedDocByLevel[level.String()]
	if levelPrefix != "" {
		var forced bool
		sources, scores, forced = r.forceDoc(sources, scores, levelPrefix, r.cfg.LevelBoost, topK, "")
		if forced {
			observability.ForcedDocCount.WithLabelValues("level").Inc()
		}
	}

	if prefix := r.cfg.ForcedDocByCategory[string(category)]; prefix != "" {
		var forced bool
		sources, scores, forced = r.forceDoc(sources, scores, prefix, r.cfg.CategoryBoost, topK, levelPrefix)
		if forced {
			observability.ForcedDocCount.WithLabelValues("category").Inc()
		}
	}

	return RetrievedContext{
		Sources: sources,
		Scores:  scores,
		Context: r.buildContext(sources),
	}
}

// forceDoc guarantees a passage of the target document is present in the
// result list. Already present: no-op. Not indexed: no-op (the system
// degrades rather than failing the message). Otherwise the first passage of
// the document is appended while the list is below top-K, and once the list
// is full it replaces the lowest-ranked entry whose source does not carry
// the protected prefix, so a later forcing step cannot evict an earlier
// forced document.
func (r *Retriever) forceDoc(sources []string, scores []float64, prefix string, boost float64, topK int, protect string) ([]string, []float64, bool) {
	for _, s := range sources {
		if strings.HasPrefix(s, prefix) {
			return sources, scores, false
		}
	}

	candidates := r.docs.ByPrefix(prefix)
	if len(candidates) == 0 {
		observability.Warnf("Forced document %q has no indexed passages, skipping injection", prefix)
		return sources, scores, false
	}
	forced := candidates[0].ID

	if len(sources) < topK {
		return append(sources, forced), append(scores, boost), true
	}

	for i := len(sources) - 1; i >= 0; i-- {
		if protect != "" && strings.HasPrefix(sources[i], protect) {
			continue
		}
		sources[i] = forced
		scores[i] = boost
		return sources, scores, true
	}
	return sources, scores, false
}

func (r *Retriever) buildContext(sources []string) string {
	parts := make([]string, 0, len(sources))
	for _, s := range sources {
		if text, ok := r.docs.Text(s); ok && text != "" {
			parts = append(parts, text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, r.cfg.ContextSeparator))
}

// safeTopK clamps the requested K to the corpus size. K <= 0 or an empty
// corpus yields zero rather than an error.
func safeTopK(requested, corpus int) int {
	if corpus <= 0 || requested <= 0 {
		return 0
	}
	if requested > corpus {
		return corpus
	}
	return requested
}
