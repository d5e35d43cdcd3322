package retrieval

import (
	"context"
	"fmt"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/classification"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/config"
)

func TestRetrieval(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Retrieval Suite")
}

// stubNN returns a fixed hit list regardless of the query.
type stubNN struct {
	hits []Hit
	err  error
}

func (s *stubNN) Search(ctx context.Context, query string, topK int) ([]Hit, error) {
	if s.err != nil {
		return nil, s.err
	}
	if topK < len(s.hits) {
		return s.hits[:topK], nil
	}
	return s.hits, nil
}

// stubStore serves passages from a fixed list.
type stubStore struct {
	passages []Passage
}

func (s *stubStore) ByPrefix(prefix string) []Passage {
	var out []Passage
	for _, p := range s.passages {
		if len(p.ID) >= len(prefix) && p.ID[:len(prefix)] == prefix {
			out = append(out, p)
		}
	}
	return out
}

func (s *stubStore) Text(id string) (string, bool) {
	for _, p := range s.passages {
		if p.ID == id {
			return p.Text, true
		}
	}
	return "", false
}

func (s *stubStore) Count() int { return len(s.passages) }

// hashEmbedder is a deterministic embedder for index tests. Identical
// strings map to identical vectors.
type hashEmbedder struct{}

func (hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, 8)
	for i, r := range text {
		vec[i%8] += float32(r%13) + 1
	}
	return vec, nil
}

var _ = Describe("DecorateQuery", func() {
	It("tags each level with its urgency phrase", func() {
		Expect(DecorateQuery("fuite", classification.P0, "")).To(Equal("urgence critique P0 fuite"))
		Expect(DecorateQuery("fuite", classification.P1, "")).To(Equal("urgence P1 fuite"))
		Expect(DecorateQuery("fuite", classification.P2, "")).To(Equal("non urgent P2 fuite"))
		Expect(DecorateQuery("fuite", classification.P3, "")).To(Equal("administratif P3 fuite"))
	})

	It("adds a procedure tag when the category is known", func() {
		q := DecorateQuery("fuite au plafond", classification.P1, "water_leak")
		Expect(q).To(Equal("urgence P1 procedure water_leak fuite au plafond"))
	})

	It("returns empty for blank text", func() {
		Expect(DecorateQuery("   ", classification.P0, "security")).To(BeEmpty())
	})
})

var _ = Describe("Retriever", func() {
	var (
		store *stubStore
		cfg   config.RetrievalConfig
	)

	p0Doc := "data/docs/procedures_p0.md"
	waterDoc := "data/docs/water_leak.md"

	BeforeEach(func() {
		store = &stubStore{passages: []Passage{
			{ID: p0Doc + " | ## P0 | chunk=0", Text: "procedure p0"},
			{ID: waterDoc + " | ## Fuites | chunk=0", Text: "procedure fuite"},
			{ID: "data/docs/general.md | ## Divers | chunk=0", Text: "divers 0"},
			{ID: "data/docs/general.md | ## Divers | chunk=1", Text: "divers 1"},
		}}
		cfg = config.RetrievalConfig{
			TopK:             3,
			ContextSeparator: "\n\n---\n\n",
			LevelBoost:       1.2,
			CategoryBoost:    1.3,
			ForcedDocByLevel: map[string]string{
				"P0": p0Doc,
			},
			ForcedDocByCategory: map[string]string{
				"water_leak": waterDoc,
			},
		}
	})

	It("replaces the weakest hit with the forced level document", func() {
		nn := &stubNN{hits: []Hit{
			{Source: "data/docs/general.md | ## Divers | chunk=0", Score: 0.9},
			{Source: "data/docs/general.md | ## Divers | chunk=1", Score: 0.8},
			{Source: waterDoc + " | ## Fuites | chunk=0", Score: 0.7},
		}}
		r := New(nn, store, cfg)

		res := r.Retrieve(context.Background(), "fuite de gaz", classification.P0, "water_leak")

		Expect(res.Sources).To(HaveLen(3))
		Expect(res.Sources[2]).To(Equal(p0Doc + " | ## P0 | chunk=0"))
		Expect(res.Scores[2]).To(Equal(1.2))
		// The category document was already ranked, so only the level
		// document got injected.
		Expect(res.Sources[0]).To(Equal("data/docs/general.md | ## Divers | chunk=0"))
		Expect(res.Context).To(ContainSubstring("procedure p0"))
		Expect(res.Context).To(ContainSubstring("divers 0"))
	})

	It("injects the category document with its own boost", func() {
		nn := &stubNN{hits: []Hit{
			{Source: p0Doc + " | ## P0 | chunk=0", Score: 0.9},
			{Source: "data/docs/general.md | ## Divers | chunk=0", Score: 0.8},
			{Source: "data/docs/general.md | ## Divers | chunk=1", Score: 0.7},
		}}
		r := New(nn, store, cfg)

		res := r.Retrieve(context.Background(), "fuite au plafond", classification.P0, "water_leak")

		Expect(res.Sources[2]).To(Equal(waterDoc + " | ## Fuites | chunk=0"))
		Expect(res.Scores[2]).To(Equal(1.3))
	})

	It("leaves the list untouched when the forced document is already present", func() {
		nn := &stubNN{hits: []Hit{
			{Source: p0Doc + " | ## P0 | chunk=0", Score: 0.9},
			{Source: waterDoc + " | ## Fuites | chunk=0", Score: 0.8},
		}}
		r := New(nn, store, cfg)

		res := r.Retrieve(context.Background(), "fuite", classification.P0, "water_leak")

		Expect(res.Sources).To(Equal([]string{
			p0Doc + " | ## P0 | chunk=0",
			waterDoc + " | ## Fuites | chunk=0",
		}))
		Expect(res.Scores).To(Equal([]float64{0.9, 0.8}))
	})

	It("makes the forced document the sole result when the search returns nothing", func() {
		r := New(&stubNN{}, store, cfg)

		res := r.Retrieve(context.Background(), "fuite", classification.P0, "")

		Expect(res.Sources).To(Equal([]string{p0Doc + " | ## P0 | chunk=0"}))
		Expect(res.Scores).To(Equal([]float64{1.2}))
		Expect(res.Context).To(Equal("procedure p0"))
	})

	It("forces both the level and category documents when the search returns nothing", func() {
		cfg.TopK = 5
		r := New(&stubNN{}, store, cfg)

		res := r.Retrieve(context.Background(), "fuite au plafond", classification.P0, "water_leak")

		Expect(res.Sources).To(Equal([]string{
			p0Doc + " | ## P0 | chunk=0",
			waterDoc + " | ## Fuites | chunk=0",
		}))
		Expect(res.Scores).To(Equal([]float64{1.2, 1.3}))
		Expect(res.Context).To(ContainSubstring("procedure p0"))
		Expect(res.Context).To(ContainSubstring("procedure fuite"))
	})

	It("appends forced documents while the list is below capacity", func() {
		nn := &stubNN{hits: []Hit{
			{Source: "data/docs/general.md | ## Divers | chunk=0", Score: 0.9},
		}}
		r := New(nn, store, cfg)

		res := r.Retrieve(context.Background(), "fuite", classification.P0, "water_leak")

		Expect(res.Sources).To(Equal([]string{
			"data/docs/general.md | ## Divers | chunk=0",
			p0Doc + " | ## P0 | chunk=0",
			waterDoc + " | ## Fuites | chunk=0",
		}))
		Expect(res.Scores).To(Equal([]float64{0.9, 1.2, 1.3}))
	})

	It("never evicts the level document when the list is full", func() {
		cfg.TopK = 2
		nn := &stubNN{hits: []Hit{
			{Source: "data/docs/general.md | ## Divers | chunk=0", Score: 0.9},
			{Source: "data/docs/general.md | ## Divers | chunk=1", Score: 0.8},
		}}
		r := New(nn, store, cfg)

		res := r.Retrieve(context.Background(), "fuite", classification.P0, "water_leak")

		Expect(res.Sources).To(HaveLen(2))
		Expect(res.Sources).To(ContainElement(p0Doc + " | ## P0 | chunk=0"))
		Expect(res.Sources).To(ContainElement(waterDoc + " | ## Fuites | chunk=0"))
		Expect(res.Scores).To(ConsistOf(1.2, 1.3))
	})

	It("degrades to forced documents when the search fails", func() {
		r := New(&stubNN{err: fmt.Errorf("backend down")}, store, cfg)

		res := r.Retrieve(context.Background(), "fuite", classification.P0, "")

		Expect(res.Sources).To(Equal([]string{p0Doc + " | ## P0 | chunk=0"}))
	})

	It("skips forcing when the document is not indexed", func() {
		cfg.ForcedDocByLevel["P0"] = "data/docs/missing.md"
		nn := &stubNN{hits: []Hit{
			{Source: "data/docs/general.md | ## Divers | chunk=0", Score: 0.9},
		}}
		r := New(nn, store, cfg)

		res := r.Retrieve(context.Background(), "fuite", classification.P0, "")

		Expect(res.Sources).To(Equal([]string{"data/docs/general.md | ## Divers | chunk=0"}))
	})

	It("returns an empty context for a non-positive top-k", func() {
		cfg.TopK = 0
		r := New(&stubNN{}, store, cfg)

		res := r.Retrieve(context.Background(), "fuite", classification.P0, "water_leak")

		Expect(res.Sources).To(BeEmpty())
		Expect(res.Scores).To(BeEmpty())
		Expect(res.Context).To(BeEmpty())
	})

	It("clamps top-k to the corpus size", func() {
		cfg.TopK = 50
		idx := NewMemoryIndex(hashEmbedder{})
		Expect(idx.Index(context.Background(), store.passages)).To(Succeed())
		r := New(idx, idx, cfg)

		res := r.Retrieve(context.Background(), "fuite", classification.P2, "")

		Expect(len(res.Sources)).To(Equal(store.Count()))
	})
})

var _ = Describe("MemoryIndex", func() {
	var idx *MemoryIndex

	BeforeEach(func() {
		idx = NewMemoryIndex(hashEmbedder{})
		Expect(idx.Index(context.Background(), []Passage{
			{ID: "a.md | ## one | chunk=0", Text: "fuite d'eau plafond"},
			{ID: "a.md | ## one | chunk=1", Text: "robinet cuisine"},
			{ID: "b.md | ## two | chunk=0", Text: "attestation de residence"},
		})).To(Succeed())
	})

	It("ranks the identical passage first", func() {
		hits, err := idx.Search(context.Background(), "fuite d'eau plafond", 3)
		Expect(err).ToNot(HaveOccurred())
		Expect(hits).To(HaveLen(3))
		Expect(hits[0].Source).To(Equal("a.md | ## one | chunk=0"))
		Expect(hits[0].Score).To(BeNumerically("~", 1.0, 1e-9))
		Expect(hits[0].Score).To(BeNumerically(">=", hits[1].Score))
		Expect(hits[1].Score).To(BeNumerically(">=", hits[2].Score))
	})

	It("clamps the hit count to the corpus", func() {
		hits, err := idx.Search(context.Background(), "robinet", 10)
		Expect(err).ToNot(HaveOccurred())
		Expect(hits).To(HaveLen(3))
	})

	It("looks up passages by document prefix", func() {
		Expect(idx.ByPrefix("a.md")).To(HaveLen(2))
		Expect(idx.ByPrefix("b.md")).To(HaveLen(1))
		Expect(idx.ByPrefix("c.md")).To(BeEmpty())
	})

	It("rejects duplicate passage ids", func() {
		err := idx.Index(context.Background(), []Passage{
			{ID: "a.md | ## one | chunk=0", Text: "again"},
		})
		Expect(err).To(MatchError(ContainSubstring("duplicate passage id")))
	})

	It("returns passage text by id", func() {
		text, ok := idx.Text("b.md | ## two | chunk=0")
		Expect(ok).To(BeTrue())
		Expect(text).To(Equal("attestation de residence"))

		_, ok = idx.Text("nope")
		Expect(ok).To(BeFalse())
	})
})
