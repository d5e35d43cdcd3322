package generation

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/config"
	"github.com/SoufianeAzerdaoui/syndismart-ai/pkg/observability"
)

// Generator drafts responses through a ChatClient. It is read-only after
// construction and shared by all workers.
type Generator struct {
	client ChatClient
	cfg    config.GenerationConfig
}

// New creates a Generator.
func New(client ChatClient, cfg config.GenerationConfig) *Generator {
	return &Generator{client: client, cfg: cfg}
}

// GenerateOne drafts a response for a single message. It retries malformed
// or failed model calls up to the configured count, then falls back to the
// canned draft and reports the failure. It never returns an error: every
// message leaves with a usable draft.
func (g *Generator) GenerateOne(ctx context.Context, in Input) (Generation, *FailureRecord) {
	userPrompt := BuildUserPrompt(in.Text, in.Level, in.Category, in.RAGContext, g.cfg.MaxTextChars, g.cfg.MaxContextChars)

	var lastRaw string
	var lastErr error
	for attempt := 0; attempt <= g.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			observability.GenerationRetryCount.Inc()
			select {
			case <-time.After(time.Duration(g.cfg.RetryBackoffMS) * time.Millisecond):
			case <-ctx.Done():
			}
		}

		gen, raw, err := g.attempt(ctx, userPrompt, in)
		if err == nil {
			return gen, nil
		}
		if raw != "" {
			lastRaw = raw
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	observability.GenerationFallbackCount.WithLabelValues(in.Level.String()).Inc()
	observability.Warnf("Generation failed for message %s, using fallback draft: %v", in.MessageID, lastErr)

	fail := &FailureRecord{
		MessageID:    in.MessageID,
		UrgencyLevel: in.Level.String(),
		Category:     string(coerceCategory(in.Category)),
		Error:        truncate(fmt.Sprint(lastErr), maxErrorChars),
		RawOutput:    truncate(lastRaw, maxRawChars),
	}
	return Fallback(in.Level, in.Category, in.RAGContext, g.cfg.MaxRequiredInfo), fail
}

func (g *Generator) attempt(ctx context.Context, userPrompt string, in Input) (Generation, string, error) {
	callCtx, cancel := context.WithTimeout(ctx, time.Duration(g.cfg.TimeoutSeconds)*time.Second)
	defer cancel()

	start := time.Now()
	raw, err := g.client.Complete(callCtx, SystemPrompt, userPrompt)
	if err != nil {
		observability.GenerationLatency.WithLabelValues("fallback").Observe(time.Since(start).Seconds())
		return Generation{}, raw, err
	}

	obj, err := ParseModelJSON(raw)
	if err != nil {
		observability.GenerationLatency.WithLabelValues("fallback").Observe(time.Since(start).Seconds())
		return Generation{}, raw, err
	}
	if err := ValidateMinSchema(obj); err != nil {
		observability.GenerationLatency.WithLabelValues("fallback").Observe(time.Since(start).Seconds())
		return Generation{}, raw, err
	}

	observability.GenerationLatency.WithLabelValues("ok").Observe(time.Since(start).Seconds())
	return Normalize(obj, in.Level, in.Category, in.RAGContext, g.cfg.MaxRequiredInfo), raw, nil
}

// GenerateBatch drafts responses for all inputs with a bounded worker pool.
// Results come back in input order regardless of completion order; failures
// carry the one-based row index of the input they belong to.
func (g *Generator) GenerateBatch(ctx context.Context, inputs []Input) ([]Generation, []FailureRecord) {
	n := len(inputs)
	results := make([]Generation, n)

	var mu sync.Mutex
	var fails []FailureRecord

	workers := g.cfg.Workers
	if workers < 1 {
		workers = 1
	}

	logEvery := g.cfg.LogEvery
	if logEvery < 1 {
		logEvery = 1
	}

	start := time.Now()
	var done int64

	grp, ctx := errgroup.WithContext(ctx)
	grp.SetLimit(workers)
	for i := range inputs {
		i := i
		grp.Go(func() error {
			gen, fail := g.GenerateOne(ctx, inputs[i])
			results[i] = gen
			if fail != nil {
				fail.RowIndex = i + 1
				mu.Lock()
				fails = append(fails, *fail)
				mu.Unlock()
			}

			d := atomic.AddInt64(&done, 1)
			if d%int64(logEvery) == 0 || d == int64(n) {
				elapsed := time.Since(start)
				rate := elapsed / time.Duration(d)
				eta := rate * time.Duration(int64(n)-d)
				observability.Infof("Generated %d/%d (%d%%), ETA %.1f min", d, n, d*100/int64(n), eta.Minutes())
			}
			return nil
		})
	}
	_ = grp.Wait()

	return results, fails
}
