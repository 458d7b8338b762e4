package research

import (
	"context"
	"fmt"
	"time"

	"marketmapper/domain/research"
	"marketmapper/internal"
	"marketmapper/internal/cache"
)

// Provider is the polymorphic collaborator capability: fetch a structured
// result plus a confidence score for a subject, consulting a per-kind TTL
// cache first. Fetch never returns an error; a failing source is replaced by
// the kind's documented default with confidence 0 so one slow or broken
// source cannot abort the overall analysis.
type Provider[T any] struct {
	kind     string
	ttl      time.Duration
	deadline time.Duration
	cache    *cache.TTL[research.Sourced[T]]
	fetch    func(ctx context.Context, subject research.Subject) (T, float64, error)
	fallback func() T
	log      *internal.Logger
}

func newProvider[T any](
	kind string,
	ttl time.Duration,
	c *cache.TTL[research.Sourced[T]],
	fetch func(ctx context.Context, subject research.Subject) (T, float64, error),
	fallback func() T,
	logger *internal.Logger,
) *Provider[T] {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Provider[T]{kind: kind, ttl: ttl, cache: c, fetch: fetch, fallback: fallback, log: logger}
}

// Kind returns the collaborator kind name
func (p *Provider[T]) Kind() string { return p.kind }

// WithDeadline bounds each source fetch. A deadline overrun surfaces as a
// context error on the source, which Fetch turns into the soft-fail default.
func (p *Provider[T]) WithDeadline(d time.Duration) *Provider[T] {
	p.deadline = d
	return p
}

// Fetch resolves the subject through the cache, then the source pipeline.
// Results from an interrupted context are dropped, never cached.
func (p *Provider[T]) Fetch(ctx context.Context, subject research.Subject) research.Sourced[T] {
	key := fmt.Sprintf("%s:%s", p.kind, subject.QueryHash())

	if hit, ok := p.cache.Get(key); ok {
		p.log.Debug("[Research] %s: cache hit for %s", p.kind, subject.BusinessIdea)
		hit.FromCache = true
		return hit
	}

	if p.deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.deadline)
		defer cancel()
	}

	value, confidence, err := p.fetch(ctx, subject)
	if err != nil {
		p.log.Warn("[Research] %s: source failed, using default: %v", p.kind, err)
		return research.Sourced[T]{Value: p.fallback(), Confidence: 0}
	}
	if ctx.Err() != nil {
		// The run was cancelled mid-fetch; drop the result instead of
		// committing a potentially partial entry.
		return research.Sourced[T]{Value: p.fallback(), Confidence: 0}
	}

	out := research.Sourced[T]{Value: value, Confidence: clamp01(confidence)}
	p.cache.Set(key, out, p.ttl)
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
