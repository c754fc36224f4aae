package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// Generator is the raw text-generation backend. Implemented by GeminiClient;
// tests supply fakes.
type Generator interface {
	GenerateText(ctx context.Context, prompt, model string) (string, error)
}

// Result is one successful generation.
type Result struct {
	Text      string
	ModelUsed string
}

// DefaultQuotaSignals are the observed Gemini quota/availability markers.
// Matching is case-insensitive substring over the backend error string; the
// backend does not expose a stable typed quota error, so the signal list is
// configuration, not protocol.
var DefaultQuotaSignals = []string{
	"429",
	"quota",
	"resource_exhausted",
	"rate limit",
	"503",
	"unavailable",
}

// FallbackClient wraps a Generator with an ordered model roster and
// quota-aware substitution. A quota failure marks the current model
// exhausted and retries on the next roster entry; any other failure
// propagates immediately.
type FallbackClient struct {
	backend Generator
	roster  *Roster
	signals []string
	stats   *Stats
	log     *slog.Logger
}

func NewFallbackClient(backend Generator, roster *Roster, signals []string, stats *Stats, log *slog.Logger) *FallbackClient {
	if len(signals) == 0 {
		signals = DefaultQuotaSignals
	}
	if stats == nil {
		stats = NewStats(time.Hour)
	}
	if log == nil {
		log = slog.Default()
	}
	return &FallbackClient{
		backend: backend,
		roster:  roster,
		signals: signals,
		stats:   stats,
		log:     log,
	}
}

// Generate calls the backend with the highest-priority usable model. The
// retry loop is bounded by the roster length, so a call makes at most one
// attempt per model before failing with ErrAllModelsExhausted.
func (c *FallbackClient) Generate(ctx context.Context, prompt string) (Result, error) {
	attempts := c.roster.Len()
	if attempts == 0 {
		return Result{}, fmt.Errorf("empty model roster")
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		model := c.roster.Select()
		start := time.Now()
		text, err := c.backend.GenerateText(ctx, prompt, model)
		if err == nil {
			c.stats.RecordSuccess(model, time.Since(start).Milliseconds())
			return Result{Text: text, ModelUsed: model}, nil
		}
		if !c.isQuota(err) {
			return Result{}, err
		}
		c.log.Warn("model over quota, substituting",
			"model", model, "attempt", attempt, "error", err)
		c.stats.RecordQuota(model)
		c.roster.MarkExhausted(model)
		lastErr = &QuotaError{Model: model, Err: err}
	}
	return Result{}, fmt.Errorf("%w: %v", ErrAllModelsExhausted, lastErr)
}

func (c *FallbackClient) isQuota(err error) bool {
	msg := strings.ToLower(err.Error())
	for _, s := range c.signals {
		if strings.Contains(msg, strings.ToLower(s)) {
			return true
		}
	}
	return false
}
