package llm

import "sync"

// Roster is an ordered list of interchangeable model identifiers plus the
// set of models currently believed to be quota-exhausted. The exhausted set
// is process-wide state shared by every concurrent request: construct one
// Roster in main and inject it. A stale read merely costs one extra failed
// attempt, so a single mutex is all the coordination needed.
type Roster struct {
	mu        sync.Mutex
	models    []string
	exhausted map[string]bool
}

func NewRoster(models []string) *Roster {
	ms := make([]string, len(models))
	copy(ms, models)
	return &Roster{
		models:    ms,
		exhausted: make(map[string]bool),
	}
}

// Select returns the first roster entry not marked exhausted. When every
// entry is exhausted it clears the set and returns the first entry again:
// quotas may have recovered externally, so the reset is optimistic.
func (r *Roster) Select() string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.models) == 0 {
		return ""
	}
	for _, m := range r.models {
		if !r.exhausted[m] {
			return m
		}
	}
	r.exhausted = make(map[string]bool)
	return r.models[0]
}

// MarkExhausted records a quota failure for model. Unknown identifiers are
// ignored so the exhausted set stays a subset of the roster.
func (r *Roster) MarkExhausted(model string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, m := range r.models {
		if m == model {
			r.exhausted[model] = true
			return
		}
	}
}

// Len returns the roster size, which bounds the retry loop in Generate.
func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.models)
}

// Models returns a copy of the roster in priority order.
func (r *Roster) Models() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.models))
	copy(out, r.models)
	return out
}
