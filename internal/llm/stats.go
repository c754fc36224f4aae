package llm

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// ModelCounters aggregates per-model call outcomes since process start.
type ModelCounters struct {
	Successes     int64 `json:"successes"`
	QuotaFailures int64 `json:"quota_failures"`
}

// Snapshot is a point-in-time aggregate of generation latencies and
// per-model usage.
type Snapshot struct {
	Count  int                      `json:"count"`
	MinMs  int64                    `json:"min_ms"`
	MaxMs  int64                    `json:"max_ms"`
	AvgMs  float64                  `json:"avg_ms"`
	P50Ms  float64                  `json:"p50_ms"`
	P95Ms  float64                  `json:"p95_ms"`
	P99Ms  float64                  `json:"p99_ms"`
	Models map[string]ModelCounters `json:"models"`
}

// Stats tracks generation latencies within a rolling window, plus per-model
// success and quota-failure counts.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
	models  map[string]*ModelCounters
}

func NewStats(maxAge time.Duration) *Stats {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Stats{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
		models:  make(map[string]*ModelCounters),
	}
}

// RecordSuccess records a completed generation for model.
func (s *Stats) RecordSuccess(model string, durationMs int64) {
	if durationMs < 0 {
		durationMs = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{timestamp: now, durationMs: durationMs})
	s.countersLocked(model).Successes++
}

// RecordQuota records a quota failure for model.
func (s *Stats) RecordQuota(model string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countersLocked(model).QuotaFailures++
}

func (s *Stats) countersLocked(model string) *ModelCounters {
	c, ok := s.models[model]
	if !ok {
		c = &ModelCounters{}
		s.models[model] = c
	}
	return c
}

func (s *Stats) Snapshot() Snapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)

	snap := Snapshot{Models: make(map[string]ModelCounters, len(s.models))}
	for m, c := range s.models {
		snap.Models[m] = *c
	}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
