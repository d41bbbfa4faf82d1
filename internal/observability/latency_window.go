package observability

import (
	"maps"
	"math"
	"slices"
	"sync"
	"time"
)

// generationTargetP95MS is the latency budget shown next to each provider.
const generationTargetP95MS = 8000

// ProviderLatency summarizes the recent generation calls of one provider.
type ProviderLatency struct {
	Provider    string         `json:"provider"`
	Samples     int            `json:"samples"`
	LastMS      float64        `json:"last_ms"`
	AvgMS       float64        `json:"avg_ms"`
	P50MS       float64        `json:"p50_ms"`
	P95MS       float64        `json:"p95_ms"`
	TargetP95MS float64        `json:"target_p95_ms"`
	Failures    int            `json:"failures"`
	Outcomes    map[string]int `json:"outcomes"`
}

type LatencySnapshot struct {
	GeneratedAt time.Time         `json:"generated_at"`
	WindowSize  int               `json:"window_size"`
	Providers   []ProviderLatency `json:"providers"`
}

type generationSample struct {
	ms      float64
	outcome string
}

// generationWindow keeps the most recent calls per provider, oldest first.
type generationWindow struct {
	mu     sync.Mutex
	size   int
	recent map[string][]generationSample
}

func newGenerationWindow(size int) *generationWindow {
	if size <= 0 {
		size = 256
	}
	return &generationWindow{size: size, recent: make(map[string][]generationSample)}
}

func (w *generationWindow) Observe(provider, outcome string, ms float64) {
	if provider == "" || ms < 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	samples := append(w.recent[provider], generationSample{ms: ms, outcome: outcome})
	if over := len(samples) - w.size; over > 0 {
		samples = slices.Delete(samples, 0, over)
	}
	w.recent[provider] = samples
}

func (w *generationWindow) Snapshot() LatencySnapshot {
	w.mu.Lock()
	defer w.mu.Unlock()

	snap := LatencySnapshot{
		GeneratedAt: time.Now().UTC(),
		WindowSize:  w.size,
		Providers:   make([]ProviderLatency, 0, len(w.recent)),
	}
	for _, provider := range slices.Sorted(maps.Keys(w.recent)) {
		samples := w.recent[provider]
		if len(samples) == 0 {
			continue
		}
		stats := ProviderLatency{
			Provider:    provider,
			Samples:     len(samples),
			LastMS:      samples[len(samples)-1].ms,
			TargetP95MS: generationTargetP95MS,
			Outcomes:    make(map[string]int),
		}
		durations := make([]float64, len(samples))
		sum := 0.0
		for i, s := range samples {
			durations[i] = s.ms
			sum += s.ms
			stats.Outcomes[s.outcome]++
			if s.outcome != "ok" {
				stats.Failures++
			}
		}
		slices.Sort(durations)
		stats.AvgMS = math.Round(sum/float64(len(samples))*100) / 100
		stats.P50MS = nearestRank(durations, 0.50)
		stats.P95MS = nearestRank(durations, 0.95)
		snap.Providers = append(snap.Providers, stats)
	}
	return snap
}

func (w *generationWindow) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	clear(w.recent)
}

// nearestRank returns the q-th percentile of sorted, which must be non-empty.
func nearestRank(sorted []float64, q float64) float64 {
	rank := int(math.Ceil(q * float64(len(sorted))))
	return sorted[max(rank-1, 0)]
}
