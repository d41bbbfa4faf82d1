package observability

import (
	"testing"
	"time"
)

func TestGenerationWindowSnapshot(t *testing.T) {
	w := newGenerationWindow(8)
	w.Observe("gemini", "ok", 500)
	w.Observe("gemini", "ok", 700)
	w.Observe("gemini", "timeout", 900)
	w.Observe("mock", "ok", 1)

	snap := w.Snapshot()
	if snap.WindowSize != 8 {
		t.Fatalf("WindowSize = %d, want 8", snap.WindowSize)
	}
	if len(snap.Providers) != 2 || snap.Providers[0].Provider != "gemini" || snap.Providers[1].Provider != "mock" {
		t.Fatalf("Providers = %+v, want gemini then mock", snap.Providers)
	}
	s := snap.Providers[0]
	if s.Samples != 3 || s.LastMS != 900 || s.AvgMS != 700 {
		t.Fatalf("stats = %+v", s)
	}
	if s.P50MS != 700 || s.P95MS != 900 {
		t.Fatalf("P50MS/P95MS = %.0f/%.0f, want 700/900", s.P50MS, s.P95MS)
	}
	if s.Failures != 1 || s.Outcomes["ok"] != 2 || s.Outcomes["timeout"] != 1 {
		t.Fatalf("Failures = %d Outcomes = %v", s.Failures, s.Outcomes)
	}
}

func TestGenerationWindowDropsOldestAndResets(t *testing.T) {
	w := newGenerationWindow(2)
	w.Observe("mock", "rate_limited", 10)
	w.Observe("mock", "ok", 20)
	w.Observe("mock", "ok", 30)

	s := w.Snapshot().Providers[0]
	if s.Samples != 2 || s.AvgMS != 25 || s.Failures != 0 {
		t.Fatalf("stats after overflow = %+v", s)
	}
	if _, ok := s.Outcomes["rate_limited"]; ok {
		t.Fatalf("oldest outcome still counted: %v", s.Outcomes)
	}

	w.Reset()
	if got := w.Snapshot(); len(got.Providers) != 0 {
		t.Fatalf("Providers after reset = %+v", got.Providers)
	}
}

func TestGenerationWindowIgnoresInvalidSamples(t *testing.T) {
	w := newGenerationWindow(4)
	w.Observe("", "ok", 10)
	w.Observe("gemini", "ok", -1)
	if got := w.Snapshot(); len(got.Providers) != 0 {
		t.Fatalf("Providers = %+v, want none", got.Providers)
	}
}

func TestMetricsObserveGeneration(t *testing.T) {
	m := NewMetrics("test_observe_generation")
	m.ObserveGeneration("openai", "rate_limited", 1200*time.Millisecond)
	m.ObserveTransition("intro", "tech_stack")
	m.ObserveRejected("submit_intake", "validation_failed")

	snap := m.LatencySnapshot()
	if len(snap.Providers) != 1 || snap.Providers[0].LastMS != 1200 {
		t.Fatalf("snapshot = %+v", snap)
	}
	if snap.Providers[0].Outcomes["rate_limited"] != 1 || snap.Providers[0].Failures != 1 {
		t.Fatalf("Outcomes = %+v", snap.Providers[0].Outcomes)
	}
}
