package session

import (
	"errors"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ent0n29/talentscout/internal/generation"
	"github.com/ent0n29/talentscout/internal/intake"
)

func TestManagerCreateGetEnd(t *testing.T) {
	m := NewManager(time.Minute, time.Minute)
	s := m.Create(generation.DefaultLimits().Defaults)
	if s.ID == "" {
		t.Fatalf("session ID should not be empty")
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Stage != intake.StageIntro || len(got.Info) != 0 {
		t.Fatalf("unexpected session state: %+v", got)
	}

	if _, err := m.End(s.ID); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if _, err := m.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after End error = %v, want ErrNotFound", err)
	}
	if _, err := m.End(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second End() error = %v, want ErrNotFound", err)
	}
}

func TestManagerDoMutatesAndGetClones(t *testing.T) {
	m := NewManager(time.Minute, time.Minute)
	s := m.Create(generation.Settings{})

	err := m.Do(s.ID, func(rec *intake.Session) error {
		rec.Info[intake.FieldName] = "Jane"
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	got, _ := m.Get(s.ID)
	if got.Info[intake.FieldName] != "Jane" {
		t.Fatalf("Info = %v, want name stored", got.Info)
	}
	got.Info[intake.FieldName] = "changed"
	again, _ := m.Get(s.ID)
	if again.Info[intake.FieldName] != "Jane" {
		t.Fatalf("Get() leaked internal state")
	}
}

func TestManagerDoPassesError(t *testing.T) {
	m := NewManager(time.Minute, time.Minute)
	s := m.Create(generation.Settings{})
	want := errors.New("rejected")
	if err := m.Do(s.ID, func(*intake.Session) error { return want }); !errors.Is(err, want) {
		t.Fatalf("Do() error = %v, want %v", err, want)
	}
	if err := m.Do("missing", func(*intake.Session) error { return nil }); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Do(missing) error = %v, want ErrNotFound", err)
	}
}

func TestManagerDoSerializesPerSession(t *testing.T) {
	m := NewManager(time.Minute, time.Minute)
	s := m.Create(generation.Settings{})

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Do(s.ID, func(rec *intake.Session) error {
				rec.Info[strconv.Itoa(len(rec.Info))] = "x"
				return nil
			})
		}()
	}
	wg.Wait()

	got, _ := m.Get(s.ID)
	if len(got.Info) != 50 {
		t.Fatalf("len(Info) = %d, want 50", len(got.Info))
	}
}

func TestManagerExpiresInactive(t *testing.T) {
	m := NewManager(30*time.Millisecond, 10*time.Millisecond)
	expired := make(chan *intake.Session, 1)
	m.SetExpireHook(func(s *intake.Session) { expired <- s })

	s := m.Create(generation.Settings{})
	_ = m.Do(s.ID, func(rec *intake.Session) error {
		rec.Stage = intake.StageTechStack
		return nil
	})

	select {
	case got := <-expired:
		if got.ID != s.ID || got.Stage != intake.StageTechStack {
			t.Fatalf("expired session = %+v", got)
		}
	case <-time.After(time.Second):
		t.Fatalf("expire hook not called")
	}
	if _, err := m.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() after expiry error = %v, want ErrNotFound", err)
	}
}

func TestManagerEndSkipsExpireHook(t *testing.T) {
	m := NewManager(time.Minute, time.Minute)
	called := false
	m.SetExpireHook(func(*intake.Session) { called = true })
	s := m.Create(generation.Settings{})
	if _, err := m.End(s.ID); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	if called {
		t.Fatalf("expire hook called for an explicitly ended session")
	}
}

func TestManagerDoRefreshesExpiryBeforeWork(t *testing.T) {
	m := NewManager(200*time.Millisecond, 10*time.Millisecond)
	var expired atomic.Int32
	m.SetExpireHook(func(*intake.Session) { expired.Add(1) })

	s := m.Create(generation.Settings{})
	time.Sleep(150 * time.Millisecond)
	err := m.Do(s.ID, func(rec *intake.Session) error {
		time.Sleep(120 * time.Millisecond)
		rec.Stage = intake.StageTechStack
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get() after long Do error = %v", err)
	}
	if got.Stage != intake.StageTechStack {
		t.Fatalf("Stage = %q, want tech_stack", got.Stage)
	}
	if n := expired.Load(); n != 0 {
		t.Fatalf("expire hook called %d times, want 0", n)
	}
}

func TestManagerDoReportsExpiryDuringWork(t *testing.T) {
	m := NewManager(80*time.Millisecond, 10*time.Millisecond)
	var expired atomic.Int32
	m.SetExpireHook(func(*intake.Session) { expired.Add(1) })

	s := m.Create(generation.Settings{})
	err := m.Do(s.ID, func(*intake.Session) error {
		time.Sleep(250 * time.Millisecond)
		return nil
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("Do() error = %v, want ErrNotFound", err)
	}
	if n := expired.Load(); n != 1 {
		t.Fatalf("expire hook called %d times, want 1", n)
	}
	if n := m.ActiveCount(); n != 0 {
		t.Fatalf("ActiveCount() = %d, want 0", n)
	}
	if _, err := m.Get(s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() error = %v, want ErrNotFound", err)
	}
}
