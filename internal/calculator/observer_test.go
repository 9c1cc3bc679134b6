package calculator

import (
	"bytes"
	"sync"
	"testing"

	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog"
)

// mockObserver records every update it receives.
type mockObserver struct {
	mu      sync.Mutex
	updates []ProgressUpdate
}

func newMockObserver() *mockObserver { return &mockObserver{} }

func (o *mockObserver) Update(calcIndex int, progress float64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.updates = append(o.updates, ProgressUpdate{CalculatorIndex: calcIndex, Value: progress})
}

func (o *mockObserver) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.updates)
}

// ─────────────────────────────────────────────────────────────────────────────
// ProgressSubject Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestProgressSubject_RegisterUnregister(t *testing.T) {
	t.Parallel()

	subject := NewProgressSubject()
	subject.Register(nil)
	if subject.ObserverCount() != 0 {
		t.Fatalf("registering nil should not add observer, got %d", subject.ObserverCount())
	}

	// Empty structs may share an address, so use distinct mock observers.
	o1, o2 := newMockObserver(), newMockObserver()
	subject.Register(o1)
	subject.Register(o2)
	if subject.ObserverCount() != 2 {
		t.Fatalf("expected 2 observers, got %d", subject.ObserverCount())
	}

	subject.Unregister(nil)
	subject.Unregister(newMockObserver())
	if subject.ObserverCount() != 2 {
		t.Errorf("unregistering unknown observers should be a no-op, got %d", subject.ObserverCount())
	}

	subject.Unregister(o1)
	subject.Notify(3, 0.5)
	if o1.count() != 0 || o2.count() != 1 {
		t.Errorf("after unregister: o1=%d o2=%d updates, want 0 and 1", o1.count(), o2.count())
	}
}

func TestProgressSubject_AsProgressReporter(t *testing.T) {
	t.Parallel()

	subject := NewProgressSubject()
	obs := newMockObserver()
	subject.Register(obs)

	report := subject.AsProgressReporter(7)
	report(0.25)
	report(1.0)

	if len(obs.updates) != 2 {
		t.Fatalf("expected 2 updates, got %d", len(obs.updates))
	}
	if obs.updates[0] != (ProgressUpdate{CalculatorIndex: 7, Value: 0.25}) {
		t.Errorf("unexpected first update %+v", obs.updates[0])
	}
}

func TestProgressSubject_ConcurrentNotify(t *testing.T) {
	t.Parallel()

	subject := NewProgressSubject()
	obs := newMockObserver()
	subject.Register(obs)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				subject.Notify(idx, float64(j)/100)
			}
		}(i)
	}
	wg.Wait()

	if obs.count() != 800 {
		t.Errorf("expected 800 updates, got %d", obs.count())
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Concrete Observer Tests
// ─────────────────────────────────────────────────────────────────────────────

func TestChannelObserver(t *testing.T) {
	t.Parallel()

	t.Run("ClampsAndForwards", func(t *testing.T) {
		ch := make(chan ProgressUpdate, 1)
		NewChannelObserver(ch).Update(2, 1.5)
		got := <-ch
		if got.CalculatorIndex != 2 || got.Value != 1.0 {
			t.Errorf("got %+v, want index 2 value 1.0", got)
		}
	})

	t.Run("DropsWhenFull", func(t *testing.T) {
		ch := make(chan ProgressUpdate, 1)
		obs := NewChannelObserver(ch)
		obs.Update(0, 0.1)
		obs.Update(0, 0.2) // must not block
		if len(ch) != 1 {
			t.Errorf("expected 1 buffered update, got %d", len(ch))
		}
	})

	t.Run("NilChannel", func(t *testing.T) {
		NewChannelObserver(nil).Update(0, 0.5)
	})
}

func TestLoggingObserver_Throttles(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	obs := NewLoggingObserver(logger, 0.5)

	obs.Update(0, 0.1) // first update always logs
	obs.Update(0, 0.2) // below threshold
	obs.Update(0, 0.7) // crosses threshold
	obs.Update(0, 1.0) // completion always logs

	lines := bytes.Count(buf.Bytes(), []byte("\n"))
	if lines != 3 {
		t.Errorf("expected 3 log lines, got %d:\n%s", lines, buf.String())
	}
	if !bytes.Contains(buf.Bytes(), []byte(`"message":"evaluation progress"`)) {
		t.Errorf("log output missing message: %s", buf.String())
	}
}

func TestLoggingObserver_DefaultThreshold(t *testing.T) {
	t.Parallel()

	obs := NewLoggingObserver(zerolog.Nop(), 0)
	if obs.threshold != 0.1 {
		t.Errorf("default threshold = %v, want 0.1", obs.threshold)
	}
}

func gaugeValue(t *testing.T, backend string) float64 {
	t.Helper()
	var m dto.Metric
	if err := progressGauge.WithLabelValues(backend).Write(&m); err != nil {
		t.Fatalf("reading gauge: %v", err)
	}
	return m.GetGauge().GetValue()
}

func TestMetricsObserver(t *testing.T) {
	t.Parallel()

	obs := NewMetricsObserver("observer-test")
	obs.Update(42, 0.5)
	if got := gaugeValue(t, "observer-test"); got != 0.5 {
		t.Errorf("gauge = %v, want 0.5", got)
	}
	obs.Update(7, 1.5)
	if got := gaugeValue(t, "observer-test"); got != 1.0 {
		t.Errorf("gauge = %v, want progress clamped to 1", got)
	}
}
