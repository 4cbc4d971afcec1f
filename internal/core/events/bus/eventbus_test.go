package bus

import (
	"errors"
	"testing"
)

type testObserver struct {
	publishCount   int
	deliveredCount int
	lastErr        error
}

func (o *testObserver) OnPublish(_ string, _ Event) {
	o.publishCount++
}

func (o *testObserver) OnDelivered(_ string, handlers int, err error, _ int64) {
	o.deliveredCount += handlers
	o.lastErr = err
}

func TestBasicPublishSubscribe(t *testing.T) {
	b := New()
	var got Event
	_, err := b.Subscribe("agent.ate", func(e Event) error {
		got = e
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if err = b.Publish(NewEvent("agent.ate", "grazer-1", 123)); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if got == nil {
		t.Fatal("handler not called")
	}
	if got.Source() != "grazer-1" || got.Data() != 123 || got.Timestamp().IsZero() {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestTypesIsolation(t *testing.T) {
	b := New()
	count1, count2 := 0, 0
	_, _ = b.Subscribe("t1", func(e Event) error { count1++; return nil })
	_, _ = b.Subscribe("t2", func(e Event) error { count2++; return nil })
	_ = b.Publish(NewEvent("t1", "src", nil))
	if count1 != 1 || count2 != 0 {
		t.Fatalf("type isolation failed: %d %d", count1, count2)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	calls := 0
	sub, _ := b.Subscribe("e", func(e Event) error { calls++; return nil })
	if !sub.IsActive() {
		t.Fatal("subscription should be active")
	}
	if err := b.Unsubscribe(sub); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := sub.Cancel(); err != nil {
		t.Fatalf("second cancel: %v", err)
	}
	if err := b.Unsubscribe(nil); err != nil {
		t.Fatalf("nil unsubscribe: %v", err)
	}
	_ = b.Publish(NewEvent("e", "src", nil))
	if calls != 0 || sub.IsActive() {
		t.Fatalf("handler called after unsubscribe: %d", calls)
	}
}

func TestNilHandlerRejected(t *testing.T) {
	if _, err := New().Subscribe("e", nil); err == nil {
		t.Fatal("expected error for nil handler")
	}
}

func TestPublishBatchJoinsErrors(t *testing.T) {
	b := New()
	errA := errors.New("a")
	errB := errors.New("b")
	_, _ = b.Subscribe("a", func(e Event) error { return errA })
	_, _ = b.Subscribe("b", func(e Event) error { return errB })
	err := b.PublishBatch(NewEvent("a", "s", nil), NewEvent("b", "s", nil), NewEvent("c", "s", nil))
	if !errors.Is(err, errA) || !errors.Is(err, errB) {
		t.Fatalf("expected joined error, got %v", err)
	}
}

func TestObserverMetricsOptional(t *testing.T) {
	b := New()
	// without observer, metrics should remain zero despite activity
	_, _ = b.Subscribe("e", func(e Event) error { return nil })
	_ = b.Publish(NewEvent("e", "s", nil))
	m := b.GetMetrics()
	if m.Published != 0 || m.DeliveredHandlers != 0 {
		t.Fatalf("metrics should be zero without observers: %+v", m)
	}
	// now add observer and expect metrics to update
	obs := &testObserver{}
	b.AddObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	m2 := b.GetMetrics()
	if m2.Published != 1 || m2.DeliveredHandlers != 1 || m2.SubscribersActive != 1 {
		t.Fatalf("metrics should update with observer: %+v", m2)
	}
	if obs.publishCount != 1 || obs.deliveredCount != 1 || obs.lastErr != nil {
		t.Fatalf("observer not called: %+v", obs)
	}
	b.RemoveObserver(obs)
	_ = b.Publish(NewEvent("e", "s", nil))
	if obs.publishCount != 1 {
		t.Fatalf("removed observer still called: %+v", obs)
	}
}
