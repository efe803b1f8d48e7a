package realtime

import (
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"supporterboard/internal/domain"
)

func newTestHub() *Hub {
	return NewHub(zerolog.New(io.Discard))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not met before deadline")
}

func TestHubDeliversEveryKindToCallback(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	var calls int32
	sub, err := hub.Subscribe(func() { atomic.AddInt32(&calls, 1) })
	if err != nil {
		t.Fatalf("Subscribe() unexpected error: %v", err)
	}
	defer sub.Unsubscribe()

	kinds := []domain.ChangeKind{domain.ChangeInsert, domain.ChangeUpdate, domain.ChangeDelete}
	for i, kind := range kinds {
		hub.Publish(domain.ChangeEvent{Kind: kind, ID: "unrelated-row"})
		want := int32(i + 1)
		waitFor(t, func() bool { return atomic.LoadInt32(&calls) == want })
	}
	if hub.Published() != 3 {
		t.Fatalf("Published() = %d, want 3", hub.Published())
	}
}

func TestHubCoalescesWhileCallbackRuns(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	release := make(chan struct{})
	started := make(chan struct{}, 1)
	var calls int32
	sub, err := hub.Subscribe(func() {
		if atomic.AddInt32(&calls, 1) == 1 {
			started <- struct{}{}
			<-release
		}
	})
	if err != nil {
		t.Fatalf("Subscribe() unexpected error: %v", err)
	}
	defer sub.Unsubscribe()

	hub.Publish(domain.ChangeEvent{Kind: domain.ChangeInsert})
	<-started
	for i := 0; i < 5; i++ {
		hub.Publish(domain.ChangeEvent{Kind: domain.ChangeUpdate})
	}
	close(release)

	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 2 })
	time.Sleep(20 * time.Millisecond)
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("callback ran %d times, want 2 (first run plus one coalesced run)", got)
	}
	if sub.Coalesced() != 4 {
		t.Fatalf("Coalesced() = %d, want 4", sub.Coalesced())
	}
}

func TestUnsubscribeStopsDeliveryAndIsIdempotent(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	var calls int32
	sub, err := hub.Subscribe(func() { atomic.AddInt32(&calls, 1) })
	if err != nil {
		t.Fatalf("Subscribe() unexpected error: %v", err)
	}
	if hub.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", hub.Len())
	}

	sub.Unsubscribe()
	sub.Unsubscribe()
	if hub.Len() != 0 {
		t.Fatalf("Len() after Unsubscribe = %d, want 0", hub.Len())
	}
	select {
	case <-sub.Done():
	default:
		t.Fatalf("Done() should be closed after Unsubscribe")
	}

	hub.Publish(domain.ChangeEvent{Kind: domain.ChangeInsert})
	time.Sleep(20 * time.Millisecond)
	if atomic.LoadInt32(&calls) != 0 {
		t.Fatalf("callback ran after Unsubscribe")
	}
}

func TestHubRejectsAfterClose(t *testing.T) {
	hub := newTestHub()
	sub, err := hub.Subscribe(func() {})
	if err != nil {
		t.Fatalf("Subscribe() unexpected error: %v", err)
	}
	hub.Close()

	select {
	case <-sub.Done():
	case <-time.After(time.Second):
		t.Fatalf("Close() should stop subscriptions")
	}
	if _, err := hub.Subscribe(func() {}); !errors.Is(err, ErrHubClosed) {
		t.Fatalf("Subscribe() after Close error = %v, want ErrHubClosed", err)
	}
	if _, err := newTestHub().Subscribe(nil); !errors.Is(err, ErrNilCallback) {
		t.Fatalf("Subscribe(nil) error = %v, want ErrNilCallback", err)
	}
	sub.Unsubscribe()
}

func TestCallbackPanicDoesNotKillSubscription(t *testing.T) {
	hub := newTestHub()
	defer hub.Close()

	var calls int32
	sub, _ := hub.Subscribe(func() {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("boom")
		}
	})
	defer sub.Unsubscribe()

	hub.Publish(domain.ChangeEvent{Kind: domain.ChangeInsert})
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 1 })
	hub.Publish(domain.ChangeEvent{Kind: domain.ChangeInsert})
	waitFor(t, func() bool { return atomic.LoadInt32(&calls) == 2 })
}

func TestDecodeNotification(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    domain.ChangeEvent
	}{
		{
			name:    "insert",
			payload: `{"op":"INSERT","table":"supporters","id":"abc"}`,
			want:    domain.ChangeEvent{Kind: domain.ChangeInsert, Table: "supporters", ID: "abc"},
		},
		{
			name:    "lowercase delete",
			payload: `{"op":"delete","id":"abc"}`,
			want:    domain.ChangeEvent{Kind: domain.ChangeDelete, Table: "supporters", ID: "abc"},
		},
		{
			name:    "unknown op",
			payload: `{"op":"TRUNCATE","table":"supporters"}`,
			want:    domain.ChangeEvent{Kind: domain.ChangeResync, Table: "supporters"},
		},
		{
			name:    "garbage",
			payload: `not json`,
			want:    domain.ChangeEvent{Kind: domain.ChangeResync, Table: "supporters"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := decodeNotification(tc.payload); got != tc.want {
				t.Fatalf("decodeNotification(%q) = %+v, want %+v", tc.payload, got, tc.want)
			}
		})
	}
}
