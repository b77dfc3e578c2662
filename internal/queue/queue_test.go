package queue

import (
	"fmt"
	"os"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestMain(m *testing.M) {
	zerolog.SetGlobalLevel(zerolog.Disabled)
	os.Exit(m.Run())
}

func receive(t *testing.T, ch <-chan Snapshot) Snapshot {
	t.Helper()
	select {
	case snap := <-ch:
		return snap
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for queue notification")
		return Snapshot{}
	}
}

func assertNoNotification(t *testing.T, ch <-chan Snapshot) {
	t.Helper()
	select {
	case snap := <-ch:
		t.Fatalf("unexpected notification: %+v", snap)
	default:
	}
}

func TestNewQueueIsEmpty(t *testing.T) {
	q := New()

	snap := q.Snapshot()
	if !snap.IsEmpty() {
		t.Errorf("New queue ids = %v, want empty", snap.IDs)
	}
	if snap.ActiveID != "" {
		t.Errorf("New queue active = %q, want empty", snap.ActiveID)
	}
	if q.Len() != 0 {
		t.Errorf("Len() = %d, want 0", q.Len())
	}
}

func TestResetReplacesContents(t *testing.T) {
	q := New()
	q.Reset([]string{"a", "b"}, "a")
	q.Reset([]string{"x", "y", "z"}, "y")

	snap := q.Snapshot()
	if !slices.Equal(snap.IDs, []string{"x", "y", "z"}) {
		t.Errorf("ids = %v, want [x y z]", snap.IDs)
	}
	if snap.ActiveID != "y" {
		t.Errorf("active = %q, want y", snap.ActiveID)
	}
	if q.ActiveID() != "y" {
		t.Errorf("ActiveID() = %q, want y", q.ActiveID())
	}
}

func TestResetCopiesInput(t *testing.T) {
	q := New()
	ids := []string{"a", "b"}
	q.Reset(ids, "a")

	ids[0] = "mutated"

	if got := q.Snapshot().IDs[0]; got != "a" {
		t.Errorf("queue aliased caller slice: ids[0] = %q", got)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	q := New()
	q.Reset([]string{"a", "b"}, "a")

	snap := q.Snapshot()
	snap.IDs[0] = "mutated"

	if got := q.Snapshot().IDs[0]; got != "a" {
		t.Errorf("snapshot aliased queue storage: ids[0] = %q", got)
	}
}

func TestResetThenClear(t *testing.T) {
	q := New()
	ch, cancel := q.Subscribe()
	defer cancel()

	q.Reset([]string{"x", "y"}, "x")
	snap := receive(t, ch)
	if snap.ActiveID != "x" || !slices.Equal(snap.IDs, []string{"x", "y"}) {
		t.Fatalf("after reset: %+v", snap)
	}

	q.Clear()
	snap = receive(t, ch)
	if !snap.IsEmpty() || snap.ActiveID != "" {
		t.Errorf("after clear: %+v, want empty", snap)
	}
}

func TestSetActiveIDKeepsIDs(t *testing.T) {
	q := New()
	q.Reset([]string{"a", "b", "c"}, "a")

	q.SetActiveID("c")

	snap := q.Snapshot()
	if !slices.Equal(snap.IDs, []string{"a", "b", "c"}) {
		t.Errorf("ids = %v, want unchanged", snap.IDs)
	}
	if snap.ActiveID != "c" {
		t.Errorf("active = %q, want c", snap.ActiveID)
	}
}

func TestSetActiveIDOutsideQueue(t *testing.T) {
	q := New()
	q.Reset([]string{"a"}, "a")

	q.SetActiveID("zzz")

	snap := q.Snapshot()
	if snap.ActiveID != "zzz" {
		t.Errorf("active = %q, want zzz", snap.ActiveID)
	}
	if snap.IndexOf("zzz") != -1 {
		t.Errorf("IndexOf(zzz) = %d, want -1", snap.IndexOf("zzz"))
	}
}

func TestSetActiveIDSameIDNotifies(t *testing.T) {
	q := New()
	q.Reset([]string{"a"}, "a")

	ch, cancel := q.Subscribe()
	defer cancel()

	q.SetActiveID("a")
	snap := receive(t, ch)
	if snap.ActiveID != "a" {
		t.Errorf("active = %q, want a", snap.ActiveID)
	}
}

func TestSubscribeLatestWins(t *testing.T) {
	q := New()
	ch, cancel := q.Subscribe()
	defer cancel()

	q.Reset([]string{"a", "b", "c"}, "a")
	q.SetActiveID("b")
	q.SetActiveID("c")

	snap := receive(t, ch)
	if snap.ActiveID != "c" {
		t.Errorf("active = %q, want latest c", snap.ActiveID)
	}
	assertNoNotification(t, ch)
}

func TestConcurrentWritesNotifyInOrder(t *testing.T) {
	for trial := 0; trial < 50; trial++ {
		q := New()
		ch, cancel := q.Subscribe()

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(2)
			go func() {
				defer wg.Done()
				q.Reset([]string{"x", "y"}, fmt.Sprintf("x%d", i))
			}()
			go func() {
				defer wg.Done()
				q.SetActiveID(fmt.Sprintf("c%d", i))
			}()
		}
		wg.Wait()

		got := receive(t, ch)
		want := q.Snapshot()
		if got.ActiveID != want.ActiveID || !slices.Equal(got.IDs, want.IDs) {
			t.Fatalf("trial %d: last notification = %+v, queue = %+v", trial, got, want)
		}
		cancel()
	}
}

func TestUnsubscribeStopsNotifications(t *testing.T) {
	q := New()
	ch, cancel := q.Subscribe()
	cancel()
	cancel()

	q.Reset([]string{"a"}, "a")
	assertNoNotification(t, ch)
}

func TestMultipleSubscribers(t *testing.T) {
	q := New()
	ch1, cancel1 := q.Subscribe()
	defer cancel1()
	ch2, cancel2 := q.Subscribe()
	defer cancel2()

	q.Reset([]string{"a"}, "a")

	if receive(t, ch1).ActiveID != "a" || receive(t, ch2).ActiveID != "a" {
		t.Error("both subscribers should see the reset")
	}
}

func TestIndexOf(t *testing.T) {
	snap := Snapshot{IDs: []string{"a", "b", "a", "c"}}

	tests := []struct {
		id   string
		want int
	}{
		{"a", 0},
		{"b", 1},
		{"c", 3},
		{"missing", -1},
		{"", -1},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			if got := snap.IndexOf(tt.id); got != tt.want {
				t.Errorf("IndexOf(%q) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}
