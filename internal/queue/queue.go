// Package queue holds the ordered list of track ids the player walks through
// and the pointer to the one currently active.
package queue

import (
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"
)

// Snapshot is an immutable copy of the queue contents.
type Snapshot struct {
	IDs      []string
	ActiveID string
}

// IsEmpty reports whether the snapshot holds no ids.
func (s Snapshot) IsEmpty() bool {
	return len(s.IDs) == 0
}

// IndexOf returns the position of the first occurrence of id, or -1.
func (s Snapshot) IndexOf(id string) int {
	if id == "" {
		return -1
	}
	return lo.IndexOf(s.IDs, id)
}

// Queue is the shared playback queue. Any goroutine may read it; writes come
// from the catalog view (Reset, Clear) and the playback controller (SetActiveID).
// Every write notifies subscribers with the resulting snapshot before the
// next write can start, so subscribers never see writes out of order.
type Queue struct {
	mu       sync.RWMutex
	ids      []string
	activeID string

	subMu  sync.Mutex
	subs   map[int]chan Snapshot
	nextID int
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{
		subs: make(map[int]chan Snapshot),
	}
}

// Reset replaces the queue contents wholesale and activates activeID.
func (q *Queue) Reset(ids []string, activeID string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.ids = slices.Clone(ids)
	q.activeID = activeID

	log.Debug().Int("size", len(ids)).Str("active", activeID).Msg("Queue reset")
	q.notify(q.snapshotLocked())
}

// SetActiveID moves the active pointer without touching the ids. Subscribers
// are notified even when id is already active.
func (q *Queue) SetActiveID(id string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.activeID = id

	log.Debug().Str("active", id).Msg("Queue active track changed")
	q.notify(q.snapshotLocked())
}

// Clear empties the queue and drops the active id.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.ids = nil
	q.activeID = ""

	log.Debug().Msg("Queue cleared")
	q.notify(q.snapshotLocked())
}

// Snapshot returns a copy of the current contents.
func (q *Queue) Snapshot() Snapshot {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.snapshotLocked()
}

// ActiveID returns the id of the active track, or "" when none.
func (q *Queue) ActiveID() string {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.activeID
}

// Len returns the number of ids in the queue.
func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.ids)
}

func (q *Queue) snapshotLocked() Snapshot {
	return Snapshot{
		IDs:      slices.Clone(q.ids),
		ActiveID: q.activeID,
	}
}

// Subscribe returns a channel that receives a snapshot after every write,
// and a function that cancels the subscription. A subscriber that falls
// behind only sees the latest snapshot.
func (q *Queue) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	q.subMu.Lock()
	id := q.nextID
	q.nextID++
	q.subs[id] = ch
	q.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			q.subMu.Lock()
			delete(q.subs, id)
			q.subMu.Unlock()
		})
	}
	return ch, cancel
}

func (q *Queue) notify(snap Snapshot) {
	q.subMu.Lock()
	defer q.subMu.Unlock()

	for _, ch := range q.subs {
		for {
			select {
			case ch <- snap:
			default:
				select {
				case <-ch:
				default:
				}
				continue
			}
			break
		}
	}
}
