package player

import "sync"

// mailbox is an unbounded FIFO of events. post never blocks, so engine
// callbacks may post from any goroutine, including the speaker's.
type mailbox struct {
	mu     sync.Mutex
	events []Event
	wake   chan struct{}
}

func newMailbox() *mailbox {
	return &mailbox{wake: make(chan struct{}, 1)}
}

func (m *mailbox) post(ev Event) {
	m.mu.Lock()
	m.events = append(m.events, ev)
	m.mu.Unlock()

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// ready is signalled after a post.
func (m *mailbox) ready() <-chan struct{} {
	return m.wake
}

// drain removes and returns all queued events in posting order.
func (m *mailbox) drain() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	events := m.events
	m.events = nil
	return events
}
