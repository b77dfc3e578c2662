package player

import (
	"context"
	"sync"
	"time"
)

// session owns one engine handle together with its progress ticker. The
// ticker is stopped and joined before the handle is unloaded.
type session struct {
	handle Handle
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newSession(engine Engine, url string, gen uint64, interval time.Duration, post func(Event)) *session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &session{
		gen:    gen,
		cancel: cancel,
	}

	emit := func(ev Event) {
		post(stamp(ev, gen))
	}
	s.handle = engine.Load(url, emit)

	s.wg.Add(1)
	go s.tick(ctx, interval, emit)

	return s
}

func (s *session) tick(ctx context.Context, interval time.Duration, emit func(Event)) {
	defer s.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			emit(Progress{Position: s.handle.Position()})
		}
	}
}

func (s *session) close() {
	s.cancel()
	s.wg.Wait()
	s.handle.Unload()
}
