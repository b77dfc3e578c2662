// Package player drives audio playback: a pure reducer decides transitions,
// the Controller runs it against a mailbox of events and owns the engine handle.
package player

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/glebovdev/groove-cli/internal/config"
	"github.com/glebovdev/groove-cli/internal/queue"
	"github.com/rs/zerolog/log"
)

const DefaultTickInterval = time.Second

// Options configures a Controller.
type Options struct {
	Volume       float64
	Looping      bool
	Shuffling    bool
	TickInterval time.Duration
	// Pick returns a random index in [0, n). Defaults to rand.IntN.
	Pick func(n int) int
}

// Controller is the playback state machine. All transitions run on the
// goroutine that calls Run; the other methods only post intents.
type Controller struct {
	queue        *queue.Queue
	engine       Engine
	resolver     Resolver
	pick         func(n int) int
	tickInterval time.Duration

	mailbox     *mailbox
	updates     <-chan queue.Snapshot
	unsubscribe func()
	session     *session

	stateMu sync.RWMutex
	state   State

	onChangeMu sync.Mutex
	onChange   func(State)
}

// NewController creates a controller bound to q. It starts observing the
// queue immediately, so writes made before Run are not lost.
func NewController(q *queue.Queue, engine Engine, resolver Resolver, opts Options) *Controller {
	if opts.TickInterval <= 0 {
		opts.TickInterval = DefaultTickInterval
	}
	if opts.Pick == nil {
		opts.Pick = rand.IntN
	}

	updates, unsubscribe := q.Subscribe()

	return &Controller{
		queue:        q,
		engine:       engine,
		resolver:     resolver,
		pick:         opts.Pick,
		tickInterval: opts.TickInterval,
		mailbox:      newMailbox(),
		updates:      updates,
		unsubscribe:  unsubscribe,
		state: State{
			Phase: StateIdle,
			Transport: Transport{
				Volume:    config.ClampVolume(opts.Volume),
				Looping:   opts.Looping,
				Shuffling: opts.Shuffling,
			},
		},
	}
}

// Run processes events until ctx is cancelled, then releases the current
// handle and stops observing the queue.
func (c *Controller) Run(ctx context.Context) {
	defer c.unsubscribe()
	defer c.closeSession()

	log.Debug().Msg("Playback controller started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Playback controller stopped")
			return
		case snap := <-c.updates:
			c.dispatch(ActiveChanged{ID: snap.ActiveID}, snap)
		case <-c.mailbox.ready():
			for _, ev := range c.mailbox.drain() {
				c.dispatch(ev, c.queue.Snapshot())
			}
		}
	}
}

func (c *Controller) dispatch(ev Event, snap queue.Snapshot) {
	prev := c.State()
	next, effects := Reduce(prev, snap, ev, c.pick)

	c.setState(prev, next)

	for _, eff := range effects {
		c.apply(eff)
	}

	if next != prev {
		c.notify(next)
	}
}

func (c *Controller) setState(prev, next State) {
	c.stateMu.Lock()
	c.state = next
	c.stateMu.Unlock()

	if prev.Phase != next.Phase {
		log.Debug().Msgf("Player state: %s -> %s", prev.Phase, next.Phase)
	}
}

func (c *Controller) apply(eff Effect) {
	switch e := eff.(type) {
	case Load:
		c.closeSession()

		url, err := c.resolver.URL(e.ID)
		if err != nil {
			log.Error().Err(err).Str("id", e.ID).Msg("Failed to resolve track URL")
			c.mailbox.post(Failed{Gen: e.Gen, Err: fmt.Errorf("failed to resolve track %s: %w", e.ID, err)})
			return
		}

		log.Debug().Str("id", e.ID).Uint64("gen", e.Gen).Msgf("Loading track: %s", url)
		c.session = newSession(c.engine, url, e.Gen, c.tickInterval, c.mailbox.post)

	case Release:
		c.closeSession()

	case Play:
		c.withHandle("play", func(h Handle) { h.Play() })

	case Pause:
		c.withHandle("pause", func(h Handle) { h.Pause() })

	case SeekTo:
		c.withHandle("seek", func(h Handle) { h.Seek(e.Position) })

	case ApplyVolume:
		c.withHandle("volume", func(h Handle) { h.SetVolume(e.Volume) })

	case SetActive:
		c.queue.SetActiveID(e.ID)
	}
}

func (c *Controller) withHandle(op string, fn func(Handle)) {
	if c.session == nil {
		log.Debug().Err(ErrNoHandle).Str("op", op).Msg("Skipping handle command")
		return
	}
	fn(c.session.handle)
}

func (c *Controller) closeSession() {
	if c.session == nil {
		return
	}
	log.Debug().Uint64("gen", c.session.gen).Msg("Releasing audio handle")
	c.session.close()
	c.session = nil
}

func (c *Controller) notify(s State) {
	c.onChangeMu.Lock()
	fn := c.onChange
	c.onChangeMu.Unlock()

	if fn != nil {
		fn(s)
	}
}

// SetOnChange registers a callback invoked from the Run goroutine after
// every state change.
func (c *Controller) SetOnChange(fn func(State)) {
	c.onChangeMu.Lock()
	defer c.onChangeMu.Unlock()
	c.onChange = fn
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

func (c *Controller) TogglePlay()    { c.mailbox.post(TogglePlay{}) }
func (c *Controller) PlayNext()      { c.mailbox.post(Next{}) }
func (c *Controller) PlayPrevious()  { c.mailbox.post(Previous{}) }
func (c *Controller) ToggleLoop()    { c.mailbox.post(ToggleLoop{}) }
func (c *Controller) ToggleShuffle() { c.mailbox.post(ToggleShuffle{}) }
func (c *Controller) ToggleMute()    { c.mailbox.post(ToggleMute{}) }
func (c *Controller) Retry()         { c.mailbox.post(Retry{}) }

// SetVolume requests a volume in [0,1]; out of range values are clamped.
func (c *Controller) SetVolume(volume float64) {
	c.mailbox.post(SetVolume{Volume: volume})
}

// Seek moves the playhead, clamped to the track duration.
func (c *Controller) Seek(pos time.Duration) {
	c.mailbox.post(Seek{Position: pos})
}
