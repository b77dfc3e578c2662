package player

import "time"

// Event is anything the reducer reacts to: engine callbacks, queue changes
// and user intents.
type Event interface {
	isEvent()
}

// Engine events. Gen is stamped by the controller when the event is posted.
type (
	Loaded struct {
		Gen      uint64
		Duration time.Duration
	}
	Played struct {
		Gen uint64
	}
	Paused struct {
		Gen uint64
	}
	Ended struct {
		Gen uint64
	}
	Progress struct {
		Gen      uint64
		Position time.Duration
	}
	Failed struct {
		Gen uint64
		Err error
	}
)

// ActiveChanged is posted whenever the queue is written.
type ActiveChanged struct {
	ID string
}

// User intents.
type (
	TogglePlay    struct{}
	Next          struct{}
	Previous      struct{}
	ToggleLoop    struct{}
	ToggleShuffle struct{}
	ToggleMute    struct{}
	SetVolume     struct{ Volume float64 }
	Seek          struct{ Position time.Duration }
	Retry         struct{}
)

func (Loaded) isEvent()        {}
func (Played) isEvent()        {}
func (Paused) isEvent()        {}
func (Ended) isEvent()         {}
func (Progress) isEvent()      {}
func (Failed) isEvent()        {}
func (ActiveChanged) isEvent() {}
func (TogglePlay) isEvent()    {}
func (Next) isEvent()          {}
func (Previous) isEvent()      {}
func (ToggleLoop) isEvent()    {}
func (ToggleShuffle) isEvent() {}
func (ToggleMute) isEvent()    {}
func (SetVolume) isEvent()     {}
func (Seek) isEvent()          {}
func (Retry) isEvent()         {}

// stamp tags an engine event with the generation of the handle that emitted it.
func stamp(ev Event, gen uint64) Event {
	switch e := ev.(type) {
	case Loaded:
		e.Gen = gen
		return e
	case Played:
		e.Gen = gen
		return e
	case Paused:
		e.Gen = gen
		return e
	case Ended:
		e.Gen = gen
		return e
	case Progress:
		e.Gen = gen
		return e
	case Failed:
		e.Gen = gen
		return e
	default:
		return ev
	}
}

// generation returns the handle generation an engine event belongs to.
func generation(ev Event) (uint64, bool) {
	switch e := ev.(type) {
	case Loaded:
		return e.Gen, true
	case Played:
		return e.Gen, true
	case Paused:
		return e.Gen, true
	case Ended:
		return e.Gen, true
	case Progress:
		return e.Gen, true
	case Failed:
		return e.Gen, true
	default:
		return 0, false
	}
}

// Effect is a side effect requested by the reducer and carried out by the controller.
type Effect interface {
	isEffect()
}

// Load releases the current handle and loads ID under generation Gen.
type Load struct {
	ID  string
	Gen uint64
}

// Release unloads the current handle without loading another.
type Release struct{}

// SetActive moves the queue pointer.
type SetActive struct {
	ID string
}

// Handle commands.
type (
	Play        struct{}
	Pause       struct{}
	SeekTo      struct{ Position time.Duration }
	ApplyVolume struct{ Volume float64 }
)

func (Load) isEffect()        {}
func (Release) isEffect()     {}
func (Play) isEffect()        {}
func (Pause) isEffect()       {}
func (SeekTo) isEffect()      {}
func (ApplyVolume) isEffect() {}
func (SetActive) isEffect()   {}
