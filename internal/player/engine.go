package player

import (
	"errors"
	"time"
)

// ErrNoHandle is returned when a handle command arrives with nothing loaded.
var ErrNoHandle = errors.New("no audio handle loaded")

// Engine loads audio streams. Load returns immediately; the handle reports
// Loaded or Failed through emit once decoding has started or failed.
type Engine interface {
	Load(url string, emit func(Event)) Handle
}

// Handle is one loaded audio stream. Play and Pause are confirmed by Played
// and Paused events, the end of the stream by Ended. A handle never emits
// after Unload returns.
type Handle interface {
	Play()
	Pause()
	Seek(pos time.Duration)
	Position() time.Duration
	Duration() time.Duration
	SetVolume(volume float64)
	Unload()
}

// Resolver maps a track id to a fetchable audio URL.
type Resolver interface {
	URL(id string) (string, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc func(id string) (string, error)

func (f ResolverFunc) URL(id string) (string, error) {
	return f(id)
}
