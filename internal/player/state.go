package player

import "time"

type PlayerState int

const (
	StateIdle PlayerState = iota
	StateLoading
	StatePlaying
	StatePaused
	StateEnded
	StateError
)

func (s PlayerState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateLoading:
		return "LOADING"
	case StatePlaying:
		return "PLAYING"
	case StatePaused:
		return "PAUSED"
	case StateEnded:
		return "ENDED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Transport holds the per-player playback parameters shown in the player bar.
type Transport struct {
	Volume      float64
	Playing     bool
	Looping     bool
	Shuffling   bool
	CurrentTime time.Duration
	Duration    time.Duration
}

// State is everything the controller knows about playback. Gen identifies the
// current engine handle; events tagged with another generation are stale.
type State struct {
	Phase     PlayerState
	ActiveID  string
	Transport Transport
	LastError string
	Gen       uint64
}

// HasTrack reports whether a track is loaded or being loaded.
func (s State) HasTrack() bool {
	return s.ActiveID != "" && s.Phase != StateIdle
}

// Remaining returns how much of the current track is left to play.
func (t Transport) Remaining() time.Duration {
	if t.Duration <= t.CurrentTime {
		return 0
	}
	return t.Duration - t.CurrentTime
}
