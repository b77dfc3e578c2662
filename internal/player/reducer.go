package player

import (
	"time"

	"github.com/glebovdev/groove-cli/internal/config"
	"github.com/glebovdev/groove-cli/internal/queue"
)

// Reduce computes the next state for ev and the effects the controller must
// carry out. It performs no I/O; pick chooses a random index in [0, n) for
// shuffled traversal.
func Reduce(s State, q queue.Snapshot, ev Event, pick func(n int) int) (State, []Effect) {
	if gen, ok := generation(ev); ok && gen != s.Gen {
		return s, nil
	}

	switch e := ev.(type) {
	case ActiveChanged:
		if e.ID == "" {
			return release(s), []Effect{Release{}}
		}
		return load(s, e.ID)

	case Loaded:
		if s.Phase != StateLoading {
			return s, nil
		}
		s.Transport.Duration = e.Duration
		return s, []Effect{ApplyVolume{Volume: s.Transport.Volume}, Play{}}

	case Played:
		s.Phase = StatePlaying
		s.Transport.Playing = true
		return s, nil

	case Paused:
		s.Phase = StatePaused
		s.Transport.Playing = false
		return s, nil

	case Progress:
		if s.Phase != StatePlaying {
			return s, nil
		}
		s.Transport.CurrentTime = clampDuration(e.Position, s.Transport.Duration)
		return s, nil

	case Ended:
		s.Transport.Playing = false
		s.Transport.CurrentTime = s.Transport.Duration
		if s.Transport.Looping && s.ActiveID != "" {
			return load(s, s.ActiveID)
		}
		s.Phase = StateEnded
		return s, playNext(s, q, pick)

	case Failed:
		s.Phase = StateError
		s.Transport.Playing = false
		if e.Err != nil {
			s.LastError = e.Err.Error()
		}
		return s, nil

	case TogglePlay:
		switch s.Phase {
		case StatePlaying:
			return s, []Effect{Pause{}}
		case StatePaused:
			return s, []Effect{Play{}}
		case StateEnded, StateError:
			if s.ActiveID != "" {
				return load(s, s.ActiveID)
			}
		}
		return s, nil

	case Retry:
		if s.ActiveID == "" {
			return s, nil
		}
		return load(s, s.ActiveID)

	case Next:
		return s, playNext(s, q, pick)

	case Previous:
		return s, playPrevious(q)

	case ToggleLoop:
		s.Transport.Looping = !s.Transport.Looping
		return s, nil

	case ToggleShuffle:
		s.Transport.Shuffling = !s.Transport.Shuffling
		return s, nil

	case ToggleMute:
		if s.Transport.Volume == 0 {
			s.Transport.Volume = 1
		} else {
			s.Transport.Volume = 0
		}
		return s, []Effect{ApplyVolume{Volume: s.Transport.Volume}}

	case SetVolume:
		s.Transport.Volume = config.ClampVolume(e.Volume)
		return s, []Effect{ApplyVolume{Volume: s.Transport.Volume}}

	case Seek:
		if s.Phase != StatePlaying && s.Phase != StatePaused {
			return s, nil
		}
		pos := clampDuration(e.Position, s.Transport.Duration)
		s.Transport.CurrentTime = pos
		return s, []Effect{SeekTo{Position: pos}}
	}

	return s, nil
}

func load(s State, id string) (State, []Effect) {
	s.Gen++
	s.Phase = StateLoading
	s.ActiveID = id
	s.LastError = ""
	s.Transport.Playing = false
	s.Transport.CurrentTime = 0
	s.Transport.Duration = 0
	return s, []Effect{Load{ID: id, Gen: s.Gen}}
}

func release(s State) State {
	s.Gen++
	s.Phase = StateIdle
	s.ActiveID = ""
	s.LastError = ""
	s.Transport.Playing = false
	s.Transport.CurrentTime = 0
	s.Transport.Duration = 0
	return s
}

// playNext advances from the queue's active id, wrapping to the head. With
// shuffling on, any id may be picked, including the active one.
func playNext(s State, q queue.Snapshot, pick func(n int) int) []Effect {
	if q.IsEmpty() {
		return nil
	}

	var candidate string
	if s.Transport.Shuffling {
		candidate = q.IDs[pick(len(q.IDs))]
	} else if i := q.IndexOf(q.ActiveID); i+1 < len(q.IDs) {
		candidate = q.IDs[i+1]
	} else {
		candidate = q.IDs[0]
	}

	return []Effect{SetActive{ID: candidate}}
}

// playPrevious steps back by index, wrapping to the tail. Shuffling is ignored.
func playPrevious(q queue.Snapshot) []Effect {
	if q.IsEmpty() {
		return nil
	}

	i := q.IndexOf(q.ActiveID)
	if i-1 < 0 {
		return []Effect{SetActive{ID: q.IDs[len(q.IDs)-1]}}
	}

	return []Effect{SetActive{ID: q.IDs[i-1]}}
}

func clampDuration(d, limit time.Duration) time.Duration {
	if d < 0 {
		return 0
	}
	if d > limit {
		return limit
	}
	return d
}
