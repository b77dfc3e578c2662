package player

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/glebovdev/groove-cli/internal/cache"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSampleRate = beep.SampleRate(44100)
	SpeakerBufferSize = time.Millisecond * 250
	ResampleQuality   = 4
	MaxRetries        = 3
	RetryDelay        = time.Second * 2
)

// AudioFetcher makes a remote audio file available on local disk.
type AudioFetcher interface {
	FetchAudio(ctx context.Context, url, format string) (string, error)
}

// BeepEngine plays audio files through the system speaker. Files are fetched
// to disk first so that the decoded stream can seek.
type BeepEngine struct {
	fetcher AudioFetcher

	mu          sync.Mutex
	speakerInit bool
}

func NewBeepEngine(fetcher AudioFetcher) *BeepEngine {
	return &BeepEngine{fetcher: fetcher}
}

func (e *BeepEngine) initSpeaker() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.speakerInit {
		return nil
	}

	if err := speaker.Init(DefaultSampleRate, DefaultSampleRate.N(SpeakerBufferSize)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	e.speakerInit = true
	log.Debug().Msgf("Speaker initialized with sample rate: %d Hz, buffer: %v", DefaultSampleRate, SpeakerBufferSize)
	return nil
}

// Load starts fetching and decoding url in the background.
func (e *BeepEngine) Load(url string, emit func(Event)) Handle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &beepHandle{
		engine: e,
		emit:   emit,
		cancel: cancel,
		done:   make(chan struct{}),
		volume: 1,
	}

	go h.load(ctx, url)
	return h
}

type beepHandle struct {
	engine *BeepEngine
	emit   func(Event)
	cancel context.CancelFunc
	done   chan struct{}

	unloaded atomic.Bool

	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	effect   *effects.Volume
	volume   float64
}

func (h *beepHandle) post(ev Event) {
	if h.unloaded.Load() {
		return
	}
	h.emit(ev)
}

func (h *beepHandle) load(ctx context.Context, url string) {
	defer close(h.done)

	path, err := h.fetchWithRetry(ctx, url)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			h.post(Failed{Err: err})
		}
		return
	}

	streamer, format, err := decodeFile(path)
	if err != nil {
		h.post(Failed{Err: err})
		return
	}

	if err := h.engine.initSpeaker(); err != nil {
		streamer.Close()
		h.post(Failed{Err: fmt.Errorf("failed to initialize audio output: %w", err)})
		return
	}

	var source beep.Streamer = streamer
	if format.SampleRate != DefaultSampleRate {
		source = beep.Resample(ResampleQuality, format.SampleRate, DefaultSampleRate, streamer)
	}

	h.mu.Lock()
	if h.unloaded.Load() {
		h.mu.Unlock()
		streamer.Close()
		return
	}

	h.streamer = streamer
	h.format = format
	h.ctrl = &beep.Ctrl{
		Streamer: beep.Seq(source, beep.Callback(func() {
			h.post(Ended{})
		})),
		Paused: true,
	}
	h.effect = &effects.Volume{
		Streamer: h.ctrl,
		Base:     2,
		Volume:   volumeToExponent(h.volume),
		Silent:   h.volume <= 0,
	}
	duration := format.SampleRate.D(streamer.Len())
	h.mu.Unlock()

	speaker.Play(h.effect)

	log.Debug().Msgf("Decoded %s: %d Hz, %v", filepath.Base(path), format.SampleRate, duration)
	h.post(Loaded{Duration: duration})
}

func (h *beepHandle) fetchWithRetry(ctx context.Context, url string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		if attempt > 0 {
			log.Debug().Msgf("Retry attempt %d/%d for %s", attempt, MaxRetries, url)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(RetryDelay):
			}
		}

		path, err := h.engine.fetcher.FetchAudio(ctx, url, formatOf(url))
		if err == nil {
			return path, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}

		lastErr = err
		log.Error().Err(err).Msgf("Failed to fetch audio (attempt %d/%d)", attempt+1, MaxRetries+1)

		if cache.IsNonRetryable(err) {
			break
		}
	}
	return "", fmt.Errorf("failed to fetch audio: %w", lastErr)
}

func formatOf(url string) string {
	if i := strings.IndexAny(url, "?#"); i >= 0 {
		url = url[:i]
	}
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(url), "."))
}

func decodeFile(path string) (beep.StreamSeekCloser, beep.Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, beep.Format{}, fmt.Errorf("failed to open audio file: %w", err)
	}

	var (
		streamer beep.StreamSeekCloser
		format   beep.Format
	)
	switch filepath.Ext(path) {
	case ".wav":
		streamer, format, err = wav.Decode(f)
	default:
		streamer, format, err = mp3.Decode(f)
	}
	if err != nil {
		f.Close()
		return nil, beep.Format{}, fmt.Errorf("failed to decode audio: %w", err)
	}
	return streamer, format, nil
}

func (h *beepHandle) Play() {
	if !h.setPaused(false) {
		return
	}
	h.post(Played{})
}

func (h *beepHandle) Pause() {
	if !h.setPaused(true) {
		return
	}
	h.post(Paused{})
}

func (h *beepHandle) setPaused(paused bool) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctrl == nil || h.unloaded.Load() {
		return false
	}

	speaker.Lock()
	h.ctrl.Paused = paused
	speaker.Unlock()
	return true
}

func (h *beepHandle) Seek(pos time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.streamer == nil || h.unloaded.Load() {
		return
	}

	n := h.format.SampleRate.N(pos)
	if n >= h.streamer.Len() {
		n = h.streamer.Len() - 1
	}
	if n < 0 {
		n = 0
	}

	speaker.Lock()
	err := h.streamer.Seek(n)
	speaker.Unlock()

	if err != nil {
		log.Debug().Err(err).Msgf("Seek to %v failed", pos)
	}
}

func (h *beepHandle) Position() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.streamer == nil {
		return 0
	}

	speaker.Lock()
	pos := h.streamer.Position()
	speaker.Unlock()

	return h.format.SampleRate.D(pos)
}

func (h *beepHandle) Duration() time.Duration {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.streamer == nil {
		return 0
	}
	return h.format.SampleRate.D(h.streamer.Len())
}

func (h *beepHandle) SetVolume(volume float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.volume = volume
	if h.effect == nil {
		return
	}

	speaker.Lock()
	h.effect.Volume = volumeToExponent(volume)
	h.effect.Silent = volume <= 0
	speaker.Unlock()

	log.Debug().Msgf("Volume set to %.0f%% (%.2f)", volume*100, volumeToExponent(volume))
}

// Unload stops playback and releases the decoder. It blocks until a pending
// load has finished or been cancelled.
func (h *beepHandle) Unload() {
	if h.unloaded.Swap(true) {
		return
	}

	h.cancel()
	<-h.done

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctrl != nil {
		speaker.Lock()
		h.ctrl.Streamer = nil
		speaker.Unlock()
	}

	if h.streamer != nil {
		if err := h.streamer.Close(); err != nil {
			log.Debug().Err(err).Msg("Failed to close audio stream")
		}
		h.streamer = nil
	}
	h.ctrl = nil
	h.effect = nil
}
