package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/glebovdev/groove-cli/internal/player"
)

func TestNewPlayingSpinner(t *testing.T) {
	spinner := NewPlayingSpinner()

	if spinner == nil {
		t.Fatal("NewPlayingSpinner() returned nil")
	}

	if len(spinner.Frames) < 2 {
		t.Errorf("Expected at least 2 frames, got %d", len(spinner.Frames))
	}

	for i, frame := range spinner.Frames {
		if frame == "" {
			t.Errorf("Frame[%d] is empty", i)
		}
	}

	if spinner.FPS <= 0 {
		t.Error("PlayingSpinner.FPS should be positive")
	}
}

func TestJoinParts(t *testing.T) {
	tests := []struct {
		name     string
		parts    []string
		expected string
	}{
		{"empty slice", []string{}, ""},
		{"nil slice", nil, ""},
		{"single part", []string{"PLAYING"}, "PLAYING"},
		{"two parts", []string{"PLAYING", "LOOP"}, "PLAYING │ LOOP"},
		{"three parts", []string{"● PLAYING", "LOOP", "0:10 / 3:00"}, "● PLAYING │ LOOP │ 0:10 / 3:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := joinParts(tt.parts)
			if result != tt.expected {
				t.Errorf("joinParts(%v) = %q, want %q", tt.parts, result, tt.expected)
			}
		})
	}
}

func TestFormatTime(t *testing.T) {
	tests := []struct {
		in       time.Duration
		expected string
	}{
		{0, "0:00"},
		{-3 * time.Second, "0:00"},
		{999 * time.Millisecond, "0:00"},
		{9 * time.Second, "0:09"},
		{61 * time.Second, "1:01"},
		{3*time.Minute + 30*time.Second + 700*time.Millisecond, "3:30"},
		{75 * time.Minute, "75:00"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			if got := formatTime(tt.in); got != tt.expected {
				t.Errorf("formatTime(%v) = %q, want %q", tt.in, got, tt.expected)
			}
		})
	}
}

func TestRenderScrubBar(t *testing.T) {
	tests := []struct {
		name    string
		current time.Duration
		total   time.Duration
		filled  int
	}{
		{"unknown duration", 10 * time.Second, 0, 0},
		{"start", 0, time.Minute, 0},
		{"half", 30 * time.Second, time.Minute, 5},
		{"end", time.Minute, time.Minute, 10},
		{"past end", 2 * time.Minute, time.Minute, 10},
		{"negative", -time.Second, time.Minute, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := renderScrubBar(tt.current, tt.total, 10, "red", "gray")
			if got := strings.Count(bar, "━"); got != tt.filled {
				t.Errorf("filled cells = %d, want %d (%q)", got, tt.filled, bar)
			}
			if got := strings.Count(bar, "─"); got != 10-tt.filled {
				t.Errorf("empty cells = %d, want %d (%q)", got, 10-tt.filled, bar)
			}
		})
	}

	if bar := renderScrubBar(time.Second, time.Minute, 0, "red", "gray"); bar != "" {
		t.Errorf("zero width bar = %q, want empty", bar)
	}
}

func TestVolumePercent(t *testing.T) {
	tests := []struct {
		in       float64
		expected int
	}{
		{0, 0},
		{0.05, 5},
		{0.333, 33},
		{0.995, 100},
		{1, 100},
		{1.5, 100},
		{-0.2, 0},
	}

	for _, tt := range tests {
		if got := volumePercent(tt.in); got != tt.expected {
			t.Errorf("volumePercent(%v) = %d, want %d", tt.in, got, tt.expected)
		}
	}
}

func TestFriendlyErrorMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      string
		contains string
	}{
		{"no such host", "dial tcp: lookup example.com: no such host", "Unable to connect"},
		{"connection refused", "dial tcp 127.0.0.1:80: connection refused", "Connection refused"},
		{"timeout", "context deadline exceeded", "timed out"},
		{"unreachable", "connect: network is unreachable", "unreachable"},
		{"forbidden", "download failed: unexpected status 403 Forbidden", "forbidden (403)"},
		{"not found", "unexpected status 404 Not Found", "not found (404)"},
		{"unknown track", "resolve 42: track not found", "not found"},
		{"decode", "decode mp3: invalid header", "Unsupported"},
		{"dial suffix trimmed", "fetch song: dial tcp 10.0.0.1:443: i/o error", "fetch song"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := friendlyErrorMessage(tt.err)
			if !strings.Contains(got, tt.contains) {
				t.Errorf("friendlyErrorMessage(%q) = %q, want it to contain %q", tt.err, got, tt.contains)
			}
		})
	}

	long := strings.Repeat("x", 150)
	if got := friendlyErrorMessage(long); len(got) != 103 || !strings.HasSuffix(got, "...") {
		t.Errorf("long message not truncated: %q", got)
	}
}

func TestCatalogHost(t *testing.T) {
	tests := []struct {
		in       string
		expected string
	}{
		{"https://abc.supabase.co", "abc.supabase.co"},
		{"http://localhost:54321/", "localhost:54321"},
		{"", "an unconfigured catalog"},
		{"not a url", "not a url"},
	}

	for _, tt := range tests {
		if got := catalogHost(tt.in); got != tt.expected {
			t.Errorf("catalogHost(%q) = %q, want %q", tt.in, got, tt.expected)
		}
	}
}

func TestPlaybackIcon(t *testing.T) {
	if got := playbackIcon(player.StatePlaying); got != "➤" {
		t.Errorf("playing icon = %q", got)
	}
	if got := playbackIcon(player.StatePaused); got != PauseIcon {
		t.Errorf("paused icon = %q, want %q", got, PauseIcon)
	}
	if got := playbackIcon(player.StateIdle); got != " " {
		t.Errorf("idle icon = %q, want blank", got)
	}
}

func TestSettingsChanged(t *testing.T) {
	base := player.State{ActiveID: "1", Transport: player.Transport{Volume: 0.5}}

	progressed := base
	progressed.Transport.CurrentTime = 10 * time.Second
	progressed.Phase = player.StatePlaying
	if settingsChanged(base, progressed) {
		t.Error("progress alone should not trigger a config save")
	}

	looped := base
	looped.Transport.Looping = true
	if !settingsChanged(base, looped) {
		t.Error("loop toggle should trigger a config save")
	}

	louder := base
	louder.Transport.Volume = 0.6
	if !settingsChanged(base, louder) {
		t.Error("volume change should trigger a config save")
	}

	other := base
	other.ActiveID = "2"
	if !settingsChanged(base, other) {
		t.Error("new active track should trigger a config save")
	}

	released := base
	released.ActiveID = ""
	if settingsChanged(base, released) {
		t.Error("releasing the track should keep the last one")
	}
}

type fakeStateSource struct {
	state player.State
}

func (f *fakeStateSource) State() player.State { return f.state }

func TestStatusRenderer(t *testing.T) {
	playing := player.State{
		Phase:    player.StatePlaying,
		ActiveID: "1",
		Transport: player.Transport{
			Volume:      1,
			Playing:     true,
			Looping:     true,
			CurrentTime: 10 * time.Second,
			Duration:    3 * time.Minute,
		},
	}

	tests := []struct {
		name     string
		state    player.State
		contains []string
		excludes []string
	}{
		{
			name:     "idle",
			state:    player.State{Transport: player.Transport{Volume: 1}},
			contains: []string{"IDLE", "Select a song"},
			excludes: []string{"MUTED"},
		},
		{
			name:     "idle muted",
			state:    player.State{},
			contains: []string{"IDLE", "MUTED"},
		},
		{
			name:     "loading",
			state:    player.State{Phase: player.StateLoading, Transport: player.Transport{Volume: 1, Shuffling: true}},
			contains: []string{"LOADING", "SHUFFLE"},
		},
		{
			name:     "playing",
			state:    playing,
			contains: []string{"PLAYING", "LOOP", "0:10 / 3:00"},
			excludes: []string{"SHUFFLE", "MUTED"},
		},
		{
			name:     "paused",
			state:    player.State{Phase: player.StatePaused, Transport: player.Transport{Volume: 1, CurrentTime: time.Minute, Duration: 2 * time.Minute}},
			contains: []string{"PAUSED", "1:00 / 2:00"},
		},
		{
			name:     "ended",
			state:    player.State{Phase: player.StateEnded, Transport: player.Transport{Volume: 1}},
			contains: []string{"ENDED"},
		},
		{
			name:     "error",
			state:    player.State{Phase: player.StateError, LastError: "decode mp3: bad frame"},
			contains: []string{"✗", "decode mp3"},
		},
		{
			name:     "error without message",
			state:    player.State{Phase: player.StateError},
			contains: []string{"ERROR"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewStatusRenderer(&fakeStateSource{state: tt.state})
			got := r.Render()
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Render() = %q, want it to contain %q", got, want)
				}
			}
			for _, unwanted := range tt.excludes {
				if strings.Contains(got, unwanted) {
					t.Errorf("Render() = %q, should not contain %q", got, unwanted)
				}
			}
		})
	}
}

func TestStatusRendererWithoutSource(t *testing.T) {
	r := NewStatusRenderer(nil)
	if got := r.Render(); !strings.Contains(got, "IDLE") {
		t.Errorf("Render() = %q, want IDLE", got)
	}
}

func TestStatusRendererAnimation(t *testing.T) {
	r := NewStatusRenderer(&fakeStateSource{state: player.State{Phase: player.StateLoading}})
	r.SetPrimaryColor("red")

	first := r.Render()
	for i := 0; i < r.ticksPerFrame; i++ {
		r.AdvanceAnimation()
	}
	if second := r.Render(); second == first {
		t.Errorf("animation frame did not advance: %q", second)
	}

	r.source = &fakeStateSource{state: player.State{Phase: player.StatePlaying, Transport: player.Transport{Volume: 1}}}
	if got := r.Render(); !strings.Contains(got, "[red]") {
		t.Errorf("primary color not applied: %q", got)
	}
}
