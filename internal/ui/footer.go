package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/groove-cli/internal/player"
	"github.com/rivo/tview"
)

// StateSource is what the footer needs from the playback controller.
type StateSource interface {
	State() player.State
}

type StatusRenderer struct {
	source        StateSource
	animFrame     int
	maxAnimFrame  int
	tickCount     int
	ticksPerFrame int

	primaryColor string
}

func NewStatusRenderer(source StateSource) *StatusRenderer {
	return &StatusRenderer{
		source:        source,
		maxAnimFrame:  4,
		ticksPerFrame: 8, // Slow down animation (8 ticks per frame)
	}
}

func (s *StatusRenderer) SetPrimaryColor(color string) {
	s.primaryColor = color
}

func (s *StatusRenderer) AdvanceAnimation() {
	s.tickCount++
	if s.tickCount >= s.ticksPerFrame {
		s.tickCount = 0
		s.animFrame = (s.animFrame + 1) % s.maxAnimFrame
	}
}

func (s *StatusRenderer) Render() string {
	if s.source == nil {
		return s.renderIdle(player.State{})
	}

	state := s.source.State()

	switch state.Phase {
	case player.StateLoading:
		return s.renderLoading(state)
	case player.StatePlaying:
		return s.renderPlaying(state)
	case player.StatePaused:
		return s.renderPaused(state)
	case player.StateEnded:
		return s.renderEnded(state)
	case player.StateError:
		return s.renderError(state)
	default:
		return s.renderIdle(state)
	}
}

// modeParts lists the transport flags that are switched on.
func modeParts(t player.Transport) []string {
	var parts []string
	if t.Volume == 0 {
		parts = append(parts, "[red]MUTED[-]")
	}
	if t.Looping {
		parts = append(parts, "↻ LOOP")
	}
	if t.Shuffling {
		parts = append(parts, "⤮ SHUFFLE")
	}
	return parts
}

func (s *StatusRenderer) renderIdle(state player.State) string {
	return joinParts(append([]string{"○ IDLE"}, append(modeParts(state.Transport), "Select a song")...))
}

func (s *StatusRenderer) renderLoading(state player.State) string {
	circles := []string{"◐", "◓", "◑", "◒"}
	return joinParts(append([]string{circles[s.animFrame] + " LOADING"}, modeParts(state.Transport)...))
}

func (s *StatusRenderer) renderPlaying(state player.State) string {
	dots := []string{"●", "◉", "○", "◉"}
	dot := dots[s.animFrame]

	if s.primaryColor != "" {
		dot = fmt.Sprintf("[%s]%s[-]", s.primaryColor, dot)
	}

	parts := []string{dot + " PLAYING"}
	parts = append(parts, modeParts(state.Transport)...)
	parts = append(parts, formatPosition(state.Transport))

	return joinParts(parts)
}

func (s *StatusRenderer) renderPaused(state player.State) string {
	parts := []string{PauseIcon + " PAUSED"}
	parts = append(parts, modeParts(state.Transport)...)
	parts = append(parts, formatPosition(state.Transport))

	return joinParts(parts)
}

func (s *StatusRenderer) renderEnded(state player.State) string {
	return joinParts(append([]string{"■ ENDED"}, modeParts(state.Transport)...))
}

func (s *StatusRenderer) renderError(state player.State) string {
	errMsg := state.LastError
	if errMsg == "" {
		errMsg = "ERROR"
	}
	if len(errMsg) > 40 {
		errMsg = errMsg[:40] + "..."
	}
	return fmt.Sprintf("✗ %s", errMsg)
}

func formatPosition(t player.Transport) string {
	return formatTime(t.CurrentTime) + " / " + formatTime(t.Duration)
}

// formatTime renders d as m:ss, rounding down to whole seconds.
func formatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	seconds := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func formatAdded(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format("2006-01-02")
}

// renderScrubBar draws a width-cell bar with the elapsed part in fillColor.
func renderScrubBar(current, total time.Duration, width int, fillColor, emptyColor string) string {
	if width <= 0 {
		return ""
	}
	filled := 0
	if total > 0 {
		filled = int(int64(width) * int64(current) / int64(total))
	}
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	return fmt.Sprintf("[%s]%s[-][%s]%s[-]",
		fillColor, strings.Repeat("━", filled),
		emptyColor, strings.Repeat("─", width-filled))
}

func joinParts(parts []string) string {
	return strings.Join(parts, " │ ")
}

func (ui *UI) getPlaybackHint(keyColor string) string {
	switch ui.controller.State().Phase {
	case player.StatePaused:
		return fmt.Sprintf("[%s]Enter[-] play  [%s]Space[-] resume", keyColor, keyColor)
	case player.StatePlaying, player.StateLoading:
		return fmt.Sprintf("[%s]Enter[-] play  [%s]Space[-] pause", keyColor, keyColor)
	case player.StateError:
		return fmt.Sprintf("[%s]Space[-] retry  [%s]>[-] skip", keyColor, keyColor)
	default:
		return fmt.Sprintf("[%s]Space[-] play", keyColor)
	}
}

func (ui *UI) getHelpText() string {
	keyColor := ui.colors.helpHotkey.String()
	playbackHint := ui.getPlaybackHint(keyColor)

	muteText := "mute"
	if ui.controller.State().Transport.Volume == 0 {
		muteText = "unmute"
	}

	return fmt.Sprintf(" %s  [%s]</>[-] prev/next  [%s]+/-[-] vol  [%s]m[-] %s  [%s]/[-] search  [%s]?[-] help  [%s]q[-] quit ",
		playbackHint, keyColor, keyColor, keyColor, muteText, keyColor, keyColor, keyColor)
}

func (ui *UI) handleFooterResize(width int) {
	isWide := width >= FooterBreakpoint
	wasWide := ui.lastFooterWidth >= FooterBreakpoint

	if ui.lastFooterWidth > 0 && isWide != wasWide && ui.contentLayout != nil {
		newHeight := FooterHeightWide
		if !isWide {
			newHeight = FooterHeightNarrow
		}
		ui.contentLayout.ResizeItem(ui.helpPanel, newHeight, 0)
	}
	ui.lastFooterWidth = width
}

func (ui *UI) fillRows(screen tcell.Screen, x, y, width, height int, bg tcell.Color) {
	style := tcell.StyleDefault.Background(bg)
	for row := y; row < y+height; row++ {
		for col := x; col < x+width; col++ {
			screen.SetContent(col, row, ' ', nil, style)
		}
	}
}

func (ui *UI) drawWideFooter(screen tcell.Screen, x, y, width, height int, helpText, statusText string) {
	helpWidth := width * 3 / 5
	statusWidth := width - helpWidth

	ui.fillRows(screen, x, y, helpWidth, height, ui.colors.helpBackground)
	ui.fillRows(screen, x+helpWidth, y, statusWidth, height, ui.colors.background)

	centerY := y + height/2
	tview.Print(screen, helpText, x, centerY, helpWidth, tview.AlignCenter, ui.colors.helpForeground)
	tview.Print(screen, statusText, x+helpWidth, centerY, statusWidth-2, tview.AlignRight, ui.colors.foreground)
}

func (ui *UI) drawNarrowFooter(screen tcell.Screen, x, y, width, height int, helpText, statusText string) {
	helpHeight := max(height/2, 1)
	statusHeight := height - helpHeight
	helpBoxEnd := y + helpHeight

	ui.fillRows(screen, x, y, width, helpHeight, ui.colors.helpBackground)
	ui.fillRows(screen, x, helpBoxEnd, width, statusHeight, ui.colors.background)

	tview.Print(screen, helpText, x, y+helpHeight/2, width, tview.AlignCenter, ui.colors.helpForeground)

	if statusHeight > 0 {
		tview.Print(screen, statusText, x, helpBoxEnd+statusHeight/2, width-2, tview.AlignRight, ui.colors.foreground)
	}
}

func (ui *UI) createFooter() *tview.Box {
	box := tview.NewBox().SetBackgroundColor(ui.colors.background)

	box.SetDrawFunc(func(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
		ui.handleFooterResize(width)

		helpText := ui.getHelpText()
		statusText := " " + ui.statusRenderer.Render() + " "

		isWide := width >= FooterBreakpoint
		usedHeight := height
		if isWide && height > FooterHeightWide {
			usedHeight = FooterHeightWide
		}

		if isWide {
			ui.drawWideFooter(screen, x, y, width, usedHeight, helpText, statusText)
		} else {
			ui.drawNarrowFooter(screen, x, y, width, height, helpText, statusText)
		}

		return x, y, width, height
	})

	return box
}
