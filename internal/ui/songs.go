package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/groove-cli/internal/player"
	"github.com/glebovdev/groove-cli/internal/track"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	colLiked = iota
	colPlaying
	colTitle
	colAuthor
	colAdded
)

const maxTitleWidth = 40

func (ui *UI) createSearchInput() *tview.InputField {
	input := tview.NewInputField().
		SetLabel(" Search: ").
		SetText(ui.query).
		SetPlaceholder("title, then Enter")

	input.SetLabelColor(ui.colors.foreground).
		SetFieldBackgroundColor(ui.colors.background).
		SetFieldTextColor(ui.colors.highlight).
		SetPlaceholderTextColor(ui.colors.borders).
		SetBackgroundColor(ui.colors.background)

	input.SetDoneFunc(func(key tcell.Key) {
		switch key {
		case tcell.KeyEnter:
			ui.runSearch(input.GetText())
		case tcell.KeyEscape:
			input.SetText(ui.query)
		}
		ui.app.SetFocus(ui.trackList)
	})

	return input
}

func (ui *UI) createTrackListTable() *tview.Table {
	table := tview.NewTable().
		SetBorders(false).
		SetSeparator(' ').
		SetSelectable(true, false).
		SetFixed(1, 0)

	table.SetBorder(true).
		SetTitle(ui.trackListTitle()).
		SetBorderColor(ui.colors.borders).
		SetTitleColor(ui.colors.foreground).
		SetBackgroundColor(ui.colors.background).
		SetBorderPadding(1, 0, 1, 1)

	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(ui.colors.background).
		Background(ui.colors.highlight))

	headerCell := func(text string) *tview.TableCell {
		return tview.NewTableCell(text).
			SetTextColor(ui.colors.trackListHeaderForeground).
			SetBackgroundColor(ui.colors.trackListHeaderBackground).
			SetSelectable(false)
	}

	table.SetCell(0, colLiked, headerCell(" ").SetMaxWidth(2))
	table.SetCell(0, colPlaying, headerCell(" ").SetMaxWidth(2))
	table.SetCell(0, colTitle, headerCell("Title").SetExpansion(2))
	table.SetCell(0, colAuthor, headerCell("Artist").SetExpansion(1))
	table.SetCell(0, colAdded, headerCell("Added").SetAlign(tview.AlignRight))

	ui.trackList = table
	ui.fillTrackRows()

	table.SetSelectionChangedFunc(func(row, column int) {
		if t := ui.catalog.GetTrack(row - 1); t != nil {
			ui.selectedTrackID = t.ID
		}
	})

	return table
}

func (ui *UI) trackListTitle() string {
	name := "Songs"
	switch {
	case ui.likedView:
		name = "Liked songs"
	case ui.query != "":
		name = fmt.Sprintf("Songs matching %q", ui.query)
	}
	return fmt.Sprintf(" %s (%d) ", name, ui.catalog.TrackCount())
}

func (ui *UI) fillTrackRows() {
	count := ui.catalog.TrackCount()
	for row := ui.trackList.GetRowCount() - 1; row > count; row-- {
		ui.trackList.RemoveRow(row)
	}
	for i := 0; i < count; i++ {
		ui.setTrackRow(ui.trackList, i+1, i)
	}
}

func (ui *UI) setTrackRow(table *tview.Table, row int, index int) {
	t := ui.catalog.GetTrack(index)
	if t == nil {
		return
	}

	ui.mu.Lock()
	liked := ui.config.IsLiked(t.ID)
	ui.mu.Unlock()

	likedIcon := " "
	if liked {
		likedIcon = "♥"
	}
	table.SetCell(row, colLiked, tview.NewTableCell(likedIcon).
		SetTextColor(ui.colors.highlight).
		SetMaxWidth(2))

	table.SetCell(row, colPlaying, tview.NewTableCell(ui.playingIcon(t.ID)).
		SetTextColor(ui.colors.foreground).
		SetMaxWidth(2))

	table.SetCell(row, colTitle, tview.NewTableCell(tview.Escape(t.Title)).
		SetTextColor(ui.colors.foreground).
		SetMaxWidth(maxTitleWidth).
		SetExpansion(2))

	table.SetCell(row, colAuthor, tview.NewTableCell(tview.Escape(t.Author)).
		SetTextColor(ui.colors.foreground).
		SetMaxWidth(27).
		SetExpansion(1))

	table.SetCell(row, colAdded, tview.NewTableCell(formatAdded(t.CreatedAt)).
		SetTextColor(ui.colors.foreground).
		SetAlign(tview.AlignRight))
}

func (ui *UI) playingIcon(id string) string {
	s := ui.controller.State()
	if s.ActiveID != id {
		return " "
	}
	return playbackIcon(s.Phase)
}

func playbackIcon(phase player.PlayerState) string {
	switch phase {
	case player.StatePlaying:
		return "➤"
	case player.StatePaused:
		return PauseIcon
	case player.StateLoading:
		return "…"
	case player.StateError:
		return "✗"
	case player.StateEnded:
		return "■"
	default:
		return " "
	}
}

// selectedTrack returns the highlighted row's track.
func (ui *UI) selectedTrack() *track.Track {
	row, _ := ui.trackList.GetSelection()
	return ui.catalog.GetTrack(row - 1)
}

// playSelected makes the visible listing the queue and starts the highlighted track.
func (ui *UI) playSelected() {
	t := ui.selectedTrack()
	if t == nil {
		return
	}
	log.Debug().Str("id", t.ID).Msgf("Playing %s", t.DisplayName())
	ui.queue.Reset(ui.catalog.TrackIDs(), t.ID)
}

func (ui *UI) selectAndShowTrack(index int) {
	t := ui.catalog.GetTrack(index)
	if t == nil {
		return
	}

	ui.trackList.Select(index+1, 0)
	ui.selectedTrackID = t.ID
	ui.showTrack(t)

	log.Debug().Msgf("Showing track info (without playing): %s", t.DisplayName())
}

func (ui *UI) toggleLiked() {
	t := ui.selectedTrack()
	if t == nil {
		return
	}

	ui.mu.Lock()
	liked := ui.config.ToggleLiked(t.ID)
	ui.mu.Unlock()

	row, _ := ui.trackList.GetSelection()
	if cell := ui.trackList.GetCell(row, colLiked); cell != nil {
		if liked {
			cell.SetText("♥")
		} else {
			cell.SetText(" ")
		}
	}

	go ui.SaveConfig()

	log.Debug().Bool("liked", liked).Msgf("Toggled liked for track: %s", t.DisplayName())
}

func (ui *UI) toggleLikedView() {
	ui.likedView = !ui.likedView
	likedView := ui.likedView
	query := ui.query

	go func() {
		if likedView {
			ui.catalog.Liked(ui.likedIDs())
		} else {
			ui.catalog.Search(query)
		}
		ui.app.QueueUpdateDraw(func() {
			ui.refreshTrackTable()
		})
	}()
}

func (ui *UI) runSearch(query string) {
	ui.query = query
	ui.likedView = false

	go func() {
		ui.catalog.Search(query)
		ui.app.QueueUpdateDraw(func() {
			ui.refreshTrackTable()
			if ui.catalog.TrackCount() > 0 {
				ui.trackList.Select(1, 0)
			}
		})
	}()
}

// refreshTrackTable redraws the listing after the catalog changed, keeping the selection by id.
func (ui *UI) refreshTrackTable() {
	ui.fillTrackRows()

	if ui.selectedTrackID != "" {
		if index := ui.catalog.FindIndexByID(ui.selectedTrackID); index >= 0 {
			ui.trackList.Select(index+1, 0)
		}
	}

	ui.trackList.SetTitle(ui.trackListTitle())

	log.Debug().Int("count", ui.catalog.TrackCount()).Msg("Track table refreshed")
}

func (ui *UI) refreshTrackRows() {
	if ui.trackList == nil {
		return
	}
	count := ui.catalog.TrackCount()
	for i := 0; i < count; i++ {
		t := ui.catalog.GetTrack(i)
		if t == nil {
			continue
		}
		if cell := ui.trackList.GetCell(i+1, colPlaying); cell != nil {
			cell.SetText(ui.playingIcon(t.ID))
		}
		if cell := ui.trackList.GetCell(i+1, colTitle); cell != nil {
			cell.SetText(tview.Escape(t.Title))
		}
	}
}

func (ui *UI) updateTrackListPlayingIndicator() {
	s := ui.controller.State()
	index := ui.catalog.FindIndexByID(s.ActiveID)
	if index < 0 {
		return
	}

	t := ui.catalog.GetTrack(index)
	if t == nil {
		return
	}

	row := index + 1
	if cell := ui.trackList.GetCell(row, colPlaying); cell != nil {
		cell.SetText(playbackIcon(s.Phase))
	}

	titleCell := ui.trackList.GetCell(row, colTitle)
	if titleCell == nil {
		return
	}

	title := t.Title
	indicator := ui.getPlayingIndicator()

	maxLen := maxTitleWidth - len([]rune(indicator)) - 1
	if runes := []rune(title); len(runes) > maxLen {
		title = string(runes[:maxLen-3]) + "..."
	}

	titleCell.SetText(tview.Escape(title) + " " + indicator)
}
