package ui

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/groove-cli/internal/config"
	"github.com/glebovdev/groove-cli/internal/player"
	"github.com/glebovdev/groove-cli/internal/queue"
	"github.com/glebovdev/groove-cli/internal/service"
	"github.com/glebovdev/groove-cli/internal/track"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	VolumeStep            = 0.05
	SeekStep              = 5 * time.Second
	HeaderHeight          = 3
	FooterHeightWide      = 3 // Wide: 1 row with padding (top + text + bottom)
	FooterHeightNarrow    = 6 // Narrow: 2 rows × 3 lines each
	CoverWidth            = 26
	CoverHeight           = 12
	PlayerPanelHeight     = 12
	FooterBreakpoint      = 130 // Width threshold for responsive footer
	ScrubBarWidth         = 40
	RefreshInterval       = 60 * time.Second
	MinLoadingDisplayTime = 1200 * time.Millisecond
	MinStatusDisplayTime  = 300 * time.Millisecond
)

// PauseIcon uses platform-specific character (Windows renders ⏸ as emoji)
var PauseIcon = func() string {
	if runtime.GOOS == "windows" {
		return "❚❚"
	}
	return "⏸"
}()

// Options holds command line choices that affect the first screen.
type Options struct {
	Query string
	Liked bool
}

type UI struct {
	app             *tview.Application
	catalog         *service.CatalogService
	queue           *queue.Queue
	controller      *player.Controller
	shownTrack      *track.Track
	trackList       *tview.Table
	searchInput     *tview.InputField
	helpPanel       *tview.Box
	contentLayout   *tview.Flex
	playerPanel     *tview.Flex
	statusLineView  *tview.TextView
	scrubView       *tview.TextView
	coverPanel      *tview.Image
	volumeView      *tview.Flex
	mainLayout      *tview.Flex
	loadingScreen   *tview.Flex
	loadingText     *tview.TextView
	progressBar     *tview.TextView
	pages           *tview.Pages
	stopUpdates     chan struct{}
	selectedTrackID string
	query           string
	likedView       bool
	lastState       player.State
	config          *config.Config
	lastFooterWidth int // Track width to detect layout changes
	mu              sync.Mutex
	animationFrame  int
	playingSpinner  *PlayingSpinner
	statusRenderer  *StatusRenderer
	colors          struct {
		background                tcell.Color
		foreground                tcell.Color
		borders                   tcell.Color
		highlight                 tcell.Color
		mutedVolume               tcell.Color
		headerBackground          tcell.Color
		trackListHeaderBackground tcell.Color
		trackListHeaderForeground tcell.Color
		helpBackground            tcell.Color
		helpForeground            tcell.Color
		helpHotkey                tcell.Color
		progressBackground        tcell.Color
		modalBackground           tcell.Color
	}
}

func NewUI(controller *player.Controller, q *queue.Queue, catalog *service.CatalogService, cfg *config.Config, opts Options) *UI {
	ui := &UI{
		app:         tview.NewApplication(),
		controller:  controller,
		queue:       q,
		catalog:     catalog,
		stopUpdates: make(chan struct{}),
		query:       opts.Query,
		likedView:   opts.Liked,
		lastState:   controller.State(),
		config:      cfg,
	}

	ui.colors.background = config.GetColor(cfg.Theme.Background)
	ui.colors.foreground = config.GetColor(cfg.Theme.Foreground)
	ui.colors.borders = config.GetColor(cfg.Theme.Borders)
	ui.colors.highlight = config.GetColor(cfg.Theme.Highlight)
	ui.colors.mutedVolume = config.GetColor(cfg.Theme.MutedVolume)
	ui.colors.headerBackground = config.GetColor(cfg.Theme.HeaderBackground)
	ui.colors.trackListHeaderBackground = config.GetColor(cfg.Theme.TrackListHeaderBackground)
	ui.colors.trackListHeaderForeground = config.GetColor(cfg.Theme.TrackListHeaderForeground)
	ui.colors.helpBackground = config.GetColor(cfg.Theme.HelpBackground)
	ui.colors.helpForeground = config.GetColor(cfg.Theme.HelpForeground)
	ui.colors.helpHotkey = config.GetColor(cfg.Theme.HelpHotkey)
	ui.colors.progressBackground = config.GetColor(cfg.Theme.ProgressBackground)
	ui.colors.modalBackground = config.GetColor(cfg.Theme.ModalBackground)

	ui.statusRenderer = NewStatusRenderer(controller)
	ui.statusRenderer.SetPrimaryColor(ui.colors.highlight.String())

	return ui
}

func (ui *UI) SaveConfig() {
	ui.mu.Lock()
	defer ui.mu.Unlock()

	s := ui.lastState
	ui.config.Volume = s.Transport.Volume
	ui.config.Loop = s.Transport.Looping
	ui.config.Shuffle = s.Transport.Shuffling
	if s.ActiveID != "" {
		ui.config.LastTrack = s.ActiveID
	}

	if err := ui.config.Save(); err != nil {
		log.Error().Err(err).Msg("Failed to save config")
	}
}

func (ui *UI) safeCloseChannel() {
	ui.mu.Lock()
	defer ui.mu.Unlock()

	if ui.stopUpdates != nil {
		select {
		case <-ui.stopUpdates:
			// Already closed
		default:
			close(ui.stopUpdates)
		}
		ui.stopUpdates = nil
	}
}

func (ui *UI) stop() {
	ui.controller.SetOnChange(nil)
	ui.catalog.StopPeriodicRefresh()
	ui.safeCloseChannel()
	ui.SaveConfig()
	ui.app.Stop()
}

// Shutdown stops the UI gracefully from external callers (e.g., signal handlers).
func (ui *UI) Shutdown() {
	ui.app.QueueUpdateDraw(func() {
		ui.stop()
	})
}

func (ui *UI) Run() error {
	ui.setupLoadingScreen()
	ui.app.SetRoot(ui.loadingScreen, true)
	ui.configureScreen()

	go ui.initAsync()

	return ui.app.Run()
}

func (ui *UI) configureScreen() {
	bgStyle := tcell.StyleDefault.Background(ui.colors.background)
	ui.app.SetBeforeDrawFunc(func(screen tcell.Screen) bool {
		screen.SetStyle(bgStyle)
		screen.Clear()
		return false
	})

	var titleSet sync.Once
	ui.app.SetAfterDrawFunc(func(screen tcell.Screen) {
		titleSet.Do(func() { screen.SetTitle(config.AppName) })
	})
}

func (ui *UI) initAsync() {
	if err := ui.fetchTracksAndInitUI(); err != nil {
		ui.app.QueueUpdateDraw(func() {
			ui.handleInitialError(err)
		})
	}
}

func (ui *UI) setupLoadingScreen() {
	ui.loadingText = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText("Connecting to catalog... (1/3)")
	ui.loadingText.SetTextColor(ui.colors.foreground).
		SetBackgroundColor(ui.colors.background)

	ui.progressBar = tview.NewTextView().
		SetTextAlign(tview.AlignCenter).
		SetText(ui.renderProgressBar(0))
	ui.progressBar.SetTextColor(ui.colors.highlight).
		SetBackgroundColor(ui.colors.background)

	content := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(ui.loadingText, 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(ui.progressBar, 1, 0, false)
	content.SetBackgroundColor(ui.colors.background)

	ui.loadingScreen = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(content, 3, 0, false).
		AddItem(nil, 0, 1, false)

	ui.loadingScreen.SetBackgroundColor(ui.colors.background)
}

func (ui *UI) renderProgressBar(percent int) string {
	const width = 30
	filled := (percent * width) / 100
	empty := width - filled
	return strings.Repeat("█", filled) + strings.Repeat("░", empty)
}

func (ui *UI) animateProgress(fromPercent, toPercent int, duration time.Duration) {
	steps := toPercent - fromPercent
	if steps <= 0 {
		return
	}
	stepDuration := duration / time.Duration(steps)
	lastBar := ui.renderProgressBar(fromPercent)

	for p := fromPercent + 1; p <= toPercent; p++ {
		time.Sleep(stepDuration)
		if bar := ui.renderProgressBar(p); bar != lastBar {
			ui.app.QueueUpdateDraw(func() {
				ui.progressBar.SetText(bar)
			})
			lastBar = bar
		}
	}
}

func (ui *UI) fetchTracksAndInitUI() error {
	const totalStages = 3
	stagePercent := func(stage int) int { return (stage * 100) / totalStages }

	startTime := time.Now()

	animDone := make(chan struct{})
	go func() {
		ui.animateProgress(stagePercent(0), stagePercent(1), MinStatusDisplayTime)
		close(animDone)
	}()

	_, err := ui.catalog.GetSongs()
	if err != nil {
		return fmt.Errorf("failed to fetch songs: %w", err)
	}
	log.Debug().Msgf("Loaded %d songs in %v", ui.catalog.TrackCount(), time.Since(startTime))

	<-animDone

	ui.app.QueueUpdateDraw(func() {
		ui.loadingText.SetText("Loading configuration... (2/3)")
	})

	ui.mu.Lock()
	ui.config.CleanupLiked(ui.catalog.GetValidTrackIDs())
	ui.mu.Unlock()
	ui.SaveConfig()

	switch {
	case ui.likedView:
		ui.catalog.Liked(ui.likedIDs())
	case ui.query != "":
		ui.catalog.Search(ui.query)
	}

	ui.animateProgress(stagePercent(1), stagePercent(2), MinStatusDisplayTime)

	ui.app.QueueUpdateDraw(func() {
		ui.loadingText.SetText("Building interface... (3/3)")
	})

	ui.setupUI()
	ui.catalog.StartPeriodicRefresh(RefreshInterval, ui.onTracksRefreshed)

	ui.animateProgress(stagePercent(2), stagePercent(3), MinStatusDisplayTime)

	if elapsed := time.Since(startTime); elapsed < MinLoadingDisplayTime {
		time.Sleep(MinLoadingDisplayTime - elapsed)
	}
	log.Debug().Msgf("Total loading time: %v", time.Since(startTime))

	ui.app.QueueUpdateDraw(func() {
		ui.app.SetRoot(ui.pages, true).EnableMouse(true)
		ui.app.SetFocus(ui.trackList)

		ui.controller.SetOnChange(ui.onPlayerStateChanged)
		ui.startAnimation()

		if ui.config.LastTrack == "" {
			ui.selectAndShowTrack(0)
			return
		}

		index := ui.catalog.FindIndexByID(ui.config.LastTrack)
		if index < 0 {
			log.Debug().Msgf("Last track '%s' not found, showing first track", ui.config.LastTrack)
			ui.selectAndShowTrack(0)
			return
		}
		ui.selectAndShowTrack(index)
	})

	return nil
}

func (ui *UI) likedIDs() []string {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return append([]string(nil), ui.config.Liked...)
}

func (ui *UI) setupUI() {
	header := ui.createHeader()

	ui.playerPanel = tview.NewFlex().SetDirection(tview.FlexRow)
	ui.playerPanel.SetBackgroundColor(ui.colors.background)

	ui.searchInput = ui.createSearchInput()
	ui.trackList = ui.createTrackListTable()

	ui.helpPanel = ui.createFooter()

	ui.contentLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(header, HeaderHeight, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(ui.playerPanel, PlayerPanelHeight, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(ui.searchInput, 1, 0, false).
		AddItem(ui.trackList, 0, 1, true).
		AddItem(ui.helpPanel, FooterHeightWide, 0, false)
	ui.contentLayout.SetBackgroundColor(ui.colors.background)

	wrapper := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(nil, 3, 0, false).
		AddItem(ui.contentLayout, 0, 1, true).
		AddItem(nil, 3, 0, false)
	wrapper.SetBackgroundColor(ui.colors.background)

	ui.mainLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 1, 0, false).
		AddItem(wrapper, 0, 1, true).
		AddItem(nil, 1, 0, false)
	ui.mainLayout.SetBackgroundColor(ui.colors.background)

	ui.pages = tview.NewPages().
		AddPage("main", ui.mainLayout, true, true)
	ui.pages.SetBackgroundColor(ui.colors.background)

	ui.app.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if ui.pages.HasPage("modal") || ui.pages.HasPage("error-modal") {
			return event
		}
		if ui.app.GetFocus() == ui.searchInput {
			return event
		}
		return ui.globalInputHandler(event)
	})
}

func (ui *UI) createHeader() tview.Primitive {
	titleView := tview.NewTextView()
	titleView.SetText(" " + config.AppName)
	titleView.SetTextAlign(tview.AlignLeft)
	titleView.SetTextColor(ui.colors.foreground)
	titleView.SetBackgroundColor(ui.colors.headerBackground)

	versionView := tview.NewTextView()
	versionView.SetText("v" + config.AppVersion + " ")
	versionView.SetTextAlign(tview.AlignRight)
	versionView.SetTextColor(ui.colors.foreground)
	versionView.SetBackgroundColor(ui.colors.headerBackground)

	textFlex := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(titleView, 0, 1, false).
		AddItem(versionView, 10, 0, false)
	textFlex.SetBackgroundColor(ui.colors.headerBackground)

	topSpacer := tview.NewBox().SetBackgroundColor(ui.colors.headerBackground)
	bottomSpacer := tview.NewBox().SetBackgroundColor(ui.colors.headerBackground)
	leftSpacer := tview.NewBox().SetBackgroundColor(ui.colors.headerBackground)
	rightSpacer := tview.NewBox().SetBackgroundColor(ui.colors.headerBackground)

	textWithPadding := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(leftSpacer, 1, 0, false).
		AddItem(textFlex, 0, 1, false).
		AddItem(rightSpacer, 1, 0, false)
	textWithPadding.SetBackgroundColor(ui.colors.headerBackground)

	headerFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(topSpacer, 1, 0, false).
		AddItem(textWithPadding, 1, 0, false).
		AddItem(bottomSpacer, 1, 0, false)
	headerFlex.SetBackgroundColor(ui.colors.headerBackground)

	return headerFlex
}

func (ui *UI) updateCoverPanel(t *track.Track) {
	trackID := t.ID
	go func() {
		img, err := ui.catalog.LoadCover(t)
		ui.app.QueueUpdateDraw(func() {
			if ui.shownTrack == nil || ui.shownTrack.ID != trackID || ui.coverPanel == nil {
				return
			}
			if err != nil {
				message := "♪"
				if !errors.Is(err, service.ErrNoCover) {
					log.Debug().Err(err).Str("id", trackID).Msg("Failed to load cover")
					message = "No cover"
				}
				ui.coverPanel.SetDrawFunc(func(screen tcell.Screen, x, y, width, height int) (int, int, int, int) {
					tview.Print(screen, message, x, y+height/2, width, tview.AlignCenter, ui.colors.borders)
					return x, y, width, height
				})
				return
			}
			ui.coverPanel.SetImage(img)
		})
	}()
}

// showTrack rebuilds the player panel for t.
func (ui *UI) showTrack(t *track.Track) {
	if t == nil {
		return
	}
	ui.shownTrack = t

	ui.playerPanel.Clear()
	ui.playerPanel.AddItem(ui.createContentPanel(t), 0, 1, false)
	ui.renderTransport(ui.controller.State())

	ui.updateCoverPanel(t)
}

func (ui *UI) createContentPanel(t *track.Track) *tview.Flex {
	ui.coverPanel = tview.NewImage()
	ui.coverPanel.SetBackgroundColor(ui.colors.background)
	ui.coverPanel.SetAlign(tview.AlignLeft, tview.AlignTop)

	newLabel := func(text string) *tview.TextView {
		label := tview.NewTextView()
		label.SetText(text)
		label.SetTextColor(ui.colors.foreground)
		label.SetBackgroundColor(ui.colors.background)
		label.SetWrap(false)
		return label
	}

	newValue := func(text string, color tcell.Color, bold bool) *tview.TextView {
		view := tview.NewTextView()
		view.SetDynamicColors(true)
		view.SetText(fmt.Sprintf(" [%s]%s[-]", color.String(), tview.Escape(text)))
		view.SetTextColor(color)
		view.SetBackgroundColor(ui.colors.background)
		view.SetWrap(false)
		style := tcell.StyleDefault.Background(ui.colors.background)
		if bold {
			style = style.Attributes(tcell.AttrBold)
		}
		view.SetTextStyle(style)
		return view
	}

	author := t.Author
	if author == "" {
		author = "Unknown artist"
	}

	ui.statusLineView = tview.NewTextView()
	ui.statusLineView.SetDynamicColors(true)
	ui.statusLineView.SetTextColor(ui.colors.foreground)
	ui.statusLineView.SetBackgroundColor(ui.colors.background)
	ui.statusLineView.SetWrap(false)

	ui.scrubView = tview.NewTextView()
	ui.scrubView.SetDynamicColors(true)
	ui.scrubView.SetTextColor(ui.colors.foreground)
	ui.scrubView.SetBackgroundColor(ui.colors.background)
	ui.scrubView.SetWrap(false)

	infoSpacer := tview.NewBox().SetBackgroundColor(ui.colors.background)

	infoContent := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(newLabel(" Title:"), 1, 0, false).
		AddItem(newValue(t.Title, ui.colors.highlight, true), 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(newLabel(" Artist:"), 1, 0, false).
		AddItem(newValue(author, ui.colors.foreground, false), 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(newLabel(" Added:"), 1, 0, false).
		AddItem(newValue(formatAdded(t.CreatedAt), ui.colors.foreground, false), 1, 0, false).
		AddItem(nil, 1, 0, false).
		AddItem(ui.statusLineView, 1, 0, false).
		AddItem(ui.scrubView, 1, 0, false).
		AddItem(infoSpacer, 0, 1, false)
	infoContent.SetBackgroundColor(ui.colors.background)

	ui.volumeView = ui.createGraphicalVolumeBar()

	// Wrap cover in vertical flex to constrain height
	coverWrapper := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.coverPanel, CoverHeight, 0, false).
		AddItem(nil, 0, 1, false)
	coverWrapper.SetBackgroundColor(ui.colors.background)

	contentFlex := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(coverWrapper, CoverWidth, 0, false).
		AddItem(infoContent, 0, 1, false).
		AddItem(ui.volumeView, 7, 0, false)
	contentFlex.SetBackgroundColor(ui.colors.background)

	contentWithPadding := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(nil, 4, 0, false).
		AddItem(contentFlex, 0, 1, false).
		AddItem(nil, 4, 0, false)
	contentWithPadding.SetBackgroundColor(ui.colors.background)

	return contentWithPadding
}

// renderTransport refreshes the parts of the player panel that follow playback.
func (ui *UI) renderTransport(s player.State) {
	if ui.statusLineView == nil || ui.scrubView == nil {
		return
	}

	showsActive := ui.shownTrack != nil && s.HasTrack() && ui.shownTrack.ID == s.ActiveID
	if !showsActive {
		ui.statusLineView.SetText(" Not playing")
		ui.scrubView.SetText(" " + renderScrubBar(0, 0, ScrubBarWidth, ui.colors.borders.String(), ui.colors.borders.String()))
		ui.updateVolumeDisplay()
		return
	}

	tr := s.Transport
	ui.statusLineView.SetText(fmt.Sprintf(" %s  %s / -%s",
		playbackIcon(s.Phase),
		formatTime(tr.CurrentTime),
		formatTime(tr.Remaining())))
	ui.scrubView.SetText(" " + renderScrubBar(tr.CurrentTime, tr.Duration, ScrubBarWidth,
		ui.colors.highlight.String(), ui.colors.borders.String()))
	ui.updateVolumeDisplay()
}

type PlayingSpinner struct {
	Frames []string
	FPS    time.Duration
}

func NewPlayingSpinner() *PlayingSpinner {
	return &PlayingSpinner{
		Frames: []string{"⣾ ", "⣽ ", "⣻ ", "⢿ ", "⡿ ", "⣟ ", "⣯ ", "⣷ "},
		FPS:    time.Second / 10,
	}
}

func (ui *UI) getPlayingIndicator() string {
	if ui.playingSpinner == nil {
		ui.playingSpinner = NewPlayingSpinner()
	}

	frameIndex := ui.animationFrame % len(ui.playingSpinner.Frames)
	return ui.playingSpinner.Frames[frameIndex]
}

func (ui *UI) startAnimation() {
	if ui.playingSpinner == nil {
		ui.playingSpinner = NewPlayingSpinner()
	}

	ui.mu.Lock()
	stop := ui.stopUpdates
	ui.mu.Unlock()
	if stop == nil {
		return
	}

	go func() {
		animationTicker := time.NewTicker(ui.playingSpinner.FPS)
		defer animationTicker.Stop()

		for {
			select {
			case <-stop:
				return
			case <-animationTicker.C:
				ui.mu.Lock()
				ui.animationFrame++
				ui.mu.Unlock()

				ui.statusRenderer.AdvanceAnimation()

				if phase := ui.controller.State().Phase; phase != player.StatePlaying && phase != player.StateLoading {
					continue
				}
				ui.app.QueueUpdateDraw(func() {
					ui.updateTrackListPlayingIndicator()
				})
			}
		}
	}()
}

// onPlayerStateChanged runs on the controller goroutine.
func (ui *UI) onPlayerStateChanged(s player.State) {
	ui.app.QueueUpdateDraw(func() {
		ui.applyPlayerState(s)
	})
}

func (ui *UI) applyPlayerState(s player.State) {
	ui.mu.Lock()
	prev := ui.lastState
	ui.lastState = s
	ui.mu.Unlock()

	if s.ActiveID != prev.ActiveID && s.ActiveID != "" {
		if t, ok := ui.catalog.TrackByID(s.ActiveID); ok {
			ui.showTrack(&t)
		}
		if index := ui.catalog.FindIndexByID(s.ActiveID); index >= 0 && ui.app.GetFocus() == ui.trackList {
			ui.trackList.Select(index+1, 0)
		}
	}

	if s.ActiveID != prev.ActiveID || s.Phase != prev.Phase {
		ui.refreshTrackRows()
	}

	ui.renderTransport(s)

	if s.Phase == player.StateError && prev.Phase != player.StateError {
		ui.showPlaybackErrorModal(friendlyErrorMessage(s.LastError))
	}

	if settingsChanged(prev, s) {
		go ui.SaveConfig()
	}
}

func settingsChanged(prev, next player.State) bool {
	return prev.Transport.Volume != next.Transport.Volume ||
		prev.Transport.Looping != next.Transport.Looping ||
		prev.Transport.Shuffling != next.Transport.Shuffling ||
		(next.ActiveID != "" && prev.ActiveID != next.ActiveID)
}

func (ui *UI) onTracksRefreshed(tracks []track.Track) {
	ui.app.QueueUpdateDraw(func() {
		ui.refreshTrackTable()
	})
}

func (ui *UI) togglePlay() {
	switch ui.controller.State().Phase {
	case player.StateIdle:
		ui.playSelected()
	case player.StateError:
		ui.controller.Retry()
	default:
		ui.controller.TogglePlay()
	}
}

func (ui *UI) seekBy(delta time.Duration) {
	s := ui.controller.State()
	if !s.HasTrack() {
		return
	}
	ui.controller.Seek(s.Transport.CurrentTime + delta)
}

func (ui *UI) globalInputHandler(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyRune:
		switch event.Rune() {
		case 'q', 'Q':
			ui.stop()
			return nil
		case ' ':
			ui.togglePlay()
			return nil
		case '>', 'n':
			ui.controller.PlayNext()
			return nil
		case '<', 'p':
			ui.controller.PlayPrevious()
			return nil
		case 'r', 'R':
			ui.controller.ToggleLoop()
			return nil
		case 's', 'S':
			ui.controller.ToggleShuffle()
			return nil
		case 'f', 'F':
			ui.toggleLiked()
			return nil
		case 'L', 'l':
			ui.toggleLikedView()
			return nil
		case '/':
			ui.app.SetFocus(ui.searchInput)
			return nil
		case '+', '=':
			ui.adjustVolume(VolumeStep)
			return nil
		case '-', '_':
			ui.adjustVolume(-VolumeStep)
			return nil
		case 'm', 'M':
			ui.controller.ToggleMute()
			return nil
		case '?':
			ui.showHelpModal()
			return nil
		case 'a', 'A':
			ui.showAboutModal()
			return nil
		}
	case tcell.KeyEnter:
		ui.playSelected()
		return nil
	case tcell.KeyEscape:
		ui.stop()
		return nil
	case tcell.KeyRight:
		ui.seekBy(SeekStep)
		return nil
	case tcell.KeyLeft:
		ui.seekBy(-SeekStep)
		return nil
	}
	return event
}
