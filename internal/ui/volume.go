package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/groove-cli/internal/config"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

// volumePercent converts a [0,1] volume into a whole percentage.
func volumePercent(volume float64) int {
	return int(config.ClampVolume(volume)*100 + 0.5)
}

func (ui *UI) buildVolumeBar(container *tview.Flex) {
	const barHeight = 10

	percent := volumePercent(ui.controller.State().Transport.Volume)
	isMuted := percent == 0

	filledLines := (percent * barHeight) / 100
	emptyLines := barHeight - filledLines

	createText := func(text string, color tcell.Color) *tview.TextView {
		tv := tview.NewTextView()
		tv.SetText(text)
		tv.SetTextAlign(tview.AlignRight)
		tv.SetTextColor(color)
		tv.SetBackgroundColor(ui.colors.background)
		return tv
	}

	createBarLine := func(barText string, barColor tcell.Color, label string, labelColor tcell.Color) *tview.Flex {
		line := tview.NewFlex().SetDirection(tview.FlexColumn)
		line.SetBackgroundColor(ui.colors.background)
		line.AddItem(createText(label, labelColor), 4, 0, false)
		line.AddItem(createText(barText, barColor), 0, 1, false)
		return line
	}

	container.AddItem(createText("   max", ui.colors.foreground), 1, 0, false)

	for i := 0; i < emptyLines; i++ {
		label, labelColor := "    ", ui.colors.foreground
		if isMuted && i == emptyLines-1 {
			label, labelColor = "off", ui.colors.mutedVolume
		}
		container.AddItem(createBarLine(" ░░", ui.colors.foreground, label, labelColor), 1, 0, false)
	}

	for i := 0; i < filledLines; i++ {
		label := "    "
		if i == 0 {
			label = fmt.Sprintf("%d%%", percent)
		}
		container.AddItem(createBarLine(" ██", ui.colors.highlight, label, ui.colors.highlight), 1, 0, false)
	}

	container.AddItem(createText("   min", ui.colors.foreground), 1, 0, false)

	container.AddItem(nil, 0, 1, false)
}

func (ui *UI) createGraphicalVolumeBar() *tview.Flex {
	volumeContainer := tview.NewFlex().SetDirection(tview.FlexRow)
	volumeContainer.SetBackgroundColor(ui.colors.background)
	ui.buildVolumeBar(volumeContainer)
	return volumeContainer
}

func (ui *UI) updateVolumeDisplay() {
	if ui.volumeView != nil {
		ui.volumeView.Clear()
		ui.buildVolumeBar(ui.volumeView)
	}
}

func (ui *UI) adjustVolume(delta float64) {
	volume := config.ClampVolume(ui.controller.State().Transport.Volume + delta)
	ui.controller.SetVolume(volume)
	log.Debug().Msgf("Volume adjusted to %d%%", volumePercent(volume))
}
