package log

import (
	"fmt"

	"wallet-connect-tui/helpers"
	"wallet-connect-tui/styles"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"
)

// PanelHeight returns the viewport height for a screen of the given height.
// The panel takes at most a third of the screen and never more than 15 lines.
func PanelHeight(height int) int {
	// header (2 lines), nav (3 lines), title + borders (4 lines), margins (1 line)
	reservedHeight := 10
	availableHeight := helpers.Max(3, height-reservedHeight)
	return helpers.Min(availableHeight, helpers.Max(3, helpers.Min(height/3, 15)))
}

// Render renders the provider log panel
func Render(width, height int, logReady bool, logSpinnerView string, vp viewport.Model) string {
	title := lipgloss.NewStyle().
		Foreground(styles.CAccent2).
		Bold(true).
		Render("Provider Log")

	logPanelHeight := PanelHeight(height)
	vp.Height = logPanelHeight

	border := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.CBorder).
		Padding(0, 1).
		Width(helpers.Max(0, width-2)).
		Height(logPanelHeight + 2)

	if !logReady {
		return border.Render(title + "\n\n" + "initializing...\n" + logSpinnerView)
	}

	scrollInfo := ""
	if vp.TotalLineCount() > vp.Height {
		scrollInfo = lipgloss.NewStyle().
			Foreground(styles.CMuted).
			Render(fmt.Sprintf(" [%d%%]", int(vp.ScrollPercent()*100)))
	}

	return border.Render(title + scrollInfo + "\n\n" + vp.View())
}
