package endpoints

import (
	"strings"

	"wallet-connect-tui/config"
	"wallet-connect-tui/styles"

	"github.com/charmbracelet/lipgloss"
)

// Nav returns the navigation bar for the endpoint list
func Nav(width int, editing bool) string {
	var left string
	if editing {
		left = strings.Join([]string{
			styles.Key("Enter") + " next/save",
			styles.Key("Esc") + " cancel",
		}, "   ")
	} else {
		left = strings.Join([]string{
			styles.Key("↑/↓") + " select",
			styles.Key("Enter") + " activate",
			styles.Key("a") + " add",
			styles.Key("e") + " edit",
			styles.Key("x") + " delete",
			styles.Key("l") + " logger",
			styles.Key("Esc") + " back",
		}, "   ")
	}

	return styles.NavStyle.Width(width).Render(left)
}

// Render renders the configured provider endpoints. The connected one is
// marked with a filled dot.
func Render(endpoints []config.Endpoint, selectedIdx int, connectedURL string) string {
	h := styles.TitleStyle.Render("Provider Endpoints")
	muted := lipgloss.NewStyle().Foreground(styles.CMuted)

	lines := []string{h, ""}

	if len(endpoints) == 0 {
		lines = append(lines, muted.Render("No endpoints configured."))
		lines = append(lines, "")
		lines = append(lines, muted.Render("Press ")+styles.Key("a")+muted.Render(" to add your first endpoint."))
		return strings.Join(lines, "\n")
	}

	for i, e := range endpoints {
		var marker string
		switch {
		case i == selectedIdx:
			marker = lipgloss.NewStyle().Foreground(styles.CAccent2).Render("▶ ")
		case e.Active && e.URL == connectedURL:
			marker = lipgloss.NewStyle().Foreground(styles.CAccent).Render("● ")
		default:
			marker = muted.Render("○ ")
		}

		nameStyle := lipgloss.NewStyle().Foreground(styles.CText)
		urlStyle := muted
		if i == selectedIdx {
			nameStyle = nameStyle.Background(styles.CPanel).Foreground(styles.CAccent2).Bold(true)
			urlStyle = urlStyle.Background(styles.CPanel)
		}

		name := nameStyle.Render(e.Name)
		if e.Active {
			name += muted.Render("  (active)")
		}
		lines = append(lines, marker+name)
		lines = append(lines, "  "+urlStyle.Render(e.URL))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
