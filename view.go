package main

import (
	"strings"

	"wallet-connect-tui/helpers"
	"wallet-connect-tui/views/endpoints"
	logview "wallet-connect-tui/views/log"
	walletview "wallet-connect-tui/views/wallet"

	"github.com/charmbracelet/lipgloss"
)

// -------------------- VIEW --------------------

func (m *model) globalHeader() string {
	availableWidth := helpers.Max(0, m.w-8) // Account for panel padding

	// Connected address
	var addrDisplay string
	if m.wallet.Connected && m.wallet.Address != "" {
		addrDisplay = lipgloss.NewStyle().
			Foreground(cAccent2).
			Bold(true).
			Render("Account: " + helpers.FadeString(m.wallet.ShortAddress, "#F25D94", "#EDFF82"))
	} else {
		addrDisplay = lipgloss.NewStyle().
			Foreground(cMuted).
			Render("Account: Not connected")
	}

	rpcDisplay := m.providerStatus()

	// Center title
	titleText := helpers.FadeString("wallet connect", "#7EE787", "#82CFFD")

	// Calculate widths
	addrWidth := lipgloss.Width(addrDisplay)
	rpcWidth := lipgloss.Width(rpcDisplay)
	titleWidth := lipgloss.Width(titleText)
	totalOtherWidth := addrWidth + rpcWidth + titleWidth

	var headerLine string
	if totalOtherWidth+4 > availableWidth {
		// Not enough space, stack vertically
		headerLine = addrDisplay + "\n" + titleText + "\n" + rpcDisplay
	} else {
		// Three-column layout: Address | Title (centered) | Provider
		remainingSpace := availableWidth - totalOtherWidth
		leftPadding := remainingSpace / 2
		rightPadding := remainingSpace - leftPadding

		leftSpacer := strings.Repeat(" ", helpers.Max(1, leftPadding))
		rightSpacer := strings.Repeat(" ", helpers.Max(1, rightPadding))

		headerLine = addrDisplay + leftSpacer + titleText + rightSpacer + rpcDisplay
	}

	separator := lipgloss.NewStyle().
		Foreground(cBorder).
		Render(strings.Repeat("─", availableWidth))

	return headerLine + "\n" + separator
}

// providerStatus renders the provider state with a status dot
func (m *model) providerStatus() string {
	statusIcon := "○"
	statusColor := lipgloss.Color("#c01c28")
	var statusText string

	switch {
	case m.endpoint == "":
		statusText = "No Provider"
	case m.dialing:
		statusText = "Connecting..."
	case m.dialErr != "" || m.provider == nil:
		statusText = "Connection Failed"
	default:
		statusIcon = "●"
		statusColor = cAccent
		statusText = m.endpointName()
		if statusText == "" {
			statusText = "Connected"
		}
	}

	return lipgloss.NewStyle().
		Foreground(statusColor).
		Bold(true).
		Render(statusIcon + " " + statusText)
}

// connectedURL returns the endpoint of the live provider, if any
func (m *model) connectedURL() string {
	if m.provider == nil {
		return ""
	}
	return m.provider.URL
}

// walletPanel collects the presenter state for the wallet view
func (m *model) walletPanel() walletview.Panel {
	p := walletview.Panel{
		Endpoint:     m.endpoint,
		Available:    m.wallet.Adapter().Available(),
		Connected:    m.wallet.Connected,
		Loading:      m.wallet.Loading,
		Address:      m.wallet.Address,
		ShortAddress: m.wallet.ShortAddress,
		Badge:        string(m.wallet.BadgeClass()),
		Balance:      m.wallet.Balance,
		BalanceAt:    m.wallet.BalanceAt,
		Message:      m.wallet.Message,
		Spinner:      m.spin.View(),
	}
	if n := m.wallet.Network; n != nil {
		p.ChainID = n.ChainID
		p.NetworkName = n.Name
	}
	if m.dialErr != "" && p.Message == "" {
		p.Message = "Provider unreachable: " + m.dialErr
	}
	return p
}

func (m *model) View() string {
	headerPanel := panelStyle.Width(helpers.Max(0, m.w-2)).Render(m.globalHeader())

	var pageContent, nav string
	switch {
	case m.editing && m.form != nil:
		title := "Add Endpoint"
		if m.editIdx >= 0 {
			title = "Edit Endpoint"
		}
		formContent := titleStyle.Render(title) + "\n\n" + m.form.View()
		pageContent = panelStyle.
			Width(helpers.Max(0, m.w-2)).
			BorderForeground(cAccent2).
			Render(formContent)
		nav = endpoints.Nav(m.w-2, true)

	case m.picking:
		pageContent = panelStyle.
			Width(helpers.Max(0, m.w-2)).
			Render(endpoints.Render(m.cfg.Endpoints, m.selectedEndpoint, m.connectedURL()))
		nav = endpoints.Nav(m.w-2, false)

	default:
		walletContent := walletview.Render(m.walletPanel())
		if m.showQR && m.wallet.Connected && m.wallet.Network != nil {
			// Split 50/50 between the details and the receive QR
			leftWidth := helpers.Max(0, m.w/2-2)
			rightWidth := helpers.Max(0, m.w-leftWidth-4)

			qrPanel := panelStyle.Width(rightWidth).Render(walletview.RenderQR(m.wallet.Address, m.wallet.Network.ChainID))
			leftPanel := panelStyle.
				Width(leftWidth).
				Height(helpers.Max(0, lipgloss.Height(qrPanel)-2)).
				Render(walletContent)
			pageContent = lipgloss.JoinHorizontal(lipgloss.Top, leftPanel, qrPanel)
		} else {
			pageContent = panelStyle.Width(helpers.Max(0, m.w-2)).Render(walletContent)
		}
		nav = walletview.Nav(m.w-2, m.wallet.Connected, m.showQR)
	}

	sections := []string{headerPanel, pageContent, nav}
	if m.logEnabled {
		// Keep viewport height in sync with the rendered panel
		m.logViewport.Height = logview.PanelHeight(m.h)
		sections = append(sections, logview.Render(m.w, m.h, m.logReady, m.logSpinner.View(), m.logViewport))
	}

	return appStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}
