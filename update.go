package main

import (
	"strings"

	"wallet-connect-tui/config"
	"wallet-connect-tui/helpers"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

// -------------------- TEMP FORM STORAGE --------------------
// Temporary form field storage (package-level to avoid pointer-to-copy issues)
var (
	tempEndpointName string
	tempEndpointURL  string
)

// createEndpointForm opens the endpoint form for the endpoint at idx, or
// an empty one when idx is out of range.
func (m *model) createEndpointForm(idx int) {
	m.editIdx = -1
	tempEndpointName = ""
	tempEndpointURL = ""
	if idx >= 0 && idx < len(m.cfg.Endpoints) {
		m.editIdx = idx
		tempEndpointName = m.cfg.Endpoints[idx].Name
		tempEndpointURL = m.cfg.Endpoints[idx].URL
	}

	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Endpoint Name").
				Description("A friendly name for this provider").
				Value(&tempEndpointName).
				Placeholder("Local node"),

			huh.NewInput().
				Title("Endpoint URL").
				Description("http(s)://, ws(s):// or the path to an IPC socket").
				Value(&tempEndpointURL).
				Placeholder("http://127.0.0.1:8545").
				Validate(helpers.ValidateEndpoint),
		),
	).WithTheme(huh.ThemeCatppuccin())

	m.editing = true
	m.form.Init()
}

// saveEndpoint applies the completed form
func (m *model) saveEndpoint() tea.Cmd {
	name := strings.TrimSpace(tempEndpointName)
	url := strings.TrimSpace(tempEndpointURL)

	if m.editIdx < 0 {
		m.addLog("success", "Added endpoint", "name", name, "url", url)
		return m.useEndpoint(name, url)
	}

	e := &m.cfg.Endpoints[m.editIdx]
	wasActive := e.Active
	e.Name, e.URL = name, url
	m.addLog("success", "Updated endpoint", "name", name)
	if wasActive {
		return m.useEndpoint(name, url)
	}
	m.saveConfig()
	return nil
}

// useEndpoint saves url as the active endpoint and dials it
func (m *model) useEndpoint(name, url string) tea.Cmd {
	m.cfg.SetActive(name, url)
	m.saveConfig()

	if url != m.endpoint {
		// balances read from another node may belong to another chain
		m.balances.Flush()
	}
	m.endpoint = url
	m.dialing = true
	m.dialErr = ""
	m.picking = false
	m.addLog("info", "Dialing provider", "url", url)
	return tea.Batch(m.swapProvider(nil), dialProvider(url, m.logger))
}

func (m *model) saveConfig() {
	if err := config.Save(m.configPath, m.cfg); err != nil {
		m.addLog("error", "Failed to save config", "err", err)
	}
}

// -------------------- UPDATE --------------------

// Update implements tea.Model interface and handles all messages
func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if m.editing && m.form != nil {
		// Intercept ESC key to cancel form
		if keyMsg, ok := msg.(tea.KeyMsg); ok && keyMsg.String() == "esc" {
			m.editing = false
			m.form = nil
			return m, nil
		}

		form, cmd := m.form.Update(msg)
		if f, ok := form.(*huh.Form); ok {
			m.form = f

			switch m.form.State {
			case huh.StateCompleted:
				m.editing = false
				m.form = nil
				return m, m.saveEndpoint()
			case huh.StateAborted:
				m.editing = false
				m.form = nil
				return m, nil
			}
		}
		// Keys belong to the form; everything else still reaches the widget.
		if _, ok := msg.(tea.KeyMsg); ok {
			return m, cmd
		}
		cmds = append(cmds, cmd)
	}

	switch msg := msg.(type) {

	case logInitMsg:
		if !m.logEnabled {
			return m, nil
		}
		m.logReady = true
		m.addLog("info", "Logger enabled")
		return m, nil

	case providerDialedMsg:
		if msg.url != m.endpoint {
			// superseded by a newer endpoint
			if msg.provider != nil {
				msg.provider.Close()
			}
			return m, nil
		}
		m.dialing = false
		if msg.err != nil {
			m.dialErr = msg.err.Error()
			m.addLog("error", "Provider connection failed", "url", msg.url, "err", msg.err)
			return m, nil
		}
		m.dialErr = ""
		m.addLog("success", "Provider connected", "url", msg.url)
		return m, m.swapProvider(msg.provider)

	case watchStoppedMsg:
		if msg.url == m.endpoint {
			m.addLog("warning", "Provider watch stopped", "url", msg.url)
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.w, m.h = msg.Width, msg.Height

		// Only initialize viewport if log is enabled
		if m.logEnabled {
			// Width accounts for border and padding
			m.logViewport.Width = helpers.Max(0, msg.Width-6)
			m.updateLogViewport()
		}

		return m, tea.Batch(cmds...)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
		// Update log spinner too if log is enabled but not ready
		if m.logEnabled && !m.logReady {
			m.logSpinner, cmd = m.logSpinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		// Other goroutines may have logged since the last frame
		m.updateLogViewport()
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		var cmd tea.Cmd
		if m.picking {
			cmd = m.handlePickerKey(msg)
		} else {
			cmd = m.handleKey(msg)
		}
		m.updateLogViewport()
		return m, cmd
	}

	// Everything else belongs to the wallet widget
	var cmd tea.Cmd
	m.wallet, cmd = m.wallet.Update(msg)
	cmds = append(cmds, cmd)
	m.updateLogViewport()
	return m, tea.Batch(cmds...)
}

// handleKey applies the wallet view key bindings
func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "c":
		// one attempt at a time
		if m.wallet.Connected || m.wallet.Loading {
			return nil
		}
		m.addLog("info", "Requesting wallet connection")
		return m.wallet.Connect()

	case "d":
		if !m.wallet.Connected {
			return nil
		}
		m.wallet.Disconnect()
		m.showQR = false
		return nil

	case "y":
		if !m.wallet.Connected {
			return nil
		}
		return m.wallet.CopyAddress()

	case "b":
		if !m.wallet.Connected {
			return nil
		}
		m.addLog("debug", "Refreshing balance", "address", m.wallet.ShortAddress)
		return m.wallet.RefreshBalance()

	case "r":
		if !m.wallet.Connected {
			return nil
		}
		m.showQR = !m.showQR
		return nil

	case "e":
		m.picking = true
		m.selectedEndpoint = 0
		for i, e := range m.cfg.Endpoints {
			if e.Active {
				m.selectedEndpoint = i
				break
			}
		}
		return nil
	}
	return m.handleGlobalKey(msg)
}

// handlePickerKey applies the endpoint list key bindings
func (m *model) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "up", "k":
		if m.selectedEndpoint > 0 {
			m.selectedEndpoint--
		}
		return nil

	case "down", "j":
		if m.selectedEndpoint < len(m.cfg.Endpoints)-1 {
			m.selectedEndpoint++
		}
		return nil

	case "enter":
		if m.selectedEndpoint < 0 || m.selectedEndpoint >= len(m.cfg.Endpoints) {
			return nil
		}
		e := m.cfg.Endpoints[m.selectedEndpoint]
		if e.URL == m.endpoint && m.provider != nil {
			m.picking = false
			return nil
		}
		return m.useEndpoint(e.Name, e.URL)

	case "a":
		m.createEndpointForm(-1)
		return nil

	case "e":
		m.createEndpointForm(m.selectedEndpoint)
		return nil

	case "x", "delete":
		if m.selectedEndpoint < 0 || m.selectedEndpoint >= len(m.cfg.Endpoints) {
			return nil
		}
		e := m.cfg.Endpoints[m.selectedEndpoint]
		if e.URL == m.endpoint {
			m.addLog("warning", "Cannot delete the endpoint in use", "name", e.Name)
			return nil
		}
		m.cfg.Remove(m.selectedEndpoint)
		m.selectedEndpoint = helpers.Max(0, helpers.Min(m.selectedEndpoint, len(m.cfg.Endpoints)-1))
		m.saveConfig()
		m.addLog("success", "Deleted endpoint", "name", e.Name)
		return nil

	case "esc":
		m.picking = false
		return nil
	}
	return m.handleGlobalKey(msg)
}

// handleGlobalKey applies the keys shared by every view
func (m *model) handleGlobalKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c", "q":
		return tea.Quit

	case "l", "L":
		// Toggle logger
		m.logEnabled = !m.logEnabled
		m.cfg.Logger = m.logEnabled
		m.saveConfig()
		if m.logEnabled {
			if m.w > 0 {
				m.logViewport.Width = m.w - 6
			}
			m.logReady = false
			return tea.Batch(initLogViewport(), m.logSpinner.Tick)
		}
		// Clear logs and de-initialize when disabling
		m.logBuffer.Reset()
		m.logReady = false
		return nil

	case "pageup", "pagedown":
		// Allow scrolling in log viewport when enabled
		if m.logEnabled && m.logReady {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return cmd
		}
	}
	return nil
}
