package main

import (
	"context"
	"time"

	"wallet-connect-tui/config"
	"wallet-connect-tui/presenter"
	"wallet-connect-tui/rpc"
	"wallet-connect-tui/styles"
	"wallet-connect-tui/wallet"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/patrickmn/go-cache"
)

// -------------------- MODEL --------------------

// model represents the application state following The Elm Architecture
type model struct {
	w, h int

	cfg        config.Config
	configPath string

	// provider state
	endpoint    string
	provider    *rpc.Provider
	dialing     bool
	dialErr     string
	watchCancel context.CancelFunc

	// wallet widget
	wallet   presenter.Model
	balances *cache.Cache // shared across provider switches of one endpoint
	spin     spinner.Model
	showQR   bool

	// endpoint list and form
	picking          bool
	selectedEndpoint int
	editing          bool
	editIdx          int // -1 while adding
	form             *huh.Form

	// logger panel
	logEnabled  bool
	logger      *log.Logger
	logBuffer   *logBuffer
	logViewport viewport.Model
	logReady    bool
	logSpinner  spinner.Model
}

// -------------------- INIT --------------------

// newModel creates the application model for cfg
func newModel(cfg config.Config, configPath string) model {
	// spinner
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	// Initialize log viewport
	vp := viewport.New(0, 20) // Will be resized in Update on first WindowSizeMsg
	vp.Style = lipgloss.NewStyle().
		Foreground(styles.CText).
		Background(styles.CPanel)

	// Initialize log spinner
	logSpin := spinner.New()
	logSpin.Spinner = spinner.Dot
	logSpin.Style = lipgloss.NewStyle().Foreground(styles.CAccent2)

	// The logger is shared with the adapter, the provider and the presenter,
	// which write from their own goroutines.
	buf := &logBuffer{}
	logger := newLogger(buf)

	balances := cache.New(5*time.Minute, 10*time.Minute)

	m := model{
		cfg:         cfg,
		configPath:  configPath,
		endpoint:    cfg.ActiveURL(),
		balances:    balances,
		spin:        sp,
		logEnabled:  cfg.Logger,
		logger:      logger,
		logBuffer:   buf,
		logViewport: vp,
		logSpinner:  logSpin,
	}
	// No provider until the first dial succeeds.
	m.wallet = m.newPresenter(nil)
	m.dialing = m.endpoint != ""

	return m
}

// Init implements tea.Model interface and returns initial commands
func (m *model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.spin.Tick, m.wallet.Init()}
	if m.logEnabled {
		cmds = append(cmds, initLogViewport(), m.logSpinner.Tick)
	}
	// connect if an endpoint is set
	if m.endpoint != "" {
		cmds = append(cmds, dialProvider(m.endpoint, m.logger))
	}
	return tea.Batch(cmds...)
}

// newPresenter builds a wallet presenter on top of p, which may be nil
func (m *model) newPresenter(p *rpc.Provider) presenter.Model {
	var wp wallet.Provider
	if p != nil {
		wp = p
	}
	return presenter.New(wallet.NewAdapter(wp, m.logger),
		presenter.WithLogger(m.logger),
		presenter.WithBalanceCache(m.balances),
	)
}

// swapProvider releases the current provider and presents p instead.
// A nil p leaves the widget without a provider.
func (m *model) swapProvider(p *rpc.Provider) tea.Cmd {
	m.shutdown()

	m.provider = p
	m.showQR = false
	m.wallet = m.newPresenter(p)

	cmds := []tea.Cmd{m.wallet.Init()}
	if p != nil {
		ctx, cancel := context.WithCancel(context.Background())
		m.watchCancel = cancel
		cmds = append(cmds, watchProvider(ctx, p, m.cfg.PollInterval()))
	}
	return tea.Batch(cmds...)
}

// shutdown stops the watch loop and closes the presenter and the provider
func (m *model) shutdown() {
	if m.watchCancel != nil {
		m.watchCancel()
		m.watchCancel = nil
	}
	m.wallet.Close()
	m.wallet.Adapter().Close()
	if m.provider != nil {
		m.provider.Close()
		m.provider = nil
	}
}

// endpointName returns the configured name of the active endpoint
func (m *model) endpointName() string {
	for _, e := range m.cfg.Endpoints {
		if e.Active && e.URL == m.endpoint {
			return e.Name
		}
	}
	return ""
}
