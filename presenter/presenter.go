// Package presenter turns the wallet adapter's observable state into
// view-ready fields and forwards user intents back to the adapter. Model is
// a bubbletea sub-model: feed it every message and run the commands it
// returns.
package presenter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"wallet-connect-tui/helpers"
	"wallet-connect-tui/wallet"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/patrickmn/go-cache"
)

// Badge is the style class of the network badge.
type Badge string

// Badge classes
const (
	BadgeNeutral Badge = "badge-secondary"
	BadgeSuccess Badge = "badge-success"
	BadgeWarning Badge = "badge-warning"
)

const (
	// CopyConfirmation replaces the message for CopyFeedbackDuration after a copy.
	CopyConfirmation = "✓ Address copied to clipboard!"
	// CopyFeedbackDuration is how long the copy confirmation stays.
	CopyFeedbackDuration = 2 * time.Second

	defaultConnectError = "Failed to connect wallet"
	balanceTimeout      = 12 * time.Second
	balanceCacheTTL     = 5 * time.Minute
)

var lastID atomic.Uint64

// Model holds the derived view state of one wallet widget.
type Model struct {
	Address      string
	ShortAddress string
	Network      *wallet.Network
	Connected    bool
	Loading      bool
	Message      string
	Balance      string
	BalanceAt    time.Time

	id        uint64
	adapter   *wallet.Adapter
	logger    *log.Logger
	clipboard func(string) error
	balances  *cache.Cache
	subs      *subscriptions

	// copy feedback
	copySeq     int
	copyPending bool
	copyPrior   string
}

type subscriptions struct {
	address   *wallet.Subscription[string]
	network   *wallet.Subscription[*wallet.Network]
	connected *wallet.Subscription[bool]
}

// Option configures a Model.
type Option func(*Model)

// WithLogger sets the logger. The default discards.
func WithLogger(l *log.Logger) Option {
	return func(m *Model) { m.logger = l }
}

// WithClipboard replaces the system clipboard writer.
func WithClipboard(write func(string) error) Option {
	return func(m *Model) { m.clipboard = write }
}

// WithBalanceCache shares a balance cache between models.
func WithBalanceCache(c *cache.Cache) Option {
	return func(m *Model) { m.balances = c }
}

// New creates a presenter for adapter. Call Init to subscribe.
func New(adapter *wallet.Adapter, opts ...Option) Model {
	m := Model{
		id:        lastID.Add(1),
		adapter:   adapter,
		logger:    log.New(io.Discard),
		clipboard: clipboard.WriteAll,
		subs:      &subscriptions{},
	}
	for _, opt := range opts {
		opt(&m)
	}
	if m.balances == nil {
		m.balances = cache.New(balanceCacheTTL, 2*balanceCacheTTL)
	}
	return m
}

// -------------------- MESSAGES --------------------

type addressMsg struct {
	id    uint64
	value string
}

type networkMsg struct {
	id    uint64
	value *wallet.Network
}

type connectedMsg struct {
	id    uint64
	value bool
}

type connectResultMsg struct {
	id  uint64
	err error
}

type balanceMsg struct {
	id      uint64
	address string
	chain   string
	key     string
	value   string
	err     error
}

type copiedMsg struct {
	id uint64
}

type copyFailedMsg struct {
	id  uint64
	err error
}

type restoreMessageMsg struct {
	id  uint64
	seq int
}

// -------------------- LIFECYCLE --------------------

// Init subscribes to the adapter's state. Each subscription delivers the
// current value first.
func (m Model) Init() tea.Cmd {
	if m.subs.address != nil {
		return nil
	}
	m.subs.address = m.adapter.AddressSubject().Subscribe()
	m.subs.network = m.adapter.NetworkSubject().Subscribe()
	m.subs.connected = m.adapter.ConnectedSubject().Subscribe()

	return tea.Batch(
		m.listenAddress(),
		m.listenNetwork(),
		m.listenConnected(),
	)
}

// Close releases the subscriptions. Pending listen commands return nil.
func (m Model) Close() {
	if m.subs.address == nil {
		return
	}
	m.subs.address.Unsubscribe()
	m.subs.network.Unsubscribe()
	m.subs.connected.Unsubscribe()
}

func listen[T any](sub *wallet.Subscription[T], wrap func(T) tea.Msg) tea.Cmd {
	return func() tea.Msg {
		v, ok := sub.Next(context.Background())
		if !ok {
			return nil
		}
		return wrap(v)
	}
}

func (m Model) listenAddress() tea.Cmd {
	id := m.id
	return listen(m.subs.address, func(v string) tea.Msg { return addressMsg{id: id, value: v} })
}

func (m Model) listenNetwork() tea.Cmd {
	id := m.id
	return listen(m.subs.network, func(v *wallet.Network) tea.Msg { return networkMsg{id: id, value: v} })
}

func (m Model) listenConnected() tea.Cmd {
	id := m.id
	return listen(m.subs.connected, func(v bool) tea.Msg { return connectedMsg{id: id, value: v} })
}

// -------------------- UPDATE --------------------

// Update applies one message and returns the follow-up commands.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case addressMsg:
		if msg.id != m.id {
			return m, nil
		}
		return m.onAddress(msg.value)

	case networkMsg:
		if msg.id != m.id {
			return m, nil
		}
		prev := m.Network
		m.Network = msg.value
		if msg.value != nil && !msg.value.Supported {
			name := msg.value.Name
			if name == "" {
				name = "Unknown"
			}
			m.Message = fmt.Sprintf("Warning: You are connected to an unsupported network (%s). Please switch to a supported network.", name)
		} else {
			m.Message = ""
		}
		if prev == nil || msg.value == nil || prev.ChainID == msg.value.ChainID || m.Address == "" {
			return m, m.listenNetwork()
		}
		// the cached balance belongs to the previous chain
		key := balanceKey(m.Address)
		m.balances.Delete(key)
		m.Balance = ""
		m.BalanceAt = time.Time{}
		return m, tea.Batch(m.listenNetwork(), m.fetchBalance(m.Address, key))

	case connectedMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.Connected = msg.value
		return m, m.listenConnected()

	case connectResultMsg:
		if msg.id != m.id {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("Connection error", "err", msg.err)
			m.Message = connectMessage(msg.err)
		}
		m.Loading = false
		return m, nil

	case balanceMsg:
		if msg.id != m.id {
			return m, nil
		}
		if msg.err != nil {
			m.logger.Error("Error loading balance", "err", msg.err)
			return m, nil
		}
		if msg.chain != "" && msg.chain != m.chainID() {
			// read before a chain switch
			return m, nil
		}
		m.balances.SetDefault(msg.key, msg.value)
		if msg.address == m.Address {
			m.Balance = msg.value
			m.BalanceAt = time.Now()
		}
		return m, nil

	case copiedMsg:
		if msg.id != m.id {
			return m, nil
		}
		if !m.copyPending {
			m.copyPrior = m.Message
		}
		m.copyPending = true
		m.copySeq++
		m.Message = CopyConfirmation
		seq, id := m.copySeq, m.id
		return m, tea.Tick(CopyFeedbackDuration, func(time.Time) tea.Msg {
			return restoreMessageMsg{id: id, seq: seq}
		})

	case copyFailedMsg:
		if msg.id != m.id {
			return m, nil
		}
		m.logger.Error("Failed to copy address", "err", msg.err)
		return m, nil

	case restoreMessageMsg:
		if msg.id != m.id || msg.seq != m.copySeq {
			return m, nil
		}
		m.Message = m.copyPrior
		m.copyPending = false
		m.copyPrior = ""
		return m, nil
	}

	return m, nil
}

func (m Model) onAddress(addr string) (Model, tea.Cmd) {
	m.Address = addr
	if addr == "" {
		m.ShortAddress = ""
		m.Balance = ""
		m.BalanceAt = time.Time{}
		return m, m.listenAddress()
	}

	m.ShortAddress = helpers.ShortenAddr(addr)
	key := balanceKey(addr)
	if cached, ok := m.balances.Get(key); ok {
		m.Balance = cached.(string)
	} else {
		m.Balance = ""
	}
	return m, tea.Batch(m.listenAddress(), m.fetchBalance(addr, key))
}

// connectMessage maps a connect failure to the text shown to the user.
// Provider detail stays in the log.
func connectMessage(err error) string {
	for _, known := range []error{
		wallet.ErrProviderUnavailable,
		wallet.ErrUserRejected,
		wallet.ErrConnectionFailed,
	} {
		if errors.Is(err, known) {
			return known.Error()
		}
	}
	return defaultConnectError
}

// balanceKey identifies an account in the balance cache. Entries are
// dropped when the chain changes.
func balanceKey(addr string) string {
	return strings.ToLower(addr)
}

func (m Model) chainID() string {
	if m.Network == nil {
		return ""
	}
	return m.Network.ChainID
}

// fetchBalance reads the balance of addr. The address is fixed here, a
// later account switch does not change which balance the command reads.
func (m Model) fetchBalance(addr, key string) tea.Cmd {
	a, id, chain := m.adapter, m.id, m.chainID()
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), balanceTimeout)
		defer cancel()
		v, err := a.BalanceOf(ctx, addr)
		return balanceMsg{id: id, address: addr, chain: chain, key: key, value: v, err: err}
	}
}

// -------------------- INTENTS --------------------

// Connect starts a connection attempt. Loading stays set until the result
// message has been applied.
func (m *Model) Connect() tea.Cmd {
	m.Loading = true
	m.Message = ""
	a, id := m.adapter, m.id
	return func() tea.Msg {
		return connectResultMsg{id: id, err: a.Connect(context.Background())}
	}
}

// Disconnect resets the wallet session and clears the message.
func (m *Model) Disconnect() {
	m.adapter.Disconnect()
	m.Message = ""
}

// RefreshBalance re-reads the balance of the current address.
func (m Model) RefreshBalance() tea.Cmd {
	if m.Address == "" {
		return nil
	}
	return m.fetchBalance(m.Address, balanceKey(m.Address))
}

// CopyAddress copies the current address to the clipboard.
func (m Model) CopyAddress() tea.Cmd {
	if m.Address == "" {
		return nil
	}
	addr, write, id := m.Address, m.clipboard, m.id
	return func() tea.Msg {
		if err := write(addr); err != nil {
			return copyFailedMsg{id: id, err: err}
		}
		return copiedMsg{id: id}
	}
}

// BadgeClass returns the badge class for the current network.
func (m Model) BadgeClass() Badge {
	if m.Network == nil {
		return BadgeNeutral
	}
	if m.Network.Supported {
		return BadgeSuccess
	}
	return BadgeWarning
}

// Adapter returns the adapter this model presents.
func (m Model) Adapter() *wallet.Adapter {
	return m.adapter
}
