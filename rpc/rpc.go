// Package rpc implements wallet.Provider on top of a go-ethereum JSON-RPC
// client. Events a browser wallet would push are synthesized by polling.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"slices"
	"sync/atomic"
	"time"

	"wallet-connect-tui/wallet"

	"github.com/charmbracelet/log"
	"github.com/ethereum/go-ethereum/event"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// DefaultPollInterval is used by Watch when the interval is not positive.
const DefaultPollInterval = 4 * time.Second

// listenerBacklog is how many events a slow listener may fall behind
// before Watch waits for it.
const listenerBacklog = 16

type noticeKind int

const (
	noticeAccounts noticeKind = iota
	noticeChain
	noticeDisconnect
)

// notice is one synthesized provider event.
type notice struct {
	kind     noticeKind
	accounts []string
	chainID  string
	err      error
}

func (n notice) deliver(l wallet.Listener) {
	switch n.kind {
	case noticeAccounts:
		l.AccountsChanged(slices.Clone(n.accounts))
	case noticeChain:
		l.ChainChanged(n.chainID)
	case noticeDisconnect:
		l.Disconnected(n.err)
	}
}

// Provider wraps an Ethereum JSON-RPC client
type Provider struct {
	URL    string
	client *gethrpc.Client
	logger *log.Logger
	closed atomic.Bool

	feed  event.Feed
	scope event.SubscriptionScope

	// poll state, owned by the Watch goroutine
	baseline bool
	healthy  bool
	accounts []string
	chainID  string
}

// ConnectResult holds the result of a provider connection attempt
type ConnectResult struct {
	Provider *Provider
	Error    error
}

// Connect dials an RPC endpoint (http, https, ws, wss or ipc)
func Connect(url string, logger *log.Logger) ConnectResult {
	return ConnectWithTimeout(url, 8*time.Second, logger)
}

// ConnectWithTimeout dials with a custom timeout
func ConnectWithTimeout(url string, timeout time.Duration, logger *log.Logger) ConnectResult {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	client, err := gethrpc.DialContext(ctx, url)
	if err != nil {
		return ConnectResult{Provider: nil, Error: err}
	}

	return ConnectResult{
		Provider: NewProvider(client, url, logger),
		Error:    nil,
	}
}

// NewProvider wraps an already dialed client.
func NewProvider(client *gethrpc.Client, url string, logger *log.Logger) *Provider {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Provider{URL: url, client: client, logger: logger}
}

// Available implements wallet.Provider.
func (p *Provider) Available() bool {
	return p != nil && p.client != nil && !p.closed.Load()
}

// Request implements wallet.Provider. Nodes without a permission flow do
// not know eth_requestAccounts, so it falls back to eth_accounts.
func (p *Provider) Request(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	raw, err := p.call(ctx, method, params...)
	if method == wallet.MethodRequestAccounts {
		var perr *wallet.ProviderError
		if errors.As(err, &perr) && perr.Code == wallet.CodeMethodNotFound {
			p.logger.Debug("eth_requestAccounts unsupported, using eth_accounts", "url", p.URL)
			return p.call(ctx, wallet.MethodAccounts)
		}
	}
	return raw, err
}

func (p *Provider) call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if !p.Available() {
		return nil, wallet.ErrProviderUnavailable
	}

	var raw json.RawMessage
	err := p.client.CallContext(ctx, &raw, method, params...)
	p.logger.Debug("rpc request", "method", method, "err", err)
	if err != nil {
		return nil, toProviderError(err)
	}
	return raw, nil
}

// toProviderError keeps JSON-RPC error codes visible to the adapter.
func toProviderError(err error) error {
	var rerr gethrpc.Error
	if errors.As(err, &rerr) {
		return &wallet.ProviderError{Code: rerr.ErrorCode(), Message: rerr.Error()}
	}
	return err
}

// Listen implements wallet.Provider. l is called from its own goroutine,
// one event at a time, until the provider is closed.
func (p *Provider) Listen(l wallet.Listener) {
	ch := make(chan notice, listenerBacklog)
	fs := p.feed.Subscribe(ch)
	sub := p.scope.Track(fs)
	if sub == nil {
		// already closed
		fs.Unsubscribe()
		return
	}
	go func() {
		for {
			select {
			case n := <-ch:
				n.deliver(l)
			case <-sub.Err():
				return
			}
		}
	}()
}

// listeners returns how many listeners are attached.
func (p *Provider) listeners() int {
	return p.scope.Count()
}

// Watch polls the endpoint until ctx is done and emits accountsChanged,
// chainChanged and disconnect to the listeners. Every listener sees the
// events in the order they were detected.
func (p *Provider) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	p.poll(ctx, interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !p.Available() {
				return
			}
			p.poll(ctx, interval)
		}
	}
}

func (p *Provider) poll(parent context.Context, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	accounts, chainID, err := p.snapshot(ctx)
	if err != nil {
		if parent.Err() != nil {
			return
		}
		if p.healthy {
			p.healthy = false
			p.logger.Warn("Provider unreachable", "url", p.URL, "err", err)
			p.feed.Send(notice{kind: noticeDisconnect, err: err})
		}
		return
	}

	if !p.baseline {
		p.baseline, p.healthy = true, true
		p.accounts, p.chainID = accounts, chainID
		return
	}
	p.healthy = true

	if !slices.Equal(accounts, p.accounts) {
		p.accounts = accounts
		p.feed.Send(notice{kind: noticeAccounts, accounts: accounts})
	}
	if chainID != p.chainID {
		p.chainID = chainID
		p.feed.Send(notice{kind: noticeChain, chainID: chainID})
	}
}

func (p *Provider) snapshot(ctx context.Context) ([]string, string, error) {
	raw, err := p.call(ctx, wallet.MethodAccounts)
	if err != nil {
		return nil, "", err
	}
	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		return nil, "", err
	}

	raw, err = p.call(ctx, wallet.MethodChainID)
	if err != nil {
		return nil, "", err
	}
	var chainID string
	if err := json.Unmarshal(raw, &chainID); err != nil {
		return nil, "", err
	}
	return accounts, chainID, nil
}

// Close releases the client and detaches every listener. Available
// reports false afterwards.
func (p *Provider) Close() {
	if p.closed.Swap(true) {
		return
	}
	p.scope.Close()
	p.client.Close()
}
