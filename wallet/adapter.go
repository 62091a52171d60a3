// Package wallet mediates every call to an external wallet provider and
// reflects the provider's state as three observable values: the connected
// address, the network and the connected flag.
package wallet

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// networkRefreshTimeout bounds event-driven chain id reads.
const networkRefreshTimeout = 8 * time.Second

// Adapter wraps a Provider. It is the only writer of the connection state.
type Adapter struct {
	provider Provider
	logger   *log.Logger

	address   *Subject[string]
	network   *Subject[*Network]
	connected *Subject[bool]
}

// NewAdapter wraps p and subscribes to its events once. p may be nil, in
// which case every provider operation reports ErrProviderUnavailable.
func NewAdapter(p Provider, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	a := &Adapter{
		provider:  p,
		logger:    logger,
		address:   NewSubject(""),
		network:   NewSubject[*Network](nil),
		connected: NewSubject(false),
	}
	if a.Available() {
		p.Listen(listener{a})
	}
	return a
}

// Available reports whether a provider is present.
func (a *Adapter) Available() bool {
	return a.provider != nil && a.provider.Available()
}

// Connect requests account access and, on success, publishes the first
// account and the current network.
func (a *Adapter) Connect(ctx context.Context) error {
	if !a.Available() {
		return ErrProviderUnavailable
	}

	raw, err := a.provider.Request(ctx, MethodRequestAccounts)
	if err != nil {
		a.logger.Error("Error connecting to wallet", "err", err)
		var perr *ProviderError
		if errors.As(err, &perr) && perr.Code == CodeUserRejected {
			return ErrUserRejected
		}
		return fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	var accounts []string
	if err := json.Unmarshal(raw, &accounts); err != nil {
		a.logger.Error("Malformed account list", "err", err)
		return fmt.Errorf("%w: decoding accounts: %w", ErrConnectionFailed, err)
	}
	if len(accounts) == 0 {
		a.logger.Warn("Provider returned no accounts")
		return nil
	}

	a.address.Publish(accounts[0])
	a.connected.Publish(true)
	a.logger.Info("Wallet connected", "address", accounts[0])

	a.refreshNetwork(ctx)
	return nil
}

// Disconnect resets the local state. The provider is not told.
func (a *Adapter) Disconnect() {
	a.address.Publish("")
	a.network.Publish(nil)
	a.connected.Publish(false)
	a.logger.Info("Wallet disconnected")
}

// refreshNetwork reads the chain id and publishes its descriptor. Failures
// are logged and leave the previous network in place.
func (a *Adapter) refreshNetwork(ctx context.Context) {
	if !a.Available() {
		return
	}

	raw, err := a.provider.Request(ctx, MethodChainID)
	if err != nil {
		a.logger.Warn(ErrNetworkRefreshFailed.Error(), "err", err)
		return
	}
	var chainID string
	if err := json.Unmarshal(raw, &chainID); err != nil {
		a.logger.Warn(ErrNetworkRefreshFailed.Error(), "err", err)
		return
	}

	n := NetworkFor(chainID)
	a.network.Publish(n)
	a.logger.Info("Network updated", "chain", n.ChainID, "name", n.Name, "supported", n.Supported)
}

// Balance returns the balance of the current address in ether, formatted
// to 4 decimals.
func (a *Adapter) Balance(ctx context.Context) (string, error) {
	return a.BalanceOf(ctx, a.address.Value())
}

// BalanceOf returns the balance of addr in ether, formatted to 4 decimals.
// Callers that captured an address earlier use this so an account switch
// in between cannot change which balance is read.
func (a *Adapter) BalanceOf(ctx context.Context, addr string) (string, error) {
	if !a.Available() || addr == "" {
		return "", ErrNotConnected
	}

	raw, err := a.provider.Request(ctx, MethodGetBalance, addr, "latest")
	if err != nil {
		a.logger.Error("Error getting balance", "address", addr, "err", err)
		return "", fmt.Errorf("%w: %w", ErrBalanceFetchFailed, err)
	}
	var hexWei string
	if err := json.Unmarshal(raw, &hexWei); err != nil {
		return "", fmt.Errorf("%w: %w", ErrBalanceFetchFailed, err)
	}
	eth, err := FormatEther(hexWei)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBalanceFetchFailed, err)
	}
	a.logger.Debug("Balance loaded", "address", addr, "eth", eth)
	return eth, nil
}

// Address returns the connected address, or "" when there is none.
func (a *Adapter) Address() string { return a.address.Value() }

// Network returns the current network, or nil when unknown.
func (a *Adapter) Network() *Network { return a.network.Value() }

// Connected reports whether a wallet session is active.
func (a *Adapter) Connected() bool { return a.connected.Value() }

// AddressSubject exposes the address for subscription.
func (a *Adapter) AddressSubject() *Subject[string] { return a.address }

// NetworkSubject exposes the network for subscription.
func (a *Adapter) NetworkSubject() *Subject[*Network] { return a.network }

// ConnectedSubject exposes the connected flag for subscription.
func (a *Adapter) ConnectedSubject() *Subject[bool] { return a.connected }

// Close ends every subscription to the adapter's state. Values can still
// be read and published afterwards.
func (a *Adapter) Close() {
	a.address.Close()
	a.network.Close()
	a.connected.Close()
}

// listener turns provider events into state changes.
type listener struct {
	a *Adapter
}

func (l listener) AccountsChanged(accounts []string) {
	if len(accounts) == 0 {
		l.a.logger.Info("Provider reported no accounts")
		l.a.Disconnect()
		return
	}
	// The network is not refreshed on an account switch.
	l.a.address.Publish(accounts[0])
	l.a.connected.Publish(true)
	l.a.logger.Info("Account switched", "address", accounts[0])
}

func (l listener) ChainChanged(chainID string) {
	l.a.logger.Debug("Chain changed", "chain", chainID)
	ctx, cancel := context.WithTimeout(context.Background(), networkRefreshTimeout)
	defer cancel()
	l.a.refreshNetwork(ctx)
}

func (l listener) Disconnected(err error) {
	l.a.logger.Warn("Provider disconnected", "err", err)
	l.a.Disconnect()
}
