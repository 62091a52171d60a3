// Package wallettest provides a scripted wallet.Provider for tests.
package wallettest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"wallet-connect-tui/wallet"
)

// Call records one request made to the provider.
type Call struct {
	Method string
	Params []any
}

// Provider is an in-memory wallet.Provider. Results holds the value
// returned per method, Errors the error per method. Balances overrides
// the eth_getBalance result per lowercase address. Missing makes the
// provider look absent.
type Provider struct {
	mu        sync.Mutex
	Missing   bool
	Results   map[string]any
	Errors    map[string]error
	Balances  map[string]string
	calls     []Call
	listeners []wallet.Listener
}

// New returns a provider answering the given accounts, chain id and balance.
func New(accounts []string, chainID, balanceHex string) *Provider {
	return &Provider{
		Results: map[string]any{
			wallet.MethodRequestAccounts: accounts,
			wallet.MethodAccounts:        accounts,
			wallet.MethodChainID:         chainID,
			wallet.MethodGetBalance:      balanceHex,
		},
		Errors:   map[string]error{},
		Balances: map[string]string{},
	}
}

// Available implements wallet.Provider.
func (p *Provider) Available() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return !p.Missing
}

// Request implements wallet.Provider.
func (p *Provider) Request(_ context.Context, method string, params ...any) (json.RawMessage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, Call{Method: method, Params: params})
	if err := p.Errors[method]; err != nil {
		return nil, err
	}
	if method == wallet.MethodGetBalance && len(params) > 0 {
		if addr, ok := params[0].(string); ok {
			if hex, ok := p.Balances[strings.ToLower(addr)]; ok {
				return json.Marshal(hex)
			}
		}
	}
	v, ok := p.Results[method]
	if !ok {
		return nil, &wallet.ProviderError{Code: wallet.CodeMethodNotFound, Message: fmt.Sprintf("method %s not found", method)}
	}
	return json.Marshal(v)
}

// Listen implements wallet.Provider.
func (p *Provider) Listen(l wallet.Listener) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, l)
}

// Set replaces the result for method.
func (p *Provider) Set(method string, v any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Results[method] = v
}

// SetBalance makes eth_getBalance answer hexWei for addr.
func (p *Provider) SetBalance(addr, hexWei string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Balances[strings.ToLower(addr)] = hexWei
}

// Fail makes method return err. A nil err clears it.
func (p *Provider) Fail(method string, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Errors[method] = err
}

// Calls returns the requests made so far.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Call, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns how many times method was requested.
func (p *Provider) CallCount(method string) int {
	n := 0
	for _, c := range p.Calls() {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Listeners returns how many listeners are registered.
func (p *Provider) Listeners() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.listeners)
}

// EmitAccountsChanged delivers an accountsChanged event synchronously.
func (p *Provider) EmitAccountsChanged(accounts ...string) {
	for _, l := range p.snapshot() {
		l.AccountsChanged(accounts)
	}
}

// EmitChainChanged updates the chain id and delivers chainChanged.
func (p *Provider) EmitChainChanged(chainID string) {
	p.Set(wallet.MethodChainID, chainID)
	for _, l := range p.snapshot() {
		l.ChainChanged(chainID)
	}
}

// EmitDisconnect delivers a provider-level disconnect.
func (p *Provider) EmitDisconnect(err error) {
	for _, l := range p.snapshot() {
		l.Disconnected(err)
	}
}

func (p *Provider) snapshot() []wallet.Listener {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]wallet.Listener, len(p.listeners))
	copy(out, p.listeners)
	return out
}
