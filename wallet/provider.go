package wallet

import (
	"context"
	"encoding/json"
	"fmt"
)

// Provider method names
const (
	MethodRequestAccounts = "eth_requestAccounts"
	MethodAccounts        = "eth_accounts"
	MethodChainID         = "eth_chainId"
	MethodGetBalance      = "eth_getBalance"
)

// EIP-1193 error codes
const (
	CodeUserRejected   = 4001
	CodeMethodNotFound = -32601
)

// Provider is the externally supplied wallet provider.
// The adapter never reaches the provider any other way.
type Provider interface {
	// Available reports whether the provider is present.
	Available() bool
	// Request performs one JSON-RPC style request and returns the raw result.
	Request(ctx context.Context, method string, params ...any) (json.RawMessage, error)
	// Listen registers l for provider events.
	Listen(l Listener)
}

// Listener receives provider events in the order the provider emits them.
type Listener interface {
	AccountsChanged(accounts []string)
	ChainChanged(chainID string)
	Disconnected(err error)
}

// ProviderError is an error answered by the provider itself.
type ProviderError struct {
	Code    int
	Message string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d: %s", e.Code, e.Message)
}
