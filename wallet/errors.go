package wallet

import "errors"

var (
	// ErrProviderUnavailable means no wallet provider was detected.
	ErrProviderUnavailable = errors.New("wallet provider is not available, configure an RPC endpoint first")
	// ErrUserRejected means the user declined the connection prompt.
	ErrUserRejected = errors.New("user rejected the connection request")
	// ErrConnectionFailed covers any other connect failure.
	ErrConnectionFailed = errors.New("failed to connect to the wallet provider, please try again")
	// ErrNotConnected means a balance was requested with no active session.
	ErrNotConnected = errors.New("wallet not connected")
	// ErrBalanceFetchFailed means the balance read failed in transport.
	ErrBalanceFetchFailed = errors.New("failed to get wallet balance")
	// ErrNetworkRefreshFailed is logged, never returned to callers.
	ErrNetworkRefreshFailed = errors.New("failed to get network information")
)
