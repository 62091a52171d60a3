package main

import (
	"wallet-connect-tui/rpc"
)

// -------------------- TEA MESSAGES --------------------

// logInitMsg signals that log viewport should be initialized
type logInitMsg struct{}

// providerDialedMsg contains result of a provider dial attempt
type providerDialedMsg struct {
	url      string
	provider *rpc.Provider
	err      error
}

// watchStoppedMsg is sent when a provider watch loop returns on its own
type watchStoppedMsg struct {
	url string
}
