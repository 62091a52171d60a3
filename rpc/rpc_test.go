package rpc

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"wallet-connect-tui/wallet"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// node is a JSON-RPC stub whose answers can change while a test runs.
type node struct {
	mu       sync.Mutex
	results  map[string]any
	errors   map[string]int
	down     bool
	requests []string
}

func newNode() *node {
	return &node{
		results: map[string]any{
			wallet.MethodAccounts: []string{"0xabc0000000000000000000000000000000000001"},
			wallet.MethodChainID:  "0x1",
		},
		errors: map[string]int{},
	}
}

func (n *node) set(method string, v any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.results[method] = v
}

func (n *node) setDown(down bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.down = down
}

func (n *node) count(method string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, m := range n.requests {
		if m == method {
			c++
		}
	}
	return c
}

func (n *node) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     json.RawMessage `json:"id"`
		Method string          `json:"method"`
		Params []any           `json:"params"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	n.mu.Lock()
	n.requests = append(n.requests, req.Method)
	down := n.down
	result, ok := n.results[req.Method]
	code := n.errors[req.Method]
	n.mu.Unlock()

	if down {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
		return
	}

	resp := map[string]any{"jsonrpc": "2.0", "id": req.ID}
	switch {
	case code != 0:
		resp["error"] = map[string]any{"code": code, "message": "request failed"}
	case !ok:
		resp["error"] = map[string]any{"code": wallet.CodeMethodNotFound, "message": "the method " + req.Method + " does not exist/is not available"}
	default:
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func dial(t *testing.T, n *node) *Provider {
	t.Helper()
	server := httptest.NewServer(n)
	t.Cleanup(server.Close)

	result := Connect(server.URL, nil)
	require.NoError(t, result.Error)
	require.NotNil(t, result.Provider)
	t.Cleanup(result.Provider.Close)
	return result.Provider
}

func TestConnect(t *testing.T) {
	t.Parallel()

	t.Run("http endpoint", func(t *testing.T) {
		t.Parallel()
		p := dial(t, newNode())
		assert.True(t, p.Available())
		assert.NotEmpty(t, p.URL)
	})

	t.Run("invalid URL", func(t *testing.T) {
		t.Parallel()
		result := ConnectWithTimeout("not-a-valid-url", time.Second, nil)
		assert.Error(t, result.Error)
		assert.Nil(t, result.Provider)
	})
}

func TestRequest(t *testing.T) {
	t.Parallel()

	t.Run("chain id", func(t *testing.T) {
		t.Parallel()
		p := dial(t, newNode())
		raw, err := p.Request(context.Background(), wallet.MethodChainID)
		require.NoError(t, err)
		assert.JSONEq(t, `"0x1"`, string(raw))
	})

	t.Run("balance params", func(t *testing.T) {
		t.Parallel()
		n := newNode()
		n.set(wallet.MethodGetBalance, "0xde0b6b3a7640000")
		p := dial(t, n)

		raw, err := p.Request(context.Background(), wallet.MethodGetBalance, "0xabc0000000000000000000000000000000000001", "latest")
		require.NoError(t, err)
		assert.JSONEq(t, `"0xde0b6b3a7640000"`, string(raw))
	})

	t.Run("request accounts falls back to eth_accounts", func(t *testing.T) {
		t.Parallel()
		n := newNode()
		p := dial(t, n)

		raw, err := p.Request(context.Background(), wallet.MethodRequestAccounts)
		require.NoError(t, err)
		assert.JSONEq(t, `["0xabc0000000000000000000000000000000000001"]`, string(raw))
		assert.Equal(t, 1, n.count(wallet.MethodRequestAccounts))
		assert.Equal(t, 1, n.count(wallet.MethodAccounts))
	})

	t.Run("error codes are preserved", func(t *testing.T) {
		t.Parallel()
		n := newNode()
		n.errors[wallet.MethodRequestAccounts] = wallet.CodeUserRejected
		p := dial(t, n)

		_, err := p.Request(context.Background(), wallet.MethodRequestAccounts)
		var perr *wallet.ProviderError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, wallet.CodeUserRejected, perr.Code)
		assert.Zero(t, n.count(wallet.MethodAccounts))
	})

	t.Run("closed provider", func(t *testing.T) {
		t.Parallel()
		p := dial(t, newNode())
		p.Close()
		assert.False(t, p.Available())
		_, err := p.Request(context.Background(), wallet.MethodChainID)
		require.ErrorIs(t, err, wallet.ErrProviderUnavailable)
	})
}

// recorder collects provider events as strings.
type recorder struct {
	events chan string
}

func (r recorder) AccountsChanged(accounts []string) {
	if len(accounts) == 0 {
		r.events <- "accounts:"
		return
	}
	r.events <- "accounts:" + accounts[0]
}
func (r recorder) ChainChanged(chainID string) { r.events <- "chain:" + chainID }
func (r recorder) Disconnected(error)          { r.events <- "disconnect" }

func next(t *testing.T, events <-chan string) string {
	t.Helper()
	select {
	case e := <-events:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("no provider event")
		return ""
	}
}

func TestWatchEmitsChanges(t *testing.T) {
	t.Parallel()

	n := newNode()
	p := dial(t, n)
	rec := recorder{events: make(chan string, 16)}
	p.Listen(rec)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Watch(ctx, 20*time.Millisecond)

	// baseline poll emits nothing
	require.Eventually(t, func() bool { return n.count(wallet.MethodChainID) >= 1 }, time.Second, 5*time.Millisecond)

	n.set(wallet.MethodChainID, "0x89")
	assert.Equal(t, "chain:0x89", next(t, rec.events))

	n.set(wallet.MethodAccounts, []string{"0xdef0000000000000000000000000000000000002"})
	assert.Equal(t, "accounts:0xdef0000000000000000000000000000000000002", next(t, rec.events))

	n.set(wallet.MethodAccounts, []string{})
	assert.Equal(t, "accounts:", next(t, rec.events))

	n.setDown(true)
	assert.Equal(t, "disconnect", next(t, rec.events))

	// only the healthy to failing edge is reported
	time.Sleep(100 * time.Millisecond)
	assert.Empty(t, rec.events)
}

func TestWatchDrivesAdapter(t *testing.T) {
	t.Parallel()

	n := newNode()
	p := dial(t, n)
	a := wallet.NewAdapter(p, nil)
	require.NoError(t, a.Connect(context.Background()))
	require.True(t, a.Connected())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Watch(ctx, 20*time.Millisecond)
	// connect read the chain once, the baseline poll reads it again
	require.Eventually(t, func() bool { return n.count(wallet.MethodChainID) >= 2 }, time.Second, 5*time.Millisecond)

	n.set(wallet.MethodChainID, "0x9999")
	require.Eventually(t, func() bool {
		net := a.Network()
		return net != nil && net.ChainID == "0x9999"
	}, 2*time.Second, 10*time.Millisecond)
	assert.False(t, a.Network().Supported)

	n.set(wallet.MethodAccounts, []string{})
	require.Eventually(t, func() bool { return !a.Connected() }, 2*time.Second, 10*time.Millisecond)
	assert.Empty(t, a.Address())
}

func TestListenersReceiveEventsIndependently(t *testing.T) {
	t.Parallel()

	n := newNode()
	p := dial(t, n)

	// a listener that never drains must not hold back the others
	stuck := recorder{events: make(chan string)}
	p.Listen(stuck)
	rec := recorder{events: make(chan string, 16)}
	p.Listen(rec)
	require.Equal(t, 2, p.listeners())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Watch(ctx, 20*time.Millisecond)
	require.Eventually(t, func() bool { return n.count(wallet.MethodChainID) >= 1 }, time.Second, 5*time.Millisecond)

	n.set(wallet.MethodChainID, "0x89")
	assert.Equal(t, "chain:0x89", next(t, rec.events))
	n.set(wallet.MethodChainID, "0x38")
	assert.Equal(t, "chain:0x38", next(t, rec.events))

	// the slow one is behind, not skipped
	assert.Equal(t, "chain:0x89", next(t, stuck.events))
	assert.Equal(t, "chain:0x38", next(t, stuck.events))
}

func TestCloseDetachesListeners(t *testing.T) {
	t.Parallel()

	n := newNode()
	p := dial(t, n)
	rec := recorder{events: make(chan string, 16)}
	p.Listen(rec)
	require.Equal(t, 1, p.listeners())

	p.Close()
	assert.Zero(t, p.listeners())

	// listening on a closed provider is a no-op
	p.Listen(rec)
	assert.Zero(t, p.listeners())

	p.feed.Send(notice{kind: noticeChain, chainID: "0x89"})
	time.Sleep(20 * time.Millisecond)
	assert.Empty(t, rec.events)
}
