package helpers

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestShortenAddr(t *testing.T) {
	t.Parallel()

	addr := "0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"
	assert.Equal(t, "0xd8dA...6045", ShortenAddr(addr))

	for _, a := range []string{addr, "0x12345678", "0xABCD...1234", strings.Repeat("f", 64)} {
		got := ShortenAddr(a)
		assert.Len(t, got, 13, a)
		assert.Equal(t, a[:6]+"..."+a[len(a)-4:], got)
	}

	assert.Equal(t, "0x1234", ShortenAddr("0x1234"))
	assert.Equal(t, "", ShortenAddr(""))
}

func TestIsValidEthAddress(t *testing.T) {
	t.Parallel()

	assert.True(t, IsValidEthAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045"))
	assert.False(t, IsValidEthAddress("d8dA6BF26964aF9D7eEd9e03E53415D37aA96045"))
	assert.False(t, IsValidEthAddress("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA9604"))
	assert.False(t, IsValidEthAddress("0xzz"))
}

func TestPaymentURI(t *testing.T) {
	t.Parallel()

	lower := "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"
	assert.Equal(t, "ethereum:0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045@1", PaymentURI(lower, "0x1"))
	assert.Equal(t, "ethereum:0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045@137", PaymentURI(lower, "0x89"))
	assert.Equal(t, "ethereum:0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", PaymentURI(lower, ""))
}

func TestValidateEndpoint(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{
		"http://127.0.0.1:8545",
		"https://mainnet.infura.io/v3/key",
		" ws://localhost:8546 ",
		"wss://node.example/ws",
		"/tmp/geth.ipc",
	} {
		assert.NoError(t, ValidateEndpoint(ok), ok)
	}

	for _, bad := range []string{"", "   ", "localhost:8545", "ftp://node", "http://", "geth.ipc"} {
		assert.Error(t, ValidateEndpoint(bad), bad)
	}
}

func TestLoadedAt(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "loading…", LoadedAt(time.Now(), true))
	assert.Equal(t, "never", LoadedAt(time.Time{}, false))
	assert.Equal(t, "13:04:05", LoadedAt(time.Date(2024, 1, 2, 13, 4, 5, 0, time.UTC), false))
}

func TestMinMax(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 3, Max(1, 3))
	assert.Equal(t, 1, Min(1, 3))
}
