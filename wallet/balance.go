package wallet

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

const weiPerEther = 1e18

// FormatEther converts a hex wei quantity into ether with 4 fractional
// digits. The division is done in float64, so very large balances lose
// precision. The figure is display only.
func FormatEther(hexWei string) (string, error) {
	wei, err := parseQuantity(hexWei)
	if err != nil {
		return "", err
	}
	f, _ := new(big.Float).SetInt(wei).Float64()
	return strconv.FormatFloat(f/weiPerEther, 'f', 4, 64), nil
}

// parseQuantity decodes a hex quantity. Providers in the wild pad with
// leading zeros, which hexutil rejects.
func parseQuantity(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	n, err := hexutil.DecodeBig(s)
	if err == nil {
		return n, nil
	}
	if !errors.Is(err, hexutil.ErrLeadingZero) {
		return nil, fmt.Errorf("invalid hex quantity %q: %w", s, err)
	}
	n, ok := new(big.Int).SetString(s[2:], 16)
	if !ok {
		return nil, fmt.Errorf("invalid hex quantity %q", s)
	}
	return n, nil
}
