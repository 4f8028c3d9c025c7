package eth

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const EtherDecimals = 18

// WeiToEther converts an amount of the smallest unit into the native unit without losing precision
func WeiToEther(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -EtherDecimals)
}

// FormatEther renders the amount the way wallets do, e.g. 1500000000000000000 -> "1.5"
func FormatEther(wei *big.Int) string {
	return WeiToEther(wei).String()
}

// ParseWei parses a decimal string representation of wei
func ParseWei(s string) (wei *big.Int, ok bool) {
	if s == "" {
		return new(big.Int), true
	}
	return new(big.Int).SetString(s, 10)
}
