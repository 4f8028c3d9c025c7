package eth

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

var ZeroAddress = common.Address{}.Hex()

// NormalizeAddress returns the checksummed form of the address, or an empty string for invalid input
func NormalizeAddress(s string) string {
	if !common.IsHexAddress(s) {
		return ""
	}
	return common.HexToAddress(s).Hex()
}

// AddressKey is the form used for address set lookups
func AddressKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
