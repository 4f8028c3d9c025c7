package bounty_sync

import (
	"math/big"
	"testing"
	"time"

	"github.com/poidh/indexer/src/utils/config"
	"github.com/poidh/indexer/src/utils/model"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testChainId = 1

var (
	legacyBountyContract  = common.HexToAddress("0x1000000000000000000000000000000000000001")
	legacyNftContract     = common.HexToAddress("0x1000000000000000000000000000000000000002")
	currentBountyContract = common.HexToAddress("0x1000000000000000000000000000000000000003")
	currentNftContract    = common.HexToAddress("0x1000000000000000000000000000000000000004")

	alice = common.HexToAddress("0xa11ce00000000000000000000000000000000001").Hex()
	bob   = common.HexToAddress("0xb0b0000000000000000000000000000000000002").Hex()
	carol = common.HexToAddress("0xca40100000000000000000000000000000000003").Hex()
	dead  = common.HexToAddress("0x000000000000000000000000000000000000dEaD").Hex()
)

func testConfig() *config.Config {
	offset := uint64(100)

	cfg := config.Default()
	cfg.Indexer.Chains = []config.Chain{
		{
			Id:                testChainId,
			Name:              "test",
			Currency:          "eth",
			PriceDenomination: config.PriceDenominationEthUsd,
			Offset:            &offset,
			Legacy: config.Contracts{
				Bounty: legacyBountyContract.Hex(),
				Nft:    legacyNftContract.Hex(),
			},
			Current: config.Contracts{
				Bounty: currentBountyContract.Hex(),
				Nft:    currentNftContract.Hex(),
			},
		},
	}
	cfg.Indexer.PriceCacheTTL = 0
	cfg.Indexer.ApplyMaxElapsedTime = time.Second
	cfg.Indexer.ApplyMaxInterval = 10 * time.Millisecond
	cfg.Redis.Enabled = false
	cfg.StopTimeout = 5 * time.Second
	return cfg
}

// ether converts a decimal amount of ether into wei
func ether(v string) *big.Int {
	return decimal.RequireFromString(v).Shift(18).BigInt()
}

func setEthPrice(t testing.TB, db *gorm.DB, ethUsd string) {
	err := db.Create(&model.Price{
		EthUsd:    decimal.RequireFromString(ethUsd),
		DegenUsd:  decimal.RequireFromString("0.01"),
		Timestamp: time.Now().Unix(),
	}).Error
	require.Nil(t, err)
}

func uint64Ptr(v uint64) *uint64 {
	return &v
}
