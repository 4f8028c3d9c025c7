package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	PriceDenominationEthUsd   = "eth_usd"
	PriceDenominationDegenUsd = "degen_usd"
)

// Contracts deployed by one contract generation on a chain
type Contracts struct {
	// Address of the bounty contract
	Bounty string

	// Address of the claim NFT contract
	Nft string
}

// Chain describes one network the indexer materializes state for
type Chain struct {
	// EVM chain id
	Id uint64

	// Symbolic network name
	Name string

	// Currency label used in the activity log, e.g. "eth" or "degen"
	Currency string

	// Column of the price table holding the native asset's USD rate
	PriceDenomination string

	// Number of ids produced by the legacy generation on this chain.
	// Current generation ids are shifted by this value. Nil means not configured.
	Offset *uint64

	Legacy  Contracts
	Current Contracts
}

type Indexer struct {
	// Networks that are indexed
	Chains []Chain

	// Addresses that are not real participants (mint/burn, escrow), lower or mixed case
	IgnoredAddresses []string

	// Max number of events buffered for each chain
	ChainQueueSize int

	// Max time applying one event is retried on transient errors, 0 is no limit
	ApplyMaxElapsedTime time.Duration

	// Max time between retries of applying one event
	ApplyMaxInterval time.Duration

	// How long the latest price snapshot is cached
	PriceCacheTTL time.Duration

	// Max line size of the replayed log file
	ReplayMaxLineSize int
}

// Chains have no offsets by default, they have to be set in the config file
func setIndexerDefaults() {
	viper.SetDefault("Indexer.Chains", []Chain{
		{
			Id:                42161,
			Name:              "arbitrum",
			Currency:          "eth",
			PriceDenomination: PriceDenominationEthUsd,
		},
		{
			Id:                8453,
			Name:              "base",
			Currency:          "eth",
			PriceDenomination: PriceDenominationEthUsd,
		},
		{
			Id:                666666666,
			Name:              "degen",
			Currency:          "degen",
			PriceDenomination: PriceDenominationDegenUsd,
		},
	})
	viper.SetDefault("Indexer.IgnoredAddresses", []string{
		"0x0000000000000000000000000000000000000000",
		"0x000000000000000000000000000000000000dead",
	})
	viper.SetDefault("Indexer.ChainQueueSize", "100")
	viper.SetDefault("Indexer.ApplyMaxElapsedTime", "0s")
	viper.SetDefault("Indexer.ApplyMaxInterval", "30s")
	viper.SetDefault("Indexer.PriceCacheTTL", "1m")
	viper.SetDefault("Indexer.ReplayMaxLineSize", "1048576")
}

// Validate checks the parts of the configuration that can't be defaulted
func (self *Indexer) Validate() error {
	seen := make(map[uint64]struct{}, len(self.Chains))
	for _, chain := range self.Chains {
		if _, ok := seen[chain.Id]; ok {
			return fmt.Errorf("chain %d configured twice", chain.Id)
		}
		seen[chain.Id] = struct{}{}

		switch chain.PriceDenomination {
		case PriceDenominationEthUsd, PriceDenominationDegenUsd:
		default:
			return fmt.Errorf("chain %d: unknown price denomination %q", chain.Id, chain.PriceDenomination)
		}

		if chain.Currency == "" {
			return fmt.Errorf("chain %d: currency label not set", chain.Id)
		}
	}
	return nil
}

// GetChain returns the configuration of the chain with the given id
func (self *Indexer) GetChain(id uint64) (*Chain, bool) {
	for i := range self.Chains {
		if self.Chains[i].Id == id {
			return &self.Chains[i], true
		}
	}
	return nil, false
}
