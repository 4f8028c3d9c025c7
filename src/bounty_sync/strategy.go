package bounty_sync

import (
	"math/big"

	"github.com/poidh/indexer/src/utils/config"
	"github.com/poidh/indexer/src/utils/eth"
	"github.com/poidh/indexer/src/utils/namespace"
)

// Strategy captures everything that differs between contract generations.
// Handlers are shared, they only ask the strategy.
type Strategy struct {
	Generation namespace.Generation

	resolver *namespace.Resolver

	// Contract reports the bounty balance after joins and withdrawals
	reportsBalance bool

	// Claims carry an image URI
	hasImageUri bool
}

func NewStrategies(resolver *namespace.Resolver) map[namespace.Generation]*Strategy {
	return map[namespace.Generation]*Strategy{
		namespace.Legacy: {
			Generation:     namespace.Legacy,
			resolver:       resolver,
			reportsBalance: false,
			hasImageUri:    false,
		},
		namespace.Current: {
			Generation:     namespace.Current,
			resolver:       resolver,
			reportsBalance: true,
			hasImageUri:    true,
		},
	}
}

func (self *Strategy) ResolveId(chainId, localId uint64) (uint64, error) {
	return self.resolver.Resolve(chainId, self.Generation, localId)
}

// NextBalance computes the pool after a change of delta (negative for withdrawals).
// A reported balance wins over local arithmetic when the generation provides one.
func (self *Strategy) NextBalance(current, delta, reported *big.Int) *big.Int {
	if self.reportsBalance && reported != nil {
		return new(big.Int).Set(reported)
	}
	return new(big.Int).Add(current, delta)
}

func (self *Strategy) ImageUri(uri string) string {
	if !self.hasImageUri {
		return ""
	}
	return uri
}

// Contracts of this generation on the chain
func (self *Strategy) Contracts(chain *config.Chain) config.Contracts {
	if self.Generation == namespace.Legacy {
		return chain.Legacy
	}
	return chain.Current
}

// EscrowAddress is the initial owner of a claim, before its NFT is transferred
func (self *Strategy) EscrowAddress(chain *config.Chain) string {
	address := eth.NormalizeAddress(self.Contracts(chain).Bounty)
	if address == "" {
		return eth.ZeroAddress
	}
	return address
}
