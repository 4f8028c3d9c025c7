package namespace

import (
	"errors"
	"fmt"

	"github.com/poidh/indexer/src/utils/config"
)

var ErrUnknownIdentifierOffset = errors.New("unknown identifier offset")

// Resolver maps ids local to a contract generation into the id space shared by both generations of a chain.
// Offsets are read once from the configuration and never change afterwards.
type Resolver struct {
	offsets map[uint64]uint64
}

func NewResolver(chains []config.Chain) (self *Resolver) {
	self = new(Resolver)
	self.offsets = make(map[uint64]uint64, len(chains))
	for _, chain := range chains {
		if chain.Offset == nil {
			continue
		}
		self.offsets[chain.Id] = *chain.Offset
	}
	return
}

// Resolve returns the global id. Legacy ids are never shifted.
func (self *Resolver) Resolve(chainId uint64, generation Generation, localId uint64) (uint64, error) {
	switch generation {
	case Legacy:
		return localId, nil
	case Current:
		offset, ok := self.offsets[chainId]
		if !ok {
			return 0, fmt.Errorf("%w: chain %d", ErrUnknownIdentifierOffset, chainId)
		}
		return offset + localId, nil
	}
	return 0, fmt.Errorf("unsupported generation %s", generation)
}

// Validate fails if any of the chains can't resolve current generation ids
func (self *Resolver) Validate(chainIds ...uint64) error {
	for _, chainId := range chainIds {
		if _, ok := self.offsets[chainId]; !ok {
			return fmt.Errorf("%w: chain %d", ErrUnknownIdentifierOffset, chainId)
		}
	}
	return nil
}

func (self *Resolver) Offset(chainId uint64) (offset uint64, ok bool) {
	offset, ok = self.offsets[chainId]
	return
}
