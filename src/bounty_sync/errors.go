package bounty_sync

import (
	"errors"

	"github.com/poidh/indexer/src/utils/eth"
	"github.com/poidh/indexer/src/utils/namespace"
	"github.com/poidh/indexer/src/utils/price"
)

var (
	ErrMissingPriceSnapshot      = price.ErrMissingPriceSnapshot
	ErrUnknownIdentifierOffset   = namespace.ErrUnknownIdentifierOffset
	ErrUnknownEvent              = eth.ErrUnknownEvent
	ErrMissingVotingRound        = errors.New("missing voting round")
	ErrConflictingAggregateWrite = errors.New("conflicting aggregate write")
	ErrMissingBounty             = errors.New("missing bounty")
	ErrNegativeBalance           = errors.New("negative bounty balance")
	ErrOutOfOrder                = errors.New("event out of order")
	ErrUnknownChain              = errors.New("unknown chain")
	ErrNoActivity                = errors.New("handler recorded no activity")

	// Returned by lookups in the store
	ErrNotFound = errors.New("record not found")

	// Rolls back the event's transaction, never leaves the dispatcher
	errDuplicate = errors.New("duplicate event")
)

// IsPermanent tells if applying the event again can't succeed without operator intervention
func IsPermanent(err error) bool {
	return errors.Is(err, ErrMissingPriceSnapshot) ||
		errors.Is(err, ErrUnknownIdentifierOffset) ||
		errors.Is(err, ErrUnknownEvent) ||
		errors.Is(err, ErrMissingVotingRound) ||
		errors.Is(err, ErrMissingBounty) ||
		errors.Is(err, ErrNegativeBalance) ||
		errors.Is(err, ErrOutOfOrder) ||
		errors.Is(err, ErrUnknownChain) ||
		errors.Is(err, ErrNoActivity) ||
		errors.Is(err, eth.ErrInvalidArg)
}
