package bounty_sync

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/poidh/indexer/src/utils/config"
	"github.com/poidh/indexer/src/utils/eth"
	"github.com/poidh/indexer/src/utils/model"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// Address used in the activity log for events without an acting address
const systemAddress = "0x0"

type PriceSource interface {
	LatestPrice(ctx context.Context, chainId uint64) (decimal.Decimal, error)
}

// Context is everything a handler gets to apply one event
type Context struct {
	Ctx      context.Context
	Tx       Tx
	Event    *Event
	Chain    *config.Chain
	Strategy *Strategy
	Prices   PriceSource
	Log      *logrus.Entry

	sentinels map[string]struct{}
	activity  *model.Transaction
}

// Record sets the activity log entry of the event. Every handler calls it exactly once.
func (self *Context) Record(action, address string, bountyId uint64, claimId *uint64) {
	self.activity = &model.Transaction{
		ChainId:     self.Event.ChainId,
		Tx:          self.Event.TxHash,
		LogIndex:    self.Event.LogIndex,
		BlockNumber: self.Event.BlockNumber,
		Index:       self.Event.TxIndex,
		Action:      action,
		Address:     address,
		BountyId:    bountyId,
		ClaimId:     claimId,
		Timestamp:   self.Event.BlockTimestamp,
	}
}

func (self *Context) ChainId() uint64 {
	return self.Event.ChainId
}

func (self *Context) ResolveId(localId uint64) (uint64, error) {
	return self.Strategy.ResolveId(self.Event.ChainId, localId)
}

// IsSentinel tells if the address is not a real participant (mint/burn, escrow contracts)
func (self *Context) IsSentinel(address string) bool {
	_, ok := self.sentinels[eth.AddressKey(address)]
	return ok
}

func (self *Context) Price() (decimal.Decimal, error) {
	return self.Prices.LatestPrice(self.Ctx, self.Event.ChainId)
}

// AmountLabel renders a change of the pool, e.g. "+0.5 eth"
func (self *Context) AmountLabel(sign string, wei *big.Int) string {
	return fmt.Sprintf("%s%s %s", sign, eth.FormatEther(wei), self.Chain.Currency)
}

// RequireBounty fails with ErrMissingBounty if the bounty wasn't created
func (self *Context) RequireBounty(id uint64) (*model.Bounty, error) {
	bounty, err := self.Tx.GetBounty(self.Event.ChainId, id)
	if errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("%w: %d on chain %d", ErrMissingBounty, id, self.Event.ChainId)
	}
	return bounty, err
}

// IsTerminal tells if the bounty reached a state it can't leave
func (self *Context) IsTerminal(bounty *model.Bounty) (bool, error) {
	if bounty.IsCanceled {
		return true, nil
	}
	return self.Tx.HasAcceptedClaim(bounty.ChainId, bounty.Id)
}

// UpdateBounty writes the fields, refusing to reopen a terminal bounty.
// Updates of bounties that don't exist are skipped.
func (self *Context) UpdateBounty(id uint64, fields map[string]interface{}) (err error) {
	bounty, err := self.Tx.GetBounty(self.Event.ChainId, id)
	if errors.Is(err, ErrNotFound) {
		self.Log.WithField("bounty_id", id).Warn("Bounty doesn't exist, skipping update")
		return nil
	}
	if err != nil {
		return
	}

	if reopen, ok := fields["in_progress"].(bool); ok && reopen {
		var terminal bool
		terminal, err = self.IsTerminal(bounty)
		if err != nil {
			return
		}
		if terminal {
			self.Log.WithError(ErrConflictingAggregateWrite).
				WithField("bounty_id", id).
				Warn("Bounty is resolved, not reopening it")
			delete(fields, "in_progress")
		}
	}

	if len(fields) == 0 {
		return nil
	}

	return self.Tx.UpdateBounty(self.Event.ChainId, id, fields)
}
