package bounty_sync

import (
	"fmt"

	"github.com/poidh/indexer/src/utils/eth"
	"github.com/poidh/indexer/src/utils/model"
	"github.com/poidh/indexer/src/utils/price"

	"github.com/shopspring/decimal"
)

// settle credits the claim issuer with the bounty pool and every participant with their stake.
// Totals are accumulated by the store in a single upsert per address, never read back here.
func settle(c *Context, bounty *model.Bounty, issuer string) (err error) {
	usd, err := c.Price()
	if err != nil {
		return
	}

	amount, ok := eth.ParseWei(bounty.Amount)
	if !ok {
		return fmt.Errorf("invalid amount %q of bounty %d", bounty.Amount, bounty.Id)
	}

	if issuer != "" && !c.IsSentinel(issuer) {
		err = c.Tx.IncrementLeaderboard(c.ChainId(), issuer, price.UsdValue(amount, usd), decimal.Zero)
		if err != nil {
			return
		}
	}

	participations, err := c.Tx.GetParticipations(c.ChainId(), bounty.Id)
	if err != nil {
		return
	}

	for _, participation := range participations {
		if c.IsSentinel(participation.UserAddress) {
			continue
		}

		stake, ok := eth.ParseWei(participation.Amount)
		if !ok {
			return fmt.Errorf("invalid stake %q of %s in bounty %d", participation.Amount, participation.UserAddress, bounty.Id)
		}

		err = c.Tx.IncrementLeaderboard(c.ChainId(), participation.UserAddress, decimal.Zero, price.UsdValue(stake, usd))
		if err != nil {
			return
		}
	}

	c.Log.WithField("bounty_id", bounty.Id).
		WithField("issuer", issuer).
		WithField("participants", len(participations)).
		Debug("Settled bounty")

	return
}

// recountNfts overwrites the number of claims owned by the address with a fresh count
func recountNfts(c *Context, address string) (err error) {
	if address == "" || c.IsSentinel(address) {
		return
	}

	count, err := c.Tx.CountClaimsOwned(c.ChainId(), address)
	if err != nil {
		return
	}

	return c.Tx.SetLeaderboardNfts(c.ChainId(), address, count)
}
