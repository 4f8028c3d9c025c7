package bounty_sync

import (
	"errors"
	"math/big"

	"github.com/poidh/indexer/src/utils/eth"
	"github.com/poidh/indexer/src/utils/model"
)

func onClaimCreated(c *Context, p *ClaimCreated) (err error) {
	id, err := c.ResolveId(p.Id)
	if err != nil {
		return
	}

	// Cross reference is resolved the same way as the bounty's own id
	bountyId, err := c.ResolveId(p.BountyId)
	if err != nil {
		return
	}

	issuer := eth.NormalizeAddress(p.Issuer)
	err = c.Tx.EnsureUser(issuer)
	if err != nil {
		return
	}

	err = c.Tx.UpsertClaim(&model.Claim{
		Id:          id,
		ChainId:     c.ChainId(),
		OnChainId:   p.Id,
		Title:       p.Title,
		Description: p.Description,
		Url:         c.Strategy.ImageUri(p.ImageUri),
		Issuer:      issuer,
		Owner:       c.Strategy.EscrowAddress(c.Chain),
		BountyId:    bountyId,
	})
	if err != nil {
		return
	}

	c.Record("claim created", issuer, bountyId, &id)
	return
}

func onClaimAccepted(c *Context, p *ClaimAccepted) (err error) {
	claimId, err := c.ResolveId(p.ClaimId)
	if err != nil {
		return
	}

	bountyId, err := c.ResolveId(p.BountyId)
	if err != nil {
		return
	}

	issuer := eth.NormalizeAddress(p.ClaimIssuer)

	claim, err := c.Tx.GetClaim(c.ChainId(), claimId)
	switch {
	case errors.Is(err, ErrNotFound):
		c.Log.WithField("claim_id", claimId).Warn("Accepted claim doesn't exist")
	case err != nil:
		return
	case claim.IsAccepted:
		// Settling again would double count the leaderboard
		c.Log.WithError(ErrConflictingAggregateWrite).
			WithField("claim_id", claimId).
			WithField("bounty_id", bountyId).
			Warn("Claim already accepted, skipping settlement")
		c.Record("claim accepted", issuer, bountyId, &claimId)
		return nil
	default:
		if issuer == "" {
			issuer = claim.Issuer
		}
	}

	bounty, err := c.RequireBounty(bountyId)
	if err != nil {
		return
	}

	// Has to be checked before this claim is marked accepted
	terminal, err := c.IsTerminal(bounty)
	if err != nil {
		return
	}
	if terminal {
		c.Log.WithError(ErrConflictingAggregateWrite).
			WithField("claim_id", claimId).
			WithField("bounty_id", bountyId).
			WithField("is_canceled", bounty.IsCanceled).
			Warn("Bounty is already resolved, skipping settlement")
		c.Record("claim accepted", issuer, bountyId, &claimId)
		return nil
	}

	fields := map[string]interface{}{
		"in_progress": false,
	}

	if p.BountyAmount != nil && p.BountyAmount.String() != bounty.Amount {
		c.Log.WithField("bounty_id", bountyId).
			WithField("stored", bounty.Amount).
			WithField("reported", p.BountyAmount.String()).
			Warn("Bounty pool differs from the amount reported by the contract")

		var balance map[string]interface{}
		balance, err = balanceFields(c, bounty, new(big.Int), p.BountyAmount)
		if err != nil {
			return
		}
		for k, v := range balance {
			fields[k] = v
		}
		bounty.Amount = balance["amount"].(string)
	}

	if claim != nil {
		err = c.Tx.AcceptClaim(c.ChainId(), claimId)
		if err != nil {
			return
		}
	}

	err = c.Tx.UpdateBounty(c.ChainId(), bountyId, fields)
	if err != nil {
		return
	}

	err = settle(c, bounty, issuer)
	if err != nil {
		return
	}

	c.Record("claim accepted", issuer, bountyId, &claimId)
	return
}

func onTransfer(c *Context, p *Transfer) (err error) {
	id, err := c.ResolveId(p.TokenId)
	if err != nil {
		return
	}

	from := eth.NormalizeAddress(p.From)
	to := eth.NormalizeAddress(p.To)

	if !c.IsSentinel(to) {
		err = c.Tx.EnsureUser(to)
		if err != nil {
			return
		}
	}

	// Transfer may arrive before the claim is created
	err = c.Tx.TransferClaim(&model.Claim{
		Id:        id,
		ChainId:   c.ChainId(),
		OnChainId: p.TokenId,
		Url:       p.Url,
		Issuer:    to,
		Owner:     to,
	})
	if err != nil {
		return
	}

	for _, address := range []string{from, to} {
		err = recountNfts(c, address)
		if err != nil {
			return
		}
	}

	claim, err := c.Tx.GetClaim(c.ChainId(), id)
	if err != nil {
		return
	}

	c.Record("claim transferred", to, claim.BountyId, &id)
	return
}
