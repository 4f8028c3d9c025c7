package bounty_sync

import (
	"fmt"
	"math/big"

	"github.com/poidh/indexer/src/utils/eth"
	"github.com/poidh/indexer/src/utils/model"
	"github.com/poidh/indexer/src/utils/price"
)

func onBountyCreated(c *Context, p *BountyCreated) (err error) {
	id, err := c.ResolveId(p.Id)
	if err != nil {
		return
	}

	usd, err := c.Price()
	if err != nil {
		return
	}

	issuer := eth.NormalizeAddress(p.Issuer)
	err = c.Tx.EnsureUser(issuer)
	if err != nil {
		return
	}

	createdAt := p.CreatedAt
	if createdAt == 0 {
		createdAt = c.Event.BlockTimestamp
	}

	err = c.Tx.InsertBounty(&model.Bounty{
		Id:            id,
		ChainId:       c.ChainId(),
		OnChainId:     p.Id,
		Title:         p.Title,
		Description:   p.Description,
		Amount:        p.Amount.String(),
		AmountSort:    price.UsdValue(p.Amount, usd).InexactFloat64(),
		Issuer:        issuer,
		IsMultiplayer: p.IsMultiplayer,
		InProgress:    true,
		CreatedAt:     createdAt,
	})
	if err != nil {
		return
	}

	// Issuer is the first participant
	err = c.Tx.InsertParticipation(&model.Participation{
		ChainId:     c.ChainId(),
		BountyId:    id,
		UserAddress: issuer,
		Amount:      p.Amount.String(),
	})
	if err != nil {
		return
	}

	c.Log.WithField("bounty_id", id).WithField("amount", p.Amount.String()).Debug("Bounty created")
	c.Record("bounty created", issuer, id, nil)
	return
}

func onBountyCancelled(c *Context, p *BountyCancelled) (err error) {
	id, err := c.ResolveId(p.BountyId)
	if err != nil {
		return
	}

	err = c.UpdateBounty(id, map[string]interface{}{
		"is_canceled": true,
		"in_progress": false,
	})
	if err != nil {
		return
	}

	c.Record("bounty canceled", eth.NormalizeAddress(p.Issuer), id, nil)
	return
}

func onBountyJoined(c *Context, p *BountyJoined) (err error) {
	id, err := c.ResolveId(p.BountyId)
	if err != nil {
		return
	}

	bounty, err := c.RequireBounty(id)
	if err != nil {
		return
	}

	participant := eth.NormalizeAddress(p.Participant)
	err = c.Tx.EnsureUser(participant)
	if err != nil {
		return
	}

	err = c.Tx.AddParticipation(c.ChainId(), id, participant, p.Amount)
	if err != nil {
		return
	}

	fields, err := balanceFields(c, bounty, p.Amount, p.Balance)
	if err != nil {
		return
	}
	fields["is_joined_bounty"] = true
	if p.Deadline != nil {
		fields["deadline"] = *p.Deadline
	}

	err = c.Tx.UpdateBounty(c.ChainId(), id, fields)
	if err != nil {
		return
	}

	c.Record(c.AmountLabel("+", p.Amount), participant, id, nil)
	return
}

func onWithdrawFromOpenBounty(c *Context, p *WithdrawFromOpenBounty) (err error) {
	id, err := c.ResolveId(p.BountyId)
	if err != nil {
		return
	}

	bounty, err := c.RequireBounty(id)
	if err != nil {
		return
	}

	participant := eth.NormalizeAddress(p.Participant)
	err = c.Tx.DeleteParticipation(c.ChainId(), id, participant)
	if err != nil {
		return
	}

	fields, err := balanceFields(c, bounty, new(big.Int).Neg(p.Amount), p.Balance)
	if err != nil {
		return
	}

	err = c.Tx.UpdateBounty(c.ChainId(), id, fields)
	if err != nil {
		return
	}

	c.Record(c.AmountLabel("-", p.Amount), participant, id, nil)
	return
}

// balanceFields computes the new pool and its sort key
func balanceFields(c *Context, bounty *model.Bounty, delta, reported *big.Int) (fields map[string]interface{}, err error) {
	current, ok := eth.ParseWei(bounty.Amount)
	if !ok {
		err = fmt.Errorf("invalid amount %q of bounty %d", bounty.Amount, bounty.Id)
		return
	}

	next := c.Strategy.NextBalance(current, delta, reported)
	if next.Sign() < 0 {
		err = fmt.Errorf("%w: bounty %d, balance %s, change %s", ErrNegativeBalance, bounty.Id, current, delta)
		return
	}

	usd, err := c.Price()
	if err != nil {
		return
	}

	fields = map[string]interface{}{
		"amount":      next.String(),
		"amount_sort": price.UsdValue(next, usd).InexactFloat64(),
	}
	return
}
