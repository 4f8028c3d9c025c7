package bounty_sync

import (
	"errors"
	"fmt"

	"github.com/poidh/indexer/src/utils/eth"
	"github.com/poidh/indexer/src/utils/model"
)

func onClaimSubmittedForVote(c *Context, p *ClaimSubmittedForVote) (err error) {
	bountyId, err := c.ResolveId(p.BountyId)
	if err != nil {
		return
	}

	claimId, err := c.ResolveId(p.ClaimId)
	if err != nil {
		return
	}

	// Rounds are numbered from 1, every submission opens a new one
	round := uint64(1)
	latest, err := c.Tx.LatestVotingRound(c.ChainId(), bountyId)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return
	default:
		round = latest.Round + 1
	}

	err = c.Tx.InsertVotingRound(&model.VotingRound{
		ChainId:  c.ChainId(),
		BountyId: bountyId,
		Round:    round,
		ClaimId:  claimId,
		Deadline: p.Deadline,
	})
	if err != nil {
		return
	}

	fields := map[string]interface{}{
		"is_voting": true,
	}
	if p.Deadline != nil {
		fields["deadline"] = *p.Deadline
	}
	err = c.UpdateBounty(bountyId, fields)
	if err != nil {
		return
	}

	c.Log.WithField("bounty_id", bountyId).WithField("round", round).Debug("Voting round started")
	c.Record(fmt.Sprintf("%d submitted for vote", claimId), systemAddress, bountyId, &claimId)
	return
}

func onVoteClaim(c *Context, p *VoteClaim) (err error) {
	bountyId, err := c.ResolveId(p.BountyId)
	if err != nil {
		return
	}

	claimId, err := c.ResolveId(p.ClaimId)
	if err != nil {
		return
	}

	// Votes always count towards the newest round, earlier rounds are closed
	round, err := c.Tx.LatestVotingRound(c.ChainId(), bountyId)
	if errors.Is(err, ErrNotFound) {
		return fmt.Errorf("%w: bounty %d on chain %d", ErrMissingVotingRound, bountyId, c.ChainId())
	}
	if err != nil {
		return
	}

	if round.ClaimId != claimId {
		c.Log.WithField("bounty_id", bountyId).
			WithField("round", round.Round).
			WithField("round_claim_id", round.ClaimId).
			WithField("claim_id", claimId).
			Warn("Vote references a claim of a superseded round")
	}

	err = c.Tx.IncrementVote(c.ChainId(), bountyId, round.Round, p.Support)
	if err != nil {
		return
	}

	if p.Deadline != nil {
		err = c.Tx.UpdateVotingRoundDeadline(c.ChainId(), bountyId, round.Round, *p.Deadline)
		if err != nil {
			return
		}

		err = c.UpdateBounty(bountyId, map[string]interface{}{
			"deadline": *p.Deadline,
		})
		if err != nil {
			return
		}
	}

	c.Record("voted", eth.NormalizeAddress(p.Voter), bountyId, &claimId)
	return
}

func onVotingResolved(c *Context, p *VotingResolved) (err error) {
	bountyId, err := c.ResolveId(p.BountyId)
	if err != nil {
		return
	}

	claimId, err := c.ResolveId(p.ClaimId)
	if err != nil {
		return
	}

	// A passed vote is followed by the acceptance, a rejected one leaves the bounty open
	err = c.UpdateBounty(bountyId, map[string]interface{}{
		"is_voting":   false,
		"in_progress": !p.Passed,
	})
	if err != nil {
		return
	}

	action := "voting rejected"
	if p.Passed {
		action = "voting resolved"
	}

	c.Record(action, systemAddress, bountyId, &claimId)
	return
}

func onResetVotingPeriod(c *Context, p *ResetVotingPeriod) (err error) {
	bountyId, err := c.ResolveId(p.BountyId)
	if err != nil {
		return
	}

	fields := map[string]interface{}{
		"is_voting":   false,
		"in_progress": false,
	}
	if p.Deadline != nil {
		fields["deadline"] = *p.Deadline
	}

	err = c.UpdateBounty(bountyId, fields)
	if err != nil {
		return
	}

	c.Record("voting reset period", systemAddress, bountyId, nil)
	return
}
