package bounty_sync

import (
	"context"
	"math/big"

	"github.com/poidh/indexer/src/utils/model"

	"github.com/shopspring/decimal"
)

// Store runs all writes caused by one event as a single unit
type Store interface {
	Transaction(ctx context.Context, fn func(tx Tx) error) error
}

// Tx is the set of operations handlers may perform on aggregates.
// Lookups return ErrNotFound when the row doesn't exist.
type Tx interface {
	// Users
	EnsureUser(address string) error

	// Bounties
	InsertBounty(bounty *model.Bounty) error
	GetBounty(chainId, id uint64) (*model.Bounty, error)
	UpdateBounty(chainId, id uint64, fields map[string]interface{}) error

	// Claims
	UpsertClaim(claim *model.Claim) error
	GetClaim(chainId, id uint64) (*model.Claim, error)
	AcceptClaim(chainId, id uint64) error
	TransferClaim(claim *model.Claim) error
	CountClaimsOwned(chainId uint64, owner string) (int64, error)
	HasAcceptedClaim(chainId, bountyId uint64) (bool, error)

	// Participations
	InsertParticipation(participation *model.Participation) error
	AddParticipation(chainId, bountyId uint64, address string, amount *big.Int) error
	DeleteParticipation(chainId, bountyId uint64, address string) error
	GetParticipations(chainId, bountyId uint64) ([]model.Participation, error)

	// Voting
	InsertVotingRound(round *model.VotingRound) error
	LatestVotingRound(chainId, bountyId uint64) (*model.VotingRound, error)
	IncrementVote(chainId, bountyId, round uint64, support bool) error
	UpdateVotingRoundDeadline(chainId, bountyId, round, deadline uint64) error

	// Leaderboard
	IncrementLeaderboard(chainId uint64, address string, earned, paid decimal.Decimal) error
	SetLeaderboardNfts(chainId uint64, address string, nfts int64) error

	// Transaction log
	HasTransaction(chainId uint64, txHash string, logIndex uint) (bool, error)
	LastTransaction(chainId uint64) (*model.Transaction, error)
	InsertTransaction(transaction *model.Transaction) (inserted bool, err error)
}
