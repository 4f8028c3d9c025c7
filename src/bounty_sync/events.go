package bounty_sync

import (
	"fmt"
	"math/big"

	"github.com/poidh/indexer/src/utils/namespace"
)

type ContractKind string

const (
	ContractBounty ContractKind = "bounty"
	ContractNft    ContractKind = "nft"
)

// Event is one decoded contract log, tagged with where it comes from
type Event struct {
	ChainId        uint64
	Generation     namespace.Generation
	Contract       ContractKind
	BlockNumber    uint64
	BlockTimestamp uint64
	TxHash         string
	TxIndex        uint
	LogIndex       uint

	Payload Payload
}

func (self *Event) Key() OrderingKey {
	return OrderingKey{
		BlockNumber: self.BlockNumber,
		TxIndex:     self.TxIndex,
		LogIndex:    self.LogIndex,
	}
}

func (self *Event) String() string {
	return fmt.Sprintf("%s/%s chain=%d block=%d tx=%s log=%d", self.Generation, self.Payload.EventName(), self.ChainId, self.BlockNumber, self.TxHash, self.LogIndex)
}

// OrderingKey is the position of an event within its chain
type OrderingKey struct {
	BlockNumber uint64
	TxIndex     uint
	LogIndex    uint
}

func (self OrderingKey) Less(other OrderingKey) bool {
	if self.BlockNumber != other.BlockNumber {
		return self.BlockNumber < other.BlockNumber
	}
	if self.TxIndex != other.TxIndex {
		return self.TxIndex < other.TxIndex
	}
	return self.LogIndex < other.LogIndex
}

type Payload interface {
	EventName() string
}

// All ids in payloads are local to the contract generation that emitted them.
// Optional values are nil when the emitting contract doesn't provide them.

type BountyCreated struct {
	Id            uint64
	Issuer        string
	Title         string
	Description   string
	Amount        *big.Int
	IsMultiplayer bool
	CreatedAt     uint64
}

type BountyCancelled struct {
	BountyId uint64
	Issuer   string
}

type BountyJoined struct {
	BountyId    uint64
	Participant string
	Amount      *big.Int

	// Balance reported by the contract after joining
	Balance  *big.Int
	Deadline *uint64
}

type WithdrawFromOpenBounty struct {
	BountyId    uint64
	Participant string
	Amount      *big.Int

	// Balance reported by the contract after the withdrawal
	Balance *big.Int
}

type ClaimCreated struct {
	Id          uint64
	BountyId    uint64
	Issuer      string
	Title       string
	Description string
	ImageUri    string
}

type ClaimAccepted struct {
	BountyId    uint64
	ClaimId     uint64
	ClaimIssuer string

	// Pool paid out, reported by the current contract only
	BountyAmount *big.Int
}

type ClaimSubmittedForVote struct {
	BountyId uint64
	ClaimId  uint64
	Deadline *uint64
}

type VoteClaim struct {
	BountyId uint64
	ClaimId  uint64
	Voter    string
	Support  bool
	Deadline *uint64
}

type VotingResolved struct {
	BountyId uint64
	ClaimId  uint64
	Passed   bool
}

type ResetVotingPeriod struct {
	BountyId uint64
	Deadline *uint64
}

// Transfer of a claim NFT
type Transfer struct {
	From    string
	To      string
	TokenId uint64

	// Token URI at the time of the transfer
	Url string
}

func (*BountyCreated) EventName() string          { return "BountyCreated" }
func (*BountyCancelled) EventName() string        { return "BountyCancelled" }
func (*BountyJoined) EventName() string           { return "BountyJoined" }
func (*WithdrawFromOpenBounty) EventName() string { return "WithdrawFromOpenBounty" }
func (*ClaimCreated) EventName() string           { return "ClaimCreated" }
func (*ClaimAccepted) EventName() string          { return "ClaimAccepted" }
func (*ClaimSubmittedForVote) EventName() string  { return "ClaimSubmittedForVote" }
func (*VoteClaim) EventName() string              { return "VoteClaim" }
func (*VotingResolved) EventName() string         { return "VotingResolved" }
func (*ResetVotingPeriod) EventName() string      { return "ResetVotingPeriod" }
func (*Transfer) EventName() string               { return "Transfer" }
