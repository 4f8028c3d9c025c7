package model

const TableVotingRound = "votes"

// VotingRound is one yes/no tally cycle over a claim submitted for vote
type VotingRound struct {
	ChainId  uint64 `gorm:"primaryKey;autoIncrement:false"`
	BountyId uint64 `gorm:"primaryKey;autoIncrement:false"`
	Round    uint64 `gorm:"primaryKey;autoIncrement:false"`

	ClaimId  uint64
	Yes      uint64
	No       uint64
	Deadline *uint64
}

func (VotingRound) TableName() string {
	return TableVotingRound
}
