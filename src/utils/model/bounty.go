package model

const TableBounty = "bounties"

// Bounty is the live state of a funded request for work
type Bounty struct {
	Id      uint64 `gorm:"primaryKey;autoIncrement:false"`
	ChainId uint64 `gorm:"primaryKey;autoIncrement:false"`

	// Id emitted by the contract, before namespace offsetting
	OnChainId uint64

	Title       string
	Description string

	// Currently staked pool in wei, decimal string
	Amount string

	// Approximate USD value of Amount, used only for ranking
	AmountSort float64

	Issuer         string
	IsMultiplayer  bool
	IsJoinedBounty bool
	IsCanceled     bool
	IsVoting       bool
	InProgress     bool
	Deadline       *uint64

	// Block timestamp of the creation
	CreatedAt uint64 `gorm:"autoCreateTime:false"`
}

func (Bounty) TableName() string {
	return TableBounty
}
