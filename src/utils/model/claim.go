package model

const TableClaim = "claims"

// Claim is a submission against a bounty, transferable as an NFT
type Claim struct {
	Id      uint64 `gorm:"primaryKey;autoIncrement:false"`
	ChainId uint64 `gorm:"primaryKey;autoIncrement:false"`

	// Id emitted by the contract, before namespace offsetting
	OnChainId uint64

	Title       string
	Description string

	// Media reference (token URI)
	Url string

	// Author of the claim
	Issuer string

	// Current holder of the claim NFT, may diverge from Issuer
	Owner string `gorm:"index:idx_claims_owner"`

	IsAccepted bool
	BountyId   uint64 `gorm:"index:idx_claims_bounty"`
}

func (Claim) TableName() string {
	return TableClaim
}
