package model

const TableParticipation = "participations_bounties"

// Participation is the current stake of an address in a bounty
type Participation struct {
	ChainId     uint64 `gorm:"primaryKey;autoIncrement:false"`
	BountyId    uint64 `gorm:"primaryKey;autoIncrement:false"`
	UserAddress string `gorm:"primaryKey"`

	// Stake in wei, decimal string
	Amount string
}

func (Participation) TableName() string {
	return TableParticipation
}
