package model

import "github.com/shopspring/decimal"

const TableLeaderboard = "leaderboard"

// LeaderboardEntry holds per-chain running totals of an address.
// Earned and Paid are accumulated deltas, Nfts is recomputed from claims.
type LeaderboardEntry struct {
	ChainId uint64 `gorm:"primaryKey;autoIncrement:false"`
	Address string `gorm:"primaryKey"`

	// USD received as the issuer of accepted claims
	Earned decimal.Decimal `gorm:"type:numeric;not null"`

	// USD contributed to bounties resolved in favor of someone else
	Paid decimal.Decimal `gorm:"type:numeric;not null"`

	// Number of claims currently owned
	Nfts int64 `gorm:"not null"`
}

func (LeaderboardEntry) TableName() string {
	return TableLeaderboard
}
