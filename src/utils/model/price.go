package model

import "github.com/shopspring/decimal"

const TablePrice = "price"

// Price is a snapshot written by the exchange rate ingestion job
type Price struct {
	Id        uint64          `gorm:"primaryKey"`
	EthUsd    decimal.Decimal `gorm:"type:numeric"`
	DegenUsd  decimal.Decimal `gorm:"type:numeric"`
	Timestamp int64
}

func (Price) TableName() string {
	return TablePrice
}
