package model

import "encoding/json"

const TableTransaction = "transactions"

// Transaction is the audit trail entry written once for every processed event
type Transaction struct {
	Id      uint64 `gorm:"primaryKey" json:"-"`
	ChainId uint64 `gorm:"uniqueIndex:idx_transactions_event,priority:1;index:idx_transactions_order,priority:1" json:"chain_id"`

	// Transaction hash
	Tx       string `gorm:"uniqueIndex:idx_transactions_event,priority:2" json:"tx"`
	LogIndex uint   `gorm:"uniqueIndex:idx_transactions_event,priority:3;index:idx_transactions_order,priority:4" json:"log_index"`

	BlockNumber uint64 `gorm:"index:idx_transactions_order,priority:2" json:"block_number"`

	// Index of the transaction within its block
	Index uint `gorm:"index:idx_transactions_order,priority:3" json:"index"`

	// Human readable label, e.g. "bounty created" or "+0.5 eth"
	Action string `json:"action"`

	// Acting address
	Address string `json:"address"`

	BountyId  uint64  `json:"bounty_id"`
	ClaimId   *uint64 `json:"claim_id,omitempty"`
	Timestamp uint64  `json:"timestamp"`
}

func (Transaction) TableName() string {
	return TableTransaction
}

func (self *Transaction) MarshalBinary() ([]byte, error) {
	return json.Marshal(self)
}
