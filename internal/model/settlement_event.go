package model

import (
	"time"
)

// SettlementEventModel 结算链事件记录，用于断点续传与去重
type SettlementEventModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	ContractAddress string `json:"contract_address" gorm:"not null"`
	BlockNum        int64  `json:"block_num" gorm:"not null;index"`
	TxHash          string `json:"tx_hash" gorm:"not null;uniqueIndex:idx_settlement_tx_log"`
	LogIndex        int64  `json:"log_index" gorm:"not null;uniqueIndex:idx_settlement_tx_log"`
	EventName       string `json:"event_name" gorm:"not null"`
	Data            string `json:"data" gorm:"type:text"`
}

// TableName 自定义表名
func (SettlementEventModel) TableName() string {
	return "settlement_event"
}
