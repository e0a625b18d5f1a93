package model

import (
	"time"
)

// WithdrawalRecordModel 提款记录
type WithdrawalRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	CampaignId int64  `json:"campaign_id" gorm:"not null;index"`
	Amount     int64  `json:"amount" gorm:"not null"`
	Recipient  string `json:"recipient" gorm:"not null"`
}

// TableName 自定义表名
func (WithdrawalRecordModel) TableName() string {
	return "withdrawal_record"
}
