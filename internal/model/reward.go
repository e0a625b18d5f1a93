package model

import (
	"time"
)

// RewardModel 捐赠奖励NFT，铸造后档位与活动信息不可变更
type RewardModel struct {
	Id        int64     `json:"token_id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Owner        string `json:"owner" gorm:"not null;index"`
	Tier         Tier   `json:"tier" gorm:"not null;index"`
	CampaignId   int64  `json:"campaign_id" gorm:"not null"`
	CampaignName string `json:"campaign_name"`
	URI          string `json:"uri"`

	// 档位内编号生成的可读ID，如 "Gold Donor #1"
	NFTId string `json:"nft_id" gorm:"not null"`
}

// TableName 自定义表名
func (RewardModel) TableName() string {
	return "reward"
}
