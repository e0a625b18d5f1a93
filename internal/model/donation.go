package model

import (
	"time"
)

// DonationModel 捐赠记录，创建后不可变更
type DonationModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Donor      string `json:"donor" gorm:"not null;index"`
	CampaignId int64  `json:"campaign_id" gorm:"not null;index"`

	// 金额信息（wei）
	Amount    int64 `json:"amount" gorm:"not null"` // 总捐赠金额
	FeeAmount int64 `json:"fee_amount"`             // 平台手续费
	NetAmount int64 `json:"net_amount"`             // 计入活动的净额

	// 奖励信息
	Tier     Tier   `json:"tier" gorm:"not null"`
	RewardId string `json:"reward_id"` // 如 "Gold Donor #1"，未达档位时为空
	TokenId  int64  `json:"token_id"`  // 奖励NFT的tokenId，未铸造时为0
}

// TableName 自定义表名
func (DonationModel) TableName() string {
	return "donation"
}

// Tier 捐赠奖励档位
type Tier string

const (
	TierGold   Tier = "Gold"
	TierSilver Tier = "Silver"
	TierBronze Tier = "Bronze"
	TierNone   Tier = "None"
)

// 档位金额阈值（wei）
const (
	GoldTierMin   int64 = 10_000_000_000_000_000 // 0.01 ether
	SilverTierMin int64 = 5_000_000_000_000_000  // 0.005 ether
	BronzeTierMin int64 = 1_000_000_000_000_000  // 0.001 ether
)

// TierForAmount 根据捐赠总额计算档位
func TierForAmount(amount int64) Tier {
	switch {
	case amount >= GoldTierMin:
		return TierGold
	case amount >= SilverTierMin:
		return TierSilver
	case amount >= BronzeTierMin:
		return TierBronze
	default:
		return TierNone
	}
}
