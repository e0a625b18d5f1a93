package model

// TierCounterModel 档位铸造计数器。
// 铸造时对计数器行加锁递增，保证同档位编号严格递增且不重复。
type TierCounterModel struct {
	Tier  Tier  `json:"tier" gorm:"primaryKey"`
	Count int64 `json:"count" gorm:"not null;default:0"`
}

// TableName 自定义表名
func (TierCounterModel) TableName() string {
	return "reward_tier_counter"
}
