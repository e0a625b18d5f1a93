package model

import (
	"strings"
	"time"
)

// Role 平台角色
type Role string

const (
	RoleAdmin    Role = "admin"    // 管理平台配置和角色
	RoleVerifier Role = "verifier" // 审核、激活、推荐活动
	RoleMinter   Role = "minter"   // 铸造奖励NFT
)

// RoleModel 角色授权记录
type RoleModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`

	Address string `json:"address" gorm:"not null;uniqueIndex:idx_role_address_role"`
	Role    Role   `json:"role" gorm:"not null;uniqueIndex:idx_role_address_role"`
}

// TableName 自定义表名
func (RoleModel) TableName() string {
	return "platform_role"
}

// MaxFeeBasisPoints 手续费上限（10%）
const MaxFeeBasisPoints int64 = 1000

// PlatformConfigModel 平台配置，单行记录，仅管理员可变更
type PlatformConfigModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	UpdatedAt time.Time `json:"updated_at"`

	FeeBasisPoints      int64 `json:"fee_basis_points" gorm:"not null"`
	CampaignCreationFee int64 `json:"campaign_creation_fee" gorm:"not null"`
	Paused              bool  `json:"paused" gorm:"default:false"`
}

// TableName 自定义表名
func (PlatformConfigModel) TableName() string {
	return "platform_config"
}

// NormalizeAddress 地址归一化，所有权与角色比较均不区分大小写
func NormalizeAddress(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
