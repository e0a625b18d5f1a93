package model

import (
	"encoding/json"
	"time"
)

// CampaignModel 募捐活动模型
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Name        string `json:"name" gorm:"not null" binding:"required"`
	Description string `json:"description" gorm:"type:text"`
	Story       string `json:"story" gorm:"type:text"`
	Impacts     string `json:"-" gorm:"type:text"` // JSON编码的影响力列表
	ImageURI    string `json:"image_uri"`

	// 募捐信息（金额单位：wei）
	Goal            int64 `json:"goal" gorm:"not null" binding:"required,min=1"`
	RaisedAmount    int64 `json:"raised_amount" gorm:"default:0"`
	WithdrawnAmount int64 `json:"withdrawn_amount" gorm:"default:0"`

	// 时间信息
	DurationDays int `json:"duration_days" gorm:"not null"`

	// 状态
	Verified bool `json:"verified" gorm:"default:false;index"`
	Active   bool `json:"active" gorm:"default:false"`
	Featured bool `json:"featured" gorm:"default:false;index"`

	// 创建者信息
	Owner string `json:"owner" gorm:"not null;index"`
}

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}

// 活动持续时间限制（天）
const (
	MinDurationDays = 7
	MaxDurationDays = 90
)

// EndTime 活动结束时间
func (c *CampaignModel) EndTime() time.Time {
	return c.CreatedAt.AddDate(0, 0, c.DurationDays)
}

// HasEnded 活动是否已结束
func (c *CampaignModel) HasEnded(now time.Time) bool {
	return now.After(c.EndTime())
}

// GoalReached 是否达到目标金额
func (c *CampaignModel) GoalReached() bool {
	return c.RaisedAmount >= c.Goal
}

// AvailableBalance 当前可提取余额
func (c *CampaignModel) AvailableBalance() int64 {
	return c.RaisedAmount - c.WithdrawnAmount
}

// SetImpacts 设置影响力列表
func (c *CampaignModel) SetImpacts(impacts []string) error {
	data, err := json.Marshal(impacts)
	if err != nil {
		return err
	}
	c.Impacts = string(data)
	return nil
}

// GetImpacts 获取影响力列表
func (c *CampaignModel) GetImpacts() []string {
	if c.Impacts == "" {
		return nil
	}
	var impacts []string
	if err := json.Unmarshal([]byte(c.Impacts), &impacts); err != nil {
		return nil
	}
	return impacts
}

// CampaignInfo 活动详情视图
type CampaignInfo struct {
	Id              int64     `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description"`
	Story           string    `json:"story"`
	Impacts         []string  `json:"impacts"`
	ImageURI        string    `json:"image_uri"`
	Goal            int64     `json:"goal"`
	RaisedAmount    int64     `json:"raised_amount"`
	WithdrawnAmount int64     `json:"withdrawn_amount"`
	DurationDays    int       `json:"duration_days"`
	CreatedAt       time.Time `json:"created_at"`
	EndTime         time.Time `json:"end_time"`
	Verified        bool      `json:"verified"`
	Active          bool      `json:"active"`
	Featured        bool      `json:"featured"`
	GoalReached     bool      `json:"goal_reached"`
	HasEnded        bool      `json:"has_ended"`
	Owner           string    `json:"owner"`
}

// Info 构造活动详情视图
func (c *CampaignModel) Info(now time.Time) *CampaignInfo {
	return &CampaignInfo{
		Id:              c.Id,
		Name:            c.Name,
		Description:     c.Description,
		Story:           c.Story,
		Impacts:         c.GetImpacts(),
		ImageURI:        c.ImageURI,
		Goal:            c.Goal,
		RaisedAmount:    c.RaisedAmount,
		WithdrawnAmount: c.WithdrawnAmount,
		DurationDays:    c.DurationDays,
		CreatedAt:       c.CreatedAt,
		EndTime:         c.EndTime(),
		Verified:        c.Verified,
		Active:          c.Active,
		Featured:        c.Featured,
		GoalReached:     c.GoalReached(),
		HasEnded:        c.HasEnded(now),
		Owner:           c.Owner,
	}
}
