package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/michojekunle/BitGive/internal/logger"
	"github.com/michojekunle/BitGive/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CampaignLogic 募捐活动业务逻辑
type CampaignLogic struct {
	db *gorm.DB
}

// NewCampaignLogic 创建活动业务逻辑
func NewCampaignLogic(db *gorm.DB) *CampaignLogic {
	return &CampaignLogic{db: db}
}

// CreateCampaign 创建活动。新活动为未审核、未激活、未推荐状态。
func (c *CampaignLogic) CreateCampaign(owner, name, description, story string, goal int64, durationDays int, impacts []string, imageURI string) (*model.CampaignModel, error) {
	owner = model.NormalizeAddress(owner)
	if owner == "" {
		return nil, ErrInvalidAddress
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	if goal <= 0 {
		return nil, ErrInvalidGoal
	}
	if durationDays < model.MinDurationDays || durationDays > model.MaxDurationDays {
		return nil, ErrInvalidDuration
	}

	campaign := &model.CampaignModel{
		Name:         name,
		Description:  description,
		Story:        story,
		ImageURI:     imageURI,
		Goal:         goal,
		DurationDays: durationDays,
		Owner:        owner,
	}
	if err := campaign.SetImpacts(impacts); err != nil {
		return nil, fmt.Errorf("序列化影响力列表失败: %w", err)
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		cfg, err := getConfigTx(tx)
		if err != nil {
			return err
		}
		if cfg.Paused {
			return ErrPlatformPaused
		}
		return tx.Create(campaign).Error
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Campaign %d created by %s", campaign.Id, owner)
	return campaign, nil
}

// VerifyCampaign 设置活动审核状态，仅审核员可调用
func (c *CampaignLogic) VerifyCampaign(caller string, id int64, verified bool) error {
	return c.setFlag(caller, id, "verified", verified)
}

// SetActive 设置活动激活状态，仅审核员可调用
func (c *CampaignLogic) SetActive(caller string, id int64, active bool) error {
	return c.setFlag(caller, id, "active", active)
}

// SetFeaturedCampaign 设置活动推荐状态，仅审核员可调用
func (c *CampaignLogic) SetFeaturedCampaign(caller string, id int64, featured bool) error {
	return c.setFlag(caller, id, "featured", featured)
}

// setFlag 审核员操作的状态位变更
func (c *CampaignLogic) setFlag(caller string, id int64, column string, value bool) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		if err := requireRoleTx(tx, caller, model.RoleVerifier, ErrNotVerifier); err != nil {
			return err
		}
		if _, err := findCampaignTx(tx, id); err != nil {
			return err
		}
		return tx.Model(&model.CampaignModel{}).
			Where("id = ?", id).
			Update(column, value).Error
	})
}

// CampaignUpdate 活动可更新字段，nil表示保持原值
type CampaignUpdate struct {
	Description *string
	Story       *string
	Impacts     *[]string
	ImageURI    *string
}

// UpdateCampaign 更新活动内容，仅创建者可调用。
// 所有给定字段在同一事务内生效，任一字段失败则全部不生效。
func (c *CampaignLogic) UpdateCampaign(caller string, id int64, update CampaignUpdate) error {
	updates := map[string]interface{}{}
	if update.Description != nil {
		updates["description"] = *update.Description
	}
	if update.Story != nil {
		updates["story"] = *update.Story
	}
	if update.Impacts != nil {
		holder := &model.CampaignModel{}
		if err := holder.SetImpacts(*update.Impacts); err != nil {
			return fmt.Errorf("序列化影响力列表失败: %w", err)
		}
		updates["impacts"] = holder.Impacts
	}
	if update.ImageURI != nil {
		updates["image_uri"] = *update.ImageURI
	}
	if len(updates) == 0 {
		return nil
	}
	return c.ownerUpdate(caller, id, updates)
}

// UpdateDescription 更新活动简介与详情，仅创建者可调用
func (c *CampaignLogic) UpdateDescription(caller string, id int64, description, story string) error {
	return c.ownerUpdate(caller, id, map[string]interface{}{
		"description": description,
		"story":       story,
	})
}

// UpdateImpacts 更新活动影响力列表，仅创建者可调用
func (c *CampaignLogic) UpdateImpacts(caller string, id int64, impacts []string) error {
	holder := &model.CampaignModel{}
	if err := holder.SetImpacts(impacts); err != nil {
		return fmt.Errorf("序列化影响力列表失败: %w", err)
	}
	return c.ownerUpdate(caller, id, map[string]interface{}{
		"impacts": holder.Impacts,
	})
}

// UpdateImageURI 更新活动图片URI，仅创建者可调用
func (c *CampaignLogic) UpdateImageURI(caller string, id int64, imageURI string) error {
	return c.ownerUpdate(caller, id, map[string]interface{}{
		"image_uri": imageURI,
	})
}

// ownerUpdate 创建者操作的字段更新，所有权比较不区分大小写
func (c *CampaignLogic) ownerUpdate(caller string, id int64, updates map[string]interface{}) error {
	return c.db.Transaction(func(tx *gorm.DB) error {
		campaign, err := findCampaignTx(tx, id)
		if err != nil {
			return err
		}
		if campaign.Owner != model.NormalizeAddress(caller) {
			return ErrNotOwner
		}
		return tx.Model(&model.CampaignModel{}).
			Where("id = ?", id).
			Updates(updates).Error
	})
}

// CreditDonation 将捐赠净额计入活动，仅供捐赠流程在事务内调用。
// 审核、激活与结束检查全部通过后才会入账，任一检查失败则整笔捐赠拒绝。
// 活动行加锁，与并发提款串行执行。
func (c *CampaignLogic) CreditDonation(tx *gorm.DB, id int64, netAmount int64, now time.Time) error {
	campaign, err := findCampaignForUpdateTx(tx, id)
	if err != nil {
		return err
	}
	if !campaign.Verified {
		return ErrCampaignNotVerified
	}
	if !campaign.Active {
		return ErrCampaignNotActive
	}
	if campaign.HasEnded(now) {
		return ErrCampaignEnded
	}

	return tx.Model(&model.CampaignModel{}).
		Where("id = ?", id).
		Update("raised_amount", gorm.Expr("raised_amount + ?", netAmount)).Error
}

// WithdrawFunds 提取活动资金，仅创建者可调用。
// 需满足达到目标金额或活动已结束，且提取金额不超过可用余额。
// 余额检查与扣减在活动行锁内完成，并发提款不会双重花费。
func (c *CampaignLogic) WithdrawFunds(caller string, id int64, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		campaign, err := findCampaignForUpdateTx(tx, id)
		if err != nil {
			return err
		}
		if campaign.Owner != model.NormalizeAddress(caller) {
			return ErrNotOwner
		}
		if !campaign.GoalReached() && !campaign.HasEnded(time.Now()) {
			return ErrCannotWithdraw
		}
		if amount > campaign.AvailableBalance() {
			return ErrInsufficientBalance
		}

		if err := tx.Model(&model.CampaignModel{}).
			Where("id = ?", id).
			Update("withdrawn_amount", gorm.Expr("withdrawn_amount + ?", amount)).Error; err != nil {
			return err
		}

		record := &model.WithdrawalRecordModel{
			CampaignId: id,
			Amount:     amount,
			Recipient:  campaign.Owner,
		}
		return tx.Create(record).Error
	})
	if err != nil {
		return err
	}

	logger.Info("Campaign %d withdrawal of %d by %s", id, amount, model.NormalizeAddress(caller))
	return nil
}

// GetCampaignInfo 获取活动详情
func (c *CampaignLogic) GetCampaignInfo(id int64) (*model.CampaignInfo, error) {
	campaign, err := findCampaignTx(c.db, id)
	if err != nil {
		return nil, err
	}
	return campaign.Info(time.Now()), nil
}

// GetAllCampaigns 获取全部活动
func (c *CampaignLogic) GetAllCampaigns() ([]model.CampaignModel, error) {
	var campaigns []model.CampaignModel
	if err := c.db.Order("id ASC").Find(&campaigns).Error; err != nil {
		return nil, fmt.Errorf("获取活动列表失败: %w", err)
	}
	return campaigns, nil
}

// GetCampaignsByOwner 获取指定创建者的活动
func (c *CampaignLogic) GetCampaignsByOwner(owner string) ([]model.CampaignModel, error) {
	var campaigns []model.CampaignModel
	err := c.db.Where("owner = ?", model.NormalizeAddress(owner)).
		Order("id ASC").
		Find(&campaigns).Error
	if err != nil {
		return nil, fmt.Errorf("获取创建者活动列表失败: %w", err)
	}
	return campaigns, nil
}

// GetVerifiedCampaigns 获取已审核活动
func (c *CampaignLogic) GetVerifiedCampaigns() ([]model.CampaignModel, error) {
	var campaigns []model.CampaignModel
	err := c.db.Where("verified = ?", true).
		Order("id ASC").
		Find(&campaigns).Error
	if err != nil {
		return nil, fmt.Errorf("获取已审核活动列表失败: %w", err)
	}
	return campaigns, nil
}

// GetFeaturedCampaigns 获取推荐活动
func (c *CampaignLogic) GetFeaturedCampaigns() ([]model.CampaignModel, error) {
	var campaigns []model.CampaignModel
	err := c.db.Where("featured = ?", true).
		Order("id ASC").
		Find(&campaigns).Error
	if err != nil {
		return nil, fmt.Errorf("获取推荐活动列表失败: %w", err)
	}
	return campaigns, nil
}

// GetCampaignStats 获取活动统计信息
func (c *CampaignLogic) GetCampaignStats(id int64) (map[string]interface{}, error) {
	campaign, err := findCampaignTx(c.db, id)
	if err != nil {
		return nil, err
	}

	var donationCount int64
	if err := c.db.Model(&model.DonationModel{}).
		Where("campaign_id = ?", id).
		Count(&donationCount).Error; err != nil {
		return nil, fmt.Errorf("获取捐赠数量失败: %w", err)
	}

	var donorCount int64
	if err := c.db.Model(&model.DonationModel{}).
		Where("campaign_id = ?", id).
		Distinct("donor").
		Count(&donorCount).Error; err != nil {
		return nil, fmt.Errorf("获取捐赠人数失败: %w", err)
	}

	// 计算完成百分比
	completionPercentage := float64(0)
	if campaign.Goal > 0 {
		completionPercentage = float64(campaign.RaisedAmount) / float64(campaign.Goal) * 100
	}

	// 计算剩余时间
	remainingTime := time.Duration(0)
	now := time.Now()
	if !campaign.HasEnded(now) {
		remainingTime = campaign.EndTime().Sub(now)
	}

	return map[string]interface{}{
		"campaign_id":           campaign.Id,
		"raised_amount":         campaign.RaisedAmount,
		"withdrawn_amount":      campaign.WithdrawnAmount,
		"goal":                  campaign.Goal,
		"completion_percentage": completionPercentage,
		"donation_count":        donationCount,
		"donor_count":           donorCount,
		"remaining_time":        remainingTime.String(),
		"goal_reached":          campaign.GoalReached(),
		"has_ended":             campaign.HasEnded(now),
	}, nil
}

// findCampaignTx 在事务内查找活动
func findCampaignTx(tx *gorm.DB, id int64) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	if err := tx.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}

// findCampaignForUpdateTx 在事务内查找活动并持有行锁。
// 检查后写入的路径必须使用该查找，否则并发事务会基于同一快照重复通过检查。
func findCampaignForUpdateTx(tx *gorm.DB, id int64) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&campaign, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCampaignNotFound
		}
		return nil, err
	}
	return &campaign, nil
}
