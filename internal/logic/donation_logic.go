package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/michojekunle/BitGive/internal/logger"
	"github.com/michojekunle/BitGive/internal/model"
	"gorm.io/gorm"
)

// DonationLogic 捐赠账本业务逻辑
type DonationLogic struct {
	db             *gorm.DB
	campaignLogic  *CampaignLogic
	serviceAddress string // 铸造奖励时使用的服务身份
}

// NewDonationLogic 创建捐赠业务逻辑
func NewDonationLogic(db *gorm.DB, serviceAddress string) *DonationLogic {
	return &DonationLogic{
		db:             db,
		campaignLogic:  NewCampaignLogic(db),
		serviceAddress: model.NormalizeAddress(serviceAddress),
	}
}

// ProcessDonation 处理一笔捐赠。
// 前置检查、手续费拆分、入账、档位判定、奖励铸造与记录写入在同一事务内完成，
// 任一步骤失败则整笔捐赠回滚，不留下任何状态变更。
func (d *DonationLogic) ProcessDonation(campaignId int64, donor string, amount int64, tokenURI string) (*model.DonationModel, error) {
	var donation *model.DonationModel
	err := d.db.Transaction(func(tx *gorm.DB) error {
		var err error
		donation, err = d.ProcessDonationTx(tx, campaignId, donor, amount, tokenURI)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info("Donation %d of %d to campaign %d by %s (tier %s)",
		donation.Id, amount, campaignId, donation.Donor, donation.Tier)
	return donation, nil
}

// ProcessDonationTx 在既有事务内处理一笔捐赠。
// 结算订阅复用该入口，使捐赠入账与事件去重记录落在同一事务。
func (d *DonationLogic) ProcessDonationTx(tx *gorm.DB, campaignId int64, donor string, amount int64, tokenURI string) (*model.DonationModel, error) {
	donor = model.NormalizeAddress(donor)
	if donor == "" {
		return nil, ErrInvalidAddress
	}
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}

	cfg, err := getConfigTx(tx)
	if err != nil {
		return nil, err
	}
	if cfg.Paused {
		return nil, ErrPlatformPaused
	}

	campaign, err := findCampaignTx(tx, campaignId)
	if err != nil {
		return nil, err
	}

	// 手续费拆分
	fee := PlatformFee(amount, cfg.FeeBasisPoints)
	net := amount - fee

	// 入账前完成审核、激活与结束检查
	if err := d.campaignLogic.CreditDonation(tx, campaignId, net, time.Now()); err != nil {
		return nil, err
	}

	// 档位按捐赠总额判定，手续费不影响档位
	tier := model.TierForAmount(amount)
	rewardId := ""
	tokenId := int64(0)
	if tier != model.TierNone {
		reward, err := mintNFTTx(tx, d.serviceAddress, donor, tier, campaign.Name, campaignId, tokenURI)
		if err != nil {
			return nil, err
		}
		rewardId = reward.NFTId
		tokenId = reward.Id
	}

	donation := &model.DonationModel{
		Donor:      donor,
		CampaignId: campaignId,
		Amount:     amount,
		FeeAmount:  fee,
		NetAmount:  net,
		Tier:       tier,
		RewardId:   rewardId,
		TokenId:    tokenId,
	}
	if err := tx.Create(donation).Error; err != nil {
		return nil, err
	}
	return donation, nil
}

// GetDonationsByDonor 获取捐赠者的全部捐赠记录，按创建顺序返回
func (d *DonationLogic) GetDonationsByDonor(donor string) ([]model.DonationModel, error) {
	var donations []model.DonationModel
	err := d.db.Where("donor = ?", model.NormalizeAddress(donor)).
		Order("id ASC").
		Find(&donations).Error
	if err != nil {
		return nil, fmt.Errorf("获取捐赠者记录失败: %w", err)
	}
	return donations, nil
}

// GetDonationsByCampaign 获取活动的全部捐赠记录，按创建顺序返回
func (d *DonationLogic) GetDonationsByCampaign(campaignId int64) ([]model.DonationModel, error) {
	var donations []model.DonationModel
	err := d.db.Where("campaign_id = ?", campaignId).
		Order("id ASC").
		Find(&donations).Error
	if err != nil {
		return nil, fmt.Errorf("获取活动捐赠记录失败: %w", err)
	}
	return donations, nil
}

// GetDonationDetails 获取单笔捐赠详情
func (d *DonationLogic) GetDonationDetails(id int64) (*model.DonationModel, error) {
	var donation model.DonationModel
	if err := d.db.First(&donation, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDonationNotFound
		}
		return nil, err
	}
	return &donation, nil
}

// GetDonationCount 获取捐赠总笔数
func (d *DonationLogic) GetDonationCount() (int64, error) {
	var count int64
	err := d.db.Model(&model.DonationModel{}).Count(&count).Error
	return count, err
}

// GetRecentDonations 获取最近n笔捐赠，按时间倒序。账本不足n笔时返回全部。
func (d *DonationLogic) GetRecentDonations(n int) ([]model.DonationModel, error) {
	if n <= 0 {
		return []model.DonationModel{}, nil
	}
	var donations []model.DonationModel
	err := d.db.Order("id DESC").
		Limit(n).
		Find(&donations).Error
	if err != nil {
		return nil, fmt.Errorf("获取最近捐赠记录失败: %w", err)
	}
	return donations, nil
}

// GetDonationStats 获取捐赠统计信息
func (d *DonationLogic) GetDonationStats() (map[string]interface{}, error) {
	var stats struct {
		TotalDonations int64 `json:"total_donations"`
		TotalAmount    int64 `json:"total_amount"`
		TotalNetAmount int64 `json:"total_net_amount"`
		UniqueDonors   int64 `json:"unique_donors"`
	}

	if err := d.db.Model(&model.DonationModel{}).Count(&stats.TotalDonations).Error; err != nil {
		return nil, fmt.Errorf("获取捐赠总数失败: %w", err)
	}
	if err := d.db.Model(&model.DonationModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&stats.TotalAmount).Error; err != nil {
		return nil, fmt.Errorf("获取捐赠总额失败: %w", err)
	}
	if err := d.db.Model(&model.DonationModel{}).
		Select("COALESCE(SUM(net_amount), 0)").
		Scan(&stats.TotalNetAmount).Error; err != nil {
		return nil, fmt.Errorf("获取捐赠净额失败: %w", err)
	}
	if err := d.db.Model(&model.DonationModel{}).
		Distinct("donor").
		Count(&stats.UniqueDonors).Error; err != nil {
		return nil, fmt.Errorf("获取捐赠人数失败: %w", err)
	}

	return map[string]interface{}{
		"total_donations":  stats.TotalDonations,
		"total_amount":     stats.TotalAmount,
		"total_net_amount": stats.TotalNetAmount,
		"unique_donors":    stats.UniqueDonors,
	}, nil
}
