package logic

import (
	"errors"
	"fmt"

	"github.com/michojekunle/BitGive/internal/logger"
	"github.com/michojekunle/BitGive/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RewardLogic 捐赠奖励NFT业务逻辑
type RewardLogic struct {
	db *gorm.DB
}

// NewRewardLogic 创建奖励业务逻辑
func NewRewardLogic(db *gorm.DB) *RewardLogic {
	return &RewardLogic{db: db}
}

// MintNFT 铸造奖励NFT，仅持有铸造权限的地址可调用。
// 可读ID按档位独立编号，如 "Gold Donor #1"。
func (r *RewardLogic) MintNFT(caller, owner string, tier model.Tier, campaignName string, campaignId int64, uri string) (*model.RewardModel, error) {
	var reward *model.RewardModel
	err := r.db.Transaction(func(tx *gorm.DB) error {
		var err error
		reward, err = mintNFTTx(tx, caller, owner, tier, campaignName, campaignId, uri)
		return err
	})
	if err != nil {
		return nil, err
	}
	return reward, nil
}

// mintNFTTx 在事务内铸造奖励NFT
func mintNFTTx(tx *gorm.DB, caller, owner string, tier model.Tier, campaignName string, campaignId int64, uri string) (*model.RewardModel, error) {
	if err := requireRoleTx(tx, caller, model.RoleMinter, ErrNotMinter); err != nil {
		return nil, err
	}
	owner = model.NormalizeAddress(owner)
	if owner == "" {
		return nil, ErrInvalidAddress
	}
	if tier != model.TierGold && tier != model.TierSilver && tier != model.TierBronze {
		return nil, ErrInvalidTier
	}

	// 计数器行持锁递增，并发铸造取到的编号不重复
	count, err := nextTierNumberTx(tx, tier)
	if err != nil {
		return nil, err
	}

	reward := &model.RewardModel{
		Owner:        owner,
		Tier:         tier,
		CampaignId:   campaignId,
		CampaignName: campaignName,
		URI:          uri,
		NFTId:        fmt.Sprintf("%s Donor #%d", tier, count),
	}
	if err := tx.Create(reward).Error; err != nil {
		return nil, fmt.Errorf("铸造奖励NFT失败: %w", err)
	}

	logger.Info("Minted reward %s (token %d) for %s", reward.NFTId, reward.Id, owner)
	return reward, nil
}

// nextTierNumberTx 在事务内锁定档位计数器并递增，返回新编号
func nextTierNumberTx(tx *gorm.DB, tier model.Tier) (int64, error) {
	var counter model.TierCounterModel
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tier = ?", tier).
		First(&counter).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, err
		}
		// 计数器行通常在平台初始化时创建，这里兜底
		counter = model.TierCounterModel{Tier: tier}
		if err := tx.Create(&counter).Error; err != nil {
			return 0, err
		}
	}

	counter.Count++
	err = tx.Model(&model.TierCounterModel{}).
		Where("tier = ?", tier).
		Update("count", counter.Count).Error
	if err != nil {
		return 0, err
	}
	return counter.Count, nil
}

// TransferReward 转移奖励NFT所有权，仅当前持有者可调用
func (r *RewardLogic) TransferReward(caller string, tokenId int64, to string) error {
	to = model.NormalizeAddress(to)
	if to == "" {
		return ErrInvalidAddress
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		var reward model.RewardModel
		if err := tx.First(&reward, tokenId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTokenNotFound
			}
			return err
		}
		if reward.Owner != model.NormalizeAddress(caller) {
			return ErrNotOwner
		}
		return tx.Model(&model.RewardModel{}).
			Where("id = ?", tokenId).
			Update("owner", to).Error
	})
}

// GetNFTMetadata 获取奖励NFT元数据
func (r *RewardLogic) GetNFTMetadata(tokenId int64) (*model.RewardModel, error) {
	var reward model.RewardModel
	if err := r.db.First(&reward, tokenId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenNotFound
		}
		return nil, err
	}
	return &reward, nil
}

// GetTokensByOwner 获取持有者的全部奖励NFT
func (r *RewardLogic) GetTokensByOwner(owner string) ([]model.RewardModel, error) {
	var rewards []model.RewardModel
	err := r.db.Where("owner = ?", model.NormalizeAddress(owner)).
		Order("id ASC").
		Find(&rewards).Error
	if err != nil {
		return nil, fmt.Errorf("获取持有者奖励列表失败: %w", err)
	}
	return rewards, nil
}

// GetTierCount 获取档位已铸造数量
func (r *RewardLogic) GetTierCount(tier model.Tier) (int64, error) {
	var count int64
	err := r.db.Model(&model.RewardModel{}).
		Where("tier = ?", tier).
		Count(&count).Error
	return count, err
}

// GetTotalNFTs 获取已铸造奖励总数
func (r *RewardLogic) GetTotalNFTs() (int64, error) {
	var count int64
	err := r.db.Model(&model.RewardModel{}).Count(&count).Error
	return count, err
}
