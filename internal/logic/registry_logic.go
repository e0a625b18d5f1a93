package logic

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/michojekunle/BitGive/internal/logger"
	"github.com/michojekunle/BitGive/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RegistryLogic 平台注册表业务逻辑，管理角色授权与平台配置
type RegistryLogic struct {
	db *gorm.DB
}

// NewRegistryLogic 创建平台注册表业务逻辑
func NewRegistryLogic(db *gorm.DB) *RegistryLogic {
	return &RegistryLogic{db: db}
}

// EnsureInitialized 初始化平台配置与初始角色。
// 初始化完成后平台始终至少存在一个管理员。
func (r *RegistryLogic) EnsureInitialized(adminAddress, serviceAddress string, feeBasisPoints, campaignCreationFee int64) error {
	adminAddress = model.NormalizeAddress(adminAddress)
	serviceAddress = model.NormalizeAddress(serviceAddress)
	if adminAddress == "" {
		return ErrInvalidAddress
	}
	if feeBasisPoints < 0 || feeBasisPoints > model.MaxFeeBasisPoints {
		return ErrFeeOutOfRange
	}
	if campaignCreationFee < 0 {
		return ErrInvalidAmount
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		// 配置单行记录，不存在时创建
		var count int64
		if err := tx.Model(&model.PlatformConfigModel{}).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			cfg := &model.PlatformConfigModel{
				FeeBasisPoints:      feeBasisPoints,
				CampaignCreationFee: campaignCreationFee,
				Paused:              false,
			}
			if err := tx.Create(cfg).Error; err != nil {
				return err
			}
		}

		// 初始管理员
		if err := grantRoleTx(tx, adminAddress, model.RoleAdmin); err != nil {
			return err
		}

		// 捐赠服务身份持有铸造权限
		if serviceAddress != "" {
			if err := grantRoleTx(tx, serviceAddress, model.RoleMinter); err != nil {
				return err
			}
		}

		// 预建档位计数器行，铸造时只需持锁递增
		for _, tier := range []model.Tier{model.TierGold, model.TierSilver, model.TierBronze} {
			counter := &model.TierCounterModel{Tier: tier}
			if err := tx.Where("tier = ?", tier).FirstOrCreate(counter).Error; err != nil {
				return err
			}
		}

		return nil
	})
}

// HasRole 检查地址是否持有角色
func (r *RegistryLogic) HasRole(address string, role model.Role) (bool, error) {
	return hasRoleTx(r.db, address, role)
}

// GrantRole 授予角色，仅管理员可调用
func (r *RegistryLogic) GrantRole(caller, address string, role model.Role) error {
	if !validRole(role) {
		return ErrInvalidRole
	}
	address = model.NormalizeAddress(address)
	if address == "" {
		return ErrInvalidAddress
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := requireRoleTx(tx, caller, model.RoleAdmin, ErrUnauthorized); err != nil {
			return err
		}
		return grantRoleTx(tx, address, role)
	})
}

// RevokeRole 撤销角色，仅管理员可调用。移除最后一个管理员会被拒绝。
func (r *RegistryLogic) RevokeRole(caller, address string, role model.Role) error {
	if !validRole(role) {
		return ErrInvalidRole
	}
	address = model.NormalizeAddress(address)

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := requireRoleTx(tx, caller, model.RoleAdmin, ErrUnauthorized); err != nil {
			return err
		}

		if role == model.RoleAdmin {
			// 管理员行持锁读取，并发撤销串行执行，平台不会失去最后一个管理员
			var admins []model.RoleModel
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("role = ?", model.RoleAdmin).
				Find(&admins).Error; err != nil {
				return err
			}
			held := false
			for _, admin := range admins {
				if admin.Address == address {
					held = true
					break
				}
			}
			if held && len(admins) <= 1 {
				return ErrLastAdmin
			}
		}

		return tx.Where("address = ? AND role = ?", address, role).
			Delete(&model.RoleModel{}).Error
	})
}

// SetPaused 设置平台暂停状态，仅管理员可调用
func (r *RegistryLogic) SetPaused(caller string, paused bool) error {
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := requireRoleTx(tx, caller, model.RoleAdmin, ErrUnauthorized); err != nil {
			return err
		}
		return tx.Model(&model.PlatformConfigModel{}).
			Where("1 = 1").
			Update("paused", paused).Error
	})
	if err != nil {
		return err
	}

	logger.Info("Platform paused state changed to %v by %s", paused, model.NormalizeAddress(caller))
	return nil
}

// IsPaused 查询平台是否暂停
func (r *RegistryLogic) IsPaused() (bool, error) {
	cfg, err := r.GetPlatformConfig()
	if err != nil {
		return false, err
	}
	return cfg.Paused, nil
}

// GetPlatformConfig 获取平台配置
func (r *RegistryLogic) GetPlatformConfig() (*model.PlatformConfigModel, error) {
	return getConfigTx(r.db)
}

// UpdateFeeBasisPoints 更新平台手续费率，仅管理员可调用
func (r *RegistryLogic) UpdateFeeBasisPoints(caller string, feeBasisPoints int64) error {
	if feeBasisPoints < 0 || feeBasisPoints > model.MaxFeeBasisPoints {
		return ErrFeeOutOfRange
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := requireRoleTx(tx, caller, model.RoleAdmin, ErrUnauthorized); err != nil {
			return err
		}
		return tx.Model(&model.PlatformConfigModel{}).
			Where("1 = 1").
			Update("fee_basis_points", feeBasisPoints).Error
	})
}

// UpdateCampaignCreationFee 更新活动创建费，仅管理员可调用
func (r *RegistryLogic) UpdateCampaignCreationFee(caller string, fee int64) error {
	if fee < 0 {
		return ErrInvalidAmount
	}

	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := requireRoleTx(tx, caller, model.RoleAdmin, ErrUnauthorized); err != nil {
			return err
		}
		return tx.Model(&model.PlatformConfigModel{}).
			Where("1 = 1").
			Update("campaign_creation_fee", fee).Error
	})
}

// CalculatePlatformFee 按当前费率计算平台手续费
func (r *RegistryLogic) CalculatePlatformFee(amount int64) (int64, error) {
	cfg, err := r.GetPlatformConfig()
	if err != nil {
		return 0, err
	}
	return PlatformFee(amount, cfg.FeeBasisPoints), nil
}

// PlatformFee 手续费计算: fee = floor(amount * feeBasisPoints / 10000)。
// 使用big.Int避免大额乘法溢出。
func PlatformFee(amount, feeBasisPoints int64) int64 {
	if amount <= 0 || feeBasisPoints <= 0 {
		return 0
	}
	fee := new(big.Int).Mul(big.NewInt(amount), big.NewInt(feeBasisPoints))
	fee.Div(fee, big.NewInt(10000))
	return fee.Int64()
}

// validRole 检查角色是否合法
func validRole(role model.Role) bool {
	switch role {
	case model.RoleAdmin, model.RoleVerifier, model.RoleMinter:
		return true
	default:
		return false
	}
}

// hasRoleTx 在事务内查询角色
func hasRoleTx(tx *gorm.DB, address string, role model.Role) (bool, error) {
	var count int64
	err := tx.Model(&model.RoleModel{}).
		Where("address = ? AND role = ?", model.NormalizeAddress(address), role).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// requireRoleTx 在事务内校验角色，校验失败返回指定错误
func requireRoleTx(tx *gorm.DB, address string, role model.Role, failErr error) error {
	held, err := hasRoleTx(tx, address, role)
	if err != nil {
		return err
	}
	if !held {
		return failErr
	}
	return nil
}

// grantRoleTx 在事务内授予角色，重复授予不报错
func grantRoleTx(tx *gorm.DB, address string, role model.Role) error {
	record := &model.RoleModel{Address: model.NormalizeAddress(address), Role: role}
	err := tx.Where("address = ? AND role = ?", record.Address, record.Role).
		FirstOrCreate(record).Error
	if err != nil {
		return fmt.Errorf("授予角色失败: %w", err)
	}
	return nil
}

// getConfigTx 在事务内获取平台配置
func getConfigTx(tx *gorm.DB) (*model.PlatformConfigModel, error) {
	var cfg model.PlatformConfigModel
	if err := tx.First(&cfg).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("平台配置未初始化")
		}
		return nil, err
	}
	return &cfg, nil
}
