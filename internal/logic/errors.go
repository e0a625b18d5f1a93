package logic

import (
	"errors"
)

// 业务错误定义，调用方通过 errors.Is 判断错误类型
var (
	// 权限类
	ErrUnauthorized = errors.New("无权限执行该操作")
	ErrNotVerifier  = errors.New("调用者不是审核员")
	ErrNotOwner     = errors.New("调用者不是活动创建者")
	ErrNotMinter    = errors.New("调用者没有铸造权限")
	ErrLastAdmin    = errors.New("不能移除最后一个管理员")

	// 输入类
	ErrEmptyName       = errors.New("活动名称不能为空")
	ErrInvalidGoal     = errors.New("目标金额必须大于0")
	ErrInvalidDuration = errors.New("活动持续时间必须在7到90天之间")
	ErrInvalidAmount   = errors.New("金额必须大于0")
	ErrInvalidAddress  = errors.New("地址不能为空")
	ErrInvalidRole     = errors.New("未知的角色")
	ErrInvalidTier     = errors.New("无效的奖励档位")
	ErrFeeOutOfRange   = errors.New("手续费超出允许范围")

	// 状态类
	ErrPlatformPaused      = errors.New("平台已暂停")
	ErrCampaignNotVerified = errors.New("活动尚未通过审核")
	ErrCampaignNotActive   = errors.New("活动未激活")
	ErrCampaignEnded       = errors.New("活动已结束")
	ErrCannotWithdraw      = errors.New("未达到提款条件")
	ErrInsufficientBalance = errors.New("可提取余额不足")

	// 查询类
	ErrCampaignNotFound = errors.New("活动不存在")
	ErrDonationNotFound = errors.New("捐赠记录不存在")
	ErrTokenNotFound    = errors.New("奖励NFT不存在")
)
