package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/michojekunle/BitGive/internal/logic"
	"github.com/michojekunle/BitGive/internal/model"
	"gorm.io/gorm"
)

type RewardHandler struct {
	rewardLogic *logic.RewardLogic
}

func NewRewardHandler(db *gorm.DB) *RewardHandler {
	return &RewardHandler{
		rewardLogic: logic.NewRewardLogic(db),
	}
}

// GetReward 获取奖励NFT元数据
func (h *RewardHandler) GetReward(c *gin.Context) {
	id, err := parseId(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的tokenId")
		return
	}

	reward, err := h.rewardLogic.GetNFTMetadata(id)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", reward)
}

// GetRewards 获取奖励NFT列表，支持owner/tier过滤
func (h *RewardHandler) GetRewards(c *gin.Context) {
	if owner := c.Query("owner"); owner != "" {
		rewards, err := h.rewardLogic.GetTokensByOwner(owner)
		if err != nil {
			FailWithError(c, err)
			return
		}
		SuccessResponse(c, http.StatusOK, "", rewards)
		return
	}

	if tier := c.Query("tier"); tier != "" {
		count, err := h.rewardLogic.GetTierCount(model.Tier(tier))
		if err != nil {
			FailWithError(c, err)
			return
		}
		SuccessResponse(c, http.StatusOK, "", gin.H{"tier": tier, "count": count})
		return
	}

	total, err := h.rewardLogic.GetTotalNFTs()
	if err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", gin.H{"total": total})
}

// TransferReward 转移奖励NFT所有权
func (h *RewardHandler) TransferReward(c *gin.Context) {
	id, err := parseId(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的tokenId")
		return
	}

	var req struct {
		To string `json:"to" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.rewardLogic.TransferReward(callerAddress(c), id, req.To); err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "奖励转移成功", nil)
}
