package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/michojekunle/BitGive/internal/logic"
	"github.com/michojekunle/BitGive/internal/model"
	"gorm.io/gorm"
)

type RegistryHandler struct {
	registryLogic *logic.RegistryLogic
}

func NewRegistryHandler(db *gorm.DB) *RegistryHandler {
	return &RegistryHandler{
		registryLogic: logic.NewRegistryLogic(db),
	}
}

// GrantRole 授予角色
func (h *RegistryHandler) GrantRole(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
		Role    string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.registryLogic.GrantRole(callerAddress(c), req.Address, model.Role(req.Role)); err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "角色授予成功", nil)
}

// RevokeRole 撤销角色
func (h *RegistryHandler) RevokeRole(c *gin.Context) {
	var req struct {
		Address string `json:"address" binding:"required"`
		Role    string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.registryLogic.RevokeRole(callerAddress(c), req.Address, model.Role(req.Role)); err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "角色撤销成功", nil)
}

// HasRole 查询地址是否持有角色
func (h *RegistryHandler) HasRole(c *gin.Context) {
	address := c.Query("address")
	role := c.Query("role")
	if address == "" || role == "" {
		ErrorResponse(c, http.StatusBadRequest, "address和role参数不能为空")
		return
	}

	held, err := h.registryLogic.HasRole(address, model.Role(role))
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{"has_role": held})
}

// SetPaused 设置平台暂停状态
func (h *RegistryHandler) SetPaused(c *gin.Context) {
	var req struct {
		Paused *bool `json:"paused" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.registryLogic.SetPaused(callerAddress(c), *req.Paused); err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "平台状态更新成功", nil)
}

// UpdateFee 更新平台手续费率
func (h *RegistryHandler) UpdateFee(c *gin.Context) {
	var req struct {
		FeeBasisPoints *int64 `json:"fee_basis_points" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.registryLogic.UpdateFeeBasisPoints(callerAddress(c), *req.FeeBasisPoints); err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "手续费率更新成功", nil)
}

// UpdateCreationFee 更新活动创建费
func (h *RegistryHandler) UpdateCreationFee(c *gin.Context) {
	var req struct {
		CampaignCreationFee *int64 `json:"campaign_creation_fee" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.registryLogic.UpdateCampaignCreationFee(callerAddress(c), *req.CampaignCreationFee); err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "活动创建费更新成功", nil)
}

// GetConfig 获取平台配置
func (h *RegistryHandler) GetConfig(c *gin.Context) {
	cfg, err := h.registryLogic.GetPlatformConfig()
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", cfg)
}

// CalculateFee 按当前费率计算手续费
func (h *RegistryHandler) CalculateFee(c *gin.Context) {
	var req struct {
		Amount int64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	fee, err := h.registryLogic.CalculatePlatformFee(req.Amount)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{
		"amount":     req.Amount,
		"fee":        fee,
		"net_amount": req.Amount - fee,
	})
}
