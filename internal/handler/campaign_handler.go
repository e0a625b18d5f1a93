package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/michojekunle/BitGive/internal/logic"
	"gorm.io/gorm"
)

type CampaignHandler struct {
	campaignLogic *logic.CampaignLogic
}

func NewCampaignHandler(db *gorm.DB) *CampaignHandler {
	return &CampaignHandler{
		campaignLogic: logic.NewCampaignLogic(db),
	}
}

// CreateCampaign 创建活动
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req struct {
		Name         string   `json:"name" binding:"required"`
		Description  string   `json:"description"`
		Story        string   `json:"story"`
		Goal         int64    `json:"goal" binding:"required"`
		DurationDays int      `json:"duration_days" binding:"required"`
		Impacts      []string `json:"impacts"`
		ImageURI     string   `json:"image_uri"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	campaign, err := h.campaignLogic.CreateCampaign(
		callerAddress(c), req.Name, req.Description, req.Story,
		req.Goal, req.DurationDays, req.Impacts, req.ImageURI)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "活动创建成功", campaign)
}

// VerifyCampaign 审核活动
func (h *CampaignHandler) VerifyCampaign(c *gin.Context) {
	h.verifierFlag(c, h.campaignLogic.VerifyCampaign)
}

// SetActive 设置活动激活状态
func (h *CampaignHandler) SetActive(c *gin.Context) {
	h.verifierFlag(c, h.campaignLogic.SetActive)
}

// SetFeatured 设置活动推荐状态
func (h *CampaignHandler) SetFeatured(c *gin.Context) {
	h.verifierFlag(c, h.campaignLogic.SetFeaturedCampaign)
}

// verifierFlag 审核员状态位操作的公共处理
func (h *CampaignHandler) verifierFlag(c *gin.Context, op func(string, int64, bool) error) {
	id, err := parseId(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req struct {
		Value *bool `json:"value" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := op(callerAddress(c), id, *req.Value); err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "活动状态更新成功", nil)
}

// UpdateCampaign 更新活动内容，仅创建者可操作
func (h *CampaignHandler) UpdateCampaign(c *gin.Context) {
	id, err := parseId(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	// 只允许更新特定字段
	var req struct {
		Description *string   `json:"description"`
		Story       *string   `json:"story"`
		Impacts     *[]string `json:"impacts"`
		ImageURI    *string   `json:"image_uri"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if req.Description == nil && req.Story == nil && req.Impacts == nil && req.ImageURI == nil {
		ErrorResponse(c, http.StatusBadRequest, "没有要更新的字段")
		return
	}

	// 全部字段在同一事务内更新，不会半途生效
	err = h.campaignLogic.UpdateCampaign(callerAddress(c), id, logic.CampaignUpdate{
		Description: req.Description,
		Story:       req.Story,
		Impacts:     req.Impacts,
		ImageURI:    req.ImageURI,
	})
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "活动更新成功", nil)
}

// WithdrawFunds 提取活动资金
func (h *CampaignHandler) WithdrawFunds(c *gin.Context) {
	id, err := parseId(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req struct {
		Amount int64 `json:"amount" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.campaignLogic.WithdrawFunds(callerAddress(c), id, req.Amount); err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "提款成功", nil)
}

// GetCampaign 获取活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, err := parseId(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	info, err := h.campaignLogic.GetCampaignInfo(id)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", info)
}

// GetCampaigns 获取活动列表，支持verified/featured/owner过滤
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	var (
		campaigns interface{}
		err       error
	)

	switch {
	case c.Query("verified") == "true":
		campaigns, err = h.campaignLogic.GetVerifiedCampaigns()
	case c.Query("featured") == "true":
		campaigns, err = h.campaignLogic.GetFeaturedCampaigns()
	case c.Query("owner") != "":
		campaigns, err = h.campaignLogic.GetCampaignsByOwner(c.Query("owner"))
	default:
		campaigns, err = h.campaignLogic.GetAllCampaigns()
	}

	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", campaigns)
}

// GetCampaignStats 获取活动统计信息
func (h *CampaignHandler) GetCampaignStats(c *gin.Context) {
	id, err := parseId(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	stats, err := h.campaignLogic.GetCampaignStats(id)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", stats)
}

// parseId 解析路径中的ID参数
func parseId(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}
