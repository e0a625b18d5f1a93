package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/michojekunle/BitGive/internal/logic"
	"gorm.io/gorm"
)

type DonationHandler struct {
	donationLogic *logic.DonationLogic
}

func NewDonationHandler(db *gorm.DB, serviceAddress string) *DonationHandler {
	return &DonationHandler{
		donationLogic: logic.NewDonationLogic(db, serviceAddress),
	}
}

// ProcessDonation 处理捐赠。
// 调用前提：捐赠金额已经由结算层完成转账，这里只做账本处理。
func (h *DonationHandler) ProcessDonation(c *gin.Context) {
	var req struct {
		CampaignId int64  `json:"campaign_id" binding:"required"`
		Amount     int64  `json:"amount" binding:"required"`
		TokenURI   string `json:"token_uri"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	donation, err := h.donationLogic.ProcessDonation(
		req.CampaignId, callerAddress(c), req.Amount, req.TokenURI)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "捐赠处理成功", donation)
}

// GetDonation 获取单笔捐赠详情
func (h *DonationHandler) GetDonation(c *gin.Context) {
	id, err := parseId(c)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的捐赠ID")
		return
	}

	donation, err := h.donationLogic.GetDonationDetails(id)
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", donation)
}

// GetDonations 获取捐赠列表，支持donor/campaign_id过滤与recent查询
func (h *DonationHandler) GetDonations(c *gin.Context) {
	if donor := c.Query("donor"); donor != "" {
		donations, err := h.donationLogic.GetDonationsByDonor(donor)
		if err != nil {
			FailWithError(c, err)
			return
		}
		SuccessResponse(c, http.StatusOK, "", donations)
		return
	}

	if campaignId := c.Query("campaign_id"); campaignId != "" {
		id, err := strconv.ParseInt(campaignId, 10, 64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
			return
		}
		donations, err := h.donationLogic.GetDonationsByCampaign(id)
		if err != nil {
			FailWithError(c, err)
			return
		}
		SuccessResponse(c, http.StatusOK, "", donations)
		return
	}

	n, _ := strconv.Atoi(c.DefaultQuery("recent", "20"))
	donations, err := h.donationLogic.GetRecentDonations(n)
	if err != nil {
		FailWithError(c, err)
		return
	}
	SuccessResponse(c, http.StatusOK, "", donations)
}

// GetDonationCount 获取捐赠总笔数
func (h *DonationHandler) GetDonationCount(c *gin.Context) {
	count, err := h.donationLogic.GetDonationCount()
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", gin.H{"count": count})
}

// GetDonationStats 获取捐赠统计信息
func (h *DonationHandler) GetDonationStats(c *gin.Context) {
	stats, err := h.donationLogic.GetDonationStats()
	if err != nil {
		FailWithError(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", stats)
}
