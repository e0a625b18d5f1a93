package router

import (
	"github.com/gin-gonic/gin"
	"github.com/michojekunle/BitGive/internal/config"
	"github.com/michojekunle/BitGive/internal/handler"
	"github.com/michojekunle/BitGive/internal/ipfs"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, ipfsClient *ipfs.Client, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "bitgive-service",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 活动相关路由
		campaignHandler := handler.NewCampaignHandler(db)
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.PUT("/:id", campaignHandler.UpdateCampaign)
			campaigns.PUT("/:id/verify", campaignHandler.VerifyCampaign)
			campaigns.PUT("/:id/active", campaignHandler.SetActive)
			campaigns.PUT("/:id/featured", campaignHandler.SetFeatured)
			campaigns.POST("/:id/withdraw", campaignHandler.WithdrawFunds)
			campaigns.GET("/:id/stats", campaignHandler.GetCampaignStats)
		}

		// 捐赠相关路由
		donationHandler := handler.NewDonationHandler(db, cfg.Platform.ServiceAddress)
		donations := v1.Group("/donations")
		{
			donations.POST("", donationHandler.ProcessDonation)
			donations.GET("", donationHandler.GetDonations)
			donations.GET("/count", donationHandler.GetDonationCount)
			donations.GET("/stats", donationHandler.GetDonationStats)
			donations.GET("/:id", donationHandler.GetDonation)
		}

		// 奖励NFT相关路由
		rewardHandler := handler.NewRewardHandler(db)
		rewards := v1.Group("/rewards")
		{
			rewards.GET("", rewardHandler.GetRewards)
			rewards.GET("/:id", rewardHandler.GetReward)
			rewards.POST("/:id/transfer", rewardHandler.TransferReward)
		}

		// 平台管理路由
		registryHandler := handler.NewRegistryHandler(db)
		admin := v1.Group("/admin")
		{
			admin.POST("/roles", registryHandler.GrantRole)
			admin.DELETE("/roles", registryHandler.RevokeRole)
			admin.GET("/roles", registryHandler.HasRole)
			admin.PUT("/paused", registryHandler.SetPaused)
			admin.PUT("/fee", registryHandler.UpdateFee)
			admin.PUT("/creation-fee", registryHandler.UpdateCreationFee)
			admin.GET("/config", registryHandler.GetConfig)
			admin.POST("/calculate-fee", registryHandler.CalculateFee)
		}

		// 内容上传路由
		uploadHandler := handler.NewUploadHandler(ipfsClient)
		upload := v1.Group("/ipfs")
		{
			upload.POST("/image", uploadHandler.UploadImage)
			upload.POST("/metadata", uploadHandler.UploadMetadata)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-Caller-Address")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
