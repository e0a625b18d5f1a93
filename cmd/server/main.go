package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"github.com/michojekunle/BitGive/internal/config"
	"github.com/michojekunle/BitGive/internal/database"
	"github.com/michojekunle/BitGive/internal/ethereum"
	"github.com/michojekunle/BitGive/internal/ipfs"
	"github.com/michojekunle/BitGive/internal/logger"
	"github.com/michojekunle/BitGive/internal/logic"
	"github.com/michojekunle/BitGive/internal/monitor"
	"github.com/michojekunle/BitGive/internal/router"
	"github.com/michojekunle/BitGive/internal/scheduler"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志器
	level := logger.ParseLogLevel(cfg.Log.Level)
	var appLogger *logger.Logger
	var err error
	if cfg.Log.Output == "file" {
		appLogger, err = logger.NewWithFileRotation(level, cfg.Log.File)
	} else {
		appLogger, err = logger.New(level)
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化平台配置与初始角色
	registryLogic := logic.NewRegistryLogic(db)
	if err := registryLogic.EnsureInitialized(
		cfg.Platform.AdminAddress,
		cfg.Platform.ServiceAddress,
		cfg.Platform.FeeBasisPoints,
		cfg.Platform.CampaignCreationFee,
	); err != nil {
		logger.Fatal("Failed to initialize platform registry: %v", err)
	}

	// 初始化内容存储客户端
	ipfsClient := ipfs.New(cfg.IPFS)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, ipfsClient, cfg)

	// 启动定时任务
	schedulerManager := scheduler.Start(db, cfg)
	defer schedulerManager.Stop()

	// 启动链上结算监听
	if cfg.Settlement.Enabled {
		settlementClient, err := ethereum.Init(cfg.Settlement)
		if err != nil {
			logger.Fatal("Failed to initialize settlement client: %v", err)
		}

		settlementMonitor, err := monitor.NewSettlementMonitor(
			settlementClient, db, cfg.Platform.ServiceAddress, cfg.Settlement)
		if err != nil {
			logger.Fatal("Failed to create settlement monitor: %v", err)
		}
		if err := settlementMonitor.Start(); err != nil {
			logger.Fatal("Failed to start settlement monitor: %v", err)
		}
		defer settlementMonitor.Stop()
	}

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
