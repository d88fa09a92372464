package main

import (
	"github.com/ghostfund/gfs/internal/ai"
	"github.com/ghostfund/gfs/internal/chain"
	"github.com/ghostfund/gfs/internal/config"
	"github.com/ghostfund/gfs/internal/database"
	"github.com/ghostfund/gfs/internal/logger"
	"github.com/ghostfund/gfs/internal/router"
	"github.com/ghostfund/gfs/internal/scheduler"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Setup(cfg.Log.Level, cfg.Log.Output, cfg.Log.File); err != nil {
		logger.Fatal("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化链上转账服务，配置不完整时自动降级为禁用模式
	chainSvc, err := chain.New(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize chain service: %v", err)
	}

	// 初始化补全服务客户端
	aiClient := ai.New(cfg.AI)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, chainSvc, aiClient)

	// 启动定时任务
	manager := scheduler.Start(db, cfg)
	defer manager.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
