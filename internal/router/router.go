package router

import (
	"github.com/ghostfund/gfs/internal/ai"
	"github.com/ghostfund/gfs/internal/handler"
	"github.com/ghostfund/gfs/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, chainSvc logic.TransferService, aiClient *ai.Client) *gin.Engine {
	r := gin.New()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "ghostfund-service",
		})
	})

	api := r.Group("/api")
	{
		// 项目相关路由
		projectHandler := handler.NewProjectHandler(db, chainSvc, aiClient)
		projects := api.Group("/projects")
		{
			projects.GET("", projectHandler.GetProjects)
			projects.GET("/stats", projectHandler.GetProjectStats)
			projects.GET("/:id", projectHandler.GetProject)
			projects.POST("", projectHandler.CreateProject)
			projects.POST("/fund", projectHandler.FundProject)
			projects.POST("/analyze", projectHandler.AnalyzeProject)
			projects.POST("/suggestions", projectHandler.GetProjectSuggestions)
		}

		// 聊天路由
		chatHandler := handler.NewChatHandler(aiClient)
		api.POST("/chat", chatHandler.Chat)
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
